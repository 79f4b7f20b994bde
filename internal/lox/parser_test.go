package lox

import (
	"strconv"
	"strings"
	"testing"
)

func parseSrc(t *testing.T, src string) ([]Stmt, *Collector) {
	t.Helper()
	var c Collector
	return Parse(SplitLines(src), &c), &c
}

func dumpAll(stmts []Stmt) string {
	parts := make([]string, 0, len(stmts))
	for _, st := range stmts {
		parts = append(parts, Dump(st))
	}
	return strings.Join(parts, "\n")
}

func TestParserPrecedence(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"print 1 + 2 * 3 - -4;", "(print (- (+ 1 (* 2 3)) (- 4)))"},
		{"print (1 + 2) * 3;", "(print (* (group (+ 1 2)) 3))"},
		{"print 1 < 2 == !false;", "(print (== (< 1 2) (! false)))"},
		{"print a or b and c;", "(print (or a (and b c)))"},
		{"a = b = 3;", "(= a (= b 3))"},
		{"f(1)(2, \"x\");", "(call (call f 1) 2 \"x\")"},
		{"var n;", "(var n nil)"},
		{"return;", "(return)"},
	}
	for _, tc := range cases {
		stmts, c := parseSrc(t, tc.src)
		if len(c.Diags) != 0 {
			t.Fatalf("%s: unexpected diagnostics %+v", tc.src, c.Diags)
		}
		if got := dumpAll(stmts); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.src, tc.want, got)
		}
	}
}

func TestParserForDesugar(t *testing.T) {
	stmts, c := parseSrc(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	if len(c.Diags) != 0 {
		t.Fatalf("unexpected diagnostics %+v", c.Diags)
	}
	want := "(block (var i 0) (while (< i 3) (block (print i) (= i (+ i 1)))))"
	if got := dumpAll(stmts); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	stmts, _ = parseSrc(t, "for (;;) print 1;")
	if got := dumpAll(stmts); got != "(while true (print 1))" {
		t.Fatalf("unexpected empty-clause loop %s", got)
	}
}

func TestParserControlFlow(t *testing.T) {
	src := "if (x) print 1; else { print 2; }\nwhile (x) x = false;\nfun add(a, b) { return a + b; }"
	stmts, c := parseSrc(t, src)
	if len(c.Diags) != 0 {
		t.Fatalf("unexpected diagnostics %+v", c.Diags)
	}
	want := strings.Join([]string{
		"(if x (print 1) (block (print 2)))",
		"(while x (= x false))",
		"(fun add (a b) (block (return (+ a b))))",
	}, "\n")
	if got := dumpAll(stmts); got != want {
		t.Fatalf("expected\n%s\ngot\n%s", want, got)
	}
}

func TestParserSyncAfterError(t *testing.T) {
	stmts, c := parseSrc(t, "var = 1; print 2; print 3;")
	if len(c.Diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %+v", c.Diags)
	}
	d := c.Diags[0]
	if d.Kind != ParseError || d.Msg != "Expected variable name" || d.Span.Start != (Pos{Line: 1, Col: 5}) {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if got := dumpAll(stmts); got != "(print 2)\n(print 3)" {
		t.Fatalf("unexpected statements %s", got)
	}
}

func TestParserSyncStopsAtKeyword(t *testing.T) {
	stmts, c := parseSrc(t, "print + print 2;")
	if len(c.Diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %+v", c.Diags)
	}
	if c.Diags[0].Msg != "Expected expression. Found `+`" {
		t.Fatalf("unexpected message %q", c.Diags[0].Msg)
	}
	if got := dumpAll(stmts); got != "(print 2)" {
		t.Fatalf("expected the second print to survive, got %s", got)
	}
}

func TestParserErrorInsideBlock(t *testing.T) {
	stmts, c := parseSrc(t, "{ var = 1; print 2; }")
	if len(c.Diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %+v", c.Diags)
	}
	if got := dumpAll(stmts); got != "(block (print 2))" {
		t.Fatalf("unexpected block %s", got)
	}
}

func TestParserMessages(t *testing.T) {
	cases := []struct {
		src  string
		msg  string
		want Pos
	}{
		{"print 1", "Expected `;` after statement", Pos{1, 8}},
		{"print ;", "Expected expression. Found `;`", Pos{1, 7}},
		{"var x = 1", "Expected `;` after variable `x` declaration", Pos{1, 10}},
		{"{ print 1;", "Expected `}` after block", Pos{1, 11}},
		{"while x) {}", "Expected `(` after while", Pos{1, 7}},
		{"if (x print 1;", "Expected `)` after condition", Pos{1, 7}},
		{"fun 1() {}", "Expected function name", Pos{1, 5}},
		{"fun f() print 1;", "Expected `{` before function body", Pos{1, 9}},
		{"fun f(a b) {}", "Expected `)` after parameters", Pos{1, 9}},
		{"f(1;", "Expected `)` after arguments", Pos{1, 4}},
		{"print (1;", "Expected `)` after expression", Pos{1, 9}},
		{"for (;; i = i + 1 print 1;", "Expected `)` after the clauses", Pos{1, 19}},
	}
	for _, tc := range cases {
		_, c := parseSrc(t, tc.src)
		if len(c.Diags) == 0 {
			t.Fatalf("%s: expected a diagnostic", tc.src)
		}
		d := c.Diags[0]
		if d.Msg != tc.msg {
			t.Fatalf("%s: expected %q, got %q", tc.src, tc.msg, d.Msg)
		}
		if d.Span.Start != tc.want {
			t.Fatalf("%s: expected position %v, got %v", tc.src, tc.want, d.Span.Start)
		}
	}
}

func TestParserUnterminatedStringReportsOnce(t *testing.T) {
	cases := []string{
		"print \"x",
		"var s = \"abc",
		"print 1;\n{ print \"open\n\n",
	}
	for _, src := range cases {
		stmts, c := parseSrc(t, src)
		if len(c.Diags) != 1 || c.Diags[0].Kind != ScanError || c.Diags[0].Msg != "Unterminated string" {
			t.Fatalf("%q: expected only the scan error, got %+v", src, c.Diags)
		}
		for _, st := range stmts {
			if _, ok := st.(*Print); ok && Dump(st) != "(print 1)" {
				t.Fatalf("%q: unexpected statement %s", src, Dump(st))
			}
		}
	}

	_, c := parseSrc(t, "print \"ok\"")
	if len(c.Diags) != 1 || c.Diags[0].Kind != ParseError {
		t.Fatalf("a missing `;` at end of input is still a parse error, got %+v", c.Diags)
	}
}

func TestParserInvalidAssignmentTarget(t *testing.T) {
	stmts, c := parseSrc(t, "a + b = c; print 1;")
	if len(c.Diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %+v", c.Diags)
	}
	d := c.Diags[0]
	if d.Msg != "Invalid assignment target" || d.Span.Start != (Pos{Line: 1, Col: 7}) {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if got := dumpAll(stmts); got != "(+ a b)\n(print 1)" {
		t.Fatalf("parsing should continue after the target error, got %s", got)
	}
}

func nArgs(prefix string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = prefix
		if prefix == "p" {
			parts[i] = "p" + strconv.Itoa(i)
		}
	}
	return strings.Join(parts, ", ")
}

func TestParserArgumentLimit(t *testing.T) {
	stmts, c := parseSrc(t, "f("+nArgs("0", 255)+");")
	if len(c.Diags) != 0 || len(stmts) != 1 {
		t.Fatalf("255 arguments must be accepted, got %+v", c.Diags)
	}

	stmts, c = parseSrc(t, "f("+nArgs("0", 256)+"); print 1;")
	if len(c.Diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(c.Diags))
	}
	if c.Diags[0].Msg != "Cannot have more than 255 arguments" {
		t.Fatalf("unexpected message %q", c.Diags[0].Msg)
	}
	if got := dumpAll(stmts); got != "(print 1)" {
		t.Fatalf("expected recovery after the call, got %s", got)
	}
}

func TestParserParameterLimit(t *testing.T) {
	stmts, c := parseSrc(t, "fun f("+nArgs("p", 255)+") {}")
	if len(c.Diags) != 0 || len(stmts) != 1 {
		t.Fatalf("255 parameters must be accepted, got %+v", c.Diags)
	}
	fd, ok := stmts[0].(*FunDecl)
	if !ok || len(fd.Params) != 255 {
		t.Fatalf("expected a function with 255 parameters, got %T", stmts[0])
	}

	stmts, c = parseSrc(t, "fun f("+nArgs("p", 256)+") {}\nprint 1;")
	if len(c.Diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(c.Diags))
	}
	if c.Diags[0].Msg != "Can't have more than 255 parameters" {
		t.Fatalf("unexpected message %q", c.Diags[0].Msg)
	}
	if got := dumpAll(stmts); got != "(print 1)" {
		t.Fatalf("expected recovery at the next statement, got %s", got)
	}
}

type countingSource struct {
	sc    *Scanner
	pulls int
}

func (c *countingSource) Next() Tok {
	c.pulls++
	return c.sc.Next()
}

func TestParserIsLazy(t *testing.T) {
	src := &countingSource{sc: NewScanner([]string{"print 1; print 2; print 3;"}, nil)}
	p := NewParser(src, nil)
	st, ok := p.Next()
	if !ok || Dump(st) != "(print 1)" {
		t.Fatalf("unexpected first statement")
	}
	if src.pulls != 4 {
		t.Fatalf("expected one token of lookahead, pulled %d", src.pulls)
	}
	n := 1
	for range p.All() {
		n++
	}
	if n != 3 {
		t.Fatalf("expected 3 statements, got %d", n)
	}
	if _, ok := p.Next(); ok {
		t.Fatalf("expected end of input")
	}
}

func TestParserSpans(t *testing.T) {
	stmts, _ := parseSrc(t, "print add(1,\n  2);")
	pr := stmts[0].(*Print)
	call, ok := pr.X.(*Call)
	if !ok {
		t.Fatalf("expected call, got %T", pr.X)
	}
	want := Span{Start: Pos{Line: 1, Col: 7}, End: Pos{Line: 2, Col: 4}}
	if call.Span() != want {
		t.Fatalf("expected %+v, got %+v", want, call.Span())
	}
}
