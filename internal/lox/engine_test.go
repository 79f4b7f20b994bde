package lox

import (
	"bytes"
	"context"
	"reflect"
	"testing"

	"github.com/MakeNowJust/heredoc"
	udiff "github.com/aymanbagabas/go-udiff"
)

func TestSessionKeepsGlobals(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(Options{Out: &out})
	ctx := context.Background()

	if res := s.Run(ctx, SplitLines("var x = 1;\nfun inc() { x = x + 1; }")); !res.OK() {
		t.Fatalf("unexpected diagnostics: %+v", res.Diags)
	}
	s.Run(ctx, SplitLines("inc();"))
	s.Run(ctx, SplitLines("print x;"))
	if out.String() != "2\n" {
		t.Fatalf("expected globals to persist, got %q", out.String())
	}
	if _, ok := s.env.Vars["clock"]; !ok {
		t.Fatalf("expected clock in the global scope")
	}
}

func TestRunParseErrorDoesNotStopValidStatements(t *testing.T) {
	src := heredoc.Doc(`
		print "a";
		var = 1;
		print "b";
		print @;
		print "c";
	`)
	out, res := runSrc(t, src, Options{})
	want := "a\nb\nc\n"
	if out != want {
		t.Fatalf("output mismatch:\n%s", udiff.Unified("want", "got", want, out))
	}
	if res.Stmts != 3 {
		t.Fatalf("expected 3 statements to run, got %d", res.Stmts)
	}
	kinds := make([]ErrKind, 0, len(res.Diags))
	for _, d := range res.Diags {
		kinds = append(kinds, d.Kind)
	}
	if !reflect.DeepEqual(kinds, []ErrKind{ParseError, ScanError, ParseError}) {
		t.Fatalf("unexpected diagnostic kinds %v", kinds)
	}
	if res.Static != 3 || res.Runtime != 0 {
		t.Fatalf("unexpected counts %+v", res)
	}
}

func TestRunUnterminatedStringAtEnd(t *testing.T) {
	out, res := runSrc(t, "print 1;\nprint 2;\nprint \"x", Options{})
	if out != "1\n2\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if res.Static != 1 || len(res.Diags) != 1 || res.Diags[0].Msg != "Unterminated string" {
		t.Fatalf("expected a single scan diagnostic, got %+v", res.Diags)
	}
	if res.Diags[0].Span.Start != (Pos{Line: 3, Col: 7}) {
		t.Fatalf("unexpected span %+v", res.Diags[0].Span)
	}
}

func TestRunReportsInSourceOrder(t *testing.T) {
	src := heredoc.Doc(`
		print nope;
		var = 2;
	`)
	_, res := runSrc(t, src, Options{})
	if len(res.Diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %+v", res.Diags)
	}
	if res.Diags[0].Kind != InterpreterError || res.Diags[1].Kind != ParseError {
		t.Fatalf("expected the runtime error before the later parse error, got %+v", res.Diags)
	}
}

func TestRunEmptyInput(t *testing.T) {
	out, res := runSrc(t, "", Options{})
	if out != "" || !res.OK() || res.Stmts != 0 {
		t.Fatalf("unexpected result %q %+v", out, res)
	}
}

func TestSetReporter(t *testing.T) {
	s := NewSession(Options{})
	var c Collector
	s.SetReporter(&c)
	s.Run(context.Background(), SplitLines("print nope;"))
	if len(c.Diags) != 1 {
		t.Fatalf("expected the reporter to see 1 diagnostic, got %d", len(c.Diags))
	}
	s.SetReporter(nil)
	s.Run(context.Background(), SplitLines("print nope;"))
	if len(c.Diags) != 1 {
		t.Fatalf("detached reporter must not receive diagnostics")
	}
}

func TestSplitLines(t *testing.T) {
	cases := map[string][]string{
		"":             nil,
		"a":            {"a"},
		"a\n":          {"a"},
		"a\r\nb\r\n":   {"a", "b"},
		"a\n\nb":       {"a", "", "b"},
		"print 1;\n\n": {"print 1;", ""},
	}
	for src, want := range cases {
		if got := SplitLines(src); !reflect.DeepEqual(got, want) {
			t.Fatalf("%q: expected %q, got %q", src, want, got)
		}
	}
}

func TestTokensIncludeEOF(t *testing.T) {
	toks := Tokens([]string{"print 1;"}, nil)
	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.K)
	}
	if !reflect.DeepEqual(kinds, []Kind{KW_PRINT, NUMBER, SEMI, EOF}) {
		t.Fatalf("unexpected tokens %v", kinds)
	}
}
