package lox

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestFormatSingleCaret(t *testing.T) {
	d := Diagnostic{Kind: TypeError, Span: At(Pos{Line: 1, Col: 9}), Msg: "Operands must be numbers"}
	got := Format(d, []string{"print 1 + nil;"})
	want := "1 | print 1 + nil;\n" +
		strings.Repeat(" ", 12) + "^ Operands must be numbers\n"
	if got != want {
		t.Fatalf("expected\n%q\ngot\n%q", want, got)
	}
}

func TestFormatAtEOF(t *testing.T) {
	d := Diagnostic{Kind: ParseError, Span: At(Pos{Line: 1, Col: 8}), Msg: "Expected `;` after statement"}
	got := Format(d, []string{"print 1"})
	want := "1 | print 1\n" +
		strings.Repeat(" ", 11) + "^ Expected `;` after statement\n"
	if got != want {
		t.Fatalf("expected\n%q\ngot\n%q", want, got)
	}
}

func TestFormatUnderlinesWholeSpan(t *testing.T) {
	d := Diagnostic{
		Kind: InterpreterError,
		Span: Span{Start: Pos{Line: 2, Col: 3}, End: Pos{Line: 2, Col: 5}},
		Msg:  "Undefined variable 'foo'",
	}
	got := Format(d, []string{"x", "a foo b"})
	want := "2 | a foo b\n" +
		strings.Repeat(" ", 6) + "^^^ Undefined variable 'foo'\n"
	if got != want {
		t.Fatalf("expected\n%q\ngot\n%q", want, got)
	}
}

func TestFormatMultiLineSpan(t *testing.T) {
	d := Diagnostic{
		Kind: ScanError,
		Span: Span{Start: Pos{Line: 1, Col: 7}, End: Pos{Line: 2, Col: 3}},
		Msg:  "Unterminated string",
	}
	got := Format(d, []string{`print "ab`, `cd";`})
	want := "1 | print \"ab\n" +
		strings.Repeat(" ", 10) + "^^^\n" +
		"2 | cd\";\n" +
		strings.Repeat(" ", 4) + "^^^ Unterminated string\n"
	if got != want {
		t.Fatalf("expected\n%q\ngot\n%q", want, got)
	}
}

func TestFormatWithoutPosition(t *testing.T) {
	d := Diagnostic{Kind: InterpreterError, Msg: "Stack overflow."}
	if got := Format(d, []string{"f();"}); got != "Stack overflow.\n" {
		t.Fatalf("unexpected output %q", got)
	}

	d = Diagnostic{Kind: InterpreterError, Span: At(Pos{Line: 5, Col: 1}), Msg: "gone"}
	if got := Format(d, []string{"x"}); got != "gone\n" {
		t.Fatalf("out of range lines must fall back to the message, got %q", got)
	}
}

func TestFormatGutterWidth(t *testing.T) {
	src := make([]string, 10)
	for i := range src {
		src[i] = "x;"
	}
	d := Diagnostic{Kind: ParseError, Span: At(Pos{Line: 10, Col: 2}), Msg: "m"}
	want := "10 | x;\n" + strings.Repeat(" ", 6) + "^ m\n"
	if got := Format(d, src); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatWideRunes(t *testing.T) {
	d := Diagnostic{Kind: ScanError, Span: At(Pos{Line: 1, Col: 9}), Msg: "`@`: unexpected character"}
	got := Format(d, []string{"var 名 = @;"})
	want := "1 | var 名 = @;\n" + strings.Repeat(" ", 13) + "^ `@`: unexpected character\n"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatKeepsTabs(t *testing.T) {
	d := Diagnostic{Kind: ScanError, Span: At(Pos{Line: 1, Col: 2}), Msg: "m"}
	got := Format(d, []string{"\t@"})
	want := "1 | \t@\n    \t^ m\n"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

type bracketPainter struct{}

func (bracketPainter) Gutter(s string) string             { return s }
func (bracketPainter) Source(s string) string             { return s }
func (bracketPainter) Caret(_ ErrKind, s string) string   { return "[" + s + "]" }
func (bracketPainter) Message(k ErrKind, s string) string { return k.String() + ": " + s }

func TestRenderUsesPainter(t *testing.T) {
	var b bytes.Buffer
	d := Diagnostic{Kind: TypeError, Span: At(Pos{Line: 1, Col: 1}), Msg: "m"}
	if err := Render(&b, d, []string{"x"}, bracketPainter{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := b.String(); got != "1 | x\n    [^] TypeError: m\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestPrinterReportsAsItGoes(t *testing.T) {
	var b bytes.Buffer
	lines := []string{"print nope;"}
	p := &Printer{W: &b, Lines: lines}
	Run(t.Context(), lines, Options{Rep: p})
	want := "1 | print nope;\n" + strings.Repeat(" ", 10) + "^^^^ Undefined variable 'nope'\n"
	if got := b.String(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestDiagnosticOf(t *testing.T) {
	le := errAt(TypeError, At(Pos{Line: 2, Col: 3}), "Operands must be numbers")
	d := DiagnosticOf(fmt.Errorf("wrapped: %w", le))
	if d.Kind != TypeError || d.Span.Start != (Pos{Line: 2, Col: 3}) || d.Msg != "Operands must be numbers" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if le.Error() != "2:3: Operands must be numbers" {
		t.Fatalf("unexpected error text %q", le.Error())
	}

	d = DiagnosticOf(errors.New("boom"))
	if d.Kind != InterpreterError || !d.Span.IsZero() || d.Msg != "boom" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}

func TestCollectorCount(t *testing.T) {
	var c Collector
	c.Report(Diagnostic{Kind: ParseError})
	c.Report(Diagnostic{Kind: ParseError})
	c.Report(Diagnostic{Kind: TypeError})
	if c.Count(ParseError) != 2 || c.Count(TypeError) != 1 || c.Count(ScanError) != 0 {
		t.Fatalf("unexpected counts %+v", c.Diags)
	}
	c.Reset()
	if len(c.Diags) != 0 {
		t.Fatalf("expected reset to clear diagnostics")
	}
}
