package lox

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

type Diagnostic struct {
	Kind ErrKind
	Span Span
	Msg  string
}

// DiagnosticOf converts err into a diagnostic. Errors that did not come
// from the language carry no position.
func DiagnosticOf(err error) Diagnostic {
	var le *Error
	if errors.As(err, &le) {
		return Diagnostic{Kind: le.Kind, Span: le.Span, Msg: le.Msg}
	}
	return Diagnostic{Kind: InterpreterError, Msg: err.Error()}
}

type Reporter interface {
	Report(d Diagnostic)
}

type ReporterFunc func(d Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

type Collector struct {
	Diags []Diagnostic
}

func (c *Collector) Report(d Diagnostic) {
	c.Diags = append(c.Diags, d)
}

func (c *Collector) Count(kind ErrKind) int {
	n := 0
	for _, d := range c.Diags {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

func (c *Collector) Reset() {
	c.Diags = c.Diags[:0]
}

type nopReporter struct{}

func (nopReporter) Report(Diagnostic) {}

// Painter decorates the pieces of a rendered diagnostic. Decorations must
// not change the visible width of their input.
type Painter interface {
	Gutter(s string) string
	Source(s string) string
	Caret(kind ErrKind, s string) string
	Message(kind ErrKind, s string) string
}

type Plain struct{}

func (Plain) Gutter(s string) string             { return s }
func (Plain) Source(s string) string             { return s }
func (Plain) Caret(_ ErrKind, s string) string   { return s }
func (Plain) Message(_ ErrKind, s string) string { return s }

// Format renders d against src without decoration.
func Format(d Diagnostic, src []string) string {
	var b strings.Builder
	_ = Render(&b, d, src, Plain{})
	return b.String()
}

// Render writes d as gutter lines with caret underlines. Each covered line
// gets its own underline and the message follows the last one. A
// diagnostic without a usable position is written as the bare message.
func Render(w io.Writer, d Diagnostic, src []string, p Painter) error {
	if p == nil {
		p = Plain{}
	}
	sp := d.Span
	if sp.IsZero() || sp.Start.Line < 1 || sp.Start.Line > len(src) {
		_, err := fmt.Fprintln(w, p.Message(d.Kind, d.Msg))
		return err
	}
	if sp.End.Before(sp.Start) {
		sp.End = sp.Start
	}
	last := min(sp.End.Line, len(src))

	for ln := sp.Start.Line; ln <= last; ln++ {
		text := []rune(src[ln-1])
		from := 1
		if ln == sp.Start.Line {
			from = max(sp.Start.Col, 1)
		}
		to := len(text)
		if ln == last && sp.End.Line == last {
			to = sp.End.Col
		}
		to = max(to, from)

		gutter := strconv.Itoa(ln) + " | "
		if _, err := fmt.Fprintf(w, "%s%s\n", p.Gutter(gutter), p.Source(string(text))); err != nil {
			return err
		}

		line := strings.Repeat(" ", len(gutter)) + padTo(text, from) +
			p.Caret(d.Kind, strings.Repeat("^", underlineWidth(text, from, to)))
		if ln == last {
			line += " " + p.Message(d.Kind, d.Msg)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// padTo returns whitespace that lines up with column col of text. Tabs are
// kept as tabs so the caret stays aligned however the terminal expands them.
func padTo(text []rune, col int) string {
	var b strings.Builder
	for i := 0; i < col-1; i++ {
		if i >= len(text) {
			b.WriteByte(' ')
			continue
		}
		r := text[i]
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}

func underlineWidth(text []rune, from, to int) int {
	lo := min(from-1, len(text))
	hi := min(to, len(text))
	n := 0
	if hi > lo {
		seg := string(text[lo:hi])
		n = uniseg.StringWidth(seg) + strings.Count(seg, "\t")
	}
	// columns past the end of the line, such as EOF, count one each
	if to > len(text) {
		n += to - max(len(text), from-1)
	}
	return max(n, 1)
}

// Printer renders each diagnostic as soon as it is reported.
type Printer struct {
	W       io.Writer
	Lines   []string
	Painter Painter
}

func (p *Printer) Report(d Diagnostic) {
	_ = Render(p.W, d, p.Lines, p.Painter)
}
