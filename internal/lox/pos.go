package lox

import "fmt"

type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

func (p Pos) IsZero() bool {
	return p.Line == 0 && p.Col == 0
}

// Before reports whether p sorts strictly before q.
func (p Pos) Before(q Pos) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Col < q.Col
}

// Span is an inclusive source range.
type Span struct {
	Start Pos
	End   Pos
}

func At(p Pos) Span {
	return Span{Start: p, End: p}
}

func (s Span) IsZero() bool {
	return s.Start.IsZero()
}

// Join returns the smallest span covering s and o.
func (s Span) Join(o Span) Span {
	if s.IsZero() {
		return o
	}
	if o.IsZero() {
		return s
	}
	out := s
	if o.Start.Before(out.Start) {
		out.Start = o.Start
	}
	if out.End.Before(o.End) {
		out.End = o.End
	}
	return out
}

type ErrKind int

const (
	ScanError ErrKind = iota
	ParseError
	InterpreterError
	TypeError
)

func (k ErrKind) String() string {
	switch k {
	case ScanError:
		return "ScanError"
	case ParseError:
		return "ParseError"
	case InterpreterError:
		return "InterpreterError"
	case TypeError:
		return "TypeError"
	default:
		return "Error"
	}
}

// Static reports whether errors of this kind are raised before execution.
func (k ErrKind) Static() bool {
	return k == ScanError || k == ParseError
}

type Error struct {
	Kind ErrKind
	Span Span
	Msg  string
}

func (e *Error) Error() string {
	if e.Span.IsZero() {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Span.Start.String(), e.Msg)
}

func errAt(kind ErrKind, sp Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Span: sp, Msg: fmt.Sprintf(format, args...)}
}
