package lox

import (
	"context"
	"io"
	"time"
)

type Options struct {
	Out io.Writer
	Rep Reporter
	Lim Limits
	Now func() time.Time
}

type Result struct {
	Stmts   int
	Static  int
	Runtime int
	Diags   []Diagnostic
}

func (r Result) OK() bool {
	return r.Static == 0 && r.Runtime == 0
}

func (r *Result) add(d Diagnostic) {
	r.Diags = append(r.Diags, d)
	if d.Kind.Static() {
		r.Static++
	} else {
		r.Runtime++
	}
}

// Session keeps one global scope across runs, so a REPL can define
// something on one line and use it on the next.
type Session struct {
	cx  *Ctx
	in  *Interp
	env *Env
	rep Reporter
}

func NewSession(opts Options) *Session {
	lim := opts.Lim
	if lim.MaxCall == 0 {
		lim = DefaultLimits()
	}
	cx := NewCtx(context.Background(), lim, opts.Out)
	if opts.Now != nil {
		cx.Now = opts.Now
	}
	rep := opts.Rep
	if rep == nil {
		rep = nopReporter{}
	}

	env := NewEnv(nil)
	for name, v := range Globals() {
		env.Define(name, v)
	}
	return &Session{cx: cx, in: NewInterp(cx), env: env, rep: rep}
}

// SetReporter swaps the diagnostic sink, typically to one that knows the
// source lines of the next run.
func (s *Session) SetReporter(rep Reporter) {
	if rep == nil {
		rep = nopReporter{}
	}
	s.rep = rep
}

// Run scans, parses and executes lines statement by statement. A runtime
// error abandons only the top-level statement that raised it.
func (s *Session) Run(ctx context.Context, lines []string) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	s.cx.Ctx = ctx

	var res Result
	rep := ReporterFunc(func(d Diagnostic) {
		res.add(d)
		s.rep.Report(d)
	})

	p := NewParser(NewScanner(lines, rep), rep)
	for st := range p.All() {
		res.Stmts++
		fl, err := s.in.Exec(s.env, st)
		if err != nil {
			rep.Report(DiagnosticOf(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if fl.Ret {
			rep.Report(Diagnostic{
				Kind: InterpreterError,
				Span: st.Span(),
				Msg:  "Can't return from top-level code.",
			})
		}
	}
	return res
}

// Run executes lines in a fresh session.
func Run(ctx context.Context, lines []string, opts Options) Result {
	return NewSession(opts).Run(ctx, lines)
}

// Tokens scans lines completely, EOF included.
func Tokens(lines []string, rep Reporter) []Tok {
	var out []Tok
	for t := range NewScanner(lines, rep).All() {
		out = append(out, t)
	}
	return out
}
