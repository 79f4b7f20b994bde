package lox

import (
	"context"
	"io"
	"time"
)

type Limits struct {
	MaxCall int
}

func DefaultLimits() Limits {
	return Limits{MaxCall: 4096}
}

// Ctx is what a running program can see of its host.
type Ctx struct {
	Ctx context.Context
	Lim Limits
	Now func() time.Time
	Out io.Writer

	depth int
}

func NewCtx(ctx context.Context, lim Limits, out io.Writer) *Ctx {
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = io.Discard
	}
	return &Ctx{Ctx: ctx, Lim: lim, Now: time.Now, Out: out}
}

func (c *Ctx) tick(sp Span) error {
	select {
	case <-c.Ctx.Done():
		return errAt(InterpreterError, sp, "Interrupted.")
	default:
		return nil
	}
}

func (c *Ctx) push() error {
	if c.Lim.MaxCall > 0 && c.depth >= c.Lim.MaxCall {
		return &Error{Kind: InterpreterError, Msg: "Stack overflow."}
	}
	c.depth++
	return nil
}

func (c *Ctx) pop() {
	if c.depth > 0 {
		c.depth--
	}
}
