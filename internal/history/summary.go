package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/unkn0wn-root/loxterm/internal/lox"
)

const maxDiagLen = 200

// NewEntry summarises a finished run. The first diagnostic is stored as
// plain single-line text even if it was rendered with color.
func NewEntry(source, mode string, started time.Time, dur time.Duration, res lox.Result) Entry {
	e := Entry{
		StartedAt:  started,
		Source:     source,
		Mode:       mode,
		Statements: res.Stmts,
		Static:     res.Static,
		Runtime:    res.Runtime,
		Duration:   dur,
	}
	if len(res.Diags) > 0 {
		e.FirstDiag = cleanDiag(res.Diags[0])
	}
	return e
}

func cleanDiag(d lox.Diagnostic) string {
	msg := strings.Join(strings.Fields(ansi.Strip(d.Msg)), " ")
	if !d.Span.IsZero() {
		msg = d.Span.Start.String() + " " + msg
	}
	if r := []rune(msg); len(r) > maxDiagLen {
		msg = string(r[:maxDiagLen-1]) + "…"
	}
	return msg
}

func (e Entry) Status() string {
	switch {
	case e.Runtime > 0:
		return "runtime error"
	case e.Static > 0:
		return "static error"
	default:
		return "ok"
	}
}

// Line renders e as one row of a history listing.
func (e Entry) Line() string {
	var b strings.Builder
	fmt.Fprintf(
		&b,
		"%s  %-6s %-14s %3d stmts  %s",
		e.StartedAt.Local().Format(time.DateTime),
		e.Mode,
		e.Status(),
		e.Statements,
		e.Duration.Round(time.Microsecond),
	)
	if e.Source != "" {
		b.WriteString("  " + e.Source)
	}
	if e.FirstDiag != "" {
		b.WriteString("  (" + e.FirstDiag + ")")
	}
	return b.String()
}
