package theme

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/unkn0wn-root/loxterm/internal/config"
	"github.com/unkn0wn-root/loxterm/internal/lox"
)

// NewRenderer returns a renderer for w honouring the color mode. Auto
// detects the terminal, always forces at least 256 colors.
func NewRenderer(w io.Writer, mode config.ColorMode) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case config.ColorNever:
		r.SetColorProfile(termenv.Ascii)
	case config.ColorAlways:
		if p := termenv.NewOutput(w).ColorProfile(); p == termenv.Ascii {
			r.SetColorProfile(termenv.ANSI256)
		}
	}
	return r
}

// Painter styles diagnostic pieces with a theme. It satisfies lox.Painter.
type Painter struct {
	t Theme
	r *lipgloss.Renderer
}

func NewPainter(t Theme, r *lipgloss.Renderer) *Painter {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return &Painter{t: t, r: r}
}

var _ lox.Painter = (*Painter)(nil)

func (p *Painter) style(s lipgloss.Style) lipgloss.Style {
	return s.Renderer(p.r).TabWidth(lipgloss.NoTabConversion)
}

func (p *Painter) Gutter(s string) string {
	return p.style(p.t.Gutter).Render(s)
}

func (p *Painter) Source(s string) string {
	return p.style(p.t.Source).Render(s)
}

func (p *Painter) Caret(kind lox.ErrKind, s string) string {
	return p.style(p.t.Caret).Foreground(p.t.Kinds.For(kind)).Render(s)
}

func (p *Painter) Message(kind lox.ErrKind, s string) string {
	return p.style(p.t.Message).Foreground(p.t.Kinds.For(kind)).Render(s)
}

// Style binds one of the theme styles to the painter's renderer.
func (p *Painter) Style(pick func(Theme) lipgloss.Style) lipgloss.Style {
	return p.style(pick(p.t))
}

func (p *Painter) Theme() Theme {
	return p.t
}

func (k KindColors) For(kind lox.ErrKind) lipgloss.Color {
	switch kind {
	case lox.ScanError:
		return k.Scan
	case lox.ParseError:
		return k.Parse
	case lox.TypeError:
		return k.Type
	default:
		return k.Runtime
	}
}

// Profile reports the color profile output is rendered for.
func (p *Painter) Profile() termenv.Profile {
	return p.r.ColorProfile()
}
