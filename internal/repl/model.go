// Package repl is the interactive prompt: a bubbletea program wrapped
// around one lox.Session so definitions survive from line to line.
package repl

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unkn0wn-root/loxterm/internal/bindings"
	"github.com/unkn0wn-root/loxterm/internal/config"
	"github.com/unkn0wn-root/loxterm/internal/history"
	"github.com/unkn0wn-root/loxterm/internal/lox"
	"github.com/unkn0wn-root/loxterm/internal/telemetry"
	"github.com/unkn0wn-root/loxterm/internal/theme"
)

const (
	inputHistoryLimit  = 128
	scrollbackLimit    = 2000
	continuationPrompt = "... "
	defaultWidth       = 80
	defaultHeight      = 24
)

// Recorder stores finished runs. *history.Store satisfies it.
type Recorder interface {
	Append(ctx context.Context, e history.Entry) (history.Entry, error)
}

type Config struct {
	Theme        theme.Theme
	Renderer     *lipgloss.Renderer
	Prompt       string
	MaxCallDepth int
	Keys         *bindings.Map
	Telemetry    telemetry.Instrumenter
	History      Recorder
	Now          func() time.Time
	Context      context.Context
}

var _ tea.Model = Model{}

type Model struct {
	cfg     Config
	painter *theme.Painter
	keys    *bindings.Map
	session *lox.Session
	out     *transcript

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	scrollback []string
	pending    []string
	history    []string
	historyIdx int

	status  statusMsg
	running bool
	cancel  context.CancelFunc
	width   int
	height  int
}

func New(cfg Config) Model {
	if cfg.Prompt == "" {
		cfg.Prompt = config.PromptDefault
	}
	if cfg.Telemetry == nil {
		cfg.Telemetry = telemetry.Noop()
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	keys := cfg.Keys
	if keys == nil {
		keys = bindings.DefaultMap()
	}
	painter := theme.NewPainter(cfg.Theme, cfg.Renderer)

	out := &transcript{style: painter.Style(func(t theme.Theme) lipgloss.Style { return t.Output })}
	opts := lox.Options{
		Out: out,
		Lim: lox.Limits{MaxCall: cfg.MaxCallDepth},
		Now: cfg.Now,
	}
	if opts.Lim.MaxCall <= 0 {
		opts.Lim = lox.DefaultLimits()
	}

	input := textinput.New()
	input.Prompt = cfg.Prompt
	input.PromptStyle = painter.Style(func(t theme.Theme) lipgloss.Style { return t.Prompt })
	input.TextStyle = painter.Style(func(t theme.Theme) lipgloss.Style { return t.Input })
	input.Placeholder = "type a statement, :quit to leave"
	input.PlaceholderStyle = painter.Style(func(t theme.Theme) lipgloss.Style { return t.Hint })
	input.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = painter.Style(func(t theme.Theme) lipgloss.Style { return t.Hint })

	return Model{
		cfg:        cfg,
		painter:    painter,
		keys:       keys,
		session:    lox.NewSession(opts),
		out:        out,
		input:      input,
		viewport:   viewport.New(defaultWidth, defaultHeight-2),
		spinner:    s,
		historyIdx: -1,
		width:      defaultWidth,
		height:     defaultHeight,
	}
}

func (m *Model) appendScrollback(lines ...string) {
	m.scrollback = append(m.scrollback, lines...)
	if over := len(m.scrollback) - scrollbackLimit; over > 0 {
		m.scrollback = append([]string(nil), m.scrollback[over:]...)
	}
	m.syncViewport()
}

func (m *Model) clearScrollback() {
	m.scrollback = nil
	m.syncViewport()
}

func (m *Model) syncViewport() {
	m.viewport.SetContent(strings.Join(m.scrollback, "\n"))
	m.viewport.GotoBottom()
}

func (m *Model) setStatus(text string, level statusLevel) {
	m.status = statusMsg{text: text, level: level}
}

func (m *Model) now() time.Time {
	if m.cfg.Now != nil {
		return m.cfg.Now()
	}
	return time.Now()
}

func (m *Model) prompt() string {
	if len(m.pending) > 0 {
		return continuationPrompt
	}
	return m.cfg.Prompt
}
