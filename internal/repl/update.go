package repl

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unkn0wn-root/loxterm/internal/bindings"
	"github.com/unkn0wn-root/loxterm/internal/highlight"
	"github.com/unkn0wn-root/loxterm/internal/history"
	"github.com/unkn0wn-root/loxterm/internal/lox"
	"github.com/unkn0wn-root/loxterm/internal/telemetry"
	"github.com/unkn0wn-root/loxterm/internal/theme"
)

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil
	case runDoneMsg:
		m.finishRun(msg)
		return m, nil
	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, bound := m.keyAction(msg)
	if bound {
		switch action {
		case bindings.ActionInterrupt:
			if m.running {
				if m.cancel != nil {
					m.cancel()
				}
				m.setStatus("interrupting", statusWarn)
				return m, nil
			}
			return m, tea.Quit
		case bindings.ActionQuit:
			if !m.running && m.input.Value() == "" {
				return m, tea.Quit
			}
		case bindings.ActionScrollUp:
			m.viewport.ScrollUp(m.viewport.Height)
			return m, nil
		case bindings.ActionScrollDown:
			m.viewport.ScrollDown(m.viewport.Height)
			return m, nil
		}
	}

	if m.running {
		return m, nil
	}

	if bound {
		switch action {
		case bindings.ActionRun:
			return m.submit()
		case bindings.ActionHistoryPrev:
			if m.historyPrev() {
				return m, nil
			}
		case bindings.ActionHistoryNext:
			if m.historyNext() {
				return m, nil
			}
		case bindings.ActionClearInput:
			m.input.SetValue("")
			m.historyIdx = -1
			return m, nil
		case bindings.ActionClearScreen:
			m.clearScrollback()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// keyAction looks msg up in the key map. Typed text only matches when a
// modifier is held, so pasted words never trigger actions.
func (m Model) keyAction(msg tea.KeyMsg) (bindings.ActionID, bool) {
	if msg.Type == tea.KeyRunes && !msg.Alt {
		return "", false
	}
	return m.keys.Match(msg.String())
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	m.input.SetValue("")
	m.historyIdx = -1

	if len(m.pending) == 0 {
		switch strings.TrimSpace(line) {
		case "":
			return m, nil
		case ":quit", ":q", ":exit":
			return m, tea.Quit
		case ":clear":
			m.clearScrollback()
			m.setStatus("", statusInfo)
			return m, nil
		}
	}

	m.appendScrollback(m.echo(m.prompt(), line))
	m.pending = append(m.pending, line)
	if incomplete(m.pending) {
		m.input.Prompt = continuationPrompt
		return m, nil
	}

	lines := m.pending
	m.pending = nil
	m.input.Prompt = m.cfg.Prompt
	m.rememberInput(strings.Join(lines, " "))

	ctx, cancel := context.WithCancel(m.cfg.Context)
	m.cancel = cancel
	m.running = true
	m.setStatus("", statusInfo)
	return m, tea.Batch(m.runCmd(ctx, lines), m.spinner.Tick)
}

func (m *Model) echo(prompt, line string) string {
	style := m.painter.Style(func(t theme.Theme) lipgloss.Style { return t.Prompt })
	return style.Render(prompt) + highlight.Line(line, m.cfg.Theme.Syntax, m.painter.Profile())
}

// incomplete reports whether the buffered lines still have an open brace,
// an open parenthesis or an unterminated string.
func incomplete(lines []string) bool {
	var diags lox.Collector
	depth := 0
	for _, tok := range lox.Tokens(lines, &diags) {
		switch tok.K {
		case lox.LBRACE, lox.LPAREN:
			depth++
		case lox.RBRACE, lox.RPAREN:
			depth--
		}
	}
	if depth > 0 {
		return true
	}
	for _, d := range diags.Diags {
		if strings.HasPrefix(d.Msg, "Unterminated string") {
			return true
		}
	}
	return false
}

func (m Model) runCmd(ctx context.Context, lines []string) tea.Cmd {
	session := m.session
	out := m.out
	inst := m.cfg.Telemetry
	rec := m.cfg.History
	started := m.now()
	now := m.now
	painter := highlight.SourcePainter{
		Painter: m.painter,
		Style:   m.cfg.Theme.Syntax,
		Profile: m.painter.Profile(),
	}

	return func() tea.Msg {
		ctx, span := inst.Start(ctx, telemetry.RunStart{Name: "repl", Mode: "repl", Lines: len(lines)})
		session.SetReporter(lox.ReporterFunc(func(d lox.Diagnostic) {
			var b strings.Builder
			_ = lox.Render(&b, d, lines, painter)
			out.addRendered(b.String())
			span.RecordDiagnostic(d)
		}))
		res := session.Run(ctx, lines)
		span.End(telemetry.RunResult{Result: res})

		done := runDoneMsg{transcript: out.take(), result: res}
		if rec != nil {
			entry := history.NewEntry("repl", "repl", started, now().Sub(started), res)
			if _, err := rec.Append(context.Background(), entry); err != nil {
				done.historyErr = err
			}
		}
		return done
	}
}

func (m *Model) finishRun(msg runDoneMsg) {
	m.running = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.appendScrollback(msg.transcript...)

	res := msg.result
	switch {
	case msg.historyErr != nil:
		m.setStatus(fmt.Sprintf("history: %v", msg.historyErr), statusWarn)
	case res.Runtime > 0:
		m.setStatus(fmt.Sprintf("%d runtime error(s)", res.Runtime), statusError)
	case res.Static > 0:
		m.setStatus(fmt.Sprintf("%d syntax error(s)", res.Static), statusError)
	default:
		m.setStatus("", statusInfo)
	}
}

func (m *Model) layout() {
	m.viewport.Width = max(m.width, 1)
	m.viewport.Height = max(m.height-2, 1)
	m.input.Width = max(m.width-lipgloss.Width(m.prompt())-1, 10)
	m.syncViewport()
}
