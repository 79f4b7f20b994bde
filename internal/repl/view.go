package repl

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/unkn0wn-root/loxterm/internal/bindings"
	"github.com/unkn0wn-root/loxterm/internal/theme"
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteByte('\n')
	b.WriteString(m.statusLine())
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

func (m Model) statusLine() string {
	pick := func(f func(theme.Theme) lipgloss.Style) lipgloss.Style { return m.painter.Style(f) }
	hint := pick(func(t theme.Theme) lipgloss.Style { return t.Hint })

	if m.running {
		text := " running"
		if key := m.keyHint(bindings.ActionInterrupt); key != "" {
			text += ", " + key + " to interrupt"
		}
		return m.spinner.View() + hint.Render(text)
	}
	if m.status.text == "" {
		return hint.Render(m.idleHint())
	}
	switch m.status.level {
	case statusError:
		return pick(func(t theme.Theme) lipgloss.Style { return t.Error }).Render(m.status.text)
	case statusWarn:
		return pick(func(t theme.Theme) lipgloss.Style { return t.Message }).Render(m.status.text)
	default:
		return hint.Render(m.status.text)
	}
}

func (m Model) idleHint() string {
	up, down := m.keyHint(bindings.ActionScrollUp), m.keyHint(bindings.ActionScrollDown)
	switch {
	case up != "" && down != "":
		return fmt.Sprintf("%s/%s scroll  :clear  :quit", up, down)
	case up+down != "":
		return up + down + " scroll  :clear  :quit"
	default:
		return ":clear  :quit"
	}
}

// keyHint names the first key bound to action.
func (m Model) keyHint(action bindings.ActionID) string {
	if keys := m.keys.Keys(action); len(keys) > 0 {
		return keys[0]
	}
	return ""
}
