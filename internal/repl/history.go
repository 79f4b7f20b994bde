package repl

import "strings"

func (m *Model) rememberInput(src string) {
	if strings.TrimSpace(src) == "" {
		return
	}
	if len(m.history) > 0 && m.history[0] == src {
		m.historyIdx = -1
		return
	}
	m.history = append([]string{src}, m.history...)
	if len(m.history) > inputHistoryLimit {
		m.history = m.history[:inputHistoryLimit]
	}
	m.historyIdx = -1
}

func (m *Model) historyPrev() bool {
	if len(m.history) == 0 {
		return false
	}
	if m.historyIdx+1 < len(m.history) {
		m.historyIdx++
	}
	m.applyHistory()
	return true
}

func (m *Model) historyNext() bool {
	if m.historyIdx < 0 {
		return false
	}
	m.historyIdx--
	m.applyHistory()
	return true
}

func (m *Model) applyHistory() {
	if m.historyIdx < 0 || m.historyIdx >= len(m.history) {
		m.input.SetValue("")
		return
	}
	m.input.SetValue(m.history[m.historyIdx])
	m.input.CursorEnd()
}
