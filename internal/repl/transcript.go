package repl

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// transcript collects what one run prints. Program output is styled line
// by line; diagnostics arrive already rendered.
type transcript struct {
	mu      sync.Mutex
	style   lipgloss.Style
	lines   []string
	partial strings.Builder
}

func (t *transcript) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range string(p) {
		if r == '\n' {
			t.lines = append(t.lines, t.style.Render(t.partial.String()))
			t.partial.Reset()
			continue
		}
		t.partial.WriteRune(r)
	}
	return len(p), nil
}

func (t *transcript) addRendered(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.flushLocked()
	t.lines = append(t.lines, strings.Split(strings.TrimSuffix(s, "\n"), "\n")...)
}

func (t *transcript) take() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.flushLocked()
	out := t.lines
	t.lines = nil
	return out
}

func (t *transcript) flushLocked() {
	if t.partial.Len() == 0 {
		return
	}
	t.lines = append(t.lines, t.style.Render(t.partial.String()))
	t.partial.Reset()
}
