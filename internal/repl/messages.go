package repl

import "github.com/unkn0wn-root/loxterm/internal/lox"

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusWarn
	statusError
)

type statusMsg struct {
	text  string
	level statusLevel
}

// runDoneMsg carries a finished run back to the update loop. Transcript
// holds program output and rendered diagnostics in the order they occurred.
type runDoneMsg struct {
	transcript []string
	result     lox.Result
	historyErr error
}
