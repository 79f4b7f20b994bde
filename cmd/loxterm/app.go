package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/unkn0wn-root/loxterm/internal/bindings"
	"github.com/unkn0wn-root/loxterm/internal/config"
	"github.com/unkn0wn-root/loxterm/internal/highlight"
	"github.com/unkn0wn-root/loxterm/internal/history"
	"github.com/unkn0wn-root/loxterm/internal/lox"
	"github.com/unkn0wn-root/loxterm/internal/repl"
	"github.com/unkn0wn-root/loxterm/internal/telemetry"
	"github.com/unkn0wn-root/loxterm/internal/theme"
)

const historyListSize = 20

type app struct {
	ctx       context.Context
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	settings  config.Settings
	themes    theme.Catalog
	theme     theme.Theme
	telemetry telemetry.Instrumenter
	history   *history.Store
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// diagPainter colors diagnostics written to stderr and highlights the
// source lines they quote.
func (a *app) diagPainter() lox.Painter {
	p := theme.NewPainter(a.theme, theme.NewRenderer(a.stderr, a.settings.Color))
	return highlight.SourcePainter{Painter: p, Style: a.theme.Syntax, Profile: p.Profile()}
}

func (a *app) execute(src source) int {
	lines := lox.SplitLines(src.text)
	printer := &lox.Printer{W: a.stderr, Lines: lines, Painter: a.diagPainter()}

	ctx, span := a.telemetry.Start(a.ctx, telemetry.RunStart{
		Name:  src.name,
		Mode:  src.mode,
		Path:  src.path,
		Lines: len(lines),
	})
	started := time.Now()
	res := lox.Run(ctx, lines, lox.Options{
		Out: a.stdout,
		Rep: lox.ReporterFunc(func(d lox.Diagnostic) {
			printer.Report(d)
			span.RecordDiagnostic(d)
		}),
		Lim: lox.Limits{MaxCall: a.settings.MaxCallDepth},
	})
	span.End(telemetry.RunResult{Result: res})

	if a.history != nil {
		entry := history.NewEntry(src.name, src.mode, started, time.Since(started), res)
		if _, err := a.history.Append(context.Background(), entry); err != nil {
			log.Printf("history write error: %v", err)
		}
	}
	return exitCode(res)
}

func exitCode(res lox.Result) int {
	switch {
	case res.Static > 0:
		return exitData
	case res.Runtime > 0:
		return exitRuntime
	default:
		return exitOK
	}
}

func (a *app) dumpTokens(src *source) int {
	lines := lox.SplitLines(src.text)
	var diags lox.Collector
	printer := &lox.Printer{W: a.stderr, Lines: lines, Painter: a.diagPainter()}
	toks := lox.Tokens(lines, lox.ReporterFunc(func(d lox.Diagnostic) {
		diags.Report(d)
		printer.Report(d)
	}))
	for _, tok := range toks {
		lexeme := tok.String()
		kind := tok.K.String()
		if lexeme == kind {
			fmt.Fprintf(a.stdout, "%-8s %s\n", tok.P, kind)
			continue
		}
		fmt.Fprintf(a.stdout, "%-8s %-8s %s\n", tok.P, kind, lexeme)
	}
	if len(diags.Diags) > 0 {
		return exitData
	}
	return exitOK
}

func (a *app) dumpAST(src *source) int {
	lines := lox.SplitLines(src.text)
	var diags lox.Collector
	printer := &lox.Printer{W: a.stderr, Lines: lines, Painter: a.diagPainter()}
	stmts := lox.Parse(lines, lox.ReporterFunc(func(d lox.Diagnostic) {
		diags.Report(d)
		printer.Report(d)
	}))
	for _, st := range stmts {
		fmt.Fprintln(a.stdout, lox.Dump(st))
	}
	if len(diags.Diags) > 0 {
		return exitData
	}
	return exitOK
}

func (a *app) printHighlighted(src *source) int {
	r := theme.NewRenderer(a.stdout, a.settings.Color)
	if err := highlight.Write(a.stdout, src.text, a.theme.Syntax, r.ColorProfile()); err != nil {
		fmt.Fprintf(a.stderr, "loxterm: highlight: %v\n", err)
		return exitIO
	}
	return exitOK
}

func (a *app) listHistory() int {
	store, err := history.Open(historyPath(a.settings), a.settings.History.MaxEntries)
	if err != nil {
		fmt.Fprintf(a.stderr, "loxterm: %v\n", err)
		return exitIO
	}
	defer func() {
		_ = store.Close()
	}()

	entries, err := store.Recent(a.ctx, historyListSize)
	if err != nil {
		fmt.Fprintf(a.stderr, "loxterm: %v\n", err)
		return exitIO
	}

	p := theme.NewPainter(a.theme, theme.NewRenderer(a.stdout, a.settings.Color))
	header := p.Style(func(t theme.Theme) lipgloss.Style { return t.Header })
	fmt.Fprintln(a.stdout, header.Render(fmt.Sprintf("Recent runs (%s)", store.Path())))
	if len(entries) == 0 {
		hint := p.Style(func(t theme.Theme) lipgloss.Style { return t.Hint })
		fmt.Fprintln(a.stdout, hint.Render("no runs recorded yet"))
		return exitOK
	}
	ok := p.Style(func(t theme.Theme) lipgloss.Style { return t.Success })
	bad := p.Style(func(t theme.Theme) lipgloss.Style { return t.Error })
	for _, e := range entries {
		style := ok
		if e.Status() != "ok" {
			style = bad
		}
		fmt.Fprintln(a.stdout, style.Render(e.Line()))
	}
	return exitOK
}

func (a *app) clearHistory() int {
	store, err := history.Open(historyPath(a.settings), a.settings.History.MaxEntries)
	if err != nil {
		fmt.Fprintf(a.stderr, "loxterm: %v\n", err)
		return exitIO
	}
	defer func() {
		_ = store.Close()
	}()

	n, err := store.Prune(a.ctx, 0)
	if err != nil {
		fmt.Fprintf(a.stderr, "loxterm: %v\n", err)
		return exitIO
	}
	fmt.Fprintf(a.stdout, "removed %d runs from %s\n", n, store.Path())
	return exitOK
}

// listThemes prints the catalog, marking the theme in use. A name that is
// only a syntax style is noted below the list.
func (a *app) listThemes() int {
	p := theme.NewPainter(a.theme, theme.NewRenderer(a.stdout, a.settings.Color))
	header := p.Style(func(t theme.Theme) lipgloss.Style { return t.Header })
	hint := p.Style(func(t theme.Theme) lipgloss.Style { return t.Hint })
	frame := p.Style(func(t theme.Theme) lipgloss.Style { return t.Frame })

	current, found := a.themes.Lookup(a.settings.Theme)
	rows := make([]string, 0, len(a.themes.All()))
	for _, def := range a.themes.All() {
		mark := " "
		if found && def.Key == current.Key {
			mark = "*"
		}
		origin := "builtin"
		if !def.Builtin() {
			origin = filepath.Base(def.Path)
		}
		about := def.Metadata.Description
		if def.Metadata.Author != "" {
			about = strings.TrimSpace(about + " by " + def.Metadata.Author)
		}
		rows = append(rows, fmt.Sprintf("%s %-14s %-18s %-16s %s", mark, def.Key, def.DisplayName, origin, hint.Render(about)))
	}

	fmt.Fprintln(a.stdout, header.Render(fmt.Sprintf("Themes (%s)", config.ThemeDir())))
	fmt.Fprintln(a.stdout, frame.Render(strings.Join(rows, "\n")))
	if !found {
		fmt.Fprintln(a.stdout, hint.Render(fmt.Sprintf("using syntax style %q on the default theme", a.theme.Syntax)))
	}
	return exitOK
}

func (a *app) repl() int {
	keys, _, err := bindings.Load(config.Dir())
	if err != nil {
		log.Printf("bindings load error: %v", err)
		keys = bindings.DefaultMap()
	}
	model := repl.New(repl.Config{
		Theme:        a.theme,
		Renderer:     theme.NewRenderer(a.stdout, a.settings.Color),
		Prompt:       a.settings.Prompt,
		MaxCallDepth: a.settings.MaxCallDepth,
		Keys:         keys,
		Telemetry:    a.telemetry,
		History:      a.recorder(),
		Context:      a.ctx,
	})
	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithInput(a.stdin),
		tea.WithOutput(a.stdout),
	)
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		return exitIO
	}
	return exitOK
}

// recorder keeps a nil store from turning into a non-nil interface.
func (a *app) recorder() repl.Recorder {
	if a.history == nil {
		return nil
	}
	return a.history
}
