package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"

	"github.com/unkn0wn-root/loxterm/internal/config"
	"github.com/unkn0wn-root/loxterm/internal/highlight"
	"github.com/unkn0wn-root/loxterm/internal/history"
	"github.com/unkn0wn-root/loxterm/internal/telemetry"
	"github.com/unkn0wn-root/loxterm/internal/theme"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	exitOK      = 0
	exitUsage   = 64
	exitData    = 65
	exitRuntime = 70
	exitIO      = 74
)

var usageText = heredoc.Doc(`
	Usage: loxterm [flags] [script | -]

	Runs a script, inline source given with -e, or standard input.
	Without a script and with a terminal on stdin an interactive prompt starts.

	Flags:
`)

type options struct {
	expr         string
	tokens       bool
	ast          bool
	highlight    bool
	listHistory  bool
	clearHistory bool
	noHistory    bool
	listThemes   bool
	saveSettings bool
	showVersion  bool
	color        string
	themeName    string
	maxDepth     int
	otelEndpoint string
	otelInsecure bool
	otelService  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}

func run(
	ctx context.Context,
	args []string,
	stdin io.Reader,
	stdout, stderr io.Writer,
	getenv func(string) string,
) int {
	telemetryCfg := telemetry.ConfigFromEnv(getenv)

	var opts options
	fs := flag.NewFlagSet("loxterm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = io.WriteString(stderr, usageText)
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.expr, "e", "", "Run the given source instead of a script")
	fs.BoolVar(&opts.tokens, "tokens", false, "Print the token stream and exit")
	fs.BoolVar(&opts.ast, "ast", false, "Print the parsed statements and exit")
	fs.BoolVar(&opts.highlight, "highlight", false, "Print the source syntax highlighted and exit")
	fs.BoolVar(&opts.listHistory, "history", false, "List recent runs and exit")
	fs.BoolVar(&opts.clearHistory, "history-clear", false, "Remove every recorded run and exit")
	fs.BoolVar(&opts.noHistory, "no-history", false, "Do not record this run")
	fs.BoolVar(&opts.listThemes, "themes", false, "List available themes and exit")
	fs.BoolVar(
		&opts.saveSettings,
		"save-settings",
		false,
		"Write the settings, with -color, -theme and -max-depth applied, and exit",
	)
	fs.BoolVar(&opts.showVersion, "version", false, "Show loxterm version")
	fs.StringVar(&opts.color, "color", "", "Color output: auto, always or never")
	fs.StringVar(&opts.themeName, "theme", "", "Theme name or chroma style")
	fs.IntVar(&opts.maxDepth, "max-depth", 0, "Maximum call depth before a stack overflow")
	fs.StringVar(
		&opts.otelEndpoint,
		"trace-otel-endpoint",
		telemetryCfg.Endpoint,
		"OTLP collector endpoint for run traces",
	)
	fs.BoolVar(
		&opts.otelInsecure,
		"trace-otel-insecure",
		telemetryCfg.Insecure,
		"Disable TLS for OTLP trace export",
	)
	fs.StringVar(
		&opts.otelService,
		"trace-otel-service",
		telemetryCfg.ServiceName,
		"Override service.name resource attribute for exported spans",
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if opts.showVersion {
		fmt.Fprintf(stdout, "loxterm %s\n", version)
		fmt.Fprintf(stdout, "  commit: %s\n", commit)
		fmt.Fprintf(stdout, "  built:  %s\n", date)
		if sum, err := executableChecksum(); err == nil {
			fmt.Fprintf(stdout, "  sha256: %s\n", sum)
		} else {
			fmt.Fprintf(stdout, "  sha256: unavailable (%v)\n", err)
		}
		return exitOK
	}

	if fs.NArg() > 1 || (opts.expr != "" && fs.NArg() > 0) {
		fmt.Fprintln(stderr, "loxterm: expected at most one script, or -e without a script")
		fs.Usage()
		return exitUsage
	}

	settings, handle, loadErr := config.LoadSettings()
	if loadErr != nil {
		log.Printf("settings load error: %v", loadErr)
		settings = config.DefaultSettings()
	}
	if opts.color != "" {
		mode, ok := config.ParseColorMode(opts.color)
		if !ok {
			fmt.Fprintf(stderr, "loxterm: invalid -color %q\n", opts.color)
			return exitUsage
		}
		settings.Color = mode
	}
	if opts.themeName != "" {
		settings.Theme = opts.themeName
	}
	if opts.maxDepth != 0 {
		if opts.maxDepth < 0 {
			fmt.Fprintf(stderr, "loxterm: invalid -max-depth %d\n", opts.maxDepth)
			return exitUsage
		}
		settings.MaxCallDepth = opts.maxDepth
	}
	settings = config.NormaliseSettings(settings)

	if opts.saveSettings {
		if loadErr != nil {
			fmt.Fprintf(stderr, "loxterm: settings not saved: %v\n", loadErr)
			return exitIO
		}
		if err := config.SaveSettings(settings, handle); err != nil {
			fmt.Fprintf(stderr, "loxterm: %v\n", err)
			return exitIO
		}
		fmt.Fprintf(stdout, "settings saved to %s\n", handle.Path)
		return exitOK
	}

	themes := loadThemes()
	a := &app{
		ctx:      ctx,
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
		settings: settings,
		themes:   themes,
		theme:    resolveTheme(themes, settings.Theme),
	}

	switch {
	case opts.listHistory:
		return a.listHistory()
	case opts.clearHistory:
		return a.clearHistory()
	case opts.listThemes:
		return a.listThemes()
	}

	src, err := readSource(opts, fs.Args(), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "loxterm: %v\n", err)
		return exitIO
	}

	switch {
	case opts.tokens:
		return a.dumpTokens(src)
	case opts.ast:
		return a.dumpAST(src)
	case opts.highlight:
		return a.printHighlighted(src)
	}

	telemetryCfg.Endpoint = strings.TrimSpace(opts.otelEndpoint)
	telemetryCfg.Insecure = opts.otelInsecure
	telemetryCfg.ServiceName = strings.TrimSpace(opts.otelService)
	telemetryCfg.Version = version

	provider, err := telemetry.New(telemetryCfg)
	if err != nil {
		if telemetryCfg.Enabled() {
			log.Printf("telemetry init error: %v", err)
		}
		provider = telemetry.Noop()
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := provider.Shutdown(ctx); shutdownErr != nil {
			log.Printf("telemetry shutdown: %v", shutdownErr)
		}
	}()
	a.telemetry = provider

	if settings.History.Enabled && !opts.noHistory {
		store, err := history.Open(historyPath(settings), settings.History.MaxEntries)
		if err != nil {
			log.Printf("history open error: %v", err)
		} else {
			defer func() {
				if err := store.Close(); err != nil {
					log.Printf("history close: %v", err)
				}
			}()
			a.history = store
		}
	}

	if src == nil {
		return a.repl()
	}
	return a.execute(*src)
}

// source is a program read before execution. A nil *source means the
// interactive prompt.
type source struct {
	name string
	mode string
	path string
	text string
}

func readSource(opts options, args []string, stdin io.Reader) (*source, error) {
	if opts.expr != "" {
		return &source{name: "-e", mode: "eval", text: opts.expr}, nil
	}
	if len(args) == 0 && isTerminal(stdin) {
		if opts.tokens || opts.ast || opts.highlight {
			return nil, errors.New("no script given")
		}
		return nil, nil
	}
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return &source{name: "stdin", mode: "stdin", text: string(data)}, nil
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &source{
		name: filepath.Base(path),
		mode: "file",
		path: path,
		text: string(data),
	}, nil
}

func loadThemes() theme.Catalog {
	catalog, err := theme.LoadCatalog([]string{config.ThemeDir()})
	if err != nil {
		log.Printf("theme load error: %v", err)
	}
	return catalog
}

func resolveTheme(catalog theme.Catalog, name string) theme.Theme {
	th, ok := catalog.Resolve(name)
	if !ok && !highlight.HasStyle(th.Syntax) {
		log.Printf("theme %q not found; using built-in default", name)
		th = theme.DefaultTheme()
	}
	return th
}

func historyPath(s config.Settings) string {
	if s.History.Path != "" {
		return s.History.Path
	}
	return config.HistoryPath()
}

func executableChecksum() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", err
	}
	f, err := os.Open(exe)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
