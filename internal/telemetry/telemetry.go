package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/unkn0wn-root/loxterm/internal/lox"
)

var (
	tracerName = "github.com/unkn0wn-root/loxterm/internal/telemetry"
	runModeKey = attribute.Key("loxterm.run.mode")
)

type Instrumenter interface {
	Start(ctx context.Context, info RunStart) (context.Context, RunSpan)
	Shutdown(ctx context.Context) error
}

// RunStart describes one program execution: a script file, an -e snippet,
// stdin or a single REPL line.
type RunStart struct {
	Name  string
	Mode  string
	Path  string
	Lines int
}

type RunResult struct {
	Err    error
	Result lox.Result
}

type RunSpan interface {
	RecordDiagnostic(d lox.Diagnostic)
	End(result RunResult)
}

type providerOptions struct {
	exporter       sdktrace.SpanExporter
	spanProcessors []sdktrace.SpanProcessor
}

type Option func(*providerOptions)

func WithSpanProcessor(proc sdktrace.SpanProcessor) Option {
	return func(opts *providerOptions) {
		if proc != nil {
			opts.spanProcessors = append(opts.spanProcessors, proc)
		}
	}
}

func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(opts *providerOptions) {
		if exp != nil {
			opts.exporter = exp
		}
	}
}

type manager struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	shutdown sync.Once
}

func New(cfg Config, opts ...Option) (Instrumenter, error) {
	builder := providerOptions{}
	for _, opt := range opts {
		opt(&builder)
	}

	if !cfg.Enabled() && builder.exporter == nil && len(builder.spanProcessors) == 0 {
		return Noop(), nil
	}

	res, err := resource.New(
		context.Background(),
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(buildResourceAttributes(cfg)...),
	)
	if err != nil {
		return nil, err
	}

	exporter := builder.exporter
	if exporter == nil && cfg.Enabled() {
		exporter, err = newExporter(cfg)
		if err != nil {
			return nil, err
		}
	}

	var tpOpts []sdktrace.TracerProviderOption
	tpOpts = append(tpOpts, sdktrace.WithResource(res))
	if exporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	}
	for _, proc := range builder.spanProcessors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(proc))
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)
	return &manager{tracer: tp.Tracer(tracerName), provider: tp}, nil
}

func (m *manager) Start(ctx context.Context, info RunStart) (context.Context, RunSpan) {
	ctx, span := m.tracer.Start(
		ctx,
		spanNameFor(info),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(buildSpanAttributes(info)...),
	)
	return ctx, &runSpan{span: span, started: time.Now()}
}

func (m *manager) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	var shutdownErr error
	m.shutdown.Do(func() {
		shutdownErr = m.provider.Shutdown(ctx)
	})
	return shutdownErr
}

type runSpan struct {
	span    trace.Span
	started time.Time
}

func (rs *runSpan) RecordDiagnostic(d lox.Diagnostic) {
	if rs == nil || rs.span == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("loxterm.diagnostic.kind", d.Kind.String()),
		attribute.String("loxterm.diagnostic.message", d.Msg),
	}
	if !d.Span.IsZero() {
		attrs = append(attrs,
			semconv.CodeLineNumber(d.Span.Start.Line),
			semconv.CodeColumn(d.Span.Start.Col),
		)
	}
	rs.span.AddEvent("loxterm.diagnostic", trace.WithAttributes(attrs...))
}

func (rs *runSpan) End(result RunResult) {
	if rs == nil || rs.span == nil {
		return
	}

	res := result.Result
	rs.span.SetAttributes(
		attribute.Int("loxterm.run.statements", res.Stmts),
		attribute.Int("loxterm.run.static_errors", res.Static),
		attribute.Int("loxterm.run.runtime_errors", res.Runtime),
		attribute.Int64("loxterm.run.duration_ms", time.Since(rs.started).Milliseconds()),
	)

	statusCode := codes.Ok
	statusMsg := "OK"
	switch {
	case result.Err != nil:
		rs.span.RecordError(result.Err)
		statusCode = codes.Error
		statusMsg = result.Err.Error()
	case res.Runtime > 0:
		statusCode = codes.Error
		statusMsg = fmt.Sprintf("%d runtime errors", res.Runtime)
	case res.Static > 0:
		statusCode = codes.Error
		statusMsg = fmt.Sprintf("%d static errors", res.Static)
	}

	rs.span.SetStatus(statusCode, statusMsg)
	rs.span.End()
}

func Noop() Instrumenter {
	return noopInstrumenter{}
}

type noopInstrumenter struct{}

type noopSpan struct{}

func (noopInstrumenter) Start(ctx context.Context, _ RunStart) (context.Context, RunSpan) {
	return ctx, noopSpan{}
}

func (noopInstrumenter) Shutdown(context.Context) error { return nil }

func (noopSpan) RecordDiagnostic(lox.Diagnostic) {}

func (noopSpan) End(RunResult) {}

func newExporter(cfg Config) (sdktrace.SpanExporter, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("telemetry endpoint is required")
	}

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clientOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		clientOpts = append(clientOpts, otlptracegrpc.WithHeaders(cfg.Headers))
	}

	client := otlptracegrpc.NewClient(clientOpts...)
	return otlptrace.New(ctx, client)
}

func buildResourceAttributes(cfg Config) []attribute.KeyValue {
	name := cfg.ServiceName
	if strings.TrimSpace(name) == "" {
		name = defaultServiceName
	}
	attrs := []attribute.KeyValue{
		semconv.ServiceName(name),
	}
	if strings.TrimSpace(cfg.Version) != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.Version))
	}
	return attrs
}

func buildSpanAttributes(info RunStart) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Int("loxterm.run.lines", info.Lines),
	}
	if mode := strings.TrimSpace(info.Mode); mode != "" {
		attrs = append(attrs, runModeKey.String(mode))
	}
	if path := strings.TrimSpace(info.Path); path != "" {
		attrs = append(attrs, semconv.CodeFilepath(path))
	}
	return attrs
}

func spanNameFor(info RunStart) string {
	if name := strings.TrimSpace(info.Name); name != "" {
		return "lox.run " + name
	}
	if mode := strings.TrimSpace(info.Mode); mode != "" {
		return "lox.run " + mode
	}
	return "lox.run"
}
