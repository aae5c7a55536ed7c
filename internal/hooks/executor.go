package hooks

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tjfontaine/vaccine-proof-api/internal/core/domain"
	"github.com/tjfontaine/vaccine-proof-api/internal/core/ports"
)

const tracerName = "github.com/tjfontaine/vaccine-proof-api/internal/hooks"

// CoreFunc is the service method wrapped by the hook chain.
type CoreFunc func(ctx context.Context, hc *domain.HookContext) (any, error)

// Executor runs hook chains from a Table around a core service call.
type Executor struct {
	table  *Table
	tracer trace.Tracer
	logger *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithTracerProvider sets the provider used for phase spans. Defaults to the
// global provider.
func WithTracerProvider(tp trace.TracerProvider) ExecutorOption {
	return func(e *Executor) {
		e.tracer = tp.Tracer(tracerName)
	}
}

// WithLogger sets the logger used for executor debug messages.
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// NewExecutor creates an executor for the given table.
func NewExecutor(table *Table, opts ...ExecutorOption) *Executor {
	e := &Executor{
		table:  table,
		tracer: otel.Tracer(tracerName),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table returns the table the executor reads from.
func (e *Executor) Table() *Table {
	return e.table
}

// Run executes before hooks, core and after hooks for hc. On failure it runs
// the error hooks and returns the context together with hc.Error. The
// returned context is always hc.
func (e *Executor) Run(ctx context.Context, hc *domain.HookContext, core CoreFunc) (*domain.HookContext, error) {
	if err := e.runPhase(ctx, domain.PhaseBefore, hc); err != nil {
		return e.fail(ctx, hc, err)
	}

	if hc.Result == nil {
		result, err := core(ctx, hc)
		if err != nil {
			return e.fail(ctx, hc, err)
		}
		hc.Result = result
	} else {
		e.logger.DebugContext(ctx, "core call skipped, result set by before hook",
			slog.String("path", hc.Path),
			slog.String("method", string(hc.Method)))
	}

	if err := e.runPhase(ctx, domain.PhaseAfter, hc); err != nil {
		return e.fail(ctx, hc, err)
	}

	return hc, nil
}

// runPhase runs the before or after hooks for hc.Method, one at a time.
func (e *Executor) runPhase(ctx context.Context, phase domain.Phase, hc *domain.HookContext) error {
	hooks := e.table.Lookup(phase, hc.Method)
	hc.Phase = phase
	if len(hooks) == 0 {
		return nil
	}

	ctx, span := e.startSpan(ctx, phase, hc, len(hooks))
	defer span.End()

	for _, hook := range hooks {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		if err := apply(ctx, hook, hc); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	return nil
}

// fail records err on hc and runs the error hooks. Error hooks run even when
// ctx is already cancelled.
func (e *Executor) fail(ctx context.Context, hc *domain.HookContext, err error) (*domain.HookContext, error) {
	hc.Error = err
	hc.Result = nil
	hc.Phase = domain.PhaseError

	hooks := e.table.Lookup(domain.PhaseError, hc.Method)
	if len(hooks) == 0 {
		return hc, hc.Error
	}

	ctx, span := e.startSpan(context.WithoutCancel(ctx), domain.PhaseError, hc, len(hooks))
	defer span.End()
	span.RecordError(err)

	for _, hook := range hooks {
		if hookErr := apply(ctx, hook, hc); hookErr != nil {
			hc.Error = hookErr
			break
		}
	}

	if hc.Error != nil {
		span.SetStatus(codes.Error, hc.Error.Error())
		return hc, hc.Error
	}

	e.logger.DebugContext(ctx, "error recovered by error hook",
		slog.String("path", hc.Path),
		slog.String("method", string(hc.Method)),
		slog.String("error", err.Error()))
	return hc, nil
}

func (e *Executor) startSpan(ctx context.Context, phase domain.Phase, hc *domain.HookContext, count int) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "hooks."+string(phase), trace.WithAttributes(
		attribute.String("hook.path", hc.Path),
		attribute.String("hook.method", string(hc.Method)),
		attribute.Int("hook.count", count),
	))
}

// apply calls hook and folds a replacement context back into hc so the
// pointer seen by the caller never changes.
func apply(ctx context.Context, hook ports.Hook, hc *domain.HookContext) error {
	out, err := hook(ctx, hc)
	if err != nil {
		return err
	}
	if out != nil && out != hc {
		*hc = *out
	}
	return nil
}
