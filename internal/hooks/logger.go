package hooks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tjfontaine/vaccine-proof-api/internal/core/domain"
	"github.com/tjfontaine/vaccine-proof-api/internal/core/ports"
)

// ErrorLogger returns an error-phase hook that logs the failing path, method
// and error. It never changes hc.Error.
func ErrorLogger(logger *slog.Logger) ports.Hook {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, hc *domain.HookContext) (*domain.HookContext, error) {
		attrs := []slog.Attr{
			slog.String("path", hc.Path),
			slog.String("method", string(hc.Method)),
		}
		if hc.ID != "" {
			attrs = append(attrs, slog.String("id", hc.ID))
		}
		if hc.Error != nil {
			attrs = append(attrs, slog.String("error", hc.Error.Error()))
		}

		logger.LogAttrs(ctx, slog.LevelError,
			fmt.Sprintf("error in %s calling %s method", hc.Path, hc.Method), attrs...)
		return hc, nil
	}
}
