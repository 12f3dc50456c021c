package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/tripreel/pkg/domain"
)

// Chain merges hooks so that each callback runs in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var submits []func(context.Context, *domain.SubmitEvent)
	var resolves []func(context.Context, *domain.ResolveEvent)
	for _, h := range hooks {
		if h.OnSubmit != nil {
			submits = append(submits, h.OnSubmit)
		}
		if h.OnResolve != nil {
			resolves = append(resolves, h.OnResolve)
		}
	}

	var out domain.LifecycleHooks
	if len(submits) > 0 {
		out.OnSubmit = func(ctx context.Context, e *domain.SubmitEvent) {
			for _, fn := range submits {
				fn(ctx, e)
			}
		}
	}
	if len(resolves) > 0 {
		out.OnResolve = func(ctx context.Context, e *domain.ResolveEvent) {
			for _, fn := range resolves {
				fn(ctx, e)
			}
		}
	}
	return out
}

// LogHooks writes one debug record per lifecycle event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSubmit: func(ctx context.Context, e *domain.SubmitEvent) {
			logger.DebugContext(ctx, "hook:submit", "token", e.Token, "url", e.URL)
		},
		OnResolve: func(ctx context.Context, e *domain.ResolveEvent) {
			attrs := []any{
				"token", e.Token,
				"phase", e.Phase,
				"duration", e.Duration,
			}
			if e.Phase == domain.PhaseFailed {
				attrs = append(attrs, "kind", e.Kind.String(), "message", e.Message)
			} else {
				attrs = append(attrs, "days", e.Days)
			}
			if e.Stale {
				attrs = append(attrs, "stale", true)
			}
			logger.DebugContext(ctx, "hook:resolve", attrs...)
		},
	}
}
