package api

import (
	"context"
	"log/slog"
)

// RequestEvent records metadata about a single API request.
type RequestEvent struct {
	Method     string
	Path       string
	StatusCode int
	LatencyMs  int64
	Err        error
}

// Observer receives events about API requests for logging and metrics.
type Observer interface {
	OnRequestComplete(ctx context.Context, event RequestEvent)
}

// LogObserver writes request events to a structured logger.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs requests at debug level and
// failures at warn level.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnRequestComplete(ctx context.Context, event RequestEvent) {
	attrs := []any{
		"method", event.Method,
		"path", event.Path,
		"status", event.StatusCode,
		"latency_ms", event.LatencyMs,
	}
	if event.Err != nil {
		o.logger.WarnContext(ctx, "api_request", append(attrs, "error", event.Err.Error())...)
		return
	}
	o.logger.DebugContext(ctx, "api_request", attrs...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnRequestComplete(context.Context, RequestEvent) {}
