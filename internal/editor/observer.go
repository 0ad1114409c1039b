package editor

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/pmo/internal/domain"
)

// SaveEvent describes one completed save attempt.
type SaveEvent struct {
	Mode     domain.EditorMode
	EntityID int64
	Result   SaveResult
	Err      error
	Duration time.Duration
}

// Observer is notified after every save attempt, successful or not.
type Observer interface {
	ObserveSave(ctx context.Context, event SaveEvent)
}

// NoopObserver ignores all events.
type NoopObserver struct{}

func (NoopObserver) ObserveSave(context.Context, SaveEvent) {}

// Observers fans an event out to several observers in order.
type Observers []Observer

func (o Observers) ObserveSave(ctx context.Context, event SaveEvent) {
	for _, obs := range o {
		if obs != nil {
			obs.ObserveSave(ctx, event)
		}
	}
}

type logObserver struct {
	logger *slog.Logger
}

// NewLogObserver logs save outcomes.
func NewLogObserver(logger *slog.Logger) Observer {
	if logger == nil {
		return NoopObserver{}
	}
	return &logObserver{logger: logger}
}

func (o *logObserver) ObserveSave(ctx context.Context, event SaveEvent) {
	attrs := []any{
		"mode", event.Mode,
		"entity_id", event.EntityID,
		"creates", event.Result.Creates,
		"updates", event.Result.Updates,
		"deletes", event.Result.Deletes,
		"duration_ms", event.Duration.Milliseconds(),
	}
	if event.Err != nil {
		o.logger.ErrorContext(ctx, "allocation_save", append(attrs, "error", event.Err.Error())...)
		return
	}
	o.logger.InfoContext(ctx, "allocation_save", attrs...)
}
