package workers

import (
	"context"
	"log/slog"
	"payment-engine/domain/event"
)

// TelemetryWorker hands every telemetry event to each handler in turn.
type TelemetryWorker struct {
	log           *slog.Logger
	telemetryChan <-chan event.Event
	handlers      []event.Handler
}

func NewTelemetryWorker(log *slog.Logger,
	telemetryChan <-chan event.Event,
	handlers []event.Handler) *TelemetryWorker {
	return &TelemetryWorker{
		log:           log,
		telemetryChan: telemetryChan,
		handlers:      handlers,
	}
}

func (w TelemetryWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.Drain()
			return nil
		case evt, ok := <-w.telemetryChan:
			if !ok {
				w.log.Debug("Telemetry channel is closed")
				return nil
			}
			w.handle(evt)
		}
	}
}

// Drain flushes whatever is already buffered so the last events of a run
// (the aggregation summary in particular) are not lost on shutdown.
// It never blocks.
func (w TelemetryWorker) Drain() {
	for {
		select {
		case evt, ok := <-w.telemetryChan:
			if !ok {
				return
			}
			w.handle(evt)
		default:
			return
		}
	}
}

func (w TelemetryWorker) handle(evt event.Event) {
	for _, h := range w.handlers {
		h.Handle(evt)
	}
}
