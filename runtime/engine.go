// Package runtime spawns the aggregator and wires it with the queue and the
// supervised observability workers. It holds no business rule of its own.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"payment-engine/contract"
	"payment-engine/domain"
	"payment-engine/domain/event"
	"payment-engine/errors"
	"payment-engine/runtime/workers"

	"github.com/shopspring/decimal"
)

// Handle is the join side of a spawned aggregator.
type Handle struct {
	done    chan struct{}
	summary domain.Summary
	err     error
}

// Spawn runs the aggregator over rx in its own goroutine.
// telemetryChan may be nil.
func Spawn(ctx context.Context, log *slog.Logger, rx contract.PaymentReceiver, telemetryChan chan<- event.Event) *Handle {
	h := &Handle{done: make(chan struct{})}
	worker := workers.NewAggregatorWorker(log, rx, telemetryChan)

	go func() {
		defer close(h.done)
		defer func() {
			if r := recover(); r != nil {
				h.err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
			}
		}()
		if err := worker.Run(ctx); err != nil {
			h.err = err
			return
		}
		h.summary = worker.Summary()
	}()
	return h
}

// Done is closed once the aggregator has returned.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Summary blocks until the aggregator returns, or ctx ends.
func (h *Handle) Summary(ctx context.Context) (domain.Summary, error) {
	select {
	case <-h.done:
		return h.summary, h.err
	case <-ctx.Done():
		return domain.Summary{}, ctx.Err()
	}
}

// Wait joins the aggregator and returns the final total.
func (h *Handle) Wait(ctx context.Context) (decimal.Decimal, error) {
	summary, err := h.Summary(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return summary.Total, nil
}
