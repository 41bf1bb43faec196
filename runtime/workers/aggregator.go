package workers

import (
	"context"
	"fmt"
	"log/slog"
	"payment-engine/contract"
	"payment-engine/domain"
	"payment-engine/domain/event"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var _ contract.Worker = (*AggregatorWorker)(nil)

// ProcessPayments drains rx and returns the sum of every amount received
// before the closure signal.
func ProcessPayments(ctx context.Context, rx contract.PaymentReceiver) (decimal.Decimal, error) {
	summary, err := Aggregate(ctx, rx)
	if err != nil {
		return decimal.Zero, err
	}
	return summary.Total, nil
}

// Aggregate is ProcessPayments keeping the number of payments summed.
// A cancelled context discards the partial summary.
func Aggregate(ctx context.Context, rx contract.PaymentReceiver) (domain.Summary, error) {
	var summary domain.Summary
	for {
		p, ok, err := rx.Receive(ctx)
		if err != nil {
			return domain.Summary{}, err
		}
		if !ok {
			return summary, nil
		}
		if summary, err = summary.Add(p); err != nil {
			return domain.Summary{}, err
		}
	}
}

// AggregatorWorker runs Aggregate once and reports the outcome on the telemetry channel.
// It must never be restarted: a second run would start again from zero.
type AggregatorWorker struct {
	log           *slog.Logger
	receiver      contract.PaymentReceiver
	telemetryChan chan<- event.Event

	mu      sync.Mutex
	summary domain.Summary
}

func NewAggregatorWorker(log *slog.Logger, receiver contract.PaymentReceiver, telemetryChan chan<- event.Event) *AggregatorWorker {
	return &AggregatorWorker{
		log:           log,
		receiver:      receiver,
		telemetryChan: telemetryChan,
	}
}

func (w *AggregatorWorker) Run(ctx context.Context) error {
	start := time.Now()
	summary, err := Aggregate(ctx, w.receiver)
	if err != nil {
		w.log.Error("Aggregation stopped", "error", err)
		return err
	}

	w.mu.Lock()
	w.summary = summary
	w.mu.Unlock()

	w.log.Debug(fmt.Sprintf("Queue closed, %d payments aggregated", summary.Count))
	w.publish(event.New(event.PaymentsAggregatedType, event.PaymentsAggregated{
		Count:    summary.Count,
		Total:    summary.Total,
		Duration: time.Since(start),
	}))
	return nil
}

// Summary returns the final summary once Run has returned nil.
func (w *AggregatorWorker) Summary() domain.Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.summary
}

func (w *AggregatorWorker) publish(evt event.Event) {
	if w.telemetryChan == nil {
		return
	}
	select {
	case w.telemetryChan <- evt:
	default:
		w.log.Debug("Observability telemetry event lost")
	}
}
