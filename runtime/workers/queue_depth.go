package workers

import (
	"context"
	"log/slog"
	"payment-engine/contract"
	"payment-engine/domain/event"
	"time"
)

type NamedGauge struct {
	Name  string
	Gauge contract.Gauge
}

// QueueDepthWorker periodically reports the length and capacity of each gauge.
// Reading them never blocks, so this won't interfere with producers or the
// aggregator. It's okay if a sample is dropped occasionally because metrics
// are sampled periodically.
type QueueDepthWorker struct {
	log            *slog.Logger
	gauges         []NamedGauge
	telemetryChan  chan<- event.Event
	metricInterval time.Duration
}

func NewQueueDepthWorker(log *slog.Logger,
	gauges []NamedGauge, telemetryChan chan<- event.Event,
	metricInterval time.Duration) *QueueDepthWorker {
	return &QueueDepthWorker{
		log:            log,
		gauges:         gauges,
		telemetryChan:  telemetryChan,
		metricInterval: metricInterval,
	}
}

func (w QueueDepthWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping queue depth sampling")
			return nil
		case <-ticker.C:
			for _, g := range w.gauges {
				select {
				case <-ctx.Done():
					return nil
				case w.telemetryChan <- toQueueDepthEvent(g.Name, g.Gauge.Cap(), g.Gauge.Len()):
				default:
					w.log.Debug("Observability telemetry event lost")
				}
			}
		}
	}
}

func toQueueDepthEvent(name string, capacity, length int) event.Event {
	return event.New(event.QueueDepthType, event.QueueDepth{
		QueueName: name,
		Capacity:  capacity,
		Length:    length,
	})
}
