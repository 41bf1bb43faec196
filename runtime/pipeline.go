package runtime

import (
	"context"
	"log/slog"
	"payment-engine/contract"
	"payment-engine/domain"
	"payment-engine/domain/event"
	"payment-engine/errors"
	"payment-engine/queue"
	"payment-engine/runtime/workers"
	"sync"
	"time"
)

const paymentQueueName = "payments"

// Pipeline owns one payment queue, the aggregator draining it and the
// supervised workers observing it.
type Pipeline struct {
	mu                   sync.Mutex
	log                  *slog.Logger
	supervisor           contract.ISupervisor
	telemetryEvents      chan event.Event
	capacity             int
	metricInterval       time.Duration
	lowCapacityThreshold int

	receiver       *queue.Receiver
	telemetry      *workers.TelemetryWorker
	handle         *Handle
	cancel         context.CancelFunc
	supervisorDone chan struct{}
}

func NewPipeline(log *slog.Logger, supervisor contract.ISupervisor, telemetryEvents chan event.Event,
	capacity int, metricInterval time.Duration, lowCapacityThreshold int) *Pipeline {
	return &Pipeline{
		log:                  log,
		supervisor:           supervisor,
		telemetryEvents:      telemetryEvents,
		capacity:             capacity,
		metricInterval:       metricInterval,
		lowCapacityThreshold: lowCapacityThreshold,
	}
}

// Start creates the queue, spawns the aggregator and starts the supervisor.
// The returned sender is the first producer handle; clone it for extra producers
// and close every handle to let the aggregator finish.
func (p *Pipeline) Start(ctx context.Context) (*queue.Sender, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle != nil {
		return nil, errors.ErrAlreadyStarted
	}

	tx, rx, err := queue.New(p.capacity)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.receiver = rx
	p.cancel = cancel
	p.supervisorDone = make(chan struct{})
	p.telemetry = workers.NewTelemetryWorker(p.log, p.telemetryEvents, p.handlers())

	p.supervisor.Add(
		workers.NewQueueDepthWorker(p.log,
			[]workers.NamedGauge{{Name: paymentQueueName, Gauge: rx}},
			p.telemetryEvents, p.metricInterval),
		p.telemetry,
	)

	go func() {
		defer close(p.supervisorDone)
		p.supervisor.Run(runCtx)
	}()

	p.log.Info("Starting payment pipeline", "capacity", p.capacity)
	p.handle = Spawn(runCtx, p.log, rx, p.telemetryEvents)
	return tx, nil
}

func (p *Pipeline) handlers() []event.Handler {
	return []event.Handler{
		event.NewQueueDepthHandler(p.log, p.lowCapacityThreshold),
		event.NewPaymentsAggregatedHandler(p.log),
		event.NewWorkerRestartedHandler(p.log, event.NewCounter()),
	}
}

// Wait joins the aggregator, then shuts the pipeline down.
func (p *Pipeline) Wait(ctx context.Context) (domain.Summary, error) {
	p.mu.Lock()
	handle := p.handle
	p.mu.Unlock()
	if handle == nil {
		return domain.Summary{}, errors.ErrNotStarted
	}

	summary, err := handle.Summary(ctx)
	p.Stop()
	return summary, err
}

// Stop cancels the aggregator if it is still running, stops the supervised
// workers and drops the receiver so remaining producers get ErrChannelClosed.
// Only the first call does anything.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	cancel, done, rx, telemetry := p.cancel, p.supervisorDone, p.receiver, p.telemetry
	p.cancel = nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}

	cancel()
	<-done
	// The telemetry worker may have been cancelled before its first run,
	// so events still buffered (the aggregation summary) are handled here.
	telemetry.Drain()
	rx.Close()
	p.log.Info("Payment pipeline stopped")
}
