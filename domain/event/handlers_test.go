package event

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestQueueDepthHandler_WarnsOnLowCapacity(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	h := NewQueueDepthHandler(bufferLogger(&buf), 10)

	// When the queue only has 5 free slots
	h.Handle(New(QueueDepthType, QueueDepth{QueueName: "payments", Capacity: 100, Length: 95}))

	// Then a warning is logged
	req.Contains(buf.String(), "level=WARN")
	req.Contains(buf.String(), "capacity left : 5")
}

func TestQueueDepthHandler_NoWarningWhenPlentyLeft(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	h := NewQueueDepthHandler(bufferLogger(&buf), 10)

	h.Handle(New(QueueDepthType, QueueDepth{QueueName: "payments", Capacity: 100, Length: 3}))

	req.NotContains(buf.String(), "level=WARN")
}

func TestQueueDepthHandler_InvalidPayload(t *testing.T) {
	var buf bytes.Buffer
	h := NewQueueDepthHandler(bufferLogger(&buf), 10)

	h.Handle(Event{Type: QueueDepthType, Payload: "not a depth"})

	require.Contains(t, buf.String(), "level=ERROR")
}

func TestPaymentsAggregatedHandler_LogsSummary(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	h := NewPaymentsAggregatedHandler(bufferLogger(&buf))

	h.Handle(New(PaymentsAggregatedType, PaymentsAggregated{
		Count:    2,
		Total:    decimal.RequireFromString("30.50"),
		Duration: time.Millisecond,
	}))

	req.Contains(buf.String(), "count=2")
	req.Contains(buf.String(), "total=30.5")
}

func TestPaymentsAggregatedHandler_IgnoresOtherTypes(t *testing.T) {
	var buf bytes.Buffer
	h := NewPaymentsAggregatedHandler(bufferLogger(&buf))

	h.Handle(New(QueueDepthType, QueueDepth{}))

	require.Empty(t, buf.String())
}

func TestWorkerRestartedHandler_CountsRestarts(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	counter := NewCounter()
	h := NewWorkerRestartedHandler(bufferLogger(&buf), counter)

	h.Handle(New(RestartedAfterPanicType, WorkerRestartedAfterPanic{WorkerName: "QueueDepthWorker"}))
	h.Handle(New(RestartedAfterPanicType, WorkerRestartedAfterPanic{WorkerName: "QueueDepthWorker"}))

	req.Equal(2, counter.Get(RestartedAfterPanicType))
	req.Contains(buf.String(), "total: 2")
}
