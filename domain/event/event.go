package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Type string

const (
	RestartedAfterPanicType Type = "WORKER_RESTARTED_AFTER_PANIC"
	QueueDepthType          Type = "QUEUE_DEPTH"
	PaymentsAggregatedType  Type = "PAYMENTS_AGGREGATED"
)

// Event is a technical event carried on the telemetry channel.
// Payload holds one of the structs below, matching Type.
type Event struct {
	ID        uuid.UUID
	Type      Type
	CreatedAt time.Time
	Payload   any
}

func New(t Type, payload any) Event {
	return Event{
		ID:        uuid.New(),
		Type:      t,
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
	}
}

type WorkerRestartedAfterPanic struct {
	WorkerName string
	Err        error
}

type QueueDepth struct {
	QueueName string
	Capacity  int
	Length    int
}

type PaymentsAggregated struct {
	Count    int
	Total    decimal.Decimal
	Duration time.Duration
}
