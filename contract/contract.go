//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"payment-engine/domain"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes, avoiding the need for
// manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// PaymentSender is the producer side of the payment queue.
type PaymentSender interface {
	Send(ctx context.Context, p domain.Payment) error
	Close() error
}

// PaymentReceiver is the consumer side of the payment queue.
// ok == false is the closure signal, not an error.
type PaymentReceiver interface {
	Receive(ctx context.Context) (p domain.Payment, ok bool, err error)
}

// Gauge exposes the fill level of a bounded buffer without blocking.
type Gauge interface {
	Len() int
	Cap() int
}
