package event

import (
	"fmt"
	"log/slog"
	"payment-engine/errors"
)

// WorkerRestartedHandler handles events when a worker crashes and is restarted.
// It is triggered by the Supervisor after a panic or an error returned by Run.
type WorkerRestartedHandler struct {
	log     *slog.Logger
	counter *Counter
}

func NewWorkerRestartedHandler(log *slog.Logger, counter *Counter) *WorkerRestartedHandler {
	return &WorkerRestartedHandler{
		log:     log,
		counter: counter,
	}
}

func (h *WorkerRestartedHandler) Handle(event Event) {
	switch event.Type {
	case RestartedAfterPanicType:
		payload, ok := event.Payload.(WorkerRestartedAfterPanic)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter.Increment(RestartedAfterPanicType)
		h.log.Warn(fmt.Sprintf("Worker %s restarted, total: %d", payload.WorkerName, h.counter.Get(RestartedAfterPanicType)),
			"error", payload.Err)
	}
}
