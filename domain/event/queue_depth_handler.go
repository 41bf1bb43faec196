package event

import (
	"fmt"
	"log/slog"
	"payment-engine/errors"
)

// QueueDepthHandler handles events reporting the depth of the payment queue.
// Useful for spotting producers that are about to be suspended on a full queue.
type QueueDepthHandler struct {
	log                  *slog.Logger
	lowCapacityThreshold int
}

func NewQueueDepthHandler(log *slog.Logger, lowCapacityThreshold int) *QueueDepthHandler {
	return &QueueDepthHandler{log: log, lowCapacityThreshold: lowCapacityThreshold}
}

func (h QueueDepthHandler) Handle(event Event) {
	switch event.Type {
	case QueueDepthType:
		payload, ok := event.Payload.(QueueDepth)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.log.Debug(fmt.Sprintf("Queue %s usage: %d / %d", payload.QueueName, payload.Length, payload.Capacity))
		if payload.Capacity <= 0 {
			return
		}
		capacityLeft := payload.Capacity - payload.Length
		if capacityLeft <= h.lowCapacityThreshold {
			h.log.Warn(fmt.Sprintf("queue %s capacity left : %d", payload.QueueName, capacityLeft))
		}
	}
}
