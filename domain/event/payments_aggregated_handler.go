package event

import (
	"log/slog"
	"payment-engine/errors"
)

// PaymentsAggregatedHandler logs the final summary produced by the aggregator.
type PaymentsAggregatedHandler struct {
	log *slog.Logger
}

func NewPaymentsAggregatedHandler(log *slog.Logger) *PaymentsAggregatedHandler {
	return &PaymentsAggregatedHandler{log: log}
}

func (h *PaymentsAggregatedHandler) Handle(e Event) {
	if e.Type != PaymentsAggregatedType {
		return
	}
	payload, ok := e.Payload.(PaymentsAggregated)
	if !ok {
		h.log.Error(errors.ErrInvalidPayload.Error())
		return
	}
	h.log.Info("telemetry: payments aggregated",
		"count", payload.Count,
		"total", payload.Total.String(),
		"duration_ms", payload.Duration.Milliseconds(),
	)
}
