package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"payment-engine/contract"
	"payment-engine/domain"
	"payment-engine/domain/event"
	"payment-engine/internal"
	"payment-engine/runtime"
	"payment-engine/runtime/workers"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the pipeline, produces the synthetic payments and prints the total.
// Keeping it out of main lets every defer run before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	config, err := internal.Load()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	baseAmount, err := config.BaseAmountDecimal()
	if err != nil {
		return err
	}

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Pipeline
	telemetryChan := make(chan event.Event, config.TelemetryBufferSize)
	supervisor := workers.NewSupervisor(log, telemetryChan, config.RestartInterval)
	pipeline := runtime.NewPipeline(log, supervisor, telemetryChan,
		config.QueueCapacity, config.MetricInterval, config.LowCapacityThreshold)

	sender, err := pipeline.Start(ctx)
	if err != nil {
		return fmt.Errorf("pipeline failed to start: %w", err)
	}
	defer pipeline.Stop()

	// 4. Produce
	produce(ctx, log, sender, syntheticPayments(config.PaymentCount, config.PaymentReceiver, baseAmount))

	// 5. Join
	summary, err := pipeline.Wait(ctx)
	if err != nil {
		return fmt.Errorf("aggregation failed: %w", err)
	}

	fmt.Printf("Total payments processed: %s\n", summary.Total.StringFixed(2))
	return nil
}

// produce sends payments in order, stops at the first failed send and always
// releases the sender. It returns how many payments were accepted.
func produce(ctx context.Context, log *slog.Logger, sender contract.PaymentSender, payments []domain.Payment) int {
	defer func() { _ = sender.Close() }()
	for i, payment := range payments {
		if err := sender.Send(ctx, payment); err != nil {
			log.Error("Failed to send payment", "sender", payment.Sender, "error", err)
			return i
		}
	}
	return len(payments)
}

// syntheticPayments builds count payments from user_i to receiver, payment i
// carrying base + i.
func syntheticPayments(count int, receiver string, base decimal.Decimal) []domain.Payment {
	return lo.Times(count, func(i int) domain.Payment {
		return domain.NewPayment(fmt.Sprintf("user_%d", i), receiver, base.Add(decimal.NewFromInt(int64(i))))
	})
}
