package workers

import (
	"context"
	"log/slog"
	"payment-engine/domain"
	"payment-engine/domain/event"
	"payment-engine/errors"
	"payment-engine/mocks"
	"payment-engine/queue"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func merchantPayment(i int, amount decimal.Decimal) domain.Payment {
	return domain.NewPayment("user_"+strconv.Itoa(i), "merchant", amount)
}

func sendAll(t *testing.T, tx *queue.Sender, payments []domain.Payment) {
	t.Helper()
	for _, p := range payments {
		require.NoError(t, tx.Send(context.Background(), p))
	}
}

func TestProcessPayments_TwoPayments(t *testing.T) {
	req := require.New(t)
	tx, rx, err := queue.New(100)
	req.NoError(err)

	// Given two payments of 10.50 and 20.00
	sendAll(t, tx, []domain.Payment{
		domain.NewPayment("user_1", "merchant", decimal.RequireFromString("10.50")),
		domain.NewPayment("user_2", "merchant", decimal.RequireFromString("20.00")),
	})
	req.NoError(tx.Close())

	// When the aggregator drains the queue
	total, err := ProcessPayments(context.Background(), rx)

	// Then the total is exactly 30.50
	req.NoError(err)
	req.True(total.Equal(decimal.RequireFromString("30.50")), "got %s", total)
}

func TestProcessPayments_TenPayments(t *testing.T) {
	req := require.New(t)
	tx, rx, err := queue.New(100)
	req.NoError(err)

	// Given amounts 10.5 + i for i in 0..10
	payments := lo.Times(10, func(i int) domain.Payment {
		return merchantPayment(i, decimal.RequireFromString("10.5").Add(decimal.NewFromInt(int64(i))))
	})
	sendAll(t, tx, payments)
	req.NoError(tx.Close())

	total, err := ProcessPayments(context.Background(), rx)

	req.NoError(err)
	req.True(total.Equal(decimal.RequireFromString("150.00")), "got %s", total)
}

func TestProcessPayments_NoPayments(t *testing.T) {
	req := require.New(t)
	tx, rx, err := queue.New(10)
	req.NoError(err)
	req.NoError(tx.Close())

	total, err := ProcessPayments(context.Background(), rx)

	req.NoError(err)
	req.True(total.Equal(decimal.Zero))
}

func TestProcessPayments_QueueClosedBeforeAggregatorStarts(t *testing.T) {
	req := require.New(t)
	tx, rx, err := queue.New(10)
	req.NoError(err)

	// Given every payment is sent and the queue closed first
	sendAll(t, tx, []domain.Payment{
		merchantPayment(1, decimal.RequireFromString("1.25")),
		merchantPayment(2, decimal.RequireFromString("2.75")),
	})
	req.NoError(tx.Close())

	// When the aggregator only runs afterwards
	summary, err := Aggregate(context.Background(), rx)

	// Then nothing is lost
	req.NoError(err)
	req.Equal(2, summary.Count)
	req.True(summary.Total.Equal(decimal.NewFromInt(4)))
}

func TestAggregate_ConcurrentProducers(t *testing.T) {
	req := require.New(t)
	numProducers := 10
	perProducer := 300
	tx, rx, err := queue.New(32)
	req.NoError(err)

	done := make(chan struct{})
	var summary domain.Summary
	var aggErr error
	go func() {
		defer close(done)
		summary, aggErr = Aggregate(context.Background(), rx)
	}()

	// Given producers sending 0.01, 0.02 ... concurrently
	var wg sync.WaitGroup
	expected := decimal.Zero
	for i := 0; i < numProducers; i++ {
		clone, err := tx.Clone()
		req.NoError(err)
		amount := decimal.New(int64(i+1), -2)
		expected = expected.Add(amount.Mul(decimal.NewFromInt(int64(perProducer))))
		wg.Add(1)
		go func(s *queue.Sender, amount decimal.Decimal) {
			defer wg.Done()
			defer s.Close()
			for j := 0; j < perProducer; j++ {
				if err := s.Send(context.Background(), domain.NewPayment("producer", "merchant", amount)); err != nil {
					t.Errorf("send failed: %v", err)
					return
				}
			}
		}(clone, amount)
	}
	req.NoError(tx.Close())
	wg.Wait()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		req.FailNow("aggregator did not finish")
	}

	// Then every payment is summed exactly once
	req.NoError(aggErr)
	req.Equal(numProducers*perProducer, summary.Count)
	req.True(summary.Total.Equal(expected), "got %s, want %s", summary.Total, expected)
}

func TestAggregate_OrderDoesNotMatter(t *testing.T) {
	req := require.New(t)
	amounts := []string{"0.10", "1000000.99", "3.333", "0.007", "42"}
	reversed := []string{"42", "0.007", "3.333", "1000000.99", "0.10"}

	run := func(order []string) decimal.Decimal {
		tx, rx, err := queue.New(len(order))
		req.NoError(err)
		sendAll(t, tx, lo.Map(order, func(a string, i int) domain.Payment {
			return merchantPayment(i, decimal.RequireFromString(a))
		}))
		req.NoError(tx.Close())
		total, err := ProcessPayments(context.Background(), rx)
		req.NoError(err)
		return total
	}

	forward := run(amounts)
	backward := run(reversed)

	req.True(forward.Equal(backward))
	req.True(forward.Equal(decimal.RequireFromString("1000046.43")))
}

func TestAggregate_CancelledDiscardsPartialTotal(t *testing.T) {
	req := require.New(t)
	tx, rx, err := queue.New(10)
	req.NoError(err)
	defer tx.Close()
	sendAll(t, tx, []domain.Payment{merchantPayment(1, decimal.NewFromInt(5))})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	// The sender is never released, so only cancellation ends the run
	summary, err := Aggregate(ctx, rx)

	req.ErrorIs(err, context.DeadlineExceeded)
	req.Equal(domain.Summary{}, summary)
}

func TestAggregate_OverflowIsFatal(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	rx := mocks.NewMockPaymentReceiver(ctrl)

	// Given a receiver yielding the max total then one more unit
	gomock.InOrder(
		rx.EXPECT().Receive(gomock.Any()).Return(merchantPayment(1, domain.MaxTotal), true, nil),
		rx.EXPECT().Receive(gomock.Any()).Return(merchantPayment(2, decimal.NewFromInt(1)), true, nil),
	)

	// When aggregating
	total, err := ProcessPayments(context.Background(), rx)

	// Then the run stops with an overflow and no total
	req.ErrorIs(err, errors.ErrTotalOverflow)
	req.True(total.Equal(decimal.Zero))
}

func TestAggregate_ReceiveErrorIsReturned(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	rx := mocks.NewMockPaymentReceiver(ctrl)

	rx.EXPECT().Receive(gomock.Any()).Return(domain.Payment{}, false, context.Canceled).Times(1)

	_, err := Aggregate(context.Background(), rx)

	req.ErrorIs(err, context.Canceled)
}

func TestAggregatorWorker_PublishesSummary(t *testing.T) {
	req := require.New(t)
	log := slog.New(slog.DiscardHandler)
	telemetryChan := make(chan event.Event, 1)
	tx, rx, err := queue.New(10)
	req.NoError(err)

	sendAll(t, tx, []domain.Payment{
		merchantPayment(1, decimal.RequireFromString("10.50")),
		merchantPayment(2, decimal.RequireFromString("20.00")),
	})
	req.NoError(tx.Close())

	w := NewAggregatorWorker(log, rx, telemetryChan)

	// When the worker runs to completion
	req.NoError(w.Run(context.Background()))

	// Then its summary is available
	req.Equal(2, w.Summary().Count)
	req.True(w.Summary().Total.Equal(decimal.RequireFromString("30.5")))

	// And a PAYMENTS_AGGREGATED event was published
	select {
	case evt := <-telemetryChan:
		req.Equal(event.PaymentsAggregatedType, evt.Type)
		payload, ok := evt.Payload.(event.PaymentsAggregated)
		req.True(ok)
		req.Equal(2, payload.Count)
		req.True(payload.Total.Equal(decimal.RequireFromString("30.5")))
	default:
		req.Fail("no telemetry event published")
	}
}

func TestAggregatorWorker_FullTelemetryChannelDoesNotBlock(t *testing.T) {
	req := require.New(t)
	log := slog.New(slog.DiscardHandler)
	// Given an unbuffered telemetry channel nobody reads
	telemetryChan := make(chan event.Event)
	tx, rx, err := queue.New(1)
	req.NoError(err)
	req.NoError(tx.Close())

	w := NewAggregatorWorker(log, rx, telemetryChan)

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("Run blocked on the telemetry channel")
	}
}
