package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"payment-engine/contract"
	"payment-engine/domain"
	"payment-engine/domain/event"
	"payment-engine/runtime"
	"payment-engine/runtime/workers"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/shirou/gopsutil/process"
	"github.com/shopspring/decimal"
)

type runResult struct {
	run      int
	summary  domain.Summary
	expected domain.Summary
	duration time.Duration
	err      error
}

func (r runResult) ok() bool {
	return r.err == nil &&
		r.summary.Count == r.expected.Count &&
		r.summary.Total.Equal(r.expected.Total)
}

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("config loading failed %v", err)
	}
	logger := logs.GetLoggerFromString(cfg.LogLevel)

	// Payment i carries i cents, as in the throughput benchmark
	payments := lo.Times(cfg.Payments, func(i int) domain.Payment {
		return domain.NewPayment(fmt.Sprintf("user_%d", i), "merchant", decimal.New(int64(i), -2))
	})
	expected := domain.Summary{
		Count: len(payments),
		Total: lo.Reduce(payments, func(acc decimal.Decimal, p domain.Payment, _ int) decimal.Decimal {
			return acc.Add(p.Amount)
		}, decimal.Zero),
	}

	results := make([]runResult, 0, cfg.Runs)
	for run := 1; run <= cfg.Runs; run++ {
		res := drive(context.Background(), logger, cfg, payments)
		res.run = run
		res.expected = expected
		results = append(results, res)
	}

	render(cfg, results)
	reportProcess()

	if lo.SomeBy(results, func(r runResult) bool { return !r.ok() }) {
		os.Exit(1)
	}
}

// drive pushes payments through a fresh pipeline, splitting them between producers.
func drive(ctx context.Context, logger *slog.Logger, cfg Config, payments []domain.Payment) runResult {
	telemetryChan := make(chan event.Event, 100)
	supervisor := workers.NewSupervisor(logger, telemetryChan, 100*time.Millisecond)
	pipeline := runtime.NewPipeline(logger, supervisor, telemetryChan, cfg.QueueCapacity, 50*time.Millisecond, 0)

	start := time.Now()
	sender, err := pipeline.Start(ctx)
	if err != nil {
		return runResult{err: err}
	}

	var wg sync.WaitGroup
	for i, chunk := range splitEvenly(payments, cfg.Producers) {
		producer, err := sender.Clone()
		if err != nil {
			logger.Error("Failed to clone sender", "producer", i, "error", err)
			break
		}
		wg.Add(1)
		go func(s contract.PaymentSender, chunk []domain.Payment) {
			defer wg.Done()
			defer s.Close()
			for _, p := range chunk {
				if err := s.Send(ctx, p); err != nil {
					logger.Error("Failed to send payment", "error", err)
					return
				}
			}
		}(producer, chunk)
	}
	_ = sender.Close()
	wg.Wait()

	summary, err := pipeline.Wait(ctx)
	return runResult{summary: summary, duration: time.Since(start), err: err}
}

// splitEvenly deals payments into at most n contiguous chunks whose sizes
// differ by at most one. No chunk is empty.
func splitEvenly(payments []domain.Payment, n int) [][]domain.Payment {
	n = min(max(n, 1), len(payments))
	chunks := make([][]domain.Payment, 0, n)
	size, rest := 0, 0
	if n > 0 {
		size, rest = len(payments)/n, len(payments)%n
	}
	start := 0
	for i := range n {
		end := start + size
		if i < rest {
			end++
		}
		chunks = append(chunks, payments[start:end])
		start = end
	}
	return chunks
}

func render(cfg Config, results []runResult) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Run", "Payments", "Duration", "Throughput", "Total", "Verdict"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, r := range results {
		verdict := "PASS"
		if !r.ok() {
			verdict = "FAIL"
			if r.err != nil {
				verdict = fmt.Sprintf("FAIL (%v)", r.err)
			}
		}
		if cfg.Colours {
			if r.ok() {
				verdict = color.New(color.FgGreen).Render(verdict)
			} else {
				verdict = color.New(color.BgBlack, color.FgRed).Render(verdict)
			}
		}

		throughput := 0.0
		if r.duration > 0 {
			throughput = float64(r.summary.Count) / r.duration.Seconds()
		}
		table.Append([]string{
			fmt.Sprintf("%d", r.run),
			fmt.Sprintf("%d", r.summary.Count),
			r.duration.String(),
			fmt.Sprintf("%.0f payments/s", throughput),
			r.summary.Total.StringFixed(2),
			verdict,
		})
	}
	table.Render()
}

// reportProcess prints the memory and CPU footprint of the load test itself.
func reportProcess() {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "process stats unavailable: %v\n", err)
		return
	}
	memInfo, err := p.MemoryInfo()
	if err != nil {
		fmt.Fprintf(os.Stderr, "memory stats unavailable: %v\n", err)
		return
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cpu stats unavailable: %v\n", err)
		return
	}
	fmt.Printf("RSS: %.1f MiB | CPU: %.1f%%\n", float64(memInfo.RSS)/(1024*1024), cpuPercent)
}
