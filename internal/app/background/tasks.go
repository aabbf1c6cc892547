package background

import (
	"context"
	"log/slog"
	"sync"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
	escrowdto "github.com/LavaJover/agro-escrow-service/internal/usecase/dto/escrow"
	"github.com/robfig/cron/v3"
)

type Sweeper interface {
	ReleaseDue(ctx context.Context, limit int) (*escrowdto.SweepOutput, error)
}

type BackgroundTasks struct {
	Sweeper        Sweeper
	Payments       *PaymentConsumer
	SweepSchedule  string
	SweepBatchSize int

	mu      sync.Mutex
	running bool
}

func NewBackgroundTasks(sweeper Sweeper, payments *PaymentConsumer, schedule string, batchSize int) *BackgroundTasks {
	return &BackgroundTasks{
		Sweeper:        sweeper,
		Payments:       payments,
		SweepSchedule:  schedule,
		SweepBatchSize: batchSize,
	}
}

// StartAll schedules the auto-release sweep and starts the payment consumer.
// Both stop when ctx is cancelled.
func (bt *BackgroundTasks) StartAll(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	if _, err := c.AddFunc(bt.SweepSchedule, func() { bt.RunSweep(ctx) }); err != nil {
		return err
	}
	c.Start()
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		slog.Info("auto-release scheduler stopped")
	}()

	if bt.Payments != nil {
		go func() {
			if err := bt.Payments.Run(ctx); err != nil {
				slog.Error("payment consumer stopped", "error", err.Error())
			}
		}()
	}
	return nil
}

// RunSweep runs one auto-release pass. Overlapping ticks are dropped.
func (bt *BackgroundTasks) RunSweep(ctx context.Context) *escrowdto.SweepOutput {
	bt.mu.Lock()
	if bt.running {
		bt.mu.Unlock()
		slog.Warn("auto-release sweep still running, tick skipped")
		return nil
	}
	bt.running = true
	bt.mu.Unlock()
	defer func() {
		bt.mu.Lock()
		bt.running = false
		bt.mu.Unlock()
	}()

	if ctx.Err() != nil {
		return nil
	}
	out, err := bt.Sweeper.ReleaseDue(ctx, bt.SweepBatchSize)
	if err != nil {
		slog.Error("auto-release sweep failed", "error", err.Error(), "kind", domain.ErrorKind(err))
		return nil
	}
	return out
}
