// Package scheduler triggers one generation cycle per tenant on a cron
// schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/Jeff0327/adsblog/internal/generator"
)

// DefaultMaxConcurrent bounds parallel tenant runs when none is configured.
const DefaultMaxConcurrent = 2

// Runner executes one generation cycle for a tenant.
type Runner interface {
	Run(ctx context.Context, tenantKey string) (*generator.Result, error)
}

// TenantLister lists tenants whose auto-posting is not explicitly disabled.
type TenantLister interface {
	ListSchedulableTenantKeys(ctx context.Context) ([]string, error)
}

// Config configures a Scheduler.
type Config struct {
	// Schedule is a standard five-field cron expression or descriptor such
	// as "@daily".
	Schedule      string
	MaxConcurrent int
}

// Tick summarizes one scheduled pass over all tenants.
type Tick struct {
	Created int
	Skipped int
	Failed  int
}

// Scheduler runs a generation pass over every schedulable tenant at each
// cron tick. A tick that is still running when the next one fires is
// skipped, so passes never overlap within one process.
type Scheduler struct {
	cron          *cron.Cron
	tenants       TenantLister
	runner        Runner
	maxConcurrent int

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Scheduler. It fails if the schedule does not parse.
func New(tenants TenantLister, runner Runner, cfg Config) (*Scheduler, error) {
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("parsing schedule %q: %w", cfg.Schedule, err)
	}

	logger := cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelInfo))
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		)),
		tenants:       tenants,
		runner:        runner,
		maxConcurrent: cfg.MaxConcurrent,
	}
	if s.maxConcurrent <= 0 {
		s.maxConcurrent = DefaultMaxConcurrent
	}

	if _, err := s.cron.AddFunc(cfg.Schedule, s.tick); err != nil {
		return nil, fmt.Errorf("adding generation job: %w", err)
	}
	return s, nil
}

// Start begins firing ticks. Runs started by a tick inherit ctx, so
// cancelling it aborts in-flight runs.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.cron.Start()
	slog.Info("scheduler started", "entries", len(s.cron.Entries()), "max_concurrent", s.maxConcurrent)
}

// Stop prevents further ticks and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	<-done.Done()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	slog.Info("scheduler stopped")
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := s.RunOnce(ctx); err != nil {
		slog.Error("scheduled generation pass failed", "error", err)
	}
}

// RunOnce runs one generation cycle for every schedulable tenant, at most
// maxConcurrent at a time. Failed runs are logged and counted, never
// returned; only a failure to list tenants is an error.
func (s *Scheduler) RunOnce(ctx context.Context) (Tick, error) {
	keys, err := s.tenants.ListSchedulableTenantKeys(ctx)
	if err != nil {
		return Tick{}, fmt.Errorf("listing tenants: %w", err)
	}
	slog.Info("scheduled generation pass", "tenants", len(keys))

	var (
		mu   sync.Mutex
		tick Tick
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for _, key := range keys {
		g.Go(func() error {
			res, err := s.runner.Run(gctx, key)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				tick.Failed++
				slog.Warn("scheduled run failed", "tenant", key, "error", err)
			case res.Status == generator.StatusSkipped:
				tick.Skipped++
			default:
				tick.Created++
			}
			return nil // one tenant's failure must not cancel the others
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors

	slog.Info("scheduled generation pass done",
		"created", tick.Created, "skipped", tick.Skipped, "failed", tick.Failed)
	return tick, nil
}
