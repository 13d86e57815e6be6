package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fortuna/courtside/internal/ingest/bref"
	"github.com/fortuna/courtside/internal/publisher"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrRunInProgress is returned when a scrape is requested while one is running.
var ErrRunInProgress = errors.New("scrape run already in progress")

// Trigger names recorded on run summaries
const (
	TriggerCron   = "cron"
	TriggerManual = "manual"
	TriggerEvent  = "event"
	TriggerStart  = "startup"
)

// Scraper runs one full scrape-and-store pass
type Scraper interface {
	Run(ctx context.Context) (*bref.RunResult, error)
}

// Config holds scheduler configuration
type Config struct {
	Schedule   string         // cron spec, default "0 6 * * *"
	Location   *time.Location // default America/New_York
	RunTimeout time.Duration  // default 10m
	RunOnStart bool
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return &Config{
		Schedule:   "0 6 * * *",
		Location:   loc,
		RunTimeout: 10 * time.Minute,
	}
}

// Status is a snapshot of the scheduler
type Status struct {
	Schedule string                `json:"schedule"`
	Timezone string                `json:"timezone"`
	Started  bool                  `json:"started"`
	Running  bool                  `json:"running"`
	NextRun  *time.Time            `json:"next_run,omitempty"`
	LastRun  *publisher.RunSummary `json:"last_run,omitempty"`
}

// Orchestrator schedules scrapes and serializes every run, scheduled or manual.
type Orchestrator struct {
	scraper   Scraper
	publisher publisher.Publisher
	config    *Config
	logger    *zap.Logger

	runMu    sync.Mutex
	afterRun []func(publisher.RunSummary)

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	running bool
	last    *publisher.RunSummary
}

// NewOrchestrator creates a new scheduler orchestrator. pub may be nil.
func NewOrchestrator(scraper Scraper, pub publisher.Publisher, config *Config, logger *zap.Logger) *Orchestrator {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	}
	if config.Schedule == "" {
		config.Schedule = defaults.Schedule
	}
	if config.Location == nil {
		config.Location = defaults.Location
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = defaults.RunTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		scraper:   scraper,
		publisher: pub,
		config:    config,
		logger:    logger.Named("scheduler"),
	}
}

// Start registers the scrape job and starts the cron runner. It does not block.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cron != nil {
		return fmt.Errorf("scheduler already started")
	}

	c := cron.New(cron.WithLocation(o.config.Location))
	id, err := c.AddFunc(o.config.Schedule, func() {
		o.runScheduled(ctx, TriggerCron)
	})
	if err != nil {
		return fmt.Errorf("invalid scrape schedule %q: %w", o.config.Schedule, err)
	}

	o.cron = c
	o.entryID = id
	c.Start()

	o.logger.Info("scheduler started",
		zap.String("schedule", o.config.Schedule),
		zap.String("timezone", o.config.Location.String()),
		zap.Time("next_run", c.Entry(id).Next))

	if o.config.RunOnStart {
		go o.runScheduled(ctx, TriggerStart)
	}
	return nil
}

func (o *Orchestrator) runScheduled(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}
	runCtx, cancel := context.WithTimeout(ctx, o.config.RunTimeout)
	defer cancel()

	if _, err := o.RunNow(runCtx, trigger); err != nil {
		o.logger.Error("scheduled scrape failed",
			zap.String("trigger", trigger),
			zap.Error(err))
	}
}

// Stop stops the cron runner and waits for a running job to finish
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	c := o.cron
	o.cron = nil
	o.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	o.logger.Info("scheduler stopped")
}

// RunNow runs a scrape immediately. It returns ErrRunInProgress when another
// run holds the lock. The summary is returned even when the run failed.
func (o *Orchestrator) RunNow(ctx context.Context, trigger string) (*publisher.RunSummary, error) {
	if !o.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer o.runMu.Unlock()

	summary := &publisher.RunSummary{
		RunID:     uuid.NewString(),
		Trigger:   trigger,
		StartedAt: time.Now().UTC(),
	}
	o.setRunning(true)
	defer o.setRunning(false)

	logger := o.logger.With(zap.String("run_id", summary.RunID), zap.String("trigger", trigger))
	logger.Info("scrape run starting")

	result, err := o.scraper.Run(ctx)
	if result != nil {
		summary.Games = result.Games
		summary.Records = result.Records
		summary.Written = result.Written
		summary.Replaced = result.Replaced
	}
	summary.FinishedAt = time.Now().UTC()
	summary.DurationMS = summary.FinishedAt.Sub(summary.StartedAt).Milliseconds()
	if err != nil {
		summary.Error = err.Error()
		logger.Error("scrape run failed", zap.Error(err))
	} else {
		logger.Info("scrape run complete",
			zap.Int("games", summary.Games),
			zap.Int("written", summary.Written),
			zap.Int64("duration_ms", summary.DurationMS))
	}

	if o.publisher != nil {
		if perr := o.publisher.PublishRun(context.WithoutCancel(ctx), *summary); perr != nil {
			logger.Warn("failed to publish run summary", zap.Error(perr))
		}
	}

	o.mu.Lock()
	last := *summary
	o.last = &last
	o.mu.Unlock()

	for _, fn := range o.afterRun {
		fn(last)
	}

	return summary, err
}

func (o *Orchestrator) setRunning(v bool) {
	o.mu.Lock()
	o.running = v
	o.mu.Unlock()
}

// AfterRun registers fn to be called after every run, failed ones included,
// while the run lock is still held. Register hooks before Start.
func (o *Orchestrator) AfterRun(fn func(publisher.RunSummary)) {
	o.afterRun = append(o.afterRun, fn)
}

// GetStatus returns current scheduler status
func (o *Orchestrator) GetStatus() Status {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := Status{
		Schedule: o.config.Schedule,
		Timezone: o.config.Location.String(),
		Started:  o.cron != nil,
		Running:  o.running,
	}
	if o.cron != nil {
		if next := o.cron.Entry(o.entryID).Next; !next.IsZero() {
			st.NextRun = &next
		}
	}
	if o.last != nil {
		last := *o.last
		st.LastRun = &last
	}
	return st
}
