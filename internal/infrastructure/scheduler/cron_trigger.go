package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DailyTriggerConfig holds configuration for the daily trigger
type DailyTriggerConfig struct {
	JobName string
	// At is the HH:mm wall-clock time the job runs each day
	At       string
	Location *time.Location
	// RunOnStart submits one run immediately when the trigger starts
	RunOnStart bool
}

// DailyTrigger submits a job to the scheduler once a day at a fixed time
type DailyTrigger struct {
	jobName    string
	hour, min  int
	location   *time.Location
	runOnStart bool
	scheduler  *Scheduler
	logger     *zap.Logger
	now        func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewDailyTrigger creates a new daily trigger
func NewDailyTrigger(cfg DailyTriggerConfig, scheduler *Scheduler, logger *zap.Logger) (*DailyTrigger, error) {
	hour, minute, err := ParseClock(cfg.At)
	if err != nil {
		return nil, err
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyTrigger{
		jobName:    cfg.JobName,
		hour:       hour,
		min:        minute,
		location:   cfg.Location,
		runOnStart: cfg.RunOnStart,
		scheduler:  scheduler,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// ParseClock parses HH:mm
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: time %q is not HH:mm", ErrInvalidConfig, s)
	}
	return t.Hour(), t.Minute(), nil
}

// NextRun returns the first trigger time strictly after from
func (c *DailyTrigger) NextRun(from time.Time) time.Time {
	local := from.In(c.location)
	next := time.Date(local.Year(), local.Month(), local.Day(), c.hour, c.min, 0, 0, c.location)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start starts the trigger loop
func (c *DailyTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isRunning {
		return nil
	}
	c.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	if c.runOnStart {
		c.fire()
	}

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Daily trigger started",
		zap.String("job", c.jobName),
		zap.Time("next_run", c.NextRun(c.now())),
	)
	return nil
}

// Stop stops the trigger loop
func (c *DailyTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *DailyTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	for {
		timer := time.NewTimer(c.NextRun(c.now()).Sub(c.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			c.fire()
		}
	}
}

func (c *DailyTrigger) fire() {
	job, err := c.scheduler.SubmitNew(c.jobName)
	if err != nil {
		c.logger.Error("Failed to submit scheduled job",
			zap.String("job", c.jobName),
			zap.Error(err),
		)
		return
	}
	c.logger.Info("Scheduled job submitted",
		zap.String("job", c.jobName),
		zap.String("job_id", job.ID.String()),
	)
}
