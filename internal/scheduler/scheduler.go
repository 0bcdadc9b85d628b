package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"IndexSentinel/internal/report"
	"IndexSentinel/internal/runner"
)

// Job is one analysis run plus access to its last report.
type Job interface {
	Run(ctx context.Context) (*runner.Result, error)
	Running() bool
	LastReport() (string, bool)
}

// Scheduler triggers analysis runs from cron and from chat commands.
type Scheduler struct {
	Cron   *cron.Cron
	Job    Job
	Logger *zap.Logger
	Ctx    context.Context
}

// NewScheduler creates a Scheduler whose cron expressions carry a seconds field
// and are evaluated in loc.
func NewScheduler(ctx context.Context, job Job, loc *time.Location, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Job:    job,
		Logger: logger,
		Ctx:    ctx,
	}
}

// Register adds the daily analysis task.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunNow executes the daily task immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.dailyTask()
}

func (s *Scheduler) dailyTask() {
	s.Logger.Info("running daily analysis")
	if _, err := s.Job.Run(s.Ctx); err != nil {
		if errors.Is(err, runner.ErrRunInProgress) {
			s.Logger.Warn("daily analysis skipped, previous run still active")
			return
		}
		// the runner already logged, recorded and notified the failure
		s.Logger.Debug("daily analysis ended with error", zap.Error(err))
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/run":
		if s.Job.Running() {
			return "An analysis is already running."
		}
		go s.dailyTask()
		return "Analysis started."
	case "/last":
		text, ok := s.Job.LastReport()
		if !ok {
			return "No report yet."
		}
		return report.FormatTelegram("Last report", text)
	default:
		return "Available commands:\n• /run - run the analysis now\n• /last - show the last report"
	}
}
