package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/robfig/cron/v3"

	"RealizedBands/internal/model"
	"RealizedBands/internal/notifier"
)

// Aggregator is the dataset source the jobs and commands read from.
type Aggregator interface {
	Aggregate(ctx context.Context) (*model.ChartResponse, error)
	Refresh(ctx context.Context) (*model.ChartResponse, error)
}

// Sender delivers chat messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

const helpText = "Available commands:\n• /rp  realized price summary\n• /bands  band levels\n• /refresh  refetch upstream feeds"

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Service  Aggregator
	Notifier Sender
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler. n may be nil when chat delivery is off.
func NewScheduler(ctx context.Context, svc Aggregator, n Sender) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Service:  svc,
		Notifier: n,
		Ctx:      ctx,
	}
}

// RegisterAll registers the cache refresh and, when a notifier is set, the report.
// An empty expression disables the job.
func (s *Scheduler) RegisterAll(refreshCron, reportCron string) error {
	if refreshCron != "" {
		if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
			return fmt.Errorf("register refresh task: %w", err)
		}
	}
	if reportCron != "" && s.Notifier != nil {
		if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
			return fmt.Errorf("register report task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Printf("[INFO] scheduler started with %d jobs", len(s.Cron.Entries()))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunRefreshNow warms the cache immediately (RUN_ON_START).
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running refresh task")
	if _, err := s.Service.Refresh(s.Ctx); err != nil {
		log.Printf("[ERROR] refresh: %v", err)
	}
}

func (s *Scheduler) reportTask() {
	log.Println("[INFO] running report task")
	resp, err := s.Service.Aggregate(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] report aggregate: %v", err)
		s.trySend(notifier.FormatFailure(err))
		return
	}
	s.trySend(notifier.FormatSummary(resp))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// commands in groups arrive as /rp@botname
	cmd, _, _ := strings.Cut(fields[0], "@")

	switch cmd {
	case "/rp", "/refresh":
		var (
			resp *model.ChartResponse
			err  error
		)
		if cmd == "/refresh" {
			resp, err = s.Service.Refresh(s.Ctx)
		} else {
			resp, err = s.Service.Aggregate(s.Ctx)
		}
		if err != nil {
			return notifier.FormatFailure(err)
		}
		return notifier.FormatSummary(resp)
	case "/bands":
		resp, err := s.Service.Aggregate(s.Ctx)
		if err != nil {
			return notifier.FormatFailure(err)
		}
		return notifier.FormatBands(resp)
	default:
		return helpText
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
