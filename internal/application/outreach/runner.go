package outreach

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	domain "github.com/mohammadpnp/outreach-import/internal/domain/outreach"
)

type RunnerConfig struct {
	Workers   int
	QueueSize int
	// MaxSlices bounds Advance calls per job per Run; zero means unbounded.
	MaxSlices    int
	BusyInterval time.Duration
	Logger       *logrus.Entry
}

// Runner drives jobs to completion in the background by calling Advance
// repeatedly, first with VALIDATE and then with IMPORT.
type Runner struct {
	advance AdvanceImportJob
	cfg     RunnerConfig
	queue   chan string

	once sync.Once
}

func NewRunner(advance AdvanceImportJob, cfg RunnerConfig) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.BusyInterval <= 0 {
		cfg.BusyInterval = 500 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = logrusNop()
	}

	return &Runner{
		advance: advance,
		cfg:     cfg,
		queue:   make(chan string, cfg.QueueSize),
	}
}

func (r *Runner) Start(ctx context.Context) {
	r.once.Do(func() {
		for i := 0; i < r.cfg.Workers; i++ {
			go r.workerLoop(ctx)
		}
	})
}

// Submit queues a job without blocking. It reports false when the queue is full.
func (r *Runner) Submit(jobID string) bool {
	select {
	case r.queue <- jobID:
		return true
	default:
		return false
	}
}

func (r *Runner) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case jobID := <-r.queue:
			if err := r.Run(ctx, jobID); err != nil && !errors.Is(err, context.Canceled) {
				r.cfg.Logger.WithError(err).WithField("job_id", jobID).Error("run import job failed")
			}
		}
	}
}

// Run advances one job through both phases until it is COMPLETED.
func (r *Runner) Run(ctx context.Context, jobID string) error {
	log := r.cfg.Logger.WithField("job_id", jobID)

	slices := 0
	for _, action := range []domain.Action{domain.ActionValidate, domain.ActionImport} {
		for {
			if r.cfg.MaxSlices > 0 && slices >= r.cfg.MaxSlices {
				return fmt.Errorf("job %s not finished after %d slices", jobID, slices)
			}

			out, err := r.advance.Execute(ctx, AdvanceInput{JobID: jobID, Action: string(action)})
			if errors.Is(err, ErrImportJobBusy) {
				if !sleepWithContext(ctx, r.cfg.BusyInterval) {
					return ctx.Err()
				}
				continue
			}
			if err != nil {
				return fmt.Errorf("%s: %w", action, err)
			}
			slices++

			log.WithFields(logrus.Fields{
				"action":   action,
				"progress": out.Progress,
				"status":   out.Job.Status,
			}).Debug("import job advanced")

			if out.Done {
				break
			}
		}
	}
	return nil
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
