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

const (
	DefaultChunkSize       = 1000
	DefaultImportBatchSize = 200
	DefaultInviteRole      = "INSTITUTION_ADMIN"
	DefaultInviteTTL       = 7 * 24 * time.Hour
)

type AdvanceInput struct {
	JobID  string
	Action string
}

type AdvanceOutput struct {
	Job      ImportJobOutput `json:"job"`
	Progress int             `json:"progress"`
	Done     bool            `json:"done"`
}

// AdvanceImportJob performs one bounded slice of work for a job and reports
// whether the requested phase is finished. Callers re-invoke until Done.
type AdvanceImportJob interface {
	Execute(ctx context.Context, in AdvanceInput) (AdvanceOutput, error)
}

type AdvancerDeps struct {
	Jobs         domain.ImportJobRepository
	Slices       domain.ValidationSliceCommitter
	Items        domain.ImportJobItemRepository
	Invitations  domain.InvitationRepository
	Institutions domain.InstitutionRepository
	Locker       domain.JobLocker
	Source       ImportSource
	Parser       SheetParser
}

type AdvancerConfig struct {
	ChunkSize       int
	ImportBatchSize int
	InviteRole      string
	InviteTTL       time.Duration
	ColumnRules     []domain.ColumnRule
	Logger          *logrus.Entry
	Now             func() time.Time
}

type advancer struct {
	deps       AdvancerDeps
	cfg        AdvancerConfig
	normalizer *domain.Normalizer
	metrics    *metrics
}

func NewAdvanceImportJob(deps AdvancerDeps, cfg AdvancerConfig) AdvanceImportJob {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ImportBatchSize <= 0 {
		cfg.ImportBatchSize = DefaultImportBatchSize
	}
	if cfg.InviteRole == "" {
		cfg.InviteRole = DefaultInviteRole
	}
	if cfg.InviteTTL <= 0 {
		cfg.InviteTTL = DefaultInviteTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = logrusNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if deps.Locker == nil {
		deps.Locker = newLocalJobLocker()
	}

	return &advancer{
		deps:       deps,
		cfg:        cfg,
		normalizer: domain.NewNormalizer(cfg.ColumnRules),
		metrics:    getMetrics(),
	}
}

func (a *advancer) Execute(ctx context.Context, in AdvanceInput) (AdvanceOutput, error) {
	jobID, err := parseJobID(in.JobID)
	if err != nil {
		return AdvanceOutput{}, err
	}
	action, ok := domain.ParseAction(in.Action)
	if !ok {
		return AdvanceOutput{}, ErrInvalidAction
	}

	log := a.cfg.Logger.WithFields(logrus.Fields{"job_id": jobID, "action": action})

	release, acquired, err := a.deps.Locker.TryLock(ctx, jobID)
	if err != nil {
		return AdvanceOutput{}, fmt.Errorf("%w: acquire job lock: %v", ErrAdvanceImportJob, err)
	}
	if !acquired {
		log.Debug("import job is locked by another caller")
		return AdvanceOutput{}, ErrImportJobBusy
	}
	defer release()

	start := time.Now()
	var out AdvanceOutput
	switch action {
	case domain.ActionValidate:
		out, err = a.validate(ctx, log, jobID)
	case domain.ActionImport:
		out, err = a.importBatch(ctx, log, jobID)
	}
	a.metrics.observeSlice(action, err, time.Since(start))

	if err != nil {
		return AdvanceOutput{}, a.translate(log, err)
	}
	return out, nil
}

func (a *advancer) translate(log *logrus.Entry, err error) error {
	switch {
	case errors.Is(err, domain.ErrImportJobNotFound):
		return ErrImportJobNotFound
	case errors.Is(err, domain.ErrConcurrentUpdate):
		log.WithError(err).Warn("import job changed underneath the slice")
		return ErrImportJobBusy
	case errors.Is(err, ErrValidationIncomplete):
		return err
	default:
		log.WithError(err).Error("advance import job failed")
		return fmt.Errorf("%w: %v", ErrAdvanceImportJob, err)
	}
}

func (a *advancer) output(job domain.ImportJob, progress int, done bool) AdvanceOutput {
	return AdvanceOutput{
		Job:      newImportJobOutput(job),
		Progress: progress,
		Done:     done,
	}
}

// localJobLocker serialises Advance calls within one process only.
type localJobLocker struct {
	mu     sync.Mutex
	locked map[string]struct{}
}

func newLocalJobLocker() *localJobLocker {
	return &localJobLocker{locked: make(map[string]struct{})}
}

func (l *localJobLocker) TryLock(ctx context.Context, jobID string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.locked[jobID]; held {
		return nil, false, nil
	}
	l.locked[jobID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.locked, jobID)
			l.mu.Unlock()
		})
	}, true, nil
}
