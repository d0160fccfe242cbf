package outreach

import (
	"context"
	"time"
)

type ImportJobRepository interface {
	Create(ctx context.Context, sourceKey string) (ImportJob, error)
	Get(ctx context.Context, jobID string) (ImportJob, error)
	// TransitionStatus moves the job only if its stored status still equals from.
	TransitionStatus(ctx context.Context, jobID string, from, to JobStatus) (bool, error)
	// SetTotalRows records the row count only while it is still unset.
	SetTotalRows(ctx context.Context, jobID string, totalRows int64) error
	Complete(ctx context.Context, jobID string, completedAt time.Time) (bool, error)
	// RecordImportOutcome updates one VALID item and the job counters atomically.
	RecordImportOutcome(ctx context.Context, outcome ImportOutcome) error
}

// ValidationSlice is everything one VALIDATE invocation persists.
type ValidationSlice struct {
	JobID    string
	FromRow  int64
	ToRow    int64
	Items    []ClassifiedItem
	Counters ImportCounters
}

type ValidationSliceCommitter interface {
	// CommitValidationSlice inserts the items, increments counters and moves
	// the watermark from FromRow to ToRow in one transaction, or returns
	// ErrConcurrentUpdate if the watermark no longer equals FromRow.
	CommitValidationSlice(ctx context.Context, slice ValidationSlice) error
}

type ImportJobItemRepository interface {
	// PriorRows maps each email already recorded for the job under one of
	// DedupSourceStatuses to its lowest row number.
	PriorRows(ctx context.Context, jobID string, emails []string) (map[string]int, error)
	NextValid(ctx context.Context, jobID string, limit int) ([]ImportJobItem, error)
	List(ctx context.Context, filter ItemFilter) ([]ImportJobItem, int64, error)
}

type InvitationRepository interface {
	ExistingEmails(ctx context.Context, emails []string) (map[string]struct{}, error)
	// FindByEmail returns ErrInvitationNotFound when no invitation exists.
	FindByEmail(ctx context.Context, email string) (Invitation, error)
	Create(ctx context.Context, invitation Invitation) (Invitation, error)
}

type InstitutionRepository interface {
	// FindByName matches legal or trading name case-insensitively.
	FindByName(ctx context.Context, name string) (Institution, error)
	Create(ctx context.Context, institution Institution) (Institution, error)
}

type JobLocker interface {
	TryLock(ctx context.Context, jobID string) (release func(), acquired bool, err error)
}
