package outreach

import (
	"math"
	"strings"
	"time"
)

type JobStatus string

const (
	JobStatusUploaded   JobStatus = "UPLOADED"
	JobStatusValidating JobStatus = "VALIDATING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
)

// CanTransitionTo reports whether a job in status s may move to next.
// The lifecycle is linear; non-terminal statuses may be re-entered.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case JobStatusUploaded:
		return next == JobStatusValidating
	case JobStatusValidating:
		return next == JobStatusValidating || next == JobStatusProcessing
	case JobStatusProcessing:
		return next == JobStatusProcessing || next == JobStatusCompleted
	default:
		return false
	}
}

func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted
}

type Action string

const (
	ActionValidate Action = "VALIDATE"
	ActionImport   Action = "IMPORT"
)

func ParseAction(raw string) (Action, bool) {
	switch Action(strings.ToUpper(strings.TrimSpace(raw))) {
	case ActionValidate:
		return ActionValidate, true
	case ActionImport:
		return ActionImport, true
	default:
		return "", false
	}
}

// ImportCounters are only ever incremented.
type ImportCounters struct {
	ValidEmails          int64
	InvalidEmails        int64
	DuplicateInFile      int64
	AlreadyExistsInDB    int64
	TotalEmailsExtracted int64
	CreatedInvites       int64
	FailedCreates        int64
	ProcessedEmails      int64
}

func (c ImportCounters) Add(o ImportCounters) ImportCounters {
	return ImportCounters{
		ValidEmails:          c.ValidEmails + o.ValidEmails,
		InvalidEmails:        c.InvalidEmails + o.InvalidEmails,
		DuplicateInFile:      c.DuplicateInFile + o.DuplicateInFile,
		AlreadyExistsInDB:    c.AlreadyExistsInDB + o.AlreadyExistsInDB,
		TotalEmailsExtracted: c.TotalEmailsExtracted + o.TotalEmailsExtracted,
		CreatedInvites:       c.CreatedInvites + o.CreatedInvites,
		FailedCreates:        c.FailedCreates + o.FailedCreates,
		ProcessedEmails:      c.ProcessedEmails + o.ProcessedEmails,
	}
}

type ImportJob struct {
	ID            string
	Status        JobStatus
	SourceKey     string
	TotalRows     int64
	ProcessedRows int64
	Counters      ImportCounters
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidationDone reports whether the watermark has reached the end of the file.
// A job that was never validated is not done, even for an empty file.
func (j ImportJob) ValidationDone() bool {
	if j.Status == JobStatusUploaded {
		return false
	}
	return j.ProcessedRows >= j.TotalRows
}

func (j ImportJob) ValidationProgress() int {
	if j.Status == JobStatusProcessing || j.Status == JobStatusCompleted {
		return 100
	}
	if j.Status == JobStatusUploaded {
		return 0
	}
	return Progress(j.ProcessedRows, j.TotalRows)
}

func (j ImportJob) ImportProgress() int {
	if j.Status == JobStatusCompleted {
		return 100
	}
	if j.Status != JobStatusProcessing {
		return 0
	}
	return Progress(j.Counters.ProcessedEmails, j.Counters.ValidEmails)
}

// Progress returns round(100*done/total) clamped to [0, 100]. An empty total counts as complete.
func Progress(done, total int64) int {
	if total <= 0 || done >= total {
		return 100
	}
	if done <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}
