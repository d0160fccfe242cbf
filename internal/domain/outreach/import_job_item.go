package outreach

import (
	"strings"
	"time"
)

type ItemStatus string

const (
	ItemStatusInvalidEmail    ItemStatus = "INVALID_EMAIL"
	ItemStatusDuplicateInFile ItemStatus = "DUPLICATE_IN_FILE"
	ItemStatusAlreadyExistsDB ItemStatus = "ALREADY_EXISTS_DB"
	ItemStatusValid           ItemStatus = "VALID"
	ItemStatusCreated         ItemStatus = "CREATED"
	ItemStatusFailedCreate    ItemStatus = "FAILED_CREATE"
)

var itemStatuses = []ItemStatus{
	ItemStatusInvalidEmail,
	ItemStatusDuplicateInFile,
	ItemStatusAlreadyExistsDB,
	ItemStatusValid,
	ItemStatusCreated,
	ItemStatusFailedCreate,
}

// DedupSourceStatuses are the statuses consulted when looking for an earlier
// occurrence of an email within the same job.
var DedupSourceStatuses = []ItemStatus{
	ItemStatusValid,
	ItemStatusDuplicateInFile,
	ItemStatusAlreadyExistsDB,
}

func ParseItemStatus(raw string) (ItemStatus, bool) {
	candidate := ItemStatus(strings.ToUpper(strings.TrimSpace(raw)))
	for _, status := range itemStatuses {
		if status == candidate {
			return status, true
		}
	}
	return "", false
}

// CanTransitionTo reports whether an item may move from s to next. Only VALID
// items move at all. ALREADY_EXISTS_DB is reachable from VALID when another
// writer created the invitation between the two phases.
func (s ItemStatus) CanTransitionTo(next ItemStatus) bool {
	if s != ItemStatusValid {
		return false
	}
	switch next {
	case ItemStatusCreated, ItemStatusFailedCreate, ItemStatusAlreadyExistsDB:
		return true
	default:
		return false
	}
}

type ImportJobItem struct {
	ID                 int64
	JobID              string
	RowNumber          int
	EmailRaw           string
	EmailNormalized    string
	InstitutionNameRaw string
	InstitutionID      *string
	Status             ItemStatus
	Reason             string
	InviteID           *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type ItemFilter struct {
	JobID    string
	Statuses []ItemStatus
	Limit    int
	Offset   int
}

// ImportOutcome is the terminal result of materialising one VALID item.
type ImportOutcome struct {
	JobID         string
	ItemID        int64
	Status        ItemStatus
	Reason        string
	InviteID      string
	InstitutionID string
}

// Counters returns the job counter increments the outcome accounts for.
func (o ImportOutcome) Counters() ImportCounters {
	c := ImportCounters{ProcessedEmails: 1}
	if o.Status == ItemStatusCreated {
		c.CreatedInvites = 1
	} else {
		c.FailedCreates = 1
	}
	return c
}
