package outreach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/mohammadpnp/outreach-import/internal/domain/outreach"
)

const (
	defaultItemPageSize = 100
	maxItemPageSize     = 1000
)

type ListImportJobItemsInput struct {
	JobID    string
	Statuses string
	Limit    int
	Offset   int
}

type ImportJobItemOutput struct {
	ID                 int64     `json:"id"`
	RowNumber          int       `json:"row_number"`
	EmailRaw           string    `json:"email_raw"`
	EmailNormalized    string    `json:"email_normalized"`
	InstitutionNameRaw string    `json:"institution_name_raw"`
	InstitutionID      *string   `json:"institution_id,omitempty"`
	Status             string    `json:"status"`
	Reason             string    `json:"reason,omitempty"`
	InviteID           *string   `json:"invite_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type ListImportJobItemsOutput struct {
	Items  []ImportJobItemOutput `json:"items"`
	Total  int64                 `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

type ListImportJobItems interface {
	Execute(ctx context.Context, in ListImportJobItemsInput) (ListImportJobItemsOutput, error)
}

type importJobItemLister interface {
	List(ctx context.Context, filter domain.ItemFilter) ([]domain.ImportJobItem, int64, error)
}

type listImportJobItems struct {
	jobs  importJobGetter
	items importJobItemLister
}

func NewListImportJobItems(jobs importJobGetter, items importJobItemLister) ListImportJobItems {
	return &listImportJobItems{jobs: jobs, items: items}
}

func (uc *listImportJobItems) Execute(ctx context.Context, in ListImportJobItemsInput) (ListImportJobItemsOutput, error) {
	jobID, err := parseJobID(in.JobID)
	if err != nil {
		return ListImportJobItemsOutput{}, err
	}

	statuses, err := parseItemStatuses(in.Statuses)
	if err != nil {
		return ListImportJobItemsOutput{}, err
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultItemPageSize
	}
	if limit > maxItemPageSize {
		limit = maxItemPageSize
	}
	offset := max(in.Offset, 0)

	if _, err := uc.jobs.Get(ctx, jobID); err != nil {
		if errors.Is(err, domain.ErrImportJobNotFound) {
			return ListImportJobItemsOutput{}, ErrImportJobNotFound
		}
		return ListImportJobItemsOutput{}, fmt.Errorf("%w: %v", ErrListImportJobItems, err)
	}

	items, total, err := uc.items.List(ctx, domain.ItemFilter{
		JobID:    jobID,
		Statuses: statuses,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return ListImportJobItemsOutput{}, fmt.Errorf("%w: %v", ErrListImportJobItems, err)
	}

	out := ListImportJobItemsOutput{
		Items:  make([]ImportJobItemOutput, 0, len(items)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, item := range items {
		out.Items = append(out.Items, ImportJobItemOutput{
			ID:                 item.ID,
			RowNumber:          item.RowNumber,
			EmailRaw:           item.EmailRaw,
			EmailNormalized:    item.EmailNormalized,
			InstitutionNameRaw: item.InstitutionNameRaw,
			InstitutionID:      item.InstitutionID,
			Status:             string(item.Status),
			Reason:             item.Reason,
			InviteID:           item.InviteID,
			CreatedAt:          item.CreatedAt,
			UpdatedAt:          item.UpdatedAt,
		})
	}
	return out, nil
}

// parseItemStatuses accepts a comma separated list; empty means all.
func parseItemStatuses(raw string) ([]domain.ItemStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var statuses []domain.ItemStatus
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		status, ok := domain.ParseItemStatus(part)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidItemStatus, strings.TrimSpace(part))
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
