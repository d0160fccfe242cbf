package repository

import (
	"context"
	"fmt"

	domain "github.com/mohammadpnp/outreach-import/internal/domain/outreach"
	"github.com/mohammadpnp/outreach-import/internal/infrastructure/db/models"
	"gorm.io/gorm"
)

type ImportJobItemRepository struct {
	db *gorm.DB
}

func NewImportJobItemRepository(db *gorm.DB) *ImportJobItemRepository {
	return &ImportJobItemRepository{db: db}
}

func (r *ImportJobItemRepository) PriorRows(ctx context.Context, jobID string, emails []string) (map[string]int, error) {
	out := make(map[string]int, len(emails))
	if len(emails) == 0 {
		return out, nil
	}

	var rows []struct {
		EmailNormalized string
		FirstRow        int
	}
	err := r.db.WithContext(ctx).
		Model(&models.ImportJobItem{}).
		Select("email_normalized, MIN(row_number) AS first_row").
		Where("job_id = ? AND email_normalized IN ? AND status IN ?", jobID, emails, statusStrings(domain.DedupSourceStatuses)).
		Group("email_normalized").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load prior rows: %w", err)
	}

	for _, row := range rows {
		out[row.EmailNormalized] = row.FirstRow
	}
	return out, nil
}

func (r *ImportJobItemRepository) NextValid(ctx context.Context, jobID string, limit int) ([]domain.ImportJobItem, error) {
	var rows []models.ImportJobItem

	err := r.db.WithContext(ctx).
		Where("job_id = ? AND status = ? AND invite_id IS NULL", jobID, string(domain.ItemStatusValid)).
		Order("id").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load valid items: %w", err)
	}

	return toDomainItems(rows), nil
}

func (r *ImportJobItemRepository) List(ctx context.Context, filter domain.ItemFilter) ([]domain.ImportJobItem, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Model(&models.ImportJobItem{}).
			Where("job_id = ?", filter.JobID)
		if len(filter.Statuses) > 0 {
			q = q.Where("status IN ?", statusStrings(filter.Statuses))
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count import job items: %w", err)
	}

	var rows []models.ImportJobItem
	if err := scoped().Order("id").Limit(filter.Limit).Offset(filter.Offset).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list import job items: %w", err)
	}

	return toDomainItems(rows), total, nil
}

func toDomainItems(rows []models.ImportJobItem) []domain.ImportJobItem {
	items := make([]domain.ImportJobItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.ImportJobItem{
			ID:                 row.ID,
			JobID:              row.JobID,
			RowNumber:          row.RowNumber,
			EmailRaw:           row.EmailRaw,
			EmailNormalized:    row.EmailNormalized,
			InstitutionNameRaw: row.InstitutionNameRaw,
			InstitutionID:      row.InstitutionID,
			Status:             domain.ItemStatus(row.Status),
			Reason:             row.Reason,
			InviteID:           row.InviteID,
			CreatedAt:          row.CreatedAt,
			UpdatedAt:          row.UpdatedAt,
		})
	}
	return items
}

func statusStrings(statuses []domain.ItemStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
