package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/mohammadpnp/outreach-import/internal/domain/outreach"
	"github.com/mohammadpnp/outreach-import/internal/infrastructure/db/models"
	"gorm.io/gorm"
)

type ImportJobRepository struct {
	db *gorm.DB
}

func NewImportJobRepository(db *gorm.DB) *ImportJobRepository {
	return &ImportJobRepository{db: db}
}

func (r *ImportJobRepository) Create(ctx context.Context, sourceKey string) (domain.ImportJob, error) {
	job := models.ImportJob{
		SourceKey: sourceKey,
		Status:    string(domain.JobStatusUploaded),
	}

	if err := r.db.WithContext(ctx).Create(&job).Error; err != nil {
		return domain.ImportJob{}, fmt.Errorf("create import job: %w", err)
	}

	return toDomainImportJob(job), nil
}

func (r *ImportJobRepository) Get(ctx context.Context, jobID string) (domain.ImportJob, error) {
	var row models.ImportJob

	err := r.db.WithContext(ctx).First(&row, "id = ?", jobID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ImportJob{}, domain.ErrImportJobNotFound
		}
		return domain.ImportJob{}, fmt.Errorf("get import job: %w", err)
	}

	return toDomainImportJob(row), nil
}

func (r *ImportJobRepository) TransitionStatus(ctx context.Context, jobID string, from, to domain.JobStatus) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, fmt.Errorf("illegal job transition %s -> %s", from, to)
	}

	res := r.db.WithContext(ctx).
		Model(&models.ImportJob{}).
		Where("id = ? AND status = ?", jobID, string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return false, fmt.Errorf("transition import job: %w", res.Error)
	}

	return res.RowsAffected > 0, nil
}

func (r *ImportJobRepository) SetTotalRows(ctx context.Context, jobID string, totalRows int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.ImportJob{}).
		Where("id = ? AND total_rows = 0", jobID).
		Updates(map[string]any{
			"total_rows": totalRows,
			"updated_at": gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return fmt.Errorf("set total rows: %w", res.Error)
	}
	return nil
}

func (r *ImportJobRepository) Complete(ctx context.Context, jobID string, completedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ImportJob{}).
		Where("id = ? AND status = ?", jobID, string(domain.JobStatusProcessing)).
		Updates(map[string]any{
			"status":       string(domain.JobStatusCompleted),
			"completed_at": completedAt,
			"updated_at":   gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return false, fmt.Errorf("complete import job: %w", res.Error)
	}

	return res.RowsAffected > 0, nil
}

func (r *ImportJobRepository) RecordImportOutcome(ctx context.Context, outcome domain.ImportOutcome) error {
	if !domain.ItemStatusValid.CanTransitionTo(outcome.Status) {
		return fmt.Errorf("illegal item outcome %s", outcome.Status)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		itemUpdates := map[string]any{
			"status":     string(outcome.Status),
			"reason":     outcome.Reason,
			"updated_at": gorm.Expr("NOW()"),
		}
		if outcome.InviteID != "" {
			itemUpdates["invite_id"] = outcome.InviteID
		}
		if outcome.InstitutionID != "" {
			itemUpdates["institution_id"] = outcome.InstitutionID
		}

		res := tx.Model(&models.ImportJobItem{}).
			Where("id = ? AND job_id = ? AND status = ? AND invite_id IS NULL",
				outcome.ItemID, outcome.JobID, string(domain.ItemStatusValid)).
			Updates(itemUpdates)
		if res.Error != nil {
			return fmt.Errorf("update import job item: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrConcurrentUpdate
		}

		c := outcome.Counters()
		if err := tx.Model(&models.ImportJob{}).
			Where("id = ?", outcome.JobID).
			Updates(map[string]any{
				"created_invites":  gorm.Expr("created_invites + ?", c.CreatedInvites),
				"failed_creates":   gorm.Expr("failed_creates + ?", c.FailedCreates),
				"processed_emails": gorm.Expr("processed_emails + ?", c.ProcessedEmails),
				"updated_at":       gorm.Expr("NOW()"),
			}).Error; err != nil {
			return fmt.Errorf("increment import counters: %w", err)
		}
		return nil
	})
}

func toDomainImportJob(row models.ImportJob) domain.ImportJob {
	return domain.ImportJob{
		ID:            row.ID,
		Status:        domain.JobStatus(row.Status),
		SourceKey:     row.SourceKey,
		TotalRows:     row.TotalRows,
		ProcessedRows: row.ProcessedRows,
		Counters: domain.ImportCounters{
			ValidEmails:          row.ValidEmails,
			InvalidEmails:        row.InvalidEmails,
			DuplicateInFile:      row.DuplicateInFile,
			AlreadyExistsInDB:    row.AlreadyExistsInDB,
			TotalEmailsExtracted: row.TotalEmailsExtracted,
			CreatedInvites:       row.CreatedInvites,
			FailedCreates:        row.FailedCreates,
			ProcessedEmails:      row.ProcessedEmails,
		},
		CompletedAt: row.CompletedAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
