package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	domain "github.com/mohammadpnp/outreach-import/internal/domain/outreach"
)

// ImportJobItemBulkRepository writes validation slices with COPY.
type ImportJobItemBulkRepository struct {
	pool *pgxpool.Pool
}

func NewImportJobItemBulkRepository(pool *pgxpool.Pool) *ImportJobItemBulkRepository {
	return &ImportJobItemBulkRepository{pool: pool}
}

func (r *ImportJobItemBulkRepository) CommitValidationSlice(ctx context.Context, slice domain.ValidationSlice) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Watermark first: it locks the job row, and a stale FromRow matches nothing.
	c := slice.Counters
	tag, err := tx.Exec(ctx, `
UPDATE import_jobs
   SET processed_rows = $3,
       valid_emails = valid_emails + $4,
       invalid_emails = invalid_emails + $5,
       duplicate_in_file = duplicate_in_file + $6,
       already_exists_in_db = already_exists_in_db + $7,
       total_emails_extracted = total_emails_extracted + $8,
       updated_at = NOW()
 WHERE id = $1
   AND processed_rows = $2
   AND status = $9
`, slice.JobID, slice.FromRow, slice.ToRow,
		c.ValidEmails, c.InvalidEmails, c.DuplicateInFile, c.AlreadyExistsInDB, c.TotalEmailsExtracted,
		string(domain.JobStatusValidating))
	if err != nil {
		return fmt.Errorf("advance validation watermark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrMoved(ctx, tx, slice.JobID)
	}

	if len(slice.Items) > 0 {
		rows := make([][]any, 0, len(slice.Items))
		for _, item := range slice.Items {
			rows = append(rows, []any{
				slice.JobID,
				int32(item.RowNumber),
				item.EmailRaw,
				item.EmailNormalized,
				item.InstitutionNameRaw,
				string(item.Status),
				item.Reason,
			})
		}

		if _, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"import_job_items"},
			[]string{"job_id", "row_number", "email_raw", "email_normalized", "institution_name_raw", "status", "reason"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("copy import job items: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit validation slice: %w", err)
	}
	return nil
}

func (r *ImportJobItemBulkRepository) missingOrMoved(ctx context.Context, tx pgx.Tx, jobID string) error {
	var exists bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM import_jobs WHERE id = $1)", jobID).Scan(&exists); err != nil {
		return fmt.Errorf("check import job: %w", err)
	}
	if !exists {
		return domain.ErrImportJobNotFound
	}
	return domain.ErrConcurrentUpdate
}
