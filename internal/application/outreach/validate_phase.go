package outreach

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	domain "github.com/mohammadpnp/outreach-import/internal/domain/outreach"
)

func (a *advancer) validate(ctx context.Context, log *logrus.Entry, jobID string) (AdvanceOutput, error) {
	job, err := a.deps.Jobs.Get(ctx, jobID)
	if err != nil {
		return AdvanceOutput{}, err
	}

	if job.Status == domain.JobStatusProcessing || job.Status == domain.JobStatusCompleted {
		return a.output(job, 100, true), nil
	}

	if job.Status == domain.JobStatusUploaded {
		if _, err := a.deps.Jobs.TransitionStatus(ctx, jobID, domain.JobStatusUploaded, domain.JobStatusValidating); err != nil {
			return AdvanceOutput{}, fmt.Errorf("start validation: %w", err)
		}
		if job, err = a.deps.Jobs.Get(ctx, jobID); err != nil {
			return AdvanceOutput{}, err
		}
		if job.Status != domain.JobStatusValidating {
			return AdvanceOutput{}, fmt.Errorf("start validation: status is %s: %w", job.Status, domain.ErrConcurrentUpdate)
		}
		log.Info("import job validation started")
	}

	sheet, err := loadSheet(ctx, a.deps.Source, a.deps.Parser, job.SourceKey)
	if err != nil {
		return AdvanceOutput{}, err
	}

	if job.TotalRows == 0 && len(sheet.Rows) > 0 {
		if err := a.deps.Jobs.SetTotalRows(ctx, jobID, int64(len(sheet.Rows))); err != nil {
			return AdvanceOutput{}, fmt.Errorf("set total rows: %w", err)
		}
		job.TotalRows = int64(len(sheet.Rows))
	}

	from := job.ProcessedRows
	to := min(from+int64(a.cfg.ChunkSize), job.TotalRows)
	if from >= to {
		return a.output(job, 100, true), nil
	}

	log = log.WithField("row_window", fmt.Sprintf("%d-%d", from+1, to))

	rows := sheet.Window(from, to)
	normalized := make([]domain.NormalizedRow, 0, len(rows))
	ambiguous := make(map[string]struct{})
	for _, row := range rows {
		n := a.normalizer.Normalize(row)
		for _, label := range n.AmbiguousLabels {
			ambiguous[label] = struct{}{}
		}
		normalized = append(normalized, n)
	}
	if len(ambiguous) > 0 {
		log.WithField("labels", mapKeys(ambiguous)).Debug("column labels matched more than one rule")
	}

	emails := domain.UniqueEmails(normalized)
	priorRowOf := map[string]int{}
	existsInStore := map[string]struct{}{}
	if len(emails) > 0 {
		if priorRowOf, err = a.deps.Items.PriorRows(ctx, jobID, emails); err != nil {
			return AdvanceOutput{}, fmt.Errorf("load prior job items: %w", err)
		}
		if existsInStore, err = a.deps.Invitations.ExistingEmails(ctx, emails); err != nil {
			return AdvanceOutput{}, fmt.Errorf("load existing invitations: %w", err)
		}
	}

	items := domain.Classify(normalized, priorRowOf, existsInStore)
	counters := domain.TallyItems(items)

	if err := a.deps.Slices.CommitValidationSlice(ctx, domain.ValidationSlice{
		JobID:    jobID,
		FromRow:  from,
		ToRow:    to,
		Items:    items,
		Counters: counters,
	}); err != nil {
		return AdvanceOutput{}, fmt.Errorf("commit validation slice: %w", err)
	}
	a.metrics.observeItems(items)

	job, err = a.deps.Jobs.Get(ctx, jobID)
	if err != nil {
		return AdvanceOutput{}, err
	}

	log.WithFields(logrus.Fields{
		"items":   len(items),
		"valid":   counters.ValidEmails,
		"invalid": counters.InvalidEmails,
	}).Info("validation slice committed")

	return a.output(job, domain.Progress(job.ProcessedRows, job.TotalRows), job.ProcessedRows >= job.TotalRows), nil
}

func mapKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
