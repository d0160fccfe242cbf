package outreach

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	domain "github.com/mohammadpnp/outreach-import/internal/domain/outreach"
)

const reasonCreatedElsewhere = "Invitation created by another process before import"

func (a *advancer) importBatch(ctx context.Context, log *logrus.Entry, jobID string) (AdvanceOutput, error) {
	job, err := a.deps.Jobs.Get(ctx, jobID)
	if err != nil {
		return AdvanceOutput{}, err
	}

	if job.Status == domain.JobStatusCompleted {
		return a.output(job, 100, true), nil
	}

	if job.Status != domain.JobStatusProcessing {
		if !job.ValidationDone() {
			return AdvanceOutput{}, ErrValidationIncomplete
		}
		if _, err := a.deps.Jobs.TransitionStatus(ctx, jobID, job.Status, domain.JobStatusProcessing); err != nil {
			return AdvanceOutput{}, fmt.Errorf("start import: %w", err)
		}
		if job, err = a.deps.Jobs.Get(ctx, jobID); err != nil {
			return AdvanceOutput{}, err
		}
		switch job.Status {
		case domain.JobStatusProcessing:
			log.WithField("valid_emails", job.Counters.ValidEmails).Info("import job processing started")
		case domain.JobStatusCompleted:
			return a.output(job, 100, true), nil
		default:
			return AdvanceOutput{}, fmt.Errorf("start import: status is %s: %w", job.Status, domain.ErrConcurrentUpdate)
		}
	}

	items, err := a.deps.Items.NextValid(ctx, jobID, a.cfg.ImportBatchSize)
	if err != nil {
		return AdvanceOutput{}, fmt.Errorf("load valid items: %w", err)
	}

	if len(items) == 0 {
		if _, err := a.deps.Jobs.Complete(ctx, jobID, a.cfg.Now().UTC()); err != nil {
			return AdvanceOutput{}, fmt.Errorf("complete job: %w", err)
		}
		if job, err = a.deps.Jobs.Get(ctx, jobID); err != nil {
			return AdvanceOutput{}, err
		}
		log.WithFields(logrus.Fields{
			"created": job.Counters.CreatedInvites,
			"failed":  job.Counters.FailedCreates,
		}).Info("import job completed")
		return a.output(job, 100, true), nil
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return AdvanceOutput{}, err
		}

		outcome, err := a.materialize(ctx, item)
		if err != nil {
			return AdvanceOutput{}, err
		}
		if outcome.Status == domain.ItemStatusFailedCreate {
			log.WithFields(logrus.Fields{
				"row":    item.RowNumber,
				"reason": outcome.Reason,
			}).Warn("invitation not created")
		}

		if err := a.deps.Jobs.RecordImportOutcome(ctx, outcome); err != nil {
			if errors.Is(err, domain.ErrConcurrentUpdate) {
				log.WithField("item_id", item.ID).Debug("item already resolved")
				continue
			}
			return AdvanceOutput{}, fmt.Errorf("record outcome for row %d: %w", item.RowNumber, err)
		}
		a.metrics.observeOutcome(outcome)
	}

	if job, err = a.deps.Jobs.Get(ctx, jobID); err != nil {
		return AdvanceOutput{}, err
	}
	return a.output(job, job.ImportProgress(), false), nil
}

// materialize resolves one VALID item to its terminal outcome. Only storage
// failures on the pre-check abort the slice; everything else is recorded
// against the item.
func (a *advancer) materialize(ctx context.Context, item domain.ImportJobItem) (domain.ImportOutcome, error) {
	outcome := domain.ImportOutcome{JobID: item.JobID, ItemID: item.ID}

	inviteID := invitationIDFor(item)

	existing, err := a.deps.Invitations.FindByEmail(ctx, item.EmailNormalized)
	switch {
	case err == nil && existing.ID == inviteID:
		// Created by an earlier attempt whose outcome write was lost.
		outcome.Status = domain.ItemStatusCreated
		outcome.InviteID = existing.ID
		outcome.InstitutionID = existing.InstitutionID
		return outcome, nil
	case err == nil:
		outcome.Status = domain.ItemStatusAlreadyExistsDB
		outcome.Reason = reasonCreatedElsewhere
		return outcome, nil
	case !errors.Is(err, domain.ErrInvitationNotFound):
		return domain.ImportOutcome{}, fmt.Errorf("check invitation for row %d: %w", item.RowNumber, err)
	}

	institutionID, err := a.resolveInstitution(ctx, item)
	if err != nil {
		outcome.Status = domain.ItemStatusFailedCreate
		outcome.Reason = truncateReason("resolve institution: " + err.Error())
		return outcome, nil
	}
	outcome.InstitutionID = institutionID

	now := a.cfg.Now().UTC()
	invitation, err := a.deps.Invitations.Create(ctx, domain.Invitation{
		ID:            inviteID,
		Email:         item.EmailNormalized,
		InstitutionID: institutionID,
		Role:          a.cfg.InviteRole,
		Token:         uuid.NewString(),
		Status:        domain.InvitationStatusPending,
		ExpiresAt:     now.Add(a.cfg.InviteTTL),
		CreatedAt:     now,
	})
	if err != nil {
		outcome.Status = domain.ItemStatusFailedCreate
		outcome.Reason = truncateReason("create invitation: " + err.Error())
		return outcome, nil
	}

	outcome.Status = domain.ItemStatusCreated
	outcome.InviteID = invitation.ID
	return outcome, nil
}

var invitationNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("outreach-import/invitation"))

// invitationIDFor is stable per item so a retry can recognise its own invitation.
func invitationIDFor(item domain.ImportJobItem) string {
	return uuid.NewSHA1(invitationNamespace, []byte(fmt.Sprintf("%s:%d", item.JobID, item.ID))).String()
}

func (a *advancer) resolveInstitution(ctx context.Context, item domain.ImportJobItem) (string, error) {
	if item.InstitutionID != nil && *item.InstitutionID != "" {
		return *item.InstitutionID, nil
	}

	name := domain.InstitutionDisplayName(item.InstitutionNameRaw)
	existing, err := a.deps.Institutions.FindByName(ctx, name)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, domain.ErrInstitutionNotFound) {
		return "", err
	}

	now := a.cfg.Now().UTC()
	created, err := a.deps.Institutions.Create(ctx, domain.Institution{
		ID:                 uuid.NewString(),
		LegalName:          name,
		TradingName:        name,
		RegistrationNumber: domain.PlaceholderRegistrationNumber(now, uuid.NewString()[:8]),
		CreatedAt:          now,
	})
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

func truncateReason(reason string) string {
	const maxLen = 1000
	reason = strings.TrimSpace(reason)
	if len(reason) <= maxLen {
		return reason
	}
	return reason[:maxLen]
}
