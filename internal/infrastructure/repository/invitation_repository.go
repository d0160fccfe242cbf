package repository

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/mohammadpnp/outreach-import/internal/domain/outreach"
	"github.com/mohammadpnp/outreach-import/internal/infrastructure/db/models"
	"gorm.io/gorm"
)

type InvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) ExistingEmails(ctx context.Context, emails []string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	if len(emails) == 0 {
		return out, nil
	}

	var found []string
	if err := r.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("email IN ?", emails).
		Pluck("email", &found).Error; err != nil {
		return nil, fmt.Errorf("load existing invitations: %w", err)
	}

	for _, email := range found {
		out[email] = struct{}{}
	}
	return out, nil
}

func (r *InvitationRepository) FindByEmail(ctx context.Context, email string) (domain.Invitation, error) {
	var row models.Invitation

	err := r.db.WithContext(ctx).Where("email = ?", email).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Invitation{}, domain.ErrInvitationNotFound
		}
		return domain.Invitation{}, fmt.Errorf("find invitation: %w", err)
	}

	return domain.Invitation{
		ID:            row.ID,
		Email:         row.Email,
		InstitutionID: row.InstitutionID,
		Role:          row.Role,
		Token:         row.Token,
		Status:        row.Status,
		ExpiresAt:     row.ExpiresAt,
		CreatedAt:     row.CreatedAt,
	}, nil
}

func (r *InvitationRepository) Create(ctx context.Context, invitation domain.Invitation) (domain.Invitation, error) {
	row := models.Invitation{
		ID:            invitation.ID,
		Email:         invitation.Email,
		InstitutionID: invitation.InstitutionID,
		Role:          invitation.Role,
		Token:         invitation.Token,
		Status:        invitation.Status,
		ExpiresAt:     invitation.ExpiresAt,
		CreatedAt:     invitation.CreatedAt,
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Invitation{}, fmt.Errorf("create invitation: %w", err)
	}

	invitation.CreatedAt = row.CreatedAt
	return invitation, nil
}
