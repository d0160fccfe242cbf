package repository

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/mohammadpnp/outreach-import/internal/domain/outreach"
	"github.com/mohammadpnp/outreach-import/internal/infrastructure/db/models"
	"gorm.io/gorm"
)

type InstitutionRepository struct {
	db *gorm.DB
}

func NewInstitutionRepository(db *gorm.DB) *InstitutionRepository {
	return &InstitutionRepository{db: db}
}

func (r *InstitutionRepository) FindByName(ctx context.Context, name string) (domain.Institution, error) {
	var row models.Institution

	err := r.db.WithContext(ctx).
		Where("lower(legal_name) = lower(?) OR lower(trading_name) = lower(?)", name, name).
		Order("created_at, id").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Institution{}, domain.ErrInstitutionNotFound
		}
		return domain.Institution{}, fmt.Errorf("find institution: %w", err)
	}

	return domain.Institution{
		ID:                 row.ID,
		LegalName:          row.LegalName,
		TradingName:        row.TradingName,
		RegistrationNumber: row.RegistrationNumber,
		CreatedAt:          row.CreatedAt,
	}, nil
}

func (r *InstitutionRepository) Create(ctx context.Context, institution domain.Institution) (domain.Institution, error) {
	row := models.Institution{
		ID:                 institution.ID,
		LegalName:          institution.LegalName,
		TradingName:        institution.TradingName,
		RegistrationNumber: institution.RegistrationNumber,
		CreatedAt:          institution.CreatedAt,
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Institution{}, fmt.Errorf("create institution: %w", err)
	}

	institution.CreatedAt = row.CreatedAt
	return institution, nil
}
