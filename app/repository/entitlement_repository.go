package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ManuelReschke/NewsDesk/app/models"
)

type entitlementRepository struct {
	db *gorm.DB
}

func NewEntitlementRepository(db *gorm.DB) EntitlementRepository {
	return &entitlementRepository{db: db}
}

func (r *entitlementRepository) Create(ctx context.Context, e *models.Entitlement) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(e).Error
}

// ListActiveByUser returns active rows, newest first.
func (r *entitlementRepository) ListActiveByUser(ctx context.Context, userID string) ([]models.Entitlement, error) {
	var rows []models.Entitlement
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.EntitlementStatusActive).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
