package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/NewsDesk/app/models"
)

type userProfileRepository struct {
	db *gorm.DB
}

func NewUserProfileRepository(db *gorm.DB) UserProfileRepository {
	return &userProfileRepository{db: db}
}

func (r *userProfileRepository) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translateErr(err)
	}
	return &p, nil
}

func (r *userProfileRepository) SetChannelToken(ctx context.Context, id string, token *string, at time.Time) error {
	profile := &models.UserProfile{
		ID:              id,
		ChannelToken:    token,
		LastTokenUpdate: &at,
		CreatedAt:       at,
		UpdatedAt:       at,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"channel_token",
			"last_token_update",
			"updated_at",
		}),
	}).Create(profile).Error
}
