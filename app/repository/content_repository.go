package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ManuelReschke/NewsDesk/app/models"
)

// contentRepository implements the ContentRepository interface
type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new content repository instance
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

// Create inserts a new item. ID and version are assigned when missing.
func (r *contentRepository) Create(ctx context.Context, item *models.ContentItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Version == 0 {
		item.Version = 1
	}
	if item.Status == "" {
		item.Status = models.ContentStatusPending
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// GetByID retrieves an item by its ID
func (r *contentRepository) GetByID(ctx context.Context, id string) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, translateErr(err)
	}
	return &item, nil
}

// List returns items matching the filter, newest first
func (r *contentRepository) List(ctx context.Context, filter ContentFilter) ([]models.ContentItem, error) {
	q := r.db.WithContext(ctx).Model(&models.ContentItem{})
	if filter.AuthorID != "" {
		q = q.Where("author_id = ?", filter.AuthorID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	items := []models.ContentItem{}
	err := q.Order("created_at DESC").Find(&items).Error
	return items, err
}

// Update performs a compare-and-set on the version column.
func (r *contentRepository) Update(ctx context.Context, item *models.ContentItem, expectedVersion int64) error {
	now := time.Now()
	next := expectedVersion + 1

	tx := r.db.WithContext(ctx).Model(&models.ContentItem{}).
		Where("id = ? AND version = ?", item.ID, expectedVersion).
		Updates(map[string]interface{}{
			"title":      item.Title,
			"detail":     item.Detail,
			"status":     item.Status,
			"version":    next,
			"updated_at": now,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.ContentItem{}).Where("id = ?", item.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}

	item.Version = next
	item.UpdatedAt = now
	return nil
}

// Delete hard deletes an item. Deleting a missing id is not an error.
func (r *contentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ContentItem{}).Error
}
