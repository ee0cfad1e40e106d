package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ContentStatus is the moderation state of a ContentItem.
type ContentStatus string

const (
	ContentStatusPending  ContentStatus = "pending"
	ContentStatusApproved ContentStatus = "approved"
	ContentStatusRejected ContentStatus = "rejected"
)

// ContentStatusAll is the list filter value that disables status filtering.
const ContentStatusAll = "all"

// ParseContentStatus accepts the three known statuses, case-insensitively.
func ParseContentStatus(raw string) (ContentStatus, error) {
	switch s := ContentStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case ContentStatusPending, ContentStatusApproved, ContentStatusRejected:
		return s, nil
	default:
		return "", fmt.Errorf("unknown content status %q", raw)
	}
}

// IsTerminal reports whether no further moderation transition is possible.
func (s ContentStatus) IsTerminal() bool {
	return s == ContentStatusApproved || s == ContentStatusRejected
}

// CanTransition implements the moderation state machine:
// pending -> approved, pending -> rejected. Everything else is refused.
func (s ContentStatus) CanTransition(to ContentStatus) bool {
	return s == ContentStatusPending && to.IsTerminal()
}

// Length limits in characters. 16000 four-byte characters still fit a MySQL TEXT column.
const (
	MaxTitleLength  = 255
	MaxDetailLength = 16000
)

// ContentItem is one submitted news item awaiting or past moderation.
type ContentItem struct {
	ID        string        `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	Title     string        `gorm:"type:varchar(255);not null" json:"title" bson:"title" validate:"required,max=255"`
	Detail    string        `gorm:"type:text;not null" json:"detail" bson:"detail" validate:"required,max=16000"`
	Status    ContentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status" bson:"status"`
	AuthorID  string        `gorm:"type:varchar(128);not null;index" json:"createdByUser" bson:"author_id" validate:"required"`
	Version   int64         `gorm:"not null;default:1" json:"version" bson:"version"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime" json:"updatedAt" bson:"updated_at"`
}

func (ContentItem) TableName() string {
	return "content_items"
}

// Validate checks the author supplied fields. Create and update share it.
func (c *ContentItem) Validate() error {
	v := validator.New()
	return v.Struct(c)
}
