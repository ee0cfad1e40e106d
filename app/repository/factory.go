package repository

import (
	"errors"
	"sync"

	"gorm.io/gorm"
)

// Factory builds the GORM-backed repositories once and hands out the same
// instances afterwards. It is owned by the caller; there is no global factory.
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// NewRepositories wires every GORM repository to the same handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Content:      NewContentRepository(db),
		UserProfile:  NewUserProfileRepository(db),
		Entitlement:  NewEntitlementRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// translateErr maps GORM sentinel errors onto the package sentinels.
func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
