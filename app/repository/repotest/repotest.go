// Package repotest opens throwaway in-memory SQLite stores for tests.
package repotest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ManuelReschke/NewsDesk/app/models"
	"github.com/ManuelReschke/NewsDesk/app/repository"
)

// NewDB returns a migrated in-memory database closed at test cleanup.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.ContentItem{},
		&models.UserProfile{},
		&models.Entitlement{},
		&models.BillingWebhookEvent{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// NewRepositories is NewDB wrapped in the GORM repositories.
func NewRepositories(t testing.TB) *repository.Repositories {
	t.Helper()
	return repository.NewRepositories(NewDB(t))
}
