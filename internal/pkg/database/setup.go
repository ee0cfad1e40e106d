package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ManuelReschke/NewsDesk/app/models"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/config"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

// datetimePrecision matches the DATETIME(3) columns of the mysql migrations.
var datetimePrecision = 3

// Models lists every table owned by the SQL store.
func Models() []interface{} {
	return []interface{}{
		&models.ContentItem{},
		&models.UserProfile{},
		&models.Entitlement{},
		&models.BillingWebhookEvent{},
	}
}

// Dialector picks the GORM driver for the configured store.
func Dialector(driver string, c config.DBConfig) (gorm.Dialector, error) {
	switch driver {
	case config.StoreMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.Name)
		return mysql.New(mysql.Config{
			DSN:                       dsn,
			DefaultStringSize:         256,
			DefaultDatetimePrecision:  &datetimePrecision,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), nil
	case config.StorePostgres:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			c.Host, c.User, c.Password, c.Name, c.Port)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
}

// SetupDatabase connects with retries and migrates the schema.
func SetupDatabase(cfg config.Config, logger *slog.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.StoreDriver, cfg.DB)
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(dialector, &gorm.Config{})
		if err == nil {
			if err = db.AutoMigrate(Models()...); err != nil {
				return nil, fmt.Errorf("auto migrate: %w", err)
			}
			return db, nil
		}

		logger.Warn("failed to connect to database", "attempt", i+1, "max", maxRetries, "error", err)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	return nil, err
}
