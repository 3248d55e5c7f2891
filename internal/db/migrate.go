package db

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"crmbridge/internal/model"
)

// models lists every table in dependency order (referenced tables first).
func models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Company{},
		&model.Contact{},
		&model.Deal{},
	}
}

// Migrate creates or updates the schema. With reset set, the tables are
// dropped first, dependants before the tables they reference.
func Migrate(db *gorm.DB, reset bool, logger *slog.Logger) error {
	if reset {
		tables := models()
		for i := len(tables) - 1; i >= 0; i-- {
			if err := db.Migrator().DropTable(tables[i]); err != nil {
				logger.Warn("drop table failed (may not exist)", slog.String("error", err.Error()))
			}
		}
		logger.Info("tables dropped")
	}

	if err := db.AutoMigrate(models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
