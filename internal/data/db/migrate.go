package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
)

// AutoMigrateAll creates or extends the single append-only outcome table.
// Nothing beyond gorm's additive auto-migrate runs here.
func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(&curriculum.Outcome{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
