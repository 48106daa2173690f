package database

import (
	"fmt"

	"gorm.io/gorm"
)

// RunMigrations executes the hand-written schema steps AutoMigrate does not cover.
func RunMigrations(db *gorm.DB) error {
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func createIndexes(db *gorm.DB) error {
	// Lookups of earlier attempts for the same case
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_query_logs_case
		ON query_logs(case_type, case_number, case_year)
	`).Error; err != nil {
		return err
	}

	// History listing, newest first
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_query_logs_time
		ON query_logs(query_time)
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_documents_judgment_date
		ON documents(judgment_date)
	`).Error; err != nil {
		return err
	}

	return nil
}
