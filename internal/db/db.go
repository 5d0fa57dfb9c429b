package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"complaint-tracker-backend/config"
	"complaint-tracker-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, err
	}

	if cfg.EnforceDuplicateIndex {
		log.Println("Applying duplicate-suppression index DDL...")
		if err := applyDuplicateGuardDDL(db); err != nil {
			return nil, err
		}
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate applies the schema for every entity. Shared with the test setup.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Room{},
		&model.Complaint{},
		&model.ComplaintAttachment{},
		&model.Department{},
		&model.IssueCategory{},
		&model.PushSubscription{},
		&model.SubscriptionWard{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

// applyDuplicateGuardDDL installs a Postgres partial unique index over the
// duplicate-suppression tuple. The application-level check in the workflow
// engine can race between two concurrent submissions; this index makes the
// second insert fail instead of committing a duplicate.
func applyDuplicateGuardDDL(db *gorm.DB) error {
	ddl := `CREATE UNIQUE INDEX IF NOT EXISTS idx_open_complaint_guard
		ON complaints (issue_type, bed_number, room_number, block, floor, ward, speciality, room_type)
		WHERE status IN ('open', 'in_progress')`
	if err := db.Exec(ddl).Error; err != nil {
		return fmt.Errorf("DDL failed on duplicate guard index: %w", err)
	}
	return nil
}
