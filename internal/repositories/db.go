// Package repositories provides the data access layer. Each entity exposes a
// small interface so services can run against an in-memory fake in tests and
// the Postgres-backed implementation in production.
package repositories

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"wagmi/internal/config"
	"wagmi/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the Postgres connection, configures pooling and runs
// migrations. The returned handle is the single store of record.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)

	if err := migrate(db); err != nil {
		return nil, err
	}

	log.Println("PostgreSQL connected & migrations applied")
	return db, nil
}

func migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Wallet{},
		&models.Referral{},
		&models.RefreshToken{},
		&models.CoinTransaction{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate failed: %w", err)
	}

	// One outstanding (unused) referral per referrer; a second concurrent
	// insert hits this index instead of creating a duplicate.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_referrals_one_outstanding
		ON referrals (referrer_id) WHERE NOT is_used`).Error
	if err != nil {
		return fmt.Errorf("failed to create outstanding-referral index: %w", err)
	}

	return nil
}

// uniqueViolation reports whether err is a unique-constraint violation,
// returning the violated constraint's name when the driver provides it.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// SQLSTATE 23505: unique_violation.
		if pgErr.Code == "23505" {
			return pgErr.ConstraintName, true
		}
		return "", false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}
	return "", false
}
