package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrNotFound   = errors.New("db: record not found")
	ErrEmailTaken = errors.New("db: email already registered")
)

// Store is the Postgres-backed form store.
type Store struct {
	db *gorm.DB
}

// Open connects to dsn, configures the pool and migrates the schema.
func Open(dsn string, log *slog.Logger) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("db: DATABASE_URL is not set")
	}

	gormLogger := logger.New(
		slog.NewLogLogger(log.Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("db: connect: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("db: get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	s := &Store{db: gdb}
	if err := s.Migrate(); err != nil {
		return nil, fmt.Errorf("db: migrate: %w", err)
	}
	log.Info("database connected and migrated")
	return s, nil
}

// Migrate creates or updates every table.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&User{},
		&Form{},
		&Question{},
		&Option{},
		&Response{},
		&Answer{},
	)
}

// SQL returns the underlying connection pool.
func (s *Store) SQL() (*sql.DB, error) {
	return s.db.DB()
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	}
	return err
}
