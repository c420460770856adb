// Package postgres implements the persistence repositories on PostgreSQL
// through gorm and the pgx driver. Overlapping active reservations are
// refused by exclusion constraints on the reservations table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/reservation-scheduler/internal/persistence"
)

var (
	_ persistence.ReservationRepository = (*Store)(nil)
	_ persistence.CatalogRepository     = (*Store)(nil)
	_ persistence.StateRepository       = (*Store)(nil)
)

// Config holds PostgreSQL connection settings.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store is a PostgreSQL backed implementation of every persistence repository.
type Store struct {
	db     *gorm.DB
	dsn    string
	logger *zap.Logger
}

// Open connects to PostgreSQL and verifies the connection.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("postgres: DSN is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 10
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger = logger.With(zap.String("component", "postgres"))
	logger.Info("postgres connection established", zap.Int("max_open_conns", maxOpen))
	return &Store{db: db, dsn: cfg.DSN, logger: logger}, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
