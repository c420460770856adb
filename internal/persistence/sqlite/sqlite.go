// Package sqlite implements the persistence repositories on an embedded
// SQLite database through the pure Go modernc driver. Overlap between active
// reservations is refused by triggers, so concurrent writers cannot both
// commit a double booking.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/reservation-scheduler/internal/persistence"
)

// timeLayout is fixed width so text comparison orders instants.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	_ persistence.ReservationRepository = (*Storage)(nil)
	_ persistence.CatalogRepository     = (*Storage)(nil)
	_ persistence.StateRepository       = (*Storage)(nil)
)

// Storage is a SQLite backed implementation of every persistence repository.
type Storage struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	logger *zap.Logger
}

// Open connects to the database described by config. Call Migrate before use.
func Open(config Config, logger *zap.Logger) (*Storage, error) {
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Storage{
		pool:   pool,
		mapper: NewErrorMapper(),
		logger: logger.With(zap.String("component", "sqlite")),
	}, nil
}

// Ping verifies the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", value, err)
	}
	return t.UTC(), nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}

func boolInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
