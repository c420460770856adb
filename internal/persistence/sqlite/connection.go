package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/example/reservation-scheduler/internal/persistence"

	_ "modernc.org/sqlite"
)

// Config holds SQLite connection settings.
type Config struct {
	// DSN is the database file path. ":memory:" is not supported because
	// every pooled connection would see its own database.
	DSN string

	// BusyTimeout sets how long a writer waits for the database lock.
	BusyTimeout time.Duration

	// JournalMode sets the SQLite journal mode (WAL, DELETE, TRUNCATE, ...).
	JournalMode string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns settings suited to a single-process deployment.
func DefaultConfig(dsn string) Config {
	return Config{
		DSN:          dsn,
		BusyTimeout:  5 * time.Second,
		JournalMode:  "WAL",
		MaxOpenConns: 4,
		MaxIdleConns: 4,
	}
}

func (c Config) validate() error {
	if strings.TrimSpace(c.DSN) == "" {
		return errors.New("sqlite: DSN is required")
	}
	if strings.Contains(c.DSN, ":memory:") {
		return errors.New("sqlite: in-memory databases are not supported")
	}
	if c.BusyTimeout < 0 {
		return errors.New("sqlite: busy timeout must not be negative")
	}
	return nil
}

// connectionString appends per-connection pragmas so every pooled
// connection enforces foreign keys and waits on locks.
func (c Config) connectionString() string {
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout.Milliseconds()))
	if c.JournalMode != "" {
		params.Add("_pragma", fmt.Sprintf("journal_mode(%s)", strings.ToUpper(c.JournalMode)))
	}
	params.Set("_txlock", "immediate")

	sep := "?"
	if strings.Contains(c.DSN, "?") {
		sep = "&"
	}
	return "file:" + strings.TrimPrefix(c.DSN, "file:") + sep + params.Encode()
}

// ConnectionPool manages SQLite database connections with transaction support.
type ConnectionPool struct {
	db     *sql.DB
	config Config
}

// NewConnectionPool opens and pings the database.
func NewConnectionPool(config Config) (*ConnectionPool, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", config.connectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &ConnectionPool{db: db, config: config}, nil
}

// DB returns the underlying database connection.
func (cp *ConnectionPool) DB() *sql.DB {
	return cp.db
}

// Close closes the connection pool.
func (cp *ConnectionPool) Close() error {
	if cp.db != nil {
		return cp.db.Close()
	}
	return nil
}

// Ping tests the database connection.
func (cp *ConnectionPool) Ping(ctx context.Context) error {
	return cp.db.PingContext(ctx)
}

// TransactionFunc represents a function that executes within a transaction.
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction executes fn within a database transaction, rolling back
// when fn returns an error or panics.
func (cp *ConnectionPool) WithTransaction(ctx context.Context, fn TransactionFunc) error {
	tx, err := cp.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Trigger messages raised by the overlap triggers in the schema.
const (
	roomOverlapMessage    = "reservation_room_overlap"
	teacherOverlapMessage = "reservation_teacher_overlap"
)

// ErrorMapper maps SQLite errors to persistence layer errors.
type ErrorMapper struct{}

// NewErrorMapper creates a new error mapper.
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// MapError maps SQLite-specific errors to persistence sentinels, keeping
// the driver error in the chain.
func (em *ErrorMapper) MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, roomOverlapMessage):
		return fmt.Errorf("%w: %v", persistence.ErrRoomOverlap, err)
	case strings.Contains(msg, teacherOverlapMessage):
		return fmt.Errorf("%w: %v", persistence.ErrTeacherOverlap, err)
	case strings.Contains(msg, "UNIQUE constraint failed"), strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrForeignKeyViolation, err)
	case strings.Contains(msg, "CHECK constraint failed"), strings.Contains(msg, "NOT NULL constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
	}
	return err
}
