package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/reservation-scheduler/internal/persistence"
	"github.com/example/reservation-scheduler/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite storage
// instance for integration-style persistence tests.
type SQLiteHarness struct {
	Reservations persistence.ReservationRepository
	Catalog      persistence.CatalogRepository
	States       persistence.StateRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// Seed stores catalog fixtures, failing the test on the first error.
func (h *SQLiteHarness) Seed(tb testing.TB, rooms []RoomFixture, people []PersonFixture, activities []ActivityFixture) {
	tb.Helper()

	ctx := context.Background()
	for _, room := range rooms {
		if err := h.Catalog.UpsertRoom(ctx, room.Persistence()); err != nil {
			tb.Fatalf("failed to seed room %s: %v", room.ID, err)
		}
	}
	for _, person := range people {
		if err := h.Catalog.UpsertPerson(ctx, person.Persistence()); err != nil {
			tb.Fatalf("failed to seed person %s: %v", person.ID, err)
		}
	}
	for _, activity := range activities {
		if err := h.Catalog.UpsertActivity(ctx, activity.Persistence()); err != nil {
			tb.Fatalf("failed to seed activity %s: %v", activity.ID, err)
		}
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "scheduler.db")

	storage, err := sqlite.Open(sqlite.DefaultConfig(path), nil)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Reservations: storage,
		Catalog:      storage,
		States:       storage,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
