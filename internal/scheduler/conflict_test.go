package scheduler

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, time.March, 3, hour, minute, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		aStart     time.Time
		aEnd       time.Time
		bStart     time.Time
		bEnd       time.Time
		wantResult bool
	}{
		{name: "partial overlap", aStart: at(18, 0), aEnd: at(20, 0), bStart: at(19, 0), bEnd: at(21, 0), wantResult: true},
		{name: "containment", aStart: at(8, 0), aEnd: at(12, 0), bStart: at(9, 0), bEnd: at(10, 0), wantResult: true},
		{name: "identical", aStart: at(8, 0), aEnd: at(9, 0), bStart: at(8, 0), bEnd: at(9, 0), wantResult: true},
		{name: "touching end to start", aStart: at(8, 0), aEnd: at(9, 0), bStart: at(9, 0), bEnd: at(10, 0), wantResult: false},
		{name: "touching start to end", aStart: at(9, 0), aEnd: at(10, 0), bStart: at(8, 0), bEnd: at(9, 0), wantResult: false},
		{name: "disjoint", aStart: at(8, 0), aEnd: at(9, 0), bStart: at(11, 0), bEnd: at(12, 0), wantResult: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.wantResult {
				t.Fatalf("Overlaps() = %v, want %v", got, tc.wantResult)
			}
			if got := Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd); got != tc.wantResult {
				t.Fatalf("Overlaps() is not symmetric: got %v, want %v", got, tc.wantResult)
			}
		})
	}
}

func TestOverlaps_MatchesDefinitionOnGrid(t *testing.T) {
	t.Parallel()

	base := at(8, 0)
	point := func(i int) time.Time { return base.Add(time.Duration(i) * 15 * time.Minute) }

	for a := 0; a < 8; a++ {
		for b := a + 1; b <= 8; b++ {
			for c := 0; c < 8; c++ {
				for d := c + 1; d <= 8; d++ {
					want := a < d && b > c
					if got := Overlaps(point(a), point(b), point(c), point(d)); got != want {
						t.Fatalf("Overlaps(%d,%d,%d,%d) = %v, want %v", a, b, c, d, got, want)
					}
				}
			}
		}
	}
}

func TestShift_PreservesDuration(t *testing.T) {
	t.Parallel()

	start, end := Shift(at(18, 0), at(19, 30), at(8, 0).AddDate(0, 0, 2))
	if !start.Equal(at(8, 0).AddDate(0, 0, 2)) {
		t.Fatalf("unexpected start: %v", start)
	}
	if got := end.Sub(start); got != 90*time.Minute {
		t.Fatalf("expected 90m duration, got %v", got)
	}
}

func TestDetectConflicts(t *testing.T) {
	t.Parallel()

	existing := []Booking{
		{ID: "a", RoomID: "R1", TeacherID: "T1", Start: at(18, 0), End: at(20, 0)},
		{ID: "b", RoomID: "R2", TeacherID: "T2", Start: at(19, 0), End: at(21, 0)},
		{ID: "c", RoomID: "R1", TeacherID: "T3", Start: at(20, 0), End: at(21, 0)},
	}

	t.Run("reports room conflicts", func(t *testing.T) {
		t.Parallel()
		got := DetectConflicts(existing, Booking{ID: "new", RoomID: "R1", TeacherID: "T9", Start: at(19, 0), End: at(21, 0)})
		if len(got) != 2 {
			t.Fatalf("expected 2 conflicts, got %d: %+v", len(got), got)
		}
		for _, c := range got {
			if c.Kind != ConflictRoom {
				t.Fatalf("expected room conflicts only, got %+v", c)
			}
		}
		if got[0].Booking.ID != "a" || got[1].Booking.ID != "c" {
			t.Fatalf("unexpected order: %+v", got)
		}
	})

	t.Run("reports teacher conflicts across rooms", func(t *testing.T) {
		t.Parallel()
		got := DetectConflicts(existing, Booking{ID: "new", RoomID: "R9", TeacherID: "T2", Start: at(20, 30), End: at(22, 0)})
		if len(got) != 1 || got[0].Kind != ConflictTeacher || got[0].Booking.ID != "b" {
			t.Fatalf("unexpected conflicts: %+v", got)
		}
	})

	t.Run("ignores the candidate itself", func(t *testing.T) {
		t.Parallel()
		got := DetectConflicts(existing, Booking{ID: "a", RoomID: "R1", TeacherID: "T1", Start: at(18, 0), End: at(19, 30)})
		if len(got) != 0 {
			t.Fatalf("expected no conflicts, got %+v", got)
		}
	})

	t.Run("boundary touching is not a conflict", func(t *testing.T) {
		t.Parallel()
		got := DetectConflicts(existing, Booking{RoomID: "R1", TeacherID: "T1", Start: at(21, 0), End: at(22, 0)})
		if len(got) != 0 {
			t.Fatalf("expected no conflicts, got %+v", got)
		}
	})
}
