package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestClockNowFuncFollowsAdvance(t *testing.T) {
	start := time.Date(2025, time.March, 3, 18, 0, 0, 0, time.UTC)
	clock := NewClock(start)
	now := clock.NowFunc()

	if got := clock.Advance(90 * time.Minute); !got.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", got)
	}
	if !now().Equal(clock.Now()) {
		t.Fatalf("NowFunc is detached from the clock: %v vs %v", now(), clock.Now())
	}

	var nilClock *Clock
	if nilClock.NowFunc()().IsZero() {
		t.Fatal("nil clock should fall back to wall time")
	}
}

func TestClockReservationHelpers(t *testing.T) {
	start := time.Date(2025, time.March, 3, 18, 0, 0, 0, time.UTC)
	r := NewReservationFixture(WithReservationWindow(start, start.Add(2*time.Hour)))
	clock := NewClock(start.Add(-24 * time.Hour))

	if got := clock.During(r); !got.Equal(start.Add(time.Hour)) {
		t.Fatalf("During returned %v", got)
	}
	if got := clock.PassEnd(r); !got.After(r.EndTime) {
		t.Fatalf("PassEnd returned %v, want after %v", got, r.EndTime)
	}
}
