package application

import (
	"errors"
	"testing"
	"time"
)

func TestOperatingHours_Validate(t *testing.T) {
	t.Parallel()

	hours := DefaultOperatingHours()
	hours.Rooms = map[string]DailyWindow{"late-room": {Open: 10 * time.Hour, Close: 24 * time.Hour}}

	date := func(d, h, m int) time.Time { return time.Date(2025, time.March, d, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name    string
		roomID  string
		start   time.Time
		end     time.Time
		wantErr bool
	}{
		{name: "inside default window", roomID: "r1", start: date(3, 18, 0), end: date(3, 20, 0)},
		{name: "exactly the window", roomID: "r1", start: date(3, 8, 0), end: date(3, 22, 0)},
		{name: "starts too early", roomID: "r1", start: date(3, 7, 30), end: date(3, 9, 0), wantErr: true},
		{name: "ends too late", roomID: "r1", start: date(3, 21, 0), end: date(3, 22, 30), wantErr: true},
		{name: "spans midnight", roomID: "r1", start: date(3, 21, 0), end: date(4, 9, 0), wantErr: true},
		{name: "room override until midnight", roomID: "late-room", start: date(3, 22, 0), end: date(4, 0, 0)},
		{name: "room override opens later", roomID: "late-room", start: date(3, 9, 0), end: date(3, 11, 0), wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := hours.Validate(tc.roomID, tc.start, tc.end)
			if tc.wantErr {
				var hErr *OutsideOperatingHoursError
				if !errors.As(err, &hErr) {
					t.Fatalf("expected OutsideOperatingHoursError, got %v", err)
				}
				if hErr.RoomID != tc.roomID {
					t.Fatalf("unexpected room on error: %q", hErr.RoomID)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestOperatingHours_UsesLocalClock(t *testing.T) {
	t.Parallel()

	tokyo := time.FixedZone("JST", 9*60*60)
	hours := OperatingHours{Location: tokyo, Default: DefaultDailyWindow()}

	// 00:00 UTC is 09:00 in Tokyo.
	start := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	if err := hours.Validate("r1", start, start.Add(time.Hour)); err != nil {
		t.Fatalf("expected local 09:00 to be inside the window, got %v", err)
	}
}

func TestParseDailyWindow(t *testing.T) {
	t.Parallel()

	w, err := ParseDailyWindow("07:30", "24:00")
	if err != nil {
		t.Fatalf("ParseDailyWindow returned error: %v", err)
	}
	if w.String() != "07:30-24:00" {
		t.Fatalf("unexpected window %s", w)
	}

	for _, bad := range [][2]string{{"8", "22:00"}, {"08:00", "25:00"}, {"22:00", "08:00"}, {"08:61", "09:00"}} {
		if _, err := ParseDailyWindow(bad[0], bad[1]); err == nil {
			t.Fatalf("expected error for %v", bad)
		}
	}
}
