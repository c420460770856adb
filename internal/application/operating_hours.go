package application

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// DailyWindow is a wall-clock window measured from local midnight.
type DailyWindow struct {
	Open  time.Duration
	Close time.Duration
}

// DefaultDailyWindow is 08:00 to 22:00.
func DefaultDailyWindow() DailyWindow {
	return DailyWindow{Open: 8 * time.Hour, Close: 22 * time.Hour}
}

// ParseDailyWindow parses "HH:MM" bounds. Close may be "24:00".
func ParseDailyWindow(open, close string) (DailyWindow, error) {
	o, err := parseClock(open)
	if err != nil {
		return DailyWindow{}, fmt.Errorf("open: %w", err)
	}
	c, err := parseClock(close)
	if err != nil {
		return DailyWindow{}, fmt.Errorf("close: %w", err)
	}
	if o >= c {
		return DailyWindow{}, fmt.Errorf("open %s must be before close %s", open, close)
	}
	return DailyWindow{Open: o, Close: c}, nil
}

func (w DailyWindow) String() string {
	return formatClock(w.Open) + "-" + formatClock(w.Close)
}

// contains reports whether a same-day span [from, to) measured from local
// midnight fits the window.
func (w DailyWindow) contains(from, to time.Duration) bool {
	return from >= w.Open && to <= w.Close
}

// OperatingHours holds the default daily window and per-room overrides,
// evaluated in Location.
type OperatingHours struct {
	Location *time.Location
	Default  DailyWindow
	Rooms    map[string]DailyWindow
}

// DefaultOperatingHours opens every room from 08:00 to 22:00 UTC.
func DefaultOperatingHours() OperatingHours {
	return OperatingHours{Location: time.UTC, Default: DefaultDailyWindow()}
}

// WindowFor returns the window that applies to roomID.
func (h OperatingHours) WindowFor(roomID string) DailyWindow {
	if w, ok := h.Rooms[roomID]; ok {
		return w
	}
	if h.Default == (DailyWindow{}) {
		return DefaultDailyWindow()
	}
	return h.Default
}

// Validate checks that the local start and end of the reservation fall on the
// same day inside the room's window. An end at the following midnight counts
// as 24:00.
func (h OperatingHours) Validate(roomID string, start, end time.Time) error {
	loc := h.Location
	if loc == nil {
		loc = time.UTC
	}
	window := h.WindowFor(roomID)
	localStart := start.In(loc)
	localEnd := end.In(loc)

	from := sinceMidnight(localStart)
	to := sinceMidnight(localEnd)
	sy, sm, sd := localStart.Date()
	ey, em, ed := localEnd.Date()
	sameDay := sy == ey && sm == em && sd == ed
	if !sameDay {
		ny, nm, nd := localStart.AddDate(0, 0, 1).Date()
		if ny == ey && nm == em && nd == ed && to == 0 {
			to = day
			sameDay = true
		}
	}

	if !sameDay || !window.contains(from, to) {
		return &OutsideOperatingHoursError{RoomID: roomID, Start: start, End: end, Window: window}
	}
	return nil
}

func sinceMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

func parseClock(value string) (time.Duration, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock %q", value)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q", value)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || h < 0 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid clock %q", value)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

func formatClock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}
