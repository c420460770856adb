package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/reservation-scheduler/internal/scheduler"
)

// MaxOccurrences bounds every expansion regardless of the caller's request.
const MaxOccurrences = 100

// Frequency represents supported recurrence intervals.
type Frequency string

const (
	// FrequencyDaily advances by Interval calendar days.
	FrequencyDaily Frequency = "DAILY"
	// FrequencyWeekly emits the selected weekdays of every Interval-th week.
	FrequencyWeekly Frequency = "WEEKLY"
	// FrequencyMonthly advances by Interval months on the anchor's day of month.
	FrequencyMonthly Frequency = "MONTHLY"
)

// ParseFrequency accepts the canonical upper-case names, case-insensitively.
func ParseFrequency(value string) (Frequency, error) {
	switch Frequency(strings.ToUpper(strings.TrimSpace(value))) {
	case FrequencyDaily:
		return FrequencyDaily, nil
	case FrequencyWeekly:
		return FrequencyWeekly, nil
	case FrequencyMonthly:
		return FrequencyMonthly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, value)
	}
}

// Rule describes how an anchor booking repeats.
type Rule struct {
	Frequency Frequency
	Interval  int
	// DaysOfWeek only applies to weekly rules. An empty set selects every day.
	DaysOfWeek []time.Weekday
	// Until is an exclusive upper bound on occurrence start times.
	Until *time.Time
	// MaxOccurrences is clamped to MaxOccurrences; zero means the clamp alone.
	MaxOccurrences int
}

// Occurrence is one concrete instance produced by an expansion.
type Occurrence struct {
	Index int
	Start time.Time
	End   time.Time
}

// Engine expands recurrence rules into occurrences.
type Engine struct {
	location *time.Location
}

// NewEngine constructs an Engine that performs calendar arithmetic in loc.
// If loc is nil, UTC is used.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{location: loc}
}

var (
	// ErrInvalidFrequency indicates the recurrence frequency is not supported.
	ErrInvalidFrequency = errors.New("recurrence: invalid frequency")
	// ErrInvalidInterval indicates a non-positive interval step.
	ErrInvalidInterval = errors.New("recurrence: interval must be positive")
	// ErrInvalidDuration indicates the anchor interval is empty or inverted.
	ErrInvalidDuration = errors.New("recurrence: anchor duration must be positive")
	// ErrInvalidWeekday indicates a weekday outside Sunday..Saturday.
	ErrInvalidWeekday = errors.New("recurrence: invalid weekday")
	// ErrInvalidMaxOccurrences indicates a negative occurrence limit.
	ErrInvalidMaxOccurrences = errors.New("recurrence: max occurrences must not be negative")
)

// Expand turns the anchor interval and rule into an ordered, bounded list of
// occurrences. Each occurrence keeps the anchor's duration. Expansion is a
// pure function of its inputs.
func (e *Engine) Expand(anchorStart, anchorEnd time.Time, rule Rule) ([]Occurrence, error) {
	if err := rule.validate(); err != nil {
		return nil, err
	}
	if !anchorEnd.After(anchorStart) {
		return nil, ErrInvalidDuration
	}

	loc := e.location
	if loc == nil {
		loc = time.UTC
	}
	anchorStart = anchorStart.In(loc)
	anchorEnd = anchorEnd.In(loc)

	limit := rule.limit()
	occurrences := make([]Occurrence, 0, min(limit, 16))

	// emit reports whether generation should continue.
	emit := func(start time.Time) bool {
		if rule.Until != nil && !start.Before(*rule.Until) {
			return false
		}
		s, end := scheduler.Shift(anchorStart, anchorEnd, start)
		occurrences = append(occurrences, Occurrence{Index: len(occurrences), Start: s, End: end})
		return len(occurrences) < limit
	}

	switch rule.Frequency {
	case FrequencyDaily:
		for step := 0; ; step++ {
			if !emit(anchorStart.AddDate(0, 0, step*rule.Interval)) {
				break
			}
		}
	case FrequencyWeekly:
		expandWeekly(anchorStart, rule, emit)
	case FrequencyMonthly:
		for step := 0; ; step++ {
			if !emit(addMonthsClipped(anchorStart, step*rule.Interval)) {
				break
			}
		}
	}

	return occurrences, nil
}

// expandWeekly walks calendar weeks (Monday first) starting with the week
// that holds the anchor, visits each selected weekday of every Interval-th
// week, and skips days before the anchor in the first week.
func expandWeekly(anchorStart time.Time, rule Rule, emit func(time.Time) bool) {
	selected := make(map[time.Weekday]struct{}, len(rule.DaysOfWeek))
	for _, day := range rule.DaysOfWeek {
		selected[day] = struct{}{}
	}

	sinceMonday := (int(anchorStart.Weekday()) + 6) % 7
	weekStart := anchorStart.AddDate(0, 0, -sinceMonday)
	for block := weekStart; ; block = block.AddDate(0, 0, 7*rule.Interval) {
		for offset := 0; offset < 7; offset++ {
			candidate := block.AddDate(0, 0, offset)
			if candidate.Before(anchorStart) {
				continue
			}
			if len(selected) > 0 {
				if _, ok := selected[candidate.Weekday()]; !ok {
					continue
				}
			}
			if !emit(candidate) {
				return
			}
		}
	}
}

func addMonthsClipped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (r Rule) validate() error {
	switch r.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, r.Frequency)
	}
	if r.Interval <= 0 {
		return ErrInvalidInterval
	}
	if r.MaxOccurrences < 0 {
		return ErrInvalidMaxOccurrences
	}
	for _, day := range r.DaysOfWeek {
		if day < time.Sunday || day > time.Saturday {
			return fmt.Errorf("%w: %d", ErrInvalidWeekday, day)
		}
	}
	return nil
}

func (r Rule) limit() int {
	if r.MaxOccurrences <= 0 || r.MaxOccurrences > MaxOccurrences {
		return MaxOccurrences
	}
	return r.MaxOccurrences
}

// ParseWeekday accepts English weekday names or their three-letter
// abbreviations, case-insensitively.
func ParseWeekday(value string) (time.Weekday, error) {
	v := strings.ToUpper(strings.TrimSpace(value))
	for day := time.Sunday; day <= time.Saturday; day++ {
		name := strings.ToUpper(day.String())
		if v == name || v == name[:3] {
			return day, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, value)
}
