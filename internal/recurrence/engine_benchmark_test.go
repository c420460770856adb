package recurrence

import (
	"testing"
	"time"
)

func BenchmarkEngineExpandWeekly(b *testing.B) {
	engine := NewEngine(nil)
	anchorStart := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	anchorEnd := anchorStart.Add(90 * time.Minute)

	until := anchorStart.AddDate(0, 3, 0)
	rule := Rule{
		Frequency: FrequencyWeekly,
		Interval:  1,
		DaysOfWeek: []time.Weekday{
			time.Monday,
			time.Tuesday,
			time.Wednesday,
			time.Thursday,
			time.Friday,
		},
		Until: &until,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		occurrences, err := engine.Expand(anchorStart, anchorEnd, rule)
		if err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
		if len(occurrences) == 0 {
			b.Fatal("expected occurrences to be generated")
		}
	}
}
