package timetricks

import (
	"fmt"
	"testing"
	"time"
)

func ExampleRedate() {
	day := time.Date(2024, time.June, 21, 0, 0, 0, 0, time.UTC)
	clock := time.Date(2024, time.June, 20, 21, 58, 12, 0, time.UTC)
	fmt.Println(Redate(clock, day).Format(time.RFC3339))
	// Output:
	// 2024-06-21T21:58:12Z
}

func ExampleTomorrow() {
	t := time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC)
	fmt.Println(Tomorrow(t).Format("2006-01-02 15:04"))
	// Output:
	// 2025-01-01 00:00
}

func TestTrimClockOnDSTDay(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("no tzdata: %v", err)
	}
	// Clocks go forward at 02:00 on 2024-03-31 in Paris, so the day only
	// has 23 hours and subtracting the wall clock overshoots.
	t1 := time.Date(2024, time.March, 31, 20, 0, 0, 0, paris)
	got := TrimClock(t1)
	want := time.Date(2024, time.March, 31, 0, 0, 0, 0, paris)
	if !got.Equal(want) {
		t.Errorf("got %s, wanted %s", got, want)
	}
}

func TestClock(t *testing.T) {
	table := []struct {
		t    time.Time
		want time.Duration
	}{
		{time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 0},
		{time.Date(2020, 1, 1, 13, 45, 30, 0, time.UTC), 13*time.Hour + 45*time.Minute + 30*time.Second},
		{time.Date(2020, 1, 1, 23, 59, 59, 500, time.UTC), 24*time.Hour - time.Second + 500},
	}
	for _, tc := range table {
		t.Run(tc.t.String(), func(t *testing.T) {
			if got := Clock(tc.t); got != tc.want {
				t.Errorf("got %s, wanted %s", got, tc.want)
			}
			if got := AtClock(tc.t, tc.want); !got.Equal(tc.t) {
				t.Errorf("AtClock round trip: got %s, wanted %s", got, tc.t)
			}
		})
	}
}

func TestSameDay(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	utc := time.Date(2024, time.June, 20, 22, 0, 0, 0, time.UTC)
	if SameDay(utc, utc.In(tokyo)) {
		t.Errorf("%s and %s read as the same day", utc, utc.In(tokyo))
	}
	if !SameDay(utc, AtClock(utc, 90*time.Minute)) {
		t.Errorf("AtClock moved the date")
	}
	if UniqueDay(utc) != "20240620" {
		t.Errorf("UniqueDay = %q", UniqueDay(utc))
	}
}
