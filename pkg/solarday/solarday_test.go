package solarday

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/spencer-p/celesun/pkg/almanac"
	"github.com/spencer-p/celesun/pkg/timetricks"
)

// fakeAlmanac answers with fixed instants regardless of the query.
type fakeAlmanac struct {
	rise, set time.Time
	err       error
	panics    bool
	queries   []time.Time
}

func (f *fakeAlmanac) Sunrise(utcMidnight time.Time, _ almanac.Location) (time.Time, error) {
	f.queries = append(f.queries, utcMidnight)
	if f.panics {
		panic("division by zero")
	}
	return f.rise, f.err
}

func (f *fakeAlmanac) Sunset(utcMidnight time.Time, _ almanac.Location) (time.Time, error) {
	return f.set, f.err
}

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("no tzdata for %s: %v", name, err)
	}
	return loc
}

func checkInvariants(t *testing.T, d Day) {
	t.Helper()
	for name, got := range map[string]time.Time{
		"sunrise":    d.Sunrise,
		"sunset":     d.Sunset,
		"solar noon": d.SolarNoon,
	} {
		if !timetricks.SameDay(got, d.Date) {
			t.Errorf("%s %s is not on %s", name, got, d.Date)
		}
		if got.Location() != d.Location {
			t.Errorf("%s %s is not in %s", name, got, d.Location)
		}
	}
	if want := d.Sunrise.Add(d.Sunset.Sub(d.Sunrise) / 2); !d.SolarNoon.Equal(want) {
		t.Errorf("solar noon %s, wanted midpoint %s", d.SolarNoon, want)
	}
}

func TestComputeParisSummer(t *testing.T) {
	paris := mustZone(t, "Europe/Paris")
	ref := time.Date(2024, time.June, 21, 10, 0, 0, 0, time.UTC)

	d, err := Compute(almanac.Keep94{}, almanac.Paris, "Europe/Paris", ref)
	if err != nil {
		t.Fatalf("unexpected zone warning: %v", err)
	}
	if d.Degraded {
		t.Fatalf("unexpected degraded day: %v", d.Err)
	}
	checkInvariants(t, d)

	if want := time.Date(2024, time.June, 21, 0, 0, 0, 0, paris); !d.Date.Equal(want) {
		t.Errorf("date %s, wanted %s", d.Date, want)
	}
	within := func(name string, got time.Time, lo, hi time.Duration) {
		if c := timetricks.Clock(got); c < lo || c > hi {
			t.Errorf("%s at %s, wanted between %s and %s", name, got.Format("15:04:05"), lo, hi)
		}
	}
	within("sunrise", d.Sunrise, 5*time.Hour+40*time.Minute, 6*time.Hour)
	within("sunset", d.Sunset, 21*time.Hour+45*time.Minute, 22*time.Hour+5*time.Minute)
	within("solar noon", d.SolarNoon, 13*time.Hour+40*time.Minute, 14*time.Hour)
}

func TestComputeQueriesLocalMidnight(t *testing.T) {
	tokyo := mustZone(t, "Asia/Tokyo")
	// Local midnight of June 21 in Tokyo is 15:00 UTC on June 20. The fake
	// answers put sunset on June 20 in local terms, which must be moved
	// forward onto June 21.
	fake := &fakeAlmanac{
		rise: time.Date(2024, time.June, 20, 19, 25, 0, 0, time.UTC), // 04:25 JST June 21
		set:  time.Date(2024, time.June, 20, 10, 0, 30, 0, time.UTC), // 19:00:30 JST June 20
	}
	ref := time.Date(2024, time.June, 21, 3, 0, 0, 0, time.UTC) // 12:00 JST

	d, err := Compute(fake, almanac.Location{Latitude: 35.68, Longitude: 139.69}, "Asia/Tokyo", ref)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	checkInvariants(t, d)

	want := []time.Time{time.Date(2024, time.June, 20, 15, 0, 0, 0, time.UTC)}
	if diff := cmp.Diff(want, fake.queries); diff != "" {
		t.Errorf("almanac queries (-want,+got):\n%s", diff)
	}
	if want := time.Date(2024, time.June, 21, 4, 25, 0, 0, tokyo); !d.Sunrise.Equal(want) {
		t.Errorf("sunrise %s, wanted %s", d.Sunrise, want)
	}
	if want := time.Date(2024, time.June, 21, 19, 0, 30, 0, tokyo); !d.Sunset.Equal(want) {
		t.Errorf("sunset %s, wanted %s", d.Sunset, want)
	}
}

func TestComputeSpringForward(t *testing.T) {
	paris := mustZone(t, "Europe/Paris")
	// 03:30 CEST, after the clocks went forward.
	ref := time.Date(2024, time.March, 31, 1, 30, 0, 0, time.UTC)
	for name, alm := range map[string]almanac.Almanac{
		"keep94":   almanac.Keep94{},
		"equation": almanac.Equation{},
	} {
		t.Run(name, func(t *testing.T) {
			d, err := Compute(alm, almanac.Paris, "Europe/Paris", ref)
			if err != nil {
				t.Fatalf("unexpected: %v", err)
			}
			checkInvariants(t, d)
			if want := time.Date(2024, time.March, 31, 0, 0, 0, 0, paris); !d.Date.Equal(want) {
				t.Errorf("date %s, wanted %s", d.Date, want)
			}
			// The wall clock carries the winter offset of March 30.
			if c := timetricks.Clock(d.Sunrise); c < 6*time.Hour+20*time.Minute || c > 6*time.Hour+45*time.Minute {
				t.Errorf("sunrise at %s, wanted about 06:30", d.Sunrise.Format("15:04:05"))
			}
		})
	}
}

func TestComputeDateInvariantAcrossZones(t *testing.T) {
	table := []struct {
		zone string
		loc  almanac.Location
	}{
		{"Europe/Paris", almanac.Paris},
		{"America/Los_Angeles", almanac.SantaCruz},
		{"Pacific/Auckland", almanac.Location{Latitude: -36.85, Longitude: 174.76}},
		{"Asia/Kolkata", almanac.Location{Latitude: 19.07, Longitude: 72.87}},
		{"Pacific/Honolulu", almanac.Location{Latitude: 21.31, Longitude: -157.86}},
		// Zone far from the location's solar time: sunset before sunrise
		// by the clock.
		{"Asia/Tokyo", almanac.Location{Latitude: 40.71, Longitude: -74.0}},
	}
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	for _, alm := range []almanac.Almanac{almanac.Keep94{}, almanac.Equation{}} {
		for _, tc := range table {
			t.Run(tc.zone, func(t *testing.T) {
				mustZone(t, tc.zone)
				for ref := start; ref.Before(start.AddDate(1, 0, 0)); ref = ref.Add(97*time.Hour + 13*time.Minute) {
					d, err := Compute(alm, tc.loc, tc.zone, ref)
					if err != nil {
						t.Fatalf("unexpected: %v", err)
					}
					if !d.Covers(ref) {
						t.Errorf("day %s does not cover reference %s", d.Date, ref)
					}
					checkInvariants(t, d)
				}
			})
		}
	}
}

func TestComputeUnknownZone(t *testing.T) {
	ref := time.Date(2024, time.June, 21, 23, 30, 0, 0, time.UTC)
	d, err := Compute(almanac.Keep94{}, almanac.Paris, "Mars/Phobos", ref)
	if !errors.Is(err, ErrUnknownTimeZone) {
		t.Fatalf("got %v, wanted ErrUnknownTimeZone", err)
	}
	if d.Location != time.UTC {
		t.Errorf("location %s, wanted UTC", d.Location)
	}
	if want := time.Date(2024, time.June, 21, 0, 0, 0, 0, time.UTC); !d.Date.Equal(want) {
		t.Errorf("date %s, wanted %s", d.Date, want)
	}
	checkInvariants(t, d)
}

func TestComputeAlmanacFailure(t *testing.T) {
	ref := time.Date(2024, time.June, 21, 12, 0, 0, 0, time.UTC)
	table := []struct {
		name    string
		fake    *fakeAlmanac
		wantErr error
	}{{
		name:    "polar",
		fake:    &fakeAlmanac{err: almanac.ErrNoEvents},
		wantErr: almanac.ErrNoEvents,
	}, {
		name: "panic",
		fake: &fakeAlmanac{panics: true},
	}}

	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Compute(tc.fake, almanac.Location{Latitude: 78.22, Longitude: 15.65}, "", ref)
			if err != nil {
				t.Fatalf("unexpected zone warning: %v", err)
			}
			if !d.Degraded || d.Err == nil {
				t.Fatalf("wanted a degraded day, got %s (err %v)", d, d.Err)
			}
			if tc.wantErr != nil && !errors.Is(d.Err, tc.wantErr) {
				t.Errorf("got %v, wanted %v", d.Err, tc.wantErr)
			}
			checkInvariants(t, d)

			got := []string{
				d.Sunrise.Format("15:04"),
				d.SolarNoon.Format("15:04"),
				d.Sunset.Format("15:04"),
			}
			if diff := cmp.Diff([]string{"06:00", "12:00", "18:00"}, got); diff != "" {
				t.Errorf("fallback times (-want,+got):\n%s", diff)
			}
		})
	}
}

func TestDaylight(t *testing.T) {
	d := fallback(time.Date(2024, time.June, 21, 0, 0, 0, 0, time.UTC), nil)
	table := []struct {
		clock time.Duration
		want  bool
	}{
		{5 * time.Hour, false},
		{6 * time.Hour, true},
		{12 * time.Hour, true},
		{18 * time.Hour, true},
		{18*time.Hour + time.Second, false},
	}
	for _, tc := range table {
		if got := d.Daylight(timetricks.AtClock(d.Date, tc.clock)); got != tc.want {
			t.Errorf("Daylight(%s) = %t, wanted %t", tc.clock, got, tc.want)
		}
	}
}
