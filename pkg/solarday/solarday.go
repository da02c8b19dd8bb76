// Package solarday derives one calendar day's sunrise, sunset and solar noon
// in a time zone from an almanac.
//
// A Day always describes "today" in local terms. Almanacs answer in UTC and
// may land on the neighboring calendar day once converted back to the local
// zone, so Compute keeps only the wall clock of each answer and moves it onto
// the local date of the reference instant.
package solarday

import (
	"errors"
	"fmt"
	"time"

	"github.com/spencer-p/celesun/pkg/almanac"
	"github.com/spencer-p/celesun/pkg/timetricks"
)

// ErrUnknownTimeZone is wrapped by ResolveZone failures.
var ErrUnknownTimeZone = errors.New("unknown time zone")

// Fallback clock readings used when the almanac fails.
const (
	FallbackSunrise   = 6 * time.Hour
	FallbackSunset    = 18 * time.Hour
	FallbackSolarNoon = 12 * time.Hour
)

// Day holds the solar events of a single local calendar day.
type Day struct {
	// Date is local midnight at the start of the day.
	Date      time.Time
	Sunrise   time.Time
	Sunset    time.Time
	SolarNoon time.Time

	// Location is the resolved zone all the times above are expressed in.
	Location *time.Location

	// Degraded is set when the almanac failed and the fixed fallback times
	// were used instead. Err holds the reason.
	Degraded bool
	Err      error
}

// ResolveZone loads the named IANA zone. Unknown names resolve to UTC and a
// wrapped ErrUnknownTimeZone; the empty name is UTC without error.
func ResolveZone(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, fmt.Errorf("%w %q, using UTC: %v", ErrUnknownTimeZone, name, err)
	}
	return loc, nil
}

// Compute derives the Day containing ref in the named zone. The returned
// error is only ever a time zone warning; the Day is always usable.
func Compute(alm almanac.Almanac, loc almanac.Location, zoneName string, ref time.Time) (Day, error) {
	zone, zoneErr := ResolveZone(zoneName)
	return ComputeIn(alm, loc, zone, ref), zoneErr
}

// ComputeIn is Compute with an already resolved zone.
//
// The almanac is asked about the UTC instant of local midnight. East of UTC
// that instant still falls on the previous UTC date, so the answer can be
// the previous day's event read with the previous day's offset. On a spring
// forward day the sunrise wall clock then runs an hour early: Paris on
// 2024-03-31 gets a sunrise near 06:30 instead of 07:30.
func ComputeIn(alm almanac.Almanac, loc almanac.Location, zone *time.Location, ref time.Time) Day {
	today := timetricks.TrimClock(ref.In(zone))

	rise, set, err := query(alm, today.UTC(), loc)
	if err != nil {
		return fallback(today, fmt.Errorf("almanac failed for %s on %s: %w",
			loc, timetricks.UniqueDay(today), err))
	}

	sunrise := timetricks.Redate(rise.In(zone), today)
	sunset := timetricks.Redate(set.In(zone), today)
	return Day{
		Date:      today,
		Sunrise:   sunrise,
		Sunset:    sunset,
		SolarNoon: Midpoint(sunrise, sunset),
		Location:  zone,
	}
}

// Midpoint returns the instant halfway between sunrise and sunset.
func Midpoint(sunrise, sunset time.Time) time.Time {
	return sunrise.Add(sunset.Sub(sunrise) / 2)
}

// query asks the almanac for both events, turning a panic inside a third
// party algorithm into an error.
func query(alm almanac.Almanac, utcMidnight time.Time, loc almanac.Location) (rise, set time.Time, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("almanac panic: %v", r)
		}
	}()
	if rise, err = alm.Sunrise(utcMidnight, loc); err != nil {
		return
	}
	set, err = alm.Sunset(utcMidnight, loc)
	return
}

func fallback(today time.Time, err error) Day {
	return Day{
		Date:      today,
		Sunrise:   timetricks.AtClock(today, FallbackSunrise),
		Sunset:    timetricks.AtClock(today, FallbackSunset),
		SolarNoon: timetricks.AtClock(today, FallbackSolarNoon),
		Location:  today.Location(),
		Degraded:  true,
		Err:       err,
	}
}

// Covers reports whether t falls on the day's local calendar date.
func (d Day) Covers(t time.Time) bool {
	return timetricks.SameDay(d.Date, t.In(d.Location))
}

// Daylight reports whether t lies between sunrise and sunset inclusive.
func (d Day) Daylight(t time.Time) bool {
	return !t.Before(d.Sunrise) && !t.After(d.Sunset)
}

func (d Day) String() string {
	const clock = "15:04:05"
	s := fmt.Sprintf("%s rise %s noon %s set %s",
		d.Date.Format("2006-01-02 MST"),
		d.Sunrise.Format(clock),
		d.SolarNoon.Format(clock),
		d.Sunset.Format(clock))
	if d.Degraded {
		s += " (degraded)"
	}
	return s
}
