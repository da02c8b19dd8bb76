// Package almanac adapts third party sunrise/sunset algorithms to a single
// interface. An almanac is queried with the UTC instant of a local midnight
// and answers with UTC instants; it makes no promise that the answers fall on
// the same local calendar day as the query.
package almanac

import (
	"fmt"
	"time"

	gosunrise "github.com/nathan-osman/go-sunrise"

	"github.com/keep94/sunrise"
)

// Almanac computes the sunrise and sunset for the day that starts at
// utcMidnight.
type Almanac interface {
	Sunrise(utcMidnight time.Time, loc Location) (time.Time, error)
	Sunset(utcMidnight time.Time, loc Location) (time.Time, error)
}

const (
	NameKeep94   = "keep94"
	NameEquation = "equation"
)

// ByName returns the almanac registered under name. The empty name selects
// Keep94.
func ByName(name string) (Almanac, error) {
	switch name {
	case "", NameKeep94:
		return Keep94{}, nil
	case NameEquation:
		return Equation{}, nil
	}
	return nil, fmt.Errorf("unknown almanac %q (allowed: %s, %s)", name, NameKeep94, NameEquation)
}

// Keep94 uses github.com/keep94/sunrise.
type Keep94 struct{}

func (Keep94) Sunrise(utcMidnight time.Time, loc Location) (time.Time, error) {
	rise, _, err := keep94Events(utcMidnight, loc)
	return rise, err
}

func (Keep94) Sunset(utcMidnight time.Time, loc Location) (time.Time, error) {
	_, set, err := keep94Events(utcMidnight, loc)
	return set, err
}

func keep94Events(utcMidnight time.Time, loc Location) (rise, set time.Time, err error) {
	var s sunrise.Sunrise
	s.Around(loc.Latitude, loc.Longitude, utcMidnight.UTC())
	return checkEvents(s.Sunrise().UTC(), s.Sunset().UTC())
}

// Equation uses the sunrise equation implementation in
// github.com/nathan-osman/go-sunrise. It works on the UTC calendar date of
// the query.
type Equation struct{}

func (Equation) Sunrise(utcMidnight time.Time, loc Location) (time.Time, error) {
	rise, _, err := equationEvents(utcMidnight, loc)
	return rise, err
}

func (Equation) Sunset(utcMidnight time.Time, loc Location) (time.Time, error) {
	_, set, err := equationEvents(utcMidnight, loc)
	return set, err
}

func equationEvents(utcMidnight time.Time, loc Location) (rise, set time.Time, err error) {
	y, m, d := utcMidnight.UTC().Date()
	rise, set = gosunrise.SunriseSunset(loc.Latitude, loc.Longitude, y, m, d)
	return checkEvents(rise.UTC(), set.UTC())
}

// checkEvents rejects the degenerate answers both libraries give when the sun
// does not cross the horizon.
func checkEvents(rise, set time.Time) (time.Time, time.Time, error) {
	if rise.IsZero() || set.IsZero() {
		return time.Time{}, time.Time{}, ErrNoEvents
	}
	if daylight := set.Sub(rise); daylight <= 0 || daylight >= 24*time.Hour {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: daylight of %s", ErrNoEvents, daylight)
	}
	return rise, set, nil
}
