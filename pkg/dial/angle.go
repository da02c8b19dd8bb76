// Package dial maps times of day onto a 24 hour dial.
//
// Two angular systems live here and must not be mixed up. Dial angles place
// 00:00 at the top of the dial (hence the -90°) and subtract the user's
// rotation offset. Compass bearings are 15° per hour from 00:00 with no
// rotation at all and only feed the compass direction label.
package dial

import (
	"math"
	"time"

	"github.com/spencer-p/celesun/pkg/timetricks"
)

const (
	day = 24 * time.Hour

	degreesPerHour = 360.0 / 24
	topOfDial      = 90.0
)

// Normalize folds a into [0, 360).
func Normalize(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	// -tiny + 360 rounds to 360.
	if a >= 360 {
		a = 0
	}
	return a
}

// HourFraction returns the wall clock of t in fractional hours.
func HourFraction(t time.Time) float64 {
	return timetricks.Clock(t).Hours()
}

// TimeToAngle maps a time of day (duration since midnight) onto the dial.
func TimeToAngle(tod time.Duration, offset float64) float64 {
	return Normalize(tod.Hours()*degreesPerHour - topOfDial - offset)
}

// AngleOf maps the wall clock of t onto the dial.
func AngleOf(t time.Time, offset float64) float64 {
	return Normalize(HourFraction(t)*degreesPerHour - topOfDial - offset)
}

// AngleToTimeOfDay inverts TimeToAngle, returning a duration in [0, 24h).
func AngleToTimeOfDay(angle, offset float64) time.Duration {
	hours := Normalize(angle+topOfDial+offset) / degreesPerHour
	tod := time.Duration(math.Round(hours * float64(time.Hour)))
	if tod >= day {
		tod -= day
	}
	return tod
}

// Bearing is the sun's compass bearing for a time of day, 15° per hour.
func Bearing(tod time.Duration) float64 {
	return Normalize(tod.Hours() * degreesPerHour)
}

// Hands holds clock hand angles. The hour hand runs once per day on the 24
// hour dial; the minute and second hands run on a 60 unit face.
type Hands struct {
	Hour   float64 `json:"hour"`
	Minute float64 `json:"minute"`
	Second float64 `json:"second"`
}

// HandsAt returns the hand angles for the wall clock of t.
func HandsAt(t time.Time, offset float64) Hands {
	return Hands{
		Hour:   AngleOf(t, offset),
		Minute: Normalize(float64(t.Minute())/60*360 - topOfDial - offset),
		Second: Normalize(float64(t.Second())/60*360 - topOfDial - offset),
	}
}
