// Package events decides which solar event comes next and how long remains
// until it.
package events

import (
	"fmt"
	"time"

	"github.com/spencer-p/celesun/pkg/solarday"
	"github.com/spencer-p/celesun/pkg/timetricks"
)

// Kind encodes which solar event is next.
type Kind int

const (
	Sunrise Kind = iota
	Sunset
	SunriseTomorrow
)

func (k Kind) String() string {
	switch k {
	case Sunrise:
		return "Sunrise"
	case Sunset:
		return "Sunset"
	case SunriseTomorrow:
		return "Sunrise (tomorrow)"
	default:
		return "invalid"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for _, candidate := range []Kind{Sunrise, Sunset, SunriseTomorrow} {
		if candidate.String() == string(text) {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", text)
}

// NextEvent is the upcoming solar event as seen from Now.
type NextEvent struct {
	Kind Kind      `json:"kind"`
	At   time.Time `json:"at"`
	Now  time.Time `json:"-"`
	// Remaining is never negative; see Signed.
	Remaining time.Duration `json:"remaining"`
}

// Signed returns At - Now without clamping. It is slightly negative when a
// tick lands just after the event it was scheduled for.
func (e NextEvent) Signed() time.Duration {
	return e.At.Sub(e.Now)
}

// Countdown formats Remaining as HH:MM:SS.
func (e NextEvent) Countdown() string {
	s := int64(e.Remaining / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60)
}

func (e NextEvent) String() string {
	return fmt.Sprintf("%s at %s in %s", e.Kind, e.At.Format("15:04:05"), e.Countdown())
}

// Next returns the first of today's sunrise and sunset that is still ahead
// of now. After sunset it answers with tomorrow's sunrise, approximated by
// today's sunrise wall clock on the next calendar day; the day to day drift
// of sunrise (seconds, rarely more than a minute) is accepted so that only
// one almanac query is needed per day.
func Next(now time.Time, day solarday.Day) NextEvent {
	now = now.In(day.Location)

	var e NextEvent
	switch {
	case now.Before(day.Sunrise):
		e = NextEvent{Kind: Sunrise, At: day.Sunrise}
	case now.Before(day.Sunset):
		e = NextEvent{Kind: Sunset, At: day.Sunset}
	default:
		e = NextEvent{
			Kind: SunriseTomorrow,
			At:   timetricks.Redate(day.Sunrise, timetricks.Tomorrow(now)),
		}
	}
	e.Now = now
	e.Remaining = max(e.Signed(), 0)
	return e
}
