// Package engine turns a clock tick into a RenderModel.
//
// The engine keeps no state of its own. Callers hold a State, pass it to
// Tick together with the current instant and configuration, and keep the
// State that comes back. The solar day inside a State is only rebuilt when it
// goes stale: a new local calendar day, a new location or a new time zone.
package engine

import (
	"io"
	"log/slog"
	"time"

	"github.com/spencer-p/celesun/pkg/almanac"
	"github.com/spencer-p/celesun/pkg/dial"
	"github.com/spencer-p/celesun/pkg/events"
	"github.com/spencer-p/celesun/pkg/solarday"
	"github.com/spencer-p/celesun/pkg/timetricks"
)

// Config is the per-tick input owned by the settings layer. Location is
// assumed valid; Offset is assumed to be in [0, 360).
type Config struct {
	Location   almanac.Location
	TimeZone   string
	Offset     float64
	ArcSamples int
}

// Status is the validity of the cached solar day.
type Status int

const (
	Stale Status = iota
	Fresh
)

func (s Status) String() string {
	if s == Fresh {
		return "fresh"
	}
	return "stale"
}

// State is carried from one tick to the next. The zero State is stale.
type State struct {
	Day      solarday.Day
	Location almanac.Location
	TimeZone string
	// ZoneErr is the warning from resolving TimeZone, if any.
	ZoneErr error
}

// Status reports whether s can serve a tick at now under cfg.
func (s State) Status(now time.Time, cfg Config) Status {
	switch {
	case s.Day.Location == nil,
		s.Location != cfg.Location,
		s.TimeZone != cfg.TimeZone,
		!s.Day.Covers(now):
		return Stale
	}
	return Fresh
}

// Engine computes render models from an almanac.
type Engine struct {
	alm    almanac.Almanac
	logger *slog.Logger
}

type Option func(*Engine)

// WithLogger sets the logger recomputations and warnings are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

func New(alm almanac.Almanac, opts ...Option) *Engine {
	e := &Engine{
		alm:    alm,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tick refreshes st if it is stale and renders the instant now.
func (e *Engine) Tick(st State, now time.Time, cfg Config) (State, RenderModel) {
	recomputed := false
	if st.Status(now, cfg) == Stale {
		st = e.recompute(now, cfg)
		recomputed = true
	}
	model := render(st, now, cfg)
	model.Diagnostics.Recomputed = recomputed
	return st, model
}

func (e *Engine) recompute(now time.Time, cfg Config) State {
	day, zoneErr := solarday.Compute(e.alm, cfg.Location, cfg.TimeZone, now)
	if zoneErr != nil {
		e.logger.Warn("Falling back to UTC", "zone", cfg.TimeZone, "err", zoneErr)
	}
	if day.Degraded {
		e.logger.Warn("Using fallback sun times", "location", cfg.Location.String(), "err", day.Err)
	}
	e.logger.Info("Computed solar day",
		"day", day.String(),
		"location", cfg.Location.String(),
		"zone", day.Location.String())
	return State{
		Day:      day,
		Location: cfg.Location,
		TimeZone: cfg.TimeZone,
		ZoneErr:  zoneErr,
	}
}

func render(st State, now time.Time, cfg Config) RenderModel {
	day := st.Day
	now = now.In(day.Location)

	sunriseAngle := dial.AngleOf(day.Sunrise, cfg.Offset)
	sunsetAngle := dial.AngleOf(day.Sunset, cfg.Offset)
	bearing := dial.Bearing(timetricks.Clock(now))

	m := RenderModel{
		Now:       now,
		TimeZone:  day.Location.String(),
		Sunrise:   day.Sunrise,
		Sunset:    day.Sunset,
		SolarNoon: day.SolarNoon,

		Next: events.Next(now, day),

		SunBearing:   bearing,
		SunDirection: dial.CompassDirection(bearing),

		Offset:       cfg.Offset,
		SunriseAngle: sunriseAngle,
		SunsetAngle:  sunsetAngle,
		NoonAngle:    dial.AngleOf(day.SolarNoon, cfg.Offset),
		CurrentAngle: dial.AngleOf(now, cfg.Offset),
		Hands:        dial.HandsAt(now, cfg.Offset),
		DaylightArc:  dial.BuildArc(sunriseAngle, sunsetAngle, cfg.ArcSamples),
		ArcSamples:   cfg.ArcSamples,
		IsDaytime:    day.Daylight(now),
	}

	m.Diagnostics.Degraded = day.Degraded
	m.Diagnostics.ZoneFallback = st.ZoneErr != nil
	for _, err := range []error{st.ZoneErr, day.Err} {
		if err != nil {
			m.Diagnostics.Warnings = append(m.Diagnostics.Warnings, err.Error())
		}
	}
	return m
}
