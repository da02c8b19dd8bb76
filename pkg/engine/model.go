package engine

import (
	"time"

	"github.com/spencer-p/celesun/pkg/dial"
	"github.com/spencer-p/celesun/pkg/events"
)

// RenderModel is everything a renderer needs for one tick. All angles are
// dial angles in [0, 360) except SunBearing, which is a compass bearing.
type RenderModel struct {
	Now       time.Time `json:"now"`
	TimeZone  string    `json:"time_zone"`
	Sunrise   time.Time `json:"sunrise"`
	Sunset    time.Time `json:"sunset"`
	SolarNoon time.Time `json:"solar_noon"`

	Next events.NextEvent `json:"next_event"`

	SunBearing   float64 `json:"sun_bearing_degrees"`
	SunDirection string  `json:"sun_compass_direction"`

	Offset       float64    `json:"offset"`
	SunriseAngle float64    `json:"sunrise_angle"`
	SunsetAngle  float64    `json:"sunset_angle"`
	NoonAngle    float64    `json:"noon_angle"`
	CurrentAngle float64    `json:"current_angle"`
	Hands        dial.Hands `json:"hands"`
	DaylightArc  []float64  `json:"daylight_arc"`
	// ArcSamples is the configured resolution of DaylightArc. The arc
	// itself may hold more samples when it is split at the seam.
	ArcSamples int  `json:"arc_samples"`
	IsDaytime  bool `json:"is_daytime"`

	Diagnostics Diagnostics `json:"diagnostics"`
}

// Diagnostics reports the recoverable problems behind a RenderModel.
type Diagnostics struct {
	// Recomputed is set on the tick that rebuilt the solar day.
	Recomputed bool `json:"recomputed"`
	// Degraded is set when fallback sunrise/sunset times are in use.
	Degraded bool `json:"degraded"`
	// ZoneFallback is set when the configured zone was unknown and UTC is
	// used instead.
	ZoneFallback bool     `json:"zone_fallback"`
	Warnings     []string `json:"warnings,omitempty"`
}

// Rotated returns a copy of m drawn with a different dial offset. Every dial
// angle moves by the difference. Times, bearing and diagnostics are kept.
func (m RenderModel) Rotated(offset float64) RenderModel {
	if offset == m.Offset {
		return m
	}
	turn := func(a float64) float64 {
		return dial.Normalize(a + m.Offset - offset)
	}
	m.SunriseAngle = turn(m.SunriseAngle)
	m.SunsetAngle = turn(m.SunsetAngle)
	m.NoonAngle = turn(m.NoonAngle)
	m.CurrentAngle = turn(m.CurrentAngle)
	m.Hands = dial.Hands{
		Hour:   turn(m.Hands.Hour),
		Minute: turn(m.Hands.Minute),
		Second: turn(m.Hands.Second),
	}
	if len(m.DaylightArc) > 0 {
		// Rebuilt rather than shifted since the split at the seam moves.
		m.DaylightArc = dial.BuildArc(m.SunriseAngle, m.SunsetAngle, m.ArcSamples)
	}
	m.Offset = offset
	return m
}
