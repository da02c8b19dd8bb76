// Package settings holds the user's dial configuration and persists it.
package settings

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"cloudeng.io/errors"

	"github.com/spencer-p/celesun/pkg/almanac"
	"github.com/spencer-p/celesun/pkg/dial"
	"github.com/spencer-p/celesun/pkg/engine"
)

// ErrInvalidSettings is wrapped by every Validate failure.
var ErrInvalidSettings = errors.New("invalid settings")

// RGB is a color. It encodes as a three element JSON array.
type RGB [3]uint8

// Hex formats c as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// ParseHex is the inverse of Hex. The leading # is optional.
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("%w: color %q is not #rrggbb", ErrInvalidSettings, s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: color %q: %v", ErrInvalidSettings, s, err)
	}
	return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

// Appearance only affects rendering.
type Appearance struct {
	DarkMode bool `json:"dark_mode"`
	// GradientColor tints the daylight wedge.
	GradientColor RGB    `json:"gradient_color"`
	FontFamily    string `json:"font_family"`
}

// Settings is everything a user can configure. The JSON form is flat so that
// files written by older versions keep loading.
type Settings struct {
	almanac.Location
	TimeZone string `json:"timezone"`
	// Offset rotates the dial, in degrees.
	Offset float64 `json:"offset"`
	Appearance
}

// Defaults is a dial for Paris with noon at the bottom.
func Defaults() Settings {
	return Settings{
		Location: almanac.Paris,
		TimeZone: "Europe/Paris",
		Offset:   0,
		Appearance: Appearance{
			DarkMode:      false,
			GradientColor: RGB{255, 255, 0},
			FontFamily:    "Arial",
		},
	}
}

// Normalize brings Offset into [0, 360) and fills in a missing font.
func (s Settings) Normalize() Settings {
	if !math.IsNaN(s.Offset) && !math.IsInf(s.Offset, 0) {
		s.Offset = dial.Normalize(s.Offset)
	}
	if strings.TrimSpace(s.FontFamily) == "" {
		s.FontFamily = Defaults().FontFamily
	}
	return s
}

// Validate reports every problem with s. Unknown time zones are not an error
// here; the engine falls back to UTC for them.
func (s Settings) Validate() error {
	errs := &errors.M{}
	if err := s.Location.Validate(); err != nil {
		errs.Append(fmt.Errorf("%w: %w", ErrInvalidSettings, err))
	}
	if math.IsNaN(s.Offset) || math.IsInf(s.Offset, 0) {
		errs.Append(fmt.Errorf("%w: offset %v is not a number of degrees", ErrInvalidSettings, s.Offset))
	}
	return errs.Err()
}

func (s Settings) String() string {
	return fmt.Sprintf("%s in %s, offset %.1f°", s.Location, s.TimeZone, s.Offset)
}

// EngineConfig is the part of s the engine needs.
func (s Settings) EngineConfig(arcSamples int) engine.Config {
	return engine.Config{
		Location:   s.Location,
		TimeZone:   s.TimeZone,
		Offset:     s.Offset,
		ArcSamples: arcSamples,
	}
}
