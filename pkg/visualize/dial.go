package visualize

import (
	"fmt"
	"html"
	"io"
	"math"

	"github.com/spencer-p/celesun/pkg/dial"
	"github.com/spencer-p/celesun/pkg/engine"
	"github.com/spencer-p/celesun/pkg/settings"
)

const (
	// DefaultSize is the width of the dial. The image is footerHeight taller
	// to fit the status line.
	DefaultSize  = 400
	footerHeight = 30
)

type palette struct {
	background, text, line, face, minorLine string
}

var (
	lightPalette = palette{
		background: "#ffffff",
		text:       "#000000",
		line:       "#000000",
		face:       "#f0f0f0",
		minorLine:  "#000000",
	}
	darkPalette = palette{
		background: "#2d2d2d",
		text:       "#ffffff",
		line:       "#c8c8c8",
		face:       "#3c3c3c",
		minorLine:  "#ffffff",
	}
)

// Dial draws a RenderModel as an SVG 24 hour dial.
type Dial struct {
	model      engine.RenderModel
	appearance settings.Appearance
	size       int
}

func NewDial(m engine.RenderModel, a settings.Appearance) *Dial {
	return &Dial{
		model:      m,
		appearance: a,
		size:       DefaultSize,
	}
}

// SetSize changes the width of the image. Sizes under 100 are ignored.
func (img *Dial) SetSize(size int) {
	if size >= 100 {
		img.size = size
	}
}

func (img *Dial) Encode(w io.Writer) (int, error) {
	var n int
	var err error
	put := func(nextn int, nexterr error) {
		n += nextn
		if nexterr != nil && err == nil {
			err = nexterr
		}
	}

	m := img.model
	colors := lightPalette
	if img.appearance.DarkMode {
		colors = darkPalette
	}
	font := html.EscapeString(img.appearance.FontFamily)
	size := float64(img.size)
	cx, cy := size/2, size/2
	radius := size * 0.375

	put(fmt.Fprintf(w, `<svg viewBox="0 0 %d %d" font-family="%s" xmlns="http://www.w3.org/2000/svg">`,
		img.size, img.size+footerHeight, font))

	// The daylight gradient fades out towards the rim.
	r, g, b := img.appearance.GradientColor[0], img.appearance.GradientColor[1], img.appearance.GradientColor[2]
	put(fmt.Fprintf(w, `<defs><radialGradient id="daylight" cx="50%%" cy="50%%" r="50%%">`+
		`<stop offset="0" stop-color="rgb(%d,%d,%d)" stop-opacity="0.77"/>`+
		`<stop offset="0.5" stop-color="rgb(%d,%d,%d)" stop-opacity="0.5"/>`+
		`<stop offset="1" stop-color="rgb(%d,%d,%d)" stop-opacity="0"/>`+
		`</radialGradient></defs>`,
		r, g, b, r, g, b, r, g, b))

	put(fmt.Fprintf(w, `<rect class="background" fill="%s" x="0" y="0" width="%d" height="%d"/>`,
		colors.background, img.size, img.size+footerHeight))
	put(fmt.Fprintf(w, `<circle class="face" fill="%s" stroke="%s" stroke-width="2" cx="%.2f" cy="%.2f" r="%.2f"/>`,
		colors.face, colors.line, cx, cy, radius))

	// Dashes on the rim every 22.5°, longer on the eight main points.
	for i := 0; i < 16; i++ {
		compass := float64(i) * 22.5
		angle := dial.Normalize(compass - 90 - m.Offset)
		length, width := radius*0.033, 1
		if i%2 == 0 {
			length, width = radius*0.067, 2
		}
		outer := dial.PointAt(angle, cx, cy, radius*1.033)
		inner := dial.PointAt(angle, cx, cy, radius*1.033-length)
		put(fmt.Fprintf(w, `<line class="dash" stroke="%s" stroke-width="%d" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`,
			colors.line, width, outer.X, outer.Y, inner.X, inner.Y))
	}

	// Spokes every hour of the clock, labelled on the main compass points.
	for i := 0; i < 360; i += 15 {
		angle := dial.Normalize(float64(i) - 90 - m.Offset)
		end := dial.PointAt(angle, cx, cy, radius*0.933)
		if i%45 == 0 {
			put(fmt.Fprintf(w, `<line class="spoke" stroke="%s" stroke-width="1" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`,
				colors.line, cx, cy, end.X, end.Y))
			at := dial.PointAt(angle, cx, cy, radius*1.2)
			put(fmt.Fprintf(w, `<text class="cardinal" fill="%s" font-weight="bold" font-size="%.1f" text-anchor="middle" dominant-baseline="middle" x="%.2f" y="%.2f">%s</text>`,
				colors.text, radius*0.08, at.X, at.Y, dial.CardinalLabel(i)))
		} else {
			put(fmt.Fprintf(w, `<line class="spoke minor" stroke="%s" stroke-opacity="0.7" stroke-width="0.5" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`,
				colors.minorLine, cx, cy, end.X, end.Y))
		}
	}

	// Daylight wedge from the center along the arc.
	put(fmt.Fprintf(w, `<path class="daylight" fill="url(#daylight)" d="M %.2f,%.2f`, cx, cy))
	for _, p := range dial.Points(m.DaylightArc, cx, cy, radius) {
		put(fmt.Fprintf(w, ` L %.2f,%.2f`, p.X, p.Y))
	}
	put(fmt.Fprintf(w, ` Z"/>`))

	markers := []struct {
		class, color string
		angle        float64
		label        string
	}{
		{"sunrise", "#ffff00", m.SunriseAngle, m.Sunrise.Format("15:04")},
		{"sunset", "#8b0000", m.SunsetAngle, m.Sunset.Format("15:04")},
		{"noon", "#ff0000", m.NoonAngle, m.SolarNoon.Format("15:04")},
	}
	for _, mk := range markers {
		at := dial.PointAt(mk.angle, cx, cy, radius*0.933)
		put(fmt.Fprintf(w, `<circle class="%s" fill="%s" cx="%.2f" cy="%.2f" r="%.2f"/>`,
			mk.class, mk.color, at.X, at.Y, radius*0.04))
		label := dial.PointAt(mk.angle, cx, cy, radius*1.12)
		put(fmt.Fprintf(w, `<text class="%s-label" fill="%s" font-weight="bold" font-size="%.1f" text-anchor="middle" dominant-baseline="middle" x="%.2f" y="%.2f">%s</text>`,
			mk.class, colors.text, math.Max(9, radius*0.067), label.X, label.Y, mk.label))
	}

	hands := []struct {
		class, color string
		angle        float64
		length       float64
		width        int
	}{
		{"hour", colors.line, m.Hands.Hour, radius * 0.533, 4},
		{"minute", colors.line, m.Hands.Minute, radius * 0.733, 3},
		{"second", "#ff0000", m.Hands.Second, radius * 0.933, 1},
	}
	for _, h := range hands {
		end := dial.PointAt(h.angle, cx, cy, h.length)
		put(fmt.Fprintf(w, `<line class="hand %s" stroke="%s" stroke-width="%d" stroke-linecap="round" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`,
			h.class, h.color, h.width, cx, cy, end.X, end.Y))
	}

	if m.IsDaytime {
		sun := dial.PointAt(m.CurrentAngle, cx, cy, radius*0.933)
		put(fmt.Fprintf(w, `<circle class="sun" fill="#ffa500" cx="%.2f" cy="%.2f" r="%.2f"/>`,
			sun.X, sun.Y, radius*0.067))
	}

	// Status line along the bottom.
	footerY := size + footerHeight/2
	fontSize := math.Max(11, radius*0.08)
	status := []struct{ class, text string }{
		{"next", fmt.Sprintf("%s in %s", m.Next.Kind, m.Next.Countdown())},
		{"position", fmt.Sprintf("Pos: %.1f°", m.SunBearing)},
		{"direction", fmt.Sprintf("Dir: %s", m.SunDirection)},
	}
	for i, s := range status {
		put(fmt.Fprintf(w, `<text class="%s" fill="%s" font-size="%.1f" x="%.2f" y="%.2f">%s</text>`,
			s.class, colors.text, fontSize, size/3*float64(i)+10, footerY, html.EscapeString(s.text)))
	}

	// Insert the instant this dial shows as unix.
	put(fmt.Fprintf(w, `<text class="unixtime" visibility="hidden">%d</text>`, m.Now.Unix()))

	put(fmt.Fprintf(w, `</svg>`))

	return n, err
}
