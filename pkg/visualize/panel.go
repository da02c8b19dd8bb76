package visualize

import (
	"fmt"
	"io"
	"time"

	"github.com/spencer-p/celesun/pkg/engine"
)

// Line is one row of the text panel.
type Line struct {
	Label string
	Value string
}

func (l Line) String() string {
	return l.Label + ": " + l.Value
}

// Panel is the plain text summary shown beside or under the dial.
func Panel(m engine.RenderModel) []Line {
	return []Line{
		{"Rise", m.Sunrise.Format(time.TimeOnly)},
		{"Set", m.Sunset.Format(time.TimeOnly)},
		{"Next event", m.Next.Kind.String()},
		{"Time Left", m.Next.Countdown()},
		{"Solar Noon", m.SolarNoon.Format(time.TimeOnly)},
		{"Sun Position", fmt.Sprintf("%.2f°", m.SunBearing)},
		{"Sun Direction", m.SunDirection},
	}
}

// WritePanel writes Panel(m) one line at a time.
func WritePanel(w io.Writer, m engine.RenderModel) error {
	for _, l := range Panel(m) {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
