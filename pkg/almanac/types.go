package almanac

import (
	"fmt"
	"math"

	"cloudeng.io/errors"
)

var (
	// ErrNoEvents is returned when an almanac cannot produce a sunrise and a
	// sunset for the requested day, e.g. during polar day or polar night.
	ErrNoEvents = errors.New("no sunrise or sunset")

	// ErrInvalidLocation is wrapped by every Location.Validate failure.
	ErrInvalidLocation = errors.New("invalid location")
)

// Location is a lat/long coordinate on the Earth. Latitude is positive north
// of the equator and longitude is positive east of Greenwich.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

var (
	Paris     = Location{48.8575, 2.3514}
	SantaCruz = Location{36.9741, -122.0308}
)

// Validate reports every coordinate that is out of range.
func (l Location) Validate() error {
	errs := &errors.M{}
	if math.IsNaN(l.Latitude) || l.Latitude < -90 || l.Latitude > 90 {
		errs.Append(fmt.Errorf("%w: latitude %v not in [-90, 90]", ErrInvalidLocation, l.Latitude))
	}
	if math.IsNaN(l.Longitude) || l.Longitude < -180 || l.Longitude > 180 {
		errs.Append(fmt.Errorf("%w: longitude %v not in [-180, 180]", ErrInvalidLocation, l.Longitude))
	}
	return errs.Err()
}

func (l Location) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", l.Latitude, l.Longitude)
}
