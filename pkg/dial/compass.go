package dial

type interval struct {
	start, end float64
	label      string
}

// compassPoints splits the circle into 16 half-open intervals, each 22.5°
// wide and centered on its point. North straddles the seam and so appears
// twice.
var compassPoints = []interval{
	{348.75, 360, "N"},
	{0, 11.25, "N"},
	{11.25, 33.75, "NNE"},
	{33.75, 56.25, "NE"},
	{56.25, 78.75, "ENE"},
	{78.75, 101.25, "E"},
	{101.25, 123.75, "ESE"},
	{123.75, 146.25, "SE"},
	{146.25, 168.75, "SSE"},
	{168.75, 191.25, "S"},
	{191.25, 213.75, "SSW"},
	{213.75, 236.25, "SW"},
	{236.25, 258.75, "WSW"},
	{258.75, 281.25, "W"},
	{281.25, 303.75, "WNW"},
	{303.75, 326.25, "NW"},
	{326.25, 348.75, "NNW"},
}

// CompassDirection names the compass point for a bearing in degrees.
func CompassDirection(bearing float64) string {
	b := Normalize(bearing)
	for _, iv := range compassPoints {
		if iv.start <= b && b < iv.end {
			return iv.label
		}
	}
	// NaN
	return "N"
}

// CardinalLabel returns the label drawn at a multiple of 45° on the dial
// face, or "" for any other angle.
func CardinalLabel(angle int) string {
	switch angle {
	case 0:
		return "N"
	case 45:
		return "NE"
	case 90:
		return "E"
	case 135:
		return "SE"
	case 180:
		return "S"
	case 225:
		return "SW"
	case 270:
		return "W"
	case 315:
		return "NW"
	}
	return ""
}
