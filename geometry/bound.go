package geometry

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"strconv"
	"strings"
)

// ContinentalUS is the box around the contiguous United States (plus Hawaii's latitude) used as default boundary.
var ContinentalUS = orb.Bound{
	Min: orb.Point{-157.80430603, 17.69149971},
	Max: orb.Point{-64.70480347, 61.19303131},
}

// ParseBound parses a "minLon,minLat,maxLon,maxLat" string.
func ParseBound(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, errors.Errorf("Boundary '%s' must consist of four comma separated numbers", s)
	}

	var values [4]float64
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return orb.Bound{}, errors.Wrapf(err, "Unable to parse boundary value '%s'", part)
		}
		values[i] = value
	}

	if values[0] > values[2] || values[1] > values[3] {
		return orb.Bound{}, errors.Errorf("Boundary '%s' has its minimum above its maximum", s)
	}

	return orb.Bound{
		Min: orb.Point{values[0], values[1]},
		Max: orb.Point{values[2], values[3]},
	}, nil
}

// ContainsAll checks whether every point lies within the bound (edges inclusive).
func ContainsAll(bound orb.Bound, points []orb.Point) bool {
	for _, p := range points {
		if !bound.Contains(p) {
			return false
		}
	}
	return true
}
