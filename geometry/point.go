package geometry

import (
	"fmt"
	"github.com/paulmach/orb"
)

// Point is a store location. Two points are the same store when their IDs are equal, regardless of the coordinates.
type Point struct {
	ID   int64
	Lon  float64
	Lat  float64
	Name string
}

func NewPoint(id int64, lon float64, lat float64) Point {
	return Point{ID: id, Lon: lon, Lat: lat}
}

func (p Point) Orb() orb.Point { return orb.Point{p.Lon, p.Lat} }

// Coord returns the coordinate along the given KD-tree axis (0 = lon, 1 = lat).
func (p Point) Coord(axis int) float64 {
	if axis == 0 {
		return p.Lon
	}
	return p.Lat
}

func (p Point) String() string {
	return fmt.Sprintf("Point %d (%f, %f)", p.ID, p.Lon, p.Lat)
}

// IsValidLonLat checks whether the coordinate is a valid WGS84 longitude/latitude pair.
func IsValidLonLat(p orb.Point) bool {
	return p.X() >= -180 && p.X() <= 180 && p.Y() >= -90 && p.Y() <= 90
}

// BoundOf returns the bounding box of the given stores. The second return value is false when there are no stores.
func BoundOf(points []Point) (orb.Bound, bool) {
	if len(points) == 0 {
		return orb.Bound{}, false
	}

	bound := orb.Bound{Min: points[0].Orb(), Max: points[0].Orb()}
	for _, p := range points[1:] {
		bound = bound.Extend(p.Orb())
	}
	return bound, true
}

// HasDuplicateIDs returns true when at least two of the given points share the same store ID.
func HasDuplicateIDs(points []Point) bool {
	seen := make(map[int64]struct{}, len(points))
	for _, p := range points {
		if _, ok := seen[p.ID]; ok {
			return true
		}
		seen[p.ID] = struct{}{}
	}
	return false
}
