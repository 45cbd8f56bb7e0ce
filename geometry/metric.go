package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
	"strings"
)

const earthRadiusMiles = 3956.0

// Metric measures the "true" distance between a projected vertex and a store. Geographic metrics work on lon/lat
// coordinates, which also means that coordinates outside the valid lon/lat range can't be measured.
type Metric interface {
	Name() string
	Distance(a orb.Point, b orb.Point) float64
	Geographic() bool
}

type haversineMetric struct{}

// Haversine is the great-circle distance in miles on a sphere with a radius of 3956 miles.
var Haversine Metric = haversineMetric{}

func (haversineMetric) Name() string { return "haversine" }

func (haversineMetric) Distance(a orb.Point, b orb.Point) float64 {
	return geo.DistanceHaversine(a, b) / orb.EarthRadius * earthRadiusMiles
}

func (haversineMetric) Geographic() bool { return true }

type planarMetric struct{}

// Planar is the euclidean distance in coordinate units.
var Planar Metric = planarMetric{}

func (planarMetric) Name() string { return "planar" }

func (planarMetric) Distance(a orb.Point, b orb.Point) float64 {
	return planar.Distance(a, b)
}

func (planarMetric) Geographic() bool { return false }

func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "haversine", "":
		return Haversine, nil
	case "planar", "euclidean":
		return Planar, nil
	}
	return nil, errors.Errorf("Unknown distance metric '%s'", name)
}

// DiagonalSize returns the distance between the lower-left and upper-right corner of the bound.
func DiagonalSize(bound orb.Bound, metric Metric) float64 {
	return metric.Distance(bound.Min, bound.Max)
}
