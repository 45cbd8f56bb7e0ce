package geometry

import (
	"github.com/paulmach/orb"
	"math"
)

// Bearing returns the angle in degrees of the vector from "from" to "to", measured counter-clockwise from the x-axis.
// The result is within [-180, 180].
func Bearing(from orb.Point, to orb.Point) float64 {
	theta := math.Atan2(to.Y()-from.Y(), to.X()-from.X())
	return theta * 180 / math.Pi
}

// Rotate rotates the point around the origin by the given angle in degrees.
func Rotate(p orb.Point, degrees float64) orb.Point {
	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return orb.Point{
		p.X()*cos - p.Y()*sin,
		p.X()*sin + p.Y()*cos,
	}
}

func Scale(p orb.Point, factor float64) orb.Point {
	return orb.Point{p.X() * factor, p.Y() * factor}
}

// Euclidean returns the plain coordinate distance of the two points. This is the distance used to compute scale
// factors, no matter which Metric is used for matching.
func Euclidean(a orb.Point, b orb.Point) float64 {
	return math.Hypot(a.X()-b.X(), a.Y()-b.Y())
}

func DistanceSquared(a orb.Point, b orb.Point) float64 {
	dx := a.X() - b.X()
	dy := a.Y() - b.Y()
	return dx*dx + dy*dy
}
