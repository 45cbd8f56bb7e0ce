package geometry

import (
	"github.com/paulmach/orb"
	"math"
	"scf/util"
	"testing"
)

func TestBearing(t *testing.T) {
	util.AssertApprox(t, 0.0, Bearing(orb.Point{0, 0}, orb.Point{1, 0}), 1e-9)
	util.AssertApprox(t, 90.0, Bearing(orb.Point{0, 0}, orb.Point{0, 5}), 1e-9)
	util.AssertApprox(t, 180.0, Bearing(orb.Point{0, 0}, orb.Point{-1, 0}), 1e-9)
	util.AssertApprox(t, -45.0, Bearing(orb.Point{1, 1}, orb.Point{2, 0}), 1e-9)
}

func TestRotate(t *testing.T) {
	util.AssertPointApprox(t, orb.Point{0, 1}, Rotate(orb.Point{1, 0}, 90), 1e-9)
	util.AssertPointApprox(t, orb.Point{-1, 0}, Rotate(orb.Point{0, 1}, 90), 1e-9)
	util.AssertPointApprox(t, orb.Point{-2, -3}, Rotate(orb.Point{2, 3}, 180), 1e-9)
	util.AssertPointApprox(t, orb.Point{2, 3}, Rotate(orb.Point{2, 3}, 360), 1e-9)
}

func TestHaversine_knownDistance(t *testing.T) {
	// Arrange
	newYork := orb.Point{-74.0060, 40.7128}
	losAngeles := orb.Point{-118.2437, 34.0522}

	// Act
	distance := Haversine.Distance(newYork, losAngeles)

	// Assert
	util.AssertApprox(t, 2451.0, distance, 15.0)
	util.AssertApprox(t, 0.0, Haversine.Distance(newYork, newYork), 1e-9)
	util.AssertTrue(t, Haversine.Geographic())
}

func TestHaversine_oneDegreeOfLatitude(t *testing.T) {
	distance := Haversine.Distance(orb.Point{10, 0}, orb.Point{10, 1})

	util.AssertApprox(t, 3956.0*math.Pi/180, distance, 1e-9)
}

func TestPlanar(t *testing.T) {
	util.AssertApprox(t, 5.0, Planar.Distance(orb.Point{0, 0}, orb.Point{3, 4}), 1e-12)
	util.AssertFalse(t, Planar.Geographic())
}

func TestParseMetric(t *testing.T) {
	metric, err := ParseMetric("planar")
	util.AssertNil(t, err)
	util.AssertEqual(t, "planar", metric.Name())

	metric, err = ParseMetric("")
	util.AssertNil(t, err)
	util.AssertEqual(t, "haversine", metric.Name())

	_, err = ParseMetric("manhattan")
	util.AssertNotNil(t, err)
}

func TestParseBound(t *testing.T) {
	bound, err := ParseBound("-10, -5.5,10,5.5")
	util.AssertNil(t, err)
	util.AssertEqual(t, orb.Bound{Min: orb.Point{-10, -5.5}, Max: orb.Point{10, 5.5}}, bound)

	_, err = ParseBound("1,2,3")
	util.AssertNotNil(t, err)

	_, err = ParseBound("1,2,a,4")
	util.AssertNotNil(t, err)

	_, err = ParseBound("10,0,0,10")
	util.AssertNotNil(t, err)
}

func TestIsValidLonLat(t *testing.T) {
	util.AssertTrue(t, IsValidLonLat(orb.Point{180, 90}))
	util.AssertTrue(t, IsValidLonLat(orb.Point{-180, -90}))
	util.AssertFalse(t, IsValidLonLat(orb.Point{180.1, 0}))
	util.AssertFalse(t, IsValidLonLat(orb.Point{0, -90.1}))
}

func TestBoundOf(t *testing.T) {
	_, ok := BoundOf(nil)
	util.AssertFalse(t, ok)

	bound, ok := BoundOf([]Point{NewPoint(1, 3, -2), NewPoint(2, -1, 4), NewPoint(3, 0, 0)})
	util.AssertTrue(t, ok)
	util.AssertEqual(t, orb.Bound{Min: orb.Point{-1, -2}, Max: orb.Point{3, 4}}, bound)
}

func TestHasDuplicateIDs(t *testing.T) {
	util.AssertFalse(t, HasDuplicateIDs([]Point{NewPoint(1, 0, 0), NewPoint(2, 0, 0)}))
	util.AssertTrue(t, HasDuplicateIDs([]Point{NewPoint(1, 0, 0), NewPoint(2, 1, 1), NewPoint(1, 5, 5)}))
}

func TestContainsAll(t *testing.T) {
	bound := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}
	util.AssertTrue(t, ContainsAll(bound, []orb.Point{{0, 0}, {10, 10}, {5, 5}}))
	util.AssertFalse(t, ContainsAll(bound, []orb.Point{{5, 5}, {10.5, 5}}))
}
