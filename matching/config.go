package matching

import (
	"github.com/paulmach/orb"
	"scf/geometry"
)

const DefaultTolerance = 25.0

type Config struct {
	// Tolerance is the maximum distance (in units of the Metric) between a projected vertex and the store assigned to
	// it. A store exactly at this distance is accepted.
	Tolerance float64

	// Boundary is an optional pre-filter. Projections with any coordinate outside of it are rejected before the
	// spatial index is queried.
	Boundary *orb.Bound

	// MinimumSize rejects projections whose bounding box diagonal is shorter. Zero disables the check.
	MinimumSize float64

	Metric geometry.Metric
}

func DefaultConfig() Config {
	boundary := geometry.ContinentalUS
	return Config{
		Tolerance: DefaultTolerance,
		Boundary:  &boundary,
		Metric:    geometry.Haversine,
	}
}
