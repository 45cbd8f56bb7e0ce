package matching

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"scf/geometry"
	"scf/index"
	"scf/shape"
	"scf/util"
)

// Rejection is the outcome of a single matching attempt. The states are checked in the order of their declaration,
// so e.g. a projection outside the boundary never causes a query on the spatial index.
type Rejection int

const (
	Matched Rejection = iota
	RejectedBoundary
	RejectedOutOfRange
	RejectedTooSmall
	RejectedNoStore
	RejectedDuplicate
)

var rejectionNames = []string{"matched", "boundary", "out-of-range", "too-small", "no-store", "duplicate"}

func (r Rejection) String() string {
	if r >= 0 && int(r) < len(rejectionNames) {
		return rejectionNames[r]
	}
	util.LogFatalBug("Unknown rejection %d", int(r))
	return ""
}

// Result contains one store per template vertex in template order. A nil Result means no match.
type Result []geometry.Point

// Matcher assigns real stores to the vertices of projections. It never modifies the spatial index, so one index can
// be shared by many matchers running concurrently.
type Matcher struct {
	config Config
	index  index.SpatialIndex
}

func NewMatcher(config Config, spatialIndex index.SpatialIndex) *Matcher {
	if config.Metric == nil {
		config.Metric = geometry.Haversine
	}
	return &Matcher{
		config: config,
		index:  spatialIndex,
	}
}

func (m *Matcher) Config() Config { return m.config }

// Find is like Match but only tells whether there was a match.
func (m *Matcher) Find(projection *shape.Projection) (Result, bool) {
	result, rejection := m.Match(projection)
	return result, rejection == Matched
}

// Match greedily assigns the nearest store to every vertex of the projection. There's no backtracking: When the
// nearest store of a vertex is too far away or already used by another vertex, the whole attempt is rejected even if
// a slightly farther store would have led to a valid assignment.
func (m *Matcher) Match(projection *shape.Projection) (Result, Rejection) {
	return m.match(projection, m.config.MinimumSize)
}

// MatchWithMinimumSize is Match with a different minimum size than the configured one.
func (m *Matcher) MatchWithMinimumSize(projection *shape.Projection, minimumSize float64) (Result, Rejection) {
	return m.match(projection, minimumSize)
}

func (m *Matcher) match(projection *shape.Projection, minimumSize float64) (Result, Rejection) {
	coordinates := projection.Coordinates

	if m.config.Boundary != nil && !geometry.ContainsAll(*m.config.Boundary, coordinates) {
		return nil, RejectedBoundary
	}

	if m.config.Metric.Geographic() {
		for _, c := range coordinates {
			if !geometry.IsValidLonLat(c) {
				return nil, RejectedOutOfRange
			}
		}
	}

	if minimumSize > 0 && projection.Size(m.config.Metric) < minimumSize {
		return nil, RejectedTooSmall
	}

	// The anchors are real stores by construction and match the first two vertices.
	stores := make(Result, 2, len(coordinates))
	stores[0] = projection.Anchors[0]
	stores[1] = projection.Anchors[1]

	for i := 2; i < len(coordinates); i++ {
		store, ok := m.storeNear(coordinates[i])
		if !ok {
			if sigolo.ShouldLogTrace() {
				sigolo.Tracef("No store near vertex %d (%v) of template '%s'", i, coordinates[i], projection.Template.Name)
			}
			return nil, RejectedNoStore
		}
		stores = append(stores, store)
	}

	if geometry.HasDuplicateIDs(stores) {
		return nil, RejectedDuplicate
	}

	return stores, Matched
}

// storeNear returns the nearest store if it's within the tolerance.
func (m *Matcher) storeNear(coordinate orb.Point) (geometry.Point, bool) {
	_, store, ok := m.index.Nearest(coordinate)
	if !ok {
		return geometry.Point{}, false
	}
	if m.config.Metric.Distance(store.Orb(), coordinate) > m.config.Tolerance {
		return geometry.Point{}, false
	}
	return store, true
}
