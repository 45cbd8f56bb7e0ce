package index

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"scf/geometry"
)

var ErrEmptyInput = errors.New("Cannot build a spatial index without any stores")

type Neighbour struct {
	DistanceSquared float64
	Point           geometry.Point
}

// SpatialIndex answers nearest-neighbour queries over store locations. Implementations must be safe for concurrent
// queries as long as no Insert happens at the same time.
type SpatialIndex interface {
	Insert(point geometry.Point)

	// Nearest returns the closest store by squared euclidean distance. The boolean is false when the index is empty.
	Nearest(query orb.Point) (float64, geometry.Point, bool)

	// KNearest returns up to k stores ordered by ascending distance.
	KNearest(query orb.Point, k int) []Neighbour

	Len() int
}

const (
	TypeKdTree = "kdtree"
	TypeGrid   = "grid"
)

type Config struct {
	Type string // Empty means TypeKdTree

	// CellSize is the width and height of the grid cells in coordinate units. Only used by TypeGrid.
	CellSize float64
}

// BuildIndex creates the configured index over the given stores and fails if there are none.
func BuildIndex(points []geometry.Point, config Config) (SpatialIndex, error) {
	if len(points) == 0 {
		return nil, ErrEmptyInput
	}

	switch config.Type {
	case "", TypeKdTree:
		return NewKdTree(points), nil
	case TypeGrid:
		grid, err := NewGridIndex(points, config.CellSize, config.CellSize)
		if err != nil {
			return nil, err
		}
		return grid, nil
	}
	return nil, errors.Errorf("Unknown index type '%s'", config.Type)
}
