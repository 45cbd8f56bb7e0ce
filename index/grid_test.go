package index

import (
	"github.com/paulmach/orb"
	"math/rand"
	"scf/geometry"
	"scf/util"
	"testing"
)

func TestGetCellIndexForCoordinate(t *testing.T) {
	util.AssertEqual(t, CellIndex{0, 0}, GetCellIndexForCoordinate(0.5, 0.5, 1, 1))
	util.AssertEqual(t, CellIndex{-1, -1}, GetCellIndexForCoordinate(-0.5, -0.5, 1, 1))
	util.AssertEqual(t, CellIndex{2, -3}, GetCellIndexForCoordinate(25, -21, 10, 10))
}

func TestCellExtent_expand(t *testing.T) {
	// Arrange
	extent := CellExtent{CellIndex{0, 0}, CellIndex{1, 1}}

	// Act
	extent = extent.Expand(CellIndex{-2, 5})

	// Assert
	util.AssertEqual(t, CellIndex{-2, 0}, extent.LowerLeftCell())
	util.AssertEqual(t, CellIndex{1, 5}, extent.UpperRightCell())
}

func TestCellExtent_ringDistance(t *testing.T) {
	extent := CellExtent{CellIndex{0, 0}, CellIndex{3, 3}}

	util.AssertEqual(t, 0, extent.ringDistance(CellIndex{2, 1}))
	util.AssertEqual(t, 4, extent.ringDistance(CellIndex{7, 1}))
	util.AssertEqual(t, 5, extent.ringDistance(CellIndex{-1, -5}))
}

func TestGridIndex_nearestMatchesBruteForce(t *testing.T) {
	// Arrange
	random := rand.New(rand.NewSource(42))
	points := randomPoints(random, 500)
	grid, err := NewGridIndex(points, 3, 3)
	util.AssertNil(t, err)

	for i := 0; i < 1000; i++ {
		query := orb.Point{random.Float64()*200 - 100, random.Float64()*160 - 80}

		// Act
		distance, point, ok := grid.Nearest(query)

		// Assert
		util.AssertTrue(t, ok)
		util.AssertApprox(t, bruteForceNearest(points, query), distance, 1e-12)
		util.AssertApprox(t, distance, geometry.DistanceSquared(point.Orb(), query), 1e-12)
	}
}

func TestGridIndex_kNearestMatchesKdTree(t *testing.T) {
	// Arrange
	random := rand.New(rand.NewSource(3))
	points := randomPoints(random, 300)
	grid, err := NewGridIndex(points, 2, 2)
	util.AssertNil(t, err)
	tree := NewKdTree(points)

	for i := 0; i < 200; i++ {
		query := orb.Point{random.Float64()*120 - 60, random.Float64()*80 - 40}

		// Act
		gridNeighbours := grid.KNearest(query, 7)
		treeNeighbours := tree.KNearest(query, 7)

		// Assert
		util.AssertEqual(t, 7, len(gridNeighbours))
		for j := range gridNeighbours {
			util.AssertApprox(t, treeNeighbours[j].DistanceSquared, gridNeighbours[j].DistanceSquared, 1e-12)
		}
	}
}

func TestGridIndex_empty(t *testing.T) {
	// Arrange
	grid, err := NewGridIndex(nil, 1, 1)
	util.AssertNil(t, err)

	// Act
	_, _, ok := grid.Nearest(orb.Point{1, 1})

	// Assert
	util.AssertFalse(t, ok)
	util.AssertEqual(t, 0, grid.Len())
	util.AssertEqual(t, 0, len(grid.KNearest(orb.Point{1, 1}, 3)))
}

func TestGridIndex_insertAndQueryFarAway(t *testing.T) {
	// Arrange
	grid, err := NewGridIndex(nil, 0.5, 0.5)
	util.AssertNil(t, err)
	grid.Insert(geometry.NewPoint(1, 1, 1))
	grid.Insert(geometry.NewPoint(2, 2, 2))

	// Act
	distance, point, ok := grid.Nearest(orb.Point{1000, 1000})

	// Assert
	util.AssertTrue(t, ok)
	util.AssertEqual(t, int64(2), point.ID)
	util.AssertApprox(t, 2*998.0*998.0, distance, 1e-6)
	util.AssertEqual(t, 2, grid.Len())
}

func TestNewGridIndex_invalidCellSize(t *testing.T) {
	_, err := NewGridIndex(nil, 0, 1)
	util.AssertNotNil(t, err)
}

func TestBuildIndex_types(t *testing.T) {
	// Arrange
	points := []geometry.Point{geometry.NewPoint(1, 0, 0), geometry.NewPoint(2, 5, 5)}

	// Act
	tree, treeErr := BuildIndex(points, Config{Type: TypeKdTree})
	grid, gridErr := BuildIndex(points, Config{Type: TypeGrid, CellSize: 1})
	_, unknownErr := BuildIndex(points, Config{Type: "quadtree"})

	// Assert
	util.AssertNil(t, treeErr)
	util.AssertNil(t, gridErr)
	util.AssertNotNil(t, unknownErr)
	util.AssertEqual(t, 2, tree.Len())
	util.AssertEqual(t, 2, grid.Len())
}
