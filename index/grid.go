package index

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"math"
	"scf/geometry"
)

type CellIndex [2]int

func GetCellIndexForCoordinate(x float64, y float64, cellWidth float64, cellHeight float64) CellIndex {
	return CellIndex{int(math.Floor(x / cellWidth)), int(math.Floor(y / cellHeight))}
}

func (c CellIndex) X() int { return c[0] }

func (c CellIndex) Y() int { return c[1] }

// CellExtent is the inclusive range of cells between the lower left and upper right cell.
type CellExtent [2]CellIndex

func (c CellExtent) LowerLeftCell() CellIndex { return c[0] }

func (c CellExtent) UpperRightCell() CellIndex { return c[1] }

func (c CellExtent) Expand(cell CellIndex) CellExtent {
	return CellExtent{
		CellIndex{min(c[0].X(), cell.X()), min(c[0].Y(), cell.Y())},
		CellIndex{max(c[1].X(), cell.X()), max(c[1].Y(), cell.Y())},
	}
}

// ringDistance is the number of rings around the given cell which have to be visited until the extent is reached.
func (c CellExtent) ringDistance(cell CellIndex) int {
	dx := max(c.LowerLeftCell().X()-cell.X(), cell.X()-c.UpperRightCell().X(), 0)
	dy := max(c.LowerLeftCell().Y()-cell.Y(), cell.Y()-c.UpperRightCell().Y(), 0)
	return max(dx, dy)
}

// coveredBy is true when all cells of the extent are within the given number of rings around the cell.
func (c CellExtent) coveredBy(cell CellIndex, ring int) bool {
	return cell.X()-ring <= c.LowerLeftCell().X() && cell.Y()-ring <= c.LowerLeftCell().Y() &&
		cell.X()+ring >= c.UpperRightCell().X() && cell.Y()+ring >= c.UpperRightCell().Y()
}

// GridIndex puts every store into the cell of a regular grid. Queries visit the rings of cells around the query cell
// until no closer store can be found anymore.
type GridIndex struct {
	CellWidth  float64
	CellHeight float64
	cells      map[CellIndex][]geometry.Point
	extent     CellExtent
	size       int
}

func NewGridIndex(points []geometry.Point, cellWidth float64, cellHeight float64) (*GridIndex, error) {
	if !(cellWidth > 0) || !(cellHeight > 0) {
		return nil, errors.Errorf("Cell size must be positive but was %fx%f", cellWidth, cellHeight)
	}

	g := &GridIndex{
		CellWidth:  cellWidth,
		CellHeight: cellHeight,
		cells:      map[CellIndex][]geometry.Point{},
	}
	for _, point := range points {
		g.Insert(point)
	}
	return g, nil
}

func (g *GridIndex) cellFor(p orb.Point) CellIndex {
	return GetCellIndexForCoordinate(p.X(), p.Y(), g.CellWidth, g.CellHeight)
}

func (g *GridIndex) Insert(point geometry.Point) {
	cell := g.cellFor(point.Orb())
	if g.size == 0 {
		g.extent = CellExtent{cell, cell}
	} else {
		g.extent = g.extent.Expand(cell)
	}

	g.cells[cell] = append(g.cells[cell], point)
	g.size++
}

func (g *GridIndex) Len() int { return g.size }

func (g *GridIndex) Nearest(query orb.Point) (float64, geometry.Point, bool) {
	if g.size == 0 {
		return 0, geometry.Point{}, false
	}

	bestDistance := math.Inf(1)
	var bestPoint geometry.Point
	g.visitRings(query, func(lowerBound float64) bool {
		return lowerBound >= bestDistance
	}, func(point geometry.Point) {
		distance := geometry.DistanceSquared(point.Orb(), query)
		if distance < bestDistance {
			bestDistance = distance
			bestPoint = point
		}
	})

	return bestDistance, bestPoint, true
}

func (g *GridIndex) KNearest(query orb.Point, k int) []Neighbour {
	if g.size == 0 || k <= 0 {
		return nil
	}

	candidates := &neighbourHeap{}
	g.visitRings(query, func(lowerBound float64) bool {
		return candidates.Len() == k && lowerBound >= candidates.worst()
	}, func(point geometry.Point) {
		candidates.offer(Neighbour{
			DistanceSquared: geometry.DistanceSquared(point.Orb(), query),
			Point:           point,
		}, k)
	})
	return candidates.sorted()
}

// visitRings calls the visitor for every store in ring after ring around the query cell. Before each ring, done is
// called with the smallest squared distance any store in that ring can have.
func (g *GridIndex) visitRings(query orb.Point, done func(lowerBound float64) bool, visit func(point geometry.Point)) {
	center := g.cellFor(query)
	smallestCellSide := math.Min(g.CellWidth, g.CellHeight)

	for ring := g.extent.ringDistance(center); ; ring++ {
		if ring > 1 {
			lowerBound := float64(ring-1) * smallestCellSide
			if done(lowerBound * lowerBound) {
				return
			}
		}

		g.visitRing(center, ring, visit)

		if g.extent.coveredBy(center, ring) {
			return
		}
	}
}

func (g *GridIndex) visitRing(center CellIndex, ring int, visit func(point geometry.Point)) {
	lowerLeft := g.extent.LowerLeftCell()
	upperRight := g.extent.UpperRightCell()

	minX := max(center.X()-ring, lowerLeft.X())
	maxX := min(center.X()+ring, upperRight.X())
	minY := max(center.Y()-ring, lowerLeft.Y())
	maxY := min(center.Y()+ring, upperRight.Y())

	for x := minX; x <= maxX; x++ {
		if x == center.X()-ring || x == center.X()+ring {
			// Left and right column of the ring
			for y := minY; y <= maxY; y++ {
				g.visitCell(CellIndex{x, y}, visit)
			}
			continue
		}

		// Only the top and bottom cell of the ring are in this column
		if center.Y()-ring >= minY {
			g.visitCell(CellIndex{x, center.Y() - ring}, visit)
		}
		if ring > 0 && center.Y()+ring <= maxY {
			g.visitCell(CellIndex{x, center.Y() + ring}, visit)
		}
	}
}

func (g *GridIndex) visitCell(cell CellIndex, visit func(point geometry.Point)) {
	for _, point := range g.cells[cell] {
		visit(point)
	}
}
