package index

import (
	"github.com/paulmach/orb"
	"math"
	"scf/geometry"
	"sort"
)

const dimensions = 2

type kdNode struct {
	point geometry.Point
	left  *kdNode // Coordinates on the split axis less than or equal to the one of "point"
	right *kdNode
}

// KdTree is a 2D tree over store locations. The split axis alternates between longitude (even depth) and latitude
// (odd depth). The tree is balanced when created via NewKdTree but Insert never rebalances it.
type KdTree struct {
	root *kdNode
	size int
}

var _ SpatialIndex = (*KdTree)(nil)

// NewKdTree builds a balanced tree. The given slice is not modified.
func NewKdTree(points []geometry.Point) *KdTree {
	pointsCopy := make([]geometry.Point, len(points))
	copy(pointsCopy, points)

	return &KdTree{
		root: build(pointsCopy, 0),
		size: len(points),
	}
}

func build(points []geometry.Point, axis int) *kdNode {
	if len(points) == 0 {
		return nil
	}
	if len(points) == 1 {
		return &kdNode{point: points[0]}
	}

	// Stable sort to make the tree shape only depend on the input order, which makes tie-breaking deterministic.
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Coord(axis) < points[j].Coord(axis)
	})

	nextAxis := (axis + 1) % dimensions
	median := len(points) >> 1
	return &kdNode{
		point: points[median],
		left:  build(points[:median], nextAxis),
		right: build(points[median+1:], nextAxis),
	}
}

func (t *KdTree) Len() int { return t.size }

func (t *KdTree) Insert(point geometry.Point) {
	t.size++

	newNode := &kdNode{point: point}
	if t.root == nil {
		t.root = newNode
		return
	}

	node := t.root
	axis := 0
	for {
		if node.point.Coord(axis)-point.Coord(axis) >= 0 {
			if node.left == nil {
				node.left = newNode
				return
			}
			node = node.left
		} else {
			if node.right == nil {
				node.right = newNode
				return
			}
			node = node.right
		}
		axis = (axis + 1) % dimensions
	}
}

func (t *KdTree) Nearest(query orb.Point) (float64, geometry.Point, bool) {
	if t.root == nil {
		return 0, geometry.Point{}, false
	}

	best := nearestSearch{bestDistance: math.Inf(1)}
	best.search(t.root, query, 0)
	return best.bestDistance, best.bestPoint, true
}

type nearestSearch struct {
	bestDistance float64
	bestPoint    geometry.Point
}

func (s *nearestSearch) search(node *kdNode, query orb.Point, axis int) {
	if node == nil {
		return
	}

	distance := geometry.DistanceSquared(node.point.Orb(), query)
	if distance < s.bestDistance {
		s.bestDistance = distance
		s.bestPoint = node.point
	}

	// Positive when the query is left of (or below) the splitting plane.
	dx := node.point.Coord(axis) - query[axis]
	nearSide, farSide := node.left, node.right
	if dx < 0 {
		nearSide, farSide = node.right, node.left
	}

	nextAxis := (axis + 1) % dimensions
	s.search(nearSide, query, nextAxis)

	// The far side can only contain something closer if the splitting plane itself is closer than the current best.
	if dx*dx < s.bestDistance {
		s.search(farSide, query, nextAxis)
	}
}

func (t *KdTree) KNearest(query orb.Point, k int) []Neighbour {
	if t.root == nil || k <= 0 {
		return nil
	}

	candidates := &neighbourHeap{}
	kNearestSearch(t.root, query, k, candidates, 0)
	return candidates.sorted()
}

func kNearestSearch(node *kdNode, query orb.Point, k int, candidates *neighbourHeap, axis int) {
	if node == nil {
		return
	}

	candidates.offer(Neighbour{
		DistanceSquared: geometry.DistanceSquared(node.point.Orb(), query),
		Point:           node.point,
	}, k)

	dx := node.point.Coord(axis) - query[axis]
	nearSide, farSide := node.left, node.right
	if dx < 0 {
		nearSide, farSide = node.right, node.left
	}

	nextAxis := (axis + 1) % dimensions
	kNearestSearch(nearSide, query, k, candidates, nextAxis)

	if candidates.Len() < k || dx*dx < candidates.worst() {
		kNearestSearch(farSide, query, k, candidates, nextAxis)
	}
}

// Points returns all stores of the tree in in-order sequence.
func (t *KdTree) Points() []geometry.Point {
	result := make([]geometry.Point, 0, t.size)
	var walk func(node *kdNode)
	walk = func(node *kdNode) {
		if node == nil {
			return
		}
		walk(node.left)
		result = append(result, node.point)
		walk(node.right)
	}
	walk(t.root)
	return result
}
