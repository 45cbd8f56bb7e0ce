package index

import "container/heap"

var _ heap.Interface = (*neighbourHeap)(nil)

// neighbourHeap is a max-heap on the distance, so the worst of the current k candidates is always on top and can be
// replaced cheaply.
type neighbourHeap []Neighbour

func (h neighbourHeap) Len() int { return len(h) }

func (h neighbourHeap) Less(i, j int) bool { return h[i].DistanceSquared > h[j].DistanceSquared }

func (h neighbourHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *neighbourHeap) Push(x any) {
	*h = append(*h, x.(Neighbour))
}

func (h *neighbourHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// worst returns the largest distance within the heap. Only call this on a non-empty heap.
func (h neighbourHeap) worst() float64 {
	return h[0].DistanceSquared
}

// offer adds the candidate when there is still room or when it's closer than the current worst entry.
func (h *neighbourHeap) offer(candidate Neighbour, k int) {
	if h.Len() < k {
		heap.Push(h, candidate)
	} else if candidate.DistanceSquared < h.worst() {
		(*h)[0] = candidate
		heap.Fix(h, 0)
	}
}

// sorted drains the heap and returns the entries by ascending distance.
func (h *neighbourHeap) sorted() []Neighbour {
	result := make([]Neighbour, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(Neighbour)
	}
	return result
}
