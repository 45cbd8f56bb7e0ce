package finder

import (
	"context"
	"scf/geometry"
	"scf/matching"
	"sync"
)

// PointSource provides the store locations to search in.
type PointSource interface {
	Stores(ctx context.Context) ([]geometry.Point, error)
}

// Sink receives every confirmed constellation.
type Sink interface {
	WriteConstellation(ctx context.Context, constellation *matching.Constellation) error
}

// AnchorTracker hands out stores which haven't been swept as first anchor yet. Implementations must tolerate the same
// anchor being marked as processed more than once.
type AnchorTracker interface {
	// NextAnchor returns nil when there are no more anchors to process.
	NextAnchor(ctx context.Context) (*geometry.Point, error)
	MarkProcessed(ctx context.Context, anchor geometry.Point, checkerName string) error
}

type StaticStores []geometry.Point

func (s StaticStores) Stores(ctx context.Context) ([]geometry.Point, error) {
	return s, nil
}

// MultiSink writes each constellation to all of its sinks in order and stops at the first error.
type MultiSink []Sink

func (m MultiSink) WriteConstellation(ctx context.Context, constellation *matching.Constellation) error {
	for _, sink := range m {
		err := sink.WriteConstellation(ctx, constellation)
		if err != nil {
			return err
		}
	}
	return nil
}

// MemorySink collects all constellations in memory.
type MemorySink struct {
	mutex          sync.Mutex
	Constellations []*matching.Constellation
}

func (m *MemorySink) WriteConstellation(ctx context.Context, constellation *matching.Constellation) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.Constellations = append(m.Constellations, constellation)
	return nil
}

func (m *MemorySink) All() []*matching.Constellation {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]*matching.Constellation{}, m.Constellations...)
}

// MemoryTracker hands out the given stores in order. Every store is handed out at most once, even to concurrent
// callers.
type MemoryTracker struct {
	mutex     sync.Mutex
	anchors   []geometry.Point
	next      int
	processed map[int64]string // Store ID to checker name
}

func NewMemoryTracker(anchors []geometry.Point) *MemoryTracker {
	return &MemoryTracker{
		anchors:   anchors,
		processed: map[int64]string{},
	}
}

func (m *MemoryTracker) NextAnchor(ctx context.Context) (*geometry.Point, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for m.next < len(m.anchors) {
		anchor := m.anchors[m.next]
		m.next++
		if _, done := m.processed[anchor.ID]; !done {
			return &anchor, nil
		}
	}
	return nil, nil
}

func (m *MemoryTracker) MarkProcessed(ctx context.Context, anchor geometry.Point, checkerName string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, done := m.processed[anchor.ID]; !done {
		m.processed[anchor.ID] = checkerName
	}
	return nil
}

func (m *MemoryTracker) Processed() map[int64]string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	result := make(map[int64]string, len(m.processed))
	for id, checker := range m.processed {
		result[id] = checker
	}
	return result
}
