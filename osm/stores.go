package osm

import (
	"context"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
	"scf/geometry"
	"strings"
)

// TagFilter matches objects having the key and, if set, the value.
type TagFilter struct {
	Key   string
	Value string
}

// ParseTagFilter parses "key=value" or "key".
func ParseTagFilter(filter string) (TagFilter, error) {
	key, value, _ := strings.Cut(filter, "=")
	key = strings.TrimSpace(key)
	if key == "" {
		return TagFilter{}, errors.Errorf("Invalid tag filter '%s': Key is empty", filter)
	}
	return TagFilter{Key: key, Value: strings.TrimSpace(value)}, nil
}

func (f TagFilter) Matches(tags osm.Tags) bool {
	for _, tag := range tags {
		if tag.Key == f.Key && (f.Value == "" || tag.Value == f.Value) {
			return true
		}
	}
	return false
}

func (f TagFilter) String() string {
	if f.Value == "" {
		return f.Key
	}
	return f.Key + "=" + f.Value
}

// StoreHandler collects all nodes matching the filter as stores. When ways are enabled, matching ways become stores
// located at their centroid. Their IDs are the negated way IDs, so they never collide with node IDs. Relations are
// ignored.
type StoreHandler struct {
	filter       TagFilter
	withWays     bool
	nodeLocation map[osm.NodeID]orb.Point
	stores       []geometry.Point
	skipped      int
}

func NewStoreHandler(filter TagFilter) *StoreHandler {
	return &StoreHandler{filter: filter}
}

// NewStoreHandlerWithWays also turns matching ways into stores. This keeps the location of every node in memory.
func NewStoreHandlerWithWays(filter TagFilter) *StoreHandler {
	return &StoreHandler{filter: filter, withWays: true}
}

func (h *StoreHandler) Name() string {
	return "StoreHandler"
}

func (h *StoreHandler) Init() error {
	h.stores = nil
	h.skipped = 0
	if h.withWays {
		h.nodeLocation = map[osm.NodeID]orb.Point{}
	}
	return nil
}

func (h *StoreHandler) HandleNode(node *osm.Node) error {
	if h.withWays {
		h.nodeLocation[node.ID] = node.Point()
	}

	if !h.filter.Matches(node.Tags) {
		return nil
	}

	h.addStore(int64(node.ID), node.Point(), node.Tags)
	return nil
}

func (h *StoreHandler) HandleWay(way *osm.Way) error {
	if !h.withWays || !h.filter.Matches(way.Tags) {
		return nil
	}

	centroid, ok := h.wayCentroid(way)
	if !ok {
		sigolo.Debugf("Way %d has no nodes or references unknown nodes", way.ID)
		h.skipped++
		return nil
	}

	h.addStore(-int64(way.ID), centroid, way.Tags)
	return nil
}

// wayCentroid is the area centroid of closed ways and the centroid of the line for all other ways.
func (h *StoreHandler) wayCentroid(way *osm.Way) (orb.Point, bool) {
	if len(way.Nodes) == 0 {
		return orb.Point{}, false
	}

	line := make(orb.LineString, len(way.Nodes))
	for i, wayNode := range way.Nodes {
		location, ok := h.nodeLocation[wayNode.ID]
		if !ok {
			return orb.Point{}, false
		}
		line[i] = location
	}

	if len(line) == 1 {
		return line[0], true
	}

	if len(line) >= 4 && way.Nodes[0].ID == way.Nodes[len(way.Nodes)-1].ID {
		centroid, _ := planar.CentroidArea(orb.Polygon{orb.Ring(line)})
		return centroid, true
	}

	centroid, _ := planar.CentroidArea(line)
	return centroid, true
}

func (h *StoreHandler) addStore(id int64, location orb.Point, tags osm.Tags) {
	store := geometry.NewPoint(id, location.Lon(), location.Lat())
	if !geometry.IsValidLonLat(store.Orb()) {
		h.skipped++
		return
	}

	store.Name = tags.Find("name")
	if store.Name == "" {
		store.Name = tags.Find("brand")
	}

	h.stores = append(h.stores, store)
}

func (h *StoreHandler) HandleRelation(relation *osm.Relation) error {
	return nil
}

func (h *StoreHandler) Done() error {
	h.nodeLocation = nil
	if h.skipped > 0 {
		sigolo.Warnf("Skipped %d stores with invalid or missing coordinates", h.skipped)
	}
	sigolo.Infof("Found %d stores with tag '%s'", len(h.stores), h.filter.String())
	return nil
}

func (h *StoreHandler) Stores() []geometry.Point {
	return h.stores
}

// StoreReader reads all nodes, and if enabled all ways, matching the filter from an .osm or .pbf file.
type StoreReader struct {
	Filename string
	Filter   TagFilter
	Ways     bool
}

func (r StoreReader) Stores(ctx context.Context) ([]geometry.Point, error) {
	handler := NewStoreHandler(r.Filter)
	if r.Ways {
		handler = NewStoreHandlerWithWays(r.Filter)
	}

	err := NewOsmReader().Read(ctx, r.Filename, handler)
	if err != nil {
		return nil, err
	}
	return handler.Stores(), nil
}
