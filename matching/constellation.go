package matching

import (
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"scf/geometry"
	"time"
)

// Constellation is a confirmed match as it's handed to sinks.
type Constellation struct {
	ID           uuid.UUID
	TemplateName string
	Stores       []geometry.Point
	Size         float64 // Length of the bounding box diagonal of the stores
	CreatedAt    time.Time
}

func NewConstellation(templateName string, result Result, metric geometry.Metric) *Constellation {
	return &Constellation{
		ID:           uuid.New(),
		TemplateName: templateName,
		Stores:       result,
		Size:         ResultSize(result, metric),
		CreatedAt:    time.Now().UTC(),
	}
}

// ResultSize is the bounding box diagonal of the matched stores.
func ResultSize(result Result, metric geometry.Metric) float64 {
	bound, ok := geometry.BoundOf(result)
	if !ok {
		return 0
	}
	return geometry.DiagonalSize(bound, metric)
}

func (c *Constellation) StoreIDs() []int64 {
	ids := make([]int64, len(c.Stores))
	for i, store := range c.Stores {
		ids[i] = store.ID
	}
	return ids
}

func (c *Constellation) LineString() orb.LineString {
	line := make(orb.LineString, len(c.Stores))
	for i, store := range c.Stores {
		line[i] = store.Orb()
	}
	return line
}
