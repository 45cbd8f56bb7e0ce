package shape

import (
	"github.com/paulmach/orb"
	"scf/geometry"
)

// Projection is a template after rotation, scaling and translation onto two real stores, the anchors. Its
// coordinates have the same order as the template points, so the first two coordinates are the anchor locations.
type Projection struct {
	Template    *Template
	Anchors     [2]geometry.Point
	Coordinates orb.MultiPoint
}

// Project maps the template onto the anchor pair. The steps are done in this order:
//  1. Rotate all template points around the origin by the difference of the anchor bearing and the bearing of the
//     first two template points.
//  2. Scale all points by the ratio of the anchor distance and the distance of the first two rotated points.
//  3. Translate all points so that the first one lands on the first anchor.
func Project(template *Template, anchor1 geometry.Point, anchor2 geometry.Point) (*Projection, error) {
	err := template.Validate()
	if err != nil {
		return nil, err
	}

	a1 := anchor1.Orb()
	a2 := anchor2.Orb()

	angle := geometry.Bearing(a1, a2) - geometry.Bearing(template.Points[0], template.Points[1])
	rotated := make(orb.MultiPoint, len(template.Points))
	for i, p := range template.Points {
		rotated[i] = geometry.Rotate(p, angle)
	}

	scaleFactor := geometry.Euclidean(a1, a2) / geometry.Euclidean(rotated[0], rotated[1])
	for i, p := range rotated {
		rotated[i] = geometry.Scale(p, scaleFactor)
	}

	shiftX := rotated[0].X() - a1.X()
	shiftY := rotated[0].Y() - a1.Y()
	for i, p := range rotated {
		rotated[i] = orb.Point{p.X() - shiftX, p.Y() - shiftY}
	}

	return &Projection{
		Template:    template,
		Anchors:     [2]geometry.Point{anchor1, anchor2},
		Coordinates: rotated,
	}, nil
}

func (p *Projection) Bound() orb.Bound {
	return p.Coordinates.Bound()
}

// Size is the length of the bounding box diagonal measured with the given metric.
func (p *Projection) Size(metric geometry.Metric) float64 {
	return geometry.DiagonalSize(p.Bound(), metric)
}
