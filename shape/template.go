package shape

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

var ErrInvalidTemplate = errors.New("Invalid template")

// Template is a named constellation shape. The first two points are the anchor pair fixing rotation, scale and
// translation for all other points.
type Template struct {
	Name   string
	Points []orb.Point
}

// TemplateSource provides the templates to search for. Templates are loaded once and are not changed afterwards.
type TemplateSource interface {
	Templates() ([]*Template, error)
}

// StaticTemplates is a TemplateSource for templates that are already in memory.
type StaticTemplates []*Template

func (s StaticTemplates) Templates() ([]*Template, error) {
	return s, ValidateTemplates(s)
}

func NewTemplate(name string, points ...orb.Point) *Template {
	return &Template{Name: name, Points: points}
}

func (t *Template) Validate() error {
	if len(t.Points) < 2 {
		return errors.Wrapf(ErrInvalidTemplate, "Template '%s' has %d points but needs at least two", t.Name, len(t.Points))
	}
	if t.Points[0].Equal(t.Points[1]) {
		return errors.Wrapf(ErrInvalidTemplate, "The first two points of template '%s' coincide at %v", t.Name, t.Points[0])
	}
	return nil
}

// ValidateTemplates checks every template and makes sure that the names are unique.
func ValidateTemplates(templates []*Template) error {
	names := map[string]bool{}
	for _, template := range templates {
		err := template.Validate()
		if err != nil {
			return err
		}
		if names[template.Name] {
			return errors.Wrapf(ErrInvalidTemplate, "Template name '%s' is used more than once", template.Name)
		}
		names[template.Name] = true
	}
	return nil
}
