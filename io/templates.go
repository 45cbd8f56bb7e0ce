package io

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"io"
	"os"
	"scf/shape"
)

type templateFileContent struct {
	Templates []templateEntry `yaml:"templates"`
}

type templateEntry struct {
	Name   string      `yaml:"name"`
	Points [][]float64 `yaml:"points,flow"`
}

// TemplateFile is a YAML file with a list of named templates.
type TemplateFile string

func (t TemplateFile) Templates() ([]*shape.Template, error) {
	file, err := os.Open(string(t))
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to open template file %s", string(t))
	}
	defer file.Close()

	templates, err := ReadTemplatesYaml(file)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to read template file %s", string(t))
	}

	sigolo.Debugf("Read %d templates from %s", len(templates), string(t))
	return templates, nil
}

func ReadTemplatesYaml(reader io.Reader) ([]*shape.Template, error) {
	var content templateFileContent
	err := yaml.NewDecoder(reader).Decode(&content)
	if err != nil {
		return nil, errors.Wrap(err, "Invalid YAML")
	}

	var templates []*shape.Template
	for _, entry := range content.Templates {
		template := &shape.Template{Name: entry.Name}
		for i, point := range entry.Points {
			if len(point) != 2 {
				return nil, errors.Wrapf(shape.ErrInvalidTemplate, "Point %d of template '%s' has %d instead of 2 coordinates", i, entry.Name, len(point))
			}
			template.Points = append(template.Points, orb.Point{point[0], point[1]})
		}
		templates = append(templates, template)
	}

	err = shape.ValidateTemplates(templates)
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func WriteTemplatesYaml(templates []*shape.Template, writer io.Writer) error {
	content := templateFileContent{}
	for _, template := range templates {
		entry := templateEntry{Name: template.Name}
		for _, point := range template.Points {
			entry.Points = append(entry.Points, []float64{point[0], point[1]})
		}
		content.Templates = append(content.Templates, entry)
	}

	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	err := encoder.Encode(content)
	if err != nil {
		return errors.Wrap(err, "Unable to write templates as YAML")
	}
	return errors.Wrap(encoder.Close(), "Unable to write templates as YAML")
}
