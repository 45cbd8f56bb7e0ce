package io

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"io"
	"math"
	"os"
	"scf/shape"
	"strconv"
	"strings"
)

// svgHeight is the height of the drawing area. SVG y coordinates grow downwards, so they are flipped with it.
const svgHeight = 100

// ReadSvgTemplateFile creates a template from the circles of the given SVG drawing.
func ReadSvgTemplateFile(filename string, name string) (*shape.Template, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to open SVG file %s", filename)
	}
	defer file.Close()

	template, err := ReadSvgTemplate(file, name)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to read SVG file %s", filename)
	}
	return template, nil
}

// ReadSvgTemplate turns every <circle> in document order into a template point (cx, 100-cy), rounded to three
// decimal places.
func ReadSvgTemplate(reader io.Reader, name string) (*shape.Template, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to parse SVG")
	}

	template := &shape.Template{Name: name}
	doc.Find("circle").EachWithBreak(func(i int, circle *goquery.Selection) bool {
		var x, y float64
		x, err = circleAttribute(circle, "cx")
		if err != nil {
			err = errors.Wrapf(err, "Invalid circle %d", i)
			return false
		}
		y, err = circleAttribute(circle, "cy")
		if err != nil {
			err = errors.Wrapf(err, "Invalid circle %d", i)
			return false
		}

		template.Points = append(template.Points, orb.Point{roundTo3(x), roundTo3(svgHeight - y)})
		return true
	})
	if err != nil {
		return nil, err
	}

	err = template.Validate()
	if err != nil {
		return nil, err
	}
	return template, nil
}

func circleAttribute(circle *goquery.Selection, name string) (float64, error) {
	value, ok := circle.Attr(name)
	if !ok {
		return 0, errors.Errorf("Attribute '%s' missing", name)
	}

	number, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "Attribute '%s' is not a number", name)
	}
	return number, nil
}

func roundTo3(value float64) float64 {
	return math.Round(value*1000) / 1000
}
