package io

import (
	"bytes"
	"context"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"os"
	"path/filepath"
	"scf/geometry"
	"scf/matching"
	"scf/shape"
	"scf/util"
	"strings"
	"testing"
	"time"
)

func testConstellation() *matching.Constellation {
	return &matching.Constellation{
		ID:           uuid.MustParse("9b2f4a52-8c3e-4d1e-9d7a-0c1b2d3e4f50"),
		TemplateName: "triangle",
		Stores: []geometry.Point{
			geometry.NewPoint(1, 0, 0),
			geometry.NewPoint(2, 10, 0),
			geometry.NewPoint(3, 10, 10),
		},
		Size:      14.14,
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestReadStoresCsv(t *testing.T) {
	// Arrange
	content := `# id,latitude,longitude
1,40.7,-74.0
2, 34.05, -118.24 ,Los Angeles

3,41.8,-87.6
`

	// Act
	stores, err := ReadStoresCsv(strings.NewReader(content))

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, 3, len(stores))
	util.AssertEqual(t, geometry.NewPoint(1, -74.0, 40.7), stores[0])
	util.AssertEqual(t, int64(2), stores[1].ID)
	util.AssertEqual(t, -118.24, stores[1].Lon)
	util.AssertEqual(t, 34.05, stores[1].Lat)
	util.AssertEqual(t, "Los Angeles", stores[1].Name)
	util.AssertEqual(t, int64(3), stores[2].ID)
}

func TestReadStoresCsv_invalidNumber(t *testing.T) {
	// Act
	_, err := ReadStoresCsv(strings.NewReader("1,40.7,-74.0\n2,abc,-118.24\n"))

	// Assert
	util.AssertNotNil(t, err)
	util.AssertMatch(t, "line 2", err.Error())
	util.AssertMatch(t, "latitude", err.Error())
}

func TestReadStoresCsv_wrongNumberOfColumns(t *testing.T) {
	// Act
	_, err := ReadStoresCsv(strings.NewReader("1,40.7\n"))

	// Assert
	util.AssertNotNil(t, err)
	util.AssertMatch(t, "line 1", err.Error())
}

func TestCsvStoreFile_missingFile(t *testing.T) {
	// Act
	_, err := CsvStoreFile(filepath.Join(t.TempDir(), "missing.txt")).Stores(context.Background())

	// Assert
	util.AssertNotNil(t, err)
}

func TestPointsFile(t *testing.T) {
	// Arrange
	filename := filepath.Join(t.TempDir(), "points.txt")
	pointsFile, err := OpenPointsFile(filename)
	util.AssertNil(t, err)

	// Act
	err = pointsFile.WriteConstellation(context.Background(), testConstellation())
	util.AssertNil(t, err)
	err = pointsFile.WriteConstellation(context.Background(), testConstellation())
	util.AssertNil(t, err)
	util.AssertNil(t, pointsFile.Close())

	// Assert
	content, err := os.ReadFile(filename)
	util.AssertNil(t, err)
	util.AssertEqual(t, "triangle,1,2,3\ntriangle,1,2,3\n", string(content))
}

func TestReadTemplatesYaml(t *testing.T) {
	// Arrange
	content := `
templates:
  - name: crown
    points: [[0, 0], [10, 0], [5, 8.5]]
  - name: line
    points:
      - [0, 0]
      - [1, 1]
`

	// Act
	templates, err := ReadTemplatesYaml(strings.NewReader(content))

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, 2, len(templates))
	util.AssertEqual(t, "crown", templates[0].Name)
	util.AssertEqual(t, []orb.Point{{0, 0}, {10, 0}, {5, 8.5}}, templates[0].Points)
	util.AssertEqual(t, "line", templates[1].Name)
	util.AssertEqual(t, 2, len(templates[1].Points))
}

func TestReadTemplatesYaml_invalidPoint(t *testing.T) {
	// Act
	_, err := ReadTemplatesYaml(strings.NewReader("templates:\n  - name: broken\n    points: [[0, 0], [1]]\n"))

	// Assert
	util.AssertErrorIs(t, shape.ErrInvalidTemplate, err)
}

func TestReadTemplatesYaml_degenerateTemplate(t *testing.T) {
	// Act
	_, err := ReadTemplatesYaml(strings.NewReader("templates:\n  - name: broken\n    points: [[1, 1], [1, 1], [2, 2]]\n"))

	// Assert
	util.AssertErrorIs(t, shape.ErrInvalidTemplate, err)
}

func TestWriteTemplatesYaml_canBeReadAgain(t *testing.T) {
	// Arrange
	template := shape.NewTemplate("crown", orb.Point{0, 0}, orb.Point{1, 0.5}, orb.Point{2.125, 3})
	buffer := &bytes.Buffer{}

	// Act
	err := WriteTemplatesYaml([]*shape.Template{template}, buffer)
	util.AssertNil(t, err)
	templates, err := ReadTemplatesYaml(buffer)

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, []*shape.Template{template}, templates)
}

func TestTemplateFile(t *testing.T) {
	// Arrange
	filename := filepath.Join(t.TempDir(), "templates.yaml")
	err := os.WriteFile(filename, []byte("templates:\n  - name: line\n    points: [[0, 0], [1, 1]]\n"), 0644)
	util.AssertNil(t, err)

	// Act
	templates, err := TemplateFile(filename).Templates()

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, 1, len(templates))
	util.AssertEqual(t, "line", templates[0].Name)
}

func TestReadSvgTemplate(t *testing.T) {
	// Arrange
	content := `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
  <circle cx="10" cy="90" r="1"/>
  <circle cx="20.12345" cy="80" r="1"/>
  <g>
    <circle cx="50" cy="50" r="1"></circle>
  </g>
</svg>`

	// Act
	template, err := ReadSvgTemplate(strings.NewReader(content), "drawing")

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, "drawing", template.Name)
	util.AssertEqual(t, []orb.Point{{10, 10}, {20.123, 20}, {50, 50}}, template.Points)
}

func TestReadSvgTemplate_missingAttribute(t *testing.T) {
	// Act
	_, err := ReadSvgTemplate(strings.NewReader(`<svg><circle cx="1" cy="1"/><circle cx="2"/></svg>`), "broken")

	// Assert
	util.AssertNotNil(t, err)
	util.AssertMatch(t, "circle 1", err.Error())
}

func TestReadSvgTemplate_tooFewCircles(t *testing.T) {
	// Act
	_, err := ReadSvgTemplate(strings.NewReader(`<svg><circle cx="1" cy="1"/></svg>`), "single")

	// Assert
	util.AssertErrorIs(t, shape.ErrInvalidTemplate, err)
}

func TestWriteConstellationsAsGeoJson(t *testing.T) {
	// Arrange
	buffer := &bytes.Buffer{}

	// Act
	err := WriteConstellationsAsGeoJson([]*matching.Constellation{testConstellation()}, buffer)

	// Assert
	util.AssertNil(t, err)
	featureCollection, err := geojson.UnmarshalFeatureCollection(buffer.Bytes())
	util.AssertNil(t, err)
	util.AssertEqual(t, 1, len(featureCollection.Features))

	feature := featureCollection.Features[0]
	util.AssertEqual(t, orb.LineString{{0, 0}, {10, 0}, {10, 10}}, feature.Geometry)
	util.AssertEqual(t, "triangle", feature.Properties.MustString("name"))
	util.AssertEqual(t, "9b2f4a52-8c3e-4d1e-9d7a-0c1b2d3e4f50", feature.Properties.MustString("uuid"))
	util.AssertEqual(t, 14.14, feature.Properties.MustFloat64("size"))
	util.AssertEqual(t, "2024-03-01T12:00:00Z", feature.Properties.MustString("created_at"))
	util.AssertEqual(t, []interface{}{1.0, 2.0, 3.0}, feature.Properties["store_ids"])
}

func TestWriteConstellationsAsGeoJsonFile(t *testing.T) {
	// Arrange
	filename := filepath.Join(t.TempDir(), "output.geojson")

	// Act
	err := WriteConstellationsAsGeoJsonFile([]*matching.Constellation{testConstellation()}, filename)

	// Assert
	util.AssertNil(t, err)
	content, err := os.ReadFile(filename)
	util.AssertNil(t, err)
	util.AssertMatch(t, `"type":"LineString"`, string(content))
}

func TestProjectionFeature(t *testing.T) {
	// Arrange
	template := shape.NewTemplate("line", orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{2, 0})
	projection, err := shape.Project(template, geometry.NewPoint(1, 5, 5), geometry.NewPoint(2, 6, 5))
	util.AssertNil(t, err)

	// Act
	feature := ProjectionFeature(projection)

	// Assert
	util.AssertEqual(t, "line", feature.Properties.MustString("name"))
	util.AssertEqual(t, "MultiPoint", feature.Geometry.GeoJSONType())
	util.AssertEqual(t, 3, len(feature.Geometry.(orb.MultiPoint)))
	util.AssertPointApprox(t, orb.Point{7, 5}, feature.Geometry.(orb.MultiPoint)[2], 0.000001)
}
