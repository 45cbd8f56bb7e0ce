package io

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"io"
	"os"
	"scf/matching"
	"scf/shape"
	"time"
)

func ConstellationFeature(constellation *matching.Constellation) *geojson.Feature {
	feature := geojson.NewFeature(constellation.LineString())
	feature.ID = constellation.ID.String()
	feature.Properties["name"] = constellation.TemplateName
	feature.Properties["uuid"] = constellation.ID.String()
	feature.Properties["size"] = constellation.Size
	feature.Properties["store_ids"] = constellation.StoreIDs()
	feature.Properties["created_at"] = constellation.CreatedAt.Format(time.RFC3339)
	return feature
}

func ProjectionFeature(projection *shape.Projection) *geojson.Feature {
	feature := geojson.NewFeature(projection.Coordinates)
	feature.Properties["name"] = projection.Template.Name
	feature.Properties["anchors"] = []orb.Point{projection.Anchors[0].Orb(), projection.Anchors[1].Orb()}
	return feature
}

func WriteConstellationsAsGeoJsonFile(constellations []*matching.Constellation, filename string) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "Unable to create GeoJSON file %s", filename)
	}

	defer func() {
		closeErr := file.Close()
		if err == nil && closeErr != nil {
			err = errors.Wrapf(closeErr, "Unable to close file handle for GeoJSON file %s", filename)
		}
	}()

	return WriteConstellationsAsGeoJson(constellations, file)
}

func WriteConstellationsAsGeoJson(constellations []*matching.Constellation, writer io.Writer) error {
	sigolo.Debugf("Write %d constellations to GeoJSON", len(constellations))
	writeStartTime := time.Now()

	featureCollection := geojson.NewFeatureCollection()
	for _, constellation := range constellations {
		featureCollection.Append(ConstellationFeature(constellation))
	}

	err := WriteFeatureCollection(featureCollection, writer)
	if err != nil {
		return err
	}

	sigolo.Debugf("Finished writing in %s", time.Since(writeStartTime))
	return nil
}

func WriteFeatureCollection(featureCollection *geojson.FeatureCollection, writer io.Writer) error {
	geojsonBytes, err := featureCollection.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Unable to marshal GeoJSON")
	}

	_, err = writer.Write(geojsonBytes)
	return errors.Wrap(err, "Unable to write GeoJSON")
}
