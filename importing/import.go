package importing

import (
	"context"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"scf/finder"
	"scf/geometry"
	ownIo "scf/io"
	"scf/osm"
	"time"
)

type StoreWriter interface {
	SaveStores(ctx context.Context, stores []geometry.Point) error
}

// Options configure how an input file is turned into stores. The tag filter is required for OSM files and must be
// empty otherwise. Ways can only be used for OSM files as well.
type Options struct {
	TagFilter string
	Ways      bool
}

// SourceFor returns an OSM reader for .osm and .pbf files and a CSV reader for everything else.
func SourceFor(inputFile string, options Options) (finder.PointSource, error) {
	if !osm.IsOsmFile(inputFile) {
		if options.TagFilter != "" || options.Ways {
			return nil, errors.Errorf("Tag filter and ways can only be used for .osm and .pbf files but input file is %s", inputFile)
		}
		return ownIo.CsvStoreFile(inputFile), nil
	}

	if options.TagFilter == "" {
		return nil, errors.Errorf("A tag filter is needed to find stores in OSM file %s", inputFile)
	}
	filter, err := osm.ParseTagFilter(options.TagFilter)
	if err != nil {
		return nil, err
	}
	return osm.StoreReader{Filename: inputFile, Filter: filter, Ways: options.Ways}, nil
}

func Import(ctx context.Context, inputFile string, options Options, writer StoreWriter) (int, error) {
	source, err := SourceFor(inputFile, options)
	if err != nil {
		return 0, err
	}

	sigolo.Debug("Start importing stores")
	importStartTime := time.Now()

	stores, err := source.Stores(ctx)
	if err != nil {
		return 0, err
	}
	if geometry.HasDuplicateIDs(stores) {
		return 0, errors.Errorf("Input file %s contains stores with the same ID", inputFile)
	}

	err = writer.SaveStores(ctx, stores)
	if err != nil {
		return 0, errors.Wrapf(err, "Unable to save stores from %s", inputFile)
	}

	sigolo.Infof("Imported %d stores in %s", len(stores), time.Since(importStartTime))
	return len(stores), nil
}
