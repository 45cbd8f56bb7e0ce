package importing

import (
	"context"
	"os"
	"path/filepath"
	"scf/geometry"
	"scf/osm"
	"scf/storage"
	"scf/util"
	"testing"
)

func TestImport_csv(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	inputFile := filepath.Join(dir, "store.txt")
	util.AssertNil(t, os.WriteFile(inputFile, []byte("1,40.7,-74.0\n2,34.05,-118.24,Los Angeles\n"), 0644))

	store, err := storage.Open(filepath.Join(dir, "test.db"))
	util.AssertNil(t, err)
	defer store.Close()

	// Act
	count, err := Import(context.Background(), inputFile, Options{}, store)

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, 2, count)
	stores, err := store.Stores(context.Background())
	util.AssertNil(t, err)
	util.AssertEqual(t, []geometry.Point{
		geometry.NewPoint(1, -74.0, 40.7),
		{ID: 2, Lon: -118.24, Lat: 34.05, Name: "Los Angeles"},
	}, stores)
}

func TestImport_duplicateIds(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	inputFile := filepath.Join(dir, "store.txt")
	util.AssertNil(t, os.WriteFile(inputFile, []byte("1,40.7,-74.0\n1,34.05,-118.24\n"), 0644))

	store, err := storage.Open(filepath.Join(dir, "test.db"))
	util.AssertNil(t, err)
	defer store.Close()

	// Act
	_, err = Import(context.Background(), inputFile, Options{}, store)

	// Assert
	util.AssertNotNil(t, err)
	stores, _ := store.Stores(context.Background())
	util.AssertEqual(t, 0, len(stores))
}

func TestImport_osmWithWays(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	inputFile := filepath.Join(dir, "stores.osm")
	util.AssertNil(t, os.WriteFile(inputFile, []byte(`<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="53.5" lon="9.9" version="1">
    <tag k="shop" v="supermarket"/>
  </node>
  <node id="2" lat="53.7" lon="10.1" version="1"/>
  <way id="1" version="1">
    <nd ref="1"/>
    <nd ref="2"/>
    <tag k="shop" v="supermarket"/>
  </way>
</osm>`), 0644))

	store, err := storage.Open(filepath.Join(dir, "test.db"))
	util.AssertNil(t, err)
	defer store.Close()

	// Act
	count, err := Import(context.Background(), inputFile, Options{TagFilter: "shop=supermarket", Ways: true}, store)

	// Assert
	util.AssertNil(t, err)
	util.AssertEqual(t, 2, count)
	stores, err := store.Stores(context.Background())
	util.AssertNil(t, err)
	util.AssertEqual(t, 2, len(stores))
}

func TestSourceFor(t *testing.T) {
	_, err := SourceFor("stores.pbf", Options{})
	util.AssertNotNil(t, err)

	_, err = SourceFor("stores.txt", Options{TagFilter: "shop=supermarket"})
	util.AssertNotNil(t, err)

	_, err = SourceFor("stores.txt", Options{Ways: true})
	util.AssertNotNil(t, err)

	source, err := SourceFor("stores.osm", Options{TagFilter: "shop=supermarket", Ways: true})
	util.AssertNil(t, err)
	util.AssertTrue(t, source.(osm.StoreReader).Ways)

	_, err = SourceFor("stores.txt", Options{})
	util.AssertNil(t, err)
}
