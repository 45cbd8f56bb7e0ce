package io

import (
	"context"
	"encoding/csv"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"io"
	"os"
	"scf/geometry"
	"strconv"
	"strings"
	"time"
)

// CsvStoreFile reads stores from a file with "id,latitude,longitude[,name]" rows. Lines starting with "#" and blank
// lines are ignored.
type CsvStoreFile string

func (c CsvStoreFile) Stores(ctx context.Context) ([]geometry.Point, error) {
	file, err := os.Open(string(c))
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to open store file %s", string(c))
	}
	defer file.Close()

	sigolo.Infof("Read stores from %s", string(c))
	readStartTime := time.Now()

	stores, err := ReadStoresCsv(file)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to read store file %s", string(c))
	}

	sigolo.Infof("Read %d stores in %s", len(stores), time.Since(readStartTime))
	return stores, nil
}

func ReadStoresCsv(reader io.Reader) ([]geometry.Point, error) {
	csvReader := csv.NewReader(reader)
	csvReader.Comment = '#'
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	var stores []geometry.Point
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "Invalid CSV")
		}

		line, _ := csvReader.FieldPos(0)
		store, err := parseStoreRecord(record)
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid store in line %d", line)
		}
		stores = append(stores, store)
	}

	return stores, nil
}

func parseStoreRecord(record []string) (geometry.Point, error) {
	if len(record) != 3 && len(record) != 4 {
		return geometry.Point{}, errors.Errorf("Expected 3 or 4 columns but found %d", len(record))
	}

	id, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return geometry.Point{}, errors.Wrapf(err, "Invalid ID '%s'", record[0])
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return geometry.Point{}, errors.Wrapf(err, "Invalid latitude '%s'", record[1])
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return geometry.Point{}, errors.Wrapf(err, "Invalid longitude '%s'", record[2])
	}

	store := geometry.NewPoint(id, lon, lat)
	if len(record) == 4 {
		store.Name = strings.TrimSpace(record[3])
	}
	return store, nil
}
