package io

import (
	"context"
	"fmt"
	"github.com/pkg/errors"
	"os"
	"scf/matching"
	"strconv"
	"strings"
	"sync"
)

// PointsFile appends one "name,id1,id2,..." line per constellation to a text file.
type PointsFile struct {
	mutex sync.Mutex
	file  *os.File
}

func OpenPointsFile(filename string) (*PointsFile, error) {
	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to open points file %s", filename)
	}
	return &PointsFile{file: file}, nil
}

func (p *PointsFile) WriteConstellation(ctx context.Context, constellation *matching.Constellation) error {
	_, err := p.write(FormatPointsLine(constellation))
	return errors.Wrapf(err, "Unable to write constellation %s to %s", constellation.ID, p.file.Name())
}

func (p *PointsFile) write(line string) (int, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return fmt.Fprintln(p.file, line)
}

func (p *PointsFile) Close() error {
	return p.file.Close()
}

func FormatPointsLine(constellation *matching.Constellation) string {
	parts := []string{constellation.TemplateName}
	for _, id := range constellation.StoreIDs() {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}
