// Package fixture serves inspection rows from a local JSON file, for
// offline development and tests.
package fixture

import (
	"context"
	"fmt"
	"os"

	"github.com/couchcryptid/nyc-coffee-inspections/internal/domain"
)

// FileSource implements domain.RecordSource over a JSON array file. The
// file is re-read on every fetch so edits show up on the next refresh.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch applies the same query semantics as the remote source: an exact
// dba match when Name is set, then the row limit.
func (s *FileSource) Fetch(ctx context.Context, q domain.Query) ([]domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	raws, err := domain.DecodeRawRecords(f)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", s.path, err)
	}

	out := make([]domain.RawRecord, 0, len(raws))
	for _, raw := range raws {
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
		if q.Name != "" {
			if dba, _ := raw["dba"].(string); dba != q.Name {
				continue
			}
		}
		out = append(out, raw)
	}
	return out, nil
}
