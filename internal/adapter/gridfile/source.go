package gridfile

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/climate-grid-etl/internal/domain"
)

// DirSource loads grid files from a data directory. It implements
// domain.GridSource.
type DirSource struct {
	dir      string
	encoding string
	logger   *slog.Logger
}

// NewDirSource creates a source rooted at dir. defaultEncoding applies to
// requests that do not name one.
func NewDirSource(dir, defaultEncoding string, logger *slog.Logger) *DirSource {
	if defaultEncoding == "" {
		defaultEncoding = DefaultEncoding
	}
	return &DirSource{dir: dir, encoding: defaultEncoding, logger: logger}
}

// LoadGrid reads and decodes the grid file called name.
func (s *DirSource) LoadGrid(ctx context.Context, name, encoding string) ([]domain.RawGridRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	if encoding == "" {
		encoding = s.encoding
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grid: %w", err)
	}
	defer f.Close()

	rows, err := Decode(f, encoding)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	s.logger.Debug("grid loaded", "file", name, "encoding", encoding, "rows", len(rows))
	return rows, nil
}

// Stat returns file info for name, used by CachedSource to detect changes.
func (s *DirSource) Stat(name string) (fs.FileInfo, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.Stat(path)
}

// resolve maps a job file name to a path inside the data directory. Names
// without an extension get ".csv"; names escaping the directory are rejected.
func (s *DirSource) resolve(name string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("grid file %q is outside the data directory", name)
	}
	if filepath.Ext(name) == "" {
		name += ".csv"
	}
	return filepath.Join(s.dir, name), nil
}
