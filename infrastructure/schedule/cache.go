package schedule

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ahrav/go-rankings/internal/ports"
)

// FileCache stores one CSV file per season under a directory, named
// schedule_<year>.csv. The first record holds the headers.
type FileCache struct {
	dir string
}

// NewFileCache creates a cache rooted at dir. The directory is created on
// the first Save.
func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: filepath.Clean(dir)}
}

// Path returns the file used for year.
func (c *FileCache) Path(year int) string {
	return filepath.Join(c.dir, key(year)+".csv")
}

func key(year int) string { return fmt.Sprintf("schedule_%d", year) }

// Load reads the cached table for year. A missing file yields
// ports.ErrCacheMiss and an unreadable one ports.ErrCacheCorrupted, both
// wrapped in a *ports.CacheError.
func (c *FileCache) Load(year int) (*Table, error) {
	f, err := os.Open(c.Path(year))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ports.NewCacheError(key(year), "Load", ports.ErrCacheMiss)
		}
		return nil, ports.NewCacheError(key(year), "Load", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, ports.NewCacheError(key(year), "Load", fmt.Errorf("%w: %v", ports.ErrCacheCorrupted, err))
	}
	if len(records) == 0 {
		return nil, ports.NewCacheError(key(year), "Load", fmt.Errorf("%w: no header row", ports.ErrCacheCorrupted))
	}

	return &Table{Headers: records[0], Rows: records[1:]}, nil
}

// Save writes the table for year, replacing any previous copy atomically.
func (c *FileCache) Save(year int, t *Table) error {
	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		return ports.NewCacheError(key(year), "Save", err)
	}

	tmp, err := os.CreateTemp(c.dir, key(year)+"-*.csv.tmp")
	if err != nil {
		return ports.NewCacheError(key(year), "Save", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	w := csv.NewWriter(tmp)
	if err := w.Write(t.Headers); err != nil {
		tmp.Close()
		return ports.NewCacheError(key(year), "Save", err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		tmp.Close()
		return ports.NewCacheError(key(year), "Save", err)
	}
	if err := tmp.Close(); err != nil {
		return ports.NewCacheError(key(year), "Save", err)
	}
	if err := os.Rename(tmp.Name(), c.Path(year)); err != nil {
		return ports.NewCacheError(key(year), "Save", err)
	}
	return nil
}
