package watchlist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FilePersister stores each key as a JSON file under a directory.
type FilePersister struct {
	fs  afero.Fs
	dir string
}

// NewFilePersister creates a persister rooted at dir on fs.
func NewFilePersister(fs afero.Fs, dir string) *FilePersister {
	return &FilePersister{fs: fs, dir: dir}
}

func (p *FilePersister) path(key string) string {
	return filepath.Join(p.dir, key+".json")
}

// Load reads the file for key.
func (p *FilePersister) Load(_ context.Context, key string) ([]byte, error) {
	data, err := afero.ReadFile(p.fs, p.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.path(key), err)
	}
	return data, nil
}

// Save writes data to a temp file and renames it over the old one, so a
// crash never leaves a half-written list behind.
func (p *FilePersister) Save(_ context.Context, key string, data []byte) error {
	if err := p.fs.MkdirAll(p.dir, 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	target := p.path(key)
	tmp := target + ".tmp"
	if err := afero.WriteFile(p.fs, tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := p.fs.Rename(tmp, target); err != nil {
		_ = p.fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
