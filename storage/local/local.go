package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kbukum/dataflow/logger"
	"github.com/kbukum/dataflow/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderLocal, func(raw any, log *logger.Logger) (storage.Storage, error) {
		cfg, err := storage.Resolve[Config](storage.ProviderLocal, raw, true)
		if err != nil {
			return nil, err
		}
		log.Debug("local storage configured", logger.Fields("base_path", cfg.BasePath))
		return NewStorage(cfg.BasePath)
	})
}

// tempPrefix marks in-flight uploads; List never reports them.
const tempPrefix = ".upload-"

// Storage keeps objects as files under a root directory. An upload becomes
// visible only once it is complete.
type Storage struct {
	root string
}

// NewStorage roots a store at dir, creating it if needed.
func NewStorage(dir string) (*Storage, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("local storage: resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("local storage: create root: %w", err)
	}
	return &Storage{root: root}, nil
}

// file maps an object path to a file, refusing paths that leave the root.
func (s *Storage) file(path string) (string, error) {
	if !filepath.IsLocal(filepath.FromSlash(strings.TrimPrefix(path, "/"))) {
		return "", fmt.Errorf("local storage: path %q escapes the root", path)
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(path, "/"))), nil
}

// Upload streams reader into a temp file beside the target and renames it
// into place.
func (s *Storage) Upload(_ context.Context, path string, reader io.Reader) (err error) {
	name, err := s.file(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("local storage: mkdir %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("local storage: upload %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, reader); err != nil {
		return fmt.Errorf("local storage: write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("local storage: close %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), name); err != nil {
		return fmt.Errorf("local storage: publish %s: %w", path, err)
	}
	return nil
}

func (s *Storage) Download(_ context.Context, path string) (io.ReadCloser, error) {
	name, err := s.file(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, path)
	case err != nil:
		return nil, fmt.Errorf("local storage: open %s: %w", path, err)
	}
	return f, nil
}

// Delete is a no-op for missing objects.
func (s *Storage) Delete(_ context.Context, path string) error {
	name, err := s.file(path)
	if err != nil {
		return err
	}
	if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("local storage: delete %s: %w", path, err)
	}
	return nil
}

func (s *Storage) Exists(_ context.Context, path string) (bool, error) {
	name, err := s.file(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	}
	return false, fmt.Errorf("local storage: stat %s: %w", path, err)
}

// List walks the root and reports completed objects whose slash path starts
// with prefix.
func (s *Storage) List(_ context.Context, prefix string) ([]storage.FileInfo, error) {
	files := []storage.FileInfo{}
	err := fs.WalkDir(os.DirFS(s.root), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), tempPrefix) || !strings.HasPrefix(p, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, storage.FileInfo{Path: p, Size: info.Size(), LastModified: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("local storage: list %q: %w", prefix, err)
	}
	slices.SortFunc(files, func(a, b storage.FileInfo) int { return strings.Compare(a.Path, b.Path) })
	return files, nil
}

var _ storage.Storage = (*Storage)(nil)
