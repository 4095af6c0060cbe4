// Package filesystem stores snapshot objects and serves source files from a
// local directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/turtacn/MetaNetX-Resolver/internal/domain/snapshot"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

// Store maps object keys to files below Root.  Keys use '/' separators.
type Store struct {
	Root   string
	logger logging.Logger
}

// NewStore returns a Store rooted at dir, creating it when missing.
func NewStore(dir string, logger logging.Logger) (*Store, error) {
	if dir == "" {
		return nil, pkgerrors.InvalidParam("filesystem store needs a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeInternal, "create store directory").WithDetail(dir)
	}
	return &Store{Root: dir, logger: logging.OrDefault(logger).Named("filesystem")}, nil
}

// path resolves key below Root and rejects keys that escape it.
func (s *Store) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimLeft(key, "/")))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", pkgerrors.InvalidParam("object key escapes store root").WithDetail(key)
	}
	return filepath.Join(s.Root, clean), nil
}

// Put writes r to a temporary file next to the target and renames it into
// place.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, _ int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.path(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		return err
	}
	committed = true
	s.logger.Debug("object written", logging.String("key", key))
	return nil
}

// Get opens key.  A missing file returns snapshot.ErrObjectNotFound.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", key, snapshot.ErrObjectNotFound)
		}
		return nil, err
	}
	return f, nil
}

// Fetch opens a source file by name.
func (s *Store) Fetch(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.Get(ctx, name)
}

// List returns keys with the given prefix, sorted.  Temporary files from
// interrupted writes are not listed.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(s.Root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

//Personal.AI order the ending
