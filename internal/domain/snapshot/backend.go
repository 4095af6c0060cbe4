// Package snapshot persists finalized graphs as immutable, versioned
// snapshots and tracks which one is current.
//
// Layout under a backend:
//
//	snapshots/<version>/graph.json.gz   gzip-compressed graph document
//	snapshots/<version>/MANIFEST.json   checksum, size, counts, build report
//	CURRENT                             version of the published snapshot
//
// Objects are written data first, manifest second, pointer last, so a
// reader following CURRENT never sees a partial snapshot.
package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
)

// ErrObjectNotFound is returned by backends for a missing key.
var ErrObjectNotFound = errors.New("snapshot: object not found")

// Backend is a flat key/value object store.  Put must replace an object
// atomically: readers see the old bytes or the new bytes, never a mix.
type Backend interface {
	Put(ctx context.Context, key string, r io.Reader, size int64) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// MemoryBackend keeps objects in process memory.
type MemoryBackend struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{objects: make(map[string][]byte)}
}

func (m *MemoryBackend) Put(ctx context.Context, key string, r io.Reader, _ int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.objects[key] = b
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	b, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *MemoryBackend) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes key.  Used by tests to simulate lost objects.
func (m *MemoryBackend) Delete(key string) {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
}

// Overwrite replaces the bytes under key.
func (m *MemoryBackend) Overwrite(key string, b []byte) {
	m.mu.Lock()
	m.objects[key] = b
	m.mu.Unlock()
}

//Personal.AI order the ending
