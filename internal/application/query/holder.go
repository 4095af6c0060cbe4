package query

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/turtacn/MetaNetX-Resolver/internal/domain/snapshot"
	"github.com/turtacn/MetaNetX-Resolver/internal/domain/xref"
)

// Snapshot is an immutable graph plus the indexes the engine reads.
type Snapshot struct {
	Graph    *xref.Graph
	Version  string
	LoadedAt time.Time

	names *nameIndex
}

// NewSnapshot indexes g.  version may be empty for a graph that was never
// saved.
func NewSnapshot(g *xref.Graph, version string) *Snapshot {
	if g == nil {
		g = xref.EmptyGraph()
	}
	return &Snapshot{
		Graph:    g,
		Version:  version,
		LoadedAt: time.Now().UTC(),
		names:    buildNameIndex(g),
	}
}

// Holder publishes the current snapshot.  Readers call Current once per
// operation and keep using that snapshot even if a swap happens meanwhile.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

func NewHolder() *Holder { return &Holder{} }

// Current returns the published snapshot, or nil before the first Swap.
func (h *Holder) Current() *Snapshot { return h.current.Load() }

// Swap publishes s and returns the snapshot it replaced.
func (h *Holder) Swap(s *Snapshot) *Snapshot { return h.current.Swap(s) }

// LoadFrom reads version ("latest" for the current pointer) from store and
// publishes it.  On error the held snapshot is left as it was.
func (h *Holder) LoadFrom(ctx context.Context, store *snapshot.Store, version string) (*Snapshot, error) {
	g, m, err := store.Load(ctx, version)
	if err != nil {
		return nil, err
	}
	s := NewSnapshot(g, m.Version)
	h.Swap(s)
	return s, nil
}

//Personal.AI order the ending
