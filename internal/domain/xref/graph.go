package xref

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// GraphFormatVersion is bumped whenever the serialized layout changes.
const GraphFormatVersion = 1

// Graph is the equivalence graph: canonical entities plus a reverse index
// from (namespace, foreign id) to canonical id.  A Graph never changes after
// construction; derived graphs are built with WithEntities.
type Graph struct {
	entities map[string]*Entity
	ids      []string

	reverse map[XRef]string

	// Case-insensitive fallbacks.  On a folded collision the entity with the
	// lowest canonical id wins.
	foldedIDs     map[string]string
	foldedReverse map[XRef]string
}

// newGraph indexes entities.  Each entity's XRefs must already be
// conflict-free across the set.
func newGraph(entities map[string]*Entity) *Graph {
	g := &Graph{
		entities:      entities,
		ids:           make([]string, 0, len(entities)),
		reverse:       make(map[XRef]string),
		foldedIDs:     make(map[string]string, len(entities)),
		foldedReverse: make(map[XRef]string),
	}
	for id := range entities {
		g.ids = append(g.ids, id)
	}
	sort.Strings(g.ids)

	for _, id := range g.ids {
		e := entities[id]
		if _, ok := g.foldedIDs[strings.ToLower(id)]; !ok {
			g.foldedIDs[strings.ToLower(id)] = id
		}
		for _, ref := range e.XRefs {
			g.reverse[ref] = id
			if _, ok := g.foldedReverse[ref.fold()]; !ok {
				g.foldedReverse[ref.fold()] = id
			}
		}
	}
	return g
}

// EmptyGraph returns a graph with no entities.
func EmptyGraph() *Graph {
	return newGraph(map[string]*Entity{})
}

// Len returns the number of entities.
func (g *Graph) Len() int { return len(g.ids) }

// IDs returns canonical ids in ascending order.  The slice is shared.
func (g *Graph) IDs() []string { return g.ids }

// Entity looks up a canonical id exactly.
func (g *Graph) Entity(id string) (*Entity, bool) {
	e, ok := g.entities[id]
	return e, ok
}

// EntityFold looks up a canonical id exactly, then case-insensitively.
func (g *Graph) EntityFold(id string) (*Entity, bool) {
	if e, ok := g.entities[id]; ok {
		return e, true
	}
	if canonical, ok := g.foldedIDs[strings.ToLower(id)]; ok {
		return g.entities[canonical], true
	}
	return nil, false
}

// Lookup resolves a (namespace, foreign id) pair exactly, then
// case-insensitively.
func (g *Graph) Lookup(ref XRef) (*Entity, bool) {
	if e, ok := g.LookupExact(ref); ok {
		return e, true
	}
	return g.LookupFold(ref)
}

// LookupExact resolves a (namespace, foreign id) pair with exact id case.
func (g *Graph) LookupExact(ref XRef) (*Entity, bool) {
	if id, ok := g.reverse[ref]; ok {
		return g.entities[id], true
	}
	return nil, false
}

// LookupFold resolves a (namespace, foreign id) pair ignoring id case.
func (g *Graph) LookupFold(ref XRef) (*Entity, bool) {
	if id, ok := g.foldedReverse[ref.fold()]; ok {
		return g.entities[id], true
	}
	return nil, false
}

// CrossReferenceCount returns the number of (namespace, foreign id) pairs.
func (g *Graph) CrossReferenceCount() int { return len(g.reverse) }

// Each calls fn for every entity in ascending id order until fn returns false.
func (g *Graph) Each(fn func(*Entity) bool) {
	for _, id := range g.ids {
		if !fn(g.entities[id]) {
			return
		}
	}
}

// Counts returns the number of entities per kind.
func (g *Graph) Counts() map[Kind]int {
	out := make(map[Kind]int, 3)
	for _, e := range g.entities {
		out[e.Kind]++
	}
	return out
}

// WithEntities returns a new Graph in which the given entities replace those
// with the same id.  Unchanged entities are shared with g.  Replacements
// must keep their XRefs; ids not present in g are ignored.
func (g *Graph) WithEntities(replacements []*Entity) *Graph {
	next := make(map[string]*Entity, len(g.entities))
	for id, e := range g.entities {
		next[id] = e
	}
	for _, e := range replacements {
		if e == nil {
			continue
		}
		if _, ok := next[e.ID]; ok {
			next[e.ID] = e
		}
	}
	return newGraph(next)
}

// ─────────────────────────────────────────────────────────────────────────────
// Serialization
// ─────────────────────────────────────────────────────────────────────────────

type graphDocument struct {
	FormatVersion int       `json:"format_version"`
	Entities      []*Entity `json:"entities"`
}

// MarshalJSON writes entities in ascending id order so equal graphs
// serialize to identical bytes.
func (g *Graph) MarshalJSON() ([]byte, error) {
	doc := graphDocument{
		FormatVersion: GraphFormatVersion,
		Entities:      make([]*Entity, 0, len(g.ids)),
	}
	for _, id := range g.ids {
		doc.Entities = append(doc.Entities, g.entities[id])
	}
	return json.Marshal(doc)
}

// UnmarshalJSON rebuilds the graph and its indexes from serialized entities.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var doc graphDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.FormatVersion != GraphFormatVersion {
		return fmt.Errorf("xref: unsupported graph format version %d", doc.FormatVersion)
	}
	entities := make(map[string]*Entity, len(doc.Entities))
	owner := make(map[XRef]string)
	for _, e := range doc.Entities {
		if e == nil || e.ID == "" {
			return fmt.Errorf("xref: serialized entity without id")
		}
		if _, dup := entities[e.ID]; dup {
			return fmt.Errorf("xref: serialized entity %s appears twice", e.ID)
		}
		for _, ref := range e.XRefs {
			if prev, taken := owner[ref]; taken {
				return fmt.Errorf("xref: %s is claimed by both %s and %s", ref, prev, e.ID)
			}
			owner[ref] = e.ID
		}
		entities[e.ID] = e
	}
	*g = *newGraph(entities)
	return nil
}

//Personal.AI order the ending
