package naming

import (
	"context"
	"strings"

	"github.com/turtacn/MetaNetX-Resolver/internal/domain/source"
)

// NameTable maps foreign ids of one namespace to the names that namespace
// publishes for them.  A table is filled once and then only read.
type NameTable struct {
	Namespace string

	names  map[string][]string
	folded map[string]string
}

// NewNameTable returns an empty table for namespace.
func NewNameTable(namespace string) *NameTable {
	return &NameTable{
		Namespace: namespace,
		names:     make(map[string][]string),
		folded:    make(map[string]string),
	}
}

// Add records name for foreignID.  Blank names and repeats are dropped.
func (t *NameTable) Add(foreignID, name string) {
	foreignID = strings.TrimSpace(foreignID)
	name = strings.TrimSpace(name)
	if foreignID == "" || name == "" {
		return
	}
	for _, existing := range t.names[foreignID] {
		if existing == name {
			return
		}
	}
	t.names[foreignID] = append(t.names[foreignID], name)
	if _, ok := t.folded[strings.ToLower(foreignID)]; !ok {
		t.folded[strings.ToLower(foreignID)] = foreignID
	}
}

// Lookup returns the names for foreignID, trying an exact match first and a
// case-insensitive one second.  The slice is shared.
func (t *NameTable) Lookup(foreignID string) []string {
	if t == nil {
		return nil
	}
	if names, ok := t.names[foreignID]; ok {
		return names
	}
	if id, ok := t.folded[strings.ToLower(foreignID)]; ok {
		return t.names[id]
	}
	return nil
}

// Len returns the number of foreign ids with at least one name.
func (t *NameTable) Len() int { return len(t.names) }

// LoadNameTable reads a two-column name file into a table for namespace.
func LoadNameTable(ctx context.Context, namespace string, s source.Stream, opts ...source.Option) (*NameTable, source.Stats, error) {
	t := NewNameTable(namespace)
	stats, err := s.Each(ctx, func(r source.Record) error {
		if row, ok := r.(*source.NameRow); ok {
			t.Add(row.ForeignID, row.Name)
		}
		return nil
	}, opts...)
	if err != nil {
		return nil, stats, err
	}
	return t, stats, nil
}

//Personal.AI order the ending
