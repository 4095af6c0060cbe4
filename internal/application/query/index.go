package query

import (
	"sort"
	"unicode/utf8"

	"github.com/turtacn/MetaNetX-Resolver/internal/domain/naming"
	"github.com/turtacn/MetaNetX-Resolver/internal/domain/xref"
)

type nameEntry struct {
	id   string
	name string
	norm string
	size int
}

// nameIndex maps normalized names to entity ids and keeps a flat list for
// fuzzy scans.
type nameIndex struct {
	exact   map[string][]scored
	entries []nameEntry
}

func buildNameIndex(g *xref.Graph) *nameIndex {
	idx := &nameIndex{exact: make(map[string][]scored)}
	g.Each(func(e *xref.Entity) bool {
		seen := make(map[string]bool, 2)
		for _, name := range e.Names() {
			norm := naming.Normalize(name)
			if norm == "" || seen[norm] {
				continue
			}
			seen[norm] = true
			idx.exact[norm] = append(idx.exact[norm], scored{id: e.ID, name: name, score: 1})
			idx.entries = append(idx.entries, nameEntry{id: e.ID, name: name, norm: norm, size: utf8.RuneCountInString(norm)})
		}
		return true
	})
	// Each walks ids in order, so every exact list is already sorted.
	return idx
}

type scored struct {
	id    string
	name  string
	score float64
}

// fuzzy returns the best-scoring name per entity whose similarity to norm
// exceeds threshold, ordered by score desc then id asc.
func (idx *nameIndex) fuzzy(norm string, threshold float64) []scored {
	qlen := utf8.RuneCountInString(norm)
	best := make(map[string]scored)
	for _, e := range idx.entries {
		if lengthBound(qlen, e.size) <= threshold {
			continue
		}
		s := naming.Similarity(norm, e.norm)
		if s <= threshold {
			continue
		}
		if cur, ok := best[e.id]; !ok || s > cur.score {
			best[e.id] = scored{id: e.id, name: e.name, score: s}
		}
	}

	out := make([]scored, 0, len(best))
	for _, s := range best {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].id < out[j].id
	})
	return out
}

// lengthBound is the highest similarity two strings of these rune lengths
// can reach.
func lengthBound(a, b int) float64 {
	longest, diff := a, a-b
	if b > a {
		longest, diff = b, b-a
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(diff)/float64(longest)
}

//Personal.AI order the ending
