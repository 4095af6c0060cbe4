package naming

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/turtacn/MetaNetX-Resolver/internal/domain/xref"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/logging"
)

// DefaultThreshold is the similarity above which two candidate names are
// linked into the same group.
const DefaultThreshold = 0.85

// Candidate confidences.
const (
	ConfidenceTable = 1.0
	ConfidenceLabel = 0.5
)

// Candidate is a name proposed for one reaction by one namespace.
type Candidate struct {
	ReactionID string
	Namespace  string
	ForeignID  string
	Name       string
	Confidence float64
}

// Config tunes a Resolver.
type Config struct {
	// Threshold is the exclusive similarity bound for linking candidates.
	Threshold float64
	// Priority lists namespaces from most to least preferred.  Unlisted
	// namespaces rank after all listed ones, alphabetically.
	Priority []string
	// ECLabelFallback proposes "EC <number>" when a reaction has EC numbers
	// but no other candidate.
	ECLabelFallback bool
}

// Resolver picks display names.  It is stateless between calls and safe for
// concurrent use.
type Resolver struct {
	cfg    Config
	rank   map[string]int
	logger logging.Logger
}

// NewResolver returns a Resolver for cfg.  A non-positive threshold falls
// back to DefaultThreshold.
func NewResolver(cfg Config, logger logging.Logger) *Resolver {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	rank := make(map[string]int, len(cfg.Priority))
	for i, ns := range cfg.Priority {
		if _, ok := rank[ns]; !ok {
			rank[ns] = i
		}
	}
	return &Resolver{cfg: cfg, rank: rank, logger: logging.OrDefault(logger).Named("naming")}
}

// Resolve returns a copy of g in which every reaction carries the display
// name and alternates chosen from tables.  Entities whose names do not change
// are shared with g.  Resolving an already resolved graph with the same
// tables yields the same names.
func (r *Resolver) Resolve(ctx context.Context, g *xref.Graph, tables []*NameTable) (*xref.Graph, xref.NameStats, error) {
	start := time.Now()
	byNS := make(map[string]*NameTable, len(tables))
	for _, t := range tables {
		if t == nil {
			continue
		}
		if prev, ok := byNS[t.Namespace]; ok {
			merged := NewNameTable(t.Namespace)
			for _, src := range []*NameTable{prev, t} {
				for id, names := range src.names {
					for _, n := range names {
						merged.Add(id, n)
					}
				}
			}
			t = merged
		}
		byNS[t.Namespace] = t
	}

	var (
		stats   xref.NameStats
		changed []*xref.Entity
		err     error
		seen    int
	)
	g.Each(func(e *xref.Entity) bool {
		if e.Kind != xref.KindReaction {
			return true
		}
		if seen++; seen%1024 == 0 {
			if err = ctx.Err(); err != nil {
				return false
			}
		}
		stats.Reactions++

		cands := r.Candidates(e, byNS)
		display, alternates, groups := r.Choose(cands)
		switch {
		case len(cands) == 0:
			stats.Absent++
		case len(cands) == 1:
			stats.Single++
		default:
			stats.Clustered++
			stats.Groups += groups
		}

		if e.DisplayName != display || !equalStrings(e.AlternateNames, alternates) {
			c := e.Clone()
			c.DisplayName = display
			c.AlternateNames = alternates
			changed = append(changed, c)
		}
		return true
	})
	if err != nil {
		return nil, stats, err
	}

	out := g
	if len(changed) > 0 {
		out = g.WithEntities(changed)
	}
	r.logger.Info("display names resolved",
		logging.Int("reactions", stats.Reactions),
		logging.Int("resolved", stats.Resolved()),
		logging.Int("absent", stats.Absent),
		logging.Int("clustered", stats.Clustered),
		logging.Int("changed", len(changed)),
		logging.Duration("elapsed", time.Since(start)))
	return out, stats, nil
}

// Candidates gathers the names proposed for reaction e, trimmed, without
// repeats, sorted by namespace rank then namespace then name.
func (r *Resolver) Candidates(e *xref.Entity, tables map[string]*NameTable) []Candidate {
	var out []Candidate
	seen := make(map[[2]string]bool)
	add := func(ns, foreignID, name string, conf float64) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := [2]string{ns, name}
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, Candidate{ReactionID: e.ID, Namespace: ns, ForeignID: foreignID, Name: name, Confidence: conf})
	}

	for _, ref := range e.XRefs {
		for _, name := range tables[ref.Namespace].Lookup(ref.ID) {
			add(ref.Namespace, ref.ID, name, ConfidenceTable)
		}
	}
	if ecTable := tables[xref.NamespaceEC]; ecTable != nil {
		for _, ec := range e.EC {
			for _, name := range ecTable.Lookup(ec) {
				add(xref.NamespaceEC, ec, name, ConfidenceTable)
			}
		}
	}
	if len(out) == 0 && r.cfg.ECLabelFallback {
		for _, ec := range e.EC {
			add(xref.NamespaceEC, ec, "EC "+ec, ConfidenceLabel)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ra, rb := r.rankOf(a.Namespace), r.rankOf(b.Namespace); ra != rb {
			return ra < rb
		}
		if a.Namespace != b.Namespace {
			return a.Namespace < b.Namespace
		}
		return a.Name < b.Name
	})
	return out
}

type group struct {
	members []int
	rep     string
	repLen  int
	minRank int
}

// Choose clusters candidates and returns the display name, the alternates
// and the number of groups.  Candidates whose normalized forms are more
// similar than the threshold are linked; groups are the connected components
// of that graph.
func (r *Resolver) Choose(cands []Candidate) (string, []string, int) {
	switch len(cands) {
	case 0:
		return "", nil, 0
	case 1:
		return cands[0].Name, nil, 1
	}

	normalized := make([]string, len(cands))
	for i, c := range cands {
		normalized[i] = Normalize(c.Name)
	}

	ug := simple.NewUndirectedGraph()
	for i := range cands {
		ug.AddNode(simple.Node(i))
	}
	for i := range cands {
		for j := i + 1; j < len(cands); j++ {
			if Similarity(normalized[i], normalized[j]) > r.cfg.Threshold {
				ug.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
			}
		}
	}

	components := topo.ConnectedComponents(ug)
	groups := make([]group, 0, len(components))
	for _, comp := range components {
		grp := group{minRank: int(^uint(0) >> 1)}
		best := -1
		for _, n := range comp {
			i := int(n.ID())
			grp.members = append(grp.members, i)
			if rk := r.rankOf(cands[i].Namespace); rk < grp.minRank {
				grp.minRank = rk
			}
			if best < 0 || r.betterRepresentative(cands[i], cands[best]) {
				best = i
			}
		}
		sort.Ints(grp.members)
		grp.rep = cands[best].Name
		grp.repLen = utf8.RuneCountInString(grp.rep)
		groups = append(groups, grp)
	}

	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.minRank != b.minRank {
			return a.minRank < b.minRank
		}
		if len(a.members) != len(b.members) {
			return len(a.members) > len(b.members)
		}
		if a.repLen != b.repLen {
			return a.repLen > b.repLen
		}
		return a.rep < b.rep
	})

	display := groups[0].rep
	var alternates []string
	for _, grp := range groups[1:] {
		if grp.rep != display && !containsString(alternates, grp.rep) {
			alternates = append(alternates, grp.rep)
		}
	}
	return display, alternates, len(groups)
}

// betterRepresentative prefers the longer name, then the higher-priority
// namespace, then the lexically smaller name.
func (r *Resolver) betterRepresentative(a, b Candidate) bool {
	la, lb := utf8.RuneCountInString(a.Name), utf8.RuneCountInString(b.Name)
	if la != lb {
		return la > lb
	}
	if ra, rb := r.rankOf(a.Namespace), r.rankOf(b.Namespace); ra != rb {
		return ra < rb
	}
	if a.Namespace != b.Namespace {
		return a.Namespace < b.Namespace
	}
	return a.Name < b.Name
}

func (r *Resolver) rankOf(ns string) int {
	if rk, ok := r.rank[ns]; ok {
		return rk
	}
	return len(r.cfg.Priority)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
