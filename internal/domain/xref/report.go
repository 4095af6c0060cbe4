package xref

import (
	"sort"
	"time"
)

// SourceStats summarizes one parsed source file.
type SourceStats struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Lines   int    `json:"lines"`
	Records int    `json:"records"`
	Skipped int    `json:"skipped"`
	Ignored int    `json:"ignored"`
}

// Conflict records a (namespace, foreign id) pair that the input mapped to
// more than one canonical id.  KeptID is the first-seen target.
type Conflict struct {
	Namespace  string `json:"namespace"`
	ForeignID  string `json:"foreign_id"`
	KeptID     string `json:"kept_id"`
	RejectedID string `json:"rejected_id"`
}

// NameStats summarizes a name resolution pass.
type NameStats struct {
	Reactions int `json:"reactions"`
	Absent    int `json:"absent"`
	Single    int `json:"single"`
	Clustered int `json:"clustered"`
	Groups    int `json:"groups"`
}

// Resolved is the number of reactions that received a display name.
func (s NameStats) Resolved() int { return s.Single + s.Clustered }

// BuildReport is the audit record of one build.  Record-level problems land
// here instead of failing the build.
type BuildReport struct {
	Version    string    `json:"version,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Sources []SourceStats `json:"sources,omitempty"`

	Compounds       int `json:"compounds"`
	Reactions       int `json:"reactions"`
	Compartments    int `json:"compartments"`
	CrossReferences int `json:"cross_references"`

	DuplicatesMerged     int        `json:"duplicates_merged"`
	Conflicts            []Conflict `json:"conflicts,omitempty"`
	Dangling             int        `json:"dangling"`
	UnparseableEquations int        `json:"unparseable_equations"`

	Names NameStats `json:"names"`
}

// Skipped returns the malformed-line count across all sources.
func (r *BuildReport) Skipped() int {
	n := 0
	for _, s := range r.Sources {
		n += s.Skipped
	}
	return n
}

// Duration is FinishedAt minus StartedAt.
func (r *BuildReport) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func sortConflicts(cs []Conflict) {
	sort.Slice(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.Namespace != b.Namespace {
			return a.Namespace < b.Namespace
		}
		if a.ForeignID != b.ForeignID {
			return a.ForeignID < b.ForeignID
		}
		return a.RejectedID < b.RejectedID
	})
}
