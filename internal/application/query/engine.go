// Package query serves read-only lookups against the published snapshot.
package query

import (
	"context"
	"strings"
	"time"

	"github.com/turtacn/MetaNetX-Resolver/internal/config"
	"github.com/turtacn/MetaNetX-Resolver/internal/domain/naming"
	"github.com/turtacn/MetaNetX-Resolver/internal/domain/xref"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

// Operation labels used for logs and metrics.
const (
	OpResolveByID     = "resolve_by_id"
	OpResolveByName   = "resolve_by_name"
	OpCrossReferences = "cross_references"
)

// ErrNotLoaded is returned by every read before the first snapshot swap.
var ErrNotLoaded = errors.New(errors.ErrCodeSnapshotNotLoaded, "no snapshot loaded")

// Match is one name query hit.  Name is the entity name that matched.
type Match struct {
	Entity *xref.Entity `json:"entity"`
	Score  float64      `json:"score"`
	Name   string       `json:"name"`
}

// Engine answers id, name and cross-reference queries.  It is safe for
// concurrent use; each call reads exactly one snapshot.
type Engine struct {
	holder  *Holder
	cfg     config.QueryConfig
	logger  logging.Logger
	metrics *prom.ResolverMetrics
}

// NewEngine returns an Engine over holder.  metrics may be nil.
func NewEngine(holder *Holder, cfg config.QueryConfig, logger logging.Logger, metrics *prom.ResolverMetrics) *Engine {
	if cfg.FuzzyThreshold <= 0 {
		cfg.FuzzyThreshold = config.DefaultFuzzyThreshold
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = config.DefaultQueryLimit
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = cfg.DefaultLimit
	}
	return &Engine{
		holder:  holder,
		cfg:     cfg,
		logger:  logging.OrDefault(logger).Named("query"),
		metrics: metrics,
	}
}

// IsReady reports whether a snapshot is loaded.
func (e *Engine) IsReady() bool { return e.holder.Current() != nil }

// Version returns the loaded snapshot version, or "" when none is loaded.
func (e *Engine) Version() string {
	if s := e.holder.Current(); s != nil {
		return s.Version
	}
	return ""
}

// ResolveByID finds the canonical record for id.  An empty or canonical
// namespace looks id up as a MetaNetX id, falling back to deprecated
// MetaNetX ids.  Any other namespace goes through the cross-reference
// index; raw MetaNetX prefixes such as "bigg" or "kegg" are accepted.
// Foreign ids match case-insensitively when no exact match exists.
func (e *Engine) ResolveByID(ctx context.Context, id, namespace string) (ent *xref.Entity, err error) {
	start := time.Now()
	defer func() { e.observe(OpResolveByID, start, err, -1) }()

	snap, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return lookupID(snap.Graph, id, namespace)
}

func lookupID(g *xref.Graph, id, namespace string) (*xref.Entity, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.InvalidParam("id is required")
	}
	if xref.IsCanonicalNamespace(namespace) {
		if ent, ok := resolveCanonical(g, id, namespace); ok {
			return ent, nil
		}
	} else if ent, ok := lookupForeign(g, xref.Candidates(namespace, id)); ok {
		return ent, nil
	}
	return nil, errors.NotFound("entity not found").WithDetail(qualified(namespace, id))
}

// lookupForeign tries every candidate with exact id case before any
// case-insensitive match, so an exact hit in a later namespace wins over a
// folded hit in an earlier one.
func lookupForeign(g *xref.Graph, refs []xref.XRef) (*xref.Entity, bool) {
	for _, ref := range refs {
		if ent, ok := g.LookupExact(ref); ok {
			return ent, true
		}
	}
	for _, ref := range refs {
		if ent, ok := g.LookupFold(ref); ok {
			return ent, true
		}
	}
	return nil, false
}

// resolveCanonical looks id up directly, then as a deprecated id, with the
// same exact-before-folded order.  A kind-specific namespace such as
// "metanetx.reaction" only returns entities of that kind.
func resolveCanonical(g *xref.Graph, id, namespace string) (*xref.Entity, bool) {
	kind, specific := canonicalKind(namespace)
	if ent, ok := g.Entity(id); ok && (!specific || ent.Kind == kind) {
		return ent, true
	}
	var deprecated []xref.XRef
	for _, k := range []xref.Kind{xref.KindReaction, xref.KindCompound, xref.KindCompartment} {
		if !specific || k == kind {
			deprecated = append(deprecated, xref.XRef{Namespace: xref.CanonicalNamespace(k), ID: id})
		}
	}
	for _, ref := range deprecated {
		if ent, ok := g.LookupExact(ref); ok {
			return ent, true
		}
	}
	if ent, ok := g.EntityFold(id); ok && (!specific || ent.Kind == kind) {
		return ent, true
	}
	for _, ref := range deprecated {
		if ent, ok := g.LookupFold(ref); ok {
			return ent, true
		}
	}
	return nil, false
}

func canonicalKind(namespace string) (xref.Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(namespace)) {
	case xref.NamespaceMetaNetXChemical:
		return xref.KindCompound, true
	case xref.NamespaceMetaNetXReaction:
		return xref.KindReaction, true
	case xref.NamespaceMetaNetXCompartment:
		return xref.KindCompartment, true
	}
	return "", false
}

// ResolveByName finds entities by display, alternate or source name.
//
// Exact mode compares normalized names and returns score 1.0 hits ordered by
// id; a positive limit caps them.  Fuzzy mode returns hits whose similarity
// exceeds the configured threshold, best first then by id, capped at limit
// (the configured default when limit <= 0).
func (e *Engine) ResolveByName(ctx context.Context, query string, fuzzy bool, limit int) (matches []Match, err error) {
	start := time.Now()
	defer func() { e.observe(OpResolveByName, start, err, len(matches)) }()

	snap, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	norm := naming.Normalize(query)
	if norm == "" {
		return nil, errors.InvalidParam("query is required")
	}
	if limit > e.cfg.MaxLimit {
		limit = e.cfg.MaxLimit
	}

	var hits []scored
	if fuzzy {
		if limit <= 0 {
			limit = e.cfg.DefaultLimit
		}
		hits = snap.names.fuzzy(norm, e.cfg.FuzzyThreshold)
	} else {
		hits = snap.names.exact[norm]
	}
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	matches = make([]Match, 0, len(hits))
	for _, h := range hits {
		ent, ok := snap.Graph.Entity(h.id)
		if !ok {
			continue
		}
		matches = append(matches, Match{Entity: ent, Score: h.score, Name: h.name})
	}
	return matches, nil
}

// CrossReferences returns the sorted (namespace, foreign id) pairs of a
// canonical id.  A record without links yields an empty, non-nil slice.
func (e *Engine) CrossReferences(ctx context.Context, id string) (refs []xref.XRef, err error) {
	start := time.Now()
	defer func() { e.observe(OpCrossReferences, start, err, len(refs)) }()

	snap, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	ent, err := lookupID(snap.Graph, id, "")
	if err != nil {
		return nil, err
	}
	refs = make([]xref.XRef, len(ent.XRefs))
	copy(refs, ent.XRefs)
	return refs, nil
}

func (e *Engine) snapshot(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := e.holder.Current()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

func (e *Engine) observe(op string, start time.Time, err error, results int) {
	outcome := prom.OutcomeSuccess
	switch {
	case err == nil:
	case errors.IsNotFound(err):
		outcome = prom.OutcomeNotFound
	default:
		outcome = prom.OutcomeFailure
	}
	d := time.Since(start)
	e.metrics.RecordQuery(op, outcome, d, results)
	if outcome == prom.OutcomeFailure {
		e.logger.Debug("Query failed", logging.String("op", op), logging.Duration("elapsed", d), logging.Err(err))
	}
}

func qualified(namespace, id string) string {
	if namespace == "" {
		return id
	}
	return namespace + ":" + id
}

//Personal.AI order the ending
