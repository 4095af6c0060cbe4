package xref

import (
	"strings"

	pkgerrors "github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

// Builder assembles a Graph in a single forward pass.  Entities are inserted
// as they arrive; cross-references are buffered in arrival order and applied
// in Finalize, once every canonical id is known.  That makes the result
// independent of how entity and cross-reference records interleave, while
// "first seen wins" still follows cross-reference input order.
//
// A Builder is single-writer and not safe for concurrent use.
type Builder struct {
	entities map[string]*Entity
	pending  []CrossReference
	report   *BuildReport
	done     bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		entities: make(map[string]*Entity),
		report:   &BuildReport{},
	}
}

// AddEntity inserts a canonical entity; the Builder takes ownership of e.
// Redefining an id with the same core content (formula for compounds,
// equation for reactions, name for compartments) is merged silently;
// different core content fails with ErrCodeDuplicateCanonicalID.
//
// Reactions with an equation but no participants get their equation parsed.
// A parse failure is counted and the reaction is kept.
func (b *Builder) AddEntity(e *Entity) error {
	if b.done {
		return pkgerrors.New(pkgerrors.CodeInternal, "builder already finalized")
	}
	if e == nil || strings.TrimSpace(e.ID) == "" {
		return pkgerrors.InvalidParam("entity without canonical id")
	}
	if !e.Kind.Valid() {
		return pkgerrors.InvalidParam("entity has unknown kind").WithDetail(e.ID + ": " + string(e.Kind))
	}

	if prev, ok := b.entities[e.ID]; ok {
		if prev.Kind != e.Kind || prev.coreKey() != e.coreKey() {
			return pkgerrors.New(pkgerrors.ErrCodeDuplicateCanonicalID, "canonical id defined twice with different content").
				WithDetail(e.ID)
		}
		b.report.DuplicatesMerged++
		return nil
	}

	if e.Kind == KindReaction && e.Equation != "" && len(e.Participants) == 0 {
		parts, err := ParseEquation(e.Equation)
		if err != nil {
			b.report.UnparseableEquations++
		} else {
			e.Participants = parts
		}
	}

	// Links come only from cross-reference records.
	e.XRefs = nil
	b.entities[e.ID] = e
	return nil
}

// AddCrossReference buffers a link from ref to entityID.
func (b *Builder) AddCrossReference(entityID string, ref XRef) {
	if b.done {
		return
	}
	b.pending = append(b.pending, CrossReference{EntityID: entityID, XRef: ref})
}

// Finalize applies buffered cross-references and freezes the graph:
//
//   - a link whose target id was never defined is pruned and counted once
//     per distinct (entity, namespace, foreign id) triple;
//   - the first link for a (namespace, foreign id) pair wins; a later link
//     to a different id is recorded as a Conflict and dropped;
//   - repeated identical links collapse into one.
//
// The Builder cannot be used afterwards.
func (b *Builder) Finalize() (*Graph, *BuildReport, error) {
	if b.done {
		return nil, nil, pkgerrors.New(pkgerrors.CodeInternal, "builder already finalized")
	}
	b.done = true

	owner := make(map[XRef]string, len(b.pending))
	dangling := make(map[CrossReference]bool)
	type conflictKey struct {
		ref      XRef
		rejected string
	}
	conflicts := make(map[conflictKey]bool)

	for _, cr := range b.pending {
		target, ok := b.entities[cr.EntityID]
		if !ok {
			if !dangling[cr] {
				dangling[cr] = true
				b.report.Dangling++
			}
			continue
		}
		if kept, taken := owner[cr.XRef]; taken {
			if kept == cr.EntityID {
				continue
			}
			key := conflictKey{ref: cr.XRef, rejected: cr.EntityID}
			if !conflicts[key] {
				conflicts[key] = true
				b.report.Conflicts = append(b.report.Conflicts, Conflict{
					Namespace:  cr.Namespace,
					ForeignID:  cr.ID,
					KeptID:     kept,
					RejectedID: cr.EntityID,
				})
			}
			continue
		}
		owner[cr.XRef] = cr.EntityID
		target.XRefs = append(target.XRefs, cr.XRef)
	}
	b.pending = nil

	for _, e := range b.entities {
		SortXRefs(e.XRefs)
		switch e.Kind {
		case KindCompound:
			b.report.Compounds++
		case KindReaction:
			b.report.Reactions++
		case KindCompartment:
			b.report.Compartments++
		}
	}
	sortConflicts(b.report.Conflicts)
	b.report.CrossReferences = len(owner)

	return newGraph(b.entities), b.report, nil
}

// Build is a convenience wrapper: it adds entities in order, then links in
// order, then finalizes.
func Build(entities []*Entity, links []CrossReference) (*Graph, *BuildReport, error) {
	b := NewBuilder()
	for _, e := range entities {
		if err := b.AddEntity(e); err != nil {
			return nil, nil, err
		}
	}
	for _, l := range links {
		b.AddCrossReference(l.EntityID, l.XRef)
	}
	return b.Finalize()
}

//Personal.AI order the ending
