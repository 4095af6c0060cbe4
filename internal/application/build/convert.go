package build

import (
	"strings"

	"github.com/turtacn/MetaNetX-Resolver/internal/domain/source"
	"github.com/turtacn/MetaNetX-Resolver/internal/domain/xref"
)

// batch is what one source file contributes to a build.
type batch struct {
	entities []*xref.Entity
	links    []xref.CrossReference
}

// collect converts one parsed record into entities or links.
func (b *batch) collect(rec source.Record) {
	switch r := rec.(type) {
	case *source.ChemProp:
		b.entities = append(b.entities, compoundEntity(r))
	case *source.ReacProp:
		b.entities = append(b.entities, reactionEntity(r))
	case *source.CompProp:
		b.entities = append(b.entities, compartmentEntity(r))
	case *source.XrefRow:
		if l, ok := crossReference(r); ok {
			b.links = append(b.links, l)
		}
	}
}

func compoundEntity(r *source.ChemProp) *xref.Entity {
	return &xref.Entity{
		ID:        r.ID,
		Kind:      xref.KindCompound,
		Name:      r.Name,
		Formula:   r.Formula,
		Charge:    r.Charge,
		Mass:      r.Mass,
		InChI:     r.InChI,
		InChIKey:  r.InChIKey,
		SMILES:    r.SMILES,
		Reference: r.Reference,
	}
}

func reactionEntity(r *source.ReacProp) *xref.Entity {
	return &xref.Entity{
		ID:        r.ID,
		Kind:      xref.KindReaction,
		Equation:  r.Equation,
		EC:        r.EC,
		Balanced:  r.Balance,
		Reference: r.Source,
	}
}

func compartmentEntity(r *source.CompProp) *xref.Entity {
	return &xref.Entity{
		ID:        r.ID,
		Kind:      xref.KindCompartment,
		Name:      r.Name,
		Reference: r.XRef,
	}
}

// layoutKinds maps a cross-reference file layout to the entity kind its
// targets have.
var layoutKinds = map[source.Kind]xref.Kind{
	source.KindChemXref: xref.KindCompound,
	source.KindReacXref: xref.KindReaction,
	source.KindCompXref: xref.KindCompartment,
}

// crossReference normalizes a row to its MIRIAM namespace.  Rows that link
// an entity to its own canonical id are dropped.
func crossReference(r *source.XrefRow) (xref.CrossReference, bool) {
	kind, ok := layoutKinds[r.Layout]
	if !ok {
		return xref.CrossReference{}, false
	}
	ns, id := xref.NormalizeNamespace(kind, r.Prefix, r.ForeignID)
	if ns == xref.CanonicalNamespace(kind) && strings.EqualFold(id, r.EntityID) {
		return xref.CrossReference{}, false
	}
	return xref.CrossReference{EntityID: r.EntityID, XRef: xref.XRef{Namespace: ns, ID: id}}, true
}

//Personal.AI order the ending
