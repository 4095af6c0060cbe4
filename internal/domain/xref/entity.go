// Package xref holds the cross-reference domain: canonical MetaNetX entities,
// the (namespace, foreign id) links that point at them, and the immutable
// equivalence graph assembled by Builder.
package xref

import (
	"sort"
	"strings"
)

// Kind classifies a canonical entity.
type Kind string

const (
	KindCompound    Kind = "compound"
	KindReaction    Kind = "reaction"
	KindCompartment Kind = "compartment"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindCompound, KindReaction, KindCompartment:
		return true
	}
	return false
}

// XRef is a (namespace, foreign id) pair.  Namespaces are MIRIAM names
// such as "bigg.reaction" or "kegg.compound".
type XRef struct {
	Namespace string `json:"namespace"`
	ID        string `json:"id"`
}

// String renders the pair as "namespace:id".
func (r XRef) String() string {
	return r.Namespace + ":" + r.ID
}

func (r XRef) fold() XRef {
	return XRef{Namespace: strings.ToLower(r.Namespace), ID: strings.ToLower(r.ID)}
}

// Less orders pairs by namespace, then id.
func (r XRef) Less(o XRef) bool {
	if r.Namespace != o.Namespace {
		return r.Namespace < o.Namespace
	}
	return r.ID < o.ID
}

// SortXRefs sorts refs in place by namespace then id.
func SortXRefs(refs []XRef) {
	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
}

// CrossReference links a foreign identifier to a canonical entity id.
type CrossReference struct {
	EntityID string `json:"entity_id"`
	XRef
}

// Participant is one term of a reaction equation.  Substrates carry a
// negative coefficient, products a positive one.
type Participant struct {
	CompoundID    string  `json:"compound_id"`
	Coefficient   float64 `json:"coefficient"`
	CompartmentID string  `json:"compartment_id"`
}

// Entity is a canonical MetaNetX record.  One struct carries all three kinds;
// fields that do not apply to a kind stay empty.
//
// Entities reachable from a finalized Graph are shared and must be treated as
// read-only.  Use Clone before changing one.
type Entity struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`

	// Name is the description shipped in the property file.
	Name string `json:"name,omitempty"`

	// Compound fields.  Structure strings are opaque.
	Formula  string   `json:"formula,omitempty"`
	Charge   *int     `json:"charge,omitempty"`
	Mass     *float64 `json:"mass,omitempty"`
	InChI    string   `json:"inchi,omitempty"`
	InChIKey string   `json:"inchikey,omitempty"`
	SMILES   string   `json:"smiles,omitempty"`

	// Reaction fields.
	Equation     string        `json:"equation,omitempty"`
	Participants []Participant `json:"participants,omitempty"`
	EC           []string      `json:"ec,omitempty"`
	Balanced     string        `json:"balanced,omitempty"`

	// Reference is the originating resource named by the property file.
	Reference string `json:"reference,omitempty"`

	XRefs []XRef `json:"xrefs,omitempty"`

	// DisplayName and AlternateNames are filled by the name resolver.
	DisplayName    string   `json:"display_name,omitempty"`
	AlternateNames []string `json:"alternate_names,omitempty"`
}

// Clone returns a deep copy of e.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	c := *e
	if e.Charge != nil {
		v := *e.Charge
		c.Charge = &v
	}
	if e.Mass != nil {
		v := *e.Mass
		c.Mass = &v
	}
	c.Participants = append([]Participant(nil), e.Participants...)
	c.EC = append([]string(nil), e.EC...)
	c.XRefs = append([]XRef(nil), e.XRefs...)
	c.AlternateNames = append([]string(nil), e.AlternateNames...)
	return &c
}

// coreKey is the content compared when the same canonical id is defined twice.
func (e *Entity) coreKey() string {
	switch e.Kind {
	case KindCompound:
		return e.Formula
	case KindReaction:
		return e.Equation
	default:
		return e.Name
	}
}

// Names returns the non-empty names an entity can be found by, display name
// first.
func (e *Entity) Names() []string {
	out := make([]string, 0, 2+len(e.AlternateNames))
	if e.DisplayName != "" {
		out = append(out, e.DisplayName)
	}
	out = append(out, e.AlternateNames...)
	if e.Name != "" {
		out = append(out, e.Name)
	}
	return out
}

//Personal.AI order the ending
