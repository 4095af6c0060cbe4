package source

import (
	"strconv"
	"strings"
)

// Record is one parsed line.  The concrete type is determined by Kind.
type Record interface {
	Kind() Kind
	LineNo() int
}

// ChemProp is a chem_prop.tsv line.
type ChemProp struct {
	Line      int
	ID        string `validate:"required"`
	Name      string
	Formula   string
	Charge    *int
	Mass      *float64
	InChI     string
	InChIKey  string
	SMILES    string
	Reference string
}

// ReacProp is a reac_prop.tsv line.
type ReacProp struct {
	Line        int
	ID          string `validate:"required"`
	Equation    string `validate:"required"`
	Description string
	Balance     string
	EC          []string
	Source      string
}

// CompProp is a comp_prop.tsv line.
type CompProp struct {
	Line int
	ID   string `validate:"required"`
	Name string
	XRef string
}

// XrefRow is a line of any cross-reference layout.  Prefix and ForeignID are
// the two halves of the raw "prefix:id" column, split at the first colon and
// not yet normalized.
type XrefRow struct {
	Line        int
	Layout      Kind
	Prefix      string `validate:"required"`
	ForeignID   string `validate:"required"`
	EntityID    string `validate:"required"`
	Evidence    string
	Description string
}

// NameRow is a line of a per-namespace name table.
type NameRow struct {
	Line      int
	ForeignID string `validate:"required"`
	Name      string `validate:"required"`
}

func (r *ChemProp) Kind() Kind { return KindChemProp }
func (r *ReacProp) Kind() Kind { return KindReacProp }
func (r *CompProp) Kind() Kind { return KindCompProp }
func (r *XrefRow) Kind() Kind  { return r.Layout }
func (r *NameRow) Kind() Kind  { return KindNames }

func (r *ChemProp) LineNo() int { return r.Line }
func (r *ReacProp) LineNo() int { return r.Line }
func (r *CompProp) LineNo() int { return r.Line }
func (r *XrefRow) LineNo() int  { return r.Line }
func (r *NameRow) LineNo() int  { return r.Line }

// errNoPrefix marks cross-reference values without a "prefix:" part.  Those
// rows are ignored rather than skipped.
type errNoPrefix struct{}

func (errNoPrefix) Error() string { return "cross-reference has no namespace prefix" }

// decode turns split fields into a typed record for kind.  len(fields) is
// already checked against the arity.
func decode(kind Kind, line int, f []string) (Record, error) {
	switch kind {
	case KindChemProp:
		charge, err := optionalInt(f[3])
		if err != nil {
			return nil, err
		}
		mass, err := optionalFloat(f[4])
		if err != nil {
			return nil, err
		}
		return &ChemProp{
			Line: line, ID: f[0], Name: f[1], Formula: f[2], Charge: charge, Mass: mass,
			InChI: f[5], InChIKey: f[6], SMILES: f[7], Reference: f[8],
		}, nil

	case KindReacProp:
		return &ReacProp{
			Line: line, ID: f[0], Equation: f[1], Description: f[2], Balance: f[3],
			EC: splitList(f[4]), Source: f[5],
		}, nil

	case KindCompProp:
		return &CompProp{Line: line, ID: f[0], Name: f[1], XRef: f[2]}, nil

	case KindChemXref, KindReacXref, KindCompXref:
		raw := f[0]
		if raw != "" && !strings.Contains(raw, ":") {
			return nil, errNoPrefix{}
		}
		prefix, id, _ := strings.Cut(raw, ":")
		row := &XrefRow{
			Line: line, Layout: kind,
			Prefix: strings.TrimSpace(prefix), ForeignID: strings.TrimSpace(id),
			EntityID: f[1], Description: f[len(f)-1],
		}
		if kind == KindChemXref {
			row.Evidence = f[2]
		}
		return row, nil

	case KindNames:
		return &NameRow{Line: line, ForeignID: f[0], Name: strings.TrimSpace(f[1])}, nil
	}
	return nil, errUnknownKind
}

func optionalInt(s string) (*int, error) {
	if s == "" || s == "NA" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalFloat(s string) (*float64, error) {
	if s == "" || s == "NA" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// splitList splits a ';'-separated column such as the EC list.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
