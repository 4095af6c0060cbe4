// Package source parses MetaNetX flat files into typed records.
//
// Every file is tab-delimited text, optionally gzip-compressed, with '#'
// comment lines.  Each Kind has a fixed column count; lines that do not fit
// are skipped and counted instead of failing the parse.
package source

import (
	"fmt"
	"strings"
)

// Kind identifies a source file layout.
type Kind int

const (
	KindChemProp Kind = iota + 1
	KindChemXref
	KindReacProp
	KindReacXref
	KindCompProp
	KindCompXref
	KindNames
)

var kindNames = map[Kind]string{
	KindChemProp: "chem_prop",
	KindChemXref: "chem_xref",
	KindReacProp: "reac_prop",
	KindReacXref: "reac_xref",
	KindCompProp: "comp_prop",
	KindCompXref: "comp_xref",
	KindNames:    "names",
}

// Column counts per layout.
var kindArity = map[Kind]int{
	KindChemProp: 9, // ID name formula charge mass InChI InChIKey SMILES reference
	KindChemXref: 4, // XREF MNX_ID evidence description
	KindReacProp: 6, // ID equation description balance EC source
	KindReacXref: 3, // XREF MNX_ID description
	KindCompProp: 3, // ID name xref
	KindCompXref: 3, // XREF MNX_ID description
	KindNames:    2, // foreign_id name
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Arity is the number of columns a well-formed line has.
func (k Kind) Arity() int { return kindArity[k] }

// IsXref reports whether k is one of the cross-reference layouts.
func (k Kind) IsXref() bool {
	return k == KindChemXref || k == KindReacXref || k == KindCompXref
}

// ParseKind maps a layout name such as "reac_xref" back to its Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("source: unknown kind %q", s)
}
