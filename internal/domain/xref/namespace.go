package xref

import "strings"

// Canonical MetaNetX namespaces.  Deprecated MetaNetX ids are stored as
// cross-references under these names.
const (
	NamespaceMetaNetXChemical    = "metanetx.chemical"
	NamespaceMetaNetXReaction    = "metanetx.reaction"
	NamespaceMetaNetXCompartment = "metanetx.compartment"

	// NamespaceEC names EC numbers; reactions carry them in their EC field.
	NamespaceEC = "ec-code"
)

// MetaNetX prefixes differ from MIRIAM registry names.  These tables map the
// raw prefix per entity kind.
var (
	reactionNamespaces = map[string]string{
		"bigg":       "bigg.reaction",
		"deprecated": NamespaceMetaNetXReaction,
		"mnx":        NamespaceMetaNetXReaction,
		"kegg":       "kegg.reaction",
		"metacyc":    "metacyc.reaction",
		"reactome":   "reactome",
		"rhea":       "rhea",
		"sabiork":    "sabiork.reaction",
		"seed":       "seed.reaction",
	}

	compoundNamespaces = map[string]string{
		"bigg":       "bigg.metabolite",
		"deprecated": NamespaceMetaNetXChemical,
		"mnx":        NamespaceMetaNetXChemical,
		"envipath":   "envipath",
		"hmdb":       "hmdb",
		"lipidmaps":  "lipidmaps",
		"metacyc":    "metacyc.compound",
		"reactome":   "reactome",
		"sabiork":    "sabiork.compound",
		"seed":       "seed.compound",
	}

	compartmentNamespaces = map[string]string{
		"bigg":       "bigg.compartment",
		"deprecated": NamespaceMetaNetXCompartment,
		"mnx":        NamespaceMetaNetXCompartment,
		"cco":        "cco",
		"go":         "go",
		"name":       "name",
		"seed":       "seed",
	}

	keggCompoundNamespaces = map[byte]string{
		'C': "kegg.compound",
		'D': "kegg.drug",
		'E': "kegg.environ",
		'G': "kegg.glycan",
	}
)

// CanonicalNamespace returns the MetaNetX namespace of a kind.
func CanonicalNamespace(kind Kind) string {
	switch kind {
	case KindCompound:
		return NamespaceMetaNetXChemical
	case KindReaction:
		return NamespaceMetaNetXReaction
	default:
		return NamespaceMetaNetXCompartment
	}
}

// IsCanonicalNamespace reports whether ns addresses canonical ids directly.
// The empty string counts as canonical.
func IsCanonicalNamespace(ns string) bool {
	switch strings.ToLower(strings.TrimSpace(ns)) {
	case "", "metanetx", "mnx", NamespaceMetaNetXChemical, NamespaceMetaNetXReaction, NamespaceMetaNetXCompartment:
		return true
	}
	return false
}

// NormalizeNamespace maps a raw MetaNetX prefix and id to the MIRIAM
// namespace and id for kind.  Prefixes that already look like MIRIAM names
// (containing a dot) and unknown prefixes are kept, lower-cased.
func NormalizeNamespace(kind Kind, prefix, id string) (string, string) {
	p := strings.ToLower(strings.TrimSpace(prefix))
	id = strings.TrimSpace(id)

	if strings.Contains(p, ".") {
		return p, id
	}

	switch kind {
	case KindReaction:
		if ns, ok := reactionNamespaces[p]; ok {
			return ns, id
		}
	case KindCompartment:
		if ns, ok := compartmentNamespaces[p]; ok {
			return ns, id
		}
	case KindCompound:
		switch p {
		case "kegg":
			if id != "" {
				if ns, ok := keggCompoundNamespaces[id[0]]; ok {
					return ns, id
				}
			}
			return "kegg.compound", id
		case "chebi":
			if !strings.HasPrefix(strings.ToUpper(id), "CHEBI:") {
				id = "CHEBI:" + id
			}
			return "chebi", id
		case "slm", "swisslipid", "swisslipids":
			if !strings.HasPrefix(strings.ToUpper(id), "SLM:") {
				id = "SLM:" + id
			}
			return "swisslipid", id
		}
		if ns, ok := compoundNamespaces[p]; ok {
			return ns, id
		}
	}
	return p, id
}

// ParseXRef splits a raw "prefix:id" value at the first colon and
// normalizes it for kind.  Values without a colon, or with an empty side,
// are rejected.
func ParseXRef(kind Kind, raw string) (XRef, bool) {
	prefix, id, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok || strings.TrimSpace(prefix) == "" || strings.TrimSpace(id) == "" {
		return XRef{}, false
	}
	ns, nid := NormalizeNamespace(kind, prefix, id)
	return XRef{Namespace: ns, ID: nid}, true
}

// Candidates expands a caller-supplied namespace and id into every stored
// form it may correspond to.  A raw prefix such as "bigg" or "kegg"
// expands per kind; a MIRIAM name maps to itself.  Order is stable and
// duplicates are removed.
func Candidates(ns, id string) []XRef {
	out := make([]XRef, 0, 3)
	seen := make(map[XRef]bool, 3)
	add := func(r XRef) {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	for _, kind := range []Kind{KindReaction, KindCompound, KindCompartment} {
		n, i := NormalizeNamespace(kind, ns, id)
		add(XRef{Namespace: n, ID: i})
	}
	add(XRef{Namespace: strings.ToLower(strings.TrimSpace(ns)), ID: strings.TrimSpace(id)})
	return out
}

//Personal.AI order the ending
