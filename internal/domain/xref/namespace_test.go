package xref

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNamespace(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind           Kind
		prefix, id     string
		wantNS, wantID string
	}{
		{KindReaction, "bigg", "ATPS4r", "bigg.reaction", "ATPS4r"},
		{KindReaction, "deprecated", "MNXR01", NamespaceMetaNetXReaction, "MNXR01"},
		{KindReaction, "sabiork", "12", "sabiork.reaction", "12"},
		{KindReaction, "KEGG", "R00001", "kegg.reaction", "R00001"},
		{KindCompound, "kegg", "C00001", "kegg.compound", "C00001"},
		{KindCompound, "kegg", "D00001", "kegg.drug", "D00001"},
		{KindCompound, "kegg", "E00001", "kegg.environ", "E00001"},
		{KindCompound, "kegg", "G00001", "kegg.glycan", "G00001"},
		{KindCompound, "chebi", "15377", "chebi", "CHEBI:15377"},
		{KindCompound, "chebi", "CHEBI:15377", "chebi", "CHEBI:15377"},
		{KindCompound, "slm", "000000001", "swisslipid", "SLM:000000001"},
		{KindCompound, "bigg", "h2o", "bigg.metabolite", "h2o"},
		{KindCompound, "seed", "cpd00001", "seed.compound", "cpd00001"},
		{KindCompound, "deprecated", "MNXM01", NamespaceMetaNetXChemical, "MNXM01"},
		{KindCompartment, "bigg", "c", "bigg.compartment", "c"},
		{KindCompartment, "go", "0005737", "go", "0005737"},
		{KindReaction, "bigg.reaction", "ATPS4r", "bigg.reaction", "ATPS4r"},
		{KindReaction, "Unknown", " x ", "unknown", "x"},
	}

	for _, tc := range cases {
		ns, id := NormalizeNamespace(tc.kind, tc.prefix, tc.id)
		assert.Equal(t, tc.wantNS, ns, "%s %s:%s", tc.kind, tc.prefix, tc.id)
		assert.Equal(t, tc.wantID, id, "%s %s:%s", tc.kind, tc.prefix, tc.id)
	}
}

func TestParseXRef(t *testing.T) {
	t.Parallel()

	ref, ok := ParseXRef(KindCompound, "chebi:CHEBI:15377")
	assert.True(t, ok)
	assert.Equal(t, XRef{Namespace: "chebi", ID: "CHEBI:15377"}, ref)

	for _, raw := range []string{"MNXM1", ":x", "bigg:", ""} {
		_, ok := ParseXRef(KindCompound, raw)
		assert.False(t, ok, raw)
	}
}

func TestIsCanonicalNamespace(t *testing.T) {
	t.Parallel()

	for _, ns := range []string{"", "mnx", "MetaNetX", "metanetx.reaction"} {
		assert.True(t, IsCanonicalNamespace(ns), ns)
	}
	for _, ns := range []string{"bigg", "kegg.reaction"} {
		assert.False(t, IsCanonicalNamespace(ns), ns)
	}
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []XRef{
		{Namespace: "bigg.reaction", ID: "atp"},
		{Namespace: "bigg.metabolite", ID: "atp"},
		{Namespace: "bigg.compartment", ID: "atp"},
		{Namespace: "bigg", ID: "atp"},
	}, Candidates("BiGG", "atp"))

	assert.Equal(t, []XRef{{Namespace: "rhea", ID: "10000"}}, Candidates("rhea", "10000"))
}

//Personal.AI order the ending
