package xref

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pkgerrors "github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

func reaction(id, eq string) *Entity {
	return &Entity{ID: id, Kind: KindReaction, Equation: eq}
}

func compound(id, formula string) *Entity {
	return &Entity{ID: id, Kind: KindCompound, Formula: formula}
}

func link(entityID, ns, foreign string) CrossReference {
	return CrossReference{EntityID: entityID, XRef: XRef{Namespace: ns, ID: foreign}}
}

func TestBuilder_ConflictFirstSeenWins(t *testing.T) {
	t.Parallel()

	g, report, err := Build(
		[]*Entity{reaction("MNXR1", "1 MNXM1@MNXD1 = 1 MNXM2@MNXD1"), reaction("MNXR2", "1 MNXM3@MNXD1 = 1 MNXM4@MNXD1")},
		[]CrossReference{
			link("MNXR1", "bigg.reaction", "atp"),
			link("MNXR2", "bigg.reaction", "atp"),
		},
	)
	require.NoError(t, err)

	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, Conflict{Namespace: "bigg.reaction", ForeignID: "atp", KeptID: "MNXR1", RejectedID: "MNXR2"}, report.Conflicts[0])

	e, ok := g.Lookup(XRef{Namespace: "bigg.reaction", ID: "atp"})
	require.True(t, ok)
	assert.Equal(t, "MNXR1", e.ID)

	loser, _ := g.Entity("MNXR2")
	assert.Empty(t, loser.XRefs, "a rejected link is not attached to the losing entity")
}

func TestBuilder_RepeatedConflictCountedOnce(t *testing.T) {
	t.Parallel()

	_, report, err := Build(
		[]*Entity{reaction("MNXR1", "= 1 A@B"), reaction("MNXR2", "= 1 C@D")},
		[]CrossReference{
			link("MNXR1", "kegg.reaction", "R00001"),
			link("MNXR2", "kegg.reaction", "R00001"),
			link("MNXR2", "kegg.reaction", "R00001"),
			link("MNXR1", "kegg.reaction", "R00001"),
		},
	)
	require.NoError(t, err)
	assert.Len(t, report.Conflicts, 1)
	assert.Equal(t, 1, report.CrossReferences)
}

func TestBuilder_DanglingPrunedAndCountedOnce(t *testing.T) {
	t.Parallel()

	g, report, err := Build(
		[]*Entity{compound("MNXM1", "H2O")},
		[]CrossReference{
			link("MNXM1", "chebi", "CHEBI:15377"),
			link("MNXM404", "chebi", "CHEBI:0000"),
			link("MNXM404", "chebi", "CHEBI:0000"),
		},
	)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Dangling)
	_, ok := g.Lookup(XRef{Namespace: "chebi", ID: "CHEBI:0000"})
	assert.False(t, ok)
	e, _ := g.Entity("MNXM1")
	assert.Equal(t, []XRef{{Namespace: "chebi", ID: "CHEBI:15377"}}, e.XRefs)
}

func TestBuilder_DanglingDoesNotBlockLaterValidLink(t *testing.T) {
	t.Parallel()

	g, report, err := Build(
		[]*Entity{compound("MNXM1", "H2O")},
		[]CrossReference{
			link("MNXM404", "hmdb", "HMDB01"),
			link("MNXM1", "hmdb", "HMDB01"),
		},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Dangling)
	assert.Empty(t, report.Conflicts)
	e, ok := g.Lookup(XRef{Namespace: "hmdb", ID: "HMDB01"})
	require.True(t, ok)
	assert.Equal(t, "MNXM1", e.ID)
}

func TestBuilder_DuplicateCanonicalID(t *testing.T) {
	t.Parallel()

	t.Run("identical content merges", func(t *testing.T) {
		t.Parallel()
		_, report, err := Build([]*Entity{compound("MNXM1", "H2O"), compound("MNXM1", "H2O")}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, report.DuplicatesMerged)
		assert.Equal(t, 1, report.Compounds)
	})

	t.Run("different formula fails", func(t *testing.T) {
		t.Parallel()
		_, _, err := Build([]*Entity{compound("MNXM1", "H2O"), compound("MNXM1", "H2O2")}, nil)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeDuplicateCanonicalID))
	})

	t.Run("different equation fails", func(t *testing.T) {
		t.Parallel()
		_, _, err := Build([]*Entity{reaction("MNXR1", "1 A@B = 1 C@B"), reaction("MNXR1", "1 A@B = 2 C@B")}, nil)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeDuplicateCanonicalID))
	})
}

func TestBuilder_RejectsInvalidEntities(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	assert.Error(t, b.AddEntity(nil))
	assert.Error(t, b.AddEntity(&Entity{ID: " ", Kind: KindCompound}))
	assert.Error(t, b.AddEntity(&Entity{ID: "X", Kind: "protein"}))
}

func TestBuilder_UnparseableEquationKept(t *testing.T) {
	t.Parallel()

	g, report, err := Build([]*Entity{
		reaction("MNXR1", "(n) MNXM1@MNXD1 = (n) MNXM2@MNXD1"),
		reaction("MNXR2", "1 MNXM1@MNXD1 + 2 MNXM3@MNXD1 = 1 MNXM2@MNXD1"),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.UnparseableEquations)
	bad, ok := g.Entity("MNXR1")
	require.True(t, ok)
	assert.Empty(t, bad.Participants)

	good, _ := g.Entity("MNXR2")
	assert.Equal(t, []Participant{
		{CompoundID: "MNXM1", Coefficient: -1, CompartmentID: "MNXD1"},
		{CompoundID: "MNXM3", Coefficient: -2, CompartmentID: "MNXD1"},
		{CompoundID: "MNXM2", Coefficient: 1, CompartmentID: "MNXD1"},
	}, good.Participants)
}

func TestBuilder_FinalizeTwice(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	_, _, err := b.Finalize()
	require.NoError(t, err)
	_, _, err = b.Finalize()
	assert.Error(t, err)
	assert.Error(t, b.AddEntity(compound("MNXM1", "")))
}

// Shuffling entity records and unrelated links must not change what a given
// foreign id resolves to.
func TestBuilder_InsertionOrderIndependence(t *testing.T) {
	t.Parallel()

	newEntities := func() []*Entity {
		out := []*Entity{}
		for _, id := range []string{"MNXR1", "MNXR2", "MNXR3", "MNXR4", "MNXR5"} {
			out = append(out, reaction(id, "1 A@B = 1 "+id+"@B"))
		}
		return out
	}
	unrelated := []CrossReference{
		link("MNXR2", "kegg.reaction", "R2"),
		link("MNXR3", "seed.reaction", "rxn3"),
		link("MNXR4", "rhea", "4"),
		link("MNXR5", "metacyc.reaction", "RXN-5"),
		link("MNXR9", "rhea", "9"),
	}
	target := link("MNXR1", "bigg.reaction", "ATPS4r")

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		entities := newEntities()
		rng.Shuffle(len(entities), func(a, b int) { entities[a], entities[b] = entities[b], entities[a] })
		links := append([]CrossReference(nil), unrelated...)
		rng.Shuffle(len(links), func(a, b int) { links[a], links[b] = links[b], links[a] })
		pos := rng.Intn(len(links) + 1)
		links = append(links[:pos], append([]CrossReference{target}, links[pos:]...)...)

		g, _, err := Build(entities, links)
		require.NoError(t, err)
		e, ok := g.Lookup(target.XRef)
		require.True(t, ok)
		assert.Equal(t, "MNXR1", e.ID)
	}
}

//Personal.AI order the ending
