package query

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MetaNetX-Resolver/internal/config"
	"github.com/turtacn/MetaNetX-Resolver/internal/domain/snapshot"
	"github.com/turtacn/MetaNetX-Resolver/internal/domain/xref"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/prometheus"
	pkgerrors "github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

func link(id, ns, foreign string) xref.CrossReference {
	return xref.CrossReference{EntityID: id, XRef: xref.XRef{Namespace: ns, ID: foreign}}
}

func testGraph(t *testing.T) (*xref.Graph, *xref.BuildReport) {
	t.Helper()
	entities := []*xref.Entity{
		{ID: "MNXM2", Kind: xref.KindCompound, Name: "ATP", Formula: "C10H12N5O13P3"},
		{ID: "MNXR1", Kind: xref.KindReaction, Equation: "1 MNXM2@MNXD1 = 1 MNXM2@MNXD2",
			DisplayName: "ATP synthase", AlternateNames: []string{"H+-transporting two-sector ATPase"}},
		{ID: "MNXR2", Kind: xref.KindReaction, Equation: "1 MNXM2@MNXD1 = 1 MNXM2@MNXD3", DisplayName: "hexokinase"},
		{ID: "MNXR3", Kind: xref.KindReaction, Equation: "1 MNXM2@MNXD2 = 1 MNXM2@MNXD3", Name: "ATP Synthase"},
		{ID: "MNXR4", Kind: xref.KindReaction, Equation: "1 MNXM2@MNXD3 = 1 MNXM2@MNXD4"},
	}
	links := []xref.CrossReference{
		link("MNXR1", "bigg.reaction", "ATPS4rpp"),
		link("MNXR1", "bigg.reaction", "atp"),
		link("MNXR2", "bigg.reaction", "atp"),
		link("MNXR1", "metanetx.reaction", "MNXR99"),
		link("MNXR2", "kegg.reaction", "R00299"),
		link("MNXM2", "kegg.compound", "C00002"),
		link("MNXM2", "chebi", "CHEBI:30616"),
		link("MNXR404", "bigg.reaction", "GHOST"),
	}
	g, report, err := xref.Build(entities, links)
	require.NoError(t, err)
	return g, report
}

func newTestEngine(t *testing.T, metrics *prom.ResolverMetrics) *Engine {
	t.Helper()
	g, _ := testGraph(t)
	h := NewHolder()
	h.Swap(NewSnapshot(g, "v1"))
	return NewEngine(h, config.QueryConfig{}, logging.NewNopLogger(), metrics)
}

func TestEngine_NotLoaded(t *testing.T) {
	e := NewEngine(NewHolder(), config.QueryConfig{}, nil, nil)
	assert.False(t, e.IsReady())
	assert.Equal(t, "", e.Version())

	_, err := e.ResolveByID(context.Background(), "MNXR1", "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSnapshotNotLoaded))
	_, err = e.ResolveByName(context.Background(), "atp", false, 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSnapshotNotLoaded))
	_, err = e.CrossReferences(context.Background(), "MNXR1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSnapshotNotLoaded))
}

func TestEngine_ResolveByID(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)
	require.True(t, e.IsReady())
	assert.Equal(t, "v1", e.Version())

	cases := []struct {
		name      string
		id        string
		namespace string
		want      string
	}{
		{"canonical", "MNXR1", "", "MNXR1"},
		{"canonical alias", "MNXR1", "mnx", "MNXR1"},
		{"kind namespace", "MNXM2", "metanetx.chemical", "MNXM2"},
		{"case insensitive id", "mnxr3", "metanetx", "MNXR3"},
		{"deprecated id", "MNXR99", "", "MNXR1"},
		{"miriam namespace", "ATPS4rpp", "bigg.reaction", "MNXR1"},
		{"raw prefix", "ATPS4rpp", "bigg", "MNXR1"},
		{"raw kegg compound", "C00002", "kegg", "MNXM2"},
		{"raw chebi prefix", "30616", "chebi", "MNXM2"},
		{"folded foreign id", "atps4RPP", "BIGG", "MNXR1"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.ResolveByID(context.Background(), tc.id, tc.namespace)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.ID)
		})
	}
}

func TestEngine_ResolveByID_ExactMatchBeatsFoldedAcrossNamespaces(t *testing.T) {
	t.Parallel()
	g, _, err := xref.Build(
		[]*xref.Entity{
			{ID: "MNXM3", Kind: xref.KindCompound, Name: "ATP"},
			{ID: "MNXR9", Kind: xref.KindReaction, Equation: "1 MNXM3@MNXD1 = 1 MNXM3@MNXD2"},
		},
		[]xref.CrossReference{
			link("MNXR9", "bigg.reaction", "ATP"),
			link("MNXM3", "bigg.metabolite", "atp"),
			link("MNXM3", "metanetx.chemical", "mnxr7"),
		},
	)
	require.NoError(t, err)
	h := NewHolder()
	h.Swap(NewSnapshot(g, "v1"))
	e := NewEngine(h, config.QueryConfig{}, nil, nil)
	ctx := context.Background()

	for _, tc := range []struct{ id, ns, want string }{
		{"atp", "bigg", "MNXM3"},
		{"ATP", "bigg", "MNXR9"},
		{"Atp", "bigg", "MNXR9"},
		{"atp", "bigg.metabolite", "MNXM3"},
		{"mnxr7", "", "MNXM3"},
		{"mnxr9", "", "MNXR9"},
	} {
		got, err := e.ResolveByID(ctx, tc.id, tc.ns)
		require.NoError(t, err, "%s:%s", tc.ns, tc.id)
		assert.Equal(t, tc.want, got.ID, "%s:%s", tc.ns, tc.id)
	}
}

func TestEngine_ResolveByID_NotFound(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)
	ctx := context.Background()

	for _, tc := range []struct{ id, ns string }{
		{"MNXR1", "metanetx.chemical"},
		{"MNXR12345", ""},
		{"GHOST", "bigg.reaction"},
		{"ATPS4rpp", "kegg.reaction"},
	} {
		_, err := e.ResolveByID(ctx, tc.id, tc.ns)
		assert.True(t, pkgerrors.IsNotFound(err), "%s:%s", tc.ns, tc.id)
	}

	_, err := e.ResolveByID(ctx, "  ", "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidParam))
}

func TestEngine_ConflictFirstSeenWins(t *testing.T) {
	t.Parallel()
	_, report := testGraph(t)
	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, xref.Conflict{Namespace: "bigg.reaction", ForeignID: "atp", KeptID: "MNXR1", RejectedID: "MNXR2"}, report.Conflicts[0])

	e := newTestEngine(t, nil)
	got, err := e.ResolveByID(context.Background(), "atp", "bigg.reaction")
	require.NoError(t, err)
	assert.Equal(t, "MNXR1", got.ID)

	refs, err := e.CrossReferences(context.Background(), "MNXR2")
	require.NoError(t, err)
	assert.Equal(t, []xref.XRef{{Namespace: "kegg.reaction", ID: "R00299"}}, refs)
}

func TestEngine_CrossReferences(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)
	ctx := context.Background()

	refs, err := e.CrossReferences(ctx, "MNXR1")
	require.NoError(t, err)
	assert.Equal(t, []xref.XRef{
		{Namespace: "bigg.reaction", ID: "ATPS4rpp"},
		{Namespace: "bigg.reaction", ID: "atp"},
		{Namespace: "metanetx.reaction", ID: "MNXR99"},
	}, refs)

	refs, err = e.CrossReferences(ctx, "MNXR4")
	require.NoError(t, err)
	assert.NotNil(t, refs)
	assert.Empty(t, refs)

	_, err = e.CrossReferences(ctx, "MNXR404")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestEngine_CrossReferencesAreCopies(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)
	refs, err := e.CrossReferences(context.Background(), "MNXM2")
	require.NoError(t, err)
	refs[0].ID = "mutated"

	again, err := e.CrossReferences(context.Background(), "MNXM2")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again[0].ID)
}

func TestEngine_ResolveByName_Exact(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)

	matches, err := e.ResolveByName(context.Background(), "  atp-SYNTHASE ", false, 0)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "MNXR1", matches[0].Entity.ID)
	assert.Equal(t, "ATP synthase", matches[0].Name)
	assert.Equal(t, "MNXR3", matches[1].Entity.ID)
	for _, m := range matches {
		assert.Equal(t, 1.0, m.Score)
	}

	matches, err = e.ResolveByName(context.Background(), "atp synthase", false, 1)
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	matches, err = e.ResolveByName(context.Background(), "H+-transporting two-sector ATPase", false, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "MNXR1", matches[0].Entity.ID)

	matches, err = e.ResolveByName(context.Background(), "atp synthse", false, 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestEngine_ResolveByName_Fuzzy(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)

	matches, err := e.ResolveByName(context.Background(), "atp synthse", true, 0)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "MNXR1", matches[0].Entity.ID)
	assert.Equal(t, "MNXR3", matches[1].Entity.ID)
	assert.Greater(t, matches[0].Score, 0.6)
	assert.InDelta(t, 11.0/12.0, matches[0].Score, 1e-9)
	for _, m := range matches {
		assert.NotEqual(t, "MNXR2", m.Entity.ID)
	}

	matches, err = e.ResolveByName(context.Background(), "atp synthse", true, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "MNXR1", matches[0].Entity.ID)
}

func TestEngine_ResolveByName_FuzzyRanksBySimilarity(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)

	matches, err := e.ResolveByName(context.Background(), "hexokinase", true, 0)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "MNXR2", matches[0].Entity.ID)
	assert.Equal(t, 1.0, matches[0].Score)
	for i := 1; i < len(matches); i++ {
		assert.LessOrEqual(t, matches[i].Score, matches[i-1].Score)
	}
}

func TestEngine_ResolveByName_Invalid(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)
	_, err := e.ResolveByName(context.Background(), " -- ", true, 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidParam))
}

func TestEngine_CancelledContext(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.ResolveByID(ctx, "MNXR1", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_RecordsMetrics(t *testing.T) {
	collector, err := prom.NewMetricsCollector(prom.CollectorConfig{Namespace: "mnx"}, nil)
	require.NoError(t, err)
	e := newTestEngine(t, prom.NewResolverMetrics(collector))

	_, _ = e.ResolveByID(context.Background(), "MNXR1", "")
	_, _ = e.ResolveByID(context.Background(), "nope", "")
	_, _ = e.ResolveByName(context.Background(), "atp synthse", true, 0)

	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	out := w.Body.String()
	assert.Contains(t, out, `mnx_queries_total{operation="resolve_by_id",outcome="success"} 1`)
	assert.Contains(t, out, `mnx_queries_total{operation="resolve_by_id",outcome="not_found"} 1`)
	assert.Contains(t, out, `mnx_query_results_count{operation="resolve_by_name"} 1`)
}

func TestHolder_SwapDuringReads(t *testing.T) {
	g1, _ := testGraph(t)
	g2, _, err := xref.Build([]*xref.Entity{{ID: "MNXR1", Kind: xref.KindReaction, DisplayName: "renamed"}}, nil)
	require.NoError(t, err)

	h := NewHolder()
	h.Swap(NewSnapshot(g1, "v1"))
	e := NewEngine(h, config.QueryConfig{}, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				ent, err := e.ResolveByID(context.Background(), "MNXR1", "")
				if assert.NoError(t, err) {
					assert.Contains(t, []string{"ATP synthase", "renamed"}, ent.DisplayName)
				}
			}
		}()
	}
	for i := 0; i < 50; i++ {
		v := fmt.Sprintf("v%d", i+2)
		if i%2 == 0 {
			h.Swap(NewSnapshot(g2, v))
		} else {
			h.Swap(NewSnapshot(g1, v))
		}
	}
	wg.Wait()
	assert.Equal(t, "v51", e.Version())
}

func TestHolder_LoadFrom(t *testing.T) {
	g, report := testGraph(t)
	store := snapshot.NewStore(snapshot.NewMemoryBackend(), logging.NewNopLogger())
	version, err := store.Save(context.Background(), g, report)
	require.NoError(t, err)

	h := NewHolder()
	_, err = h.LoadFrom(context.Background(), store, "missing")
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Nil(t, h.Current())

	s, err := h.LoadFrom(context.Background(), store, snapshot.Latest)
	require.NoError(t, err)
	assert.Equal(t, version, s.Version)
	assert.Same(t, s, h.Current())

	e := NewEngine(h, config.QueryConfig{}, nil, nil)
	got, err := e.ResolveByID(context.Background(), "ATPS4rpp", "bigg")
	require.NoError(t, err)
	assert.Equal(t, "MNXR1", got.ID)
	assert.Equal(t, "ATP synthase", got.DisplayName)
}

//Personal.AI order the ending
