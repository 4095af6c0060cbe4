package snapshot

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MetaNetX-Resolver/internal/domain/xref"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

func sampleGraph(t *testing.T, name string) (*xref.Graph, *xref.BuildReport) {
	t.Helper()
	g, report, err := xref.Build(
		[]*xref.Entity{
			{ID: "MNXR1", Kind: xref.KindReaction, Equation: "1 MNXM3@MNXD1 = 1 MNXM7@MNXD1", Name: name},
			{ID: "MNXM3", Kind: xref.KindCompound, Formula: "C10H12N5O13P3"},
			{ID: "MNXD1", Kind: xref.KindCompartment, Name: "cytoplasm"},
		},
		[]xref.CrossReference{
			{EntityID: "MNXR1", XRef: xref.XRef{Namespace: "bigg.reaction", ID: "ATPS4r"}},
			{EntityID: "MNXM3", XRef: xref.XRef{Namespace: "bigg.metabolite", ID: "atp"}},
		})
	require.NoError(t, err)
	return g, report
}

func stepClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

func newTestStore(b Backend) *Store {
	return NewStore(b, logging.NewNopLogger(), WithClock(stepClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))))
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := newTestStore(backend)

	g, report := sampleGraph(t, "first")
	version, err := store.Save(ctx, g, report)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(version, "20240301T120001Z-"), version)

	loaded, m, err := store.Load(ctx, Latest)
	require.NoError(t, err)
	assert.Equal(t, version, m.Version)
	assert.Equal(t, xref.GraphFormatVersion, m.Format)
	assert.Equal(t, Counts{Compounds: 1, Reactions: 1, Compartments: 1, CrossReferences: 2}, m.Counts)
	require.NotNil(t, m.Report)
	assert.Equal(t, version, m.Report.Version)

	want, _ := g.MarshalJSON()
	got, _ := loaded.MarshalJSON()
	assert.JSONEq(t, string(want), string(got))

	e, ok := loaded.Lookup(xref.XRef{Namespace: "bigg.reaction", ID: "atps4r"})
	require.True(t, ok)
	assert.Equal(t, "MNXR1", e.ID)

	byVersion, _, err := store.Load(ctx, version)
	require.NoError(t, err)
	assert.Equal(t, loaded.Len(), byVersion.Len())
}

func TestStore_ListAndCurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(NewMemoryBackend())

	_, err := store.Current(ctx)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSnapshotNotFound))
	versions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, versions)

	g, report := sampleGraph(t, "x")
	v1, err := store.Save(ctx, g, report)
	require.NoError(t, err)
	v2, err := store.Save(ctx, g, nil)
	require.NoError(t, err)

	versions, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{v1, v2}, versions)

	cur, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, v2, cur)

	m, err := store.Manifest(ctx, v1)
	require.NoError(t, err)
	assert.Equal(t, v1, m.Version)
}

// failingBackend fails every Put whose key matches failOn.
type failingBackend struct {
	*MemoryBackend
	failOn func(key string) bool
}

func (f *failingBackend) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	if f.failOn != nil && f.failOn(key) {
		return errors.New("disk full")
	}
	return f.MemoryBackend.Put(ctx, key, r, size)
}

func TestStore_FailedSaveKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()
	for _, stage := range []string{dataName, manifestName, currentKey} {
		stage := stage
		t.Run(stage, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			backend := &failingBackend{MemoryBackend: NewMemoryBackend()}
			store := newTestStore(backend)

			g1, r1 := sampleGraph(t, "old")
			v1, err := store.Save(ctx, g1, r1)
			require.NoError(t, err)

			backend.failOn = func(key string) bool { return strings.HasSuffix(key, stage) }
			g2, r2 := sampleGraph(t, "new")
			_, err = store.Save(ctx, g2, r2)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSnapshotWriteFailed))

			loaded, m, err := store.Load(ctx, Latest)
			require.NoError(t, err)
			assert.Equal(t, v1, m.Version)
			e, _ := loaded.Entity("MNXR1")
			assert.Equal(t, "old", e.Name)
		})
	}
}

func TestStore_LoadFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown version", func(t *testing.T) {
		_, _, err := newTestStore(NewMemoryBackend()).Load(ctx, "20200101T000000Z-deadbeef")
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSnapshotNotFound))
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("missing data", func(t *testing.T) {
		backend := NewMemoryBackend()
		store := newTestStore(backend)
		g, r := sampleGraph(t, "x")
		v, err := store.Save(ctx, g, r)
		require.NoError(t, err)
		backend.Delete(dataKey(v))
		_, _, err = store.Load(ctx, v)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSnapshotNotFound))
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		backend := NewMemoryBackend()
		store := newTestStore(backend)
		g, r := sampleGraph(t, "x")
		v, err := store.Save(ctx, g, r)
		require.NoError(t, err)
		backend.Overwrite(dataKey(v), []byte("not the graph"))
		_, _, err = store.Load(ctx, Latest)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSnapshotNotFound))
		assert.Contains(t, err.Error(), "checksum")
	})

	t.Run("empty pointer", func(t *testing.T) {
		backend := NewMemoryBackend()
		backend.Overwrite(currentKey, []byte("  \n"))
		_, err := newTestStore(backend).Current(ctx)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSnapshotNotFound))
	})
}

func TestStore_SaveNilGraph(t *testing.T) {
	t.Parallel()
	_, err := newTestStore(NewMemoryBackend()).Save(context.Background(), nil, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidParam))
}

func TestNewVersion_Sortable(t *testing.T) {
	t.Parallel()
	a := NewVersion(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	b := NewVersion(time.Date(2024, 1, 1, 0, 0, 1, 0, time.FixedZone("x", 3600)).Add(time.Hour))
	assert.Less(t, a, b)
	assert.Len(t, a, len("20240101T000000Z-")+8)
}

//Personal.AI order the ending
