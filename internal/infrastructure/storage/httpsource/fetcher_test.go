package httpsource

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MetaNetX-Resolver/internal/domain/snapshot"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/logging"
)

func newFetcher(t *testing.T, h http.Handler) (*Fetcher, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	f, err := NewFetcher(srv.URL+"/4.4", time.Second, logging.NewNopLogger(), WithRetries(2, time.Millisecond))
	require.NoError(t, err)
	return f, srv
}

func TestFetcher_OK(t *testing.T) {
	t.Parallel()
	f, _ := newFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/4.4/reac_xref.tsv", r.URL.Path)
		_, _ = io.WriteString(w, "bigg.reaction:X\tMNXR1\t\n")
	}))
	rc, err := f.Fetch(context.Background(), "reac_xref.tsv")
	require.NoError(t, err)
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "bigg.reaction:X\tMNXR1\t\n", string(b))
}

func TestFetcher_RetriesServerErrors(t *testing.T) {
	t.Parallel()
	var calls int32
	f, _ := newFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	rc, err := f.Fetch(context.Background(), "chem_prop.tsv")
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetcher_GivesUp(t *testing.T) {
	t.Parallel()
	var calls int32
	f, _ := newFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	_, err := f.Fetch(context.Background(), "chem_prop.tsv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetcher_NotFoundIsPermanent(t *testing.T) {
	t.Parallel()
	var calls int32
	f, _ := newFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, nil)
	}))
	_, err := f.Fetch(context.Background(), "missing.tsv")
	assert.ErrorIs(t, err, snapshot.ErrObjectNotFound)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNewFetcher_Validates(t *testing.T) {
	_, err := NewFetcher("not a url", 0, nil)
	assert.Error(t, err)

	f, err := NewFetcher("https://example.org/metanetx", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/metanetx/chem_xref.tsv.gz", f.URL("/chem_xref.tsv.gz"))
}

//Personal.AI order the ending
