package build

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MetaNetX-Resolver/internal/testutil"
	pkgerrors "github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

func TestRelevant(t *testing.T) {
	assert.True(t, relevant(fsnotify.Event{Name: "/data/reac_xref.tsv", Op: fsnotify.Write}))
	assert.True(t, relevant(fsnotify.Event{Name: "/data/reac_xref.tsv", Op: fsnotify.Rename}))
	assert.False(t, relevant(fsnotify.Event{Name: "/data/.reac_xref.tsv.part", Op: fsnotify.Write}))
	assert.False(t, relevant(fsnotify.Event{Name: "/data/reac_xref.tsv", Op: fsnotify.Chmod}))
}

func TestWatcher_CoalescesBurst(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, 50*time.Millisecond, time.Second, logging.NewNopLogger())
	require.NoError(t, err)

	var runs atomic.Int32
	ran := make(chan struct{}, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			runs.Add(1)
			ran <- struct{}{}
			return nil
		})
	}()

	for _, name := range []string{"chem_prop.tsv", "reac_prop.tsv", "reac_xref.tsv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0o644))
	}

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never triggered a build")
	}
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_MaxWaitBoundsDelay(t *testing.T) {
	dir := t.TempDir()
	logger := testutil.NewRecordingLogger()
	w, err := NewWatcher(dir, 200*time.Millisecond, 250*time.Millisecond, logger)
	require.NoError(t, err)

	ran := make(chan time.Time, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = w.Run(ctx, func(context.Context) error {
			ran <- time.Now()
			return pkgerrors.BuildInProgress("metanetx")
		})
	}()

	// Writes every 50ms keep the quiet timer from ever firing.
	start := time.Now()
	stop := time.After(600 * time.Millisecond)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	path := filepath.Join(dir, "reac_xref.tsv")
writes:
	for {
		select {
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte(time.Now().String()), 0o644))
		case <-stop:
			break writes
		}
	}

	select {
	case at := <-ran:
		assert.Less(t, at.Sub(start), 550*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("max wait never forced a build")
	}
	assert.Eventually(t, func() bool {
		return logger.HasMessage("info", "Build skipped, another build is running")
	}, time.Second, 10*time.Millisecond)
	assert.False(t, logger.HasMessage("error", "Watch-triggered build failed"))
}

func TestNewWatcher_MissingDirectory(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "absent"), time.Second, time.Second, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSourceUnavailable))
}

//Personal.AI order the ending
