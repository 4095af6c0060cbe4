package build

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/MetaNetX-Resolver/internal/config"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

// Watcher reruns a build when the source directory changes.  Bursts of
// events are coalesced: a run starts once the directory has been quiet for
// the quiet period, or maxWait after the first event, whichever is first.
type Watcher struct {
	fs      *fsnotify.Watcher
	dir     string
	quiet   time.Duration
	maxWait time.Duration
	logger  logging.Logger
}

// NewWatcher starts watching dir.  Events that arrive before Run are kept.
func NewWatcher(dir string, quiet, maxWait time.Duration, logger logging.Logger) (*Watcher, error) {
	if quiet <= 0 {
		quiet = config.DefaultWatchQuietPeriod
	}
	if maxWait < quiet {
		maxWait = quiet
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "create file watcher")
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "watch source directory").WithDetail(dir)
	}
	return &Watcher{
		fs:      fw,
		dir:     dir,
		quiet:   quiet,
		maxWait: maxWait,
		logger:  logging.OrDefault(logger).Named("watch"),
	}, nil
}

// relevant drops dot-files, which include in-progress temp files.
func relevant(ev fsnotify.Event) bool {
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove)
}

// Run calls fn after each coalesced burst until ctx is done.  fn runs on
// the watcher goroutine, so runs never overlap.  Errors from fn are logged.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	defer w.fs.Close()
	w.logger.Info("Watching source directory", logging.String("dir", w.dir),
		logging.Duration("quiet_period", w.quiet), logging.Duration("max_wait", w.maxWait))

	var (
		quietT, deadlineT *time.Timer
		quietC, deadlineC <-chan time.Time
		changed           []string
	)
	stop := func() {
		if quietT != nil {
			quietT.Stop()
		}
		if deadlineT != nil {
			deadlineT.Stop()
		}
		quietT, deadlineT, quietC, deadlineC = nil, nil, nil, nil
	}
	fire := func() {
		stop()
		w.logger.Info("Source change detected", logging.Strings("files", changed))
		changed = nil
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			if errors.IsCode(err, errors.ErrCodeBuildInProgress) {
				w.logger.Info("Build skipped, another build is running")
			} else {
				w.logger.Error("Watch-triggered build failed", logging.Err(err))
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			stop()
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			changed = appendUnique(changed, filepath.Base(ev.Name))
			if quietT != nil {
				quietT.Stop()
			}
			quietT = time.NewTimer(w.quiet)
			quietC = quietT.C
			if deadlineT == nil {
				deadlineT = time.NewTimer(w.maxWait)
				deadlineC = deadlineT.C
			}

		case <-quietC:
			fire()

		case <-deadlineC:
			fire()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", logging.Err(err))
		}
	}
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

//Personal.AI order the ending
