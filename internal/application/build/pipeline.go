// Package build runs the snapshot pipeline: fetch and parse the MetaNetX
// files, assemble the equivalence graph, resolve reaction names, save a new
// snapshot and publish it.
package build

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/MetaNetX-Resolver/internal/application/query"
	"github.com/turtacn/MetaNetX-Resolver/internal/config"
	"github.com/turtacn/MetaNetX-Resolver/internal/domain/naming"
	"github.com/turtacn/MetaNetX-Resolver/internal/domain/snapshot"
	"github.com/turtacn/MetaNetX-Resolver/internal/domain/source"
	"github.com/turtacn/MetaNetX-Resolver/internal/domain/xref"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

// maxLoggedSkips bounds the per-build skipped-line log entries.
const maxLoggedSkips = 20

// Publisher announces a saved snapshot.
type Publisher interface {
	PublishSnapshot(ctx context.Context, m *snapshot.Manifest) error
}

// Config selects the files of one build.
type Config struct {
	Target      string
	Files       config.SourceFiles
	NameTables  []config.NameTableConfig
	Parallelism int
}

// ConfigFrom extracts the pipeline settings from the application config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Target:      cfg.Build.Target,
		Files:       cfg.Source.Files,
		NameTables:  cfg.Source.NameTables,
		Parallelism: cfg.Source.Parallelism,
	}
}

// Result is the outcome of a successful build.
type Result struct {
	Version string
	Graph   *xref.Graph
	Report  *xref.BuildReport
}

type Option func(*Pipeline)

// WithHolder swaps each new snapshot into h.
func WithHolder(h *query.Holder) Option { return func(p *Pipeline) { p.holder = h } }

func WithPublisher(pub Publisher) Option { return func(p *Pipeline) { p.publisher = pub } }

func WithMetrics(m *prom.ResolverMetrics) Option { return func(p *Pipeline) { p.metrics = m } }

// WithPushgateway pushes the collector after every build attempt.
func WithPushgateway(c prom.MetricsCollector, url, job string) Option {
	return func(p *Pipeline) {
		p.collector, p.pushURL, p.pushJob = c, url, job
	}
}

func WithClock(now func() time.Time) Option { return func(p *Pipeline) { p.now = now } }

// Pipeline builds snapshots.  Run may be called repeatedly; concurrent runs
// for the same target are serialized by the Lock.
type Pipeline struct {
	cfg      Config
	fetcher  source.Fetcher
	store    *snapshot.Store
	resolver *naming.Resolver
	lock     Lock
	logger   logging.Logger

	holder    *query.Holder
	publisher Publisher
	metrics   *prom.ResolverMetrics
	collector prom.MetricsCollector
	pushURL   string
	pushJob   string
	now       func() time.Time
}

func NewPipeline(cfg Config, fetcher source.Fetcher, store *snapshot.Store, resolver *naming.Resolver, lock Lock, logger logging.Logger, opts ...Option) *Pipeline {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = config.DefaultSourceParallelism
	}
	if cfg.Target == "" {
		cfg.Target = config.DefaultBuildTarget
	}
	p := &Pipeline{
		cfg:      cfg,
		fetcher:  fetcher,
		store:    store,
		resolver: resolver,
		lock:     lock,
		logger:   logging.OrDefault(logger).Named("build"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// sourceFile is one graph input.  Inputs are fed to the builder in slice
// order, which fixes first-seen-wins for cross-references.
type sourceFile struct {
	name     string
	kind     source.Kind
	optional bool
}

func (p *Pipeline) sourceFiles() []sourceFile {
	f := p.cfg.Files
	files := []sourceFile{
		{name: f.CompProp, kind: source.KindCompProp, optional: true},
		{name: f.ChemProp, kind: source.KindChemProp},
		{name: f.ReacProp, kind: source.KindReacProp},
		{name: f.CompXref, kind: source.KindCompXref, optional: true},
		{name: f.ChemXref, kind: source.KindChemXref},
		{name: f.ReacXref, kind: source.KindReacXref},
	}
	out := files[:0]
	for _, sf := range files {
		if sf.name == "" && sf.optional {
			continue
		}
		out = append(out, sf)
	}
	return out
}

// Run executes one build.  Structural failures (an unavailable source, a
// canonical id defined twice with different content, a failed save) abort
// the build and leave the current snapshot in place.
func (p *Pipeline) Run(ctx context.Context) (res *Result, err error) {
	release, err := p.lock.Acquire(ctx, p.cfg.Target)
	if err != nil {
		return nil, err
	}
	defer release()

	started := p.now()
	log := p.logger.With(logging.String("target", p.cfg.Target))
	log.Info("Build started")

	defer func() {
		elapsed := p.now().Sub(started)
		if err != nil {
			log.Error("Build failed", logging.Duration("elapsed", elapsed), logging.Err(err))
			p.metrics.RecordBuild(nil, elapsed, err)
		} else {
			p.metrics.RecordBuild(res.Report, elapsed, nil)
		}
		p.push(log)
	}()

	batches, tables, stats, err := p.parse(ctx)
	if err != nil {
		return nil, err
	}

	builder := xref.NewBuilder()
	for _, b := range batches {
		for _, e := range b.entities {
			if err := builder.AddEntity(e); err != nil {
				return nil, errors.Wrap(err, errors.CodeUnknown, "build graph")
			}
		}
	}
	for _, b := range batches {
		for _, l := range b.links {
			builder.AddCrossReference(l.EntityID, l.XRef)
		}
	}
	graph, report, err := builder.Finalize()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBuildFailed, "finalize graph")
	}
	report.Sources = stats
	for _, c := range report.Conflicts {
		log.Debug("Conflicting cross-reference",
			logging.Code(errors.ErrCodeConflictingCrossReference),
			logging.String("namespace", c.Namespace),
			logging.String("foreign_id", c.ForeignID),
			logging.String("kept", c.KeptID),
			logging.String("rejected", c.RejectedID))
	}
	if report.Dangling > 0 {
		log.Warn("Dangling cross-references pruned",
			logging.Code(errors.ErrCodeDanglingReference),
			logging.Int("count", report.Dangling))
	}

	graph, names, err := p.resolver.Resolve(ctx, graph, tables)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBuildFailed, "resolve names")
	}
	report.Names = names
	report.StartedAt = started.UTC()
	report.FinishedAt = p.now().UTC()

	version, err := p.store.Save(ctx, graph, report)
	if err != nil {
		return nil, err
	}
	report.Version = version

	if p.holder != nil {
		p.holder.Swap(query.NewSnapshot(graph, version))
	}
	p.announce(ctx, log, version)

	log.Info("Build finished",
		logging.SnapshotVersion(version),
		logging.Int("compounds", report.Compounds),
		logging.Int("reactions", report.Reactions),
		logging.Int("cross_references", report.CrossReferences),
		logging.Int("conflicts", len(report.Conflicts)),
		logging.Int("dangling", report.Dangling),
		logging.Int("skipped", report.Skipped()),
		logging.Duration("elapsed", report.Duration()))

	return &Result{Version: version, Graph: graph, Report: report}, nil
}

// parse fetches and parses every input concurrently.  Results are returned
// in sourceFiles order regardless of completion order.
func (p *Pipeline) parse(ctx context.Context) ([]*batch, []*naming.NameTable, []xref.SourceStats, error) {
	files := p.sourceFiles()
	batches := make([]*batch, len(files))
	stats := make([]xref.SourceStats, len(files)+len(p.cfg.NameTables))
	tables := make([]*naming.NameTable, len(p.cfg.NameTables))

	var skipMu sync.Mutex
	skipped := 0
	onSkip := func(file string) source.Option {
		return source.WithSkipFunc(func(line int, reason string) {
			skipMu.Lock()
			skipped++
			n := skipped
			skipMu.Unlock()
			// Only the first skips are logged; the rest are counted.
			if n <= maxLoggedSkips {
				p.logger.Debug("Skipped line",
					logging.Code(errors.ErrCodeParseSkip),
					logging.Source(file),
					logging.Int("line", line),
					logging.String("reason", reason))
			}
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Parallelism)

	for i, sf := range files {
		i, sf := i, sf
		g.Go(func() error {
			b := &batch{}
			s, err := source.FromFetcher(p.fetcher, sf.name, sf.kind).Each(gctx, func(rec source.Record) error {
				b.collect(rec)
				return nil
			}, onSkip(sf.name))
			if err != nil {
				return err
			}
			batches[i] = b
			stats[i] = sourceStats(sf.name, sf.kind, s)
			return nil
		})
	}
	for i, nt := range p.cfg.NameTables {
		i, nt := i, nt
		g.Go(func() error {
			t, s, err := naming.LoadNameTable(gctx, nt.Namespace, source.FromFetcher(p.fetcher, nt.File, source.KindNames), onSkip(nt.File))
			if err != nil {
				return err
			}
			tables[i] = t
			stats[len(files)+i] = sourceStats(nt.File, source.KindNames, s)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return batches, tables, stats, nil
}

func sourceStats(name string, kind source.Kind, s source.Stats) xref.SourceStats {
	return xref.SourceStats{
		Name:    name,
		Kind:    kind.String(),
		Lines:   s.Lines,
		Records: s.Records,
		Skipped: s.Skipped,
		Ignored: s.Ignored,
	}
}

// announce records the snapshot size and publishes it.  Both are best
// effort: the snapshot is already current.
func (p *Pipeline) announce(ctx context.Context, log logging.Logger, version string) {
	if p.metrics == nil && p.publisher == nil {
		return
	}
	m, err := p.store.Manifest(ctx, version)
	if err != nil {
		log.Warn("Cannot read manifest of new snapshot", logging.SnapshotVersion(version), logging.Err(err))
		return
	}
	p.metrics.RecordSnapshot(m.Size)
	if p.publisher != nil {
		if err := p.publisher.PublishSnapshot(ctx, m); err != nil {
			log.Warn("Snapshot event not published", logging.SnapshotVersion(version), logging.Err(err))
		}
	}
}

func (p *Pipeline) push(log logging.Logger) {
	if p.collector == nil || p.pushURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := prom.Push(ctx, p.collector, p.pushURL, p.pushJob); err != nil {
		log.Warn("Metrics push failed", logging.Err(err))
	}
}

//Personal.AI order the ending
