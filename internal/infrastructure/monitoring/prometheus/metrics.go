package prometheus

import (
	"time"

	"github.com/turtacn/MetaNetX-Resolver/internal/domain/xref"
)

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeNotFound = "not_found"
)

// ResolverMetrics holds the build and query metrics.  A nil *ResolverMetrics
// records nothing.
type ResolverMetrics struct {
	BuildsTotal        CounterVec
	BuildDuration      HistogramVec
	LastBuildTimestamp GaugeVec

	SourceLines    GaugeVec
	GraphEntities  GaugeVec
	GraphXRefs     GaugeVec
	BuildAnomalies GaugeVec
	NameResolution GaugeVec

	SnapshotBytes GaugeVec

	QueriesTotal  CounterVec
	QueryDuration HistogramVec
	QueryResults  HistogramVec
}

var (
	DefaultBuildDurationBuckets = []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 2400}
	DefaultQueryDurationBuckets = []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, 1}
	DefaultResultCountBuckets   = []float64{0, 1, 2, 5, 10, 25, 50, 100, 500}
)

// NewResolverMetrics registers all metrics on collector.
func NewResolverMetrics(collector MetricsCollector) *ResolverMetrics {
	m := &ResolverMetrics{}

	m.BuildsTotal = collector.RegisterCounter("builds_total", "Completed build attempts", "outcome")
	m.BuildDuration = collector.RegisterHistogram("build_duration_seconds", "Build duration", DefaultBuildDurationBuckets, "outcome")
	m.LastBuildTimestamp = collector.RegisterGauge("last_build_timestamp_seconds", "Unix time of the last successful build")

	m.SourceLines = collector.RegisterGauge("source_lines", "Lines read per source file in the last build", "source", "result")
	m.GraphEntities = collector.RegisterGauge("graph_entities", "Canonical entities in the last build", "kind")
	m.GraphXRefs = collector.RegisterGauge("graph_cross_references", "Cross-reference links in the last build")
	m.BuildAnomalies = collector.RegisterGauge("build_anomalies", "Reported anomalies in the last build", "type")
	m.NameResolution = collector.RegisterGauge("name_resolution_reactions", "Reactions per name resolution outcome", "outcome")

	m.SnapshotBytes = collector.RegisterGauge("snapshot_bytes", "Compressed size of the last saved snapshot")

	m.QueriesTotal = collector.RegisterCounter("queries_total", "Queries served", "operation", "outcome")
	m.QueryDuration = collector.RegisterHistogram("query_duration_seconds", "Query latency", DefaultQueryDurationBuckets, "operation")
	m.QueryResults = collector.RegisterHistogram("query_results", "Matches returned per query", DefaultResultCountBuckets, "operation")

	return m
}

// RecordBuild records the outcome of one build.  report may be nil on failure.
func (m *ResolverMetrics) RecordBuild(report *xref.BuildReport, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.BuildsTotal.WithLabelValues(outcome).Inc()
	m.BuildDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	if err != nil || report == nil {
		return
	}

	m.LastBuildTimestamp.WithLabelValues().Set(float64(report.FinishedAt.Unix()))
	for _, s := range report.Sources {
		m.SourceLines.WithLabelValues(s.Name, "records").Set(float64(s.Records))
		m.SourceLines.WithLabelValues(s.Name, "skipped").Set(float64(s.Skipped))
		m.SourceLines.WithLabelValues(s.Name, "ignored").Set(float64(s.Ignored))
	}
	m.GraphEntities.WithLabelValues(string(xref.KindCompound)).Set(float64(report.Compounds))
	m.GraphEntities.WithLabelValues(string(xref.KindReaction)).Set(float64(report.Reactions))
	m.GraphEntities.WithLabelValues(string(xref.KindCompartment)).Set(float64(report.Compartments))
	m.GraphXRefs.WithLabelValues().Set(float64(report.CrossReferences))

	m.BuildAnomalies.WithLabelValues("duplicate").Set(float64(report.DuplicatesMerged))
	m.BuildAnomalies.WithLabelValues("conflict").Set(float64(len(report.Conflicts)))
	m.BuildAnomalies.WithLabelValues("dangling").Set(float64(report.Dangling))
	m.BuildAnomalies.WithLabelValues("unparseable_equation").Set(float64(report.UnparseableEquations))
	m.BuildAnomalies.WithLabelValues("malformed_line").Set(float64(report.Skipped()))

	m.NameResolution.WithLabelValues("absent").Set(float64(report.Names.Absent))
	m.NameResolution.WithLabelValues("single").Set(float64(report.Names.Single))
	m.NameResolution.WithLabelValues("clustered").Set(float64(report.Names.Clustered))
}

func (m *ResolverMetrics) RecordSnapshot(bytes int64) {
	if m == nil {
		return
	}
	m.SnapshotBytes.WithLabelValues().Set(float64(bytes))
}

// RecordQuery records one query.  results < 0 skips the result histogram.
func (m *ResolverMetrics) RecordQuery(operation, outcome string, duration time.Duration, results int) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(operation, outcome).Inc()
	m.QueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if results >= 0 {
		m.QueryResults.WithLabelValues(operation).Observe(float64(results))
	}
}

//Personal.AI order the ending
