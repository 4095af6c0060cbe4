package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultSourceBackend     = "filesystem"
	DefaultSourceDir         = "./data"
	DefaultSourceTimeout     = 5 * time.Minute
	DefaultSourceParallelism = 4

	DefaultChemPropFile = "chem_prop.tsv"
	DefaultChemXrefFile = "chem_xref.tsv"
	DefaultReacPropFile = "reac_prop.tsv"
	DefaultReacXrefFile = "reac_xref.tsv"
	DefaultCompPropFile = "comp_prop.tsv"
	DefaultCompXrefFile = "comp_xref.tsv"

	DefaultClusterThreshold = 0.85
	DefaultFuzzyThreshold   = 0.6
	DefaultQueryLimit       = 50
	DefaultQueryMaxLimit    = 1000

	DefaultSnapshotBackend = "filesystem"
	DefaultSnapshotDir     = "./snapshots"

	DefaultBuildTarget      = "metanetx"
	DefaultLockBackend      = "local"
	DefaultLockMode         = "fail"
	DefaultLockTTL          = 30 * time.Minute
	DefaultLockRetryDelay   = 500 * time.Millisecond
	DefaultWatchQuietPeriod = 2 * time.Second
	DefaultWatchMaxWait     = 30 * time.Second

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "metanetx"

	DefaultKafkaTopic = "metanetx.snapshots"

	DefaultMetricsNamespace = "metanetx"
	DefaultMetricsJob       = "metanetx_build"
)

// DefaultNamespacePriority is the display-name preference order, earliest
// first.
var DefaultNamespacePriority = []string{
	"bigg.reaction",
	"kegg.reaction",
	"seed.reaction",
	"metacyc.reaction",
	"rhea",
	"ec-code",
}

// DefaultNameTables are the per-namespace reaction name files looked up in
// the source location.
var DefaultNameTables = []NameTableConfig{
	{Namespace: "bigg.reaction", File: "bigg_reaction_names.tsv"},
	{Namespace: "kegg.reaction", File: "kegg_reaction_names.tsv"},
	{Namespace: "seed.reaction", File: "seed_reaction_names.tsv"},
	{Namespace: "ec-code", File: "ec_names.tsv"},
}

// defaultValues returns every defaulted key in viper's dotted form.  Loading
// registers them with viper so that METANETX_* variables override keys that
// are absent from the file.
func defaultValues() map[string]interface{} {
	return map[string]interface{}{
		"log.level":        DefaultLogLevel,
		"log.format":       DefaultLogFormat,
		"log.output_paths": []string{"stdout"},

		"source.backend":         DefaultSourceBackend,
		"source.dir":             DefaultSourceDir,
		"source.timeout":         DefaultSourceTimeout,
		"source.parallelism":     DefaultSourceParallelism,
		"source.files.chem_prop": DefaultChemPropFile,
		"source.files.chem_xref": DefaultChemXrefFile,
		"source.files.reac_prop": DefaultReacPropFile,
		"source.files.reac_xref": DefaultReacXrefFile,
		"source.files.comp_prop": DefaultCompPropFile,
		"source.files.comp_xref": DefaultCompXrefFile,

		"naming.cluster_threshold":  DefaultClusterThreshold,
		"naming.namespace_priority": DefaultNamespacePriority,
		"naming.ec_label_fallback":  true,

		"query.fuzzy_threshold": DefaultFuzzyThreshold,
		"query.default_limit":   DefaultQueryLimit,
		"query.max_limit":       DefaultQueryMaxLimit,

		"snapshot.backend": DefaultSnapshotBackend,
		"snapshot.dir":     DefaultSnapshotDir,

		"build.target":             DefaultBuildTarget,
		"build.lock_backend":       DefaultLockBackend,
		"build.lock_mode":          DefaultLockMode,
		"build.lock_ttl":           DefaultLockTTL,
		"build.lock_retry_delay":   DefaultLockRetryDelay,
		"build.watch_quiet_period": DefaultWatchQuietPeriod,
		"build.watch_max_wait":     DefaultWatchMaxWait,

		"redis.addr":       DefaultRedisAddr,
		"redis.key_prefix": DefaultRedisKeyPrefix,

		"kafka.topic": DefaultKafkaTopic,

		"metrics.namespace": DefaultMetricsNamespace,
		"metrics.job":       DefaultMetricsJob,
	}
}

// ApplyDefaults fills zero-value fields in cfg.  Explicitly set values win.
// It must run after unmarshalling and before Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if len(cfg.Log.OutputPaths) == 0 {
		cfg.Log.OutputPaths = []string{"stdout"}
	}

	// ── Source ────────────────────────────────────────────────────────────────
	if cfg.Source.Backend == "" {
		cfg.Source.Backend = DefaultSourceBackend
	}
	if cfg.Source.Backend == "filesystem" && cfg.Source.Dir == "" {
		cfg.Source.Dir = DefaultSourceDir
	}
	if cfg.Source.Timeout == 0 {
		cfg.Source.Timeout = DefaultSourceTimeout
	}
	if cfg.Source.Parallelism == 0 {
		cfg.Source.Parallelism = DefaultSourceParallelism
	}
	files := &cfg.Source.Files
	if files.ChemProp == "" {
		files.ChemProp = DefaultChemPropFile
	}
	if files.ChemXref == "" {
		files.ChemXref = DefaultChemXrefFile
	}
	if files.ReacProp == "" {
		files.ReacProp = DefaultReacPropFile
	}
	if files.ReacXref == "" {
		files.ReacXref = DefaultReacXrefFile
	}
	// Compartment files are optional; an explicit empty name disables them.
	// The same holds for name tables: only a nil list is defaulted.
	if cfg.Source.NameTables == nil {
		cfg.Source.NameTables = append([]NameTableConfig(nil), DefaultNameTables...)
	}

	// ── Naming ────────────────────────────────────────────────────────────────
	if cfg.Naming.ClusterThreshold == 0 {
		cfg.Naming.ClusterThreshold = DefaultClusterThreshold
	}
	if len(cfg.Naming.NamespacePriority) == 0 {
		cfg.Naming.NamespacePriority = append([]string(nil), DefaultNamespacePriority...)
	}

	// ── Query ─────────────────────────────────────────────────────────────────
	if cfg.Query.FuzzyThreshold == 0 {
		cfg.Query.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if cfg.Query.DefaultLimit == 0 {
		cfg.Query.DefaultLimit = DefaultQueryLimit
	}
	if cfg.Query.MaxLimit == 0 {
		cfg.Query.MaxLimit = DefaultQueryMaxLimit
	}

	// ── Snapshot ──────────────────────────────────────────────────────────────
	if cfg.Snapshot.Backend == "" {
		cfg.Snapshot.Backend = DefaultSnapshotBackend
	}
	if cfg.Snapshot.Backend == "filesystem" && cfg.Snapshot.Dir == "" {
		cfg.Snapshot.Dir = DefaultSnapshotDir
	}

	// ── Build ─────────────────────────────────────────────────────────────────
	if cfg.Build.Target == "" {
		cfg.Build.Target = DefaultBuildTarget
	}
	if cfg.Build.LockBackend == "" {
		cfg.Build.LockBackend = DefaultLockBackend
	}
	if cfg.Build.LockMode == "" {
		cfg.Build.LockMode = DefaultLockMode
	}
	if cfg.Build.LockTTL == 0 {
		cfg.Build.LockTTL = DefaultLockTTL
	}
	if cfg.Build.LockRetryDelay == 0 {
		cfg.Build.LockRetryDelay = DefaultLockRetryDelay
	}
	if cfg.Build.WatchQuietPeriod == 0 {
		cfg.Build.WatchQuietPeriod = DefaultWatchQuietPeriod
	}
	if cfg.Build.WatchMaxWait == 0 {
		cfg.Build.WatchMaxWait = DefaultWatchMaxWait
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Job == "" {
		cfg.Metrics.Job = DefaultMetricsJob
	}
}

//Personal.AI order the ending
