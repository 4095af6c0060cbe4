// Package config defines the configuration structures of the MetaNetX
// resolver.  No I/O lives here, only plain data types and validation.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format      string   `mapstructure:"format" validate:"oneof=json console"`
	OutputPaths []string `mapstructure:"output_paths" validate:"min=1"`
}

// SourceFiles names the raw MetaNetX files inside the source location.
type SourceFiles struct {
	ChemProp string `mapstructure:"chem_prop" validate:"required"`
	ChemXref string `mapstructure:"chem_xref" validate:"required"`
	ReacProp string `mapstructure:"reac_prop" validate:"required"`
	ReacXref string `mapstructure:"reac_xref" validate:"required"`
	CompProp string `mapstructure:"comp_prop"`
	CompXref string `mapstructure:"comp_xref"`
}

// NameTableConfig binds a MIRIAM namespace (e.g. bigg.reaction) to the file
// holding "<foreign id>\t<name>" rows for that namespace.
type NameTableConfig struct {
	Namespace string `mapstructure:"namespace" validate:"required"`
	File      string `mapstructure:"file" validate:"required"`
}

// SourceConfig describes where raw files are fetched from.
type SourceConfig struct {
	// Backend is one of filesystem, minio, http.
	Backend string `mapstructure:"backend" validate:"oneof=filesystem minio http"`

	Dir     string        `mapstructure:"dir"`
	Bucket  string        `mapstructure:"bucket"`
	Prefix  string        `mapstructure:"prefix"`
	BaseURL string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `mapstructure:"timeout"`

	Files SourceFiles `mapstructure:"files"`

	// NameTables lists the per-namespace reaction name files.
	NameTables []NameTableConfig `mapstructure:"name_tables" validate:"dive"`

	// Parallelism bounds how many sources are fetched and parsed at once.
	Parallelism int `mapstructure:"parallelism" validate:"gte=1"`
}

// NamingConfig tunes the reaction name resolver.
type NamingConfig struct {
	ClusterThreshold  float64  `mapstructure:"cluster_threshold" validate:"gt=0,lte=1"`
	NamespacePriority []string `mapstructure:"namespace_priority" validate:"dive,required"`
	ECLabelFallback   bool     `mapstructure:"ec_label_fallback"`
}

// QueryConfig tunes the read path.
type QueryConfig struct {
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold" validate:"gte=0,lt=1"`
	DefaultLimit   int     `mapstructure:"default_limit" validate:"gte=1"`
	MaxLimit       int     `mapstructure:"max_limit" validate:"gtefield=DefaultLimit"`
}

// SnapshotConfig selects where snapshots are persisted.
type SnapshotConfig struct {
	// Backend is one of filesystem, minio.
	Backend string `mapstructure:"backend" validate:"oneof=filesystem minio"`
	Dir     string `mapstructure:"dir"`
	Bucket  string `mapstructure:"bucket"`
	Prefix  string `mapstructure:"prefix"`
}

// BuildConfig controls build serialization and the watch loop.
type BuildConfig struct {
	// Target names the snapshot line a build publishes to; it keys the lock.
	Target string `mapstructure:"target" validate:"required"`

	// LockBackend is local (in-process) or redis.
	LockBackend string `mapstructure:"lock_backend" validate:"oneof=local redis"`

	// LockMode is fail (return BuildInProgress) or wait (block until free).
	LockMode       string        `mapstructure:"lock_mode" validate:"oneof=fail wait"`
	LockTTL        time.Duration `mapstructure:"lock_ttl" validate:"gt=0"`
	LockRetryDelay time.Duration `mapstructure:"lock_retry_delay" validate:"gt=0"`

	// WatchQuietPeriod is how long the source directory must be idle before a
	// watch-triggered rebuild starts.
	WatchQuietPeriod time.Duration `mapstructure:"watch_quiet_period"`
	WatchMaxWait     time.Duration `mapstructure:"watch_max_wait"`
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// RedisConfig holds Redis connection parameters for the distributed build lock.
type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db" validate:"gte=0"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds the snapshot event producer parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// MetricsConfig holds Prometheus settings.  Builds are batch jobs, so their
// metrics are pushed to a Pushgateway when one is configured.
type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Namespace      string `mapstructure:"namespace"`
	PushgatewayURL string `mapstructure:"pushgateway_url" validate:"omitempty,url"`
	Job            string `mapstructure:"job"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Source   SourceConfig   `mapstructure:"source"`
	Naming   NamingConfig   `mapstructure:"naming"`
	Query    QueryConfig    `mapstructure:"query"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Build    BuildConfig    `mapstructure:"build"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

var validate = newValidator()

// newValidator reports fields by their mapstructure key so that messages name
// the YAML path an operator actually edits.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks struct tags first, then the cross-section rules that tags
// cannot express.  It returns the first problem found.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config: %s fails %q (value %v)", fieldPath(fe.Namespace()), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config: %w", err)
	}

	switch c.Source.Backend {
	case "filesystem":
		if c.Source.Dir == "" {
			return fmt.Errorf("config: source.dir is required for the filesystem backend")
		}
	case "minio":
		if c.Source.Bucket == "" {
			return fmt.Errorf("config: source.bucket is required for the minio backend")
		}
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required when source.backend is minio")
		}
	case "http":
		if c.Source.BaseURL == "" {
			return fmt.Errorf("config: source.base_url is required for the http backend")
		}
	}

	switch c.Snapshot.Backend {
	case "filesystem":
		if c.Snapshot.Dir == "" {
			return fmt.Errorf("config: snapshot.dir is required for the filesystem backend")
		}
	case "minio":
		if c.Snapshot.Bucket == "" {
			return fmt.Errorf("config: snapshot.bucket is required for the minio backend")
		}
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required when snapshot.backend is minio")
		}
	}

	if c.Build.LockBackend == "redis" && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when build.lock_backend is redis")
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("config: kafka.topic is required when kafka is enabled")
		}
	}

	seen := make(map[string]bool, len(c.Naming.NamespacePriority))
	for _, ns := range c.Naming.NamespacePriority {
		key := strings.ToLower(ns)
		if seen[key] {
			return fmt.Errorf("config: naming.namespace_priority lists %q twice", ns)
		}
		seen[key] = true
	}

	return nil
}

// fieldPath turns "Config.source.parallelism" into "source.parallelism".
func fieldPath(ns string) string {
	return strings.TrimPrefix(ns, "Config.")
}

//Personal.AI order the ending
