package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/MetaNetX-Resolver/internal/config"
)

// validConfig returns a Config that passes Validate().
func validConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestConfig_Validate_Defaults(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_Failures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(c *config.Config)
		wantMsg string
	}{
		{"bad log level", func(c *config.Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad source backend", func(c *config.Config) { c.Source.Backend = "ftp" }, "source.backend"},
		{"filesystem without dir", func(c *config.Config) { c.Source.Dir = "" }, "source.dir"},
		{"minio source without bucket", func(c *config.Config) {
			c.Source.Backend = "minio"
			c.MinIO.Endpoint = "localhost:9000"
		}, "source.bucket"},
		{"minio snapshot without endpoint", func(c *config.Config) {
			c.Snapshot.Backend = "minio"
			c.Snapshot.Bucket = "snapshots"
		}, "minio.endpoint"},
		{"http source without url", func(c *config.Config) { c.Source.Backend = "http" }, "source.base_url"},
		{"cluster threshold above one", func(c *config.Config) { c.Naming.ClusterThreshold = 1.5 }, "naming.cluster_threshold"},
		{"fuzzy threshold of one", func(c *config.Config) { c.Query.FuzzyThreshold = 1 }, "query.fuzzy_threshold"},
		{"max limit below default", func(c *config.Config) { c.Query.MaxLimit = 10 }, "query.max_limit"},
		{"bad lock mode", func(c *config.Config) { c.Build.LockMode = "steal" }, "build.lock_mode"},
		{"redis lock without addr", func(c *config.Config) {
			c.Build.LockBackend = "redis"
			c.Redis.Addr = ""
		}, "redis.addr"},
		{"kafka enabled without brokers", func(c *config.Config) { c.Kafka.Enabled = true }, "kafka.brokers"},
		{"duplicate priority", func(c *config.Config) {
			c.Naming.NamespacePriority = []string{"bigg.reaction", "BIGG.reaction"}
		}, "namespace_priority"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

//Personal.AI order the ending
