package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
log:
  level: debug
  format: console
source:
  backend: filesystem
  dir: /data/metanetx
  files:
    chem_prop: chem_prop.tsv.gz
  name_tables:
    - namespace: bigg.reaction
      file: bigg_names.tsv
naming:
  cluster_threshold: 0.9
  namespace_priority: [kegg.reaction, bigg.reaction]
query:
  default_limit: 25
snapshot:
  backend: filesystem
  dir: /var/lib/metanetx
build:
  lock_mode: wait
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/data/metanetx", cfg.Source.Dir)
	assert.Equal(t, "chem_prop.tsv.gz", cfg.Source.Files.ChemProp)
	assert.Equal(t, DefaultReacPropFile, cfg.Source.Files.ReacProp)
	assert.Equal(t, []NameTableConfig{{Namespace: "bigg.reaction", File: "bigg_names.tsv"}}, cfg.Source.NameTables)
	assert.Equal(t, 0.9, cfg.Naming.ClusterThreshold)
	assert.Equal(t, []string{"kegg.reaction", "bigg.reaction"}, cfg.Naming.NamespacePriority)
	assert.Equal(t, 25, cfg.Query.DefaultLimit)
	assert.Equal(t, DefaultFuzzyThreshold, cfg.Query.FuzzyThreshold)
	assert.Equal(t, "wait", cfg.Build.LockMode)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "log: ["))
	assert.Error(t, err)
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "build:\n  lock_mode: steal\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("METANETX_QUERY_DEFAULT_LIMIT", "7")
	t.Setenv("METANETX_SOURCE_DIR", "/env/data")

	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Query.DefaultLimit)
	assert.Equal(t, "/env/data", cfg.Source.Dir)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("METANETX_BUILD_LOCK_BACKEND", "redis")
	t.Setenv("METANETX_REDIS_ADDR", "redis:6379")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Build.LockBackend)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, DefaultSnapshotDir, cfg.Snapshot.Dir)
}

func TestLoadOrEnv_EmptyPathUsesEnv(t *testing.T) {
	cfg, err := LoadOrEnv("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBuildTarget, cfg.Build.Target)
}

//Personal.AI order the ending
