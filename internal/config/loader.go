// Package config provides configuration loading, defaults, and validation for
// the MetaNetX resolver.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "METANETX"

// newViper builds a Viper instance with YAML file type, the METANETX_ env
// prefix and a "." → "_" key replacer, so "source.dir" resolves to
// METANETX_SOURCE_DIR.  Every defaulted key is registered so that
// AutomaticEnv sees it during Unmarshal.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, val := range defaultValues() {
		v.SetDefault(key, val)
	}
	return v
}

// Load reads the YAML file at configPath, merges METANETX_* environment
// overrides, applies defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from METANETX_* environment variables and
// defaults only.
//
//	METANETX_<SECTION>_<FIELD>   e.g.  METANETX_SOURCE_DIR, METANETX_BUILD_LOCK_MODE
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// LoadOrEnv calls Load when configPath is set and LoadFromEnv otherwise.
func LoadOrEnv(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

//Personal.AI order the ending
