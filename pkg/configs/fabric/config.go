// Package fabric holds the configuration of the fabricd server.
package fabric

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Listen is the address fabricd serves on, like ":8800".
	Listen string `yaml:"listen"`

	// DBURI is the postgres connection string of the durable stores.
	DBURI string `yaml:"dburi"`

	Redis      RedisConfig      `yaml:"redis"`
	Staging    StagingConfig    `yaml:"staging"`
	Cards      CatalogConfig    `yaml:"registry_cards"`
	Signals    CatalogConfig    `yaml:"feedback_signals"`
	Auth       AuthConfig       `yaml:"auth"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Dispatcher DispatcherConfig `yaml:"dispatcher"`
	Sources    SourcesConfig    `yaml:"sources"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type StagingConfig struct {
	// Root is the directory of the tenant-scoped staging area.
	Root string `yaml:"root"`

	// QuotaBytes bounds one tenant's staged data. Zero means no quota.
	QuotaBytes int64 `yaml:"quota_bytes"`
}

type CatalogConfig struct {
	Dir string `yaml:"dir"`
}

type AuthConfig struct {
	// JWTKey is the HMAC key bearer tokens are signed with.
	JWTKey string `yaml:"jwt_key"`
}

type RateLimitConfig struct {
	ReadsPerMinute   int `yaml:"reads_per_minute"`
	WritesPerMinute  int `yaml:"writes_per_minute"`
	ComputePerMinute int `yaml:"compute_per_minute"`
}

type DispatcherConfig struct {
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	TimeoutSeconds      int `yaml:"timeout_seconds"`
}

func (d DispatcherConfig) PollInterval() time.Duration {
	if d.PollIntervalSeconds <= 0 {
		return time.Second
	}
	return time.Duration(d.PollIntervalSeconds) * time.Second
}

func (d DispatcherConfig) Timeout() time.Duration {
	if d.TimeoutSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// SourcesConfig wires the external-source adapters.
type SourcesConfig struct {
	// CredentialsPath is a YAML file mapping credential refs to
	// credential key/value pairs.
	CredentialsPath string `yaml:"credentials_path"`

	// StorageRoot is the directory dataset storage locations resolve
	// under.
	StorageRoot string `yaml:"storage_root"`

	// Environments are the execution environments locality signals are
	// computed for.
	Environments []string `yaml:"environments"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config := &Config{}
	if err := yaml.Unmarshal(raw, config); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	if config.Listen == "" {
		config.Listen = ":8800"
	}
	if config.DBURI == "" {
		return nil, fmt.Errorf("config %s: dburi is required", path)
	}
	if config.Staging.Root == "" {
		return nil, fmt.Errorf("config %s: staging.root is required", path)
	}
	if config.Cards.Dir == "" {
		return nil, fmt.Errorf("config %s: registry_cards.dir is required", path)
	}
	if config.Signals.Dir == "" {
		return nil, fmt.Errorf("config %s: feedback_signals.dir is required", path)
	}
	if config.Auth.JWTKey == "" {
		return nil, fmt.Errorf("config %s: auth.jwt_key is required", path)
	}
	if config.RateLimit.ReadsPerMinute == 0 {
		config.RateLimit.ReadsPerMinute = 1000
	}
	if config.RateLimit.WritesPerMinute == 0 {
		config.RateLimit.WritesPerMinute = 100
	}
	if config.RateLimit.ComputePerMinute == 0 {
		config.RateLimit.ComputePerMinute = 50
	}
	return config, nil
}
