package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Oracle struct {
	// Provider is gemini, ollama or none. With none every stage uses its fallback.
	Provider       string        `yaml:"provider"`
	Model          string        `yaml:"model"`
	APIKey         string        `yaml:"api_key"`
	Endpoint       string        `yaml:"endpoint"`
	Timeout        time.Duration `yaml:"timeout"`
	MinInterval    time.Duration `yaml:"min_interval"`
	BoundsTimeout  time.Duration `yaml:"bounds_timeout"`
	ClusterTimeout time.Duration `yaml:"cluster_timeout"`
}

type Pipeline struct {
	Workers        int      `yaml:"workers"`
	SkipValidation bool     `yaml:"skip_validation"`
	ExtraLocations []string `yaml:"extra_locations"`
	Embeddings     bool     `yaml:"embeddings"`
	NER            bool     `yaml:"ner"`
}

type Database struct {
	Enabled      bool `yaml:"enabled"`
	EmbeddingDim int  `yaml:"embedding_dim"`
	ForceReload  bool `yaml:"force_reload"`
}

type Metrics struct {
	ListenAddress string `yaml:"listen_address"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Config struct {
	Oracle      Oracle              `yaml:"oracle"`
	Pipeline    Pipeline            `yaml:"pipeline"`
	Database    Database            `yaml:"database"`
	Metrics     Metrics             `yaml:"metrics"`
	Log         Log                 `yaml:"log"`
	SeedQueries map[string][]string `yaml:"seed_queries"`
}

// SeedQueries are the built-in search queries per disaster type.
var SeedQueries = map[string][]string{
	"flood": {
		"India floods latest news",
		"India flood disaster updates",
		"India monsoon flooding",
		"India flood affected areas",
		"India flood relief operations",
	},
	"drought": {
		"India drought conditions",
		"India water scarcity news",
		"India drought affected regions",
		"India rainfall deficit",
		"India agricultural drought",
	},
	"cyclone": {
		"India cyclone latest update",
		"India tropical cyclone warning",
		"India Bay of Bengal cyclone",
		"India Arabian Sea cyclone",
		"India storm surge warning",
	},
	"earthquake": {
		"India earthquake latest news",
		"India seismic activity",
		"India earthquake tremors",
		"India earthquake affected areas",
		"India earthquake magnitude",
	},
	"landslide": {
		"India landslide news",
		"India hill slope failure",
		"India landslide disaster",
		"India monsoon landslides",
		"India mountain slope collapse",
	},
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads a YAML file, fills unset fields with defaults and applies
// EVENTER_* environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Oracle.Provider == "" {
		c.Oracle.Provider = "none"
	}
	if c.Oracle.Timeout == 0 {
		c.Oracle.Timeout = 60 * time.Second
	}
	if c.Oracle.MinInterval == 0 {
		c.Oracle.MinInterval = 2 * time.Second
	}
	if c.Oracle.BoundsTimeout == 0 {
		c.Oracle.BoundsTimeout = 30 * time.Second
	}
	if c.Oracle.ClusterTimeout == 0 {
		c.Oracle.ClusterTimeout = 60 * time.Second
	}
	if c.Pipeline.Workers == 0 {
		c.Pipeline.Workers = 1
	}
	if c.Database.EmbeddingDim == 0 {
		c.Database.EmbeddingDim = 384
	}
	if c.Metrics.ListenAddress == "" {
		c.Metrics.ListenAddress = ":9110"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if len(c.SeedQueries) == 0 {
		c.SeedQueries = make(map[string][]string, len(SeedQueries))
		for k, v := range SeedQueries {
			c.SeedQueries[k] = append([]string(nil), v...)
		}
	}
}

func (c *Config) applyEnv() error {
	setString(&c.Oracle.Provider, "EVENTER_ORACLE_PROVIDER")
	setString(&c.Oracle.Model, "EVENTER_ORACLE_MODEL")
	setString(&c.Oracle.APIKey, "EVENTER_ORACLE_API_KEY")
	setString(&c.Oracle.Endpoint, "EVENTER_ORACLE_ENDPOINT")
	setString(&c.Log.Level, "EVENTER_LOG_LEVEL")
	setString(&c.Metrics.ListenAddress, "EVENTER_METRICS_ADDRESS")
	if c.Oracle.APIKey == "" {
		setString(&c.Oracle.APIKey, "GEMINI_API_KEY")
	}

	if v := os.Getenv("EVENTER_ORACLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse EVENTER_ORACLE_TIMEOUT: %w", err)
		}
		c.Oracle.Timeout = d
	}
	if v := os.Getenv("EVENTER_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse EVENTER_WORKERS: %w", err)
		}
		c.Pipeline.Workers = n
	}
	if v := os.Getenv("EVENTER_DB_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse EVENTER_DB_ENABLED: %w", err)
		}
		c.Database.Enabled = b
	}
	return nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Oracle.Provider) {
	case "none", "ollama":
	case "gemini":
		if c.Oracle.APIKey == "" {
			return fmt.Errorf("oracle provider gemini needs an api key")
		}
	default:
		return fmt.Errorf("unknown oracle provider %q", c.Oracle.Provider)
	}
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline workers must be at least 1, got %d", c.Pipeline.Workers)
	}
	if c.Database.EmbeddingDim < 1 {
		return fmt.Errorf("embedding dimension must be positive, got %d", c.Database.EmbeddingDim)
	}
	return nil
}

// OracleEnabled reports whether a provider should be constructed.
func (c *Config) OracleEnabled() bool {
	return !strings.EqualFold(c.Oracle.Provider, "none")
}

// Queries returns the seed queries for one disaster type.
// Plural forms such as floods are accepted.
func (c *Config) Queries(disasterType string) []string {
	key := strings.ToLower(strings.TrimSpace(disasterType))
	if q, ok := c.SeedQueries[key]; ok {
		return q
	}
	return c.SeedQueries[strings.TrimSuffix(key, "s")]
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
