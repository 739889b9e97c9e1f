package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lvpi/lpsearch/internal/domain/search/facet"
)

// Config holds the lpsearch API configuration.
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Store         StoreConfig         `yaml:"store"`
	Cache         CacheConfig         `yaml:"cache"`
	Search        SearchConfig        `yaml:"search"`
	Assistant     AssistantConfig     `yaml:"assistant"`
	Auth          AuthConfig          `yaml:"auth"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// ElasticsearchConfig holds search engine connection settings.
type ElasticsearchConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	APIKey           string   `yaml:"api_key"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StoreConfig holds Redis/Valkey connection settings. Empty Addrs disables the store.
type StoreConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a store is configured.
func (s StoreConfig) Enabled() bool { return len(s.Addrs) > 0 }

// CacheConfig holds search result cache settings.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLSec  int  `yaml:"ttl_sec"`
}

// SearchConfig holds translation and request body settings.
type SearchConfig struct {
	Index               string        `yaml:"index"`
	TitleField          string        `yaml:"title_field"`
	BodyField           string        `yaml:"body_field"`
	TitleBoost          float64       `yaml:"title_boost"`
	SentenceBreak       string        `yaml:"sentence_break"`
	ParagraphBreak      string        `yaml:"paragraph_break"`
	BucketSize          int           `yaml:"bucket_size"`
	ResultAttributes    []string      `yaml:"result_attributes"`
	HighlightAttributes []string      `yaml:"highlight_attributes"`
	Facets              []facet.Facet `yaml:"facets"`
}

// AssistantConfig holds chat assistant settings.
type AssistantConfig struct {
	Providers    map[string]ProviderConfig `yaml:"providers"`
	Models       []ModelConfig             `yaml:"models"`
	DefaultModel string                    `yaml:"default_model"`
	SystemPrompt string                    `yaml:"system_prompt"`
	MaxTokens    int                       `yaml:"max_tokens"`
}

// ProviderConfig holds an OpenAI-compatible provider's settings.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// ModelConfig maps a public model name to a provider.
type ModelConfig struct {
	Name     string `yaml:"name"`
	Provider string `yaml:"provider"`
	Label    string `yaml:"label"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	// Assistant streams outlive a regular response.
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Elasticsearch.ReadinessTimeout <= 0 {
		c.Elasticsearch.ReadinessTimeout = 30
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "redis"
	}
	if c.Store.ReadinessTimeout <= 0 {
		c.Store.ReadinessTimeout = 10
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Search.Index == "" {
		c.Search.Index = "books"
	}
	if c.Search.BucketSize <= 0 {
		c.Search.BucketSize = facet.DefaultBucketSize
	}
	if len(c.Search.ResultAttributes) == 0 {
		c.Search.ResultAttributes = facet.DefaultResultAttributes()
	}
	if len(c.Search.HighlightAttributes) == 0 {
		c.Search.HighlightAttributes = facet.DefaultHighlightAttributes()
	}
	if len(c.Search.Facets) == 0 {
		c.Search.Facets = facet.Defaults()
	}
	if c.Assistant.DefaultModel == "" {
		c.Assistant.DefaultModel = "deepseek-chat"
	}
	if c.Assistant.MaxTokens <= 0 {
		c.Assistant.MaxTokens = 2048
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Elasticsearch.Addrs) == 0 {
		return fmt.Errorf("elasticsearch.addrs is required")
	}
	switch c.Store.Driver {
	case "redis", "valkey":
	default:
		return fmt.Errorf("store.driver must be \"redis\" or \"valkey\", got %q", c.Store.Driver)
	}
	if c.Cache.Enabled && !c.Store.Enabled() {
		return fmt.Errorf("cache.enabled requires store.addrs")
	}
	if c.Search.TitleBoost < 0 {
		return fmt.Errorf("search.title_boost must not be negative, got %v", c.Search.TitleBoost)
	}
	if _, err := facet.NewCatalog(c.Search.Facets); err != nil {
		return fmt.Errorf("search.facets: %w", err)
	}
	for i, m := range c.Assistant.Models {
		if m.Name == "" {
			return fmt.Errorf("assistant.models[%d].name is required", i)
		}
		if _, ok := c.Assistant.Providers[m.Provider]; !ok {
			return fmt.Errorf("assistant.models[%d] (%s): unknown provider %q", i, m.Name, m.Provider)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
