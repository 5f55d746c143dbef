package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Index backends.
const (
	BackendValkey   = "valkey"
	BackendRedis    = "redis"
	BackendPgvector = "pgvector"
)

// Generation providers.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config holds the recommendation service and indexer configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Index      IndexConfig      `yaml:"index"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Ranking    RankingConfig    `yaml:"ranking"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
	Indexer    IndexerConfig    `yaml:"indexer"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys     []string `yaml:"api_keys"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// IndexConfig selects and configures the vector index backend.
type IndexConfig struct {
	Backend          string   `yaml:"backend"` // valkey, redis, pgvector (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DSN              string   `yaml:"dsn"`
	Collection       string   `yaml:"collection"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	HNSWM            int      `yaml:"hnsw_m"`
	HNSWEFConstruct  int      `yaml:"hnsw_ef_construction"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider     string `yaml:"provider"`
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	Model        string `yaml:"model"`
	Dimensions   int    `yaml:"dimensions"`
	MaxBatchSize int    `yaml:"max_batch_size"`
	CacheTTLSec  int    `yaml:"cache_ttl_sec"` // 0 disables the query cache
}

// GenerationConfig holds language model settings for interpretation and explanation.
type GenerationConfig struct {
	Provider   string        `yaml:"provider"` // openai, ollama (default: openai)
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	TimeoutSec int           `yaml:"timeout_sec"`
	Interpret  StageConfig   `yaml:"interpret"`
	Explain    ExplainConfig `yaml:"explain"`
}

// StageConfig bounds one generation call.
type StageConfig struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature *float32 `yaml:"temperature"` // unset takes the stage default; 0 is deterministic
}

// ExplainConfig bounds explanation calls.
type ExplainConfig struct {
	StageConfig `yaml:",inline"`

	Retries          int `yaml:"retries"` // -1 disables retries
	BackoffMillis    int `yaml:"backoff_ms"`
	Concurrency      int `yaml:"concurrency"`
	DescriptionLimit int `yaml:"description_limit"`
}

// RankingConfig holds the retrieval weights and over-fetch policy.
type RankingConfig struct {
	RelevanceWeight  float64 `yaml:"relevance_weight"`
	ElectiveWeight   float64 `yaml:"elective_weight"`
	MaxElectiveScore float64 `yaml:"max_elective_score"`
	ScalarFactor     int     `yaml:"scalar_overfetch"`
	ListFactor       int     `yaml:"list_overfetch"`
	ListFloor        int     `yaml:"list_overfetch_floor"`
	OverFetch        int     `yaml:"orchestrator_overfetch"`
}

// IndexerConfig holds offline indexing settings.
type IndexerConfig struct {
	BatchSize   int    `yaml:"batch_size"`
	DelayMillis int    `yaml:"delay_ms"` // negative disables pacing
	ManifestDir string `yaml:"manifest_dir"`
}

// Load reads configuration from a YAML file by environment name (local, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands env variables, decodes, defaults and validates raw YAML.
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

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Index.Backend == "" {
		c.Index.Backend = BackendValkey
	}
	if c.Index.Collection == "" {
		c.Index.Collection = "courses_1264"
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "electives:"
	}
	if c.Index.ReadinessTimeout <= 0 {
		c.Index.ReadinessTimeout = 10
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-large"
	}
	if c.Embedding.Dimensions == 0 {
		c.Embedding.Dimensions = 3072
	}
	if c.Embedding.MaxBatchSize <= 0 {
		c.Embedding.MaxBatchSize = 100
	}

	c.Generation.applyDefaults()
	c.Ranking.applyDefaults()

	if c.Indexer.BatchSize <= 0 {
		c.Indexer.BatchSize = 100
	}
	if c.Indexer.DelayMillis == 0 {
		c.Indexer.DelayMillis = 500
	}
	if c.Indexer.ManifestDir == "" {
		c.Indexer.ManifestDir = "data/index"
	}
}

func (g *GenerationConfig) applyDefaults() {
	if g.Provider == "" {
		g.Provider = ProviderOpenAI
	}
	if g.BaseURL == "" {
		switch g.Provider {
		case ProviderOpenAI:
			g.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
		case ProviderOllama:
			g.BaseURL = "http://localhost:11434"
		}
	}
	if g.Model == "" {
		g.Model = "gemini-2.0-flash"
	}
	if g.TimeoutSec <= 0 {
		g.TimeoutSec = 30
	}
	if g.Interpret.MaxTokens <= 0 {
		g.Interpret.MaxTokens = 200
	}
	if g.Interpret.Temperature == nil {
		g.Interpret.Temperature = float32Ptr(0.2)
	}
	if g.Explain.MaxTokens <= 0 {
		g.Explain.MaxTokens = 100
	}
	if g.Explain.Temperature == nil {
		g.Explain.Temperature = float32Ptr(0.5)
	}
	if g.Explain.Retries == 0 {
		g.Explain.Retries = 2
	}
	if g.Explain.BackoffMillis <= 0 {
		g.Explain.BackoffMillis = 300
	}
	if g.Explain.DescriptionLimit <= 0 {
		g.Explain.DescriptionLimit = 500
	}
}

func float32Ptr(v float32) *float32 { return &v }

func (r *RankingConfig) applyDefaults() {
	if r.RelevanceWeight == 0 && r.ElectiveWeight == 0 {
		r.RelevanceWeight, r.ElectiveWeight = 0.80, 0.20
	}
	if r.MaxElectiveScore <= 0 {
		r.MaxElectiveScore = 25
	}
	if r.ScalarFactor <= 0 {
		r.ScalarFactor = 5
	}
	if r.ListFactor <= 0 {
		r.ListFactor = 20
	}
	if r.ListFloor <= 0 {
		r.ListFloor = 200
	}
	if r.OverFetch <= 0 {
		r.OverFetch = 2
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Index.Backend {
	case BackendValkey, BackendRedis:
		if len(c.Index.Addrs) == 0 {
			return fmt.Errorf("index.addrs is required for backend %q", c.Index.Backend)
		}
	case BackendPgvector:
		if c.Index.DSN == "" {
			return fmt.Errorf("index.dsn is required for backend %q", c.Index.Backend)
		}
	default:
		return fmt.Errorf("index.backend must be valkey, redis or pgvector, got %q", c.Index.Backend)
	}

	if c.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.api_key is required")
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}

	switch c.Generation.Provider {
	case ProviderOpenAI:
		if c.Generation.APIKey == "" {
			return fmt.Errorf("generation.api_key is required")
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("generation.provider must be openai or ollama, got %q", c.Generation.Provider)
	}

	for name, w := range map[string]float64{
		"ranking.relevance_weight": c.Ranking.RelevanceWeight,
		"ranking.elective_weight":  c.Ranking.ElectiveWeight,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", name, w)
		}
	}
	return nil
}

// ExplainBackoff returns the base explanation retry backoff.
func (c *Config) ExplainBackoff() time.Duration {
	return time.Duration(c.Generation.Explain.BackoffMillis) * time.Millisecond
}

// IndexerDelay returns the pause between indexing batches; negative config disables it.
func (c *Config) IndexerDelay() time.Duration {
	if c.Indexer.DelayMillis < 0 {
		return 0
	}
	return time.Duration(c.Indexer.DelayMillis) * time.Millisecond
}

// CacheTTL returns the query embedding cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Embedding.CacheTTLSec) * time.Second
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
