// File path: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries every tunable of the service. It is built once at startup
// and passed into each component's constructor; nothing reads it ambiently.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Vector     VectorConfig     `yaml:"vector"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Generation GenerationConfig `yaml:"generation"`
	Trends     TrendsConfig     `yaml:"trends"`
	Ingestion  IngestionConfig  `yaml:"ingestion"`
	Database   DatabaseConfig   `yaml:"database"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type EmbeddingConfig struct {
	Model        string `yaml:"model"`
	Dimensions   int    `yaml:"dimensions"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`

	OpenAIKey        string `yaml:"-"`
	OpenAIModel      string `yaml:"openai_model"`
	HuggingFaceToken string `yaml:"-"`
}

type VectorConfig struct {
	Host       string        `yaml:"host"`
	Port       string        `yaml:"port"`
	Scheme     string        `yaml:"scheme"`
	Collection string        `yaml:"collection"`
	Timeout    time.Duration `yaml:"timeout"`
}

type RetrievalConfig struct {
	TopK                int     `yaml:"top_k"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

type GenerationConfig struct {
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

type TrendsConfig struct {
	MinMentions    int           `yaml:"min_mentions"`
	TimeWindow     time.Duration `yaml:"time_window"`
	UpdateInterval time.Duration `yaml:"update_interval"`

	// CrossPlatformRatio is the share of the leading platform's mentions a
	// runner-up must exceed before a trend is classified cross-platform.
	CrossPlatformRatio float64 `yaml:"cross_platform_ratio"`
}

// PlatformConfig configures one source client.
type PlatformConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Queries    []string `yaml:"queries"`
	MaxResults int      `yaml:"max_results"`

	// RateRequests per RateWindow caps outbound calls to the upstream API.
	RateRequests int           `yaml:"rate_requests"`
	RateWindow   time.Duration `yaml:"rate_window"`

	// enabledSet records whether a config file spelled out the enabled flag,
	// so merge can tell an explicit false apart from an absent field.
	enabledSet bool
}

// UnmarshalYAML decodes the section while tracking presence of the enabled
// flag. Without this, "enabled: false" in a file would be indistinguishable
// from the field being omitted and the default would win.
func (p *PlatformConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Enabled      *bool         `yaml:"enabled"`
		Queries      []string      `yaml:"queries"`
		MaxResults   int           `yaml:"max_results"`
		RateRequests int           `yaml:"rate_requests"`
		RateWindow   time.Duration `yaml:"rate_window"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Enabled != nil {
		p.Enabled = *raw.Enabled
		p.enabledSet = true
	}
	p.Queries = raw.Queries
	p.MaxResults = raw.MaxResults
	p.RateRequests = raw.RateRequests
	p.RateWindow = raw.RateWindow
	return nil
}

type IngestionConfig struct {
	Interval   time.Duration  `yaml:"interval"`
	Reddit     PlatformConfig `yaml:"reddit"`
	YouTube    PlatformConfig `yaml:"youtube"`
	HackerNews PlatformConfig `yaml:"hackernews"`
	RSS        PlatformConfig `yaml:"rss"`

	RedditClientID     string `yaml:"-"`
	RedditClientSecret string `yaml:"-"`
	RedditUserAgent    string `yaml:"-"`
	YouTubeAPIKey      string `yaml:"-"`
}

type DatabaseConfig struct {
	// Path of the SQLite catalog; empty disables persistence and the store
	// runs memory-only.
	Path string `yaml:"path"`
}

// Load builds the configuration from defaults, an optional YAML file named by
// SOCIALRAG_CONFIG, and environment variable overrides, in that order.
func Load() (Config, error) {
	cfg := defaults()
	if path := strings.TrimSpace(os.Getenv("SOCIALRAG_CONFIG")); path != "" {
		fileCfg, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = cfg.merge(fileCfg)
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Embedding: EmbeddingConfig{
			Model:        "sentence-transformers/all-MiniLM-L6-v2",
			Dimensions:   384,
			ChunkSize:    512,
			ChunkOverlap: 50,
			OpenAIModel:  "text-embedding-3-small",
		},
		Vector: VectorConfig{
			Host:       "localhost",
			Port:       "8000",
			Scheme:     "http",
			Collection: "social_media_posts",
			Timeout:    10 * time.Second,
		},
		Retrieval: RetrievalConfig{
			TopK:                5,
			SimilarityThreshold: 0.3,
		},
		Generation: GenerationConfig{
			Model:       "gpt-4o-mini",
			MaxTokens:   500,
			Temperature: 0.7,
		},
		Trends: TrendsConfig{
			MinMentions:        10,
			TimeWindow:         24 * time.Hour,
			UpdateInterval:     15 * time.Minute,
			CrossPlatformRatio: 0.3,
		},
		Ingestion: IngestionConfig{
			Interval: 30 * time.Minute,
			Reddit: PlatformConfig{
				Enabled:      true,
				Queries:      []string{"technology", "worldnews", "popular"},
				MaxResults:   50,
				RateRequests: 60,
				RateWindow:   time.Minute,
			},
			YouTube: PlatformConfig{
				Enabled:      true,
				Queries:      []string{"Technology", "News & Politics"},
				MaxResults:   25,
				RateRequests: 10000,
				RateWindow:   24 * time.Hour,
			},
			HackerNews: PlatformConfig{
				Enabled:      true,
				Queries:      []string{"AI", "technology", "startup", "programming"},
				MaxResults:   100,
				RateRequests: 100,
				RateWindow:   time.Minute,
			},
			RSS: PlatformConfig{
				Enabled:      true,
				Queries:      []string{"techcrunch", "theverge", "wired", "dev-to"},
				MaxResults:   50,
				RateRequests: 10,
				RateWindow:   time.Minute,
			},
			RedditUserAgent: "SocialMediaRAG/1.0",
		},
		Database: DatabaseConfig{Path: filepath.Join("data", "socialrag.db")},
	}
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// merge overlays non-zero fields from the override onto the receiver.
func (c Config) merge(o Config) Config {
	out := c
	if strings.TrimSpace(o.Server.Addr) != "" {
		out.Server.Addr = o.Server.Addr
	}
	if strings.TrimSpace(o.Embedding.Model) != "" {
		out.Embedding.Model = o.Embedding.Model
	}
	if o.Embedding.Dimensions > 0 {
		out.Embedding.Dimensions = o.Embedding.Dimensions
	}
	if o.Embedding.ChunkSize > 0 {
		out.Embedding.ChunkSize = o.Embedding.ChunkSize
	}
	if o.Embedding.ChunkOverlap > 0 {
		out.Embedding.ChunkOverlap = o.Embedding.ChunkOverlap
	}
	if strings.TrimSpace(o.Embedding.OpenAIModel) != "" {
		out.Embedding.OpenAIModel = o.Embedding.OpenAIModel
	}
	if strings.TrimSpace(o.Vector.Host) != "" {
		out.Vector.Host = o.Vector.Host
	}
	if strings.TrimSpace(o.Vector.Port) != "" {
		out.Vector.Port = o.Vector.Port
	}
	if strings.TrimSpace(o.Vector.Scheme) != "" {
		out.Vector.Scheme = o.Vector.Scheme
	}
	if strings.TrimSpace(o.Vector.Collection) != "" {
		out.Vector.Collection = o.Vector.Collection
	}
	if o.Vector.Timeout > 0 {
		out.Vector.Timeout = o.Vector.Timeout
	}
	if o.Retrieval.TopK > 0 {
		out.Retrieval.TopK = o.Retrieval.TopK
	}
	if o.Retrieval.SimilarityThreshold > 0 {
		out.Retrieval.SimilarityThreshold = o.Retrieval.SimilarityThreshold
	}
	if strings.TrimSpace(o.Generation.Model) != "" {
		out.Generation.Model = o.Generation.Model
	}
	if o.Generation.MaxTokens > 0 {
		out.Generation.MaxTokens = o.Generation.MaxTokens
	}
	if o.Generation.Temperature > 0 {
		out.Generation.Temperature = o.Generation.Temperature
	}
	if o.Trends.MinMentions > 0 {
		out.Trends.MinMentions = o.Trends.MinMentions
	}
	if o.Trends.TimeWindow > 0 {
		out.Trends.TimeWindow = o.Trends.TimeWindow
	}
	if o.Trends.UpdateInterval > 0 {
		out.Trends.UpdateInterval = o.Trends.UpdateInterval
	}
	if o.Trends.CrossPlatformRatio > 0 {
		out.Trends.CrossPlatformRatio = o.Trends.CrossPlatformRatio
	}
	if o.Ingestion.Interval > 0 {
		out.Ingestion.Interval = o.Ingestion.Interval
	}
	out.Ingestion.Reddit = mergePlatform(out.Ingestion.Reddit, o.Ingestion.Reddit)
	out.Ingestion.YouTube = mergePlatform(out.Ingestion.YouTube, o.Ingestion.YouTube)
	out.Ingestion.HackerNews = mergePlatform(out.Ingestion.HackerNews, o.Ingestion.HackerNews)
	out.Ingestion.RSS = mergePlatform(out.Ingestion.RSS, o.Ingestion.RSS)
	if strings.TrimSpace(o.Database.Path) != "" {
		out.Database.Path = o.Database.Path
	}
	return out
}

func mergePlatform(base, o PlatformConfig) PlatformConfig {
	out := base
	if o.enabledSet {
		out.Enabled = o.Enabled
	}
	if len(o.Queries) > 0 {
		out.Queries = append([]string(nil), o.Queries...)
	}
	if o.MaxResults > 0 {
		out.MaxResults = o.MaxResults
	}
	if o.RateRequests > 0 {
		out.RateRequests = o.RateRequests
	}
	if o.RateWindow > 0 {
		out.RateWindow = o.RateWindow
	}
	return out
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("SOCIALRAG_ADDR")); v != "" {
		c.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		c.Embedding.OpenAIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("HUGGINGFACE_API_KEY")); v != "" {
		c.Embedding.HuggingFaceToken = v
	}
	if v := strings.TrimSpace(os.Getenv("EMBEDDING_DIMENSIONS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Embedding.Dimensions = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHROMA_HOST")); v != "" {
		c.Vector.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("CHROMA_PORT")); v != "" {
		c.Vector.Port = v
	}
	if v := strings.TrimSpace(os.Getenv("CHROMA_COLLECTION")); v != "" {
		c.Vector.Collection = v
	}
	if v := strings.TrimSpace(os.Getenv("REDDIT_CLIENT_ID")); v != "" {
		c.Ingestion.RedditClientID = v
	}
	if v := strings.TrimSpace(os.Getenv("REDDIT_CLIENT_SECRET")); v != "" {
		c.Ingestion.RedditClientSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("REDDIT_USER_AGENT")); v != "" {
		c.Ingestion.RedditUserAgent = v
	}
	if v := strings.TrimSpace(os.Getenv("YOUTUBE_API_KEY")); v != "" {
		c.Ingestion.YouTubeAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("SOCIALRAG_DB")); v != "" {
		c.Database.Path = v
	}
}

func (c Config) validate() error {
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Embedding.ChunkOverlap >= c.Embedding.ChunkSize {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d",
			c.Embedding.ChunkOverlap, c.Embedding.ChunkSize)
	}
	if c.Retrieval.SimilarityThreshold < 0 || c.Retrieval.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in [0,1], got %v", c.Retrieval.SimilarityThreshold)
	}
	return nil
}
