package model

import "time"

// Config holds the full application configuration
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Sources   SourcesConfig   `yaml:"sources"`
	Search    SearchConfig    `yaml:"search"`
	Synthesis SynthesisConfig `yaml:"synthesis"`
	Cache     CacheConfig     `yaml:"cache"`
	Trending  TrendingConfig  `yaml:"trending"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Server    ServerConfig    `yaml:"server"`
	HTTP      HTTPConfig      `yaml:"http"`
	Output    OutputConfig    `yaml:"output"`
}

// LLMConfig configures the language-generation backend
type LLMConfig struct {
	Provider   string `yaml:"provider"` // openai, anthropic, ollama
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty"`
	Timeout    int    `yaml:"timeout"` // seconds
	MaxTokens  int    `yaml:"max_tokens"`
	HTTPProxy  string `yaml:"http_proxy,omitempty"`
	HTTPSProxy string `yaml:"https_proxy,omitempty"`
}

// SourcesConfig holds per-provider credentials. An empty key disables that
// adapter without failing the pipeline.
type SourcesConfig struct {
	TavilyAPIKey    string `yaml:"tavily_api_key,omitempty"`
	FactCheckAPIKey string `yaml:"factcheck_api_key,omitempty"` // Google Fact Check Tools
	NewsAPIKey      string `yaml:"newsapi_key,omitempty"`
	ScraperEnabled  bool   `yaml:"scraper_enabled"` // HTML fact-checker scraping (keyless)
}

// SearchConfig bounds the evidence aggregation fan-out
type SearchConfig struct {
	PerSourceTimeout time.Duration `yaml:"per_source_timeout"`
	OverallBudget    time.Duration `yaml:"overall_budget"`
	MaxPerDomain     int           `yaml:"max_per_domain"`
	MaxResults       int           `yaml:"max_results"`
	RatePerHost      float64       `yaml:"rate_per_host"` // requests per second per host
	RateBurst        int           `yaml:"rate_burst"`
}

// SynthesisConfig exposes the verdict policy thresholds as tunables
type SynthesisConfig struct {
	MaterialOpposition  float64 `yaml:"material_opposition"` // weight share that blocks a clean true/false
	MixedFloor          float64 `yaml:"mixed_floor"`         // weight share both sides need for "mixed"
	DominanceFloor      float64 `yaml:"dominance_floor"`     // weight share one side needs for "mostly_*"
	UnverifiableCap     float64 `yaml:"unverifiable_cap"`    // confidence ceiling for unverifiable verdicts
	MaxEvidenceInPrompt int     `yaml:"max_evidence_in_prompt"`
}

// CacheConfig configures the result cache
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	TTL      time.Duration `yaml:"ttl"`
	Capacity int           `yaml:"capacity"`
	Dir      string        `yaml:"dir,omitempty"` // disk layer directory; empty disables persistence
}

// TrendingConfig bounds the trending store
type TrendingConfig struct {
	Capacity int           `yaml:"capacity"`
	HalfLife time.Duration `yaml:"half_life"`
}

// PipelineConfig bounds a single run
type PipelineConfig struct {
	Budget      time.Duration `yaml:"budget"`        // overall wall-clock budget per run
	MinClaimLen int           `yaml:"min_claim_len"` // shorter inputs are rejected
	MaxClaimLen int           `yaml:"max_claim_len"` // longer inputs are rejected
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	TrendingLimit   int           `yaml:"trending_limit"`
}

// HTTPConfig configures outbound HTTP behavior shared by source adapters
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	MaxBytes  int64         `yaml:"max_bytes"`
}

// OutputConfig controls CLI output
type OutputConfig struct {
	Verbose bool   `yaml:"verbose"`
	Format  string `yaml:"format"` // text or json
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			Provider:  "openai",
			Timeout:   30,
			MaxTokens: 1000,
		},
		Sources: SourcesConfig{
			ScraperEnabled: true,
		},
		Search: SearchConfig{
			PerSourceTimeout: 8 * time.Second,
			OverallBudget:    20 * time.Second,
			MaxPerDomain:     3,
			MaxResults:       25,
			RatePerHost:      2.0,
			RateBurst:        5,
		},
		Synthesis: SynthesisConfig{
			MaterialOpposition:  0.30,
			MixedFloor:          0.25,
			DominanceFloor:      0.60,
			UnverifiableCap:     0.20,
			MaxEvidenceInPrompt: 10,
		},
		Cache: CacheConfig{
			Enabled:  true,
			TTL:      24 * time.Hour,
			Capacity: 1000,
		},
		Trending: TrendingConfig{
			Capacity: 100,
			HalfLife: 6 * time.Hour,
		},
		Pipeline: PipelineConfig{
			Budget:      60 * time.Second,
			MinClaimLen: 5,
			MaxClaimLen: 2000,
		},
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    90 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			TrendingLimit:   10,
		},
		HTTP: HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "CrisisWatch/0.1 (+https://github.com/crisiswatch/crisiswatch)",
			MaxBytes:  2_000_000,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}
