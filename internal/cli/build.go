package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/crisiswatch/crisiswatch/internal/cache"
	"github.com/crisiswatch/crisiswatch/internal/llm"
	"github.com/crisiswatch/crisiswatch/internal/model"
	"github.com/crisiswatch/crisiswatch/internal/pipeline"
	"github.com/crisiswatch/crisiswatch/internal/source"
	"github.com/crisiswatch/crisiswatch/internal/trending"
)

// loadConfig builds the effective configuration: defaults, then the config
// file, then environment credentials.
func loadConfig() (model.Config, error) {
	cfg := model.DefaultConfig()

	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)
	cfg.Output.Verbose = verbose
	return cfg, nil
}

// applyEnv overlays credentials from the environment. A missing optional
// key just disables that source adapter.
func applyEnv(cfg *model.Config) {
	switch cfg.LLM.Provider {
	case "openai":
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg.LLM.APIKey = key
		}
	case "anthropic", "claude":
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			cfg.LLM.APIKey = key
		}
	case "ollama":
		if base := os.Getenv("OLLAMA_BASE_URL"); base != "" {
			cfg.LLM.BaseURL = base
		}
	}

	if key := os.Getenv("TAVILY_API_KEY"); key != "" {
		cfg.Sources.TavilyAPIKey = key
	}
	if key := os.Getenv("NEWSAPI_KEY"); key != "" {
		cfg.Sources.NewsAPIKey = key
	}
	if key := os.Getenv("FACTCHECK_API_KEY"); key != "" {
		cfg.Sources.FactCheckAPIKey = key
	}
}

// newLogger builds the process logger; verbose switches to development
// output with debug level.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.OutputPaths = []string{"stderr"}
	return zapCfg.Build()
}

// buildPipeline wires the verification pipeline from configuration
func buildPipeline(cfg model.Config, logger *zap.Logger) (*pipeline.Pipeline, *trending.Store, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, nil, fmt.Errorf("initialize language model provider: %w", err)
	}

	client := source.NewClient(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBytes).
		WithResponseCache(cache.NewMemoryCache(5*time.Minute), 5*time.Minute)
	adapters := source.NewAdapters(cfg, client)

	var backing cache.Cache
	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			if home, err := os.UserHomeDir(); err == nil {
				dir = filepath.Join(home, ".crisiswatch", "cache")
			}
		}
		if dir != "" {
			backing = cache.NewDiskCache(dir, cfg.Cache.TTL)
		}
	}

	results := cache.NewResultCache(cfg.Cache, backing, logger)
	trends := trending.NewStore(cfg.Trending)

	return pipeline.New(cfg, provider, adapters, results, trends, logger), trends, nil
}
