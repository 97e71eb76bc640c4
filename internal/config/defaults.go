package config

import "strings"

const (
	defaultAppEnv            = "dev"
	defaultAppLogLevel       = "info"
	defaultAppHTTPAddr       = ":8000"
	defaultAppLogPath        = "data/logs/aida.log"
	defaultAppLLMLogPath     = "data/logs/aida-llm.log"
	defaultAIRequestTimeout  = 30
	defaultAIMaxRetries      = 2
	defaultAIRateLimit       = 60
	defaultAIPromptsPath     = "configs/prompts.yaml"
	defaultChainNetwork      = "hathor-testnet"
	defaultChainAPIURL       = "https://node1.testnet.hathor.network/"
	defaultChainRefresh      = 300
	defaultStorePath         = "data/aida.db"
	defaultAnalysisTimeout   = 20
	defaultCORSOriginLocal   = "http://localhost:3000"
	defaultCORSOriginLoop    = "http://127.0.0.1:3000"
)

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.AI.applyDefaults(keys)
	c.Chain.applyDefaults(keys)
	c.Store.applyDefaults(keys)
	c.Analysis.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
		stringFieldDefault("app.log_path", &a.LogPath, defaultAppLogPath),
		stringFieldDefault("app.llm_log_path", &a.LLMLog, defaultAppLLMLogPath),
	)
	if len(a.CORSOrigins) == 0 && !keys.isSet("app.cors_allowed_origins") {
		a.CORSOrigins = []string{defaultCORSOriginLocal, defaultCORSOriginLoop}
	}
}

func (a *AIConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	if a.ProviderPresets == nil {
		a.ProviderPresets = make(map[string]ModelPreset)
	}
	applyFieldDefaults(keys,
		stringFieldDefault("ai.prompts_path", &a.PromptsPath, defaultAIPromptsPath),
		fieldDefault{
			key:   "ai.request_timeout_seconds",
			need:  func() bool { return a.RequestTimeoutSeconds <= 0 },
			apply: func() { a.RequestTimeoutSeconds = defaultAIRequestTimeout },
		},
		fieldDefault{
			key:   "ai.max_retries",
			need:  func() bool { return a.MaxRetries <= 0 },
			apply: func() { a.MaxRetries = defaultAIMaxRetries },
		},
		fieldDefault{
			key:   "ai.rate_limit_per_min",
			need:  func() bool { return a.RateLimitPerMin <= 0 },
			apply: func() { a.RateLimitPerMin = defaultAIRateLimit },
		},
	)
	if a.MaxRetries < 0 {
		a.MaxRetries = 0
	}
}

func (c *ChainConfig) applyDefaults(keys keySet) {
	if c == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("chain.network", &c.Network, defaultChainNetwork),
		stringFieldDefault("chain.api_url", &c.APIURL, defaultChainAPIURL),
		boolFieldDefault("chain.mock", &c.Mock, true),
		fieldDefault{
			key:   "chain.refresh_seconds",
			need:  func() bool { return c.RefreshSeconds <= 0 },
			apply: func() { c.RefreshSeconds = defaultChainRefresh },
		},
	)
}

func (s *StoreConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("store.path", &s.Path, defaultStorePath),
	)
}

func (a *AnalysisConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "analysis.sub_timeout_seconds",
			need:  func() bool { return a.SubTimeoutSeconds <= 0 },
			apply: func() { a.SubTimeoutSeconds = defaultAnalysisTimeout },
		},
	)
	if a.FallbackSeed < 0 {
		a.FallbackSeed = 0
	}
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
