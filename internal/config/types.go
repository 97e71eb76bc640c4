package config

import "strings"

// Config is the main configuration carrier for AIDA.
type Config struct {
	App      AppConfig      `yaml:"app"`
	AI       AIConfig       `yaml:"ai"`
	Chain    ChainConfig    `yaml:"chain"`
	Store    StoreConfig    `yaml:"store"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

type AppConfig struct {
	Env         string   `yaml:"env"`
	LogLevel    string   `yaml:"log_level"`
	HTTPAddr    string   `yaml:"http_addr"`
	LogPath     string   `yaml:"log_path"`
	LLMLog      string   `yaml:"llm_log_path"`
	LLMDump     bool     `yaml:"llm_dump_payload"`
	CORSOrigins []string `yaml:"cors_allowed_origins"`
}

// AIConfig covers the text-generation providers. With Enabled=false or no
// usable model the service runs in fallback-only mode.
type AIConfig struct {
	Enabled               bool                   `yaml:"enabled"`
	RequestTimeoutSeconds int                    `yaml:"request_timeout_seconds"`
	MaxRetries            int                    `yaml:"max_retries"`
	RateLimitPerMin       int                    `yaml:"rate_limit_per_min"`
	PromptsPath           string                 `yaml:"prompts_path"`
	ProviderPresets       map[string]ModelPreset `yaml:"provider_presets"`
	Models                []AIModelConfig        `yaml:"models"`
}

// ModelPreset is a reusable API connection profile.
type ModelPreset struct {
	APIURL     string            `yaml:"api_url"`
	APIKey     string            `yaml:"api_key"`
	Headers    map[string]string `yaml:"headers"`
	ExpectJSON bool              `yaml:"expect_json"`
}

// AIModelConfig is one generator entry; unset fields inherit from its preset.
type AIModelConfig struct {
	ID       string            `yaml:"id"`
	Provider string            `yaml:"provider"`
	Preset   string            `yaml:"preset"`
	Enabled  bool              `yaml:"enabled"`
	APIURL   string            `yaml:"api_url"`
	APIKey   string            `yaml:"api_key"`
	Model    string            `yaml:"model"`
	Headers  map[string]string `yaml:"headers"`
	// ExpectJSON is a pointer to distinguish explicit false from "inherit
	// the preset value".
	ExpectJSON *bool `yaml:"expect_json"`
}

// ResolvedModelConfig is the final model configuration after preset merge.
type ResolvedModelConfig struct {
	ID         string
	Provider   string
	Enabled    bool
	APIURL     string
	APIKey     string
	Model      string
	Headers    map[string]string
	ExpectJSON bool
}

type ChainConfig struct {
	Network        string `yaml:"network"`
	APIURL         string `yaml:"api_url"`
	Mock           bool   `yaml:"mock"`
	RefreshSeconds int    `yaml:"refresh_seconds"`
}

type StoreConfig struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
}

type AnalysisConfig struct {
	SubTimeoutSeconds int   `yaml:"sub_timeout_seconds"`
	FallbackSeed      int64 `yaml:"fallback_seed"`
}

// ResolveModelConfigs merges preset values into each model entry and returns
// the effective configurations, preserving order.
func (a *AIConfig) ResolveModelConfigs() ([]ResolvedModelConfig, error) {
	out := make([]ResolvedModelConfig, 0, len(a.Models))
	for _, m := range a.Models {
		resolved := ResolvedModelConfig{
			ID:       strings.TrimSpace(m.ID),
			Provider: strings.TrimSpace(m.Provider),
			Enabled:  m.Enabled,
			APIURL:   strings.TrimSpace(m.APIURL),
			APIKey:   strings.TrimSpace(m.APIKey),
			Model:    strings.TrimSpace(m.Model),
			Headers:  mergeHeaderMaps(nil, m.Headers),
		}
		if preset, ok := a.ProviderPresets[strings.TrimSpace(m.Preset)]; ok && m.Preset != "" {
			if resolved.APIURL == "" {
				resolved.APIURL = strings.TrimSpace(preset.APIURL)
			}
			if resolved.APIKey == "" {
				resolved.APIKey = strings.TrimSpace(preset.APIKey)
			}
			resolved.Headers = mergeHeaderMaps(preset.Headers, m.Headers)
			resolved.ExpectJSON = preset.ExpectJSON
		}
		if m.ExpectJSON != nil {
			resolved.ExpectJSON = *m.ExpectJSON
		}
		if resolved.ID == "" {
			resolved.ID = resolved.Provider
		}
		out = append(out, resolved)
	}
	return out, nil
}

func mergeHeaderMaps(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// keySet tracks the config paths explicitly present in the loaded files so
// defaults never overwrite an intentional zero value.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault describes the default rule for one config field.
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
