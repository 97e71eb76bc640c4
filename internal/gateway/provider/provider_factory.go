package provider

import (
	"time"

	"github.com/RachelGanonNew/AIDA-Project/internal/config"
	"github.com/RachelGanonNew/AIDA-Project/internal/logger"
)

// BuildGenerators turns the resolved ai.models entries into ready-to-use
// generators. Disabled entries are skipped; an empty result means the
// analysis layer runs on heuristics alone.
func BuildGenerators(cfg *config.AIConfig) []TextGenerator {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	resolved, err := cfg.ResolveModelConfigs()
	if err != nil {
		logger.Errorf("[AI] resolve model configs: %v", err)
		return nil
	}
	out := make([]TextGenerator, 0, len(resolved))
	for _, m := range resolved {
		if !m.Enabled {
			continue
		}
		client := &OpenAIChatClient{
			BaseURL:      m.APIURL,
			APIKey:       m.APIKey,
			Model:        m.Model,
			MaxRetries:   cfg.MaxRetries,
			ExtraHeaders: m.Headers,
		}
		if cfg.RequestTimeoutSeconds > 0 {
			client.Timeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
		}
		out = append(out, NewOpenAIGenerator(m.ID, true, m.ExpectJSON, client, cfg.RateLimitPerMin))
		logger.Infof("[AI] generator ready: id=%s model=%s", m.ID, m.Model)
	}
	return out
}
