package config

import (
	"fmt"
	"strings"
)

func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.AI.validate(); err != nil {
		return err
	}
	if err := c.Chain.validate(); err != nil {
		return err
	}
	if err := c.Store.validate(); err != nil {
		return err
	}
	if err := c.Analysis.validate(); err != nil {
		return err
	}
	return nil
}

func (a *AppConfig) validate() error {
	if strings.TrimSpace(a.HTTPAddr) == "" {
		return fmt.Errorf("app.http_addr cannot be empty")
	}
	switch strings.ToLower(strings.TrimSpace(a.LogLevel)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("app.log_level must be one of debug/info/warn/error, got %s", a.LogLevel)
	}
	return nil
}

func (a *AIConfig) validate() error {
	if !a.Enabled {
		return nil
	}
	if a.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("ai.request_timeout_seconds must be > 0")
	}
	if a.RateLimitPerMin <= 0 {
		return fmt.Errorf("ai.rate_limit_per_min must be > 0")
	}
	models, err := a.ResolveModelConfigs()
	if err != nil {
		return err
	}
	for _, m := range models {
		if !m.Enabled {
			continue
		}
		if strings.TrimSpace(m.Model) == "" {
			return fmt.Errorf("ai.models contains entry without model (id=%s)", m.ID)
		}
		if strings.TrimSpace(m.APIURL) == "" {
			return fmt.Errorf("ai.models.%s missing api_url (can inherit from preset)", m.ID)
		}
		if strings.TrimSpace(m.Provider) == "" {
			return fmt.Errorf("ai.models.%s missing provider", m.ID)
		}
	}
	return nil
}

func (c *ChainConfig) validate() error {
	if strings.TrimSpace(c.Network) == "" {
		return fmt.Errorf("chain.network cannot be empty")
	}
	if !c.Mock && strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("chain.api_url required when chain.mock is false")
	}
	if c.RefreshSeconds <= 0 {
		return fmt.Errorf("chain.refresh_seconds must be > 0")
	}
	return nil
}

func (s *StoreConfig) validate() error {
	if s.Disabled {
		return nil
	}
	if strings.TrimSpace(s.Path) == "" {
		return fmt.Errorf("store.path cannot be empty (or set store.disabled)")
	}
	return nil
}

func (a *AnalysisConfig) validate() error {
	if a.SubTimeoutSeconds <= 0 {
		return fmt.Errorf("analysis.sub_timeout_seconds must be > 0")
	}
	return nil
}
