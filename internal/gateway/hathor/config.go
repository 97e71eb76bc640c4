package hathor

import (
	"strings"
	"time"
)

type Config struct {
	Network    string
	NodeURL    string
	BridgeURL  string
	RefreshTTL time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	out.Network = strings.TrimSpace(out.Network)
	if out.Network == "" {
		out.Network = "testnet"
	}
	out.NodeURL = strings.TrimSpace(out.NodeURL)
	if out.NodeURL == "" {
		out.NodeURL = "https://node1.testnet.hathor.network/"
	}
	out.BridgeURL = strings.TrimSpace(out.BridgeURL)
	if out.BridgeURL == "" {
		out.BridgeURL = "https://evm-bridge.testnet.hathor.network/"
	}
	if out.RefreshTTL <= 0 {
		out.RefreshTTL = 5 * time.Minute
	}
	return out
}
