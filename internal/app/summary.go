package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/RachelGanonNew/AIDA-Project/internal/config"
	"github.com/RachelGanonNew/AIDA-Project/internal/gateway/provider"
	"github.com/RachelGanonNew/AIDA-Project/internal/prompt"
	"github.com/RachelGanonNew/AIDA-Project/internal/transport/http/api"
)

// StartupSummary is the operator-facing configuration digest printed once
// at startup.
type StartupSummary struct {
	HTTP  HTTPSummary
	Chain ChainSummary
	Store StoreSummary
	AI    AISummary
}

type HTTPSummary struct {
	Addr    string
	Origins []string
}

type ChainSummary struct {
	Network        string
	NodeURL        string
	Mock           bool
	RefreshSeconds int
}

type StoreSummary struct {
	Path     string
	Disabled bool
}

type AISummary struct {
	Generators        []string
	PromptOps         []string
	SubTimeoutSeconds int
}

func buildStartupSummary(cfg *config.Config, server *api.Server, generators []provider.TextGenerator, registry *prompt.Registry) *StartupSummary {
	ids := make([]string, 0, len(generators))
	for _, g := range generators {
		if g != nil && g.Enabled() {
			ids = append(ids, g.ID())
		}
	}
	var ops []string
	if registry != nil {
		snap := registry.Snapshot()
		ops = make([]string, 0, len(snap.Specs))
		for op := range snap.Specs {
			ops = append(ops, op)
		}
		sort.Strings(ops)
	}
	return &StartupSummary{
		HTTP: HTTPSummary{
			Addr:    server.Addr(),
			Origins: cfg.App.CORSOrigins,
		},
		Chain: ChainSummary{
			Network:        cfg.Chain.Network,
			NodeURL:        cfg.Chain.APIURL,
			Mock:           cfg.Chain.Mock,
			RefreshSeconds: cfg.Chain.RefreshSeconds,
		},
		Store: StoreSummary{
			Path:     cfg.Store.Path,
			Disabled: cfg.Store.Disabled,
		},
		AI: AISummary{
			Generators:        ids,
			PromptOps:         ops,
			SubTimeoutSeconds: cfg.Analysis.SubTimeoutSeconds,
		},
	}
}

func (s *StartupSummary) Print() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("%*s\n", 40+len("STARTUP SUMMARY")/2, "STARTUP SUMMARY")
	fmt.Println(strings.Repeat("=", 80))

	fmt.Println("[HTTP]")
	fmt.Printf("  listen addr:  %s\n", s.HTTP.Addr)
	fmt.Printf("  cors origins: %s\n", formatList(s.HTTP.Origins))
	fmt.Println()

	fmt.Println("[CHAIN]")
	fmt.Printf("  network:      %s\n", s.Chain.Network)
	fmt.Printf("  node:         %s\n", s.Chain.NodeURL)
	mode := "live"
	if s.Chain.Mock {
		mode = "mock dataset"
	}
	fmt.Printf("  mode:         %s\n", mode)
	fmt.Printf("  snapshot ttl: %ds\n", s.Chain.RefreshSeconds)
	fmt.Println()

	fmt.Println("[STORE]")
	if s.Store.Disabled {
		fmt.Println("  (disabled)")
	} else {
		fmt.Printf("  path:         %s\n", s.Store.Path)
	}
	fmt.Println()

	fmt.Println("[AI ANALYSIS]")
	if len(s.AI.Generators) == 0 {
		fmt.Println("  generators:   (none, heuristic fallbacks only)")
	} else {
		fmt.Printf("  generators:   %s\n", formatList(s.AI.Generators))
	}
	fmt.Printf("  prompt ops:   %s\n", formatList(s.AI.PromptOps))
	fmt.Printf("  sub timeout:  %ds\n", s.AI.SubTimeoutSeconds)
	fmt.Println(strings.Repeat("=", 80))
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
