package app

import (
	"context"
	"fmt"
	"time"

	"github.com/RachelGanonNew/AIDA-Project/internal/actions"
	"github.com/RachelGanonNew/AIDA-Project/internal/analyst"
	"github.com/RachelGanonNew/AIDA-Project/internal/config"
	"github.com/RachelGanonNew/AIDA-Project/internal/dao"
	"github.com/RachelGanonNew/AIDA-Project/internal/gateway/hathor"
	"github.com/RachelGanonNew/AIDA-Project/internal/gateway/provider"
	"github.com/RachelGanonNew/AIDA-Project/internal/logger"
	"github.com/RachelGanonNew/AIDA-Project/internal/prompt"
	"github.com/RachelGanonNew/AIDA-Project/internal/proposals"
	"github.com/RachelGanonNew/AIDA-Project/internal/scoring"
	"github.com/RachelGanonNew/AIDA-Project/internal/store/auditlog"
	"github.com/RachelGanonNew/AIDA-Project/internal/store/gormstore"
	"github.com/RachelGanonNew/AIDA-Project/internal/transport/http/api"
	"github.com/RachelGanonNew/AIDA-Project/internal/treasury"
)

// AppBuilder assembles the application in stages. The stage functions are
// swappable so harnesses can inject stub chains, generators or stores.
type AppBuilder struct {
	cfg *config.Config

	chainFn      func(config.ChainConfig) *hathor.Client
	registryFn   func(string) (*prompt.Registry, error)
	generatorsFn func(*config.AIConfig) []provider.TextGenerator
	storesFn     func(config.StoreConfig) (storeSet, error)

	recordsOverride *gormstore.Store
	auditOverride   *auditlog.Store
}

type AppBuilderOption func(*AppBuilder)

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:          cfg,
		chainFn:      buildChainClient,
		registryFn:   prompt.NewRegistry,
		generatorsFn: provider.BuildGenerators,
		storesFn:     buildStores,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	logger.SetLevel(cfg.App.LogLevel)

	chain := b.chainFn(cfg.Chain)
	logger.Infof("✓ chain client ready network=%s mock=%t refresh=%ds",
		cfg.Chain.Network, cfg.Chain.Mock, cfg.Chain.RefreshSeconds)

	registry, err := b.registryFn(cfg.AI.PromptsPath)
	if err != nil {
		return nil, fmt.Errorf("loading prompts failed: %w", err)
	}

	generators := b.generatorsFn(&cfg.AI)
	if len(generators) == 0 {
		logger.Warnf("no AI generator enabled, analysis runs on heuristic fallbacks")
	} else {
		logger.Infof("✓ %d AI generator(s) enabled", len(generators))
	}

	orchestrator := analyst.NewOrchestrator(
		generators,
		registry,
		analyst.NewFallback(cfg.Analysis.FallbackSeed),
		analyst.NewPredictor(),
		time.Duration(cfg.Analysis.SubTimeoutSeconds)*time.Second,
	)

	stores, err := b.resolveStores(cfg.Store)
	if err != nil {
		return nil, err
	}

	engine := scoring.NewEngine(scoring.NewAssetClassifier())
	daoSvc := dao.NewService(chain, engine)
	treasurySvc := treasury.NewService(chain, engine)

	// An absent store leaves the interface nil so services degrade instead
	// of calling through a typed nil.
	var analysisStore proposals.AnalysisStore
	if stores.records != nil {
		analysisStore = stores.records
		daoSvc.AttachRecorder(stores.records)
		treasurySvc.AttachRecorder(stores.records)
	}
	proposalSvc := proposals.NewService(chain, orchestrator, analysisStore)

	dispatcher := actions.NewDispatcher(chain)
	if stores.audit != nil {
		dispatcher.AttachAudit(auditlog.NewRecorder(stores.audit))
	}

	router := api.NewRouter(api.RouterConfig{
		DAO:       daoSvc,
		Treasury:  treasurySvc,
		Proposals: proposalSvc,
		Actions:   dispatcher,
		Chain:     chain,
	})
	server, err := api.NewServer(api.ServerConfig{
		Addr:           cfg.App.HTTPAddr,
		AllowedOrigins: cfg.App.CORSOrigins,
		Router:         router,
	})
	if err != nil {
		return nil, fmt.Errorf("building api server failed: %w", err)
	}

	return &App{
		cfg:     cfg,
		server:  server,
		records: stores.records,
		audit:   stores.audit,
		Summary: buildStartupSummary(cfg, server, generators, registry),
	}, nil
}

func buildChainClient(cfg config.ChainConfig) *hathor.Client {
	if !cfg.Mock {
		logger.Warnf("[app] chain.mock=false requested, but only the embedded dataset is available; keeping mock reads")
	}
	return hathor.New(hathor.Config{
		Network:    cfg.Network,
		NodeURL:    cfg.APIURL,
		RefreshTTL: time.Duration(cfg.RefreshSeconds) * time.Second,
	})
}

// storeSet carries the store handles sharing one SQLite file.
type storeSet struct {
	records *gormstore.Store
	audit   *auditlog.Store
}

func (b *AppBuilder) resolveStores(cfg config.StoreConfig) (storeSet, error) {
	if b.recordsOverride != nil || b.auditOverride != nil {
		return storeSet{records: b.recordsOverride, audit: b.auditOverride}, nil
	}
	return b.storesFn(cfg)
}

func buildStores(cfg config.StoreConfig) (storeSet, error) {
	if cfg.Disabled {
		logger.Warnf("[app] persistence disabled, analyses and audit trail are not retained")
		return storeSet{}, nil
	}
	records, err := gormstore.New(cfg.Path)
	if err != nil {
		return storeSet{}, fmt.Errorf("opening record store failed: %w", err)
	}
	audit, err := auditlog.New(cfg.Path)
	if err != nil {
		_ = records.Close()
		return storeSet{}, fmt.Errorf("opening audit store failed: %w", err)
	}
	// Ride the Gorm connection: two handles on one SQLite file would fight
	// over the write lock.
	sqlDB, err := records.SQLDB()
	if err != nil {
		_ = audit.Close()
		_ = records.Close()
		return storeSet{}, fmt.Errorf("sharing store connection failed: %w", err)
	}
	if err := audit.UseExternalDB(sqlDB); err != nil {
		_ = audit.Close()
		_ = records.Close()
		return storeSet{}, fmt.Errorf("binding audit store failed: %w", err)
	}
	logger.Infof("✓ store ready path=%s", cfg.Path)
	return storeSet{records: records, audit: audit}, nil
}

func WithChainClient(fn func(config.ChainConfig) *hathor.Client) AppBuilderOption {
	return func(b *AppBuilder) {
		if fn != nil {
			b.chainFn = fn
		}
	}
}

func WithPromptRegistry(fn func(string) (*prompt.Registry, error)) AppBuilderOption {
	return func(b *AppBuilder) {
		if fn != nil {
			b.registryFn = fn
		}
	}
}

func WithGenerators(fn func(*config.AIConfig) []provider.TextGenerator) AppBuilderOption {
	return func(b *AppBuilder) {
		if fn != nil {
			b.generatorsFn = fn
		}
	}
}

func WithStorageOverrides(records *gormstore.Store, audit *auditlog.Store) AppBuilderOption {
	return func(b *AppBuilder) {
		if records != nil {
			b.recordsOverride = records
		}
		if audit != nil {
			b.auditOverride = audit
		}
	}
}
