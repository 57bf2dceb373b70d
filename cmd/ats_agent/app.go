package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/ats-optimizer/internal/advisor"
	"github.com/jonathan/ats-optimizer/internal/analysis"
	"github.com/jonathan/ats-optimizer/internal/config"
	"github.com/jonathan/ats-optimizer/internal/db"
	"github.com/jonathan/ats-optimizer/internal/extract"
	"github.com/jonathan/ats-optimizer/internal/fetch"
	"github.com/jonathan/ats-optimizer/internal/llm"
	"github.com/jonathan/ats-optimizer/internal/logging"
	"github.com/jonathan/ats-optimizer/internal/observability"
	"github.com/jonathan/ats-optimizer/internal/revision"
	"github.com/jonathan/ats-optimizer/internal/sections"
	"github.com/jonathan/ats-optimizer/internal/session"
)

// contentService is what the commands need from the content service.
type contentService interface {
	analysis.Decomposer
	revision.ContentService
}

// newContentService builds the content service; tests replace it.
var newContentService = func(client llm.Client, logger *zap.Logger) contentService {
	return advisor.New(client, logger)
}

// app holds the collaborators shared by every command.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	snapshots db.SnapshotStore
	client    llm.Client
	gateway   *llm.Gateway
	service   contentService
	analyzer  *analysis.Analyzer
	extractor *extract.Extractor
	jobs      fetch.JobFetcher
	printer   *observability.Printer
}

// loadConfig reads the config file, then the environment, then explicit flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("db-url") {
		cfg.DatabaseURL = rootDBURL
	}
	if flags.Changed("namespace") {
		cfg.Namespace = rootNamespace
	}
	if flags.Changed("api-key") {
		cfg.APIKey = rootAPIKey
	}
	if flags.Changed("template") {
		cfg.Template = rootTemplate
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = rootBrowser
	}
	if flags.Changed("verbose") {
		cfg.Verbose = rootVerbose
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp wires the application from configuration. Close must be called.
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	snapshots, err := db.Open(ctx, cfg.SnapshotDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}

	client := llm.NewLazyClient(cfg.LLMConfig(), cfg.APIKey)
	gateway := llm.NewGateway(cfg.RetryPolicy(), logger)
	service := newContentService(client, logger)

	var renderer fetch.Renderer
	if cfg.UseBrowser {
		renderer = fetch.NewChromeRenderer(logger)
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		snapshots: snapshots,
		client:    client,
		gateway:   gateway,
		service:   service,
		analyzer:  analysis.NewAnalyzer(service, gateway, cfg.Weights(), logger),
		extractor: extract.NewExtractor(logger),
		jobs:      fetch.NewCachedFetcher(fetch.NewFetcher(nil, renderer, logger), fetch.DefaultCacheTTL),
		printer:   observability.NewPrinter(cmd.OutOrStdout()),
	}, nil
}

// newSession builds an empty session for namespace with its own section store.
func (a *app) newSession(namespace string) *session.Session {
	return session.New(session.Config{
		Namespace:   namespace,
		Snapshots:   a.snapshots,
		Analyzer:    a.analyzer,
		Coordinator: revision.NewCoordinator(sections.NewStore(a.logger), a.service, a.gateway, a.logger),
		Extractor:   a.extractor,
		Render:      a.cfg.RenderOptions(),
		Logger:      a.logger,
	})
}

// openSession restores the configured namespace.
func (a *app) openSession(ctx context.Context) (*session.Session, error) {
	s := a.newSession(a.cfg.Namespace)
	if err := s.Restore(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// requireResume fails when no résumé has been analyzed in s yet.
func requireResume(s *session.Session) error {
	if _, ok := s.Analysis(); !ok {
		return errors.New("no résumé analyzed yet: run 'ats_agent analyze <file>' first")
	}
	return nil
}

// Close releases the client and the snapshot store.
func (a *app) Close() {
	if err := a.client.Close(); err != nil {
		a.logger.Warn("failed to close LLM client", zap.Error(err))
	}
	if err := a.snapshots.Close(); err != nil {
		a.logger.Warn("failed to close snapshot store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// withSession runs fn against the restored session.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, a *app, s *session.Session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, a, s)
}
