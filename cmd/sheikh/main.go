package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/likhonsdevbd/sheikh-ai/internal/api"
	"github.com/likhonsdevbd/sheikh-ai/internal/app"
	"github.com/likhonsdevbd/sheikh-ai/internal/config"
	"github.com/likhonsdevbd/sheikh-ai/internal/health"
	"github.com/likhonsdevbd/sheikh-ai/internal/llm"
	"github.com/likhonsdevbd/sheikh-ai/internal/metrics"
	"github.com/likhonsdevbd/sheikh-ai/internal/notify"
	"github.com/likhonsdevbd/sheikh-ai/internal/session"
	"github.com/likhonsdevbd/sheikh-ai/internal/store"
	"github.com/likhonsdevbd/sheikh-ai/internal/tool"
)

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Logger = logger

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err == nil {
		zerolog.SetGlobalLevel(level)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Int("http_port", cfg.HTTPPort).
		Str("store_backend", cfg.StoreBackend).
		Bool("openai_enabled", cfg.OpenAIEnabled()).
		Bool("slack_enabled", cfg.SlackEnabled()).
		Msg("starting sheikh backend")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Persistence
	var repo store.Repository
	switch cfg.StoreBackend {
	case "sqlite":
		repo, err = store.NewSQLiteStore(cfg.SQLitePath, logger)
	default:
		repo, err = store.NewFileStore(cfg.DataDir, logger)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("failed to init session store")
	}
	defer repo.Close()

	// Health checker
	checker := health.NewChecker(logger)
	checker.Register("store", func(ctx context.Context) health.Status {
		if err := repo.Ping(ctx); err != nil {
			return health.StatusDown
		}
		return health.StatusOK
	})

	// Metrics
	m := metrics.New()

	// Session domain service
	sessions := session.NewService(repo, logger,
		session.WithCacheCapacity(cfg.CacheCapacity),
		session.WithMetrics(m),
	)

	// AI provider: OpenAI when a key is configured, a deterministic stub
	// otherwise so the chat endpoint always works.
	var provider llm.Provider
	if cfg.OpenAIEnabled() {
		provider = llm.NewOpenAIProvider(cfg.OpenAIAPIKey, logger,
			llm.WithModel(cfg.OpenAIModel),
			llm.WithMaxTokens(cfg.OpenAIMaxTokens),
		)
		logger.Info().Str("model", cfg.OpenAIModel).Msg("OpenAI provider initialized")
	} else {
		provider = llm.NewStubProvider()
		logger.Info().Msg("OpenAI not configured — using stub provider")
	}

	// Tools
	tools, err := config.LoadTools(cfg.ToolsFile)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.ToolsFile).Msg("failed to load tools file")
	}
	shell := tool.NewShellRunner(cfg.ShellWorkDir, cfg.ShellTimeout, tools.AllowedCommands, logger)
	files := tool.NewFileTool(logger)

	// Notifications
	var notifier notify.Notifier = notify.Noop{}
	if cfg.SlackEnabled() {
		notifier = notify.NewSlackNotifier(cfg.SlackBotToken, cfg.SlackChannel, logger)
		logger.Info().Str("channel", cfg.SlackChannel).Msg("Slack notifications enabled")
	}

	// Application service and dispatch
	svc := app.NewConversationService(sessions, provider, shell, files, notifier, m, logger)

	commands := app.NewCommandBus()
	app.RegisterCommandHandlers(commands, svc)
	queries := app.NewQueryBus()
	app.RegisterQueryHandlers(queries, svc)

	// HTTP server
	server := api.NewServer(api.ServerConfig{
		ListenAddr:      fmt.Sprintf(":%d", cfg.HTTPPort),
		CORSOrigins:     cfg.CORSOrigins,
		StreamStepDelay: cfg.StreamStepDelay,
	}, commands, queries, checker, m, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("api server error")
		}
	}()

	// Wait for shutdown signal
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")

	shutdownDone := make(chan struct{})
	go func() {
		if err := server.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("api server shutdown error")
		}
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		logger.Info().Msg("api server stopped")
	case <-time.After(10 * time.Second):
		logger.Warn().Msg("forced shutdown after timeout")
	}

	logger.Info().Msg("sheikh backend stopped")
}
