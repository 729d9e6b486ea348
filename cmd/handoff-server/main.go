package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medxp/handoff/internal/config"
	"github.com/medxp/handoff/internal/domain/enrichment"
	"github.com/medxp/handoff/internal/domain/knowledge"
	"github.com/medxp/handoff/internal/platform/auth"
	"github.com/medxp/handoff/internal/platform/llm"
	"github.com/medxp/handoff/internal/platform/middleware"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "handoff-server",
		Short: "Clinical handoff enrichment API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(kbCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the enrichment API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func kbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Knowledge base utilities",
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the configured knowledge bases and report item counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
			store := knowledge.Load(knowledge.SourcePaths{
				SOPs:       cfg.SOPsPath,
				Policies:   cfg.PoliciesPath,
				Guidelines: cfg.GuidelinesPath,
			}, logger)

			stats := store.Stats()
			fmt.Printf("%-12s %-8s %s\n", "SOURCE", "ITEMS", "VERSION")
			fmt.Printf("%-12s %-8d %s\n", "sops", stats.SOPs.Count, stats.SOPs.Version)
			fmt.Printf("%-12s %-8d %s\n", "policies", stats.Policies.Count, stats.Policies.Version)
			fmt.Printf("%-12s %-8d %s\n", "guidelines", stats.Guidelines.Count, stats.Guidelines.Version)
			return nil
		},
	}
	cmd.AddCommand(validateCmd)
	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Knowledge store: loaded once, shared read-only across requests.
	store := knowledge.Load(knowledge.SourcePaths{
		SOPs:       cfg.SOPsPath,
		Policies:   cfg.PoliciesPath,
		Guidelines: cfg.GuidelinesPath,
	}, logger)
	retriever := knowledge.NewRetriever(cfg.RelevanceThreshold, cfg.RetrievalTopK)

	// Summarizer: remote client when a key is configured, deterministic
	// fallback otherwise. The client degrades to the fallback on its own
	// when calls fail.
	var summarizer enrichment.Summarizer
	if cfg.LLMAPIKey != "" {
		summarizer = llm.NewClient(llm.Config{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout(),
		}, logger)
		logger.Info().Str("model", cfg.LLMModel).Msg("remote summarizer configured")
	} else {
		summarizer = llm.NewFallback()
		logger.Info().Msg("no LLM API key set, using deterministic summarizer")
	}

	svc := enrichment.NewService(store, retriever, summarizer, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			SigningKey: []byte(cfg.AuthSigningKey),
		}))
	}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "handoff-enrichment",
			"version": version,
		})
	})

	// API group
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))
	apiV1.Use(middleware.RequestTimeout(cfg.RequestTimeout()))
	apiV1.Use(auth.RequireRole("clinician", "nurse", "physician"))

	enrichment.NewHandler(svc).RegisterRoutes(apiV1)
	knowledge.NewHandler(store).RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
