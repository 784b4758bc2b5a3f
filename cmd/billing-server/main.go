package main

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medbill/medbill/internal/config"
	"github.com/medbill/medbill/internal/domain/claims"
	"github.com/medbill/medbill/internal/domain/decision"
	"github.com/medbill/medbill/internal/domain/encounter"
	"github.com/medbill/medbill/internal/domain/fees"
	"github.com/medbill/medbill/internal/domain/sequence"
	"github.com/medbill/medbill/internal/domain/terminology"
	"github.com/medbill/medbill/internal/platform/audit"
	"github.com/medbill/medbill/internal/platform/auth"
	"github.com/medbill/medbill/internal/platform/db"
	"github.com/medbill/medbill/internal/platform/middleware"
	"github.com/medbill/medbill/internal/platform/suggest"
	"github.com/medbill/medbill/internal/platform/x12"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "billing-server",
		Short: "Medical billing decision and claim generation server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the billing API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

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
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

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
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			SigningKey: []byte(cfg.JWTSecret),
		}))
	}

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")

	auditor := audit.NewEmitter(logger, nil)

	// Fee resolution
	feeRepo := fees.NewRepoPG(pool)
	defaultFee := fees.Cents(math.Round(cfg.FeeDefaultAmount * 100))
	tierTimeout := time.Duration(cfg.FeeTierTimeoutMS) * time.Millisecond
	resolver := fees.NewResolver(feeRepo, defaultFee, tierTimeout, auditor, logger)
	feeHandler := fees.NewHandler(resolver)
	feeHandler.RegisterRoutes(apiV1)

	// Terminology domain
	cptRepo := terminology.NewCPTRepoPG(pool)
	icd10Repo := terminology.NewICD10RepoPG(pool)
	hcpcsRepo := terminology.NewHCPCSRepoPG(pool)
	modRepo := terminology.NewModifierRepoPG(pool)
	termSvc := terminology.NewService(cptRepo, icd10Repo, hcpcsRepo, modRepo)
	termHandler := terminology.NewHandler(termSvc)
	termHandler.RegisterRoutes(apiV1)

	// Decision engine
	thresholds := decision.Thresholds{
		AutoApprove: cfg.AutoApproveConfidence,
		Review:      cfg.ReviewConfidence,
	}
	engine := decision.NewEngine(cptRepo, resolver, thresholds, auditor, logger)

	// X12 serialization
	sequencer := sequence.NewPGSequencer(pool)
	serializer := x12.NewSerializer(x12.Envelope{
		SenderID:     cfg.X12SenderID,
		ReceiverID:   cfg.X12ReceiverID,
		SenderName:   cfg.X12SenderName,
		ReceiverName: cfg.X12ReceiverName,
		Production:   cfg.X12ProductionUse,
	}, sequencer)

	// Coding-suggestion collaborators. Either may be absent; the pipeline
	// runs on engine output alone.
	suggestTimeout := time.Duration(cfg.SuggestTimeoutMS) * time.Millisecond
	var aiSource suggest.Source
	if cfg.SuggestAIURL != "" {
		aiSource = suggest.NewAIClient(cfg.SuggestAIURL, suggestTimeout)
	}
	var sdohClient *suggest.SDOHClient
	if cfg.SuggestSDOHURL != "" {
		sdohClient = suggest.NewSDOHClient(cfg.SuggestSDOHURL, suggestTimeout)
	}

	// Claims domain
	clinicalRepo := encounter.NewRepoPG(pool)
	claimRepo := claims.NewRepoPG(pool)
	claimSvc := claims.NewService(claimRepo, clinicalRepo, engine, aiSource, sdohClient,
		claims.NewAssembler(resolver), serializer, pool, auditor, logger)
	claimHandler := claims.NewHandler(claimSvc)
	claimHandler.RegisterRoutes(apiV1)

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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
