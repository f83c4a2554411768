package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sigcat/sigcat/internal/catalog"
	"github.com/sigcat/sigcat/internal/config"
	"github.com/sigcat/sigcat/internal/platform/db"
	"github.com/sigcat/sigcat/internal/platform/docstore"
	"github.com/sigcat/sigcat/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "catalog-server",
		Short: "Procedure catalog import and query server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(importCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the catalog API server",
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

	var migrationsDir string

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, migrationsDir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return err
			}
			logger.Info().Int("applied", count).Msg("migrations complete")
			return nil
		},
	}
	upCmd.Flags().StringVar(&migrationsDir, "dir", "migrations", "migrations directory")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, migrationsDir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Printf("%3d  %-40s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	}
	statusCmd.Flags().StringVar(&migrationsDir, "dir", "migrations", "migrations directory")

	cmd.AddCommand(upCmd)
	cmd.AddCommand(statusCmd)
	return cmd
}

func importCmd() *cobra.Command {
	var (
		treeFile   string
		importedBy string
		source     string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import one extractor tree file as a catalog snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			body, err := os.ReadFile(treeFile)
			if err != nil {
				return fmt.Errorf("read tree file: %w", err)
			}
			var tree catalog.Tree
			if err := json.Unmarshal(body, &tree); err != nil {
				return fmt.Errorf("parse tree file: %w", err)
			}

			ctx := context.Background()
			store, pool, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}
			if pool != nil {
				defer pool.Close()
			}

			registry := catalog.NewRegistry(store)
			importer := catalog.NewImporter(store, registry, cfg.BatchSize, logger)

			if source == "" {
				source = treeFile
			}
			rec, err := importer.RunImport(ctx, &tree, catalog.ImportMeta{
				ImportedBy:       importedBy,
				SourceDescriptor: source,
			})
			if err != nil {
				return err
			}
			logger.Info().
				Str("competence", rec.Competence).
				Int("items", rec.ItemCount).
				Msg("import succeeded")
			return nil
		},
	}
	cmd.Flags().StringVar(&treeFile, "file", "", "extractor tree JSON file (required)")
	cmd.Flags().StringVar(&importedBy, "by", "cli", "author recorded on the import")
	cmd.Flags().StringVar(&source, "source", "", "source descriptor (defaults to the file name)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	store, pool, err := newStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open document store")
	}
	if pool != nil {
		defer pool.Close()
		logger.Info().Msg("connected to database")
	}

	registry := catalog.NewRegistry(store)
	query := catalog.NewQueryService(store)
	importer := catalog.NewImporter(store, registry, cfg.BatchSize, logger)
	handler := catalog.NewHandler(query, registry, importer)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))

	apiV1 := e.Group("/api/v1")
	handler.RegisterRoutes(apiV1)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}

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

func newLogger() zerolog.Logger {
	if os.Getenv("ENV") == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// newStore opens the configured backend. The pool is non-nil only for the
// postgres backend; callers own closing it.
func newStore(ctx context.Context, cfg *config.Config) (docstore.Store, *pgxpool.Pool, error) {
	switch cfg.StoreBackend {
	case "memory":
		return docstore.NewMemoryStore(), nil, nil
	default:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		return docstore.NewPostgresStore(pool), pool, nil
	}
}
