package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/arcana/internal/api"
	authdomain "github.com/matiasleandrokruk/arcana/internal/domain/auth"
	"github.com/matiasleandrokruk/arcana/internal/domain/journal"
	"github.com/matiasleandrokruk/arcana/internal/domain/tarot"
	"github.com/matiasleandrokruk/arcana/internal/infra/config"
	"github.com/matiasleandrokruk/arcana/internal/infra/eventbus"
	"github.com/matiasleandrokruk/arcana/internal/infra/sqlite"
	"github.com/matiasleandrokruk/arcana/internal/server"
	pkgauth "github.com/matiasleandrokruk/arcana/pkg/auth"
)

const (
	shutdownTimeout = 15 * time.Second
	// writeSlack is added to the LLM timeout so a slow model call can still be answered.
	writeSlack      = 15 * time.Second
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func (c *cli) serveCmd() *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Serve exposes the reading pipeline, the catalog, accounts and the reading
journal over HTTP. Configuration comes from the environment (HTTP_PORT,
DATABASE_PATH, XAI_API_KEY, OPENAI_API_KEY, JWT_SECRET, LOG_LEVEL, ...).`,
		Args: c.noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if cmd.Flags().Changed("host") {
				cfg.HTTPHost = host
			}
			if cmd.Flags().Changed("port") {
				cfg.HTTPPort = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, jsonLogger(c.errOut, cfg.LogLevel))
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides HTTP_HOST)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides HTTP_PORT)")
	return cmd
}

// serve runs the HTTP API until ctx is cancelled, then drains it.
func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if cfg.JWTSecret == config.DevJWTSecret {
		logger.Warn("JWT_SECRET not set, using the development secret")
	}

	catalog, err := tarot.LoadCatalog()
	if err != nil {
		return err
	}
	db, err := sqlite.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	tokens, err := pkgauth.NewIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		db.Close() //nolint:errcheck
		return fmt.Errorf("token issuer: %w", err)
	}

	bus := eventbus.New()
	journalCtx, stopJournal := context.WithCancel(context.WithoutCancel(ctx))
	store := journal.New(db, logger)
	journalDone := store.Start(journalCtx, bus)

	handler := api.NewRouter(api.Deps{
		Readings: newReadingService(cfg, bus, logger),
		Journal:  store,
		Auth:     authdomain.NewService(db, tokens, logger),
		Tokens:   tokens,
		Catalog:  catalog,
		Logger:   logger,
	})

	srvCfg := server.DefaultConfig()
	srvCfg.Host = cfg.HTTPHost
	srvCfg.Port = cfg.HTTPPort
	srvCfg.WriteTimeout = cfg.LLMTimeout + writeSlack

	drainJournal := closerFunc(func() error {
		stopJournal()
		<-journalDone
		return nil
	})
	srv := server.NewServer(handler, srvCfg, logger, drainJournal, db)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	select {
	case err := <-errCh:
		// The listener failed before any shutdown was requested.
		shutdownErr := srv.Shutdown(context.Background())
		return errors.Join(err, shutdownErr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
