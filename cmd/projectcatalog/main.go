package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/projectcatalog/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/projectcatalog/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/projectcatalog/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/projectcatalog/internal/adapter/driving/web"
	"github.com/ericfisherdev/projectcatalog/internal/application"
	"github.com/ericfisherdev/projectcatalog/internal/config"
	"github.com/ericfisherdev/projectcatalog/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on malformed env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"refresh_interval", cfg.RefreshInterval,
		"github_token", cfg.HasGitHubToken(),
		"token_storage", cfg.SecretKey() != nil,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	logger.Info("database opened", "path", db.Path())

	// 4. Run migrations on writer connection.
	version, err := sqliteadapter.RunMigrations(db.Writer)
	if err != nil {
		return err
	}
	logger.Info("migrations complete", "version", version)

	// 5. Wire adapters.
	projectStore := sqliteadapter.NewProjectRepo(db)

	credentialStore, err := sqliteadapter.NewCredentialRepo(db, cfg.SecretKey())
	if err != nil {
		return err
	}

	// 6. Create the GitHub client provider. A stored token takes priority over
	// the environment; with neither, enrichment and refresh stay idle until a
	// token is set through the API.
	provider := application.NewGitHubClientProvider(nil)
	credentialSvc := application.NewCredentialService(credentialStore, provider, newGitHubClient, logger)
	if err := credentialSvc.Restore(ctx, cfg.GitHubToken); err != nil {
		return err
	}

	// 7. Create services and start the refresh loop.
	projectSvc := application.NewProjectService(projectStore, provider, logger)
	refreshSvc := application.NewRefreshService(projectStore, provider, cfg.RefreshInterval)
	go refreshSvc.Start(ctx)

	// 8. Register API and GUI routes on one mux.
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(projectSvc, refreshSvc, credentialSvc, logger))
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(projectSvc, logger))

	handler := httphandler.ApplyMiddleware(mux, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	logger.Info("projectcatalog started",
		"listen_addr", cfg.ListenAddr,
		"refresh_interval", cfg.RefreshInterval,
	)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	logger.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func newGitHubClient(token string) driven.GitHubClient {
	return githubadapter.NewClient(token)
}
