package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/store-management/internal/auth"
	"github.com/frahmantamala/store-management/internal/cache"
	"github.com/frahmantamala/store-management/internal/store"
	"github.com/frahmantamala/store-management/internal/transport"
	"github.com/frahmantamala/store-management/internal/transport/rest"
	"github.com/frahmantamala/store-management/internal/user"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	app := mustApp(context.Background())

	if err := app.bootstrap(context.Background()); err != nil {
		fatal("failed to bootstrap database", err)
	}

	router := chi.NewRouter()
	setupRoutes(app, router)

	cfg := app.Config.Server
	addr := fmt.Sprintf(":%d", cfg.Port)
	app.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		app.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			app.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("Server failed to start", "error", err)
			_ = app.Close()
			os.Exit(1)
		}
	}

	if err := app.Close(); err != nil {
		app.Logger.Error("Shutdown cleanup error", "error", err)
	}
	app.Logger.Info("Server stopped")
}

func setupRoutes(app *App, router *chi.Mux) {
	lg := app.Logger
	checker := auth.NewPermissionChecker(app.Repo.Stores())

	checks := map[string]rest.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := app.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if r, ok := app.Cache.(*cache.Redis); ok {
		checks["redis"] = r.Ping
	}

	metricsPath := ""
	if app.Config.Observability.Metrics.Enabled {
		metricsPath = app.Config.Observability.Metrics.Path
	}

	rest.RegisterAllRoutes(router, rest.Handlers{
		Health: rest.NewHealthHandler(transport.NewBaseHandler(lg), checks),
		Auth:   auth.NewHandler(app.Auth, lg),
		Users:  user.NewHandler(app.Users, lg),
		Stores: store.NewHandler(app.Stores, app.Repo.Users(), checker, lg),
		RBAC:   auth.NewRBACAuthorization(checker, lg),
	}, rest.RouterOptions{
		AllowedOrigins: app.Config.Server.AllowedOrigins,
		RequestTimeout: app.Config.Server.RequestTimeout,
		MetricsPath:    metricsPath,
	}, lg)
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
