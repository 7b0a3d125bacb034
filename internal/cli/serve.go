package cli

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cathoderay/accountsvc/internal/command"
	"github.com/cathoderay/accountsvc/internal/config"
	"github.com/cathoderay/accountsvc/internal/handler"
	"github.com/cathoderay/accountsvc/internal/middleware"
	"github.com/cathoderay/accountsvc/internal/profile"
	"github.com/cathoderay/accountsvc/internal/query"
	"github.com/cathoderay/accountsvc/internal/repository"
	"github.com/cathoderay/accountsvc/internal/token"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(load loader) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if port != "" {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides config and PORT)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// Account store (write side)
	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore(store, logger)
	if err := migrateStore(ctx, store, cfg.Store.Driver, logger); err != nil {
		return err
	}

	// Redis (read model + event streaming)
	rm, err := openReadModel(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer func() { _ = rm.close() }()

	tokens, err := token.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration, cfg.Auth.Issuer)
	if err != nil {
		return err
	}
	profiles := profile.NewGraphClient(profile.GraphConfig{
		BaseURL: cfg.Facebook.GraphURL,
		Version: cfg.Facebook.Version,
		Timeout: cfg.Facebook.Timeout.Duration,
	}, logger)

	// --- CQRS wiring ---
	readRepo := repository.NewAccountReadRepository(store, rm.cache)
	commandSvc := command.NewAccountCommandService(store, readRepo, rm.publisher, logger)
	querySvc := query.NewAccountQueryService(readRepo, profiles)
	authSvc := query.NewAuthQueryService(store, tokens)

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handler.RouterConfig{
		Accounts:     handler.NewAccountHandler(commandSvc, querySvc, logger),
		Auth:         handler.NewAuthHandler(authSvc, logger),
		Authenticate: middleware.AuthMiddleware(tokens),
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("account service starting",
			zap.String("port", cfg.Server.Port),
			zap.String("store", cfg.Store.Driver),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	// Graceful shutdown
	logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout.Duration))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}
	return nil
}

func closeStore(store repository.AccountStore, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		logger.Warn("failed to close account store", zap.Error(err))
	}
}
