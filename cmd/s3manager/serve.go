package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/s3manager"
	"github.com/sagarc03/s3manager/auth"
	"github.com/sagarc03/s3manager/config"
	"github.com/sagarc03/s3manager/database"
	s3http "github.com/sagarc03/s3manager/http"
	"github.com/sagarc03/s3manager/objectstore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the s3manager HTTP server.

The server starts even if the configuration store is unreachable. Requests
that need it answer 503 store_unavailable until a connection succeeds.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5780, "HTTP server port (env: S3MANAGER_SERVER_PORT)")
	serveCmd.Flags().String("auth-mode", "", "token verification: oidc, jwt (env: S3MANAGER_AUTH_MODE)")
	serveCmd.Flags().Bool("auto-migrate", true, "create missing tables on first connect (env: S3MANAGER_DATABASE_AUTO_MIGRATE)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	store := database.NewLazy(cfg.Database)
	defer func() { _ = store.Close() }()

	if err := store.Ping(ctx); err != nil {
		slog.Warn("configuration store not reachable at startup", "type", cfg.Database.Type, "err", err)
	}

	creds := s3manager.NewCredentialStore(store)

	open, err := newOpener(cfg.Storage)
	if err != nil {
		return err
	}

	gateway, err := s3manager.NewObjectGateway(open, s3manager.GatewayConfig{
		MaxContentBytes: cfg.Storage.MaxContentBytes,
	})
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	broker, err := s3manager.NewUploadBroker(open, s3manager.BrokerConfig{
		UploadTTL:   cfg.Storage.UploadTTL,
		DownloadTTL: cfg.Storage.DownloadTTL,
	})
	if err != nil {
		return fmt.Errorf("create broker: %w", err)
	}

	verifier, err := newVerifier(ctx, cfg.Auth)
	if err != nil {
		return err
	}

	handler := s3http.NewHandler(&s3http.HandlerConfig{
		Verifier:     verifier,
		CORS:         cfg.CORS,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	}, creds, gateway, broker)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server",
		"addr", addr,
		"env", cfg.Env,
		"database", cfg.Database.Type,
		"storage", cfg.Storage.Driver,
		"auth", cfg.Auth.Mode,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

func newOpener(cfg config.StorageConfig) (s3manager.Opener, error) {
	open, err := objectstore.NewOpener(objectstore.Options{
		Driver:       cfg.Driver,
		Endpoint:     cfg.Endpoint,
		UsePathStyle: cfg.UsePathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("create opener: %w", err)
	}
	return open, nil
}

func newVerifier(ctx context.Context, cfg config.AuthConfig) (auth.Verifier, error) {
	switch cfg.Mode {
	case "oidc":
		v, err := auth.NewOIDCVerifier(ctx, auth.OIDCConfig{
			IssuerURL: cfg.Issuer,
			ClientID:  cfg.ClientID,
		})
		if err != nil {
			return nil, fmt.Errorf("create verifier: %w", err)
		}
		return v, nil
	case "jwt":
		v, err := auth.NewJWTVerifier(jwtConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("create verifier: %w", err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("create verifier: unsupported auth mode: %s", cfg.Mode)
	}
}

func jwtConfig(cfg config.AuthConfig) auth.JWTConfig {
	return auth.JWTConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.Issuer,
		Audience: cfg.Audience,
	}
}
