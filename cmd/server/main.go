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

	"connectrpc.com/connect"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/rachadinha/internal/auth"
	"github.com/mmynk/rachadinha/internal/config"
	"github.com/mmynk/rachadinha/internal/httpapi"
	"github.com/mmynk/rachadinha/internal/metrics"
	"github.com/mmynk/rachadinha/internal/middleware"
	"github.com/mmynk/rachadinha/internal/service"
	"github.com/mmynk/rachadinha/internal/storage"
	"github.com/mmynk/rachadinha/internal/storage/postgres"
	"github.com/mmynk/rachadinha/internal/storage/sqlite"
	"github.com/mmynk/rachadinha/pkg/api"
	"github.com/mmynk/rachadinha/pkg/logging"
)

func main() {
	// Setup structured logging
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.StorageDriver)

	m := metrics.New()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	// Register Connect services
	interceptors := func(authInterceptor connect.UnaryInterceptorFunc) connect.HandlerOption {
		return connect.WithInterceptors(
			middleware.MetricsInterceptor(m),
			authInterceptor,
			middleware.LoggingInterceptor(),
		)
	}

	sessions := service.NewSessionService(store, jwtManager, service.Defaults{
		FlatFee:              cfg.DefaultFlatFee,
		ServiceChargePercent: cfg.DefaultServiceCharge,
	}, m)
	// Joining by invite code needs no account
	sessionAuth := middleware.RequireAuth(jwtManager, api.SessionServiceJoinSessionProcedure)
	sessionPath, sessionHandler := api.NewSessionServiceHandler(sessions, interceptors(sessionAuth))

	authSvc := service.NewAuthService(auth.NewPasswordAuthenticator(store, cfg.AdminEmails...), store, jwtManager, slog.Default())
	authPath, authHandler := api.NewAuthServiceHandler(authSvc, interceptors(middleware.OptionalAuth(jwtManager)))

	router := httpapi.New(sessions, jwtManager, m)
	router.Mount(sessionPath, sessionHandler)
	router.Mount(authPath, authHandler)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms"},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms"},
	}).Handler(middleware.LogRequests(router))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	h2cHandler := h2c.NewHandler(corsHandler, &http2.Server{})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h2cHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	slog.Info("Connect server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.StorageDriver == config.DriverPostgres {
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return store, nil
}
