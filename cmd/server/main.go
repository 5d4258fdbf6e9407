// Package main initializes and starts the MapKeeper HTTP server,
// setting up configuration, logging, database connections, repositories,
// services, handlers, metrics and optional TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/MapKeeper/internal/auth"
	"github.com/atinyakov/MapKeeper/internal/config"
	"github.com/atinyakov/MapKeeper/internal/db"
	"github.com/atinyakov/MapKeeper/internal/logger"
	"github.com/atinyakov/MapKeeper/internal/repository"
	"github.com/atinyakov/MapKeeper/internal/server/handler/http"
	"github.com/atinyakov/MapKeeper/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, file and environment configuration.
	options, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	db.StartSessionCleaner(ctx, postgresDB,
		options.CleanupInterval.Duration,
		options.SessionRetention.Duration,
		zapLogger,
	)

	authRepo := repository.NewPostgresAuthRepository(postgresDB)
	locationRepo := repository.NewPostgresLocationRepository(postgresDB)

	tokens := auth.NewTokenManager(options.JWTSecret, options.TokenTTL.Duration)
	authService := service.NewAuthService(authRepo, tokens, zapLogger)
	locationService := service.NewLocationService(locationRepo, zapLogger)

	authHandler := &http.AuthHandler{AuthService: authService}
	locationHandler := &http.LocationHandler{LocationService: locationService}
	dataHandler := &http.DataHandler{Path: options.DataFile}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := http.NewRouter(authHandler, locationHandler, dataHandler, zapLogger, http.RouterOptions{
		APIKey:     options.APIKey,
		Authorizer: authService,
		Registry:   registry,
	})

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSCert != "" && options.TLSKey != "" {
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server failed", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
