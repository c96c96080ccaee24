package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KiloProjects/blogfront"
	"github.com/KiloProjects/blogfront/integrations/otel"
	"github.com/KiloProjects/blogfront/integrations/prometheus"
	"github.com/KiloProjects/blogfront/internal/blogapi"
	"github.com/KiloProjects/blogfront/internal/config"
	"github.com/KiloProjects/blogfront/internal/session"
	"github.com/KiloProjects/blogfront/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

var (
	confPath = flag.String("config", "./config.toml", "Config path")
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Println("Couldn't load .env file:", err)
	}
	flag.Parse()
	if val, ok := os.LookupEnv("BLOGFRONT_CONFIG"); ok && val != "" {
		*confPath = val
	}

	if err := config.Load(*confPath); err != nil {
		log.Fatal(err)
	}
	// save the config for formatting
	if err := config.Save(*confPath); err != nil {
		log.Fatal(err)
	}

	if err := os.MkdirAll(config.Common.LogDir, 0755); err != nil {
		log.Fatal(err)
	}
	slog.SetDefault(blogfront.NewLogger(config.Common.Debug, os.Stdout, config.Common.LogDir))

	if err := config.LoadConfigV2(context.Background()); err != nil {
		slog.Error("Couldn't load flags", slog.Any("err", err))
		os.Exit(1)
	}

	if err := run(); err != nil {
		slog.Error("Exiting", slog.Any("err", err))
		os.Exit(1)
	}
}

func newSessionStore(ctx context.Context) (session.Store, error) {
	switch config.Session.Backend {
	case "redis":
		return session.NewRedisStore(ctx, config.Session.RedisOptions())
	default:
		return session.NewMemoryStore(config.Session.MaxSessions)
	}
}

func run() error {
	slog.Info("Starting blogfront", slog.String("version", blogfront.Version))
	if config.Common.Debug {
		slog.Warn("Debug mode activated, expect more verbose logs")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := otel.Init(ctx)
	if err != nil {
		return fmt.Errorf("could not set up tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			slog.Warn("Couldn't flush traces", slog.Any("err", err))
		}
	}()

	prometheus.InitMetrics()

	api, err := blogapi.New(config.API.BaseURL, config.API.TimeoutDuration())
	if err != nil {
		return err
	}

	store, err := newSessionStore(ctx)
	if err != nil {
		return fmt.Errorf("could not set up session store: %w", err)
	}
	sessions := session.NewManager(store)
	defer sessions.Close()
	slog.Info("Session store ready", slog.String("backend", config.Session.Backend))

	// Initialize router
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Timeout(20 * time.Second))
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  log.New(blogfront.RotatingLog(config.Common.LogDir, "access.log"), "", 0),
		NoColor: true,
	}))

	r.Mount("/", web.NewWeb(api, sessions, web.Options{
		PublicURL:    config.Common.PublicURL,
		SecureCookie: config.Session.SecureCookie,
	}).Handler())

	// for graceful setup and shutdown
	server := &http.Server{
		Addr:              config.Common.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	slog.Info("Successfully started", slog.String("addr", config.Common.ListenAddr))

	select {
	case <-ctx.Done():
	case err := <-errC:
		return err
	}

	slog.Info("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
