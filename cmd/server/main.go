package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tendant/simple-release/pkg/simplerelease"
	"github.com/tendant/simple-release/pkg/simplerelease/api"
	"github.com/tendant/simple-release/pkg/simplerelease/config"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	repo, err := cfg.BuildRepository(ctx)
	if err != nil {
		slog.Error("Failed to initialize repository", "err", err)
		os.Exit(1)
	}

	// Storage roots are created here, before any request is accepted.
	coverStore, audioStore, err := cfg.BuildBlobStores()
	if err != nil {
		slog.Error("Failed to initialize blob storage", "err", err)
		os.Exit(1)
	}

	coverResolver, audioResolver := cfg.BuildResolvers()

	svc, err := simplerelease.New(
		simplerelease.WithRepository(repo),
		simplerelease.WithBlobStore(simplerelease.ArtifactCoverArt, coverStore),
		simplerelease.WithBlobStore(simplerelease.ArtifactAudio, audioStore),
		simplerelease.WithURLResolver(simplerelease.ArtifactCoverArt, coverResolver),
		simplerelease.WithURLResolver(simplerelease.ArtifactAudio, audioResolver),
		simplerelease.WithUploadLimits(cfg.UploadLimits()),
	)
	if err != nil {
		slog.Error("Failed to create release service", "err", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	coverPrefix, audioPrefix := cfg.ArtifactKeyPrefixes()
	r.Mount("/api", api.NewReleaseHandler(svc, cfg.MaxRequestBodySize).Routes())
	r.Mount("/media", api.NewMediaHandler(coverStore, audioStore, coverPrefix, audioPrefix).Routes())

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting release service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
	}
}
