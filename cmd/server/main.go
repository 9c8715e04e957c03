package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/dgallion1/caseblog/internal/api"
	"github.com/dgallion1/caseblog/internal/cache"
	"github.com/dgallion1/caseblog/internal/config"
	"github.com/dgallion1/caseblog/internal/content"
	"github.com/dgallion1/caseblog/internal/page"
	"github.com/dgallion1/caseblog/internal/richtext"
	"github.com/dgallion1/caseblog/internal/sanity"
	"github.com/dgallion1/caseblog/internal/site"
	"github.com/dgallion1/caseblog/internal/warmer"
)

func main() {
	cfg := config.Load()
	level, _ := cfg.Level()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if _, err := maxprocs.Set(maxprocs.Logger(func(f string, args ...any) {
		log.Debug("maxprocs", "msg", f, "args", args)
	})); err != nil {
		log.Warn("maxprocs", "error", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Content source: local drafts win over Sanity when configured.
	var (
		src      content.Source
		images   richtext.ImageURLer
		upstream *sanity.Stats
		sc       *sanity.Client
	)
	if cfg.ContentDir != "" {
		local, err := content.NewLocalSource(ctx, cfg.ContentDir, log.With("component", "content"))
		if err != nil {
			log.Error("failed to load local content", "dir", cfg.ContentDir, "error", err)
			os.Exit(1)
		}
		src = local
		if cfg.SanityProjectID != "" {
			images = sanity.NewImageBuilder(cfg.SanityProjectID, cfg.SanityDataset)
		}
	} else {
		sc = sanity.NewClient(sanity.Config{
			ProjectID:  cfg.SanityProjectID,
			Dataset:    cfg.SanityDataset,
			APIVersion: cfg.SanityAPIVersion,
			UseCDN:     cfg.SanityUseCDN,
			Token:      cfg.SanityToken,
			Timeout:    cfg.SanityTimeout,
		}, log.With("component", "sanity"))
		src = sc
		images = sc.Images()
		upstream = sc.Stats()
	}

	store, err := cache.Open(cfg.CacheDir, cfg.Revalidate, log.With("component", "cache"))
	if err != nil {
		log.Error("failed to open cache", "error", err)
		os.Exit(1)
	}

	pages, err := page.New(src, page.Config{
		SiteURL: cfg.SiteURL,
		Render: richtext.Options{
			SiteDomain:     cfg.SiteDomain,
			Images:         images,
			ImageWidth:     cfg.ImageWidth,
			ImageHeight:    cfg.ImageHeight,
			Highlight:      cfg.HighlightCode,
			HighlightStyle: cfg.HighlightStyle,
		},
	}, log)
	if err != nil {
		log.Error("failed to load templates", "error", err)
		os.Exit(1)
	}
	st := site.New(src, pages, store, log.With("component", "site"))

	// Initialize warmer.
	orch := warmer.NewOrchestrator(warmer.Config{
		WorkerCount:         cfg.WorkerCount,
		MaxQueueSize:        cfg.MaxQueueSize,
		MaxConcurrentRender: cfg.MaxConcurrentRender,
		JobTTL:              cfg.JobTTL,
		Interval:            cfg.Revalidate,
	}, st, log.With("component", "warmer"))
	orch.Start(ctx)

	// Badger value log GC.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				store.RunGC()
			}
		}
	}()

	// Initialize HTTP server.
	srv := api.NewServer(st, orch, upstream, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		cancel()
		if sc != nil {
			sc.Close()
		}
		if err := store.Close(); err != nil {
			log.Error("cache close failed", "error", err)
		}
	}()

	log.Info("starting caseblog", "port", cfg.Port, "source", sourceName(cfg), "cache_dir", cfg.CacheDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}

func sourceName(cfg config.Config) string {
	if cfg.ContentDir != "" {
		return "local:" + cfg.ContentDir
	}
	return "sanity:" + cfg.SanityProjectID + "/" + cfg.SanityDataset
}
