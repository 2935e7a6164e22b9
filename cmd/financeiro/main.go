package main

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"financeiro/internal/amqp"
	"financeiro/internal/cache"
	"financeiro/internal/cli"
	apphttp "financeiro/internal/http"
	"financeiro/internal/log"
	"financeiro/internal/pipeline"
	"financeiro/internal/store"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, os.Stdout)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backend := cli.OpenBackend(ctx, logger, cfg)
	defer func() {
		if backend.Cleanup != nil {
			if err := backend.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}
	}()

	opts := []store.Option{store.WithLogger(logger)}
	if cfg.AMQPURL != "" {
		publisher, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, change events disabled", log.FieldError, err)
		} else {
			defer publisher.Close()
			opts = append(opts, store.WithPublisher(publisher))
		}
	}

	st := store.New(backend.Repository, opts...)
	if err := st.Load(ctx); err != nil {
		logger.Error("Failed to load entries", log.FieldBackend, cfg.DataBackend, log.FieldError, err)
		os.Exit(1)
	}

	memo := pipeline.NewMemo(cfg.CacheSize, cfg.CacheTTL)
	caches := cache.NewManager(logger.Logger)
	caches.Register(memo.Cache())
	caches.StartCleanup(cfg.CacheTTL)
	defer caches.Stop()

	srv, err := apphttp.NewServer(st, memo, logger, apphttp.Config{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	})
	if err != nil {
		logger.Error("Failed to configure HTTP server", log.FieldError, err)
		os.Exit(1)
	}
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting financeiro server", "port", cfg.Port, log.FieldBackend, cfg.DataBackend)
		return srv.ListenAndServe()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
