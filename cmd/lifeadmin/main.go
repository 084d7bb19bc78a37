package main

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"lifeadmin/internal/cache"
	"lifeadmin/internal/cli"
	"lifeadmin/internal/groceries"
	apphttp "lifeadmin/internal/http"
	"lifeadmin/internal/log"
	"lifeadmin/internal/services"
	"lifeadmin/internal/store"
)

const cacheSweepInterval = time.Minute

func main() {
	boot := log.Default(log.ComponentApp)
	app, err := cli.Open(context.Background(), cli.Options{Component: log.ComponentApp, Publish: true})
	if err != nil {
		cli.Fatal(boot, "Startup failed", err)
	}
	defer app.Close()
	logger, cfg := app.Logger, app.Config

	ctx, stop := cli.ShutdownContext(logger)
	defer stop()

	if _, err := app.Store.Load(ctx); err != nil {
		cli.Fatal(logger, "Loading store failed", err)
	}

	deps := apphttp.Deps{
		Store:              app.Store,
		Service:            services.NewService(app.Store, logger),
		Caches:             cache.NewManager(logger),
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}
	syncer, err := app.Syncer(ctx)
	if err != nil {
		logger.Warn("Cloud sync unavailable", log.FieldError, err)
	} else if syncer != nil {
		deps.Syncer = syncer
	}

	var srv *apphttp.Server
	deps.Groceries = groceries.NewManager(app.Persistence,
		groceries.WithLogger(logger),
		groceries.WithOnChange(func(context.Context) {
			if srv != nil {
				srv.Changed()
			}
		}))
	srv = apphttp.NewServer(":"+cfg.Port, deps)

	// Another process may write the shared persistence; the watcher reloads
	// the store, which notifies the server through its subscription.
	watcher := store.NewWatcher(app.Persistence, store.KeyStore, cfg.WatchInterval, func(ctx context.Context) {
		if _, err := app.Store.Refresh(ctx); err != nil {
			logger.WarnContext(ctx, "Refreshing store failed", log.FieldError, err)
		}
	})
	groceryWatcher := store.NewWatcher(app.Persistence, store.KeyGroceries, cfg.WatchInterval, func(context.Context) {
		srv.Changed()
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return watcher.Run(gctx) })
	g.Go(func() error { return groceryWatcher.Run(gctx) })
	g.Go(func() error { return deps.Caches.Run(gctx, cacheSweepInterval) })
	g.Go(func() error { return srv.Run(gctx) })

	logger.Info("Starting lifeadmin server",
		"port", cfg.Port, "backend", cfg.DataBackend, "cloud", cfg.CloudRemote,
		log.FieldOperation, log.OpStartup)
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		cli.Fatal(logger, "Server error", err)
	}
	logger.Info("Server stopped gracefully")
}
