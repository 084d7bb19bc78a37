package main

import (
	"context"
	"errors"
	"time"

	"lifeadmin/internal/cli"
	"lifeadmin/internal/log"
	"lifeadmin/internal/notify"
	"lifeadmin/internal/worker"
)

func main() {
	boot := log.Default(log.ComponentWorker)
	app, err := cli.Open(context.Background(), cli.Options{Component: log.ComponentWorker})
	if err != nil {
		cli.Fatal(boot, "Startup failed", err)
	}
	defer app.Close()
	logger, cfg := app.Logger, app.Config
	logger.Info("Starting lifeadmin-worker", log.FieldOperation, log.OpStartup)

	ctx, stop := cli.ShutdownContext(logger)
	defer stop()

	if _, err := app.Store.Load(ctx); err != nil {
		cli.Fatal(logger, "Loading store failed", err)
	}

	notifier, err := app.Notifier()
	if err != nil {
		cli.Fatal(logger, "Notifier setup failed", err)
	}

	sched := worker.NewScheduler(logger)
	if err := sched.Add(worker.JobBackup, cfg.BackupSchedule, worker.BackupJob(app.Store, logger)); err != nil {
		cli.Fatal(logger, "Scheduling backups failed", err)
	}
	dispatcher := notify.NewDispatcher(app.Store, notifier, logger)
	if err := sched.Add(worker.JobNudge, cfg.NudgeSchedule, worker.NudgeJob(app.Store, dispatcher)); err != nil {
		cli.Fatal(logger, "Scheduling nudges failed", err)
	}

	syncer, err := app.Syncer(ctx)
	if err != nil {
		logger.Error("Cloud sync unavailable", log.FieldError, err)
	}
	if syncer != nil {
		syncWorker := worker.NewSyncWorker(app.Store, syncer, logger)

		logger.Info("Performing startup sync check...")
		if err := syncWorker.StartupSyncCheck(ctx); err != nil {
			logger.Error("Failed startup sync check", log.FieldError, err)
		}
		if err := sched.Add(worker.JobSync, cfg.SyncSchedule, worker.SyncJob(syncWorker)); err != nil {
			cli.Fatal(logger, "Scheduling sync failed", err)
		}

		if cfg.AMQPURL != "" {
			client, err := app.AMQP()
			if err != nil {
				cli.Fatal(logger, "Failed to initialize AMQP client", err)
			}
			go func() {
				if err := client.ConsumeStoreChanged(ctx, syncWorker.HandleStoreChanged); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("Message consumption failed", log.FieldError, err)
					stop()
				}
			}()
		} else {
			logger.Info("AMQP not configured; relying on the sync schedule")
		}
	} else {
		logger.Info("Cloud sync disabled; skipping sync jobs")
	}

	if err := sched.Start(ctx); err != nil {
		cli.Fatal(logger, "Scheduler start failed", err)
	}

	<-ctx.Done()
	logger.Info("Shutting down worker...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Warn("Scheduler stop incomplete", log.FieldError, err)
	}
	logger.Info("Worker shutdown complete", log.FieldOperation, log.OpShutdown)
}
