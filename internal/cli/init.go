// Package cli provides the process bootstrap shared by cmd/lifeadmin,
// cmd/lifeadmin-worker and cmd/lifeadmin-cli, and the lifeadmin-cli
// subcommands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"lifeadmin/internal/amqp"
	"lifeadmin/internal/backend"
	"lifeadmin/internal/cloud"
	"lifeadmin/internal/config"
	"lifeadmin/internal/core"
	"lifeadmin/internal/log"
	"lifeadmin/internal/notify"
	"lifeadmin/internal/storage/redisstore"
	"lifeadmin/internal/store"
)

// Options tune Open for one binary.
type Options struct {
	Component string
	// ConfigDir is searched for lifeadmin.env; empty means the working directory.
	ConfigDir string
	// Publish wires the AMQP publisher into the store when AMQP is configured.
	Publish bool
	// LogOutput overrides stdout, so the CLI can keep stdout for data.
	LogOutput io.Writer
}

// App is an opened configuration, logger and store plus everything that must
// be released on exit.
type App struct {
	Config      *config.Config
	Logger      *log.Logger
	Store       *store.Manager
	Persistence store.Persistence

	amqp     *amqp.Client
	cleanups []func() error
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from cfg and installs it as default.
func SetupLogger(cfg *config.Config, component string, out io.Writer) *log.Logger {
	if out == nil {
		return log.Setup(cfg.LogLevel, cfg.LogFormat, component)
	}
	lc := log.DefaultConfig()
	lc.Level = log.ParseLevel(cfg.LogLevel)
	lc.Format = cfg.LogFormat
	lc.Component = component
	lc.Output = out
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration from dir and the environment.
func LoadAndValidateConfig(dir string) (*config.Config, error) {
	if dir == "" {
		dir = "."
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Open loads configuration, sets up logging and opens the configured
// persistence behind a store manager.
func Open(ctx context.Context, o Options) (*App, error) {
	LoadEnvFile()
	cfg, err := LoadAndValidateConfig(o.ConfigDir)
	if err != nil {
		return nil, err
	}
	if o.Component == "" {
		o.Component = log.ComponentApp
	}
	a := &App{Config: cfg, Logger: SetupLogger(cfg, o.Component, o.LogOutput)}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(a.Logger).Open(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	a.Persistence = res.Persistence
	a.cleanups = append(a.cleanups, res.Close)

	opts := []store.Option{store.WithLogger(a.Logger)}
	if o.Publish && cfg.AMQPURL != "" {
		client, err := a.AMQP()
		if err != nil {
			// The change bus is optional for the server; saves still work.
			a.Logger.WarnContext(ctx, "AMQP unavailable, store changes will not be published", log.FieldError, err)
		} else {
			opts = append(opts, store.WithPublisher(client))
		}
	}
	a.Store = store.NewManager(a.Persistence, opts...)
	return a, nil
}

// AMQP returns the shared AMQP client, connecting on first use.
func (a *App) AMQP() (*amqp.Client, error) {
	if a.amqp != nil {
		return a.amqp, nil
	}
	if a.Config.AMQPURL == "" {
		return nil, errors.New("AMQP_URL is not set")
	}
	client, err := amqp.NewClient(a.Config.AMQPURL, a.Config.AMQPExchange, a.Config.AMQPQueue, a.Logger)
	if err != nil {
		return nil, err
	}
	a.amqp = client
	a.cleanups = append(a.cleanups, client.Close)
	return client, nil
}

// Remote builds the configured cloud remote, or nil when cloud sync is off.
func (a *App) Remote(ctx context.Context) (cloud.Remote, error) {
	cfg := a.Config
	switch cfg.CloudRemote {
	case "", "none":
		return nil, nil
	case "memory":
		return cloud.NewMemory(core.SystemClock), nil
	case "redis":
		client, err := redisstore.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("cloud remote: %w", err)
		}
		a.cleanups = append(a.cleanups, client.Close)
		return cloud.NewRedis(client, core.SystemClock), nil
	case "drive":
		creds, err := cloud.DriveCredentials(cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile)
		if err != nil {
			return nil, err
		}
		return cloud.NewDrive(ctx, creds)
	}
	return nil, fmt.Errorf("unknown cloud remote %q", cfg.CloudRemote)
}

// Syncer returns a syncer over the configured remote, or nil when cloud sync
// is off. The cloud user id from configuration is written into settings.
func (a *App) Syncer(ctx context.Context) (*cloud.Syncer, error) {
	remote, err := a.Remote(ctx)
	if err != nil || remote == nil {
		return nil, err
	}
	if err := a.enableCloud(ctx); err != nil {
		return nil, err
	}
	return cloud.NewSyncer(a.Store, remote, a.Logger), nil
}

func (a *App) enableCloud(ctx context.Context) error {
	uid := a.Config.CloudUserID
	if uid == "" {
		return nil
	}
	snap, err := a.Store.Snapshot(ctx)
	if err != nil {
		return err
	}
	if snap.Settings.Cloud.Enabled && snap.Settings.Cloud.UserID == uid {
		return nil
	}
	_, err = a.Store.Update(ctx, func(s *core.Store) error {
		s.Settings.Cloud.UserID = uid
		s.Settings.Cloud.Enabled = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("enable cloud settings: %w", err)
	}
	return nil
}

// Notifier returns Telegram when a token is configured, otherwise a notifier
// that only logs.
func (a *App) Notifier() (notify.Notifier, error) {
	if a.Config.TelegramToken == "" {
		return notify.NewLogNotifier(a.Logger), nil
	}
	return notify.NewTelegram(a.Config.TelegramToken, a.Config.TelegramChatID)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i](); err != nil {
			a.Logger.Warn("Cleanup failed", log.FieldError, err)
		}
	}
	a.cleanups = nil
}

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM.
func ShutdownContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)
	}()
	return ctx, stop
}

// Fatal logs err and exits.
func Fatal(logger *log.Logger, msg string, err error) {
	logger.Error(msg, log.FieldError, err)
	os.Exit(1)
}
