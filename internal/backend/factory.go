package backend

import (
	"context"
	"fmt"

	"lifeadmin/internal/log"
	"lifeadmin/internal/storage"
	"lifeadmin/internal/storage/memory"
	"lifeadmin/internal/storage/redisstore"
)

// Factory is the production Opener.
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.Default(log.ComponentBackend)
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Open validates cfg and opens the backend it names.
func (f *Factory) Open(ctx context.Context, cfg Config) (*Opened, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Kind {
	case SQLite:
		return f.openSQLite(ctx, cfg)
	case Redis:
		return f.openRedis(ctx, cfg)
	default:
		f.logger.WarnContext(ctx, "Using memory backend; data is lost on exit")
		st := memory.New()
		return &Opened{Persistence: st, Close: st.Close}, nil
	}
}

func (f *Factory) openSQLite(ctx context.Context, cfg Config) (*Opened, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite backend: %w", err)
	}
	f.logger.InfoContext(ctx, "Opened sqlite backend", "db_path", cfg.SQLitePath, "schema", repo.Schema())
	return &Opened{Persistence: repo, Close: repo.Close, Schema: repo.Schema()}, nil
}

func (f *Factory) openRedis(ctx context.Context, cfg Config) (*Opened, error) {
	client, err := redisstore.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("open redis backend: %w", err)
	}
	st := redisstore.New(client, cfg.RedisPrefix)
	f.logger.InfoContext(ctx, "Opened redis backend", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return &Opened{Persistence: st, Close: st.Close}, nil
}

var _ Opener = (*Factory)(nil)
