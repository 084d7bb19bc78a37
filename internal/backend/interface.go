package backend

import (
	"context"
	"slices"

	"lifeadmin/internal/store"
)

// Kind names a persistence backend.
type Kind string

const (
	SQLite Kind = "sqlite"
	Memory Kind = "memory"
	Redis  Kind = "redis"
)

// Kinds lists the supported backends.
func Kinds() []Kind { return []Kind{SQLite, Memory, Redis} }

func (k Kind) IsValid() bool { return slices.Contains(Kinds(), k) }

// Opened is a ready persistence. Close is never nil.
type Opened struct {
	Persistence store.Persistence
	Close       func() error
	// Schema is the applied migration version; zero for schemaless backends.
	Schema uint
}

// Opener builds the persistence named by a Config.
type Opener interface {
	Open(ctx context.Context, cfg Config) (*Opened, error)
}
