package backend

import (
	"errors"
	"fmt"
	"strings"

	"lifeadmin/internal/config"
)

// Config selects and parameterises one backend.
type Config struct {
	Kind Kind

	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

func kindList() string {
	names := make([]string, 0, len(Kinds()))
	for _, k := range Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

// FromAppConfig picks the backend settings out of the application config.
func FromAppConfig(c *config.Config) (Config, error) {
	if c == nil {
		return Config{}, errors.New("backend: nil app config")
	}
	kind := Kind(strings.ToLower(strings.TrimSpace(c.DataBackend)))
	if !kind.IsValid() {
		return Config{}, fmt.Errorf("backend: unknown DATA_BACKEND %q (want one of %s)", c.DataBackend, kindList())
	}
	return Config{
		Kind:          kind,
		SQLitePath:    c.SQLiteDBPath,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
	}, nil
}

// Validate reports the first setting the chosen backend is missing.
func (c Config) Validate() error {
	switch c.Kind {
	case SQLite:
		if c.SQLitePath == "" {
			return errors.New("backend: sqlite needs a database path")
		}
	case Redis:
		if c.RedisAddr == "" {
			return errors.New("backend: redis needs an address")
		}
	case Memory:
	default:
		return fmt.Errorf("backend: unknown kind %q (want one of %s)", c.Kind, kindList())
	}
	return nil
}
