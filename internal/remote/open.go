package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Config selects and configures a backend.
type Config struct {
	Backend  string `yaml:"backend"`  // memory, sqlite, postgres, mysql or redis
	DSN      string `yaml:"dsn"`      // SQL data source; empty sqlite DSN shares the local database
	Addr     string `yaml:"addr"`     // Redis address
	Password string `yaml:"password"` // Redis password
	DB       int    `yaml:"db"`       // Redis database number
}

// Open builds the configured backend. local is the device database, reused
// by the sqlite backend when no DSN is given.
func Open(ctx context.Context, cfg Config, local *sql.DB) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		s, err := OpenRedis(ctx, RedisOptions{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite", "sqlite3":
		if cfg.DSN == "" {
			if local == nil {
				return nil, errors.New("remote: sqlite backend needs a dsn")
			}
			return sqlStore(NewSQLStore(ctx, local, SQLiteDialect{}))
		}
		return sqlStore(OpenSQL(ctx, SQLiteDialect{}, cfg.DSN))
	default:
		dialect, err := DialectFor(cfg.Backend)
		if err != nil {
			return nil, err
		}
		if cfg.DSN == "" {
			return nil, fmt.Errorf("remote: %s backend needs a dsn", cfg.Backend)
		}
		return sqlStore(OpenSQL(ctx, dialect, cfg.DSN))
	}
}

// sqlStore avoids returning a typed nil inside the Store interface.
func sqlStore(s *SQLStore, err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
