// Package store loads student and alumni profiles from the configured backend.
package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/A-zanke/alumni-matcher/internal/profile"
)

const (
	KindMongo  = "mongo"
	KindSQLite = "sqlite"
	KindJSON   = "json"
)

// Store is a read-only view of the profile collection.
type Store interface {
	// Name identifies the backend and its location in logs and failures.
	Name() string
	// Student returns the profile with the given id whatever its role, or
	// nil when there is none.
	Student(ctx context.Context, id string) (*profile.Profile, error)
	// Alumni returns every profile whose role is alumni.
	Alumni(ctx context.Context) (*profile.Profiles, error)
	// Students returns every profile that is not an alumnus.
	Students(ctx context.Context) (*profile.Profiles, error)
	Close() error
}

type Config struct {
	Kind   string
	Mongo  MongoConfig
	SQLite SQLiteConfig
	JSON   JSONConfig
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type SQLiteConfig struct {
	Path string
}

type JSONConfig struct {
	Path string
}

// Open connects to the backend selected by cfg.Kind. Mongo is the default.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	kind := strings.ToLower(strings.TrimSpace(cfg.Kind))
	switch kind {
	case "", KindMongo:
		s, err := OpenMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindSQLite:
		s, err := OpenSQLite(ctx, cfg.SQLite.Path, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindJSON:
		s, err := OpenJSON(cfg.JSON.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store kind: %s", cfg.Kind)
	}
}
