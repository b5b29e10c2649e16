// Package storage holds the collection.StateRepository backends.
package storage

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/xtding233/pack-sim/internal/collection"
)

// Drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// DefaultKey is the key the collection blob is stored under.
const DefaultKey = "myCollection"

// Conf selects and configures a backend.
type Conf struct {
	Driver    string `mapstructure:"driver" json:"driver"`
	Path      string `mapstructure:"path" json:"path"` // file path or sqlite dsn
	Key       string `mapstructure:"key" json:"key"`
	RedisAddr string `mapstructure:"redis_addr" json:"redis_addr"`
	RedisPass string `mapstructure:"redis_pass" json:"redis_pass"`
}

// Repository is a StateRepository that may hold resources.
type Repository interface {
	collection.StateRepository
	Close() error
}

// Open builds the backend named by conf.Driver.
func Open(ctx context.Context, conf Conf) (Repository, error) {
	key := conf.Key
	if key == "" {
		key = DefaultKey
	}
	switch strings.ToLower(conf.Driver) {
	case DriverMemory:
		return NewMemory(), nil
	case "", DriverFile:
		if conf.Path == "" {
			return nil, errors.New("storage: file driver needs a path")
		}
		return NewFile(conf.Path), nil
	case DriverSQLite:
		if conf.Path == "" {
			return nil, errors.New("storage: sqlite driver needs a path")
		}
		return OpenSQLite(ctx, conf.Path, key)
	case DriverRedis:
		if conf.RedisAddr == "" {
			return nil, errors.New("storage: redis driver needs an address")
		}
		return NewRedis(conf.RedisAddr, conf.RedisPass, key), nil
	default:
		return nil, errors.Errorf("storage: unknown driver %q", conf.Driver)
	}
}

// decode turns a stored blob into state, treating an empty blob as absent.
func decode(blob []byte) (collection.State, error) {
	if len(blob) == 0 {
		return collection.State{}, collection.ErrStateNotFound
	}
	return collection.DecodeState(blob)
}
