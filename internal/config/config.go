// Package config loads the application configuration from file, env and flags.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/xtding233/pack-sim/internal/catalog"
	"github.com/xtding233/pack-sim/internal/collection"
	"github.com/xtding233/pack-sim/internal/logger"
	"github.com/xtding233/pack-sim/internal/storage"
)

// EnvPrefix namespaces env overrides, e.g. PACKSIM_STORAGE_DRIVER.
const EnvPrefix = "PACKSIM"

type Config struct {
	API        APIConf        `mapstructure:"api" json:"api"`
	GRPC       GRPCConf       `mapstructure:"grpc" json:"grpc"`
	Catalog    CatalogConf    `mapstructure:"catalog" json:"catalog"`
	Storage    storage.Conf   `mapstructure:"storage" json:"storage"`
	Collection CollectionConf `mapstructure:"collection" json:"collection"`
	Rules      RulesConf      `mapstructure:"rules" json:"rules"`
	Log        logger.LogConf `mapstructure:"log" json:"log"`
}

type APIConf struct {
	Addr        string   `mapstructure:"addr" json:"addr"`
	CorsOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
}

type GRPCConf struct {
	Addr string `mapstructure:"addr" json:"addr"` // empty disables the gRPC server
}

type CatalogConf struct {
	BaseURL       string        `mapstructure:"base_url" json:"base_url"`
	RatePerSecond float64       `mapstructure:"rate_per_second" json:"rate_per_second"`
	Burst         int           `mapstructure:"burst" json:"burst"`
	Concurrency   int           `mapstructure:"concurrency" json:"concurrency"`
	Timeout       time.Duration `mapstructure:"timeout" json:"timeout"`
}

type CollectionConf struct {
	HistoryCap  int           `mapstructure:"history_cap" json:"history_cap"`
	DedupWindow time.Duration `mapstructure:"dedup_window" json:"dedup_window"`
}

type RulesConf struct {
	Dir   string `mapstructure:"dir" json:"dir"` // empty uses the built-in rules
	Watch bool   `mapstructure:"watch" json:"watch"`
}

// New returns a viper instance with defaults and env binding in place.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api.addr", ":8080")
	v.SetDefault("api.cors_origins", []string{"*"})
	v.SetDefault("grpc.addr", ":9090")
	v.SetDefault("catalog.base_url", catalog.DefaultBaseURL)
	v.SetDefault("catalog.rate_per_second", 20)
	v.SetDefault("catalog.burst", 10)
	v.SetDefault("catalog.concurrency", 8)
	v.SetDefault("catalog.timeout", 15*time.Second)
	v.SetDefault("storage.driver", storage.DriverFile)
	v.SetDefault("storage.path", "data/collection.json")
	v.SetDefault("storage.key", storage.DefaultKey)
	v.SetDefault("storage.redis_addr", "")
	v.SetDefault("storage.redis_pass", "")
	v.SetDefault("collection.history_cap", collection.DefaultHistoryCap)
	v.SetDefault("collection.dedup_window", collection.DefaultDedupWindow)
	v.SetDefault("rules.dir", "")
	v.SetDefault("rules.watch", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)
	v.SetDefault("log.console", true)
	return v
}

// Load reads path (or ./packsim.yaml when path is empty and it exists) into v
// and decodes the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	} else {
		v.SetConfigName("packsim")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []string
	if c.Catalog.BaseURL == "" {
		errs = append(errs, "catalog.base_url is required")
	}
	if c.Catalog.Concurrency <= 0 {
		errs = append(errs, "catalog.concurrency must be >= 1")
	}
	if c.Catalog.Timeout <= 0 {
		errs = append(errs, "catalog.timeout must be > 0")
	}
	if c.Collection.HistoryCap <= 0 {
		errs = append(errs, "collection.history_cap must be >= 1")
	}
	if c.Collection.DedupWindow < 0 {
		errs = append(errs, "collection.dedup_window must be >= 0")
	}
	switch strings.ToLower(c.Storage.Driver) {
	case storage.DriverMemory:
	case storage.DriverFile, storage.DriverSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, "storage.path is required for driver "+c.Storage.Driver)
		}
	case storage.DriverRedis:
		if c.Storage.RedisAddr == "" {
			errs = append(errs, "storage.redis_addr is required for driver redis")
		}
	default:
		errs = append(errs, "storage.driver must be one of: memory, file, sqlite, redis")
	}
	if c.Rules.Watch && c.Rules.Dir == "" {
		errs = append(errs, "rules.watch needs rules.dir")
	}
	if len(errs) > 0 {
		return errors.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
