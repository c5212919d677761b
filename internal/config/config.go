package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pickleballplayers/court-harvester/internal/db"
)

// minIntervalFloorMs is the smallest accepted Nominatim request spacing.
const minIntervalFloorMs = 1100

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Nominatim NominatimConfig `yaml:"nominatim" mapstructure:"nominatim"`
	Overpass  OverpassConfig  `yaml:"overpass" mapstructure:"overpass"`
	Harvest   HarvestConfig   `yaml:"harvest" mapstructure:"harvest"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string        `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string        `yaml:"database_url" mapstructure:"database_url"`
	Pool        db.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// NominatimConfig configures the geocoding service.
type NominatimConfig struct {
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	UserAgent     string `yaml:"user_agent" mapstructure:"user_agent"`
	MinIntervalMs int    `yaml:"min_interval_ms" mapstructure:"min_interval_ms"`
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// MinInterval returns the spacing enforced between geocoder requests.
func (c NominatimConfig) MinInterval() time.Duration {
	return time.Duration(c.MinIntervalMs) * time.Millisecond
}

// OverpassConfig configures the OSM feature query endpoint.
type OverpassConfig struct {
	URL              string `yaml:"url" mapstructure:"url"`
	QueryTimeoutSecs int    `yaml:"query_timeout_secs" mapstructure:"query_timeout_secs"`
	HTTPTimeoutSecs  int    `yaml:"http_timeout_secs" mapstructure:"http_timeout_secs"`
	MaxAttempts      int    `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// HarvestConfig tunes classification output and deduplication.
type HarvestConfig struct {
	ToleranceDeg       float64 `yaml:"tolerance_deg" mapstructure:"tolerance_deg"`
	ExplicitConfidence int     `yaml:"explicit_confidence" mapstructure:"explicit_confidence"`
	InferredConfidence int     `yaml:"inferred_confidence" mapstructure:"inferred_confidence"`
	TagSnapshotLimit   int     `yaml:"tag_snapshot_limit" mapstructure:"tag_snapshot_limit"`
}

// ServerConfig configures the admin HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AdminToken     string   `yaml:"admin_token" mapstructure:"admin_token"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COURTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("nominatim.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("nominatim.user_agent", "PickleballPlayersBot/1.0")
	v.SetDefault("nominatim.min_interval_ms", 1100)
	v.SetDefault("nominatim.timeout_secs", 30)
	v.SetDefault("overpass.url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.query_timeout_secs", 25)
	v.SetDefault("overpass.http_timeout_secs", 60)
	v.SetDefault("overpass.max_attempts", 3)
	v.SetDefault("harvest.tolerance_deg", 0.0005)
	v.SetDefault("harvest.explicit_confidence", 90)
	v.SetDefault("harvest.inferred_confidence", 60)
	v.SetDefault("harvest.tag_snapshot_limit", 100)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.admin_token", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings needed by mode are present and sane.
// Modes match the CLI commands: harvest, refine, serve, courts, migrate.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "harvest", "refine":
		errs = append(errs, c.validateStore()...)
		errs = append(errs, c.validateUpstreams()...)
	case "serve":
		errs = append(errs, c.validateStore()...)
		errs = append(errs, c.validateUpstreams()...)
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "courts", "migrate":
		errs = append(errs, c.validateStore()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateStore() []string {
	var errs []string
	switch c.Store.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, "store.driver must be postgres or sqlite")
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}
	return errs
}

func (c *Config) validateUpstreams() []string {
	var errs []string
	if c.Nominatim.BaseURL == "" {
		errs = append(errs, "nominatim.base_url is required")
	}
	if strings.TrimSpace(c.Nominatim.UserAgent) == "" {
		errs = append(errs, "nominatim.user_agent is required")
	}
	// Nominatim allows one request per second; 1100 ms leaves headroom for
	// clock skew between us and their counter.
	if c.Nominatim.MinIntervalMs < minIntervalFloorMs {
		errs = append(errs, fmt.Sprintf("nominatim.min_interval_ms must be >= %d", minIntervalFloorMs))
	}
	if c.Overpass.URL == "" {
		errs = append(errs, "overpass.url is required")
	}
	if c.Overpass.MaxAttempts < 1 {
		errs = append(errs, "overpass.max_attempts must be >= 1")
	}
	if c.Harvest.ToleranceDeg <= 0 || c.Harvest.ToleranceDeg > 0.01 {
		errs = append(errs, "harvest.tolerance_deg must be in (0, 0.01]")
	}
	// Zero is not allowed: the harvester reads it as "use the default".
	for _, f := range []struct {
		key string
		v   int
	}{
		{"harvest.explicit_confidence", c.Harvest.ExplicitConfidence},
		{"harvest.inferred_confidence", c.Harvest.InferredConfidence},
	} {
		if f.v < 1 || f.v > 100 {
			errs = append(errs, f.key+" must be between 1 and 100")
		}
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
