package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // zone names resolve without a system zoneinfo

	"github.com/spf13/viper"

	"github.com/rediwo/redi-datasource/datasource"
	"github.com/rediwo/redi-datasource/logger"
)

// EnvPrefix prefixes environment overrides: REDI_DATABASE_URL,
// REDI_LIST_DEFAULT_PAGE_SIZE and so on.
const EnvPrefix = "REDI"

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Schema   SchemaConfig   `mapstructure:"schema"`
	List     ListConfig     `mapstructure:"list"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type SchemaConfig struct {
	Path string `mapstructure:"path"`
}

type ListConfig struct {
	DefaultPageSize int    `mapstructure:"default_page_size"`
	MaxPageSize     int    `mapstructure:"max_page_size"`
	MaxSearchTerms  int    `mapstructure:"max_search_terms"`
	TimeZone        string `mapstructure:"time_zone"`
	UseAsync        bool   `mapstructure:"use_async"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.url", "")
	v.SetDefault("schema.path", "")
	v.SetDefault("list.default_page_size", datasource.DefaultPageSize)
	v.SetDefault("list.max_page_size", datasource.DefaultMaxPageSize)
	v.SetDefault("list.max_search_terms", datasource.DefaultMaxSearchTerms)
	v.SetDefault("list.time_zone", "UTC")
	v.SetDefault("list.use_async", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "default")
}

// Load reads path, or redi-list.yaml from the working directory when path
// is empty, and applies environment overrides. A missing redi-list.yaml is
// not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("redi-list")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.List.DefaultPageSize < 1 {
		errs = append(errs, fmt.Errorf("list.default_page_size must be positive, got %d", c.List.DefaultPageSize))
	}
	if c.List.MaxPageSize < c.List.DefaultPageSize {
		errs = append(errs, fmt.Errorf("list.max_page_size %d is below list.default_page_size %d", c.List.MaxPageSize, c.List.DefaultPageSize))
	}
	if c.List.MaxSearchTerms < 1 {
		errs = append(errs, fmt.Errorf("list.max_search_terms must be positive, got %d", c.List.MaxSearchTerms))
	}
	if _, err := time.LoadLocation(c.List.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("list.time_zone: %w", err))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "default", "zap":
	default:
		errs = append(errs, fmt.Errorf("log.format must be default or zap, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// DataSourceOptions converts the list settings. The time zone was checked
// by Validate.
func (c *Config) DataSourceOptions() datasource.Options {
	loc, err := time.LoadLocation(c.List.TimeZone)
	if err != nil {
		loc = time.UTC
	}
	return datasource.Options{
		MaxSearchTerms:  c.List.MaxSearchTerms,
		DefaultPageSize: c.List.DefaultPageSize,
		MaxPageSize:     c.List.MaxPageSize,
		TimeZone:        loc,
		UseAsync:        c.List.UseAsync,
		Logger:          c.NewLogger("datasource"),
	}
}

// NewLogger builds a logger with the configured format and level.
func (c *Config) NewLogger(prefix string) logger.Logger {
	return logger.New(strings.ToLower(c.Log.Format), prefix, logger.ParseLogLevel(c.Log.Level))
}
