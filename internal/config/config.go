// Package config provides Viper-based configuration loading for the map
// generation service.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/mapsmith/internal/dungeon"
)

// DatabaseConfig holds PostgreSQL connection settings for the map archive.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// GenerationConfig holds the generator tunables. The zero value is not
// usable; Load fills unset keys from the engine defaults.
type GenerationConfig struct {
	// Width and Height are the default grid dimensions.
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`

	BSP      dungeon.BSPOptions      `mapstructure:"bsp"`
	Cellular dungeon.CellularOptions `mapstructure:"cellular"`
	Simple   dungeon.SimpleOptions   `mapstructure:"simple"`
	Populate dungeon.PopulateOptions `mapstructure:"populate"`
}

// Options converts the configuration into engine options.
func (g GenerationConfig) Options() dungeon.Options {
	return dungeon.Options{
		Width:    g.Width,
		Height:   g.Height,
		BSP:      g.BSP,
		Cellular: g.Cellular,
		Simple:   g.Simple,
		Populate: g.Populate,
	}
}

// ThemesConfig holds theme catalog settings.
type ThemesConfig struct {
	// Dir is an optional directory of extra theme template YAML files loaded
	// on top of the built-in catalog.
	Dir string `mapstructure:"dir"`
	// ScriptDir is an optional directory of Lua description hook scripts.
	ScriptDir string `mapstructure:"script_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Generation GenerationConfig `mapstructure:"generation"`
	Themes     ThemesConfig     `mapstructure:"themes"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGeneration(c.Generation); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateGeneration(g GenerationConfig) error {
	var errs []string
	if g.Width < 1 {
		errs = append(errs, fmt.Sprintf("generation.width must be >= 1, got %d", g.Width))
	}
	if g.Height < 1 {
		errs = append(errs, fmt.Sprintf("generation.height must be >= 1, got %d", g.Height))
	}
	if g.BSP.MinRoomSize < 1 {
		errs = append(errs, fmt.Sprintf("generation.bsp.min_room_size must be >= 1, got %d", g.BSP.MinRoomSize))
	}
	if g.Cellular.FillProbability < 0 || g.Cellular.FillProbability > 1 {
		errs = append(errs, fmt.Sprintf("generation.cellular.fill_probability must be in [0, 1], got %g", g.Cellular.FillProbability))
	}
	if g.Simple.MinRooms < 1 {
		errs = append(errs, fmt.Sprintf("generation.simple.min_rooms must be >= 1, got %d", g.Simple.MinRooms))
	}
	if g.Populate.Normalization <= 0 {
		errs = append(errs, fmt.Sprintf("generation.populate.normalization must be > 0, got %g", g.Populate.Normalization))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with MAPSMITH_ prefix
	v.SetEnvPrefix("MAPSMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "mapsmith")
	v.SetDefault("database.password", "mapsmith")
	v.SetDefault("database.name", "mapsmith")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	opts := dungeon.DefaultOptions()
	v.SetDefault("generation.width", opts.Width)
	v.SetDefault("generation.height", opts.Height)

	v.SetDefault("generation.bsp.min_leaf_size", opts.BSP.MinLeafSize)
	v.SetDefault("generation.bsp.max_depth", opts.BSP.MaxDepth)
	v.SetDefault("generation.bsp.min_room_size", opts.BSP.MinRoomSize)
	v.SetDefault("generation.bsp.padding", opts.BSP.Padding)
	v.SetDefault("generation.bsp.min_room_count", opts.BSP.MinRoomCount)

	v.SetDefault("generation.cellular.fill_probability", opts.Cellular.FillProbability)
	v.SetDefault("generation.cellular.iterations", opts.Cellular.Iterations)
	v.SetDefault("generation.cellular.birth_threshold", opts.Cellular.BirthThreshold)
	v.SetDefault("generation.cellular.min_playable_fraction", opts.Cellular.MinPlayableFraction)
	v.SetDefault("generation.cellular.max_retries", opts.Cellular.MaxRetries)
	v.SetDefault("generation.cellular.min_room_size", opts.Cellular.MinRoomSize)

	v.SetDefault("generation.simple.min_rooms", opts.Simple.MinRooms)
	v.SetDefault("generation.simple.max_rooms", opts.Simple.MaxRooms)
	v.SetDefault("generation.simple.target_rooms", opts.Simple.TargetRooms)
	v.SetDefault("generation.simple.min_room_size", opts.Simple.MinRoomSize)
	v.SetDefault("generation.simple.padding", opts.Simple.Padding)
	v.SetDefault("generation.simple.attempts_per_room", opts.Simple.AttemptsPerRoom)

	v.SetDefault("generation.populate.normalization", opts.Populate.Normalization)
	v.SetDefault("generation.populate.boss_monsters_min", opts.Populate.BossMonstersMin)
	v.SetDefault("generation.populate.boss_monsters_max", opts.Populate.BossMonstersMax)
}
