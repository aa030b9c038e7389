// Package config provides Viper-based configuration loading for the ironwatch
// combat simulation tools.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SimulationConfig holds the fixed-step simulation settings.
type SimulationConfig struct {
	// TickRate is the number of simulation ticks per second.
	TickRate int `mapstructure:"tick_rate"`
	// MaxDelta clamps the per-tick delta handed to the core. The core treats
	// dt as already sanitized; this is where that happens.
	MaxDelta time.Duration `mapstructure:"max_delta"`
	// Seed seeds the injected random source. Zero selects a time-derived seed.
	Seed int64 `mapstructure:"seed"`
}

// Step returns the nominal per-tick delta in seconds.
//
// Precondition: TickRate > 0.
// Postcondition: Returns a positive duration in seconds.
func (s SimulationConfig) Step() float64 {
	return 1.0 / float64(s.TickRate)
}

// ContentConfig holds content pipeline settings.
type ContentConfig struct {
	// Dir is the directory containing archetype and attack tables.
	Dir string `mapstructure:"dir"`
	// Level is the path to the level file loaded by the harness.
	Level string `mapstructure:"level"`
	// Watch enables live reload of content tables between ticks.
	Watch bool `mapstructure:"watch"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// DatabaseConfig holds PostgreSQL connection settings for telemetry recording.
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

// StorageConfig selects the telemetry recorder backend.
type StorageConfig struct {
	// Driver is the recorder backend: "none", "postgres", or "sqlite".
	Driver string `mapstructure:"driver"`
	// SQLitePath is the database file path used when Driver is "sqlite".
	SQLitePath string `mapstructure:"sqlite_path"`
}

// SpectatorConfig holds the read-only websocket feed settings.
type SpectatorConfig struct {
	// Enabled turns the feed on.
	Enabled bool `mapstructure:"enabled"`
	// Host is the bind address for the feed listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the feed listener.
	Port int `mapstructure:"port"`
	// Every is the snapshot broadcast cadence in ticks (1 = every tick).
	Every int `mapstructure:"every"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s SpectatorConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ScriptingConfig holds the presentation hook script settings.
type ScriptingConfig struct {
	// Enabled turns cue hook scripts on.
	Enabled bool `mapstructure:"enabled"`
	// Dir is the directory containing hook scripts.
	Dir string `mapstructure:"dir"`
	// InstructionBudget is the Lua opcode limit per hook invocation.
	InstructionBudget int `mapstructure:"instruction_budget"`
}

// Config is the top-level application configuration.
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Content    ContentConfig    `mapstructure:"content"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Spectator  SpectatorConfig  `mapstructure:"spectator"`
	Scripting  ScriptingConfig  `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Driver == "postgres" {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Spectator.Enabled {
		if err := validateSpectator(c.Spectator); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Scripting.Enabled {
		if err := validateScripting(c.Scripting); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.TickRate < 1 || s.TickRate > 1000 {
		errs = append(errs, fmt.Sprintf("simulation.tick_rate must be 1-1000, got %d", s.TickRate))
	}
	if s.MaxDelta <= 0 {
		errs = append(errs, "simulation.max_delta must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.Dir == "" {
		errs = append(errs, "content.dir must not be empty")
	}
	if c.Level == "" {
		errs = append(errs, "content.level must not be empty")
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

func validateStorage(s StorageConfig) error {
	validDrivers := map[string]bool{"none": true, "postgres": true, "sqlite": true}
	if !validDrivers[s.Driver] {
		return fmt.Errorf("storage.driver must be one of [none, postgres, sqlite], got %q", s.Driver)
	}
	if s.Driver == "sqlite" && s.SQLitePath == "" {
		return errors.New("storage.sqlite_path must not be empty when storage.driver is sqlite")
	}
	return nil
}

func validateSpectator(s SpectatorConfig) error {
	var errs []string
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("spectator.port must be 1-65535, got %d", s.Port))
	}
	if s.Every < 1 {
		errs = append(errs, fmt.Sprintf("spectator.every must be >= 1, got %d", s.Every))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	var errs []string
	if s.Dir == "" {
		errs = append(errs, "scripting.dir must not be empty")
	}
	if s.InstructionBudget < 1 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_budget must be >= 1, got %d", s.InstructionBudget))
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

	// Environment variable overrides with IRONWATCH_ prefix
	v.SetEnvPrefix("IRONWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
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
	v.SetDefault("simulation.tick_rate", 60)
	v.SetDefault("simulation.max_delta", "50ms")
	v.SetDefault("simulation.seed", 0)

	v.SetDefault("content.dir", "content")
	v.SetDefault("content.level", "content/levels/arena.yaml")
	v.SetDefault("content.watch", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "ironwatch")
	v.SetDefault("database.password", "ironwatch")
	v.SetDefault("database.name", "ironwatch")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("storage.driver", "none")
	v.SetDefault("storage.sqlite_path", "ironwatch.db")

	v.SetDefault("spectator.enabled", false)
	v.SetDefault("spectator.host", "127.0.0.1")
	v.SetDefault("spectator.port", 8780)
	v.SetDefault("spectator.every", 1)

	v.SetDefault("scripting.enabled", false)
	v.SetDefault("scripting.dir", "scripts")
	v.SetDefault("scripting.instruction_budget", 100000)
}
