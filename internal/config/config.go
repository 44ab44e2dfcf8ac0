package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete blfilter configuration
type Config struct {
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Report  ReportConfig  `mapstructure:"report" yaml:"report"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// StoreConfig controls where the blacklist is persisted
type StoreConfig struct {
	// Path is the rule store file, one rule per line (default: "blacklist_rules.txt").
	// A leading ~ expands to the user's home directory.
	Path string `mapstructure:"path" yaml:"path"`
}

// OutputConfig controls where filter results are written
type OutputConfig struct {
	// Dir is the directory used when no output path is given (default: working directory)
	Dir string `mapstructure:"dir" yaml:"dir"`
	// Prefix is the generated filename prefix (default: "output")
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
	// TimestampLayout is the Go time layout appended to Prefix (default: "20060102_150405")
	TimestampLayout string `mapstructure:"timestamp_layout" yaml:"timestamp_layout"`
	// Keep selects which lines are written: "retained" (default) or "matched"
	Keep string `mapstructure:"keep" yaml:"keep"`
}

// ReportConfig controls the console report
type ReportConfig struct {
	// MaxTextWidth truncates matched texts to this many columns, 0 = no limit
	MaxTextWidth int `mapstructure:"max_text_width" yaml:"max_text_width"`
	// Color is "auto" (default), "always" or "never"
	Color string `mapstructure:"color" yaml:"color"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn" (default), "error"
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the directory for blfilter.log; empty logs to stderr
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// Keep modes
const (
	KeepRetained = "retained"
	KeepMatched  = "matched"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Path: "blacklist_rules.txt",
		},
		Output: OutputConfig{
			Dir:             "", // Empty means the working directory
			Prefix:          "output",
			TimestampLayout: "20060102_150405",
			Keep:            KeepRetained,
		},
		Report: ReportConfig{
			MaxTextWidth: 0,
			Color:        ColorAuto,
		},
		Logging: LoggingConfig{
			Level: "warn",
			Dir:   "",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Store defaults
	viper.SetDefault("store.path", defaults.Store.Path)

	// Output defaults
	viper.SetDefault("output.dir", defaults.Output.Dir)
	viper.SetDefault("output.prefix", defaults.Output.Prefix)
	viper.SetDefault("output.timestamp_layout", defaults.Output.TimestampLayout)
	viper.SetDefault("output.keep", defaults.Output.Keep)

	// Report defaults
	viper.SetDefault("report.max_text_width", defaults.Report.MaxTextWidth)
	viper.SetDefault("report.color", defaults.Report.Color)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "blfilter")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".blfilter"
	}
	return filepath.Join(home, ".config", "blfilter")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// WritePath returns the file WriteConfigFile writes to: the config file
// viper read, or ConfigFile when none was read.
func WritePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return ConfigFile()
}

// WriteConfigFile writes the current viper settings to WritePath and returns
// the path written.
func WriteConfigFile() (string, error) {
	target := WritePath()
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := viper.WriteConfigAs(target); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return target, nil
}

// ResolveStorePath returns the store path with a leading ~ expanded.
func (s *StoreConfig) ResolveStorePath() string {
	return expandHome(s.Path)
}

// ResolveDir returns the output directory with a leading ~ expanded.
// An empty Dir resolves to ".".
func (o *OutputConfig) ResolveDir() string {
	if o.Dir == "" {
		return "."
	}
	return expandHome(o.Dir)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}

// DefaultValues returns the default value of every configuration key,
// keyed by its dotted viper name.
func DefaultValues() map[string]any {
	d := Default()
	return map[string]any{
		"store.path":              d.Store.Path,
		"output.dir":              d.Output.Dir,
		"output.prefix":           d.Output.Prefix,
		"output.timestamp_layout": d.Output.TimestampLayout,
		"output.keep":             d.Output.Keep,
		"report.max_text_width":   d.Report.MaxTextWidth,
		"report.color":            d.Report.Color,
		"logging.level":           d.Logging.Level,
		"logging.dir":             d.Logging.Dir,
	}
}

// ValidKeepModes returns the list of valid output.keep values
func ValidKeepModes() []string {
	return []string{KeepRetained, KeepMatched}
}

// ValidColorModes returns the list of valid report.color values
func ValidColorModes() []string {
	return []string{ColorAuto, ColorAlways, ColorNever}
}
