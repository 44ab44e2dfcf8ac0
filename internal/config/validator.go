package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/zxg-sec/blfilter/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "output.keep")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the logger's levels in the lowercase form used in
// config files.
func ValidLogLevels() []string {
	levels := logging.ValidLevels()
	for i, level := range levels {
		levels[i] = strings.ToLower(level)
	}
	return levels
}

// timestampSample is formatted with the configured layout to detect layouts
// that contain no time fields at all.
var timestampSample = time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateStore()...)
	errors = append(errors, c.validateOutput()...)
	errors = append(errors, c.validateReport()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateStore validates the StoreConfig
func (c *Config) validateStore() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Store.Path) == "" {
		errors = append(errors, ValidationError{
			Field:   "store.path",
			Value:   c.Store.Path,
			Message: "must not be empty",
		})
	}

	return errors
}

// validateOutput validates the OutputConfig
func (c *Config) validateOutput() []ValidationError {
	var errors []ValidationError

	if c.Output.Keep != "" && !slices.Contains(ValidKeepModes(), c.Output.Keep) {
		errors = append(errors, ValidationError{
			Field:   "output.keep",
			Value:   c.Output.Keep,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidKeepModes(), ", ")),
		})
	}

	if strings.ContainsAny(c.Output.Prefix, `/\`) {
		errors = append(errors, ValidationError{
			Field:   "output.prefix",
			Value:   c.Output.Prefix,
			Message: "must not contain path separators",
		})
	}

	if c.Output.TimestampLayout != "" {
		formatted := timestampSample.Format(c.Output.TimestampLayout)
		if formatted == c.Output.TimestampLayout {
			errors = append(errors, ValidationError{
				Field:   "output.timestamp_layout",
				Value:   c.Output.TimestampLayout,
				Message: "must contain at least one time field (e.g. 20060102_150405)",
			})
		} else if strings.ContainsRune(formatted, filepath.Separator) || strings.Contains(formatted, "/") {
			errors = append(errors, ValidationError{
				Field:   "output.timestamp_layout",
				Value:   c.Output.TimestampLayout,
				Message: "must not produce path separators",
			})
		}
	}

	return errors
}

// validateReport validates the ReportConfig
func (c *Config) validateReport() []ValidationError {
	var errors []ValidationError

	if c.Report.MaxTextWidth < 0 {
		errors = append(errors, ValidationError{
			Field:   "report.max_text_width",
			Value:   c.Report.MaxTextWidth,
			Message: "must be non-negative",
		})
	}

	if c.Report.Color != "" && !slices.Contains(ValidColorModes(), c.Report.Color) {
		errors = append(errors, ValidationError{
			Field:   "report.color",
			Value:   c.Report.Color,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidColorModes(), ", ")),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" {
		level := strings.ToLower(c.Logging.Level)
		if !slices.Contains(ValidLogLevels(), level) {
			errors = append(errors, ValidationError{
				Field:   "logging.level",
				Value:   c.Logging.Level,
				Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
			})
		}
	}

	return errors
}
