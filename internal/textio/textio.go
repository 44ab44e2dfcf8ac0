// Package textio reads input text files and writes filter output.
//
// All functions take an afero.Fs so callers and tests choose the backing
// filesystem.
package textio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/zxg-sec/blfilter/internal/config"
	"github.com/zxg-sec/blfilter/internal/errors"
)

// ReadLines reads path and splits it into lines. Line endings are normalised
// to "\n" and kept on every line; a final line without a terminator is
// returned as is. A missing file yields an error matching
// errors.ErrInputNotFound.
func ReadLines(fs afero.Fs, path string) ([]string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("input file", path).WithCause(errors.ErrInputNotFound)
		}
		return nil, fmt.Errorf("read input %s: %w", path, err)
	}
	return SplitLines(string(data)), nil
}

// SplitLines normalises "\r\n" and lone "\r" to "\n" and splits text after
// every "\n".
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// WriteLines writes lines to path exactly as given, overwriting any
// existing file.
func WriteLines(fs afero.Fs, path string, lines []string) error {
	content := strings.Join(lines, "")
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}

// GeneratedName returns "<prefix>_<timestamp>.txt" for now.
func GeneratedName(cfg config.OutputConfig, now time.Time) string {
	layout := cfg.TimestampLayout
	if layout == "" {
		layout = config.Default().Output.TimestampLayout
	}
	stamp := now.Format(layout)
	if cfg.Prefix == "" {
		return stamp + ".txt"
	}
	return cfg.Prefix + "_" + stamp + ".txt"
}

// ResolveOutputPath decides where filter output goes.
//
// An empty path means the configured output directory. When the result is an
// existing directory, a generated file name is placed inside it. Otherwise the
// path is used as a file and its parent directory is created when missing.
func ResolveOutputPath(fs afero.Fs, path string, now time.Time, cfg config.OutputConfig) (string, error) {
	if path == "" {
		path = cfg.ResolveDir()
		if err := fs.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("create output directory %s: %w", path, err)
		}
	}

	isDir, err := afero.IsDir(fs, path)
	if err == nil && isDir {
		return filepath.Join(path, GeneratedName(cfg, now)), nil
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}
	return path, nil
}
