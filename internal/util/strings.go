// Package util provides shared utility functions used across the codebase.
package util

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// TruncateANSI truncates a string to maxWidth visual columns, adding "..." if truncated.
// This function properly handles ANSI escape codes and wide characters, making it
// suitable for terminal output with styling.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	// ansi.Truncate includes the tail in the final width calculation
	return ansi.Truncate(s, maxWidth, "...")
}

// Back is the entry that returns from a prompt without doing anything.
const Back = "0"

// SplitEntries splits a batch of comma-separated entries as typed at a prompt.
//
// Full-width "，" and "；" count as "," and ";", trailing ";" terminators are
// dropped, and every entry is trimmed. Empty entries are removed.
func SplitEntries(input string) []string {
	input = strings.NewReplacer("，", ",", "；", ";").Replace(input)
	input = strings.TrimRight(strings.TrimSpace(input), ";")

	var entries []string
	for _, part := range strings.Split(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			entries = append(entries, part)
		}
	}
	return entries
}

// IsBack reports whether a batch asks to return instead of acting: its first
// entry is "0".
func IsBack(entries []string) bool {
	return len(entries) > 0 && entries[0] == Back
}

// ParseIndices converts entries to integers. Entries that are not integers
// are returned in bad, in input order.
func ParseIndices(entries []string) (indices []int, bad []string) {
	for _, e := range entries {
		n, err := strconv.Atoi(e)
		if err != nil {
			bad = append(bad, e)
			continue
		}
		indices = append(indices, n)
	}
	return indices, bad
}
