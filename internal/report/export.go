package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/zxg-sec/blfilter/internal/filter"
)

// Document is the exported form of a run.
type Document struct {
	GeneratedAt   time.Time             `yaml:"generated_at" json:"generated_at"`
	Input         string                `yaml:"input" json:"input"`
	Output        string                `yaml:"output" json:"output"`
	Store         string                `yaml:"store" json:"store"`
	OriginalLines int                   `yaml:"original_lines" json:"original_lines"`
	RetainedLines int                   `yaml:"retained_lines" json:"retained_lines"`
	Rules         []RuleHits            `yaml:"matched_rules" json:"matched_rules"`
	Texts         []filter.NumberedText `yaml:"matched_texts" json:"matched_texts"`
	Skipped       []filter.SkippedRule  `yaml:"skipped_rules,omitempty" json:"skipped_rules,omitempty"`
}

// RuleHits is a matched rule with its hit count.
type RuleHits struct {
	Rule string `yaml:"rule" json:"rule"`
	Hits int    `yaml:"hits" json:"hits"`
}

// NewDocument builds a Document from a report. Rules keep first-hit order.
func NewDocument(r *filter.Report, input, output, store string, now time.Time) *Document {
	doc := &Document{
		GeneratedAt:   now,
		Input:         input,
		Output:        output,
		Store:         store,
		OriginalLines: r.OriginalLines,
		RetainedLines: r.RetainedLines,
		Rules:         make([]RuleHits, 0, len(r.HitOrder)),
		Texts:         r.Enumerated(),
		Skipped:       r.Skipped,
	}
	for _, rule := range r.MatchedRules() {
		doc.Rules = append(doc.Rules, RuleHits{Rule: rule, Hits: r.HitCount(rule)})
	}
	return doc
}

// Marshal encodes doc as JSON when format is "json" and YAML otherwise.
func Marshal(doc *Document, format string) ([]byte, error) {
	if format == "json" {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return yaml.Marshal(doc)
}

// FormatFor picks the export format from a file extension.
func FormatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "yaml"
}

// Export writes doc to path on fs, in the format implied by its extension.
func Export(fs afero.Fs, path string, doc *Document) error {
	data, err := Marshal(doc, FormatFor(path))
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
