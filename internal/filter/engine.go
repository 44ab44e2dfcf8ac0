// Package filter applies a blacklist rule set to lines of text.
//
// Every stored rule is validated and compiled once per run. A line that any
// rule matches is excluded from the retained output; blank lines are always
// dropped. The accompanying [Report] counts, for every rule, how many lines it
// matched and collects the distinct matched texts.
package filter

import (
	"sort"
	"strings"

	"github.com/zxg-sec/blfilter/internal/errors"
	"github.com/zxg-sec/blfilter/internal/logging"
	"github.com/zxg-sec/blfilter/internal/rule"
)

// Result is the outcome of Engine.Filter.
type Result struct {
	// Retained holds lines no rule matched, in input order, blank lines removed.
	Retained []string
	// Matched holds lines at least one rule matched, in input order, blank lines removed.
	Matched []string
	Report  *Report
}

// Engine runs rule sets over text. The zero value is not usable; call New.
type Engine struct {
	logger *logging.Logger
}

// New creates an Engine that reports skipped rules to logger.
// A nil logger discards diagnostics.
func New(logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Engine{logger: logger}
}

// Compile validates and compiles rules in order. Rules that fail are returned
// in skipped and left out of compiled.
func (e *Engine) Compile(rules []string) (compiled []*rule.Compiled, skipped []SkippedRule) {
	compiled = make([]*rule.Compiled, 0, len(rules))
	for _, raw := range rules {
		c, err := compileStored(raw)
		if err != nil {
			e.logger.WithRule(raw).Warn("skipping rule for this run", "error", err.Error())
			skipped = append(skipped, SkippedRule{Rule: raw, Reason: errors.Reason(err)})
			continue
		}
		e.logger.WithRule(raw).Debug("rule compiled", "kind", c.Kind().String(), "pattern", c.Pattern())
		compiled = append(compiled, c)
	}
	return compiled, skipped
}

func compileStored(raw string) (*rule.Compiled, error) {
	r, err := rule.Validate(raw)
	if err != nil {
		return nil, err
	}
	return rule.Compile(r)
}

// Filter runs rules over lines.
//
// Every rule is tested against every line, so a line matching two rules
// counts towards both. Matched texts are trimmed and deduplicated. An empty
// rule set retains every non-blank line.
func (e *Engine) Filter(lines []string, rules []string) *Result {
	compiled, skipped := e.Compile(rules)

	report := newReport()
	report.OriginalLines = len(lines)
	report.Skipped = skipped

	result := &Result{
		Retained: make([]string, 0, len(lines)),
		Matched:  []string{},
		Report:   report,
	}

	seen := make(map[string]struct{})
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		hit := false

		for _, c := range compiled {
			if !c.Match(line) {
				continue
			}
			hit = true

			key := c.String()
			if _, ok := report.Hits[key]; !ok {
				report.HitOrder = append(report.HitOrder, key)
			}
			report.Hits[key]++

			if _, ok := seen[trimmed]; !ok {
				seen[trimmed] = struct{}{}
				report.MatchedTexts = append(report.MatchedTexts, trimmed)
			}
		}

		if trimmed == "" {
			continue
		}
		if hit {
			result.Matched = append(result.Matched, line)
		} else {
			result.Retained = append(result.Retained, line)
		}
	}

	sort.Strings(report.MatchedTexts)
	report.RetainedLines = len(result.Retained)

	e.logger.Debug("filter complete",
		"original_lines", report.OriginalLines,
		"retained_lines", report.RetainedLines,
		"rules", len(compiled),
		"skipped_rules", len(skipped),
	)

	return result
}
