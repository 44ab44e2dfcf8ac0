package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zxg-sec/blfilter/internal/errors"
)

// Compiled is a Rule paired with its matcher. It is rebuilt on every
// filtering run and never persisted.
type Compiled struct {
	Rule
	re *regexp.Regexp
}

// Compile builds the matcher for r.
//
// Rules without a wildcard match their literal text. Wildcard rules have
// their dots escaped first and each "*" replaced by ".*" afterwards, so the
// substituted ".*" is never itself escaped.
func Compile(r Rule) (*Compiled, error) {
	re, err := regexp.Compile(Pattern(r.raw))
	if err != nil {
		return nil, errors.NewRuleError(r.raw, fmt.Errorf("%w: %v", errors.ErrBadWildcard, err))
	}
	return &Compiled{Rule: r, re: re}, nil
}

// Pattern returns the regular expression Compile uses for raw.
func Pattern(raw string) string {
	if !strings.Contains(raw, Wildcard) {
		return regexp.QuoteMeta(raw)
	}
	return wildcardPattern(raw)
}

func wildcardPattern(raw string) string {
	escaped := strings.ReplaceAll(raw, ".", `\.`)
	return strings.ReplaceAll(escaped, Wildcard, ".*")
}

// Match reports whether the rule occurs anywhere in line. Matching is not
// anchored and ignores token boundaries: "127.0.0.1" matches inside
// "127.0.0.100".
func (c *Compiled) Match(line string) bool {
	return c.re.MatchString(line)
}

// Pattern returns the compiled regular expression source.
func (c *Compiled) Pattern() string {
	return c.re.String()
}
