// Package ruleset holds the ordered blacklist and persists it as a flat file.
//
// A [Set] is owned by one caller per process. Its mutating methods return a
// result describing what happened to every candidate or index; callers are
// expected to save the set through a [Store] after each mutation.
package ruleset

import (
	"slices"
	"sort"
	"strings"

	"github.com/zxg-sec/blfilter/internal/errors"
	"github.com/zxg-sec/blfilter/internal/rule"
)

// Set is an ordered list of rule strings. Position i (0-based) is shown to
// operators as index i+1.
type Set struct {
	rules []string
}

// New returns a Set holding rules in the given order. Rules are taken as-is:
// neither validation nor deduplication is applied.
func New(rules ...string) *Set {
	return &Set{rules: slices.Clone(rules)}
}

// Rules returns a copy of the rules in order.
func (s *Set) Rules() []string {
	return slices.Clone(s.rules)
}

// Len returns the number of rules.
func (s *Set) Len() int {
	return len(s.rules)
}

// Contains reports whether rule is in the set.
func (s *Set) Contains(r string) bool {
	return slices.Contains(s.rules, r)
}

// At returns the rule at the 1-based index.
func (s *Set) At(index int) (string, error) {
	if index < 1 || index > len(s.rules) {
		return "", errors.NewIndexError(index, len(s.rules))
	}
	return s.rules[index-1], nil
}

// Rejected is a candidate that failed validation.
type Rejected struct {
	Rule string
	Err  error
}

// AddResult reports the outcome of Add for every non-empty candidate.
type AddResult struct {
	Added      []string
	Duplicates []string
	Invalid    []Rejected
}

// Changed reports whether the set was modified.
func (r AddResult) Changed() bool {
	return len(r.Added) > 0
}

// Add appends each valid candidate that is not already present. Candidates
// are trimmed; empty ones are ignored. Invalid candidates and duplicates
// don't prevent the rest of the batch from being added.
func (s *Set) Add(candidates ...string) AddResult {
	var res AddResult
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if err := checkSingleLine(c); err != nil {
			res.Invalid = append(res.Invalid, Rejected{Rule: c, Err: err})
			continue
		}
		if s.Contains(c) {
			res.Duplicates = append(res.Duplicates, c)
			continue
		}
		if _, err := rule.Validate(c); err != nil {
			res.Invalid = append(res.Invalid, Rejected{Rule: c, Err: err})
			continue
		}
		s.rules = append(s.rules, c)
		res.Added = append(res.Added, c)
	}
	return res
}

// RemoveResult reports the outcome of Remove.
type RemoveResult struct {
	// Removed holds the removed rules, highest index first.
	Removed []string
	// Invalid holds indices outside the set, highest first.
	Invalid []int
}

// Changed reports whether the set was modified.
func (r RemoveResult) Changed() bool {
	return len(r.Removed) > 0
}

// Remove deletes rules by 1-based index. Indices are processed from highest
// to lowest so every index refers to the set as it was before the call.
// A repeated index removes one rule and reports the repeats as invalid.
func (s *Set) Remove(indices ...int) RemoveResult {
	sorted := slices.Clone(indices)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	var res RemoveResult
	removedAt := make(map[int]bool)
	for _, idx := range sorted {
		if idx < 1 || idx > len(s.rules) || removedAt[idx] {
			res.Invalid = append(res.Invalid, idx)
			continue
		}
		res.Removed = append(res.Removed, s.rules[idx-1])
		s.rules = slices.Delete(s.rules, idx-1, idx)
		removedAt[idx] = true
	}
	return res
}

// EditResult describes a successful Edit.
type EditResult struct {
	Index int
	Old   string
	New   string
}

// Changed reports whether the rule text actually changed.
func (r EditResult) Changed() bool {
	return r.Old != r.New
}

// Edit replaces the rule at the 1-based index with candidate.
//
// It fails with an *errors.IndexError for a bad index, errors.ErrEmptyRule
// for a blank candidate, an *errors.RuleError for an invalid or multi-line
// one, and an
// *errors.AlreadyExistsError when candidate equals a different rule in the
// set. Replacing a rule with itself succeeds without a change.
func (s *Set) Edit(index int, candidate string) (EditResult, error) {
	old, err := s.At(index)
	if err != nil {
		return EditResult{}, err
	}

	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return EditResult{}, errors.ErrEmptyRule
	}
	if err := checkSingleLine(candidate); err != nil {
		return EditResult{}, err
	}
	if _, err := rule.Validate(candidate); err != nil {
		return EditResult{}, err
	}
	if candidate != old && s.Contains(candidate) {
		return EditResult{}, errors.NewAlreadyExistsError("rule", candidate)
	}

	s.rules[index-1] = candidate
	return EditResult{Index: index, Old: old, New: candidate}, nil
}

// checkSingleLine rejects candidates the one-rule-per-line store would split.
func checkSingleLine(candidate string) error {
	if strings.ContainsAny(candidate, "\r\n") {
		return errors.NewRuleError(candidate, errors.ErrMultilineRule)
	}
	return nil
}
