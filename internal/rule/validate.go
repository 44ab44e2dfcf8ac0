package rule

import (
	"fmt"
	"net/netip"
	"regexp"
	"strings"

	"github.com/zxg-sec/blfilter/internal/errors"
)

var (
	// Four 1-3 digit groups, optionally followed by "*/N" or ".*".
	// Octet values are not range-checked.
	ipv4Pattern = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}(\*/\d+|\.\*)?$`)

	// Shape used only to label wildcard rules that look like addresses.
	wildcardIPv4Shape = regexp.MustCompile(`^(\d{1,3}|\*)(\.(\d{1,3}|\*)){3}$`)

	domainPattern = regexp.MustCompile(`^([a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}$`)
)

// Validate classifies candidate and returns the accepted Rule.
//
// Grammars are tried in order and the first match wins:
//
//  1. anything containing ".." is rejected
//  2. dotted-quad IPv4, optionally with a "*/N" or ".*" suffix
//  3. anything containing "*" whose wildcard pattern compiles
//  4. plain domain names ending in a label of two or more letters
//  5. IPv4 CIDR blocks with a prefix length of 0-32
//
// A rejected candidate yields a *errors.RuleError describing why.
func Validate(candidate string) (Rule, error) {
	if strings.Contains(candidate, "..") {
		return Rule{}, errors.NewRuleError(candidate, errors.ErrConsecutiveDots)
	}

	if ipv4Pattern.MatchString(candidate) {
		kind := KindExactIPv4
		if strings.Contains(candidate, Wildcard) {
			kind = KindWildcardIPv4
		}
		return Rule{raw: candidate, kind: kind}, nil
	}

	if strings.Contains(candidate, Wildcard) {
		if _, err := regexp.Compile(wildcardPattern(candidate)); err != nil {
			return Rule{}, errors.NewRuleError(candidate, fmt.Errorf("%w: %v", errors.ErrBadWildcard, err))
		}
		kind := KindWildcardDomain
		if wildcardIPv4Shape.MatchString(candidate) {
			kind = KindWildcardIPv4
		}
		return Rule{raw: candidate, kind: kind}, nil
	}

	if domainPattern.MatchString(candidate) {
		return Rule{raw: candidate, kind: KindExactDomain}, nil
	}

	if isIPv4Network(candidate) {
		return Rule{raw: candidate, kind: KindCIDR}, nil
	}

	return Rule{}, errors.NewRuleError(candidate, errors.ErrUnrecognizedRule)
}

// isIPv4Network accepts "a.b.c.d/n" with host bits allowed to be set.
func isIPv4Network(s string) bool {
	prefix, err := netip.ParsePrefix(s)
	if err != nil {
		return false
	}
	return prefix.Addr().Is4()
}
