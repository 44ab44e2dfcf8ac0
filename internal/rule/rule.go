// Package rule classifies blacklist rule strings and compiles them into
// line matchers.
//
// A rule is one of five kinds: an exact IPv4 address, an IPv4 address with
// wildcard octets, an IPv4 CIDR block, an exact domain, or a domain with
// wildcard labels. [Validate] is the only way to obtain a [Rule]; [Compile]
// turns a Rule into a [Compiled] matcher that reports whether the rule occurs
// anywhere inside a line of text.
package rule

// Wildcard is the placeholder that stands for any run of characters.
const Wildcard = "*"

// Kind identifies which grammar accepted a rule.
type Kind int

const (
	KindUnknown Kind = iota
	KindExactIPv4
	KindWildcardIPv4
	KindCIDR
	KindExactDomain
	KindWildcardDomain
)

// String returns the kind name used in logs and reports.
func (k Kind) String() string {
	switch k {
	case KindExactIPv4:
		return "ipv4"
	case KindWildcardIPv4:
		return "ipv4-wildcard"
	case KindCIDR:
		return "cidr"
	case KindExactDomain:
		return "domain"
	case KindWildcardDomain:
		return "domain-wildcard"
	default:
		return "unknown"
	}
}

// Rule is a validated blacklist entry. Two rules are the same rule when their
// raw text is equal.
type Rule struct {
	raw  string
	kind Kind
}

// String returns the rule exactly as the operator entered it.
func (r Rule) String() string {
	return r.raw
}

// Kind returns the grammar that accepted the rule.
func (r Rule) Kind() Kind {
	return r.kind
}
