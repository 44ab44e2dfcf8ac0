package rule

import (
	"errors"
	"testing"

	blerrors "github.com/zxg-sec/blfilter/internal/errors"
)

func TestValidate_Accepted(t *testing.T) {
	tests := []struct {
		candidate string
		wantKind  Kind
	}{
		{"127.0.0.1", KindExactIPv4},
		{"999.999.999.999", KindExactIPv4},
		{"1.2.3.4.*", KindWildcardIPv4},
		{"10.0.0.1*/8", KindWildcardIPv4},
		{"127.0.0.*", KindWildcardIPv4},
		{"10.*.*.1", KindWildcardIPv4},
		{"192.168.1.0/24", KindCIDR},
		{"192.168.1.7/24", KindCIDR},
		{"0.0.0.0/0", KindCIDR},
		{"10.0.0.0/32", KindCIDR},
		{"*.gov.cn", KindWildcardDomain},
		{"ads.*.example.com", KindWildcardDomain},
		{"*", KindWildcardDomain},
		{"example.com", KindExactDomain},
		{"sub-1.example.co", KindExactDomain},
	}

	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			r, err := Validate(tt.candidate)
			if err != nil {
				t.Fatalf("Validate(%q) error = %v, want nil", tt.candidate, err)
			}
			if r.String() != tt.candidate {
				t.Errorf("String() = %q, want %q", r.String(), tt.candidate)
			}
			if r.Kind() != tt.wantKind {
				t.Errorf("Kind() = %v, want %v", r.Kind(), tt.wantKind)
			}
		})
	}
}

func TestValidate_Rejected(t *testing.T) {
	tests := []struct {
		candidate string
		wantErr   error
	}{
		{"127..0.0.1", blerrors.ErrConsecutiveDots},
		{"...", blerrors.ErrConsecutiveDots},
		{"*..gov.cn", blerrors.ErrConsecutiveDots},
		{"example..com", blerrors.ErrConsecutiveDots},
		{"not a domain", blerrors.ErrUnrecognizedRule},
		{"", blerrors.ErrUnrecognizedRule},
		{"example.c", blerrors.ErrUnrecognizedRule},
		{"1.2.3.4/33", blerrors.ErrUnrecognizedRule},
		{"1.2.3/24", blerrors.ErrUnrecognizedRule},
		{"::1/128", blerrors.ErrUnrecognizedRule},
		{"*(.com", blerrors.ErrBadWildcard},
		{"a*[", blerrors.ErrBadWildcard},
	}

	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			_, err := Validate(tt.candidate)
			if err == nil {
				t.Fatalf("Validate(%q) = nil error, want rejection", tt.candidate)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate(%q) error = %v, want %v", tt.candidate, err, tt.wantErr)
			}
			if !errors.Is(err, blerrors.ErrRuleInvalid) {
				t.Errorf("error should match ErrRuleInvalid: %v", err)
			}

			var ruleErr *blerrors.RuleError
			if !errors.As(err, &ruleErr) {
				t.Fatalf("error is not a *RuleError: %T", err)
			}
			if ruleErr.Rule != tt.candidate {
				t.Errorf("RuleError.Rule = %q, want %q", ruleErr.Rule, tt.candidate)
			}
		})
	}
}

func TestValidate_DoubleDotOverridesOtherGrammars(t *testing.T) {
	// Each of these would match some later grammar if ".." were ignored.
	for _, candidate := range []string{"1..2.3.4", "*..x", "a..b.cn", "10..0.0.0/8"} {
		if _, err := Validate(candidate); !errors.Is(err, blerrors.ErrConsecutiveDots) {
			t.Errorf("Validate(%q) err = %v, want consecutive dots", candidate, err)
		}
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindExactIPv4, "ipv4"},
		{KindWildcardIPv4, "ipv4-wildcard"},
		{KindCIDR, "cidr"},
		{KindExactDomain, "domain"},
		{KindWildcardDomain, "domain-wildcard"},
		{KindUnknown, "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
