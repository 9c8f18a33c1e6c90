package number

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Rate is a percentage, R(12.5) means 12.5%.
type Rate struct {
	value decimal.Decimal
}

// R creates a Rate from a percentage value.
func R[T Numeric](percent T) Rate { return Rate{value: newDecimal(percent)} }

// ParseRate parses a percentage, a trailing "%" is optional. It returns
// false on malformed input.
func ParseRate(s string) (Rate, bool) {
	d, ok := parseDecimal(trimPercent(s))
	if !ok {
		return Rate{}, false
	}
	return Rate{value: d}, true
}

func trimPercent(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '%' || s[len(s)-1] == ' ') {
		s = s[:len(s)-1]
	}
	return s
}

func (r Rate) Equal(q Rate) bool { return r.value.Equal(q.value) }
func (r Rate) IsZero() bool      { return r.value.IsZero() }

func (r Rate) String() string { return r.value.StringFixed(2) + "%" }

// SignedString returns the rate with an explicit sign, zero as "-".
func (r Rate) SignedString() string {
	if r.value.IsZero() {
		return "-"
	}
	if r.value.IsPositive() {
		return "+" + r.String()
	}
	return r.String()
}

func (r Rate) MarshalJSON() ([]byte, error)     { return r.value.MarshalJSON() }
func (r *Rate) UnmarshalJSON(data []byte) error { return r.value.UnmarshalJSON(data) }
