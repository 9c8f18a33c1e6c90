package number

import "github.com/shopspring/decimal"

// Units is a quantity of an asset (shares, fund units).
type Units struct {
	value decimal.Decimal
}

// U creates Units from any numeric value.
func U[T Numeric](value T) Units { return Units{value: newDecimal(value)} }

// ParseUnits parses a quantity. It returns false when s is not a number.
func ParseUnits(s string) (Units, bool) {
	d, ok := parseDecimal(s)
	if !ok {
		return Units{}, false
	}
	return Units{value: d}, true
}

func (u Units) Equal(v Units) bool   { return u.value.Equal(v.value) }
func (u Units) Add(v Units) Units    { return Units{value: u.value.Add(v.value)} }
func (u Units) Sub(v Units) Units    { return Units{value: u.value.Sub(v.value)} }
func (u Units) IsZero() bool         { return u.value.IsZero() }
func (u Units) IsNegative() bool     { return u.value.IsNegative() }
func (u Units) IsPositive() bool     { return u.value.IsPositive() }
func (u Units) String() string       { return u.value.String() }

// MarshalJSON encodes units as a json number.
func (u Units) MarshalJSON() ([]byte, error) { return u.value.MarshalJSON() }

func (u *Units) UnmarshalJSON(data []byte) error { return u.value.UnmarshalJSON(data) }
