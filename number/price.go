package number

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Price is the value of one unit of an asset, in a currency.
type Price struct {
	value decimal.Decimal
	cur   string
}

// P creates a Price from any numeric value and a currency code.
func P[T Numeric](value T, currency string) Price {
	return Price{value: newDecimal(value), cur: currency}
}

// ParsePrice parses a unit price. It returns false when s is not a number.
func ParsePrice(s, currency string) (Price, bool) {
	d, ok := parseDecimal(s)
	if !ok {
		return Price{}, false
	}
	return Price{value: d, cur: currency}, true
}

func (p Price) Currency() string       { return p.cur }
func (p Price) Equal(q Price) bool     { return p.value.Equal(q.value) && p.cur == q.cur }
func (p Price) IsZero() bool           { return p.value.IsZero() }
func (p Price) IsPositive() bool       { return p.value.IsPositive() }
func (p Price) Value(u Units) Money    { return Money{value: p.value.Mul(u.value), cur: p.cur} }
func (p Price) Money() Money           { return Money{value: p.value, cur: p.cur} }
func (p Price) String() string         { return p.value.String() + " " + p.cur }
func (p Price) Decimal() decimal.Decimal { return p.value }

func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(jmoney{Currency: p.cur, Amount: p.value})
}

func (p *Price) UnmarshalJSON(data []byte) error {
	var j jmoney
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	p.value, p.cur = j.Amount, j.Currency
	return nil
}
