package finance

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/finance/item"
	"github.com/etnz/finance/number"
)

// AccountType is the kind of an account. Accounts sort by type first.
type AccountType int

const (
	Current AccountType = iota
	Savings
	Cash
	Credit
	Investment
	Loan
)

var accountTypeNames = []string{"current", "savings", "cash", "credit", "investment", "loan"}

func (t AccountType) String() string {
	if t < 0 || int(t) >= len(accountTypeNames) {
		return fmt.Sprintf("AccountType(%d)", int(t))
	}
	return accountTypeNames[t]
}

// ParseAccountType parses an account type name, case insensitive.
func ParseAccountType(s string) (AccountType, error) {
	for i, n := range accountTypeNames {
		if strings.EqualFold(s, n) {
			return AccountType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown account type %q, want one of %s", s, strings.Join(accountTypeNames, ", "))
}

func (t AccountType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *AccountType) UnmarshalText(text []byte) (err error) {
	*t, err = ParseAccountType(string(text))
	return err
}

// Account fields, as numbered for item.Values.
const (
	AccountName = iota
	AccountTypeField
	AccountCurrency
	AccountDescription
	AccountOpening
	AccountClosed
)

// Account is a bank, cash or investment account.
type Account struct {
	Name        string
	Type        AccountType
	Currency    string
	Description string
	Opening     number.Money // opening balance
	Closed      bool
}

var _ item.Values[Account] = Account{}

// Compare sorts accounts by type, then by name.
func (a Account) Compare(b Account) int {
	if a.Type != b.Type {
		return int(a.Type) - int(b.Type)
	}
	return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
}

func (a Account) Equal(b Account) bool {
	return a.Name == b.Name && a.Type == b.Type && a.Currency == b.Currency &&
		a.Description == b.Description && a.Opening.Equal(b.Opening) && a.Closed == b.Closed
}

func (a Account) Copy() Account { return a }

func (a Account) FieldChanged(field int, ref Account) bool {
	switch field {
	case AccountName:
		return a.Name != ref.Name
	case AccountTypeField:
		return a.Type != ref.Type
	case AccountCurrency:
		return a.Currency != ref.Currency
	case AccountDescription:
		return a.Description != ref.Description
	case AccountOpening:
		return !a.Opening.Equal(ref.Opening)
	case AccountClosed:
		return a.Closed != ref.Closed
	default:
		return false
	}
}

func (a Account) FormatField(field int) string {
	switch field {
	case AccountName:
		return a.Name
	case AccountTypeField:
		return a.Type.String()
	case AccountCurrency:
		return a.Currency
	case AccountDescription:
		return a.Description
	case AccountOpening:
		if a.Opening.IsZero() {
			return ""
		}
		return a.Opening.String()
	case AccountClosed:
		return strconv.FormatBool(a.Closed)
	default:
		return ""
	}
}

// Label returns the account name, for item.List.SearchName.
func (a Account) Label() string { return a.Name }
