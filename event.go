package finance

import (
	"strconv"
	"strings"

	"github.com/etnz/finance/date"
	"github.com/etnz/finance/item"
	"github.com/etnz/finance/number"
)

// Event fields, as numbered for item.Values.
const (
	EventDate = iota
	EventDescription
	EventDebit
	EventCredit
	EventAmount
	EventUnits
)

// Event is a movement of money from the Debit account to the Credit
// account. Units is the quantity bought or sold when one side is an
// investment account.
type Event struct {
	Date        date.Date
	Description string
	Debit       int // account id
	Credit      int // account id
	Amount      number.Money
	Units       number.Units
}

var _ item.Values[Event] = Event{}

// Compare sorts events by date, then by description.
func (e Event) Compare(f Event) int {
	if c := e.Date.Compare(f.Date); c != 0 {
		return c
	}
	return strings.Compare(e.Description, f.Description)
}

func (e Event) Equal(f Event) bool {
	return e.Date == f.Date && e.Description == f.Description && e.Debit == f.Debit &&
		e.Credit == f.Credit && e.Amount.Equal(f.Amount) && e.Units.Equal(f.Units)
}

func (e Event) Copy() Event { return e }

func (e Event) FieldChanged(field int, ref Event) bool {
	switch field {
	case EventDate:
		return e.Date != ref.Date
	case EventDescription:
		return e.Description != ref.Description
	case EventDebit:
		return e.Debit != ref.Debit
	case EventCredit:
		return e.Credit != ref.Credit
	case EventAmount:
		return !e.Amount.Equal(ref.Amount)
	case EventUnits:
		return !e.Units.Equal(ref.Units)
	default:
		return false
	}
}

func (e Event) FormatField(field int) string {
	switch field {
	case EventDate:
		return e.Date.String()
	case EventDescription:
		return e.Description
	case EventDebit:
		return strconv.Itoa(e.Debit)
	case EventCredit:
		return strconv.Itoa(e.Credit)
	case EventAmount:
		return e.Amount.String()
	case EventUnits:
		if e.Units.IsZero() {
			return ""
		}
		return e.Units.String()
	default:
		return ""
	}
}

// SpotPrice fields, as numbered for item.Values.
const (
	SpotAccount = iota
	SpotDate
	SpotPriceField
)

// SpotPrice is the price of one unit of an investment account on a date.
type SpotPrice struct {
	Account int // account id
	Date    date.Date
	Price   number.Price
}

var _ item.Values[SpotPrice] = SpotPrice{}

// Compare sorts prices by date, then by account.
func (p SpotPrice) Compare(q SpotPrice) int {
	if c := p.Date.Compare(q.Date); c != 0 {
		return c
	}
	return p.Account - q.Account
}

func (p SpotPrice) Equal(q SpotPrice) bool {
	return p.Account == q.Account && p.Date == q.Date && p.Price.Equal(q.Price)
}

func (p SpotPrice) Copy() SpotPrice { return p }

func (p SpotPrice) FieldChanged(field int, ref SpotPrice) bool {
	switch field {
	case SpotAccount:
		return p.Account != ref.Account
	case SpotDate:
		return p.Date != ref.Date
	case SpotPriceField:
		return !p.Price.Equal(ref.Price)
	default:
		return false
	}
}

func (p SpotPrice) FormatField(field int) string {
	switch field {
	case SpotAccount:
		return strconv.Itoa(p.Account)
	case SpotDate:
		return p.Date.String()
	case SpotPriceField:
		return p.Price.String()
	default:
		return ""
	}
}
