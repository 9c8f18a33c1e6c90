package finance

import (
	"github.com/charmbracelet/log"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/item"
	"github.com/etnz/finance/number"
)

// Balance is the position of one account on a date.
type Balance struct {
	Account *item.Item[Account]
	Cash    number.Money
	Units   number.Units // held units, investment accounts only
	Price   number.Price // last known spot price, investment accounts only
}

// Value returns the market value of an investment account, the cash of
// other accounts.
func (b Balance) Value() number.Money {
	if b.Account.Values().Type != Investment || b.Price.IsZero() {
		return b.Cash
	}
	return b.Price.Value(b.Units)
}

// Balances returns the balance of every visible account at the end of day
// on, in account order. Events in another currency than the account are
// skipped.
func (d *DataSet) Balances(on date.Date) []Balance {
	var balances []Balance
	index := make(map[int]int)
	for it := range d.Accounts.All() {
		if it.State().IsDeleted() {
			continue
		}
		a := it.Values()
		cash := a.Opening
		if cash.Currency() == "" {
			cash = number.M(0, a.Currency)
		}
		index[it.ID()] = len(balances)
		balances = append(balances, Balance{Account: it, Cash: cash})
	}

	move := func(id int, e Event, sign int) {
		i, ok := index[id]
		if !ok {
			return
		}
		b := &balances[i]
		if e.Amount.Currency() != b.Cash.Currency() {
			log.Warn("skipping event in another currency", "event", e.Description, "account", b.Account.Values().Name)
			return
		}
		units := e.Units
		if b.Account.Values().Type != Investment {
			units = number.Units{}
		}
		if sign < 0 {
			b.Cash = b.Cash.Sub(e.Amount)
			b.Units = b.Units.Sub(units)
		} else {
			b.Cash = b.Cash.Add(e.Amount)
			b.Units = b.Units.Add(units)
		}
	}
	for it := range d.EventsIn(date.Range{To: on}) {
		if it.State().IsDeleted() {
			continue
		}
		e := it.Values()
		move(e.Debit, e, -1)
		move(e.Credit, e, +1)
	}

	for it := range d.Prices.All() {
		p := it.Values()
		if p.Date.After(on) {
			break
		}
		if i, ok := index[p.Account]; ok && !it.State().IsDeleted() && balances[i].Account.Values().Type == Investment {
			balances[i].Price = p.Price
		}
	}
	return balances
}
