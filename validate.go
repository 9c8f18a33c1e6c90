package finance

import (
	"strings"

	"github.com/etnz/finance/item"
	"github.com/etnz/finance/number"
)

// live reports whether it is a visible, non deleted item.
func live[T item.Values[T]](it *item.Item[T]) bool {
	return it != nil && !it.IsDeleted() && !it.State().IsDeleted()
}

// validateAccount checks the name, its uniqueness and the currencies.
func validateAccount(l *item.List[Account], it *item.Item[Account]) {
	a := it.Values()
	if strings.TrimSpace(a.Name) == "" {
		it.AddError(AccountName, "name is required")
	}
	for other := range l.All() {
		if other != it && live(other) && strings.EqualFold(other.Values().Name, a.Name) {
			it.AddError(AccountName, "name is already used")
			break
		}
	}
	if !number.ValidCurrency(a.Currency) {
		it.AddError(AccountCurrency, "unknown currency "+a.Currency)
	}
	if !a.Opening.IsZero() && a.Opening.Currency() != a.Currency {
		it.AddError(AccountOpening, "opening balance is not in "+a.Currency)
	}
}

// eventValidator checks events against accounts.
func eventValidator(accounts *item.List[Account]) item.Validator[Event] {
	return func(l *item.List[Event], it *item.Item[Event]) {
		e := it.Values()
		if e.Date.IsZero() {
			it.AddError(EventDate, "date is required")
		}
		debit, credit := accounts.Search(e.Debit), accounts.Search(e.Credit)
		if !live(debit) {
			it.AddError(EventDebit, "unknown debit account")
		}
		if !live(credit) {
			it.AddError(EventCredit, "unknown credit account")
		}
		if e.Debit == e.Credit {
			it.AddError(EventCredit, "debit and credit accounts are the same")
		}
		if !e.Amount.IsPositive() {
			it.AddError(EventAmount, "amount must be positive")
		} else if live(debit) && e.Amount.Currency() != debit.Values().Currency {
			it.AddError(EventAmount, "amount is not in "+debit.Values().Currency)
		}
		if e.Units.IsNegative() {
			it.AddError(EventUnits, "units must not be negative")
		}
	}
}

// priceValidator checks spot prices against accounts.
func priceValidator(accounts *item.List[Account]) item.Validator[SpotPrice] {
	return func(l *item.List[SpotPrice], it *item.Item[SpotPrice]) {
		p := it.Values()
		a := accounts.Search(p.Account)
		switch {
		case !live(a):
			it.AddError(SpotAccount, "unknown account")
		case a.Values().Type != Investment:
			it.AddError(SpotAccount, "not an investment account")
		}
		if p.Date.IsZero() {
			it.AddError(SpotDate, "date is required")
		}
		if !p.Price.IsPositive() {
			it.AddError(SpotPriceField, "price must be positive")
		}
		for other := range l.All() {
			if other != it && live(other) && other.Values().Account == p.Account && other.Values().Date == p.Date {
				it.AddError(SpotDate, "a price is already set on this date")
				break
			}
		}
	}
}
