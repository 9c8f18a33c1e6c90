package finance

import (
	"testing"
	"time"

	"github.com/etnz/finance/date"
	"github.com/etnz/finance/item"
	"github.com/etnz/finance/number"
)

// EUR is a helper for test to create euro money from const
func EUR(v float64) number.Money { return number.M(v, "EUR") }

// day is a helper for test to create a date in 2024.
func day(m, d int) date.Date { return date.New(2024, time.Month(m), d) }

// account ids of sample.
const (
	checking = iota + 1
	livret
	pea
	wallet
)

// sample returns a CORE data set:
//
//	Checking  current     1000 EUR opening
//	Livret A  savings
//	PEA       investment  10 units bought at 50, priced 52 on 01-31
//	Wallet    cash
func sample(t *testing.T) *DataSet {
	t.Helper()
	d := NewDataSet()
	accounts := []Account{
		{Name: "Checking", Type: Current, Currency: "EUR", Opening: EUR(1000)},
		{Name: "Livret A", Type: Savings, Currency: "EUR"},
		{Name: "PEA", Type: Investment, Currency: "EUR", Description: "stocks"},
		{Name: "Wallet", Type: Cash, Currency: "EUR"},
	}
	for i, a := range accounts {
		mustAdd(t, d.Accounts, i+1, a)
	}
	mustAdd(t, d.Events, 1, Event{Date: day(1, 5), Description: "transfer", Debit: checking, Credit: livret, Amount: EUR(200)})
	mustAdd(t, d.Events, 2, Event{Date: day(1, 10), Description: "buy etf", Debit: checking, Credit: pea, Amount: EUR(500), Units: number.U(10)})
	mustAdd(t, d.Events, 3, Event{Date: day(2, 1), Description: "atm", Debit: checking, Credit: wallet, Amount: EUR(40)})
	mustAdd(t, d.Prices, 1, SpotPrice{Account: pea, Date: day(1, 31), Price: number.P(52, "EUR")})
	return d
}

func mustAdd[T item.Values[T]](t *testing.T, l *item.List[T], id int, v T) {
	t.Helper()
	if _, err := l.AddWithID(id, v); err != nil {
		t.Fatalf("AddWithID(%d) error = %v", id, err)
	}
}

// names returns the names of the visible accounts.
func names(l *item.List[Account]) []string {
	var s []string
	for it := range l.All() {
		s = append(s, it.Values().Name)
	}
	return s
}
