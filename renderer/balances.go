package renderer

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/number"
)

// BalancesMarkdown renders the balance of every account of d on a date,
// with the total value per currency.
func BalancesMarkdown(d *finance.DataSet, on date.Date) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Balances on %s\n\n", on)

	totals := map[string]number.Money{}
	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprintln(w, "| Account | Type | Cash | Units | Value |")
		fmt.Fprintln(w, "|:---|:---|---:|---:|---:|")
		balances := d.Balances(on)
		for _, bal := range balances {
			a := bal.Account.Values()
			units := ""
			if !bal.Units.IsZero() {
				units = bal.Units.String()
			}
			value := bal.Value()
			row(w, a.Name, a.Type.String(), bal.Cash.String(), units, value.String())
			totals[value.Currency()] = totals[value.Currency()].Add(value)
		}
		fmt.Fprintln(w)
		return len(balances) > 0
	})
	if len(totals) == 0 {
		b.WriteString("No accounts.\n")
		return b.String()
	}

	currencies := make([]string, 0, len(totals))
	for c := range totals {
		currencies = append(currencies, c)
	}
	slices.Sort(currencies)
	fmt.Fprintln(&b, "| Currency | Total |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, c := range currencies {
		row(&b, c, totals[c].String())
	}
	return b.String()
}

// EventsMarkdown renders the events of d within r.
func EventsMarkdown(d *finance.DataSet, r date.Range) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Events %s\n\n", r)
	printed := false
	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprintln(w, "| Date | Description | Debit | Credit | Amount | Units |")
		fmt.Fprintln(w, "|:---|:---|:---|:---|---:|---:|")
		for it := range d.EventsIn(r) {
			if it.State().IsDeleted() {
				continue
			}
			e := it.Values()
			row(w, e.Date.String(), e.Description, accountName(d, e.Debit), accountName(d, e.Credit),
				e.Amount.String(), e.FormatField(finance.EventUnits))
			printed = true
		}
		return printed
	})
	if !printed {
		b.WriteString("No events.\n")
	}
	return b.String()
}

// accountName returns the name of the account id, or its id when unknown.
func accountName(d *finance.DataSet, id int) string {
	if a := d.Accounts.Search(id); a != nil {
		return a.Values().Name
	}
	return fmt.Sprintf("#%d", id)
}
