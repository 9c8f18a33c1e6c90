package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/finance"
	"github.com/etnz/finance/item"
)

// ErrorsMarkdown renders the validation errors of d, one row per field
// error. It returns an empty string when there is none.
func ErrorsMarkdown(d *finance.DataSet) string {
	var b strings.Builder
	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "# Validation Errors\n\n")
		fmt.Fprintln(w, "| List | Id | Item | Field | Error |")
		fmt.Fprintln(w, "|:---|---:|:---|:---|:---|")
		n := fieldErrors(w, "account", d.Accounts, accountFields, func(a finance.Account) string { return a.Name })
		n += fieldErrors(w, "event", d.Events, eventFields, func(e finance.Event) string {
			return e.Date.String() + " " + e.Description
		})
		n += fieldErrors(w, "price", d.Prices, priceFields, func(p finance.SpotPrice) string {
			return p.Date.String() + " " + accountName(d, p.Account)
		})
		return n > 0
	})
	return b.String()
}

func fieldErrors[T item.Values[T]](w io.Writer, list string, l *item.List[T], fields []string, label func(T) string) int {
	n := 0
	for it := range l.All() {
		for _, e := range it.Errors() {
			field := fmt.Sprint(e.Field)
			if e.Field >= 0 && e.Field < len(fields) {
				field = fields[e.Field]
			}
			row(w, list, fmt.Sprint(it.ID()), label(it.Values()), field, e.Message)
			n++
		}
	}
	return n
}
