package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/finance"
	"github.com/etnz/finance/item"
)

// field names, in field number order.
var (
	accountFields = []string{"name", "type", "currency", "description", "opening", "closed"}
	eventFields   = []string{"date", "description", "debit", "credit", "amount", "units"}
	priceFields   = []string{"account", "date", "price"}
)

// ChangesMarkdown renders the changes held by a DIFFER or UPDATE data set,
// one section per list. Lists without changes are skipped.
func ChangesMarkdown(title string, d *finance.DataSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	n := 0
	ConditionalBlock(&b, func(w io.Writer) bool {
		return changes(w, "Accounts", d.Accounts, accountFields, func(a finance.Account) string { return a.Name }, &n)
	})
	ConditionalBlock(&b, func(w io.Writer) bool {
		return changes(w, "Events", d.Events, eventFields, func(e finance.Event) string {
			return e.Date.String() + " " + e.Description
		}, &n)
	})
	ConditionalBlock(&b, func(w io.Writer) bool {
		return changes(w, "Prices", d.Prices, priceFields, func(p finance.SpotPrice) string {
			return p.Date.String() + " " + accountName(d, p.Account)
		}, &n)
	})
	if n == 0 {
		b.WriteString("No changes.\n")
	}
	return b.String()
}

// changes prints a section listing the items of l that are not CLEAN. It
// returns false when there is none.
func changes[T item.Values[T]](w io.Writer, section string, l *item.List[T], fields []string, label func(T) string, n *int) bool {
	fmt.Fprintf(w, "## %s\n\n", section)
	fmt.Fprintln(w, "| State | Id | Item | Changes |")
	fmt.Fprintln(w, "|:---|---:|:---|:---|")
	found := false
	for it := range l.All() {
		if it.State() == item.StateClean || it.State() == item.StateNone {
			continue
		}
		found = true
		*n++
		row(w, it.State().String(), fmt.Sprint(it.ID()), label(it.Values()), fieldChanges(it, fields))
	}
	fmt.Fprintln(w)
	return found
}

// fieldChanges describes the fields of a CHANGED item that differ from its
// original values.
func fieldChanges[T item.Values[T]](it *item.Item[T], fields []string) string {
	if it.State().Kind() != item.Changed {
		return ""
	}
	orig, ok := it.Original()
	if !ok {
		if it.Base() == nil {
			return ""
		}
		orig = it.Base().Values()
	}
	var s []string
	for i, name := range fields {
		if it.FieldChanged(i) {
			s = append(s, fmt.Sprintf("%s: %q → %q", name, orig.FormatField(i), it.FormatField(i)))
		}
	}
	return strings.Join(s, ", ")
}
