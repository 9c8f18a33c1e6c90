package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/finance"
	"github.com/etnz/finance/archive"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/number"
	"github.com/google/go-cmp/cmp"
)

func eur(v float64) string { return number.M(v, "EUR").String() }

func day(m, d int) date.Date { return date.New(2024, time.Month(m), d) }

// books returns a checking account funding 3 units of an investment.
func books(t *testing.T) *finance.DataSet {
	t.Helper()
	d := finance.NewDataSet()
	d.Accounts.Add(finance.Account{Name: "Checking", Type: finance.Current, Currency: "EUR", Opening: number.M(100, "EUR")})
	d.Accounts.Add(finance.Account{Name: "PEA", Type: finance.Investment, Currency: "EUR"})
	d.Events.Add(finance.Event{Date: day(1, 10), Description: "buy", Debit: 1, Credit: 2, Amount: number.M(60, "EUR"), Units: number.U(3)})
	d.Prices.Add(finance.SpotPrice{Account: 2, Date: day(1, 15), Price: number.P(25, "EUR")})
	return d
}

func TestBalancesMarkdown(t *testing.T) {
	testCases := []struct {
		name string
		d    *finance.DataSet
		want string
	}{
		{
			name: "books",
			d:    books(t),
			want: "# Balances on 2024-01-31\n\n" +
				"| Account | Type | Cash | Units | Value |\n" +
				"|:---|:---|---:|---:|---:|\n" +
				"| Checking | current | " + eur(40) + " |  | " + eur(40) + " |\n" +
				"| PEA | investment | " + eur(60) + " | 3 | " + eur(75) + " |\n" +
				"\n" +
				"| Currency | Total |\n" +
				"|:---|---:|\n" +
				"| EUR | " + eur(115) + " |\n",
		},
		{
			name: "empty",
			d:    finance.NewDataSet(),
			want: "# Balances on 2024-01-31\n\nNo accounts.\n",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := BalancesMarkdown(tc.d, day(1, 31))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("BalancesMarkdown() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEventsMarkdown(t *testing.T) {
	d := books(t)
	got := EventsMarkdown(d, date.NewRange(day(1, 1), date.Monthly))
	want := "# Events 2024-01-01..2024-01-31\n\n" +
		"| Date | Description | Debit | Credit | Amount | Units |\n" +
		"|:---|:---|:---|:---|---:|---:|\n" +
		"| 2024-01-10 | buy | Checking | PEA | " + eur(60) + " | 3 |\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EventsMarkdown() mismatch (-want +got):\n%s", diff)
	}

	got = EventsMarkdown(d, date.NewRange(day(2, 1), date.Monthly))
	want = "# Events 2024-02-01..2024-02-29\n\nNo events.\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EventsMarkdown() mismatch (-want +got):\n%s", diff)
	}
}

func TestEntriesMarkdown(t *testing.T) {
	entries := []*archive.FileEntry{
		{Name: "a.jsonl", Raw: &archive.Digest{Length: 2048}},
		{
			Name:       "b.jsonl",
			Raw:        &archive.Digest{Length: 1000},
			Compressed: &archive.Digest{Length: 300},
			Encrypted:  &archive.Digest{Length: 300},
			Signature:  []byte{1},
		},
	}
	got := EntriesMarkdown("books.zip", entries)
	want := "# books.zip\n\n" +
		"| File | Mode | Size | Stored | Signed |\n" +
		"|:---|:---|---:|---:|:---:|\n" +
		"| a.jsonl | RAW | 2.0 KiB | 2.0 KiB |  |\n" +
		"| b.jsonl | COMPRESS_AND_ENCRYPT | 1000 B | 300 B | yes |\n" +
		"| **Total** |  | **3.0 KiB** | **2.3 KiB** |  |\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EntriesMarkdown() mismatch (-want +got):\n%s", diff)
	}

	if got, want := EntriesMarkdown("x", nil), "# x\n\nEmpty archive.\n"; got != want {
		t.Errorf("EntriesMarkdown() = %q, want %q", got, want)
	}
}

func TestChangesMarkdown(t *testing.T) {
	older := finance.NewDataSet()
	older.Accounts.Add(finance.Account{Name: "Checking", Type: finance.Current, Currency: "EUR"})
	newer := older.Clone()
	newer.Accounts.Search(1).Edit(func(a *finance.Account) { a.Description = "main | joint" })
	newer.Accounts.AddNew(finance.Account{Name: "Savings", Type: finance.Savings, Currency: "EUR"})

	got := ChangesMarkdown("Changes", finance.Diff(newer, older))
	want := "# Changes\n\n" +
		"## Accounts\n\n" +
		"| State | Id | Item | Changes |\n" +
		"|:---|---:|:---|:---|\n" +
		"| CHANGED | 1 | Checking | description: \"\" → \"main \\| joint\" |\n" +
		"| NEW | 2 | Savings |  |\n" +
		"\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ChangesMarkdown() mismatch (-want +got):\n%s", diff)
	}

	if got, want := ChangesMarkdown("Changes", finance.Diff(older, older)), "# Changes\n\nNo changes.\n"; got != want {
		t.Errorf("ChangesMarkdown() = %q, want %q", got, want)
	}
}

func TestTerminal(t *testing.T) {
	if got := Terminal("  \n", "notty", 80); got != "" {
		t.Errorf("Terminal() of blank markdown = %q, want empty", got)
	}
	got := Terminal("# Title\n\nsome text", "notty", 80)
	if !strings.Contains(got, "Title") || !strings.Contains(got, "some text") {
		t.Errorf("Terminal() = %q, want the title and the text", got)
	}
}

func TestErrorsMarkdown(t *testing.T) {
	d := books(t)
	if got := ErrorsMarkdown(d); got != "" {
		t.Errorf("ErrorsMarkdown() of valid books = %q, want empty", got)
	}
	d.Events.Add(finance.Event{Date: day(2, 1), Description: "loop", Debit: 1, Credit: 1, Amount: number.M(5, "EUR")})
	d.Validate()
	want := "# Validation Errors\n\n" +
		"| List | Id | Item | Field | Error |\n" +
		"|:---|---:|:---|:---|:---|\n" +
		"| event | 2 | 2024-02-01 loop | credit | debit and credit accounts are the same |\n"
	if diff := cmp.Diff(want, ErrorsMarkdown(d)); diff != "" {
		t.Errorf("ErrorsMarkdown() mismatch (-want +got):\n%s", diff)
	}
}
