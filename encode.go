package finance

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/etnz/finance/date"
	"github.com/etnz/finance/failure"
	"github.com/etnz/finance/item"
	"github.com/etnz/finance/number"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Lists are persisted as JSONL, one live item per line, with its id first.
// Deleted items are not persisted. Lines are human-readable and diff well.

// jaccount is the line of an account.
type jaccount struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Type        AccountType  `json:"type"`
	Currency    string       `json:"currency"`
	Description string       `json:"description"`
	Opening     number.Money `json:"opening"`
	Closed      bool         `json:"closed"`
}

type jevent struct {
	ID          int          `json:"id"`
	Date        date.Date    `json:"date"`
	Description string       `json:"description"`
	Debit       int          `json:"debit"`
	Credit      int          `json:"credit"`
	Amount      number.Money `json:"amount"`
	Units       number.Units `json:"units"`
}

type jprice struct {
	ID      int          `json:"id"`
	Account int          `json:"account"`
	Date    date.Date    `json:"date"`
	Price   number.Price `json:"price"`
}

// EncodeAccounts writes the live accounts of l.
func EncodeAccounts(w io.Writer, l *item.List[Account]) error {
	return encodeList(w, l, func(o *jsonObjectWriter, a Account) {
		o.Append("name", a.Name).
			Append("type", a.Type).
			Append("currency", a.Currency).
			Optional("description", a.Description).
			When(!a.Opening.IsZero(), "opening", a.Opening).
			Optional("closed", a.Closed)
	})
}

// EncodeEvents writes the live events of l.
func EncodeEvents(w io.Writer, l *item.List[Event]) error {
	return encodeList(w, l, func(o *jsonObjectWriter, e Event) {
		o.Append("date", e.Date).
			Append("description", e.Description).
			Append("debit", e.Debit).
			Append("credit", e.Credit).
			Append("amount", e.Amount).
			When(!e.Units.IsZero(), "units", e.Units)
	})
}

// EncodePrices writes the live spot prices of l.
func EncodePrices(w io.Writer, l *item.List[SpotPrice]) error {
	return encodeList(w, l, func(o *jsonObjectWriter, p SpotPrice) {
		o.Append("account", p.Account).
			Append("date", p.Date).
			Append("price", p.Price)
	})
}

func encodeList[T item.Values[T]](w io.Writer, l *item.List[T], fields func(*jsonObjectWriter, T)) error {
	bw := bufio.NewWriter(w)
	for it := range l.All() {
		if it.State().IsDeleted() {
			continue
		}
		var o jsonObjectWriter
		o.Append("id", it.ID())
		fields(&o, it.Values())
		line, err := o.MarshalJSON()
		if err != nil {
			return failure.Wrap(failure.Data, err, "cannot encode item %d", it.ID())
		}
		bw.Write(line)
		bw.WriteByte('\n')
	}
	return failure.Wrap(failure.IO, bw.Flush(), "cannot write list")
}

// DecodeAccounts reads accounts into the CORE list l.
func DecodeAccounts(r io.Reader, l *item.List[Account]) error {
	return decodeList(r, l, func(j jaccount) (int, Account) {
		return j.ID, Account{
			Name:        j.Name,
			Type:        j.Type,
			Currency:    j.Currency,
			Description: j.Description,
			Opening:     j.Opening,
			Closed:      j.Closed,
		}
	})
}

// DecodeEvents reads events into the CORE list l.
func DecodeEvents(r io.Reader, l *item.List[Event]) error {
	return decodeList(r, l, func(j jevent) (int, Event) {
		return j.ID, Event{
			Date:        j.Date,
			Description: j.Description,
			Debit:       j.Debit,
			Credit:      j.Credit,
			Amount:      j.Amount,
			Units:       j.Units,
		}
	})
}

// DecodePrices reads spot prices into the CORE list l.
func DecodePrices(r io.Reader, l *item.List[SpotPrice]) error {
	return decodeList(r, l, func(j jprice) (int, SpotPrice) {
		return j.ID, SpotPrice{Account: j.Account, Date: j.Date, Price: j.Price}
	})
}

// decodeList reads one item per line. Blank lines are skipped, malformed
// lines and duplicate ids are data errors.
func decodeList[J any, T item.Values[T]](r io.Reader, l *item.List[T], convert func(J) (int, T)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var j J
		if err := json.Unmarshal(line, &j); err != nil {
			return failure.Wrap(failure.Data, err, "format error on line %d %q", n, string(line))
		}
		id, values := convert(j)
		if _, err := l.AddWithID(id, values); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return failure.Wrap(failure.IO, scanner.Err(), "cannot read list")
}
