package finance

import (
	"iter"

	"github.com/etnz/finance/date"
	"github.com/etnz/finance/item"
)

// DataSet holds every list of the bookkeeping.
//
// A CORE data set is the ground truth. Working copies are built with
// Extract, and merged back with ApplyChanges. Lists of all the data sets
// derived from the same CORE share its identifier allocators.
type DataSet struct {
	Accounts *item.List[Account]
	Events   *item.List[Event]
	Prices   *item.List[SpotPrice]
}

// NewDataSet returns an empty CORE data set.
func NewDataSet() *DataSet {
	d := &DataSet{
		Accounts: item.NewList[Account](item.Core, nil),
		Events:   item.NewList[Event](item.Core, nil),
		Prices:   item.NewList[SpotPrice](item.Core, nil),
	}
	// events mostly arrive in date order.
	d.Events.SetInsertFromTail(true)
	d.Prices.SetInsertFromTail(true)
	d.install()
	return d
}

// install sets the validators, bound to the accounts of d.
func (d *DataSet) install() {
	d.Accounts.SetValidator(validateAccount)
	d.Events.SetValidator(eventValidator(d.Accounts))
	d.Prices.SetValidator(priceValidator(d.Accounts))
}

// Style returns the style of the lists.
func (d *DataSet) Style() item.Style { return d.Accounts.Style() }

// Clone returns a deep copy of d.
func (d *DataSet) Clone() *DataSet {
	c := &DataSet{Accounts: d.Accounts.Clone(), Events: d.Events.Clone(), Prices: d.Prices.Clone()}
	c.install()
	return c
}

// Extract returns a working copy of d in style. A SPOT copy edits and hides
// the existing records only, new records need an EDIT copy.
func (d *DataSet) Extract(style item.Style) *DataSet {
	x := &DataSet{
		Accounts: d.Accounts.Extract(style),
		Events:   d.Events.Extract(style),
		Prices:   d.Prices.Extract(style),
	}
	x.install()
	return x
}

// Diff returns the DIFFER data set of what changed from older to newer.
func Diff(newer, older *DataSet) *DataSet {
	x := &DataSet{
		Accounts: item.Diff(newer.Accounts, older.Accounts),
		Events:   item.Diff(newer.Events, older.Events),
		Prices:   item.Diff(newer.Prices, older.Prices),
	}
	x.install()
	return x
}

// Rebase rebases every list of d against base.
func (d *DataSet) Rebase(base *DataSet) {
	d.Accounts.Rebase(base.Accounts)
	d.Events.Rebase(base.Events)
	d.Prices.Rebase(base.Prices)
}

// ApplyChanges merges the changes of edit into d, accounts first so that
// new events may refer to new accounts. It stops at the first failure,
// leaving the changes before it applied.
func (d *DataSet) ApplyChanges(edit *DataSet) error {
	if err := d.Accounts.ApplyChanges(edit.Accounts); err != nil {
		return err
	}
	if err := d.Events.ApplyChanges(edit.Events); err != nil {
		return err
	}
	return d.Prices.ApplyChanges(edit.Prices)
}

// ResetChanges discards every pending change.
func (d *DataSet) ResetChanges() {
	d.Accounts.ResetChanges()
	d.Events.ResetChanges()
	d.Prices.ResetChanges()
}

// Validate validates every list and returns the worst edit state.
func (d *DataSet) Validate() item.EditState {
	return max(d.Accounts.Validate(), d.Events.Validate(), d.Prices.Validate())
}

// EditState returns the worst edit state of the lists.
func (d *DataSet) EditState() item.EditState {
	return max(d.Accounts.EditState(), d.Events.EditState(), d.Prices.EditState())
}

// HasUpdates reports whether any list holds a change to persist.
func (d *DataSet) HasUpdates() bool {
	return d.Accounts.HasUpdates() || d.Events.HasUpdates() || d.Prices.HasUpdates()
}

// HasErrors reports whether any list holds validation errors.
func (d *DataSet) HasErrors() bool {
	return d.Accounts.HasErrors() || d.Events.HasErrors() || d.Prices.HasErrors()
}

// EventsIn iterates over the visible events within r, in date order.
func (d *DataSet) EventsIn(r date.Range) iter.Seq[*item.Item[Event]] {
	return func(yield func(*item.Item[Event]) bool) {
		for it := range d.Events.All() {
			if !r.To.IsZero() && it.Values().Date.After(r.To) {
				return
			}
			if r.Contains(it.Values().Date) && !yield(it) {
				return
			}
		}
	}
}

// Account returns the visible account named name, or nil.
func (d *DataSet) Account(name string) *item.Item[Account] { return d.Accounts.SearchName(name) }
