package item

import (
	"fmt"

	"github.com/etnz/finance/failure"
)

// Clone returns a deep copy of the list, same style, items sharing the same
// bases.
func (l *List[T]) Clone() *List[T] {
	c := l.derive(l.style)
	c.showDeleted = l.showDeleted
	for it := range l.items() {
		c.link(it.clone())
	}
	c.editState = l.editState
	return c
}

// Extract returns a copy of the list in style, each item based on its
// counterpart in l.
//
// UPDATE extracts only hold the items with a change to persist. EDIT and SPOT
// items start CLEAN. Other styles keep the states, and CHANGED items get a
// single history entry holding the original values so that what changed
// remains comparable.
func (l *List[T]) Extract(style Style) *List[T] {
	x := l.derive(style)
	for src := range l.items() {
		if style == Update {
			switch src.state {
			case StateClean, StateNone, StateDelNew:
				continue
			}
		}
		it := newItem(src.id, src.values.Copy())
		it.base = src
		x.link(it)
		switch style {
		case Edit:
			it.SetState(Clean)
		case Spot:
			it.SetState(Clean)
			it.deleted = src.deleted
		default:
			it.state, it.edit, it.deleted = src.state, src.resting(), src.deleted
			if src.state.Kind() == Changed {
				if orig, ok := src.Original(); ok {
					it.history.push(orig)
				}
			}
		}
	}
	x.FindEditState()
	return x
}

// Diff returns a DIFFER list holding what changed from older to newer: NEW
// items only in newer, CHANGED items in both with different values (based on
// the older item, whose values are the history entry) and DELETED items only
// in older. Hidden items count as absent.
func Diff[T Values[T]](newer, older *List[T]) *List[T] {
	d := newer.derive(Differ)
	pending := older.index.Clone()
	for it := range newer.items() {
		if it.deleted || it.state.IsDeleted() {
			continue
		}
		old, found := pending.Get(it)
		if found {
			pending.Delete(old)
			found = !old.deleted && !old.state.IsDeleted()
		}
		switch {
		case !found:
			n := newItem(it.id, it.values.Copy())
			n.state, n.edit = StateNew, EditDirty
			d.link(n)
		case !it.values.Equal(old.values):
			n := newItem(it.id, it.values.Copy())
			n.state, n.edit, n.base = StateChanged, EditDirty, old
			n.history.push(old.values)
			d.link(n)
		}
	}
	pending.Ascend(func(old *Item[T]) bool {
		if old.deleted || old.state.IsDeleted() {
			return true
		}
		n := newItem(old.id, old.values.Copy())
		n.state, n.edit, n.base, n.deleted = StateDeleted, EditDirty, old, true
		d.link(n)
		return true
	})
	d.FindEditState()
	return d
}

// Rebase makes l the source of truth against base: items missing from base
// become NEW, items that differ become CHANGED with the base values as their
// only history entry, equal items become CLEAN. Items of base missing from l
// are appended as DELETED. Base links, history and errors are cleared.
func (l *List[T]) Rebase(base *List[T]) {
	pending := base.index.Clone()
	for _, it := range l.snapshot() {
		b, found := pending.Get(it)
		if found {
			pending.Delete(b)
		}
		live := found && !b.deleted && !b.state.IsDeleted()
		it.base = nil
		it.history.clear()
		it.errors = nil
		switch {
		case it.deleted || it.state.IsDeleted():
			if !found {
				l.Remove(it)
				continue
			}
			if live {
				it.state, it.edit = StateDeleted, EditDirty
			} else {
				it.state, it.edit = StateClean, EditClean
			}
			it.deleted = true
		case !live:
			it.state, it.edit, it.deleted = StateNew, EditDirty, false
		case !it.values.Equal(b.values):
			it.state, it.edit, it.deleted = StateChanged, EditDirty, false
			it.history.push(b.values)
		default:
			it.state, it.edit, it.deleted = StateClean, EditClean, false
		}
	}
	pending.Ascend(func(b *Item[T]) bool {
		if b.deleted || b.state.IsDeleted() {
			return true
		}
		n := newItem(b.id, b.values.Copy())
		n.state, n.edit, n.deleted = StateDeleted, EditDirty, true
		l.link(n)
		return true
	})
	l.FindEditState()
}

// ApplyChanges merges the changes held by a working list (EDIT, UPDATE,
// SPOT or DIFFER) into l, which must be a CORE list. Each changed item of
// edit is located in l by identifier, and returns to CLEAN once applied.
//
// Changes are applied in order and are not rolled back: when an item cannot
// be applied, the items before it remain applied and the error is returned.
func (l *List[T]) ApplyChanges(edit *List[T]) error {
	if l.style != Core {
		return failure.New(failure.Logic, "cannot apply changes into a %v list", l.style)
	}
	for _, e := range edit.snapshot() {
		switch e.state.Kind() {
		case NoState, Clean:
			continue
		case New:
			c := l.addNew(e.id, e.values)
			if c.id != e.id {
				edit.reindex(e, c.id)
			}
			e.base = c
		case Deleted:
			if e.state == StateDelNew {
				edit.Remove(e)
				continue
			}
			c, err := l.target(e)
			if err != nil {
				return err
			}
			c.SetState(Deleted)
		case Recovered:
			c, err := l.target(e)
			if err != nil {
				return err
			}
			c.SetState(Recovered)
		case Changed:
			c, err := l.target(e)
			if err != nil {
				return err
			}
			c.applyChanges(e)
		}
		e.ClearHistory()
		e.SetState(Clean)
	}
	l.FindEditState()
	edit.FindEditState()
	return nil
}

// target returns the item of l an edited item applies to, and links it as
// the edited item base.
func (l *List[T]) target(e *Item[T]) (*Item[T], error) {
	c := l.Search(e.id)
	if c == nil {
		return nil, failure.New(failure.Data, "no item %d to apply %v to", e.id, e.state).WithObject(e.values)
	}
	e.base = c
	return c, nil
}

// applyChanges copies the values of an edited item. Equal values leave the
// item untouched.
func (it *Item[T]) applyChanges(e *Item[T]) {
	if it.values.Equal(e.values) {
		return
	}
	it.PushHistory()
	it.values = e.values.Copy()
	it.SetState(Changed)
	it.ReSort()
}

// ResetChanges discards every pending change: NEW items are removed,
// deletions and recoveries are forgotten, CHANGED items get their original
// values back.
func (l *List[T]) ResetChanges() {
	for _, it := range l.snapshot() {
		it.errors = nil
		switch {
		case it.state.Kind() == New, it.state == StateDelNew:
			l.Remove(it)
			continue
		case it.state.Kind() == Changed, it.state == StateDelChg:
			if orig, ok := it.Original(); ok {
				it.values = orig
			}
			it.ClearHistory()
			it.SetState(Clean)
			it.ReSort()
		case it.state.IsDeleted(), it.state.Kind() == Recovered:
			it.SetState(Clean)
		}
	}
	l.FindEditState()
}

// String describes the list for debugging.
func (l *List[T]) String() string {
	return fmt.Sprintf("%v list of %d items (%v)", l.style, l.size, l.editState)
}
