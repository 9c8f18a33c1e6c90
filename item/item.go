package item

import "github.com/etnz/finance/failure"

// none is the null handle.
const none = -1

// Item is one record of a List.
type Item[T Values[T]] struct {
	list       *List[T]
	handle     int // slot in list.nodes
	prev, next int // handles of the neighbours in list order

	id      int
	values  T
	state   State
	edit    EditState
	base    *Item[T]
	history history[T]
	errors  []FieldError
	deleted bool // hidden; in SPOT lists an inverse visibility flag
}

func newItem[T Values[T]](id int, values T) *Item[T] {
	return &Item[T]{handle: none, prev: none, next: none, id: id, values: values}
}

// ID returns the item identifier, 0 until the item is linked into a list.
func (it *Item[T]) ID() int { return it.id }

// Values returns the current values.
func (it *Item[T]) Values() T { return it.values }

// State returns the lifecycle state.
func (it *Item[T]) State() State { return it.state }

// EditState returns the item health.
func (it *Item[T]) EditState() EditState { return it.edit }

// Base returns the CORE counterpart of this item, if any.
func (it *Item[T]) Base() *Item[T] { return it.base }

// List returns the list the item is linked into, nil when unlinked.
func (it *Item[T]) List() *List[T] { return it.list }

// IsDeleted reports whether the item is hidden.
func (it *Item[T]) IsDeleted() bool { return it.deleted }

// FormatField formats one field of the current values.
func (it *Item[T]) FormatField(field int) string { return it.values.FormatField(field) }

// Next returns the next visible item of the list, or nil.
func (it *Item[T]) Next() *Item[T] {
	l := it.list
	if l == nil {
		return nil
	}
	for h := it.next; h != none; h = l.nodes[h].next {
		if n := l.nodes[h]; l.visible(n) {
			return n
		}
	}
	return nil
}

// Prev returns the previous visible item of the list, or nil.
func (it *Item[T]) Prev() *Item[T] {
	l := it.list
	if l == nil {
		return nil
	}
	for h := it.prev; h != none; h = l.nodes[h].prev {
		if n := l.nodes[h]; l.visible(n) {
			return n
		}
	}
	return nil
}

func (it *Item[T]) style() Style {
	if it.list == nil {
		return Core
	}
	return it.list.style
}

func (it *Item[T]) escalate(e EditState) {
	if it.list != nil {
		it.list.escalate(e)
	}
}

// SetState applies a lifecycle transition.
//
// Requesting Clean looks at the base item: without a base (or with a base that
// has no state) in an EDIT list the item is in fact New; with a deleted base it
// stays Clean but hidden. Requesting Changed keeps New items New. Requesting
// Deleted or Recovered maps NEW, CHANGED and CLEAN to their deleted variants
// and back. Recovering the hidden copy of an item deleted in the base list
// makes it RECOVERED, recovering a live item does nothing.
//
// SPOT lists only accept Clean and Changed, SetState panics with a logic
// error on any other kind.
func (it *Item[T]) SetState(k Kind) {
	spot := it.style() == Spot
	if spot && k != Clean && k != Changed {
		panic(failure.New(failure.Logic, "state %v is not legal in a %v list", k, Spot))
	}
	switch k {
	case NoState:
		it.state, it.edit = StateNone, EditClean
	case Clean:
		baseState := StateNone
		if it.base != nil {
			baseState = it.base.state
		}
		switch {
		case baseState.Kind() == NoState && it.style() == Edit:
			it.state, it.edit, it.deleted = StateNew, EditDirty, false
			it.escalate(EditDirty)
			return
		case spot:
		case baseState.IsDeleted():
			it.deleted = true
		default:
			it.deleted = false
		}
		it.state, it.edit = StateClean, EditClean
	case Changed:
		switch {
		case it.state.Kind() == New, it.state == StateDelNew:
			it.state = StateNew
		default:
			it.state = StateChanged
		}
		if !spot {
			it.deleted = false
		}
		it.edit = EditDirty
		it.escalate(EditDirty)
	case New:
		it.state, it.edit, it.deleted = StateNew, EditDirty, false
		it.escalate(EditDirty)
	case Deleted:
		it.state, it.edit, it.deleted = it.state.deleted(), EditDirty, true
		it.escalate(EditDirty)
	case Recovered:
		switch {
		case it.state.IsDeleted():
			it.state = it.state.recovered()
		case it.base != nil && it.base.state.IsDeleted():
			// hidden copy of an item deleted in its base list.
			it.state = StateRecovered
		default:
			return
		}
		it.edit, it.deleted = EditDirty, false
		it.escalate(EditDirty)
	default:
		panic(failure.New(failure.Logic, "unknown state %v", k))
	}
}

// Delete marks the item deleted.
func (it *Item[T]) Delete() { it.SetState(Deleted) }

// Recover undoes Delete.
func (it *Item[T]) Recover() { it.SetState(Recovered) }

// Hide sets the visibility flag of an item of a SPOT list, where deletion is
// not a lifecycle state.
func (it *Item[T]) Hide(hidden bool) {
	if it.style() != Spot {
		panic(failure.New(failure.Logic, "Hide is only legal in a %v list", Spot))
	}
	it.deleted = hidden
}

// History

// PushHistory saves a copy of the current values.
func (it *Item[T]) PushHistory() { it.history.push(it.values) }

// PopHistory restores the most recently saved values. It returns false when
// there is no history.
func (it *Item[T]) PopHistory() bool {
	v, ok := it.history.pop()
	if ok {
		it.values = v
	}
	return ok
}

// CheckForHistory drops the most recent history entry if it equals the
// current values, and reports whether a change was recorded.
func (it *Item[T]) CheckForHistory() bool {
	top, ok := it.history.top()
	if !ok {
		return false
	}
	if top.Equal(it.values) {
		it.history.pop()
		return false
	}
	return true
}

// HasHistory reports whether prior values are recorded.
func (it *Item[T]) HasHistory() bool { return it.history.len() > 0 }

// HistoryLen returns the number of recorded prior values.
func (it *Item[T]) HistoryLen() int { return it.history.len() }

// ClearHistory forgets all prior values.
func (it *Item[T]) ClearHistory() { it.history.clear() }

// Original returns the oldest recorded values.
func (it *Item[T]) Original() (T, bool) { return it.history.bottom() }

// FieldChanged reports whether field differs from the original values, or
// from the base values when there is no history.
func (it *Item[T]) FieldChanged(field int) bool {
	if orig, ok := it.Original(); ok {
		return it.values.FieldChanged(field, orig)
	}
	if it.base != nil {
		return it.values.FieldChanged(field, it.base.values)
	}
	return false
}

// Edit applies fn to the values, recording the prior values in the history
// and updating the state and the position in the list. It returns false if fn
// changed nothing.
func (it *Item[T]) Edit(fn func(v *T)) bool {
	it.PushHistory()
	fn(&it.values)
	if !it.CheckForHistory() {
		return false
	}
	if orig, _ := it.Original(); it.state.Kind() != New && orig.Equal(it.values) {
		// back to the original values.
		it.ClearHistory()
		it.SetState(Clean)
	} else {
		it.SetState(Changed)
	}
	it.ReSort()
	return true
}

// Undo restores the previous values. It returns false if there is nothing to undo.
func (it *Item[T]) Undo() bool {
	if !it.PopHistory() {
		return false
	}
	it.settle()
	it.ReSort()
	return true
}

// settle returns a changed item without history to Clean.
func (it *Item[T]) settle() {
	if it.state.Kind() == Changed && !it.HasHistory() {
		it.SetState(Clean)
	}
}

// PeekPrevious moves the history cursor one version back and returns the
// values there, without changing the item.
func (it *Item[T]) PeekPrevious() (v T, ok bool) {
	h := &it.history
	if h.cursor == 0 {
		return v, false
	}
	h.cursor--
	return h.stack[h.cursor].Copy(), true
}

// PeekNext moves the history cursor one version forward and returns the
// values there. The last version is the current values.
func (it *Item[T]) PeekNext() (v T, ok bool) {
	h := &it.history
	if h.cursor >= len(h.stack) {
		return v, false
	}
	h.cursor++
	if h.cursor == len(h.stack) {
		return it.values.Copy(), true
	}
	return h.stack[h.cursor].Copy(), true
}

// ResetCursor puts the history cursor back on the current values.
func (it *Item[T]) ResetCursor() { it.history.cursor = it.history.len() }

// RewindToCursor makes the version under the cursor the current values,
// dropping every more recent version.
func (it *Item[T]) RewindToCursor() bool {
	h := &it.history
	if h.cursor >= len(h.stack) {
		return false
	}
	it.values = h.stack[h.cursor]
	h.stack = h.stack[:h.cursor]
	it.settle()
	it.ReSort()
	return true
}

// ReSort moves the item to its sorted position, after a change of the fields
// the list is sorted on.
func (it *Item[T]) ReSort() {
	if l := it.list; l != nil {
		l.detach(it)
		l.attach(it)
	}
}

// Errors

// AddError records a validation error on field. The item and its list
// become EditError.
func (it *Item[T]) AddError(field int, msg string) {
	it.errors = append(it.errors, FieldError{Field: field, Message: msg})
	it.edit = EditError
	it.escalate(EditError)
}

// ClearErrors removes all validation errors.
func (it *Item[T]) ClearErrors() {
	it.errors = nil
	if it.edit == EditError {
		it.edit = it.resting()
	}
}

// resting is the edit state of an item without errors, not yet validated.
func (it *Item[T]) resting() EditState {
	if it.state.Kind() == Clean || it.state.Kind() == NoState {
		return EditClean
	}
	return EditDirty
}

// HasErrors reports whether validation errors are recorded.
func (it *Item[T]) HasErrors() bool { return len(it.errors) > 0 }

// Errors returns the validation errors.
func (it *Item[T]) Errors() []FieldError { return append([]FieldError(nil), it.errors...) }

// FieldErrors returns the messages recorded for field.
func (it *Item[T]) FieldErrors(field int) []string {
	var msgs []string
	for _, e := range it.errors {
		if e.Field == field {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

// clone returns an unlinked deep copy sharing the base.
func (it *Item[T]) clone() *Item[T] {
	c := newItem(it.id, it.values.Copy())
	c.state = it.state
	c.edit = it.edit
	c.base = it.base
	c.history = it.history.clone()
	c.errors = append([]FieldError(nil), it.errors...)
	c.deleted = it.deleted
	return c
}
