package item

import (
	"iter"

	"github.com/etnz/finance/failure"
	"github.com/google/btree"
)

// List is a sorted collection of items of one type.
//
// Items live in an arena indexed by handle; the list order is kept with
// explicit prev/next handles. An id index gives logarithmic lookups.
type List[T Values[T]] struct {
	style Style
	ids   *IDManager

	nodes []*Item[T] // arena, nil slots are free
	free  []int
	head  int
	tail  int
	size  int
	index *btree.BTreeG[*Item[T]]

	editState   EditState
	fromTail    bool
	showDeleted bool
	validate    Validator[T]
}

func byID[T Values[T]](a, b *Item[T]) bool { return a.id < b.id }

// NewList returns an empty list. ids allocates the identifiers of new items,
// a nil ids gives the list its own IDManager.
func NewList[T Values[T]](style Style, ids *IDManager) *List[T] {
	if ids == nil {
		ids = NewIDManager()
	}
	return &List[T]{
		style:       style,
		ids:         ids,
		head:        none,
		tail:        none,
		index:       btree.NewG(8, byID[T]),
		showDeleted: style.showsDeleted(),
	}
}

// derive returns an empty list of style sharing ids, validator and insertion mode.
func (l *List[T]) derive(style Style) *List[T] {
	d := NewList[T](style, l.ids)
	d.fromTail = l.fromTail
	d.validate = l.validate
	return d
}

// Style returns the list style.
func (l *List[T]) Style() Style { return l.style }

// IDs returns the identifier allocator.
func (l *List[T]) IDs() *IDManager { return l.ids }

// SetInsertFromTail selects where the search for the insertion point starts.
// Both give the same order, searching from the tail is faster when items
// mostly arrive in order.
func (l *List[T]) SetInsertFromTail(fromTail bool) { l.fromTail = fromTail }

// SetShowDeleted selects whether iteration visits hidden items.
func (l *List[T]) SetShowDeleted(show bool) { l.showDeleted = show }

// SetValidator installs the validation hook. Lists derived from l inherit it.
func (l *List[T]) SetValidator(v Validator[T]) { l.validate = v }

// Add links loaded values as a CLEAN item with a new identifier.
func (l *List[T]) Add(values T) *Item[T] {
	it := newItem(0, values.Copy())
	it.state = StateClean
	l.link(it)
	return it
}

// AddWithID links loaded values as a CLEAN item with an explicit identifier.
// A non positive or already used identifier is a data error.
func (l *List[T]) AddWithID(id int, values T) (*Item[T], error) {
	if id <= 0 {
		return nil, failure.New(failure.Data, "invalid id %d", id).WithObject(values)
	}
	if l.Search(id) != nil {
		return nil, failure.New(failure.Data, "duplicate id %d", id).WithObject(values)
	}
	it := newItem(id, values.Copy())
	it.state = StateClean
	l.link(it)
	return it, nil
}

// AddNew links values as a NEW item. SPOT lists have no NEW state, AddNew
// panics with a logic error there.
func (l *List[T]) AddNew(values T) *Item[T] {
	if l.style == Spot {
		panic(failure.New(failure.Logic, "cannot add a new item to a %v list", Spot))
	}
	return l.addNew(0, values)
}

// addNew links values as a NEW item, keeping id when it is free.
func (l *List[T]) addNew(id int, values T) *Item[T] {
	if id > 0 && l.Search(id) != nil {
		id = 0
	}
	it := newItem(id, values.Copy())
	it.state, it.edit = StateNew, EditDirty
	l.link(it)
	l.escalate(EditDirty)
	return it
}

// Remove unlinks it from the list.
func (l *List[T]) Remove(it *Item[T]) {
	if it.list != l {
		panic(failure.New(failure.Logic, "item %d is not a member of this list", it.id))
	}
	l.detach(it)
	l.index.Delete(it)
	l.nodes[it.handle] = nil
	l.free = append(l.free, it.handle)
	it.handle = none
	it.list = nil
	l.size--
}

// link puts an unlinked item in the arena, the index and its sorted position.
// The identifier is allocated here when missing.
func (l *List[T]) link(it *Item[T]) {
	if it.list != nil {
		panic(failure.New(failure.Logic, "item %d is already a member of a list", it.id))
	}
	if it.id == 0 {
		it.id = l.ids.Next()
	} else {
		l.ids.Register(it.id)
	}
	if n := len(l.free); n > 0 {
		it.handle = l.free[n-1]
		l.free = l.free[:n-1]
		l.nodes[it.handle] = it
	} else {
		it.handle = len(l.nodes)
		l.nodes = append(l.nodes, it)
	}
	it.list = l
	l.index.ReplaceOrInsert(it)
	l.attach(it)
	l.size++
}

// reindex changes the identifier of a linked item.
func (l *List[T]) reindex(it *Item[T], id int) {
	l.index.Delete(it)
	it.id = id
	l.index.ReplaceOrInsert(it)
}

// attach splices a detached item at its sorted position. Equal items keep
// their arrival order whatever the search direction.
func (l *List[T]) attach(it *Item[T]) {
	if l.fromTail {
		// after the last item not after it.
		h := l.tail
		for h != none && it.values.Compare(l.nodes[h].values) < 0 {
			h = l.nodes[h].prev
		}
		l.insertAfter(it, h)
		return
	}
	// before the first item after it.
	h := l.head
	for h != none && it.values.Compare(l.nodes[h].values) >= 0 {
		h = l.nodes[h].next
	}
	l.insertBefore(it, h)
}

// insertBefore splices it before h, or at the tail when h is none.
func (l *List[T]) insertBefore(it *Item[T], h int) {
	if h == none {
		it.prev, it.next = l.tail, none
		if l.tail != none {
			l.nodes[l.tail].next = it.handle
		} else {
			l.head = it.handle
		}
		l.tail = it.handle
		return
	}
	n := l.nodes[h]
	it.prev, it.next = n.prev, h
	if n.prev != none {
		l.nodes[n.prev].next = it.handle
	} else {
		l.head = it.handle
	}
	n.prev = it.handle
}

// insertAfter splices it after h, or at the head when h is none.
func (l *List[T]) insertAfter(it *Item[T], h int) {
	if h == none {
		it.prev, it.next = none, l.head
		if l.head != none {
			l.nodes[l.head].prev = it.handle
		} else {
			l.tail = it.handle
		}
		l.head = it.handle
		return
	}
	n := l.nodes[h]
	it.prev, it.next = h, n.next
	if n.next != none {
		l.nodes[n.next].prev = it.handle
	} else {
		l.tail = it.handle
	}
	n.next = it.handle
}

// detach takes it out of the list order, keeping its arena slot.
func (l *List[T]) detach(it *Item[T]) {
	if it.prev != none {
		l.nodes[it.prev].next = it.next
	} else {
		l.head = it.next
	}
	if it.next != none {
		l.nodes[it.next].prev = it.prev
	} else {
		l.tail = it.prev
	}
	it.prev, it.next = none, none
}

func (l *List[T]) visible(it *Item[T]) bool { return l.showDeleted || !it.deleted }

// items iterates over every item, hidden ones included. The successor is
// read before yielding so the current item may be removed.
func (l *List[T]) items() iter.Seq[*Item[T]] {
	return func(yield func(*Item[T]) bool) {
		for h := l.head; h != none; {
			it := l.nodes[h]
			h = it.next
			if !yield(it) {
				return
			}
		}
	}
}

// snapshot returns every item in list order.
func (l *List[T]) snapshot() []*Item[T] {
	s := make([]*Item[T], 0, l.size)
	for it := range l.items() {
		s = append(s, it)
	}
	return s
}

// All iterates over the visible items in order.
func (l *List[T]) All() iter.Seq[*Item[T]] {
	return func(yield func(*Item[T]) bool) {
		for it := range l.items() {
			if l.visible(it) && !yield(it) {
				return
			}
		}
	}
}

// First returns the first visible item, or nil.
func (l *List[T]) First() *Item[T] {
	for it := range l.All() {
		return it
	}
	return nil
}

// Last returns the last visible item, or nil.
func (l *List[T]) Last() *Item[T] {
	for h := l.tail; h != none; h = l.nodes[h].prev {
		if it := l.nodes[h]; l.visible(it) {
			return it
		}
	}
	return nil
}

// Len returns the number of items, hidden ones included.
func (l *List[T]) Len() int { return l.size }

// Count returns the number of visible items.
func (l *List[T]) Count() int {
	n := 0
	for range l.All() {
		n++
	}
	return n
}

// Search returns the item with identifier id, hidden or not, or nil.
func (l *List[T]) Search(id int) *Item[T] {
	it, ok := l.index.Get(&Item[T]{id: id})
	if !ok {
		return nil
	}
	return it
}

// SearchName returns the first visible item whose values are labelled name, or nil.
func (l *List[T]) SearchName(name string) *Item[T] {
	for it := range l.All() {
		if n, ok := any(it.values).(Named); ok && n.Label() == name {
			return it
		}
	}
	return nil
}

// EditState returns the aggregated health recorded for the list.
func (l *List[T]) EditState() EditState { return l.editState }

func (l *List[T]) escalate(e EditState) {
	if e > l.editState {
		l.editState = e
	}
}

// FindEditState recomputes the aggregated health: the worst edit state of
// the visible items. A deleted item whose base is still visible is a pending
// deletion and counts as EditValid.
func (l *List[T]) FindEditState() EditState {
	state := EditClean
	for it := range l.items() {
		switch {
		case it.state.IsDeleted():
			if it.base != nil && !it.base.deleted {
				state = max(state, EditValid)
			}
		case it.deleted:
		default:
			state = max(state, it.edit)
		}
	}
	l.editState = state
	return state
}

// Validate runs the validation hook on every live item and returns the
// resulting aggregated health.
func (l *List[T]) Validate() EditState {
	for it := range l.items() {
		it.ClearErrors()
		if it.deleted || it.state.IsDeleted() {
			continue
		}
		if l.validate != nil {
			l.validate(l, it)
		}
		if !it.HasErrors() && it.edit == EditDirty {
			it.edit = EditValid
		}
	}
	return l.FindEditState()
}

// HasUpdates reports whether any item holds a change to persist.
func (l *List[T]) HasUpdates() bool {
	for it := range l.items() {
		switch it.state {
		case StateClean, StateNone, StateDelNew:
		default:
			return true
		}
	}
	return false
}

// HasErrors reports whether any live item has validation errors.
func (l *List[T]) HasErrors() bool {
	for it := range l.items() {
		if !it.deleted && it.HasErrors() {
			return true
		}
	}
	return false
}
