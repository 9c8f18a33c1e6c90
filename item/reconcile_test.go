package item

import (
	"testing"

	"github.com/etnz/finance/failure"
	"github.com/google/go-cmp/cmp"
)

// withIDs returns a CORE list holding names under explicit ids.
func withIDs(t *testing.T, entries map[int]string) *List[account] {
	t.Helper()
	l := NewList[account](Core, nil)
	for id, name := range entries {
		if _, err := l.AddWithID(id, account{name: name, kind: "current"}); err != nil {
			t.Fatalf("AddWithID(%d) error = %v", id, err)
		}
	}
	return l
}

func TestDiff(t *testing.T) {
	newer := withIDs(t, map[int]string{1: "a", 2: "b2", 4: "d", 7: "e"})
	older := withIDs(t, map[int]string{1: "a", 2: "b", 3: "c", 4: "d"})

	d := Diff(newer, older)
	if d.Style() != Differ {
		t.Errorf("Diff() style = %v, want %v", d.Style(), Differ)
	}
	want := map[int]string{2: "CHANGED", 3: "DELETED", 7: "NEW"}
	if diff := cmp.Diff(want, states(d)); diff != "" {
		t.Errorf("Diff() states mismatch (-want +got):\n%s", diff)
	}
	if orig, ok := d.Search(2).Original(); !ok || orig.name != "b" {
		t.Errorf("Diff() changed item original = %v, %v, want b", orig.name, ok)
	}
	if d.Search(3).Base() != older.Search(3) {
		t.Errorf("Diff() deleted item is not based on the older item")
	}
}

func TestDiff_ApplyChangesRoundTrip(t *testing.T) {
	newer := withIDs(t, map[int]string{1: "a", 2: "b2", 4: "d", 7: "e"})
	older := withIDs(t, map[int]string{1: "a", 2: "b", 3: "c", 4: "d"})

	target := older.Clone()
	if err := target.ApplyChanges(Diff(newer, older)); err != nil {
		t.Fatalf("ApplyChanges() error = %v", err)
	}
	if diff := cmp.Diff(names(newer), names(target)); diff != "" {
		t.Errorf("ApplyChanges() visible items mismatch (-want +got):\n%s", diff)
	}
	want := map[int]string{1: "CLEAN", 2: "CHANGED", 3: "DELETED", 4: "CLEAN", 7: "NEW"}
	if diff := cmp.Diff(want, states(target)); diff != "" {
		t.Errorf("ApplyChanges() states mismatch (-want +got):\n%s", diff)
	}
	// the source list is left untouched.
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, names(older)); diff != "" {
		t.Errorf("Clone() shares items with its source (-want +got):\n%s", diff)
	}
	if Diff(target, newer).Len() != 0 {
		t.Errorf("Diff() after ApplyChanges() is not empty")
	}
}

func TestRebase(t *testing.T) {
	base := withIDs(t, map[int]string{1: "a", 2: "b", 3: "c", 4: "d"})
	l := withIDs(t, map[int]string{1: "a", 2: "b2", 4: "d", 7: "e"})
	l.Search(1).Edit(func(a *account) { a.balance = 0 }) // no-op
	l.Search(4).AddError(fieldName, "boom")

	want := map[int]string{1: "CLEAN", 2: "CHANGED", 3: "DELETED", 4: "CLEAN", 7: "NEW"}
	for i := 0; i < 2; i++ {
		l.Rebase(base)
		if diff := cmp.Diff(want, states(l)); diff != "" {
			t.Errorf("Rebase() #%d states mismatch (-want +got):\n%s", i, diff)
		}
	}
	if l.Search(4).HasErrors() || l.Search(2).Base() != nil {
		t.Errorf("Rebase() kept errors or base links")
	}
	if orig, ok := l.Search(2).Original(); !ok || orig.name != "b" || l.Search(2).HistoryLen() != 1 {
		t.Errorf("Rebase() changed item history = %v, %v, want the single base values", orig.name, ok)
	}
	if !l.Search(3).IsDeleted() {
		t.Errorf("Rebase() appended a visible deleted item")
	}
	if l.EditState() != EditDirty {
		t.Errorf("Rebase() EditState() = %v, want %v", l.EditState(), EditDirty)
	}
}

func TestRebase_DeletedItems(t *testing.T) {
	base := withIDs(t, map[int]string{1: "a", 2: "b"})
	base.Search(2).Delete()
	l := withIDs(t, map[int]string{1: "a", 2: "b", 5: "x"})
	l.Search(1).Delete()
	l.Search(2).Delete()
	l.Search(5).Delete()

	l.Rebase(base)
	// 1 is still live in base: a pending deletion. 2 is gone in both. 5 never existed.
	want := map[int]string{1: "DELETED", 2: "CLEAN"}
	if diff := cmp.Diff(want, states(l)); diff != "" {
		t.Errorf("Rebase() states mismatch (-want +got):\n%s", diff)
	}
	if !l.Search(2).IsDeleted() {
		t.Errorf("Rebase() made an item deleted in both lists visible")
	}
}

func TestApplyChanges_Scenario(t *testing.T) {
	core := coreAccounts("Current", "Savings")
	edit := core.Extract(Edit)
	if edit.EditState() != EditClean {
		t.Fatalf("Extract(Edit) EditState() = %v, want CLEAN", edit.EditState())
	}

	edit.SearchName("Savings").Edit(func(a *account) { a.name = "Savings2" })
	edit.Search(1).Delete()
	cash := edit.AddNew(account{name: "Cash", kind: "cash"})
	if cash.ID() != 3 {
		t.Errorf("AddNew() id = %d, want 3", cash.ID())
	}
	if diff := cmp.Diff([]string{"Cash", "Savings2"}, names(edit)); diff != "" {
		t.Errorf("edit list mismatch (-want +got):\n%s", diff)
	}
	if core.HasUpdates() {
		t.Errorf("editing the working list changed the core list")
	}

	if err := core.ApplyChanges(edit); err != nil {
		t.Fatalf("ApplyChanges() error = %v", err)
	}
	want := map[int]string{1: "DELETED", 2: "CHANGED", 3: "NEW"}
	if diff := cmp.Diff(want, states(core)); diff != "" {
		t.Errorf("core states mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Cash", "Savings2"}, names(core)); diff != "" {
		t.Errorf("core visible items mismatch (-want +got):\n%s", diff)
	}
	for it := range edit.items() {
		if it.State() != StateClean {
			t.Errorf("edit item %d state = %v after ApplyChanges(), want CLEAN", it.ID(), it.State())
		}
	}
	if edit.HasUpdates() {
		t.Errorf("edit list still has updates after ApplyChanges()")
	}

	update := core.Extract(Update)
	if update.Len() != 3 || update.Count() != 3 {
		t.Errorf("Extract(Update) Len() = %d, Count() = %d, want 3 and 3", update.Len(), update.Count())
	}
	if orig, ok := update.Search(2).Original(); !ok || orig.name != "Savings" {
		t.Errorf("Extract(Update) changed item original = %q, %v, want Savings", orig.name, ok)
	}

	core.ResetChanges()
	if diff := cmp.Diff([]string{"Current", "Savings"}, names(core)); diff != "" {
		t.Errorf("ResetChanges() mismatch (-want +got):\n%s", diff)
	}
	if core.HasUpdates() || core.Len() != 2 {
		t.Errorf("ResetChanges() left %d items, updates=%v", core.Len(), core.HasUpdates())
	}
}

func TestApplyChanges_RecoverCoreDeletion(t *testing.T) {
	core := coreAccounts("a", "b")
	edit := core.Extract(Edit)
	edit.Search(1).Delete()
	if err := core.ApplyChanges(edit); err != nil {
		t.Fatalf("ApplyChanges() delete error = %v", err)
	}

	// a later session recovers what the core list holds as deleted.
	next := core.Extract(Edit)
	it := next.Search(1)
	if it.State() != StateClean || !it.IsDeleted() {
		t.Fatalf("Extract(Edit) of a deleted item = %v hidden=%v, want CLEAN hidden", it.State(), it.IsDeleted())
	}
	it.Recover()
	if it.State() != StateRecovered || it.IsDeleted() {
		t.Errorf("Recover() = %v hidden=%v, want RECOVERED visible", it.State(), it.IsDeleted())
	}
	if !next.HasUpdates() || next.EditState() != EditDirty {
		t.Errorf("after Recover() HasUpdates() = %v, EditState() = %v, want true and DIRTY", next.HasUpdates(), next.EditState())
	}

	if err := core.ApplyChanges(next); err != nil {
		t.Fatalf("ApplyChanges() recover error = %v", err)
	}
	c := core.Search(1)
	if c.State() != StateRecovered || c.IsDeleted() {
		t.Errorf("core item after ApplyChanges() = %v hidden=%v, want RECOVERED visible", c.State(), c.IsDeleted())
	}
	if diff := cmp.Diff([]string{"a", "b"}, names(core)); diff != "" {
		t.Errorf("core visible items mismatch (-want +got):\n%s", diff)
	}
	if it.State() != StateClean || it.IsDeleted() || next.HasUpdates() {
		t.Errorf("edit item after ApplyChanges() = %v hidden=%v, want CLEAN visible", it.State(), it.IsDeleted())
	}

	// recovering a live item changes nothing.
	live := core.Extract(Edit)
	live.Search(2).Recover()
	if live.Search(2).State() != StateClean || live.HasUpdates() || live.EditState() != EditClean {
		t.Errorf("Recover() of a live item = %v, list %v", live.Search(2).State(), live.EditState())
	}
}

func TestApplyChanges_SameValues(t *testing.T) {
	core := coreAccounts("a", "b")
	first, second := core.Extract(Edit), core.Extract(Edit)
	first.Search(1).Edit(func(a *account) { a.balance = 5 })
	second.Search(1).Edit(func(a *account) { a.balance = 5 })
	second.Search(2).Edit(func(a *account) { a.balance = 0 }) // no-op

	for i, edit := range []*List[account]{first, second} {
		if err := core.ApplyChanges(edit); err != nil {
			t.Fatalf("ApplyChanges() #%d error = %v", i, err)
		}
	}
	// the second session holds nothing new: no extra history entry.
	c := core.Search(1)
	if c.State() != StateChanged || c.HistoryLen() != 1 {
		t.Errorf("core item = %v with %d history entries, want CHANGED with 1", c.State(), c.HistoryLen())
	}
	if core.Search(2).State() != StateClean {
		t.Errorf("untouched core item = %v, want CLEAN", core.Search(2).State())
	}
	if second.HasUpdates() {
		t.Errorf("edit list still has updates after ApplyChanges()")
	}
}

func TestApplyChanges_Errors(t *testing.T) {
	core := coreAccounts("a", "b", "c")
	edit := core.Extract(Edit)
	if err := edit.ApplyChanges(core.Extract(Update)); !failure.Is(err, failure.Logic) {
		t.Errorf("ApplyChanges() into an EDIT list error = %v, want a logic error", err)
	}

	edit.Search(1).Edit(func(a *account) { a.balance = 1 })
	edit.Search(2).Edit(func(a *account) { a.balance = 2 })
	edit.Search(3).Edit(func(a *account) { a.balance = 3 })
	core.Remove(core.Search(2))

	err := core.ApplyChanges(edit)
	if !failure.Is(err, failure.Data) {
		t.Fatalf("ApplyChanges() with a missing target error = %v, want a data error", err)
	}
	// items before the failing one stay applied.
	if core.Search(1).Values().balance != 1 || core.Search(3).Values().balance != 0 {
		t.Errorf("ApplyChanges() balances = %d, %d, want 1 and 0", core.Search(1).Values().balance, core.Search(3).Values().balance)
	}
}

func TestApplyChanges_IDConflict(t *testing.T) {
	core := coreAccounts("a")
	other := NewList[account](Edit, nil)
	n := other.AddNew(account{name: "z"}) // id 1, taken in core
	if err := core.ApplyChanges(other); err != nil {
		t.Fatalf("ApplyChanges() error = %v", err)
	}
	if n.ID() == 1 || core.Search(n.ID()) == nil || n.Base() != core.Search(n.ID()) {
		t.Errorf("ApplyChanges() did not give the new item a fresh id, got %d", n.ID())
	}
}

func TestExtract_Styles(t *testing.T) {
	core := coreAccounts("a", "b", "c")
	core.Search(1).Edit(func(a *account) { a.balance = 5 })
	core.Search(2).Delete()

	view := core.Extract(View)
	want := map[int]string{1: "CHANGED", 2: "DELETED", 3: "CLEAN"}
	if diff := cmp.Diff(want, states(view)); diff != "" {
		t.Errorf("Extract(View) states mismatch (-want +got):\n%s", diff)
	}
	if view.Search(1).HistoryLen() != 1 {
		t.Errorf("Extract(View) history = %d entries, want 1", view.Search(1).HistoryLen())
	}
	if diff := cmp.Diff([]string{"a", "c"}, names(view)); diff != "" {
		t.Errorf("Extract(View) visible items mismatch (-want +got):\n%s", diff)
	}

	update := core.Extract(Update)
	if diff := cmp.Diff([]string{"a", "b"}, names(update)); diff != "" {
		t.Errorf("Extract(Update) items mismatch (-want +got):\n%s", diff)
	}

	edit := core.Extract(Edit)
	if edit.Search(2).State() != StateClean || !edit.Search(2).IsDeleted() {
		t.Errorf("Extract(Edit) deleted item = %v hidden=%v, want CLEAN hidden", edit.Search(2).State(), edit.Search(2).IsDeleted())
	}
	if names(edit)[0] != "a" || edit.Search(1).Values().balance != 5 {
		t.Errorf("Extract(Edit) did not copy the current values")
	}
}

func TestClone_Independent(t *testing.T) {
	core := coreAccounts("a", "b")
	c := core.Clone()
	c.Search(1).Edit(func(a *account) { a.name = "z" })
	if core.Search(1).Values().name != "a" || core.HasUpdates() {
		t.Errorf("editing a clone changed the source list")
	}
	if c.IDs() != core.IDs() {
		t.Errorf("Clone() does not share the id allocator")
	}
}

func TestRebase_Self(t *testing.T) {
	l := coreAccounts("a", "b", "c")
	l.Search(2).Edit(func(a *account) { a.kind = "savings" })
	l.Search(3).AddError(fieldName, "bad")

	l.Rebase(l.Clone())
	for it := range l.items() {
		if it.State() != StateClean || it.HasHistory() || it.HasErrors() {
			t.Errorf("Rebase() on itself item %d = %v history=%d errors=%v, want CLEAN and nothing", it.ID(), it.State(), it.HistoryLen(), it.Errors())
		}
	}
	if l.EditState() != EditClean {
		t.Errorf("Rebase() on itself EditState() = %v, want CLEAN", l.EditState())
	}
}
