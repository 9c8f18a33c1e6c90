// Package item implements the change-tracked list engine every domain
// entity is stored in.
//
// A List is a sorted collection of Items of one type. Each Item holds a
// values object (any type implementing Values), a lifecycle State, an
// EditState, an optional base item (its counterpart in the CORE list), a
// history of prior values and a list of validation errors.
//
// Lists have a Style. CORE lists are the ground truth. EDIT, SPOT and VIEW
// lists are working copies built by Extract, UPDATE lists hold only the
// pending changes of a CORE list, and DIFFER lists are built by Diff. Changes
// made in a working copy are merged back with ApplyChanges or discarded
// with ResetChanges. Rebase resynchronizes a list against a fresh base.
//
// Lists are not safe for concurrent use: a List and the Items it holds must
// be confined to a single goroutine, or guarded by the caller.
package item
