package item

import "fmt"

// Kind is the lifecycle of an Item.
type Kind int

const (
	NoState   Kind = iota // never set
	New                   // in memory only
	Clean                 // identical to the persisted record
	Changed               // differs from the persisted record
	Deleted               // removed, see State.From for what was removed
	Recovered             // a deletion that was undone
)

func (k Kind) String() string {
	switch k {
	case NoState:
		return "NOSTATE"
	case New:
		return "NEW"
	case Clean:
		return "CLEAN"
	case Changed:
		return "CHANGED"
	case Deleted:
		return "DELETED"
	case Recovered:
		return "RECOVERED"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// State is the lifecycle state of an Item.
//
// Deleted is a tagged variant: it remembers the Kind the item had when it was
// deleted (New, Changed or Clean), so that recovering it restores exactly
// that Kind.
type State struct {
	kind Kind
	from Kind // only for Deleted
}

var (
	StateNone      = State{}
	StateNew       = State{kind: New}
	StateClean     = State{kind: Clean}
	StateChanged   = State{kind: Changed}
	StateRecovered = State{kind: Recovered}
	StateDeleted   = State{kind: Deleted, from: Clean}   // DELETED
	StateDelNew    = State{kind: Deleted, from: New}     // DELNEW
	StateDelChg    = State{kind: Deleted, from: Changed} // DELCHG
)

// Kind returns the lifecycle kind.
func (s State) Kind() Kind { return s.kind }

// From returns the kind a deleted item had before deletion, NoState otherwise.
func (s State) From() Kind { return s.from }

// IsDeleted reports whether s is one of the deleted variants.
func (s State) IsDeleted() bool { return s.kind == Deleted }

func (s State) String() string {
	if s.kind != Deleted {
		return s.kind.String()
	}
	switch s.from {
	case New:
		return "DELNEW"
	case Changed:
		return "DELCHG"
	default:
		return "DELETED"
	}
}

// deleted returns the state after a deletion.
func (s State) deleted() State {
	switch s.kind {
	case Deleted:
		return s
	case New:
		return StateDelNew
	case Changed:
		return StateDelChg
	default:
		return StateDeleted
	}
}

// recovered reverses deleted.
func (s State) recovered() State {
	if s.kind != Deleted {
		return s
	}
	switch s.from {
	case New:
		return StateNew
	case Changed:
		return StateChanged
	default:
		return StateRecovered
	}
}

// EditState is the health of an item or a list. Values are ordered by
// precedence: Error beats Dirty beats Valid beats Clean.
type EditState int

const (
	EditClean EditState = iota // nothing to save
	EditValid                  // changed, and validated
	EditDirty                  // changed, not validated yet
	EditError                  // changed, with validation errors
)

func (e EditState) String() string {
	switch e {
	case EditClean:
		return "CLEAN"
	case EditValid:
		return "VALID"
	case EditDirty:
		return "DIRTY"
	case EditError:
		return "ERROR"
	default:
		return fmt.Sprintf("EditState(%d)", int(e))
	}
}

// Style selects the semantics of a List.
type Style int

const (
	Core   Style = iota // ground truth
	Edit                // working copy for interactive changes
	Spot                // simplified two states editing view
	Update              // pending changes only, for persistence
	View                // throwaway validation copy
	Differ              // computed delta between two lists
)

func (s Style) String() string {
	switch s {
	case Core:
		return "CORE"
	case Edit:
		return "EDIT"
	case Spot:
		return "SPOT"
	case Update:
		return "UPDATE"
	case View:
		return "VIEW"
	case Differ:
		return "DIFFER"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// showsDeleted reports whether lists of this style iterate over deleted items by default.
func (s Style) showsDeleted() bool { return s == Update || s == Differ }
