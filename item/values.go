package item

// Values is the capability a domain type provides to be stored in a List.
//
// Implementations are plain value types. Copy must return a deep copy: the
// engine keeps copies in the history and shares nothing between items.
type Values[T any] interface {
	// Compare returns a negative number when the receiver sorts before other,
	// zero when they sort together and a positive number otherwise.
	Compare(other T) int
	// Equal reports whether every field of the receiver equals other.
	Equal(other T) bool
	// Copy returns a deep copy.
	Copy() T
	// FieldChanged reports whether the field numbered field differs from ref.
	FieldChanged(field int, ref T) bool
	// FormatField returns a display representation of the field numbered field.
	FormatField(field int) string
}

// Named is implemented by values that can be looked up by name.
type Named interface {
	Label() string
}

// Validator checks an item in the context of its list. It reports problems
// with Item.AddError.
type Validator[T Values[T]] func(l *List[T], it *Item[T])

// FieldError is a validation error on one field of an item.
type FieldError struct {
	Field   int
	Message string
}
