package date

import "fmt"

// Range represents a range of dates, both boundaries included.
type Range struct{ From, To Date }

// NewRange returns the period range containing d.
func NewRange(d Date, period Period) Range {
	return Range{From: d.StartOf(period), To: d.EndOf(period)}
}

// Contains return true if date is included in the range (boundaries included).
// A zero boundary is open.
func (r Range) Contains(date Date) bool {
	if !r.From.IsZero() && date.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && date.After(r.To) {
		return false
	}
	return true
}

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
