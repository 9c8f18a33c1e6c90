package item

// history is the stack of prior values of an item.
//
// stack[0] is the original values, the last element the most recent one.
// cursor is the position while peeking through versions: it equals
// len(stack) when positioned on the current values.
type history[T Values[T]] struct {
	stack  []T
	cursor int
}

func (h *history[T]) push(v T) {
	h.stack = append(h.stack, v.Copy())
	h.cursor = len(h.stack)
}

func (h *history[T]) pop() (v T, ok bool) {
	n := len(h.stack)
	if n == 0 {
		return v, false
	}
	v = h.stack[n-1]
	var zero T
	h.stack[n-1] = zero
	h.stack = h.stack[:n-1]
	h.cursor = len(h.stack)
	return v, true
}

func (h *history[T]) top() (v T, ok bool) {
	if len(h.stack) == 0 {
		return v, false
	}
	return h.stack[len(h.stack)-1], true
}

func (h *history[T]) bottom() (v T, ok bool) {
	if len(h.stack) == 0 {
		return v, false
	}
	return h.stack[0], true
}

func (h *history[T]) clear() {
	h.stack = nil
	h.cursor = 0
}

func (h *history[T]) len() int { return len(h.stack) }

func (h *history[T]) clone() history[T] {
	c := history[T]{stack: make([]T, len(h.stack)), cursor: h.cursor}
	for i, v := range h.stack {
		c.stack[i] = v.Copy()
	}
	return c
}
