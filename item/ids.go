package item

// IDManager allocates item identifiers for one entity type.
//
// Identifiers are positive and monotonic. A CORE list and every list derived
// from it share the same IDManager, so that an item created in a working copy
// keeps a fresh identifier when it reaches the CORE list.
type IDManager struct {
	max int
}

// NewIDManager returns an IDManager whose next identifier is 1.
func NewIDManager() *IDManager { return &IDManager{} }

// Next allocates a new identifier.
func (m *IDManager) Next() int {
	m.max++
	return m.max
}

// Register records that id is in use, so that Next never returns it.
func (m *IDManager) Register(id int) {
	if id > m.max {
		m.max = id
	}
}

// Max returns the highest identifier allocated or registered.
func (m *IDManager) Max() int { return m.max }
