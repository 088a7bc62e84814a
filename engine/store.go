package engine

import "github.com/hellblazer/art/geometry"

// Store is the ordered category collection of one ART module.
//
// Category indices are stable and assigned in creation order; pruning
// tombstones a slot instead of compacting, so an index is never
// reused. The store performs no locking of its own: the owning
// module's exclusive-writer/shared-reader lock is the only guard, and
// a whole learn step is the atomicity unit.
type Store struct {
	slots []geometry.Category // creation order; nil entries are pruned
	live  int
}

// NewStore creates an empty category store.
func NewStore() *Store {
	return &Store{
		slots: make([]geometry.Category, 0),
	}
}

// NextIndex returns the creation index the next category will receive.
func (s *Store) NextIndex() int {
	return len(s.slots)
}

// Create appends a category. The category's index must equal
// NextIndex; Create panics otherwise, since that is a programming
// error in the seeding path, not a runtime condition.
func (s *Store) Create(c geometry.Category) int {
	if c.Index() != len(s.slots) {
		panic("engine: category index does not match creation order")
	}
	s.slots = append(s.slots, c)
	s.live++
	return c.Index()
}

// Get returns the category at the given creation index.
func (s *Store) Get(index int) (geometry.Category, bool) {
	if index < 0 || index >= len(s.slots) {
		return nil, false
	}
	c := s.slots[index]
	if c == nil {
		return nil, false
	}
	return c, true
}

// Len returns the number of live (non-pruned) categories.
func (s *Store) Len() int {
	return s.live
}

// Slots returns the total number of creation slots, including pruned
// ones. Creation indices range over [0, Slots).
func (s *Store) Slots() int {
	return len(s.slots)
}

// Each calls fn for every live category in creation order.
func (s *Store) Each(fn func(c geometry.Category)) {
	for _, c := range s.slots {
		if c != nil {
			fn(c)
		}
	}
}

// Categories returns the live categories in creation order. The
// returned categories are the store's own; callers outside the writer
// lock must Clone before retaining them.
func (s *Store) Categories() []geometry.Category {
	out := make([]geometry.Category, 0, s.live)
	for _, c := range s.slots {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Prune tombstones the category at the given index. The index is
// never reused. Returns false if the index is out of range or already
// pruned.
func (s *Store) Prune(index int) bool {
	if index < 0 || index >= len(s.slots) || s.slots[index] == nil {
		return false
	}
	s.slots[index] = nil
	s.live--
	return true
}

// Clear resets the store to empty. Creation indices restart at zero.
func (s *Store) Clear() {
	s.slots = s.slots[:0]
	s.live = 0
}

// replace swaps in a full category set, used by snapshot loading.
// Slots must already be in creation order, nil entries included.
func (s *Store) replace(slots []geometry.Category) {
	s.slots = slots
	s.live = 0
	for _, c := range slots {
		if c != nil {
			s.live++
		}
	}
}
