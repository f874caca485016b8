// Package arena implements the dense, growable, id-addressed allocators
// that back every part of the IR: blocks, instructions, memories, and
// functions all live in an Arena rather than behind pointers.
//
// DESIGN CHOICE: ids are plain integers (array indices) rather than
// pointers because:
// - stable for the arena's lifetime even as the backing slice grows
// - cheap to use as map keys (pred/succ/uses sets)
// - removal never invalidates surviving ids; the slot is simply retired,
//   matching the IR's "ids remain unique forever" lifecycle rule
package arena

// ID is an opaque, stable handle into an Arena. The zero value never
// refers to a live slot because real ids start at 1; this makes a
// zero-valued ID field in a struct safely detectable as "unset".
type ID uint32

const invalidID ID = 0

// Arena is a dense store of T, addressed by ID. Removal does not shrink
// the backing slice or reuse ids; it only retires the slot.
type Arena[T any] struct {
	items []T
	live  []bool
}

// New creates an empty arena.
func New[T any]() *Arena[T] {
	// index 0 is never issued, so a zero ID reliably means "no id".
	return &Arena[T]{items: make([]T, 1), live: make([]bool, 1)}
}

// Alloc stores v and returns its new id.
func (a *Arena[T]) Alloc(v T) ID {
	id := ID(len(a.items))
	a.items = append(a.items, v)
	a.live = append(a.live, true)
	return id
}

// AllocWith allocates a slot first, then builds the payload from the id
// the slot will have. This is the "two-argument allocation" the IR needs
// so that an instruction can record its own id inside itself.
func (a *Arena[T]) AllocWith(build func(ID) T) ID {
	id := ID(len(a.items))
	var zero T
	a.items = append(a.items, zero)
	a.live = append(a.live, true)
	a.items[id] = build(id)
	return id
}

// Get returns a pointer to the payload for id. The pointer aliases the
// arena's backing storage and is only valid until the next Alloc/AllocWith
// call may reallocate the underlying slice.
func (a *Arena[T]) Get(id ID) *T {
	return &a.items[id]
}

// Remove retires id's slot. The id remains a valid, unique identifier
// forever (per the IR's lifecycle rules) but Live reports false for it
// from this point on.
func (a *Arena[T]) Remove(id ID) {
	a.live[id] = false
}

// Live reports whether id's slot has not been removed.
func (a *Arena[T]) Live(id ID) bool {
	return int(id) < len(a.live) && a.live[id]
}

// Len returns the number of slots ever allocated, including retired ones;
// it is the highest id ever issued, used as the upper bound when walking
// every id of an arena.
func (a *Arena[T]) Len() int {
	return len(a.items) - 1
}
