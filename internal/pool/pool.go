// Package pool implements fixed-capacity object slabs indexed by small
// integers. Every item is allocated up front; Create and Discard only flip
// occupancy flags, so nothing is allocated on the per-frame path and ids are
// reused deterministically (lowest free id first).
package pool

type Pool[T any] struct {
	items  []*T
	active []bool
	count  int
}

// New allocates size items using newItem, which receives the item id.
func New[T any](size int, newItem func(id int) *T) *Pool[T] {
	p := &Pool[T]{
		items:  make([]*T, size),
		active: make([]bool, size),
	}
	for i := range p.items {
		p.items[i] = newItem(i)
	}
	return p
}

// Create marks the lowest free item as active and passes it to init.
// It returns nil when the pool is exhausted.
func (p *Pool[T]) Create(init func(*T)) *T {
	return p.CreateWithIDGreaterThan(init, -1)
}

// CreateWithIDGreaterThan is like Create but only considers ids above id.
func (p *Pool[T]) CreateWithIDGreaterThan(init func(*T), id int) *T {
	for i := id + 1; i < len(p.items); i++ {
		if p.active[i] {
			continue
		}
		p.active[i] = true
		p.count++
		item := p.items[i]
		if init != nil {
			init(item)
		}
		return item
	}
	return nil
}

// Discard returns the item to the pool. Discarding a free item is a no-op.
func (p *Pool[T]) Discard(id int) {
	if id < 0 || id >= len(p.items) || !p.active[id] {
		return
	}
	p.active[id] = false
	p.count--
}

// Get returns the item with the given id, active or not.
func (p *Pool[T]) Get(id int) *T {
	return p.items[id]
}

func (p *Pool[T]) IsActive(id int) bool {
	return id >= 0 && id < len(p.items) && p.active[id]
}

// ForEachActive visits the active items in ascending id order. fn may
// discard the visited item or create new ones.
func (p *Pool[T]) ForEachActive(fn func(*T)) {
	for i := range p.items {
		if p.active[i] {
			fn(p.items[i])
		}
	}
}

// Clear discards every item.
func (p *Pool[T]) Clear() {
	for i := range p.active {
		p.active[i] = false
	}
	p.count = 0
}

// Active returns the number of items in use.
func (p *Pool[T]) Active() int {
	return p.count
}

func (p *Pool[T]) Capacity() int {
	return len(p.items)
}
