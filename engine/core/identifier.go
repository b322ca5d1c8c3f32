package core

import "fmt"

// IdentifierPool hands out small integer ids for owners. Released ids are
// reused before the pool grows, so ids stay dense.
type IdentifierPool[T any] struct {
	owners   []*T
	maxCount uint32
	count    uint32
}

// NewIdentifierPool creates a pool that holds at most maxCount live owners.
// A maxCount of 0 means unbounded.
func NewIdentifierPool[T any](maxCount uint32) *IdentifierPool[T] {
	initial := maxCount
	if initial == 0 || initial > 100 {
		initial = 100
	}
	return &IdentifierPool[T]{
		owners:   make([]*T, 0, initial),
		maxCount: maxCount,
	}
}

func (p *IdentifierPool[T]) Acquire(owner *T) (uint32, error) {
	if owner == nil {
		return 0, fmt.Errorf("identifier_acquire: owner cannot be nil")
	}
	length := uint32(len(p.owners))
	for i := uint32(0); i < length; i++ {
		// Existing free spot. Take it.
		if p.owners[i] == nil {
			p.owners[i] = owner
			p.count++
			return i, nil
		}
	}

	if p.maxCount > 0 && length >= p.maxCount {
		return 0, fmt.Errorf("identifier_acquire: %d ids in use: %w", length, ErrRegistryFull)
	}

	// If here, no existing free slots. Need a new id, so push one.
	p.owners = append(p.owners, owner)
	p.count++
	return length, nil
}

func (p *IdentifierPool[T]) Release(id uint32) error {
	length := uint32(len(p.owners))
	if id >= length {
		return fmt.Errorf("identifier_release: id '%d' out of range (max=%d). Nothing was done", id, length)
	}
	if p.owners[id] == nil {
		return fmt.Errorf("identifier_release: id '%d' is not in use. Nothing was done", id)
	}

	// Just zero out the entry, making it available for use.
	p.owners[id] = nil
	p.count--
	return nil
}

// Get returns the owner of id or nil when the id is free or out of range.
func (p *IdentifierPool[T]) Get(id uint32) *T {
	if id >= uint32(len(p.owners)) {
		return nil
	}
	return p.owners[id]
}

// Count is the number of live ids.
func (p *IdentifierPool[T]) Count() uint32 {
	return p.count
}

// Each visits the live owners in id order.
func (p *IdentifierPool[T]) Each(fn func(id uint32, owner *T)) {
	for i, o := range p.owners {
		if o != nil {
			fn(uint32(i), o)
		}
	}
}
