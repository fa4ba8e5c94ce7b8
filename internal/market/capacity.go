package market

import "math"

// Unbounded is the conventional "very large" amount reported for infinite
// stock and unlimited capacity. Feasibility comparisons treat it as larger
// than any real quantity.
const Unbounded = math.MaxInt32

// Holder is any per-item container the capacity checks can run against: a
// shop catalog or a player-like holding. OnHand reports Unbounded for
// infinite stock; SpaceFor reports 0 for items the container does not carry
// and Unbounded for unlimited capacity.
type Holder interface {
	OnHand(item string) int
	SpaceFor(item string) int
}

// OnHand reports the quantity of item present in h.
func OnHand(h Holder, item string) int { return h.OnHand(item) }

// AvailableSpace reports how many of item h can still receive.
func AvailableSpace(h Holder, item string) int { return h.SpaceFor(item) }

// CanInsert reports whether qty of item fits into h.
func CanInsert(h Holder, item string, qty int) bool {
	return qty <= h.SpaceFor(item)
}

// CanInsertAll checks each stack of the batch individually against the
// container's current state; capacity consumed by earlier stacks in the
// batch is not reserved while checking later ones. Batches with repeated
// item types or shared slot limits can therefore pass here and still not
// fit as a whole.
func CanInsertAll(h Holder, batch []ItemStack) bool {
	for _, st := range batch {
		if !CanInsert(h, st.Item, st.Count) {
			return false
		}
	}
	return true
}

// CanRemove reports whether h holds at least qty of item.
func CanRemove(h Holder, item string, qty int) bool {
	return h.OnHand(item) >= qty
}

// ContainsAtLeast reports whether the shop can supply qty of item. A shop
// with infinite stock always can, regardless of its catalog.
func ContainsAtLeast(s *Store, item string, qty int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.containsAtLeastLocked(item, qty)
}

func (s *Store) containsAtLeastLocked(item string, qty int) bool {
	if s.infiniteStock {
		return true
	}
	return s.onHandLocked(item) >= qty
}

// OnHand implements Holder over the shop's catalog.
func (s *Store) OnHand(item string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.onHandLocked(item)
}

func (s *Store) onHandLocked(item string) int {
	e := s.catalog[item]
	if e == nil {
		return 0
	}
	if s.infiniteStock || e.Quantity == InfiniteQuantity {
		return Unbounded
	}
	return e.Quantity
}

// SpaceFor implements Holder over the shop's catalog: 0 for items not in
// the catalog, Unbounded under infinite stock or an unlimited max.
func (s *Store) SpaceFor(item string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.spaceForLocked(item)
}

func (s *Store) spaceForLocked(item string) int {
	e := s.catalog[item]
	if e == nil {
		return 0
	}
	if s.infiniteStock || e.MaxQuantity == InfiniteQuantity {
		return Unbounded
	}
	if space := e.MaxQuantity - e.Quantity; space > 0 {
		return space
	}
	return 0
}
