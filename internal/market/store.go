// Package market implements the store and transaction engine: the shop
// registry, the item/price/quantity model, spatial lookup of shops, capacity
// arithmetic, and the validated purchase/sale path. It is a pure in-process
// layer; command parsing, rendering and durable encoding live outside.
package market

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradepost.gg/internal/market/geom"
)

// InfiniteQuantity marks an ItemEntry quantity or max quantity as unlimited.
const InfiniteQuantity = -1

// NoPrice is the price sentinel: the item is not purchasable (buy side) or
// not sellable (sell side). Absent catalog entries report it too.
func NoPrice() decimal.Decimal { return decimal.NewFromInt(-1) }

// ItemEntry is one catalog slot. Quantity and MaxQuantity use the
// InfiniteQuantity sentinel; prices use the NoPrice sentinel. Buy and sell
// side are independent: an entry may be purchasable only, sellable only,
// both, or neither.
type ItemEntry struct {
	Quantity    int
	MaxQuantity int
	BuyPrice    decimal.Decimal
	SellPrice   decimal.Decimal
}

// ItemStack pairs an item type with a count, for catalog listings.
type ItemStack struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// Store is a named shop with a balance and an item catalog, optionally bound
// to a volume of one world. Stores are created only through
// Registry.Create and destroyed only through Registry.Remove.
//
// The item and fund methods are plain record arithmetic; they enforce no
// trading preconditions. User-facing trades must go through Exchange, which
// is the guarded mutation path.
type Store struct {
	mu sync.RWMutex

	id    uuid.UUID
	name  string
	owner string

	balance       decimal.Decimal
	infiniteFunds bool
	infiniteStock bool

	catalog map[string]*ItemEntry
	volume  *geom.Cuboid
}

func newStore(name, owner string) *Store {
	return &Store{
		id:      uuid.New(),
		name:    name,
		owner:   owner,
		balance: decimal.Zero,
		catalog: map[string]*ItemEntry{},
	}
}

func (s *Store) ID() uuid.UUID { return s.id }

func (s *Store) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *Store) Rename(name string) {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
}

// Owner is the owning player reference; empty means server-operated.
func (s *Store) Owner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

func (s *Store) SetOwner(owner string) {
	s.mu.Lock()
	s.owner = owner
	s.mu.Unlock()
}

func (s *Store) Balance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance
}

func (s *Store) InfiniteFunds() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.infiniteFunds
}

func (s *Store) SetInfiniteFunds(v bool) {
	s.mu.Lock()
	s.infiniteFunds = v
	s.mu.Unlock()
}

func (s *Store) InfiniteStock() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.infiniteStock
}

func (s *Store) SetInfiniteStock(v bool) {
	s.mu.Lock()
	s.infiniteStock = v
	s.mu.Unlock()
}

// Volume returns a copy of the shop's bound region, or nil when the shop has
// no physical footprint.
func (s *Store) Volume() *geom.Cuboid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.volume == nil {
		return nil
	}
	v := *s.volume
	return &v
}

func (s *Store) SetVolume(c geom.Cuboid) {
	n := c.Normalize()
	s.mu.Lock()
	s.volume = &n
	s.mu.Unlock()
}

func (s *Store) ClearVolume() {
	s.mu.Lock()
	s.volume = nil
	s.mu.Unlock()
}

// AddItem adds qty to the item's entry, creating the entry with sentinel
// defaults (unlimited max, neither side tradable) when absent.
func (s *Store) AddItem(item string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addItemLocked(item, qty)
}

func (s *Store) addItemLocked(item string, qty int) *ItemEntry {
	e := s.catalog[item]
	if e == nil {
		e = &ItemEntry{
			Quantity:    qty,
			MaxQuantity: InfiniteQuantity,
			BuyPrice:    NoPrice(),
			SellPrice:   NoPrice(),
		}
		s.catalog[item] = e
		return e
	}
	e.Quantity += qty
	return e
}

// AddItemWithPrices adds qty like AddItem, then overwrites the entry's max
// quantity and both prices.
func (s *Store) AddItemWithPrices(item string, qty, maxQty int, buy, sell decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.addItemLocked(item, qty)
	e.MaxQuantity = maxQty
	e.BuyPrice = buy
	e.SellPrice = sell
}

// RemoveItem deletes the catalog slot entirely.
func (s *Store) RemoveItem(item string) {
	s.mu.Lock()
	delete(s.catalog, item)
	s.mu.Unlock()
}

// RemoveQuantity decrements the entry's quantity without flooring at zero.
// This is an unchecked low-level primitive: the capacity checks are the
// enforcement point, and calling this outside a validated trade path with a
// qty larger than on-hand stock drives the stored quantity negative.
func (s *Store) RemoveQuantity(item string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeQuantityLocked(item, qty)
}

func (s *Store) removeQuantityLocked(item string, qty int) {
	if e := s.catalog[item]; e != nil {
		e.Quantity -= qty
	}
}

func (s *Store) AddFunds(amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addFundsLocked(amount)
}

func (s *Store) addFundsLocked(amount decimal.Decimal) {
	s.balance = s.balance.Add(amount)
}

// RemoveFunds debits the balance, clamping at zero. Removing more than the
// balance leaves exactly zero; the clamp is silent, not an error.
func (s *Store) RemoveFunds(amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeFundsLocked(amount)
}

func (s *Store) removeFundsLocked(amount decimal.Decimal) {
	s.balance = s.balance.Sub(amount)
	if s.balance.Sign() < 0 {
		s.balance = decimal.Zero
	}
}

// BuyPrice returns the per-unit purchase price, or the NoPrice sentinel when
// the item is absent or not purchasable.
func (s *Store) BuyPrice(item string) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buyPriceLocked(item)
}

func (s *Store) buyPriceLocked(item string) decimal.Decimal {
	if e := s.catalog[item]; e != nil {
		return e.BuyPrice
	}
	return NoPrice()
}

// SellPrice returns the per-unit sale price, or the NoPrice sentinel when
// the item is absent or not sellable.
func (s *Store) SellPrice(item string) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sellPriceLocked(item)
}

func (s *Store) sellPriceLocked(item string) decimal.Decimal {
	if e := s.catalog[item]; e != nil {
		return e.SellPrice
	}
	return NoPrice()
}

// Entry returns a copy of the catalog slot for item.
func (s *Store) Entry(item string) (ItemEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e := s.catalog[item]; e != nil {
		return *e, true
	}
	return ItemEntry{}, false
}

// Items lists the catalog in item order.
func (s *Store) Items() []ItemStack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.itemsLocked()
}

func (s *Store) itemsLocked() []ItemStack {
	out := make([]ItemStack, 0, len(s.catalog))
	for item, e := range s.catalog {
		out = append(out, ItemStack{Item: item, Count: e.Quantity})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item < out[j].Item })
	return out
}
