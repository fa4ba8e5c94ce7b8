// Package markettest provides in-memory ledger and inventory collaborators
// for engine tests and ephemeral hosts.
package markettest

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"tradepost.gg/internal/market"
)

// Ledger is an in-memory currency backend.
type Ledger struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal

	// FailDebits forces every Debit to fail, for exercising the
	// execution-failure path.
	FailDebits bool
}

func NewLedger() *Ledger {
	return &Ledger{balances: map[string]decimal.Decimal{}}
}

func (l *Ledger) Deposit(player string, amount decimal.Decimal) {
	l.mu.Lock()
	l.balances[player] = l.balances[player].Add(amount)
	l.mu.Unlock()
}

func (l *Ledger) Debit(player string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.FailDebits {
		return errors.New("debit refused")
	}
	b := l.balances[player]
	if b.LessThan(amount) {
		return errors.New("insufficient funds")
	}
	l.balances[player] = b.Sub(amount)
	return nil
}

func (l *Ledger) Credit(player string, amount decimal.Decimal) {
	l.mu.Lock()
	l.balances[player] = l.balances[player].Add(amount)
	l.mu.Unlock()
}

func (l *Ledger) BalanceOf(player string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[player]
}

// Inventory is an in-memory player inventory with a single per-item
// capacity bound, mirroring the stack/slot limits a real host enforces.
type Inventory struct {
	mu    sync.Mutex
	items map[string]map[string]int // player -> item -> count

	// CapPerItem bounds how many of one item a player can hold;
	// 0 means unbounded.
	CapPerItem int
}

func NewInventory() *Inventory {
	return &Inventory{items: map[string]map[string]int{}}
}

func (v *Inventory) Count(player, item string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.items[player][item]
}

func (v *Inventory) SpaceFor(player, item string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.spaceFor(player, item)
}

func (v *Inventory) spaceFor(player, item string) int {
	if v.CapPerItem <= 0 {
		return market.Unbounded
	}
	if space := v.CapPerItem - v.items[player][item]; space > 0 {
		return space
	}
	return 0
}

func (v *Inventory) CanInsert(player, item string, qty int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return qty <= v.spaceFor(player, item)
}

func (v *Inventory) CanInsertAll(player string, batch []market.ItemStack) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, st := range batch {
		if st.Count > v.spaceFor(player, st.Item) {
			return false
		}
	}
	return true
}

func (v *Inventory) Add(player, item string, qty int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	m := v.items[player]
	if m == nil {
		m = map[string]int{}
		v.items[player] = m
	}
	m[item] += qty
}

func (v *Inventory) Remove(player, item string, qty int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	m := v.items[player]
	if m == nil {
		return
	}
	m[item] -= qty
	if m[item] <= 0 {
		delete(m, item)
	}
}

// Holding adapts one player's slice of the inventory to market.Holder, so
// the capacity helpers can run against player-like containers too.
type Holding struct {
	Inv    *Inventory
	Player string
}

func (h Holding) OnHand(item string) int   { return h.Inv.Count(h.Player, item) }
func (h Holding) SpaceFor(item string) int { return h.Inv.SpaceFor(h.Player, item) }
