package market

import "github.com/shopspring/decimal"

// Ledger is the external currency backend holding player funds. Debit is
// the only fallible call; it fails when the player cannot cover amount.
// Calls are synchronous with bounded latency.
type Ledger interface {
	Debit(player string, amount decimal.Decimal) error
	Credit(player string, amount decimal.Decimal)
	BalanceOf(player string) decimal.Decimal
}

// Inventory is the external collaborator holding player items. It owns the
// stack and slot rules for player-side space; the engine only asks it
// feasibility questions and tells it the outcome of executed trades.
type Inventory interface {
	Count(player, item string) int
	SpaceFor(player, item string) int
	CanInsert(player, item string, qty int) bool
	CanInsertAll(player string, batch []ItemStack) bool
	Add(player, item string, qty int)
	Remove(player, item string, qty int)
}
