package market

import "github.com/shopspring/decimal"

// Kind is the direction of a trade from the player's point of view.
type Kind int

const (
	// Purchase moves items from the store to the player for money.
	Purchase Kind = iota + 1
	// Sale moves items from the player to the store for money.
	Sale
)

func (k Kind) String() string {
	switch k {
	case Purchase:
		return "PURCHASE"
	case Sale:
		return "SALE"
	}
	return "UNKNOWN"
}

// Transaction is one requested trade: ephemeral, built per command
// invocation and discarded after execution or rejection. Exactly one of a
// bounded Quantity, All, or Quote describes the requested amount.
type Transaction struct {
	Store  *Store
	Player string
	Item   string
	Kind   Kind

	// Quantity is the requested amount; ignored when All or Quote is set.
	Quantity int
	// All requests the maximum feasible amount given current
	// stock, space, funds and price.
	All bool
	// Quote requests the unit price only; validation short-circuits and
	// execution never mutates state.
	Quote bool
}

// Validated is a transaction that passed Validate, carrying the resolved
// quantity and the computed cost or proceeds.
type Validated struct {
	Transaction
	ResolvedQuantity int
	UnitPrice        decimal.Decimal
	Amount           decimal.Decimal
}

// Receipt is the structured outcome of an executed (or quoted) transaction.
// Rendering it as text is the shell's concern.
type Receipt struct {
	Kind      Kind
	StoreID   string
	StoreName string
	Player    string
	Item      string
	Quantity  int
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal
	Quote     bool
}

// Exchange drives validated trades between players and stores. Validate
// runs under the store's shared lock; Execute promotes to the exclusive
// lock, re-checks the validated preconditions against current state, and
// only then mutates — two transactions racing to deplete the same stock
// resolve as one success and one E_STALE rejection, never a negative
// quantity. Transactions against different stores proceed independently.
type Exchange struct {
	Ledger    Ledger
	Inventory Inventory
}

func NewExchange(l Ledger, inv Inventory) *Exchange {
	return &Exchange{Ledger: l, Inventory: inv}
}

// Validate checks every precondition of tx and resolves its effective
// quantity and amount. It mutates nothing.
func (e *Exchange) Validate(tx Transaction) (Validated, *TradeError) {
	s := tx.Store
	if s == nil {
		return Validated{}, rejected(CodeNotFound, PartyStore, "no store resolved")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return e.validateLocked(tx)
}

// validateLocked requires at least the store's read lock.
func (e *Exchange) validateLocked(tx Transaction) (Validated, *TradeError) {
	s := tx.Store

	var price decimal.Decimal
	switch tx.Kind {
	case Purchase:
		price = s.buyPriceLocked(tx.Item)
	case Sale:
		price = s.sellPriceLocked(tx.Item)
	default:
		return Validated{}, rejected(CodeExecutionFailed, "", "unknown transaction kind")
	}

	if tx.Quote {
		// Price-only request: report the stored price, sentinel included.
		return Validated{Transaction: tx, UnitPrice: price}, nil
	}

	qty := tx.Quantity
	if tx.All {
		if price.Sign() < 0 {
			return Validated{}, rejected(CodeNotTradable, PartyStore, tx.Item+" is not traded here")
		}
		qty = e.maxFeasibleLocked(tx, price)
	}
	if qty <= 0 {
		return Validated{}, rejected(CodeInvalidQuantity, "", "quantity must be positive")
	}
	if price.Sign() < 0 {
		return Validated{}, rejected(CodeNotTradable, PartyStore, tx.Item+" is not traded here")
	}

	amount := price.Mul(decimal.NewFromInt(int64(qty)))

	switch tx.Kind {
	case Purchase:
		if e.Ledger.BalanceOf(tx.Player).LessThan(amount) {
			return Validated{}, rejected(CodeInsufficientFunds, PartyPlayer, "player cannot cover cost")
		}
		if !s.containsAtLeastLocked(tx.Item, qty) {
			return Validated{}, rejected(CodeInsufficientStock, PartyStore, "store is out of stock")
		}
		if !e.Inventory.CanInsert(tx.Player, tx.Item, qty) {
			return Validated{}, rejected(CodeInsufficientSpace, PartyPlayer, "no room in player inventory")
		}
	case Sale:
		if e.Inventory.Count(tx.Player, tx.Item) < qty {
			return Validated{}, rejected(CodeInsufficientStock, PartyPlayer, "player does not hold enough")
		}
		if !s.infiniteFunds && s.balance.LessThan(amount) {
			return Validated{}, rejected(CodeInsufficientFunds, PartyStore, "store cannot cover proceeds")
		}
		if s.spaceForLocked(tx.Item) < qty {
			return Validated{}, rejected(CodeInsufficientSpace, PartyStore, "no room in store stock")
		}
	}

	return Validated{
		Transaction:      tx,
		ResolvedQuantity: qty,
		UnitPrice:        price,
		Amount:           amount,
	}, nil
}

// maxFeasibleLocked resolves an "ALL" request: the largest quantity the
// current stock, receiving space and paying party's funds all allow.
func (e *Exchange) maxFeasibleLocked(tx Transaction, price decimal.Decimal) int {
	s := tx.Store
	switch tx.Kind {
	case Purchase:
		avail := s.onHandLocked(tx.Item)
		space := e.Inventory.SpaceFor(tx.Player, tx.Item)
		afford := Unbounded
		if price.Sign() > 0 {
			afford = clampAmount(e.Ledger.BalanceOf(tx.Player).Div(price).IntPart())
		}
		return min3(avail, space, afford)
	case Sale:
		held := e.Inventory.Count(tx.Player, tx.Item)
		space := s.spaceForLocked(tx.Item)
		afford := Unbounded
		if !s.infiniteFunds && price.Sign() > 0 {
			afford = clampAmount(s.balance.Div(price).IntPart())
		}
		return min3(held, space, afford)
	}
	return 0
}

// Execute performs the atomic state change for a validated transaction.
// Preconditions are re-checked under the store's write lock; a mismatch
// with the validated values reports E_STALE with no state change. The
// fallible ledger debit runs before any engine mutation, so a mid-flight
// ledger failure reports E_EXECUTION_FAILED and leaves everything as it
// was.
func (e *Exchange) Execute(v Validated) (Receipt, *TradeError) {
	s := v.Store
	if s == nil {
		return Receipt{}, rejected(CodeExecutionFailed, PartyStore, "no store resolved")
	}
	if v.Quote {
		s.mu.RLock()
		r := e.receipt(v)
		s.mu.RUnlock()
		return r, nil
	}
	if v.ResolvedQuantity <= 0 {
		return Receipt{}, rejected(CodeExecutionFailed, "", "transaction was not validated")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch v.Kind {
	case Purchase:
		return e.executePurchaseLocked(v)
	case Sale:
		return e.executeSaleLocked(v)
	}
	return Receipt{}, rejected(CodeExecutionFailed, "", "unknown transaction kind")
}

func (e *Exchange) executePurchaseLocked(v Validated) (Receipt, *TradeError) {
	s := v.Store
	qty := v.ResolvedQuantity

	if !s.buyPriceLocked(v.Item).Equal(v.UnitPrice) {
		return Receipt{}, rejected(CodeStale, PartyStore, "price changed")
	}
	if !s.containsAtLeastLocked(v.Item, qty) {
		return Receipt{}, rejected(CodeStale, PartyStore, "stock depleted")
	}
	if !e.Inventory.CanInsert(v.Player, v.Item, qty) {
		return Receipt{}, rejected(CodeStale, PartyPlayer, "player space gone")
	}

	// The debit can still race against other spenders of the player's
	// funds; it must precede every engine mutation.
	if err := e.Ledger.Debit(v.Player, v.Amount); err != nil {
		return Receipt{}, rejected(CodeExecutionFailed, PartyPlayer, "ledger debit refused")
	}

	if !s.infiniteFunds {
		s.addFundsLocked(v.Amount)
	}
	if entry := s.catalog[v.Item]; entry != nil && !s.infiniteStock && entry.Quantity != InfiniteQuantity {
		s.removeQuantityLocked(v.Item, qty)
	}
	e.Inventory.Add(v.Player, v.Item, qty)

	return e.receipt(v), nil
}

func (e *Exchange) executeSaleLocked(v Validated) (Receipt, *TradeError) {
	s := v.Store
	qty := v.ResolvedQuantity

	if !s.sellPriceLocked(v.Item).Equal(v.UnitPrice) {
		return Receipt{}, rejected(CodeStale, PartyStore, "price changed")
	}
	if e.Inventory.Count(v.Player, v.Item) < qty {
		return Receipt{}, rejected(CodeStale, PartyPlayer, "player stock gone")
	}
	if !s.infiniteFunds && s.balance.LessThan(v.Amount) {
		return Receipt{}, rejected(CodeStale, PartyStore, "store funds depleted")
	}
	if s.spaceForLocked(v.Item) < qty {
		return Receipt{}, rejected(CodeStale, PartyStore, "store space gone")
	}

	e.Inventory.Remove(v.Player, v.Item, qty)
	if entry := s.catalog[v.Item]; entry != nil && !s.infiniteStock && entry.Quantity != InfiniteQuantity {
		entry.Quantity += qty
	}
	if !s.infiniteFunds {
		s.removeFundsLocked(v.Amount)
	}
	e.Ledger.Credit(v.Player, v.Amount)

	return e.receipt(v), nil
}

func (e *Exchange) receipt(v Validated) Receipt {
	return Receipt{
		Kind:      v.Kind,
		StoreID:   v.Store.id.String(),
		StoreName: v.Store.name,
		Player:    v.Player,
		Item:      v.Item,
		Quantity:  v.ResolvedQuantity,
		UnitPrice: v.UnitPrice,
		Amount:    v.Amount,
		Quote:     v.Quote,
	}
}

func clampAmount(n int64) int {
	if n > Unbounded {
		return Unbounded
	}
	if n < 0 {
		return 0
	}
	return int(n)
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
