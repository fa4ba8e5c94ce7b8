package market

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradepost.gg/internal/market/geom"
)

// Plain records exchanged with the persistence collaborator. The engine
// defines the shape; how the collaborator encodes it for disk is not its
// concern.

type ItemRecord struct {
	Type        string          `json:"type"`
	Quantity    int             `json:"quantity"`
	MaxQuantity int             `json:"max_quantity"`
	BuyPrice    decimal.Decimal `json:"buy_price"`
	SellPrice   decimal.Decimal `json:"sell_price"`
}

type StoreRecord struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Owner         string          `json:"owner,omitempty"`
	Balance       decimal.Decimal `json:"balance"`
	InfiniteFunds bool            `json:"infinite_funds,omitempty"`
	InfiniteStock bool            `json:"infinite_stock,omitempty"`
	Items         []ItemRecord    `json:"items,omitempty"`
	Volume        *geom.Cuboid    `json:"volume,omitempty"`
}

type DefaultRecord struct {
	Global  bool   `json:"global,omitempty"`
	WorldID string `json:"world_id,omitempty"`
	StoreID string `json:"store_id"`
}

type Snapshot struct {
	Stores   []StoreRecord   `json:"stores"`
	Defaults []DefaultRecord `json:"defaults,omitempty"`
}

// Snapshot captures the whole registry as plain records, stores in
// insertion order, for the persistence collaborator.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{Stores: make([]StoreRecord, 0, len(r.stores))}
	for _, s := range r.stores {
		snap.Stores = append(snap.Stores, s.record())
	}
	for k, s := range r.defaults {
		rec := DefaultRecord{StoreID: s.id.String()}
		if k.IsGlobal() {
			rec.Global = true
		} else {
			rec.WorldID, _ = k.WorldID()
		}
		snap.Defaults = append(snap.Defaults, rec)
	}
	return snap
}

func (s *Store) record() StoreRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec := StoreRecord{
		ID:            s.id.String(),
		Name:          s.name,
		Owner:         s.owner,
		Balance:       s.balance,
		InfiniteFunds: s.infiniteFunds,
		InfiniteStock: s.infiniteStock,
	}
	for _, st := range s.itemsLocked() {
		e := s.catalog[st.Item]
		rec.Items = append(rec.Items, ItemRecord{
			Type:        st.Item,
			Quantity:    e.Quantity,
			MaxQuantity: e.MaxQuantity,
			BuyPrice:    e.BuyPrice,
			SellPrice:   e.SellPrice,
		})
	}
	if s.volume != nil {
		v := *s.volume
		rec.Volume = &v
	}
	return rec
}

// Restore replaces the registry contents with the snapshot. Records with an
// unparseable store id, and default entries pointing at unknown stores, are
// dropped. Restore does not notify the persistence sink; it is the load
// half of the same collaboration.
func (r *Registry) Restore(snap Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stores = r.stores[:0]
	r.defaults = map[WorldKey]*Store{}

	byID := map[string]*Store{}
	for _, rec := range snap.Stores {
		id, err := uuid.Parse(rec.ID)
		if err != nil {
			continue
		}
		s := &Store{
			id:            id,
			name:          rec.Name,
			owner:         rec.Owner,
			balance:       rec.Balance,
			infiniteFunds: rec.InfiniteFunds,
			infiniteStock: rec.InfiniteStock,
			catalog:       map[string]*ItemEntry{},
		}
		if s.balance.Sign() < 0 {
			s.balance = decimal.Zero
		}
		for _, it := range rec.Items {
			s.catalog[it.Type] = &ItemEntry{
				Quantity:    it.Quantity,
				MaxQuantity: it.MaxQuantity,
				BuyPrice:    it.BuyPrice,
				SellPrice:   it.SellPrice,
			}
		}
		if rec.Volume != nil {
			v := rec.Volume.Normalize()
			s.volume = &v
		}
		r.stores = append(r.stores, s)
		byID[id.String()] = s
	}

	for _, d := range snap.Defaults {
		s := byID[d.StoreID]
		if s == nil {
			continue
		}
		if d.Global {
			r.defaults[GlobalKey()] = s
		} else {
			r.defaults[WorldOf(d.WorldID)] = s
		}
	}
}
