// Package shopdb persists the store registry snapshot in SQLite. The engine
// hands over plain records; this package owns the encoding.
package shopdb

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"tradepost.gg/internal/market"
	"tradepost.gg/internal/market/geom"
)

type DB struct {
	db *sql.DB
}

func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Serialized writes; the registry flushes snapshots from one goroutine.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS stores (
	pos            INTEGER NOT NULL,
	id             TEXT NOT NULL PRIMARY KEY,
	name           TEXT NOT NULL,
	owner          TEXT NOT NULL DEFAULT '',
	balance        TEXT NOT NULL DEFAULT '0',
	infinite_funds INTEGER NOT NULL DEFAULT 0,
	infinite_stock INTEGER NOT NULL DEFAULT 0,
	volume         TEXT
);
CREATE TABLE IF NOT EXISTS store_items (
	store_id     TEXT NOT NULL,
	item         TEXT NOT NULL,
	quantity     INTEGER NOT NULL,
	max_quantity INTEGER NOT NULL,
	buy_price    TEXT NOT NULL,
	sell_price   TEXT NOT NULL,
	PRIMARY KEY (store_id, item)
);
CREATE TABLE IF NOT EXISTS store_defaults (
	is_global INTEGER NOT NULL,
	world_id  TEXT NOT NULL DEFAULT '',
	store_id  TEXT NOT NULL,
	PRIMARY KEY (is_global, world_id)
);
`

func (d *DB) Close() error { return d.db.Close() }

// Save replaces the persisted snapshot in one transaction.
func (d *DB) Save(snap market.Snapshot) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"stores", "store_items", "store_defaults"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for pos, s := range snap.Stores {
		var vol sql.NullString
		if s.Volume != nil {
			b, err := json.Marshal(s.Volume)
			if err != nil {
				return fmt.Errorf("encode volume of %s: %w", s.ID, err)
			}
			vol = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := tx.Exec(
			`INSERT INTO stores (pos, id, name, owner, balance, infinite_funds, infinite_stock, volume)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			pos, s.ID, s.Name, s.Owner, s.Balance.String(), boolInt(s.InfiniteFunds), boolInt(s.InfiniteStock), vol,
		); err != nil {
			return fmt.Errorf("insert store %s: %w", s.ID, err)
		}
		for _, it := range s.Items {
			if _, err := tx.Exec(
				`INSERT INTO store_items (store_id, item, quantity, max_quantity, buy_price, sell_price)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				s.ID, it.Type, it.Quantity, it.MaxQuantity, it.BuyPrice.String(), it.SellPrice.String(),
			); err != nil {
				return fmt.Errorf("insert item %s/%s: %w", s.ID, it.Type, err)
			}
		}
	}

	for _, def := range snap.Defaults {
		if _, err := tx.Exec(
			`INSERT INTO store_defaults (is_global, world_id, store_id) VALUES (?, ?, ?)`,
			boolInt(def.Global), def.WorldID, def.StoreID,
		); err != nil {
			return fmt.Errorf("insert default %s: %w", def.StoreID, err)
		}
	}

	return tx.Commit()
}

// Load reads the persisted snapshot back, stores in their saved order.
func (d *DB) Load() (market.Snapshot, error) {
	var snap market.Snapshot

	rows, err := d.db.Query(
		`SELECT id, name, owner, balance, infinite_funds, infinite_stock, volume
		 FROM stores ORDER BY pos`)
	if err != nil {
		return snap, err
	}
	defer rows.Close()
	for rows.Next() {
		var rec market.StoreRecord
		var balance string
		var infFunds, infStock int
		var vol sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Owner, &balance, &infFunds, &infStock, &vol); err != nil {
			return snap, err
		}
		rec.Balance, err = decimal.NewFromString(balance)
		if err != nil {
			return snap, fmt.Errorf("balance of %s: %w", rec.ID, err)
		}
		rec.InfiniteFunds = infFunds != 0
		rec.InfiniteStock = infStock != 0
		if vol.Valid {
			var c geom.Cuboid
			if err := json.Unmarshal([]byte(vol.String), &c); err != nil {
				return snap, fmt.Errorf("volume of %s: %w", rec.ID, err)
			}
			rec.Volume = &c
		}
		snap.Stores = append(snap.Stores, rec)
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	byID := map[string]int{}
	for i, s := range snap.Stores {
		byID[s.ID] = i
	}

	itemRows, err := d.db.Query(
		`SELECT store_id, item, quantity, max_quantity, buy_price, sell_price
		 FROM store_items ORDER BY store_id, item`)
	if err != nil {
		return snap, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var storeID, buy, sell string
		var it market.ItemRecord
		if err := itemRows.Scan(&storeID, &it.Type, &it.Quantity, &it.MaxQuantity, &buy, &sell); err != nil {
			return snap, err
		}
		if it.BuyPrice, err = decimal.NewFromString(buy); err != nil {
			return snap, fmt.Errorf("buy price of %s/%s: %w", storeID, it.Type, err)
		}
		if it.SellPrice, err = decimal.NewFromString(sell); err != nil {
			return snap, fmt.Errorf("sell price of %s/%s: %w", storeID, it.Type, err)
		}
		i, ok := byID[storeID]
		if !ok {
			continue
		}
		snap.Stores[i].Items = append(snap.Stores[i].Items, it)
	}
	if err := itemRows.Err(); err != nil {
		return snap, err
	}

	defRows, err := d.db.Query(`SELECT is_global, world_id, store_id FROM store_defaults`)
	if err != nil {
		return snap, err
	}
	defer defRows.Close()
	for defRows.Next() {
		var isGlobal int
		var def market.DefaultRecord
		if err := defRows.Scan(&isGlobal, &def.WorldID, &def.StoreID); err != nil {
			return snap, err
		}
		def.Global = isGlobal != 0
		snap.Defaults = append(snap.Defaults, def)
	}
	return snap, defRows.Err()
}

// SaveDefault upserts one default-store assignment, so the table survives a
// restart even between full snapshot flushes. Implements market.DefaultSink.
func (d *DB) SaveDefault(key market.WorldKey, storeID string) error {
	worldID := ""
	if id, ok := key.WorldID(); ok {
		worldID = id
	}
	_, err := d.db.Exec(
		`INSERT OR REPLACE INTO store_defaults (is_global, world_id, store_id) VALUES (?, ?, ?)`,
		boolInt(key.IsGlobal()), worldID, storeID,
	)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
