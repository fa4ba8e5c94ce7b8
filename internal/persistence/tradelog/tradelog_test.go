package tradelog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/shopspring/decimal"

	"tradepost.gg/internal/market"
)

func TestRecordRoundTrip(t *testing.T) {
	dir := t.TempDir()
	r := NewRecorder(dir)

	rec := market.Receipt{
		Kind:      market.Purchase,
		StoreID:   "id-1",
		StoreName: "General Goods",
		Player:    "alice",
		Item:      "PLANK",
		Quantity:  10,
		UnitPrice: decimal.NewFromInt(2),
		Amount:    decimal.NewFromInt(20),
	}
	if err := r.Record(rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := r.Record(market.Receipt{Quote: true}); err != nil {
		t.Fatalf("quote record: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "trades", "trades-*.jsonl.zst"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one log file, got %v err %v", matches, err)
	}
	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	var entries []Entry
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected quote skipped, got %d entries", len(entries))
	}
	e := entries[0]
	if e.Kind != "PURCHASE" || e.Player != "alice" || e.Quantity != 10 || !e.Amount.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("entry mismatch: %+v", e)
	}
}
