// Package tradelog appends executed trades to day-rotated, zstd-compressed
// JSONL files. The log is an operator audit trail, not engine state.
package tradelog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/shopspring/decimal"

	"tradepost.gg/internal/market"
)

// Entry is one logged trade.
type Entry struct {
	At        string          `json:"at"`
	Kind      string          `json:"kind"`
	StoreID   string          `json:"store_id"`
	StoreName string          `json:"store_name"`
	Player    string          `json:"player"`
	Item      string          `json:"item"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

type Recorder struct {
	dir string

	mu     sync.Mutex
	curDay string
	f      *os.File
	enc    *zstd.Encoder
	w      *bufio.Writer
}

func NewRecorder(dataDir string) *Recorder {
	return &Recorder{dir: filepath.Join(dataDir, "trades")}
}

// Record appends the receipt. Quotes are not logged; they change nothing.
func (r *Recorder) Record(rec market.Receipt) error {
	if rec.Quote {
		return nil
	}
	e := Entry{
		At:        time.Now().UTC().Format(time.RFC3339),
		Kind:      rec.Kind.String(),
		StoreID:   rec.StoreID,
		StoreName: rec.StoreName,
		Player:    rec.Player,
		Item:      rec.Item,
		Quantity:  rec.Quantity,
		UnitPrice: rec.UnitPrice,
		Amount:    rec.Amount,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	day := time.Now().UTC().Format("2006-01-02")
	if day != r.curDay {
		if err := r.rotateLocked(day); err != nil {
			return err
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := r.w.Write(b); err != nil {
		return err
	}
	if err := r.w.WriteByte('\n'); err != nil {
		return err
	}
	return r.w.Flush()
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeLocked()
}

func (r *Recorder) rotateLocked(day string) error {
	if err := r.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(r.dir, fmt.Sprintf("trades-%s.jsonl.zst", day))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	r.f = f
	r.enc = enc
	r.w = bufio.NewWriterSize(enc, 64*1024)
	r.curDay = day
	return nil
}

func (r *Recorder) closeLocked() error {
	var err error
	if r.w != nil {
		_ = r.w.Flush()
	}
	if r.enc != nil {
		err = r.enc.Close()
		r.enc = nil
	}
	if r.f != nil {
		_ = r.f.Close()
		r.f = nil
	}
	r.w = nil
	return err
}
