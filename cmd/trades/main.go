// Command trades reads the daily trade audit logs and prints the entries,
// optionally filtered, followed by per-item totals.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/shopspring/decimal"

	"tradepost.gg/internal/persistence/tradelog"
)

func main() {
	var (
		dataDir = flag.String("data", "./data", "runtime data directory")
		store   = flag.String("store", "", "only entries for this store name or id")
		player  = flag.String("player", "", "only entries for this player")
		item    = flag.String("item", "", "only entries for this item")
		kind    = flag.String("kind", "", "PURCHASE or SALE (empty for both)")
		quiet   = flag.Bool("totals_only", false, "suppress per-entry lines")
	)
	flag.Parse()

	files, err := listTradeFiles(filepath.Join(*dataDir, "trades"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "list trade logs:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no trade logs under", *dataDir)
		os.Exit(1)
	}

	filter := entryFilter{
		store:  *store,
		player: *player,
		item:   *item,
		kind:   strings.ToUpper(strings.TrimSpace(*kind)),
	}

	totals := map[string]*itemTotal{}
	var count int
	for _, path := range files {
		if err := scanFile(path, filter, *quiet, totals, &count); err != nil {
			fmt.Fprintln(os.Stderr, "read:", err)
			os.Exit(1)
		}
	}

	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Printf("%d entries\n", count)
	for _, k := range keys {
		t := totals[k]
		fmt.Printf("%-20s bought=%d sold=%d turnover=%s\n", k, t.bought, t.sold, t.turnover)
	}
}

type entryFilter struct {
	store, player, item, kind string
}

func (f entryFilter) match(e tradelog.Entry) bool {
	if f.store != "" && !strings.EqualFold(e.StoreName, f.store) && !strings.EqualFold(e.StoreID, f.store) {
		return false
	}
	if f.player != "" && !strings.EqualFold(e.Player, f.player) {
		return false
	}
	if f.item != "" && !strings.EqualFold(e.Item, f.item) {
		return false
	}
	if f.kind != "" && e.Kind != f.kind {
		return false
	}
	return true
}

type itemTotal struct {
	bought, sold int
	turnover     decimal.Decimal
}

func listTradeFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "trades-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

func scanFile(path string, filter entryFilter, quiet bool, totals map[string]*itemTotal, count *int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	for sc.Scan() {
		var e tradelog.Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		if !filter.match(e) {
			continue
		}
		*count++

		t := totals[e.Item]
		if t == nil {
			t = &itemTotal{}
			totals[e.Item] = t
		}
		switch e.Kind {
		case "PURCHASE":
			t.bought += e.Quantity
		case "SALE":
			t.sold += e.Quantity
		}
		t.turnover = t.turnover.Add(e.Amount)

		if !quiet {
			fmt.Printf("%s %-8s %-20s %s %dx %s @ %s = %s\n",
				e.At, e.Kind, e.StoreName, e.Player, e.Quantity, e.Item, e.UnitPrice, e.Amount)
		}
	}
	return sc.Err()
}
