package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"tradepost.gg/internal/config"
	"tradepost.gg/internal/market"
	"tradepost.gg/internal/market/markettest"
	"tradepost.gg/internal/persistence/shopdb"
	"tradepost.gg/internal/persistence/tradelog"
	"tradepost.gg/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", "", "http listen address (overrides config)")
		configPath = flag.String("config", "", "path to shops.yaml (optional)")
		dataDir    = flag.String("data", "", "runtime data directory (overrides config)")
		flushEvery = flag.Duration("flush_every", time.Minute, "interval between store snapshot flushes")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *addr != "" {
		cfg.Listen = *addr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	_ = os.MkdirAll(cfg.DataDir, 0o755)

	db, err := shopdb.Open(filepath.Join(cfg.DataDir, "stores.db"))
	if err != nil {
		logger.Fatalf("open store db: %v", err)
	}
	defer db.Close()

	reg := market.NewRegistry(db)
	snap, err := db.Load()
	if err != nil {
		logger.Fatalf("load stores: %v", err)
	}
	reg.Restore(snap)
	logger.Printf("restored %d stores", len(reg.Stores()))

	trades := tradelog.NewRecorder(cfg.DataDir)
	defer trades.Close()

	// The standalone host keeps player wallets and inventories in memory;
	// an embedding game server supplies its own backends instead.
	ledger := markettest.NewLedger()
	inv := markettest.NewInventory()
	ex := market.NewExchange(ledger, inv)

	ctx, cancel := signalContext()
	defer cancel()

	flush := func() {
		if err := db.Save(reg.Snapshot()); err != nil {
			logger.Printf("save stores: %v", err)
		}
	}
	go func() {
		t := time.NewTicker(*flushEvery)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				flush()
			}
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	registerAdmin(mux, adminDeps{
		reg:    reg,
		ledger: ledger,
		policy: cfg.Policy,
		logger: logger,
	})
	mux.HandleFunc("/v1/ws", ws.NewServer(reg, ex, trades, logger).Handler())

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", cfg.Listen)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}

	flush()
	logger.Printf("stores flushed, bye")
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
