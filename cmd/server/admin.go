package main

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"tradepost.gg/internal/config"
	"tradepost.gg/internal/market"
	"tradepost.gg/internal/market/geom"
	"tradepost.gg/internal/market/markettest"
)

// Loopback-only operator endpoints. They sit outside the player protocol:
// shops are provisioned and funded here, players trade over /v1/ws.
type adminDeps struct {
	reg    *market.Registry
	ledger *markettest.Ledger
	policy config.Policy
	logger *log.Logger
}

func registerAdmin(mux *http.ServeMux, d adminDeps) {
	mux.HandleFunc("/admin/v1/state", d.guard(d.handleState))
	mux.HandleFunc("/admin/v1/stores", d.guard(d.handleCreate))
	mux.HandleFunc("/admin/v1/stores/stock", d.guard(d.handleStock))
	mux.HandleFunc("/admin/v1/stores/default", d.guard(d.handleDefault))
	mux.HandleFunc("/admin/v1/grant", d.guard(d.handleGrant))
}

func (d adminDeps) guard(h http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		h(rw, r)
	}
}

func (d adminDeps) handleState(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(d.reg.Snapshot())
}

type createReq struct {
	Name          string `json:"name"`
	Owner         string `json:"owner"`
	InfiniteFunds bool   `json:"infinite_funds"`
	InfiniteStock bool   `json:"infinite_stock"`
	Funds         string `json:"funds,omitempty"`

	WorldID string `json:"world_id,omitempty"`
	A       [3]int `json:"a,omitempty"`
	B       [3]int `json:"b,omitempty"`
}

func (d adminDeps) handleCreate(rw http.ResponseWriter, r *http.Request) {
	var req createReq
	if !decodePost(rw, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		badRequest(rw, "name required")
		return
	}

	if req.Owner != "" {
		owned := 0
		for _, s := range d.reg.Stores() {
			if strings.EqualFold(s.Owner(), req.Owner) {
				owned++
			}
		}
		if err := d.policy.CheckOwnerQuota(owned); err != nil {
			badRequest(rw, err.Error())
			return
		}
	}

	var vol *geom.Cuboid
	if req.WorldID != "" {
		c := geom.New(req.WorldID,
			geom.Vec3i{X: req.A[0], Y: req.A[1], Z: req.A[2]},
			geom.Vec3i{X: req.B[0], Y: req.B[1], Z: req.B[2]})
		if err := d.policy.CheckVolume(c); err != nil {
			badRequest(rw, err.Error())
			return
		}
		vol = &c
	}

	s := d.reg.Create(req.Name, req.Owner)
	s.SetInfiniteFunds(req.InfiniteFunds)
	s.SetInfiniteStock(req.InfiniteStock)
	if req.Funds != "" {
		amt, err := decimal.NewFromString(req.Funds)
		if err != nil || amt.Sign() < 0 {
			badRequest(rw, "funds must be a non-negative decimal")
			return
		}
		s.AddFunds(amt)
	}
	if vol != nil {
		s.SetVolume(*vol)
	}

	d.logger.Printf("admin: created store %s (%s)", s.Name(), s.ID())
	writeOK(rw, map[string]any{"ok": true, "id": s.ID().String()})
}

type stockReq struct {
	Store       string `json:"store"`
	Item        string `json:"item"`
	Quantity    int    `json:"quantity"`
	MaxQuantity *int   `json:"max_quantity,omitempty"`
	BuyPrice    string `json:"buy_price,omitempty"`
	SellPrice   string `json:"sell_price,omitempty"`
}

func (d adminDeps) handleStock(rw http.ResponseWriter, r *http.Request) {
	var req stockReq
	if !decodePost(rw, r, &req) {
		return
	}
	s, ok := d.findStore(rw, req.Store)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Item) == "" {
		badRequest(rw, "item required")
		return
	}

	maxQty := market.InfiniteQuantity
	if req.MaxQuantity != nil {
		maxQty = *req.MaxQuantity
	}
	buy, ok2 := parsePrice(rw, "buy_price", req.BuyPrice)
	if !ok2 {
		return
	}
	sell, ok2 := parsePrice(rw, "sell_price", req.SellPrice)
	if !ok2 {
		return
	}
	s.AddItemWithPrices(req.Item, req.Quantity, maxQty, buy, sell)
	writeOK(rw, map[string]any{"ok": true})
}

type defaultReq struct {
	Store   string `json:"store"`
	WorldID string `json:"world_id,omitempty"`
}

func (d adminDeps) handleDefault(rw http.ResponseWriter, r *http.Request) {
	var req defaultReq
	if !decodePost(rw, r, &req) {
		return
	}
	s, ok := d.findStore(rw, req.Store)
	if !ok {
		return
	}
	key := market.GlobalKey()
	if req.WorldID != "" {
		key = market.WorldOf(req.WorldID)
	}
	d.reg.SetDefault(key, s)
	writeOK(rw, map[string]any{"ok": true})
}

type grantReq struct {
	Player string `json:"player"`
	Amount string `json:"amount"`
}

func (d adminDeps) handleGrant(rw http.ResponseWriter, r *http.Request) {
	var req grantReq
	if !decodePost(rw, r, &req) {
		return
	}
	if strings.TrimSpace(req.Player) == "" {
		badRequest(rw, "player required")
		return
	}
	amt, err := decimal.NewFromString(req.Amount)
	if err != nil || amt.Sign() <= 0 {
		badRequest(rw, "amount must be a positive decimal")
		return
	}
	d.ledger.Deposit(req.Player, amt)
	writeOK(rw, map[string]any{"ok": true})
}

func (d adminDeps) findStore(rw http.ResponseWriter, token string) (*market.Store, bool) {
	s, err := d.reg.Identify(token)
	if errors.Is(err, market.ErrAmbiguousStore) {
		badRequest(rw, "store token is ambiguous")
		return nil, false
	}
	if s == nil {
		http.Error(rw, "store not found", http.StatusNotFound)
		return nil, false
	}
	return s, true
}

func parsePrice(rw http.ResponseWriter, field, raw string) (decimal.Decimal, bool) {
	if strings.TrimSpace(raw) == "" {
		return market.NoPrice(), true
	}
	p, err := decimal.NewFromString(raw)
	if err != nil || p.Sign() < 0 {
		badRequest(rw, field+" must be a non-negative decimal")
		return decimal.Decimal{}, false
	}
	return p, true
}

func decodePost(rw http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(rw, "bad json: "+err.Error())
		return false
	}
	return true
}

func badRequest(rw http.ResponseWriter, msg string) {
	http.Error(rw, msg, http.StatusBadRequest)
}

func writeOK(rw http.ResponseWriter, v any) {
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(v)
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
