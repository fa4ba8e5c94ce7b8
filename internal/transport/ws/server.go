// Package ws is the websocket command shell around the store engine: it
// parses command messages, resolves stores, drives validated trades and
// renders structured results. It owns no trading rules of its own.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"tradepost.gg/internal/market"
	"tradepost.gg/internal/market/geom"
	"tradepost.gg/internal/protocol"
)

// TradeRecorder receives every executed trade, for the audit log.
type TradeRecorder interface {
	Record(market.Receipt) error
}

type Server struct {
	reg    *market.Registry
	ex     *market.Exchange
	trades TradeRecorder
	log    *log.Logger

	upgrader websocket.Upgrader
}

// NewServer wires the shell. trades may be nil when no audit log is wanted.
func NewServer(reg *market.Registry, ex *market.Exchange, trades TradeRecorder, logger *log.Logger) *Server {
	return &Server{
		reg:    reg,
		ex:     ex,
		trades: trades,
		log:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

type session struct {
	conn *websocket.Conn

	playerID string
	worldID  string
	pos      geom.Vec3i

	// inShop tracks the geometric shop the player currently stands in,
	// for edge-triggered enter/exit events.
	inShop *market.Store
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess := s.handshake(conn)
		if sess == nil {
			return
		}

		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeCmd {
				continue
			}
			var cmd protocol.CmdMsg
			if err := json.Unmarshal(msg, &cmd); err != nil {
				continue
			}
			if cmd.ProtocolVersion != protocol.Version {
				continue
			}
			s.dispatch(sess, cmd)
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) *session {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return nil
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return nil
	}
	if hello.PlayerName == "" {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "missing player_name"), time.Now().Add(time.Second))
		return nil
	}

	sess := &session{
		conn:     conn,
		playerID: hello.PlayerName,
		worldID:  hello.WorldID,
		pos:      geom.Vec3i{X: hello.Pos[0], Y: hello.Pos[1], Z: hello.Pos[2]},
	}
	if err := writeJSON(conn, protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        sess.playerID,
	}); err != nil {
		return nil
	}
	sess.inShop = shopAt(s.reg, sess.worldID, sess.pos)
	return sess
}

func (s *Server) dispatch(sess *session, cmd protocol.CmdMsg) {
	switch cmd.Op {
	case protocol.OpPos:
		s.handlePos(sess, cmd)
		return
	case protocol.OpIdentify, protocol.OpBrowse, protocol.OpWhere:
		s.handleLookup(sess, cmd)
		return
	case protocol.OpQuote:
		s.handleQuote(sess, cmd)
		return
	case protocol.OpBuy, protocol.OpSell:
		s.handleTrade(sess, cmd)
		return
	}
	s.reply(sess, fail(cmd.ID, protocol.ErrBadRequest, "unknown op"))
}

// handlePos applies a movement update and fires enter/exit events when the
// geometric shop under the player changes. No result is sent.
func (s *Server) handlePos(sess *session, cmd protocol.CmdMsg) {
	sess.worldID = cmd.WorldID
	sess.pos = geom.Vec3i{X: cmd.Pos[0], Y: cmd.Pos[1], Z: cmd.Pos[2]}

	now := shopAt(s.reg, sess.worldID, sess.pos)
	if now == sess.inShop {
		return
	}
	if sess.inShop != nil {
		_ = writeJSON(sess.conn, protocol.EventMsg{
			Type:            protocol.TypeEvent,
			ProtocolVersion: protocol.Version,
			Event:           protocol.EventShopExit,
			Store:           storeInfo(sess.inShop),
		})
	}
	if now != nil {
		_ = writeJSON(sess.conn, protocol.EventMsg{
			Type:            protocol.TypeEvent,
			ProtocolVersion: protocol.Version,
			Event:           protocol.EventShopEnter,
			Store:           storeInfo(now),
		})
	}
	sess.inShop = now
}

func (s *Server) handleLookup(sess *session, cmd protocol.CmdMsg) {
	store, res := s.resolveStore(sess, cmd)
	if res != nil {
		s.reply(sess, *res)
		return
	}
	out := ok(cmd.ID)
	out.Store = storeInfo(store)
	if cmd.Op == protocol.OpBrowse {
		for _, st := range store.Items() {
			out.Items = append(out.Items, protocol.ItemStack{Item: st.Item, Count: st.Count})
		}
	}
	s.reply(sess, out)
}

func (s *Server) handleQuote(sess *session, cmd protocol.CmdMsg) {
	store, res := s.resolveStore(sess, cmd)
	if res != nil {
		s.reply(sess, *res)
		return
	}
	if cmd.Item == "" {
		s.reply(sess, fail(cmd.ID, protocol.ErrBadRequest, "missing item"))
		return
	}
	v, terr := s.ex.Validate(market.Transaction{
		Store: store, Player: sess.playerID, Item: cmd.Item, Kind: market.Purchase, Quote: true,
	})
	if terr != nil {
		s.reply(sess, fail(cmd.ID, terr.Code, terr.Message))
		return
	}
	out := ok(cmd.ID)
	out.Store = storeInfo(store)
	out.Item = cmd.Item
	out.BuyPrice = v.UnitPrice.String()
	out.SellPrice = store.SellPrice(cmd.Item).String()
	s.reply(sess, out)
}

func (s *Server) handleTrade(sess *session, cmd protocol.CmdMsg) {
	store, res := s.resolveStore(sess, cmd)
	if res != nil {
		s.reply(sess, *res)
		return
	}
	if cmd.Item == "" {
		s.reply(sess, fail(cmd.ID, protocol.ErrBadRequest, "missing item"))
		return
	}
	kind := market.Purchase
	if cmd.Op == protocol.OpSell {
		kind = market.Sale
	}
	tx := market.Transaction{
		Store:    store,
		Player:   sess.playerID,
		Item:     cmd.Item,
		Kind:     kind,
		Quantity: cmd.Quantity,
		All:      cmd.All,
	}
	v, terr := s.ex.Validate(tx)
	if terr != nil {
		s.reply(sess, fail(cmd.ID, terr.Code, terr.Message))
		return
	}
	rec, terr := s.ex.Execute(v)
	if terr != nil {
		s.reply(sess, fail(cmd.ID, terr.Code, terr.Message))
		return
	}
	if s.trades != nil {
		if err := s.trades.Record(rec); err != nil {
			s.log.Printf("trade log: %v", err)
		}
	}
	out := ok(cmd.ID)
	out.Store = storeInfo(store)
	out.Item = rec.Item
	out.Quantity = rec.Quantity
	out.UnitPrice = rec.UnitPrice.String()
	out.Amount = rec.Amount.String()
	s.reply(sess, out)
}

// resolveStore resolves the command's store token, falling back to the shop
// relevant to the player's position when no token is given.
func (s *Server) resolveStore(sess *session, cmd protocol.CmdMsg) (*market.Store, *protocol.ResultMsg) {
	worldID, pos := sess.worldID, sess.pos
	if cmd.WorldID != "" {
		worldID = cmd.WorldID
		pos = geom.Vec3i{X: cmd.Pos[0], Y: cmd.Pos[1], Z: cmd.Pos[2]}
	}

	if cmd.Store == "" {
		store := s.reg.Locate(worldID, pos)
		if store == nil {
			r := fail(cmd.ID, market.CodeNotFound, "no shop here")
			return nil, &r
		}
		return store, nil
	}

	store, err := s.reg.Identify(cmd.Store)
	if err != nil {
		r := fail(cmd.ID, market.CodeAmbiguous, "several shops match; use name~uuid")
		return nil, &r
	}
	if store == nil {
		r := fail(cmd.ID, market.CodeNotFound, "no shop matches "+cmd.Store)
		return nil, &r
	}
	return store, nil
}

func (s *Server) reply(sess *session, res protocol.ResultMsg) {
	if err := writeJSON(sess.conn, res); err != nil {
		s.log.Printf("write result: %v", err)
	}
}

// shopAt is the geometric half of Locate: defaults do not count as being
// "inside" a shop for enter/exit purposes.
func shopAt(reg *market.Registry, worldID string, pos geom.Vec3i) *market.Store {
	for _, st := range reg.Stores() {
		if v := st.Volume(); v != nil && v.Contains(worldID, pos) {
			return st
		}
	}
	return nil
}

func storeInfo(s *market.Store) *protocol.StoreInfo {
	return &protocol.StoreInfo{ID: s.ID().String(), Name: s.Name(), Owner: s.Owner()}
}

func ok(ref string) protocol.ResultMsg {
	return protocol.ResultMsg{Type: protocol.TypeResult, ProtocolVersion: protocol.Version, Ref: ref, OK: true}
}

func fail(ref, code, msg string) protocol.ResultMsg {
	return protocol.ResultMsg{Type: protocol.TypeResult, ProtocolVersion: protocol.Version, Ref: ref, Code: code, Message: msg}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
