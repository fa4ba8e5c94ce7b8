package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
	WorldID         string `json:"world_id,omitempty"`
	Pos             [3]int `json:"pos,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerID        string `json:"player_id"`
}

// Command ops.
const (
	OpIdentify = "IDENTIFY"
	OpBrowse   = "BROWSE"
	OpWhere    = "WHERE"
	OpQuote    = "QUOTE"
	OpBuy      = "BUY"
	OpSell     = "SELL"
	OpPos      = "POS"
)

// CMD (client -> server): one shop command with already-parsed arguments.
// Store is a name, UUID, or name~uuid token; an empty Store resolves to the
// shop at the player's position. POS carries only the movement fields.
type CmdMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Op              string `json:"op"`

	Store    string `json:"store,omitempty"`
	Item     string `json:"item,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
	All      bool   `json:"all,omitempty"`

	WorldID string `json:"world_id,omitempty"`
	Pos     [3]int `json:"pos,omitempty"`
}

// StoreInfo identifies a shop in results and events.
type StoreInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owner string `json:"owner,omitempty"`
}

// ItemStack pairs an item type with a count in listings.
type ItemStack struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// RESULT (server -> client): the structured outcome of one command. Amounts
// are decimal strings; rendering is the client's concern.
type ResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Ref             string `json:"ref"`
	OK              bool   `json:"ok"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`

	Store     *StoreInfo  `json:"store,omitempty"`
	Items     []ItemStack `json:"items,omitempty"`
	Item      string      `json:"item,omitempty"`
	Quantity  int         `json:"quantity,omitempty"`
	UnitPrice string      `json:"unit_price,omitempty"`
	Amount    string      `json:"amount,omitempty"`
	BuyPrice  string      `json:"buy_price,omitempty"`
	SellPrice string      `json:"sell_price,omitempty"`
}

// Event kinds.
const (
	EventShopEnter = "SHOP_ENTER"
	EventShopExit  = "SHOP_EXIT"
)

// EVENT (server -> client): edge-triggered shop enter/exit notifications
// derived from POS updates.
type EventMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Event           string     `json:"event"`
	Store           *StoreInfo `json:"store,omitempty"`
}
