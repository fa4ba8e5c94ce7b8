package protocol

import "tradepost.gg/internal/market"

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Command layer.
	ErrBadRequest = "E_BAD_REQUEST"
	ErrInternal   = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadRequest:      {},
	ErrInternal:        {},

	// Engine result codes surface verbatim.
	market.CodeNotFound:          {},
	market.CodeAmbiguous:         {},
	market.CodeInvalidQuantity:   {},
	market.CodeNotTradable:       {},
	market.CodeInsufficientFunds: {},
	market.CodeInsufficientStock: {},
	market.CodeInsufficientSpace: {},
	market.CodeExecutionFailed:   {},
	market.CodeStale:             {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
