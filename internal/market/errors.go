package market

import "errors"

// Result codes surfaced to the hosting shell. Every engine rejection is one
// of these values; none is fatal to the process.
const (
	CodeNotFound          = "E_NOT_FOUND"
	CodeAmbiguous         = "E_AMBIGUOUS"
	CodeInvalidQuantity   = "E_INVALID_QUANTITY"
	CodeNotTradable       = "E_NOT_TRADABLE"
	CodeInsufficientFunds = "E_INSUFFICIENT_FUNDS"
	CodeInsufficientStock = "E_INSUFFICIENT_STOCK"
	CodeInsufficientSpace = "E_INSUFFICIENT_SPACE"
	CodeExecutionFailed   = "E_EXECUTION_FAILED"
	CodeStale             = "E_STALE"
)

// Party identifies which side of a trade a precondition failure refers to,
// so the shell can render "you are out of funds" vs "the shop is out of funds".
type Party string

const (
	PartyPlayer Party = "player"
	PartyStore  Party = "store"
)

// ErrAmbiguousStore is returned by Registry.Identify when a token matches
// more than one registered store. The caller must re-ask with the
// name~uuid compound form rather than have the engine pick one.
var ErrAmbiguousStore = errors.New("store token matches more than one store")

// TradeError is a rejected transaction. Code is one of the Code* constants;
// Subject names the party the failure is about where that matters.
type TradeError struct {
	Code    string
	Subject Party
	Message string
}

func (e *TradeError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func rejected(code string, subject Party, msg string) *TradeError {
	return &TradeError{Code: code, Subject: subject, Message: msg}
}
