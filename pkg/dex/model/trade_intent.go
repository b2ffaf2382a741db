package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/shopspring/decimal"
)

// TradeIntent is the ephemeral result of matching one buy against one sell.
// It is produced by the engine and consumed immediately by the dispatcher,
// never persisted on its own.
type TradeIntent struct {
	Base  string
	Quote string

	Quantity decimal.Decimal
	Price    decimal.Decimal

	BuyOrderID  int64
	SellOrderID int64

	// Action is the contract action broadcast for the matched trade. Matched
	// trades settle as a sell from the routed account.
	Action OrderSide

	// Account is the settlement account authorized for the quote asset.
	Account string
}

func (t *TradeIntent) Symbol() string {
	return t.Base + ":" + t.Quote
}

// Reference derives a deterministic settlement reference from the intent
// contents. A repeated submission after an ambiguous timeout carries the same
// token, so downstreams that record references can de-duplicate.
func (t *TradeIntent) Reference() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d|%d",
		t.Symbol(), t.Quantity.String(), t.Price.String(), t.BuyOrderID, t.SellOrderID)))
	return hex.EncodeToString(sum[:8])
}
