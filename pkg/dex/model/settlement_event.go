package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SettlementOutcome string

const (
	SettlementOutcomeSuccess SettlementOutcome = "success"
	SettlementOutcomeFailure SettlementOutcome = "failure"
)

// SettlementEvent records one delivery attempt of one trade intent through
// one mechanism. Trades are irreversible once any mechanism reports success,
// so every attempt is kept for post-hoc audit.
type SettlementEvent struct {
	EventID   string            `gorm:"primaryKey" json:"event_id"`
	Reference string            `json:"reference"`
	Mechanism string            `json:"mechanism"`
	Outcome   SettlementOutcome `json:"outcome"`

	Base     string          `json:"base"`
	Quote    string          `json:"quote"`
	Quantity decimal.Decimal `gorm:"type:numeric" json:"quantity"`
	Price    decimal.Decimal `gorm:"type:numeric" json:"price"`
	Account  string          `json:"account"`

	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}

func (SettlementEvent) TableName() string {
	return "settlement_events"
}

func NewSettlementEvent(intent *TradeIntent, mechanism string, outcome SettlementOutcome, detail string, ts time.Time) *SettlementEvent {
	return &SettlementEvent{
		EventID:   uuid.New().String(),
		Reference: intent.Reference(),
		Mechanism: mechanism,
		Outcome:   outcome,
		Base:      intent.Base,
		Quote:     intent.Quote,
		Quantity:  intent.Quantity,
		Price:     intent.Price,
		Account:   intent.Account,
		Detail:    detail,
		Timestamp: ts,
	}
}
