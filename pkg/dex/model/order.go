package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusFilled  OrderStatus = "filled"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Pair is a (base, quote) trading symbol combination.
type Pair struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

func (p Pair) Symbol() string {
	return p.Base + ":" + p.Quote
}

type Order struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// init info
	Account string          `json:"account"`
	Base    string          `json:"base"`
	Quote   string          `json:"quote"`
	Price   decimal.Decimal `gorm:"type:numeric" json:"price"`
	Side    OrderSide       `json:"side"`

	// mutated by fills
	Quantity decimal.Decimal `gorm:"type:numeric" json:"quantity"`
	Status   OrderStatus     `json:"status"`

	CreatedAt time.Time `json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) Pair() Pair {
	return Pair{Base: o.Base, Quote: o.Quote}
}
