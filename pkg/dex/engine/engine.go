package engine

import (
	"context"
	"fmt"

	"github.com/gammazero/deque"
	"github.com/pekdex/dexcore/config"
	"github.com/pekdex/dexcore/pkg/dex/model"
	"github.com/pekdex/dexcore/pkg/dex/repo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// defaultEpsilon absorbs decimal rounding: a remainder at or below it marks
// the order filled.
var defaultEpsilon = decimal.New(1, -5) // 0.00001

// TradeExecutor settles one trade intent, returning a settlement reference
// or a terminal failure.
type TradeExecutor interface {
	Execute(ctx context.Context, intent *model.TradeIntent) (string, error)
}

// Engine runs one matching pass per pair: best resting buy against best
// resting sell under price-time priority, with partial fills, until the
// best-vs-best comparison no longer crosses.
type Engine struct {
	orders   repo.IOrder
	executor TradeExecutor
	routes   *config.AccountRoutes
	epsilon  decimal.Decimal
	log      *zap.SugaredLogger
}

func NewEngine(orders repo.IOrder, executor TradeExecutor, routes *config.AccountRoutes, cfg *config.MatchingConfig) *Engine {
	epsilon := defaultEpsilon
	if cfg != nil && cfg.Epsilon != "" {
		if eps, err := decimal.NewFromString(cfg.Epsilon); err == nil && eps.IsPositive() {
			epsilon = eps
		}
	}

	return &Engine{
		orders:   orders,
		executor: executor,
		routes:   routes,
		epsilon:  epsilon,
		log:      zap.S().With("component", "engine"),
	}
}

// MatchAll runs one matching pass over every pair with pending orders. A
// failure on one pair is logged and does not stop the remaining pairs.
func (e *Engine) MatchAll(ctx context.Context) error {
	pairs, err := e.orders.ListPendingPairs(ctx)
	if err != nil {
		return fmt.Errorf("list pending pairs: %w", err)
	}

	for _, pair := range pairs {
		if err := e.matchPair(ctx, pair); err != nil {
			e.log.Errorw("match pair failed", "pair", pair.Symbol(), "err", err)
		}
	}

	return nil
}

func (e *Engine) matchPair(ctx context.Context, pair model.Pair) error {
	buys, err := e.orders.ListPending(ctx, pair.Base, pair.Quote, model.OrderSideBuy)
	if err != nil {
		return err
	}
	sells, err := e.orders.ListPending(ctx, pair.Base, pair.Quote, model.OrderSideSell)
	if err != nil {
		return err
	}

	buyQ := &deque.Deque[*model.Order]{}
	for _, o := range buys {
		buyQ.PushBack(o)
	}
	sellQ := &deque.Deque[*model.Order]{}
	for _, o := range sells {
		sellQ.PushBack(o)
	}

	for buyQ.Len() > 0 && sellQ.Len() > 0 {
		buy := buyQ.Front()
		sell := sellQ.Front()

		// books are priority-ordered, so a non-cross at best-vs-best proves
		// no deeper match this tick
		if buy.Price.LessThan(sell.Price) {
			break
		}

		// price improvement favors the resting sell
		qty := decimal.Min(buy.Quantity, sell.Quantity)
		intent := &model.TradeIntent{
			Base:        pair.Base,
			Quote:       pair.Quote,
			Quantity:    qty,
			Price:       sell.Price,
			BuyOrderID:  buy.ID,
			SellOrderID: sell.ID,
			Action:      model.OrderSideSell,
			Account:     e.routes.AccountFor(pair.Quote),
		}

		ref, err := e.executor.Execute(ctx, intent)
		if err != nil {
			// no fill happened: both orders keep their pre-match state, and
			// this pair is done for the tick so fills never leave priority
			// order
			e.log.Warnw("settlement failed, pair halted for this tick",
				"pair", pair.Symbol(), "quantity", qty.String(), "price", sell.Price.String(), "err", err)
			return nil
		}

		e.log.Infow("trade executed",
			"pair", pair.Symbol(),
			"quantity", qty.String(),
			"price", sell.Price.String(),
			"buy_order", buy.ID,
			"sell_order", sell.ID,
			"settlement_ref", ref)

		// persist both sides before advancing either cursor
		if err := e.applyFill(ctx, buy, qty); err != nil {
			return err
		}
		if err := e.applyFill(ctx, sell, qty); err != nil {
			return err
		}

		if buy.Status == model.OrderStatusFilled {
			buyQ.PopFront()
		}
		if sell.Status == model.OrderStatusFilled {
			sellQ.PopFront()
		}
	}

	return nil
}

// applyFill reduces the order's remaining quantity and persists it. A
// remainder at or below epsilon marks the order filled while keeping the
// true remainder.
func (e *Engine) applyFill(ctx context.Context, order *model.Order, qty decimal.Decimal) error {
	remaining := order.Quantity.Sub(qty)

	order.Quantity = remaining
	if remaining.LessThanOrEqual(e.epsilon) {
		order.Status = model.OrderStatusFilled
	}

	if err := e.orders.ApplyFill(ctx, order.ID, order.Quantity, order.Status); err != nil {
		return fmt.Errorf("apply fill order %d: %w", order.ID, err)
	}
	return nil
}
