package repo

import (
	"context"

	"github.com/pekdex/dexcore/pkg/dex/model"
	"github.com/shopspring/decimal"
)

type IOrder interface {
	// Insert stores a new order and returns its assigned id.
	Insert(ctx context.Context, order *model.Order) (int64, error)

	// Import re-inserts an order that already carries an id. The id is the
	// idempotency key: an existing id is skipped and reported as not inserted.
	Import(ctx context.Context, order *model.Order) (bool, error)

	// ListPendingPairs returns the distinct pairs with at least one pending
	// order.
	ListPendingPairs(ctx context.Context) ([]model.Pair, error)

	// ListPending returns pending orders for one side of a pair in price-time
	// priority: buys by price desc, sells by price asc, ties broken by
	// creation time then id.
	ListPending(ctx context.Context, base, quote string, side model.OrderSide) ([]*model.Order, error)

	// SyncIDSequence advances the id allocator past the highest stored id.
	// Imports write explicit ids, so without this a later Insert could draw
	// an id that already exists.
	SyncIDSequence(ctx context.Context) error

	// ApplyFill atomically updates one order's quantity and status.
	ApplyFill(ctx context.Context, orderID int64, newQuantity decimal.Decimal, status model.OrderStatus) error

	// ListAll returns orders newest-first, optionally filtered by account.
	ListAll(ctx context.Context, account string) ([]*model.Order, error)
}

type ISettlementEvent interface {
	Create(ctx context.Context, record *model.SettlementEvent) (*model.SettlementEvent, error)
	BulkCreate(ctx context.Context, records []*model.SettlementEvent) ([]*model.SettlementEvent, error)
}

type IBackupConfig interface {
	// Save replaces the single credential record.
	Save(ctx context.Context, cfg *model.BackupConfig) error

	// Load returns the credential record, or nil when none is set.
	Load(ctx context.Context) (*model.BackupConfig, error)

	Erase(ctx context.Context) error
}
