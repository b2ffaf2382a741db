package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pekdex/dexcore/config"
	"github.com/pekdex/dexcore/pkg/dex/backup"
	"github.com/pekdex/dexcore/pkg/dex/model"
	"github.com/pekdex/dexcore/pkg/dex/oracle"
	"github.com/pekdex/dexcore/pkg/dex/repo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultSnapshotDelay = 30 * time.Second

type CreateOrderInput struct {
	Account  string
	Base     string
	Quote    string
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Side     model.OrderSide
}

// Dex is the façade consumed by the API layer. It only inserts and reads;
// matching and settlement stay asynchronous behind the scheduler.
type Dex struct {
	orders        repo.IOrder
	configs       repo.IBackupConfig
	routes        *config.AccountRoutes
	backup        *backup.Backup
	snapshotDelay time.Duration
	oracle        *oracle.Client
	validator     *oracle.AccountValidator
	log           *zap.SugaredLogger
}

func NewDex(
	orders repo.IOrder,
	configs repo.IBackupConfig,
	routes *config.AccountRoutes,
	bk *backup.Backup,
	oracleClient *oracle.Client,
	validator *oracle.AccountValidator,
	snapshotDelay time.Duration,
) *Dex {
	if snapshotDelay <= 0 {
		snapshotDelay = defaultSnapshotDelay
	}
	return &Dex{
		orders:        orders,
		configs:       configs,
		routes:        routes,
		backup:        bk,
		snapshotDelay: snapshotDelay,
		oracle:        oracleClient,
		validator:     validator,
		log:           zap.S().With("component", "dex"),
	}
}

// CreateOrder records a new pending order. It never matches synchronously; a
// caller observes fills by polling.
func (d *Dex) CreateOrder(ctx context.Context, in CreateOrderInput) (int64, error) {
	base := strings.ToUpper(strings.TrimSpace(in.Base))
	quote := strings.ToUpper(strings.TrimSpace(in.Quote))
	if base == "" || quote == "" {
		return 0, fmt.Errorf("%w: base/quote", ErrMissingField)
	}

	side := model.OrderSide(strings.ToLower(string(in.Side)))
	if side != model.OrderSideBuy && side != model.OrderSideSell {
		return 0, fmt.Errorf("%w: %s", ErrInvalidSide, in.Side)
	}

	if !in.Quantity.IsPositive() {
		return 0, ErrInvalidQuantity
	}
	if !in.Price.IsPositive() {
		return 0, ErrInvalidPrice
	}

	account := strings.TrimSpace(in.Account)
	if account == "" {
		account = d.routes.AccountFor(quote)
	}

	order := &model.Order{
		Account:   account,
		Base:      base,
		Quote:     quote,
		Quantity:  in.Quantity,
		Price:     in.Price,
		Side:      side,
		Status:    model.OrderStatusPending,
		CreatedAt: time.Now(),
	}

	id, err := d.orders.Insert(ctx, order)
	if err != nil {
		return 0, err
	}

	d.log.Infow("order created",
		"order_id", id,
		"account", account,
		"pair", order.Pair().Symbol(),
		"side", side,
		"quantity", in.Quantity.String(),
		"price", in.Price.String())

	if d.backup != nil {
		d.backup.ScheduleSnapshot(d.snapshotDelay)
	}

	return id, nil
}

// ListOrders returns orders newest-first, optionally filtered by account.
func (d *Dex) ListOrders(ctx context.Context, account string) ([]*model.Order, error) {
	return d.orders.ListAll(ctx, account)
}

// ListPendingPairs is exposed for diagnostics.
func (d *Dex) ListPendingPairs(ctx context.Context) ([]model.Pair, error) {
	return d.orders.ListPendingPairs(ctx)
}

// ListPending is exposed for diagnostics.
func (d *Dex) ListPending(ctx context.Context, base, quote string, side model.OrderSide) ([]*model.Order, error) {
	return d.orders.ListPending(ctx, base, quote, side)
}

// ValidateAccount reports whether the account exists on the settlement
// network; it fails closed.
func (d *Dex) ValidateAccount(ctx context.Context, account string) bool {
	if d.validator == nil {
		return false
	}
	return d.validator.Exists(ctx, account)
}

// BestPrice proxies the price oracle.
func (d *Dex) BestPrice(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	return d.oracle.BestPrice(ctx, strings.ToUpper(base), strings.ToUpper(quote))
}

// GetOrderBook proxies the price oracle.
func (d *Dex) GetOrderBook(ctx context.Context, base, quote string) (*oracle.OrderBook, error) {
	return d.oracle.GetOrderBook(ctx, strings.ToUpper(base), strings.ToUpper(quote))
}

// GetTradeHistory proxies the price oracle.
func (d *Dex) GetTradeHistory(ctx context.Context, base, quote string, limit int) ([]oracle.TradeRecord, error) {
	return d.oracle.GetTradeHistory(ctx, strings.ToUpper(base), strings.ToUpper(quote), limit)
}

// SetBackupConfig replaces the backup transport credentials.
func (d *Dex) SetBackupConfig(ctx context.Context, host, user, password string) error {
	if host == "" || user == "" || password == "" {
		return fmt.Errorf("%w: host/user/password", ErrMissingField)
	}
	return d.configs.Save(ctx, &model.BackupConfig{Host: host, User: user, Password: password})
}

// GetBackupConfig returns the stored transport config without the password,
// or nil when none is set.
func (d *Dex) GetBackupConfig(ctx context.Context) (*model.BackupConfig, error) {
	cfg, err := d.configs.Load(ctx)
	if err != nil || cfg == nil {
		return nil, err
	}
	return &model.BackupConfig{Host: cfg.Host, User: cfg.User}, nil
}

// EraseBackupConfig removes the stored transport credentials.
func (d *Dex) EraseBackupConfig(ctx context.Context) error {
	return d.configs.Erase(ctx)
}

// BackupNow snapshots the order table immediately.
func (d *Dex) BackupNow(ctx context.Context) error {
	if d.backup == nil {
		return ErrBackupUnavailable
	}
	return d.backup.Snapshot(ctx)
}

// ImportFromBackup merges the remote snapshot, returning how many orders
// were inserted; duplicates are skipped silently.
func (d *Dex) ImportFromBackup(ctx context.Context) (int, error) {
	if d.backup == nil {
		return 0, ErrBackupUnavailable
	}
	return d.backup.Restore(ctx)
}

// EraseBackup deletes the remote snapshot.
func (d *Dex) EraseBackup(ctx context.Context) error {
	if d.backup == nil {
		return ErrBackupUnavailable
	}
	return d.backup.Erase(ctx)
}
