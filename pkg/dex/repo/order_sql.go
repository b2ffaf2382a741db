package repo

import (
	"context"

	"github.com/pekdex/dexcore/pkg/dex/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderSQLRepo struct {
	db *gorm.DB
}

func NewOrderSQLRepo(db *gorm.DB) *OrderSQLRepo {
	return &OrderSQLRepo{
		db: db,
	}
}

func (s *OrderSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *OrderSQLRepo) Insert(ctx context.Context, order *model.Order) (int64, error) {
	if err := s.dbWithContext(ctx).Create(order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (s *OrderSQLRepo) Import(ctx context.Context, order *model.Order) (bool, error) {
	// id conflict means the order is already present locally; skip it.
	result := s.dbWithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(order)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *OrderSQLRepo) SyncIDSequence(ctx context.Context) error {
	// explicit-id inserts bypass nextval, so the sequence must be bumped to
	// max(id) or the next serial Insert collides with an imported row
	return s.dbWithContext(ctx).
		Exec("SELECT setval('orders_id_seq', (SELECT COALESCE(MAX(id), 1) FROM orders))").Error
}

func (s *OrderSQLRepo) ListPendingPairs(ctx context.Context) ([]model.Pair, error) {
	var pairs []model.Pair
	err := s.dbWithContext(ctx).
		Model(&model.Order{}).
		Select("DISTINCT base, quote").
		Where("status = ?", model.OrderStatusPending).
		Scan(&pairs).Error
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

func (s *OrderSQLRepo) ListPending(ctx context.Context, base, quote string, side model.OrderSide) ([]*model.Order, error) {
	// buys best-first is highest price, sells best-first is lowest; equal
	// prices keep creation order, id is the final tiebreak.
	orderBy := "price ASC, created_at ASC, id ASC"
	if side == model.OrderSideBuy {
		orderBy = "price DESC, created_at ASC, id ASC"
	}

	var orders []*model.Order
	err := s.dbWithContext(ctx).
		Where("base = ? AND quote = ? AND side = ? AND status = ?", base, quote, side, model.OrderStatusPending).
		Order(orderBy).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *OrderSQLRepo) ApplyFill(ctx context.Context, orderID int64, newQuantity decimal.Decimal, status model.OrderStatus) error {
	// single-row UPDATE; concurrent readers never observe a torn write
	return s.dbWithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"quantity": newQuantity,
			"status":   status,
		}).Error
}

func (s *OrderSQLRepo) ListAll(ctx context.Context, account string) ([]*model.Order, error) {
	db := s.dbWithContext(ctx).Model(&model.Order{})
	if account != "" {
		db = db.Where("account = ?", account)
	}

	var orders []*model.Order
	err := db.Order("created_at DESC, id DESC").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
