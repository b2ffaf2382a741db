package repo

import (
	"context"

	"github.com/pekdex/dexcore/pkg/dex/model"
	"gorm.io/gorm"
)

type SettlementEventSQLRepo struct {
	db *gorm.DB
}

func NewSettlementEventSQLRepo(db *gorm.DB) *SettlementEventSQLRepo {
	return &SettlementEventSQLRepo{
		db: db,
	}
}

func (s *SettlementEventSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *SettlementEventSQLRepo) Create(ctx context.Context, record *model.SettlementEvent) (*model.SettlementEvent, error) {
	return record, s.dbWithContext(ctx).Create(record).Error
}

func (s *SettlementEventSQLRepo) BulkCreate(ctx context.Context, records []*model.SettlementEvent) ([]*model.SettlementEvent, error) {
	return records, s.dbWithContext(ctx).Create(records).Error
}
