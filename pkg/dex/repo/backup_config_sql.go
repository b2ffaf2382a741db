package repo

import (
	"context"
	"errors"

	"github.com/pekdex/dexcore/pkg/dex/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// backupConfigRowID pins the credential record to a single row.
const backupConfigRowID = 1

type BackupConfigSQLRepo struct {
	db *gorm.DB
}

func NewBackupConfigSQLRepo(db *gorm.DB) *BackupConfigSQLRepo {
	return &BackupConfigSQLRepo{
		db: db,
	}
}

func (s *BackupConfigSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *BackupConfigSQLRepo) Save(ctx context.Context, cfg *model.BackupConfig) error {
	cfg.ID = backupConfigRowID
	return s.dbWithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(cfg).Error
}

func (s *BackupConfigSQLRepo) Load(ctx context.Context) (*model.BackupConfig, error) {
	var cfg model.BackupConfig
	err := s.dbWithContext(ctx).First(&cfg, backupConfigRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *BackupConfigSQLRepo) Erase(ctx context.Context) error {
	return s.dbWithContext(ctx).
		Delete(&model.BackupConfig{}, backupConfigRowID).Error
}
