package backup

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/pekdex/dexcore/pkg/dex/model"
	"github.com/pekdex/dexcore/pkg/dex/repo"
	"go.uber.org/zap"
)

type snapshot struct {
	Orders []*model.Order `json:"orders"`
}

// StoreFactory builds the blob transport from the stored credential record.
type StoreFactory func(cfg *model.BackupConfig) BlobStore

// Backup mirrors the whole order table to a durable blob store and merges it
// back idempotently on restore.
type Backup struct {
	orders   repo.IOrder
	configs  repo.IBackupConfig
	newStore StoreFactory
	log      *zap.SugaredLogger
}

func NewBackup(orders repo.IOrder, configs repo.IBackupConfig, newStore StoreFactory) *Backup {
	if newStore == nil {
		newStore = func(cfg *model.BackupConfig) BlobStore { return NewFTPStore(cfg) }
	}
	return &Backup{
		orders:   orders,
		configs:  configs,
		newStore: newStore,
		log:      zap.S().With("component", "backup"),
	}
}

func (b *Backup) store(ctx context.Context) (BlobStore, error) {
	cfg, err := b.configs.Load(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, errNoBackupConfig
	}
	return b.newStore(cfg), nil
}

// Snapshot uploads the whole order table as one JSON document.
func (b *Backup) Snapshot(ctx context.Context) error {
	store, err := b.store(ctx)
	if err != nil {
		return err
	}

	orders, err := b.orders.ListAll(ctx, "")
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(snapshot{Orders: orders}, "", "  ")
	if err != nil {
		return err
	}

	return store.Upload(ctx, data)
}

// ScheduleSnapshot uploads after a delay, so a burst of order creations
// collapses into few uploads. Failures are logged only.
func (b *Backup) ScheduleSnapshot(delay time.Duration) {
	time.AfterFunc(delay, func() {
		if err := b.Snapshot(context.Background()); err != nil {
			b.log.Warnw("scheduled snapshot failed", "err", err)
		}
	})
}

// Restore merges the remote snapshot into the local table. Orders whose id
// already exists locally are skipped; skips are counted, not errors. A
// missing blob or missing transport config skips the restore entirely.
func (b *Backup) Restore(ctx context.Context) (int, error) {
	store, err := b.store(ctx)
	if errors.Is(err, errNoBackupConfig) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	data, err := store.Download(ctx)
	if errors.Is(err, ErrBlobNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return 0, err
	}

	imported := 0
	skipped := 0
	for _, order := range snap.Orders {
		inserted, err := b.orders.Import(ctx, order)
		if err != nil {
			return imported, err
		}
		if inserted {
			imported++
		} else {
			skipped++
		}
	}

	if imported > 0 {
		if err := b.orders.SyncIDSequence(ctx); err != nil {
			return imported, err
		}
	}

	b.log.Infow("restore complete", "imported", imported, "skipped", skipped)
	return imported, nil
}

// Erase deletes the remote snapshot.
func (b *Backup) Erase(ctx context.Context) error {
	store, err := b.store(ctx)
	if err != nil {
		return err
	}
	return store.Delete(ctx)
}
