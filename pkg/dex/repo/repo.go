package repo

import (
	"gorm.io/gorm"
)

type IRepo interface {
	Order() IOrder
	SettlementEvent() ISettlementEvent
	BackupConfig() IBackupConfig
}

type Repo struct {
	ordersDB *gorm.DB
}

func NewRepo(ordersDB *gorm.DB) IRepo {
	return &Repo{
		ordersDB: ordersDB,
	}
}

func (r *Repo) Order() IOrder {
	return NewOrderSQLRepo(r.ordersDB)
}

func (r *Repo) SettlementEvent() ISettlementEvent {
	return NewSettlementEventSQLRepo(r.ordersDB)
}

func (r *Repo) BackupConfig() IBackupConfig {
	return NewBackupConfigSQLRepo(r.ordersDB)
}
