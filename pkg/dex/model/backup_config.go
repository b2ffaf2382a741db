package model

// BackupConfig is the backup-transport credential record, stored and loaded
// as a whole. At most one row exists.
type BackupConfig struct {
	ID       int64  `gorm:"primaryKey" json:"-"`
	Host     string `json:"host"`
	User     string `json:"user"`
	Password string `json:"-"`
}

func (BackupConfig) TableName() string {
	return "backup_configs"
}
