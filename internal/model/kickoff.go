package model

import "time"

// KickoffTask 定标后的启动清单项，按 (quote, supplier) 划分
type KickoffTask struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	QuoteID     string `gorm:"type:varchar(36);index:idx_kickoff_quote_supplier"`
	SupplierID  string `gorm:"type:varchar(36);index:idx_kickoff_quote_supplier"`
	TaskKey     string `gorm:"type:varchar(64)"`
	Completed   bool
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (KickoffTask) TableName() string { return "quote_kickoff_tasks" }
