package model

import "time"

// MessageRead 收件箱已读水位（按 quote_id + user_id）
type MessageRead struct {
	QuoteID    string `gorm:"primaryKey;type:varchar(36)"`
	UserID     string `gorm:"primaryKey;type:varchar(36);index:idx_reads_user"`
	LastReadAt time.Time
}

func (MessageRead) TableName() string { return "quote_message_reads" }
