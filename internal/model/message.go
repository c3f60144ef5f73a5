package model

import "time"

// QuoteMessage 当前版本的消息表
type QuoteMessage struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	QuoteID    string    `gorm:"type:varchar(36);index:idx_quote_messages_quote_created"`
	SenderRole string    `gorm:"type:varchar(16)"`
	SenderID   string    `gorm:"type:varchar(36)"`
	Body       string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"index:idx_quote_messages_quote_created"`
}

func (QuoteMessage) TableName() string { return "quote_messages" }

// LegacyRFQMessage 旧版消息表（rfq_messages），角色列为 author_type
type LegacyRFQMessage struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	RFQID      string    `gorm:"column:rfq_id;type:varchar(36);index:idx_rfq_messages_rfq_created"`
	AuthorType string    `gorm:"type:varchar(16)"`
	Message    string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"index:idx_rfq_messages_rfq_created"`
}

func (LegacyRFQMessage) TableName() string { return "rfq_messages" }
