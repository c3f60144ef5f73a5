package model

import "time"

// SupplierBid 供应商报价
type SupplierBid struct {
	ID         string  `gorm:"primaryKey;type:varchar(36)"`
	QuoteID    string  `gorm:"type:varchar(36);index:idx_bid_quote"`
	SupplierID string  `gorm:"type:varchar(36);index:idx_bid_supplier"`
	UnitPrice  float64 `gorm:"type:decimal(12,2)"`
	Status     string  `gorm:"type:varchar(16)"`
	CreatedAt  time.Time
}

func (SupplierBid) TableName() string { return "supplier_bids" }

// QuoteInvite 邀请报价（可选功能表，部分环境不存在）
type QuoteInvite struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	QuoteID    string `gorm:"type:varchar(36);index:idx_invite_pair,unique"`
	SupplierID string `gorm:"type:varchar(36);index:idx_invite_pair,unique;index:idx_invite_supplier"`
	CreatedAt  time.Time
}

func (QuoteInvite) TableName() string { return "quote_invites" }
