package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// wonStatuses 表示已定标的状态标签
var wonStatuses = map[string]struct{}{
	"won":        {},
	"awarded":    {},
	"closed_won": {},
}

// Quote 询价单（一条沟通线程）。指针字段对应部分部署环境中可能缺失的列。
type Quote struct {
	ID                    string     `gorm:"primaryKey;type:varchar(36)"`
	Status                string     `gorm:"type:varchar(32);index"`
	CustomerEmail         string     `gorm:"type:varchar(255);index:idx_quote_customer_email"`
	AssignedSupplierEmail *string    `gorm:"type:varchar(255);index:idx_quote_assigned_email"`
	AwardedSupplierID     *string    `gorm:"type:varchar(36);index:idx_quote_awarded_supplier"`
	AwardedBidID          *string    `gorm:"type:varchar(36)"`
	AwardedAt             *time.Time
	KickoffCompletedAt    *time.Time
	Title                 string `gorm:"type:varchar(255)"`
	FileName              string `gorm:"type:varchar(255)"`
	CreatedAt             time.Time
	UpdatedAt             time.Time `gorm:"index:idx_quote_updated"`
}

func (Quote) TableName() string { return "quotes" }

func (q *Quote) BeforeCreate(*gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// HasWinner 任一定标信号存在即视为已有中标供应商
func (q *Quote) HasWinner() bool {
	if q.AwardedAt != nil {
		return true
	}
	if q.AwardedBidID != nil && *q.AwardedBidID != "" {
		return true
	}
	if q.WinnerID() != "" {
		return true
	}
	_, won := wonStatuses[strings.ToLower(strings.TrimSpace(q.Status))]
	return won
}

// WinnerID 返回记录在案的中标供应商 ID，未记录时为空
func (q *Quote) WinnerID() string {
	if q.AwardedSupplierID == nil {
		return ""
	}
	return strings.TrimSpace(*q.AwardedSupplierID)
}

// DisplayLabel 标题 > 文件名 > "Quote <短 ID>"
func (q *Quote) DisplayLabel() string {
	if t := strings.TrimSpace(q.Title); t != "" {
		return t
	}
	if f := strings.TrimSpace(q.FileName); f != "" {
		return f
	}
	short := q.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return "Quote " + short
}
