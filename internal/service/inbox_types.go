package service

import (
	"errors"
	"time"

	"github.com/d60-Lab/quote-inbox/internal/model"
)

var ErrInvalidViewer = errors.New("invalid viewer")

// Viewer 收件箱的查看者，由外部鉴权层解析得到
type Viewer struct {
	Role   model.Role `validate:"required,oneof=customer supplier admin"`
	UserID string     `validate:"required"`
	Email  string     `validate:"omitempty,email"`
}

// ReplyParty 下一步应回复的一方
type ReplyParty string

const (
	ReplyCustomer ReplyParty = "customer"
	ReplySupplier ReplyParty = "supplier"
	ReplyAdmin    ReplyParty = "admin"
	ReplyNone     ReplyParty = "none"
	ReplyUnknown  ReplyParty = "unknown"
)

// KickoffStatus 定标后启动清单进度
type KickoffStatus string

const (
	KickoffNA         KickoffStatus = "n/a"
	KickoffNotStarted KickoffStatus = "not_started"
	KickoffInProgress KickoffStatus = "in_progress"
	KickoffComplete   KickoffStatus = "complete"
)

// ThreadSignal 单线程的角色时间信号，每次请求重新计算
type ThreadSignal struct {
	LastMessageAt   *time.Time
	LastMessageRole model.Role
	CustomerLastAt  *time.Time
	SupplierLastAt  *time.Time
	AdminLastAt     *time.Time
}

func (s ThreadSignal) lastAt(r model.Role) *time.Time {
	switch r {
	case model.RoleCustomer:
		return s.CustomerLastAt
	case model.RoleSupplier:
		return s.SupplierLastAt
	case model.RoleAdmin:
		return s.AdminLastAt
	}
	return nil
}

// observe 记录某角色的最大时间戳
func (s *ThreadSignal) observe(r model.Role, at time.Time) {
	var slot **time.Time
	switch r {
	case model.RoleCustomer:
		slot = &s.CustomerLastAt
	case model.RoleSupplier:
		slot = &s.SupplierLastAt
	case model.RoleAdmin:
		slot = &s.AdminLastAt
	default:
		return
	}
	if *slot == nil || at.After(**slot) {
		t := at
		*slot = &t
	}
}

// InboxRow 收件箱的一行，已排序可直接渲染或序列化
type InboxRow struct {
	QuoteID            string        `json:"quote_id"`
	Label              string        `json:"label"`
	Role               model.Role    `json:"role"`
	LastMessageAt      time.Time     `json:"last_message_at"`
	LastMessagePreview string        `json:"last_message_preview"`
	NeedsReplyFrom     ReplyParty    `json:"needs_reply_from"`
	UnreadCount        int           `json:"unread_count"`
	Status             string        `json:"status"`
	HasWinner          bool          `json:"has_winner"`
	KickoffStatus      KickoffStatus `json:"kickoff_status"`
}
