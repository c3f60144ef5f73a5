package repository

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AggregateFunctionSignature 预计算线程信号的服务端函数（仅 postgres）
const AggregateFunctionSignature = "quote_thread_signals(text[])"

// MessageSchema 消息表版本
type MessageSchema int

const (
	MessageSchemaNone MessageSchema = iota
	MessageSchemaCurrent
	MessageSchemaLegacy
)

func (s MessageSchema) String() string {
	switch s {
	case MessageSchemaCurrent:
		return "quote_messages"
	case MessageSchemaLegacy:
		return "rfq_messages"
	default:
		return "none"
	}
}

// KickoffShape 启动清单完成状态的存储形态
type KickoffShape int

const (
	KickoffUnsupported KickoffShape = iota
	KickoffFlag
	KickoffTimestamp
	KickoffFlagAndTimestamp
)

func (s KickoffShape) String() string {
	switch s {
	case KickoffFlag:
		return "flag"
	case KickoffTimestamp:
		return "timestamp"
	case KickoffFlagAndTimestamp:
		return "flag+timestamp"
	default:
		return "unsupported"
	}
}

// QuoteColumns quotes 表上的可选列
type QuoteColumns struct {
	AssignedSupplierEmail bool
	AwardedSupplierID     bool
	AwardedBidID          bool
	AwardedAt             bool
	KickoffCompletedAt    bool
}

// Capabilities 一次协商得到的存储形态，进程内只读
type Capabilities struct {
	Messages  MessageSchema
	Aggregate bool
	Bids      bool
	Invites   bool
	Reads     bool
	Kickoff   KickoffShape
	Quote     QuoteColumns
}

// Negotiator 首次使用时探测表结构并缓存结果，后续请求不再探测
type Negotiator struct {
	db   *gorm.DB
	log  *zap.Logger
	once sync.Once
	caps Capabilities
}

// NewNegotiator log 为空时不输出协商结果
func NewNegotiator(db *gorm.DB, log *zap.Logger) *Negotiator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Negotiator{db: db, log: log}
}

func (n *Negotiator) Capabilities(ctx context.Context) Capabilities {
	n.once.Do(func() {
		n.caps = negotiate(ctx, n.db, n.log)
		n.log.Info("store capabilities negotiated",
			zap.String("messages", n.caps.Messages.String()),
			zap.Bool("aggregate", n.caps.Aggregate),
			zap.Bool("bids", n.caps.Bids),
			zap.Bool("invites", n.caps.Invites),
			zap.Bool("reads", n.caps.Reads),
			zap.String("kickoff", n.caps.Kickoff.String()),
		)
	})
	return n.caps
}

func negotiate(ctx context.Context, db *gorm.DB, log *zap.Logger) Capabilities {
	m := db.WithContext(ctx).Migrator()
	var caps Capabilities

	switch {
	case m.HasTable("quote_messages") && m.HasColumn("quote_messages", "sender_role"):
		caps.Messages = MessageSchemaCurrent
	case m.HasTable("rfq_messages") && m.HasColumn("rfq_messages", "author_type"):
		caps.Messages = MessageSchemaLegacy
	}

	caps.Bids = m.HasTable("supplier_bids")
	caps.Invites = m.HasTable("quote_invites")
	caps.Reads = m.HasTable("quote_message_reads")

	if m.HasTable("quote_kickoff_tasks") {
		flag := m.HasColumn("quote_kickoff_tasks", "completed")
		stamp := m.HasColumn("quote_kickoff_tasks", "completed_at")
		switch {
		case flag && stamp:
			caps.Kickoff = KickoffFlagAndTimestamp
		case flag:
			caps.Kickoff = KickoffFlag
		case stamp:
			caps.Kickoff = KickoffTimestamp
		}
	}

	if m.HasTable("quotes") {
		caps.Quote = QuoteColumns{
			AssignedSupplierEmail: m.HasColumn("quotes", "assigned_supplier_email"),
			AwardedSupplierID:     m.HasColumn("quotes", "awarded_supplier_id"),
			AwardedBidID:          m.HasColumn("quotes", "awarded_bid_id"),
			AwardedAt:             m.HasColumn("quotes", "awarded_at"),
			KickoffCompletedAt:    m.HasColumn("quotes", "kickoff_completed_at"),
		}
	}

	caps.Aggregate = hasAggregateFunction(ctx, db, log)
	return caps
}

func hasAggregateFunction(ctx context.Context, db *gorm.DB, log *zap.Logger) bool {
	if db.Dialector.Name() != "postgres" {
		return false
	}
	var ok bool
	if err := db.WithContext(ctx).Raw("SELECT to_regprocedure(?) IS NOT NULL", AggregateFunctionSignature).Scan(&ok).Error; err != nil {
		log.Warn("aggregate function lookup failed", zap.Error(err))
		return false
	}
	return ok
}
