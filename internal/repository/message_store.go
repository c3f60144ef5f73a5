package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/quote-inbox/internal/model"
)

// MessageRow 扫描得到的一条消息；Role 为空表示角色标签无法识别
type MessageRow struct {
	QuoteID   string
	Role      model.Role
	Body      string
	CreatedAt time.Time
}

// MessageStore 按版本适配的消息读取接口，启动时根据能力协商选定实现
type MessageStore interface {
	Schema() MessageSchema
	// ScanNewestFirst 按 created_at 倒序读取给定线程的消息，最多 limit 条
	ScanNewestFirst(ctx context.Context, quoteIDs []string, limit int) ([]MessageRow, error)
}

func NewMessageStore(db *gorm.DB, caps Capabilities) MessageStore {
	switch caps.Messages {
	case MessageSchemaCurrent:
		return &currentMessageStore{db: db}
	case MessageSchemaLegacy:
		return &legacyMessageStore{db: db}
	default:
		return noMessageStore{}
	}
}

type messageScan struct {
	QuoteID    string
	SenderRole string
	Body       string
	CreatedAt  time.Time
}

type currentMessageStore struct{ db *gorm.DB }

func (s *currentMessageStore) Schema() MessageSchema { return MessageSchemaCurrent }

func (s *currentMessageStore) ScanNewestFirst(ctx context.Context, quoteIDs []string, limit int) ([]MessageRow, error) {
	if len(quoteIDs) == 0 || limit <= 0 {
		return nil, nil
	}
	var raw []messageScan
	err := s.db.WithContext(ctx).
		Table("quote_messages").
		Select("quote_id, sender_role, body, created_at").
		Where("quote_id IN ?", quoteIDs).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Scan(&raw).Error
	if err != nil {
		return nil, fmt.Errorf("scan quote_messages: %w", err)
	}
	rows := make([]MessageRow, len(raw))
	for i, m := range raw {
		role, ok := model.ParseRole(m.SenderRole)
		if !ok {
			role = ""
		}
		rows[i] = MessageRow{QuoteID: m.QuoteID, Role: role, Body: m.Body, CreatedAt: m.CreatedAt}
	}
	return rows, nil
}

// 旧版 author_type 取值
var legacyAuthorRoles = map[string]model.Role{
	"buyer":    model.RoleCustomer,
	"customer": model.RoleCustomer,
	"vendor":   model.RoleSupplier,
	"supplier": model.RoleSupplier,
	"ops":      model.RoleAdmin,
	"staff":    model.RoleAdmin,
	"admin":    model.RoleAdmin,
}

type legacyMessageStore struct{ db *gorm.DB }

func (s *legacyMessageStore) Schema() MessageSchema { return MessageSchemaLegacy }

func (s *legacyMessageStore) ScanNewestFirst(ctx context.Context, quoteIDs []string, limit int) ([]MessageRow, error) {
	if len(quoteIDs) == 0 || limit <= 0 {
		return nil, nil
	}
	var raw []messageScan
	err := s.db.WithContext(ctx).
		Table("rfq_messages").
		Select("rfq_id AS quote_id, author_type AS sender_role, message AS body, created_at").
		Where("rfq_id IN ?", quoteIDs).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Scan(&raw).Error
	if err != nil {
		return nil, fmt.Errorf("scan rfq_messages: %w", err)
	}
	rows := make([]MessageRow, len(raw))
	for i, m := range raw {
		rows[i] = MessageRow{
			QuoteID:   m.QuoteID,
			Role:      legacyAuthorRoles[strings.ToLower(strings.TrimSpace(m.SenderRole))],
			Body:      m.Body,
			CreatedAt: m.CreatedAt,
		}
	}
	return rows, nil
}

type noMessageStore struct{}

func (noMessageStore) Schema() MessageSchema { return MessageSchemaNone }

func (noMessageStore) ScanNewestFirst(context.Context, []string, int) ([]MessageRow, error) {
	return nil, ErrUnavailable
}
