package repository

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/d60-Lab/quote-inbox/internal/model"
)

const (
	previewMaxRunes = 140

	unreadScanFloor     = 250
	unreadScanCeiling   = 8000
	unreadScanPerThread = 50
)

// UnreadViewer 未读统计的请求方
type UnreadViewer struct {
	UserID string
	Role   model.Role
}

// UnreadSummary 单线程对某个查看者的未读数与最新消息预览
type UnreadSummary struct {
	UnreadCount        int        `json:"unread_count"`
	LastMessagePreview string     `json:"last_message_preview"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty"`
}

// UnreadReader 未读摘要提供方
type UnreadReader interface {
	Summaries(ctx context.Context, viewer UnreadViewer, quoteIDs []string) (map[string]UnreadSummary, error)
}

type unreadRepository struct {
	db       *gorm.DB
	messages MessageStore
	reads    bool
}

// NewUnreadRepository 默认实现：已读水位之后、非本角色发送的消息计为未读。
// 没有 quote_message_reads 表时未读数恒为 0，仅提供预览。
func NewUnreadRepository(db *gorm.DB, messages MessageStore, caps Capabilities) UnreadReader {
	return &unreadRepository{db: db, messages: messages, reads: caps.Reads}
}

func (r *unreadRepository) Summaries(ctx context.Context, viewer UnreadViewer, quoteIDs []string) (map[string]UnreadSummary, error) {
	out := make(map[string]UnreadSummary, len(quoteIDs))
	if len(quoteIDs) == 0 {
		return out, nil
	}

	var markers map[string]time.Time
	if r.reads {
		m, err := r.readMarkers(ctx, viewer.UserID, quoteIDs)
		if err != nil {
			return nil, err
		}
		markers = m
	}

	limit := BoundedLimit(len(quoteIDs), unreadScanFloor, unreadScanCeiling, unreadScanPerThread)
	rows, err := r.messages.ScanNewestFirst(ctx, quoteIDs, limit)
	if err != nil {
		return nil, err
	}

	// 与线程信号一致：无法识别角色的消息不参与预览、时间与未读
	for _, m := range rows {
		if !m.Role.Valid() {
			continue
		}
		s, seen := out[m.QuoteID]
		if !seen {
			at := m.CreatedAt
			s.LastMessageAt = &at
			s.LastMessagePreview = Preview(m.Body)
		}
		if r.reads && m.Role != viewer.Role {
			if mark, ok := markers[m.QuoteID]; !ok || m.CreatedAt.After(mark) {
				s.UnreadCount++
			}
		}
		out[m.QuoteID] = s
	}
	return out, nil
}

func (r *unreadRepository) readMarkers(ctx context.Context, userID string, quoteIDs []string) (map[string]time.Time, error) {
	var reads []model.MessageRead
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND quote_id IN ?", userID, quoteIDs).
		Find(&reads).Error
	if err != nil {
		return nil, fmt.Errorf("list read markers: %w", err)
	}
	markers := make(map[string]time.Time, len(reads))
	for _, rd := range reads {
		markers[rd.QuoteID] = rd.LastReadAt
	}
	return markers, nil
}

// Preview 截断消息正文用于列表展示
func Preview(body string) string {
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) <= previewMaxRunes {
		return body
	}
	runes := []rune(body)
	return string(runes[:previewMaxRunes]) + "…"
}
