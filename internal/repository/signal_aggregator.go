package repository

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"gorm.io/gorm"
)

// SignalRow 服务端聚合的单线程信号
type SignalRow struct {
	QuoteID         string
	LastMessageAt   *time.Time
	LastMessageRole string
	CustomerLastAt  *time.Time
	SupplierLastAt  *time.Time
	AdminLastAt     *time.Time
}

// SignalAggregator 线程信号的快速路径；不可用时返回 ErrUnavailable
type SignalAggregator interface {
	Aggregate(ctx context.Context, quoteIDs []string) ([]SignalRow, error)
}

type pgSignalAggregator struct {
	db        *gorm.DB
	available atomic.Bool
}

func NewSignalAggregator(db *gorm.DB, caps Capabilities) SignalAggregator {
	a := &pgSignalAggregator{db: db}
	a.available.Store(caps.Aggregate)
	return a
}

func (a *pgSignalAggregator) Aggregate(ctx context.Context, quoteIDs []string) ([]SignalRow, error) {
	if !a.available.Load() {
		return nil, ErrUnavailable
	}
	if len(quoteIDs) == 0 {
		return nil, nil
	}
	ids, err := encodeTextArray(quoteIDs)
	if err != nil {
		return nil, fmt.Errorf("encode quote ids: %w", err)
	}
	var rows []SignalRow
	err = a.db.WithContext(ctx).
		Raw(`SELECT quote_id, last_message_at, last_message_role, customer_last_at, supplier_last_at, admin_last_at
			FROM quote_thread_signals(CAST(? AS text[]))`, ids).
		Scan(&rows).Error
	if err != nil {
		if IsMissingSchema(err) {
			// 函数在协商之后被删除：本进程内不再尝试
			a.available.Store(false)
			return nil, fmt.Errorf("aggregate thread signals: %w", errors.Join(ErrUnavailable, err))
		}
		return nil, fmt.Errorf("aggregate thread signals: %w", err)
	}
	return rows, nil
}

// encodeTextArray 编码为 postgres text[] 文本字面量，元素中的逗号、引号按规则转义。
// 以单个字符串绑定，gorm 不会把它展开成 IN 列表。
func encodeTextArray(values []string) (string, error) {
	buf, err := pgtype.NewMap().Encode(pgtype.TextArrayOID, pgtype.TextFormatCode, pgtype.FlatArray[string](values), nil)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
