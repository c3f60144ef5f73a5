package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// KickoffTaskRow 单个启动任务，Completed 已按存储形态归一化
type KickoffTaskRow struct {
	QuoteID    string
	SupplierID string
	Completed  bool
}

// KickoffRepository 启动清单读取
type KickoffRepository interface {
	ListTasks(ctx context.Context, quoteIDs, supplierIDs []string) ([]KickoffTaskRow, error)
}

type kickoffRepository struct {
	db    *gorm.DB
	shape KickoffShape
}

func NewKickoffRepository(db *gorm.DB, caps Capabilities) KickoffRepository {
	return &kickoffRepository{db: db, shape: caps.Kickoff}
}

type kickoffScan struct {
	QuoteID     string
	SupplierID  string
	Completed   *bool
	CompletedAt *time.Time
}

func (r *kickoffRepository) ListTasks(ctx context.Context, quoteIDs, supplierIDs []string) ([]KickoffTaskRow, error) {
	if r.shape == KickoffUnsupported {
		return nil, ErrUnavailable
	}
	if len(quoteIDs) == 0 || len(supplierIDs) == 0 {
		return nil, nil
	}

	cols := []string{"quote_id", "supplier_id"}
	switch r.shape {
	case KickoffFlag:
		cols = append(cols, "completed")
	case KickoffTimestamp:
		cols = append(cols, "completed_at")
	case KickoffFlagAndTimestamp:
		cols = append(cols, "completed", "completed_at")
	}

	var raw []kickoffScan
	err := r.db.WithContext(ctx).
		Table("quote_kickoff_tasks").
		Select(cols).
		Where("quote_id IN ? AND supplier_id IN ?", quoteIDs, supplierIDs).
		Scan(&raw).Error
	if err != nil {
		return nil, fmt.Errorf("list kickoff tasks: %w", err)
	}

	rows := make([]KickoffTaskRow, len(raw))
	for i, t := range raw {
		rows[i] = KickoffTaskRow{
			QuoteID:    t.QuoteID,
			SupplierID: t.SupplierID,
			Completed:  (t.Completed != nil && *t.Completed) || t.CompletedAt != nil,
		}
	}
	return rows, nil
}
