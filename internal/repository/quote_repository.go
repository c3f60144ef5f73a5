package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/d60-Lab/quote-inbox/internal/model"
)

// QuoteRepository 询价线程读取
type QuoteRepository interface {
	ListByCustomerEmail(ctx context.Context, email string) ([]*model.Quote, error)
	// ListRecentFirst 按 updated_at 倒序取前 limit 条（管理员工作集）
	ListRecentFirst(ctx context.Context, limit int) ([]*model.Quote, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.Quote, error)
	ListAwardedIDs(ctx context.Context, supplierID string) ([]string, error)
	ListAssignedIDs(ctx context.Context, supplierEmail string) ([]string, error)
}

type quoteRepository struct {
	db   *gorm.DB
	cols QuoteColumns
}

func NewQuoteRepository(db *gorm.DB, caps Capabilities) QuoteRepository {
	return &quoteRepository{db: db, cols: caps.Quote}
}

// selectColumns 只读取当前环境存在的列
func (r *quoteRepository) selectColumns() []string {
	cols := []string{"id", "status", "customer_email", "title", "file_name", "created_at", "updated_at"}
	if r.cols.AssignedSupplierEmail {
		cols = append(cols, "assigned_supplier_email")
	}
	if r.cols.AwardedSupplierID {
		cols = append(cols, "awarded_supplier_id")
	}
	if r.cols.AwardedBidID {
		cols = append(cols, "awarded_bid_id")
	}
	if r.cols.AwardedAt {
		cols = append(cols, "awarded_at")
	}
	if r.cols.KickoffCompletedAt {
		cols = append(cols, "kickoff_completed_at")
	}
	return cols
}

func (r *quoteRepository) ListByCustomerEmail(ctx context.Context, email string) ([]*model.Quote, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	var res []*model.Quote
	err := r.db.WithContext(ctx).
		Model(&model.Quote{}).
		Select(r.selectColumns()).
		Where("LOWER(customer_email) = ?", email).
		Order("updated_at DESC").
		Find(&res).Error
	if err != nil {
		return nil, fmt.Errorf("list quotes by customer email: %w", err)
	}
	return res, nil
}

func (r *quoteRepository) ListRecentFirst(ctx context.Context, limit int) ([]*model.Quote, error) {
	var res []*model.Quote
	err := r.db.WithContext(ctx).
		Model(&model.Quote{}).
		Select(r.selectColumns()).
		Order("updated_at DESC").
		Limit(limit).
		Find(&res).Error
	if err != nil {
		return nil, fmt.Errorf("list recent quotes: %w", err)
	}
	return res, nil
}

func (r *quoteRepository) GetByIDs(ctx context.Context, ids []string) ([]*model.Quote, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var res []*model.Quote
	err := r.db.WithContext(ctx).
		Model(&model.Quote{}).
		Select(r.selectColumns()).
		Where("id IN ?", ids).
		Find(&res).Error
	if err != nil {
		return nil, fmt.Errorf("get quotes by ids: %w", err)
	}
	return res, nil
}

func (r *quoteRepository) ListAwardedIDs(ctx context.Context, supplierID string) ([]string, error) {
	if !r.cols.AwardedSupplierID {
		return nil, ErrUnavailable
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Quote{}).
		Where("awarded_supplier_id = ?", supplierID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list awarded quote ids: %w", err)
	}
	return ids, nil
}

func (r *quoteRepository) ListAssignedIDs(ctx context.Context, supplierEmail string) ([]string, error) {
	if !r.cols.AssignedSupplierEmail {
		return nil, ErrUnavailable
	}
	supplierEmail = NormalizeEmail(supplierEmail)
	if supplierEmail == "" {
		return nil, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Quote{}).
		Where("LOWER(assigned_supplier_email) = ?", supplierEmail).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list assigned quote ids: %w", err)
	}
	return ids, nil
}

// NormalizeEmail 去空白并转小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
