package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/quote-inbox/internal/model"
)

// SupplierSignalRepository 供应商可见性的报价与邀请信号
type SupplierSignalRepository interface {
	ListBidQuoteIDs(ctx context.Context, supplierID string) ([]string, error)
	ListInvitedQuoteIDs(ctx context.Context, supplierID string) ([]string, error)
}

type supplierSignalRepository struct {
	db      *gorm.DB
	bids    bool
	invites bool
}

func NewSupplierSignalRepository(db *gorm.DB, caps Capabilities) SupplierSignalRepository {
	return &supplierSignalRepository{db: db, bids: caps.Bids, invites: caps.Invites}
}

func (r *supplierSignalRepository) ListBidQuoteIDs(ctx context.Context, supplierID string) ([]string, error) {
	if !r.bids {
		return nil, ErrUnavailable
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.SupplierBid{}).
		Distinct("quote_id").
		Where("supplier_id = ?", supplierID).
		Pluck("quote_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list bid quote ids: %w", err)
	}
	return ids, nil
}

func (r *supplierSignalRepository) ListInvitedQuoteIDs(ctx context.Context, supplierID string) ([]string, error) {
	if !r.invites {
		return nil, ErrUnavailable
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.QuoteInvite{}).
		Where("supplier_id = ?", supplierID).
		Pluck("quote_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list invited quote ids: %w", err)
	}
	return ids, nil
}
