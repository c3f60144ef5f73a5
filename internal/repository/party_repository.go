package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/quote-inbox/internal/model"
)

// PartyRepository 将登录用户映射到客户/供应商身份
type PartyRepository interface {
	CustomerByUserID(ctx context.Context, userID string) (*model.Customer, error)
	CustomerByEmail(ctx context.Context, email string) (*model.Customer, error)
	SupplierByUserID(ctx context.Context, userID string) (*model.Supplier, error)
}

type partyRepository struct{ db *gorm.DB }

func NewPartyRepository(db *gorm.DB) PartyRepository { return &partyRepository{db: db} }

func (r *partyRepository) CustomerByUserID(ctx context.Context, userID string) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&c).Error
	if err != nil {
		return nil, notFound(err, "customer by user id")
	}
	return &c, nil
}

func (r *partyRepository) CustomerByEmail(ctx context.Context, email string) (*model.Customer, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrNotFound
	}
	var c model.Customer
	err := r.db.WithContext(ctx).Where("LOWER(email) = ?", email).First(&c).Error
	if err != nil {
		return nil, notFound(err, "customer by email")
	}
	return &c, nil
}

func (r *partyRepository) SupplierByUserID(ctx context.Context, userID string) (*model.Supplier, error) {
	var s model.Supplier
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	if err != nil {
		return nil, notFound(err, "supplier by user id")
	}
	return &s, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
