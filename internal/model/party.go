package model

import "time"

// Customer 询价发起方
type Customer struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	UserID      string `gorm:"type:varchar(36);index:idx_customer_user"`
	Email       string `gorm:"type:varchar(255);index:idx_customer_email"`
	CompanyName string `gorm:"type:varchar(255)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Customer) TableName() string { return "customers" }

// Supplier 报价方
type Supplier struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	UserID       string `gorm:"type:varchar(36);index:idx_supplier_user"`
	PrimaryEmail string `gorm:"type:varchar(255)"`
	CompanyName  string `gorm:"type:varchar(255)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Supplier) TableName() string { return "suppliers" }
