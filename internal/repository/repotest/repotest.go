// Package repotest 提供基于内存 sqlite 的测试数据库与种子数据工具
package repotest

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/quote-inbox/internal/model"
)

// FullSchema 当前版本的全部表
var FullSchema = []interface{}{
	&model.Quote{},
	&model.Customer{},
	&model.Supplier{},
	&model.SupplierBid{},
	&model.QuoteInvite{},
	&model.QuoteMessage{},
	&model.KickoffTask{},
	&model.MessageRead{},
}

// NewDB 打开独立的共享缓存内存库并迁移给定模型
func NewDB(t testing.TB, models ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// 保持至少一个连接，内存库随最后一个连接关闭而销毁
	sqlDB.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return db
}

// Exec 执行建表等原始 SQL
func Exec(t testing.TB, db *gorm.DB, statements ...string) {
	t.Helper()
	for _, s := range statements {
		if err := db.Exec(s).Error; err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
}

// Create 批量写入种子数据
func Create(t testing.TB, db *gorm.DB, values ...interface{}) {
	t.Helper()
	for _, v := range values {
		if err := db.Create(v).Error; err != nil {
			t.Fatalf("seed %T: %v", v, err)
		}
	}
}

// At 解析 RFC3339 时间
func At(t testing.TB, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	return ts.UTC()
}

// Message 构造一条当前版本消息
func Message(quoteID string, role model.Role, body string, at time.Time) *model.QuoteMessage {
	return &model.QuoteMessage{ID: uuid.NewString(), QuoteID: quoteID, SenderRole: string(role), Body: body, CreatedAt: at}
}

func Ptr[T any](v T) *T { return &v }
