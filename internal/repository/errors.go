package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable 当前部署的存储不具备该能力（缺表、缺列或缺少聚合函数）
	ErrUnavailable = errors.New("capability unavailable")
)

// postgres SQLSTATE: undefined_table, undefined_column, undefined_function, invalid_schema_name
var missingSchemaCodes = map[string]struct{}{
	"42P01": {},
	"42703": {},
	"42883": {},
	"3F000": {},
}

var missingSchemaMarkers = []string{
	"no such table",
	"no such column",
	"no such function",
	"pgrst202",
	"pgrst205",
	"schema cache",
}

// IsMissingSchema 判断错误是否源于缺失的表、列或函数
func IsMissingSchema(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := missingSchemaCodes[pgErr.Code]
		return ok
	}
	msg := strings.ToLower(err.Error())
	for _, m := range missingSchemaMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// IsUnavailable 能力协商判定缺失，或调用时发现缺失
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) || IsMissingSchema(err)
}

// BoundedLimit 按线程数放大扫描上限：max(floor, min(ceiling, n*perThread))
func BoundedLimit(n, floor, ceiling, perThread int) int {
	return max(floor, min(ceiling, n*perThread))
}
