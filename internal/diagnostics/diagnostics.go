// Package diagnostics 提供注入式的诊断输出，按原因去重以避免刷屏。
package diagnostics

import (
	"sync"

	"go.uber.org/zap"
)

// Sink 诊断输出
type Sink interface {
	// WarnOnce 同一个 key 在进程生命周期内只输出一次
	WarnOnce(key, msg string, fields ...zap.Field)
	// Error 每次都输出，调用方负责只带聚合信息（如线程数），不带原始 ID
	Error(msg string, fields ...zap.Field)
}

type onceSink struct {
	log  *zap.Logger
	seen sync.Map
}

func NewOnce(log *zap.Logger) Sink {
	if log == nil {
		log = zap.NewNop()
	}
	return &onceSink{log: log}
}

func (s *onceSink) WarnOnce(key, msg string, fields ...zap.Field) {
	if _, loaded := s.seen.LoadOrStore(key, struct{}{}); loaded {
		return
	}
	s.log.Warn(msg, append(fields, zap.String("cause", key))...)
}

func (s *onceSink) Error(msg string, fields ...zap.Field) {
	s.log.Error(msg, fields...)
}

// Nop 丢弃所有诊断
func Nop() Sink { return nopSink{} }

type nopSink struct{}

func (nopSink) WarnOnce(string, string, ...zap.Field) {}
func (nopSink) Error(string, ...zap.Field)            {}
