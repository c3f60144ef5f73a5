package service

import (
	"context"

	"github.com/d60-Lab/quote-inbox/internal/model"
	"github.com/d60-Lab/quote-inbox/internal/repository"
)

// loadSignals 为每个输入线程返回信号，查不到时为全空信号。
// 优先走服务端聚合，不可用时回退到倒序扫描原始消息。
func (s *inboxService) loadSignals(ctx context.Context, ids []string) map[string]ThreadSignal {
	out := make(map[string]ThreadSignal, len(ids))
	for _, id := range ids {
		out[id] = ThreadSignal{}
	}
	if len(ids) == 0 {
		return out
	}

	if s.aggregateSignals(ctx, ids, out) {
		return out
	}

	limit := repository.BoundedLimit(len(ids), s.opts.ScanFloor, s.opts.ScanCeiling, s.opts.ScanPerThread)
	callCtx, cancel := s.optionalCtx(ctx)
	defer cancel()
	rows, err := s.messages.ScanNewestFirst(callCtx, ids, limit)
	if err != nil {
		s.degrade("message_scan", err, len(ids))
		return out
	}
	foldMessages(out, rows)
	return out
}

func (s *inboxService) aggregateSignals(ctx context.Context, ids []string, out map[string]ThreadSignal) bool {
	if s.aggregator == nil {
		return false
	}
	callCtx, cancel := s.optionalCtx(ctx)
	defer cancel()
	rows, err := s.aggregator.Aggregate(callCtx, ids)
	if err != nil {
		s.degrade("signal_aggregate", err, len(ids))
		return false
	}
	for _, r := range rows {
		if _, ok := out[r.QuoteID]; !ok {
			continue
		}
		// 未知角色保留原值，回复推断会得到 unknown
		role, _ := model.ParseRole(r.LastMessageRole)
		out[r.QuoteID] = ThreadSignal{
			LastMessageAt:   r.LastMessageAt,
			LastMessageRole: role,
			CustomerLastAt:  r.CustomerLastAt,
			SupplierLastAt:  r.SupplierLastAt,
			AdminLastAt:     r.AdminLastAt,
		}
	}
	return true
}

// foldMessages 单次遍历倒序消息：每个线程第一条即最后一条消息，同时记录各角色最大时间。
// 角色无法识别的消息不参与任何信号。
func foldMessages(out map[string]ThreadSignal, rows []repository.MessageRow) {
	for _, m := range rows {
		sig, ok := out[m.QuoteID]
		if !ok || !m.Role.Valid() {
			continue
		}
		if sig.LastMessageAt == nil {
			at := m.CreatedAt
			sig.LastMessageAt = &at
			sig.LastMessageRole = m.Role
		}
		sig.observe(m.Role, m.CreatedAt)
		out[m.QuoteID] = sig
	}
}
