package service

import (
	"context"
	"sort"

	"github.com/d60-Lab/quote-inbox/internal/model"
	"github.com/d60-Lab/quote-inbox/internal/repository"
)

// KickoffTotals 中标供应商清单的任务数与完成数
type KickoffTotals struct {
	Total     int
	Completed int
}

// ComputeKickoffStatus 由定标状态与清单统计得出进度
func ComputeKickoffStatus(q *model.Quote, totals KickoffTotals) KickoffStatus {
	if !q.HasWinner() {
		return KickoffNA
	}
	if q.KickoffCompletedAt != nil {
		return KickoffComplete
	}
	if totals.Total <= 0 || totals.Completed <= 0 {
		return KickoffNotStarted
	}
	// completed 超过 total 属于脏数据，按完成处理
	if totals.Completed >= totals.Total {
		return KickoffComplete
	}
	return KickoffInProgress
}

// aggregateKickoff 只统计供应商 ID 等于线程中标者的任务
func aggregateKickoff(winners map[string]string, rows []repository.KickoffTaskRow) map[string]KickoffTotals {
	totals := make(map[string]KickoffTotals, len(winners))
	for _, r := range rows {
		winner, ok := winners[r.QuoteID]
		if !ok || winner == "" || r.SupplierID != winner {
			continue
		}
		t := totals[r.QuoteID]
		t.Total++
		if r.Completed {
			t.Completed++
		}
		totals[r.QuoteID] = t
	}
	return totals
}

func (s *inboxService) loadKickoff(ctx context.Context, quotes map[string]*model.Quote) map[string]KickoffStatus {
	winners := make(map[string]string)
	supplierSet := make(map[string]struct{})
	for id, q := range quotes {
		if w := q.WinnerID(); w != "" {
			winners[id] = w
			supplierSet[w] = struct{}{}
		}
	}

	var totals map[string]KickoffTotals
	if len(winners) > 0 {
		quoteIDs := make([]string, 0, len(winners))
		for id := range winners {
			quoteIDs = append(quoteIDs, id)
		}
		supplierIDs := make([]string, 0, len(supplierSet))
		for id := range supplierSet {
			supplierIDs = append(supplierIDs, id)
		}
		sort.Strings(quoteIDs)
		sort.Strings(supplierIDs)

		callCtx, cancel := s.optionalCtx(ctx)
		rows, err := s.kickoff.ListTasks(callCtx, quoteIDs, supplierIDs)
		cancel()
		if err != nil {
			s.degrade("kickoff_tasks", err, len(quoteIDs))
		} else {
			totals = aggregateKickoff(winners, rows)
		}
	}

	out := make(map[string]KickoffStatus, len(quotes))
	for id, q := range quotes {
		out[id] = ComputeKickoffStatus(q, totals[id])
	}
	return out
}
