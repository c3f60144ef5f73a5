package service

import (
	"sort"

	"github.com/d60-Lab/quote-inbox/internal/model"
	"github.com/d60-Lab/quote-inbox/internal/repository"
)

const emptyPreview = "—"

// assembleRows 按线程 ID 合并各路信号，丢弃没有消息的线程，按最后消息时间倒序
func assembleRows(
	role model.Role,
	vis visibleSet,
	signals map[string]ThreadSignal,
	kickoff map[string]KickoffStatus,
	unread map[string]repository.UnreadSummary,
) []InboxRow {
	rows := make([]InboxRow, 0, len(vis.ids))
	for _, id := range vis.ids {
		sig := signals[id]
		if sig.LastMessageAt == nil {
			continue
		}
		q := vis.quotes[id]
		if q == nil {
			continue
		}

		summary := unread[id]
		preview := summary.LastMessagePreview
		if preview == "" {
			preview = emptyPreview
		}
		status, ok := kickoff[id]
		if !ok {
			status = ComputeKickoffStatus(q, KickoffTotals{})
		}

		rows = append(rows, InboxRow{
			QuoteID:            id,
			Label:              q.DisplayLabel(),
			Role:               role,
			LastMessageAt:      sig.LastMessageAt.UTC(),
			LastMessagePreview: preview,
			NeedsReplyFrom:     ComputeNeedsReplyFrom(sig),
			UnreadCount:        summary.UnreadCount,
			Status:             q.Status,
			HasWinner:          q.HasWinner(),
			KickoffStatus:      status,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].LastMessageAt.After(rows[j].LastMessageAt)
	})
	return rows
}
