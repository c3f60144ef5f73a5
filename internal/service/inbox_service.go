package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/d60-Lab/quote-inbox/internal/diagnostics"
	"github.com/d60-Lab/quote-inbox/internal/repository"
)

var (
	tracer   = otel.Tracer("github.com/d60-Lab/quote-inbox/internal/service")
	validate = validator.New()
)

// InboxService 跨角色收件箱
type InboxService interface {
	// Load 计算查看者的收件箱。存储侧的任何失败都降级为更少的行或更弱的信号，
	// 只有查看者本身不合法时返回错误。
	Load(ctx context.Context, viewer Viewer) ([]InboxRow, error)
}

// InboxOptions 计算参数
type InboxOptions struct {
	AdminWorkingSet     int
	ScanFloor           int
	ScanCeiling         int
	ScanPerThread       int
	OptionalCallTimeout time.Duration
}

func DefaultInboxOptions() InboxOptions {
	return InboxOptions{
		AdminWorkingSet:     800,
		ScanFloor:           250,
		ScanCeiling:         8000,
		ScanPerThread:       30,
		OptionalCallTimeout: 3 * time.Second,
	}
}

// InboxDeps 存储侧依赖；Aggregator 可为空
type InboxDeps struct {
	Quotes          repository.QuoteRepository
	Parties         repository.PartyRepository
	SupplierSignals repository.SupplierSignalRepository
	Messages        repository.MessageStore
	Aggregator      repository.SignalAggregator
	Kickoff         repository.KickoffRepository
	Unread          repository.UnreadReader
	Diagnostics     diagnostics.Sink
}

type inboxService struct {
	quotes          repository.QuoteRepository
	parties         repository.PartyRepository
	supplierSignals repository.SupplierSignalRepository
	messages        repository.MessageStore
	aggregator      repository.SignalAggregator
	kickoff         repository.KickoffRepository
	unread          repository.UnreadReader
	diag            diagnostics.Sink
	opts            InboxOptions
}

func NewInboxService(deps InboxDeps, opts InboxOptions) InboxService {
	def := DefaultInboxOptions()
	if opts.AdminWorkingSet <= 0 {
		opts.AdminWorkingSet = def.AdminWorkingSet
	}
	if opts.ScanFloor <= 0 {
		opts.ScanFloor = def.ScanFloor
	}
	if opts.ScanCeiling < opts.ScanFloor {
		opts.ScanCeiling = max(def.ScanCeiling, opts.ScanFloor)
	}
	if opts.ScanPerThread <= 0 {
		opts.ScanPerThread = def.ScanPerThread
	}
	if opts.OptionalCallTimeout <= 0 {
		opts.OptionalCallTimeout = def.OptionalCallTimeout
	}
	diag := deps.Diagnostics
	if diag == nil {
		diag = diagnostics.Nop()
	}
	return &inboxService{
		quotes:          deps.Quotes,
		parties:         deps.Parties,
		supplierSignals: deps.SupplierSignals,
		messages:        deps.Messages,
		aggregator:      deps.Aggregator,
		kickoff:         deps.Kickoff,
		unread:          deps.Unread,
		diag:            diag,
		opts:            opts,
	}
}

func (s *inboxService) Load(ctx context.Context, viewer Viewer) ([]InboxRow, error) {
	viewer.Email = repository.NormalizeEmail(viewer.Email)
	if err := validate.Struct(viewer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidViewer, err)
	}

	ctx, span := tracer.Start(ctx, "inbox.Load")
	defer span.End()
	span.SetAttributes(attribute.String("inbox.role", string(viewer.Role)))

	vis := s.resolveVisibility(ctx, viewer)
	span.SetAttributes(attribute.Int("inbox.thread_count", len(vis.ids)))
	if len(vis.ids) == 0 {
		return []InboxRow{}, nil
	}

	var (
		wg      sync.WaitGroup
		signals map[string]ThreadSignal
		kickoff map[string]KickoffStatus
		unread  map[string]repository.UnreadSummary
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		signals = s.loadSignals(ctx, vis.ids)
	}()
	go func() {
		defer wg.Done()
		kickoff = s.loadKickoff(ctx, vis.quotes)
	}()
	go func() {
		defer wg.Done()
		unread = s.loadUnread(ctx, viewer, vis.ids)
	}()
	wg.Wait()

	rows := assembleRows(viewer.Role, vis, signals, kickoff, unread)
	span.SetAttributes(attribute.Int("inbox.row_count", len(rows)))
	return rows, nil
}

func (s *inboxService) loadUnread(ctx context.Context, viewer Viewer, ids []string) map[string]repository.UnreadSummary {
	if s.unread == nil {
		return nil
	}
	callCtx, cancel := s.optionalCtx(ctx)
	defer cancel()
	res, err := s.unread.Summaries(callCtx, repository.UnreadViewer{UserID: viewer.UserID, Role: viewer.Role}, ids)
	if err != nil {
		s.degrade("unread_summaries", err, len(ids))
		return nil
	}
	return res
}

func (s *inboxService) optionalCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.OptionalCallTimeout)
}

// degrade 缺失结构按原因只记一次；其余错误每次记录，只带线程数
func (s *inboxService) degrade(op string, err error, threadCount int) {
	switch {
	case repository.IsUnavailable(err):
		s.diag.WarnOnce("unavailable:"+op, "inbox signal unavailable, degrading", zap.String("op", op), zap.Error(err))
	case errors.Is(err, context.DeadlineExceeded):
		s.diag.Error("inbox signal timed out", zap.String("op", op), zap.Int("thread_count", threadCount))
	default:
		s.diag.Error("inbox signal failed", zap.String("op", op), zap.Int("thread_count", threadCount), zap.Error(err))
	}
}
