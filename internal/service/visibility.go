package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/d60-Lab/quote-inbox/internal/model"
	"github.com/d60-Lab/quote-inbox/internal/repository"
)

// visibleSet 查看者可见的线程；ids 有序去重，quotes 为对应记录
type visibleSet struct {
	ids    []string
	quotes map[string]*model.Quote
}

func newVisibleSet(quotes []*model.Quote) visibleSet {
	vs := visibleSet{quotes: make(map[string]*model.Quote, len(quotes))}
	for _, q := range quotes {
		if q == nil || q.ID == "" {
			continue
		}
		vs.quotes[q.ID] = q
	}
	vs.ids = make([]string, 0, len(vs.quotes))
	for id := range vs.quotes {
		vs.ids = append(vs.ids, id)
	}
	sort.Strings(vs.ids)
	return vs
}

func (s *inboxService) resolveVisibility(ctx context.Context, v Viewer) visibleSet {
	switch v.Role {
	case model.RoleCustomer:
		return s.visibleToCustomer(ctx, v)
	case model.RoleSupplier:
		return s.visibleToSupplier(ctx, v)
	case model.RoleAdmin:
		return s.visibleToAdmin(ctx)
	}
	return visibleSet{}
}

func (s *inboxService) visibleToCustomer(ctx context.Context, v Viewer) visibleSet {
	customer, err := s.parties.CustomerByUserID(ctx, v.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		customer, err = s.parties.CustomerByEmail(ctx, v.Email)
	}
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.diag.Error("resolve customer identity failed", zap.String("role", string(v.Role)), zap.Error(err))
		}
		return visibleSet{}
	}

	email := repository.NormalizeEmail(customer.Email)
	if email == "" {
		return visibleSet{}
	}
	quotes, err := s.quotes.ListByCustomerEmail(ctx, email)
	if err != nil {
		s.diag.Error("list customer quotes failed", zap.Error(err))
		return visibleSet{}
	}
	return newVisibleSet(quotes)
}

// visibleToSupplier 四个信号并发查询后取并集；单个信号失败只影响自身
func (s *inboxService) visibleToSupplier(ctx context.Context, v Viewer) visibleSet {
	supplier, err := s.parties.SupplierByUserID(ctx, v.UserID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.diag.Error("resolve supplier identity failed", zap.String("role", string(v.Role)), zap.Error(err))
		}
		return visibleSet{}
	}

	type signal struct {
		name  string
		fetch func(context.Context) ([]string, error)
	}
	signals := []signal{
		{"awarded", func(c context.Context) ([]string, error) { return s.quotes.ListAwardedIDs(c, supplier.ID) }},
		{"bids", func(c context.Context) ([]string, error) { return s.supplierSignals.ListBidQuoteIDs(c, supplier.ID) }},
		{"invites", func(c context.Context) ([]string, error) { return s.supplierSignals.ListInvitedQuoteIDs(c, supplier.ID) }},
		{"assigned", func(c context.Context) ([]string, error) {
			if repository.NormalizeEmail(supplier.PrimaryEmail) == "" {
				return nil, nil
			}
			return s.quotes.ListAssignedIDs(c, supplier.PrimaryEmail)
		}},
	}

	results := make([][]string, len(signals))
	var wg sync.WaitGroup
	for i, sig := range signals {
		wg.Add(1)
		go func(i int, sig signal) {
			defer wg.Done()
			callCtx, cancel := s.optionalCtx(ctx)
			defer cancel()
			ids, err := sig.fetch(callCtx)
			if err != nil {
				s.degrade("supplier_"+sig.name, err, 0)
				return
			}
			results[i] = ids
		}(i, sig)
	}
	wg.Wait()

	union := make(map[string]struct{})
	for _, ids := range results {
		for _, id := range ids {
			if id != "" {
				union[id] = struct{}{}
			}
		}
	}
	if len(union) == 0 {
		return visibleSet{}
	}
	ids := make([]string, 0, len(union))
	for id := range union {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	quotes, err := s.quotes.GetByIDs(ctx, ids)
	if err != nil {
		s.diag.Error("load supplier quotes failed", zap.Int("thread_count", len(ids)), zap.Error(err))
		return visibleSet{}
	}
	return newVisibleSet(quotes)
}

// visibleToAdmin 最近更新的固定大小工作集
func (s *inboxService) visibleToAdmin(ctx context.Context) visibleSet {
	quotes, err := s.quotes.ListRecentFirst(ctx, s.opts.AdminWorkingSet)
	if err != nil {
		s.diag.Error("list admin working set failed", zap.Error(err))
		return visibleSet{}
	}
	return newVisibleSet(quotes)
}
