package service

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/d60-Lab/quote-inbox/internal/model"
	"github.com/d60-Lab/quote-inbox/internal/repository"
)

type fakeQuotes struct {
	quotes      map[string]*model.Quote
	awarded     func(ctx context.Context, supplierID string) ([]string, error)
	assigned    func(ctx context.Context, email string) ([]string, error)
	getErr      error
	byEmailErr  error
	recentLimit int
}

func newFakeQuotes(qs ...*model.Quote) *fakeQuotes {
	f := &fakeQuotes{quotes: make(map[string]*model.Quote)}
	for _, q := range qs {
		f.quotes[q.ID] = q
	}
	return f
}

func (f *fakeQuotes) sorted() []*model.Quote {
	out := make([]*model.Quote, 0, len(f.quotes))
	for _, q := range f.quotes {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeQuotes) ListByCustomerEmail(_ context.Context, email string) ([]*model.Quote, error) {
	if f.byEmailErr != nil {
		return nil, f.byEmailErr
	}
	var out []*model.Quote
	for _, q := range f.sorted() {
		if repository.NormalizeEmail(q.CustomerEmail) == email {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuotes) ListRecentFirst(_ context.Context, limit int) ([]*model.Quote, error) {
	f.recentLimit = limit
	all := f.sorted()
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeQuotes) GetByIDs(_ context.Context, ids []string) ([]*model.Quote, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	var out []*model.Quote
	for _, id := range ids {
		if q, ok := f.quotes[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuotes) ListAwardedIDs(ctx context.Context, supplierID string) ([]string, error) {
	if f.awarded != nil {
		return f.awarded(ctx, supplierID)
	}
	var out []string
	for _, q := range f.sorted() {
		if q.WinnerID() == supplierID {
			out = append(out, q.ID)
		}
	}
	return out, nil
}

func (f *fakeQuotes) ListAssignedIDs(ctx context.Context, email string) ([]string, error) {
	if f.assigned != nil {
		return f.assigned(ctx, email)
	}
	var out []string
	for _, q := range f.sorted() {
		if q.AssignedSupplierEmail != nil && repository.NormalizeEmail(*q.AssignedSupplierEmail) == repository.NormalizeEmail(email) {
			out = append(out, q.ID)
		}
	}
	return out, nil
}

type fakeParties struct {
	customersByUser  map[string]*model.Customer
	customersByEmail map[string]*model.Customer
	suppliers        map[string]*model.Supplier
	err              error
}

func (f *fakeParties) CustomerByUserID(_ context.Context, userID string) (*model.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.customersByUser[userID]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeParties) CustomerByEmail(_ context.Context, email string) (*model.Customer, error) {
	if c, ok := f.customersByEmail[repository.NormalizeEmail(email)]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeParties) SupplierByUserID(_ context.Context, userID string) (*model.Supplier, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.suppliers[userID]; ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

type fakeSupplierSignals struct {
	bids    map[string][]string
	invites map[string][]string
	bidErr  error
	invErr  error
}

func (f *fakeSupplierSignals) ListBidQuoteIDs(_ context.Context, supplierID string) ([]string, error) {
	if f.bidErr != nil {
		return nil, f.bidErr
	}
	return f.bids[supplierID], nil
}

func (f *fakeSupplierSignals) ListInvitedQuoteIDs(_ context.Context, supplierID string) ([]string, error) {
	if f.invErr != nil {
		return nil, f.invErr
	}
	return f.invites[supplierID], nil
}

type fakeMessages struct {
	rows      []repository.MessageRow
	err       error
	block     bool
	mu        sync.Mutex
	lastLimit int
	calls     int
}

func (f *fakeMessages) Schema() repository.MessageSchema { return repository.MessageSchemaCurrent }

func (f *fakeMessages) ScanNewestFirst(ctx context.Context, ids []string, limit int) ([]repository.MessageRow, error) {
	f.mu.Lock()
	f.lastLimit = limit
	f.calls++
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []repository.MessageRow
	for _, r := range f.rows {
		if _, ok := want[r.QuoteID]; ok {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeAggregator struct {
	rows  []repository.SignalRow
	err   error
	calls int
}

func (f *fakeAggregator) Aggregate(context.Context, []string) ([]repository.SignalRow, error) {
	f.calls++
	return f.rows, f.err
}

type fakeKickoff struct {
	rows []repository.KickoffTaskRow
	err  error
}

func (f *fakeKickoff) ListTasks(context.Context, []string, []string) ([]repository.KickoffTaskRow, error) {
	return f.rows, f.err
}

type fakeUnread struct {
	summaries map[string]repository.UnreadSummary
	err       error
}

func (f *fakeUnread) Summaries(context.Context, repository.UnreadViewer, []string) (map[string]repository.UnreadSummary, error) {
	return f.summaries, f.err
}

// recordingSink 记录诊断调用
type recordingSink struct {
	mu     sync.Mutex
	warned []string
	errors []string
}

func (s *recordingSink) WarnOnce(key, _ string, _ ...zap.Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warned = append(s.warned, key)
}

func (s *recordingSink) Error(msg string, _ ...zap.Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, msg)
}

func (s *recordingSink) warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.warned...)
}

func (s *recordingSink) errorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errors)
}

type fixture struct {
	quotes    *fakeQuotes
	parties   *fakeParties
	signals   *fakeSupplierSignals
	messages  *fakeMessages
	aggregate *fakeAggregator
	kickoff   *fakeKickoff
	unread    *fakeUnread
	sink      *recordingSink
}

func newFixture(qs ...*model.Quote) *fixture {
	return &fixture{
		quotes:    newFakeQuotes(qs...),
		parties:   &fakeParties{},
		signals:   &fakeSupplierSignals{},
		messages:  &fakeMessages{},
		aggregate: &fakeAggregator{err: repository.ErrUnavailable},
		kickoff:   &fakeKickoff{},
		unread:    &fakeUnread{},
		sink:      &recordingSink{},
	}
}

func (f *fixture) service(opts InboxOptions) *inboxService {
	return NewInboxService(InboxDeps{
		Quotes:          f.quotes,
		Parties:         f.parties,
		SupplierSignals: f.signals,
		Messages:        f.messages,
		Aggregator:      f.aggregate,
		Kickoff:         f.kickoff,
		Unread:          f.unread,
		Diagnostics:     f.sink,
	}, opts).(*inboxService)
}
