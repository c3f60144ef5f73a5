package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/quote-inbox/internal/model"
	"github.com/d60-Lab/quote-inbox/internal/repository/repotest"
)

func setupQuotes(t *testing.T) (QuoteRepository, PartyRepository) {
	t.Helper()
	db := repotest.NewDB(t, repotest.FullSchema...)
	base := repotest.At(t, "2025-01-01T00:00:00Z")
	repotest.Create(t, db,
		&model.Quote{ID: "q1", Status: "open", CustomerEmail: "Buyer@Acme.io", UpdatedAt: base.Add(1 * time.Hour)},
		&model.Quote{ID: "q2", Status: "won", CustomerEmail: "buyer@acme.io", AwardedSupplierID: repotest.Ptr("s1"), UpdatedAt: base.Add(3 * time.Hour)},
		&model.Quote{ID: "q3", Status: "open", CustomerEmail: "other@corp.io", AssignedSupplierEmail: repotest.Ptr("Sales@Mill.io"), UpdatedAt: base.Add(2 * time.Hour)},
		&model.Customer{ID: "c1", UserID: "u-cust", Email: "buyer@acme.io"},
		&model.Supplier{ID: "s1", UserID: "u-sup", PrimaryEmail: "sales@mill.io"},
	)
	caps := NewNegotiator(db, nil).Capabilities(context.Background())
	return NewQuoteRepository(db, caps), NewPartyRepository(db)
}

func quoteIDs(qs []*model.Quote) []string {
	ids := make([]string, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	return ids
}

func TestQuoteRepository_ListByCustomerEmail(t *testing.T) {
	repo, _ := setupQuotes(t)
	ctx := context.Background()

	qs, err := repo.ListByCustomerEmail(ctx, "  BUYER@acme.io ")
	require.NoError(t, err)
	assert.Equal(t, []string{"q2", "q1"}, quoteIDs(qs))
	assert.Equal(t, "s1", qs[0].WinnerID())

	qs, err = repo.ListByCustomerEmail(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, qs)
}

func TestQuoteRepository_ListRecentFirst(t *testing.T) {
	repo, _ := setupQuotes(t)

	qs, err := repo.ListRecentFirst(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"q2", "q3"}, quoteIDs(qs))
}

func TestQuoteRepository_SupplierSignals(t *testing.T) {
	repo, _ := setupQuotes(t)
	ctx := context.Background()

	awarded, err := repo.ListAwardedIDs(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"q2"}, awarded)

	assigned, err := repo.ListAssignedIDs(ctx, "sales@MILL.io")
	require.NoError(t, err)
	assert.Equal(t, []string{"q3"}, assigned)

	got, err := repo.GetByIDs(ctx, []string{"q3", "missing"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sales@mill.io", NormalizeEmail(*got[0].AssignedSupplierEmail))
}

func TestQuoteRepository_MissingOptionalColumns(t *testing.T) {
	db := repotest.NewDB(t)
	repotest.Exec(t, db,
		`CREATE TABLE quotes (id text PRIMARY KEY, status text, customer_email text, title text, file_name text, created_at datetime, updated_at datetime)`,
		`INSERT INTO quotes (id, status, customer_email, title, file_name, created_at, updated_at) VALUES ('q1', 'open', 'a@b.io', 'Part', '', '2025-01-01 00:00:00+00:00', '2025-01-01 00:00:00+00:00')`,
	)
	repo := NewQuoteRepository(db, NewNegotiator(db, nil).Capabilities(context.Background()))
	ctx := context.Background()

	_, err := repo.ListAwardedIDs(ctx, "s1")
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = repo.ListAssignedIDs(ctx, "x@y.io")
	assert.ErrorIs(t, err, ErrUnavailable)

	qs, err := repo.ListByCustomerEmail(ctx, "a@b.io")
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Nil(t, qs[0].AwardedSupplierID)
	assert.Nil(t, qs[0].KickoffCompletedAt)
	assert.Equal(t, "Part", qs[0].DisplayLabel())
}

func TestPartyRepository(t *testing.T) {
	_, parties := setupQuotes(t)
	ctx := context.Background()

	c, err := parties.CustomerByUserID(ctx, "u-cust")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)

	_, err = parties.CustomerByUserID(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	c, err = parties.CustomerByEmail(ctx, " Buyer@ACME.io")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)

	_, err = parties.CustomerByEmail(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)

	s, err := parties.SupplierByUserID(ctx, "u-sup")
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)
}
