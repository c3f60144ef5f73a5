package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/quote-inbox/internal/model"
	"github.com/d60-Lab/quote-inbox/internal/repository/repotest"
)

func completedCount(rows []KickoffTaskRow) int {
	n := 0
	for _, r := range rows {
		if r.Completed {
			n++
		}
	}
	return n
}

func TestKickoffRepository_FlagAndTimestamp(t *testing.T) {
	db := repotest.NewDB(t, &model.KickoffTask{})
	done := repotest.At(t, "2025-01-10T10:00:00Z")
	repotest.Create(t, db,
		&model.KickoffTask{ID: "t1", QuoteID: "q1", SupplierID: "s1", TaskKey: "po", Completed: true},
		&model.KickoffTask{ID: "t2", QuoteID: "q1", SupplierID: "s1", TaskKey: "drawings", CompletedAt: &done},
		&model.KickoffTask{ID: "t3", QuoteID: "q1", SupplierID: "s1", TaskKey: "schedule"},
		&model.KickoffTask{ID: "t4", QuoteID: "q1", SupplierID: "s2", TaskKey: "po", Completed: true},
	)
	repo := NewKickoffRepository(db, NewNegotiator(db, nil).Capabilities(context.Background()))

	rows, err := repo.ListTasks(context.Background(), []string{"q1"}, []string{"s1"})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, 2, completedCount(rows))

	rows, err = repo.ListTasks(context.Background(), []string{"q1"}, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestKickoffRepository_TimestampOnly(t *testing.T) {
	db := repotest.NewDB(t)
	repotest.Exec(t, db,
		`CREATE TABLE quote_kickoff_tasks (id text PRIMARY KEY, quote_id text, supplier_id text, task_key text, completed_at datetime)`,
		`INSERT INTO quote_kickoff_tasks VALUES ('t1', 'q1', 's1', 'po', '2025-01-10 10:00:00+00:00')`,
		`INSERT INTO quote_kickoff_tasks VALUES ('t2', 'q1', 's1', 'schedule', NULL)`,
	)
	caps := NewNegotiator(db, nil).Capabilities(context.Background())
	require.Equal(t, KickoffTimestamp, caps.Kickoff)

	rows, err := NewKickoffRepository(db, caps).ListTasks(context.Background(), []string{"q1"}, []string{"s1"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 1, completedCount(rows))
}

func TestKickoffRepository_Unsupported(t *testing.T) {
	repo := NewKickoffRepository(nil, Capabilities{})
	_, err := repo.ListTasks(context.Background(), []string{"q1"}, []string{"s1"})
	assert.ErrorIs(t, err, ErrUnavailable)
}
