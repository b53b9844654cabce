// ABOUTME: Tests for the SQLite ledger repository
// ABOUTME: Runs the shared ledger contract plus transaction rollback behavior
package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/bannerbook/ledger"
	"github.com/harperreed/bannerbook/ledger/ledgertest"
	"github.com/harperreed/bannerbook/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *LedgerRepository {
	t.Helper()
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewLedgerRepository(db)
}

func TestLedgerRepositoryContract(t *testing.T) {
	ledgertest.Run(t, func(t *testing.T) ledger.Ledger { return newTestRepository(t) })
}

func TestRecordBatchRollsBackOnCancel(t *testing.T) {
	repo := newTestRepository(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.RecordBatch(ctx, []models.SentAlertRecord{{AlertID: "a", AlertType: "birthday", SentAt: time.Now()}})
	assert.Error(t, err)

	ok, err := repo.ShouldSend(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestListPreservesFields(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	sent := time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)

	_, err := repo.Record(ctx, models.SentAlertRecord{
		AlertID:   "task_due:T1:2024-03-12",
		AlertType: "task_due",
		EntityID:  "T1",
		SentAt:    sent,
		DueDate:   "2024-03-12",
	})
	require.NoError(t, err)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "T1", all[0].EntityID)
	assert.Empty(t, all[0].ContactID)
	assert.Equal(t, "2024-03-12", all[0].DueDate)
	assert.True(t, sent.Equal(all[0].SentAt))
}
