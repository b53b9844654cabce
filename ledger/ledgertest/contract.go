// ABOUTME: Shared behavioral tests every Ledger backend must pass
// ABOUTME: Backends call Run from their own package tests with a fresh-ledger factory
package ledgertest

import (
	"context"
	"testing"
	"time"

	"github.com/harperreed/bannerbook/ledger"
	"github.com/harperreed/bannerbook/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises newLedger against the ledger contract.
func Run(t *testing.T, newLedger func(t *testing.T) ledger.Ledger) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	rec := func(id string, sentAt time.Time) models.SentAlertRecord {
		return models.SentAlertRecord{
			AlertID:   id,
			AlertType: "birthday",
			EntityID:  "C1",
			ContactID: "C1",
			SentAt:    sentAt,
			DueDate:   "2024-03-15",
		}
	}

	t.Run("record is idempotent", func(t *testing.T) {
		l := newLedger(t)

		ok, err := l.ShouldSend(ctx, "birthday:C1:2024-03-15")
		require.NoError(t, err)
		assert.True(t, ok)

		added, err := l.Record(ctx, rec("birthday:C1:2024-03-15", now))
		require.NoError(t, err)
		assert.True(t, added)

		added, err = l.Record(ctx, rec("birthday:C1:2024-03-15", now.Add(time.Hour)))
		require.NoError(t, err)
		assert.False(t, added)

		ok, err = l.ShouldSend(ctx, "birthday:C1:2024-03-15")
		require.NoError(t, err)
		assert.False(t, ok)

		all, err := l.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.True(t, now.Equal(all[0].SentAt))
	})

	t.Run("batch skips known ids", func(t *testing.T) {
		l := newLedger(t)
		_, err := l.Record(ctx, rec("a", now))
		require.NoError(t, err)

		err = l.RecordBatch(ctx, []models.SentAlertRecord{
			rec("a", now), rec("b", now), rec("b", now), rec("c", now),
		})
		require.NoError(t, err)

		all, err := l.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("batch with empty id writes nothing", func(t *testing.T) {
		l := newLedger(t)
		err := l.RecordBatch(ctx, []models.SentAlertRecord{rec("a", now), rec("", now)})
		assert.ErrorIs(t, err, ledger.ErrEmptyAlertID)

		ok, err := l.ShouldSend(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("prune drops old entries", func(t *testing.T) {
		l := newLedger(t)
		require.NoError(t, l.RecordBatch(ctx, []models.SentAlertRecord{
			rec("old", now.AddDate(0, 0, -40)),
			rec("edge", now.AddDate(0, 0, -30)),
			rec("new", now.AddDate(0, 0, -1)),
		}))

		removed, err := l.Prune(ctx, 30*24*time.Hour, now)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		all, err := l.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "new", all[0].AlertID)
		assert.Equal(t, "edge", all[1].AlertID)

		ok, err := l.ShouldSend(ctx, "old")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("empty ledger", func(t *testing.T) {
		l := newLedger(t)
		all, err := l.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		removed, err := l.Prune(ctx, time.Hour, now)
		require.NoError(t, err)
		assert.Zero(t, removed)
	})
}
