// ABOUTME: Runs the ledger contract against the memory and KV backends
// ABOUTME: Also checks that a failed write leaves the KV document untouched
package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harperreed/bannerbook/charm"
	"github.com/harperreed/bannerbook/ledger"
	"github.com/harperreed/bannerbook/ledger/ledgertest"
	"github.com/harperreed/bannerbook/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedger(t *testing.T) {
	ledgertest.Run(t, func(t *testing.T) ledger.Ledger { return ledger.NewMemory() })
}

func TestKVLedger(t *testing.T) {
	ledgertest.Run(t, func(t *testing.T) ledger.Ledger {
		return ledger.NewKV(charm.NewTestClient(t))
	})
}

func TestMemoryLedgerFailure(t *testing.T) {
	boom := errors.New("store offline")
	m := ledger.NewMemory()
	m.Err = boom

	_, err := m.ShouldSend(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, m.RecordBatch(context.Background(), nil), boom)
}

type failingKV struct {
	data   map[string][]byte
	setErr error
}

func (f *failingKV) Get(key []byte) ([]byte, error) {
	v, ok := f.data[string(key)]
	if !ok {
		return nil, charm.ErrKeyNotFound
	}
	return v, nil
}

func (f *failingKV) Set(key, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.data[string(key)] = value
	return nil
}

func TestKVLedgerWriteFailureRecordsNothing(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{data: map[string][]byte{}}
	l := ledger.NewKV(kv)
	require.NoError(t, l.RecordBatch(ctx, []models.SentAlertRecord{{AlertID: "a", SentAt: time.Now()}}))

	kv.setErr = errors.New("disk full")
	err := l.RecordBatch(ctx, []models.SentAlertRecord{{AlertID: "b"}, {AlertID: "c"}})
	assert.ErrorIs(t, err, kv.setErr)

	kv.setErr = nil
	all, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "a", all[0].AlertID)
}
