// ABOUTME: In-memory ledger for tests and dry runs
// ABOUTME: Can be primed with a failure to exercise abort paths
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/harperreed/bannerbook/models"
)

// Memory is a Ledger held entirely in process memory.
type Memory struct {
	mu      sync.Mutex
	records []models.SentAlertRecord

	// Err, when set, is returned from every call.
	Err error
}

// NewMemory returns a ledger seeded with recs.
func NewMemory(recs ...models.SentAlertRecord) *Memory {
	m := &Memory{}
	m.records, _ = merge(nil, recs)
	return m
}

func (m *Memory) ShouldSend(_ context.Context, alertID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	for _, r := range m.records {
		if r.AlertID == alertID {
			return false, nil
		}
	}
	return true, nil
}

func (m *Memory) Record(_ context.Context, rec models.SentAlertRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	if err := validate([]models.SentAlertRecord{rec}); err != nil {
		return false, err
	}
	var added int
	m.records, added = merge(m.records, []models.SentAlertRecord{rec})
	return added == 1, nil
}

func (m *Memory) RecordBatch(_ context.Context, recs []models.SentAlertRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if err := validate(recs); err != nil {
		return err
	}
	m.records, _ = merge(m.records, recs)
	return nil
}

func (m *Memory) Prune(_ context.Context, retention time.Duration, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	var removed int
	m.records, removed = prune(m.records, now.Add(-retention))
	return removed, nil
}

func (m *Memory) List(_ context.Context) ([]models.SentAlertRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return newestFirst(m.records), nil
}
