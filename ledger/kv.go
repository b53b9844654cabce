// ABOUTME: Ledger stored as a single JSON document in the charm KV store
// ABOUTME: Every mutation rewrites the document in one Set, so batches land whole or not at all
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/harperreed/bannerbook/charm"
	"github.com/harperreed/bannerbook/models"
)

// DocumentKey is the KV key holding the ledger.
const DocumentKey = "sent_alerts"

// KV is the subset of the charm client the ledger needs.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

// KVLedger persists the ledger through a KV collaborator.
type KVLedger struct {
	mu sync.Mutex
	kv KV
}

// NewKV returns a ledger over kv.
func NewKV(kv KV) *KVLedger {
	return &KVLedger{kv: kv}
}

func (l *KVLedger) load() ([]models.SentAlertRecord, error) {
	data, err := l.kv.Get([]byte(DocumentKey))
	if errors.Is(err, charm.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	var recs []models.SentAlertRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode ledger: %w", err)
	}
	return recs, nil
}

func (l *KVLedger) save(recs []models.SentAlertRecord) error {
	if recs == nil {
		recs = []models.SentAlertRecord{}
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	if err := l.kv.Set([]byte(DocumentKey), data); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	return nil
}

func (l *KVLedger) ShouldSend(_ context.Context, alertID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	recs, err := l.load()
	if err != nil {
		return false, err
	}
	for _, r := range recs {
		if r.AlertID == alertID {
			return false, nil
		}
	}
	return true, nil
}

func (l *KVLedger) Record(_ context.Context, rec models.SentAlertRecord) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	added, err := l.append([]models.SentAlertRecord{rec})
	return added == 1, err
}

func (l *KVLedger) RecordBatch(_ context.Context, recs []models.SentAlertRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.append(recs)
	return err
}

func (l *KVLedger) append(recs []models.SentAlertRecord) (int, error) {
	if err := validate(recs); err != nil {
		return 0, err
	}
	existing, err := l.load()
	if err != nil {
		return 0, err
	}
	merged, added := merge(existing, recs)
	if added == 0 {
		return 0, nil
	}
	if err := l.save(merged); err != nil {
		return 0, err
	}
	return added, nil
}

func (l *KVLedger) Prune(_ context.Context, retention time.Duration, now time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	recs, err := l.load()
	if err != nil {
		return 0, err
	}
	kept, removed := prune(recs, now.Add(-retention))
	if removed == 0 {
		return 0, nil
	}
	if err := l.save(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

func (l *KVLedger) List(_ context.Context) ([]models.SentAlertRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	recs, err := l.load()
	if err != nil {
		return nil, err
	}
	return newestFirst(recs), nil
}
