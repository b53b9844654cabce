// ABOUTME: Sent-alert ledger contract shared by the in-memory, KV, and SQLite backends
// ABOUTME: An alert id present in the ledger is never delivered again
package ledger

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/harperreed/bannerbook/models"
)

var ErrEmptyAlertID = errors.New("alert id is required")

// Ledger records which alerts have already been delivered.
type Ledger interface {
	// ShouldSend reports whether no record exists for alertID.
	ShouldSend(ctx context.Context, alertID string) (bool, error)
	// Record appends rec unless its id is already present. It reports
	// whether a record was written.
	Record(ctx context.Context, rec models.SentAlertRecord) (bool, error)
	// RecordBatch appends every record whose id is not yet present. Either
	// all new records are written or none are.
	RecordBatch(ctx context.Context, recs []models.SentAlertRecord) error
	// Prune removes records sent before now minus retention and returns the
	// number removed.
	Prune(ctx context.Context, retention time.Duration, now time.Time) (int, error)
	// List returns all records, newest first.
	List(ctx context.Context) ([]models.SentAlertRecord, error)
}

func validate(recs []models.SentAlertRecord) error {
	for _, r := range recs {
		if r.AlertID == "" {
			return ErrEmptyAlertID
		}
	}
	return nil
}

// merge appends recs to existing, skipping ids already present in either.
func merge(existing, recs []models.SentAlertRecord) ([]models.SentAlertRecord, int) {
	seen := make(map[string]bool, len(existing)+len(recs))
	for _, r := range existing {
		seen[r.AlertID] = true
	}
	added := 0
	for _, r := range recs {
		if seen[r.AlertID] {
			continue
		}
		seen[r.AlertID] = true
		existing = append(existing, r)
		added++
	}
	return existing, added
}

// prune keeps records sent at or after the cutoff.
func prune(recs []models.SentAlertRecord, cutoff time.Time) ([]models.SentAlertRecord, int) {
	kept := recs[:0:0]
	for _, r := range recs {
		if r.SentAt.Before(cutoff) {
			continue
		}
		kept = append(kept, r)
	}
	return kept, len(recs) - len(kept)
}

func newestFirst(recs []models.SentAlertRecord) []models.SentAlertRecord {
	out := make([]models.SentAlertRecord, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SentAt.After(out[j].SentAt)
	})
	return out
}
