// ABOUTME: SQLite-backed sent-alert ledger
// ABOUTME: Batches are written in one transaction with INSERT OR IGNORE
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/bannerbook/ledger"
	"github.com/harperreed/bannerbook/models"
)

// LedgerRepository stores sent alerts in the sent_alerts table.
type LedgerRepository struct {
	db *sql.DB
}

var _ ledger.Ledger = (*LedgerRepository)(nil)

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) ShouldSend(ctx context.Context, alertID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sent_alerts WHERE alert_id = ?", alertID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query ledger: %w", err)
	}
	return n == 0, nil
}

func (r *LedgerRepository) Record(ctx context.Context, rec models.SentAlertRecord) (bool, error) {
	if rec.AlertID == "" {
		return false, ledger.ErrEmptyAlertID
	}
	res, err := r.db.ExecContext(ctx, insertRecord, recordArgs(rec)...)
	if err != nil {
		return false, fmt.Errorf("failed to record alert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

const insertRecord = `INSERT OR IGNORE INTO sent_alerts
	(alert_id, alert_type, entity_id, contact_id, due_date, sent_at)
	VALUES (?, ?, ?, ?, ?, ?)`

func recordArgs(rec models.SentAlertRecord) []any {
	return []any{rec.AlertID, rec.AlertType, rec.EntityID, rec.ContactID, rec.DueDate, rec.SentAt.UnixNano()}
}

func (r *LedgerRepository) RecordBatch(ctx context.Context, recs []models.SentAlertRecord) error {
	for _, rec := range recs {
		if rec.AlertID == "" {
			return ledger.ErrEmptyAlertID
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertRecord)
	if err != nil {
		return fmt.Errorf("failed to prepare ledger insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx, recordArgs(rec)...); err != nil {
			return fmt.Errorf("failed to record alert %s: %w", rec.AlertID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger transaction: %w", err)
	}
	return nil
}

func (r *LedgerRepository) Prune(ctx context.Context, retention time.Duration, now time.Time) (int, error) {
	cutoff := now.Add(-retention).UnixNano()
	res, err := r.db.ExecContext(ctx, "DELETE FROM sent_alerts WHERE sent_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune ledger: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *LedgerRepository) List(ctx context.Context) ([]models.SentAlertRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT alert_id, alert_type, entity_id, contact_id, due_date, sent_at
		FROM sent_alerts ORDER BY sent_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.SentAlertRecord
	for rows.Next() {
		var (
			rec       models.SentAlertRecord
			entityID  sql.NullString
			contactID sql.NullString
			sentAt    int64
		)
		if err := rows.Scan(&rec.AlertID, &rec.AlertType, &entityID, &contactID, &rec.DueDate, &sentAt); err != nil {
			return nil, err
		}
		rec.EntityID = entityID.String
		rec.ContactID = contactID.String
		rec.SentAt = time.Unix(0, sentAt).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}
