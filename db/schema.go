// ABOUTME: Ledger schema definitions
// ABOUTME: Creates the sent_alerts table and its indexes
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS sent_alerts (
	alert_id TEXT PRIMARY KEY,
	alert_type TEXT NOT NULL,
	entity_id TEXT,
	contact_id TEXT,
	due_date TEXT NOT NULL,
	sent_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sent_alerts_sent_at ON sent_alerts(sent_at);
CREATE INDEX IF NOT EXISTS idx_sent_alerts_contact ON sent_alerts(contact_id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
