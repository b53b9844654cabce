// ABOUTME: Alert evaluation pass tying the evaluator, ledger, and delivery together
// ABOUTME: A pass either records every delivered alert or none of them
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/harperreed/bannerbook/alerts"
	"github.com/harperreed/bannerbook/ledger"
	"github.com/harperreed/bannerbook/models"
	"github.com/harperreed/bannerbook/notify"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// DefaultRetention is how long ledger entries are kept.
const DefaultRetention = 30 * 24 * time.Hour

// ErrPrune wraps a ledger failure during the prune that ends a pass. The
// pass's alerts were delivered and recorded before it happened.
var ErrPrune = errors.New("failed to prune alert ledger")

// Engine runs evaluation passes. Passes on one Engine never overlap.
type Engine struct {
	mu        sync.Mutex
	ledger    ledger.Ledger
	notifier  notify.Notifier
	policy    alerts.Policy
	retention time.Duration
	now       func() time.Time
	logger    *logrus.Entry
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithPolicy(p alerts.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithRetention sets the ledger retention; zero or negative disables pruning.
func WithRetention(d time.Duration) Option {
	return func(e *Engine) { e.retention = d }
}

func WithLogger(l *logrus.Entry) Option {
	return func(e *Engine) { e.logger = l }
}

func New(l ledger.Ledger, n notify.Notifier, opts ...Option) *Engine {
	e := &Engine{
		ledger:    l,
		notifier:  n,
		retention: DefaultRetention,
		now:       time.Now,
		logger:    logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.notifier == nil {
		e.notifier = notify.Discard
	}
	return e
}

// Report summarizes one pass.
type Report struct {
	RunID  string `json:"runId"`
	Today  string `json:"today"`
	DryRun bool   `json:"dryRun"`
	// Alerts were delivered (or, in a dry run, would be).
	Alerts []models.Notification `json:"alerts"`
	// AlreadySent counts triggered alerts the ledger suppressed.
	AlreadySent int              `json:"alreadySent"`
	Pruned      int              `json:"pruned"`
	Problems    []alerts.Problem `json:"problems,omitempty"`
}

// Run evaluates snap, delivers every eligible alert, and records them.
// Ledger and delivery failures abort the pass before anything is recorded.
// A failed prune afterwards returns the completed report along with an
// error wrapping ErrPrune.
func (e *Engine) Run(ctx context.Context, snap *models.Snapshot) (*Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	report, err := e.eligible(ctx, snap, false)
	if err != nil {
		return nil, err
	}
	log := e.logger.WithField("run_id", report.RunID)

	sentAt := e.now().UTC()
	records := make([]models.SentAlertRecord, 0, len(report.Alerts))
	for _, n := range report.Alerts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.notifier.Notify(ctx, n); err != nil {
			log.WithError(err).WithField("alert_id", n.AlertID).Error("Alert delivery failed, pass aborted")
			return nil, fmt.Errorf("failed to deliver %s: %w", n.AlertID, err)
		}
		records = append(records, models.SentAlertRecord{
			AlertID:   n.AlertID,
			AlertType: n.AlertType,
			EntityID:  n.EntityID,
			ContactID: n.ContactID,
			SentAt:    sentAt,
			DueDate:   n.DueDate,
		})
	}

	if len(records) > 0 {
		if err := e.ledger.RecordBatch(ctx, records); err != nil {
			return nil, fmt.Errorf("failed to record sent alerts: %w", err)
		}
	}

	if e.retention > 0 {
		pruned, err := e.ledger.Prune(ctx, e.retention, sentAt)
		if err != nil {
			log.WithError(err).Error("Failed to prune alert ledger")
			return report, fmt.Errorf("%w: %w", ErrPrune, err)
		}
		report.Pruned = pruned
	}

	log.WithFields(logrus.Fields{
		"delivered":    len(report.Alerts),
		"already_sent": report.AlreadySent,
		"problems":     len(report.Problems),
		"pruned":       report.Pruned,
	}).Info("Alert pass complete")
	return report, nil
}

// Preview reports what Run would deliver without delivering or recording.
func (e *Engine) Preview(ctx context.Context, snap *models.Snapshot) (*Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.eligible(ctx, snap, true)
}

func (e *Engine) eligible(ctx context.Context, snap *models.Snapshot, dryRun bool) (*Report, error) {
	now := e.now()
	loc := e.policy.Location
	if loc == nil {
		loc = time.Local
	}
	report := &Report{
		RunID:  ulid.Make().String(),
		Today:  alerts.FormatDay(now.In(loc)),
		DryRun: dryRun,
		Alerts: []models.Notification{},
	}

	candidates, problems := alerts.Evaluate(snap, now, e.policy)
	report.Problems = problems
	for _, p := range problems {
		e.logger.WithFields(logrus.Fields{
			"entity_id": p.EntityID,
			"field":     p.Field,
			"value":     p.Value,
		}).Warn("Skipping reminder with unparseable date")
	}

	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if seen[c.AlertID] {
			continue
		}
		seen[c.AlertID] = true

		ok, err := e.ledger.ShouldSend(ctx, c.AlertID)
		if err != nil {
			return nil, fmt.Errorf("failed to check ledger for %s: %w", c.AlertID, err)
		}
		if !ok {
			report.AlreadySent++
			continue
		}
		report.Alerts = append(report.Alerts, notification(c, snap, report.RunID))
	}
	return report, nil
}

func notification(c alerts.Candidate, snap *models.Snapshot, runID string) models.Notification {
	n := models.Notification{
		AlertID:        c.AlertID,
		AlertType:      c.Kind,
		EntityID:       c.EntityID,
		EntityType:     c.EntityType,
		ContactID:      c.ContactID,
		AccountID:      c.AccountID,
		Title:          c.Title,
		DueDate:        alerts.FormatDay(c.DueDate),
		DaysUntil:      c.DaysUntil,
		MatchedOptions: c.Matched,
		RunID:          runID,
	}

	ctx := map[string]string{}
	if a := snap.AccountByID(c.AccountID); a != nil {
		ctx["accountName"] = a.Name
	}
	if ct := snap.ContactByID(c.ContactID); ct != nil {
		ctx["contactName"] = ct.Name()
		if ct.Email != "" {
			ctx["contactEmail"] = ct.Email
		}
	}
	if len(ctx) > 0 {
		n.Context = ctx
	}
	return n
}
