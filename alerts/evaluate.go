// ABOUTME: Evaluates every dated reminder in a snapshot against its alert policy
// ABOUTME: Produces triggered candidates with deterministic alert ids plus date problems
package alerts

import (
	"time"

	"github.com/harperreed/bannerbook/models"
)

// Alert kinds.
const (
	KindBirthday      = "birthday"
	KindNextContact   = "next_contact"
	KindFollowUp      = "follow_up"
	KindContactEvent  = "contact_event"
	KindCustomerEvent = "customer_event"
	KindTaskDue       = "task_due"
)

// Entity types carried on candidates.
const (
	EntityAccount = "account"
	EntityContact = "contact"
	EntityTask    = "task"
)

// DefaultFollowUpDays is the cadence added to a last-contact date.
const DefaultFollowUpDays = 30

// Policy holds evaluation defaults.
type Policy struct {
	// DefaultAlertDays applies to single-threshold items with no alert days of their own.
	DefaultAlertDays int
	// FollowUpDays is added to a contact's last-contact date unless the contact sets its own.
	FollowUpDays int
	// Location decides the calendar day of stored dates and of "today".
	Location *time.Location
}

func (p Policy) withDefaults() Policy {
	if p.DefaultAlertDays <= 0 {
		p.DefaultAlertDays = DefaultAlertDays
	}
	if p.FollowUpDays <= 0 {
		p.FollowUpDays = DefaultFollowUpDays
	}
	if p.Location == nil {
		p.Location = time.Local
	}
	return p
}

// Candidate is a reminder whose trigger window contains today.
type Candidate struct {
	AlertID    string
	Kind       string
	EntityID   string
	EntityType string
	ContactID  string
	AccountID  string
	Title      string
	DueDate    time.Time
	DaysUntil  int
	Matched    []models.AlertOption
}

// Problem is a reminder that could not be evaluated.
type Problem struct {
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
	Field      string `json:"field"`
	Value      string `json:"value"`
	Err        error  `json:"-"`
}

func (p Problem) Error() string {
	return p.EntityType + " " + p.EntityID + ": " + p.Field + ": " + p.Err.Error()
}

// AlertID derives the dedup identity of one occurrence of a reminder.
func AlertID(kind, entityID string, due time.Time) string {
	return kind + ":" + entityID + ":" + FormatDay(due)
}

// EventEntityID identifies an event nested in an account or contact.
func EventEntityID(ownerID, eventID string) string {
	return ownerID + "/" + eventID
}

type evaluator struct {
	policy     Policy
	today      time.Time
	candidates []Candidate
	problems   []Problem
}

// Evaluate returns every candidate triggered on today's calendar date.
// Items with unparseable dates are reported as problems and never trigger.
func Evaluate(snap *models.Snapshot, today time.Time, policy Policy) ([]Candidate, []Problem) {
	p := policy.withDefaults()
	e := &evaluator{policy: p, today: StartOfDay(today.In(p.Location))}
	if snap == nil {
		return nil, nil
	}

	for i := range snap.Accounts {
		e.account(&snap.Accounts[i])
	}
	for i := range snap.Contacts {
		e.contact(&snap.Contacts[i])
	}
	for i := range snap.Tasks {
		e.task(snap, &snap.Tasks[i])
	}
	return e.candidates, e.problems
}

func (e *evaluator) parse(entityType, entityID, field, value string) (time.Time, bool) {
	t, err := ParseDate(value, e.policy.Location)
	if err != nil {
		e.problems = append(e.problems, Problem{
			EntityType: entityType,
			EntityID:   entityID,
			Field:      field,
			Value:      value,
			Err:        err,
		})
		return time.Time{}, false
	}
	return t, true
}

func (e *evaluator) add(c Candidate) {
	c.DaysUntil = DaysUntil(c.DueDate, e.today)
	c.AlertID = AlertID(c.Kind, c.EntityID, c.DueDate)
	e.candidates = append(e.candidates, c)
}

func (e *evaluator) account(a *models.Account) {
	for _, ev := range a.CustomerEvents {
		if !ev.AlertEnabled || len(ev.AlertOptions) == 0 {
			continue
		}
		entityID := EventEntityID(a.ID, ev.ID)
		date, ok := e.parse(EntityAccount, entityID, "date", ev.Date)
		if !ok {
			continue
		}
		if ev.Recurring {
			date = UpcomingOccurrence(date, e.today, LeadDays(ev.AlertOptions))
		}
		matched := MatchedOptions(DaysUntil(date, e.today), ev.AlertOptions)
		if len(matched) == 0 {
			continue
		}
		e.add(Candidate{
			Kind:       KindCustomerEvent,
			EntityID:   entityID,
			EntityType: EntityAccount,
			AccountID:  a.ID,
			Title:      ev.Title + " (" + a.Name + ")",
			DueDate:    StartOfDay(date),
			Matched:    matched,
		})
	}
}

// scalar evaluates one of a contact's dated fields: the option set when it
// has one, otherwise the single-threshold window.
func (e *evaluator) scalar(days int, opts []models.AlertOption, alertDays int) ([]models.AlertOption, bool) {
	if len(opts) > 0 {
		matched := MatchedOptions(days, opts)
		return matched, len(matched) > 0
	}
	if alertDays <= 0 {
		alertDays = e.policy.DefaultAlertDays
	}
	return nil, WithinThreshold(days, alertDays)
}

// lead is the widest window a dated field can fire in.
func (e *evaluator) lead(opts []models.AlertOption, alertDays int) int {
	if len(opts) > 0 {
		return LeadDays(opts)
	}
	if alertDays <= 0 {
		alertDays = e.policy.DefaultAlertDays
	}
	return alertDays
}

func (e *evaluator) contact(c *models.Contact) {
	name := c.Name()

	if c.BirthdayAlert && c.Birthday != "" {
		if born, ok := e.parse(EntityContact, c.ID, "birthday", c.Birthday); ok {
			due := UpcomingOccurrence(born, e.today, e.lead(c.BirthdayAlertOptions, c.BirthdayAlertDays))
			if matched, ok := e.scalar(DaysUntil(due, e.today), c.BirthdayAlertOptions, c.BirthdayAlertDays); ok {
				e.add(Candidate{Kind: KindBirthday, EntityID: c.ID, EntityType: EntityContact,
					ContactID: c.ID, AccountID: c.AccountID, Title: "Birthday: " + name,
					DueDate: due, Matched: matched})
			}
		}
	}

	if c.NextContactAlert && c.NextContactDate != "" {
		if due, ok := e.parse(EntityContact, c.ID, "nextContactDate", c.NextContactDate); ok {
			if matched, ok := e.scalar(DaysUntil(due, e.today), c.NextContactAlertOptions, c.NextContactAlertDays); ok {
				e.add(Candidate{Kind: KindNextContact, EntityID: c.ID, EntityType: EntityContact,
					ContactID: c.ID, AccountID: c.AccountID, Title: "Scheduled contact: " + name,
					DueDate: StartOfDay(due), Matched: matched})
			}
		}
	}

	if c.LastContactAlert && c.LastContactDate != "" {
		if last, ok := e.parse(EntityContact, c.ID, "lastContactDate", c.LastContactDate); ok {
			cadence := c.FollowUpDays
			if cadence <= 0 {
				cadence = e.policy.FollowUpDays
			}
			due := StartOfDay(last).AddDate(0, 0, cadence)
			if matched, ok := e.scalar(DaysUntil(due, e.today), c.LastContactAlertOptions, c.LastContactAlertDays); ok {
				e.add(Candidate{Kind: KindFollowUp, EntityID: c.ID, EntityType: EntityContact,
					ContactID: c.ID, AccountID: c.AccountID, Title: "Follow up: " + name,
					DueDate: due, Matched: matched})
			}
		}
	}

	for _, ev := range c.Events {
		if !ev.AlertEnabled || len(ev.AlertOptions) == 0 {
			continue
		}
		entityID := EventEntityID(c.ID, ev.ID)
		date, ok := e.parse(EntityContact, entityID, "date", ev.Date)
		if !ok {
			continue
		}
		if ev.Recurring {
			date = UpcomingOccurrence(date, e.today, LeadDays(ev.AlertOptions))
		}
		matched := MatchedOptions(DaysUntil(date, e.today), ev.AlertOptions)
		if len(matched) == 0 {
			continue
		}
		e.add(Candidate{Kind: KindContactEvent, EntityID: entityID, EntityType: EntityContact,
			ContactID: c.ID, AccountID: c.AccountID, Title: ev.Title + " (" + name + ")",
			DueDate: StartOfDay(date), Matched: matched})
	}
}

func (e *evaluator) task(snap *models.Snapshot, t *models.Task) {
	if !t.DueDateAlert || t.DueDate == "" || t.IsClosed() {
		return
	}
	due, ok := e.parse(EntityTask, t.ID, "dueDate", t.DueDate)
	if !ok {
		return
	}
	days := DaysUntil(due, e.today)
	alertDays := t.AlertDays
	if alertDays <= 0 {
		alertDays = e.policy.DefaultAlertDays
	}
	if !WithinThreshold(days, alertDays) {
		return
	}

	c := Candidate{Kind: KindTaskDue, EntityID: t.ID, EntityType: EntityTask,
		Title: "Task due: " + t.Title, DueDate: StartOfDay(due)}
	switch t.RelatedType {
	case models.RelatedAccount:
		c.AccountID = t.RelatedID
	case models.RelatedContact:
		c.ContactID = t.RelatedID
		if contact := snap.ContactByID(t.RelatedID); contact != nil {
			c.AccountID = contact.AccountID
		}
	}
	e.add(c)
}

// EffectiveTaskStatus reports "overdue" for open tasks whose due date has passed.
func EffectiveTaskStatus(t *models.Task, today time.Time, loc *time.Location) string {
	if t.IsClosed() || t.DueDate == "" {
		return t.Status
	}
	due, err := ParseDate(t.DueDate, loc)
	if err != nil {
		return t.Status
	}
	if DaysUntil(due, today.In(due.Location())) < 0 {
		return models.TaskStatusOverdue
	}
	return t.Status
}
