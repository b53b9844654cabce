// ABOUTME: Tests for day arithmetic, alert option windows, and snapshot evaluation
// ABOUTME: Includes the birthday and day-boundary scenarios the reminder feed depends on
package alerts

import (
	"testing"
	"time"

	"github.com/harperreed/bannerbook/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var utcPolicy = Policy{Location: time.UTC}

func TestDaysUntilIgnoresTimeOfDay(t *testing.T) {
	today := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysUntil(time.Date(2024, 3, 10, 0, 1, 0, 0, time.UTC), today))
	assert.Equal(t, 1, DaysUntil(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), today))
	assert.Equal(t, -1, DaysUntil(time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC), today))

	morning := time.Date(2024, 3, 10, 0, 0, 1, 0, time.UTC)
	assert.Equal(t, 0, DaysUntil(today, morning))
}

func TestDaysUntilAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	today := time.Date(2024, 3, 9, 22, 0, 0, 0, ny)
	target := time.Date(2024, 3, 11, 1, 0, 0, 0, ny)
	assert.Equal(t, 2, DaysUntil(target, today))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("1990-03-15", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, day(1990, 3, 15), got)

	got, err = ParseDate("2024-06-01T15:30:00Z", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", FormatDay(got))

	_, err = ParseDate("not a date", time.UTC)
	assert.Error(t, err)
	_, err = ParseDate("", time.UTC)
	assert.Error(t, err)
}

func TestAnnualOccurrence(t *testing.T) {
	today := day(2024, 3, 10)
	assert.Equal(t, day(2024, 3, 15), AnnualOccurrence(day(1990, 3, 15), today))
	// leap day in a non-leap year
	assert.Equal(t, day(2023, 3, 1), AnnualOccurrence(day(2000, 2, 29), day(2023, 1, 1)))
}

func TestOptionWindows(t *testing.T) {
	tests := []struct {
		opt  models.AlertOption
		days int
		want bool
	}{
		{models.AlertSameDay, 0, true},
		{models.AlertSameDay, 1, false},
		{models.AlertDayBefore, 0, true},
		{models.AlertDayBefore, 1, true},
		{models.AlertDayBefore, 2, false},
		{models.AlertWeekBefore, 0, true},
		{models.AlertWeekBefore, 7, true},
		{models.AlertWeekBefore, 8, false},
		{models.AlertWeekBefore, -1, false},
		{models.AlertSameDay, -1, false},
		{"monthly", 0, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, OptionTriggered(tt.opt, tt.days), "%s at %d", tt.opt, tt.days)
	}
}

func TestAllOptionsOverlapOnTheDay(t *testing.T) {
	all := []models.AlertOption{models.AlertSameDay, models.AlertDayBefore, models.AlertWeekBefore}
	for _, o := range all {
		assert.True(t, IsTriggered(0, []models.AlertOption{o}), string(o))
	}
	assert.Equal(t, all, MatchedOptions(0, all))
	assert.Equal(t, []models.AlertOption{models.AlertWeekBefore}, MatchedOptions(3, all))
}

func TestEmptyOptionsNeverTrigger(t *testing.T) {
	assert.False(t, IsTriggered(0, nil))
	assert.False(t, IsTriggered(0, []models.AlertOption{}))
}

func TestWithinThreshold(t *testing.T) {
	assert.True(t, WithinThreshold(0, 0))
	assert.True(t, WithinThreshold(7, 0))
	assert.False(t, WithinThreshold(8, 0))
	assert.True(t, WithinThreshold(14, 14))
	assert.False(t, WithinThreshold(-1, 30))
}

func TestBirthdayScenario(t *testing.T) {
	snap := &models.Snapshot{
		Accounts: []models.Account{{ID: "A1", Name: "Acme"}},
		Contacts: []models.Contact{{
			ID: "C1", AccountID: "A1", FirstName: "Ann",
			Birthday: "1990-03-15", BirthdayAlert: true,
		}},
	}

	got, problems := Evaluate(snap, day(2024, 3, 10), utcPolicy)
	assert.Empty(t, problems)
	require.Len(t, got, 1)
	assert.Equal(t, KindBirthday, got[0].Kind)
	assert.Equal(t, 5, got[0].DaysUntil)
	assert.Equal(t, "birthday:C1:2024-03-15", got[0].AlertID)
	assert.Equal(t, "A1", got[0].AccountID)

	got, _ = Evaluate(snap, day(2024, 3, 16), utcPolicy)
	assert.Empty(t, got)
}

func TestBirthdayNextYearGetsFreshID(t *testing.T) {
	snap := &models.Snapshot{Contacts: []models.Contact{{
		ID: "C1", AccountID: "A1", FirstName: "Ann",
		Birthday: "1990-03-15", BirthdayAlert: true,
		BirthdayAlertOptions: []models.AlertOption{models.AlertSameDay},
	}}}

	y1, _ := Evaluate(snap, day(2024, 3, 15), utcPolicy)
	y2, _ := Evaluate(snap, day(2025, 3, 15), utcPolicy)
	require.Len(t, y1, 1)
	require.Len(t, y2, 1)
	assert.NotEqual(t, y1[0].AlertID, y2[0].AlertID)
	assert.Equal(t, []models.AlertOption{models.AlertSameDay}, y1[0].Matched)

	none, _ := Evaluate(snap, day(2024, 3, 14), utcPolicy)
	assert.Empty(t, none)
}

func TestBirthdayWindowCrossesYearEnd(t *testing.T) {
	snap := &models.Snapshot{Contacts: []models.Contact{{
		ID: "C1", AccountID: "A1", FirstName: "Ann",
		Birthday: "1990-01-03", BirthdayAlert: true,
		BirthdayAlertOptions: []models.AlertOption{models.AlertWeekBefore},
	}}}

	for _, today := range []time.Time{day(2024, 12, 28), day(2024, 12, 31), day(2025, 1, 1)} {
		got, _ := Evaluate(snap, today, utcPolicy)
		require.Len(t, got, 1, today.Format("2006-01-02"))
		assert.Equal(t, "birthday:C1:2025-01-03", got[0].AlertID)
	}

	got, _ := Evaluate(snap, day(2024, 12, 28), utcPolicy)
	assert.Equal(t, 6, got[0].DaysUntil)

	early, _ := Evaluate(snap, day(2024, 12, 26), utcPolicy)
	assert.Empty(t, early)
}

func TestUpcomingOccurrence(t *testing.T) {
	jan3 := day(1990, 1, 3)

	assert.Equal(t, day(2025, 1, 3), UpcomingOccurrence(jan3, day(2024, 12, 28), 7))
	assert.Equal(t, day(2024, 1, 3), UpcomingOccurrence(jan3, day(2024, 1, 2), 7))
	// Outside the lead window the passed date stands.
	assert.Equal(t, day(2024, 1, 3), UpcomingOccurrence(jan3, day(2024, 12, 20), 7))
	assert.Equal(t, day(2024, 3, 15), UpcomingOccurrence(day(1990, 3, 15), day(2024, 3, 16), 7))
}

func TestRecurringEventCrossesYearEnd(t *testing.T) {
	snap := &models.Snapshot{Accounts: []models.Account{{
		ID: "A1", Name: "Acme",
		CustomerEvents: []models.CustomerEvent{{
			ID: "R1", Title: "Planogram reset", Date: "2020-01-02", Recurring: true,
			AlertEnabled: true, AlertOptions: []models.AlertOption{models.AlertDayBefore},
		}},
	}}}

	got, _ := Evaluate(snap, day(2024, 1, 1), utcPolicy)
	require.Len(t, got, 1)
	assert.Equal(t, "customer_event:A1/R1:2024-01-02", got[0].AlertID)

	got, _ = Evaluate(snap, day(2024, 12, 31), utcPolicy)
	assert.Empty(t, got)

	got, _ = Evaluate(snap, day(2025, 1, 1), utcPolicy)
	require.Len(t, got, 1)
	assert.Equal(t, "customer_event:A1/R1:2025-01-02", got[0].AlertID)
}

func TestLeadDays(t *testing.T) {
	assert.Equal(t, 0, LeadDays(nil))
	assert.Equal(t, 1, LeadDays([]models.AlertOption{models.AlertSameDay, models.AlertDayBefore}))
	assert.Equal(t, 7, LeadDays([]models.AlertOption{models.AlertWeekBefore, "bogus"}))
}

func TestContactEventsRequireEnabledOptions(t *testing.T) {
	snap := &models.Snapshot{Contacts: []models.Contact{{
		ID: "C1", AccountID: "A1", FirstName: "Ann",
		Events: []models.ContactEvent{
			{ID: "E1", Title: "Line review", Date: "2024-03-11", AlertEnabled: true,
				AlertOptions: []models.AlertOption{models.AlertDayBefore}},
			{ID: "E2", Title: "Disabled", Date: "2024-03-11", AlertEnabled: false,
				AlertOptions: []models.AlertOption{models.AlertDayBefore}},
			{ID: "E3", Title: "No options", Date: "2024-03-11", AlertEnabled: true},
			{ID: "E4", Title: "Broken", Date: "03/11/2024", AlertEnabled: true,
				AlertOptions: []models.AlertOption{models.AlertWeekBefore}},
		},
	}}}

	got, problems := Evaluate(snap, day(2024, 3, 10), utcPolicy)
	require.Len(t, got, 1)
	assert.Equal(t, "contact_event:C1/E1:2024-03-11", got[0].AlertID)
	assert.Equal(t, 1, got[0].DaysUntil)

	require.Len(t, problems, 1)
	assert.Equal(t, "C1/E4", problems[0].EntityID)
	assert.Equal(t, "date", problems[0].Field)
}

func TestRecurringCustomerEvent(t *testing.T) {
	snap := &models.Snapshot{Accounts: []models.Account{{
		ID: "A1", Name: "Acme",
		CustomerEvents: []models.CustomerEvent{{
			ID: "R1", Title: "Contract renewal", Date: "2019-04-01", Recurring: true,
			AlertEnabled: true, AlertOptions: []models.AlertOption{models.AlertWeekBefore},
		}},
	}}}

	got, _ := Evaluate(snap, day(2024, 3, 28), utcPolicy)
	require.Len(t, got, 1)
	assert.Equal(t, "customer_event:A1/R1:2024-04-01", got[0].AlertID)
	assert.Equal(t, 4, got[0].DaysUntil)
	assert.Equal(t, EntityAccount, got[0].EntityType)
}

func TestFollowUpFromLastContact(t *testing.T) {
	snap := &models.Snapshot{Contacts: []models.Contact{{
		ID: "C1", AccountID: "A1", FirstName: "Ann",
		LastContactDate: "2024-02-10", LastContactAlert: true, LastContactAlertDays: 3,
	}}}

	// due 2024-03-11 with the default 30 day cadence
	got, _ := Evaluate(snap, day(2024, 3, 9), utcPolicy)
	require.Len(t, got, 1)
	assert.Equal(t, KindFollowUp, got[0].Kind)
	assert.Equal(t, "2024-03-11", FormatDay(got[0].DueDate))

	got, _ = Evaluate(snap, day(2024, 3, 7), utcPolicy)
	assert.Empty(t, got)
}

func TestNextContactUsesPolicyDefault(t *testing.T) {
	snap := &models.Snapshot{Contacts: []models.Contact{{
		ID: "C1", AccountID: "A1", FirstName: "Ann",
		NextContactDate: "2024-03-20", NextContactAlert: true,
	}}}

	got, _ := Evaluate(snap, day(2024, 3, 10), Policy{Location: time.UTC, DefaultAlertDays: 10})
	require.Len(t, got, 1)
	got, _ = Evaluate(snap, day(2024, 3, 10), utcPolicy)
	assert.Empty(t, got)
}

func TestTaskDueAlerts(t *testing.T) {
	snap := &models.Snapshot{
		Contacts: []models.Contact{{ID: "C1", AccountID: "A1", FirstName: "Ann"}},
		Tasks: []models.Task{
			{ID: "T1", Title: "Send deck", RelatedID: "C1", RelatedType: models.RelatedContact,
				DueDate: "2024-03-12", DueDateAlert: true, Status: models.TaskStatusPending},
			{ID: "T2", Title: "Done already", RelatedID: "A1", RelatedType: models.RelatedAccount,
				DueDate: "2024-03-12", DueDateAlert: true, Status: models.TaskStatusCompleted},
			{ID: "T3", Title: "No alert", RelatedID: "A1", RelatedType: models.RelatedAccount,
				DueDate: "2024-03-12", Status: models.TaskStatusPending},
			{ID: "T4", Title: "Far out", RelatedID: "A1", RelatedType: models.RelatedAccount,
				DueDate: "2024-04-30", DueDateAlert: true, Status: models.TaskStatusPending},
		},
	}

	got, _ := Evaluate(snap, day(2024, 3, 10), utcPolicy)
	require.Len(t, got, 1)
	assert.Equal(t, "task_due:T1:2024-03-12", got[0].AlertID)
	assert.Equal(t, "C1", got[0].ContactID)
	assert.Equal(t, "A1", got[0].AccountID)
}

func TestEffectiveTaskStatus(t *testing.T) {
	open := &models.Task{Status: models.TaskStatusPending, DueDate: "2024-03-09"}
	assert.Equal(t, models.TaskStatusOverdue, EffectiveTaskStatus(open, day(2024, 3, 10), time.UTC))
	assert.Equal(t, models.TaskStatusPending, EffectiveTaskStatus(open, day(2024, 3, 9), time.UTC))

	done := &models.Task{Status: models.TaskStatusCompleted, DueDate: "2024-03-01"}
	assert.Equal(t, models.TaskStatusCompleted, EffectiveTaskStatus(done, day(2024, 3, 10), time.UTC))
}
