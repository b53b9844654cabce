package viz

import (
	"testing"
	"time"

	"github.com/harperreed/bannerbook/alerts"
	"github.com/harperreed/bannerbook/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Accounts: []models.Account{{
			ID: "A1", Name: "Acme",
			Overridable:         models.Overridable{Channel: "Grocery"},
			BannerBuyingOffices: []models.BannerBuyingOffice{{ID: "B1", Name: "Acme Club", Overridable: models.Overridable{Channel: "Club"}}},
		}},
		Contacts: []models.Contact{
			{ID: "C1", AccountID: "A1", FirstName: "Ann", LastName: "Lee", Title: "VP", IsPrimaryContact: true,
				Birthday: "1990-03-15", BirthdayAlert: true, LastContactDate: "2024-03-01"},
			{ID: "C2", AccountID: "A1", FirstName: "Bo", ManagerID: "C1", BannerBuyingOfficeID: "B1"},
			{ID: "C3", AccountID: "A1", FirstName: "Cy", ManagerID: "C4"},
			{ID: "C4", AccountID: "A1", FirstName: "Di", ManagerID: "C3", LastContactDate: "2023-01-01"},
			{ID: "C9", AccountID: "A2", FirstName: "Elsewhere"},
		},
		Tasks: []models.Task{
			{ID: "T1", Title: "Deck", RelatedID: "A1", RelatedType: models.RelatedAccount, DueDate: "2024-03-01", Status: models.TaskStatusPending},
			{ID: "T2", Title: "Done", RelatedID: "A1", RelatedType: models.RelatedAccount, Status: models.TaskStatusCompleted},
		},
	}
}

func TestGenerateOrgChart(t *testing.T) {
	snap := sampleSnapshot()
	dot, err := GenerateOrgChart(&snap.Accounts[0], snap.Contacts)
	require.NoError(t, err)

	assert.Contains(t, dot, "Acme Club")
	assert.Contains(t, dot, "Ann Lee")
	assert.Contains(t, dot, "cycle")
	assert.NotContains(t, dot, "Elsewhere")

	_, err = GenerateOrgChart(nil, snap.Contacts)
	assert.Error(t, err)
}

func TestDashboardStats(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	stats := GenerateDashboardStats(sampleSnapshot(), now, alerts.Policy{Location: time.UTC})

	assert.Equal(t, 1, stats.TotalAccounts)
	assert.Equal(t, 1, stats.TotalBanners)
	assert.Equal(t, 5, stats.TotalContacts)
	assert.Equal(t, 1, stats.TasksByStatus[models.TaskStatusOverdue])
	assert.Equal(t, 1, stats.TasksByStatus[models.TaskStatusCompleted])
	require.Len(t, stats.Upcoming, 1)
	assert.Equal(t, alerts.KindBirthday, stats.Upcoming[0].Kind)

	// C2, C3, C9 never contacted; C4 last contacted over a year ago.
	assert.Len(t, stats.StaleContacts, 4)
	assert.Equal(t, 1, stats.IssuesByKind["manager_cycle"])
	assert.Equal(t, 1, stats.IssuesByKind["missing_account"])

	out := RenderDashboard(stats)
	assert.Contains(t, out, "BANNERBOOK DASHBOARD")
	assert.Contains(t, out, "Birthday: Ann Lee")
	assert.Contains(t, out, "overdue")
}
