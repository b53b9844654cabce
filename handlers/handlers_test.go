// ABOUTME: Tests for the MCP tool, resource, and prompt handlers
// ABOUTME: Runs every handler against a badger-backed store seeded with one account
package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/harperreed/bannerbook/alerts"
	"github.com/harperreed/bannerbook/charm"
	"github.com/harperreed/bannerbook/engine"
	"github.com/harperreed/bannerbook/integrity"
	"github.com/harperreed/bannerbook/ledger"
	"github.com/harperreed/bannerbook/models"
	"github.com/harperreed/bannerbook/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *store.Store
	account  *models.Account
	bannerID string
	ann      *models.Contact
	bob      *models.Contact
}

func boolPtr(b bool) *bool { return &b }

func seed(t *testing.T) *fixture {
	t.Helper()
	s := store.New(charm.NewTestClient(t))

	account := &models.Account{
		Name: "Acme Grocers",
		Overridable: models.Overridable{
			Channel:   "Grocery",
			Footprint: "National",
			IsJBP:     boolPtr(true),
		},
		BannerBuyingOffices: []models.BannerBuyingOffice{{
			Name:        "Acme Club",
			Overridable: models.Overridable{Channel: "Club", IsJBP: boolPtr(false)},
		}},
	}
	require.NoError(t, s.SaveAccount(account))
	bannerID := account.BannerBuyingOffices[0].ID

	ann := &models.Contact{
		AccountID:            account.ID,
		BannerBuyingOfficeID: bannerID,
		FirstName:            "Ann",
		LastName:             "Lee",
		Title:                "VP",
		Birthday:             "1990-03-15",
		BirthdayAlert:        true,
	}
	require.NoError(t, s.SaveContact(ann))
	bob := &models.Contact{AccountID: account.ID, FirstName: "Bob", ManagerID: ann.ID}
	require.NoError(t, s.SaveContact(bob))

	return &fixture{store: s, account: account, bannerID: bannerID, ann: ann, bob: bob}
}

func testEngine(l ledger.Ledger) *engine.Engine {
	logger, _ := test.NewNullLogger()
	return engine.New(l, nil,
		engine.WithClock(func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) }),
		engine.WithPolicy(alerts.Policy{Location: time.UTC}),
		engine.WithLogger(logrus.NewEntry(logger)),
	)
}

func TestCRMHandlers(t *testing.T) {
	f := seed(t)
	h := NewCRMHandlers(f.store)
	ctx := context.Background()

	_, _, err := h.AddAccount(ctx, nil, AddAccountInput{})
	assert.Error(t, err)

	_, acct, err := h.AddAccount(ctx, nil, AddAccountInput{Name: "Beta Foods", Channel: "Club"})
	require.NoError(t, err)
	assert.Equal(t, 1, acct.Version)

	_, banner, err := h.AddBanner(ctx, nil, AddBannerInput{AccountID: acct.ID, Name: "Beta Express"})
	require.NoError(t, err)
	assert.NotEmpty(t, banner.BannerID)

	_, _, err = h.AddContact(ctx, nil, AddContactInput{AccountID: "missing", FirstName: "Zed"})
	assert.Error(t, err)

	_, contact, err := h.AddContact(ctx, nil, AddContactInput{AccountID: acct.ID, FirstName: "Cy", LastName: "Ng", BannerID: banner.BannerID})
	require.NoError(t, err)
	assert.Equal(t, "Cy Ng", contact.Name)

	_, _, err = h.AddTask(ctx, nil, AddTaskInput{Title: "Deck", RelatedID: acct.ID, RelatedType: "company"})
	assert.Error(t, err)

	_, task, err := h.AddTask(ctx, nil, AddTaskInput{Title: "Deck", RelatedID: acct.ID, RelatedType: models.RelatedAccount, DueDate: "2024-04-01"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, task.Status)

	_, task, err = h.UpdateTaskStatus(ctx, nil, UpdateTaskStatusInput{TaskID: task.ID, Status: models.TaskStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, task.Status)

	_, _, err = h.UpdateTaskStatus(ctx, nil, UpdateTaskStatusInput{TaskID: task.ID, Status: "done"})
	assert.Error(t, err)

	_, found, err := h.FindAccounts(ctx, nil, FindAccountsInput{Query: "express"})
	require.NoError(t, err)
	require.Equal(t, 1, found.Count)
	assert.Equal(t, "Beta Foods", found.Accounts[0].Name)

	_, found, err = h.FindAccounts(ctx, nil, FindAccountsInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, found.Count)
}

func TestResolveField(t *testing.T) {
	f := seed(t)
	h := NewReportHandlers(f.store, time.UTC)
	ctx := context.Background()

	tests := []struct {
		name   string
		input  ResolveFieldInput
		value  any
		source string
	}{
		{"banner text wins", ResolveFieldInput{Field: "channel", ContactID: f.ann.ID}, "Club", "banner"},
		{"banner false is an override", ResolveFieldInput{Field: "isJBP", ContactID: f.ann.ID}, false, "banner"},
		{"empty banner text falls back", ResolveFieldInput{Field: "footprint", ContactID: f.ann.ID}, "National", "account"},
		{"no banner uses account", ResolveFieldInput{Field: "channel", ContactID: f.bob.ID}, "Grocery", "account"},
		{"explicit banner", ResolveFieldInput{Field: "channel", AccountID: f.account.ID, BannerID: f.bannerID}, "Club", "banner"},
		{"account only", ResolveFieldInput{Field: "isJBP", AccountID: f.account.ID}, true, "account"},
		{"empty list", ResolveFieldInput{Field: "operatingStates", AccountID: f.account.ID}, []string{}, "account"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := h.ResolveField(ctx, nil, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.value, out.Value)
			assert.Equal(t, tt.source, out.Source)
			assert.Equal(t, f.account.ID, out.AccountID)
		})
	}

	_, _, err := h.ResolveField(ctx, nil, ResolveFieldInput{Field: "bogus", ContactID: f.ann.ID})
	assert.Error(t, err)
	_, _, err = h.ResolveField(ctx, nil, ResolveFieldInput{Field: "channel"})
	assert.Error(t, err)
	_, _, err = h.ResolveField(ctx, nil, ResolveFieldInput{Field: "channel", AccountID: f.account.ID, BannerID: "nope"})
	assert.Error(t, err)
}

func TestFlattenAccounts(t *testing.T) {
	f := seed(t)
	h := NewReportHandlers(f.store, time.UTC)
	ctx := context.Background()

	_, out, err := h.FlattenAccounts(ctx, nil, FlattenAccountsInput{AccountID: f.account.ID})
	require.NoError(t, err)
	require.Equal(t, 2, out.Count)

	byContact := map[string]string{}
	for _, r := range out.Rows {
		byContact[r.ContactName] = r.Channel
	}
	assert.Equal(t, "Club", byContact["Ann Lee"])
	assert.Equal(t, "Grocery", byContact["Bob"])

	_, _, err = h.FlattenAccounts(ctx, nil, FlattenAccountsInput{AccountID: "missing"})
	assert.Error(t, err)
}

func TestCheckIntegrity(t *testing.T) {
	f := seed(t)
	require.NoError(t, f.store.SaveContact(&models.Contact{AccountID: f.account.ID, FirstName: "Orphan", ManagerID: "ghost"}))
	h := NewReportHandlers(f.store, time.UTC)

	_, out, err := h.CheckIntegrity(context.Background(), nil, CheckIntegrityInput{})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, integrity.MissingManager, out.Issues[0].Kind)

	_, out, err = h.CheckIntegrity(context.Background(), nil, CheckIntegrityInput{Kind: integrity.ManagerCycle})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Count)
	assert.NotNil(t, out.Issues)
}

func TestAlertHandlers(t *testing.T) {
	f := seed(t)
	l := ledger.NewMemory()
	h := NewAlertHandlers(f.store, testEngine(l), l)
	ctx := context.Background()

	_, preview, err := h.PreviewAlerts(ctx, nil, AlertPassInput{})
	require.NoError(t, err)
	assert.True(t, preview.DryRun)
	require.Len(t, preview.Alerts, 1)
	assert.Equal(t, "Birthday: Ann Lee", preview.Alerts[0].Title)

	_, run, err := h.RunAlerts(ctx, nil, AlertPassInput{})
	require.NoError(t, err)
	assert.Len(t, run.Alerts, 1)

	_, again, err := h.RunAlerts(ctx, nil, AlertPassInput{})
	require.NoError(t, err)
	assert.Empty(t, again.Alerts)
	assert.Equal(t, 1, again.AlreadySent)

	_, history, err := h.AlertHistory(ctx, nil, AlertHistoryInput{})
	require.NoError(t, err)
	require.Equal(t, 1, history.Count)
	assert.Equal(t, "birthday:"+f.ann.ID+":2024-03-15", history.Sent[0].AlertID)

	_, history, err = h.AlertHistory(ctx, nil, AlertHistoryInput{ContactID: f.bob.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, history.Count)
}

func TestOrgChart(t *testing.T) {
	f := seed(t)
	h := NewVizHandlers(f.store)

	_, out, err := h.OrgChart(context.Background(), nil, OrgChartInput{AccountID: f.account.ID})
	require.NoError(t, err)
	assert.Contains(t, out.DOTSource, "Acme Club")
	assert.Contains(t, out.DOTSource, "Ann Lee")
	assert.Greater(t, out.EdgeCount, 0)

	_, _, err = h.OrgChart(context.Background(), nil, OrgChartInput{})
	assert.Error(t, err)
}

func readResource(t *testing.T, h *ResourceHandlers, uri string) (*mcp.ReadResourceResult, error) {
	t.Helper()
	return h.ReadResource(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
}

func TestReadResource(t *testing.T) {
	f := seed(t)
	h := NewResourceHandlers(f.store, alerts.Policy{Location: time.UTC})

	res, err := readResource(t, h, "bannerbook://accounts")
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Contains(t, res.Contents[0].Text, "Acme Grocers")

	res, err = readResource(t, h, "bannerbook://accounts/"+f.account.ID)
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"contactName": "Ann Lee"`)

	res, err = readResource(t, h, "bannerbook://rows")
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"bannerName": "Acme Club"`)

	res, err = readResource(t, h, "bannerbook://dashboard")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", res.Contents[0].MIMEType)
	assert.Contains(t, res.Contents[0].Text, "BANNERBOOK DASHBOARD")

	_, err = readResource(t, h, "bannerbook://accounts/missing")
	assert.Error(t, err)
	_, err = readResource(t, h, "bannerbook://deals")
	assert.Error(t, err)
	_, err = readResource(t, h, "crm://accounts")
	assert.Error(t, err)
}

func promptText(t *testing.T, res *mcp.GetPromptResult) string {
	t.Helper()
	require.Len(t, res.Messages, 1)
	content, ok := res.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	return content.Text
}

func TestGetPrompt(t *testing.T) {
	f := seed(t)
	h := NewPromptHandlers(f.store, testEngine(ledger.NewMemory()))
	ctx := context.Background()

	get := func(name string, args map[string]string) (*mcp.GetPromptResult, error) {
		return h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: name, Arguments: args}})
	}

	res, err := get("account-review", map[string]string{"account_id": f.account.ID})
	require.NoError(t, err)
	text := promptText(t, res)
	assert.Contains(t, text, "Account: Acme Grocers")
	assert.Contains(t, text, "- Acme Club")
	assert.Contains(t, text, "Channel: Club")
	assert.Contains(t, text, "- Ann Lee, VP [Acme Club]")
	assert.Contains(t, text, "  - Bob")

	_, err = get("account-review", nil)
	assert.Error(t, err)

	res, err = get("upcoming-alerts", nil)
	require.NoError(t, err)
	assert.Contains(t, promptText(t, res), "Birthday: Ann Lee")

	_, err = get("contact-summary", nil)
	assert.Error(t, err)
}
