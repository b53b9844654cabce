// ABOUTME: Tests for the entity document store
// ABOUTME: Covers versioning, id assignment, ordering, and dangling references after deletes
package store

import (
	"errors"
	"testing"
	"time"

	"github.com/harperreed/bannerbook/charm"
	"github.com/harperreed/bannerbook/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(charm.NewTestClient(t))
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return s
}

func TestSaveAccountAssignsIdsAndVersion(t *testing.T) {
	s := newTestStore(t)

	acct := &models.Account{
		Name:                "Acme Grocers",
		BannerBuyingOffices: []models.BannerBuyingOffice{{Name: "Acme Club"}},
		CustomerEvents: []models.CustomerEvent{{
			Title:        "Renewal",
			Date:         "2024-06-01",
			AlertEnabled: true,
			AlertOptions: []models.AlertOption{models.AlertSameDay, models.AlertSameDay, "bogus"},
		}},
	}
	require.NoError(t, s.SaveAccount(acct))

	assert.NotEmpty(t, acct.ID)
	assert.Equal(t, 1, acct.Version)
	assert.NotEmpty(t, acct.BannerBuyingOffices[0].ID)
	assert.NotEmpty(t, acct.CustomerEvents[0].ID)
	assert.Equal(t, []models.AlertOption{models.AlertSameDay}, acct.CustomerEvents[0].AlertOptions)

	acct.Channel = "Grocery"
	require.NoError(t, s.SaveAccount(acct))

	loaded, err := s.GetAccount(acct.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Version)
	assert.Equal(t, "Grocery", loaded.Channel)
	assert.Equal(t, acct.BannerBuyingOffices[0].ID, loaded.BannerBuyingOffices[0].ID)
}

func TestSaveValidation(t *testing.T) {
	s := newTestStore(t)

	assert.ErrorIs(t, s.SaveAccount(&models.Account{}), ErrInvalidAccount)
	assert.ErrorIs(t, s.SaveContact(&models.Contact{FirstName: "Ann"}), ErrInvalidContact)
	assert.ErrorIs(t, s.SaveTask(&models.Task{Title: "Call"}), ErrInvalidTask)
	assert.ErrorIs(t, s.SaveTask(&models.Task{Title: "Call", RelatedID: "x", RelatedType: "deal"}), ErrInvalidTask)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetAccount("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetContact("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteTask("nope"), ErrNotFound)
}

func TestListOrderedByCreation(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		require.NoError(t, s.SaveAccount(&models.Account{Name: name}))
	}

	accounts, err := s.ListAccounts()
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "Zeta", accounts[0].Name)
	assert.Equal(t, "Alpha", accounts[1].Name)
	assert.Equal(t, "Mid", accounts[2].Name)
}

func TestDeleteAccountLeavesDanglingReferences(t *testing.T) {
	s := newTestStore(t)

	acct := &models.Account{Name: "Acme"}
	require.NoError(t, s.SaveAccount(acct))
	contact := &models.Contact{FirstName: "Ann", AccountID: acct.ID}
	require.NoError(t, s.SaveContact(contact))
	task := &models.Task{Title: "QBR prep", RelatedID: acct.ID, RelatedType: models.RelatedAccount}
	require.NoError(t, s.SaveTask(task))
	assert.Equal(t, models.TaskStatusPending, task.Status)

	require.NoError(t, s.DeleteAccount(acct.ID))

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.Accounts)
	require.Len(t, snap.Contacts, 1)
	assert.Equal(t, acct.ID, snap.Contacts[0].AccountID)
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, acct.ID, snap.Tasks[0].RelatedID)
}

func TestSaveContactNormalizesOptions(t *testing.T) {
	s := newTestStore(t)

	c := &models.Contact{
		FirstName:            "Ann",
		AccountID:            "A1",
		BirthdayAlertOptions: []models.AlertOption{models.AlertWeekBefore, models.AlertWeekBefore},
		Events:               []models.ContactEvent{{Title: "Work anniversary", Date: "2024-05-01"}},
	}
	require.NoError(t, s.SaveContact(c))

	loaded, err := s.GetContact(c.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.AlertOption{models.AlertWeekBefore}, loaded.BirthdayAlertOptions)
	assert.NotEmpty(t, loaded.Events[0].ID)
	assert.Equal(t, 1, loaded.Version)
}

func TestSaveAccountRejectsDuplicateBannerIDs(t *testing.T) {
	s := newTestStore(t)

	acct := &models.Account{
		Name: "Acme Grocers",
		BannerBuyingOffices: []models.BannerBuyingOffice{
			{ID: "b1", Name: "First", Overridable: models.Overridable{Channel: "Club"}},
			{ID: "b1", Name: "Second", Overridable: models.Overridable{Channel: "Grocery"}},
		},
	}
	assert.ErrorIs(t, s.SaveAccount(acct), ErrDuplicateBanner)
	assert.Empty(t, acct.ID)

	accounts, err := s.ListAccounts()
	require.NoError(t, err)
	assert.Empty(t, accounts)

	// Banners without ids are not duplicates of each other.
	acct.BannerBuyingOffices[0].ID = ""
	acct.BannerBuyingOffices[1].ID = ""
	require.NoError(t, s.SaveAccount(acct))
	assert.NotEqual(t, acct.BannerBuyingOffices[0].ID, acct.BannerBuyingOffices[1].ID)
}

type failingKV struct {
	KV
	fail bool
}

func (f *failingKV) Set(key, value []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.KV.Set(key, value)
}

func TestFailedWriteKeepsCallerVersion(t *testing.T) {
	kv := &failingKV{KV: charm.NewTestClient(t)}
	s := New(kv)

	acct := &models.Account{Name: "Acme"}
	require.NoError(t, s.SaveAccount(acct))
	contact := &models.Contact{FirstName: "Ann", AccountID: acct.ID}
	require.NoError(t, s.SaveContact(contact))
	task := &models.Task{Title: "Deck", RelatedID: acct.ID, RelatedType: models.RelatedAccount}
	require.NoError(t, s.SaveTask(task))

	acctUpdated, contactUpdated, taskUpdated := acct.UpdatedAt, contact.UpdatedAt, task.UpdatedAt
	kv.fail = true

	assert.Error(t, s.SaveAccount(acct))
	assert.Equal(t, 1, acct.Version)
	assert.True(t, acct.UpdatedAt.Equal(acctUpdated))

	assert.Error(t, s.SaveContact(contact))
	assert.Equal(t, 1, contact.Version)
	assert.True(t, contact.UpdatedAt.Equal(contactUpdated))

	assert.Error(t, s.SaveTask(task))
	assert.Equal(t, 1, task.Version)
	assert.True(t, task.UpdatedAt.Equal(taskUpdated))

	kv.fail = false
	require.NoError(t, s.SaveAccount(acct))
	loaded, err := s.GetAccount(acct.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Version)
}
