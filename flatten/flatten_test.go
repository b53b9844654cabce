// ABOUTME: Tests for reporting row generation
// ABOUTME: Covers row identity, row counts, banner precedence, and contact aggregates
package flatten

import (
	"testing"

	"github.com/harperreed/bannerbook/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestBareAccountRow(t *testing.T) {
	accounts := []models.Account{{ID: "A1", Name: "Solo", Overridable: models.Overridable{
		Channel:         "Drug",
		OperatingStates: []string{"TX", "OK"},
	}}}

	rows := Flatten(accounts, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, "A1", rows[0].ID)
	assert.Equal(t, "Drug", rows[0].Channel)
	assert.Equal(t, "TX, OK", rows[0].OperatingStates)
	assert.Equal(t, 0, rows[0].TotalContacts)
	assert.Empty(t, rows[0].ContactID)
}

func TestBannerRowsWithoutContacts(t *testing.T) {
	accounts := []models.Account{{
		ID: "A2", Name: "Acme", Overridable: models.Overridable{Channel: "Grocery", IsJBP: boolPtr(true)},
		BannerBuyingOffices: []models.BannerBuyingOffice{
			{ID: "B1", Name: "Acme Club", Overridable: models.Overridable{Channel: "Club", IsJBP: boolPtr(false)}},
			{ID: "B2", Name: "Acme Fresh"},
		},
	}}

	rows := Flatten(accounts, nil)
	require.Len(t, rows, 2)
	assert.Equal(t, "A2-banner-B1", rows[0].ID)
	assert.Equal(t, "Club", rows[0].Channel)
	assert.Equal(t, "No", rows[0].IsJBP)
	assert.Equal(t, "A2-banner-B2", rows[1].ID)
	assert.Equal(t, "Grocery", rows[1].Channel)
	assert.Equal(t, "Yes", rows[1].IsJBP)
	for _, r := range rows {
		assert.Empty(t, r.ContactID)
		assert.Equal(t, 0, r.TotalContacts)
	}
}

func TestContactRowsCountAndAggregates(t *testing.T) {
	accounts := []models.Account{{ID: "A1", Name: "Acme"}}
	contacts := []models.Contact{
		{ID: "C1", AccountID: "A1", FirstName: "Ann", LastName: "Lee", IsPrimaryContact: true},
		{ID: "C2", AccountID: "A1", FirstName: "Bo", LastName: "Kim"},
		{ID: "C3", AccountID: "A1", FirstName: "Cy"},
		{ID: "C9", AccountID: "A-missing", FirstName: "Orphan"},
	}

	rows := Flatten(accounts, contacts)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, 3, r.TotalContacts)
		assert.Equal(t, 2, r.SecondaryContactCount)
		assert.Equal(t, "Bo Kim, Cy", r.SecondaryContactNames)
	}
	assert.Equal(t, "A1-C1", rows[0].ID)
	assert.Equal(t, "A1-C2", rows[1].ID)
	assert.Equal(t, "Ann Lee", rows[0].ContactName)
	assert.True(t, rows[0].IsPrimaryContact)
}

func TestContactBannerPrecedence(t *testing.T) {
	accounts := []models.Account{{
		ID: "A2", Name: "Acme", Overridable: models.Overridable{Channel: "Grocery", Footprint: "Regional"},
		BannerBuyingOffices: []models.BannerBuyingOffice{
			{ID: "B1", Name: "Acme Club", Overridable: models.Overridable{Channel: "Club"}},
		},
	}}
	contacts := []models.Contact{
		{ID: "C2", AccountID: "A2", FirstName: "Dee", BannerBuyingOfficeID: "B1"},
		{ID: "C3", AccountID: "A2", FirstName: "Eli", BannerBuyingOfficeID: "B-unknown"},
	}

	rows := Flatten(accounts, contacts)
	require.Len(t, rows, 2)

	assert.Equal(t, "Club", rows[0].Channel)
	assert.Equal(t, "Regional", rows[0].Footprint)
	assert.Equal(t, "B1", rows[0].BannerID)
	assert.Equal(t, "Acme Club", rows[0].BannerName)

	assert.Equal(t, "Grocery", rows[1].Channel)
	assert.Empty(t, rows[1].BannerID)
}

func TestContactsSuppressBannerRows(t *testing.T) {
	accounts := []models.Account{{
		ID: "A1", Name: "Acme",
		BannerBuyingOffices: []models.BannerBuyingOffice{{ID: "B1"}, {ID: "B2"}},
	}}
	contacts := []models.Contact{{ID: "C1", AccountID: "A1", FirstName: "Ann"}}

	rows := Flatten(accounts, contacts)
	require.Len(t, rows, 1)
	assert.Equal(t, "A1-C1", rows[0].ID)
}

func TestSeparatorAndRoleMaps(t *testing.T) {
	accounts := []models.Account{{
		ID: "A1", Name: "Acme",
		SalesRoles:  map[string]string{"vp": "Ann", "director": "Bo"},
		Overridable: models.Overridable{FulfillmentTypes: []string{"Ship", "Pickup"}},
	}}

	rows := Flatten(accounts, nil, WithSeparator("; "))
	require.Len(t, rows, 1)
	assert.Equal(t, "Ship; Pickup", rows[0].FulfillmentTypes)
	assert.Equal(t, `{"director":"Bo","vp":"Ann"}`, rows[0].SalesRoles)
	assert.Empty(t, rows[0].SupportRoles)
}

func TestFlattenIsDeterministic(t *testing.T) {
	accounts := []models.Account{
		{ID: "A1", Name: "One"},
		{ID: "A2", Name: "Two", BannerBuyingOffices: []models.BannerBuyingOffice{{ID: "B1"}}},
	}
	contacts := []models.Contact{{ID: "C1", AccountID: "A1", FirstName: "Ann"}}

	assert.Equal(t, Flatten(accounts, contacts), Flatten(accounts, contacts))
	assert.Empty(t, Flatten(nil, contacts))
}

func TestYesNo(t *testing.T) {
	assert.Equal(t, "", YesNo(nil))
	assert.Equal(t, "Yes", YesNo(boolPtr(true)))
	assert.Equal(t, "No", YesNo(boolPtr(false)))
}
