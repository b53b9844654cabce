// ABOUTME: Row flattener turning the account/banner/contact hierarchy into reporting rows
// ABOUTME: Applies the field resolver per row and attaches account-level contact aggregates
package flatten

import (
	"encoding/json"
	"strings"

	"github.com/harperreed/bannerbook/models"
	"github.com/harperreed/bannerbook/resolve"
)

// DisplaySeparator joins list values in reporting views.
const DisplaySeparator = ", "

// CombinedRow is one reporting row for an (account, banner?, contact?) triple.
type CombinedRow struct {
	ID string `json:"id"`

	AccountID                string `json:"accountId"`
	AccountName              string `json:"accountName"`
	HQLocation               string `json:"hqLocation,omitempty"`
	AccountOwner             string `json:"accountOwner,omitempty"`
	InfluenceAssortmentShelf string `json:"influenceAssortmentShelf,omitempty"`
	InfluencePricePromo      string `json:"influencePricePromo,omitempty"`
	SalesRoles               string `json:"salesRoles,omitempty"`
	SupportRoles             string `json:"supportRoles,omitempty"`

	BannerID   string `json:"bannerId,omitempty"`
	BannerName string `json:"bannerName,omitempty"`

	ContactID        string `json:"contactId,omitempty"`
	ContactName      string `json:"contactName,omitempty"`
	FirstName        string `json:"firstName,omitempty"`
	LastName         string `json:"lastName,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Title            string `json:"title,omitempty"`
	IsPrimaryContact bool   `json:"isPrimaryContact,omitempty"`

	Channel               string `json:"channel,omitempty"`
	Footprint             string `json:"footprint,omitempty"`
	OperatingStates       string `json:"operatingStates,omitempty"`
	IsJBP                 string `json:"isJBP,omitempty"`
	LastJBPDate           string `json:"lastJBPDate,omitempty"`
	NextJBPDate           string `json:"nextJBPDate,omitempty"`
	HasPlanograms         string `json:"hasPlanograms,omitempty"`
	PlanogramWrittenBy    string `json:"planogramWrittenBy,omitempty"`
	ResetFrequency        string `json:"resetFrequency,omitempty"`
	ResetWindowMonths     string `json:"resetWindowMonths,omitempty"`
	AffectedCategories    string `json:"affectedCategories,omitempty"`
	EcommerceMaturity     string `json:"ecommerceMaturity,omitempty"`
	EcommerceSalesPercent string `json:"ecommerceSalesPercent,omitempty"`
	FulfillmentTypes      string `json:"fulfillmentTypes,omitempty"`
	EcommercePartners     string `json:"ecommercePartners,omitempty"`
	SpiritsOutletsByState string `json:"spiritsOutletsByState,omitempty"`

	SecondaryContactCount int    `json:"secondaryContactCount"`
	SecondaryContactNames string `json:"secondaryContactNames,omitempty"`
	TotalContacts         int    `json:"totalContacts"`
}

type options struct {
	sep string
}

// Option configures Flatten.
type Option func(*options)

// WithSeparator sets the string used to join list values.
func WithSeparator(sep string) Option {
	return func(o *options) { o.sep = sep }
}

// Flatten produces the reporting rows for accounts in input order. It is a
// pure function of its inputs; unresolvable banner references degrade to
// "no banner".
func Flatten(accounts []models.Account, contacts []models.Contact, opts ...Option) []CombinedRow {
	o := options{sep: DisplaySeparator}
	for _, opt := range opts {
		opt(&o)
	}

	byAccount := make(map[string][]*models.Contact)
	for i := range contacts {
		c := &contacts[i]
		byAccount[c.AccountID] = append(byAccount[c.AccountID], c)
	}

	var rows []CombinedRow
	for i := range accounts {
		acct := &accounts[i]
		rows = append(rows, flattenAccount(acct, byAccount[acct.ID], o)...)
	}
	return rows
}

func flattenAccount(acct *models.Account, contacts []*models.Contact, o options) []CombinedRow {
	switch {
	case len(contacts) == 0 && len(acct.BannerBuyingOffices) == 0:
		row := baseRow(acct)
		row.ID = acct.ID
		applyOverridable(&row, resolve.Effective(nil, acct), o)
		return []CombinedRow{row}

	case len(contacts) == 0:
		rows := make([]CombinedRow, 0, len(acct.BannerBuyingOffices))
		for i := range acct.BannerBuyingOffices {
			banner := &acct.BannerBuyingOffices[i]
			row := baseRow(acct)
			row.ID = acct.ID + "-banner-" + banner.ID
			row.BannerID = banner.ID
			row.BannerName = banner.Name
			applyOverridable(&row, resolve.Effective(banner, acct), o)
			rows = append(rows, row)
		}
		return rows
	}

	var secondary []string
	for _, c := range contacts {
		if !c.IsPrimaryContact {
			secondary = append(secondary, c.Name())
		}
	}
	secondaryNames := strings.Join(secondary, o.sep)

	rows := make([]CombinedRow, 0, len(contacts))
	for _, c := range contacts {
		banner := resolve.BannerFor(c, acct)

		row := baseRow(acct)
		row.ID = acct.ID + "-" + c.ID
		if banner != nil {
			row.BannerID = banner.ID
			row.BannerName = banner.Name
		}
		row.ContactID = c.ID
		row.ContactName = c.Name()
		row.FirstName = c.FirstName
		row.LastName = c.LastName
		row.Email = c.Email
		row.Phone = c.Phone
		row.Title = c.Title
		row.IsPrimaryContact = c.IsPrimaryContact
		row.SecondaryContactCount = len(secondary)
		row.SecondaryContactNames = secondaryNames
		row.TotalContacts = len(contacts)
		applyOverridable(&row, resolve.Effective(banner, acct), o)
		rows = append(rows, row)
	}
	return rows
}

func baseRow(acct *models.Account) CombinedRow {
	return CombinedRow{
		AccountID:                acct.ID,
		AccountName:              acct.Name,
		HQLocation:               acct.HQLocation,
		AccountOwner:             acct.AccountOwner,
		InfluenceAssortmentShelf: acct.InfluenceAssortmentShelf,
		InfluencePricePromo:      acct.InfluencePricePromo,
		SalesRoles:               roleMap(acct.SalesRoles),
		SupportRoles:             roleMap(acct.SupportRoles),
	}
}

func applyOverridable(row *CombinedRow, eff models.Overridable, o options) {
	row.Channel = eff.Channel
	row.Footprint = eff.Footprint
	row.OperatingStates = strings.Join(eff.OperatingStates, o.sep)
	row.IsJBP = YesNo(eff.IsJBP)
	row.LastJBPDate = eff.LastJBPDate
	row.NextJBPDate = eff.NextJBPDate
	row.HasPlanograms = YesNo(eff.HasPlanograms)
	row.PlanogramWrittenBy = eff.PlanogramWrittenBy
	row.ResetFrequency = eff.ResetFrequency
	row.ResetWindowMonths = strings.Join(eff.ResetWindowMonths, o.sep)
	row.AffectedCategories = strings.Join(eff.AffectedCategories, o.sep)
	row.EcommerceMaturity = eff.EcommerceMaturity
	row.EcommerceSalesPercent = eff.EcommerceSalesPercent
	row.FulfillmentTypes = strings.Join(eff.FulfillmentTypes, o.sep)
	row.EcommercePartners = strings.Join(eff.EcommercePartners, o.sep)
	row.SpiritsOutletsByState = strings.Join(eff.SpiritsOutletsByState, o.sep)
}

// YesNo renders a presence-based flag.
func YesNo(b *bool) string {
	if b == nil {
		return ""
	}
	if *b {
		return "Yes"
	}
	return "No"
}

func roleMap(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	// map keys marshal in sorted order
	data, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(data)
}
