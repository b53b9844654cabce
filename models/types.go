// ABOUTME: Data models for account, banner, contact, and task documents
// ABOUTME: Defines the overridable attribute set shared by accounts and banners
package models

import (
	"strings"
	"time"
)

// Overridable holds the attributes a BannerBuyingOffice may redefine for
// rows scoped to it. Flags are pointers so that "unset" differs from false.
type Overridable struct {
	Channel               string   `json:"channel,omitempty"`
	Footprint             string   `json:"footprint,omitempty"`
	OperatingStates       []string `json:"operatingStates,omitempty"`
	IsJBP                 *bool    `json:"isJBP,omitempty"`
	LastJBPDate           string   `json:"lastJBPDate,omitempty"`
	NextJBPDate           string   `json:"nextJBPDate,omitempty"`
	HasPlanograms         *bool    `json:"hasPlanograms,omitempty"`
	PlanogramWrittenBy    string   `json:"planogramWrittenBy,omitempty"`
	ResetFrequency        string   `json:"resetFrequency,omitempty"`
	ResetWindowMonths     []string `json:"resetWindowMonths,omitempty"`
	AffectedCategories    []string `json:"affectedCategories,omitempty"`
	EcommerceMaturity     string   `json:"ecommerceMaturity,omitempty"`
	EcommerceSalesPercent string   `json:"ecommerceSalesPercent,omitempty"`
	FulfillmentTypes      []string `json:"fulfillmentTypes,omitempty"`
	EcommercePartners     []string `json:"ecommercePartners,omitempty"`
	SpiritsOutletsByState []string `json:"spiritsOutletsByState,omitempty"`
}

// BannerBuyingOffice is a retail banner nested inside exactly one Account.
// Its ID is only unique within that account.
type BannerBuyingOffice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Overridable
}

type Account struct {
	ID                       string               `json:"id"`
	Name                     string               `json:"name"`
	HQLocation               string               `json:"hqLocation,omitempty"`
	Website                  string               `json:"website,omitempty"`
	Phone                    string               `json:"phone,omitempty"`
	AccountOwner             string               `json:"accountOwner,omitempty"`
	InfluenceAssortmentShelf string               `json:"influenceAssortmentShelf,omitempty"`
	InfluencePricePromo      string               `json:"influencePricePromo,omitempty"`
	SalesRoles               map[string]string    `json:"salesRoles,omitempty"`
	SupportRoles             map[string]string    `json:"supportRoles,omitempty"`
	Notes                    string               `json:"notes,omitempty"`
	BannerBuyingOffices      []BannerBuyingOffice `json:"bannerBuyingOffices,omitempty"`
	CustomerEvents           []CustomerEvent      `json:"customerEvents,omitempty"`
	Version                  int                  `json:"version"`
	CreatedAt                time.Time            `json:"createdAt"`
	UpdatedAt                time.Time            `json:"updatedAt"`
	Overridable
}

// Banner returns the banner with the given id from this account only.
func (a *Account) Banner(id string) *BannerBuyingOffice {
	if a == nil || id == "" {
		return nil
	}
	for i := range a.BannerBuyingOffices {
		if a.BannerBuyingOffices[i].ID == id {
			return &a.BannerBuyingOffices[i]
		}
	}
	return nil
}

// AlertOption is one lead-time trigger window.
type AlertOption string

const (
	AlertSameDay    AlertOption = "same_day"
	AlertDayBefore  AlertOption = "day_before"
	AlertWeekBefore AlertOption = "week_before"
)

// Valid reports whether o is one of the three known options.
func (o AlertOption) Valid() bool {
	switch o {
	case AlertSameDay, AlertDayBefore, AlertWeekBefore:
		return true
	}
	return false
}

// NormalizeAlertOptions drops unknown and repeated options, keeping first-seen order.
func NormalizeAlertOptions(opts []AlertOption) []AlertOption {
	seen := make(map[AlertOption]bool, len(opts))
	var out []AlertOption
	for _, o := range opts {
		if !o.Valid() || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}

// ContactEvent is a dated item on a contact (anniversary, trade show, review).
type ContactEvent struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Date         string        `json:"date"`
	Recurring    bool          `json:"recurring,omitempty"`
	AlertEnabled bool          `json:"alertEnabled"`
	AlertOptions []AlertOption `json:"alertOptions,omitempty"`
	Notes        string        `json:"notes,omitempty"`
}

// CustomerEvent is a dated item owned by an account (renewal, line review).
type CustomerEvent struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Date         string        `json:"date"`
	Recurring    bool          `json:"recurring,omitempty"`
	AlertEnabled bool          `json:"alertEnabled"`
	AlertOptions []AlertOption `json:"alertOptions,omitempty"`
	Notes        string        `json:"notes,omitempty"`
}

type Contact struct {
	ID                   string `json:"id"`
	AccountID            string `json:"accountId"`
	BannerBuyingOfficeID string `json:"bannerBuyingOfficeId,omitempty"`
	ManagerID            string `json:"managerId,omitempty"`
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName,omitempty"`
	Email                string `json:"email,omitempty"`
	Phone                string `json:"phone,omitempty"`
	Title                string `json:"title,omitempty"`
	IsPrimaryContact     bool   `json:"isPrimaryContact,omitempty"`

	Birthday             string        `json:"birthday,omitempty"`
	BirthdayAlert        bool          `json:"birthdayAlert,omitempty"`
	BirthdayAlertOptions []AlertOption `json:"birthdayAlertOptions,omitempty"`
	BirthdayAlertDays    int           `json:"birthdayAlertDays,omitempty"`

	NextContactDate         string        `json:"nextContactDate,omitempty"`
	NextContactAlert        bool          `json:"nextContactAlert,omitempty"`
	NextContactAlertOptions []AlertOption `json:"nextContactAlertOptions,omitempty"`
	NextContactAlertDays    int           `json:"nextContactAlertDays,omitempty"`

	LastContactDate         string        `json:"lastContactDate,omitempty"`
	LastContactAlert        bool          `json:"lastContactAlert,omitempty"`
	LastContactAlertOptions []AlertOption `json:"lastContactAlertOptions,omitempty"`
	LastContactAlertDays    int           `json:"lastContactAlertDays,omitempty"`
	FollowUpDays            int           `json:"followUpDays,omitempty"`

	Events    []ContactEvent `json:"events,omitempty"`
	Notes     string         `json:"notes,omitempty"`
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Name returns the display name of the contact.
func (c *Contact) Name() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Related entity types for tasks.
const (
	RelatedAccount = "account"
	RelatedContact = "contact"
)

// SentAlertRecord is one append-only ledger entry.
type SentAlertRecord struct {
	AlertID   string    `json:"alertId"`
	AlertType string    `json:"alertType"`
	EntityID  string    `json:"entityId,omitempty"`
	ContactID string    `json:"contactId,omitempty"`
	SentAt    time.Time `json:"sentAt"`
	DueDate   string    `json:"dueDate"`
}

// Notification is the payload handed to the delivery collaborator.
type Notification struct {
	AlertID        string            `json:"alertId"`
	AlertType      string            `json:"alertType"`
	EntityID       string            `json:"entityId"`
	EntityType     string            `json:"entityType"`
	ContactID      string            `json:"contactId,omitempty"`
	AccountID      string            `json:"accountId,omitempty"`
	Title          string            `json:"title"`
	DueDate        string            `json:"dueDate"`
	DaysUntil      int               `json:"daysUntil"`
	MatchedOptions []AlertOption     `json:"matchedOptions,omitempty"`
	Context        map[string]string `json:"context,omitempty"`
	RunID          string            `json:"runId,omitempty"`
}

// Snapshot is the fully materialized input of one evaluation pass.
type Snapshot struct {
	Accounts []Account `json:"accounts"`
	Contacts []Contact `json:"contacts"`
	Tasks    []Task    `json:"tasks"`
}

// AccountByID returns the account with the given id, or nil.
func (s *Snapshot) AccountByID(id string) *Account {
	for i := range s.Accounts {
		if s.Accounts[i].ID == id {
			return &s.Accounts[i]
		}
	}
	return nil
}

// ContactByID returns the contact with the given id, or nil.
func (s *Snapshot) ContactByID(id string) *Contact {
	for i := range s.Contacts {
		if s.Contacts[i].ID == id {
			return &s.Contacts[i]
		}
	}
	return nil
}
