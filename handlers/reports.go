// ABOUTME: MCP tool handlers for reporting rows, field resolution, and data-quality checks
// ABOUTME: Every call reads a fresh snapshot from the entity store
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/bannerbook/flatten"
	"github.com/harperreed/bannerbook/integrity"
	"github.com/harperreed/bannerbook/models"
	"github.com/harperreed/bannerbook/resolve"
	"github.com/harperreed/bannerbook/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ReportHandlers struct {
	store *store.Store
	loc   *time.Location
}

func NewReportHandlers(s *store.Store, loc *time.Location) *ReportHandlers {
	if loc == nil {
		loc = time.Local
	}
	return &ReportHandlers{store: s, loc: loc}
}

type FlattenAccountsInput struct {
	AccountID string `json:"account_id,omitempty" jsonschema:"Only emit rows for this account"`
	Separator string `json:"separator,omitempty" jsonschema:"Join string for list values (default ', ')"`
}

type FlattenAccountsOutput struct {
	Rows  []flatten.CombinedRow `json:"rows"`
	Count int                   `json:"count"`
}

func (h *ReportHandlers) FlattenAccounts(_ context.Context, _ *mcp.CallToolRequest, input FlattenAccountsInput) (*mcp.CallToolResult, FlattenAccountsOutput, error) {
	snap, err := h.store.Snapshot()
	if err != nil {
		return nil, FlattenAccountsOutput{}, fmt.Errorf("failed to load data: %w", err)
	}

	accounts := snap.Accounts
	if input.AccountID != "" {
		a := snap.AccountByID(input.AccountID)
		if a == nil {
			return nil, FlattenAccountsOutput{}, fmt.Errorf("account not found: %s", input.AccountID)
		}
		accounts = []models.Account{*a}
	}

	var opts []flatten.Option
	if input.Separator != "" {
		opts = append(opts, flatten.WithSeparator(input.Separator))
	}
	rows := flatten.Flatten(accounts, snap.Contacts, opts...)
	if rows == nil {
		rows = []flatten.CombinedRow{}
	}
	return nil, FlattenAccountsOutput{Rows: rows, Count: len(rows)}, nil
}

type ResolveFieldInput struct {
	Field     string `json:"field" jsonschema:"Overridable attribute name, e.g. channel or isJBP (required)"`
	ContactID string `json:"contact_id,omitempty" jsonschema:"Resolve for this contact's account and banner"`
	AccountID string `json:"account_id,omitempty" jsonschema:"Resolve for this account when no contact is given"`
	BannerID  string `json:"banner_id,omitempty" jsonschema:"Banner within account_id to resolve for"`
}

type ResolveFieldOutput struct {
	Field     string `json:"field"`
	Value     any    `json:"value"`
	Source    string `json:"source"`
	AccountID string `json:"account_id"`
	BannerID  string `json:"banner_id,omitempty"`
}

func (h *ReportHandlers) ResolveField(_ context.Context, _ *mcp.CallToolRequest, input ResolveFieldInput) (*mcp.CallToolResult, ResolveFieldOutput, error) {
	attr, ok := resolve.Lookup(input.Field)
	if !ok {
		return nil, ResolveFieldOutput{}, fmt.Errorf("unknown field: %s", input.Field)
	}

	var (
		account *models.Account
		banner  *models.BannerBuyingOffice
		err     error
	)
	switch {
	case input.ContactID != "":
		contact, cerr := h.store.GetContact(input.ContactID)
		if cerr != nil {
			return nil, ResolveFieldOutput{}, fmt.Errorf("contact not found: %w", cerr)
		}
		account, err = h.store.GetAccount(contact.AccountID)
		if err != nil {
			return nil, ResolveFieldOutput{}, fmt.Errorf("contact's account not found: %w", err)
		}
		banner = resolve.BannerFor(contact, account)
	case input.AccountID != "":
		account, err = h.store.GetAccount(input.AccountID)
		if err != nil {
			return nil, ResolveFieldOutput{}, fmt.Errorf("account not found: %w", err)
		}
		if input.BannerID != "" {
			banner = account.Banner(input.BannerID)
			if banner == nil {
				return nil, ResolveFieldOutput{}, fmt.Errorf("banner %s not found in account %s", input.BannerID, account.ID)
			}
		}
	default:
		return nil, ResolveFieldOutput{}, fmt.Errorf("contact_id or account_id is required")
	}

	v := resolve.Resolve(attr.Name, banner, account)
	out := ResolveFieldOutput{Field: attr.Name, Value: valueOf(v), Source: "account", AccountID: account.ID}
	if banner != nil {
		out.BannerID = banner.ID
		if !resolve.Resolve(attr.Name, banner, nil).IsEmpty() {
			out.Source = "banner"
		}
	}
	return nil, out, nil
}

func valueOf(v resolve.Value) any {
	switch v.Kind {
	case resolve.List:
		if v.List == nil {
			return []string{}
		}
		return v.List
	case resolve.Flag:
		if v.Flag == nil {
			return nil
		}
		return *v.Flag
	}
	return v.Text
}

type CheckIntegrityInput struct {
	Kind string `json:"kind,omitempty" jsonschema:"Only report issues of this kind"`
}

type CheckIntegrityOutput struct {
	Issues []integrity.Issue `json:"issues"`
	Count  int               `json:"count"`
}

func (h *ReportHandlers) CheckIntegrity(_ context.Context, _ *mcp.CallToolRequest, input CheckIntegrityInput) (*mcp.CallToolResult, CheckIntegrityOutput, error) {
	snap, err := h.store.Snapshot()
	if err != nil {
		return nil, CheckIntegrityOutput{}, fmt.Errorf("failed to load data: %w", err)
	}
	out := CheckIntegrityOutput{Issues: []integrity.Issue{}}
	for _, issue := range integrity.Check(snap, h.loc) {
		if input.Kind != "" && issue.Kind != input.Kind {
			continue
		}
		out.Issues = append(out.Issues, issue)
	}
	out.Count = len(out.Issues)
	return nil, out, nil
}
