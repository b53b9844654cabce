// ABOUTME: MCP resource handlers exposing bannerbook data read-only via bannerbook:// URIs
// ABOUTME: Serves accounts, single accounts, reporting rows, and the dashboard
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/bannerbook/alerts"
	"github.com/harperreed/bannerbook/flatten"
	"github.com/harperreed/bannerbook/models"
	"github.com/harperreed/bannerbook/store"
	"github.com/harperreed/bannerbook/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "bannerbook://"

type ResourceHandlers struct {
	store  *store.Store
	policy alerts.Policy
	now    func() time.Time
}

func NewResourceHandlers(s *store.Store, policy alerts.Policy) *ResourceHandlers {
	return &ResourceHandlers{store: s, policy: policy, now: time.Now}
}

// ReadResource handles resource read requests.
func (h *ResourceHandlers) ReadResource(_ context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, uriScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", uriScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, uriScheme), "/")
	switch parts[0] {
	case "accounts":
		if len(parts) == 1 || parts[1] == "" {
			return h.readAllAccounts(uri)
		}
		return h.readAccount(uri, parts[1])
	case "rows":
		return h.readRows(uri)
	case "dashboard":
		return h.readDashboard(uri)
	default:
		return nil, fmt.Errorf("resource not found: %s", uri)
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{URI: uri, MIMEType: "application/json", Text: string(data)},
	}}, nil
}

func (h *ResourceHandlers) readAllAccounts(uri string) (*mcp.ReadResourceResult, error) {
	accounts, err := h.store.ListAccounts()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	return jsonResource(uri, accounts)
}

func (h *ResourceHandlers) readAccount(uri, id string) (*mcp.ReadResourceResult, error) {
	snap, err := h.store.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	account := snap.AccountByID(id)
	if account == nil {
		return nil, fmt.Errorf("resource not found: %s", uri)
	}

	data := struct {
		Account *models.Account       `json:"account"`
		Rows    []flatten.CombinedRow `json:"rows"`
	}{
		Account: account,
		Rows:    flatten.Flatten([]models.Account{*account}, snap.Contacts),
	}
	return jsonResource(uri, data)
}

func (h *ResourceHandlers) readRows(uri string) (*mcp.ReadResourceResult, error) {
	snap, err := h.store.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	return jsonResource(uri, flatten.Flatten(snap.Accounts, snap.Contacts))
}

func (h *ResourceHandlers) readDashboard(uri string) (*mcp.ReadResourceResult, error) {
	snap, err := h.store.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	stats := viz.GenerateDashboardStats(snap, h.now(), h.policy)
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{URI: uri, MIMEType: "text/plain", Text: viz.RenderDashboard(stats)},
	}}, nil
}
