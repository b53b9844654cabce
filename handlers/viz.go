// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides the org_chart tool for agents
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/bannerbook/store"
	"github.com/harperreed/bannerbook/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type VizHandlers struct {
	store *store.Store
}

func NewVizHandlers(s *store.Store) *VizHandlers {
	return &VizHandlers{store: s}
}

type OrgChartInput struct {
	AccountID string `json:"account_id" jsonschema:"Account to chart (required)"`
}

type OrgChartOutput struct {
	AccountID string `json:"account_id"`
	DOTSource string `json:"dot_source"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) OrgChart(_ context.Context, _ *mcp.CallToolRequest, input OrgChartInput) (*mcp.CallToolResult, OrgChartOutput, error) {
	if input.AccountID == "" {
		return nil, OrgChartOutput{}, fmt.Errorf("account_id is required")
	}
	account, err := h.store.GetAccount(input.AccountID)
	if err != nil {
		return nil, OrgChartOutput{}, fmt.Errorf("account not found: %w", err)
	}
	contacts, err := h.store.ListContacts()
	if err != nil {
		return nil, OrgChartOutput{}, fmt.Errorf("failed to list contacts: %w", err)
	}

	dot, err := viz.GenerateOrgChart(account, contacts)
	if err != nil {
		return nil, OrgChartOutput{}, fmt.Errorf("failed to generate org chart: %w", err)
	}

	return nil, OrgChartOutput{
		AccountID: account.ID,
		DOTSource: dot,
		EdgeCount: strings.Count(dot, "->"),
	}, nil
}
