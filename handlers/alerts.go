// ABOUTME: MCP tool handlers for previewing, running, and auditing alert passes
// ABOUTME: Delegates to the engine so MCP and CLI passes share one serialized path
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/bannerbook/engine"
	"github.com/harperreed/bannerbook/ledger"
	"github.com/harperreed/bannerbook/models"
	"github.com/harperreed/bannerbook/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type AlertHandlers struct {
	store  *store.Store
	engine *engine.Engine
	ledger ledger.Ledger
}

func NewAlertHandlers(s *store.Store, e *engine.Engine, l ledger.Ledger) *AlertHandlers {
	return &AlertHandlers{store: s, engine: e, ledger: l}
}

type AlertPassInput struct{}

func (h *AlertHandlers) PreviewAlerts(ctx context.Context, _ *mcp.CallToolRequest, _ AlertPassInput) (*mcp.CallToolResult, engine.Report, error) {
	snap, err := h.store.Snapshot()
	if err != nil {
		return nil, engine.Report{}, fmt.Errorf("failed to load data: %w", err)
	}
	report, err := h.engine.Preview(ctx, snap)
	if err != nil {
		return nil, engine.Report{}, err
	}
	return nil, *report, nil
}

func (h *AlertHandlers) RunAlerts(ctx context.Context, _ *mcp.CallToolRequest, _ AlertPassInput) (*mcp.CallToolResult, engine.Report, error) {
	snap, err := h.store.Snapshot()
	if err != nil {
		return nil, engine.Report{}, fmt.Errorf("failed to load data: %w", err)
	}
	report, err := h.engine.Run(ctx, snap)
	if err != nil {
		return nil, engine.Report{}, err
	}
	return nil, *report, nil
}

type AlertHistoryInput struct {
	ContactID string `json:"contact_id,omitempty" jsonschema:"Only show alerts sent about this contact"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 20)"`
}

type AlertHistoryOutput struct {
	Sent  []models.SentAlertRecord `json:"sent"`
	Count int                      `json:"count"`
}

func (h *AlertHandlers) AlertHistory(ctx context.Context, _ *mcp.CallToolRequest, input AlertHistoryInput) (*mcp.CallToolResult, AlertHistoryOutput, error) {
	if input.Limit == 0 {
		input.Limit = 20
	}
	all, err := h.ledger.List(ctx)
	if err != nil {
		return nil, AlertHistoryOutput{}, fmt.Errorf("failed to read ledger: %w", err)
	}
	out := AlertHistoryOutput{Sent: []models.SentAlertRecord{}}
	for _, rec := range all {
		if len(out.Sent) >= input.Limit {
			break
		}
		if input.ContactID != "" && rec.ContactID != input.ContactID {
			continue
		}
		out.Sent = append(out.Sent, rec)
	}
	out.Count = len(out.Sent)
	return nil, out, nil
}
