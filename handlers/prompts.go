// ABOUTME: MCP prompt handlers for reusable account-management workflow templates
// ABOUTME: Provides account review and upcoming-alert briefing prompts
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/bannerbook/engine"
	"github.com/harperreed/bannerbook/flatten"
	"github.com/harperreed/bannerbook/hierarchy"
	"github.com/harperreed/bannerbook/models"
	"github.com/harperreed/bannerbook/resolve"
	"github.com/harperreed/bannerbook/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PromptHandlers struct {
	store  *store.Store
	engine *engine.Engine
}

func NewPromptHandlers(s *store.Store, e *engine.Engine) *PromptHandlers {
	return &PromptHandlers{store: s, engine: e}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	arguments := request.Params.Arguments
	switch name {
	case "account-review":
		return h.getAccountReviewPrompt(arguments)
	case "upcoming-alerts":
		return h.getUpcomingAlertsPrompt(ctx)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: text,
				},
			},
		},
	}
}

func (h *PromptHandlers) getAccountReviewPrompt(args map[string]string) (*mcp.GetPromptResult, error) {
	accountID, ok := args["account_id"]
	if !ok || accountID == "" {
		return nil, fmt.Errorf("account_id is required")
	}

	snap, err := h.store.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	account := snap.AccountByID(accountID)
	if account == nil {
		return nil, fmt.Errorf("account not found: %s", accountID)
	}

	var promptText strings.Builder
	promptText.WriteString("Please review this account and suggest next steps for the account team:\n\n")
	promptText.WriteString(fmt.Sprintf("Account: %s\n", account.Name))
	if account.HQLocation != "" {
		promptText.WriteString(fmt.Sprintf("HQ: %s\n", account.HQLocation))
	}
	if account.AccountOwner != "" {
		promptText.WriteString(fmt.Sprintf("Owner: %s\n", account.AccountOwner))
	}
	writeOverridable(&promptText, "", resolve.Effective(nil, account))

	if len(account.BannerBuyingOffices) > 0 {
		promptText.WriteString("\nBanners / buying offices:\n")
		for i := range account.BannerBuyingOffices {
			b := &account.BannerBuyingOffices[i]
			promptText.WriteString(fmt.Sprintf("- %s\n", b.Name))
			writeOverridable(&promptText, "    ", resolve.Effective(b, account))
		}
	}

	var contacts []models.Contact
	for _, c := range snap.Contacts {
		if c.AccountID == account.ID {
			contacts = append(contacts, c)
		}
	}
	if len(contacts) > 0 {
		promptText.WriteString("\nOrganization:\n")
		tree := hierarchy.Build(contacts)
		tree.Walk(func(n *hierarchy.Node, depth int) {
			line := n.Contact.Name()
			if n.Contact.Title != "" {
				line += ", " + n.Contact.Title
			}
			if b := resolve.BannerFor(n.Contact, account); b != nil {
				line += " [" + b.Name + "]"
			}
			promptText.WriteString(fmt.Sprintf("%s- %s\n", strings.Repeat("  ", depth), line))
		})
		if len(tree.Cycles) > 0 {
			promptText.WriteString("\nNote: the reporting lines contain a management cycle that should be corrected.\n")
		}
	}

	openTasks := 0
	for _, t := range snap.Tasks {
		if !t.IsClosed() && (t.RelatedID == account.ID || hasContact(contacts, t.RelatedID)) {
			openTasks++
		}
	}
	promptText.WriteString(fmt.Sprintf("\nOpen tasks: %d\n", openTasks))

	promptText.WriteString("\nPlease cover:\n")
	promptText.WriteString("1. Where banner-level settings diverge from the account and whether that looks intentional\n")
	promptText.WriteString("2. Gaps in coverage across the org chart\n")
	promptText.WriteString("3. Upcoming JBP or reset milestones worth preparing for\n")

	return userPrompt(fmt.Sprintf("Account review for %s", account.Name), promptText.String()), nil
}

func hasContact(contacts []models.Contact, id string) bool {
	for _, c := range contacts {
		if c.ID == id {
			return true
		}
	}
	return false
}

func writeOverridable(b *strings.Builder, indent string, eff models.Overridable) {
	if eff.Channel != "" {
		b.WriteString(fmt.Sprintf("%sChannel: %s\n", indent, eff.Channel))
	}
	if eff.Footprint != "" {
		b.WriteString(fmt.Sprintf("%sFootprint: %s\n", indent, eff.Footprint))
	}
	if len(eff.OperatingStates) > 0 {
		b.WriteString(fmt.Sprintf("%sOperating states: %s\n", indent, strings.Join(eff.OperatingStates, flatten.DisplaySeparator)))
	}
	if eff.IsJBP != nil {
		b.WriteString(fmt.Sprintf("%sJBP: %s\n", indent, flatten.YesNo(eff.IsJBP)))
	}
	if eff.NextJBPDate != "" {
		b.WriteString(fmt.Sprintf("%sNext JBP: %s\n", indent, eff.NextJBPDate))
	}
}

func (h *PromptHandlers) getUpcomingAlertsPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	snap, err := h.store.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	report, err := h.engine.Preview(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("failed to preview alerts: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("These reminders are due as of %s:\n\n", report.Today))
	if len(report.Alerts) == 0 {
		promptText.WriteString("(none)\n")
	}
	for _, n := range report.Alerts {
		promptText.WriteString(fmt.Sprintf("- %s (%s, due %s, in %d days)", n.Title, n.AlertType, n.DueDate, n.DaysUntil))
		if name := n.Context["accountName"]; name != "" {
			promptText.WriteString(fmt.Sprintf(" at %s", name))
		}
		promptText.WriteString("\n")
	}
	if len(report.Problems) > 0 {
		promptText.WriteString(fmt.Sprintf("\n%d records have unreadable dates and were skipped.\n", len(report.Problems)))
	}
	promptText.WriteString("\nPlease draft a short briefing: group the reminders by account, ")
	promptText.WriteString("flag anything due today, and suggest a one-line action for each.\n")

	return userPrompt("Upcoming reminder briefing", promptText.String()), nil
}
