// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server for Claude Desktop integration
package cli

import (
	"context"

	"github.com/harperreed/bannerbook/handlers"
	"github.com/harperreed/bannerbook/notify"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer registers every tool, resource, and prompt against app.
func NewServer(app *App, n notify.Notifier, version string) (*mcp.Server, error) {
	loc, err := app.Config.Location()
	if err != nil {
		return nil, err
	}
	e := app.Engine(n)

	crmHandlers := handlers.NewCRMHandlers(app.Store)
	reportHandlers := handlers.NewReportHandlers(app.Store, loc)
	alertHandlers := handlers.NewAlertHandlers(app.Store, e, app.Ledger)
	vizHandlers := handlers.NewVizHandlers(app.Store)
	resourceHandlers := handlers.NewResourceHandlers(app.Store, app.Config.Policy())
	promptHandlers := handlers.NewPromptHandlers(app.Store, e)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "bannerbook",
		Version: version,
	}, nil)

	// Account book
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_account",
		Description: "Add a new account to the book",
	}, crmHandlers.AddAccount)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_banner",
		Description: "Add a banner or buying office to an account; its settings override the account's for contacts under it",
	}, crmHandlers.AddBanner)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a contact to an account, optionally under a banner and a manager",
	}, crmHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_task",
		Description: "Add a task about an account or contact, optionally with a due-date reminder",
	}, crmHandlers.AddTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_task_status",
		Description: "Change a task's status",
	}, crmHandlers.UpdateTaskStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_accounts",
		Description: "Search accounts by account or banner name",
	}, crmHandlers.FindAccounts)

	// Reporting
	mcp.AddTool(server, &mcp.Tool{
		Name:        "flatten_accounts",
		Description: "Produce one reporting row per contact (and per account without contacts) with banner overrides applied",
	}, reportHandlers.FlattenAccounts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_field",
		Description: "Show the effective value of an overridable field and whether it came from the banner or the account",
	}, reportHandlers.ResolveField)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_integrity",
		Description: "List dangling references, manager cycles, and unreadable dates",
	}, reportHandlers.CheckIntegrity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "org_chart",
		Description: "Generate a GraphViz org chart for an account",
	}, vizHandlers.OrgChart)

	// Alerts
	mcp.AddTool(server, &mcp.Tool{
		Name:        "preview_alerts",
		Description: "Show reminders that are due and not yet sent, without sending them",
	}, alertHandlers.PreviewAlerts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "run_alerts",
		Description: "Deliver due reminders that have not been sent and record them",
	}, alertHandlers.RunAlerts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "alert_history",
		Description: "List recently sent reminders, newest first",
	}, alertHandlers.AlertHistory)

	// Resources
	server.AddResource(&mcp.Resource{
		URI:         "bannerbook://accounts",
		Name:        "accounts",
		Description: "All accounts with their banners",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "bannerbook://accounts/{id}",
		Name:        "account",
		Description: "One account with its flattened rows",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         "bannerbook://rows",
		Name:        "rows",
		Description: "Flattened reporting rows for every account",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         "bannerbook://dashboard",
		Name:        "dashboard",
		Description: "Summary statistics and upcoming reminders",
		MIMEType:    "text/plain",
	}, resourceHandlers.ReadResource)

	// Prompts
	server.AddPrompt(&mcp.Prompt{
		Name:        "account-review",
		Description: "Review an account's banners, org chart, and open work",
		Arguments: []*mcp.PromptArgument{
			{Name: "account_id", Description: "Account to review", Required: true},
		},
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "upcoming-alerts",
		Description: "Brief the due reminders grouped by account",
	}, promptHandlers.GetPrompt)

	return server, nil
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(app *App, version string) error {
	app.Logger.Info("Starting bannerbook MCP server")

	// Stdout carries the protocol, so alerts only go to the log and NATS.
	n, err := app.Notifier(false)
	if err != nil {
		return err
	}

	server, err := NewServer(app, n, version)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return server.Run(ctx, &mcp.StdioTransport{})
}
