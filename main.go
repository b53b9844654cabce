// ABOUTME: Entry point for the bannerbook MCP server and CLI
// ABOUTME: Routes to MCP server or CLI commands based on arguments
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/harperreed/bannerbook/charm"
	"github.com/harperreed/bannerbook/cli"
	"github.com/harperreed/bannerbook/config"
)

const version = "0.2.0"

type command func(app *cli.App, args []string) error

var subcommands = map[string]map[string]command{
	"crm": {
		"add-account":    cli.AddAccountCommand,
		"add-banner":     cli.AddBannerCommand,
		"add-contact":    cli.AddContactCommand,
		"add-task":       cli.AddTaskCommand,
		"complete-task":  cli.CompleteTaskCommand,
		"list-accounts":  cli.ListAccountsCommand,
		"delete-account": cli.DeleteAccountCommand,
	},
	"report": {
		"rows": cli.ReportRowsCommand,
	},
	"alerts": {
		"run":     cli.AlertsRunCommand,
		"preview": cli.AlertsPreviewCommand,
		"watch":   cli.AlertsWatchCommand,
		"prune":   cli.AlertsPruneCommand,
		"history": cli.AlertsHistoryCommand,
	},
	"viz": {
		"org": cli.VizOrgCommand,
	},
	"export": {
		"accounts": cli.ExportAccountsCommand,
	},
	"import": {
		"accounts": cli.ImportAccountsCommand,
	},
	"sync": {
		"status": func(app *cli.App, args []string) error { return charm.SyncStatusCommand(app.Client, args) },
		"now":    func(app *cli.App, args []string) error { return charm.SyncNowCommand(app.Client, args) },
		"auto":   func(app *cli.App, args []string) error { return charm.SetAutoSyncCommand(app.Client, args) },
		"wipe":   func(app *cli.App, args []string) error { return charm.SyncWipeCommand(app.Client, args) },
	},
}

var topLevel = map[string]command{
	"check":     cli.CheckCommand,
	"dashboard": cli.DashboardCommand,
}

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Config file (default: ~/.local/share/bannerbook/config.json)")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("bannerbook version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	commandName := args[0]
	commandArgs := args[1:]

	var run func(app *cli.App) error
	switch {
	case commandName == "mcp":
		run = func(app *cli.App) error { return cli.MCPCommand(app, version) }
	case topLevel[commandName] != nil:
		cmd := topLevel[commandName]
		run = func(app *cli.App) error { return cmd(app, commandArgs) }
	case subcommands[commandName] != nil:
		if len(commandArgs) == 0 {
			fmt.Printf("Error: %s requires a subcommand\n\n", commandName)
			printUsage()
			os.Exit(1)
		}
		cmd, ok := subcommands[commandName][commandArgs[0]]
		if !ok {
			fmt.Printf("Unknown %s command: %s\n\n", commandName, commandArgs[0])
			printUsage()
			os.Exit(1)
		}
		rest := commandArgs[1:]
		run = func(app *cli.App) error { return cmd(app, rest) }
	default:
		fmt.Printf("Unknown command: %s\n\n", commandName)
		printUsage()
		os.Exit(1)
	}

	app, err := cli.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open data store: %v", err)
	}

	err = run(app)
	_ = app.Close()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func printUsage() {
	fmt.Printf(`bannerbook v%s - Account book with banner overrides and date reminders

USAGE:
  bannerbook [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <path>        Config file (default: ~/.local/share/bannerbook/config.json)

COMMANDS:
  mcp                    Start MCP server for Claude Desktop
  crm                    Account, banner, contact, and task commands
  report                 Flattened reporting rows
  alerts                 Reminder passes and history
  check                  Report dangling references, manager cycles, bad dates
  dashboard              Summary statistics
  viz                    Visualization commands
  export / import        CSV account exchange
  sync                   Charm sync commands

CRM COMMANDS:
  bannerbook crm add-account      Add an account
    --name <name>                   Account name (required)
    --hq, --owner, --notes
    --channel, --footprint, --states "A; B", --jbp yes|no, --planograms yes|no, --next-jbp <date>

  bannerbook crm add-banner       Add a banner/buying office
    --account <id> --name <name>    (required)
    Same override flags as add-account; unset flags inherit from the account

  bannerbook crm add-contact      Add a contact
    --account <id> --first <name>   (required)
    --last, --email, --title, --banner <id>, --manager <contact id>, --primary
    --birthday, --next-contact, --last-contact <YYYY-MM-DD>, --follow-up-days <n>

  bannerbook crm add-task         Add a task
    --title <title> (--account <id> | --contact <id>)
    --due <YYYY-MM-DD>, --alert-days <n>, --priority low|medium|high

  bannerbook crm complete-task <id>
  bannerbook crm list-accounts [--query <text>]
  bannerbook crm delete-account <id>

REPORT COMMANDS:
  bannerbook report rows [--account <id>] [--csv] [--output <file>]

ALERT COMMANDS:
  bannerbook alerts run           Deliver due reminders once
  bannerbook alerts preview       Show due reminders without sending
  bannerbook alerts watch         Run a pass every --interval (default 1h)
  bannerbook alerts prune         Drop ledger entries older than --days
  bannerbook alerts history       Show recently sent reminders (--limit)

VIZ COMMANDS:
  bannerbook viz org <account id> [--output <file>]

EXPORT/IMPORT:
  bannerbook export accounts [--output <file>]
  bannerbook import accounts --input <file>

SYNC COMMANDS:
  bannerbook sync status|now|auto|wipe

`, version)
}
