// ABOUTME: Visualization CLI commands
// ABOUTME: Handles the account org chart command
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/bannerbook/viz"
)

// VizOrgCommand generates an account's org chart as DOT.
func VizOrgCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("viz org", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("account ID required")
	}

	account, err := app.Store.GetAccount(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("account not found: %w", err)
	}
	contacts, err := app.Store.ListContacts()
	if err != nil {
		return fmt.Errorf("failed to list contacts: %w", err)
	}

	dot, err := viz.GenerateOrgChart(account, contacts)
	if err != nil {
		return err
	}

	if *output != "" {
		return os.WriteFile(*output, []byte(dot), 0644)
	}

	fmt.Fprintln(app.Out, dot)
	return nil
}
