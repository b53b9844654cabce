// ABOUTME: Reporting CLI commands: flattened rows, integrity check, dashboard, CSV export/import
// ABOUTME: All read commands work from one snapshot of the store
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/harperreed/bannerbook/export"
	"github.com/harperreed/bannerbook/flatten"
	"github.com/harperreed/bannerbook/integrity"
	"github.com/harperreed/bannerbook/models"
	"github.com/harperreed/bannerbook/viz"
)

// outputWriter returns a file writer for path, or app.Out when path is empty.
func outputWriter(app *App, path string) (io.Writer, func() error, error) {
	if path == "" {
		return app.Out, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, f.Close, nil
}

// ReportRowsCommand prints one combined row per contact and per contact-less account
func ReportRowsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("report rows", flag.ExitOnError)
	accountID := fs.String("account", "", "Only report this account")
	asCSV := fs.Bool("csv", false, "Write CSV instead of a table")
	output := fs.String("output", "", "Output file (default: stdout)")
	_ = fs.Parse(args)

	snap, err := app.Store.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	accounts := snap.Accounts
	if *accountID != "" {
		a := snap.AccountByID(*accountID)
		if a == nil {
			return fmt.Errorf("account not found: %s", *accountID)
		}
		accounts = []models.Account{*a}
	}

	w, closeFn, err := outputWriter(app, *output)
	if err != nil {
		return err
	}
	if *asCSV {
		if err := export.WriteRows(w, accounts, snap.Contacts); err != nil {
			_ = closeFn()
			return fmt.Errorf("failed to write rows: %w", err)
		}
		return closeFn()
	}

	rows := flatten.Flatten(accounts, snap.Contacts)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ACCOUNT\tBANNER\tCONTACT\tCHANNEL\tFOOTPRINT\tJBP")
	_, _ = fmt.Fprintln(tw, "-------\t------\t-------\t-------\t---------\t---")
	for _, r := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.AccountName, dash(r.BannerName), dash(r.ContactName), dash(r.Channel), dash(r.Footprint), dash(r.IsJBP))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\nTotal: %d row(s)\n", len(rows))
	return closeFn()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// CheckCommand reports reference and date problems in the stored data
func CheckCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	_ = fs.Parse(args)

	snap, err := app.Store.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	loc, err := app.Config.Location()
	if err != nil {
		return err
	}

	issues := integrity.Check(snap, loc)
	if len(issues) == 0 {
		fmt.Fprintln(app.Out, "✓ No issues found")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KIND\tENTITY\tID\tDETAIL")
	_, _ = fmt.Fprintln(w, "----\t------\t--\t------")
	for _, issue := range issues {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", issue.Kind, issue.EntityType, issue.EntityID, issue.Detail)
	}
	_ = w.Flush()
	fmt.Fprintf(app.Out, "\nTotal: %d issue(s)\n", len(issues))
	return nil
}

// DashboardCommand renders summary statistics
func DashboardCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	_ = fs.Parse(args)

	snap, err := app.Store.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	stats := viz.GenerateDashboardStats(snap, time.Now(), app.Config.Policy())
	fmt.Fprint(app.Out, viz.RenderDashboard(stats))
	return nil
}

// ExportAccountsCommand writes every account, banners included, as CSV
func ExportAccountsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("export accounts", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	_ = fs.Parse(args)

	accounts, err := app.Store.ListAccounts()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}
	w, closeFn, err := outputWriter(app, *output)
	if err != nil {
		return err
	}
	if err := export.WriteAccounts(w, accounts); err != nil {
		_ = closeFn()
		return fmt.Errorf("failed to export accounts: %w", err)
	}
	if err := closeFn(); err != nil {
		return err
	}
	if *output != "" {
		fmt.Fprintf(app.Out, "✓ Exported %d account(s) to %s\n", len(accounts), *output)
	}
	return nil
}

// ImportAccountsCommand saves every account in a CSV file. Rows with an id
// replace the stored account of that id.
func ImportAccountsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("import accounts", flag.ExitOnError)
	input := fs.String("input", "", "CSV file to import (required)")
	_ = fs.Parse(args)

	if *input == "" {
		return fmt.Errorf("--input is required")
	}
	f, err := os.Open(*input)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", *input, err)
	}
	defer func() { _ = f.Close() }()

	accounts, err := export.ReadAccounts(f)
	if err != nil {
		return fmt.Errorf("failed to read accounts: %w", err)
	}
	for i := range accounts {
		a := &accounts[i]
		if a.ID != "" {
			if existing, err := app.Store.GetAccount(a.ID); err == nil {
				a.Version = existing.Version
				a.CreatedAt = existing.CreatedAt
			}
		}
		if err := app.Store.SaveAccount(a); err != nil {
			return fmt.Errorf("failed to save account %q: %w", a.Name, err)
		}
	}
	fmt.Fprintf(app.Out, "✓ Imported %d account(s)\n", len(accounts))
	return nil
}
