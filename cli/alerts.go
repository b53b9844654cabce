// ABOUTME: Alert CLI commands: run, preview, watch, prune, and history
// ABOUTME: Every pass goes through the engine so delivery and recording stay paired
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/harperreed/bannerbook/engine"
	"github.com/harperreed/bannerbook/notify"
)

// MinWatchInterval is the shortest interval accepted by `alerts watch`.
const MinWatchInterval = time.Minute

func printReport(app *App, report *engine.Report) {
	if report.DryRun {
		fmt.Fprintf(app.Out, "Preview for %s (nothing sent)\n\n", report.Today)
		for _, n := range report.Alerts {
			fmt.Fprintln(app.Out, notify.FormatLine(n))
		}
	}
	verb := "sent"
	if report.DryRun {
		verb = "would be sent"
	}
	fmt.Fprintf(app.Out, "\n%d alert(s) %s, %d already sent", len(report.Alerts), verb, report.AlreadySent)
	if report.Pruned > 0 {
		fmt.Fprintf(app.Out, ", %d old record(s) pruned", report.Pruned)
	}
	fmt.Fprintln(app.Out)
	for _, p := range report.Problems {
		fmt.Fprintf(app.Out, "  ⚠ %s\n", p.Error())
	}
}

func runPass(ctx context.Context, app *App, e *engine.Engine) error {
	snap, err := app.Store.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	report, err := e.Run(ctx, snap)
	if report != nil {
		printReport(app, report)
	}
	return err
}

// AlertsRunCommand evaluates reminders once and delivers the new ones
func AlertsRunCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("alerts run", flag.ExitOnError)
	_ = fs.Parse(args)

	n, err := app.Notifier(true)
	if err != nil {
		return err
	}
	return runPass(context.Background(), app, app.Engine(n))
}

// AlertsPreviewCommand shows what a run would deliver without sending or recording
func AlertsPreviewCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("alerts preview", flag.ExitOnError)
	_ = fs.Parse(args)

	snap, err := app.Store.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	report, err := app.Engine(notify.Discard).Preview(context.Background(), snap)
	if err != nil {
		return err
	}
	printReport(app, report)
	return nil
}

// AlertsWatchCommand runs a pass immediately and then on every interval
// until interrupted.
func AlertsWatchCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("alerts watch", flag.ExitOnError)
	interval := fs.Duration("interval", time.Hour, "Time between passes (minimum 1m)")
	_ = fs.Parse(args)

	if *interval < MinWatchInterval {
		return fmt.Errorf("interval must be at least %s", MinWatchInterval)
	}

	n, err := app.Notifier(true)
	if err != nil {
		return err
	}
	e := app.Engine(n)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watch(ctx, *interval, func(ctx context.Context) error {
		if err := runPass(ctx, app, e); err != nil {
			app.Logger.WithError(err).Error("Alert pass failed")
		}
		return nil
	})
}

// watch calls pass immediately and after every tick until ctx is done.
func watch(ctx context.Context, interval time.Duration, pass func(context.Context) error) error {
	if err := pass(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if ctx.Err() != nil {
				return nil
			}
			if err := pass(ctx); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// AlertsPruneCommand drops ledger entries older than the retention window
func AlertsPruneCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("alerts prune", flag.ExitOnError)
	days := fs.Int("days", app.Config.RetentionDays, "Retention in days")
	_ = fs.Parse(args)

	if *days <= 0 {
		return fmt.Errorf("--days must be positive")
	}
	removed, err := app.Ledger.Prune(context.Background(), time.Duration(*days)*24*time.Hour, time.Now())
	if err != nil {
		return fmt.Errorf("failed to prune ledger: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Pruned %d record(s) older than %d days\n", removed, *days)
	return nil
}

// AlertsHistoryCommand lists recently sent alerts, newest first
func AlertsHistoryCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("alerts history", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum number of records to show")
	_ = fs.Parse(args)

	records, err := app.Ledger.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read ledger: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(app.Out, "No alerts sent yet")
		return nil
	}
	if len(records) > *limit {
		records = records[:*limit]
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SENT\tTYPE\tDUE\tALERT ID")
	_, _ = fmt.Fprintln(w, "----\t----\t---\t--------")
	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", formatTimeSince(r.SentAt), r.AlertType, r.DueDate, r.AlertID)
	}
	_ = w.Flush()
	return nil
}

// formatTimeSince formats a time duration in a human-readable way.
func formatTimeSince(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	} else if duration < time.Hour {
		minutes := int(duration.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	} else if duration < 24*time.Hour {
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := int(duration.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
