// ABOUTME: Account, banner, contact, and task CLI commands
// ABOUTME: Human-friendly commands for maintaining the account book
package cli

import (
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harperreed/bannerbook/export"
	"github.com/harperreed/bannerbook/models"
)

func overridableFlags(fs *flag.FlagSet) func() (models.Overridable, error) {
	channel := fs.String("channel", "", "Retail channel")
	footprint := fs.String("footprint", "", "Store footprint")
	states := fs.String("states", "", "Operating states, separated by '; '")
	jbp := fs.String("jbp", "", "Joint business plan in place (yes/no)")
	planograms := fs.String("planograms", "", "Has planograms (yes/no)")
	nextJBP := fs.String("next-jbp", "", "Next JBP date (YYYY-MM-DD)")

	return func() (models.Overridable, error) {
		o := models.Overridable{
			Channel:         *channel,
			Footprint:       *footprint,
			OperatingStates: export.SplitMulti(*states),
			NextJBPDate:     *nextJBP,
		}
		var err error
		if o.IsJBP, err = export.ParseFlag(*jbp); err != nil {
			return o, fmt.Errorf("--jbp: %w", err)
		}
		if o.HasPlanograms, err = export.ParseFlag(*planograms); err != nil {
			return o, fmt.Errorf("--planograms: %w", err)
		}
		return o, nil
	}
}

// AddAccountCommand adds a new account
func AddAccountCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("add-account", flag.ExitOnError)
	name := fs.String("name", "", "Account name (required)")
	hq := fs.String("hq", "", "Headquarters location")
	owner := fs.String("owner", "", "Account owner")
	notes := fs.String("notes", "", "Notes about the account")
	overridable := overridableFlags(fs)
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}
	o, err := overridable()
	if err != nil {
		return err
	}

	account := &models.Account{
		Name:         *name,
		HQLocation:   *hq,
		AccountOwner: *owner,
		Notes:        *notes,
		Overridable:  o,
	}
	if err := app.Store.SaveAccount(account); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	fmt.Fprintf(app.Out, "✓ Account created: %s (ID: %s)\n", account.Name, account.ID)
	if account.Channel != "" {
		fmt.Fprintf(app.Out, "  Channel: %s\n", account.Channel)
	}
	return nil
}

// AddBannerCommand adds a banner/buying office to an existing account
func AddBannerCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("add-banner", flag.ExitOnError)
	accountID := fs.String("account", "", "Account ID (required)")
	name := fs.String("name", "", "Banner name (required)")
	overridable := overridableFlags(fs)
	_ = fs.Parse(args)

	if *accountID == "" || *name == "" {
		return fmt.Errorf("--account and --name are required")
	}
	o, err := overridable()
	if err != nil {
		return err
	}

	account, err := app.Store.GetAccount(*accountID)
	if err != nil {
		return fmt.Errorf("account not found: %w", err)
	}
	account.BannerBuyingOffices = append(account.BannerBuyingOffices, models.BannerBuyingOffice{
		Name:        *name,
		Overridable: o,
	})
	if err := app.Store.SaveAccount(account); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	banner := account.BannerBuyingOffices[len(account.BannerBuyingOffices)-1]
	fmt.Fprintf(app.Out, "✓ Banner added to %s: %s (ID: %s)\n", account.Name, banner.Name, banner.ID)
	return nil
}

// AddContactCommand adds a new contact
func AddContactCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("add-contact", flag.ExitOnError)
	accountID := fs.String("account", "", "Account ID (required)")
	first := fs.String("first", "", "First name (required)")
	last := fs.String("last", "", "Last name")
	email := fs.String("email", "", "Email address")
	title := fs.String("title", "", "Job title")
	banner := fs.String("banner", "", "Banner ID within the account")
	manager := fs.String("manager", "", "Manager's contact ID")
	primary := fs.Bool("primary", false, "Primary contact for the account")
	birthday := fs.String("birthday", "", "Birthday (YYYY-MM-DD); enables a birthday reminder")
	nextContact := fs.String("next-contact", "", "Next contact date (YYYY-MM-DD); enables a reminder")
	lastContact := fs.String("last-contact", "", "Last contact date (YYYY-MM-DD); enables a follow-up reminder")
	followUp := fs.Int("follow-up-days", 0, "Days after the last contact to follow up (default from config)")
	_ = fs.Parse(args)

	if *accountID == "" || *first == "" {
		return fmt.Errorf("--account and --first are required")
	}
	if _, err := app.Store.GetAccount(*accountID); err != nil {
		return fmt.Errorf("account not found: %w", err)
	}

	contact := &models.Contact{
		AccountID:            *accountID,
		FirstName:            *first,
		LastName:             *last,
		Email:                *email,
		Title:                *title,
		BannerBuyingOfficeID: *banner,
		ManagerID:            *manager,
		IsPrimaryContact:     *primary,
		Birthday:             *birthday,
		BirthdayAlert:        *birthday != "",
		NextContactDate:      *nextContact,
		NextContactAlert:     *nextContact != "",
		LastContactDate:      *lastContact,
		LastContactAlert:     *lastContact != "",
		FollowUpDays:         *followUp,
	}
	if err := app.Store.SaveContact(contact); err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	fmt.Fprintf(app.Out, "✓ Contact created: %s (ID: %s)\n", contact.Name(), contact.ID)
	if contact.Email != "" {
		fmt.Fprintf(app.Out, "  Email: %s\n", contact.Email)
	}
	return nil
}

// AddTaskCommand adds a task related to an account or contact
func AddTaskCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("add-task", flag.ExitOnError)
	title := fs.String("title", "", "Task title (required)")
	account := fs.String("account", "", "Related account ID")
	contact := fs.String("contact", "", "Related contact ID")
	due := fs.String("due", "", "Due date (YYYY-MM-DD); enables a reminder")
	alertDays := fs.Int("alert-days", 0, "Days before due to start reminding (default from config)")
	priority := fs.String("priority", "medium", "Priority (low, medium, high)")
	_ = fs.Parse(args)

	task := &models.Task{
		Title:        *title,
		DueDate:      *due,
		DueDateAlert: *due != "",
		AlertDays:    *alertDays,
		Priority:     *priority,
		Status:       models.TaskStatusPending,
	}
	switch {
	case *account != "" && *contact != "":
		return fmt.Errorf("use either --account or --contact, not both")
	case *account != "":
		task.RelatedID, task.RelatedType = *account, models.RelatedAccount
	case *contact != "":
		task.RelatedID, task.RelatedType = *contact, models.RelatedContact
	default:
		return fmt.Errorf("--account or --contact is required")
	}

	if err := app.Store.SaveTask(task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Task created: %s (ID: %s)\n", task.Title, task.ID)
	return nil
}

// CompleteTaskCommand marks a task completed
func CompleteTaskCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("complete-task", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("task ID required")
	}

	task, err := app.Store.GetTask(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("task not found: %w", err)
	}
	if err := task.TransitionStatus(models.TaskStatusCompleted, time.Now()); err != nil {
		return err
	}
	if err := app.Store.SaveTask(task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Task completed: %s\n", task.Title)
	return nil
}

// ListAccountsCommand lists all accounts
func ListAccountsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("list-accounts", flag.ExitOnError)
	query := fs.String("query", "", "Filter by account or banner name")
	_ = fs.Parse(args)

	accounts, err := app.Store.ListAccounts()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	q := strings.ToLower(*query)
	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tCHANNEL\tBANNERS\tID")
	_, _ = fmt.Fprintln(w, "----\t-------\t-------\t--")

	shown := 0
	for _, a := range accounts {
		var banners []string
		match := q == "" || strings.Contains(strings.ToLower(a.Name), q)
		for _, b := range a.BannerBuyingOffices {
			banners = append(banners, b.Name)
			if strings.Contains(strings.ToLower(b.Name), q) {
				match = true
			}
		}
		if !match {
			continue
		}
		channel := a.Channel
		if channel == "" {
			channel = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Name, channel, strings.Join(banners, ", "), a.ID)
		shown++
	}
	_ = w.Flush()

	fmt.Fprintf(app.Out, "\nTotal: %d account(s)\n", shown)
	return nil
}

// DeleteAccountCommand deletes an account. Its contacts and tasks are kept
// and show up in `bannerbook check` until reassigned.
func DeleteAccountCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("delete-account", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("account ID required")
	}

	account, err := app.Store.GetAccount(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("account not found: %w", err)
	}
	if err := app.Store.DeleteAccount(account.ID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Account deleted: %s\n", account.Name)
	return nil
}
