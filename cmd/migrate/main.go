// ABOUTME: Migration utility that imports a JSON backup of accounts, contacts, tasks, and sent alerts
// ABOUTME: Provides dry-run and backup capabilities so an import can be inspected and undone

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/harperreed/bannerbook/charm"
	"github.com/harperreed/bannerbook/ledger"
	"github.com/harperreed/bannerbook/models"
	"github.com/harperreed/bannerbook/store"
)

// Backup is the document exported by the existing application.
type Backup struct {
	Accounts   []models.Account         `json:"accounts"`
	Contacts   []models.Contact         `json:"contacts"`
	Tasks      []models.Task            `json:"tasks"`
	SentAlerts []models.SentAlertRecord `json:"sentAlerts"`
}

type counts struct {
	accounts, contacts, tasks, sentAlerts int
}

func main() {
	input := flag.String("input", "", "Path to the JSON backup (required)")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backup := flag.Bool("backup", true, "Write the current store to a JSON backup before importing")
	flag.Parse()

	if *input == "" {
		log.Fatal("Error: -input flag is required")
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("Failed to read backup: %v", err)
	}
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		log.Fatalf("Failed to parse backup: %v", err)
	}

	cfg, err := charm.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load charm config: %v", err)
	}
	client, err := charm.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open charm store: %v", err)
	}
	defer func() { _ = client.Close() }()

	s := store.New(client)
	l := ledger.NewKV(client)

	if *backup && !*dryRun {
		backupPath := fmt.Sprintf("bannerbook-backup-%s.json", time.Now().Format("20060102-150405"))
		log.Printf("Creating backup: %s", backupPath)
		if err := writeBackup(context.Background(), s, l, backupPath); err != nil {
			log.Fatalf("Failed to create backup: %v", err)
		}
		log.Printf("Backup created successfully")
	}

	c, err := importBackup(context.Background(), s, l, &b, *dryRun)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	verb := "Imported"
	if *dryRun {
		verb = "Would import"
	}
	log.Printf("%s %d account(s), %d contact(s), %d task(s), %d sent alert(s)",
		verb, c.accounts, c.contacts, c.tasks, c.sentAlerts)
}

func writeBackup(ctx context.Context, s *store.Store, l ledger.Ledger, path string) error {
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}
	sent, err := l.List(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(Backup{
		Accounts:   snap.Accounts,
		Contacts:   snap.Contacts,
		Tasks:      snap.Tasks,
		SentAlerts: sent,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// importBackup saves every document in b, keeping ids so references between
// documents survive. Sent alerts are recorded so nothing already delivered
// by the old system is sent again.
func importBackup(ctx context.Context, s *store.Store, l ledger.Ledger, b *Backup, dryRun bool) (counts, error) {
	c := counts{
		accounts:   len(b.Accounts),
		contacts:   len(b.Contacts),
		tasks:      len(b.Tasks),
		sentAlerts: len(b.SentAlerts),
	}
	if dryRun {
		for _, a := range b.Accounts {
			log.Printf("  account %s: %s (%d banner(s))", a.ID, a.Name, len(a.BannerBuyingOffices))
		}
		return c, nil
	}

	for i := range b.Accounts {
		if err := s.SaveAccount(&b.Accounts[i]); err != nil {
			return c, fmt.Errorf("account %q: %w", b.Accounts[i].Name, err)
		}
	}
	for i := range b.Contacts {
		if err := s.SaveContact(&b.Contacts[i]); err != nil {
			return c, fmt.Errorf("contact %q: %w", b.Contacts[i].ID, err)
		}
	}
	for i := range b.Tasks {
		if err := s.SaveTask(&b.Tasks[i]); err != nil {
			return c, fmt.Errorf("task %q: %w", b.Tasks[i].ID, err)
		}
	}
	if len(b.SentAlerts) > 0 {
		if err := l.RecordBatch(ctx, b.SentAlerts); err != nil {
			return c, fmt.Errorf("sent alerts: %w", err)
		}
	}
	return c, nil
}
