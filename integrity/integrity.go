// ABOUTME: Data-quality report over a snapshot
// ABOUTME: Surfaces weak-reference problems and bad dates without repairing anything
package integrity

import (
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/bannerbook/alerts"
	"github.com/harperreed/bannerbook/hierarchy"
	"github.com/harperreed/bannerbook/models"
)

// Issue kinds.
const (
	MissingAccount   = "missing_account"
	BannerOutOfScope = "banner_out_of_scope"
	MissingManager   = "missing_manager"
	ManagerCycle     = "manager_cycle"
	DanglingTaskRef  = "dangling_task_ref"
	InvalidDate      = "invalid_date"
)

type Issue struct {
	Kind       string `json:"kind"`
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
	Detail     string `json:"detail"`
}

// Check returns every issue found in snap, grouped by entity in snapshot order.
func Check(snap *models.Snapshot, loc *time.Location) []Issue {
	if snap == nil {
		return nil
	}
	var issues []Issue
	add := func(kind, entityType, id, format string, args ...any) {
		issues = append(issues, Issue{Kind: kind, EntityType: entityType, EntityID: id, Detail: fmt.Sprintf(format, args...)})
	}
	date := func(entityType, id, field, value string) {
		if value == "" {
			return
		}
		if _, err := alerts.ParseDate(value, loc); err != nil {
			add(InvalidDate, entityType, id, "%s: %v", field, err)
		}
	}

	// Banner ids are only unique within an account, so one id may have several owners.
	bannerOwners := map[string][]string{}
	for _, a := range snap.Accounts {
		for _, b := range a.BannerBuyingOffices {
			if owners := bannerOwners[b.ID]; len(owners) == 0 || owners[len(owners)-1] != a.ID {
				bannerOwners[b.ID] = append(owners, a.ID)
			}
		}
		for _, ev := range a.CustomerEvents {
			date(models.RelatedAccount, alerts.EventEntityID(a.ID, ev.ID), "date", ev.Date)
		}
	}

	for _, c := range snap.Contacts {
		acct := snap.AccountByID(c.AccountID)
		if acct == nil {
			add(MissingAccount, models.RelatedContact, c.ID, "account %q does not exist", c.AccountID)
		}
		if c.BannerBuyingOfficeID != "" && (acct == nil || acct.Banner(c.BannerBuyingOfficeID) == nil) {
			switch owners := bannerOwners[c.BannerBuyingOfficeID]; len(owners) {
			case 0:
				add(BannerOutOfScope, models.RelatedContact, c.ID, "banner %q does not exist", c.BannerBuyingOfficeID)
			case 1:
				add(BannerOutOfScope, models.RelatedContact, c.ID, "banner %q belongs to account %q", c.BannerBuyingOfficeID, owners[0])
			default:
				add(BannerOutOfScope, models.RelatedContact, c.ID, "banner %q belongs to accounts %q", c.BannerBuyingOfficeID, owners)
			}
		}
		date(models.RelatedContact, c.ID, "birthday", c.Birthday)
		date(models.RelatedContact, c.ID, "nextContactDate", c.NextContactDate)
		date(models.RelatedContact, c.ID, "lastContactDate", c.LastContactDate)
		for _, ev := range c.Events {
			date(models.RelatedContact, alerts.EventEntityID(c.ID, ev.ID), "date", ev.Date)
		}
	}

	tree := hierarchy.Build(snap.Contacts)
	for _, c := range snap.Contacts {
		if mgr, ok := tree.MissingManagers[c.ID]; ok {
			add(MissingManager, models.RelatedContact, c.ID, "manager %q does not exist", mgr)
		}
	}
	for _, cycle := range tree.Cycles {
		loop := strings.Join(cycle, " -> ") + " -> " + cycle[0]
		add(ManagerCycle, models.RelatedContact, cycle[0], "reporting cycle: %s", loop)
	}

	for _, t := range snap.Tasks {
		switch t.RelatedType {
		case models.RelatedAccount:
			if snap.AccountByID(t.RelatedID) == nil {
				add(DanglingTaskRef, "task", t.ID, "account %q does not exist", t.RelatedID)
			}
		case models.RelatedContact:
			if snap.ContactByID(t.RelatedID) == nil {
				add(DanglingTaskRef, "task", t.ID, "contact %q does not exist", t.RelatedID)
			}
		default:
			add(DanglingTaskRef, "task", t.ID, "unknown related type %q", t.RelatedType)
		}
		date("task", t.ID, "dueDate", t.DueDate)
	}
	return issues
}
