// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Summarizes accounts, upcoming reminders, task status, and data-quality issues
package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/bannerbook/alerts"
	"github.com/harperreed/bannerbook/integrity"
	"github.com/harperreed/bannerbook/models"
)

type DashboardStats struct {
	TotalAccounts int
	TotalBanners  int
	TotalContacts int
	TotalTasks    int

	TasksByStatus map[string]int

	// Upcoming reminders triggered today, soonest first.
	Upcoming []alerts.Candidate

	// Needs attention
	StaleContacts []StaleContact
	IssuesByKind  map[string]int
}

type StaleContact struct {
	Name      string
	DaysSince int
}

// GenerateDashboardStats computes the dashboard for snap as of now.
func GenerateDashboardStats(snap *models.Snapshot, now time.Time, policy alerts.Policy) *DashboardStats {
	stats := &DashboardStats{
		TasksByStatus: make(map[string]int),
		IssuesByKind:  make(map[string]int),
	}
	loc := policy.Location
	if loc == nil {
		loc = time.Local
	}
	followUp := policy.FollowUpDays
	if followUp <= 0 {
		followUp = alerts.DefaultFollowUpDays
	}

	stats.TotalAccounts = len(snap.Accounts)
	for _, a := range snap.Accounts {
		stats.TotalBanners += len(a.BannerBuyingOffices)
	}
	stats.TotalContacts = len(snap.Contacts)
	stats.TotalTasks = len(snap.Tasks)

	for i := range snap.Tasks {
		stats.TasksByStatus[alerts.EffectiveTaskStatus(&snap.Tasks[i], now, loc)]++
	}

	stats.Upcoming, _ = alerts.Evaluate(snap, now, policy)
	sort.SliceStable(stats.Upcoming, func(i, j int) bool {
		return stats.Upcoming[i].DaysUntil < stats.Upcoming[j].DaysUntil
	})

	today := now.In(loc)
	for _, c := range snap.Contacts {
		if c.LastContactDate == "" {
			stats.StaleContacts = append(stats.StaleContacts, StaleContact{Name: c.Name(), DaysSince: -1})
			continue
		}
		last, err := alerts.ParseDate(c.LastContactDate, loc)
		if err != nil {
			continue
		}
		if since := -alerts.DaysUntil(last, today); since > followUp {
			stats.StaleContacts = append(stats.StaleContacts, StaleContact{Name: c.Name(), DaysSince: since})
		}
	}

	for _, issue := range integrity.Check(snap, loc) {
		stats.IssuesByKind[issue.Kind]++
	}
	return stats
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  BANNERBOOK DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  🏢 %d accounts  🏬 %d banners  📇 %d contacts  ✅ %d tasks\n\n",
		stats.TotalAccounts, stats.TotalBanners, stats.TotalContacts, stats.TotalTasks))

	if stats.TotalTasks > 0 {
		out.WriteString("TASKS\n")
		renderTaskStatus(&out, stats.TasksByStatus)
		out.WriteString("\n")
	}

	if len(stats.Upcoming) > 0 {
		out.WriteString("UPCOMING\n")
		for _, c := range stats.Upcoming {
			out.WriteString(fmt.Sprintf("  %-10s %s (%s)\n", dueLabel(c.DaysUntil), c.Title, c.Kind))
		}
		out.WriteString("\n")
	}

	issues := 0
	for _, n := range stats.IssuesByKind {
		issues += n
	}
	if len(stats.StaleContacts) > 0 || issues > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		if len(stats.StaleContacts) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d contacts - overdue for follow-up\n", len(stats.StaleContacts)))
		}
		if issues > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d data issues - run `bannerbook check`\n", issues))
		}
	}

	return out.String()
}

func dueLabel(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	}
	return fmt.Sprintf("in %dd", days)
}

func renderTaskStatus(out *strings.Builder, byStatus map[string]int) {
	statuses := []string{
		models.TaskStatusPending,
		models.TaskStatusInProgress,
		models.TaskStatusOverdue,
		models.TaskStatusCompleted,
		models.TaskStatusCancelled,
	}

	maxCount := 0
	for _, n := range byStatus {
		if n > maxCount {
			maxCount = n
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, status := range statuses {
		n, exists := byStatus[status]
		if !exists {
			continue
		}
		barLength := (n * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-13s %s  %2d\n", status, bar, n))
	}
}
