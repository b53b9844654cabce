// ABOUTME: Terminal and log delivery for alerts
// ABOUTME: Renders styled lines with lipgloss or structured entries with logrus
package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/bannerbook/models"
	"github.com/sirupsen/logrus"
)

var (
	dueTodayStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	dueSoonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// TerminalNotifier writes one styled line per alert.
type TerminalNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTerminalNotifier(w io.Writer) *TerminalNotifier {
	return &TerminalNotifier{w: w}
}

func (t *TerminalNotifier) Notify(_ context.Context, n models.Notification) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintln(t.w, FormatLine(n))
	return err
}

// FormatLine renders an alert as "<when>  <title>  (<type>, <due>)".
func FormatLine(n models.Notification) string {
	var when string
	switch n.DaysUntil {
	case 0:
		when = dueTodayStyle.Render("TODAY")
	case 1:
		when = dueSoonStyle.Render("tomorrow")
	default:
		when = dueSoonStyle.Render(fmt.Sprintf("in %d days", n.DaysUntil))
	}

	details := n.AlertType + ", " + n.DueDate
	if len(n.MatchedOptions) > 0 {
		opts := make([]string, len(n.MatchedOptions))
		for i, o := range n.MatchedOptions {
			opts[i] = string(o)
		}
		details += ", " + strings.Join(opts, "/")
	}
	return when + "  " + titleStyle.Render(n.Title) + "  " + mutedStyle.Render("("+details+")")
}

// LogNotifier emits each alert as a structured log entry.
type LogNotifier struct {
	logger *logrus.Entry
}

func NewLogNotifier(logger *logrus.Entry) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(_ context.Context, n models.Notification) error {
	l.logger.WithFields(logrus.Fields{
		"alert_id":   n.AlertID,
		"alert_type": n.AlertType,
		"entity_id":  n.EntityID,
		"due_date":   n.DueDate,
		"days_until": n.DaysUntil,
		"run_id":     n.RunID,
	}).Info(n.Title)
	return nil
}
