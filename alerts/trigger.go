// ABOUTME: Alert option matching for dated reminders
// ABOUTME: Implements "at most N days before" windows and the single-threshold variant
package alerts

import (
	"github.com/harperreed/bannerbook/models"
)

// DefaultAlertDays is the single-threshold window when none is configured.
const DefaultAlertDays = 7

// window returns the lead-in length of an option in days.
func window(opt models.AlertOption) (int, bool) {
	switch opt {
	case models.AlertSameDay:
		return 0, true
	case models.AlertDayBefore:
		return 1, true
	case models.AlertWeekBefore:
		return 7, true
	}
	return 0, false
}

// OptionTriggered reports whether a single option fires at daysUntil.
// Windows overlap: day 0 satisfies every option.
func OptionTriggered(opt models.AlertOption, daysUntil int) bool {
	w, ok := window(opt)
	return ok && daysUntil >= 0 && daysUntil <= w
}

// MatchedOptions returns the options in opts that fire at daysUntil, in the
// order given.
func MatchedOptions(daysUntil int, opts []models.AlertOption) []models.AlertOption {
	var out []models.AlertOption
	for _, o := range models.NormalizeAlertOptions(opts) {
		if OptionTriggered(o, daysUntil) {
			out = append(out, o)
		}
	}
	return out
}

// LeadDays returns the widest window among opts.
func LeadDays(opts []models.AlertOption) int {
	lead := 0
	for _, o := range opts {
		if w, ok := window(o); ok && w > lead {
			lead = w
		}
	}
	return lead
}

// IsTriggered reports whether any option fires. An empty option set never
// fires, and neither does a date already in the past.
func IsTriggered(daysUntil int, opts []models.AlertOption) bool {
	return len(MatchedOptions(daysUntil, opts)) > 0
}

// WithinThreshold is the single-threshold variant used by task due dates and
// legacy alert-day fields: it fires when 0 <= daysUntil <= alertDays, with
// alertDays defaulting to DefaultAlertDays when unset.
func WithinThreshold(daysUntil, alertDays int) bool {
	if alertDays <= 0 {
		alertDays = DefaultAlertDays
	}
	return daysUntil >= 0 && daysUntil <= alertDays
}
