package report

import (
	"fmt"
	"time"
)

// Kind selects the period-boundary rule for a report.
type Kind string

const (
	KindWeekly  Kind = "weekly"
	KindMonthly Kind = "monthly"
)

// ParseKind maps a request value onto a Kind, defaulting to weekly.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", string(KindWeekly):
		return KindWeekly, nil
	case string(KindMonthly):
		return KindMonthly, nil
	}
	return "", fmt.Errorf("unknown report type %q", s)
}

// Window is an inclusive [Start, End] calendar-date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Filename names the rendered document after the report kind and range.
func (w Window) Filename(kind Kind) string {
	return fmt.Sprintf("report_%s_%s_%s.pdf", kind, w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
}

// The on-demand and scheduled weekly rules intentionally diverge: the
// on-demand window is the calendar week starting on the most recent
// Sunday, while the scheduled sweep uses a trailing 7-day window. Both
// rules are kept as separately named functions rather than unified.

// OnDemandWindow computes the window for a caller-triggered report.
// Weekly: the most recent Sunday through the following Saturday.
// Monthly: the first through the last day of the current month.
func OnDemandWindow(today time.Time, kind Kind) Window {
	today = startOfDay(today)
	if kind == KindMonthly {
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		end := start.AddDate(0, 1, 0).AddDate(0, 0, -1)
		return Window{Start: start, End: end}
	}
	start := today.AddDate(0, 0, -(weekdayFromMonday(today.Weekday()) + 1))
	return Window{Start: start, End: start.AddDate(0, 0, 6)}
}

// ScheduledWeeklyWindow computes the sweep's weekly window: the
// trailing 7 days ending today, independent of weekday alignment.
func ScheduledWeeklyWindow(today time.Time) Window {
	today = startOfDay(today)
	return Window{Start: today.AddDate(0, 0, -7), End: today}
}

// ScheduledMonthlyWindow computes the sweep's month-to-date window,
// from the first of the current month through today.
func ScheduledMonthlyWindow(today time.Time) Window {
	today = startOfDay(today)
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	return Window{Start: start, End: today}
}

// MonthlyDue reports whether today is the last calendar day of the
// month, the only day the sweep sends monthly reports.
func MonthlyDue(today time.Time) bool {
	return today.AddDate(0, 0, 1).Day() == 1
}

// weekdayFromMonday renumbers time.Weekday (Sunday=0) so that
// Monday=0 and Sunday=6.
func weekdayFromMonday(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
