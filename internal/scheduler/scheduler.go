package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"homebudget/internal/models"
	"homebudget/internal/report"
)

// Store is the persistence surface the sweep needs.
type Store interface {
	ListUsers() ([]models.User, error)
	PurchasesInRange(userID int64, start, end time.Time) ([]models.Purchase, error)
}

// UserResult records the outcome of one report leg for one user.
// Failures are data here, not control flow: one user's error never
// stops the sweep for the others.
type UserResult struct {
	UserID  int64
	Kind    report.Kind
	Total   decimal.Decimal
	Skipped bool
	Err     error
}

// Sweeper periodically fans weekly reports out to every user, plus
// month-to-date reports on the last calendar day of each month.
type Sweeper struct {
	store    Store
	reports  *report.Service
	logger   *slog.Logger
	cron     *cron.Cron
	interval time.Duration
}

// New creates a sweeper that fires on a fixed wall-clock interval.
func New(store Store, reports *report.Service, logger *slog.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		reports:  reports,
		logger:   logger,
		cron:     cron.New(),
		interval: interval,
	}
}

// Start schedules the recurring sweep. No time-of-day alignment is
// guaranteed; firings simply repeat at the configured interval.
func (s *Sweeper) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() {
		s.RunSweep(context.Background(), time.Now())
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("report sweep scheduled", "interval", s.interval.String())
	return nil
}

// Stop halts the timer and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// RunSweep executes one firing. The user set is loaded once and today
// is captured once, so the weekly and monthly legs see the same
// population and the same calendar date.
func (s *Sweeper) RunSweep(ctx context.Context, now time.Time) []UserResult {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	users, err := s.store.ListUsers()
	if err != nil {
		s.logger.Error("report sweep aborted", "error", err)
		return nil
	}
	s.logger.Info("report sweep started", "users", len(users), "date", today.Format("2006-01-02"))

	var results []UserResult
	for i := range users {
		results = append(results, s.runUser(ctx, &users[i], report.KindWeekly, report.ScheduledWeeklyWindow(today)))
	}
	if report.MonthlyDue(today) {
		for i := range users {
			results = append(results, s.runUser(ctx, &users[i], report.KindMonthly, report.ScheduledMonthlyWindow(today)))
		}
	}

	var sent, skipped, failed int
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
		case r.Skipped:
			skipped++
		default:
			sent++
		}
	}
	s.logger.Info("report sweep complete", "sent", sent, "skipped", skipped, "failed", failed)
	return results
}

// runUser processes one report leg for one user. Windows with no
// purchases are skipped without generating anything, for the monthly
// leg as well as the weekly one.
func (s *Sweeper) runUser(ctx context.Context, user *models.User, kind report.Kind, win report.Window) UserResult {
	res := UserResult{UserID: user.ID, Kind: kind}

	purchases, err := s.store.PurchasesInRange(user.ID, win.Start, win.End)
	if err != nil {
		res.Err = fmt.Errorf("query purchases: %w", err)
		s.logger.Error("report failed", "user", user.Email, "kind", kind, "error", err)
		return res
	}
	if len(purchases) == 0 {
		res.Skipped = true
		return res
	}

	title := fmt.Sprintf("%s expense report from %s to %s",
		kindTitle(kind), win.Start.Format("2006-01-02"), win.End.Format("2006-01-02"))
	gen, err := s.reports.GenerateFromPurchases(user, kind, win, purchases, title)
	if err != nil {
		res.Err = err
		s.logger.Error("report failed", "user", user.Email, "kind", kind, "error", err)
		return res
	}
	res.Total = gen.Total

	if err := s.reports.Email(ctx, user, gen, ""); err != nil {
		res.Err = err
		s.logger.Error("report email failed", "user", user.Email, "kind", kind, "error", err)
		return res
	}

	s.logger.Info("report sent", "user", user.Email, "kind", kind, "total", gen.Total.StringFixed(2))
	return res
}

func kindTitle(kind report.Kind) string {
	if kind == report.KindMonthly {
		return "Monthly"
	}
	return "Weekly"
}
