package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"homebudget/internal/mailer"
	"homebudget/internal/models"
)

// Store is the persistence surface the report pipeline needs.
type Store interface {
	PurchasesInRange(userID int64, start, end time.Time) ([]models.Purchase, error)
	CreateReportLog(userID int64, reportType string, total decimal.Decimal, start, end time.Time) error
}

// Service runs the generate-log-deliver pipeline for one report.
type Service struct {
	store  Store
	mailer mailer.Mailer
	now    func() time.Time
}

// NewService creates a report service.
func NewService(store Store, m mailer.Mailer) *Service {
	return &Service{store: store, mailer: m, now: time.Now}
}

// Generated is one rendered report, ready for delivery. The matching
// audit entry has already been written by the time a caller holds one.
type Generated struct {
	Kind     Kind
	Window   Window
	PDF      []byte
	Total    decimal.Decimal
	Filename string
}

// Generate runs the on-demand pipeline for one user: compute the
// window, load purchases, render, and append the audit entry. The
// audit entry is written before any delivery attempt.
func (s *Service) Generate(user *models.User, kind Kind, today time.Time) (*Generated, error) {
	win := OnDemandWindow(today, kind)
	purchases, err := s.store.PurchasesInRange(user.ID, win.Start, win.End)
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", err)
	}
	return s.generate(user, kind, win, purchases, fmt.Sprintf("Expense report (%s)", kind))
}

// GenerateFromPurchases renders and logs a report over an
// already-loaded purchase set. The scheduled sweep uses this after
// inspecting the list, since it skips empty windows entirely.
func (s *Service) GenerateFromPurchases(user *models.User, kind Kind, win Window, purchases []models.Purchase, title string) (*Generated, error) {
	return s.generate(user, kind, win, purchases, title)
}

func (s *Service) generate(user *models.User, kind Kind, win Window, purchases []models.Purchase, title string) (*Generated, error) {
	pdf, total, err := RenderPDF(user, purchases, title, s.now())
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	if err := s.store.CreateReportLog(user.ID, string(kind), total, win.Start, win.End); err != nil {
		return nil, fmt.Errorf("log report: %w", err)
	}
	return &Generated{
		Kind:     kind,
		Window:   win,
		PDF:      pdf,
		Total:    total,
		Filename: win.Filename(kind),
	}, nil
}

// Email delivers a generated report as a PDF attachment. An empty
// destination falls back to the user's own address. A transport
// failure here is distinct from generation failure: the audit entry
// already exists.
func (s *Service) Email(ctx context.Context, user *models.User, gen *Generated, to string) error {
	if to == "" {
		to = user.Email
	}
	subject := fmt.Sprintf("Expense report - %s", gen.Kind)
	body := fmt.Sprintf("Here is your %s expense report from %s to %s. Total: %s DZD",
		gen.Kind,
		gen.Window.Start.Format("2006-01-02"),
		gen.Window.End.Format("2006-01-02"),
		gen.Total.StringFixed(2))
	if err := s.mailer.Send(ctx, to, subject, body, gen.PDF, gen.Filename); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}
	return nil
}
