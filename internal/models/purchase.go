package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a registered account. The balance is only ever
// mutated by purchase insertion.
type User struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Purchase represents a single expense record. Immutable once created.
type Purchase struct {
	ID       int64           `json:"id"`
	UserID   int64           `json:"user_id"`
	ItemName string          `json:"item_name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category,omitempty"`
	Date     time.Time       `json:"date"`
}

// ReportLog is an append-only audit record of one report generation
// attempt. It is written before any delivery attempt, so a failed
// email never erases the trail.
type ReportLog struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	ReportType string          `json:"report_type"`
	Total      decimal.Decimal `json:"total"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`
	SentAt     time.Time       `json:"sent_at"`
}
