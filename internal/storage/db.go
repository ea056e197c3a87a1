package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"homebudget/internal/models"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *DB) migrate() error {
	// Money columns are TEXT so decimal amounts round-trip exactly.
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL DEFAULT '',
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			balance TEXT NOT NULL DEFAULT '0',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS purchases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			item_name TEXT NOT NULL,
			price TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			date DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS report_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			report_type TEXT NOT NULL,
			total TEXT NOT NULL,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			sent_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// CreateUser creates a new user with the given password hash and
// starting balance. The email must be unique.
func (db *DB) CreateUser(name, email, passwordHash string, balance decimal.Decimal) (*models.User, error) {
	result, err := db.conn.Exec(
		"INSERT INTO users (name, email, password_hash, balance) VALUES (?, ?, ?, ?)",
		name, email, passwordHash, balance.String(),
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetUserByID(id)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var balance string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &balance, &u.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	u.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("corrupt balance for user %d: %w", u.ID, err)
	}
	return &u, nil
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(id int64) (*models.User, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, email, password_hash, balance, created_at FROM users WHERE id = ?",
		id,
	)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email.
func (db *DB) GetUserByEmail(email string) (*models.User, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, email, password_hash, balance, created_at FROM users WHERE email = ?",
		email,
	)
	return scanUser(row)
}

// ListUsers returns all users ordered by ID.
func (db *DB) ListUsers() ([]models.User, error) {
	rows, err := db.conn.Query(
		"SELECT id, name, email, password_hash, balance, created_at FROM users ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		var balance string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &balance, &u.CreatedAt); err != nil {
			return nil, err
		}
		if u.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("corrupt balance for user %d: %w", u.ID, err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// AddPurchase inserts a purchase and decrements the owner's balance in
// one transaction, so both happen or neither. Returns the updated
// balance.
func (db *DB) AddPurchase(userID int64, itemName string, price decimal.Decimal, category string, date time.Time) (decimal.Decimal, error) {
	if date.IsZero() {
		date = time.Now()
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback()

	var balanceStr string
	if err := tx.QueryRow("SELECT balance FROM users WHERE id = ?", userID).Scan(&balanceStr); err != nil {
		return decimal.Zero, err
	}
	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt balance for user %d: %w", userID, err)
	}

	newBalance := balance.Sub(price)
	if _, err := tx.Exec("UPDATE users SET balance = ? WHERE id = ?", newBalance.String(), userID); err != nil {
		return decimal.Zero, err
	}
	if _, err := tx.Exec(
		"INSERT INTO purchases (user_id, item_name, price, category, date) VALUES (?, ?, ?, ?, ?)",
		userID, itemName, price.String(), category, date,
	); err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

func scanPurchases(rows *sql.Rows) ([]models.Purchase, error) {
	defer rows.Close()

	var purchases []models.Purchase
	for rows.Next() {
		var p models.Purchase
		var price string
		if err := rows.Scan(&p.ID, &p.UserID, &p.ItemName, &price, &p.Category, &p.Date); err != nil {
			return nil, err
		}
		var err error
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("corrupt price for purchase %d: %w", p.ID, err)
		}
		purchases = append(purchases, p)
	}

	return purchases, rows.Err()
}

// PurchasesInRange returns a user's purchases dated inside the
// inclusive [start, end] calendar range, ordered by date ascending.
// This is the ordering reports are rendered in.
func (db *DB) PurchasesInRange(userID int64, start, end time.Time) ([]models.Purchase, error) {
	rows, err := db.conn.Query(
		`SELECT id, user_id, item_name, price, category, date FROM purchases
		 WHERE user_id = ? AND date >= ? AND date < ? ORDER BY date ASC`,
		userID, startOfDay(start), startOfDay(end).AddDate(0, 0, 1),
	)
	if err != nil {
		return nil, err
	}
	return scanPurchases(rows)
}

// ListPurchases returns a user's purchases newest first, optionally
// bounded. The start bound is inclusive; the end bound covers the
// whole end day.
func (db *DB) ListPurchases(userID int64, start, end *time.Time) ([]models.Purchase, error) {
	query := "SELECT id, user_id, item_name, price, category, date FROM purchases WHERE user_id = ?"
	args := []any{userID}
	if start != nil {
		query += " AND date >= ?"
		args = append(args, startOfDay(*start))
	}
	if end != nil {
		query += " AND date < ?"
		args = append(args, startOfDay(*end).AddDate(0, 0, 1))
	}
	query += " ORDER BY date DESC"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	return scanPurchases(rows)
}

// CreateReportLog appends one audit record for a report generation
// attempt. Report logs are never updated or deleted.
func (db *DB) CreateReportLog(userID int64, reportType string, total decimal.Decimal, start, end time.Time) error {
	_, err := db.conn.Exec(
		"INSERT INTO report_logs (user_id, report_type, total, start_date, end_date, sent_at) VALUES (?, ?, ?, ?, ?, ?)",
		userID, reportType, total.String(), start, end, time.Now(),
	)
	return err
}

// ListReportLogs returns a user's report history, newest first.
func (db *DB) ListReportLogs(userID int64) ([]models.ReportLog, error) {
	rows, err := db.conn.Query(
		`SELECT id, user_id, report_type, total, start_date, end_date, sent_at
		 FROM report_logs WHERE user_id = ? ORDER BY sent_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.ReportLog
	for rows.Next() {
		var l models.ReportLog
		var total string
		if err := rows.Scan(&l.ID, &l.UserID, &l.ReportType, &total, &l.StartDate, &l.EndDate, &l.SentAt); err != nil {
			return nil, err
		}
		if l.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("corrupt total for report log %d: %w", l.ID, err)
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
