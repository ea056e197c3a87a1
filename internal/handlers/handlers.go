package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"

	"homebudget/internal/auth"
	"homebudget/internal/models"
	"homebudget/internal/report"
	"homebudget/internal/storage"
)

// Context key type to avoid collisions.
type contextKey string

// UserContextKey is the context key for the authenticated user.
const UserContextKey contextKey = "user"

const dateLayout = "2006-01-02"

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db      *storage.DB
	reports *report.Service
	secret  []byte
	now     func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *storage.DB, reports *report.Service, jwtSecret []byte) *Handlers {
	return &Handlers{db: db, reports: reports, secret: jwtSecret, now: time.Now}
}

// Routes builds the API router.
func (h *Handlers) Routes() *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(middleware.Logger)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	mux.Post("/register", h.Register)
	mux.Post("/login", h.Login)

	mux.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware)
		r.Post("/add_purchase", h.AddPurchase)
		r.Get("/purchases", h.ListPurchases)
		r.Get("/reports", h.ListReports)
		r.Post("/generate_report", h.GenerateReport)
	})

	return mux
}

// GetUserFromContext retrieves the authenticated user from request context.
func GetUserFromContext(r *http.Request) *models.User {
	if user, ok := r.Context().Value(UserContextKey).(*models.User); ok {
		return user
	}
	return nil
}

// AuthMiddleware verifies the bearer token, resolves the user and
// injects it into the request context. Requests fail here before any
// handler logic runs.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token is missing"})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		userID, err := auth.VerifyToken(h.secret, token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token is invalid"})
			return
		}
		user, err := h.db.GetUserByID(userID)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token is invalid"})
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type registerRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Balance  decimal.Decimal `json:"balance"`
}

// Register creates a new user account.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "email and password required"})
		return
	}

	if _, err := h.db.GetUserByEmail(req.Email); err == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Email already registered"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Register: hash password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}
	if _, err := h.db.CreateUser(req.Name, req.Email, hash, req.Balance); err != nil {
		log.Printf("Register: create user: %v", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Email already registered"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "registered successfully"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and issues a bearer token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "email and password required"})
		return
	}

	user, err := h.db.GetUserByEmail(req.Email)
	if err != nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
		return
	}

	token, err := auth.IssueToken(h.secret, user.ID, h.now())
	if err != nil {
		log.Printf("Login: issue token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

type addPurchaseRequest struct {
	ItemName string          `json:"item_name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
}

// AddPurchase records a purchase for the authenticated user and
// returns the updated balance.
func (h *Handlers) AddPurchase(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	var req addPurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemName == "" || !req.Price.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid data"})
		return
	}

	var date time.Time
	if req.Date != "" {
		var err error
		date, err = time.Parse(dateLayout, req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid data", "error": err.Error()})
			return
		}
	}

	balance, err := h.db.AddPurchase(user.ID, req.ItemName, req.Price, req.Category, date)
	if err != nil {
		log.Printf("AddPurchase error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "purchase added", "balance": balance})
}

type purchaseResponse struct {
	ID       int64           `json:"id"`
	ItemName string          `json:"item_name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category,omitempty"`
	Date     string          `json:"date"`
}

// ListPurchases returns the user's purchases newest first, optionally
// filtered by start/end dates.
func (h *Handlers) ListPurchases(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	var start, end *time.Time
	if s := r.URL.Query().Get("start"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid start date"})
			return
		}
		start = &t
	}
	if e := r.URL.Query().Get("end"); e != "" {
		t, err := time.Parse(dateLayout, e)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid end date"})
			return
		}
		end = &t
	}

	purchases, err := h.db.ListPurchases(user.ID, start, end)
	if err != nil {
		log.Printf("ListPurchases error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}

	out := make([]purchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, purchaseResponse{
			ID:       p.ID,
			ItemName: p.ItemName,
			Price:    p.Price,
			Category: p.Category,
			Date:     p.Date.Format(dateLayout),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type reportLogResponse struct {
	ID         int64           `json:"id"`
	ReportType string          `json:"report_type"`
	Total      decimal.Decimal `json:"total"`
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	SentAt     time.Time       `json:"sent_at"`
}

// ListReports returns the user's report audit history, newest first.
func (h *Handlers) ListReports(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	logs, err := h.db.ListReportLogs(user.ID)
	if err != nil {
		log.Printf("ListReports error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}

	out := make([]reportLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, reportLogResponse{
			ID:         l.ID,
			ReportType: l.ReportType,
			Total:      l.Total,
			StartDate:  l.StartDate.Format(dateLayout),
			EndDate:    l.EndDate.Format(dateLayout),
			SentAt:     l.SentAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type generateReportRequest struct {
	Type      string `json:"type"`
	SendEmail bool   `json:"send_email"`
	Email     string `json:"email"`
}

// GenerateReport runs the report pipeline for the authenticated user.
// With send_email=false the document is streamed back as a download;
// otherwise it is emailed, with the override address honored.
func (h *Handlers) GenerateReport(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	// An empty body means all defaults: weekly, download mode.
	var req generateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid data"})
		return
	}
	kind, err := report.ParseKind(req.Type)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid data", "error": err.Error()})
		return
	}

	gen, err := h.reports.Generate(user, kind, h.now())
	if err != nil {
		log.Printf("GenerateReport error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "report generation failed"})
		return
	}

	if req.SendEmail {
		if err := h.reports.Email(r.Context(), user, gen, req.Email); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"message": "report generated but email failed",
				"error":   err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "report generated and emailed", "total": gen.Total})
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", gen.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(gen.PDF); err != nil {
		log.Printf("GenerateReport: write response: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON error: %v", err)
	}
}
