package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homebudget/internal/config"
	"homebudget/internal/handlers"
	"homebudget/internal/mailer"
	"homebudget/internal/report"
	"homebudget/internal/scheduler"
	"homebudget/internal/storage"
)

func main() {
	cfg := config.Load()

	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if count, err := db.UserCount(); err == nil {
		log.Printf("Database ready (%d users)", count)
	}

	smtp := mailer.NewSMTP(cfg.SMTPServer, cfg.SMTPPort, cfg.EmailAddress, cfg.EmailPassword)
	reports := report.NewService(db, smtp)
	h := handlers.NewHandlers(db, reports, []byte(cfg.JWTSecret))

	sweeper := scheduler.New(db, reports, slog.Default(), cfg.SweepInterval)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start report sweep: %v", err)
	}
	defer sweeper.Stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: h.Routes(),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Starting server on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
