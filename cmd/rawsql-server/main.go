// The raw-SQL variant of the events API. Identical routes and behavior to the
// primary server; the record store issues handwritten SQL against MySQL
// instead of going through the ORM query builder.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"

	"events-app/internal/config"
	"events-app/internal/events"
	"events-app/internal/events/db"
	"events-app/internal/events/event_api"
	"events-app/internal/events/sqlstore"
	"events-app/internal/events/upload"
	"events-app/internal/logger"
)

func connectDatabase(cfg *config.Config, log *logger.Logger) *bun.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		log.Fatal("CONFIG", "MYSQL_DSN not set")
	}

	sqldb, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open MySQL: %v", err))
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to MySQL: %v", err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	log.Info("DATABASE", "MySQL connection successful")
	return bun.NewDB(sqldb, mysqldialect.New())
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.New(cfg.LogDir)
	defer log.Close()

	log.Info("APP", "Starting Events API (raw SQL store)")

	bunDB := connectDatabase(cfg, log)
	defer bunDB.Close()

	if err := db.EnsureSchema(context.Background(), bunDB); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to ensure schema: %v", err))
	}

	uploads, err := upload.NewStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes, log)
	if err != nil {
		log.Fatal("UPLOAD", fmt.Sprintf("Failed to initialise upload dir: %v", err))
	}
	uploads.SweepOrphans(cfg.Uploads.SweepAge)

	service := events.NewEventService(&sqlstore.DB{Bun: bunDB}, uploads, log)
	handler := &event_api.Handler{EventService: service, Logger: log}

	r := chi.NewRouter()
	r.Use(event_api.RequestLogger(log))
	handler.RegisterRoutes(r)
	event_api.ServeUploads(r, uploads.Dir())

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Events API (raw SQL) running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	}
}
