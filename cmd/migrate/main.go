// Applies the versioned SQL migrations to the Postgres database. Usage:
//
//	migrate [up|down|version]
package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"events-app/internal/config"
	"events-app/internal/database/migrations"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.Database.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer sqldb.Close()

	if err := sqldb.Ping(); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = "migrations"
	}
	runner := migrations.NewRunner(sqldb, dir)

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "up":
		if err := runner.Up(); err != nil {
			log.Fatalf("migrate up: %v", err)
		}
		log.Println("migrations applied")
	case "down":
		if err := runner.Down(); err != nil {
			log.Fatalf("migrate down: %v", err)
		}
		log.Println("migrations rolled back")
	case "version":
		version, err := runner.Version()
		if err != nil {
			log.Fatalf("migrate version: %v", err)
		}
		fmt.Printf("schema version: %d\n", version)
	default:
		log.Fatalf("unknown command %q, expected up, down or version", command)
	}
}
