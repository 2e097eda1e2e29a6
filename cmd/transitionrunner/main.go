package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/ballotbox/api/internal/adapters/notifier"
	"github.com/ballotbox/api/internal/adapters/repository/postgres"
	"github.com/ballotbox/api/internal/core/services"
)

const defaultScanInterval = 30 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	dbHost := os.Getenv("POSTGRES_HOST")
	dbPort := os.Getenv("POSTGRES_PORT")
	dbUser := os.Getenv("POSTGRES_USER")
	dbPass := os.Getenv("POSTGRES_PASSWORD")
	dbName := os.Getenv("POSTGRES_DB")

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPass, dbHost, dbPort, dbName)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	interval := defaultScanInterval
	if raw := os.Getenv("TRANSITION_SCAN_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("Invalid TRANSITION_SCAN_INTERVAL: %v", err)
		}
		interval = parsed
	}

	electionRepo := postgres.NewElectionRepository(db)
	voterRepo := postgres.NewVoterRepository(db)
	attendanceRepo := postgres.NewAttendanceRepository(db)
	emitter := notifier.NewLogEmitter()

	quorumService := services.NewQuorumService(electionRepo, voterRepo, attendanceRepo)
	lifecycleService := services.NewLifecycleService(electionRepo, voterRepo, quorumService, emitter)
	runner := services.NewTransitionRunner(lifecycleService, electionRepo, interval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("Starting scheduled transition runner...")

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Transition runner stopped: %v", err)
	}

	log.Println("Transition runner shut down.")
}
