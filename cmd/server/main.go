package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/ballotbox/api/internal/adapters/handler/http"
	"github.com/ballotbox/api/internal/adapters/notifier"
	"github.com/ballotbox/api/internal/adapters/repository/postgres"
	"github.com/ballotbox/api/internal/ballotseal"
	"github.com/ballotbox/api/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	connStr := dbConnString()
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	sealSecret := os.Getenv("BALLOT_SEAL_SECRET")
	if sealSecret == "" {
		log.Fatal("BALLOT_SEAL_SECRET is required")
	}

	electionRepo := postgres.NewElectionRepository(db)
	voterRepo := postgres.NewVoterRepository(db)
	ballotRepo := postgres.NewBallotRepository(db)
	attendanceRepo := postgres.NewAttendanceRepository(db)
	observerRepo := postgres.NewObserverRepository(db)

	sealer := ballotseal.New(sealSecret)
	emitter := notifier.NewLogEmitter()

	quorumService := services.NewQuorumService(electionRepo, voterRepo, attendanceRepo)
	lifecycleService := services.NewLifecycleService(electionRepo, voterRepo, quorumService, emitter)
	voterService := services.NewVoterService(electionRepo, voterRepo, emitter)
	castService := services.NewCastService(electionRepo, voterService, ballotRepo, quorumService, sealer, emitter)
	tallyService := services.NewTallyService(electionRepo, voterRepo, ballotRepo, attendanceRepo, sealer)
	observerService := services.NewObserverService(electionRepo, observerRepo)

	handler := http.NewHandler(
		http.NewElectionHandler(lifecycleService),
		http.NewVoterHandler(voterService),
		http.NewVoteHandler(castService),
		http.NewResultsHandler(tallyService, quorumService, observerService),
	)

	server := &stdhttp.Server{Addr: "0.0.0.0:8080", Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	fmt.Println("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}

func dbConnString() string {
	user := os.Getenv("POSTGRES_USER")
	password := os.Getenv("POSTGRES_PASSWORD")
	host := os.Getenv("POSTGRES_HOST")
	port := os.Getenv("POSTGRES_PORT")
	dbName := os.Getenv("POSTGRES_DB")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbName)
}
