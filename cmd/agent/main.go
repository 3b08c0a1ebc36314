package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"truck-dispatch-agent/internal/adapters/journal"
	"truck-dispatch-agent/internal/adapters/natsbus"
	"truck-dispatch-agent/internal/adapters/repositories"
	"truck-dispatch-agent/internal/api"
	"truck-dispatch-agent/internal/api/handlers"
	"truck-dispatch-agent/internal/config"
	"truck-dispatch-agent/internal/platform/db"
	"truck-dispatch-agent/internal/ports"
	"truck-dispatch-agent/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

var (
	inputPath  = flag.String("input", config.Get("INPUT_PATH", "input.txt"), "Path to the simulation input file")
	configPath = flag.String("config", config.Get("AGENT_CONFIG", "agent.yaml"), "Path to the agent settings file")
	verbose    = flag.Bool("verbose", false, "Log every truck's command each turn")
)

// main is the agent's composition root.
// It wires NATS, the ledger and the observers behind ports and runs the turn loop.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
	flag.Parse()

	in, err := config.LoadSimulationInput(*inputPath)
	if err != nil {
		log.Fatal(err)
	}
	settings, err := config.LoadSettings(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("input loaded trucks=%d solvers=%d grid=%d snapshot_key=%d main_queue_key=%d",
		in.Trucks, in.Solvers, in.GridSize, in.SnapshotKey, in.MainQueueKey)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("received signal=%s, shutting down", sig)
		cancel()
	}()

	if err := run(ctx, in, settings); err != nil {
		if ctx.Err() != nil {
			log.Println("agent cancelled")
			return
		}
		log.Fatal(err)
	}
	log.Println("agent finished")
}

func run(ctx context.Context, in *config.SimulationInput, settings *config.Settings) error {
	logger := log.Default()

	conn, err := natsbus.Connect(settings.NATS.URL, settings.NATS.Name)
	if err != nil {
		return err
	}
	defer conn.Drain()

	channel, err := natsbus.NewTurnChannel(conn, natsbus.SubjectsFor(in.SnapshotKey, in.MainQueueKey), logger)
	if err != nil {
		return err
	}
	defer channel.Close()

	oracles := make([]ports.Oracle, 0, len(in.SolverKeys))
	for _, key := range in.SolverKeys {
		oracles = append(oracles, natsbus.NewOracle(conn, key, settings.NATS.OracleTimeout))
	}

	seed := settings.Agent.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	recovery, err := services.NewAuthRecoverer(oracles,
		services.WithRand(rand.New(rand.NewSource(seed))),
		services.WithRandomAttempts(settings.Agent.RandomAttempts),
		services.WithExhaustiveMaxLength(settings.Agent.ExhaustiveMaxLength),
	)
	if err != nil {
		return err
	}

	board := handlers.NewStatusBoard()
	hub := handlers.NewObserveHub(logger)
	observers := services.Observers{board, hub}

	ledger, closeLedger, err := openLedger(ctx, settings.Ledger)
	if err != nil {
		return err
	}
	defer closeLedger.Close()
	if ledger != nil {
		observers = append(observers, services.LedgerObserver{Ledger: ledger})
	}

	if settings.Journal.Dir != "" {
		j := journal.New(settings.Journal.Dir, settings.Journal.Prefix)
		defer j.Close()
		observers = append(observers, j)
	}

	if settings.HTTP.Addr != "" {
		srv := &http.Server{
			Addr:              settings.HTTP.Addr,
			Handler:           api.NewRouter(board, hub),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		go func() {
			log.Printf("Status server listening addr=%s", settings.HTTP.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("status server failed err=%v", err)
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	agent, err := services.NewAgent(services.AgentParams{
		Trucks:       in.Trucks,
		PoolCapacity: settings.Agent.PoolCapacity,
		Verbose:      *verbose || settings.Agent.Verbose,
	}, channel, recovery, observers, logger)
	if err != nil {
		return err
	}

	return agent.Run(ctx)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openLedger opens the configured delivery ledger and ensures its schema.
// A nil ledger means recording is disabled.
func openLedger(ctx context.Context, s config.LedgerSettings) (ports.DeliveryLedger, io.Closer, error) {
	switch s.Driver {
	case config.LedgerSQLite:
		conn, err := db.OpenSQLite(s.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitSchema(ctx, conn, repositories.SQLite); err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		log.Printf("ledger ready driver=sqlite path=%s", s.DSN)
		return repositories.NewSqliteDeliveryLedger(conn), conn, nil

	case config.LedgerPostgres:
		conn, err := db.Open(s.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitSchema(ctx, conn, repositories.Postgres); err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		log.Println("ledger ready driver=pgx")
		return repositories.NewSQLDeliveryLedger(conn), conn, nil
	}

	return nil, nopCloser{}, nil
}
