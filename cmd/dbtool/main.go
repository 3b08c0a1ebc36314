package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"truck-dispatch-agent/internal/adapters/journal"
	"truck-dispatch-agent/internal/adapters/repositories"
	"truck-dispatch-agent/internal/domain"
	"truck-dispatch-agent/internal/platform/db"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

var (
	initSchema = flag.Bool("init", false, "Create the delivery ledger schema")
	report     = flag.Bool("report", false, "Print event totals per kind")
	history    = flag.Int("history", -1, "Print the recorded events of one package")
	importPath = flag.String("import", "", "Load the events of a turn journal file into the ledger")
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
	flag.Parse()

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx := context.Background()

	if *initSchema {
		log.Println("Initializing ledger schema...")
		if err := repositories.InitSchema(ctx, conn, repositories.Postgres); err != nil {
			log.Fatalf("schema initialization failed: %v", err)
		}
		log.Println("Schema ready.")
	}

	if *importPath != "" {
		if err := importJournal(ctx, conn, *importPath); err != nil {
			log.Fatalf("import failed: %v", err)
		}
	}

	if *history >= 0 {
		if err := printHistory(ctx, conn, domain.PackageID(*history)); err != nil {
			log.Fatalf("history failed: %v", err)
		}
	}

	if *report {
		if err := printReport(ctx, conn); err != nil {
			log.Fatalf("report failed: %v", err)
		}
	}
}

func importJournal(ctx context.Context, conn *sql.DB, path string) error {
	recs, err := journal.ReadFile(path)
	if err != nil {
		return err
	}

	ledger := repositories.NewSQLDeliveryLedger(conn)
	events := 0
	for _, rec := range recs {
		batch := rec.DeliveryEvents()
		if err := ledger.RecordEvents(ctx, batch); err != nil {
			return fmt.Errorf("import turn %d: %w", rec.Turn, err)
		}
		events += len(batch)
	}
	log.Printf("Imported turns=%d events=%d from %s", len(recs), events, path)
	return nil
}

func printHistory(ctx context.Context, conn *sql.DB, id domain.PackageID) error {
	events, err := repositories.NewSQLDeliveryLedger(conn).PackageHistory(ctx, id)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TURN\tTRUCK\tKIND\tATTEMPTS")
	for _, e := range events {
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\n", e.Turn, e.TruckID, e.Kind, e.Attempts)
	}
	return w.Flush()
}

func printReport(ctx context.Context, conn *sql.DB) error {
	tallies, err := repositories.Report(ctx, conn)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tEVENTS\tPACKAGES\tATTEMPTS")
	for _, t := range tallies {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", t.Kind, t.Events, t.Packages, t.Attempts)
	}
	return w.Flush()
}
