// Command syncctl runs roster synchronization from the command line, without
// the HTTP server. It shares the server's wiring, so the same environment
// variables apply.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dupr-sync-service/internal/config"
	"dupr-sync-service/internal/domain"
	"dupr-sync-service/internal/logging"
	"dupr-sync-service/internal/metrics"
	"dupr-sync-service/internal/report"
	"dupr-sync-service/internal/server"
)

func main() {
	var (
		rowNum  = flag.Int("row", 0, "process only this roster row")
		first   = flag.Bool("first", false, "process only the first roster row")
		last    = flag.Bool("last", false, "process only the last roster row")
		saveRun = flag.Bool("save", false, "write the run report to the report directory")
		csvPath = flag.String("csv", "", "roster CSV to load (overrides ROSTER_CSV)")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	if *csvPath != "" {
		cfg.Storage.RosterCSV = *csvPath
	}
	logger := logging.NewLogger(logging.Config{
		Level:   os.Getenv("LOG_LEVEL"),
		Format:  os.Getenv("LOG_FORMAT"),
		Service: "syncctl",
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := server.BuildSyncComponents(ctx, cfg, logger, metrics.NewRecorder())
	if err != nil {
		fmt.Fprintln(os.Stderr, "wiring failed:", err)
		os.Exit(1)
	}
	if components.DB != nil {
		defer components.DB.Close()
	}

	var runReport domain.Report
	switch {
	case *rowNum > 0:
		runReport, err = components.Synchronizer.RunRow(ctx, *rowNum)
	case *first:
		runReport, err = components.Synchronizer.RunFirst(ctx)
	case *last:
		runReport, err = components.Synchronizer.RunLast(ctx)
	default:
		runReport, err = components.Synchronizer.RunBatch(ctx)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "run failed:", err)
		os.Exit(1)
	}

	if *saveRun {
		path, err := report.NewWriter(cfg.Sync.ReportDir).Write(runReport)
		if err != nil {
			fmt.Fprintln(os.Stderr, "saving report failed:", err)
			os.Exit(1)
		}
		fmt.Println("report written to", path)
	}

	printReport(runReport)
}

func printReport(r domain.Report) {
	fmt.Printf("processed %d rows, %d enrolled, in %s\n",
		r.Processed(), r.Enrolled(), r.Finished.Sub(r.Started).Round(time.Millisecond))
	for _, outcome := range r.Outcomes {
		line := fmt.Sprintf("  row %d\t%s\t%s", outcome.Row, outcome.Status, outcome.FullName)
		if outcome.Detail != "" {
			line += "\t" + outcome.Detail
		}
		fmt.Println(line)
	}
}
