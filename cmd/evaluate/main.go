package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/launchstack-dev/composer-parser/internal/logger"
	"github.com/launchstack-dev/composer-parser/pkg/composer"
	"github.com/launchstack-dev/composer-parser/pkg/marketdata/store"
)

// evaluateAction loads a symphony and its stored price history, evaluates
// every date in the common calendar, and writes the allocations as CSV.
func evaluateAction(ctx context.Context, cmd *cli.Command) error {
	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer appLogger.Sync()

	symphony, err := composer.LoadFile(cmd.String("symphony"))
	if err != nil {
		return fmt.Errorf("failed to load symphony: %w", err)
	}

	barStore, err := store.NewDuckDBStore(cmd.String("database"))
	if err != nil {
		return fmt.Errorf("failed to open price database: %w", err)
	}

	defer barStore.Close()

	prices, err := barStore.LoadAll(symphony.Tickers())
	if err != nil {
		return fmt.Errorf("failed to load price history: %w", err)
	}

	session, err := composer.NewSession(symphony, prices, appLogger)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	results := session.AllocationHistory(ctx, int(cmd.Int("workers")))

	out := os.Stdout

	if path := cmd.String("output"); path != "" {
		out, err = os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}

		defer out.Close()
	}

	if err := composer.WriteAllocationCSV(out, results); err != nil {
		return err
	}

	if refPath := cmd.String("reference"); refPath != "" {
		ref, err := os.Open(refPath)
		if err != nil {
			return fmt.Errorf("failed to open reference CSV: %w", err)
		}

		defer ref.Close()

		reference, err := composer.ReadAllocationCSV(ref)
		if err != nil {
			return err
		}

		report := composer.Validate(results, reference, cmd.Float("tolerance"))
		log.Printf("Validation: %d/%d dates matched, %d missing, max drift %.2e, mean drift %.2e",
			report.DatesMatched, report.DatesCompared, len(report.MissingDates),
			report.MaxDrift, report.MeanDrift)

		if !report.Matches() {
			return fmt.Errorf("allocations diverge from reference")
		}
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "evaluate",
		Usage: "Evaluate a symphony over its stored price history",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symphony",
				Aliases:  []string{"f"},
				Usage:    "Path to the symphony source file",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Usage:   "Path to the DuckDB price database",
				Value:   "prices.db",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write allocations to this CSV file instead of stdout",
			},
			&cli.StringFlag{
				Name:    "reference",
				Aliases: []string{"r"},
				Usage:   "Validate results against this reference allocation CSV",
			},
			&cli.FloatFlag{
				Name:  "tolerance",
				Usage: "Per-weight tolerance when validating against a reference",
				Value: 1e-4,
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Evaluation worker count, 0 for one per CPU",
				Value:   0,
			},
		},
		Action: evaluateAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
