package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/launchstack-dev/composer-parser/pkg/composer"
	"github.com/launchstack-dev/composer-parser/pkg/marketdata"
	"github.com/launchstack-dev/composer-parser/pkg/marketdata/provider"
)

// downloadAction loads a symphony, scans it for the tickers it needs, and
// downloads their daily history into the local store.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	symphony, err := composer.LoadFile(cmd.String("symphony"))
	if err != nil {
		return fmt.Errorf("failed to load symphony: %w", err)
	}

	clientConfig := marketdata.ClientConfig{
		ProviderType:  provider.ProviderType(cmd.String("provider")),
		DatabasePath:  cmd.String("database"),
		PolygonApiKey: os.Getenv("POLYGON_API_KEY"),
	}

	client, err := marketdata.NewClient(clientConfig, nil)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	defer client.Close()

	tickers := symphony.Tickers()
	log.Printf("Downloading %d tickers for %q from %s to %s...",
		len(tickers), symphony.Name(),
		cmd.Timestamp("start").Format("2006-01-02"),
		cmd.Timestamp("end").Format("2006-01-02"))

	err = client.Download(ctx, marketdata.DownloadParams{
		Tickers:   tickers,
		StartDate: cmd.Timestamp("start"),
		EndDate:   cmd.Timestamp("end"),
	})
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	log.Println("Download completed successfully.")

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "download",
		Usage: "Download the daily price history a symphony needs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symphony",
				Aliases:  []string{"f"},
				Usage:    "Path to the symphony source file",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   "Data provider to use",
				Value:   string(provider.ProviderPolygon),
			},
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Usage:   "Path to the DuckDB price database",
				Value:   "prices.db",
			},
		},
		Action: downloadAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
