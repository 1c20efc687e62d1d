// Package marketdata ties a vendor provider to a local DuckDB store: the
// client downloads daily history once and serves it from the store on every
// later run.
package marketdata

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/launchstack-dev/composer-parser/internal/types"
	"github.com/launchstack-dev/composer-parser/pkg/errors"
	"github.com/launchstack-dev/composer-parser/pkg/marketdata/provider"
	"github.com/launchstack-dev/composer-parser/pkg/marketdata/store"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  provider.ProviderType `yaml:"provider" validate:"required,oneof=polygon"`
	DatabasePath  string                `yaml:"database_path"`
	PolygonApiKey string                `yaml:"polygon_api_key" validate:"required_if=ProviderType polygon"`
}

// DownloadParams holds the parameters for a market data download request.
type DownloadParams struct {
	Tickers   []string  `validate:"required,min=1,dive,required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtfield=StartDate"`
}

// Client downloads daily bars from a provider and persists them locally.
type Client struct {
	provider   provider.Provider
	store      *store.DuckDBStore
	validate   *validator.Validate
	onProgress provider.OnDownloadProgress
}

// NewClient creates a market data client with the given configuration.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	var (
		marketProvider provider.Provider
		err            error
	)

	switch config.ProviderType {
	case provider.ProviderPolygon:
		marketProvider, err = provider.NewPolygonClient(config.PolygonApiKey)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider type: %s", config.ProviderType)
	}

	barStore, err := store.NewDuckDBStore(config.DatabasePath)
	if err != nil {
		return nil, err
	}

	return &Client{
		provider:   marketProvider,
		store:      barStore,
		validate:   validate,
		onProgress: onProgress,
	}, nil
}

// Download fetches daily history for every ticker and persists it, replacing
// whatever the store already holds for those tickers. The context can be
// used to cancel the download.
func (c *Client) Download(ctx context.Context, params DownloadParams) error {
	if err := c.validate.Struct(params); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid download parameters", err)
	}

	for _, ticker := range params.Tickers {
		series, err := c.provider.DailyBars(ctx, ticker, params.StartDate, params.EndDate, c.onProgress)
		if err != nil {
			return err
		}

		if err := c.store.SaveSeries(ticker, series); err != nil {
			return err
		}
	}

	return nil
}

// Load reads the stored series for the tickers. Tickers with no stored bars
// are omitted.
func (c *Client) Load(tickers []string) (map[string]types.PriceSeries, error) {
	return c.store.LoadAll(tickers)
}

// Close releases the underlying store.
func (c *Client) Close() error {
	return c.store.Close()
}
