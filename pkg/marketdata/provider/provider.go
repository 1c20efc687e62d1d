// Package provider fetches daily price history from market data vendors.
package provider

import (
	"context"
	"time"

	"github.com/launchstack-dev/composer-parser/internal/types"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
)

// OnDownloadProgress reports download progress for one ticker.
type OnDownloadProgress = func(current float64, total float64, message string)

// Provider fetches daily bars for one instrument.
type Provider interface {
	// DailyBars returns the daily close history for ticker over [startDate,
	// endDate], ordered ascending by time. The context can be used to cancel
	// the fetch. The dates present are the vendor's trading calendar.
	DailyBars(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, onProgress OnDownloadProgress) (types.PriceSeries, error)
}
