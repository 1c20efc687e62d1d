// Package indicator computes the derived price signals a strategy compares
// against: Wilder RSI, trailing simple moving average, and the close itself.
// Values are computed once per request over the full series and stored in a
// Table for constant-time lookup by date, so evaluating many dates never
// recomputes a series.
package indicator

import (
	"math"
	"sync"
	"time"

	"github.com/launchstack-dev/composer-parser/internal/types"
	"github.com/launchstack-dev/composer-parser/pkg/errors"
)

// Table holds precomputed indicator values keyed by request and date. A date
// with no defined value (warmup, or a date the instrument did not trade) is
// simply absent; Value reports it as unavailable.
type Table struct {
	values map[types.IndicatorRequest]map[int64]float64
}

// Build computes every requested indicator over the provided price series.
// Each series must be strictly ascending by time. Requests whose ticker has
// no series fail immediately; a series too short for a window does not, its
// values are just unavailable everywhere.
func Build(prices map[string]types.PriceSeries, requests []types.IndicatorRequest) (*Table, error) {
	for ticker, series := range prices {
		if !series.Sorted() {
			return nil, errors.Newf(errors.ErrCodePriceSeriesUnsorted,
				"price series for %s is not strictly ascending by time", ticker)
		}
	}

	for _, req := range requests {
		if _, ok := prices[req.Ticker]; !ok {
			return nil, errors.Newf(errors.ErrCodePriceSeriesMissing,
				"no price series for %s required by %s", req.Ticker, req.Kind)
		}
	}

	table := &Table{values: make(map[types.IndicatorRequest]map[int64]float64, len(requests))}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, req := range requests {
		wg.Add(1)

		go func(req types.IndicatorRequest) {
			defer wg.Done()

			values := computeRequest(prices[req.Ticker], req)

			mu.Lock()
			table.values[req] = values
			mu.Unlock()
		}(req)
	}

	wg.Wait()

	return table, nil
}

func computeRequest(series types.PriceSeries, req types.IndicatorRequest) map[int64]float64 {
	closes := series.Closes()

	var raw []float64

	switch req.Kind {
	case types.IndicatorTypeRSI:
		raw = RSISeries(closes, req.Window)
	case types.IndicatorTypeMovingAveragePrice:
		raw = SMASeries(closes, req.Window)
	case types.IndicatorTypeCurrentPrice:
		raw = closes
	default:
		raw = nanSeries(len(closes))
	}

	values := make(map[int64]float64, len(raw))

	for i, v := range raw {
		if math.IsNaN(v) {
			continue
		}

		values[dateKey(series[i].Time)] = v
	}

	return values
}

// Value returns the indicator value for a request at a date. An unknown
// request, a date before the warmup completes, or a date the instrument did
// not trade all report the value as unavailable.
func (t *Table) Value(req types.IndicatorRequest, date time.Time) (float64, error) {
	byDate, ok := t.values[req]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeIndicatorUnavailable,
			"%s(%s, window=%d) was not computed", req.Kind, req.Ticker, req.Window)
	}

	v, ok := byDate[dateKey(date)]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeIndicatorUnavailable,
			"%s(%s, window=%d) has no value at %s", req.Kind, req.Ticker, req.Window,
			date.Format("2006-01-02"))
	}

	return v, nil
}

// Available reports whether a value exists for the request at the date.
func (t *Table) Available(req types.IndicatorRequest, date time.Time) bool {
	_, err := t.Value(req, date)

	return err == nil
}

// Len returns the number of computed requests.
func (t *Table) Len() int {
	return len(t.values)
}

func dateKey(t time.Time) int64 {
	return t.UTC().Truncate(24 * time.Hour).Unix()
}
