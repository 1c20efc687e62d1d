package composer

import (
	"io"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"github.com/launchstack-dev/composer-parser/internal/eval"
	"github.com/launchstack-dev/composer-parser/internal/types"
	"github.com/launchstack-dev/composer-parser/pkg/errors"
)

const dateLayout = "2006-01-02"

// AllocationRecord is one row of a long-format allocation CSV: one ticker's
// weight on one date.
type AllocationRecord struct {
	Date   string  `csv:"date"`
	Ticker string  `csv:"ticker"`
	Weight float64 `csv:"weight"`
}

// ReadAllocationCSV reads a long-format allocation CSV into per-date
// allocations, keyed by date string.
func ReadAllocationCSV(r io.Reader) (map[string]types.Allocation, error) {
	var records []AllocationRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed to parse allocation CSV", err)
	}

	out := make(map[string]types.Allocation)

	for _, record := range records {
		if _, err := time.Parse(dateLayout, record.Date); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "bad date %q in allocation CSV", record.Date)
		}

		if out[record.Date] == nil {
			out[record.Date] = types.Allocation{}
		}

		out[record.Date][record.Ticker] = record.Weight
	}

	return out, nil
}

// WriteAllocationCSV writes evaluation results as a long-format CSV. Weights
// are rounded to six decimal places; failed dates are skipped. Rows are
// ordered by date then ticker.
func WriteAllocationCSV(w io.Writer, results []eval.Result) error {
	var records []AllocationRecord

	for _, result := range results {
		if result.Err != nil {
			continue
		}

		tickers := make([]string, 0, len(result.Allocation))
		for ticker := range result.Allocation {
			tickers = append(tickers, ticker)
		}

		sort.Strings(tickers)

		for _, ticker := range tickers {
			weight, _ := decimal.NewFromFloat(result.Allocation[ticker]).Round(6).Float64()
			records = append(records, AllocationRecord{
				Date:   result.Date.Format(dateLayout),
				Ticker: ticker,
				Weight: weight,
			})
		}
	}

	if err := gocsv.Marshal(&records, w); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write allocation CSV", err)
	}

	return nil
}

// ValidationReport summarizes how computed allocations compare against a
// reference set.
type ValidationReport struct {
	// DatesCompared counts dates present in both sets.
	DatesCompared int
	// DatesMatched counts compared dates where every weight agreed within
	// the tolerance.
	DatesMatched int
	// MissingDates lists reference dates the results never produced.
	MissingDates []string
	// MaxDrift is the largest per-ticker weight difference seen.
	MaxDrift float64
	// MeanDrift is the mean per-ticker weight difference across compared
	// dates.
	MeanDrift float64
}

// Matches reports whether every compared date agreed and none were missing.
func (r ValidationReport) Matches() bool {
	return len(r.MissingDates) == 0 && r.DatesCompared > 0 && r.DatesMatched == r.DatesCompared
}

// Validate compares evaluation results against reference allocations keyed
// by date string. Weights within tolerance of each other agree; a ticker
// present on one side only counts as a full-weight drift.
func Validate(results []eval.Result, reference map[string]types.Allocation, tolerance float64) ValidationReport {
	report := ValidationReport{}

	computed := make(map[string]types.Allocation, len(results))

	for _, result := range results {
		if result.Err == nil {
			computed[result.Date.Format(dateLayout)] = result.Allocation
		}
	}

	var drifts []float64

	referenceDates := make([]string, 0, len(reference))
	for date := range reference {
		referenceDates = append(referenceDates, date)
	}

	sort.Strings(referenceDates)

	for _, date := range referenceDates {
		got, ok := computed[date]
		if !ok {
			report.MissingDates = append(report.MissingDates, date)

			continue
		}

		report.DatesCompared++

		matched := true

		for _, ticker := range unionTickers(reference[date], got) {
			drift := got[ticker] - reference[date][ticker]
			if drift < 0 {
				drift = -drift
			}

			drifts = append(drifts, drift)

			if drift > tolerance {
				matched = false
			}
		}

		if matched {
			report.DatesMatched++
		}
	}

	if len(drifts) > 0 {
		report.MaxDrift, _ = stats.Max(drifts)
		report.MeanDrift, _ = stats.Mean(drifts)
	}

	return report
}

func unionTickers(a, b types.Allocation) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for ticker := range a {
		seen[ticker] = struct{}{}
	}

	for ticker := range b {
		seen[ticker] = struct{}{}
	}

	tickers := make([]string, 0, len(seen))
	for ticker := range seen {
		tickers = append(tickers, ticker)
	}

	sort.Strings(tickers)

	return tickers
}
