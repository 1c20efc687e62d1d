// Package composer is the high-level entry point: load a symphony, feed it
// price history, and read back dated target allocations.
package composer

import (
	"context"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/launchstack-dev/composer-parser/internal/ast"
	"github.com/launchstack-dev/composer-parser/internal/eval"
	"github.com/launchstack-dev/composer-parser/internal/indicator"
	"github.com/launchstack-dev/composer-parser/internal/logger"
	"github.com/launchstack-dev/composer-parser/internal/parser"
	"github.com/launchstack-dev/composer-parser/internal/scan"
	"github.com/launchstack-dev/composer-parser/internal/types"
	"github.com/launchstack-dev/composer-parser/pkg/errors"
)

// Symphony is a parsed strategy together with its scanned requirements.
type Symphony struct {
	root         *ast.Symphony
	requirements scan.Requirements
}

// Load parses symphony source text.
func Load(src string) (*Symphony, error) {
	root, err := parser.ParseText(src)
	if err != nil {
		return nil, err
	}

	return &Symphony{root: root, requirements: scan.Scan(root)}, nil
}

// LoadFile parses a symphony from a file.
func LoadFile(path string) (*Symphony, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeSymphonyNotLoaded, err, "failed to read symphony file %s", path)
	}

	return Load(string(src))
}

// Name returns the symphony's declared name, empty for a bare body.
func (s *Symphony) Name() string {
	return s.root.Name
}

// Tickers returns every ticker the strategy needs price history for.
func (s *Symphony) Tickers() []string {
	return s.requirements.Tickers
}

// Indicators returns the full indicator requirement set across all branches.
func (s *Symphony) Indicators() []types.IndicatorRequest {
	return s.requirements.Indicators
}

// Session binds a symphony to price history: indicators are computed once
// and every date in the common trading calendar can then be evaluated
// independently.
type Session struct {
	symphony  *Symphony
	evaluator *eval.Evaluator
	dates     []time.Time
	log       *logger.Logger
}

// NewSession computes the symphony's indicators over the given price series.
// Every required ticker must have a series; the session's calendar is the
// intersection of all required tickers' trading dates. A nil log discards
// warnings.
func NewSession(symphony *Symphony, prices map[string]types.PriceSeries, log *logger.Logger) (*Session, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	for _, ticker := range symphony.requirements.Tickers {
		if _, ok := prices[ticker]; !ok {
			return nil, errors.Newf(errors.ErrCodePriceSeriesMissing,
				"no price series for required ticker %s", ticker)
		}
	}

	table, err := indicator.Build(prices, symphony.requirements.Indicators)
	if err != nil {
		return nil, err
	}

	dates := commonDates(prices, symphony.requirements.Tickers)

	log.Debug("session ready",
		zap.String("symphony", symphony.Name()),
		zap.Int("indicators", len(symphony.requirements.Indicators)),
		zap.Int("dates", len(dates)))

	return &Session{
		symphony:  symphony,
		evaluator: eval.New(table, log),
		dates:     dates,
		log:       log,
	}, nil
}

// Dates returns the session's trading calendar: every date all required
// tickers traded, ascending.
func (s *Session) Dates() []time.Time {
	out := make([]time.Time, len(s.dates))
	copy(out, s.dates)

	return out
}

// AllocationAt evaluates the strategy for one date.
func (s *Session) AllocationAt(date time.Time) (types.Allocation, error) {
	return s.evaluator.Evaluate(s.symphony.root, date)
}

// AllocationRange evaluates every date independently, fanning out across
// workers. Results keep the order of dates.
func (s *Session) AllocationRange(ctx context.Context, dates []time.Time, workers int) []eval.Result {
	return s.evaluator.EvaluateRange(ctx, s.symphony.root, dates, workers)
}

// AllocationHistory evaluates the whole session calendar, skipping warmup
// dates: leading dates that fail because indicators have no value yet are
// dropped, while failures after the first success are kept as errors.
func (s *Session) AllocationHistory(ctx context.Context, workers int) []eval.Result {
	results := s.AllocationRange(ctx, s.dates, workers)

	start := 0
	for start < len(results) && isWarmupError(results[start].Err) {
		start++
	}

	if start > 0 {
		s.log.Debug("skipped warmup dates", zap.Int("count", start))
	}

	return results[start:]
}

// isWarmupError reports whether an evaluation failure is the kind produced
// before indicators have enough history. A filter whose every candidate
// lacks a rank value fails with no eligible candidates, which during the
// leading dates means the same thing as an unavailable indicator.
func isWarmupError(err error) bool {
	if err == nil {
		return false
	}
	return errors.HasCode(err, errors.ErrCodeIndicatorUnavailable) ||
		errors.HasCode(err, errors.ErrCodeNoEligibleCandidates)
}

// commonDates intersects the trading calendars of the required tickers.
func commonDates(prices map[string]types.PriceSeries, tickers []string) []time.Time {
	if len(tickers) == 0 {
		return nil
	}

	counts := make(map[int64]int)
	times := make(map[int64]time.Time)

	for _, ticker := range tickers {
		for _, bar := range prices[ticker] {
			key := bar.Time.UTC().Truncate(24 * time.Hour).Unix()
			counts[key]++
			times[key] = bar.Time
		}
	}

	var dates []time.Time

	for key, n := range counts {
		if n == len(tickers) {
			dates = append(dates, times[key])
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	return dates
}
