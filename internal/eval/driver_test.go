package eval

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/launchstack-dev/composer-parser/internal/types"
	"github.com/launchstack-dev/composer-parser/pkg/errors"
)

type DriverTestSuite struct {
	suite.Suite
}

func TestDriverSuite(t *testing.T) {
	suite.Run(t, new(DriverTestSuite))
}

func (suite *DriverTestSuite) TestRangePreservesDateOrder() {
	prices := map[string]types.PriceSeries{
		"SPY": seriesOf("SPY", 100, 102, 104, 106, 90),
		"A":   seriesOf("A", 1, 1, 1, 1, 1),
		"B":   seriesOf("B", 1, 1, 1, 1, 1),
	}
	evaluator, root := buildFixture(suite.T(), `
(if (> (current-price "SPY") (moving-average-price "SPY" {:window 3}))
 [(asset "A" "")]
 [(asset "B" "")])`, prices)

	dates := []time.Time{day(0), day(1), day(2), day(3), day(4)}
	results := evaluator.EvaluateRange(context.Background(), root, dates, 3)

	suite.Len(results, len(dates))

	for i, result := range results {
		suite.Equal(dates[i], result.Date)
	}

	// The first two dates are inside the moving-average warmup.
	suite.True(errors.HasCode(results[0].Err, errors.ErrCodeIndicatorUnavailable))
	suite.True(errors.HasCode(results[1].Err, errors.ErrCodeIndicatorUnavailable))

	suite.NoError(results[2].Err)
	suite.Equal(types.Allocation{"A": 1.0}, results[2].Allocation)
	suite.Equal(types.Allocation{"A": 1.0}, results[3].Allocation)
	suite.Equal(types.Allocation{"B": 1.0}, results[4].Allocation)
}

func (suite *DriverTestSuite) TestRangeFailedDatesDoNotAbortOthers() {
	prices := map[string]types.PriceSeries{
		"SPY": seriesOf("SPY", 100, 102, 104),
		"A":   seriesOf("A", 1, 1, 1),
		"B":   seriesOf("B", 1, 1, 1),
	}
	evaluator, root := buildFixture(suite.T(), `
(if (> (current-price "SPY") (moving-average-price "SPY" {:window 3}))
 [(asset "A" "")]
 [(asset "B" "")])`, prices)

	results := evaluator.EvaluateRange(context.Background(), root, []time.Time{day(0), day(2)}, 1)

	suite.Error(results[0].Err)
	suite.NoError(results[1].Err)
}

func (suite *DriverTestSuite) TestRangeCancelledContext() {
	evaluator, root := buildFixture(suite.T(), `(asset "SPY" "")`, map[string]types.PriceSeries{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dates := make([]time.Time, 100)
	for i := range dates {
		dates[i] = day(i)
	}

	results := evaluator.EvaluateRange(ctx, root, dates, 2)
	suite.Len(results, 100)

	cancelled := 0

	for _, result := range results {
		if result.Err != nil {
			suite.ErrorIs(result.Err, context.Canceled)
			cancelled++
		}
	}

	suite.Positive(cancelled)
}

func (suite *DriverTestSuite) TestRangeDefaultWorkerCount() {
	evaluator, root := buildFixture(suite.T(), `(asset "SPY" "")`, map[string]types.PriceSeries{})

	results := evaluator.EvaluateRange(context.Background(), root, []time.Time{day(0), day(1)}, 0)
	suite.Len(results, 2)
	suite.NoError(results[0].Err)
	suite.NoError(results[1].Err)
}
