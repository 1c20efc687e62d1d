package eval

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/launchstack-dev/composer-parser/internal/ast"
	"github.com/launchstack-dev/composer-parser/internal/types"
)

// Result is the outcome of evaluating one date. Exactly one of Allocation
// and Err is set.
type Result struct {
	Date       time.Time
	Allocation types.Allocation
	Err        error
}

// EvaluateRange evaluates every date independently and returns results in
// the order the dates were given. Dates that fail (warmup, data gaps) carry
// their error in the result instead of aborting the rest; only context
// cancellation stops the run early, leaving unprocessed dates with the
// context's error. workers <= 0 uses one worker per CPU.
func (e *Evaluator) EvaluateRange(ctx context.Context, root *ast.Symphony, dates []time.Time, workers int) []Result {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result, len(dates))

	indexes := make(chan int)

	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range indexes {
				allocation, err := e.Evaluate(root, dates[i])
				results[i] = Result{Date: dates[i], Allocation: allocation, Err: err}
			}
		}()
	}

feed:
	for i := range dates {
		select {
		case indexes <- i:
		case <-ctx.Done():
			break feed
		}
	}

	close(indexes)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		for i := range results {
			if results[i].Date.IsZero() {
				results[i] = Result{Date: dates[i], Err: err}
			}
		}
	}

	return results
}
