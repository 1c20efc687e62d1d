// Package eval turns a parsed symphony into a target allocation for a single
// date. Evaluation is pure with respect to the date: it reads only the
// precomputed indicator table, never mutates the tree, and two evaluations of
// the same date always agree, so a driver can fan dates out across
// goroutines against one shared evaluator.
package eval

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/launchstack-dev/composer-parser/internal/ast"
	"github.com/launchstack-dev/composer-parser/internal/indicator"
	"github.com/launchstack-dev/composer-parser/internal/logger"
	"github.com/launchstack-dev/composer-parser/internal/types"
	"github.com/launchstack-dev/composer-parser/pkg/errors"
)

// weightSumTolerance bounds how far declared weight-specified weights may
// drift from 1.0 before the inconsistency is logged.
const weightSumTolerance = 1e-6

// Evaluator computes allocations from a symphony against an indicator table.
type Evaluator struct {
	table  *indicator.Table
	logger *logger.Logger
}

// New creates an evaluator. A nil logger is replaced with a no-op one.
func New(table *indicator.Table, log *logger.Logger) *Evaluator {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Evaluator{table: table, logger: log}
}

// Evaluate computes the target allocation for one date. The result is
// normalized to sum to 1.0. A condition or filter that needs an indicator
// with no value at the date fails the whole date.
func (e *Evaluator) Evaluate(root *ast.Symphony, date time.Time) (types.Allocation, error) {
	allocation, err := e.node(root.Body, date)
	if err != nil {
		return nil, err
	}

	if len(allocation) == 0 || allocation.Sum() == 0 {
		return nil, errors.Newf(errors.ErrCodeEmptyAllocation,
			"strategy produced no holdings at %s", date.Format("2006-01-02"))
	}

	return allocation.Normalized(), nil
}

func (e *Evaluator) node(node ast.Node, date time.Time) (types.Allocation, error) {
	switch n := node.(type) {
	case *ast.Asset:
		return types.Allocation{n.Ticker: 1.0}, nil
	case *ast.Group:
		return e.node(n.Body, date)
	case *ast.If:
		return e.conditional(n, date)
	case *ast.WeightEqual:
		return e.weightEqual(n, date)
	case *ast.WeightSpecified:
		return e.weightSpecified(n, date)
	case *ast.Filter:
		return e.filter(n, date)
	default:
		return nil, errors.Newf(errors.ErrCodeEvaluationFailed,
			"unsupported node %T", node)
	}
}

func (e *Evaluator) conditional(n *ast.If, date time.Time) (types.Allocation, error) {
	left, err := e.operand(n.Condition.Left, date)
	if err != nil {
		return nil, err
	}

	right, err := e.operand(n.Condition.Right, date)
	if err != nil {
		return nil, err
	}

	holds, err := n.Condition.Operator.Apply(left, right)
	if err != nil {
		return nil, err
	}

	if holds {
		return e.node(n.Then, date)
	}

	return e.node(n.Else, date)
}

func (e *Evaluator) operand(op ast.Operand, date time.Time) (float64, error) {
	switch v := op.(type) {
	case ast.NumberLiteral:
		return v.Value, nil
	case ast.IndicatorRef:
		return e.table.Value(v.Request(), date)
	default:
		return 0, errors.Newf(errors.ErrCodeEvaluationFailed,
			"unsupported operand %T", op)
	}
}

func (e *Evaluator) weightEqual(n *ast.WeightEqual, date time.Time) (types.Allocation, error) {
	if len(n.Children) == 0 {
		return nil, errors.New(errors.ErrCodeEvaluationFailed,
			"weight-equal has no children")
	}

	out := types.Allocation{}
	share := 1.0 / float64(len(n.Children))

	for _, child := range n.Children {
		allocation, err := e.node(child, date)
		if err != nil {
			return nil, err
		}

		out.Accumulate(allocation.Scaled(share))
	}

	return out, nil
}

func (e *Evaluator) weightSpecified(n *ast.WeightSpecified, date time.Time) (types.Allocation, error) {
	total := 0.0
	for _, pair := range n.Pairs {
		total += pair.Weight
	}

	if total <= 0 {
		return nil, errors.New(errors.ErrCodeEvaluationFailed,
			"weight-specified weights must have a positive sum")
	}

	// Declared weights are used verbatim when they already sum to one;
	// otherwise they are rescaled proportionally and the drift is logged.
	scale := 1.0
	if math.Abs(total-1.0) > weightSumTolerance {
		scale = 1.0 / total
		e.logger.Warn("weight-specified weights do not sum to 1.0, normalizing",
			zap.Float64("declared_sum", total),
			zap.String("date", date.Format("2006-01-02")))
	}

	out := types.Allocation{}

	for _, pair := range n.Pairs {
		allocation, err := e.node(pair.Child, date)
		if err != nil {
			return nil, err
		}

		out.Accumulate(allocation.Scaled(pair.Weight * scale))
	}

	return out, nil
}

// candidateRank is one filter candidate eligible for selection.
type candidateRank struct {
	index int
	node  ast.Node
	value float64
}

func (e *Evaluator) filter(n *ast.Filter, date time.Time) (types.Allocation, error) {
	eligible := make([]candidateRank, 0, len(n.Candidates))

	for i, candidate := range n.Candidates {
		ticker, err := e.candidateTicker(candidate, i, date)
		if err != nil {
			// Candidates whose resolution needs an indicator with no value
			// at this date drop out of the ranking rather than failing the
			// filter, same as candidates without a rank value below.
			if errors.HasCode(err, errors.ErrCodeIndicatorUnavailable) {
				e.logger.Debug("excluding filter candidate without indicator value",
					zap.Int("candidate", i),
					zap.String("date", date.Format("2006-01-02")))

				continue
			}

			return nil, err
		}

		req := n.Indicator.RequestFor(ticker)

		value, err := e.table.Value(req, date)
		if err != nil {
			if errors.HasCode(err, errors.ErrCodeIndicatorUnavailable) {
				e.logger.Debug("excluding filter candidate without indicator value",
					zap.String("ticker", ticker),
					zap.String("date", date.Format("2006-01-02")))

				continue
			}

			return nil, err
		}

		eligible = append(eligible, candidateRank{index: i, node: candidate, value: value})
	}

	if len(eligible) == 0 {
		return nil, errors.Newf(errors.ErrCodeNoEligibleCandidates,
			"no filter candidate has %s available at %s", n.Indicator.Kind,
			date.Format("2006-01-02"))
	}

	// Ties keep declaration order.
	sort.SliceStable(eligible, func(i, j int) bool {
		if n.Selection.Mode == types.SelectionTop {
			return eligible[i].value > eligible[j].value
		}

		return eligible[i].value < eligible[j].value
	})

	count := n.Selection.Count
	if count > len(eligible) {
		count = len(eligible)
	}

	out := types.Allocation{}
	share := 1.0 / float64(count)

	for _, ranked := range eligible[:count] {
		allocation, err := e.node(ranked.node, date)
		if err != nil {
			return nil, err
		}

		out.Accumulate(allocation.Scaled(share))
	}

	return out, nil
}

// candidateTicker resolves the single asset identity a filter candidate
// ranks as at the given date. Conditional candidates follow the branch the
// date selects, and repeated leaves of the same ticker collapse to one
// identity; a candidate that still reduces to several distinct tickers is
// ambiguous.
func (e *Evaluator) candidateTicker(node ast.Node, index int, date time.Time) (string, error) {
	seen := make(map[string]struct{})
	if err := e.collectCandidateTickers(node, date, seen); err != nil {
		return "", err
	}

	if len(seen) != 1 {
		return "", errors.Newf(errors.ErrCodeFilterCandidateAmbiguous,
			"filter candidate %d resolves to %d tickers, need exactly one", index, len(seen))
	}

	for ticker := range seen {
		return ticker, nil
	}

	return "", errors.Newf(errors.ErrCodeFilterCandidateAmbiguous,
		"filter candidate %d resolves to no ticker", index)
}

func (e *Evaluator) collectCandidateTickers(node ast.Node, date time.Time, seen map[string]struct{}) error {
	switch n := node.(type) {
	case *ast.Asset:
		seen[n.Ticker] = struct{}{}

		return nil
	case *ast.Group:
		return e.collectCandidateTickers(n.Body, date, seen)
	case *ast.If:
		left, err := e.operand(n.Condition.Left, date)
		if err != nil {
			return err
		}

		right, err := e.operand(n.Condition.Right, date)
		if err != nil {
			return err
		}

		holds, err := n.Condition.Operator.Apply(left, right)
		if err != nil {
			return err
		}

		if holds {
			return e.collectCandidateTickers(n.Then, date, seen)
		}

		return e.collectCandidateTickers(n.Else, date, seen)
	case *ast.WeightEqual:
		for _, child := range n.Children {
			if err := e.collectCandidateTickers(child, date, seen); err != nil {
				return err
			}
		}

		return nil
	case *ast.WeightSpecified:
		for _, pair := range n.Pairs {
			if err := e.collectCandidateTickers(pair.Child, date, seen); err != nil {
				return err
			}
		}

		return nil
	case *ast.Filter:
		// A nested filter ranks by whatever its own candidates can reduce
		// to; it only resolves when they share one identity.
		for _, candidate := range n.Candidates {
			if err := e.collectCandidateTickers(candidate, date, seen); err != nil {
				return err
			}
		}

		return nil
	default:
		return errors.Newf(errors.ErrCodeEvaluationFailed, "unsupported node %T", node)
	}
}
