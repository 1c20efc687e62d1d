// Package scan walks a parsed symphony and extracts everything the strategy
// could ever need: the full set of indicator requirements across all
// conditional branches, and the tickers whose price history must be loaded.
// The walk is structural, not conditional, so one pass covers every branch
// regardless of which ones a given date would take.
package scan

import (
	"sort"

	"github.com/launchstack-dev/composer-parser/internal/ast"
	"github.com/launchstack-dev/composer-parser/internal/types"
)

// Requirements is the result of scanning a symphony.
type Requirements struct {
	// Indicators is the deduplicated set of indicator requirements, in a
	// deterministic order (ticker, then kind, then window).
	Indicators []types.IndicatorRequest
	// Tickers is every ticker that needs price history: all asset leaves
	// plus every ticker an indicator is computed over. Sorted.
	Tickers []string
}

// Scan extracts the requirements of a symphony.
func Scan(root *ast.Symphony) Requirements {
	s := &scanner{
		indicators: make(map[types.IndicatorRequest]struct{}),
		tickers:    make(map[string]struct{}),
	}
	s.walk(root.Body)

	return s.requirements()
}

type scanner struct {
	indicators map[types.IndicatorRequest]struct{}
	tickers    map[string]struct{}
}

func (s *scanner) walk(node ast.Node) {
	switch n := node.(type) {
	case *ast.Asset:
		s.tickers[n.Ticker] = struct{}{}
	case *ast.Group:
		s.walk(n.Body)
	case *ast.If:
		s.operand(n.Condition.Left)
		s.operand(n.Condition.Right)
		s.walk(n.Then)
		s.walk(n.Else)
	case *ast.WeightEqual:
		for _, child := range n.Children {
			s.walk(child)
		}
	case *ast.WeightSpecified:
		for _, pair := range n.Pairs {
			s.walk(pair.Child)
		}
	case *ast.Filter:
		// The template binds to each candidate's leaf tickers; scanning the
		// full candidate subtree keeps the requirement set a superset of
		// anything evaluation can ask for.
		for _, candidate := range n.Candidates {
			for _, ticker := range leafTickers(candidate) {
				s.require(n.Indicator.RequestFor(ticker))
			}

			s.walk(candidate)
		}
	}
}

func (s *scanner) operand(op ast.Operand) {
	if ref, ok := op.(ast.IndicatorRef); ok {
		s.require(ref.Request())
	}
}

func (s *scanner) require(req types.IndicatorRequest) {
	s.indicators[req] = struct{}{}
	s.tickers[req.Ticker] = struct{}{}
}

func (s *scanner) requirements() Requirements {
	indicators := make([]types.IndicatorRequest, 0, len(s.indicators))
	for req := range s.indicators {
		indicators = append(indicators, req)
	}

	sort.Slice(indicators, func(i, j int) bool {
		a, b := indicators[i], indicators[j]
		if a.Ticker != b.Ticker {
			return a.Ticker < b.Ticker
		}

		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}

		return a.Window < b.Window
	})

	tickers := make([]string, 0, len(s.tickers))
	for ticker := range s.tickers {
		tickers = append(tickers, ticker)
	}

	sort.Strings(tickers)

	return Requirements{Indicators: indicators, Tickers: tickers}
}

// leafTickers collects the asset tickers reachable from a node, in
// declaration order.
func leafTickers(node ast.Node) []string {
	var out []string

	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch v := n.(type) {
		case *ast.Asset:
			out = append(out, v.Ticker)
		case *ast.Group:
			walk(v.Body)
		case *ast.If:
			walk(v.Then)
			walk(v.Else)
		case *ast.WeightEqual:
			for _, child := range v.Children {
				walk(child)
			}
		case *ast.WeightSpecified:
			for _, pair := range v.Pairs {
				walk(pair.Child)
			}
		case *ast.Filter:
			for _, candidate := range v.Candidates {
				walk(candidate)
			}
		}
	}
	walk(node)

	return out
}

// LeafTickers lists the asset tickers reachable from a node, in declaration
// order, without deduplication.
func LeafTickers(node ast.Node) []string {
	return leafTickers(node)
}
