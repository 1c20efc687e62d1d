// Package ast defines the typed expression tree for a parsed symphony. The
// node set is closed: evaluation and requirement extraction switch
// exhaustively over it, so adding an operator means updating every switch
// site. Nodes are immutable once built and carry no per-date state, which
// makes a single tree safe to evaluate concurrently for many dates.
package ast

import (
	"github.com/moznion/go-optional"

	"github.com/launchstack-dev/composer-parser/internal/types"
)

// Node is implemented by every AST variant.
type Node interface {
	node()
}

// Operand is a comparison operand: an IndicatorRef or a NumberLiteral.
type Operand interface {
	operand()
}

// Symphony is the root strategy definition.
type Symphony struct {
	Name string
	// Metadata carries the symphony's rebalance cadence and classification
	// untouched; nothing downstream interprets it.
	Metadata map[string]any
	Body     Node
}

// If selects one of two branches based on a comparison evaluated at the
// target date.
type If struct {
	Condition Comparison
	Then      Node
	Else      Node
}

// Comparison applies a comparison operator to two operands.
type Comparison struct {
	Operator types.ComparisonOperator
	Left     Operand
	Right    Operand
}

// WeightEqual allocates equally across its children.
type WeightEqual struct {
	Children []Node
}

// WeightedChild pairs a declared weight with a child node.
type WeightedChild struct {
	Weight float64
	Child  Node
}

// WeightSpecified allocates each child its declared weight. Declared weights
// are used verbatim unless they do not sum to 1.0, in which case they are
// normalized proportionally and the inconsistency is surfaced as a warning.
type WeightSpecified struct {
	Pairs []WeightedChild
}

// Asset is a leaf instrument. DisplayName is carried through but never
// affects evaluation.
type Asset struct {
	Ticker      string
	DisplayName string
}

// Group is a transparent labeled wrapper; it evaluates to its body's result.
type Group struct {
	Label string
	Body  Node
}

// Selection directs which end of a filter's ranked candidates to keep.
type Selection struct {
	Mode  types.SelectionMode
	Count int
}

// Filter ranks its candidates by an indicator and keeps the top or bottom
// Count, equal-weighting the survivors.
type Filter struct {
	Indicator  IndicatorTemplate
	Selection  Selection
	Candidates []Node
}

// IndicatorTemplate is an indicator kind plus parameters with the ticker
// intentionally absent; a filter supplies it per candidate at evaluation time.
type IndicatorTemplate struct {
	Kind   types.IndicatorType
	Window optional.Option[int]
}

// RequestFor resolves the template against a candidate's ticker.
func (t IndicatorTemplate) RequestFor(ticker string) types.IndicatorRequest {
	return types.IndicatorRequest{
		Ticker: ticker,
		Kind:   t.Kind,
		Window: t.Window.TakeOr(0),
	}
}

// IndicatorRef names a fully-bound indicator: kind, ticker, and window.
// Window is None for indicators without a lookback (current-price).
type IndicatorRef struct {
	Kind   types.IndicatorType
	Ticker string
	Window optional.Option[int]
}

// Request returns the structural indicator requirement for this reference.
func (r IndicatorRef) Request() types.IndicatorRequest {
	return types.IndicatorRequest{
		Ticker: r.Ticker,
		Kind:   r.Kind,
		Window: r.Window.TakeOr(0),
	}
}

// NumberLiteral is a constant comparison operand.
type NumberLiteral struct {
	Value float64
}

func (*Symphony) node()        {}
func (*If) node()              {}
func (*WeightEqual) node()     {}
func (*WeightSpecified) node() {}
func (*Asset) node()           {}
func (*Group) node()           {}
func (*Filter) node()          {}

func (IndicatorRef) operand()  {}
func (NumberLiteral) operand() {}
