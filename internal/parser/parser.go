// Package parser turns the nested-sequence form of a symphony into the typed
// AST. It recognizes a fixed operator vocabulary by leading-position symbol
// and fails with a structured parse error (carrying the offending subtree's
// operator path) on anything outside it.
package parser

import (
	"strconv"

	"github.com/moznion/go-optional"

	"github.com/launchstack-dev/composer-parser/internal/ast"
	"github.com/launchstack-dev/composer-parser/internal/sexpr"
	"github.com/launchstack-dev/composer-parser/internal/types"
	"github.com/launchstack-dev/composer-parser/pkg/errors"
)

// ParseText reads symphony source text and parses it into an AST root.
func ParseText(src string) (*ast.Symphony, error) {
	form, err := sexpr.Parse(src)
	if err != nil {
		return nil, err
	}

	return ParseSymphony(form)
}

// ParseSymphony parses a nested-sequence form into a Symphony root. A
// top-level form that is not a defsymphony is treated as a bare strategy body
// and wrapped in an unnamed root, matching how strategy files sometimes ship
// the body expression alone.
func ParseSymphony(form any) (*ast.Symphony, error) {
	list, ok := form.(sexpr.List)
	if !ok || len(list) == 0 {
		return nil, errors.NewParseError(errors.ErrCodeMalformedExpression, nil,
			"symphony must be a non-empty list")
	}

	if sym, ok := list[0].(sexpr.Symbol); !ok || sym != "defsymphony" {
		body, err := parseNode(form, nil)
		if err != nil {
			return nil, err
		}

		return &ast.Symphony{Name: "", Metadata: nil, Body: body}, nil
	}

	path := []string{"defsymphony"}

	if len(list) < 3 || len(list) > 4 {
		return nil, errors.NewParseErrorf(errors.ErrCodeWrongArity, path,
			"defsymphony expects a name, an optional metadata map, and a body, got %d elements", len(list))
	}

	name, ok := list[1].(string)
	if !ok {
		return nil, errors.NewParseError(errors.ErrCodeInvalidParameter, path,
			"symphony name must be a string")
	}

	var metadata map[string]any

	bodyForm := list[2]

	if len(list) == 4 {
		m, ok := list[2].(sexpr.Map)
		if !ok {
			return nil, errors.NewParseError(errors.ErrCodeInvalidParameter, path,
				"symphony metadata must be a keyword map")
		}

		metadata = make(map[string]any, len(m))
		for k, v := range m {
			metadata[string(k)] = v
		}

		bodyForm = list[3]
	}

	body, err := parseNode(bodyForm, path)
	if err != nil {
		return nil, err
	}

	return &ast.Symphony{Name: name, Metadata: metadata, Body: body}, nil
}

func extend(path []string, op string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)

	return append(out, op)
}

// parseNode parses one strategy expression. A list that does not start with
// an operator symbol is an implicit block: a single wrapped expression is
// unwrapped, several are equal-weighted.
func parseNode(form any, path []string) (ast.Node, error) {
	list, ok := form.(sexpr.List)
	if !ok {
		return nil, errors.NewParseErrorf(errors.ErrCodeMalformedExpression, path,
			"expected an expression list, got %v", form)
	}

	if len(list) == 0 {
		return nil, errors.NewParseError(errors.ErrCodeMalformedExpression, path, "empty expression")
	}

	op, ok := list[0].(sexpr.Symbol)
	if !ok {
		return parseImplicitBlock(list, path)
	}

	switch op {
	case "if":
		return parseIf(list, extend(path, "if"))
	case "weight-equal":
		return parseWeightEqual(list, extend(path, "weight-equal"))
	case "weight-specified":
		return parseWeightSpecified(list, extend(path, "weight-specified"))
	case "asset":
		return parseAsset(list, extend(path, "asset"))
	case "group":
		return parseGroup(list, extend(path, "group"))
	case "filter":
		return parseFilter(list, extend(path, "filter"))
	default:
		return nil, errors.NewParseErrorf(errors.ErrCodeUnknownOperator, path,
			"unknown operator: %s", op)
	}
}

func parseImplicitBlock(list sexpr.List, path []string) (ast.Node, error) {
	if len(list) == 1 {
		return parseNode(list[0], path)
	}

	children := make([]ast.Node, 0, len(list))

	for _, form := range list {
		child, err := parseNode(form, path)
		if err != nil {
			return nil, err
		}

		children = append(children, child)
	}

	return &ast.WeightEqual{Children: children}, nil
}

func parseIf(list sexpr.List, path []string) (ast.Node, error) {
	if len(list) != 4 {
		return nil, errors.NewParseErrorf(errors.ErrCodeWrongArity, path,
			"if expects a condition and two branches, got %d elements", len(list)-1)
	}

	condition, err := parseComparison(list[1], path)
	if err != nil {
		return nil, err
	}

	then, err := parseNode(list[2], path)
	if err != nil {
		return nil, err
	}

	els, err := parseNode(list[3], path)
	if err != nil {
		return nil, err
	}

	return &ast.If{Condition: condition, Then: then, Else: els}, nil
}

func parseComparison(form any, path []string) (ast.Comparison, error) {
	list, ok := form.(sexpr.List)
	if !ok || len(list) != 3 {
		return ast.Comparison{}, errors.NewParseError(errors.ErrCodeMalformedExpression, path,
			"condition must be (operator left right)")
	}

	opSym, ok := list[0].(sexpr.Symbol)
	if !ok {
		return ast.Comparison{}, errors.NewParseError(errors.ErrCodeMalformedExpression, path,
			"condition operator must be a symbol")
	}

	op := types.ComparisonOperator(opSym)
	if !op.IsValid() {
		return ast.Comparison{}, errors.NewParseErrorf(errors.ErrCodeUnknownOperator, path,
			"unknown comparison operator: %s", opSym)
	}

	path = extend(path, string(opSym))

	left, err := parseOperand(list[1], path)
	if err != nil {
		return ast.Comparison{}, err
	}

	right, err := parseOperand(list[2], path)
	if err != nil {
		return ast.Comparison{}, err
	}

	return ast.Comparison{Operator: op, Left: left, Right: right}, nil
}

func parseOperand(form any, path []string) (ast.Operand, error) {
	switch v := form.(type) {
	case int64:
		return ast.NumberLiteral{Value: float64(v)}, nil
	case float64:
		return ast.NumberLiteral{Value: v}, nil
	case sexpr.List:
		return parseIndicatorRef(v, path)
	default:
		return nil, errors.NewParseErrorf(errors.ErrCodeMalformedExpression, path,
			"comparison operand must be a number or an indicator, got %v", form)
	}
}

// parseIndicatorRef parses a fully-bound indicator call like
// (rsi "QQQ" {:window 10}) or (current-price "SPY").
func parseIndicatorRef(list sexpr.List, path []string) (ast.IndicatorRef, error) {
	if len(list) == 0 {
		return ast.IndicatorRef{}, errors.NewParseError(errors.ErrCodeMalformedExpression, path,
			"empty indicator expression")
	}

	kindSym, ok := list[0].(sexpr.Symbol)
	if !ok {
		return ast.IndicatorRef{}, errors.NewParseError(errors.ErrCodeMalformedExpression, path,
			"indicator kind must be a symbol")
	}

	kind := types.IndicatorType(kindSym)
	if !kind.IsValid() {
		return ast.IndicatorRef{}, errors.NewParseErrorf(errors.ErrCodeUnknownIndicator, path,
			"unknown indicator: %s", kindSym)
	}

	path = extend(path, string(kindSym))

	if len(list) < 2 {
		return ast.IndicatorRef{}, errors.NewParseErrorf(errors.ErrCodeWrongArity, path,
			"%s requires a ticker", kind)
	}

	ticker, ok := tickerFrom(list[1])
	if !ok {
		return ast.IndicatorRef{}, errors.NewParseError(errors.ErrCodeInvalidParameter, path,
			"indicator ticker must be a string")
	}

	window, err := parseWindow(kind, list[2:], path)
	if err != nil {
		return ast.IndicatorRef{}, err
	}

	return ast.IndicatorRef{Kind: kind, Ticker: ticker, Window: window}, nil
}

func tickerFrom(form any) (string, bool) {
	switch v := form.(type) {
	case string:
		return v, true
	case sexpr.Symbol:
		return string(v), true
	default:
		return "", false
	}
}

// parseWindow extracts the :window parameter from the trailing forms of an
// indicator call. Indicators with a lookback require it; current-price takes
// none. Unknown keys are ignored.
func parseWindow(kind types.IndicatorType, rest []any, path []string) (optional.Option[int], error) {
	if !kind.NeedsWindow() {
		return optional.None[int](), nil
	}

	for _, form := range rest {
		switch params := form.(type) {
		case sexpr.Map:
			if raw, ok := params[sexpr.Keyword("window")]; ok {
				return windowValue(raw, path)
			}
		case sexpr.List:
			// Inline keyword-value pairs: [:window 200]
			for i := 0; i+1 < len(params); i++ {
				if kw, ok := params[i].(sexpr.Keyword); ok && kw == "window" {
					return windowValue(params[i+1], path)
				}
			}
		}
	}

	return optional.None[int](), errors.NewParseErrorf(errors.ErrCodeMissingParameter, path,
		"%s requires a :window parameter", kind)
}

func windowValue(raw any, path []string) (optional.Option[int], error) {
	switch v := raw.(type) {
	case int64:
		if v <= 0 {
			return optional.None[int](), errors.NewParseErrorf(errors.ErrCodeInvalidParameter, path,
				":window must be positive, got %d", v)
		}

		return optional.Some(int(v)), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return optional.None[int](), errors.NewParseErrorf(errors.ErrCodeInvalidParameter, path,
				":window must be a positive integer, got %q", v)
		}

		return optional.Some(n), nil
	default:
		return optional.None[int](), errors.NewParseErrorf(errors.ErrCodeInvalidParameter, path,
			":window must be an integer, got %v", raw)
	}
}

func parseWeightEqual(list sexpr.List, path []string) (ast.Node, error) {
	if len(list) < 2 {
		return nil, errors.NewParseError(errors.ErrCodeWrongArity, path,
			"weight-equal requires at least one child")
	}

	children := make([]ast.Node, 0, len(list)-1)

	for _, form := range list[1:] {
		// Flatten the bracketed grouping the source language uses:
		// (weight-equal [(a) (b)]) and (weight-equal (a) (b)) parse alike.
		if inner, ok := form.(sexpr.List); ok && len(inner) > 0 {
			if _, isOp := inner[0].(sexpr.Symbol); !isOp {
				for _, f := range inner {
					child, err := parseNode(f, path)
					if err != nil {
						return nil, err
					}

					children = append(children, child)
				}

				continue
			}
		}

		child, err := parseNode(form, path)
		if err != nil {
			return nil, err
		}

		children = append(children, child)
	}

	return &ast.WeightEqual{Children: children}, nil
}

// parseChildForm parses a child position that may arrive wrapped in a
// bracketed grouping, as weight-specified and group bodies sometimes do.
func parseChildForm(form any, path []string) (ast.Node, error) {
	if list, ok := form.(sexpr.List); ok && len(list) > 0 {
		if _, isOp := list[0].(sexpr.Symbol); !isOp {
			return parseImplicitBlock(list, path)
		}
	}

	return parseNode(form, path)
}

func parseWeightSpecified(list sexpr.List, path []string) (ast.Node, error) {
	rest := list[1:]
	if len(rest) == 0 || len(rest)%2 != 0 {
		return nil, errors.NewParseErrorf(errors.ErrCodeWrongArity, path,
			"weight-specified expects weight/child pairs, got %d elements", len(rest))
	}

	pairs := make([]ast.WeightedChild, 0, len(rest)/2)

	for i := 0; i < len(rest); i += 2 {
		weight, ok := numericWeight(rest[i])
		if !ok {
			return nil, errors.NewParseErrorf(errors.ErrCodeInvalidParameter, path,
				"weight-specified weight must be numeric, got %v", rest[i])
		}

		child, err := parseChildForm(rest[i+1], path)
		if err != nil {
			return nil, err
		}

		pairs = append(pairs, ast.WeightedChild{Weight: weight, Child: child})
	}

	return &ast.WeightSpecified{Pairs: pairs}, nil
}

// numericWeight accepts numeric atoms and numeric strings; strategy exports
// write percentage weights as strings.
func numericWeight(form any) (float64, bool) {
	switch v := form.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}

		return f, true
	default:
		return 0, false
	}
}

func parseAsset(list sexpr.List, path []string) (ast.Node, error) {
	if len(list) < 2 || len(list) > 3 {
		return nil, errors.NewParseErrorf(errors.ErrCodeWrongArity, path,
			"asset expects a ticker and optional display name, got %d elements", len(list)-1)
	}

	ticker, ok := tickerFrom(list[1])
	if !ok {
		return nil, errors.NewParseError(errors.ErrCodeInvalidParameter, path,
			"asset ticker must be a string")
	}

	displayName := ""

	if len(list) == 3 {
		displayName, ok = list[2].(string)
		if !ok {
			return nil, errors.NewParseError(errors.ErrCodeInvalidParameter, path,
				"asset display name must be a string")
		}
	}

	return &ast.Asset{Ticker: ticker, DisplayName: displayName}, nil
}

func parseGroup(list sexpr.List, path []string) (ast.Node, error) {
	if len(list) != 3 {
		return nil, errors.NewParseErrorf(errors.ErrCodeWrongArity, path,
			"group expects a label and a body, got %d elements", len(list)-1)
	}

	label, ok := list[1].(string)
	if !ok {
		return nil, errors.NewParseError(errors.ErrCodeInvalidParameter, path,
			"group label must be a string")
	}

	body, err := parseChildForm(list[2], extend(path, label))
	if err != nil {
		return nil, err
	}

	return &ast.Group{Label: label, Body: body}, nil
}

func parseFilter(list sexpr.List, path []string) (ast.Node, error) {
	if len(list) != 4 {
		return nil, errors.NewParseErrorf(errors.ErrCodeWrongArity, path,
			"filter expects an indicator, a selection, and candidates, got %d elements", len(list)-1)
	}

	template, err := parseIndicatorTemplate(list[1], path)
	if err != nil {
		return nil, err
	}

	selection, err := parseSelection(list[2], path)
	if err != nil {
		return nil, err
	}

	candidateForms, ok := list[3].(sexpr.List)
	if !ok || len(candidateForms) == 0 {
		return nil, errors.NewParseError(errors.ErrCodeMalformedExpression, path,
			"filter candidates must be a non-empty list")
	}

	candidates := make([]ast.Node, 0, len(candidateForms))

	for _, form := range candidateForms {
		candidate, err := parseNode(form, path)
		if err != nil {
			return nil, err
		}

		candidates = append(candidates, candidate)
	}

	return &ast.Filter{Indicator: template, Selection: selection, Candidates: candidates}, nil
}

// parseIndicatorTemplate parses a filter's indicator criteria. The ticker
// slot is intentionally absent; a stray ticker string some exports include
// is tolerated and ignored.
func parseIndicatorTemplate(form any, path []string) (ast.IndicatorTemplate, error) {
	list, ok := form.(sexpr.List)
	if !ok || len(list) == 0 {
		return ast.IndicatorTemplate{}, errors.NewParseError(errors.ErrCodeMalformedExpression, path,
			"filter indicator must be a list")
	}

	kindSym, ok := list[0].(sexpr.Symbol)
	if !ok {
		return ast.IndicatorTemplate{}, errors.NewParseError(errors.ErrCodeMalformedExpression, path,
			"filter indicator kind must be a symbol")
	}

	kind := types.IndicatorType(kindSym)
	if !kind.IsValid() {
		return ast.IndicatorTemplate{}, errors.NewParseErrorf(errors.ErrCodeUnknownIndicator, path,
			"unknown indicator: %s", kindSym)
	}

	rest := list[1:]
	if len(rest) > 0 {
		if _, isTicker := tickerFrom(rest[0]); isTicker {
			rest = rest[1:]
		}
	}

	window, err := parseWindow(kind, rest, extend(path, string(kindSym)))
	if err != nil {
		return ast.IndicatorTemplate{}, err
	}

	return ast.IndicatorTemplate{Kind: kind, Window: window}, nil
}

func parseSelection(form any, path []string) (ast.Selection, error) {
	list, ok := form.(sexpr.List)
	if !ok || len(list) != 2 {
		return ast.Selection{}, errors.NewParseError(errors.ErrCodeMalformedExpression, path,
			"filter selection must be (select-top n) or (select-bottom n)")
	}

	modeSym, ok := list[0].(sexpr.Symbol)
	if !ok {
		return ast.Selection{}, errors.NewParseError(errors.ErrCodeMalformedExpression, path,
			"selection mode must be a symbol")
	}

	mode := types.SelectionMode(modeSym)
	if !mode.IsValid() {
		return ast.Selection{}, errors.NewParseErrorf(errors.ErrCodeUnknownOperator, path,
			"unknown selection mode: %s", modeSym)
	}

	count, ok := selectionCount(list[1])
	if !ok {
		return ast.Selection{}, errors.NewParseErrorf(errors.ErrCodeInvalidParameter, path,
			"selection count must be a positive integer, got %v", list[1])
	}

	return ast.Selection{Mode: mode, Count: count}, nil
}

func selectionCount(form any) (int, bool) {
	switch v := form.(type) {
	case int64:
		if v <= 0 {
			return 0, false
		}

		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return 0, false
		}

		return n, true
	default:
		return 0, false
	}
}
