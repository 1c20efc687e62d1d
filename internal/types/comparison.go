package types

import "fmt"

// ComparisonOperator is one of the fixed comparison symbols recognized in
// strategy conditions.
type ComparisonOperator string

const (
	ComparisonGT  ComparisonOperator = ">"
	ComparisonLT  ComparisonOperator = "<"
	ComparisonGTE ComparisonOperator = ">="
	ComparisonLTE ComparisonOperator = "<="
	ComparisonEQ  ComparisonOperator = "="
)

// IsValid reports whether op is a recognized comparison operator.
func (op ComparisonOperator) IsValid() bool {
	switch op {
	case ComparisonGT, ComparisonLT, ComparisonGTE, ComparisonLTE, ComparisonEQ:
		return true
	default:
		return false
	}
}

// Apply evaluates `left op right`.
func (op ComparisonOperator) Apply(left, right float64) (bool, error) {
	switch op {
	case ComparisonGT:
		return left > right, nil
	case ComparisonLT:
		return left < right, nil
	case ComparisonGTE:
		return left >= right, nil
	case ComparisonLTE:
		return left <= right, nil
	case ComparisonEQ:
		return left == right, nil
	default:
		return false, fmt.Errorf("unknown comparison operator: %q", op)
	}
}

// SelectionMode determines which end of a ranked candidate list a filter keeps.
type SelectionMode string

const (
	SelectionTop    SelectionMode = "select-top"
	SelectionBottom SelectionMode = "select-bottom"
)

// IsValid reports whether m is a recognized selection mode.
func (m SelectionMode) IsValid() bool {
	return m == SelectionTop || m == SelectionBottom
}
