package types

// IndicatorType identifies a derived numeric signal computed from price history.
type IndicatorType string

const (
	IndicatorTypeRSI                IndicatorType = "rsi"
	IndicatorTypeMovingAveragePrice IndicatorType = "moving-average-price"
	IndicatorTypeCurrentPrice       IndicatorType = "current-price"
)

// NeedsWindow reports whether the indicator is parameterized by a lookback window.
func (t IndicatorType) NeedsWindow() bool {
	return t != IndicatorTypeCurrentPrice
}

// DefaultWindow returns the lookback window used when a strategy omits the
// :window parameter. The defaults match Composer's.
func (t IndicatorType) DefaultWindow() int {
	switch t {
	case IndicatorTypeRSI:
		return 10
	case IndicatorTypeMovingAveragePrice:
		return 20
	default:
		return 0
	}
}

// IsValid reports whether t is a recognized indicator type.
func (t IndicatorType) IsValid() bool {
	switch t {
	case IndicatorTypeRSI, IndicatorTypeMovingAveragePrice, IndicatorTypeCurrentPrice:
		return true
	default:
		return false
	}
}

// IndicatorRequest is a fully-resolved indicator requirement: which signal,
// for which instrument, with what window. Window is zero for indicators
// without a lookback (current-price). Equality is structural, so requests
// deduplicate naturally as map keys.
type IndicatorRequest struct {
	Ticker string
	Kind   IndicatorType
	Window int
}
