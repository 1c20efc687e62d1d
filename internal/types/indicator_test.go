package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type IndicatorTestSuite struct {
	suite.Suite
}

func TestIndicatorSuite(t *testing.T) {
	suite.Run(t, new(IndicatorTestSuite))
}

func (suite *IndicatorTestSuite) TestIndicatorTypeConstants() {
	suite.Equal(IndicatorType("rsi"), IndicatorTypeRSI)
	suite.Equal(IndicatorType("moving-average-price"), IndicatorTypeMovingAveragePrice)
	suite.Equal(IndicatorType("current-price"), IndicatorTypeCurrentPrice)
}

func (suite *IndicatorTestSuite) TestNeedsWindow() {
	suite.True(IndicatorTypeRSI.NeedsWindow())
	suite.True(IndicatorTypeMovingAveragePrice.NeedsWindow())
	suite.False(IndicatorTypeCurrentPrice.NeedsWindow())
}

func (suite *IndicatorTestSuite) TestDefaultWindow() {
	suite.Equal(10, IndicatorTypeRSI.DefaultWindow())
	suite.Equal(20, IndicatorTypeMovingAveragePrice.DefaultWindow())
	suite.Equal(0, IndicatorTypeCurrentPrice.DefaultWindow())
}

func (suite *IndicatorTestSuite) TestIsValid() {
	suite.True(IndicatorTypeRSI.IsValid())
	suite.True(IndicatorTypeMovingAveragePrice.IsValid())
	suite.True(IndicatorTypeCurrentPrice.IsValid())
	suite.False(IndicatorType("macd").IsValid())
	suite.False(IndicatorType("").IsValid())
}

func (suite *IndicatorTestSuite) TestIndicatorRequestAsMapKey() {
	a := IndicatorRequest{Ticker: "SPY", Kind: IndicatorTypeRSI, Window: 10}
	b := IndicatorRequest{Ticker: "SPY", Kind: IndicatorTypeRSI, Window: 10}
	c := IndicatorRequest{Ticker: "SPY", Kind: IndicatorTypeRSI, Window: 14}

	set := map[IndicatorRequest]bool{a: true}
	set[b] = true
	set[c] = true

	suite.Len(set, 2)
	suite.Equal(a, b)
	suite.NotEqual(a, c)
}
