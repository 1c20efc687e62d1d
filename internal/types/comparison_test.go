package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ComparisonTestSuite struct {
	suite.Suite
}

func TestComparisonSuite(t *testing.T) {
	suite.Run(t, new(ComparisonTestSuite))
}

func (suite *ComparisonTestSuite) TestApply() {
	cases := []struct {
		op          ComparisonOperator
		left, right float64
		want        bool
	}{
		{ComparisonGT, 2, 1, true},
		{ComparisonGT, 1, 2, false},
		{ComparisonGT, 1, 1, false},
		{ComparisonLT, 1, 2, true},
		{ComparisonLT, 2, 1, false},
		{ComparisonGTE, 1, 1, true},
		{ComparisonGTE, 0.5, 1, false},
		{ComparisonLTE, 1, 1, true},
		{ComparisonLTE, 2, 1, false},
		{ComparisonEQ, 1, 1, true},
		{ComparisonEQ, 1, 1.0000001, false},
	}

	for _, c := range cases {
		got, err := c.op.Apply(c.left, c.right)
		suite.NoError(err)
		suite.Equal(c.want, got, "%v %s %v", c.left, c.op, c.right)
	}
}

func (suite *ComparisonTestSuite) TestApplyUnknownOperator() {
	_, err := ComparisonOperator("!=").Apply(1, 2)
	suite.Error(err)
}

func (suite *ComparisonTestSuite) TestComparisonIsValid() {
	suite.True(ComparisonGT.IsValid())
	suite.True(ComparisonEQ.IsValid())
	suite.False(ComparisonOperator("!=").IsValid())
}

func (suite *ComparisonTestSuite) TestSelectionModeIsValid() {
	suite.True(SelectionTop.IsValid())
	suite.True(SelectionBottom.IsValid())
	suite.False(SelectionMode("select-middle").IsValid())
}
