package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeUnknownOperator, "unknown operator")
	suite.NotNil(err)
	suite.Equal(ErrCodeUnknownOperator, err.Code)
	suite.Equal("unknown operator", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeUnknownOperator, "unknown operator: %s", "weight-cubed")
	suite.NotNil(err)
	suite.Equal(ErrCodeUnknownOperator, err.Code)
	suite.Equal("unknown operator: weight-cubed", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeMarketDataReadFailed, "failed to read series", cause)
	suite.NotNil(err)
	suite.Equal(ErrCodeMarketDataReadFailed, err.Code)
	suite.Equal("failed to read series", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("underlying error")
	err := Wrapf(ErrCodePriceSeriesMissing, cause, "no series for ticker: %s", "SPY")
	suite.NotNil(err)
	suite.Equal(ErrCodePriceSeriesMissing, err.Code)
	suite.Equal("no series for ticker: SPY", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestErrorString() {
	err := New(ErrCodeIndicatorUnavailable, "no value")
	suite.Equal("[200] no value", err.Error())
}

func (suite *ErrorTestSuite) TestErrorStringWithCause() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeIndicatorUnavailable, "no value", cause)
	suite.Equal("[200] no value: underlying error", err.Error())
}

func (suite *ErrorTestSuite) TestUnwrap() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeMarketDataFetchFailed, "download failed", cause)
	suite.Equal(cause, err.Unwrap())
}

func (suite *ErrorTestSuite) TestGetCode() {
	err := New(ErrCodeNoEligibleCandidates, "all candidates excluded")
	suite.Equal(ErrCodeNoEligibleCandidates, GetCode(err))

	wrapped := fmt.Errorf("outer: %w", err)
	suite.Equal(ErrCodeNoEligibleCandidates, GetCode(wrapped))

	suite.Equal(ErrCodeUnknown, GetCode(errors.New("plain")))
}

func (suite *ErrorTestSuite) TestHasCode() {
	err := New(ErrCodeFilterCandidateAmbiguous, "candidate yields two tickers")
	suite.True(HasCode(err, ErrCodeFilterCandidateAmbiguous))
	suite.False(HasCode(err, ErrCodeNoEligibleCandidates))
}

func (suite *ErrorTestSuite) TestParseError() {
	err := NewParseError(ErrCodeWrongArity, []string{"defsymphony", "if"}, "if expects 3 arguments")
	suite.Equal("[102] at defsymphony/if: if expects 3 arguments", err.Error())
	suite.True(IsParseError(err))
	suite.True(IsParseError(fmt.Errorf("load failed: %w", err)))
	suite.False(IsParseError(errors.New("plain")))
}

func (suite *ErrorTestSuite) TestParseErrorEmptyPath() {
	err := NewParseErrorf(ErrCodeUnexpectedToken, nil, "unexpected closing %q", ")")
	suite.Equal(`[105] unexpected closing ")"`, err.Error())
}

func (suite *ErrorTestSuite) TestInsufficientDataError() {
	err := NewInsufficientDataError(200, 37, "SPY", "need 200 observations, have 37")
	suite.Equal("need 200 observations, have 37", err.Error())
	suite.True(IsInsufficientDataError(err))
	suite.True(IsInsufficientDataError(fmt.Errorf("wrapped: %w", err)))
	suite.False(IsInsufficientDataError(errors.New("plain")))
}
