package sexpr

import (
	"testing"

	"github.com/launchstack-dev/composer-parser/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SexprTestSuite struct {
	suite.Suite
}

func TestSexprSuite(t *testing.T) {
	suite.Run(t, new(SexprTestSuite))
}

func (suite *SexprTestSuite) TestParseAtoms() {
	form, err := Parse(`(a :window 200 1.5 true false "hello world")`)
	suite.NoError(err)

	list, ok := form.(List)
	suite.True(ok)
	suite.Equal(List{
		Symbol("a"),
		Keyword("window"),
		int64(200),
		1.5,
		true,
		false,
		"hello world",
	}, list)
}

func (suite *SexprTestSuite) TestParseNestedLists() {
	form, err := Parse(`(if (> (current-price "SPY") 400) [(asset "TQQQ" "ProShares")] [(asset "BIL" "T-Bills")])`)
	suite.NoError(err)

	list, ok := form.(List)
	suite.True(ok)
	suite.Len(list, 4)
	suite.Equal(Symbol("if"), list[0])

	cond, ok := list[1].(List)
	suite.True(ok)
	suite.Equal(Symbol(">"), cond[0])

	then, ok := list[2].(List)
	suite.True(ok)
	suite.Len(then, 1)
}

func (suite *SexprTestSuite) TestParseKeywordMap() {
	form, err := Parse(`(rsi "QQQ" {:window 10})`)
	suite.NoError(err)

	list := form.(List)
	m, ok := list[2].(Map)
	suite.True(ok)
	suite.Equal(int64(10), m[Keyword("window")])
}

func (suite *SexprTestSuite) TestParseComments() {
	src := `
; a full-line comment
(weight-equal ; trailing comment
  [(asset "SPY" "SPDR S&P 500")])`
	form, err := Parse(src)
	suite.NoError(err)

	list := form.(List)
	suite.Equal(Symbol("weight-equal"), list[0])
}

func (suite *SexprTestSuite) TestParseCommasAsWhitespace() {
	form, err := Parse(`[1, 2, 3]`)
	suite.NoError(err)
	suite.Equal(List{int64(1), int64(2), int64(3)}, form)
}

func (suite *SexprTestSuite) TestParseEscapedString() {
	form, err := Parse(`(asset "SPY" "SPDR \"S&P\" Trust")`)
	suite.NoError(err)

	list := form.(List)
	suite.Equal(`SPDR "S&P" Trust`, list[2])
}

func (suite *SexprTestSuite) TestParseDeterministic() {
	src := `(defsymphony "Test" {:rebalance-frequency :daily} (weight-equal [(asset "SPY" "S&P 500")]))`

	first, err := Parse(src)
	suite.NoError(err)
	second, err := Parse(src)
	suite.NoError(err)
	suite.Equal(first, second)
}

func (suite *SexprTestSuite) TestParseErrors() {
	cases := []struct {
		name string
		src  string
		code errors.ErrorCode
	}{
		{"empty", "", errors.ErrCodeUnexpectedToken},
		{"only comment", "; nothing here", errors.ErrCodeUnexpectedToken},
		{"unmatched open paren", "(a (b)", errors.ErrCodeUnbalancedDelimiter},
		{"unmatched close paren", ")", errors.ErrCodeUnexpectedToken},
		{"unmatched open brace", "{:window 10", errors.ErrCodeUnbalancedDelimiter},
		{"unterminated string", `(asset "SPY`, errors.ErrCodeUnbalancedDelimiter},
		{"trailing content", "(a) (b)", errors.ErrCodeUnexpectedToken},
		{"non-keyword map key", `{10 20}`, errors.ErrCodeUnexpectedToken},
	}

	for _, c := range cases {
		suite.Run(c.name, func() {
			_, err := Parse(c.src)
			suite.Error(err)
			suite.True(errors.IsParseError(err), "expected parse error for %q", c.src)

			var parseErr *errors.ParseError
			suite.True(errors.As(err, &parseErr))
			suite.Equal(c.code, parseErr.Code)
		})
	}
}

func (suite *SexprTestSuite) TestParseDeeplyNested() {
	src := ""
	for i := 0; i < 5000; i++ {
		src += "(group \"g\" "
	}
	src += `(asset "SPY" "S&P 500")`
	for i := 0; i < 5000; i++ {
		src += ")"
	}

	form, err := Parse(src)
	suite.NoError(err)
	suite.NotNil(form)
}
