// Package sexpr reads Composer symphony source text into nested sequences of
// atoms, lists, and keyword maps. It recognizes exactly the surface syntax the
// strategy language uses: parenthesized and bracketed lists, brace-delimited
// keyword maps, line comments starting with ';', and atoms (numbers, booleans,
// :keywords, quoted strings, symbols). It is not a general-purpose Lisp reader.
package sexpr

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/launchstack-dev/composer-parser/pkg/errors"
)

// Symbol is a bare identifier atom, e.g. `defsymphony` or `weight-equal`.
type Symbol string

// Keyword is a `:name` atom used as a map key or inline parameter marker.
type Keyword string

// List is an ordered sequence of forms read from `(...)` or `[...]`.
type List []any

// Map is a keyword-value map read from `{...}`.
type Map map[Keyword]any

type tokenKind int

const (
	tokenDelimiter tokenKind = iota
	tokenString
	tokenAtom
)

type token struct {
	text string
	kind tokenKind
}

// Parse reads a single top-level form from src. Trailing non-whitespace
// content after the form is an error.
func Parse(src string) (any, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	if len(tokens) == 0 {
		return nil, errors.NewParseError(errors.ErrCodeUnexpectedToken, nil, "empty input")
	}

	r := &reader{tokens: tokens}

	form, err := r.readForm()
	if err != nil {
		return nil, err
	}

	if r.pos < len(r.tokens) {
		return nil, errors.NewParseErrorf(errors.ErrCodeUnexpectedToken, nil,
			"unexpected trailing content starting at %q", r.tokens[r.pos].text)
	}

	return form, nil
}

// tokenize scans src rune by rune. Commas are treated as whitespace, matching
// the source language's tolerance for them inside literal vectors.
func tokenize(src string) ([]token, error) {
	var tokens []token

	runes := []rune(src)
	i := 0

	for i < len(runes) {
		c := runes[i]

		switch {
		case c == ';':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case unicode.IsSpace(c) || c == ',':
			i++
		case strings.ContainsRune("()[]{}", c):
			tokens = append(tokens, token{text: string(c), kind: tokenDelimiter})
			i++
		case c == '"':
			start := i
			i++
			var sb strings.Builder
			for i < len(runes) && runes[i] != '"' {
				if runes[i] == '\\' && i+1 < len(runes) {
					i++
				}
				sb.WriteRune(runes[i])
				i++
			}
			if i >= len(runes) {
				return nil, errors.NewParseErrorf(errors.ErrCodeUnbalancedDelimiter, nil,
					"unterminated string starting at offset %d", start)
			}
			i++ // closing quote
			tokens = append(tokens, token{text: sb.String(), kind: tokenString})
		default:
			start := i
			for i < len(runes) && !unicode.IsSpace(runes[i]) &&
				!strings.ContainsRune("()[]{};,\"", runes[i]) {
				i++
			}
			tokens = append(tokens, token{text: string(runes[start:i]), kind: tokenAtom})
		}
	}

	return tokens, nil
}

type reader struct {
	tokens []token
	pos    int
}

func (r *reader) readForm() (any, error) {
	if r.pos >= len(r.tokens) {
		return nil, errors.NewParseError(errors.ErrCodeUnbalancedDelimiter, nil, "unexpected end of input")
	}

	t := r.tokens[r.pos]

	if t.kind == tokenDelimiter {
		switch t.text {
		case "(", "[":
			return r.readList(closingFor(t.text))
		case "{":
			return r.readMap()
		default:
			return nil, errors.NewParseErrorf(errors.ErrCodeUnexpectedToken, nil,
				"unexpected closing %q", t.text)
		}
	}

	r.pos++

	if t.kind == tokenString {
		return t.text, nil
	}

	return parseAtom(t.text), nil
}

func closingFor(open string) string {
	if open == "(" {
		return ")"
	}

	return "]"
}

func (r *reader) readList(closing string) (any, error) {
	open := r.tokens[r.pos].text
	r.pos++ // consume opening delimiter

	list := List{}

	for {
		if r.pos >= len(r.tokens) {
			return nil, errors.NewParseErrorf(errors.ErrCodeUnbalancedDelimiter, nil,
				"unmatched opening %q", open)
		}

		t := r.tokens[r.pos]
		if t.kind == tokenDelimiter && t.text == closing {
			r.pos++

			return list, nil
		}

		form, err := r.readForm()
		if err != nil {
			return nil, err
		}

		list = append(list, form)
	}
}

func (r *reader) readMap() (any, error) {
	r.pos++ // consume opening brace

	m := Map{}

	for {
		if r.pos >= len(r.tokens) {
			return nil, errors.NewParseError(errors.ErrCodeUnbalancedDelimiter, nil, `unmatched opening "{"`)
		}

		t := r.tokens[r.pos]
		if t.kind == tokenDelimiter && t.text == "}" {
			r.pos++

			return m, nil
		}

		key, err := r.readForm()
		if err != nil {
			return nil, err
		}

		kw, ok := key.(Keyword)
		if !ok {
			return nil, errors.NewParseErrorf(errors.ErrCodeUnexpectedToken, nil,
				"map key must be a keyword, got %v", key)
		}

		value, err := r.readForm()
		if err != nil {
			return nil, err
		}

		m[kw] = value
	}
}

// parseAtom converts a bare token into its typed atom. Numbers become int64
// or float64, true/false become bool, :names become Keyword, everything else
// is a Symbol.
func parseAtom(text string) any {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n
	}

	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f
	}

	switch strings.ToLower(text) {
	case "true":
		return true
	case "false":
		return false
	}

	if strings.HasPrefix(text, ":") {
		return Keyword(text[1:])
	}

	return Symbol(text)
}
