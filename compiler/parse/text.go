package parse

import (
	"bytes"
	"context"
	"strconv"

	"tlog.app/go/errors"
)

type (
	// Const matches literal text.
	Const string

	// Token is Const not followed by any of Not.
	Token struct {
		Text string
		Not  string
	}

	// Word is a keyword: Const not followed by an identifier char.
	Word string

	Ident struct{}
)

var keywords = map[string]struct{}{
	"const":    {},
	"int":      {},
	"void":     {},
	"return":   {},
	"if":       {},
	"else":     {},
	"while":    {},
	"break":    {},
	"continue": {},
}

func (p Const) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	if bytes.HasPrefix(b[st:], []byte(p)) {
		return p, st + len(p), nil
	}

	return nil, st, errors.New("%q expected", string(p))
}

func (p Const) String() string { return strconv.Quote(string(p)) }

func (p Token) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	if !bytes.HasPrefix(b[st:], []byte(p.Text)) {
		return nil, st, errors.New("%q expected", p.Text)
	}

	i = st + len(p.Text)

	if i < len(b) && bytes.IndexByte([]byte(p.Not), b[i]) >= 0 {
		return nil, st, errors.New("%q expected", p.Text)
	}

	return p.Text, i, nil
}

func (p Token) String() string { return strconv.Quote(p.Text) }

func (p Word) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	if !bytes.HasPrefix(b[st:], []byte(p)) {
		return nil, st, errors.New("%v expected", string(p))
	}

	i = st + len(p)

	if i < len(b) && isIdentChar(b[i]) {
		return nil, st, errors.New("%v expected", string(p))
	}

	return p, i, nil
}

func (p Word) String() string { return string(p) }

// Ident returns the identifier as a string. Keywords are rejected.
func (p Ident) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	if st == len(b) || !isIdentStart(b[st]) {
		return nil, st, errors.New("identifier expected")
	}

	i = st + 1

	for i < len(b) && isIdentChar(b[i]) {
		i++
	}

	s := string(b[st:i])

	if _, ok := keywords[s]; ok {
		return nil, st, errors.New("identifier expected, got keyword %v", s)
	}

	return s, i, nil
}

func (Ident) String() string { return "identifier" }

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}
