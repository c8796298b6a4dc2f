package parse

import (
	"context"
	"strconv"

	"tlog.app/go/errors"

	"github.com/sixday-C/pku-minic/compiler/ast"
)

type (
	// Int is a decimal, octal (leading 0) or hex (0x) literal.
	// Values up to 0xffffffff are accepted and wrap into int32.
	Int struct{}
)

func (p Int) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	i = st

	digit := isDec

	if i+1 < len(b) && b[i] == '0' && (b[i+1] == 'x' || b[i+1] == 'X') {
		i += 2
		digit = isHex
	}

	dst := i

	for i < len(b) && digit(b[i]) {
		i++
	}

	if i == dst {
		return nil, st, errors.New("integer expected")
	}

	if i < len(b) && isIdentChar(b[i]) {
		return nil, i, errors.New("bad integer suffix %q", b[i])
	}

	v, err := strconv.ParseUint(string(b[st:i]), 0, 64)
	if err != nil || v > 0xffffffff {
		return nil, i, errors.New("bad integer literal: %s", b[st:i])
	}

	return &ast.Number{
		Base: ast.Base{
			Pos: st,
			End: i,
		},
		Value: int32(uint32(v)),
	}, i, nil
}

func (Int) String() string { return "integer" }

func isDec(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDec(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
