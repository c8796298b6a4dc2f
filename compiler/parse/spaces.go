package parse

import (
	"bytes"
	"context"

	"tlog.app/go/errors"
)

type (
	Spaces uint64

	Spacer struct {
		Spaces Spaces
		Of     Parser
	}
)

var (
	Space    = NewSpaces(' ')
	SpaceTab = NewSpaces(' ', '\t')
	SpaceAll = NewSpaces(' ', '\t', '\r', '\n', '\v', '\f')
)

func NewSpaces(skip ...byte) (ss Spaces) {
	for _, q := range skip {
		if q >= 64 {
			panic("too high char code")
		}

		ss |= 1 << q
	}

	return
}

func (s Spaces) Skip(b []byte, st int) (i int) {
	i = st

	for i < len(b) && b[i] < 64 && s&(1<<b[i]) != 0 {
		i++
	}

	return
}

// SkipComments skips spaces along with // and /* */ comments.
// An unterminated block comment is left in place.
func (s Spaces) SkipComments(b []byte, st int) (i int) {
	i = s.Skip(b, st)

	for i+1 < len(b) && b[i] == '/' {
		switch b[i+1] {
		case '/':
			end := bytes.IndexByte(b[i:], '\n')
			if end < 0 {
				return len(b)
			}

			i += end + 1
		case '*':
			end := bytes.Index(b[i+2:], []byte("*/"))
			if end < 0 {
				return i
			}

			i += 2 + end + 2
		default:
			return i
		}

		i = s.Skip(b, i)
	}

	return i
}

func Spaced(p Parser, ss Spaces) Spacer {
	return Spacer{
		Spaces: ss,
		Of:     p,
	}
}

func sp(p Parser) Spacer { return Spaced(p, SpaceAll) }

func (p Spacer) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	vst := p.Spaces.SkipComments(b, st)

	x, i, err = p.Of.Parse(ctx, b, vst)
	if err != nil {
		if i == vst {
			i = st
		}

		err = errors.Wrap(err, "%v", name(p.Of))
	}

	return
}

func (p Spacer) String() string { return name(p.Of) }
