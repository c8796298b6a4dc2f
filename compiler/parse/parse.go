package parse

import (
	"bytes"
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sixday-C/pku-minic/compiler/ast"
)

type (
	State struct {
		b []byte // all files concatenated

		Grammar Parser

		// MaxDepth bounds nesting of parenthesis and unary operators.
		MaxDepth int

		depth int
		files []file
	}

	file struct {
		base int
		size int
		name string
	}

	Parser interface {
		Parse(ctx context.Context, b []byte, st int) (x any, i int, err error)
	}

	PartialReadError struct {
		Pos  string
		Near string
	}

	stateCtxKey struct{}
)

const (
	DefaultMaxDepth = 1024

	nearLen = 20
)

var ErrTooDeep = errors.New("nesting too deep")

func Parse(ctx context.Context, text []byte) (*ast.CompUnit, error) {
	s := New()

	s.AddFile("", text)

	return s.Parse(ctx)
}

func New() *State {
	return &State{
		Grammar:  CompUnit{},
		MaxDepth: DefaultMaxDepth,
	}
}

func (s *State) Parse(ctx context.Context) (cu *ast.CompUnit, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "parse", "size", len(s.b), "files", len(s.files))
	defer tr.Finish("err", &err)

	ctx = context.WithValue(ctx, stateCtxKey{}, s)
	s.depth = 0

	x, i, err := s.Grammar.Parse(ctx, s.b, 0)
	if err != nil {
		return nil, errors.Wrap(err, "at %v", s.Position(i))
	}

	i = SpaceAll.SkipComments(s.b, i)

	if i != len(s.b) {
		near := s.Text(i, i+nearLen)
		if j := bytes.IndexByte(near, '\n'); j >= 0 {
			near = near[:j]
		}

		return nil, PartialReadError{Pos: s.Position(i), Near: string(near)}
	}

	cu, ok := x.(*ast.CompUnit)
	if !ok {
		return nil, errors.New("grammar returned %T, compilation unit expected", x)
	}

	return cu, nil
}

func (s *State) AddFile(name string, text []byte) {
	f := file{
		name: name,
		base: len(s.b),
		size: len(text),
	}

	s.b = append(s.b, text...)

	s.files = append(s.files, f)
}

// Text returns source bytes in [pos, end) clipped to the input.
func (s *State) Text(pos, end int) []byte {
	end = min(end, len(s.b))
	pos = min(pos, end)

	return s.b[pos:end]
}

// Position formats offset as file:line:col.
func (s *State) Position(pos int) string {
	for _, f := range s.files {
		if pos < f.base || pos > f.base+f.size {
			continue
		}

		text := s.b[f.base:pos]

		line := bytes.Count(text, []byte{'\n'}) + 1
		col := pos - f.base - bytes.LastIndexByte(text, '\n')

		name := f.name
		if name == "" {
			name = "<input>"
		}

		return fmt.Sprintf("%s:%d:%d", name, line, col)
	}

	return fmt.Sprintf("offset %d", pos)
}

func (s *State) enter() error {
	if s == nil {
		return nil
	}

	if s.MaxDepth > 0 && s.depth >= s.MaxDepth {
		return errors.Wrap(ErrTooDeep, "limit %d", s.MaxDepth)
	}

	s.depth++

	return nil
}

func (s *State) exit() {
	if s == nil {
		return
	}

	s.depth--
}

func StateFromContext(ctx context.Context) *State {
	s, _ := ctx.Value(stateCtxKey{}).(*State)
	return s
}

func (e PartialReadError) Error() string {
	return fmt.Sprintf("unexpected text at %s: %q", e.Pos, e.Near)
}
