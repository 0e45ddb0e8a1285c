package parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dhamidi/smartcst/ebnf/lex"
	"github.com/dhamidi/smartcst/source"
)

var (
	// ErrUnknownProduction is returned when the start production or a
	// referenced production does not exist.
	ErrUnknownProduction = errors.New("unknown production")
	// ErrTooDeep is returned when productions nest deeper than Env.MaxDepth.
	ErrTooDeep = errors.New("maximum nesting depth exceeded")
)

// SyntaxError describes the furthest point a parse reached.
type SyntaxError struct {
	Pos      source.Position
	Expected []string
	Got      lex.Token
}

func (e *SyntaxError) Error() string {
	got := fmt.Sprintf("%q", e.Got.Literal)
	if e.Got.Kind == lex.KindEOF {
		got = "end of input"
	}
	if len(e.Expected) == 0 {
		return fmt.Sprintf("parse error at %s: unexpected %s", e.Pos, got)
	}
	return fmt.Sprintf("parse error at %s: expected %s, got %s", e.Pos, strings.Join(e.Expected, " or "), got)
}
