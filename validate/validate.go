// Package validate is the backend that builds nothing: it only answers
// whether the input conforms to the grammar.
package validate

import (
	"github.com/dhamidi/smartcst/ebnf/lex"
	"github.com/dhamidi/smartcst/ebnf/parse"
	"github.com/dhamidi/smartcst/smart"
	"github.com/dhamidi/smartcst/source"
	"golang.org/x/exp/ebnf"
)

// Mark is the whole result of a construction.
type Mark uint8

const (
	Ok Mark = iota
	Missing
	Error
)

func (m Mark) String() string {
	switch m {
	case Ok:
		return "ok"
	case Missing:
		return "missing"
	case Error:
		return "error"
	}
	return "unknown"
}

// Constructors reduces each construction to a Mark.
type Constructors struct{}

func (Constructors) Token(tok lex.Token) Mark {
	if tok.Kind == lex.KindError {
		return Error
	}
	return Ok
}

func (Constructors) Missing(int) Mark { return Missing }

func (Constructors) List([]Mark) Mark { return Ok }

func (Constructors) Production(string, []Mark) Mark { return Ok }

func (Constructors) Error(string, []lex.Token) Mark { return Error }

// Flag is a running error flag.
type Flag struct {
	Failed        bool
	Missing       int
	Constructions int
}

var _ smart.State[Flag, Mark] = Flag{}

func (Flag) Initial(*smart.Env, *source.Text) Flag { return Flag{} }

func (f Flag) Next(children []Mark) Flag {
	f.Constructions++
	for _, m := range children {
		switch m {
		case Error:
			f.Failed = true
		case Missing:
			f.Missing++
		}
	}
	return f
}

// Source validates text against g. A recovered parse reports Failed; an
// unrecovered one returns the syntax error.
func Source(g ebnf.Grammar, env *smart.Env, text *source.Text) (Flag, error) {
	_, flag, err := parse.Parse[Mark, Flag](g, Constructors{}, env, text)
	return flag, err
}
