package cst

import (
	"github.com/dhamidi/smartcst/ebnf/parse"
	"github.com/dhamidi/smartcst/smart"
	"github.com/dhamidi/smartcst/source"
	"golang.org/x/exp/ebnf"
)

// Parse builds the full tree for text and returns it with the diagnostics
// gathered while building it.
func Parse(g ebnf.Grammar, env *smart.Env, text *source.Text) (*Node, []Diagnostic, error) {
	root, diags, err := parse.Parse[*Node, Diagnostics](g, NewConstructors(text), env, text)
	if err != nil {
		return nil, nil, err
	}
	return root, diags.All(), nil
}
