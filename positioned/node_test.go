package positioned

import (
	"strings"
	"testing"

	"github.com/dhamidi/smartcst/ebnf/lex"
	"github.com/dhamidi/smartcst/smart"
	"github.com/dhamidi/smartcst/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const calcGrammar = `
	file = { stmt } .
	stmt = "let" Identifier "=" expr ";" | expr ";" .
	expr = term { ( "+" | "-" ) term } .
	term = factor { ( "*" | "/" ) factor } .
	factor = Identifier | Number | "(" expr ")" | "-" factor .
	Identifier = ( "a" … "z" | "_" ) { "a" … "z" | "_" | "0" … "9" } .
	Number = "0" … "9" { "0" … "9" } .
	WhiteSpace = ( " " | "\t" | "\n" ) { " " | "\t" | "\n" } .
`

func parseCalc(t *testing.T, input string) *Node {
	t.Helper()
	g, err := lex.ParseGrammar("calc.ebnf", strings.NewReader(calcGrammar))
	require.NoError(t, err)
	root, err := Parse(g, smart.DefaultEnv().With("file"), source.FromString("in", input))
	require.NoError(t, err)
	return root
}

func TestWidthsCoverSource(t *testing.T) {
	inputs := []string{
		"",
		"x;",
		"  let a = 1;\n",
		"let a = (b + c) * -d;\n\n  a / 2;   ",
	}

	for _, input := range inputs {
		root := parseCalc(t, input)
		assert.Equal(t, len(input), root.Width, "input %q", input)
		assert.Equal(t, "source", root.Kind)
	}
}

func TestFind(t *testing.T) {
	root := parseCalc(t, "let a = 1;\n")

	path := root.Find(8)
	var kinds []string
	for _, step := range path {
		kinds = append(kinds, step.Node.Kind)
	}
	assert.Equal(t, []string{"source", "file", "list", "stmt", "expr", "term", "factor", "Number"}, kinds)

	leaf := path[len(path)-1]
	assert.True(t, leaf.Node.Leaf)
	assert.Equal(t, 7, leaf.Offset)
	assert.Equal(t, 2, leaf.Node.Width)
}

func TestFindOutside(t *testing.T) {
	root := parseCalc(t, "x;")
	assert.Empty(t, root.Find(2))
	assert.Empty(t, root.Find(-1))
}

func TestMissingHasNoWidth(t *testing.T) {
	g, err := lex.ParseGrammar("opt.ebnf", strings.NewReader(`s = "x" [ "y" ] .`))
	require.NoError(t, err)

	root, err := Parse(g, smart.DefaultEnv().With("s"), source.FromString("", "x"))
	require.NoError(t, err)

	s := root.Children[0]
	require.Len(t, s.Children, 2)
	assert.Equal(t, "missing", s.Children[1].Kind)
	assert.Equal(t, 0, s.Children[1].Width)
	assert.Equal(t, 1, s.Width)
}

func TestErrorWidth(t *testing.T) {
	g, err := lex.ParseGrammar("calc.ebnf", strings.NewReader(calcGrammar))
	require.NoError(t, err)
	env := smart.DefaultEnv().With("file")
	env.Recover = true

	input := "x; $$ y"
	root, err := Parse(g, env, source.FromString("", input))
	require.NoError(t, err)
	assert.Equal(t, len(input), root.Width)
	assert.Equal(t, lex.KindError, root.Children[1].Kind)
	assert.Equal(t, 5, root.Children[1].Width)
}

func TestCount(t *testing.T) {
	root := parseCalc(t, "x;")
	// source, file, list, stmt, expr, term, factor, x, list, list, ;, eof
	assert.Equal(t, 12, root.Count())
}
