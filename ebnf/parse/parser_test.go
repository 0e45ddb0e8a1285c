package parse

import (
	"errors"
	"strings"
	"testing"

	"github.com/dhamidi/smartcst/ebnf/lex"
	"github.com/dhamidi/smartcst/smart"
	"github.com/dhamidi/smartcst/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/ebnf"
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

// sexpr renders every construction as an s-expression.
type sexpr struct{}

func (sexpr) Token(tok lex.Token) string {
	if tok.Kind == lex.KindEOF {
		return "<eof>"
	}
	return tok.Literal
}
func (sexpr) Missing(offset int) string { return "_" }
func (sexpr) List(items []string) string { return "[" + strings.Join(items, " ") + "]" }
func (sexpr) Error(message string, skipped []lex.Token) string {
	var lits []string
	for _, t := range skipped {
		lits = append(lits, t.Literal)
	}
	return "!{" + strings.Join(lits, " ") + "}"
}
func (sexpr) Production(kind string, children []string) string {
	return "(" + kind + " " + strings.Join(children, " ") + ")"
}

func grammar(t *testing.T, src string) ebnf.Grammar {
	t.Helper()
	g, err := lex.ParseGrammar("test.ebnf", strings.NewReader(src))
	require.NoError(t, err)
	return g
}

func env(start string) *smart.Env {
	return smart.DefaultEnv().With(start)
}

func parseString(t *testing.T, g ebnf.Grammar, e *smart.Env, input string) (string, smart.ChildCount[string], error) {
	t.Helper()
	return Parse[string, smart.ChildCount[string]](g, sexpr{}, e, source.FromString("in", input))
}

func TestParseSimpleStatement(t *testing.T) {
	g := grammar(t, calcGrammar)

	got, count, err := parseString(t, g, env("file"), "x;")
	require.NoError(t, err)

	assert.Equal(t, "(source (file [(stmt (expr (term (factor x) []) []) ;)]) <eof>)", got)
	assert.Equal(t, 12, count.Constructions)
	assert.Equal(t, 11, count.Children)
}

func TestParsePrecedence(t *testing.T) {
	g := grammar(t, calcGrammar)

	got, _, err := parseString(t, g, env("expr"), "a + b * 2")
	require.NoError(t, err)

	want := "(source (expr (term (factor a) []) [+ (term (factor b) [* (factor 2)])]) <eof>)"
	assert.Equal(t, want, got)
}

func TestParseLongestAlternative(t *testing.T) {
	g := grammar(t, `
		s = a | b .
		a = "x" .
		b = "x" "y" .
	`)

	got, _, err := parseString(t, g, env("s"), "xy")
	require.NoError(t, err)
	assert.Equal(t, "(source (s (b x y)) <eof>)", got)

	got, _, err = parseString(t, g, env("s"), "x")
	require.NoError(t, err)
	assert.Equal(t, "(source (s (a x)) <eof>)", got)
}

func TestParseKeywordAlternative(t *testing.T) {
	g := grammar(t, calcGrammar)

	got, _, err := parseString(t, g, env("stmt"), "let x = 1;")
	require.NoError(t, err)
	assert.Equal(t, "(source (stmt let x = (expr (term (factor 1) []) []) ;) <eof>)", got)
}

func TestParseOptionMissing(t *testing.T) {
	g := grammar(t, `s = "x" [ "y" ] .`)

	got, count, err := parseString(t, g, env("s"), "x")
	require.NoError(t, err)
	assert.Equal(t, "(source (s x _) <eof>)", got)
	// x, missing, s, eof, source
	assert.Equal(t, 5, count.Constructions)

	got, _, err = parseString(t, g, env("s"), "xy")
	require.NoError(t, err)
	assert.Equal(t, "(source (s x y) <eof>)", got)
}

func TestParseEmptyProduction(t *testing.T) {
	g := grammar(t, `
		file = { item } .
		item = "x" .
	`)

	got, count, err := parseString(t, g, env("file"), "")
	require.NoError(t, err)
	assert.Equal(t, "(source (file []) <eof>)", got)
	// empty list, file, eof, source
	assert.Equal(t, smart.ChildCount[string]{Constructions: 4, Children: 3}, count)
}

func TestParseSyntaxError(t *testing.T) {
	g := grammar(t, calcGrammar)

	_, _, err := parseString(t, g, env("file"), "x + ;")
	require.Error(t, err)

	var serr *SyntaxError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, []string{`"("`, `"-"`, "Identifier", "Number"}, serr.Expected)
	assert.Equal(t, ";", serr.Got.Literal)
	assert.Equal(t, 1, serr.Pos.Line)
	assert.Equal(t, 5, serr.Pos.Column)
	assert.Equal(t, `parse error at in:1:5: expected "(" or "-" or Identifier or Number, got ";"`, serr.Error())
}

func TestParseUnexpectedEnd(t *testing.T) {
	g := grammar(t, calcGrammar)

	_, _, err := parseString(t, g, env("stmt"), "x +")
	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, lex.KindEOF, serr.Got.Kind)
	assert.Contains(t, serr.Error(), "got end of input")
}

func TestParseRecover(t *testing.T) {
	g := grammar(t, calcGrammar)
	e := env("file")
	e.Recover = true

	p, err := New[string, smart.ChildCount[string]](g, sexpr{}, e, source.FromString("in", "x; $ y"))
	require.NoError(t, err)

	got, err := p.Parse()
	require.NoError(t, err)
	assert.Equal(t, "(source (file [(stmt (expr (term (factor x) []) []) ;)]) !{$ y} <eof>)", got)

	require.NotNil(t, p.Recovered())
	assert.Equal(t, "$", p.Recovered().Got.Literal)
}

func TestParseRecoverFromStart(t *testing.T) {
	g := grammar(t, `s = "x" .`)
	e := env("s")
	e.Recover = true

	got, _, err := parseString(t, g, e, "y")
	require.NoError(t, err)
	assert.Equal(t, "(source !{y} <eof>)", got)
}

func TestParseUnknownStart(t *testing.T) {
	g := grammar(t, calcGrammar)

	_, err := New[string, smart.NoState[string]](g, sexpr{}, env("nope"), source.FromString("", ""))
	assert.ErrorIs(t, err, ErrUnknownProduction)
}

func TestParseUnknownReference(t *testing.T) {
	g := grammar(t, `s = "x" t .`)

	_, _, err := parseString(t, g, env("s"), "x")
	assert.ErrorIs(t, err, ErrUnknownProduction)
}

func TestParseInvalidEnv(t *testing.T) {
	g := grammar(t, calcGrammar)

	_, err := New[string, smart.NoState[string]](g, sexpr{}, &smart.Env{Start: "file"}, source.FromString("", ""))
	assert.ErrorIs(t, err, smart.ErrEnvValidation)
}

func TestParseTooDeep(t *testing.T) {
	g := grammar(t, calcGrammar)
	e := env("expr")
	e.MaxDepth = 8

	_, _, err := parseString(t, g, e, "((((((x))))))")
	assert.ErrorIs(t, err, ErrTooDeep)
}

func TestParseLeftRecursionTerminates(t *testing.T) {
	g := grammar(t, `
		list = list "," Identifier | Identifier .
		Identifier = "a" … "z" .
	`)

	got, _, err := parseString(t, g, env("list"), "a")
	require.NoError(t, err)
	assert.Equal(t, "(source (list a) <eof>)", got)

	_, _, err = parseString(t, g, env("list"), "a,b")
	var serr *SyntaxError
	assert.ErrorAs(t, err, &serr)
}

func TestParseIsRepeatable(t *testing.T) {
	g := grammar(t, calcGrammar)

	p, err := New[string, smart.ChildCount[string]](g, sexpr{}, env("file"), source.FromString("in", "let a = (b + c) * -d; a;"))
	require.NoError(t, err)

	first, err := p.Parse()
	require.NoError(t, err)
	firstState := p.State()
	firstStats := p.Stats()

	second, err := p.Parse()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstState, p.State())
	assert.Equal(t, firstStats, p.Stats())
	assert.Equal(t, firstState.Constructions, firstStats.Constructions)
	assert.Greater(t, firstStats.Rewinds, 0)
}

func TestParseNoStateMatchesCountedTree(t *testing.T) {
	g := grammar(t, calcGrammar)
	input := "let a = 1 + 2 * (3 - b); c / d;"

	withCount, _, err := parseString(t, g, env("file"), input)
	require.NoError(t, err)

	withoutState, s, err := Parse[string, smart.NoState[string]](g, sexpr{}, env("file"), source.FromString("in", input))
	require.NoError(t, err)

	assert.Equal(t, withCount, withoutState)
	assert.Equal(t, smart.NoState[string]{}, s)
}

const sharedPrefixGrammar = `
	stmt = item ";" | item "=" item ";" .
	item = "(" stmt ")" | "z" .
`

func nested(depth int) string {
	return strings.Repeat("(", depth) + "z;" + strings.Repeat(");", depth)
}

func TestParseSharedPrefixTree(t *testing.T) {
	g := grammar(t, sharedPrefixGrammar)

	got, count, err := parseString(t, g, env("stmt"), nested(1))
	require.NoError(t, err)
	assert.Equal(t, "(source (stmt (item ( (stmt (item z) ;) )) ;) <eof>)", got)
	// six tokens and five productions, folded once each
	assert.Equal(t, smart.ChildCount[string]{Constructions: 11, Children: 10}, count)
}

func TestParseSharedPrefixIsLinear(t *testing.T) {
	g := grammar(t, sharedPrefixGrammar)
	const depth = 24

	p, err := New[string, smart.ChildCount[string]](g, sexpr{}, env("stmt"), source.FromString("in", nested(depth)))
	require.NoError(t, err)

	_, err = p.Parse()
	require.NoError(t, err)

	stats := p.Stats()
	assert.LessOrEqual(t, stats.Speculations, 4*(depth+1))
	assert.GreaterOrEqual(t, stats.MemoHits, depth)
	assert.Equal(t, p.State().Constructions, stats.Constructions)
	assert.Equal(t, len(p.Tokens()), stats.Tokens)
}

func TestParseMemoizedFailureKeepsExpected(t *testing.T) {
	g := grammar(t, sharedPrefixGrammar)

	_, _, err := parseString(t, g, env("stmt"), "(z;)")
	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, []string{`";"`, `"="`}, serr.Expected)
	assert.Equal(t, lex.KindEOF, serr.Got.Kind)
}
