package validate

import (
	"strings"
	"testing"

	"github.com/dhamidi/smartcst/ebnf/lex"
	"github.com/dhamidi/smartcst/ebnf/parse"
	"github.com/dhamidi/smartcst/smart"
	"github.com/dhamidi/smartcst/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/ebnf"
)

const listGrammar = `
	list = "[" [ item { "," item } ] "]" .
	item = Number | list .
	Number = "0" … "9" { "0" … "9" } .
	WhiteSpace = " " { " " } .
`

func load(t *testing.T) ebnf.Grammar {
	t.Helper()
	g, err := lex.ParseGrammar("list.ebnf", strings.NewReader(listGrammar))
	require.NoError(t, err)
	return g
}

func TestSourceValid(t *testing.T) {
	g := load(t)

	flag, err := Source(g, smart.DefaultEnv().With("list"), source.FromString("", "[1, [2, 3], []]"))
	require.NoError(t, err)
	assert.False(t, flag.Failed)
	// the innermost empty list has no items
	assert.Equal(t, 1, flag.Missing)
	assert.Greater(t, flag.Constructions, 0)
}

func TestSourceInvalid(t *testing.T) {
	g := load(t)

	_, err := Source(g, smart.DefaultEnv().With("list"), source.FromString("", "[1,,2]"))
	var serr *parse.SyntaxError
	assert.ErrorAs(t, err, &serr)
}

func TestSourceRecovered(t *testing.T) {
	g := load(t)
	env := smart.DefaultEnv().With("list")
	env.Recover = true

	flag, err := Source(g, env, source.FromString("", "[1] junk"))
	require.NoError(t, err)
	assert.True(t, flag.Failed)
}

func TestFlagNext(t *testing.T) {
	f := Flag{}.Initial(smart.DefaultEnv(), source.FromString("", ""))
	f = f.Next([]Mark{Ok, Missing})
	assert.Equal(t, Flag{Missing: 1, Constructions: 1}, f)

	failed := f.Next([]Mark{Error})
	assert.True(t, failed.Failed)
	assert.False(t, f.Failed, "predecessor must not change")

	// once failed, stays failed
	assert.True(t, failed.Next(nil).Failed)
}

func TestMarkString(t *testing.T) {
	assert.Equal(t, "ok", Ok.String())
	assert.Equal(t, "missing", Missing.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "unknown", Mark(42).String())
}
