// Package parse drives a backend over an EBNF grammar.
//
// The parser interprets an ebnf.Grammar directly with backtracking recursive
// descent. It never builds anything itself: every recognized construction is
// handed to a smart.Builder, which asks the backend's constructors for a
// result and folds the backend's construction state.
//
// Grammar conventions:
//
//	name = ... .        lowercase names are productions and become
//	                    Production constructions
//	Name                uppercase names match tokens of that kind
//	"lit"               matches a token whose literal is lit
//	"a" … "z"           matches a single-character token in the range
//	[ x ]               x, or a Missing construction when absent
//	{ x }               a List construction of zero or more x
//	( x )               grouping; no construction of its own
//
// Alternatives are tried speculatively. The alternative that consumes the
// most tokens wins; ties go to the one written first. The result of every
// parse is a Production of kind SourceKind holding the start production and
// the EOF token, so trailing trivia is part of the tree.
package parse

import (
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/dhamidi/smartcst/ebnf/lex"
	"github.com/dhamidi/smartcst/smart"
	"github.com/dhamidi/smartcst/source"
	"github.com/tliron/commonlog"
	"golang.org/x/exp/ebnf"
)

// SourceKind is the kind of the production wrapping every parse result.
const SourceKind = "source"

const endOfInput = "end of input"

var log = commonlog.GetLogger("smartcst.parse")

type visitKey struct {
	name   string
	offset int
}

// mark is a position the parser can return to.
type mark[R any, S any] struct {
	pos int
	cp  smart.Checkpoint[S, R]
}

// memoEntry is the outcome of a production at one offset. A success keeps the
// result, where it ended and the folds that built it.
type memoEntry[R any] struct {
	ok     bool
	end    int
	result R
	folds  smart.Recording[R]
}

// Stats summarises the work done by the last parse.
type Stats struct {
	Tokens        int
	Constructions int
	Speculations  int
	Rewinds       int
	MemoHits      int
	MaxDepth      int
}

// Parser parses one source text with one backend. R is the backend's result
// type and S its construction state.
//
// A Parser is not safe for concurrent use.
type Parser[R any, S smart.State[S, R]] struct {
	grammar ebnf.Grammar
	cons    smart.Constructors[R]
	env     *smart.Env
	text    *source.Text
	tokens  []lex.Token

	b         *smart.Builder[R, S]
	pos       int
	depth     int
	visiting  map[visitKey]int
	memo      map[visitKey]memoEntry[R]
	cut       int
	furthest  int
	expected  map[string]bool
	tooDeep   bool
	missing   string
	recovered *SyntaxError
	stats     Stats
}

// New validates env, tokenizes text and returns a parser ready to run.
func New[R any, S smart.State[S, R]](g ebnf.Grammar, cons smart.Constructors[R], env *smart.Env, text *source.Text) (*Parser[R, S], error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	if _, ok := g[env.Start]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProduction, env.Start)
	}

	tokens, err := lex.Tokenize(g, text, env.SkipKinds)
	if err != nil {
		return nil, err
	}

	return &Parser[R, S]{
		grammar: g,
		cons:    cons,
		env:     env,
		text:    text,
		tokens:  tokens,
	}, nil
}

// Parse is a convenience function: create a parser, run it and return the
// result together with the final construction state.
func Parse[R any, S smart.State[S, R]](g ebnf.Grammar, cons smart.Constructors[R], env *smart.Env, text *source.Text) (R, S, error) {
	var zero R
	p, err := New[R, S](g, cons, env, text)
	if err != nil {
		var s S
		return zero, s, err
	}
	r, err := p.Parse()
	return r, p.State(), err
}

// Parse runs the parser from the start production. It may be called again
// to repeat the parse from scratch.
//
// Without Env.Recover any input that does not match yields a *SyntaxError.
// With it, unmatched tokens are wrapped in an Error construction, the parse
// succeeds, and Recovered reports what went wrong.
func (p *Parser[R, S]) Parse() (R, error) {
	var zero R
	p.reset()

	start := p.save()
	children, ok := p.matchName(p.env.Start, nil)
	if ok && p.peek().Kind == lex.KindEOF {
		return p.finish(children), nil
	}

	if p.tooDeep {
		return zero, fmt.Errorf("%w: limit %d", ErrTooDeep, p.env.MaxDepth)
	}
	if p.missing != "" {
		return zero, fmt.Errorf("%w: %q", ErrUnknownProduction, p.missing)
	}

	serr := p.syntaxError()
	if !p.env.Recover {
		log.Debugf("%s", serr)
		return zero, serr
	}

	if !ok {
		p.restore(start)
		children = nil
	}
	end := len(p.tokens) - 1
	skipped := p.tokens[p.pos:end]
	children = append(children, p.b.Error(serr.Error(), skipped))
	p.pos = end
	p.recovered = serr
	log.Debugf("recovered from %s, skipped %d tokens", serr, len(skipped))

	return p.finish(children), nil
}

func (p *Parser[R, S]) reset() {
	p.b = smart.NewBuilder[R, S](p.cons, p.env, p.text)
	p.pos = 0
	p.depth = 0
	p.visiting = make(map[visitKey]int)
	p.memo = make(map[visitKey]memoEntry[R])
	p.cut = math.MaxInt
	p.furthest = 0
	p.expected = make(map[string]bool)
	p.tooDeep = false
	p.missing = ""
	p.recovered = nil
	p.stats = Stats{Tokens: len(p.tokens)}
}

// finish consumes EOF and wraps children in the source production.
func (p *Parser[R, S]) finish(children []R) R {
	eof := p.peek()
	p.pos++
	children = append(children, p.b.Token(eof))
	root := p.b.Production(SourceKind, children)

	p.stats.Constructions = p.b.Constructions()
	log.Infof("parsed %s: %d tokens, %d constructions, %d speculations, %d rewinds, %d memo hits",
		p.text.Name(), p.stats.Tokens, p.stats.Constructions, p.stats.Speculations, p.stats.Rewinds, p.stats.MemoHits)
	return root
}

// State returns the construction state after the last parse.
func (p *Parser[R, S]) State() S {
	return p.b.State()
}

// Tokens returns the token stream with trivia attached.
func (p *Parser[R, S]) Tokens() []lex.Token {
	return p.tokens
}

// Recovered returns the error the last parse recovered from, if any.
func (p *Parser[R, S]) Recovered() *SyntaxError {
	return p.recovered
}

func (p *Parser[R, S]) Stats() Stats {
	return p.stats
}

func (p *Parser[R, S]) peek() lex.Token {
	return p.tokens[p.pos]
}

func (p *Parser[R, S]) save() mark[R, S] {
	return mark[R, S]{pos: p.pos, cp: p.b.Checkpoint()}
}

// restore abandons everything since m.
func (p *Parser[R, S]) restore(m mark[R, S]) {
	if p.pos != m.pos || p.b.Constructions() != m.cp.Constructions() {
		p.stats.Rewinds++
	}
	p.pos = m.pos
	p.b.Rewind(m.cp)
}

// match recognizes expr at the current position, appending the results of
// its constructions to out. On failure nothing has been consumed or folded.
func (p *Parser[R, S]) match(expr ebnf.Expression, out []R) ([]R, bool) {
	if p.tooDeep {
		return out, false
	}

	switch e := expr.(type) {
	case nil:
		return out, true

	case *ebnf.Name:
		if lex.IsLexical(e.String) {
			return p.matchToken(out, e.String, func(tok lex.Token) bool {
				return tok.Kind == e.String
			})
		}
		return p.matchName(e.String, out)

	case *ebnf.Token:
		return p.matchToken(out, fmt.Sprintf("%q", e.String), func(tok lex.Token) bool {
			return tok.Literal == e.String
		})

	case *ebnf.Range:
		lo, _ := utf8.DecodeRuneInString(e.Begin.String)
		hi, _ := utf8.DecodeRuneInString(e.End.String)
		label := fmt.Sprintf("%q … %q", e.Begin.String, e.End.String)
		return p.matchToken(out, label, func(tok lex.Token) bool {
			r, size := utf8.DecodeRuneInString(tok.Literal)
			return size > 0 && size == len(tok.Literal) && r >= lo && r <= hi
		})

	case ebnf.Sequence:
		m := p.save()
		n := len(out)
		for _, item := range e {
			var ok bool
			if out, ok = p.match(item, out); !ok {
				p.restore(m)
				return out[:n], false
			}
		}
		return out, true

	case ebnf.Alternative:
		return p.matchAlternative(e, out)

	case *ebnf.Group:
		return p.match(e.Body, out)

	case *ebnf.Option:
		m := p.save()
		p.stats.Speculations++
		children, ok := p.match(e.Body, nil)
		if !ok {
			p.restore(m)
			return append(out, p.b.Missing(p.peek().FullOffset())), true
		}
		return append(out, children...), true

	case *ebnf.Repetition:
		var items []R
		for {
			m := p.save()
			n := len(items)
			p.stats.Speculations++
			var ok bool
			items, ok = p.match(e.Body, items)
			if !ok || p.pos == m.pos {
				p.restore(m)
				items = items[:n]
				break
			}
		}
		return append(out, p.b.List(items)), true

	default:
		return out, false
	}
}

// matchAlternative tries every alternative from the same position and keeps
// the longest. The others are rewound.
func (p *Parser[R, S]) matchAlternative(alts ebnf.Alternative, out []R) ([]R, bool) {
	m := p.save()

	var best []R
	var bestMark mark[R, S]
	bestEnd := -1

	for i, alt := range alts {
		if i > 0 {
			p.restore(m)
		}
		p.stats.Speculations++
		children, ok := p.match(alt, nil)
		if ok && p.pos > bestEnd {
			best, bestEnd, bestMark = children, p.pos, p.save()
		}
	}

	if bestEnd < 0 {
		p.restore(m)
		return out, false
	}
	p.pos = bestMark.pos
	p.b.Rewind(bestMark.cp)
	return append(out, best...), true
}

// matchName recognizes a production. Outcomes are memoized per offset, so
// alternatives sharing a prefix do not parse it again: a cached success
// replays its folds instead of rebuilding its result.
func (p *Parser[R, S]) matchName(name string, out []R) ([]R, bool) {
	prod, ok := p.grammar[name]
	if !ok {
		p.missing = name
		return out, false
	}

	key := visitKey{name: name, offset: p.pos}
	if e, ok := p.memo[key]; ok {
		p.stats.MemoHits++
		if !e.ok {
			return out, false
		}
		p.pos = e.end
		p.b.Replay(e.folds)
		return append(out, e.result), true
	}

	// Left recursion at the same offset can never make progress.
	if depth, ok := p.visiting[key]; ok {
		p.cut = min(p.cut, depth)
		return out, false
	}
	if p.depth >= p.env.MaxDepth {
		p.tooDeep = true
		return out, false
	}

	p.depth++
	depth := p.depth
	p.visiting[key] = depth
	if depth > p.stats.MaxDepth {
		p.stats.MaxDepth = depth
	}
	outerCut := p.cut
	p.cut = math.MaxInt

	m := p.save()
	children, matched := p.match(prod.Expr, nil)

	innerCut := p.cut
	p.cut = min(outerCut, innerCut)
	p.depth--
	delete(p.visiting, key)

	// An outcome that relied on cutting an enclosing production's left
	// recursion only holds inside that production.
	cacheable := innerCut >= depth && !p.tooDeep && p.missing == ""

	if !matched {
		p.restore(m)
		if cacheable {
			p.memo[key] = memoEntry[R]{}
		}
		return out, false
	}

	r := p.b.Production(name, children)
	// Empty matches are not cached: one result must not appear twice in a tree.
	if cacheable && p.pos > key.offset {
		p.memo[key] = memoEntry[R]{ok: true, end: p.pos, result: r, folds: p.b.Record(m.cp)}
	}
	return append(out, r), true
}

func (p *Parser[R, S]) matchToken(out []R, label string, accept func(lex.Token) bool) ([]R, bool) {
	tok := p.peek()
	if tok.Kind != lex.KindEOF && accept(tok) {
		p.pos++
		return append(out, p.b.Token(tok)), true
	}
	p.expect(label)
	return out, false
}

// expect records a terminal that would have been accepted at the current
// position, for error reporting.
func (p *Parser[R, S]) expect(label string) {
	if p.pos > p.furthest {
		p.furthest = p.pos
		p.expected = make(map[string]bool)
	}
	if p.pos == p.furthest {
		p.expected[label] = true
	}
}

func (p *Parser[R, S]) syntaxError() *SyntaxError {
	at := p.furthest
	expected := p.expected
	if p.pos > at {
		at = p.pos
		expected = map[string]bool{endOfInput: true}
	}

	labels := make([]string, 0, len(expected))
	for label := range expected {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	tok := p.tokens[at]
	return &SyntaxError{
		Pos:      p.text.Position(tok.Offset),
		Expected: labels,
		Got:      tok,
	}
}
