// Package lex provides lexical scanning based on EBNF grammars.
package lex

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/dhamidi/smartcst/source"
	"golang.org/x/exp/ebnf"
)

// Kinds the lexer emits on its own.
const (
	KindEOF   = "EOF"
	KindError = "ERROR"
)

// Token represents a lexical token.
// Leading holds trivia tokens (whitespace, comments) that precede the token
// once Attach has run.
type Token struct {
	Kind    string
	Literal string
	Offset  int
	Leading []Token
}

func (t Token) String() string {
	return fmt.Sprintf("%d %s %q", t.Offset, t.Kind, t.Literal)
}

// Width is the length of the literal in bytes.
func (t Token) Width() int {
	return len(t.Literal)
}

// FullWidth is the width including leading trivia.
func (t Token) FullWidth() int {
	w := len(t.Literal)
	for _, l := range t.Leading {
		w += l.FullWidth()
	}
	return w
}

// FullOffset is the offset of the first leading trivia byte, or Offset when
// there is none.
func (t Token) FullOffset() int {
	if len(t.Leading) > 0 {
		return t.Leading[0].FullOffset()
	}
	return t.Offset
}

// memoKey is used for memoization of match results.
type memoKey struct {
	name   string
	offset int
}

// candidate is a way to start a token: a lexical production or a literal
// used by a syntactic production.
type candidate struct {
	kind string
	expr ebnf.Expression
}

// Lexer tokenizes input based on an EBNF grammar.
//
// Productions whose name starts with an uppercase letter are token
// productions. String literals that appear in the other productions become
// tokens as well, with the literal itself (quoted) as their kind. The longest
// match wins; on ties token productions beat literals and names are compared
// alphabetically.
type Lexer struct {
	grammar    ebnf.Grammar
	text       *source.Text
	input      []byte
	pos        int
	candidates []candidate
	memo       map[memoKey]int  // memoization cache: key -> match length (-1 = no match)
	visiting   map[memoKey]bool // cycle detection
}

// NewLexer creates a lexer for the given grammar and source text.
func NewLexer(grammar ebnf.Grammar, text *source.Text) *Lexer {
	return &Lexer{
		grammar:    grammar,
		text:       text,
		input:      text.Bytes(),
		candidates: candidates(grammar),
		memo:       make(map[memoKey]int),
		visiting:   make(map[memoKey]bool),
	}
}

// LoadGrammar loads an EBNF grammar from a file.
func LoadGrammar(filename string) (ebnf.Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	return ParseGrammar(filename, f)
}

// ParseGrammar parses an EBNF grammar from a reader.
func ParseGrammar(name string, r io.Reader) (ebnf.Grammar, error) {
	grammar, err := ebnf.Parse(name, r)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return grammar, nil
}

// IsLexical reports whether a production name denotes a token production.
func IsLexical(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func candidates(grammar ebnf.Grammar) []candidate {
	var named []string
	literals := make(map[string]bool)
	for name, prod := range grammar {
		if prod.Expr == nil {
			continue
		}
		if IsLexical(name) {
			named = append(named, name)
			continue
		}
		collectLiterals(prod.Expr, literals)
	}
	sort.Strings(named)

	var lits []string
	for lit := range literals {
		lits = append(lits, lit)
	}
	sort.Strings(lits)

	out := make([]candidate, 0, len(named)+len(lits))
	for _, name := range named {
		out = append(out, candidate{kind: name, expr: grammar[name].Expr})
	}
	for _, lit := range lits {
		out = append(out, candidate{kind: fmt.Sprintf("%q", lit), expr: &ebnf.Token{String: lit}})
	}
	return out
}

func collectLiterals(expr ebnf.Expression, into map[string]bool) {
	switch e := expr.(type) {
	case *ebnf.Token:
		if e.String != "" {
			into[e.String] = true
		}
	case ebnf.Sequence:
		for _, item := range e {
			collectLiterals(item, into)
		}
	case ebnf.Alternative:
		for _, alt := range e {
			collectLiterals(alt, into)
		}
	case *ebnf.Group:
		collectLiterals(e.Body, into)
	case *ebnf.Option:
		collectLiterals(e.Body, into)
	case *ebnf.Repetition:
		collectLiterals(e.Body, into)
	}
}

// Position returns the current position in the input.
func (l *Lexer) Position() source.Position {
	return l.text.Position(l.pos)
}

// NextToken returns the next token from the input.
// At the end of input it returns an EOF token together with io.EOF.
func (l *Lexer) NextToken() (Token, error) {
	if l.pos >= len(l.input) {
		return Token{Kind: KindEOF, Offset: l.pos}, io.EOF
	}

	startOffset := l.pos

	// Clear memoization cache for each new token (positions change)
	l.memo = make(map[memoKey]int)

	var bestKind string
	var bestLen int

	for _, c := range l.candidates {
		l.visiting = make(map[memoKey]bool)
		matchLen := l.tryMatch(c.expr, startOffset)
		if matchLen > bestLen {
			bestLen = matchLen
			bestKind = c.kind
		}
	}

	if bestLen == 0 {
		// No match - emit a single character as error token
		_, size := utf8.DecodeRune(l.input[startOffset:])
		l.pos += size
		return Token{
			Kind:    KindError,
			Literal: string(l.input[startOffset:l.pos]),
			Offset:  startOffset,
		}, nil
	}

	l.pos += bestLen

	return Token{
		Kind:    bestKind,
		Literal: string(l.input[startOffset:l.pos]),
		Offset:  startOffset,
	}, nil
}

// tryMatch attempts to match an expression at the given offset.
// Returns the length of the match, or -1 if there is none.
func (l *Lexer) tryMatch(expr ebnf.Expression, offset int) int {
	switch e := expr.(type) {
	case *ebnf.Token:
		return l.tryMatchToken(e.String, offset)

	case *ebnf.Range:
		return l.tryMatchRange(e.Begin.String, e.End.String, offset)

	case ebnf.Sequence:
		total := 0
		pos := offset
		for _, item := range e {
			n := l.tryMatch(item, pos)
			if n < 0 {
				return -1
			}
			total += n
			pos += n
		}
		return total

	case ebnf.Alternative:
		best := -1
		for _, alt := range e {
			n := l.tryMatch(alt, offset)
			if n > best {
				best = n
			}
		}
		return best

	case *ebnf.Repetition:
		total := 0
		pos := offset
		for {
			n := l.tryMatch(e.Body, pos)
			if n <= 0 {
				break
			}
			total += n
			pos += n
		}
		return total

	case *ebnf.Option:
		// Option always succeeds (returns 0 if body doesn't match)
		n := l.tryMatch(e.Body, offset)
		if n < 0 {
			return 0
		}
		return n

	case *ebnf.Group:
		return l.tryMatch(e.Body, offset)

	case *ebnf.Name:
		return l.tryMatchName(e.String, offset)

	default:
		return -1
	}
}

// tryMatchName matches a named production with memoization and cycle detection.
func (l *Lexer) tryMatchName(name string, offset int) int {
	key := memoKey{name: name, offset: offset}

	if result, ok := l.memo[key]; ok {
		return result
	}

	// Left recursion: break the cycle by failing this path.
	if l.visiting[key] {
		return -1
	}

	prod, ok := l.grammar[name]
	if !ok || prod.Expr == nil {
		l.memo[key] = -1
		return -1
	}

	l.visiting[key] = true
	result := l.tryMatch(prod.Expr, offset)
	delete(l.visiting, key)

	l.memo[key] = result
	return result
}

// tryMatchToken matches a literal string.
func (l *Lexer) tryMatchToken(s string, offset int) int {
	if offset+len(s) > len(l.input) {
		return -1
	}
	if bytes.Equal(l.input[offset:offset+len(s)], []byte(s)) {
		return len(s)
	}
	return -1
}

// tryMatchRange matches a single character range (e.g., "a" … "z").
func (l *Lexer) tryMatchRange(begin, end string, offset int) int {
	if offset >= len(l.input) {
		return -1
	}
	lo, _ := utf8.DecodeRuneInString(begin)
	hi, _ := utf8.DecodeRuneInString(end)
	ch, size := utf8.DecodeRune(l.input[offset:])
	if ch >= lo && ch <= hi {
		return size
	}
	return -1
}

// Tokenize reads all tokens from input. The last token is always EOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err == io.EOF {
			tokens = append(tokens, tok)
			break
		}
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// Attach moves tokens whose kind is in skip into the Leading field of the
// token that follows them. EOF collects trailing trivia.
func Attach(tokens []Token, skip []string) []Token {
	skipSet := make(map[string]bool, len(skip))
	for _, k := range skip {
		skipSet[k] = true
	}

	out := make([]Token, 0, len(tokens))
	var pending []Token
	for _, tok := range tokens {
		if tok.Kind != KindEOF && skipSet[tok.Kind] {
			pending = append(pending, tok)
			continue
		}
		if len(pending) > 0 {
			tok.Leading = append(pending, tok.Leading...)
			pending = nil
		}
		out = append(out, tok)
	}
	return out
}

// Tokenize is a convenience wrapper: lex text with grammar and attach trivia.
func Tokenize(grammar ebnf.Grammar, text *source.Text, skip []string) ([]Token, error) {
	tokens, err := NewLexer(grammar, text).Tokenize()
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	return Attach(tokens, skip), nil
}
