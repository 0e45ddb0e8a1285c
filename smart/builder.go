package smart

import (
	"github.com/dhamidi/smartcst/ebnf/lex"
	"github.com/dhamidi/smartcst/source"
)

// Constructors is the tree-building half of a backend. Each method turns one
// recognized construction into a result of type R. Results passed in are
// owned by the constructor from then on; it may store them in the value it
// returns but must not modify the slices, which the builder keeps for
// Replay.
type Constructors[R any] interface {
	Token(tok lex.Token) R
	// Missing stands in for an optional part that was absent at offset.
	Missing(offset int) R
	List(items []R) R
	Production(kind string, children []R) R
	// Error covers input the parser skipped while recovering.
	Error(message string, skipped []lex.Token) R
}

// Builder pairs a backend's constructors with its construction state.
// Every construction first asks the constructors for a result and then folds
// the state with that construction's children.
//
// The builder holds the only live state. Speculative parsing takes a
// Checkpoint and Rewinds to it when the attempt is abandoned.
type Builder[R any, S State[S, R]] struct {
	cons          Constructors[R]
	state         S
	log           *record[R]
	constructions int
}

// record is one fold in a persistent log, newest first. Rewinding drops
// records by moving the head back; nothing is ever overwritten.
type record[R any] struct {
	children []R
	prev     *record[R]
}

// Checkpoint is a saved builder position.
type Checkpoint[S any, R any] struct {
	state         S
	log           *record[R]
	constructions int
}

// Constructions returns the builder's construction count when cp was taken.
func (cp Checkpoint[S, R]) Constructions() int {
	return cp.constructions
}

// Recording is the sequence of folds made between a checkpoint and a later
// builder position.
type Recording[R any] struct {
	last *record[R]
	n    int
}

// Len returns the number of recorded folds.
func (rec Recording[R]) Len() int {
	return rec.n
}

// children returns the recorded child lists, oldest first.
func (rec Recording[R]) children() [][]R {
	lists := make([][]R, rec.n)
	r := rec.last
	for i := rec.n - 1; i >= 0; i-- {
		lists[i] = r.children
		r = r.prev
	}
	return lists
}

// NewBuilder creates a builder whose state starts from S's Initial.
func NewBuilder[R any, S State[S, R]](cons Constructors[R], env *Env, src *source.Text) *Builder[R, S] {
	var zero S
	return &Builder[R, S]{
		cons:  cons,
		state: zero.Initial(env, src),
	}
}

func (b *Builder[R, S]) Token(tok lex.Token) R {
	r := b.cons.Token(tok)
	b.fold(nil)
	return r
}

func (b *Builder[R, S]) Missing(offset int) R {
	r := b.cons.Missing(offset)
	b.fold(nil)
	return r
}

func (b *Builder[R, S]) List(items []R) R {
	r := b.cons.List(items)
	b.fold(items)
	return r
}

func (b *Builder[R, S]) Production(kind string, children []R) R {
	r := b.cons.Production(kind, children)
	b.fold(children)
	return r
}

func (b *Builder[R, S]) Error(message string, skipped []lex.Token) R {
	r := b.cons.Error(message, skipped)
	b.fold(nil)
	return r
}

func (b *Builder[R, S]) fold(children []R) {
	b.state = b.state.Next(children)
	b.log = &record[R]{children: children, prev: b.log}
	b.constructions++
}

// State returns the current state.
func (b *Builder[R, S]) State() S {
	return b.state
}

// Constructions returns how many constructions have been folded since the
// builder was created, not counting rewound ones.
func (b *Builder[R, S]) Constructions() int {
	return b.constructions
}

// Checkpoint saves the current position.
func (b *Builder[R, S]) Checkpoint() Checkpoint[S, R] {
	return Checkpoint[S, R]{state: b.state, log: b.log, constructions: b.constructions}
}

// Rewind drops everything folded since cp was taken. cp may also be a
// position after the current one, as long as it descends from it.
func (b *Builder[R, S]) Rewind(cp Checkpoint[S, R]) {
	b.state = cp.state
	b.log = cp.log
	b.constructions = cp.constructions
}

// Record returns the folds made since cp was taken.
func (b *Builder[R, S]) Record(cp Checkpoint[S, R]) Recording[R] {
	return Recording[R]{last: b.log, n: b.constructions - cp.constructions}
}

// Replay folds the state through a recording without calling any
// constructor. The results the recording was made with are reused by the
// caller, so the state ends where building them again would have left it.
func (b *Builder[R, S]) Replay(rec Recording[R]) {
	lists := rec.children()
	b.state = Fold(b.state, lists...)
	for _, children := range lists {
		b.log = &record[R]{children: children, prev: b.log}
	}
	b.constructions += rec.n
}
