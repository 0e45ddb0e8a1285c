// Package smart defines how a grammar-driving parser stays agnostic of what
// it builds.
//
// # Overview
//
// A backend is a pair of a result type R and a construction state S. The
// parser recognizes grammar constructions and, for each one, calls the
// backend's Constructors to produce an R from the construction's children.
// Right after, it folds the state:
//
//	r := cons.Production(kind, children)
//	state = state.Next(children)
//
// Builder performs both steps so parsers never touch the state directly.
//
// # Construction State
//
//	type State[S any, R any] interface {
//	    Initial(env *Env, src *source.Text) S
//	    Next(children []R) S
//	}
//
// Initial runs once per parse on the zero value of S. Next runs once per
// construction, tokens and missing parts included. Both are pure and
// infallible; problems a state wants to report travel inside the state.
//
// States in this module:
//
//	NoState[R]       no bookkeeping; Next is the identity
//	ChildCount[R]    counts constructions and children
//	Pair[A, B, R]    runs two states side by side
//
// Backends define their own, for example cst.Diagnostics and
// validate.Flag.
//
// # Backtracking
//
// Parsers try alternatives speculatively. A Checkpoint captures the state by
// value; Rewind restores it. Because Next is pure, whatever an abandoned
// attempt folded has no effect on states derived after the rewind.
//
// The builder also logs the child lists it folds. Record captures the folds
// made since a checkpoint and Replay repeats them with Fold, so a parser
// that memoizes a production's result can reuse it and still leave the
// state exactly where building it again would have.
//
// # Configuration
//
// Env carries the parse configuration (start production, trivia kinds,
// recovery, nesting limit). LoadEnv reads it from YAML:
//
//	start: expr
//	skip_kinds: [WhiteSpace, Comment]
//	recover: true
//	max_depth: 256
//
// # Thread Safety
//
// A Builder is not safe for concurrent use. States are plain values and may
// be shared freely once produced.
package smart
