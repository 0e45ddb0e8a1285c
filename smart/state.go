package smart

import "github.com/dhamidi/smartcst/source"

// State is the protocol an auxiliary construction state implements to be
// threaded through a parse. S is the state type itself and R the result type
// produced by the backend's constructors.
//
// Initial is called once per parse on the zero value of S; the receiver
// carries no information. Next is called once per construction with the
// receiver being the current state, which the caller discards afterwards.
// children are the results of that construction in declared order, possibly
// empty. The slice is only valid for the duration of the call and must not be
// retained.
//
// Both operations must be pure: the successor depends only on the receiver
// and children. Parsers attempt constructions speculatively and drop the
// resulting states on backtracking, so a Next with side effects would leak
// abandoned work into later states. Neither operation can fail; a state that
// wants to report problems records them as data.
type State[S any, R any] interface {
	Initial(env *Env, src *source.Text) S
	Next(children []R) S
}

// NoState is the state for backends that need no bookkeeping.
// It is an empty struct, so every value equals every other and folding it
// costs nothing.
type NoState[R any] struct{}

func (NoState[R]) Initial(*Env, *source.Text) NoState[R] { return NoState[R]{} }

// Next returns s unchanged.
func (s NoState[R]) Next([]R) NoState[R] { return s }
