package smart

import "github.com/dhamidi/smartcst/source"

// ChildCount counts constructions and the children folded into them.
type ChildCount[R any] struct {
	Constructions int
	Children      int
}

func (ChildCount[R]) Initial(*Env, *source.Text) ChildCount[R] { return ChildCount[R]{} }

func (c ChildCount[R]) Next(children []R) ChildCount[R] {
	c.Constructions++
	c.Children += len(children)
	return c
}

// Pair runs two states side by side over the same results.
type Pair[A State[A, R], B State[B, R], R any] struct {
	First  A
	Second B
}

func (Pair[A, B, R]) Initial(env *Env, src *source.Text) Pair[A, B, R] {
	var a A
	var b B
	return Pair[A, B, R]{
		First:  a.Initial(env, src),
		Second: b.Initial(env, src),
	}
}

func (p Pair[A, B, R]) Next(children []R) Pair[A, B, R] {
	return Pair[A, B, R]{
		First:  p.First.Next(children),
		Second: p.Second.Next(children),
	}
}

// Fold threads s through a sequence of constructions, one child list each.
func Fold[S State[S, R], R any](s S, constructions ...[]R) S {
	for _, children := range constructions {
		s = s.Next(children)
	}
	return s
}
