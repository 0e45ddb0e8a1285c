package cst

import (
	"fmt"

	"github.com/dhamidi/smartcst/ebnf/lex"
	"github.com/dhamidi/smartcst/smart"
	"github.com/dhamidi/smartcst/source"
)

// Diagnostic is a problem found while building the tree.
type Diagnostic struct {
	Span    source.Span
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Span.Start, d.Message)
}

// Diagnostics is a construction state collecting error nodes as they are
// folded. Entries live in a persistent list so a successor never shares
// mutable storage with its predecessor.
type Diagnostics struct {
	head *entry
	n    int
}

type entry struct {
	d    Diagnostic
	next *entry
}

var _ smart.State[Diagnostics, *Node] = Diagnostics{}

func (Diagnostics) Initial(*smart.Env, *source.Text) Diagnostics {
	return Diagnostics{}
}

func (d Diagnostics) Next(children []*Node) Diagnostics {
	for _, c := range children {
		if !c.IsError() {
			continue
		}
		d = d.add(Diagnostic{Span: c.Span, Message: c.Error})
		for _, t := range c.Children {
			if t.Token != nil && t.Kind == lex.KindError {
				d = d.add(Diagnostic{Span: t.Span, Message: fmt.Sprintf("invalid character %q", t.Token.Literal)})
			}
		}
	}
	return d
}

func (d Diagnostics) add(diag Diagnostic) Diagnostics {
	return Diagnostics{head: &entry{d: diag, next: d.head}, n: d.n + 1}
}

func (d Diagnostics) Len() int {
	return d.n
}

// All returns the diagnostics in the order they were found.
func (d Diagnostics) All() []Diagnostic {
	out := make([]Diagnostic, d.n)
	i := d.n - 1
	for e := d.head; e != nil; e = e.next {
		out[i] = e.d
		i--
	}
	return out
}
