// Package positioned is a lightweight backend that records only the kind and
// width of each construction. Absolute offsets follow from summing the
// widths of preceding siblings, so the tree stays valid when reused for a
// different buffer of the same shape.
package positioned

import (
	"github.com/dhamidi/smartcst/ebnf/lex"
	"github.com/dhamidi/smartcst/ebnf/parse"
	"github.com/dhamidi/smartcst/smart"
	"github.com/dhamidi/smartcst/source"
	"golang.org/x/exp/ebnf"
)

// Node is a construction with its full width in bytes, leading trivia
// included.
type Node struct {
	Kind     string
	Width    int
	Children []*Node
	Leaf     bool
}

// Constructors builds Nodes. It implements smart.Constructors[*Node].
type Constructors struct{}

func (Constructors) Token(tok lex.Token) *Node {
	return &Node{Kind: tok.Kind, Width: tok.FullWidth(), Leaf: true}
}

func (Constructors) Missing(int) *Node {
	return &Node{Kind: "missing"}
}

func (Constructors) List(items []*Node) *Node {
	return interior("list", items)
}

func (Constructors) Production(kind string, children []*Node) *Node {
	return interior(kind, children)
}

func (Constructors) Error(_ string, skipped []lex.Token) *Node {
	n := &Node{Kind: lex.KindError}
	for _, tok := range skipped {
		n.Width += tok.FullWidth()
	}
	return n
}

func interior(kind string, children []*Node) *Node {
	n := &Node{Kind: kind, Children: children}
	for _, c := range children {
		n.Width += c.Width
	}
	return n
}

// State is the construction state of this backend: there is nothing to track.
type State = smart.NoState[*Node]

// Parse builds the positioned tree for text.
func Parse(g ebnf.Grammar, env *smart.Env, text *source.Text) (*Node, error) {
	root, _, err := parse.Parse[*Node, State](g, Constructors{}, env, text)
	return root, err
}

// Step is one node on a path from the root, with its absolute offset.
type Step struct {
	Node   *Node
	Offset int
}

// Find returns the nodes covering offset, outermost first. Zero-width nodes
// are skipped. The result is empty when offset lies outside the tree.
func (n *Node) Find(offset int) []Step {
	var path []Step
	start := 0
	cur := n
	for {
		if offset < start || offset >= start+cur.Width {
			return path
		}
		path = append(path, Step{Node: cur, Offset: start})
		next := (*Node)(nil)
		for _, c := range cur.Children {
			if offset < start+c.Width && c.Width > 0 {
				next = c
				break
			}
			start += c.Width
		}
		if next == nil {
			return path
		}
		cur = next
	}
}

// Count returns the number of nodes in the tree.
func (n *Node) Count() int {
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}
