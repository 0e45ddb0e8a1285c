// Package cst is the full-fidelity backend: it builds a concrete syntax tree
// that keeps every token, its trivia and its source span.
package cst

import (
	"fmt"
	"strings"

	"github.com/dhamidi/smartcst/ebnf/lex"
	"github.com/dhamidi/smartcst/source"
)

// Kinds of nodes that do not come from a grammar production or token.
const (
	KindList    = "list"
	KindMissing = "missing"
	KindError   = "ERROR"
)

// Node represents a node in the concrete syntax tree.
// Leaf nodes have a non-nil Token; interior nodes have Children.
type Node struct {
	Kind     string     // Production name or token kind
	Children []*Node    // Child nodes (nil for terminals)
	Token    *lex.Token // The token (non-nil for terminals)
	Span     source.Span
	Error    string // Non-empty if this is an error node
}

// IsError returns true if this node represents a parse error.
func (n *Node) IsError() bool {
	return n.Error != ""
}

// IsTerminal returns true if this is a leaf node (token).
func (n *Node) IsTerminal() bool {
	return n.Token != nil
}

func (n *Node) IsMissing() bool {
	return n.Kind == KindMissing
}

// Text returns the source text of this node.
// For terminals, returns the token literal.
// For non-terminals, returns the concatenated literals of its tokens without
// trivia.
func (n *Node) Text() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	var sb strings.Builder
	n.Walk(func(c *Node) bool {
		if c.Token != nil {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(c.Token.Literal)
		}
		return true
	})
	return sb.String()
}

// FullText reproduces the source covered by this node, trivia included.
func (n *Node) FullText() string {
	var sb strings.Builder
	n.Walk(func(c *Node) bool {
		if c.Token != nil {
			for _, t := range c.Token.Leading {
				sb.WriteString(t.Literal)
			}
			sb.WriteString(c.Token.Literal)
		}
		return true
	})
	return sb.String()
}

// AddChild appends a child node and updates the span.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	n.Children = append(n.Children, child)
	n.extend(child)
}

func (n *Node) extend(child *Node) {
	if child.Span.Start.Line == 0 {
		return
	}
	if n.Span.Start.Line == 0 {
		n.Span.Start = child.Span.Start
	}
	n.Span.End = child.Span.End
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Errors returns every error node in the tree.
func (n *Node) Errors() []*Node {
	var errs []*Node
	n.Walk(func(c *Node) bool {
		if c.IsError() {
			errs = append(errs, c)
		}
		return true
	})
	return errs
}

// String renders the tree, one node per line.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb, 0)
	return strings.TrimSuffix(sb.String(), "\n")
}

func (n *Node) write(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.Kind)
	switch {
	case n.Token != nil:
		fmt.Fprintf(sb, " %q", n.Token.Literal)
	case n.IsError():
		fmt.Fprintf(sb, " %q", n.Error)
	}
	sb.WriteByte('\n')
	for _, c := range n.Children {
		c.write(sb, depth+1)
	}
}
