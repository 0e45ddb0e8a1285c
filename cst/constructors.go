package cst

import (
	"github.com/dhamidi/smartcst/ebnf/lex"
	"github.com/dhamidi/smartcst/source"
)

// Constructors builds Nodes. It implements smart.Constructors[*Node].
type Constructors struct {
	text *source.Text
}

// NewConstructors returns constructors that compute spans against text.
func NewConstructors(text *source.Text) *Constructors {
	return &Constructors{text: text}
}

func (c *Constructors) Token(tok lex.Token) *Node {
	return c.terminal(tok)
}

func (c *Constructors) Missing(offset int) *Node {
	return &Node{
		Kind: KindMissing,
		Span: c.text.Span(offset, offset),
	}
}

func (c *Constructors) List(items []*Node) *Node {
	return c.nonTerminal(KindList, items)
}

func (c *Constructors) Production(kind string, children []*Node) *Node {
	return c.nonTerminal(kind, children)
}

func (c *Constructors) Error(message string, skipped []lex.Token) *Node {
	node := &Node{Kind: KindError, Error: message}
	for _, tok := range skipped {
		node.AddChild(c.terminal(tok))
	}
	if len(skipped) == 0 {
		// Nothing skipped: the error sits where parsing stopped.
		node.Span = c.text.Span(c.text.Len(), c.text.Len())
	}
	return node
}

func (c *Constructors) terminal(tok lex.Token) *Node {
	return &Node{
		Kind:  tok.Kind,
		Token: &tok,
		Span:  c.text.Span(tok.Offset, tok.Offset+tok.Width()),
	}
}

func (c *Constructors) nonTerminal(kind string, children []*Node) *Node {
	node := &Node{Kind: kind, Children: children}
	for _, child := range children {
		node.extend(child)
	}
	return node
}
