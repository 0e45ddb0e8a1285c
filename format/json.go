package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/smartcst/cst"
	"github.com/dhamidi/smartcst/positioned"
)

type JSONEncoder struct {
	w io.Writer
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(node *cst.Node) error {
	text, err := e.MarshalText(node)
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *JSONEncoder) MarshalText(node *cst.Node) ([]byte, error) {
	return json.MarshalIndent(node, "", "  ")
}

type PositionedJSONEncoder struct {
	w io.Writer
}

func NewPositionedJSONEncoder(w io.Writer) *PositionedJSONEncoder {
	return &PositionedJSONEncoder{w: w}
}

func (e *PositionedJSONEncoder) Encode(node *positioned.Node) error {
	text, err := e.MarshalText(node)
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *PositionedJSONEncoder) MarshalText(node *positioned.Node) ([]byte, error) {
	return json.MarshalIndent(positionedToJSON(node, 0), "", "  ")
}

type positionedJSONNode struct {
	Kind     string                `json:"kind"`
	Offset   int                   `json:"offset"`
	Width    int                   `json:"width"`
	Children []*positionedJSONNode `json:"children,omitempty"`
}

func positionedToJSON(n *positioned.Node, offset int) *positionedJSONNode {
	jn := &positionedJSONNode{Kind: n.Kind, Offset: offset, Width: n.Width}
	if len(n.Children) > 0 {
		jn.Children = make([]*positionedJSONNode, len(n.Children))
		for i, child := range n.Children {
			jn.Children[i] = positionedToJSON(child, offset)
			offset += child.Width
		}
	}
	return jn
}
