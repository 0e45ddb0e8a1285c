package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/smartcst/cst"
	"github.com/dhamidi/smartcst/positioned"
	"github.com/fatih/color"
)

var (
	productionFmt = color.New(color.FgBlue, color.Bold).SprintFunc()
	tokenFmt      = color.New(color.FgGreen).SprintFunc()
	missingFmt    = color.New(color.FgYellow).SprintFunc()
	errorFmt      = color.New(color.FgRed, color.Bold).SprintFunc()
	spanFmt       = color.New(color.Faint).SprintfFunc()
)

// TreeEncoder prints a tree one node per line, indented by depth. Colors
// follow color.NoColor.
type TreeEncoder struct {
	w io.Writer
}

func NewTreeEncoder(w io.Writer) *TreeEncoder {
	return &TreeEncoder{w: w}
}

func (e *TreeEncoder) Encode(node *cst.Node) error {
	var sb strings.Builder
	writeCST(&sb, node, 0)
	_, err := io.WriteString(e.w, sb.String())
	return err
}

func writeCST(sb *strings.Builder, n *cst.Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	switch {
	case n.IsError():
		fmt.Fprintf(sb, "%s %q", errorFmt(n.Kind), n.Error)
	case n.IsMissing():
		sb.WriteString(missingFmt(n.Kind))
	case n.IsTerminal():
		fmt.Fprintf(sb, "%s %s", n.Kind, tokenFmt(fmt.Sprintf("%q", n.Token.Literal)))
	default:
		sb.WriteString(productionFmt(n.Kind))
	}
	if n.Span.Start.Line != 0 {
		sb.WriteString(spanFmt(" %d:%d-%d:%d", n.Span.Start.Line, n.Span.Start.Column, n.Span.End.Line, n.Span.End.Column))
	}
	sb.WriteByte('\n')
	for _, c := range n.Children {
		writeCST(sb, c, depth+1)
	}
}

type PositionedTreeEncoder struct {
	w io.Writer
}

func NewPositionedTreeEncoder(w io.Writer) *PositionedTreeEncoder {
	return &PositionedTreeEncoder{w: w}
}

func (e *PositionedTreeEncoder) Encode(node *positioned.Node) error {
	var sb strings.Builder
	writePositioned(&sb, node, 0, 0)
	_, err := io.WriteString(e.w, sb.String())
	return err
}

func writePositioned(sb *strings.Builder, n *positioned.Node, depth, offset int) {
	sb.WriteString(strings.Repeat("  ", depth))
	switch {
	case n.Kind == cst.KindError:
		sb.WriteString(errorFmt(n.Kind))
	case n.Kind == cst.KindMissing:
		sb.WriteString(missingFmt(n.Kind))
	case n.Leaf:
		sb.WriteString(tokenFmt(n.Kind))
	default:
		sb.WriteString(productionFmt(n.Kind))
	}
	sb.WriteString(spanFmt(" [%d+%d]", offset, n.Width))
	sb.WriteByte('\n')
	for _, c := range n.Children {
		writePositioned(sb, c, depth+1, offset)
		offset += c.Width
	}
}
