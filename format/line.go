package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/smartcst/cst"
	"github.com/dhamidi/smartcst/ebnf/lex"
	"github.com/dhamidi/smartcst/source"
)

// TokenEncoder writes one token per line: position, kind and literal,
// separated by tabs. Leading trivia is listed before its token.
type TokenEncoder struct {
	w      io.Writer
	text   *source.Text
	Trivia bool
}

func NewTokenEncoder(w io.Writer, text *source.Text) *TokenEncoder {
	return &TokenEncoder{w: w, text: text}
}

func (e *TokenEncoder) Encode(tokens []lex.Token) error {
	var sb strings.Builder
	for _, tok := range tokens {
		if e.Trivia {
			for _, t := range tok.Leading {
				e.line(&sb, t, true)
			}
		}
		e.line(&sb, tok, false)
	}
	_, err := io.WriteString(e.w, sb.String())
	return err
}

func (e *TokenEncoder) line(sb *strings.Builder, tok lex.Token, trivia bool) {
	pos := e.text.Position(tok.Offset)
	kind := tok.Kind
	switch {
	case tok.Kind == lex.KindError:
		kind = errorFmt(kind)
	case trivia:
		kind = spanFmt("%s", kind)
	}
	fmt.Fprintf(sb, "%d:%d\t%s\t%q\n", pos.Line, pos.Column, kind, tok.Literal)
}

// DiagnosticEncoder writes diagnostics in the file:line:col: message form
// understood by editors.
type DiagnosticEncoder struct {
	w io.Writer
}

func NewDiagnosticEncoder(w io.Writer) *DiagnosticEncoder {
	return &DiagnosticEncoder{w: w}
}

func (e *DiagnosticEncoder) Encode(diags []cst.Diagnostic) error {
	var sb strings.Builder
	for _, d := range diags {
		fmt.Fprintf(&sb, "%s: %s %s\n", d.Span.Start, errorFmt("error:"), d.Message)
	}
	_, err := io.WriteString(e.w, sb.String())
	return err
}
