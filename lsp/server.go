// Package lsp serves parse diagnostics and syntax hovers for any grammar
// over the Language Server Protocol.
package lsp

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dhamidi/smartcst/cst"
	"github.com/dhamidi/smartcst/positioned"
	"github.com/dhamidi/smartcst/smart"
	"github.com/dhamidi/smartcst/source"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
	"golang.org/x/exp/ebnf"
)

const lsName = "smartcst"

var log = commonlog.GetLogger("smartcst.lsp")

type document struct {
	text  *source.Text
	tree  *positioned.Node
	diags []protocol.Diagnostic
}

// Server checks open documents against one grammar.
type Server struct {
	grammar ebnf.Grammar
	env     *smart.Env
	handler protocol.Handler
	server  *server.Server
	version string

	mu   sync.Mutex
	docs map[protocol.DocumentUri]*document
}

// NewServer returns a server for g. Documents are always parsed with
// recovery so one error does not hide the rest of the tree.
func NewServer(g ebnf.Grammar, env *smart.Env, version string) *Server {
	env = env.With(env.Start)
	env.Recover = true

	ls := &Server{
		grammar: g,
		env:     env,
		version: version,
		docs:    make(map[protocol.DocumentUri]*document),
	}

	ls.handler = protocol.Handler{
		Initialize:            ls.initialize,
		Initialized:           ls.initialized,
		Shutdown:              ls.shutdown,
		SetTrace:              ls.setTrace,
		TextDocumentDidOpen:   ls.textDocumentDidOpen,
		TextDocumentDidChange: ls.textDocumentDidChange,
		TextDocumentDidClose:  ls.textDocumentDidClose,
		TextDocumentDidSave:   ls.textDocumentDidSave,
		TextDocumentHover:     ls.textDocumentHover,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

// Update reparses the document at uri and returns its diagnostics.
func (ls *Server) Update(uri protocol.DocumentUri, content string) []protocol.Diagnostic {
	text := source.FromString(string(uri), content)
	doc := &document{text: text, diags: []protocol.Diagnostic{}}

	_, diags, err := cst.Parse(ls.grammar, ls.env, text)
	if err != nil {
		doc.diags = append(doc.diags, newDiagnostic(text.Span(0, 0), err.Error()))
	} else {
		for _, d := range diags {
			doc.diags = append(doc.diags, newDiagnostic(d.Span, d.Message))
		}
	}

	if tree, err := positioned.Parse(ls.grammar, ls.env, text); err == nil {
		doc.tree = tree
	}

	ls.mu.Lock()
	ls.docs[uri] = doc
	ls.mu.Unlock()

	log.Debugf("%s: %d diagnostics", uri, len(doc.diags))
	return doc.diags
}

// Close forgets the document at uri.
func (ls *Server) Close(uri protocol.DocumentUri) {
	ls.mu.Lock()
	delete(ls.docs, uri)
	ls.mu.Unlock()
}

// Hover describes the syntax at pos: the path of constructions from the
// root down to the token under the cursor.
func (ls *Server) Hover(uri protocol.DocumentUri, pos protocol.Position) *protocol.Hover {
	ls.mu.Lock()
	doc := ls.docs[uri]
	ls.mu.Unlock()
	if doc == nil || doc.tree == nil {
		return nil
	}

	offset := doc.text.Offset(int(pos.Line)+1, int(pos.Character)+1)
	path := doc.tree.Find(offset)
	if len(path) == 0 {
		return nil
	}

	kinds := make([]string, len(path))
	for i, step := range path {
		kinds[i] = step.Node.Kind
	}
	last := path[len(path)-1]
	start, end := last.Offset, last.Offset+last.Node.Width

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**", last.Node.Kind)
	if last.Node.Leaf {
		fmt.Fprintf(&sb, " `%s`", strings.TrimSpace(doc.text.Slice(start, end)))
	}
	fmt.Fprintf(&sb, "\n\n%s", strings.Join(kinds, " › "))

	rng := toRange(doc.text.Span(start, end))
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: sb.String(),
		},
		Range: &rng,
	}
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.publish(ctx, params.TextDocument.URI, ls.Update(params.TextDocument.URI, params.TextDocument.Text))
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		ls.publish(ctx, params.TextDocument.URI, ls.Update(params.TextDocument.URI, whole.Text))
	}
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.Close(params.TextDocument.URI)
	ls.publish(ctx, params.TextDocument.URI, []protocol.Diagnostic{})
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		ls.publish(ctx, params.TextDocument.URI, ls.Update(params.TextDocument.URI, *params.Text))
	}
	return nil
}

func (ls *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	return ls.Hover(params.TextDocument.URI, params.Position), nil
}

func (ls *Server) publish(ctx *glsp.Context, uri protocol.DocumentUri, diags []protocol.Diagnostic) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

func newDiagnostic(span source.Span, message string) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range:    toRange(span),
		Severity: severityPtr(protocol.DiagnosticSeverityError),
		Source:   stringPtr(lsName),
		Message:  message,
	}
}

// toRange converts a span to a zero-based range. Columns are byte columns.
func toRange(span source.Span) protocol.Range {
	return protocol.Range{
		Start: toPosition(span.Start),
		End:   toPosition(span.End),
	}
}

func toPosition(pos source.Position) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(pos.Line - 1),
		Character: protocol.UInteger(pos.Column - 1),
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func stringPtr(s string) *string {
	return &s
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}

func severityPtr(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}
