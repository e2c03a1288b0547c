// Package lsp exposes the Sparkling parser over the Language Server
// Protocol: every open document is re-parsed on change and the first
// syntax error, if any, is published as a diagnostic.
package lsp

import (
	"errors"
	"io"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/Vathsa/Sparkling/spn/parser"
)

const lsName = "sparkling"

type Server struct {
	handler protocol.Handler
	server  *server.Server
	version string
}

func NewServer(version string) *Server {
	s := &Server{
		version: version,
	}

	s.handler = protocol.Handler{
		Initialize:            s.initialize,
		Initialized:           s.initialized,
		Shutdown:              s.shutdown,
		SetTrace:              s.setTrace,
		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,
		TextDocumentDidSave:   s.textDocumentDidSave,
	}

	s.server = server.NewServer(&s.handler, lsName, false)

	return s
}

func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    intPtr(int(protocol.TextDocumentSyncKindFull)),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.publish(ctx, params.TextDocument.URI, []byte(params.TextDocument.Text))
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	// full sync: only the last whole-document change matters
	change := params.ContentChanges[len(params.ContentChanges)-1]
	switch c := change.(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		s.publish(ctx, params.TextDocument.URI, []byte(c.Text))
	case protocol.TextDocumentContentChangeEvent:
		s.publish(ctx, params.TextDocument.URI, []byte(c.Text))
	}
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		s.publish(ctx, params.TextDocument.URI, []byte(*params.Text))
	}
	return nil
}

func (s *Server) publish(ctx *glsp.Context, uri protocol.DocumentUri, src []byte) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: Diagnostics(src),
	})
}

// Diagnostics parses src and converts its syntax error, if any, into
// LSP diagnostics. A clean parse yields an empty (non-nil) slice so
// that publishing it clears earlier diagnostics.
func Diagnostics(src []byte) []protocol.Diagnostic {
	p := parser.New(parser.WithErrorSink(io.Discard))
	if _, err := p.Parse(src); err != nil {
		var serr *parser.SyntaxError
		if !errors.As(err, &serr) {
			return []protocol.Diagnostic{}
		}

		line := protocol.UInteger(0)
		if serr.Line > 0 {
			line = protocol.UInteger(serr.Line - 1)
		}
		severity := protocol.DiagnosticSeverityError
		source := lsName

		return []protocol.Diagnostic{
			{
				Range: protocol.Range{
					Start: protocol.Position{Line: line, Character: 0},
					End:   protocol.Position{Line: line + 1, Character: 0},
				},
				Severity: &severity,
				Source:   &source,
				Message:  serr.Msg,
			},
		}
	}
	return []protocol.Diagnostic{}
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(n int) *protocol.TextDocumentSyncKind {
	kind := protocol.TextDocumentSyncKind(n)
	return &kind
}
