package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"vellum/internal/feature"
	"vellum/internal/parser"
	"vellum/internal/workspace"
)

func (s *Server) initialize(glspContext *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.config = applyInitializationOptions(s.config, params.InitializationOptions)
	s.initResources()

	capabilities := s.handler.CreateServerCapabilities()
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"\\", "{", ","},
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{CommandBuild, CommandForwardSearch},
	}

	version := Version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: &version,
		},
	}, nil
}

func (s *Server) initialized(glspContext *glsp.Context, params *protocol.InitializedParams) error {
	s.setClient(glspContext)
	// A client may send initialized without a prior initialize.
	if s.loop != nil {
		s.loop.Run()
	}
	log.Info("server initialized")
	return nil
}

func (s *Server) shutdown(glspContext *glsp.Context) error {
	if s.loop != nil {
		s.loop.Stop()
	}
	if s.components != nil {
		// Wait briefly for an in-flight open so the handle is not leaked;
		// on timeout the fallback comes back and Close is a no-op.
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		store := s.components.Get(ctx)
		cancel()
		if err := store.Close(); err != nil {
			log.Errorf("closing component database: %s", err.Error())
		}
	}
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(glspContext *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(glspContext *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	docURI := params.TextDocument.URI
	language := workspace.DetectLanguage(params.TextDocument.LanguageID, docURI)
	s.workspace.Open(docURI, params.TextDocument.Text, language)

	s.publishDiagnostics(glspContext, docURI)
	return nil
}

// textDocumentDidChange accepts whole-document replacements only; the
// advertised sync kind is full, so anything else is a client error.
func (s *Server) textDocumentDidChange(glspContext *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	docURI := params.TextDocument.URI
	if len(params.ContentChanges) != 1 {
		return fmt.Errorf("expected exactly one content change, got %d", len(params.ContentChanges))
	}

	whole, ok := params.ContentChanges[0].(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return fmt.Errorf("incremental changes are not supported")
	}

	if _, err := s.workspace.Replace(docURI, whole.Text); err != nil {
		return fmt.Errorf("changing %s: %w", docURI, err)
	}

	s.publishDiagnostics(glspContext, docURI)
	return nil
}

func (s *Server) textDocumentDidSave(glspContext *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if !s.config.Build.OnSave {
		return nil
	}
	docURI := params.TextDocument.URI
	go func() {
		result, err := s.runner.Build(context.Background(), docURI)
		if err != nil {
			log.Errorf("build on save: %s", err.Error())
			s.showWarning("Build failed to start: " + err.Error())
			return
		}
		if !result.Success {
			log.Info("build on save failed")
		}
	}()
	return nil
}

// textDocumentDidClose keeps the document resident so sibling documents
// continue to resolve against it, and only retracts its diagnostics.
func (s *Server) textDocumentDidClose(glspContext *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	glspContext.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// publishDiagnostics recomputes and pushes diagnostics for the whole
// hierarchy containing docURI, since an edit in one file can resolve or
// break references in its siblings. It runs against snapshots taken after
// the triggering mutation, so no workspace lock is held while providers
// run.
func (s *Server) publishDiagnostics(glspContext *glsp.Context, docURI string) {
	root := s.workspace.FindParent(docURI)
	for _, doc := range s.workspace.RelatedDocuments(root.URI) {
		req, ok := s.requestFor(doc.URI, protocol.Position{})
		if !ok {
			continue
		}
		diagnostics := s.features.DiagnoseAll(context.Background(), req)
		if diagnostics == nil {
			diagnostics = []protocol.Diagnostic{}
		}
		glspContext.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
			URI:         doc.URI,
			Diagnostics: diagnostics,
		})
	}
}

func (s *Server) textDocumentCompletion(glspContext *glsp.Context, params *protocol.CompletionParams) (any, error) {
	req, ok := s.requestFor(params.TextDocument.URI, params.Position)
	if !ok {
		return []protocol.CompletionItem{}, nil
	}
	return s.features.CompleteAll(context.Background(), req), nil
}

func (s *Server) textDocumentHover(glspContext *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	req, ok := s.requestFor(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}
	return s.features.HoverFirst(context.Background(), req), nil
}

func (s *Server) textDocumentDefinition(glspContext *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	req, ok := s.requestFor(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}
	locations := s.features.DefinitionFirst(context.Background(), req)
	if len(locations) == 0 {
		return nil, nil
	}
	return locations, nil
}

func (s *Server) textDocumentReferences(glspContext *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	req, ok := s.requestFor(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}
	return s.features.ReferencesAll(context.Background(), feature.ReferenceRequest{
		Request:            req,
		IncludeDeclaration: params.Context.IncludeDeclaration,
	}), nil
}

func (s *Server) textDocumentRename(glspContext *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	req, ok := s.requestFor(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}
	return s.features.RenameFirst(context.Background(), feature.RenameRequest{
		Request: req,
		NewName: params.NewName,
	}), nil
}

func (s *Server) textDocumentDocumentLink(glspContext *glsp.Context, params *protocol.DocumentLinkParams) ([]protocol.DocumentLink, error) {
	req, ok := s.requestFor(params.TextDocument.URI, protocol.Position{})
	if !ok {
		return nil, nil
	}
	return s.features.LinksAll(context.Background(), req), nil
}

func (s *Server) textDocumentFoldingRange(glspContext *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	req, ok := s.requestFor(params.TextDocument.URI, protocol.Position{})
	if !ok {
		return nil, nil
	}
	return s.features.FoldAll(context.Background(), req), nil
}

func (s *Server) textDocumentDocumentSymbol(glspContext *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	req, ok := s.requestFor(params.TextDocument.URI, protocol.Position{})
	if !ok {
		return nil, nil
	}
	symbols := s.features.SymbolsAll(context.Background(), req)
	if len(symbols) == 0 {
		return nil, nil
	}
	return symbols, nil
}

func (s *Server) textDocumentDocumentHighlight(glspContext *glsp.Context, params *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	req, ok := s.requestFor(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}
	return s.features.HighlightsAll(context.Background(), req), nil
}

// textDocumentFormatting strips trailing whitespace, line by line.
func (s *Server) textDocumentFormatting(glspContext *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	doc, ok := s.workspace.Lookup(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	var edits []protocol.TextEdit
	for i, line := range strings.Split(doc.Text, "\n") {
		trimmed := strings.TrimRight(line, " \t")
		if len(trimmed) == len(line) {
			continue
		}
		edits = append(edits, protocol.TextEdit{
			Range: protocol.Range{
				Start: protocol.Position{Line: uint32(i), Character: uint32(len(trimmed))},
				End:   protocol.Position{Line: uint32(i), Character: uint32(len(line))},
			},
			NewText: "",
		})
	}
	return edits, nil
}

func (s *Server) workspaceExecuteCommand(glspContext *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	switch params.Command {
	case CommandBuild:
		docURI, err := commandURI(params.Arguments)
		if err != nil {
			return nil, err
		}
		result, err := s.runner.Build(context.Background(), docURI)
		if err != nil {
			return nil, err
		}
		return result, nil

	case CommandForwardSearch:
		docURI, err := commandURI(params.Arguments)
		if err != nil {
			return nil, err
		}
		line := uint32(0)
		if len(params.Arguments) > 1 {
			if value, ok := params.Arguments[1].(float64); ok {
				line = uint32(value)
			}
		}
		return nil, s.runner.ForwardSearch(context.Background(), docURI, line)

	default:
		return nil, fmt.Errorf("unknown command %q", params.Command)
	}
}

func commandURI(arguments []any) (string, error) {
	if len(arguments) == 0 {
		return "", fmt.Errorf("missing document argument")
	}
	docURI, ok := arguments[0].(string)
	if !ok {
		return "", fmt.Errorf("document argument must be a string")
	}
	return docURI, nil
}

func toParserPosition(position protocol.Position) parser.Position {
	return parser.Position{Line: position.Line, Character: position.Character}
}
