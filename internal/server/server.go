// Package server wires the LSP front end: one handler per protocol method,
// all of them thin adapters between protocol types and the workspace and
// feature layers.
package server

import (
	"context"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"vellum/internal/build"
	"vellum/internal/deferred"
	"vellum/internal/distro"
	"vellum/internal/feature"
	"vellum/internal/maintenance"
	"vellum/internal/metadata"
	"vellum/internal/workspace"
)

const (
	Name    = "vellum"
	Version = "0.1.0"

	CommandBuild         = "vellum.build"
	CommandForwardSearch = "vellum.forwardSearch"
)

var log = commonlog.GetLogger("vellum.server")

// Server owns the long-lived state of one language server process.
type Server struct {
	handler   *protocol.Handler
	config    Config
	workspace *workspace.Workspace
	features  *feature.Aggregator
	runner    *build.Runner
	loop      *maintenance.Loop

	components *deferred.Value[metadata.Store]
	resolver   *deferred.Value[*distro.Resolver]

	mu     sync.Mutex
	client *glsp.Context
}

// NewServer builds the protocol handler around a fresh workspace.
func NewServer(config Config) (*glspserver.Server, *Server) {
	s := newServer(config)
	return glspserver.NewServer(s.handler, Name, false), s
}

func newServer(config Config) *Server {
	s := &Server{
		config:    config,
		workspace: workspace.New(),
	}

	s.handler = &protocol.Handler{
		Initialize:                    s.initialize,
		Initialized:                   s.initialized,
		Shutdown:                      s.shutdown,
		SetTrace:                      s.setTrace,
		TextDocumentDidOpen:           s.textDocumentDidOpen,
		TextDocumentDidChange:         s.textDocumentDidChange,
		TextDocumentDidSave:           s.textDocumentDidSave,
		TextDocumentDidClose:          s.textDocumentDidClose,
		TextDocumentCompletion:        s.textDocumentCompletion,
		TextDocumentHover:             s.textDocumentHover,
		TextDocumentDefinition:        s.textDocumentDefinition,
		TextDocumentReferences:        s.textDocumentReferences,
		TextDocumentRename:            s.textDocumentRename,
		TextDocumentDocumentLink:      s.textDocumentDocumentLink,
		TextDocumentFoldingRange:      s.textDocumentFoldingRange,
		TextDocumentDocumentSymbol:    s.textDocumentDocumentSymbol,
		TextDocumentDocumentHighlight: s.textDocumentDocumentHighlight,
		TextDocumentFormatting:        s.textDocumentFormatting,
		WorkspaceExecuteCommand:       s.workspaceExecuteCommand,
	}

	return s
}

// initResources creates the deferred shared resources and the provider
// aggregator. The component database opens eagerly so it overlaps with the
// client handshake; distribution resolution is expensive and stays lazy.
func (s *Server) initResources() {
	s.components = deferred.NewEager(func(ctx context.Context) (metadata.Store, error) {
		path, err := s.config.databasePath()
		if err != nil {
			return nil, err
		}
		return metadata.NewSQLiteStore(path)
	}, metadata.NewEmptyStore(), func(err error) {
		log.Errorf("component database unavailable: %s", err.Error())
		s.showWarning("Component database unavailable, completions will be limited: " + err.Error())
	})

	s.resolver = deferred.NewLazy(func(ctx context.Context) (*distro.Resolver, error) {
		return distro.Load(ctx)
	}, distro.Empty(), func(err error) {
		log.Errorf("distribution resolution failed: %s", err.Error())
		s.showWarning("TeX distribution not usable, package completions disabled: " + err.Error())
	})

	s.features = s.buildAggregator()
	s.runner = build.NewRunner(s.workspace, s.config.buildConfig())
	s.runner.OnProgress = s.showInfo
	s.loop = maintenance.NewLoop(s.workspace, s.components, s.config.Interval())
}

// buildAggregator registers every feature provider. Registration order is
// the tie-break order for merged results.
func (s *Server) buildAggregator() *feature.Aggregator {
	return &feature.Aggregator{
		CompletionLimit: s.config.CompletionLimit,
		Completion: []feature.CompletionProvider{
			&feature.CitationCompletion{},
			&feature.LabelCompletion{},
			feature.NewGatedCompletion(s.components, func(store metadata.Store) feature.CompletionProvider {
				return &feature.CommandCompletion{Store: store}
			}),
			feature.NewGatedCompletion(s.components, func(store metadata.Store) feature.CompletionProvider {
				return &feature.EnvironmentCompletion{Store: store}
			}),
			feature.NewGatedCompletion(s.components, func(store metadata.Store) feature.CompletionProvider {
				return &feature.ColorCompletion{Store: store}
			}),
			feature.NewGatedCompletion(s.resolver, func(resolver *distro.Resolver) feature.CompletionProvider {
				return &feature.PackageCompletion{Resolver: resolver}
			}),
		},
		Diagnostics: []feature.DiagnosticsProvider{
			&feature.SyntaxDiagnostics{},
			&feature.ReferenceDiagnostics{},
			&feature.CitationDiagnostics{},
		},
		Hover: []feature.HoverProvider{
			&feature.CitationHover{},
			feature.NewGatedHover(s.components, func(store metadata.Store) feature.HoverProvider {
				colors, err := store.Colors()
				if err != nil {
					colors = nil
				}
				return feature.NewColorHover(colors)
			}),
		},
		Definition: []feature.DefinitionProvider{
			&feature.LabelDefinition{},
			&feature.CitationDefinition{},
		},
		References: []feature.ReferenceProvider{
			&feature.LabelReferences{},
		},
		Rename: []feature.RenameProvider{
			&feature.LabelRename{},
		},
		Links: []feature.LinkProvider{
			&feature.IncludeLinks{},
		},
		Folding: []feature.FoldingProvider{
			&feature.EnvironmentFolding{},
			&feature.SectionFolding{},
		},
		Symbols: []feature.SymbolProvider{
			&feature.LaTeXSymbols{},
			&feature.BibTeXSymbols{},
		},
		Highlights: []feature.HighlightProvider{
			&feature.LabelHighlights{},
		},
	}
}

// requestFor snapshots the document and its related set for one request.
// The second result is false when the URI is not resident; handlers answer
// such requests with empty results.
func (s *Server) requestFor(docURI string, position protocol.Position) (feature.Request, bool) {
	doc, ok := s.workspace.Lookup(docURI)
	if !ok {
		return feature.Request{}, false
	}
	return feature.Request{
		Document: doc,
		Related:  s.workspace.RelatedDocuments(docURI),
		Position: toParserPosition(position),
	}, true
}

func (s *Server) setClient(context *glsp.Context) {
	s.mu.Lock()
	s.client = context
	s.mu.Unlock()
}

func (s *Server) notify(method string, params any) {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()
	if client != nil {
		client.Notify(method, params)
	}
}

func (s *Server) showWarning(message string) {
	s.notify("window/showMessage", protocol.ShowMessageParams{
		Type:    protocol.MessageTypeWarning,
		Message: message,
	})
}

func (s *Server) showInfo(message string) {
	s.notify("window/showMessage", protocol.ShowMessageParams{
		Type:    protocol.MessageTypeInfo,
		Message: message,
	})
}
