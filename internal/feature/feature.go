// Package feature defines the capability interfaces implemented by feature
// providers and the aggregators that fan requests out across them.
package feature

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"vellum/internal/parser"
	"vellum/internal/workspace"
)

// Request bundles everything a provider may consult for one call: the
// primary document, its related-document set and the cursor position. It is
// owned by the call that created it; providers must not retain it.
type Request struct {
	Document workspace.Document
	Related  []workspace.Document
	Position parser.Position
}

// RenameRequest adds the requested new name.
type RenameRequest struct {
	Request
	NewName string
}

// ReferenceRequest adds the include-declaration flag.
type ReferenceRequest struct {
	Request
	IncludeDeclaration bool
}

// RelevantPackages lists the packages pulled in anywhere in the request's
// related-document set, deduplicated and in first-seen order.
func (r Request) RelevantPackages() []string {
	seen := make(map[string]bool)
	var packages []string
	for _, doc := range r.Related {
		if doc.Tree == nil {
			continue
		}
		for _, include := range doc.Tree.Includes {
			if include.Kind != parser.IncludePackage || seen[include.Target] {
				continue
			}
			seen[include.Target] = true
			packages = append(packages, include.Target)
		}
	}
	return packages
}

// One capability interface per feature kind. A provider that does not apply
// to the request's language returns an empty result and a nil error.

type CompletionProvider interface {
	Complete(ctx context.Context, req Request) ([]protocol.CompletionItem, error)
}

type DiagnosticsProvider interface {
	Diagnose(ctx context.Context, req Request) ([]protocol.Diagnostic, error)
}

type FoldingProvider interface {
	Fold(ctx context.Context, req Request) ([]protocol.FoldingRange, error)
}

type SymbolProvider interface {
	Symbols(ctx context.Context, req Request) ([]protocol.DocumentSymbol, error)
}

type RenameProvider interface {
	Rename(ctx context.Context, req RenameRequest) (*protocol.WorkspaceEdit, error)
}

type HoverProvider interface {
	Hover(ctx context.Context, req Request) (*protocol.Hover, error)
}

type ReferenceProvider interface {
	References(ctx context.Context, req ReferenceRequest) ([]protocol.Location, error)
}

type LinkProvider interface {
	Links(ctx context.Context, req Request) ([]protocol.DocumentLink, error)
}

type DefinitionProvider interface {
	Definition(ctx context.Context, req Request) ([]protocol.Location, error)
}

type HighlightProvider interface {
	Highlights(ctx context.Context, req Request) ([]protocol.DocumentHighlight, error)
}

func toProtocolRange(r parser.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: r.Start.Line, Character: r.Start.Character},
		End:   protocol.Position{Line: r.End.Line, Character: r.End.Character},
	}
}

func kindPtr(kind protocol.CompletionItemKind) *protocol.CompletionItemKind {
	return &kind
}

func strPtr(s string) *string {
	return &s
}
