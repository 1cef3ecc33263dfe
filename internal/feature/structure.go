package feature

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"vellum/internal/parser"
	"vellum/internal/workspace"
)

// EnvironmentFolding folds closed multi-line environments.
type EnvironmentFolding struct{}

func (p *EnvironmentFolding) Fold(ctx context.Context, req Request) ([]protocol.FoldingRange, error) {
	if req.Document.Language != parser.LanguageLaTeX || req.Document.Tree == nil {
		return nil, nil
	}

	var ranges []protocol.FoldingRange
	for _, environment := range req.Document.Tree.Environments {
		if !environment.Closed || environment.End.Start.Line <= environment.Begin.Start.Line {
			continue
		}
		ranges = append(ranges, protocol.FoldingRange{
			StartLine: environment.Begin.Start.Line,
			EndLine:   environment.End.Start.Line,
		})
	}
	return ranges, nil
}

// SectionFolding folds each section up to the next section of the same or a
// higher level.
type SectionFolding struct{}

func (p *SectionFolding) Fold(ctx context.Context, req Request) ([]protocol.FoldingRange, error) {
	if req.Document.Language != parser.LanguageLaTeX || req.Document.Tree == nil {
		return nil, nil
	}

	sections := req.Document.Tree.Sections
	var ranges []protocol.FoldingRange
	for i, section := range sections {
		end := req.Document.Tree.LineCount - 1
		for _, next := range sections[i+1:] {
			if next.Level <= section.Level {
				if next.Range.Start.Line == 0 {
					break
				}
				end = next.Range.Start.Line - 1
				break
			}
		}
		if end > section.Range.Start.Line {
			ranges = append(ranges, protocol.FoldingRange{
				StartLine: section.Range.Start.Line,
				EndLine:   end,
			})
		}
	}
	return ranges, nil
}

// LaTeXSymbols exposes the section outline with nested labels.
type LaTeXSymbols struct{}

func (p *LaTeXSymbols) Symbols(ctx context.Context, req Request) ([]protocol.DocumentSymbol, error) {
	if req.Document.Language != parser.LanguageLaTeX || req.Document.Tree == nil {
		return nil, nil
	}

	var symbols []protocol.DocumentSymbol
	for _, section := range req.Document.Tree.Sections {
		symbols = append(symbols, protocol.DocumentSymbol{
			Name:           section.Title,
			Kind:           protocol.SymbolKindNamespace,
			Range:          toProtocolRange(section.Range),
			SelectionRange: toProtocolRange(section.Range),
		})
	}
	for _, label := range req.Document.Tree.Labels {
		symbols = append(symbols, protocol.DocumentSymbol{
			Name:           label.Name,
			Kind:           protocol.SymbolKindConstant,
			Range:          toProtocolRange(label.Range),
			SelectionRange: toProtocolRange(label.Range),
		})
	}
	return symbols, nil
}

// BibTeXSymbols exposes the entries of a bibliography document.
type BibTeXSymbols struct{}

func (p *BibTeXSymbols) Symbols(ctx context.Context, req Request) ([]protocol.DocumentSymbol, error) {
	if req.Document.Language != parser.LanguageBibTeX || req.Document.Tree == nil {
		return nil, nil
	}

	var symbols []protocol.DocumentSymbol
	for _, entry := range req.Document.Tree.Entries {
		detail := entry.Type
		symbols = append(symbols, protocol.DocumentSymbol{
			Name:           entry.Key,
			Detail:         &detail,
			Kind:           protocol.SymbolKindField,
			Range:          toProtocolRange(entry.Range),
			SelectionRange: toProtocolRange(entry.Range),
		})
	}
	return symbols, nil
}

// IncludeLinks turns file-include directives that resolve to a resident
// document into clickable links.
type IncludeLinks struct{}

func (p *IncludeLinks) Links(ctx context.Context, req Request) ([]protocol.DocumentLink, error) {
	if req.Document.Tree == nil {
		return nil, nil
	}

	byURI := make(map[string]bool, len(req.Related))
	for _, doc := range req.Related {
		byURI[doc.URI] = true
	}

	var links []protocol.DocumentLink
	for _, include := range req.Document.Tree.Includes {
		if include.Kind != parser.IncludeLaTeX && include.Kind != parser.IncludeBibliography {
			continue
		}
		for _, candidate := range workspace.CandidateURIs(req.Document.URI, include) {
			if !byURI[candidate] || candidate == req.Document.URI {
				continue
			}
			target := protocol.URI(candidate)
			links = append(links, protocol.DocumentLink{
				Range:  toProtocolRange(include.Range),
				Target: &target,
			})
			break
		}
	}
	return links, nil
}
