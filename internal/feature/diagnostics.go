package feature

import (
	"context"
	"fmt"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"vellum/internal/parser"
)

func severityPtr(severity protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &severity
}

var diagnosticSource = "vellum"

// SyntaxDiagnostics reports structural problems the parser tolerated:
// environments that are never closed.
type SyntaxDiagnostics struct{}

func (p *SyntaxDiagnostics) Diagnose(ctx context.Context, req Request) ([]protocol.Diagnostic, error) {
	if req.Document.Language != parser.LanguageLaTeX || req.Document.Tree == nil {
		return nil, nil
	}

	var diagnostics []protocol.Diagnostic
	for _, environment := range req.Document.Tree.Environments {
		if environment.Closed {
			continue
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    toProtocolRange(environment.Begin),
			Severity: severityPtr(protocol.DiagnosticSeverityError),
			Source:   &diagnosticSource,
			Message:  fmt.Sprintf("environment %q is never closed", environment.Name),
		})
	}
	return diagnostics, nil
}

// ReferenceDiagnostics reports label references that resolve nowhere in the
// related-document set.
type ReferenceDiagnostics struct{}

func (p *ReferenceDiagnostics) Diagnose(ctx context.Context, req Request) ([]protocol.Diagnostic, error) {
	if req.Document.Language != parser.LanguageLaTeX || req.Document.Tree == nil {
		return nil, nil
	}

	defined := make(map[string]bool)
	for _, doc := range req.Related {
		if doc.Tree == nil {
			continue
		}
		for _, label := range doc.Tree.Labels {
			defined[label.Name] = true
		}
	}

	var diagnostics []protocol.Diagnostic
	for _, ref := range req.Document.Tree.LabelRefs {
		if defined[ref.Name] {
			continue
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    toProtocolRange(ref.Range),
			Severity: severityPtr(protocol.DiagnosticSeverityWarning),
			Source:   &diagnosticSource,
			Message:  fmt.Sprintf("undefined label %q", ref.Name),
		})
	}
	return diagnostics, nil
}

// CitationDiagnostics reports citations without a matching BibTeX entry,
// and duplicate keys inside BibTeX documents.
type CitationDiagnostics struct{}

func (p *CitationDiagnostics) Diagnose(ctx context.Context, req Request) ([]protocol.Diagnostic, error) {
	if req.Document.Tree == nil {
		return nil, nil
	}

	if req.Document.Language == parser.LanguageBibTeX {
		return p.duplicateKeys(req), nil
	}

	known := make(map[string]bool)
	for _, doc := range req.Related {
		if doc.Language != parser.LanguageBibTeX || doc.Tree == nil {
			continue
		}
		for _, entry := range doc.Tree.Entries {
			known[entry.Key] = true
		}
	}

	var diagnostics []protocol.Diagnostic
	for _, citation := range req.Document.Tree.Citations {
		if known[citation.Key] {
			continue
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    toProtocolRange(citation.Range),
			Severity: severityPtr(protocol.DiagnosticSeverityWarning),
			Source:   &diagnosticSource,
			Message:  fmt.Sprintf("unresolved citation %q", citation.Key),
		})
	}
	return diagnostics, nil
}

func (p *CitationDiagnostics) duplicateKeys(req Request) []protocol.Diagnostic {
	seen := make(map[string]bool)
	var diagnostics []protocol.Diagnostic
	for _, entry := range req.Document.Tree.Entries {
		if seen[entry.Key] {
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Range:    toProtocolRange(entry.Range),
				Severity: severityPtr(protocol.DiagnosticSeverityWarning),
				Source:   &diagnosticSource,
				Message:  fmt.Sprintf("duplicate entry key %q", entry.Key),
			})
		}
		seen[entry.Key] = true
	}
	return diagnostics
}
