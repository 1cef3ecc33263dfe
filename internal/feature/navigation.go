package feature

import (
	"context"
	"fmt"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"vellum/internal/parser"
)

// LabelDefinition resolves a label reference to its definition anywhere in
// the related set.
type LabelDefinition struct{}

func (p *LabelDefinition) Definition(ctx context.Context, req Request) ([]protocol.Location, error) {
	if req.Document.Tree == nil {
		return nil, nil
	}
	name, ok := req.Document.Tree.LabelAt(req.Position)
	if !ok {
		return nil, nil
	}

	for _, doc := range req.Related {
		if doc.Tree == nil {
			continue
		}
		if label, found := doc.Tree.LabelDefinition(name); found {
			return []protocol.Location{{
				URI:   protocol.DocumentUri(doc.URI),
				Range: toProtocolRange(label.Range),
			}}, nil
		}
	}
	return nil, nil
}

// CitationDefinition resolves a citation key to its BibTeX entry.
type CitationDefinition struct{}

func (p *CitationDefinition) Definition(ctx context.Context, req Request) ([]protocol.Location, error) {
	if req.Document.Tree == nil {
		return nil, nil
	}
	key, ok := req.Document.Tree.CitationAt(req.Position)
	if !ok {
		return nil, nil
	}

	for _, doc := range req.Related {
		if doc.Language != parser.LanguageBibTeX || doc.Tree == nil {
			continue
		}
		if entry, found := doc.Tree.EntryDefinition(key); found {
			return []protocol.Location{{
				URI:   protocol.DocumentUri(doc.URI),
				Range: toProtocolRange(entry.Range),
			}}, nil
		}
	}
	return nil, nil
}

// LabelReferences finds every reference to the label under the cursor
// across the related set.
type LabelReferences struct{}

func (p *LabelReferences) References(ctx context.Context, req ReferenceRequest) ([]protocol.Location, error) {
	if req.Document.Tree == nil {
		return nil, nil
	}
	name, ok := req.Document.Tree.LabelAt(req.Position)
	if !ok {
		return nil, nil
	}

	var locations []protocol.Location
	for _, doc := range req.Related {
		if doc.Tree == nil {
			continue
		}
		for _, ref := range doc.Tree.LabelRefs {
			if ref.Name == name {
				locations = append(locations, protocol.Location{
					URI:   protocol.DocumentUri(doc.URI),
					Range: toProtocolRange(ref.Range),
				})
			}
		}
		if !req.IncludeDeclaration {
			continue
		}
		if label, found := doc.Tree.LabelDefinition(name); found {
			locations = append(locations, protocol.Location{
				URI:   protocol.DocumentUri(doc.URI),
				Range: toProtocolRange(label.Range),
			})
		}
	}
	return locations, nil
}

// LabelHighlights marks occurrences of the label under the cursor within
// the current document only.
type LabelHighlights struct{}

func (p *LabelHighlights) Highlights(ctx context.Context, req Request) ([]protocol.DocumentHighlight, error) {
	if req.Document.Tree == nil {
		return nil, nil
	}
	name, ok := req.Document.Tree.LabelAt(req.Position)
	if !ok {
		return nil, nil
	}

	write := protocol.DocumentHighlightKindWrite
	read := protocol.DocumentHighlightKindRead

	var highlights []protocol.DocumentHighlight
	if label, found := req.Document.Tree.LabelDefinition(name); found {
		highlights = append(highlights, protocol.DocumentHighlight{
			Range: toProtocolRange(label.Range),
			Kind:  &write,
		})
	}
	for _, ref := range req.Document.Tree.LabelRefs {
		if ref.Name == name {
			highlights = append(highlights, protocol.DocumentHighlight{
				Range: toProtocolRange(ref.Range),
				Kind:  &read,
			})
		}
	}
	return highlights, nil
}

// LabelRename renames a label definition together with every reference in
// the related set.
type LabelRename struct{}

func (p *LabelRename) Rename(ctx context.Context, req RenameRequest) (*protocol.WorkspaceEdit, error) {
	if req.Document.Tree == nil {
		return nil, nil
	}
	name, ok := req.Document.Tree.LabelAt(req.Position)
	if !ok {
		return nil, nil
	}

	changes := make(map[protocol.DocumentUri][]protocol.TextEdit)
	for _, doc := range req.Related {
		if doc.Tree == nil {
			continue
		}
		var edits []protocol.TextEdit
		if label, found := doc.Tree.LabelDefinition(name); found {
			edits = append(edits, protocol.TextEdit{
				Range:   toProtocolRange(label.Range),
				NewText: req.NewName,
			})
		}
		for _, ref := range doc.Tree.LabelRefs {
			if ref.Name == name {
				edits = append(edits, protocol.TextEdit{
					Range:   toProtocolRange(ref.Range),
					NewText: req.NewName,
				})
			}
		}
		if len(edits) > 0 {
			changes[protocol.DocumentUri(doc.URI)] = edits
		}
	}

	if len(changes) == 0 {
		return nil, nil
	}
	return &protocol.WorkspaceEdit{Changes: changes}, nil
}

// CitationHover previews the BibTeX entry behind the citation under the
// cursor.
type CitationHover struct{}

func (p *CitationHover) Hover(ctx context.Context, req Request) (*protocol.Hover, error) {
	if req.Document.Tree == nil {
		return nil, nil
	}
	key, ok := req.Document.Tree.CitationAt(req.Position)
	if !ok {
		return nil, nil
	}

	for _, doc := range req.Related {
		if doc.Language != parser.LanguageBibTeX || doc.Tree == nil {
			continue
		}
		if entry, found := doc.Tree.EntryDefinition(key); found {
			return &protocol.Hover{
				Contents: protocol.MarkupContent{
					Kind:  protocol.MarkupKindMarkdown,
					Value: formatEntry(entry),
				},
			}, nil
		}
	}
	return nil, nil
}

func formatEntry(entry parser.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%s)", entry.Key, entry.Type)
	if title := entry.Fields["title"]; title != "" {
		fmt.Fprintf(&b, "\n\n%s", title)
	}
	if author := entry.Fields["author"]; author != "" {
		fmt.Fprintf(&b, "\n\n*%s*", author)
	}
	if year := entry.Fields["year"]; year != "" {
		fmt.Fprintf(&b, ", %s", year)
	}
	return b.String()
}

// ColorHover shows a note for known color names inside color command
// groups. It needs the component database and is registered behind a gate.
type ColorHover struct {
	Colors map[string]bool
}

func NewColorHover(colors []string) *ColorHover {
	known := make(map[string]bool, len(colors))
	for _, color := range colors {
		known[color] = true
	}
	return &ColorHover{Colors: known}
}

func (p *ColorHover) Hover(ctx context.Context, req Request) (*protocol.Hover, error) {
	if req.Document.Language != parser.LanguageLaTeX || req.Document.Tree == nil {
		return nil, nil
	}

	for _, colorRef := range req.Document.Tree.ColorRefs {
		if !colorRef.Range.Contains(req.Position) {
			continue
		}
		name := textInRange(req.Document.Text, colorRef.Range)
		if !p.Colors[name] {
			return nil, nil
		}
		return &protocol.Hover{
			Contents: protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: fmt.Sprintf("`%s` is a known color", name),
			},
			Range: ptrRange(toProtocolRange(colorRef.Range)),
		}, nil
	}
	return nil, nil
}

func textInRange(text string, r parser.Range) string {
	lines := strings.Split(text, "\n")
	if r.Start.Line >= uint32(len(lines)) || r.Start.Line != r.End.Line {
		return ""
	}
	line := lines[r.Start.Line]
	if int(r.End.Character) > len(line) || r.Start.Character > r.End.Character {
		return ""
	}
	return line[r.Start.Character:r.End.Character]
}

func ptrRange(r protocol.Range) *protocol.Range {
	return &r
}
