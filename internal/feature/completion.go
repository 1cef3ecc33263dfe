package feature

import (
	"context"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"vellum/internal/distro"
	"vellum/internal/metadata"
	"vellum/internal/parser"
)

var citeCommands = map[string]bool{
	"cite": true, "citet": true, "citep": true, "Cite": true,
	"textcite": true, "parencite": true, "autocite": true,
}

var refCommands = map[string]bool{
	"ref": true, "eqref": true, "pageref": true, "autoref": true,
	"cref": true, "Cref": true,
}

var colorCommands = map[string]bool{
	"color": true, "textcolor": true, "colorbox": true, "pagecolor": true,
}

// latexCursor returns the cursor context when the request targets a LaTeX
// document, which is the applicability test shared by all completion
// providers here.
func latexCursor(req Request) (parser.CursorContext, bool) {
	if req.Document.Language != parser.LanguageLaTeX {
		return parser.CursorContext{}, false
	}
	return parser.CursorAt(req.Document.Text, req.Position)
}

// CommandCompletion completes command names from the component database,
// scoped to the packages the related documents pull in.
type CommandCompletion struct {
	Store metadata.Store
}

func (p *CommandCompletion) Complete(ctx context.Context, req Request) ([]protocol.CompletionItem, error) {
	cursor, ok := latexCursor(req)
	if !ok || !cursor.IsCommandName {
		return nil, nil
	}

	commands, err := p.Store.CommandsOf(req.RelevantPackages())
	if err != nil {
		return nil, err
	}

	var items []protocol.CompletionItem
	for _, command := range commands {
		if !matchesPrefix(command.Name, cursor.Prefix) {
			continue
		}
		item := protocol.CompletionItem{
			Label: command.Name,
			Kind:  kindPtr(protocol.CompletionItemKindFunction),
		}
		if command.Package != "" {
			item.Detail = strPtr(command.Package)
		}
		items = append(items, item)
	}
	return items, nil
}

// EnvironmentCompletion completes environment names inside \begin and \end
// groups.
type EnvironmentCompletion struct {
	Store metadata.Store
}

func (p *EnvironmentCompletion) Complete(ctx context.Context, req Request) ([]protocol.CompletionItem, error) {
	cursor, ok := latexCursor(req)
	if !ok || (cursor.Command != "begin" && cursor.Command != "end") {
		return nil, nil
	}

	environments, err := p.Store.EnvironmentsOf(req.RelevantPackages())
	if err != nil {
		return nil, err
	}

	var items []protocol.CompletionItem
	for _, environment := range environments {
		if !matchesPrefix(environment.Name, cursor.Prefix) {
			continue
		}
		item := protocol.CompletionItem{
			Label: environment.Name,
			Kind:  kindPtr(protocol.CompletionItemKindModule),
		}
		if environment.Package != "" {
			item.Detail = strPtr(environment.Package)
		}
		items = append(items, item)
	}
	return items, nil
}

// ColorCompletion completes color names inside color command groups.
type ColorCompletion struct {
	Store metadata.Store
}

func (p *ColorCompletion) Complete(ctx context.Context, req Request) ([]protocol.CompletionItem, error) {
	cursor, ok := latexCursor(req)
	if !ok || !colorCommands[cursor.Command] {
		return nil, nil
	}

	colors, err := p.Store.Colors()
	if err != nil {
		return nil, err
	}

	var items []protocol.CompletionItem
	for _, color := range colors {
		if !matchesPrefix(color, cursor.Prefix) {
			continue
		}
		items = append(items, protocol.CompletionItem{
			Label: color,
			Kind:  kindPtr(protocol.CompletionItemKindColor),
		})
	}
	return items, nil
}

// PackageCompletion completes package and class names known to the
// installed distribution.
type PackageCompletion struct {
	Resolver *distro.Resolver
}

func (p *PackageCompletion) Complete(ctx context.Context, req Request) ([]protocol.CompletionItem, error) {
	cursor, ok := latexCursor(req)
	if !ok {
		return nil, nil
	}

	var names []string
	switch cursor.Command {
	case "usepackage":
		names = p.Resolver.Packages()
	case "documentclass":
		names = p.Resolver.Classes()
	default:
		return nil, nil
	}

	var items []protocol.CompletionItem
	for _, name := range names {
		if !matchesPrefix(name, cursor.Prefix) {
			continue
		}
		items = append(items, protocol.CompletionItem{
			Label: name,
			Kind:  kindPtr(protocol.CompletionItemKindModule),
		})
	}
	return items, nil
}

// CitationCompletion completes citation keys from the BibTeX documents in
// the related set.
type CitationCompletion struct{}

func (p *CitationCompletion) Complete(ctx context.Context, req Request) ([]protocol.CompletionItem, error) {
	cursor, ok := latexCursor(req)
	if !ok || !citeCommands[cursor.Command] {
		return nil, nil
	}

	var items []protocol.CompletionItem
	for _, doc := range req.Related {
		if doc.Language != parser.LanguageBibTeX || doc.Tree == nil {
			continue
		}
		for _, entry := range doc.Tree.Entries {
			if !matchesPrefix(entry.Key, cursor.Prefix) {
				continue
			}
			item := protocol.CompletionItem{
				Label: entry.Key,
				Kind:  kindPtr(protocol.CompletionItemKindReference),
			}
			if title := entry.Fields["title"]; title != "" {
				item.Detail = strPtr(title)
			}
			items = append(items, item)
		}
	}
	return items, nil
}

// LabelCompletion completes label names from the related set inside
// reference commands.
type LabelCompletion struct{}

func (p *LabelCompletion) Complete(ctx context.Context, req Request) ([]protocol.CompletionItem, error) {
	cursor, ok := latexCursor(req)
	if !ok || !refCommands[cursor.Command] {
		return nil, nil
	}

	var items []protocol.CompletionItem
	for _, doc := range req.Related {
		if doc.Tree == nil {
			continue
		}
		for _, label := range doc.Tree.Labels {
			if !matchesPrefix(label.Name, cursor.Prefix) {
				continue
			}
			item := protocol.CompletionItem{
				Label: label.Name,
				Kind:  kindPtr(protocol.CompletionItemKindReference),
			}
			// Prefer labels defined in the current document.
			if doc.URI == req.Document.URI && strings.HasPrefix(label.Name, cursor.Prefix) {
				preselect := true
				item.Preselect = &preselect
			}
			items = append(items, item)
		}
	}
	return items, nil
}
