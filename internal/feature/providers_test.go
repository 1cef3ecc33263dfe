package feature

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"vellum/internal/deferred"
	"vellum/internal/metadata"
	"vellum/internal/parser"
	"vellum/internal/workspace"
)

func latexRequest(t *testing.T, text string, line, character uint32) Request {
	t.Helper()
	doc := workspace.NewDocument(workspace.FileURI("/proj/main.tex"), text, parser.LanguageLaTeX)
	return Request{
		Document: doc,
		Related:  []workspace.Document{doc},
		Position: parser.Position{Line: line, Character: character},
	}
}

func withBib(req Request, bibText string) Request {
	bib := workspace.NewDocument(workspace.FileURI("/proj/refs.bib"), bibText, parser.LanguageBibTeX)
	req.Related = append(req.Related, bib)
	return req
}

func TestCommandCompletionUsesRelevantPackages(t *testing.T) {
	store, err := metadata.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	provider := &CommandCompletion{Store: store}
	req := latexRequest(t, "\\usepackage{graphicx}\n\\includegr", 1, 10)

	items, err := provider.Complete(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "includegraphics", items[0].Label)
	require.NotNil(t, items[0].Detail)
	assert.Equal(t, "graphicx", *items[0].Detail)
}

func TestCommandCompletionSkipsIrrelevantPackages(t *testing.T) {
	store, err := metadata.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	provider := &CommandCompletion{Store: store}
	req := latexRequest(t, "\\includegr", 0, 10)

	items, err := provider.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestEnvironmentCompletion(t *testing.T) {
	store, err := metadata.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	provider := &EnvironmentCompletion{Store: store}
	req := latexRequest(t, "\\begin{ite", 0, 10)

	items, err := provider.Complete(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "itemize", items[0].Label)
}

func TestColorCompletion(t *testing.T) {
	store, err := metadata.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	provider := &ColorCompletion{Store: store}
	req := latexRequest(t, "\\textcolor{Jungle", 0, 17)

	items, err := provider.Complete(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "JungleGreen", items[0].Label)
	assert.Equal(t, protocol.CompletionItemKindColor, *items[0].Kind)
}

func TestColorCompletionNotApplicableOutsideColorCommands(t *testing.T) {
	provider := &ColorCompletion{Store: metadata.NewEmptyStore()}
	req := latexRequest(t, "\\section{Jungle", 0, 15)

	items, err := provider.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCitationCompletionFromRelatedBib(t *testing.T) {
	provider := &CitationCompletion{}
	req := withBib(latexRequest(t, "\\cite{kn", 0, 8),
		"@article{knuth84,\n  title = {Literate Programming},\n}")

	items, err := provider.Complete(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "knuth84", items[0].Label)
	assert.Equal(t, "Literate Programming", *items[0].Detail)
}

func TestLabelCompletion(t *testing.T) {
	provider := &LabelCompletion{}
	req := latexRequest(t, "\\label{sec:intro}\n\\ref{sec", 1, 8)

	items, err := provider.Complete(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "sec:intro", items[0].Label)
}

func TestSyntaxDiagnosticsUnclosedEnvironment(t *testing.T) {
	provider := &SyntaxDiagnostics{}
	req := latexRequest(t, "\\begin{itemize}\n\\item x", 0, 0)

	diagnostics, err := provider.Diagnose(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, diagnostics, 1)
	assert.Contains(t, diagnostics[0].Message, "itemize")
	assert.Equal(t, protocol.DiagnosticSeverityError, *diagnostics[0].Severity)
}

func TestReferenceDiagnosticsUndefinedLabel(t *testing.T) {
	provider := &ReferenceDiagnostics{}
	req := latexRequest(t, "\\label{good}\n\\ref{good} \\ref{bad}", 0, 0)

	diagnostics, err := provider.Diagnose(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, diagnostics, 1)
	assert.Contains(t, diagnostics[0].Message, "bad")
}

func TestCitationDiagnostics(t *testing.T) {
	provider := &CitationDiagnostics{}
	req := withBib(latexRequest(t, "\\cite{knuth84} \\cite{missing}", 0, 0),
		"@book{knuth84,\n title = {X},\n}")

	diagnostics, err := provider.Diagnose(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, diagnostics, 1)
	assert.Contains(t, diagnostics[0].Message, "missing")
}

func TestLabelDefinitionAcrossRelatedDocuments(t *testing.T) {
	main := workspace.NewDocument(workspace.FileURI("/proj/main.tex"), "\\label{sec:a}", parser.LanguageLaTeX)
	child := workspace.NewDocument(workspace.FileURI("/proj/child.tex"), "\\ref{sec:a}", parser.LanguageLaTeX)

	provider := &LabelDefinition{}
	locations, err := provider.Definition(context.Background(), Request{
		Document: child,
		Related:  []workspace.Document{child, main},
		Position: parser.Position{Line: 0, Character: 6},
	})
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, protocol.DocumentUri(main.URI), locations[0].URI)
}

func TestLabelRenameEditsEveryOccurrence(t *testing.T) {
	main := workspace.NewDocument(workspace.FileURI("/proj/main.tex"), "\\label{old}\n\\ref{old}", parser.LanguageLaTeX)

	provider := &LabelRename{}
	edit, err := provider.Rename(context.Background(), RenameRequest{
		Request: Request{
			Document: main,
			Related:  []workspace.Document{main},
			Position: parser.Position{Line: 0, Character: 8},
		},
		NewName: "new",
	})
	require.NoError(t, err)
	require.NotNil(t, edit)
	edits := edit.Changes[protocol.DocumentUri(main.URI)]
	assert.Len(t, edits, 2)
	for _, textEdit := range edits {
		assert.Equal(t, "new", textEdit.NewText)
	}
}

func TestCitationHover(t *testing.T) {
	provider := &CitationHover{}
	req := withBib(latexRequest(t, "\\cite{knuth84}", 0, 7),
		"@article{knuth84,\n  title = {Literate Programming},\n  year = 1984,\n}")

	hover, err := provider.Hover(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, hover)
	content, ok := hover.Contents.(protocol.MarkupContent)
	require.True(t, ok)
	assert.Contains(t, content.Value, "knuth84")
	assert.Contains(t, content.Value, "Literate Programming")
}

func TestIncludeLinks(t *testing.T) {
	w := workspace.New()
	mainURI := workspace.FileURI("/proj/main.tex")
	childURI := workspace.FileURI("/proj/child.tex")
	w.Open(mainURI, "\\input{child}", parser.LanguageLaTeX)
	w.Open(childURI, "text", parser.LanguageLaTeX)

	main, _ := w.Lookup(mainURI)
	provider := &IncludeLinks{}
	links, err := provider.Links(context.Background(), Request{
		Document: main,
		Related:  w.RelatedDocuments(mainURI),
	})
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, protocol.URI(childURI), *links[0].Target)
}

func TestGatedCompletionAwaitsResource(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	resource := deferred.NewLazy(func(ctx context.Context) (metadata.Store, error) {
		close(started)
		<-release
		store, err := metadata.NewSQLiteStore(":memory:")
		return store, err
	}, metadata.NewEmptyStore(), nil)

	go resource.Get(context.Background())
	<-started

	gated := NewGatedCompletion(resource, func(store metadata.Store) CompletionProvider {
		return &ColorCompletion{Store: store}
	})

	// A request whose context expires before the resource resolves
	// contributes nothing.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	items, err := gated.Complete(ctx, latexRequest(t, "\\color{re", 0, 9))
	require.NoError(t, err)
	assert.Empty(t, items)

	close(release)
	require.Eventually(t, func() bool {
		items, err := gated.Complete(context.Background(), latexRequest(t, "\\color{re", 0, 9))
		return err == nil && len(items) > 0
	}, time.Second, 10*time.Millisecond)
}

func TestGatedCompletionFallsBackWhenResourceDegraded(t *testing.T) {
	var notified int
	resource := deferred.NewLazy(func(ctx context.Context) (metadata.Store, error) {
		return nil, errors.New("disk full")
	}, metadata.NewEmptyStore(), func(error) { notified++ })

	gated := NewGatedCompletion(resource, func(store metadata.Store) CompletionProvider {
		return &ColorCompletion{Store: store}
	})

	items, err := gated.Complete(context.Background(), latexRequest(t, "\\color{re", 0, 9))
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 1, notified)
}
