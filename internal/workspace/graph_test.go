package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vellum/internal/parser"
)

func uris(docs []Document) []string {
	result := make([]string, len(docs))
	for i, doc := range docs {
		result[i] = doc.URI
	}
	return result
}

func TestRelatedDocumentsClosure(t *testing.T) {
	w := New()
	mainURI := FileURI("/proj/main.tex")
	chapURI := FileURI("/proj/chapters/one.tex")
	bibURI := FileURI("/proj/refs.bib")
	otherURI := FileURI("/proj/other.tex")

	w.Open(mainURI, `\input{chapters/one}`+"\n"+`\addbibresource{refs.bib}`, parser.LanguageLaTeX)
	w.Open(chapURI, `\section{One}`, parser.LanguageLaTeX)
	w.Open(bibURI, `@article{a, title={T}}`, parser.LanguageBibTeX)
	w.Open(otherURI, `\section{Unrelated}`, parser.LanguageLaTeX)

	related := w.RelatedDocuments(mainURI)
	assert.ElementsMatch(t, []string{mainURI, chapURI, bibURI}, uris(related))
}

func TestRelatedDocumentsContainsSelfAndIsIdempotent(t *testing.T) {
	w := New()
	docURI := FileURI("/proj/solo.tex")
	w.Open(docURI, "no includes", parser.LanguageLaTeX)

	first := w.RelatedDocuments(docURI)
	second := w.RelatedDocuments(docURI)

	assert.Equal(t, uris(first), uris(second))
	assert.Contains(t, uris(first), docURI)
}

func TestRelatedDocumentsUnknownURI(t *testing.T) {
	w := New()
	ghost := FileURI("/proj/ghost.tex")

	related := w.RelatedDocuments(ghost)
	require.Len(t, related, 1)
	assert.Equal(t, ghost, related[0].URI)
}

func TestRelatedDocumentsCycleSafe(t *testing.T) {
	w := New()
	aURI := FileURI("/proj/a.tex")
	bURI := FileURI("/proj/b.tex")

	w.Open(aURI, `\input{b}`, parser.LanguageLaTeX)
	w.Open(bURI, `\input{a}`, parser.LanguageLaTeX)

	related := w.RelatedDocuments(aURI)
	assert.ElementsMatch(t, []string{aURI, bURI}, uris(related))
}

func TestFindParentRootReturnsSelf(t *testing.T) {
	w := New()
	docURI := FileURI("/proj/main.tex")
	w.Open(docURI, `\section{Solo}`, parser.LanguageLaTeX)

	assert.Equal(t, docURI, w.FindParent(docURI).URI)
}

func TestFindParentResolvesTransitiveRoot(t *testing.T) {
	w := New()
	rootURI := FileURI("/proj/main.tex")
	midURI := FileURI("/proj/part.tex")
	leafURI := FileURI("/proj/leaf.tex")

	w.Open(rootURI, `\include{part}`, parser.LanguageLaTeX)
	w.Open(midURI, `\input{leaf}`, parser.LanguageLaTeX)
	w.Open(leafURI, `text`, parser.LanguageLaTeX)

	assert.Equal(t, rootURI, w.FindParent(leafURI).URI)
	assert.Equal(t, rootURI, w.FindParent(midURI).URI)
	assert.Equal(t, rootURI, w.FindParent(rootURI).URI)
}

func TestFindParentCycleFallsBackToSelf(t *testing.T) {
	w := New()
	aURI := FileURI("/proj/a.tex")
	bURI := FileURI("/proj/b.tex")

	w.Open(aURI, `\input{b}`, parser.LanguageLaTeX)
	w.Open(bURI, `\input{a}`, parser.LanguageLaTeX)

	assert.Equal(t, bURI, w.FindParent(bURI).URI)
}

func TestFindParentMultipleRootsIsDeterministic(t *testing.T) {
	w := New()
	leafURI := FileURI("/proj/leaf.tex")
	w.Open(FileURI("/proj/za.tex"), `\input{leaf}`, parser.LanguageLaTeX)
	w.Open(FileURI("/proj/ab.tex"), `\input{leaf}`, parser.LanguageLaTeX)
	w.Open(leafURI, `text`, parser.LanguageLaTeX)

	for i := 0; i < 10; i++ {
		assert.Equal(t, FileURI("/proj/ab.tex"), w.FindParent(leafURI).URI)
	}
}

func TestPackageIncludesAreNotGraphEdges(t *testing.T) {
	w := New()
	mainURI := FileURI("/proj/main.tex")
	styURI := FileURI("/proj/amsmath.tex")

	w.Open(mainURI, `\usepackage{amsmath}`, parser.LanguageLaTeX)
	w.Open(styURI, `macros`, parser.LanguageLaTeX)

	related := w.RelatedDocuments(mainURI)
	assert.Equal(t, []string{mainURI}, uris(related))
}
