package workspace

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vellum/internal/parser"
)

func TestOpenReplacesExistingDocument(t *testing.T) {
	w := New()
	docURI := FileURI("/proj/main.tex")

	w.Open(docURI, `\section{One}`, parser.LanguageLaTeX)
	w.Open(docURI, `\section{Two}`, parser.LanguageLaTeX)

	assert.Equal(t, 1, w.Len())
	doc, ok := w.Lookup(docURI)
	require.True(t, ok)
	assert.Equal(t, `\section{Two}`, doc.Text)
	require.Len(t, doc.Tree.Sections, 1)
	assert.Equal(t, "Two", doc.Tree.Sections[0].Title)
}

func TestReplaceUnknownDocument(t *testing.T) {
	w := New()
	_, err := w.Replace(FileURI("/proj/ghost.tex"), "x")
	assert.ErrorIs(t, err, ErrUnknownDocument)
}

func TestReplaceProducesNewVersion(t *testing.T) {
	w := New()
	docURI := FileURI("/proj/main.tex")
	first := w.Open(docURI, `\label{a}`, parser.LanguageLaTeX)

	second, err := w.Replace(docURI, `\label{b}`)
	require.NoError(t, err)

	// The old version keeps its own tree; nothing is shared.
	assert.Equal(t, "a", first.Tree.Labels[0].Name)
	assert.Equal(t, "b", second.Tree.Labels[0].Name)
	assert.NotSame(t, first.Tree, second.Tree)
}

func TestTextMatchesLastAppliedPayload(t *testing.T) {
	w := New()
	docURI := FileURI("/proj/main.tex")

	w.Open(docURI, "v1", parser.LanguageLaTeX)
	for i := 2; i <= 5; i++ {
		_, err := w.Replace(docURI, fmt.Sprintf("v%d", i))
		require.NoError(t, err)
	}
	w.Remove(docURI)
	w.Open(docURI, "v6", parser.LanguageLaTeX)

	assert.Equal(t, 1, w.Len())
	doc, _ := w.Lookup(docURI)
	assert.Equal(t, "v6", doc.Text)
}

func TestConcurrentMutationsKeepOneVersionPerURI(t *testing.T) {
	w := New()
	docURI := FileURI("/proj/main.tex")
	w.Open(docURI, "seed", parser.LanguageLaTeX)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				w.Open(docURI, fmt.Sprintf("open-%d", n), parser.LanguageLaTeX)
			} else {
				w.Replace(docURI, fmt.Sprintf("replace-%d", n))
			}
			w.Snapshot()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, w.Len())
}

func TestSnapshotIsDetachedFromLaterMutations(t *testing.T) {
	w := New()
	aURI := FileURI("/proj/a.tex")
	w.Open(aURI, "before", parser.LanguageLaTeX)

	snap := w.Snapshot()
	w.Replace(aURI, "after")

	require.Len(t, snap, 1)
	assert.Equal(t, "before", snap[0].Text)
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, parser.LanguageBibTeX, DetectLanguage("bibtex", "file:///x.bib"))
	assert.Equal(t, parser.LanguageBibTeX, DetectLanguage("", "file:///x.bib"))
	assert.Equal(t, parser.LanguageLaTeX, DetectLanguage("latex", "file:///x.tex"))
	assert.Equal(t, parser.LanguageLaTeX, DetectLanguage("", "file:///x.tex"))
}
