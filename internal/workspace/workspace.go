package workspace

import (
	"errors"
	"sort"
	"sync"

	"vellum/internal/parser"
)

// ErrUnknownDocument is returned when a mutation targets a URI that is not
// part of the workspace.
var ErrUnknownDocument = errors.New("unknown document")

// Workspace is the process-wide set of resident documents. All access to
// the collection is serialized through the internal lock; readers obtain
// snapshots and never hold live references into the collection.
type Workspace struct {
	mu   sync.RWMutex
	docs map[string]Document
}

func New() *Workspace {
	return &Workspace{
		docs: make(map[string]Document),
	}
}

// Open inserts a document, replacing any previous version with the same URI
// atomically. The full text is reparsed; there is no incremental patch path.
func (w *Workspace) Open(docURI, text string, language parser.Language) Document {
	doc := NewDocument(docURI, text, language)

	w.mu.Lock()
	w.docs[docURI] = doc
	w.mu.Unlock()

	return doc
}

// Replace swaps the document's content with a new full-text version. The
// reparse happens synchronously inside the lock-guarded swap.
func (w *Workspace) Replace(docURI, text string) (Document, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	old, exists := w.docs[docURI]
	if !exists {
		return Document{}, ErrUnknownDocument
	}

	doc := NewDocument(docURI, text, old.Language)
	w.docs[docURI] = doc
	return doc, nil
}

// Remove drops a document from the workspace. Closing a document does not
// remove it; siblings keep resolving against resident text.
func (w *Workspace) Remove(docURI string) {
	w.mu.Lock()
	delete(w.docs, docURI)
	w.mu.Unlock()
}

// Lookup returns the current version of a document.
func (w *Workspace) Lookup(docURI string) (Document, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	doc, exists := w.docs[docURI]
	return doc, exists
}

// Snapshot copies the current document set, ordered by URI. The lock is
// held only for the copy.
func (w *Workspace) Snapshot() []Document {
	w.mu.RLock()
	defer w.mu.RUnlock()

	docs := make([]Document, 0, len(w.docs))
	for _, doc := range w.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].URI < docs[j].URI })
	return docs
}

// Len returns the number of resident documents.
func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.docs)
}
