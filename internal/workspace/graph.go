package workspace

import (
	"sort"

	"vellum/internal/parser"
)

// RelatedDocuments computes the transitive closure of include edges
// reachable from docURI, consulting only already-loaded trees. The result
// always contains the document itself and is a singleton for unknown URIs.
func (w *Workspace) RelatedDocuments(docURI string) []Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.relatedLocked(docURI)
}

func (w *Workspace) relatedLocked(docURI string) []Document {
	start, exists := w.docs[docURI]
	if !exists {
		return []Document{{URI: docURI}}
	}

	seen := map[string]bool{docURI: true}
	result := []Document{start}
	queue := []Document{start}

	for len(queue) > 0 {
		doc := queue[0]
		queue = queue[1:]

		for _, child := range w.childrenLocked(doc) {
			if seen[child.URI] {
				continue
			}
			seen[child.URI] = true
			result = append(result, child)
			queue = append(queue, child)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].URI < result[j].URI })
	return result
}

// childrenLocked resolves a document's file-include directives against the
// resident collection. Package and class includes point at distribution
// components, not sibling documents, and contribute no edges.
func (w *Workspace) childrenLocked(doc Document) []Document {
	if doc.Tree == nil {
		return nil
	}

	var children []Document
	for _, include := range doc.Tree.Includes {
		if include.Kind != parser.IncludeLaTeX && include.Kind != parser.IncludeBibliography {
			continue
		}
		for _, candidate := range resolveTargets(doc.URI, include.Target, include.Kind) {
			if child, exists := w.docs[FileURI(candidate)]; exists {
				children = append(children, child)
				break
			}
		}
	}
	return children
}

// FindParent returns the topmost document that transitively includes
// docURI, or the document itself when it has no includer. Multiple roots
// resolve deterministically to the lowest URI; include cycles fall back to
// the document itself.
func (w *Workspace) FindParent(docURI string) Document {
	w.mu.RLock()
	defer w.mu.RUnlock()

	self, exists := w.docs[docURI]
	if !exists {
		return Document{URI: docURI}
	}

	// Walk the include edges upward, collecting documents with no includer.
	var roots []Document
	seen := map[string]bool{docURI: true}
	queue := []Document{self}

	for len(queue) > 0 {
		doc := queue[0]
		queue = queue[1:]

		parents := w.includersLocked(doc.URI)
		if len(parents) == 0 && doc.URI != docURI {
			roots = append(roots, doc)
		}
		for _, parent := range parents {
			if seen[parent.URI] {
				continue
			}
			seen[parent.URI] = true
			queue = append(queue, parent)
		}
	}

	if len(roots) == 0 {
		return self
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].URI < roots[j].URI })
	return roots[0]
}

// includersLocked returns the documents that directly include docURI.
func (w *Workspace) includersLocked(docURI string) []Document {
	var includers []Document
	for _, doc := range w.docs {
		if doc.URI == docURI {
			continue
		}
		for _, child := range w.childrenLocked(doc) {
			if child.URI == docURI {
				includers = append(includers, doc)
				break
			}
		}
	}
	return includers
}
