package workspace

import (
	"path/filepath"
	"strings"

	"go.lsp.dev/uri"

	"vellum/internal/parser"
)

// Document is one open unit of authored text together with its parsed
// structure. Documents are immutable: replacing content produces a new
// value and the old tree is discarded wholesale.
type Document struct {
	URI      string
	Text     string
	Tree     *parser.Tree
	Language parser.Language
}

// NewDocument parses text and builds a document value.
func NewDocument(docURI, text string, language parser.Language) Document {
	return Document{
		URI:      docURI,
		Text:     text,
		Tree:     parser.Parse(text, language),
		Language: language,
	}
}

// DetectLanguage maps an LSP languageId or a file extension to a Language.
func DetectLanguage(languageID, docURI string) parser.Language {
	switch languageID {
	case "bibtex":
		return parser.LanguageBibTeX
	case "latex", "tex":
		return parser.LanguageLaTeX
	}
	if strings.HasSuffix(docURI, ".bib") {
		return parser.LanguageBibTeX
	}
	return parser.LanguageLaTeX
}

// Path returns the filesystem path of a file URI, or false for other
// schemes.
func Path(docURI string) (string, bool) {
	if !strings.HasPrefix(docURI, "file://") {
		return "", false
	}
	return uri.URI(docURI).Filename(), true
}

// FileURI converts a filesystem path to its canonical file URI.
func FileURI(path string) string {
	return string(uri.File(path))
}

// CandidateURIs lists the URIs an include directive may resolve to, in
// preference order.
func CandidateURIs(fromURI string, include parser.Include) []string {
	paths := resolveTargets(fromURI, include.Target, include.Kind)
	uris := make([]string, 0, len(paths))
	for _, path := range paths {
		uris = append(uris, FileURI(path))
	}
	return uris
}

// resolveTargets lists the candidate paths an include target may point to,
// relative to the including document.
func resolveTargets(fromURI, target string, kind parser.IncludeKind) []string {
	base, ok := Path(fromURI)
	if !ok {
		return nil
	}
	dir := filepath.Dir(base)
	joined := target
	if !filepath.IsAbs(joined) {
		joined = filepath.Join(dir, target)
	}

	candidates := []string{joined}
	switch kind {
	case parser.IncludeBibliography:
		candidates = append(candidates, joined+".bib")
	default:
		candidates = append(candidates, joined+".tex")
	}
	return candidates
}
