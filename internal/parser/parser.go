package parser

// Language identifies the authoring language of a document.
type Language string

const (
	LanguageLaTeX  Language = "latex"
	LanguageBibTeX Language = "bibtex"
)

// Position is a zero-based line/column location in a document.
type Position struct {
	Line      uint32
	Character uint32
}

// Range spans from Start to End. Both bounds are inclusive so a cursor
// sitting just past the last character still counts as inside.
type Range struct {
	Start Position
	End   Position
}

// Contains reports whether pos lies within the range.
func (r Range) Contains(pos Position) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character > r.End.Character {
		return false
	}
	return true
}

// IncludeKind classifies an inclusion directive.
type IncludeKind int

const (
	IncludeLaTeX IncludeKind = iota
	IncludeBibliography
	IncludePackage
	IncludeClass
)

// Include is a directive pulling another file or component into the document.
type Include struct {
	Kind   IncludeKind
	Target string
	Range  Range
}

// Label is a \label definition.
type Label struct {
	Name  string
	Range Range
}

// LabelRef is a reference to a label (\ref, \eqref, ...).
type LabelRef struct {
	Name  string
	Range Range
}

// Citation is a single citation key within a \cite-like command.
type Citation struct {
	Key   string
	Range Range
}

// Environment is a \begin/\end pair. End is the zero Range when unclosed.
type Environment struct {
	Name   string
	Begin  Range
	End    Range
	Closed bool
}

// Section is a sectioning command; deeper levels have larger Level values.
type Section struct {
	Level int
	Title string
	Range Range
}

// ColorRef is the argument group of a color command, where color names apply.
type ColorRef struct {
	Range Range
}

// Entry is a BibTeX entry. Fields holds the parsed field values by name.
type Entry struct {
	Key    string
	Type   string
	Range  Range
	Fields map[string]string
}

// Tree is the parsed structure of one document version. It is immutable
// once built and owned by the document version that produced it.
type Tree struct {
	Language     Language
	Includes     []Include
	Labels       []Label
	LabelRefs    []LabelRef
	Citations    []Citation
	Environments []Environment
	Sections     []Section
	ColorRefs    []ColorRef
	Entries      []Entry
	LineCount    uint32
}

// Parse builds a Tree from full document text. It is pure and never fails;
// malformed input produces a best-effort tree.
func Parse(text string, language Language) *Tree {
	switch language {
	case LanguageBibTeX:
		return parseBibTeX(text)
	default:
		return parseLaTeX(text)
	}
}

// LabelDefinition returns the label with the given name, if present.
func (t *Tree) LabelDefinition(name string) (Label, bool) {
	for _, label := range t.Labels {
		if label.Name == name {
			return label, true
		}
	}
	return Label{}, false
}

// EntryDefinition returns the BibTeX entry with the given key, if present.
func (t *Tree) EntryDefinition(key string) (Entry, bool) {
	for _, entry := range t.Entries {
		if entry.Key == key {
			return entry, true
		}
	}
	return Entry{}, false
}

// LabelAt returns the label name under pos, from either a definition or a
// reference.
func (t *Tree) LabelAt(pos Position) (string, bool) {
	for _, label := range t.Labels {
		if label.Range.Contains(pos) {
			return label.Name, true
		}
	}
	for _, ref := range t.LabelRefs {
		if ref.Range.Contains(pos) {
			return ref.Name, true
		}
	}
	return "", false
}

// CitationAt returns the citation key under pos.
func (t *Tree) CitationAt(pos Position) (string, bool) {
	for _, citation := range t.Citations {
		if citation.Range.Contains(pos) {
			return citation.Key, true
		}
	}
	return "", false
}
