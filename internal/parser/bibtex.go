package parser

import (
	"regexp"
	"strings"
)

var (
	entryPattern = regexp.MustCompile(`@(\w+)\s*\{\s*([^,\s{}]+)\s*,`)
	fieldPattern = regexp.MustCompile(`(\w+)\s*=\s*(?:\{([^{}]*)\}|"([^"]*)"|(\w+))`)
)

func parseBibTeX(text string) *Tree {
	tree := &Tree{Language: LanguageBibTeX}
	lines := strings.Split(text, "\n")
	tree.LineCount = uint32(len(lines))

	var current *Entry

	for lineNo, line := range lines {
		row := uint32(lineNo)

		if match := entryPattern.FindStringSubmatchIndex(line); match != nil {
			entryType := strings.ToLower(line[match[2]:match[3]])
			if entryType == "comment" || entryType == "preamble" {
				current = nil
				continue
			}
			tree.Entries = append(tree.Entries, Entry{
				Key:  line[match[4]:match[5]],
				Type: entryType,
				Range: Range{
					Start: Position{Line: row, Character: uint32(match[4])},
					End:   Position{Line: row, Character: uint32(match[5])},
				},
				Fields: make(map[string]string),
			})
			current = &tree.Entries[len(tree.Entries)-1]
			continue
		}

		if current == nil {
			continue
		}
		for _, match := range fieldPattern.FindAllStringSubmatch(line, -1) {
			name := strings.ToLower(match[1])
			value := match[2]
			if value == "" {
				value = match[3]
			}
			if value == "" {
				value = match[4]
			}
			if _, seen := current.Fields[name]; !seen {
				current.Fields[name] = value
			}
		}
	}

	return tree
}
