package parser

import (
	"regexp"
	"strings"
)

// Precompiled patterns for the directives the server cares about. Anything
// else in the document is ignored.
var (
	includePattern = regexp.MustCompile(`\\(?:input|include|subfile|subfileinclude)\{([^}]*)\}`)
	bibPattern     = regexp.MustCompile(`\\(?:addbibresource|bibliography)\{([^}]*)\}`)
	packagePattern = regexp.MustCompile(`\\usepackage(?:\[[^\]]*\])?\{([^}]*)\}`)
	classPattern   = regexp.MustCompile(`\\documentclass(?:\[[^\]]*\])?\{([^}]*)\}`)
	labelPattern   = regexp.MustCompile(`\\label\{([^}]*)\}`)
	refPattern     = regexp.MustCompile(`\\(?:ref|eqref|pageref|autoref|[cC]ref)\{([^}]*)\}`)
	citePattern    = regexp.MustCompile(`\\(?:[cC]ite[tp]?|textcite|parencite|autocite)(?:\[[^\]]*\])?\{([^}]*)\}`)
	beginPattern   = regexp.MustCompile(`\\begin\{([^}]*)\}`)
	endPattern     = regexp.MustCompile(`\\end\{([^}]*)\}`)
	sectionPattern = regexp.MustCompile(`\\(part|chapter|section|subsection|subsubsection|paragraph)\*?\{([^}]*)\}`)
	colorPattern   = regexp.MustCompile(`\\(?:color|textcolor|colorbox|pagecolor)\{([^}]*)\}`)
)

var sectionLevels = map[string]int{
	"part":          0,
	"chapter":       1,
	"section":       2,
	"subsection":    3,
	"subsubsection": 4,
	"paragraph":     5,
}

func parseLaTeX(text string) *Tree {
	tree := &Tree{Language: LanguageLaTeX}
	lines := strings.Split(text, "\n")
	tree.LineCount = uint32(len(lines))

	var open []Environment

	for lineNo, line := range lines {
		row := uint32(lineNo)

		for _, match := range includePattern.FindAllStringSubmatchIndex(line, -1) {
			tree.Includes = append(tree.Includes, Include{
				Kind:   IncludeLaTeX,
				Target: line[match[2]:match[3]],
				Range:  groupRange(row, match),
			})
		}
		for _, match := range bibPattern.FindAllStringSubmatchIndex(line, -1) {
			// \bibliography may list several files separated by commas.
			for _, part := range splitGroup(line, row, match) {
				tree.Includes = append(tree.Includes, Include{
					Kind:   IncludeBibliography,
					Target: part.text,
					Range:  part.rng,
				})
			}
		}
		for _, match := range packagePattern.FindAllStringSubmatchIndex(line, -1) {
			for _, part := range splitGroup(line, row, match) {
				tree.Includes = append(tree.Includes, Include{
					Kind:   IncludePackage,
					Target: part.text,
					Range:  part.rng,
				})
			}
		}
		for _, match := range classPattern.FindAllStringSubmatchIndex(line, -1) {
			tree.Includes = append(tree.Includes, Include{
				Kind:   IncludeClass,
				Target: line[match[2]:match[3]],
				Range:  groupRange(row, match),
			})
		}
		for _, match := range labelPattern.FindAllStringSubmatchIndex(line, -1) {
			tree.Labels = append(tree.Labels, Label{
				Name:  line[match[2]:match[3]],
				Range: groupRange(row, match),
			})
		}
		for _, match := range refPattern.FindAllStringSubmatchIndex(line, -1) {
			tree.LabelRefs = append(tree.LabelRefs, LabelRef{
				Name:  line[match[2]:match[3]],
				Range: groupRange(row, match),
			})
		}
		for _, match := range citePattern.FindAllStringSubmatchIndex(line, -1) {
			for _, part := range splitGroup(line, row, match) {
				tree.Citations = append(tree.Citations, Citation{
					Key:   part.text,
					Range: part.rng,
				})
			}
		}
		for _, match := range sectionPattern.FindAllStringSubmatchIndex(line, -1) {
			tree.Sections = append(tree.Sections, Section{
				Level: sectionLevels[line[match[2]:match[3]]],
				Title: line[match[4]:match[5]],
				Range: Range{
					Start: Position{Line: row, Character: uint32(match[0])},
					End:   Position{Line: row, Character: uint32(match[1])},
				},
			})
		}
		for _, match := range colorPattern.FindAllStringSubmatchIndex(line, -1) {
			tree.ColorRefs = append(tree.ColorRefs, ColorRef{
				Range: groupRange(row, match),
			})
		}

		for _, match := range beginPattern.FindAllStringSubmatchIndex(line, -1) {
			open = append(open, Environment{
				Name: line[match[2]:match[3]],
				Begin: Range{
					Start: Position{Line: row, Character: uint32(match[0])},
					End:   Position{Line: row, Character: uint32(match[1])},
				},
			})
		}
		for _, match := range endPattern.FindAllStringSubmatchIndex(line, -1) {
			name := line[match[2]:match[3]]
			endRange := Range{
				Start: Position{Line: row, Character: uint32(match[0])},
				End:   Position{Line: row, Character: uint32(match[1])},
			}
			// Close the innermost open environment with a matching name.
			// Mismatched ends are tolerated and close nothing.
			for i := len(open) - 1; i >= 0; i-- {
				if open[i].Name == name {
					env := open[i]
					env.End = endRange
					env.Closed = true
					tree.Environments = append(tree.Environments, env)
					open = append(open[:i], open[i+1:]...)
					break
				}
			}
		}
	}

	// Unclosed environments are kept so diagnostics can report them.
	tree.Environments = append(tree.Environments, open...)

	return tree
}

// groupRange converts the first capture group of a submatch index slice into
// a single-line Range.
func groupRange(row uint32, match []int) Range {
	return Range{
		Start: Position{Line: row, Character: uint32(match[2])},
		End:   Position{Line: row, Character: uint32(match[3])},
	}
}

type groupPart struct {
	text string
	rng  Range
}

// splitGroup splits a comma-separated capture group into trimmed parts with
// their own ranges.
func splitGroup(line string, row uint32, match []int) []groupPart {
	var parts []groupPart
	start := match[2]
	group := line[match[2]:match[3]]
	offset := 0
	for _, raw := range strings.Split(group, ",") {
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			lead := strings.Index(raw, trimmed)
			begin := start + offset + lead
			parts = append(parts, groupPart{
				text: trimmed,
				rng: Range{
					Start: Position{Line: row, Character: uint32(begin)},
					End:   Position{Line: row, Character: uint32(begin + len(trimmed))},
				},
			})
		}
		offset += len(raw) + 1
	}
	return parts
}
