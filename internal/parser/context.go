package parser

import "strings"

// CursorContext describes what is being typed at a cursor position, used by
// completion providers to decide applicability and compute replace ranges.
type CursorContext struct {
	// Command is the name of the command whose argument group the cursor is
	// inside, without the backslash. Empty if the cursor is not in a group.
	Command string
	// Prefix is the argument text between the group opening (or the last
	// comma) and the cursor.
	Prefix string
	// Range spans the Prefix, i.e. the text a completion should replace.
	Range Range
	// IsCommandName is true when the cursor is typing a command name itself;
	// Prefix then holds the partial name without the backslash.
	IsCommandName bool
}

// CursorAt computes the completion context at pos. It only consults the
// cursor's line, which is enough for the command and group directives the
// server completes.
func CursorAt(text string, pos Position) (CursorContext, bool) {
	lines := strings.Split(text, "\n")
	if pos.Line >= uint32(len(lines)) {
		return CursorContext{}, false
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}
	before := line[:col]

	// Typing a command name: a backslash followed only by letters.
	if idx := strings.LastIndexByte(before, '\\'); idx >= 0 {
		tail := before[idx+1:]
		if isLetters(tail) {
			return CursorContext{
				Prefix: tail,
				Range: Range{
					Start: Position{Line: pos.Line, Character: uint32(idx + 1)},
					End:   pos,
				},
				IsCommandName: true,
			}, true
		}
	}

	// Inside an argument group: find the last unclosed brace.
	open := -1
	depth := 0
	for i := len(before) - 1; i >= 0; i-- {
		switch before[i] {
		case '}':
			depth++
		case '{':
			if depth == 0 {
				open = i
			} else {
				depth--
			}
		}
		if open >= 0 {
			break
		}
	}
	if open < 0 {
		return CursorContext{}, false
	}

	command := commandBefore(before[:open])
	if command == "" {
		return CursorContext{}, false
	}

	// Multi-value groups (\cite{a,b}) complete the part after the last comma.
	prefix := before[open+1:]
	start := open + 1
	if comma := strings.LastIndexByte(prefix, ','); comma >= 0 {
		start += comma + 1
		prefix = prefix[comma+1:]
	}
	lead := len(prefix) - len(strings.TrimLeft(prefix, " \t"))
	start += lead
	prefix = prefix[lead:]

	return CursorContext{
		Command: command,
		Prefix:  prefix,
		Range: Range{
			Start: Position{Line: pos.Line, Character: uint32(start)},
			End:   pos,
		},
	}, true
}

// commandBefore extracts the command name ending at the given suffix,
// skipping one optional [...] block.
func commandBefore(s string) string {
	if strings.HasSuffix(s, "]") {
		if idx := strings.LastIndexByte(s, '['); idx >= 0 {
			s = s[:idx]
		}
	}
	end := len(s)
	i := end
	for i > 0 && isLetter(s[i-1]) {
		i--
	}
	if i == 0 || s[i-1] != '\\' || i == end {
		return ""
	}
	return s[i:end]
}

func isLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isLetter(s[i]) {
			return false
		}
	}
	return true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
