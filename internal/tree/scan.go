// SPDX-License-Identifier: MPL-2.0

package tree

import (
	"strings"

	"github.com/kartikk221/application-compiler/pkg/fspath"
)

// Pointer is one scanned directive call site inside a node's content. Its
// identity across scans is the pair (Line, Path): a pointer survives a
// rescan only if the same line still resolves to the same target.
type Pointer struct {
	// Line is the 1-based position within the node's wrapped content.
	Line int
	// Path is the canonical absolute target path.
	Path string
	// Indent is the width of the whitespace run immediately before the
	// call, applied to every line of the included subtree during assembly.
	Indent int
}

// scanDirectives finds every directive call site in content. The keyword
// must not be preceded by an identifier character, must not sit behind a
// line-comment opener or inside an unclosed block comment on its own line,
// and its argument (up to the first closing parenthesis, quotes stripped)
// is resolved against dir. Targets found in the ancestor set are rejected
// through onCycle and produce no pointer.
//
// Line positions come from a running newline count over the gaps between
// consecutive matches, one pass over the content total.
func scanDirectives(content, keyword, dir string, ancestors map[string]struct{}, onCycle func(path string, line int)) ([]Pointer, map[string]struct{}) {
	needle := keyword + "("

	var ptrs []Pointer
	resolved := make(map[string]struct{})
	seenLines := make(map[int]struct{})

	line := 1
	counted := 0
	searchFrom := 0

	for {
		rel := strings.Index(content[searchFrom:], needle)
		if rel < 0 {
			break
		}
		idx := searchFrom + rel
		searchFrom = idx + len(needle)

		line += strings.Count(content[counted:idx], "\n")
		counted = idx

		// `my_include(` must not match `include(`.
		if idx > 0 && isIdentChar(content[idx-1]) {
			continue
		}

		lineStart := strings.LastIndexByte(content[:idx], '\n') + 1
		prefix := content[lineStart:idx]
		if strings.Contains(prefix, "//") {
			continue
		}
		if open := strings.LastIndex(prefix, "/*"); open >= 0 && !strings.Contains(prefix[open:], "*/") {
			continue
		}

		closeRel := strings.IndexByte(content[idx:], ')')
		if closeRel < 0 {
			continue
		}
		arg := strings.Trim(content[idx+len(needle):idx+closeRel], " \t'\"`")
		if arg == "" {
			continue
		}

		target := fspath.Resolve(dir, arg)
		if _, isAncestor := ancestors[target]; isAncestor {
			onCycle(target, line)
			continue
		}

		// One pointer per line: the chunk representation replaces whole
		// lines, so a second call site on the same line cannot be placed.
		if _, dup := seenLines[line]; dup {
			continue
		}
		seenLines[line] = struct{}{}

		indentStart := idx
		for indentStart > lineStart && isIndentChar(content[indentStart-1]) {
			indentStart--
		}

		ptrs = append(ptrs, Pointer{Line: line, Path: target, Indent: idx - indentStart})
		resolved[target] = struct{}{}
	}

	return ptrs, resolved
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

func isIndentChar(c byte) bool {
	return c == ' ' || c == '\t'
}
