// SPDX-License-Identifier: MPL-2.0

package tree

import "strings"

type (
	// Chunk is the recursive assembly structure for one node: its content
	// split into entries, where each entry is either a raw text line or the
	// Chunk of an included child sitting at the call site's line index.
	// Chunks are built fresh on every access rather than cached, so a child
	// referenced from several call sites never aliases shared state.
	Chunk struct {
		// Path is the originating file.
		Path string
		// Line is the 1-based call-site line within the parent (0 for the
		// root chunk).
		Line int
		// Indent is the call site's leading-whitespace width, accumulated
		// onto the outer indentation during stringification.
		Indent int
		// Entries hold the chunk's content in line order.
		Entries []Entry
	}

	// Entry is one slot of a Chunk: a raw text line, or a nested child
	// chunk when Child is non-nil.
	Entry struct {
		Text  string
		Child *Chunk
	}
)

// Chunks builds the node's chunk representation: the wrapped content split
// into lines, with each active pointer's line replaced by the child's own
// chunk stamped with the pointer's line and indentation.
func (n *Node) Chunks() *Chunk {
	lines := strings.Split(n.content, "\n")
	entries := make([]Entry, len(lines))
	for i, l := range lines {
		entries[i] = Entry{Text: l}
	}

	for _, p := range n.pointers {
		ref := n.children[p.Path]
		if ref == nil || p.Line-1 >= len(entries) {
			continue
		}
		child := ref.node.Chunks()
		child.Line = p.Line
		child.Indent = p.Indent
		entries[p.Line-1] = Entry{Child: child}
	}

	return &Chunk{Path: n.path, Entries: entries}
}

// Stringify flattens a chunk into assembled text. Text entries are prefixed
// with indent spaces; nested chunks render themselves with the outer
// indentation plus their own stamped indentation, so indentation accumulates
// down the tree.
func Stringify(c *Chunk, indent int) string {
	pad := strings.Repeat(" ", indent)

	out := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		if e.Child != nil {
			out = append(out, strings.Split(Stringify(e.Child, indent+e.Child.Indent), "\n")...)
			continue
		}
		out = append(out, pad+e.Text)
	}
	return strings.Join(out, "\n")
}
