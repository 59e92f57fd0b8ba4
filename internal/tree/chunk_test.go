// SPDX-License-Identifier: MPL-2.0

package tree

import (
	"strings"
	"testing"

	"github.com/kartikk221/application-compiler/internal/sourcemap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemblyPlacementAndIndent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write(t, dir, "child.txt", "a\nb")
	root := write(t, dir, "root.txt", "r1\nr2\n  include('child.txt')\nr4")

	rec := &recorder{}
	e := oneShot(t, root, rec)

	assembled := e.Assemble()

	// The child's two lines carry the call site's indentation and sit
	// between root lines r2 and r4.
	iR2 := strings.Index(assembled, "r2")
	iA := strings.Index(assembled, "  a")
	iB := strings.Index(assembled, "  b")
	iR4 := strings.Index(assembled, "r4")
	require.True(t, iR2 >= 0 && iA >= 0 && iB >= 0 && iR4 >= 0, "assembled: %q", assembled)
	assert.Less(t, iR2, iA)
	assert.Less(t, iA, iB)
	assert.Less(t, iB, iR4)

	// The directive line itself is gone, replaced by the child block.
	assert.NotContains(t, assembled, "include(")
}

func TestAssemblyIndentAccumulates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write(t, dir, "leaf.txt", "deep")
	write(t, dir, "mid.txt", "  include('leaf.txt')")
	root := write(t, dir, "root.txt", "  include('mid.txt')")

	rec := &recorder{}
	e := oneShot(t, root, rec)

	assembled := e.Assemble()
	assert.Contains(t, assembled, "    deep", "leaf content carries 2+2 accumulated spaces")
}

func TestAssembledBoundariesLocate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	child := write(t, dir, "child.txt", "c1\nc2\nc3")
	root := write(t, dir, "root.txt", "top\ninclude('child.txt')\nbottom")

	rec := &recorder{}
	e := oneShot(t, root, rec)

	lines := strings.Split(e.Assemble(), "\n")

	// Find the child's start boundary, then verify every interior line of
	// its block locates back to the child with the right offset.
	start := -1
	for i, l := range lines {
		if b, ok := sourcemap.ParseBoundary(l); ok && b.Path == child && b.Kind == sourcemap.StartBoundary {
			start = i
			break
		}
	}
	require.GreaterOrEqual(t, start, 0, "child start boundary must appear in assembled text")

	for offset := 1; offset <= 3; offset++ {
		pos, ok := sourcemap.Locate(start+offset+1, lines)
		require.True(t, ok)
		assert.Equal(t, child, pos.Path)
		assert.Equal(t, offset, pos.Line)
	}
}

func TestChunkShapeForRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write(t, dir, "a.txt", "alpha")
	root := write(t, dir, "root.txt", "top\n  include('a.txt')\nbottom")

	rec := &recorder{}
	e := oneShot(t, root, rec)

	c := e.Chunks()
	assert.Equal(t, root, c.Path)
	assert.Equal(t, 0, c.Line)
	assert.Equal(t, 0, c.Indent)

	// Wrapped content: marker, top, include, bottom, marker.
	require.Len(t, c.Entries, 5)
	require.NotNil(t, c.Entries[2].Child, "call-site line is replaced by the child chunk")
	assert.Equal(t, 3, c.Entries[2].Child.Line)
	assert.Equal(t, 2, c.Entries[2].Child.Indent)
}

func TestChunksAreFreshPerAccess(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write(t, dir, "part.txt", "shared")
	root := write(t, dir, "root.txt", "include('part.txt')\ninclude('part.txt')")

	rec := &recorder{}
	e := oneShot(t, root, rec)

	c := e.Chunks()
	var nested []*Chunk
	for _, entry := range c.Entries {
		if entry.Child != nil {
			nested = append(nested, entry.Child)
		}
	}
	require.Len(t, nested, 2)
	assert.NotSame(t, nested[0], nested[1], "each call site gets its own chunk, no aliasing")

	again := e.Chunks()
	assert.NotSame(t, c, again)
	assert.Equal(t, Stringify(c, 0), Stringify(again, 0))
}
