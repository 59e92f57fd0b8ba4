// SPDX-License-Identifier: MPL-2.0

package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, content string) []Pointer {
	t.Helper()
	ptrs, _ := scanDirectives(content, "include", "/srv", map[string]struct{}{}, func(string, int) {
		t.Fatal("unexpected cycle")
	})
	return ptrs
}

func TestScanBasicDirective(t *testing.T) {
	t.Parallel()

	ptrs := scanAll(t, "first\ninclude('lib/util.js')\nlast")
	require.Len(t, ptrs, 1)
	assert.Equal(t, 2, ptrs[0].Line)
	assert.Equal(t, "/srv/lib/util.js", ptrs[0].Path)
	assert.Equal(t, 0, ptrs[0].Indent)
}

func TestScanQuoteStyles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"single quotes", "include('a.js')"},
		{"double quotes", `include("a.js")`},
		{"backticks", "include(`a.js`)"},
		{"bare", "include(a.js)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ptrs := scanAll(t, tt.content)
			require.Len(t, ptrs, 1)
			assert.Equal(t, "/srv/a.js", ptrs[0].Path)
		})
	}
}

func TestScanIndentCapture(t *testing.T) {
	t.Parallel()

	ptrs := scanAll(t, "    include('a.js')")
	require.Len(t, ptrs, 1)
	assert.Equal(t, 4, ptrs[0].Indent)

	ptrs = scanAll(t, "\t\tinclude('a.js')")
	require.Len(t, ptrs, 1)
	assert.Equal(t, 2, ptrs[0].Indent)
}

func TestScanRejectsIdentifierPrefix(t *testing.T) {
	t.Parallel()

	assert.Empty(t, scanAll(t, "my_include('a.js')"))
	assert.Empty(t, scanAll(t, "reinclude('a.js')"))
	assert.Empty(t, scanAll(t, "$include('a.js')"))
	assert.Empty(t, scanAll(t, "include2include('a.js')"))
}

func TestScanRejectsCommentedCalls(t *testing.T) {
	t.Parallel()

	assert.Empty(t, scanAll(t, "// include('a.js')"))
	assert.Empty(t, scanAll(t, "code(); // include('a.js')"))
	assert.Empty(t, scanAll(t, "/* open include('a.js')"))
}

func TestScanAcceptsClosedBlockComment(t *testing.T) {
	t.Parallel()

	ptrs := scanAll(t, "/* note */ include('a.js')")
	require.Len(t, ptrs, 1)
}

func TestScanLinePositionsAcrossFile(t *testing.T) {
	t.Parallel()

	content := "l1\nl2\ninclude('a.js')\nl4\nl5\ninclude('b.js')"
	ptrs := scanAll(t, content)
	require.Len(t, ptrs, 2)
	assert.Equal(t, 3, ptrs[0].Line)
	assert.Equal(t, 6, ptrs[1].Line)
}

func TestScanCycleRejected(t *testing.T) {
	t.Parallel()

	var cyclePath string
	var cycleLine int
	ptrs, resolved := scanDirectives(
		"line1\ninclude('root.js')",
		"include", "/srv",
		map[string]struct{}{"/srv/root.js": {}},
		func(path string, line int) { cyclePath, cycleLine = path, line },
	)

	assert.Empty(t, ptrs)
	assert.Empty(t, resolved)
	assert.Equal(t, "/srv/root.js", cyclePath)
	assert.Equal(t, 2, cycleLine)
}

func TestScanOnePointerPerLine(t *testing.T) {
	t.Parallel()

	ptrs := scanAll(t, "include('a.js') include('b.js')")
	require.Len(t, ptrs, 1)
	assert.Equal(t, "/srv/a.js", ptrs[0].Path)
}

func TestScanUnterminatedArgument(t *testing.T) {
	t.Parallel()

	assert.Empty(t, scanAll(t, "include('a.js'"))
	assert.Empty(t, scanAll(t, "include()"))
}

func TestScanCustomKeyword(t *testing.T) {
	t.Parallel()

	ptrs, _ := scanDirectives("embed('x.txt')", "embed", "/srv", map[string]struct{}{}, nil)
	require.Len(t, ptrs, 1)
	assert.Equal(t, "/srv/x.txt", ptrs[0].Path)
}
