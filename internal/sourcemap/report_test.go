// SPDX-License-Identifier: MPL-2.0

package sourcemap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assembledFixture() []string {
	child := Wrap("/srv/child.js", "c1\nc2")
	text := Wrap("/srv/root.js", "r1\n"+child+"\nr2")
	return strings.Split(text, "\n")
}

func TestRewriteReportReplacesTokens(t *testing.T) {
	t.Parallel()

	lines := assembledFixture()

	// Line 4 of the assembled text sits inside the child's block.
	report := "SyntaxError at app.compiled.js:4\n    at app.compiled.js:2"
	got := RewriteReport(report, "app.compiled.js", lines)

	assert.Contains(t, got, "[/srv/child.js:")
	assert.Contains(t, got, "[/srv/root.js:")
	assert.NotContains(t, got, "app.compiled.js:")
}

func TestRewriteReportLeavesForeignTokens(t *testing.T) {
	t.Parallel()

	lines := assembledFixture()

	report := "at other.js:7 and at app.compiled.js:2"
	got := RewriteReport(report, "app.compiled.js", lines)

	assert.Contains(t, got, "other.js:7")
	assert.NotContains(t, got, "app.compiled.js:2")
}

func TestRewriteReportNameSuffixNotConfused(t *testing.T) {
	t.Parallel()

	lines := assembledFixture()

	// "lib-app.compiled.js" merely ends with the artifact name and must
	// survive untouched.
	report := "at lib-app.compiled.js:2"
	got := RewriteReport(report, "app.compiled.js", lines)
	assert.Equal(t, report, got)
}

func TestRewriteReportOutOfRangeLineUntouched(t *testing.T) {
	t.Parallel()

	lines := assembledFixture()

	report := "at app.compiled.js:9999"
	got := RewriteReport(report, "app.compiled.js", lines)
	assert.Equal(t, report, got)
}

func TestRewriteReportEmptyArtifactName(t *testing.T) {
	t.Parallel()

	report := "anything:3"
	assert.Equal(t, report, RewriteReport(report, "", assembledFixture()))
}
