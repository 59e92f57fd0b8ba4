// SPDX-License-Identifier: MPL-2.0

package sourcemap

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RewriteReport rewrites every `<artifactName>:<line>` token inside a raw
// error report into `[<path>:<relative_line>]` form using the boundary
// markers embedded in the assembled text. Tokens referencing any other file
// name are left untouched, as are tokens whose line number falls outside the
// assembled text.
func RewriteReport(report, artifactName string, assembled []string) string {
	if artifactName == "" {
		return report
	}

	// The leading group rejects matches where the artifact name is merely a
	// suffix of a longer file name (e.g. "lib-app.js" vs "app.js").
	re := regexp.MustCompile(`(^|[^A-Za-z0-9_.\-/\\])` + regexp.QuoteMeta(artifactName) + `:(\d+)`)

	return re.ReplaceAllStringFunc(report, func(tok string) string {
		sep := strings.Index(tok, artifactName)
		prefix := tok[:sep]
		lineStr := tok[strings.LastIndex(tok, ":")+1:]

		line, err := strconv.Atoi(lineStr)
		if err != nil {
			return tok
		}
		pos, ok := Locate(line, assembled)
		if !ok {
			return tok
		}
		return fmt.Sprintf("%s[%s:%d]", prefix, pos.Path, pos.Line)
	})
}
