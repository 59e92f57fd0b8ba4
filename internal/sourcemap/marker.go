// SPDX-License-Identifier: MPL-2.0

// Package sourcemap implements the boundary-marker protocol that brackets
// every file's content inside assembled output, and the reverse lookup that
// maps a line of assembled text back to the originating file and its local
// line number. The markers are plain single-line comments, so they survive
// verbatim in the written artifact and cost nothing at runtime.
package sourcemap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kartikk221/application-compiler/pkg/fspath"
)

// Marker field layout, bit-exact:
//
//	// START_FILE | <base_name> | <path> | <total_lines> LINES
//	// END_FILE | <base_name> | <path> | <total_lines> LINES
//
// total_lines is the line count of the wrapped block: the newline count of
// the raw file data plus three (the two marker lines and the structural line
// the data itself starts on).
const (
	markerComment = "// "
	startSentinel = "START_FILE"
	endSentinel   = "END_FILE"
	fieldSep      = " | "
	linesSuffix   = " LINES"
)

type (
	// BoundaryKind distinguishes the opening and closing marker of a block.
	BoundaryKind int

	// Boundary is a parsed marker line.
	Boundary struct {
		Kind       BoundaryKind
		Base       string
		Path       string
		TotalLines int
	}
)

const (
	// StartBoundary marks the line immediately before a file's content.
	StartBoundary BoundaryKind = iota
	// EndBoundary marks the line immediately after a file's content.
	EndBoundary
)

// TotalLines computes the marker line count for raw on-disk data.
func TotalLines(data string) int {
	return strings.Count(data, "\n") + 3
}

// StartMarker renders the opening boundary line for path.
func StartMarker(path string, totalLines int) string {
	return markerLine(startSentinel, path, totalLines)
}

// EndMarker renders the closing boundary line for path.
func EndMarker(path string, totalLines int) string {
	return markerLine(endSentinel, path, totalLines)
}

// Wrap brackets raw file data with its start and end boundary markers. The
// result is the canonical in-memory content of a live node, and the form in
// which the file's lines appear in assembled output.
func Wrap(path, data string) string {
	total := TotalLines(data)
	return StartMarker(path, total) + "\n" + data + "\n" + EndMarker(path, total)
}

func markerLine(sentinel, path string, totalLines int) string {
	return fmt.Sprintf("%s%s%s%s%s%s%s%d%s",
		markerComment, sentinel, fieldSep, fspath.Base(path), fieldSep, path, fieldSep, totalLines, linesSuffix)
}

// ParseBoundary decodes a marker line. Leading whitespace is tolerated so
// markers remain recognizable after indentation propagation. The second
// return value is false for any line that is not a well-formed marker.
func ParseBoundary(line string) (Boundary, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	rest, ok := strings.CutPrefix(trimmed, markerComment)
	if !ok {
		return Boundary{}, false
	}

	var kind BoundaryKind
	switch {
	case strings.HasPrefix(rest, startSentinel+fieldSep):
		kind = StartBoundary
		rest = rest[len(startSentinel+fieldSep):]
	case strings.HasPrefix(rest, endSentinel+fieldSep):
		kind = EndBoundary
		rest = rest[len(endSentinel+fieldSep):]
	default:
		return Boundary{}, false
	}

	fields := strings.Split(rest, fieldSep)
	if len(fields) != 3 {
		return Boundary{}, false
	}

	count, ok := strings.CutSuffix(fields[2], linesSuffix)
	if !ok {
		return Boundary{}, false
	}
	total, err := strconv.Atoi(count)
	if err != nil {
		return Boundary{}, false
	}

	return Boundary{Kind: kind, Base: fields[0], Path: fields[1], TotalLines: total}, true
}
