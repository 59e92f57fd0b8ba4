// SPDX-License-Identifier: MPL-2.0

package sourcemap

// Position is the result of a reverse lookup: the originating file and the
// 0-indexed line within that file's wrapped block, counted from its start
// boundary.
type Position struct {
	Path string
	Line int
}

// Locate maps a 1-based line number in assembled text back to the file that
// produced it. Two cursors walk outward from the target line, one upward and
// one downward, and the first boundary marker either cursor reaches decides
// the match: a start boundary puts the target at exactly the walked distance
// into its block, an end boundary puts it at the block's total line count
// minus the distance minus one. The upward cursor is checked first each
// step, so equidistant boundaries resolve upward. Returns false when the
// assembled lines contain no boundary within reach.
func Locate(line int, assembled []string) (Position, bool) {
	at := line - 1
	if at < 0 || at >= len(assembled) {
		return Position{}, false
	}

	for dist := 0; ; dist++ {
		up := at - dist
		down := at + dist
		if up < 0 && down >= len(assembled) {
			return Position{}, false
		}

		if up >= 0 {
			if b, ok := ParseBoundary(assembled[up]); ok {
				return resolve(b, dist), true
			}
		}
		if down < len(assembled) {
			if b, ok := ParseBoundary(assembled[down]); ok {
				return resolve(b, dist), true
			}
		}
	}
}

func resolve(b Boundary, dist int) Position {
	if b.Kind == StartBoundary {
		return Position{Path: b.Path, Line: dist}
	}
	return Position{Path: b.Path, Line: b.TotalLines - dist - 1}
}
