// SPDX-License-Identifier: MPL-2.0

package compiler

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// WriteError reports a failed artifact write.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing artifact %q: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// scheduleWrite requests an artifact write. Writes are spaced at least
// writeDelay apart; a request arriving early arms a single deferred retry
// that absorbs all requests landing before it fires. Runs on the engine
// goroutine.
func (c *Compiler) scheduleWrite() {
	elapsed := time.Since(c.lastWrite)
	if elapsed >= c.writeDelay {
		c.flush()
		return
	}
	if c.deferred {
		return
	}
	c.deferred = true
	time.AfterFunc(c.writeDelay-elapsed, func() {
		c.eng.Post(c.flush)
	})
}

// flush assembles the tree and rewrites the artifact, then kicks off the
// configured syntax check. Runs on the engine goroutine.
func (c *Compiler) flush() {
	c.deferred = false
	c.lastWrite = time.Now()

	text := c.eng.Assemble()
	if err := os.WriteFile(c.artifact, []byte(text), 0o644); err != nil {
		c.reportError(c.artifact, &WriteError{Path: c.artifact, Err: err})
		return
	}
	c.logger.Debug("artifact written", "path", c.artifact, "bytes", len(text))

	if len(c.cfg.Write.Check) > 0 {
		lines := strings.Split(text, "\n")
		go c.runCheck(lines)
	}
}
