// SPDX-License-Identifier: MPL-2.0

package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/kartikk221/application-compiler/internal/sourcemap"
)

// filePlaceholder in a checker argv expands to the artifact path.
const filePlaceholder = "{file}"

// stubHeader marks an artifact that was replaced after a failed syntax
// check.
const stubHeader = "// SYNTAX_CHECK_FAILED | "

// CheckError reports a failed post-write syntax check. Trace holds the
// checker's stderr, already relativized when configured.
type CheckError struct {
	Cmd   string
	Trace string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("syntax check %q failed:\n%s", e.Cmd, e.Trace)
}

// runCheck executes the configured checker against the written artifact.
// lines is the assembled text the artifact was written from, used to
// relativize the checker's trace. Runs off the engine goroutine; any
// follow-up mutation is posted back.
func (c *Compiler) runCheck(lines []string) {
	argv := make([]string, len(c.cfg.Write.Check))
	for i, a := range c.cfg.Write.Check {
		argv[i] = strings.ReplaceAll(a, filePlaceholder, c.artifact)
	}

	var stderr bytes.Buffer
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		// Checker could not run at all (missing binary, permissions).
		// The artifact is intact, so leave it alone.
		c.eng.Post(func() {
			c.reportError(c.artifact, fmt.Errorf("syntax checker %q: %w", argv[0], err))
		})
		return
	}

	trace := stderr.String()
	if c.cfg.Write.RelativeErrors {
		trace = sourcemap.RewriteReport(trace, c.artifactName, lines)
	}
	stub := c.stubFor(trace)

	c.eng.Post(func() {
		if err := os.WriteFile(c.artifact, []byte(stub), 0o644); err != nil {
			c.reportError(c.artifact, &WriteError{Path: c.artifact, Err: err})
		}
		c.reportError(c.artifact, &CheckError{Cmd: strings.Join(argv, " "), Trace: trace})
	})
}

// stubFor renders the replacement artifact for a failed check: it prints
// the trace and exits non-zero so a supervisor sees a clean failure
// instead of broken output.
func (c *Compiler) stubFor(trace string) string {
	var b strings.Builder
	b.WriteString(stubHeader)
	b.WriteString(c.artifactName)
	b.WriteString("\n")
	b.WriteString("console.error(")
	b.WriteString(strconv.Quote(trace))
	b.WriteString(");\n")
	b.WriteString("process.exit(1);\n")
	return b.String()
}
