// SPDX-License-Identifier: MPL-2.0

package compiler

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/kartikk221/application-compiler/internal/sourcemap"
)

// RelativizeReport rewrites artifact-relative positions in report to
// original-source positions against the current assembled text. Tokens
// that do not name the artifact pass through untouched.
func (c *Compiler) RelativizeReport(ctx context.Context, report string) (string, error) {
	if c.artifactName == "" {
		return report, nil
	}
	text, err := c.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return sourcemap.RewriteReport(report, c.artifactName, strings.Split(text, "\n")), nil
}

// HandleRuntimeError is the hook for failures raised by the running
// artifact itself. The report is relativized and passed to handler; a nil
// handler prints the relativized trace to stderr and terminates the
// process with a non-zero status.
func (c *Compiler) HandleRuntimeError(ctx context.Context, report string, handler func(string)) error {
	trace, err := c.RelativizeReport(ctx, report)
	if err != nil {
		return err
	}
	if handler != nil {
		handler(trace)
		return nil
	}
	fmt.Fprintln(os.Stderr, trace)
	c.exit(1)
	return nil
}

// HookRuntimeErrors returns a callback suitable for installing as the
// embedding process's global error hook. Each raw trace it receives is
// handled through HandleRuntimeError with the given handler.
func (c *Compiler) HookRuntimeErrors(handler func(string)) func(string) {
	return func(report string) {
		if err := c.HandleRuntimeError(context.Background(), report, handler); err != nil {
			c.logger.Error("relativize runtime error", "err", err)
		}
	}
}
