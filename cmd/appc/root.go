// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kartikk221/application-compiler/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// Verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// app is the composition root shared by all command handlers.
	app = NewApp(Dependencies{})

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "appc",
		Short: "A live compiler for include-based source trees",
		Long: TitleStyle.Render("appc") + SubtitleStyle.Render(" - A live compiler for include-based source trees") + `

appc flattens a tree of source files connected by include directives
(lines such as 'include("./routes.js");') into a single compiled file.
In watch mode it keeps the compiled file up to date as any included
file changes, and can run a syntax checker after every write.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Split your application across files joined by include directives
  2. Compile once with: appc build app.js
  3. Or keep compiling live with: appc watch app.js --out ./dist

` + SubtitleStyle.Render("Examples:") + `
  appc build app.js              Print the compiled output to stdout
  appc build app.js -o dist      Write dist/app.compiled.js once
  appc watch app.js -o dist      Recompile on every change
  appc config show               Show current configuration`,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/appc/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(newBuildCommand(app))
	rootCmd.AddCommand(newWatchCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// newLogger builds the shared CLI logger. Verbose mode lowers the level
// to debug so watch internals become visible.
func newLogger() *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "appc",
		Level:  level,
	})
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}
