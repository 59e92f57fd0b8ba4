// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kartikk221/application-compiler/internal/compiler"
	"github.com/kartikk221/application-compiler/internal/config"
	"github.com/kartikk221/application-compiler/internal/tree"

	"github.com/spf13/cobra"
)

// newBuildCommand creates the `appc build` command.
func newBuildCommand(app *App) *cobra.Command {
	var (
		outDir  string
		outName string
		keyword string
		strict  bool
	)

	cmd := &cobra.Command{
		Use:   "build <root-file>",
		Short: "Compile an include tree once",
		Long: `Compile an include tree once and exit.

Without --out the compiled output is printed to stdout. With --out (or
a write.dir configured) the artifact is written into the given
directory instead, named after the root file unless --name is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), app, args[0], outDir, outName, keyword, strict)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "write the artifact into this directory instead of stdout")
	cmd.Flags().StringVar(&outName, "name", "", "artifact file name (default derives from the root file name)")
	cmd.Flags().StringVar(&keyword, "keyword", "", "include directive keyword (default from config)")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any include cannot be compiled")

	return cmd
}

func runBuild(ctx context.Context, app *App, root, outDir, outName, keyword string, strict bool) error {
	cfg := loadConfigOrDefaults(ctx, app)

	if keyword == "" {
		keyword = string(cfg.Keyword)
	}
	if outDir == "" {
		outDir = string(cfg.Write.Dir)
	}
	if outName == "" {
		outName = string(cfg.Write.Name)
	}

	// Degraded includes (unreadable files, cycles) are reported as warnings;
	// the compiled output still carries placeholders for them.
	degraded := 0
	events := tree.Events{
		Error: func(path string, err error) {
			degraded++
			fmt.Fprintln(app.stderr, WarningStyle.Render("warning: ")+PathStyle.Render(path)+": "+err.Error())
		},
	}

	text, err := compiler.Build(compiler.Config{
		Root:    root,
		Keyword: keyword,
		Events:  events,
		Logger:  newLogger(),
	})
	if err != nil {
		fmt.Fprintln(app.stderr, ErrorStyle.Render("error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}

	if strict && degraded > 0 {
		return &ExitError{Code: 1, Err: fmt.Errorf("%d include(s) could not be compiled", degraded)}
	}

	if outDir == "" {
		fmt.Fprint(app.stdout, text)
		return nil
	}

	if outName == "" {
		outName = compiler.DeriveArtifactName(root)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("create output directory: %w", err)}
	}
	artifact := filepath.Join(outDir, outName)
	if err := os.WriteFile(artifact, []byte(text), 0o644); err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("write artifact: %w", err)}
	}

	fmt.Fprintln(app.stdout, SuccessStyle.Render("✓")+" wrote "+PathStyle.Render(artifact))
	if degraded > 0 {
		fmt.Fprintln(app.stderr, WarningStyle.Render(fmt.Sprintf("%d include(s) could not be compiled", degraded)))
	}
	return nil
}

// loadConfigOrDefaults loads configuration, falling back to defaults with a
// warning when loading fails. Build and watch should still work with a broken
// user config file.
func loadConfigOrDefaults(ctx context.Context, app *App) *config.Config {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		fmt.Fprintln(app.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		return config.DefaultConfig()
	}
	return cfg
}
