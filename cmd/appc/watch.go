// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/kartikk221/application-compiler/internal/compiler"
	"github.com/kartikk221/application-compiler/internal/tree"

	"github.com/spf13/cobra"
)

// newWatchCommand creates the `appc watch` command.
func newWatchCommand(app *App) *cobra.Command {
	var (
		outDir  string
		outName string
		keyword string
	)

	cmd := &cobra.Command{
		Use:   "watch <root-file>",
		Short: "Recompile continuously as included files change",
		Long: `Compile an include tree and keep the artifact up to date.

The compiled file is rewritten whenever the root file or any included
file changes, rate limited by write.delay. When write.check is
configured the checker runs after every write and syntax failures
replace the artifact with a stub that reports the error at runtime.

Watching runs until interrupted (Ctrl+C).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), app, args[0], outDir, outName, keyword)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "directory the artifact is written into (default from config)")
	cmd.Flags().StringVar(&outName, "name", "", "artifact file name (default derives from the root file name)")
	cmd.Flags().StringVar(&keyword, "keyword", "", "include directive keyword (default from config)")

	return cmd
}

func runWatch(ctx context.Context, app *App, root, outDir, outName, keyword string) error {
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
	if outDir == "" {
		return fmt.Errorf("no output directory configured: pass --out or set write.dir in the config")
	}

	events := tree.Events{
		Initialized: func(hierarchy string) {
			fmt.Fprintln(app.stdout, SubtitleStyle.Render("loaded ")+PathStyle.Render(hierarchy))
		},
		Changed: func(hierarchy string) {
			fmt.Fprintln(app.stdout, SubtitleStyle.Render("changed ")+PathStyle.Render(hierarchy))
		},
		Destroyed: func(hierarchy string) {
			fmt.Fprintln(app.stdout, SubtitleStyle.Render("removed ")+PathStyle.Render(hierarchy))
		},
		Error: func(path string, err error) {
			fmt.Fprintln(app.stderr, ErrorStyle.Render("✗ ")+PathStyle.Render(path)+": "+err.Error())
		},
	}

	c, err := compiler.New(compiler.Config{
		Root:        root,
		Keyword:     keyword,
		WatchDelay:  cfg.WatchDelay.Duration(),
		SettleDelay: cfg.SettleDelay.Duration(),
		Write: compiler.WriteConfig{
			Dir:            outDir,
			Name:           outName,
			Delay:          cfg.Write.Delay.Duration(),
			Check:          []string(cfg.Write.Check),
			RelativeErrors: cfg.Write.RelativeErrors,
		},
		Events: events,
		Logger: newLogger(),
	})
	if err != nil {
		fmt.Fprintln(app.stderr, ErrorStyle.Render("error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}
	defer c.Close()

	fmt.Fprintln(app.stdout, SuccessStyle.Render("✓")+" watching "+PathStyle.Render(root)+
		", writing "+PathStyle.Render(c.ArtifactPath()))

	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return &ExitError{Code: 1, Err: err}
	}
	return nil
}
