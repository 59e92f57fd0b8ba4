// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kartikk221/application-compiler/internal/config"
	"github.com/kartikk221/application-compiler/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `appc config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage appc configuration",
		Long: `Manage appc configuration.

Configuration is stored in:
  - Linux: ~/.config/appc/config.cue
  - macOS: ~/Library/Application Support/appc/config.cue
  - Windows: %APPDATA%\appc\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), app, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{})
			if err != nil {
				return err
			}

			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{})
	if err != nil {
		rendered, _ := issue.Get(issue.ConfigLoadFailedId).Render("dark")
		fmt.Fprint(app.stderr, rendered)
		return err
	}

	keyStyle := PathStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(app.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(app.stdout)

	// Derive the config file path from the standard config directory; the
	// provider does not cache resolved paths.
	cfgDir, dirErr := config.ConfigDir()
	cfgPath := ""
	if dirErr == nil {
		cfgPath = cfgDir + "/config.cue"
	}
	if cfgPath != "" && fileExistsCheck(cfgPath) {
		fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Config file"), cfgPath)
	} else {
		fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(app.stdout)

	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("keyword"), valueStyle.Render(string(cfg.Keyword)))
	fmt.Fprintf(app.stdout, "%s: %s ms\n", keyStyle.Render("watch_delay"), valueStyle.Render(strconv.Itoa(int(cfg.WatchDelay))))
	fmt.Fprintf(app.stdout, "%s: %s ms\n", keyStyle.Render("settle_delay"), valueStyle.Render(strconv.Itoa(int(cfg.SettleDelay))))

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("write"))
	if cfg.Write.Dir == "" {
		fmt.Fprintf(app.stdout, "  dir: %s\n", SubtitleStyle.Render("(writing disabled)"))
	} else {
		fmt.Fprintf(app.stdout, "  dir: %s\n", valueStyle.Render(string(cfg.Write.Dir)))
	}
	if cfg.Write.Name == "" {
		fmt.Fprintf(app.stdout, "  name: %s\n", SubtitleStyle.Render("(derived from root file)"))
	} else {
		fmt.Fprintf(app.stdout, "  name: %s\n", valueStyle.Render(string(cfg.Write.Name)))
	}
	fmt.Fprintf(app.stdout, "  delay: %s ms\n", valueStyle.Render(strconv.Itoa(int(cfg.Write.Delay))))
	if len(cfg.Write.Check) == 0 {
		fmt.Fprintf(app.stdout, "  check: %s\n", SubtitleStyle.Render("(disabled)"))
	} else {
		fmt.Fprintf(app.stdout, "  check: %s\n", valueStyle.Render(strings.Join(cfg.Write.Check, " ")))
	}
	fmt.Fprintf(app.stdout, "  relative_errors: %s\n", valueStyle.Render(strconv.FormatBool(cfg.Write.RelativeErrors)))

	return nil
}

func initConfig(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	if err = config.CreateDefaultConfig(); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s Created default configuration at %s/config.cue\n", SuccessStyle.Render("✓"), cfgDir)
	return nil
}

func showConfigPath(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(app.stdout, "Config file: %s/config.cue\n", cfgDir)
	return nil
}

func setConfigValue(ctx context.Context, app *App, key, value string) error {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{})
	if err != nil {
		return err
	}

	parseInterval := func(name string) (config.Interval, error) {
		n, convErr := strconv.Atoi(value)
		if convErr != nil || n < 0 {
			return 0, fmt.Errorf("invalid %s: must be a non-negative integer (milliseconds)", name)
		}
		return config.Interval(n), nil
	}

	switch key {
	case "keyword":
		cfg.Keyword = config.DirectiveKeyword(value)

	case "watch_delay":
		iv, parseErr := parseInterval(key)
		if parseErr != nil {
			return parseErr
		}
		cfg.WatchDelay = iv

	case "settle_delay":
		iv, parseErr := parseInterval(key)
		if parseErr != nil {
			return parseErr
		}
		cfg.SettleDelay = iv

	case "write.dir":
		cfg.Write.Dir = config.OutputDirPath(value)

	case "write.name":
		cfg.Write.Name = config.OutputFileName(value)

	case "write.delay":
		iv, parseErr := parseInterval(key)
		if parseErr != nil {
			return parseErr
		}
		cfg.Write.Delay = iv

	case "write.relative_errors":
		cfg.Write.RelativeErrors = value == "true" || value == "1"

	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: keyword, watch_delay, settle_delay, write.dir, write.name, write.delay, write.relative_errors", key)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return fmt.Errorf("invalid value for %s: %w", key, errs[0])
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}

// fileExistsCheck checks if a file exists and is not a directory.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
