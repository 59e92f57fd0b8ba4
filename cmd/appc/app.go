// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/kartikk221/application-compiler/internal/config"
	"github.com/kartikk221/application-compiler/pkg/types"
)

type (
	// ConfigProvider loads configuration using explicit options.
	// This abstraction enables testing with custom config sources or mock implementations.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// App wires CLI services and shared dependencies. All Cobra command
	// handlers receive an App reference and load configuration through it.
	App struct {
		Config ConfigProvider
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp. Tests can supply mock
	// implementations to isolate specific service behavior.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
	}
)

// NewApp builds an App, filling nil dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	return &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

// loadConfig loads configuration, honoring the global --config flag.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	return a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: types.FilesystemPath(cfgFile),
	})
}
