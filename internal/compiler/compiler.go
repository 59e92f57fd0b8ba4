// SPDX-License-Identifier: MPL-2.0

// Package compiler wires the live include tree to the outside world: it
// owns the watch multiplexer and the tree engine, assembles output on
// demand, keeps a written artifact up to date behind a rate limiter, runs
// the configured post-write syntax check, and relativizes error reports
// through the position mapper.
package compiler

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/kartikk221/application-compiler/internal/tree"
	"github.com/kartikk221/application-compiler/internal/watch"
	"github.com/kartikk221/application-compiler/pkg/fspath"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// DefaultWriteDelay is the minimum spacing between artifact writes.
const DefaultWriteDelay = 250 * time.Millisecond

type (
	// WriteConfig controls the artifact written in live mode.
	WriteConfig struct {
		// Dir is the output directory; empty disables live writing.
		Dir string
		// Name is the artifact file name; empty derives it from the root
		// file name.
		Name string
		// Delay is the write rate limit. Zero or negative falls back to
		// DefaultWriteDelay.
		Delay time.Duration
		// Check is the syntax-checker argv; "{file}" expands to the
		// artifact path. Empty disables checking.
		Check []string
		// RelativeErrors rewrites checker traces to original-source
		// positions before they are surfaced.
		RelativeErrors bool
	}

	// Config configures a Compiler.
	Config struct {
		// Root is the root file path (required; canonicalized by New).
		Root string
		// Keyword is the directive keyword; empty means tree.DefaultKeyword.
		Keyword string
		// WatchDelay and SettleDelay configure the watch multiplexer.
		WatchDelay  time.Duration
		SettleDelay time.Duration
		// Write controls live artifact output.
		Write WriteConfig
		// Events receives tree lifecycle callbacks.
		Events tree.Events
		// Recalibrated fires after every root recalibration (after the
		// write scheduler has seen it). Optional.
		Recalibrated func()
		// Logger defaults to a stderr logger.
		Logger *log.Logger
	}

	// Compiler is the live compilation pipeline for one root file.
	Compiler struct {
		cfg    Config
		logger *log.Logger
		mux    *watch.Multiplexer
		eng    *tree.Engine

		artifact     string // canonical artifact path; "" when writing is off
		artifactName string
		writeDelay   time.Duration

		// Write scheduler state, only touched on the engine goroutine.
		lastWrite time.Time
		deferred  bool

		exit func(int) // overridable for tests
	}
)

// Build performs a one-shot compilation of cfg.Root and returns the
// assembled text. No watches are registered and nothing is written; read
// and cycle failures degrade the affected subtree and are reported through
// cfg.Events.Error.
func Build(cfg Config) (string, error) {
	root, err := fspath.Abs(cfg.Root)
	if err != nil {
		return "", err
	}

	eng, err := tree.New(tree.Options{
		Root:    root,
		Keyword: cfg.Keyword,
		Events:  cfg.Events,
		Logger:  cfg.Logger,
	})
	if err != nil {
		return "", err
	}
	return eng.Assemble(), nil
}

// New builds the live pipeline: multiplexer, engine, and the initial tree.
// When writing is configured the first artifact is written before New
// returns. Call Run to start processing filesystem events.
func New(cfg Config) (*Compiler, error) {
	root, err := fspath.Abs(cfg.Root)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "compiler"})
	}

	c := &Compiler{
		cfg:        cfg,
		logger:     logger,
		writeDelay: cfg.Write.Delay,
		exit:       os.Exit,
	}
	if c.writeDelay <= 0 {
		c.writeDelay = DefaultWriteDelay
	}

	if cfg.Write.Dir != "" {
		name := cfg.Write.Name
		if name == "" {
			name = DeriveArtifactName(root)
		}
		outDir, err := fspath.Abs(cfg.Write.Dir)
		if err != nil {
			return nil, err
		}
		c.artifact = outDir + "/" + name
		c.artifactName = name
	}

	mux, err := watch.New(watch.Config{
		Delay:   cfg.WatchDelay,
		Settle:  cfg.SettleDelay,
		Logger:  logger,
		OnError: c.reportError,
	})
	if err != nil {
		return nil, err
	}
	c.mux = mux

	eng, err := tree.New(tree.Options{
		Root:         root,
		Keyword:      cfg.Keyword,
		Watcher:      mux,
		Events:       cfg.Events,
		Recalibrated: c.onRecalibrated,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	c.eng = eng

	if c.artifact != "" {
		c.flush()
	}
	return c, nil
}

// Run drives the pipeline until ctx is cancelled: one goroutine routes
// filesystem events, one serializes tree work. Returns the first fatal
// error from either.
func (c *Compiler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.mux.Run(ctx) })
	g.Go(func() error { return c.eng.Run(ctx) })
	return g.Wait()
}

// Snapshot returns the current assembled text. Safe to call while Run is
// active; the read is serialized onto the engine goroutine.
func (c *Compiler) Snapshot(ctx context.Context) (string, error) {
	var text string
	if err := c.eng.Do(ctx, func() { text = c.eng.Assemble() }); err != nil {
		return "", err
	}
	return text, nil
}

// ArtifactPath returns the canonical artifact path, or "" when live
// writing is disabled.
func (c *Compiler) ArtifactPath() string {
	return c.artifact
}

// Close tears down the include tree and its watch registrations.
func (c *Compiler) Close() {
	c.eng.Close()
}

// DeriveArtifactName derives the default artifact file name from the root
// file name: "app.js" becomes "app.compiled.js".
func DeriveArtifactName(root string) string {
	base := fspath.Base(root)
	if dot := strings.LastIndexByte(base, '.'); dot > 0 {
		return base[:dot] + ".compiled" + base[dot:]
	}
	return base + ".compiled"
}

// onRecalibrated runs on the engine goroutine after every root-level
// recalibration. Recalibrations fired while the initial tree is still
// being built are absorbed by the explicit first flush in New.
func (c *Compiler) onRecalibrated() {
	if c.eng == nil {
		return
	}
	if c.artifact != "" {
		c.scheduleWrite()
	}
	if c.cfg.Recalibrated != nil {
		c.cfg.Recalibrated()
	}
}

func (c *Compiler) reportError(path string, err error) {
	if c.cfg.Events.Error != nil {
		c.cfg.Events.Error(path, err)
		return
	}
	c.logger.Error("compile error", "path", path, "err", err)
}

