// SPDX-License-Identifier: MPL-2.0

// Package tree implements the live include tree: one node per file in the
// include graph, kept consistent with on-disk edits by rescanning directive
// call sites and reconciling each node's children against the fresh scan.
// All tree mutation is serialized onto a single engine goroutine, so
// reconciliation never races and needs no locks.
package tree

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/kartikk221/application-compiler/internal/watch"
	"github.com/kartikk221/application-compiler/pkg/fspath"

	"github.com/charmbracelet/log"
)

// DefaultKeyword is the directive keyword recognized when none is
// configured.
const DefaultKeyword = "include"

type (
	// Events carries the lifecycle callbacks exposed to the embedding
	// application. All fields are optional. Callbacks fire on the engine
	// goroutine (or on the constructing goroutine during the initial build)
	// and are never invoked concurrently.
	Events struct {
		// Initialized fires the first time a node completes reconciliation.
		Initialized func(hierarchy string)
		// Changed fires on every subsequent reconciliation of a node.
		Changed func(hierarchy string)
		// Destroyed fires when a node is torn down.
		Destroyed func(hierarchy string)
		// Error receives read failures, inclusion cycles, and watch errors.
		// Errors degrade the affected subtree; they are never thrown back
		// across the engine's surface.
		Error func(path string, err error)
	}

	// Options configures an Engine.
	Options struct {
		// Root is the canonical absolute path of the root file (required).
		Root string
		// Keyword is the directive keyword; empty means DefaultKeyword.
		Keyword string
		// Watcher enables live reloading when non-nil. A nil Watcher builds
		// a one-shot tree that never refreshes.
		Watcher *watch.Multiplexer
		// Events are the lifecycle callbacks.
		Events Events
		// Recalibrated fires after a root-level recalibration completes,
		// i.e. whenever the assembled output may have changed.
		Recalibrated func()
		// Logger is used for debug output. nil defaults to a stderr logger.
		Logger *log.Logger
	}

	// Engine owns the root node and the serialized task loop that all
	// reload/reconcile work runs on.
	Engine struct {
		keyword      string
		watcher      *watch.Multiplexer
		events       Events
		recalibrated func()
		logger       *log.Logger

		root    *Node
		tasks   chan func()
		started atomic.Bool
	}
)

// New builds the include tree rooted at opts.Root. The initial build runs
// synchronously on the calling goroutine: when New returns, every reachable
// file has been read, scanned, and reconciled, and the tree is ready for
// Assemble. With a Watcher configured, call Run to start processing
// reloads.
func New(opts Options) (*Engine, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("tree: root path is required")
	}

	keyword := opts.Keyword
	if keyword == "" {
		keyword = DefaultKeyword
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "tree"})
	}

	e := &Engine{
		keyword:      keyword,
		watcher:      opts.Watcher,
		events:       opts.Events,
		recalibrated: opts.Recalibrated,
		logger:       logger,
		tasks:        make(chan func(), 128),
	}

	e.root = newNode(e, nil, fspath.Normalize(opts.Root))
	return e, nil
}

// Run drains the engine's task queue until ctx is cancelled. Every watch
// notification is processed to completion (reload, rescan, reconcile,
// recalibrate) before the next one starts. Run must be called exactly once.
func (e *Engine) Run(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return fmt.Errorf("tree: Run called more than once")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-e.tasks:
			fn()
		}
	}
}

// Post schedules fn onto the engine goroutine without waiting for it.
func (e *Engine) Post(fn func()) {
	e.tasks <- fn
}

// Do runs fn on the engine goroutine and waits for it to complete. It is
// the safe way for external callers to read tree state while Run is active.
func (e *Engine) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case e.tasks <- func() { fn(); close(done) }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Root returns the root node.
func (e *Engine) Root() *Node {
	return e.root
}

// Chunks builds the root's chunk representation.
func (e *Engine) Chunks() *Chunk {
	return e.root.Chunks()
}

// Assemble flattens the whole tree into the assembled text.
func (e *Engine) Assemble() string {
	return Stringify(e.Chunks(), 0)
}

// Close tears the tree down, unsubscribing every watch registration and
// firing Destroyed events leaf-to-root.
func (e *Engine) Close() {
	e.root.destroy()
}

// reportError forwards an error to the configured sink, falling back to the
// logger.
func (e *Engine) reportError(path string, err error) {
	if e.events.Error != nil {
		e.events.Error(path, err)
		return
	}
	e.logger.Error("tree error", "path", path, "err", err)
}
