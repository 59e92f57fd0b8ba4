// SPDX-License-Identifier: MPL-2.0

// Package watch multiplexes filesystem change notifications for individual
// files. Any number of logical subscribers can attach to the same physical
// path while the package maintains at most one OS-level watch per containing
// directory. Raw events are debounced per path and allowed to settle before
// callbacks fire, so editors that write a file several times in quick
// succession produce a single notification.
package watch

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kartikk221/application-compiler/pkg/fspath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const (
	// DefaultDelay is the per-path debounce window: a raw event is forwarded
	// only if at least this much time has passed since the last forwarded
	// event for the same path.
	DefaultDelay = 250 * time.Millisecond

	// DefaultSettle is the pause between a forwarded event and its callbacks
	// actually running, absorbing editors that perform several rapid writes
	// per save.
	DefaultSettle = 50 * time.Millisecond
)

// noisePatterns match the transient artifacts editors drop next to the file
// they are saving. Events for these names never reach subscribers.
var noisePatterns = []string{
	"*.swp",
	"*.swo",
	"*~",
	".DS_Store",
	".#*",
	"4913", // vim's permission probe
}

type (
	// Callback receives the canonical path whose content changed.
	Callback func(path string)

	// Config holds the parameters for a Multiplexer.
	Config struct {
		// Delay is the debounce window. Zero or negative values fall back to
		// DefaultDelay.
		Delay time.Duration

		// Settle is the post-debounce settle delay. Negative values fall back
		// to DefaultSettle; zero is honored (callbacks fire immediately).
		Settle time.Duration

		// OnError receives watch-level failures keyed by the affected path
		// (empty when the failure is not attributable to one path). A nil
		// sink discards them after logging.
		OnError func(path string, err error)

		// Logger is used for debug output. nil defaults to a stderr logger.
		Logger *log.Logger
	}

	registration struct {
		id int
		fn Callback
	}

	// subscription is the bookkeeping entry for one physical path: the
	// timestamp of the last forwarded event plus every logical subscriber.
	subscription struct {
		path string // canonical file path
		dir  string // canonical containing directory
		last time.Time
		regs []registration
	}

	// Multiplexer fans filesystem events out to per-path subscribers.
	// Subscribe and Unsubscribe may be called before or during Run; Run must
	// be called exactly once.
	Multiplexer struct {
		cfg    Config
		fsw    *fsnotify.Watcher
		delay  time.Duration
		settle time.Duration
		logger *log.Logger

		mu     sync.Mutex
		subs   map[string]*subscription
		dirs   map[string]int // directory -> live subscription count
		nextID int

		started atomic.Bool
	}
)

// New creates a Multiplexer from the given Config.
func New(cfg Config) (*Multiplexer, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	delay := cfg.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	settle := cfg.Settle
	if settle < 0 {
		settle = DefaultSettle
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "watch"})
	}

	return &Multiplexer{
		cfg:    cfg,
		fsw:    fsw,
		delay:  delay,
		settle: settle,
		logger: logger,
		subs:   make(map[string]*subscription),
		dirs:   make(map[string]int),
	}, nil
}

// Subscribe registers fn for change notifications on path (canonical form)
// and returns the registration id to pass to Unsubscribe. The underlying
// OS-level watch for the path's directory is created lazily on first use and
// shared by all subsequent subscribers under that directory.
func (m *Multiplexer) Subscribe(path string, fn Callback) (int, error) {
	path = fspath.Normalize(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.subs[path]
	if !ok {
		dir := fspath.Dir(path)
		if m.dirs[dir] == 0 {
			if err := m.fsw.Add(dir); err != nil {
				return 0, fmt.Errorf("watch: add %q: %w", dir, err)
			}
		}
		m.dirs[dir]++
		sub = &subscription{path: path, dir: dir}
		m.subs[path] = sub
	}

	m.nextID++
	id := m.nextID
	sub.regs = append(sub.regs, registration{id: id, fn: fn})
	return id, nil
}

// Unsubscribe removes a registration. When the last registration for a path
// is removed its bookkeeping entry is dropped, and when no subscription
// under a directory remains the OS-level watch is closed. Unknown ids are a
// no-op.
func (m *Multiplexer) Unsubscribe(path string, id int) {
	path = fspath.Normalize(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.subs[path]
	if !ok {
		return
	}

	for i, reg := range sub.regs {
		if reg.id == id {
			sub.regs = append(sub.regs[:i], sub.regs[i+1:]...)
			break
		}
	}
	if len(sub.regs) > 0 {
		return
	}

	delete(m.subs, path)
	m.dirs[sub.dir]--
	if m.dirs[sub.dir] <= 0 {
		delete(m.dirs, sub.dir)
		if err := m.fsw.Remove(sub.dir); err != nil {
			// The directory may already be gone; nothing to tear down then.
			m.logger.Debug("remove watch", "dir", sub.dir, "err", err)
		}
	}
}

// Run blocks until ctx is cancelled, routing filesystem events to
// subscribers. It returns nil on clean cancellation and propagates fatal
// watcher errors. Run must be called exactly once.
func (m *Multiplexer) Run(ctx context.Context) error {
	if !m.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watch: Run called more than once")
	}

	defer func() {
		if err := m.fsw.Close(); err != nil {
			m.logger.Error("close fsnotify", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-m.fsw.Events:
			if !ok {
				return fmt.Errorf("watch: fsnotify event channel closed unexpectedly")
			}
			m.dispatch(evt)

		case err, ok := <-m.fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			m.report("", err)
		}
	}
}

// dispatch applies noise filtering, the debounce window, and the settle
// delay, then schedules subscriber callbacks for the affected path.
func (m *Multiplexer) dispatch(evt fsnotify.Event) {
	// Chmod-only events carry no content change (common on macOS and from
	// some sync tools).
	if evt.Op == fsnotify.Chmod {
		return
	}

	name := fspath.Normalize(evt.Name)
	if isNoise(fspath.Base(name)) {
		return
	}

	m.mu.Lock()
	sub, ok := m.subs[name]
	if !ok {
		m.mu.Unlock()
		return
	}

	now := time.Now()
	if now.Sub(sub.last) < m.delay {
		m.mu.Unlock()
		return
	}
	// Stamp before the callbacks run so a burst from the same physical
	// change cannot be forwarded twice.
	sub.last = now

	regs := make([]registration, len(sub.regs))
	copy(regs, sub.regs)
	m.mu.Unlock()

	m.logger.Debug("change", "path", name, "op", evt.Op.String())

	time.AfterFunc(m.settle, func() {
		for _, reg := range regs {
			reg.fn(name)
		}
	})
}

// report forwards a watch failure to the configured sink.
func (m *Multiplexer) report(path string, err error) {
	if m.cfg.OnError != nil {
		m.cfg.OnError(path, err)
		return
	}
	m.logger.Error("watch error", "path", path, "err", err)
}

// isNoise reports whether base matches any editor-noise pattern.
func isNoise(base string) bool {
	for _, pat := range noisePatterns {
		if matched, err := doublestar.Match(pat, base); err == nil && matched {
			return true
		}
	}
	return false
}
