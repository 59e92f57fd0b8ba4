// SPDX-License-Identifier: MPL-2.0

package tree

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/kartikk221/application-compiler/internal/sourcemap"
	"github.com/kartikk221/application-compiler/pkg/fspath"
)

type (
	// childRef binds a child node to the number of pointers in this parent
	// that currently reference it. Several call sites resolving to the same
	// path share one child instance; the count tracks how many.
	childRef struct {
		node  *Node
		count int
	}

	// Node is one file in the include graph: its marker-wrapped content,
	// the directive pointers scanned from it, and the children those
	// pointers reference. Nodes are only ever touched on the engine
	// goroutine.
	Node struct {
		eng    *Engine
		parent *Node

		path string // canonical absolute path
		base string
		dir  string

		// hierarchy is the slash-joined chain of base names from the root
		// down to this node, used for human-readable event reporting.
		hierarchy string

		// ancestors holds the paths of every node on the chain from the
		// root to this node inclusive. A directive resolving into this set
		// is an inclusion cycle.
		ancestors map[string]struct{}

		content  string
		pointers []Pointer
		children map[string]*childRef

		watchID   int
		watching  bool
		loaded    bool
		destroyed bool
	}
)

// newNode creates the node for path, subscribes it to the engine's watcher,
// and performs its initial load. The root node (parent == nil) propagates a
// recalibration after loading; nodes created mid-reconciliation do not,
// since their creating parent propagates once its reconciliation completes.
func newNode(e *Engine, parent *Node, path string) *Node {
	n := &Node{
		eng:      e,
		parent:   parent,
		path:     path,
		base:     fspath.Base(path),
		dir:      fspath.Dir(path),
		children: make(map[string]*childRef),
	}

	if parent == nil {
		n.hierarchy = n.base
		n.ancestors = map[string]struct{}{path: {}}
	} else {
		n.hierarchy = parent.hierarchy + "/" + n.base
		n.ancestors = make(map[string]struct{}, len(parent.ancestors)+1)
		for p := range parent.ancestors {
			n.ancestors[p] = struct{}{}
		}
		n.ancestors[path] = struct{}{}
	}

	if e.watcher != nil {
		id, err := e.watcher.Subscribe(path, func(string) {
			e.Post(func() { n.reload(true) })
		})
		if err != nil {
			e.reportError(path, err)
		} else {
			n.watchID = id
			n.watching = true
		}
	}

	n.reload(parent == nil)
	return n
}

// reload reads the node's file, rewraps it in boundary markers, rescans for
// directives, and reconciles children against the fresh scan. A failed read
// degrades the node to an inert placeholder until the next successful read.
// When propagate is set, a recalibration notification bubbles to the root
// after reconciliation completes.
func (n *Node) reload(propagate bool) {
	if n.destroyed {
		return
	}

	data, err := os.ReadFile(filepath.FromSlash(n.path))
	if err != nil {
		n.eng.reportError(n.path, &ReadError{Path: n.path, Err: err})
		data = []byte("// UNREADABLE_FILE | " + n.path)
	}
	n.content = sourcemap.Wrap(n.path, string(data))

	ptrs, resolved := scanDirectives(n.content, n.eng.keyword, n.dir, n.ancestors, func(target string, line int) {
		n.eng.reportError(target, &CycleError{Path: target, In: n.path, Line: line})
	})
	n.reconcile(ptrs, resolved)

	if !n.loaded {
		n.loaded = true
		if n.eng.events.Initialized != nil {
			n.eng.events.Initialized(n.hierarchy)
		}
	} else if n.eng.events.Changed != nil {
		n.eng.events.Changed(n.hierarchy)
	}

	if propagate {
		n.recalibrate()
	}
}

// reconcile diffs the freshly scanned pointer set against the previous one.
// A previous pointer survives only if the new scan has a pointer at the
// same line resolving to the same path; every stale pointer releases its
// child reference, every new line acquires one (creating the child when no
// sibling line already holds it).
func (n *Node) reconcile(ptrs []Pointer, resolved map[string]struct{}) {
	fresh := make(map[int]Pointer, len(ptrs))
	for _, p := range ptrs {
		fresh[p.Line] = p
	}

	surviving := make([]Pointer, 0, len(ptrs))
	kept := make(map[int]struct{})
	for _, old := range n.pointers {
		if np, ok := fresh[old.Line]; ok && np.Path == old.Path {
			// Same line, same target: carry the pointer over with its
			// freshly scanned indentation.
			surviving = append(surviving, np)
			kept[old.Line] = struct{}{}
			continue
		}
		n.release(old.Path, resolved)
	}

	inserted := false
	for _, p := range ptrs {
		if _, ok := kept[p.Line]; ok {
			continue
		}
		ref := n.children[p.Path]
		if ref == nil {
			ref = &childRef{node: newNode(n.eng, n, p.Path)}
			n.children[p.Path] = ref
		}
		ref.count++
		surviving = append(surviving, p)
		inserted = true
	}

	if inserted {
		sort.Slice(surviving, func(i, j int) bool { return surviving[i].Line < surviving[j].Line })
	}
	n.pointers = surviving
}

// release drops one reference to the child at path. The child is destroyed
// only when its count reaches zero and no pointer in the fresh scan still
// resolves to it.
func (n *Node) release(path string, resolved map[string]struct{}) {
	ref := n.children[path]
	if ref == nil {
		return
	}
	ref.count--
	if ref.count > 0 {
		return
	}
	if _, stillResolved := resolved[path]; stillResolved {
		// A new pointer will re-acquire this child during the same pass.
		return
	}
	ref.node.destroy()
	delete(n.children, path)
}

// recalibrate bubbles a recalibration notification toward the root; the
// root forwards it to the engine's external sink.
func (n *Node) recalibrate() {
	if n.parent != nil {
		n.parent.recalibrate()
		return
	}
	if n.eng.recalibrated != nil {
		n.eng.recalibrated()
	}
}

// destroy tears down this node and its whole subtree: watch registrations
// are released and Destroyed events fire leaf-to-root.
func (n *Node) destroy() {
	if n.destroyed {
		return
	}
	n.destroyed = true

	if n.watching {
		n.eng.watcher.Unsubscribe(n.path, n.watchID)
		n.watching = false
	}

	for path, ref := range n.children {
		ref.node.destroy()
		delete(n.children, path)
	}
	n.pointers = nil

	if n.eng.events.Destroyed != nil {
		n.eng.events.Destroyed(n.hierarchy)
	}
}

// Path returns the node's canonical absolute path.
func (n *Node) Path() string { return n.path }

// Hierarchy returns the node's slash-joined hierarchy label.
func (n *Node) Hierarchy() string { return n.hierarchy }

// Pointers returns the node's active include pointers in line order.
func (n *Node) Pointers() []Pointer {
	out := make([]Pointer, len(n.pointers))
	copy(out, n.pointers)
	return out
}
