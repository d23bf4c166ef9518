package core

import (
	"log/slog"
	"reflect"

	"github.com/loom-dev/loom/internal/errors"
	"github.com/loom-dev/loom/pkg/bridge"
	"github.com/loom-dev/loom/pkg/store"
)

// Runtime owns one mounted tree and the machinery that keeps it
// current: the hook slots of every component, the message queue that
// setters feed, and the watchers that connect store changes back to
// components.
//
// A Runtime is single-threaded by contract: MountRoot, UnmountRoot and
// Pump must be called from one goroutine, the same one that drives the
// store. Only setters and PendingMessageCount are safe from anywhere.
type Runtime struct {
	store  store.Store
	bridge bridge.Bridge
	logger *slog.Logger

	tree  map[NodeID]*mountedNode
	roots []NodeID

	queue     *msgQueue
	resWatch  map[reflect.Type]*singletonWatcher
	nodeWatch map[NodeID][]*nodeWatch
}

// NewRuntime creates a runtime rendering into br with st as its
// external store. A nil logger falls back to slog.Default.
func NewRuntime(st store.Store, br bridge.Bridge, logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{
		store:     st,
		bridge:    br,
		logger:    logger,
		tree:      make(map[NodeID]*mountedNode),
		queue:     &msgQueue{},
		resWatch:  make(map[reflect.Type]*singletonWatcher),
		nodeWatch: make(map[NodeID][]*nodeWatch),
	}
}

// MountRoot mounts an element tree at the top level, after any roots
// already mounted, and returns a handle for unmounting it later.
// Effects scheduled during the first render run before MountRoot
// returns.
func (rt *Runtime) MountRoot(e Element) RootID {
	cursor := 0
	for _, rid := range rt.roots {
		if n, ok := rt.tree[rid]; ok {
			cursor += rt.primitiveSpan(n)
		}
	}
	id := rt.mount(e, 0, &cursor)
	rt.roots = append(rt.roots, id)
	rt.logger.Debug("mounted root", "node", id)
	return RootID{id: id}
}

// UnmountRoot tears down a mounted root: children first, then effect
// cleanups, then store identities. Unknown or already-unmounted
// handles return a [LOOM E005] error.
func (rt *Runtime) UnmountRoot(root RootID) error {
	for i, id := range rt.roots {
		if id != root.id {
			continue
		}
		rt.roots = append(rt.roots[:i], rt.roots[i+1:]...)
		rt.unmount(id)
		rt.logger.Debug("unmounted root", "node", id)
		return nil
	}
	return errors.New("E005").WithNode(uint64(root.id))
}

// PendingMessageCount reports how many messages wait in the queue.
// Safe to call from any goroutine; drive Pump until it returns 0 to
// reach quiescence.
func (rt *Runtime) PendingMessageCount() int {
	return rt.queue.len()
}

// NodeCount reports the number of mounted nodes across all roots.
func (rt *Runtime) NodeCount() int {
	return len(rt.tree)
}

func (rt *Runtime) enqueue(m message) {
	rt.queue.push(m)
}
