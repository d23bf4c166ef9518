package core

import (
	"github.com/loom-dev/loom/internal/errors"
)

// PumpStats summarizes one Pump call.
type PumpStats struct {
	// Flags is the number of watcher flags the poll phase enqueued.
	Flags int
	// Applied is the number of state mutations applied.
	Applied int
	// Dropped counts messages discarded because their target node had
	// unmounted before delivery.
	Dropped int
	// Rounds is the number of drain rounds until the queue went quiet.
	Rounds int
	// Renders is the number of component re-renders performed.
	Renders int
}

// Pump runs one dispatch cycle: poll the store watchers once, then
// drain the message queue in rounds until it is empty. Each round
// applies every mutation, dedups targets into re-render roots (a
// flagged ancestor subsumes its flagged descendants, so no node
// renders twice in a round), and re-renders each root at its stored
// attachment point. Renders and effects may enqueue further messages;
// those are picked up by the next round, so Pump returns only when the
// tree is quiescent.
//
// Messages whose target has unmounted are dropped, not applied:
// setters outlive their components and a late Set is not an error.
//
// Pump must be called from the goroutine that owns the runtime.
func (rt *Runtime) Pump() PumpStats {
	var stats PumpStats
	stats.Flags = rt.pollWatchers()

	for {
		batch := rt.queue.drain()
		if len(batch) == 0 {
			break
		}
		stats.Rounds++

		roots := make(map[NodeID]struct{})
		flagged := make(map[NodeID]struct{})
		for _, m := range batch {
			n, ok := rt.tree[m.target]
			if !ok {
				stats.Dropped++
				rt.logger.Debug("dropped message for unmounted node", "node", m.target)
				continue
			}
			if m.apply != nil {
				m.apply(rt, n)
				stats.Applied++
			}
			if _, seen := flagged[m.target]; seen {
				continue
			}
			roots[m.target] = struct{}{}
			rt.demoteDescendants(m.target, roots, flagged)
		}

		for id := range roots {
			n, ok := rt.tree[id]
			if !ok {
				continue
			}
			rt.rerender(n)
			stats.Renders++
		}
	}

	if stats.Renders > 0 || stats.Dropped > 0 {
		rt.logger.Debug("pump complete",
			"flags", stats.Flags,
			"applied", stats.Applied,
			"dropped", stats.Dropped,
			"rounds", stats.Rounds,
			"renders", stats.Renders)
	}
	return stats
}

// demoteDescendants walks a new root's subtree: descendants already
// chosen as roots fold into this one, and every visited node is marked
// flagged so later messages in the round skip it.
func (rt *Runtime) demoteDescendants(id NodeID, roots, flagged map[NodeID]struct{}) {
	n, ok := rt.tree[id]
	if !ok {
		return
	}
	n.kids.each(func(cid NodeID) {
		delete(roots, cid)
		if _, seen := flagged[cid]; seen {
			return
		}
		flagged[cid] = struct{}{}
		rt.demoteDescendants(cid, roots, flagged)
	})
}

// rerender replays one component at its stored attachment point.
func (rt *Runtime) rerender(n *mountedNode) {
	if n.comp == nil {
		panic(errors.Newf(errors.CategoryRuntime, "re-render target %d is not a component", n.id))
	}
	cursor := n.attach.cursor
	rt.updateComponent(n, &cursor)
}
