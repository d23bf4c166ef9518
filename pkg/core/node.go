package core

import (
	"sort"

	"github.com/loom-dev/loom/pkg/bridge"
	"github.com/loom-dev/loom/pkg/store"
)

// attachPoint records where a node's primitives insert into the bridge:
// the nearest ancestor primitive (zero Handle for top level) and the
// child cursor position under it. Reconciliation replays renders from
// this point, so replacement subtrees land where the old one stood.
type attachPoint struct {
	parent bridge.Handle
	cursor int
}

// mountedNode is the live counterpart of one Element. Exactly one of
// prim and comp is set.
type mountedNode struct {
	id     NodeID
	attach attachPoint

	// Primitive nodes.
	prim bridge.Handle
	desc bridge.Desc

	// Component nodes.
	comp *componentState

	kids children
}

// componentState holds everything a component keeps between renders:
// its render function, the last-used props, the hook slot arrays and
// its backing store identity.
type componentState struct {
	fn    *componentFn
	props any
	memo  bool

	states  []*stateSlot
	memos   []memoSlot
	effects []effectSlot

	storeID store.NodeID
}

// stateSlot is one UseState cell. Setters capture the slot index, not
// the pointer, so the cell can only be reached through a live node.
type stateSlot struct {
	val any
}

type memoSlot struct {
	deps any
	val  any
}

type effectSlot struct {
	deps    any
	setup   func() func()
	cleanup func()
	pending bool
}

// children tracks a node's mounted children. Unkeyed children are
// positional; keyed children are matched by key regardless of position.
type children struct {
	unkeyed []NodeID
	keyed   map[string]NodeID
}

// each visits all children: unkeyed in order, then keyed in sorted key
// order so traversal is deterministic.
func (c *children) each(fn func(NodeID)) {
	for _, id := range c.unkeyed {
		fn(id)
	}
	if len(c.keyed) == 0 {
		return
	}
	keys := make([]string, 0, len(c.keyed))
	for k := range c.keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fn(c.keyed[k])
	}
}

func (c *children) count() int {
	return len(c.unkeyed) + len(c.keyed)
}
