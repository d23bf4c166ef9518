package core

import (
	"github.com/loom-dev/loom/internal/errors"
)

// Ctx is the hook context handed to a render function for the duration
// of one render. Hooks called through it claim consecutive slots on the
// mounted node, so the same hook call reaches the same slot on every
// render.
//
// The rules of hooks follow from that: call hooks unconditionally, in
// the same order, on every render, and never from spawned goroutines.
// Violations panic with a [LOOM E001] or [LOOM E002] error.
//
// A Ctx is only valid during the render it was created for. Do not
// retain it; capture setters instead, which stay valid until the node
// unmounts.
type Ctx struct {
	rt    *Runtime
	node  *mountedNode
	first bool

	stateIdx  int
	memoIdx   int
	effectIdx int
}

func newCtx(rt *Runtime, node *mountedNode, first bool) *Ctx {
	return &Ctx{rt: rt, node: node, first: first}
}

// finish runs the end-of-render hook count check. A later render that
// calls fewer hooks than the first one would otherwise leave trailing
// slots silently orphaned.
func (c *Ctx) finish() {
	if c.first {
		return
	}
	cs := c.node.comp
	if c.stateIdx != len(cs.states) || c.memoIdx != len(cs.memos) || c.effectIdx != len(cs.effects) {
		panic(errors.New("E001").
			WithNode(uint64(c.node.id)).
			WithDetail("render used %d state, %d memo and %d effect hooks; the first render recorded %d, %d and %d",
				c.stateIdx, c.memoIdx, c.effectIdx, len(cs.states), len(cs.memos), len(cs.effects)))
	}
}
