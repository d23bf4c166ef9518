package core

import (
	"github.com/loom-dev/loom/internal/errors"
	"github.com/loom-dev/loom/pkg/bridge"
)

// mount creates the mounted node for one element under the given
// parent primitive, inserting new primitives at *cursor and advancing
// it past everything mounted. Component elements render immediately;
// their pending effect setups run once their children are in place, so
// child effects fire before parent effects.
func (rt *Runtime) mount(e Element, parent bridge.Handle, cursor *int) NodeID {
	n := &mountedNode{
		id:     nextNodeID(),
		attach: attachPoint{parent: parent, cursor: *cursor},
		kids:   children{keyed: make(map[string]NodeID)},
	}
	rt.tree[n.id] = n

	if e.IsComponent() {
		n.comp = &componentState{
			fn:      e.fn,
			props:   e.props,
			memo:    e.memo,
			storeID: rt.store.CreateNode(),
		}
		ctx := newCtx(rt, n, true)
		kids := n.comp.fn.render(ctx, n.comp.props)
		ctx.finish()
		for _, k := range kids {
			rt.mountChild(k, n, parent, cursor)
		}
		rt.runPendingEffects(n)
	} else {
		n.prim = rt.bridge.Mount(e.Desc, parent, *cursor)
		n.desc = e.Desc
		*cursor++
		child := 0
		for _, k := range e.Kids {
			rt.mountChild(k, n, n.prim, &child)
		}
	}
	return n.id
}

func (rt *Runtime) mountChild(e Element, parent *mountedNode, ph bridge.Handle, cursor *int) {
	id := rt.mount(e, ph, cursor)
	if e.Key != "" {
		parent.kids.keyed[e.Key] = id
	} else {
		parent.kids.unkeyed = append(parent.kids.unkeyed, id)
	}
}

// unmount tears down a subtree: children first, then the node itself.
// Component teardown runs remaining effect cleanups in slot order, then
// destroys the node's store identity and watcher registrations.
func (rt *Runtime) unmount(id NodeID) {
	n, ok := rt.tree[id]
	if !ok {
		panic(errors.Newf(errors.CategoryRuntime, "unmount of unknown node %d", id))
	}
	delete(rt.tree, id)

	n.kids.each(func(cid NodeID) {
		rt.unmount(cid)
	})

	if n.comp != nil {
		for i := range n.comp.effects {
			if cln := n.comp.effects[i].cleanup; cln != nil {
				cln()
			}
		}
		rt.store.DestroyNode(n.comp.storeID)
		rt.unwatchNode(id)
	} else {
		rt.bridge.Remove(n.prim)
	}
}

// diff reconciles a mounted node against a new element and returns the
// node's ID, which changes when the element is incompatible (different
// primitive/component shape or a different render function) and the
// subtree is replaced in place.
func (rt *Runtime) diff(id NodeID, e Element, cursor *int) NodeID {
	n, ok := rt.tree[id]
	if !ok {
		panic(errors.Newf(errors.CategoryRuntime, "diff of unknown node %d", id))
	}

	// Siblings may have shifted since mount; re-stamp the attachment
	// so later out-of-band re-renders replay at the node's current
	// position.
	n.attach.cursor = *cursor

	switch {
	case n.comp == nil && !e.IsComponent():
		if !n.desc.Equal(e.Desc) {
			rt.bridge.Update(n.prim, e.Desc)
			n.desc = e.Desc
		}
		*cursor++
		child := 0
		rt.diffChildren(&n.kids, e.Kids, n.prim, &child)
		return id

	case n.comp != nil && e.IsComponent() && n.comp.fn.ptr == e.fn.ptr:
		if e.memo && n.comp.fn.eq(n.comp.props, e.props) {
			n.comp.memo = true
			*cursor += rt.primitiveSpan(n)
			return id
		}
		n.comp.props = e.props
		n.comp.memo = e.memo
		rt.updateComponent(n, cursor)
		return id

	default:
		rt.unmount(id)
		return rt.mount(e, n.attach.parent, cursor)
	}
}

// updateComponent re-invokes a component's render function with its
// current props and reconciles the output, then runs any effect setups
// the render left pending.
func (rt *Runtime) updateComponent(n *mountedNode, cursor *int) {
	ctx := newCtx(rt, n, false)
	kids := n.comp.fn.render(ctx, n.comp.props)
	ctx.finish()
	rt.diffChildren(&n.kids, kids, n.attach.parent, cursor)
	rt.runPendingEffects(n)
}

// diffChildren reconciles one child list. Keyed children match by key
// wherever they sit; unkeyed children match head-to-head in order.
// Old children with no counterpart unmount after the pass.
func (rt *Runtime) diffChildren(c *children, newKids []Element, parent bridge.Handle, cursor *int) {
	var unkeyed []NodeID
	keyed := make(map[string]NodeID)
	next := 0

	for _, e := range newKids {
		if e.Key != "" {
			if oldID, ok := c.keyed[e.Key]; ok {
				delete(c.keyed, e.Key)
				keyed[e.Key] = rt.diff(oldID, e, cursor)
			} else {
				keyed[e.Key] = rt.mount(e, parent, cursor)
			}
			continue
		}
		if next < len(c.unkeyed) {
			unkeyed = append(unkeyed, rt.diff(c.unkeyed[next], e, cursor))
			next++
		} else {
			unkeyed = append(unkeyed, rt.mount(e, parent, cursor))
		}
	}

	for _, id := range c.unkeyed[next:] {
		rt.unmount(id)
	}
	for _, id := range c.keyed {
		rt.unmount(id)
	}
	c.unkeyed = unkeyed
	c.keyed = keyed
}

// runPendingEffects runs effect setups staged by the latest render, in
// slot order, storing each returned cleanup.
func (rt *Runtime) runPendingEffects(n *mountedNode) {
	for i := range n.comp.effects {
		slot := &n.comp.effects[i]
		if !slot.pending {
			continue
		}
		slot.pending = false
		slot.cleanup = slot.setup()
	}
}

// primitiveSpan reports how many bridge objects a subtree occupies in
// its parent primitive's child list. Memo-skipped components still
// advance the sibling cursor by their span.
func (rt *Runtime) primitiveSpan(n *mountedNode) int {
	if n.comp == nil {
		return 1
	}
	total := 0
	n.kids.each(func(cid NodeID) {
		if child, ok := rt.tree[cid]; ok {
			total += rt.primitiveSpan(child)
		}
	})
	return total
}
