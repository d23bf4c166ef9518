package core

import (
	"github.com/loom-dev/loom/internal/errors"
	"github.com/loom-dev/loom/pkg/store"
)

// LinkSetter updates a linked-state property from the component's own
// code. Like Setter it enqueues a message applied on the next Pump. The
// write does not re-trigger the owning component's watcher; external
// writes through the store do.
type LinkSetter[T any] struct {
	rt     *Runtime
	target NodeID
}

// Set replaces the linked property's value.
func (s LinkSetter[T]) Set(v T) {
	s.Update(func(T) T { return v })
}

// Update replaces the linked property's value with fn applied to the
// value at delivery time.
func (s LinkSetter[T]) Update(fn func(T) T) {
	s.rt.enqueue(message{target: s.target, apply: func(rt *Runtime, n *mountedNode) {
		typ := store.TypeOf[T]()
		cur, ok := store.Get[T](rt.store, n.comp.storeID)
		if !ok {
			panic(errors.New("E004").
				WithNode(uint64(n.id)).
				WithDetail("linked property %s removed from store node %d", typ, n.comp.storeID))
		}
		store.Set(rt.store, n.comp.storeID, fn(cur))
		rt.markLinkedSeen(n, typ)
	}})
}

// UseResource reads a store singleton and subscribes the component to
// it: whenever the singleton's version advances, the component is
// re-rendered on the next Pump. The singleton must already exist;
// reading a missing one panics with [LOOM E003].
func UseResource[T any](ctx *Ctx) T {
	typ := store.TypeOf[T]()
	if ctx.first {
		ctx.rt.watchSingleton(typ, ctx.node.id)
	}
	v, ok := store.GetSingleton[T](ctx.rt.store)
	if !ok {
		panic(errors.New("E003").
			WithNode(uint64(ctx.node.id)).
			WithDetail("singleton %s has not been inserted", typ))
	}
	return v
}

// UseLinkedState declares state that lives in the store as a typed
// property on the component's node identity. External systems may read
// and mutate it through the store; external mutations re-render the
// component on the next Pump. Removing the property while the component
// is mounted is a contract breach and panics with [LOOM E004].
func UseLinkedState[T any](ctx *Ctx, init func() T) (T, LinkSetter[T]) {
	typ := store.TypeOf[T]()
	cs := ctx.node.comp
	set := LinkSetter[T]{rt: ctx.rt, target: ctx.node.id}

	if ctx.first {
		v := init()
		store.Set(ctx.rt.store, cs.storeID, v)
		ctx.rt.watchNodeProp(ctx.node, typ)
		return v, set
	}

	v, ok := store.Get[T](ctx.rt.store, cs.storeID)
	if !ok {
		panic(errors.New("E004").
			WithNode(uint64(ctx.node.id)).
			WithDetail("linked property %s removed from store node %d", typ, cs.storeID))
	}
	return v, set
}

// UseBroadcastState publishes v as a typed property on the component's
// node identity, overwriting it on every render. One-way: external
// systems read the mirror, but writing to it never re-renders the
// component and the next render overwrites it. Claims no hook slot.
func UseBroadcastState[T any](ctx *Ctx, v T) {
	store.Set(ctx.rt.store, ctx.node.comp.storeID, v)
}

// UseDisconnectedState attaches a typed property to the component's
// node identity exactly once, on first render. The component never
// reads it back and external mutations never re-render; the property
// lives until the node unmounts. Claims no hook slot.
func UseDisconnectedState[T any](ctx *Ctx, init func() T) {
	if ctx.first {
		store.Set(ctx.rt.store, ctx.node.comp.storeID, init())
	}
}

// UseStoreNode returns the store identity backing this component, for
// wiring the component up to external systems that address it through
// the store.
func UseStoreNode(ctx *Ctx) store.NodeID {
	return ctx.node.comp.storeID
}
