package core

import (
	"github.com/loom-dev/loom/internal/errors"
	"github.com/loom-dev/loom/pkg/store"
)

// Setter updates a UseState cell from anywhere: event handlers, effect
// goroutines, other components. Calling it enqueues a message; the
// mutation is applied and the owning component re-rendered on the next
// Pump. Setters for unmounted components are silently dropped.
//
// A Setter is safe for concurrent use and stays valid for the life of
// the component that created it.
type Setter[T any] struct {
	rt     *Runtime
	target NodeID
	slot   int
}

// Set replaces the cell's value.
func (s Setter[T]) Set(v T) {
	s.Update(func(T) T { return v })
}

// Update replaces the cell's value with fn applied to the current one.
// fn runs on the pump goroutine against the value at delivery time, so
// concurrent updates never clobber each other.
func (s Setter[T]) Update(fn func(T) T) {
	slot := s.slot
	s.rt.enqueue(message{target: s.target, apply: func(rt *Runtime, n *mountedNode) {
		cell := n.comp.states[slot]
		cell.val = fn(cell.val.(T))
	}})
}

// UseState declares a component-owned state cell. On the first render
// the cell is initialized with init(); later renders return the current
// value. The returned Setter schedules updates through the runtime's
// message queue.
func UseState[T any](ctx *Ctx, init func() T) (T, Setter[T]) {
	idx := ctx.stateIdx
	ctx.stateIdx++
	cs := ctx.node.comp

	if ctx.first {
		cs.states = append(cs.states, &stateSlot{val: init()})
	} else if idx >= len(cs.states) {
		panic(errors.New("E001").
			WithNode(uint64(ctx.node.id)).WithSlot(idx).
			WithDetail("state hook at slot %d, but the first render recorded only %d state slots", idx, len(cs.states)))
	}

	v, ok := cs.states[idx].val.(T)
	if !ok {
		panic(errors.New("E002").
			WithNode(uint64(ctx.node.id)).WithSlot(idx).
			WithDetail("state slot %d holds %T, hook expects %s", idx, cs.states[idx].val, store.TypeOf[T]()))
	}
	return v, Setter[T]{rt: ctx.rt, target: ctx.node.id, slot: idx}
}

// UseEffect schedules a side effect. The setup function runs after the
// render in which it was (re)declared has been reconciled; it may
// return a cleanup function, or nil.
//
// deps controls re-runs: when deps differs from the previous render
// (compared by deep equality; a type change counts as different), the
// previous cleanup is invoked and the new setup is scheduled. A nil
// deps counts as always different, so the effect cycles on every
// render; pass a constant such as struct{}{} to run the setup once on
// mount. The final cleanup runs on unmount.
func UseEffect(ctx *Ctx, deps any, setup func() func()) {
	idx := ctx.effectIdx
	ctx.effectIdx++
	cs := ctx.node.comp

	if ctx.first {
		cs.effects = append(cs.effects, effectSlot{deps: deps, setup: setup, pending: true})
		return
	}
	if idx >= len(cs.effects) {
		panic(errors.New("E001").
			WithNode(uint64(ctx.node.id)).WithSlot(idx).
			WithDetail("effect hook at slot %d, but the first render recorded only %d effect slots", idx, len(cs.effects)))
	}

	slot := &cs.effects[idx]
	if depsEqual(slot.deps, deps) {
		return
	}
	if slot.cleanup != nil {
		slot.cleanup()
		slot.cleanup = nil
	}
	slot.deps = deps
	slot.setup = setup
	slot.pending = true
}

// UseMemo caches a computed value, recomputing only when deps changes
// between renders (a nil deps recomputes every render). The cached
// value itself is returned, so reference types keep their identity
// across renders while deps is stable.
func UseMemo[T any](ctx *Ctx, deps any, compute func() T) T {
	idx := ctx.memoIdx
	ctx.memoIdx++
	cs := ctx.node.comp

	if ctx.first {
		v := compute()
		cs.memos = append(cs.memos, memoSlot{deps: deps, val: v})
		return v
	}
	if idx >= len(cs.memos) {
		panic(errors.New("E001").
			WithNode(uint64(ctx.node.id)).WithSlot(idx).
			WithDetail("memo hook at slot %d, but the first render recorded only %d memo slots", idx, len(cs.memos)))
	}

	slot := &cs.memos[idx]
	if _, ok := slot.val.(T); !ok {
		panic(errors.New("E002").
			WithNode(uint64(ctx.node.id)).WithSlot(idx).
			WithDetail("memo slot %d holds %T, hook expects %s", idx, slot.val, store.TypeOf[T]()))
	}
	if !depsEqual(slot.deps, deps) {
		slot.val = compute()
		slot.deps = deps
	}
	return slot.val.(T)
}
