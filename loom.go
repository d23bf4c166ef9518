// Package loom provides the public API for the Loom UI engine.
//
// This is the recommended import for most applications:
//
//	import "github.com/loom-dev/loom"
//
// Usage:
//
//	var Counter = loom.Fn(func(ctx *loom.Ctx, start int) []loom.Element {
//	    n, setN := loom.UseState(ctx, func() int { return start })
//	    loom.UseEffect(ctx, n, func() func() {
//	        log.Println("count is now", n)
//	        return nil
//	    })
//	    _ = setN
//	    return []loom.Element{el.Textf("%d", n)}
//	})
//
//	engine := loom.New(loom.Config{Bridge: myBridge})
//	root := engine.MountRoot(Counter.E(0))
//	engine.Pump()
package loom

import (
	"github.com/loom-dev/loom/pkg/bridge"
	"github.com/loom-dev/loom/pkg/core"
	"github.com/loom-dev/loom/pkg/store"
)

// =============================================================================
// Elements (re-export from pkg/core)
// =============================================================================

// Element is one node of a UI description, either a primitive or a
// component invocation. Build primitives with the el package and
// components with Fn.
type Element = core.Element

// Ctx is the per-render hook context passed to every render function.
type Ctx = core.Ctx

// Component is a handle to a registered render function with typed
// props. Build elements from it with E (plain) or Memo (render-skipping).
type Component[P any] = core.Component[P]

// Fn registers a render function as a component.
//
// Example:
//
//	var Greeting = loom.Fn(func(ctx *loom.Ctx, name string) []loom.Element {
//	    return []loom.Element{el.Textf("hello, %s", name)}
//	})
func Fn[P any](render func(*Ctx, P) []Element) Component[P] {
	return core.Fn(render)
}

// =============================================================================
// Hooks (re-export from pkg/core)
// =============================================================================

// Setter writes a state slot from outside the render, waking the
// owning component on the next pump.
type Setter[T any] = core.Setter[T]

// UseState declares a state slot owned by this component.
//
// Example:
//
//	n, setN := loom.UseState(ctx, func() int { return 0 })
func UseState[T any](ctx *Ctx, init func() T) (T, Setter[T]) {
	return core.UseState(ctx, init)
}

// UseEffect declares a side effect that runs after render commits,
// whenever deps change. Pass a constant such as struct{}{} to run once;
// pass nil to run after every render.
func UseEffect(ctx *Ctx, deps any, setup func() func()) {
	core.UseEffect(ctx, deps, setup)
}

// UseMemo caches a computed value across renders until deps change.
func UseMemo[T any](ctx *Ctx, deps any, compute func() T) T {
	return core.UseMemo(ctx, deps, compute)
}

// =============================================================================
// Store hooks (re-export from pkg/core)
// =============================================================================

// LinkSetter writes a store-linked state slot from outside the render.
type LinkSetter[T any] = core.LinkSetter[T]

// UseResource reads a store singleton and re-renders when it changes.
func UseResource[T any](ctx *Ctx) T {
	return core.UseResource[T](ctx)
}

// UseLinkedState declares state stored as a property on this
// component's store node, visible to and mutable by external systems.
func UseLinkedState[T any](ctx *Ctx, init func() T) (T, LinkSetter[T]) {
	return core.UseLinkedState(ctx, init)
}

// UseBroadcastState publishes v to this component's store node on
// every render. External systems read it; the component never does.
func UseBroadcastState[T any](ctx *Ctx, v T) {
	core.UseBroadcastState(ctx, v)
}

// UseDisconnectedState writes a property to this component's store
// node on first render only, then leaves it to external systems.
func UseDisconnectedState[T any](ctx *Ctx, init func() T) {
	core.UseDisconnectedState(ctx, init)
}

// UseStoreNode returns the store node backing this component.
func UseStoreNode(ctx *Ctx) store.NodeID {
	return core.UseStoreNode(ctx)
}

// =============================================================================
// Store (re-export from pkg/store)
// =============================================================================

// Store is the entity store the engine links component state into.
// External systems share it with the engine.
type Store = store.Store

// NodeID names one entity in the store.
type NodeID = store.NodeID

// World is the in-memory Store implementation.
type World = store.World

// NewWorld returns an empty in-memory store.
func NewWorld() *World {
	return store.NewWorld()
}

// =============================================================================
// Bridge (re-export from pkg/bridge)
// =============================================================================

// Bridge turns primitive descriptions into native visual objects.
// Implement it to host Loom trees on a new surface.
type Bridge = bridge.Bridge

// Desc describes one primitive to a bridge.
type Desc = bridge.Desc

// Handle names a native visual object owned by a bridge.
type Handle = bridge.Handle

// Kind is the visual kind of a primitive.
type Kind = bridge.Kind

// Kind constants
const (
	KindBox    = bridge.KindBox
	KindText   = bridge.KindText
	KindImage  = bridge.KindImage
	KindButton = bridge.KindButton
)

// =============================================================================
// Runtime types (re-export from pkg/core)
// =============================================================================

// RootID names a mounted root tree.
type RootID = core.RootID

// PumpStats summarizes one pump.
type PumpStats = core.PumpStats

// SnapshotNode is one node of a tree snapshot, as produced by
// Engine.Snapshot for inspection tooling.
type SnapshotNode = core.SnapshotNode
