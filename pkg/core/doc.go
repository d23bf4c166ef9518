// Package core implements the reconciliation engine: elements, hooks,
// the mounted tree, and the message dispatcher.
//
// A component is a plain function rendering props to child elements
// through a hook context:
//
//	type GreetingProps struct{ Name string }
//
//	var Greeting = core.Fn(func(ctx *core.Ctx, p GreetingProps) []core.Element {
//		count, setCount := core.UseState(ctx, func() int { return 0 })
//		core.UseEffect(ctx, p.Name, func() func() {
//			setCount.Update(func(n int) int { return n + 1 })
//			return nil
//		})
//		return []core.Element{
//			core.Textf("hello %s (seen %d names)", p.Name, count),
//		}
//	})
//
// The runtime mounts element trees into a bridge.Bridge, stores
// component state in hook slots, and mirrors linked state into a
// store.Store where the host application can reach it. All updates
// funnel through a message queue drained by Runtime.Pump; nothing
// re-renders spontaneously.
//
// Most applications drive the engine through the root loom package
// rather than using this one directly.
package core
