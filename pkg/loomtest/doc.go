// Package loomtest provides testing helpers for Loom components.
//
// The loomtest package reduces boilerplate when testing components by
// wiring an engine to a recording bridge and providing assertions over
// the rendered surface.
//
// # Quick Start
//
//	func TestCounter_Renders(t *testing.T) {
//	    h := loomtest.New(t)
//	    h.Mount(Counter.E(0))
//	    h.ExpectTexts("0")
//	}
//
// # Driving the Engine
//
// Mutate state through setters or the shared store, then pump:
//
//	setN.Set(3)
//	h.Pump()
//	h.ExpectTexts("3")
//
// # Asserting Bridge Traffic
//
// The recording bridge keeps an operation log. Clear it, act, and
// assert on exactly what the engine told the bridge:
//
//	h.Bridge.ResetOps()
//	h.Pump()
//	h.ExpectOps("update")
//
// # Store Integration
//
// The harness shares its store with the test, so external-system
// behavior is scripted directly:
//
//	store.SetSingleton(h.World, Theme{Dark: true})
//	h.Pump()
package loomtest
