// Package store defines the externally owned mutable object graph the
// engine shares with its host, plus World, the in-memory implementation.
//
// The engine never owns host state. Linked, broadcast, and disconnected
// hook state live here as typed properties attached to node entries, where
// host systems can observe and mutate them between pumps. The dispatcher
// polls write versions (PropVersion, SingletonVersion) to decide which
// components must re-render.
//
// Typed access goes through the generic helpers:
//
//	type Ticks struct{ N int }
//
//	store.Set(w, id, Ticks{N: 1})
//	ticks, ok := store.Get[Ticks](w, id)
//	store.Update(w, id, func(t Ticks) Ticks { t.N++; return t })
//
// Store values by value, not by pointer: a write through Set is what bumps
// the version the dispatcher watches. Mutating a stored pointer's target
// would be invisible to change detection.
package store
