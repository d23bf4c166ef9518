package store

import (
	"reflect"
	"sort"
)

// entry is a stored value plus the version of its last write.
type entry struct {
	val     any
	version uint64
}

// World is the in-memory Store implementation. It is the default host
// object graph for tests and the demo, and the reference for the version
// semantics other implementations must follow.
//
// World is not safe for concurrent use; see the Store contract.
type World struct {
	nextID     uint64
	tick       uint64
	nodes      map[NodeID]map[reflect.Type]entry
	singletons map[reflect.Type]entry
}

// NewWorld creates an empty World.
func NewWorld() *World {
	return &World{
		nodes:      make(map[NodeID]map[reflect.Type]entry),
		singletons: make(map[reflect.Type]entry),
	}
}

// bump advances the write version. Versions are store-wide, so ordering is
// total across properties and singletons.
func (w *World) bump() uint64 {
	w.tick++
	return w.tick
}

// CreateNode allocates a fresh node entry.
func (w *World) CreateNode() NodeID {
	w.nextID++
	id := NodeID(w.nextID)
	w.nodes[id] = make(map[reflect.Type]entry)
	return id
}

// DestroyNode removes a node entry and all its properties.
func (w *World) DestroyNode(id NodeID) {
	delete(w.nodes, id)
}

// Alive reports whether a node entry exists.
func (w *World) Alive(id NodeID) bool {
	_, ok := w.nodes[id]
	return ok
}

// SetProp attaches or overwrites the property of type t on a node.
func (w *World) SetProp(id NodeID, t reflect.Type, v any) {
	props, ok := w.nodes[id]
	if !ok {
		return
	}
	props[t] = entry{val: v, version: w.bump()}
}

// Prop reads the property of type t from a node.
func (w *World) Prop(id NodeID, t reflect.Type) (any, bool) {
	e, ok := w.nodes[id][t]
	if !ok {
		return nil, false
	}
	return e.val, true
}

// RemoveProp detaches the property of type t from a node.
func (w *World) RemoveProp(id NodeID, t reflect.Type) {
	delete(w.nodes[id], t)
}

// PropVersion reports the last write version of the property of type t.
func (w *World) PropVersion(id NodeID, t reflect.Type) (uint64, bool) {
	e, ok := w.nodes[id][t]
	if !ok {
		return 0, false
	}
	return e.version, true
}

// SetSingleton inserts or overwrites the store-wide value of type t.
func (w *World) SetSingleton(t reflect.Type, v any) {
	w.singletons[t] = entry{val: v, version: w.bump()}
}

// Singleton reads the store-wide value of type t.
func (w *World) Singleton(t reflect.Type) (any, bool) {
	e, ok := w.singletons[t]
	if !ok {
		return nil, false
	}
	return e.val, true
}

// SingletonVersion reports the last write version of the singleton of type t.
func (w *World) SingletonVersion(t reflect.Type) (uint64, bool) {
	e, ok := w.singletons[t]
	if !ok {
		return 0, false
	}
	return e.version, true
}

// Query returns the IDs of all nodes carrying a property of type t, in
// ascending order. Host systems use it to find engine-linked state the way
// the demo's ticker finds counters.
func (w *World) Query(t reflect.Type) []NodeID {
	var ids []NodeID
	for id, props := range w.nodes {
		if _, ok := props[t]; ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Nodes returns the IDs of all live nodes in ascending order.
func (w *World) Nodes() []NodeID {
	ids := make([]NodeID, 0, len(w.nodes))
	for id := range w.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

var _ Store = (*World)(nil)
