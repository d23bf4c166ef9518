package core

import (
	"reflect"
)

// singletonWatcher tracks one singleton type for every component that
// read it through UseResource. lastSeen is shared: one poll flags all
// subscribers, then the watcher goes quiet until the next version bump.
type singletonWatcher struct {
	typ      reflect.Type
	lastSeen uint64
	nodes    []NodeID
}

// nodeWatch tracks one linked-state property on one component node.
type nodeWatch struct {
	typ      reflect.Type
	lastSeen uint64
}

// watchSingleton subscribes a component to a singleton type. The first
// subscription snapshots the current version, so only changes made
// after the watcher exists produce flags.
func (rt *Runtime) watchSingleton(typ reflect.Type, id NodeID) {
	w := rt.resWatch[typ]
	if w == nil {
		w = &singletonWatcher{typ: typ}
		if v, ok := rt.store.SingletonVersion(typ); ok {
			w.lastSeen = v
		}
		rt.resWatch[typ] = w
	}
	w.nodes = append(w.nodes, id)
}

// watchNodeProp subscribes a component to its own linked property. The
// version snapshot happens after the initial insert, so mounting never
// flags the component for the write it just made itself.
func (rt *Runtime) watchNodeProp(n *mountedNode, typ reflect.Type) {
	w := &nodeWatch{typ: typ}
	if v, ok := rt.store.PropVersion(n.comp.storeID, typ); ok {
		w.lastSeen = v
	}
	rt.nodeWatch[n.id] = append(rt.nodeWatch[n.id], w)
}

// markLinkedSeen advances the watcher for typ past the write a
// LinkSetter just applied. Without it the component's own write would
// read as an external change on the next pump and re-render it twice.
func (rt *Runtime) markLinkedSeen(n *mountedNode, typ reflect.Type) {
	for _, w := range rt.nodeWatch[n.id] {
		if w.typ != typ {
			continue
		}
		if v, ok := rt.store.PropVersion(n.comp.storeID, typ); ok {
			w.lastSeen = v
		}
		return
	}
}

// unwatchNode drops all watcher state for an unmounting node.
func (rt *Runtime) unwatchNode(id NodeID) {
	delete(rt.nodeWatch, id)
	for _, w := range rt.resWatch {
		keep := w.nodes[:0]
		for _, n := range w.nodes {
			if n != id {
				keep = append(keep, n)
			}
		}
		w.nodes = keep
	}
}

// pollWatchers flags every component whose watched singleton or linked
// property advanced since the last pump. Flags travel through the
// queue, so they dedup with pending messages in the same drain round.
// Returns the number of flags enqueued.
func (rt *Runtime) pollWatchers() int {
	flags := 0
	for _, w := range rt.resWatch {
		v, ok := rt.store.SingletonVersion(w.typ)
		if !ok || v <= w.lastSeen {
			continue
		}
		w.lastSeen = v
		for _, id := range w.nodes {
			rt.queue.push(message{target: id})
			flags++
		}
	}
	for id, watches := range rt.nodeWatch {
		n, ok := rt.tree[id]
		if !ok {
			continue
		}
		changed := false
		for _, w := range watches {
			v, ok := rt.store.PropVersion(n.comp.storeID, w.typ)
			if ok && v > w.lastSeen {
				w.lastSeen = v
				changed = true
			}
		}
		if changed {
			rt.queue.push(message{target: id})
			flags++
		}
	}
	return flags
}
