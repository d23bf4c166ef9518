package store

import "reflect"

// NodeID identifies a node entry in the store. The engine creates one entry
// per mounted component node; host systems may create their own. The zero
// value never names a live entry.
type NodeID uint64

// Store is the externally owned mutable object graph the engine reads and
// writes through. Properties are keyed by their Go type: one value of each
// type per node entry, plus one singleton per type for store-wide state.
//
// Every write bumps a store-wide monotonic version and stamps it onto the
// written entry. PropVersion and SingletonVersion expose those stamps so a
// caller can implement "changed since I last looked" by remembering the
// last version it saw. Versions start at 1; 0 never names a write.
//
// Implementations are not required to be safe for concurrent use. The
// engine guarantees it only touches the store from the goroutine that
// pumps it, and host systems are expected to do the same between pumps.
type Store interface {
	// CreateNode allocates a fresh node entry.
	CreateNode() NodeID

	// DestroyNode removes a node entry and all its properties.
	// Destroying an unknown node is a no-op.
	DestroyNode(id NodeID)

	// SetProp attaches or overwrites the property of type t on a node.
	// Writes to destroyed or unknown nodes are ignored.
	SetProp(id NodeID, t reflect.Type, v any)

	// Prop reads the property of type t from a node.
	Prop(id NodeID, t reflect.Type) (any, bool)

	// RemoveProp detaches the property of type t from a node.
	RemoveProp(id NodeID, t reflect.Type)

	// PropVersion reports the version stamped by the last write to the
	// property of type t on a node, and whether the property exists.
	PropVersion(id NodeID, t reflect.Type) (uint64, bool)

	// SetSingleton inserts or overwrites the store-wide value of type t.
	SetSingleton(t reflect.Type, v any)

	// Singleton reads the store-wide value of type t.
	Singleton(t reflect.Type) (any, bool)

	// SingletonVersion reports the version stamped by the last write to
	// the singleton of type t, and whether the singleton exists.
	SingletonVersion(t reflect.Type) (uint64, bool)
}

// TypeOf returns the reflect.Type key for T without allocating a value.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Set attaches or overwrites the property of type T on a node.
func Set[T any](s Store, id NodeID, v T) {
	s.SetProp(id, TypeOf[T](), v)
}

// Get reads the property of type T from a node.
func Get[T any](s Store, id NodeID) (T, bool) {
	v, ok := s.Prop(id, TypeOf[T]())
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Remove detaches the property of type T from a node.
func Remove[T any](s Store, id NodeID) {
	s.RemoveProp(id, TypeOf[T]())
}

// Update reads the property of type T, applies fn, and writes the result
// back. It reports whether the property existed.
func Update[T any](s Store, id NodeID, fn func(T) T) bool {
	v, ok := Get[T](s, id)
	if !ok {
		return false
	}
	Set(s, id, fn(v))
	return true
}

// SetSingleton inserts or overwrites the store-wide value of type T.
func SetSingleton[T any](s Store, v T) {
	s.SetSingleton(TypeOf[T](), v)
}

// GetSingleton reads the store-wide value of type T.
func GetSingleton[T any](s Store) (T, bool) {
	v, ok := s.Singleton(TypeOf[T]())
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// UpdateSingleton reads the singleton of type T, applies fn, and writes the
// result back. It reports whether the singleton existed.
func UpdateSingleton[T any](s Store, fn func(T) T) bool {
	v, ok := GetSingleton[T](s)
	if !ok {
		return false
	}
	SetSingleton(s, fn(v))
	return true
}
