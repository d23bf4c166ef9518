package core

import "sync/atomic"

// NodeID identifies one mounted node in a runtime's tree. IDs are
// monotonically increasing and never reused, so a stale ID held by a
// setter or message simply stops matching once the node unmounts.
type NodeID uint64

// RootID is the opaque handle returned by MountRoot.
type RootID struct {
	id NodeID
}

// globalIDCounter is the source of unique IDs for all mounted nodes.
var globalIDCounter uint64

func nextNodeID() NodeID {
	return NodeID(atomic.AddUint64(&globalIDCounter, 1))
}
