package core

// SnapshotNode is a read-only view of one mounted node, taken for
// inspection tooling. The devtools server streams these over the wire,
// hence the serialization tags.
type SnapshotNode struct {
	ID      uint64 `json:"id" msgpack:"id"`
	Kind    string `json:"kind" msgpack:"kind"`
	Name    string `json:"name,omitempty" msgpack:"name,omitempty"`
	Key     string `json:"key,omitempty" msgpack:"key,omitempty"`
	Text    string `json:"text,omitempty" msgpack:"text,omitempty"`
	Memo    bool   `json:"memo,omitempty" msgpack:"memo,omitempty"`
	StoreID uint64 `json:"store_id,omitempty" msgpack:"store_id,omitempty"`

	States  int `json:"states,omitempty" msgpack:"states,omitempty"`
	Memos   int `json:"memos,omitempty" msgpack:"memos,omitempty"`
	Effects int `json:"effects,omitempty" msgpack:"effects,omitempty"`

	Children []SnapshotNode `json:"children,omitempty" msgpack:"children,omitempty"`
}

// Snapshot captures the current tree under every mounted root, in
// mount order. Children appear unkeyed-first, then keyed in sorted key
// order. Call it from the runtime's goroutine between pumps.
func (rt *Runtime) Snapshot() []SnapshotNode {
	out := make([]SnapshotNode, 0, len(rt.roots))
	for _, id := range rt.roots {
		if n, ok := rt.tree[id]; ok {
			out = append(out, rt.snapshotNode(n))
		}
	}
	return out
}

func (rt *Runtime) snapshotNode(n *mountedNode) SnapshotNode {
	sn := SnapshotNode{ID: uint64(n.id)}
	if n.comp != nil {
		sn.Kind = "Component"
		sn.Name = n.comp.fn.name
		sn.Memo = n.comp.memo
		sn.StoreID = uint64(n.comp.storeID)
		sn.States = len(n.comp.states)
		sn.Memos = len(n.comp.memos)
		sn.Effects = len(n.comp.effects)
	} else {
		sn.Kind = n.desc.Kind.String()
		sn.Text = n.desc.Text
	}
	if n.kids.count() > 0 {
		sn.Children = make([]SnapshotNode, 0, n.kids.count())
	}
	n.kids.each(func(cid NodeID) {
		if child, ok := rt.tree[cid]; ok {
			cs := rt.snapshotNode(child)
			cs.Key = rt.keyOf(n, cid)
			sn.Children = append(sn.Children, cs)
		}
	})
	return sn
}

func (rt *Runtime) keyOf(parent *mountedNode, child NodeID) string {
	for k, id := range parent.kids.keyed {
		if id == child {
			return k
		}
	}
	return ""
}
