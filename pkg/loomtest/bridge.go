package loomtest

import (
	"fmt"
	"testing"

	"github.com/loom-dev/loom/pkg/bridge"
)

// Op is one recorded bridge call.
type Op struct {
	// Kind is "mount", "update", or "remove".
	Kind string

	Handle bridge.Handle
	Desc   bridge.Desc
	Parent bridge.Handle
	Cursor int
}

// String formats the op for failure messages.
func (o Op) String() string {
	switch o.Kind {
	case "mount":
		return fmt.Sprintf("mount(%s, parent=%d, cursor=%d) -> %d", o.Desc.Kind, o.Parent, o.Cursor, o.Handle)
	case "update":
		return fmt.Sprintf("update(%d, %s)", o.Handle, o.Desc.Kind)
	default:
		return fmt.Sprintf("remove(%d)", o.Handle)
	}
}

// RecordBridge is a Bridge that maintains a live object tree and logs
// every call. It fails the test on contract violations: mounts at
// out-of-range cursors, updates or removes of unknown handles, and
// removes of objects that still have children.
//
// Like any Bridge it expects single-threaded use by one engine.
type RecordBridge struct {
	tb testing.TB

	next     bridge.Handle
	parents  map[bridge.Handle]bridge.Handle
	children map[bridge.Handle][]bridge.Handle
	descs    map[bridge.Handle]bridge.Desc

	ops []Op
}

var _ bridge.Bridge = (*RecordBridge)(nil)

// NewRecordBridge returns an empty recording bridge. tb may be nil, in
// which case contract violations panic instead of failing a test.
func NewRecordBridge(tb testing.TB) *RecordBridge {
	return &RecordBridge{
		tb:       tb,
		parents:  make(map[bridge.Handle]bridge.Handle),
		children: make(map[bridge.Handle][]bridge.Handle),
		descs:    make(map[bridge.Handle]bridge.Desc),
	}
}

func (b *RecordBridge) fail(format string, args ...any) {
	if b.tb != nil {
		b.tb.Helper()
		b.tb.Fatalf(format, args...)
		return
	}
	panic(fmt.Sprintf(format, args...))
}

// Mount implements bridge.Bridge.
func (b *RecordBridge) Mount(desc bridge.Desc, parent bridge.Handle, cursor int) bridge.Handle {
	if parent != 0 {
		if _, ok := b.descs[parent]; !ok {
			b.fail("mount under unknown parent handle %d", parent)
		}
	}
	kids := b.children[parent]
	if cursor < 0 || cursor > len(kids) {
		b.fail("mount cursor %d out of range [0,%d] under parent %d", cursor, len(kids), parent)
	}

	b.next++
	h := b.next
	b.parents[h] = parent
	b.descs[h] = desc

	kids = append(kids, 0)
	copy(kids[cursor+1:], kids[cursor:])
	kids[cursor] = h
	b.children[parent] = kids

	b.ops = append(b.ops, Op{Kind: "mount", Handle: h, Desc: desc, Parent: parent, Cursor: cursor})
	return h
}

// Update implements bridge.Bridge.
func (b *RecordBridge) Update(h bridge.Handle, desc bridge.Desc) {
	if _, ok := b.descs[h]; !ok {
		b.fail("update of unknown handle %d", h)
	}
	b.descs[h] = desc
	b.ops = append(b.ops, Op{Kind: "update", Handle: h, Desc: desc})
}

// Remove implements bridge.Bridge.
func (b *RecordBridge) Remove(h bridge.Handle) {
	if _, ok := b.descs[h]; !ok {
		b.fail("remove of unknown handle %d", h)
	}
	if n := len(b.children[h]); n > 0 {
		b.fail("remove of handle %d which still has %d children", h, n)
	}

	parent := b.parents[h]
	kids := b.children[parent]
	for i, k := range kids {
		if k == h {
			b.children[parent] = append(kids[:i], kids[i+1:]...)
			break
		}
	}
	delete(b.parents, h)
	delete(b.descs, h)
	delete(b.children, h)

	b.ops = append(b.ops, Op{Kind: "remove", Handle: h})
}

// Ops returns the recorded calls since the last ResetOps.
func (b *RecordBridge) Ops() []Op {
	return b.ops
}

// OpKinds returns just the verbs of the recorded calls.
func (b *RecordBridge) OpKinds() []string {
	kinds := make([]string, len(b.ops))
	for i, op := range b.ops {
		kinds[i] = op.Kind
	}
	return kinds
}

// ResetOps clears the operation log. The live tree is untouched.
func (b *RecordBridge) ResetOps() {
	b.ops = nil
}

// LiveCount returns the number of live objects.
func (b *RecordBridge) LiveCount() int {
	return len(b.descs)
}

// DescOf returns the current description of a live handle.
func (b *RecordBridge) DescOf(h bridge.Handle) (bridge.Desc, bool) {
	d, ok := b.descs[h]
	return d, ok
}

// Texts returns the text contents of the live tree in visual order.
func (b *RecordBridge) Texts() []string {
	var texts []string
	var walk func(h bridge.Handle)
	walk = func(h bridge.Handle) {
		if d := b.descs[h]; d.Kind == bridge.KindText {
			texts = append(texts, d.Text)
		}
		for _, k := range b.children[h] {
			walk(k)
		}
	}
	for _, top := range b.children[0] {
		walk(top)
	}
	return texts
}
