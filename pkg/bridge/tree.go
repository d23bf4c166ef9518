package bridge

import (
	"github.com/loom-dev/loom/internal/errors"
)

type treeNode struct {
	desc     Desc
	parent   Handle
	children []Handle
}

// Tree maintains the live primitive tree on behalf of a bridge. It
// implements the [Bridge] mutation contract, so renderers embed a
// Tree and add drawing on top. Contract breaches are engine bugs and
// panic.
//
// Handles start at 1; zero stays the "no handle" sentinel.
type Tree struct {
	next  Handle
	nodes map[Handle]*treeNode
	roots []Handle
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{
		next:  1,
		nodes: make(map[Handle]*treeNode),
	}
}

// Mount implements [Bridge]. It inserts the new node at cursor among
// the parent's children, shifting later siblings.
func (t *Tree) Mount(desc Desc, parent Handle, cursor int) Handle {
	siblings := t.siblings(parent)
	if cursor < 0 || cursor > len(*siblings) {
		panic(errors.Newf(errors.CategoryRuntime,
			"mount cursor %d outside child list of length %d", cursor, len(*siblings)))
	}
	h := t.next
	t.next++
	t.nodes[h] = &treeNode{desc: desc, parent: parent}

	*siblings = append(*siblings, 0)
	copy((*siblings)[cursor+1:], (*siblings)[cursor:])
	(*siblings)[cursor] = h
	return h
}

// Update implements [Bridge]. The new description may carry a
// different kind; the node keeps its place in the tree.
func (t *Tree) Update(h Handle, desc Desc) {
	n, ok := t.nodes[h]
	if !ok {
		panic(errors.Newf(errors.CategoryRuntime, "update of unknown handle %d", h))
	}
	n.desc = desc
}

// Remove implements [Bridge]. The engine removes children before
// their parent, so a populated node here is a contract breach.
func (t *Tree) Remove(h Handle) {
	n, ok := t.nodes[h]
	if !ok {
		panic(errors.Newf(errors.CategoryRuntime, "remove of unknown handle %d", h))
	}
	if len(n.children) > 0 {
		panic(errors.Newf(errors.CategoryRuntime,
			"remove of handle %d with %d children still mounted", h, len(n.children)))
	}
	siblings := t.siblings(n.parent)
	for i, c := range *siblings {
		if c == h {
			*siblings = append((*siblings)[:i], (*siblings)[i+1:]...)
			break
		}
	}
	delete(t.nodes, h)
}

func (t *Tree) siblings(parent Handle) *[]Handle {
	if parent == 0 {
		return &t.roots
	}
	p, ok := t.nodes[parent]
	if !ok {
		panic(errors.Newf(errors.CategoryRuntime, "mount under unknown handle %d", parent))
	}
	return &p.children
}

// Roots returns the top-level handles in visual order. The slice is
// shared with the tree and valid until the next mutation.
func (t *Tree) Roots() []Handle {
	return t.roots
}

// Children returns a node's child handles in visual order, nil for
// unknown handles. The slice is shared with the tree and valid until
// the next mutation.
func (t *Tree) Children(h Handle) []Handle {
	if n, ok := t.nodes[h]; ok {
		return n.children
	}
	return nil
}

// Desc returns a node's current description.
func (t *Tree) Desc(h Handle) (Desc, bool) {
	if n, ok := t.nodes[h]; ok {
		return n.desc, true
	}
	return Desc{}, false
}

// Len reports the number of live nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}
