package el

import "github.com/loom-dev/loom/pkg/core"

// Nothing returns an empty child list, for branches that render nothing.
func Nothing() []Element {
	return nil
}

// If returns node as a one-element list when condition holds, and an
// empty list otherwise. The result splices into any container builder:
//
//	Box(
//	    Text(title),
//	    If(expanded, Body(item)),
//	)
func If(condition bool, node Element) []Element {
	if condition {
		return []Element{node}
	}
	return nil
}

// Unless is If with the condition inverted.
func Unless(condition bool, node Element) []Element {
	return If(!condition, node)
}

// IfElse picks between two elements.
func IfElse(condition bool, ifTrue, ifFalse Element) Element {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When is If with lazy construction, for branches whose arguments are
// only valid when the condition holds.
func When(condition bool, fn func() Element) []Element {
	if condition {
		return []Element{fn()}
	}
	return nil
}

// Range maps items to elements.
func Range[T any](items []T, fn func(item T, index int) Element) []Element {
	nodes := make([]Element, len(items))
	for i, item := range items {
		nodes[i] = fn(item, i)
	}
	return nodes
}

// Repeat builds n elements.
func Repeat(n int, fn func(i int) Element) []Element {
	nodes := make([]Element, n)
	for i := range nodes {
		nodes[i] = fn(i)
	}
	return nodes
}

// Group normalizes a mixed argument list into a child list, using the
// same rules as the container builders. A Key argument keys the group's
// first element.
func Group(args ...any) []Element {
	var key Key
	kids := make([]Element, 0, len(args))
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Key:
			key = v
		case Element:
			kids = append(kids, v)
		case []Element:
			kids = append(kids, v...)
		case string:
			kids = append(kids, core.Text(v))
		}
	}
	if key != "" && len(kids) > 0 {
		kids[0] = core.WithKey(string(key), kids[0])
	}
	return kids
}

// Keyed returns a copy of e carrying a reconciliation key. Component
// elements take no Key argument, so key them with this:
//
//	Range(todos, func(t Todo, _ int) Element {
//	    return Keyed(t.ID, TodoRow.E(t))
//	})
func Keyed(key string, e Element) Element {
	return core.WithKey(key, e)
}

// Case is one arm of a Switch.
type Case[T comparable] struct {
	value     T
	isDefault bool
	node      Element
}

// Case_ builds a Switch arm matching value.
func Case_[T comparable](value T, node Element) Case[T] {
	return Case[T]{value: value, node: node}
}

// Default builds a Switch arm matching anything.
func Default[T comparable](node Element) Case[T] {
	return Case[T]{isDefault: true, node: node}
}

// Switch returns the node of the first case matching value, as a
// spliceable list. With no match and no Default the list is empty.
func Switch[T comparable](value T, cases ...Case[T]) []Element {
	for _, c := range cases {
		if !c.isDefault && c.value == value {
			return []Element{c.node}
		}
	}
	for _, c := range cases {
		if c.isDefault {
			return []Element{c.node}
		}
	}
	return nil
}
