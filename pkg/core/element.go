package core

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/loom-dev/loom/pkg/bridge"
)

// Element is the immutable description of one node in a UI tree.
// An Element is either a primitive (Desc.Kind != 0) that maps directly
// to one bridge object, or a component (fn != nil) whose children are
// produced by invoking its render function with a hook context.
//
// Elements are plain values: build them fresh on every render and hand
// them to the runtime, which diffs them against the mounted tree.
type Element struct {
	// Desc carries the primitive payload. Its zero value marks a
	// component Element.
	Desc bridge.Desc

	// Key distinguishes siblings across renders. Keyed children keep
	// their mounted state when they move; unkeyed children are matched
	// head-to-head in order.
	Key string

	// Kids are the element's children. For components this is unused;
	// component children come from the render function.
	Kids []Element

	fn    *componentFn
	props any
	memo  bool
}

// IsComponent reports whether the element describes a component rather
// than a primitive.
func (e Element) IsComponent() bool { return e.fn != nil }

// FnName returns the short name of the component's render function, or
// "" for primitives. Used for logging and tree snapshots.
func (e Element) FnName() string {
	if e.fn == nil {
		return ""
	}
	return e.fn.name
}

// componentFn is the erased form of a typed render function. Two
// elements describe the same component when their fn pointers match;
// identity is the code address of the render function, so every
// distinct function (or closure site) is its own component type.
type componentFn struct {
	render func(*Ctx, any) []Element
	ptr    uintptr
	name   string
	eq     func(old, new any) bool
}

// Component is a handle to a registered render function with typed
// props. Obtain one with Fn, then build elements with E or Memo.
type Component[P any] struct {
	fn *componentFn
}

// Fn registers a render function as a component. The returned handle
// is cheap to copy; declare it once at package level:
//
//	var Counter = core.Fn(func(ctx *core.Ctx, p CounterProps) []core.Element { ... })
//
// Calling Fn twice on the same function yields handles with the same
// identity, so elements built from either diff against each other.
func Fn[P any](render func(*Ctx, P) []Element) Component[P] {
	ptr := reflect.ValueOf(render).Pointer()
	cf := &componentFn{
		ptr:  ptr,
		name: funcName(ptr),
		render: func(ctx *Ctx, props any) []Element {
			return render(ctx, props.(P))
		},
		eq: func(old, new any) bool {
			return valuesEqual(old.(P), new.(P))
		},
	}
	return Component[P]{fn: cf}
}

// E builds a component element with the given props.
func (c Component[P]) E(props P) Element {
	return Element{fn: c.fn, props: props}
}

// Memo builds a memoized component element. When diffed against an
// existing mount of the same component, the render function is skipped
// if the old and new props compare equal, leaving the whole subtree
// untouched for that pass.
func (c Component[P]) Memo(props P) Element {
	return Element{fn: c.fn, props: props, memo: true}
}

// Box is a plain container primitive.
func Box(kids ...Element) Element {
	return Element{Desc: bridge.Desc{Kind: bridge.KindBox}, Kids: kids}
}

// Text is a text primitive showing s.
func Text(s string) Element {
	return Element{Desc: bridge.Desc{Kind: bridge.KindText, Text: s}}
}

// Textf is Text with Sprintf formatting.
func Textf(format string, args ...any) Element {
	return Text(fmt.Sprintf(format, args...))
}

// Image is an image primitive referencing the named asset.
func Image(ref string) Element {
	return Element{Desc: bridge.Desc{Kind: bridge.KindImage, Image: ref}}
}

// Button is a pressable container primitive.
func Button(kids ...Element) Element {
	return Element{Desc: bridge.Desc{Kind: bridge.KindButton}, Kids: kids}
}

// WithKey returns a copy of e carrying the given sibling key.
func WithKey(key string, e Element) Element {
	e.Key = key
	return e
}

func funcName(ptr uintptr) string {
	f := runtime.FuncForPC(ptr)
	if f == nil {
		return "func"
	}
	name := f.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}
