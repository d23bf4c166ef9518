package el

import (
	"github.com/loom-dev/loom/pkg/bridge"
	"github.com/loom-dev/loom/pkg/core"
)

// Key assigns a reconciliation key to the element being built. Pass it
// as an argument to a container builder:
//
//	Box(Key(row.ID), Text(row.Label))
//
// Keyed siblings are matched by key when diffed, so their mounted state
// survives reordering. Unkeyed siblings are matched by position.
type Key string

// buildContainer creates a container element of the given kind.
// Arguments can be: nil, Key, Element, []Element, string.
func buildContainer(kind bridge.Kind, args []any) Element {
	var key Key
	kids := make([]Element, 0, len(args))

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional children)
			continue

		case Key:
			key = v

		case Element:
			kids = append(kids, v)

		case []Element:
			kids = append(kids, v...)

		case string:
			// Shorthand for a text child
			kids = append(kids, core.Text(v))
		}
	}

	var e Element
	switch kind {
	case bridge.KindButton:
		e = core.Button(kids...)
	default:
		e = core.Box(kids...)
	}
	if key != "" {
		e = core.WithKey(string(key), e)
	}
	return e
}

// Container elements

func Box(args ...any) Element    { return buildContainer(bridge.KindBox, args) }
func Button(args ...any) Element { return buildContainer(bridge.KindButton, args) }

// Leaf elements

func Text(content string) Element { return core.Text(content) }
func Textf(format string, args ...any) Element {
	return core.Textf(format, args...)
}
func Image(ref string) Element { return core.Image(ref) }
