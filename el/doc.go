// Package el provides the UI DSL for Loom.
//
// It wraps the core element constructors with variadic builders, keying,
// and list helpers from github.com/loom-dev/loom/pkg/core.
//
// Typical usage:
//
//	import (
//	    "github.com/loom-dev/loom"
//	    . "github.com/loom-dev/loom/el"
//	)
//
//	var Row = loom.Fn(func(ctx *Ctx, label string) []Element {
//	    return []Element{
//	        Box(
//	            Text(label),
//	            Button(Text("ok")),
//	        ),
//	    }
//	})
//
// This keeps the DSL in a dedicated package while the engine APIs live in loom.
package el
