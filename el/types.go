package el

import "github.com/loom-dev/loom/pkg/core"

// Type aliases for the core primitives used by the DSL.
type Element = core.Element
type Ctx = core.Ctx
type Component[P any] = core.Component[P]
