package bridge

// Discard is a Bridge that accepts every call and renders nothing.
// Useful for headless pumps, tests, and benchmarks.
var Discard Bridge = discard{}

type discard struct{}

func (discard) Mount(Desc, Handle, int) Handle { return 0 }
func (discard) Update(Handle, Desc)            {}
func (discard) Remove(Handle)                  {}
