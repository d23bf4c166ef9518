package core

import (
	"reflect"
	"testing"

	"github.com/loom-dev/loom/pkg/bridge"
)

func TestDiffUpdatesTextInPlace(t *testing.T) {
	rt, _, b := newTestRuntime(t)

	var set Setter[int]
	app := Fn(func(ctx *Ctx, _ struct{}) []Element {
		n, s := UseState(ctx, func() int { return 0 })
		set = s
		return []Element{Textf("%d ticks", n)}
	})
	rt.MountRoot(app.E(struct{}{}))

	if got := b.texts(0); !reflect.DeepEqual(got, []string{"0 ticks"}) {
		t.Fatalf("initial texts = %v", got)
	}

	b.reset()
	set.Set(1)
	stats := rt.Pump()

	if stats.Renders != 1 {
		t.Fatalf("stats.Renders = %d, want 1", stats.Renders)
	}
	if got := b.opKinds(); !reflect.DeepEqual(got, []string{"update"}) {
		t.Fatalf("bridge ops = %v, want [update]", got)
	}
	if got := b.texts(0); !reflect.DeepEqual(got, []string{"1 ticks"}) {
		t.Fatalf("texts after pump = %v", got)
	}
}

func TestRerenderWithoutChangesTouchesNothing(t *testing.T) {
	rt, _, b := newTestRuntime(t)

	var set Setter[int]
	app := Fn(func(ctx *Ctx, _ struct{}) []Element {
		n, s := UseState(ctx, func() int { return 0 })
		set = s
		return []Element{Textf("%d ticks", n)}
	})
	rt.MountRoot(app.E(struct{}{}))

	b.reset()
	set.Set(0)
	stats := rt.Pump()

	if stats.Renders != 1 {
		t.Fatalf("stats.Renders = %d, want 1", stats.Renders)
	}
	if len(b.ops) != 0 {
		t.Fatalf("bridge ops = %v, want none", b.ops)
	}
}

func TestUnkeyedChildrenMatchHeadFirst(t *testing.T) {
	rt, _, b := newTestRuntime(t)

	var trim Setter[bool]
	app := Fn(func(ctx *Ctx, _ struct{}) []Element {
		trimmed, s := UseState(ctx, func() bool { return false })
		trim = s
		if trimmed {
			return []Element{Text("a"), Text("c")}
		}
		return []Element{Text("a"), Text("b"), Text("c")}
	})
	rt.MountRoot(app.E(struct{}{}))

	b.reset()
	trim.Set(true)
	rt.Pump()

	// Head-to-head matching: "a" keeps its object untouched, the old
	// "b" object is rewritten to "c", and the trailing object goes.
	if got := b.texts(0); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("texts = %v, want [a c]", got)
	}
	if len(b.ops) != 2 {
		t.Fatalf("bridge ops = %+v, want update+remove", b.ops)
	}
	if b.ops[0].kind != "update" || b.ops[0].handle != bridge.Handle(2) || b.ops[0].desc.Text != "c" {
		t.Fatalf("first op = %+v, want update of handle 2 to %q", b.ops[0], "c")
	}
	if b.ops[1].kind != "remove" || b.ops[1].handle != bridge.Handle(3) {
		t.Fatalf("second op = %+v, want remove of handle 3", b.ops[1])
	}
}

func TestKeyedChildrenKeepStateAcrossReorder(t *testing.T) {
	rt, _, b := newTestRuntime(t)

	seq := 0
	item := Fn(func(ctx *Ctx, label string) []Element {
		stamp, _ := UseState(ctx, func() int { seq++; return seq })
		return []Element{Textf("%s#%d", label, stamp)}
	})

	var flip Setter[bool]
	app := Fn(func(ctx *Ctx, _ struct{}) []Element {
		flipped, s := UseState(ctx, func() bool { return false })
		flip = s
		if flipped {
			return []Element{WithKey("x", item.E("X")), WithKey("y", item.E("Y"))}
		}
		return []Element{WithKey("y", item.E("Y")), WithKey("x", item.E("X"))}
	})
	rt.MountRoot(app.E(struct{}{}))

	if got := b.texts(0); !reflect.DeepEqual(got, []string{"Y#1", "X#2"}) {
		t.Fatalf("initial texts = %v", got)
	}

	b.reset()
	flip.Set(true)
	rt.Pump()

	// Both children matched by key: no remounts, hook slots intact.
	if seq != 2 {
		t.Fatalf("item mounted %d times, want 2", seq)
	}
	if len(b.ops) != 0 {
		t.Fatalf("bridge ops = %+v, want none", b.ops)
	}
	if got := b.texts(0); !reflect.DeepEqual(got, []string{"Y#1", "X#2"}) {
		t.Fatalf("texts after reorder = %v", got)
	}
}

func TestPrimitiveKindMorphsInPlace(t *testing.T) {
	rt, _, b := newTestRuntime(t)

	var morph Setter[bool]
	app := Fn(func(ctx *Ctx, _ struct{}) []Element {
		morphed, s := UseState(ctx, func() bool { return false })
		morph = s
		if morphed {
			return []Element{Box()}
		}
		return []Element{Text("t")}
	})
	rt.MountRoot(app.E(struct{}{}))

	b.reset()
	morph.Set(true)
	rt.Pump()

	if got := b.opKinds(); !reflect.DeepEqual(got, []string{"update"}) {
		t.Fatalf("bridge ops = %v, want [update]", got)
	}
	if d := b.descs[bridge.Handle(1)]; d.Kind != bridge.KindBox {
		t.Fatalf("handle 1 kind = %v, want Box", d.Kind)
	}
}

func TestComponentReplacedWhenFnDiffers(t *testing.T) {
	rt, _, b := newTestRuntime(t)

	var cleanups []string
	alpha := Fn(func(ctx *Ctx, _ struct{}) []Element {
		UseEffect(ctx, struct{}{}, func() func() {
			return func() { cleanups = append(cleanups, "alpha") }
		})
		return []Element{Text("alpha")}
	})
	beta := Fn(func(ctx *Ctx, _ struct{}) []Element {
		return []Element{Text("beta")}
	})

	var swap Setter[bool]
	app := Fn(func(ctx *Ctx, _ struct{}) []Element {
		swapped, s := UseState(ctx, func() bool { return false })
		swap = s
		if swapped {
			return []Element{beta.E(struct{}{})}
		}
		return []Element{alpha.E(struct{}{})}
	})
	rt.MountRoot(app.E(struct{}{}))

	b.reset()
	swap.Set(true)
	rt.Pump()

	if !reflect.DeepEqual(cleanups, []string{"alpha"}) {
		t.Fatalf("cleanups = %v, want [alpha]", cleanups)
	}
	if got := b.opKinds(); !reflect.DeepEqual(got, []string{"remove", "mount"}) {
		t.Fatalf("bridge ops = %v, want [remove mount]", got)
	}
	if got := b.texts(0); !reflect.DeepEqual(got, []string{"beta"}) {
		t.Fatalf("texts = %v, want [beta]", got)
	}
}

func TestReplacementLandsAtOldPosition(t *testing.T) {
	rt, _, b := newTestRuntime(t)

	pane := Fn(func(ctx *Ctx, _ struct{}) []Element {
		return []Element{Text("p1"), Text("p2")}
	})

	var swap Setter[bool]
	app := Fn(func(ctx *Ctx, _ struct{}) []Element {
		swapped, s := UseState(ctx, func() bool { return false })
		swap = s
		if swapped {
			return []Element{pane.E(struct{}{}), Text("tail")}
		}
		return []Element{Text("head"), Text("tail")}
	})
	rt.MountRoot(app.E(struct{}{}))

	b.reset()
	swap.Set(true)
	rt.Pump()

	// The primitive/component variant changed, so the head is torn
	// down and the pane mounts into the slot it occupied, ahead of the
	// surviving tail.
	if got := b.texts(0); !reflect.DeepEqual(got, []string{"p1", "p2", "tail"}) {
		t.Fatalf("texts = %v, want [p1 p2 tail]", got)
	}
	if got := b.opKinds(); !reflect.DeepEqual(got, []string{"remove", "mount", "mount"}) {
		t.Fatalf("bridge ops = %v", got)
	}
	if b.ops[1].pos != 0 || b.ops[2].pos != 1 {
		t.Fatalf("mount positions = %d,%d, want 0,1", b.ops[1].pos, b.ops[2].pos)
	}
}

func TestNewPropsReachChildRender(t *testing.T) {
	rt, _, b := newTestRuntime(t)

	childRenders := 0
	child := Fn(func(ctx *Ctx, label string) []Element {
		childRenders++
		return []Element{Text(label)}
	})

	var setLabel Setter[string]
	app := Fn(func(ctx *Ctx, _ struct{}) []Element {
		label, s := UseState(ctx, func() string { return "before" })
		setLabel = s
		return []Element{child.E(label)}
	})
	rt.MountRoot(app.E(struct{}{}))

	setLabel.Set("after")
	rt.Pump()

	if childRenders != 2 {
		t.Fatalf("child rendered %d times, want 2", childRenders)
	}
	if got := b.texts(0); !reflect.DeepEqual(got, []string{"after"}) {
		t.Fatalf("texts = %v, want [after]", got)
	}
}

func TestMemoSkipPreservesSiblingCursor(t *testing.T) {
	rt, _, b := newTestRuntime(t)

	renders := 0
	pair := Fn(func(ctx *Ctx, label string) []Element {
		renders++
		return []Element{Text(label + "-1"), Text(label + "-2")}
	})

	var grow Setter[bool]
	app := Fn(func(ctx *Ctx, _ struct{}) []Element {
		grown, s := UseState(ctx, func() bool { return false })
		grow = s
		if grown {
			return []Element{pair.Memo("p"), Text("tail")}
		}
		return []Element{pair.Memo("p")}
	})
	rt.MountRoot(app.E(struct{}{}))

	b.reset()
	grow.Set(true)
	rt.Pump()

	if renders != 1 {
		t.Fatalf("memoized pair rendered %d times, want 1", renders)
	}
	// The skipped pair spans two bridge objects; the new tail must
	// insert after both.
	if got := b.texts(0); !reflect.DeepEqual(got, []string{"p-1", "p-2", "tail"}) {
		t.Fatalf("texts = %v, want [p-1 p-2 tail]", got)
	}
	if got := b.opKinds(); !reflect.DeepEqual(got, []string{"mount"}) {
		t.Fatalf("bridge ops = %v, want [mount]", got)
	}
	if b.ops[0].pos != 2 {
		t.Fatalf("tail mounted at position %d, want 2", b.ops[0].pos)
	}
}

func TestMemoRerendersOnPropsChange(t *testing.T) {
	rt, _, b := newTestRuntime(t)

	renders := 0
	pair := Fn(func(ctx *Ctx, label string) []Element {
		renders++
		return []Element{Text(label + "-1"), Text(label + "-2")}
	})

	var setLabel Setter[string]
	app := Fn(func(ctx *Ctx, _ struct{}) []Element {
		label, s := UseState(ctx, func() string { return "a" })
		setLabel = s
		return []Element{pair.Memo(label)}
	})
	rt.MountRoot(app.E(struct{}{}))

	setLabel.Set("b")
	rt.Pump()

	if renders != 2 {
		t.Fatalf("pair rendered %d times, want 2", renders)
	}
	if got := b.texts(0); !reflect.DeepEqual(got, []string{"b-1", "b-2"}) {
		t.Fatalf("texts = %v", got)
	}
}

func TestUnmountRemovesChildrenFirst(t *testing.T) {
	rt, _, b := newTestRuntime(t)

	root := rt.MountRoot(Box(Box(Text("leaf"))))
	b.reset()

	if err := rt.UnmountRoot(root); err != nil {
		t.Fatalf("UnmountRoot() error: %v", err)
	}

	want := []bridge.Handle{3, 2, 1}
	if len(b.ops) != 3 {
		t.Fatalf("bridge ops = %+v, want 3 removes", b.ops)
	}
	for i, op := range b.ops {
		if op.kind != "remove" || op.handle != want[i] {
			t.Fatalf("op %d = %+v, want remove of handle %d", i, op, want[i])
		}
	}
}
