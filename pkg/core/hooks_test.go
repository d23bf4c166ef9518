package core

import (
	"fmt"
	"reflect"
	"testing"
)

// expectPanicCode runs fn and asserts it panics with the given error
// code.
func expectPanicCode(t *testing.T, code string, fn func()) {
	t.Helper()
	recovered := func() (r any) {
		defer func() { r = recover() }()
		fn()
		return nil
	}()
	if got := loomCode(t, recovered); got != code {
		t.Fatalf("panic code = %s, want %s", got, code)
	}
}

func TestUseEffectLifecycle(t *testing.T) {
	rt, _, _ := newTestRuntime(t)

	var log []string
	var setDep Setter[int]
	var kick Setter[int]
	app := Fn(func(ctx *Ctx, _ struct{}) []Element {
		dep, sd := UseState(ctx, func() int { return 1 })
		_, k := UseState(ctx, func() int { return 0 })
		setDep = sd
		kick = k
		UseEffect(ctx, dep, func() func() {
			n := dep
			log = append(log, fmt.Sprintf("setup%d", n))
			return func() { log = append(log, fmt.Sprintf("cleanup%d", n)) }
		})
		return []Element{Text("e")}
	})
	root := rt.MountRoot(app.E(struct{}{}))

	if !reflect.DeepEqual(log, []string{"setup1"}) {
		t.Fatalf("after mount log = %v", log)
	}

	// Re-render without a dep change: the effect stays put.
	kick.Set(1)
	rt.Pump()
	if !reflect.DeepEqual(log, []string{"setup1"}) {
		t.Fatalf("after no-op rerender log = %v", log)
	}

	// Dep change: old cleanup completes before the new setup runs.
	setDep.Set(2)
	rt.Pump()
	if !reflect.DeepEqual(log, []string{"setup1", "cleanup1", "setup2"}) {
		t.Fatalf("after dep change log = %v", log)
	}

	if err := rt.UnmountRoot(root); err != nil {
		t.Fatalf("UnmountRoot() error: %v", err)
	}
	if !reflect.DeepEqual(log, []string{"setup1", "cleanup1", "setup2", "cleanup2"}) {
		t.Fatalf("after unmount log = %v", log)
	}
}

func TestUseEffectNilDepsCyclesEveryRender(t *testing.T) {
	rt, _, _ := newTestRuntime(t)

	setups, cleanups := 0, 0
	var kick Setter[int]
	app := Fn(func(ctx *Ctx, _ struct{}) []Element {
		_, k := UseState(ctx, func() int { return 0 })
		kick = k
		UseEffect(ctx, nil, func() func() {
			setups++
			return func() { cleanups++ }
		})
		return nil
	})
	rt.MountRoot(app.E(struct{}{}))

	kick.Set(1)
	rt.Pump()
	kick.Set(2)
	rt.Pump()

	if setups != 3 || cleanups != 2 {
		t.Fatalf("setups = %d, cleanups = %d, want 3 and 2", setups, cleanups)
	}
}

func TestUseEffectSetupSeesReconciledTree(t *testing.T) {
	rt, _, b := newTestRuntime(t)

	var seen [][]string
	var set Setter[int]
	app := Fn(func(ctx *Ctx, _ struct{}) []Element {
		n, s := UseState(ctx, func() int { return 0 })
		set = s
		UseEffect(ctx, n, func() func() {
			seen = append(seen, b.texts(0))
			return nil
		})
		return []Element{Textf("%d ticks", n)}
	})
	rt.MountRoot(app.E(struct{}{}))

	set.Set(1)
	rt.Pump()

	want := [][]string{{"0 ticks"}, {"1 ticks"}}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("effect observed %v, want %v", seen, want)
	}
}

func TestChildEffectsRunBeforeParentEffects(t *testing.T) {
	rt, _, _ := newTestRuntime(t)

	var order []string
	child := Fn(func(ctx *Ctx, _ struct{}) []Element {
		UseEffect(ctx, struct{}{}, func() func() {
			order = append(order, "child setup")
			return func() { order = append(order, "child cleanup") }
		})
		return []Element{Text("c")}
	})
	parent := Fn(func(ctx *Ctx, _ struct{}) []Element {
		UseEffect(ctx, struct{}{}, func() func() {
			order = append(order, "parent setup")
			return func() { order = append(order, "parent cleanup") }
		})
		return []Element{child.E(struct{}{})}
	})

	root := rt.MountRoot(parent.E(struct{}{}))
	if err := rt.UnmountRoot(root); err != nil {
		t.Fatalf("UnmountRoot() error: %v", err)
	}

	want := []string{"child setup", "parent setup", "child cleanup", "parent cleanup"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestUseMemoCachesByDeps(t *testing.T) {
	rt, _, _ := newTestRuntime(t)

	type bucket struct{ n int }
	computes := 0
	var results []*bucket
	var setDep Setter[int]
	var kick Setter[int]
	app := Fn(func(ctx *Ctx, _ struct{}) []Element {
		dep, sd := UseState(ctx, func() int { return 1 })
		_, k := UseState(ctx, func() int { return 0 })
		setDep = sd
		kick = k
		b := UseMemo(ctx, dep, func() *bucket {
			computes++
			return &bucket{n: dep}
		})
		results = append(results, b)
		return nil
	})
	rt.MountRoot(app.E(struct{}{}))

	kick.Set(1)
	rt.Pump()
	if computes != 1 {
		t.Fatalf("computes = %d after stable rerender, want 1", computes)
	}
	if results[0] != results[1] {
		t.Fatal("memo lost value identity across a stable rerender")
	}

	setDep.Set(2)
	rt.Pump()
	if computes != 2 {
		t.Fatalf("computes = %d after dep change, want 2", computes)
	}
	if results[2] == results[1] || results[2].n != 2 {
		t.Fatalf("memo did not recompute: %+v", results[2])
	}
}

func TestHookOrderViolations(t *testing.T) {
	t.Run("fewer hooks than first render", func(t *testing.T) {
		rt, _, _ := newTestRuntime(t)

		full := true
		var kick Setter[int]
		app := Fn(func(ctx *Ctx, _ struct{}) []Element {
			_, k := UseState(ctx, func() int { return 0 })
			kick = k
			if full {
				UseState(ctx, func() string { return "x" })
			}
			return nil
		})
		rt.MountRoot(app.E(struct{}{}))

		full = false
		kick.Set(1)
		expectPanicCode(t, "E001", func() { rt.Pump() })
	})

	t.Run("more hooks than first render", func(t *testing.T) {
		rt, _, _ := newTestRuntime(t)

		extra := false
		var kick Setter[int]
		app := Fn(func(ctx *Ctx, _ struct{}) []Element {
			_, k := UseState(ctx, func() int { return 0 })
			kick = k
			if extra {
				UseState(ctx, func() string { return "x" })
			}
			return nil
		})
		rt.MountRoot(app.E(struct{}{}))

		extra = true
		kick.Set(1)
		expectPanicCode(t, "E001", func() { rt.Pump() })
	})

	t.Run("slot type mismatch", func(t *testing.T) {
		rt, _, _ := newTestRuntime(t)

		swapped := false
		var kick Setter[int]
		app := Fn(func(ctx *Ctx, _ struct{}) []Element {
			if swapped {
				UseState(ctx, func() string { return "x" })
				_, k := UseState(ctx, func() int { return 0 })
				kick = k
			} else {
				_, k := UseState(ctx, func() int { return 0 })
				kick = k
				UseState(ctx, func() string { return "x" })
			}
			return nil
		})
		rt.MountRoot(app.E(struct{}{}))

		swapped = true
		kick.Set(1)
		expectPanicCode(t, "E002", func() { rt.Pump() })
	})
}
