package core

import (
	"strings"
	"testing"

	"github.com/loom-dev/loom/pkg/bridge"
)

func TestPrimitiveConstructors(t *testing.T) {
	tests := []struct {
		name string
		el   Element
		kind bridge.Kind
	}{
		{"box", Box(), bridge.KindBox},
		{"text", Text("hi"), bridge.KindText},
		{"image", Image("logo.png"), bridge.KindImage},
		{"button", Button(Text("ok")), bridge.KindButton},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.el.IsComponent() {
				t.Fatal("primitive reports IsComponent() = true")
			}
			if tt.el.Desc.Kind != tt.kind {
				t.Fatalf("kind = %v, want %v", tt.el.Desc.Kind, tt.kind)
			}
		})
	}

	if got := Textf("%d/%d", 3, 4).Desc.Text; got != "3/4" {
		t.Fatalf("Textf text = %q", got)
	}
	if got := Image("logo.png").Desc.Image; got != "logo.png" {
		t.Fatalf("Image ref = %q", got)
	}
	if kids := Button(Text("ok")).Kids; len(kids) != 1 {
		t.Fatalf("Button kids = %d, want 1", len(kids))
	}
}

func TestWithKeyCopies(t *testing.T) {
	base := Text("x")
	keyed := WithKey("k", base)
	if keyed.Key != "k" {
		t.Fatalf("keyed.Key = %q, want k", keyed.Key)
	}
	if base.Key != "" {
		t.Fatalf("base.Key mutated to %q", base.Key)
	}
}

func TestComponentIdentity(t *testing.T) {
	a := Fn(func(ctx *Ctx, _ struct{}) []Element { return []Element{Text("a")} })
	b := Fn(func(ctx *Ctx, _ struct{}) []Element { return []Element{Text("b")} })

	e1 := a.E(struct{}{})
	e2 := a.E(struct{}{})
	e3 := b.E(struct{}{})

	if !e1.IsComponent() {
		t.Fatal("component element reports IsComponent() = false")
	}
	if e1.fn.ptr != e2.fn.ptr {
		t.Fatal("elements from one component disagree on identity")
	}
	if e1.fn.ptr == e3.fn.ptr {
		t.Fatal("distinct components share an identity")
	}
	if e1.memo {
		t.Fatal("E() produced a memoized element")
	}
	if !a.Memo(struct{}{}).memo {
		t.Fatal("Memo() produced a non-memoized element")
	}
}

func TestComponentPropsEquality(t *testing.T) {
	type props struct {
		Label string
		Rows  []int
	}
	c := Fn(func(ctx *Ctx, p props) []Element { return nil })

	eq := c.Memo(props{}).fn.eq
	if !eq(props{Label: "a", Rows: []int{1, 2}}, props{Label: "a", Rows: []int{1, 2}}) {
		t.Fatal("deep-equal props compare unequal")
	}
	if eq(props{Label: "a"}, props{Label: "b"}) {
		t.Fatal("different props compare equal")
	}
}

func TestFnNameShortens(t *testing.T) {
	c := Fn(func(ctx *Ctx, _ struct{}) []Element { return nil })
	name := c.E(struct{}{}).FnName()
	if name == "" || strings.Contains(name, "/") {
		t.Fatalf("FnName() = %q, want short dotted name", name)
	}
	if Text("x").FnName() != "" {
		t.Fatal("primitive has a function name")
	}
}
