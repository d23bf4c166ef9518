package loomtest

import (
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/loom-dev/loom"
	"github.com/loom-dev/loom/pkg/store"
)

// HarnessConfig configures a test harness.
type HarnessConfig struct {
	// World is the store shared between the engine and the test.
	// If nil, an empty one is created.
	World *store.World

	// Logger is the engine logger. If nil, engine logs are discarded
	// to keep test output readable.
	Logger *slog.Logger
}

// HarnessOption configures a test harness.
type HarnessOption func(*HarnessConfig)

// WithWorld shares an existing store with the harness.
func WithWorld(w *store.World) HarnessOption {
	return func(c *HarnessConfig) {
		c.World = w
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) HarnessOption {
	return func(c *HarnessConfig) {
		c.Logger = logger
	}
}

// Harness wires an engine to a recording bridge for component tests.
type Harness struct {
	tb testing.TB

	// Engine is the engine under test.
	Engine *loom.Engine

	// World is the store shared with the engine.
	World *store.World

	// Bridge records every call the engine makes.
	Bridge *RecordBridge
}

// New builds a harness around a fresh engine.
//
// Example:
//
//	h := loomtest.New(t)
//	h.Mount(Counter.E(0))
//	h.ExpectTexts("0")
func New(tb testing.TB, opts ...HarnessOption) *Harness {
	config := HarnessConfig{}
	for _, opt := range opts {
		opt(&config)
	}
	if config.World == nil {
		config.World = store.NewWorld()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	rec := NewRecordBridge(tb)
	engine := loom.New(loom.Config{
		Bridge: rec,
		Store:  config.World,
		Logger: config.Logger,
	})

	return &Harness{
		tb:     tb,
		Engine: engine,
		World:  config.World,
		Bridge: rec,
	}
}

// Mount mounts a root tree.
func (h *Harness) Mount(root loom.Element) loom.RootID {
	h.tb.Helper()
	return h.Engine.MountRoot(root)
}

// Unmount tears down a root, failing the test on error.
func (h *Harness) Unmount(root loom.RootID) {
	h.tb.Helper()
	if err := h.Engine.UnmountRoot(root); err != nil {
		h.tb.Fatalf("UnmountRoot failed: %v", err)
	}
}

// Pump runs one engine cycle.
func (h *Harness) Pump() loom.PumpStats {
	h.tb.Helper()
	return h.Engine.Pump()
}

// ExpectTexts asserts the text leaves of the live surface, in order.
func (h *Harness) ExpectTexts(want ...string) {
	h.tb.Helper()
	got := h.Bridge.Texts()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		h.tb.Errorf("surface texts = %q, want %q", got, want)
	}
}

// ExpectOps asserts the verbs of the bridge calls recorded since the
// last ResetOps.
func (h *Harness) ExpectOps(want ...string) {
	h.tb.Helper()
	got := h.Bridge.OpKinds()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		h.tb.Errorf("bridge ops = %v, want %v\nfull log:\n%s", got, want, h.opLog())
	}
}

// ExpectIdle asserts that a pump finds nothing to do.
func (h *Harness) ExpectIdle() {
	h.tb.Helper()
	if n := h.Engine.PendingMessageCount(); n != 0 {
		h.tb.Errorf("expected idle engine, found %d pending messages", n)
	}
	stats := h.Engine.Pump()
	if stats.Flags != 0 || stats.Applied != 0 || stats.Renders != 0 {
		h.tb.Errorf("expected idle pump, got %+v", stats)
	}
}

func (h *Harness) opLog() string {
	out := ""
	for _, op := range h.Bridge.Ops() {
		out += "  " + op.String() + "\n"
	}
	return out
}
