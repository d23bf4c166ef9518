package loom

import (
	"context"
	"log/slog"
	"time"

	"github.com/loom-dev/loom/pkg/bridge"
	"github.com/loom-dev/loom/pkg/core"
	"github.com/loom-dev/loom/pkg/store"
	"github.com/loom-dev/loom/pkg/telemetry"
)

// =============================================================================
// Engine Type
// =============================================================================

// Engine is the main Loom entry point. It wraps the core runtime with
// configuration, metrics, and tracing.
//
// Create an Engine with loom.New():
//
//	engine := loom.New(loom.Config{
//	    Bridge: termBridge,
//	    Store:  world,
//	})
//
//	engine.MountRoot(App.E(appProps))
//	engine.Run(ctx)
//
// The engine is single-threaded: MountRoot, Pump, UnmountRoot, and
// Snapshot must be called from one goroutine. Setters obtained from
// hooks may be called from any goroutine.
type Engine struct {
	rt *core.Runtime

	// Configuration
	config  Config
	logger  *slog.Logger
	metrics *telemetry.Metrics
	tracing *telemetry.Tracing
}

// New creates a new Loom engine with the given configuration.
func New(cfg Config) *Engine {
	// Apply defaults
	if cfg.Store == nil {
		cfg.Store = store.NewWorld()
	}
	if cfg.Bridge == nil {
		cfg.Bridge = bridge.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.PumpInterval <= 0 {
		cfg.PumpInterval = DefaultPumpInterval
	}

	return &Engine{
		rt:      core.NewRuntime(cfg.Store, cfg.Bridge, cfg.Logger),
		config:  cfg,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		tracing: cfg.Tracing,
	}
}

// =============================================================================
// Roots
// =============================================================================

// MountRoot mounts a tree and returns its root identity. Multiple
// roots coexist as top-level siblings in mount order.
func (e *Engine) MountRoot(root Element) RootID {
	id := e.rt.MountRoot(root)
	e.metrics.RootMounted(e.rt.NodeCount())
	return id
}

// UnmountRoot tears down a mounted root, running effect cleanups and
// releasing store nodes. Unmounting an unknown root is an error.
func (e *Engine) UnmountRoot(root RootID) error {
	if err := e.rt.UnmountRoot(root); err != nil {
		return err
	}
	e.metrics.RootUnmounted(e.rt.NodeCount())
	return nil
}

// =============================================================================
// Pumping
// =============================================================================

// Pump runs one engine cycle: poll store watchers, drain queued state
// messages, and re-render affected components until quiescent.
func (e *Engine) Pump() PumpStats {
	return e.PumpContext(context.Background())
}

// PumpContext is Pump with a context for trace propagation.
func (e *Engine) PumpContext(ctx context.Context) PumpStats {
	_, end := e.tracing.StartPump(ctx)

	start := time.Now()
	stats := e.rt.Pump()

	o := telemetry.PumpObservation{
		Duration: time.Since(start),
		Flags:    stats.Flags,
		Applied:  stats.Applied,
		Dropped:  stats.Dropped,
		Rounds:   stats.Rounds,
		Renders:  stats.Renders,
		Nodes:    e.rt.NodeCount(),
	}
	e.metrics.ObservePump(o)
	end(o)

	return stats
}

// Run pumps the engine at the configured interval until ctx is done.
//
//	engine := loom.New(cfg)
//	engine.MountRoot(App.E(props))
//	engine.Run(ctx)
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.config.PumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.PumpContext(ctx)
		}
	}
}

// =============================================================================
// Inspection
// =============================================================================

// PendingMessageCount reports queued state messages not yet pumped.
func (e *Engine) PendingMessageCount() int {
	return e.rt.PendingMessageCount()
}

// NodeCount reports the number of live nodes in the mounted tree.
func (e *Engine) NodeCount() int {
	return e.rt.NodeCount()
}

// Snapshot returns the mounted trees in mount order, for inspection
// tooling and tests.
func (e *Engine) Snapshot() []SnapshotNode {
	return e.rt.Snapshot()
}

// =============================================================================
// Component Access
// =============================================================================

// Runtime returns the underlying runtime for advanced integration.
// Most apps won't need this.
func (e *Engine) Runtime() *core.Runtime {
	return e.rt
}

// Store returns the entity store the engine is linked to.
func (e *Engine) Store() Store {
	return e.config.Store
}

// Bridge returns the bridge the engine renders through.
func (e *Engine) Bridge() Bridge {
	return e.config.Bridge
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}
