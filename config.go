package loom

import (
	"log/slog"
	"time"

	"github.com/loom-dev/loom/pkg/telemetry"
)

// =============================================================================
// Configuration Types
// =============================================================================

// DefaultPumpInterval is the pump cadence used by Engine.Run when the
// config does not set one. It matches a 60 Hz frame budget.
const DefaultPumpInterval = 16 * time.Millisecond

// Config is the main engine configuration.
// This is the user-friendly entry point for configuring a Loom engine.
type Config struct {
	// Bridge receives primitive mount, update, and remove calls.
	// If nil, bridge.Discard is used and the engine runs headless.
	Bridge Bridge

	// Store is the entity store backing resource and linked hooks.
	// Share it with the external systems that feed the UI.
	// If nil, an empty in-memory World is created.
	Store Store

	// Logger is the structured logger for the engine.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// Metrics, when set, records pump and tree metrics to Prometheus.
	Metrics *telemetry.Metrics

	// Tracing, when set, wraps every pump in an OpenTelemetry span.
	Tracing *telemetry.Tracing

	// PumpInterval is the cadence of Engine.Run.
	// Default: DefaultPumpInterval.
	PumpInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PumpInterval: DefaultPumpInterval,
	}
}
