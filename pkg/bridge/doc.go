// Package bridge defines the boundary between the engine and the host's
// visual layer.
//
// The engine reconciles element trees into a persistent mounted tree; the
// bridge is where structural decisions become real: every mount, payload
// update, and removal of a primitive crosses this interface exactly once.
// Re-diffing an unchanged tree crosses it zero times.
//
// Implementations in this repository: term (renders to a terminal) and
// canvas (rasterizes to an image). Tests use the recording bridge from
// pkg/loomtest.
package bridge
