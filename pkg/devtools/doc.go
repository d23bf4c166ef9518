// Package devtools serves a live inspection API for a running engine.
//
// The server exposes, on a local address:
//
//	GET /healthz      liveness probe
//	GET /api/tree     last published tree snapshot (JSON)
//	GET /api/stats    recent pump samples (JSON)
//	GET /api/traces   stored trace summaries (JSON, with an archive)
//	GET /metrics      Prometheus metrics
//	GET /ws           binary frame stream (websocket)
//
// The stream carries msgpack-encoded frames behind a compact binary
// header (see Frame): one hello on connect, then a tree and a stats
// frame per published pump.
//
// The server never reads the engine on its own. The goroutine that
// pumps the engine hands it data:
//
//	dt := devtools.New(engine, nil)
//	go dt.Run(ctx)
//
//	for running {
//	    start := time.Now()
//	    stats := engine.Pump()
//	    dt.Publish(stats, time.Since(start))
//	}
//
// With an Archive configured, the rolling frame window is stored as a
// replayable trace on shutdown. NewS3Archive stores traces in a
// bucket; NewMemoryArchive keeps them in process.
package devtools
