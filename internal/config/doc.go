// Package config provides configuration parsing for Loom projects.
//
// The configuration is stored in loom.yaml at the project root. This
// package handles loading, saving, and validating configuration; the
// CLI falls back to defaults when no file exists.
//
// # Configuration File Structure
//
//	name: my-app
//	demo:
//	  tickRate: 60
//	  color: auto
//	devtools:
//	  enabled: true
//	  addr: localhost:7317
//	telemetry:
//	  namespace: loom
//	archive:
//	  bucket: my-traces
//	  prefix: traces/
//	log:
//	  level: info
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("tick rate:", cfg.Demo.TickRate)
package config
