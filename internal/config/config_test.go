package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Demo.TickRate != DefaultTickRate {
		t.Errorf("Demo.TickRate = %d, want %d", cfg.Demo.TickRate, DefaultTickRate)
	}
	if cfg.Demo.Color != ColorAuto {
		t.Errorf("Demo.Color = %q, want %q", cfg.Demo.Color, ColorAuto)
	}
	if cfg.Devtools.Addr != DefaultDevtoolsAddr {
		t.Errorf("Devtools.Addr = %q, want %q", cfg.Devtools.Addr, DefaultDevtoolsAddr)
	}
	if cfg.Telemetry.Namespace != DefaultNamespace {
		t.Errorf("Telemetry.Namespace = %q, want %q", cfg.Telemetry.Namespace, DefaultNamespace)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Loading a directory without loom.yaml is an E070
	_, err := Load(tmpDir)
	if err == nil {
		t.Error("expected error for missing config")
	} else if !strings.Contains(err.Error(), "E070") {
		t.Errorf("missing config error = %v, want E070", err)
	}

	configYAML := `name: demo-app
demo:
  tickRate: 30
  color: never
devtools:
  enabled: true
  addr: "127.0.0.1:9000"
archive:
  bucket: my-traces
log:
  level: debug
`
	path := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(path, []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Name != "demo-app" {
		t.Errorf("Name = %q, want %q", cfg.Name, "demo-app")
	}
	if cfg.Demo.TickRate != 30 {
		t.Errorf("Demo.TickRate = %d, want 30", cfg.Demo.TickRate)
	}
	if cfg.Demo.Color != ColorNever {
		t.Errorf("Demo.Color = %q, want %q", cfg.Demo.Color, ColorNever)
	}
	if !cfg.Devtools.Enabled {
		t.Error("Devtools.Enabled should be true")
	}
	if cfg.Devtools.Addr != "127.0.0.1:9000" {
		t.Errorf("Devtools.Addr = %q", cfg.Devtools.Addr)
	}
	if cfg.Archive.Bucket != "my-traces" {
		t.Errorf("Archive.Bucket = %q, want %q", cfg.Archive.Bucket, "my-traces")
	}
	// Unset fields keep their defaults
	if cfg.Archive.Prefix != "traces/" {
		t.Errorf("Archive.Prefix = %q, want default %q", cfg.Archive.Prefix, "traces/")
	}
	if cfg.Telemetry.Namespace != DefaultNamespace {
		t.Errorf("Telemetry.Namespace = %q, want default %q", cfg.Telemetry.Namespace, DefaultNamespace)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestLoadFileInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ConfigFileName)

	if err := os.WriteFile(path, []byte("demo: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "E071") {
		t.Errorf("invalid YAML error = %v, want E071", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"tick rate zero", func(c *Config) { c.Demo.TickRate = 0 }},
		{"tick rate too high", func(c *Config) { c.Demo.TickRate = MaxTickRate + 1 }},
		{"bad color mode", func(c *Config) { c.Demo.Color = "sometimes" }},
		{"negative width", func(c *Config) { c.Demo.Width = -3 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad devtools addr", func(c *Config) { c.Devtools.Enabled = true; c.Devtools.Addr = "no-port" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := New()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), "E072") {
				t.Errorf("validation error = %v, want E072", err)
			}
		})
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(path, []byte("demo:\n  tickRate: 10000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(path)
	if err == nil {
		t.Fatal("expected error for out-of-range tick rate")
	}
	if !strings.Contains(err.Error(), "E072") {
		t.Errorf("out-of-range error = %v, want E072", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ConfigFileName)

	cfg := New()
	if err := cfg.Save(); err == nil {
		t.Error("expected error when saving without a path")
	}

	cfg.Name = "saved-app"
	cfg.Demo.TickRate = 24
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile after save: %v", err)
	}
	if loaded.Name != "saved-app" {
		t.Errorf("Name = %q, want %q", loaded.Name, "saved-app")
	}
	if loaded.Demo.TickRate != 24 {
		t.Errorf("Demo.TickRate = %d, want 24", loaded.Demo.TickRate)
	}

	// Save without SaveTo goes back to the loaded path
	loaded.Demo.TickRate = 12
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	again, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Demo.TickRate != 12 {
		t.Errorf("Demo.TickRate after re-save = %d, want 12", again.Demo.TickRate)
	}
}

func TestFindProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("name: root\n"), 0644); err != nil {
		t.Fatal(err)
	}

	root, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot: %v", err)
	}
	// Resolve symlinks before comparing; macOS tempdirs live behind /var.
	wantRoot, _ := filepath.EvalSymlinks(tmpDir)
	gotRoot, _ := filepath.EvalSymlinks(root)
	if gotRoot != wantRoot {
		t.Errorf("root = %q, want %q", gotRoot, wantRoot)
	}

	if !Exists(tmpDir) {
		t.Error("Exists(root) = false")
	}
	if Exists(nested) {
		t.Error("Exists(nested) = true")
	}
}

func TestFindProjectRootMissing(t *testing.T) {
	tmpDir := t.TempDir()
	_, err := FindProjectRoot(tmpDir)
	if err == nil {
		t.Fatal("expected error when no config exists upward")
	}
	if !strings.Contains(err.Error(), "E070") {
		t.Errorf("error = %v, want E070", err)
	}
}

func TestDerivedAccessors(t *testing.T) {
	cfg := New()

	if got := cfg.TickInterval(); got != time.Second/DefaultTickRate {
		t.Errorf("TickInterval() = %v, want %v", got, time.Second/DefaultTickRate)
	}
	cfg.Demo.TickRate = 20
	if got := cfg.TickInterval(); got != 50*time.Millisecond {
		t.Errorf("TickInterval() = %v, want 50ms", got)
	}

	levels := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, want := range levels {
		cfg.Log.Level = name
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", name, got, want)
		}
	}
}
