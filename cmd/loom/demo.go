package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	loom "github.com/loom-dev/loom"
	"github.com/loom-dev/loom/el"
	"github.com/loom-dev/loom/internal/config"
	loomerrors "github.com/loom-dev/loom/internal/errors"
	"github.com/loom-dev/loom/pkg/bridge/canvas"
	"github.com/loom-dev/loom/pkg/bridge/term"
	"github.com/loom-dev/loom/pkg/devtools"
	"github.com/loom-dev/loom/pkg/store"
	"github.com/loom-dev/loom/pkg/telemetry"
)

// =============================================================================
// Demo components
// =============================================================================

// Ticks is the linked property the demo host increments once per
// second, standing in for an external system that owns the store.
type Ticks int

// Counter shows store-linked state: the tick count lives on the
// component's store node and only the host mutates it.
var Counter = loom.Fn(func(ctx *loom.Ctx, _ struct{}) []loom.Element {
	ticks, _ := loom.UseLinkedState(ctx, func() Ticks { return 0 })
	return []loom.Element{el.Textf("%d ticks", int(ticks))}
})

// Blinker shows component-owned state: an effect goroutine flips the
// glyph every period until its cleanup stops it.
var Blinker = loom.Fn(func(ctx *loom.Ctx, period time.Duration) []loom.Element {
	on, setOn := loom.UseState(ctx, func() bool { return true })

	loom.UseEffect(ctx, period, func() func() {
		ticker := time.NewTicker(period)
		done := make(chan struct{})
		go func() {
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					setOn.Update(func(v bool) bool { return !v })
				}
			}
		}()
		return func() {
			ticker.Stop()
			close(done)
		}
	})

	glyph := "○"
	if on {
		glyph = "●"
	}
	return []loom.Element{el.Text(glyph)}
})

type demoProps struct {
	Title string
}

var demoApp = loom.Fn(func(ctx *loom.Ctx, p demoProps) []loom.Element {
	return []loom.Element{
		el.Box(
			el.Text(p.Title),
			el.Box(
				Counter.E(struct{}{}),
				Blinker.E(500*time.Millisecond),
			),
			el.Button("ctrl-c to quit"),
		),
	}
})

// tick advances every Ticks property in the world. This is the demo's
// host system: it writes through the store, never through the engine.
func tick(world *loom.World) {
	for _, id := range world.Query(store.TypeOf[Ticks]()) {
		store.Update(world, id, func(t Ticks) Ticks { return t + 1 })
	}
}

// =============================================================================
// Command
// =============================================================================

type demoOptions struct {
	frames   int
	snapshot string
	rate     int
	color    string
	devtools bool
}

func demoCmd() *cobra.Command {
	var opts demoOptions

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the terminal demo",
		Long: `Run a small Loom app on the terminal bridge.

The demo mounts a counter driven by an external store write each
second and a blinker driven by its own effect. On a terminal it
redraws in place; with --frames it prints plain frames instead.

Examples:
  loom demo
  loom demo --frames=3
  loom demo --snapshot=frame.png --frames=5
  loom demo --devtools`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(opts)
		},
	}

	cmd.Flags().IntVarP(&opts.frames, "frames", "n", 0, "Render this many frames, then exit")
	cmd.Flags().StringVar(&opts.snapshot, "snapshot", "", "Write a PNG of the final frame to this path")
	cmd.Flags().IntVar(&opts.rate, "rate", 0, "Pump rate in cycles per second (default from loom.yaml)")
	cmd.Flags().StringVar(&opts.color, "color", "", "ANSI colors: auto, always, or never")
	cmd.Flags().BoolVar(&opts.devtools, "devtools", false, "Serve the inspection API while the demo runs")

	return cmd
}

func runDemo(opts demoOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Apply command-line overrides
	if opts.rate > 0 {
		cfg.Demo.TickRate = opts.rate
	}
	if opts.color != "" {
		cfg.Demo.Color = opts.color
	}
	if opts.devtools {
		cfg.Devtools.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	title := cfg.Name
	if title == "" {
		title = "loom demo"
	}
	world := loom.NewWorld()

	if opts.snapshot != "" {
		return writeSnapshot(world, title, opts)
	}

	renderer := term.New(termOptions(cfg)...)
	if opts.frames == 0 && !renderer.Interactive() {
		return loomerrors.New("E090")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	engineCfg := loom.Config{
		Bridge:       renderer,
		Store:        world,
		Logger:       logger,
		PumpInterval: cfg.TickInterval(),
	}
	if cfg.Devtools.Enabled {
		engineCfg.Metrics = telemetry.NewMetrics(
			telemetry.WithNamespace(cfg.Telemetry.Namespace),
			telemetry.WithSubsystem(cfg.Telemetry.Subsystem),
		)
		engineCfg.Tracing = telemetry.NewTracing()
	}
	engine := loom.New(engineCfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var dt *devtools.Server
	if cfg.Devtools.Enabled {
		dt = devtools.New(engine, &devtools.Config{
			Addr:    cfg.Devtools.Addr,
			Archive: buildArchive(ctx, cfg),
			Logger:  logger.With("component", "devtools"),
		})
		go func() {
			if err := dt.Run(ctx); err != nil {
				logger.Error("devtools server failed", "error", err)
			}
		}()
	}

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	root := engine.MountRoot(demoApp.E(demoProps{Title: title}))

	renderer.Begin()
	runLoop(ctx, engine, world, renderer, dt, opts.frames)
	renderer.End()

	if err := engine.UnmountRoot(root); err != nil {
		return err
	}
	if dt != nil {
		if err := dt.Shutdown(context.Background()); err != nil {
			warn("devtools shutdown: %v", err)
		}
	}
	return nil
}

// runLoop pumps the engine until the context is canceled or the frame
// budget is spent. In frame-budget mode the host ticks before every
// pump so the output is deterministic; interactively it ticks once per
// second on its own schedule.
func runLoop(ctx context.Context, engine *loom.Engine, world *loom.World, renderer *term.Renderer, dt *devtools.Server, frames int) {
	renderer.Flush()

	if frames > 0 {
		for renderer.Frames() < frames {
			tick(world)
			pumpOnce(engine, dt)
			renderer.Flush()
		}
		return
	}

	pump := time.NewTicker(engine.Config().PumpInterval)
	defer pump.Stop()
	host := time.NewTicker(time.Second)
	defer host.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-host.C:
			tick(world)
		case <-pump.C:
			if stats := pumpOnce(engine, dt); stats.Renders > 0 {
				renderer.Flush()
			}
		}
	}
}

func pumpOnce(engine *loom.Engine, dt *devtools.Server) loom.PumpStats {
	start := time.Now()
	stats := engine.Pump()
	if dt != nil {
		dt.Publish(stats, time.Since(start))
	}
	return stats
}

// writeSnapshot runs the demo on the canvas bridge and writes the
// final frame as a PNG.
func writeSnapshot(world *loom.World, title string, opts demoOptions) error {
	r := canvas.New()
	engine := loom.New(loom.Config{Bridge: r, Store: world})
	root := engine.MountRoot(demoApp.E(demoProps{Title: title}))

	frames := opts.frames
	if frames < 1 {
		frames = 1
	}
	for i := 0; i < frames; i++ {
		if i > 0 {
			tick(world)
		}
		engine.Pump()
	}

	f, err := os.Create(opts.snapshot)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := r.EncodePNG(f); err != nil {
		return err
	}

	if err := engine.UnmountRoot(root); err != nil {
		return err
	}
	success("Wrote %s after %d frames", opts.snapshot, frames)
	return nil
}

// =============================================================================
// Wiring helpers
// =============================================================================

// loadConfig loads loom.yaml from the working directory or a parent.
// A missing file is not an error; the demo runs on defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFromWorkingDir()
	if err == nil {
		return cfg, nil
	}
	var lerr *loomerrors.LoomError
	if errors.As(err, &lerr) && lerr.Code == "E070" {
		return config.New(), nil
	}
	return nil, err
}

// termOptions maps the demo config onto renderer options.
func termOptions(cfg *config.Config) []term.Option {
	var opts []term.Option
	switch cfg.Demo.Color {
	case config.ColorAlways:
		opts = append(opts, term.WithColor(true))
	case config.ColorNever:
		opts = append(opts, term.WithColor(false))
	}
	if cfg.Demo.Width > 0 {
		opts = append(opts, term.WithWidth(cfg.Demo.Width))
	}
	return opts
}

// buildArchive picks the trace archive backend: S3 when a bucket is
// configured, in-process memory otherwise.
func buildArchive(ctx context.Context, cfg *config.Config) devtools.Archive {
	if cfg.Archive.Bucket == "" {
		return devtools.NewMemoryArchive()
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Archive.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Archive.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		warn("trace archive falling back to memory: %v", err)
		return devtools.NewMemoryArchive()
	}
	client := s3.NewFromConfig(awsCfg)
	return devtools.NewS3Archive(client, cfg.Archive.Bucket, cfg.Archive.Prefix,
		devtools.WithPresigner(s3.NewPresignClient(client)))
}
