package devtools

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loom-dev/loom/pkg/core"
)

// DefaultAddr is the address the server listens on by default.
const DefaultAddr = "localhost:7317"

// Websocket timing.
const (
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 16
)

// Engine is the inspection surface the server reads. The root package
// engine satisfies it.
//
// The server calls these methods only inside Publish, on the caller's
// goroutine. The engine's single-goroutine contract holds as long as
// Publish is called from the goroutine that pumps.
type Engine interface {
	Snapshot() []core.SnapshotNode
	NodeCount() int
}

// Config configures the inspection server.
type Config struct {
	// Addr is the listen address.
	Addr string

	// History is how many stats samples /api/stats retains.
	History int

	// TraceLimit caps the rolling trace recording, in bytes.
	// Negative disables recording.
	TraceLimit int

	// Archive receives the recorded trace on shutdown, if set.
	Archive Archive

	// Gatherer backs the /metrics endpoint.
	Gatherer prometheus.Gatherer

	// CheckOrigin controls which websocket origins may connect. The
	// default accepts all; the server is a local development tool.
	CheckOrigin func(r *http.Request) bool

	// ReadBufferSize and WriteBufferSize size the websocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// Logger overrides the default component logger.
	Logger *slog.Logger
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:            DefaultAddr,
		History:         120,
		TraceLimit:      4 << 20,
		Gatherer:        prometheus.DefaultGatherer,
		CheckOrigin:     func(*http.Request) bool { return true },
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Server serves the inspection API for one engine.
type Server struct {
	engine   Engine
	config   *Config
	router   chi.Router
	upgrader websocket.Upgrader
	logger   *slog.Logger
	started  time.Time

	httpServer *http.Server

	mu           sync.Mutex
	closed       bool
	subs         map[*subscriber]struct{}
	lastTree     *TreeSnapshot
	lastTreeWire []byte
	samples      []StatsSample
	trace        [][]byte
	traceBytes   int
	traceStart   time.Time
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// New creates a new inspection server for the given engine.
func New(engine Engine, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	} else {
		// Fill in defaults for any unset fields
		defaults := DefaultConfig()
		if config.Addr == "" {
			config.Addr = defaults.Addr
		}
		if config.History == 0 {
			config.History = defaults.History
		}
		if config.TraceLimit == 0 {
			config.TraceLimit = defaults.TraceLimit
		}
		if config.Gatherer == nil {
			config.Gatherer = defaults.Gatherer
		}
		if config.CheckOrigin == nil {
			config.CheckOrigin = defaults.CheckOrigin
		}
		if config.ReadBufferSize == 0 {
			config.ReadBufferSize = defaults.ReadBufferSize
		}
		if config.WriteBufferSize == 0 {
			config.WriteBufferSize = defaults.WriteBufferSize
		}
		if config.ShutdownTimeout == 0 {
			config.ShutdownTimeout = defaults.ShutdownTimeout
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default().With("component", "devtools")
	}

	s := &Server{
		engine:  engine,
		config:  config,
		logger:  logger,
		started: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		subs: make(map[*subscriber]struct{}),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Get("/tree", s.handleTree)
		r.Get("/stats", s.handleStats)
		if s.config.Archive != nil {
			r.Get("/traces", s.handleTraces)
		}
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/ws", s.handleWS)
	return r
}

// Handler returns the server's routes for mounting in an external
// router or a test server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Config returns the server configuration.
func (s *Server) Config() *Config {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// =============================================================================
// Publishing
// =============================================================================

// Publish captures the engine's tree and one pump's numbers, broadcasts
// both to connected inspectors, and appends them to the trace window.
// Call it from the goroutine that pumps the engine.
func (s *Server) Publish(stats core.PumpStats, took time.Duration) {
	now := time.Now()
	tree := TreeSnapshot{
		Taken: now,
		Nodes: s.engine.NodeCount(),
		Roots: s.engine.Snapshot(),
	}
	sample := StatsSample{
		Taken:    now,
		Duration: took,
		Flags:    stats.Flags,
		Applied:  stats.Applied,
		Dropped:  stats.Dropped,
		Rounds:   stats.Rounds,
		Renders:  stats.Renders,
		Nodes:    tree.Nodes,
	}

	treeWire, err := encodeWire(EncodeTreeFrame(tree))
	if err != nil {
		s.logger.Warn("tree frame encode failed", "error", err)
		return
	}
	statsWire, err := encodeWire(EncodeStatsFrame(sample))
	if err != nil {
		s.logger.Warn("stats frame encode failed", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.lastTree = &tree
	s.lastTreeWire = treeWire
	s.samples = append(s.samples, sample)
	if over := len(s.samples) - s.config.History; over > 0 {
		s.samples = s.samples[over:]
	}
	s.recordLocked(treeWire)
	s.recordLocked(statsWire)
	for sub := range s.subs {
		s.offerLocked(sub, treeWire)
		s.offerLocked(sub, statsWire)
	}
}

func encodeWire(f *Frame, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	return f.Encode()
}

// recordLocked appends one encoded frame to the rolling trace window,
// evicting from the front to stay under the byte limit.
func (s *Server) recordLocked(frame []byte) {
	if s.config.TraceLimit < 0 {
		return
	}
	if s.traceStart.IsZero() {
		s.traceStart = time.Now()
	}
	s.trace = append(s.trace, frame)
	s.traceBytes += len(frame)
	for s.traceBytes > s.config.TraceLimit && len(s.trace) > 0 {
		s.traceBytes -= len(s.trace[0])
		s.trace = s.trace[1:]
	}
}

// offerLocked queues a frame without blocking. Inspectors that cannot
// keep up lose frames rather than stalling the engine.
func (s *Server) offerLocked(sub *subscriber, frame []byte) {
	select {
	case sub.send <- frame:
	default:
		s.logger.Debug("inspector lagging, frame dropped")
	}
}

// =============================================================================
// HTTP handlers
// =============================================================================

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tree := s.lastTree
	s.mu.Unlock()

	if tree == nil {
		writeJSON(w, http.StatusOK, TreeSnapshot{})
		return
	}
	writeJSON(w, http.StatusOK, *tree)
}

type statsResponse struct {
	Uptime  string        `json:"uptime"`
	Samples []StatsSample `json:"samples"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	samples := make([]StatsSample, len(s.samples))
	copy(samples, s.samples)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, statsResponse{
		Uptime:  time.Since(s.started).Round(time.Millisecond).String(),
		Samples: samples,
	})
}

func (s *Server) handleTraces(w http.ResponseWriter, r *http.Request) {
	infos, err := s.config.Archive.List(r.Context())
	if err != nil {
		s.logger.Error("trace list failed", "error", err)
		http.Error(w, "archive unavailable", http.StatusBadGateway)
		return
	}
	if infos == nil {
		infos = []TraceInfo{}
	}
	writeJSON(w, http.StatusOK, infos)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// =============================================================================
// Websocket stream
// =============================================================================

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	hello := Hello{
		Proto:   ProtoVersion,
		Engine:  "loom",
		PID:     os.Getpid(),
		Started: s.started,
	}
	helloWire, err := encodeWire(EncodeHelloFrame(hello))
	if err != nil {
		s.logger.Error("hello frame encode failed", "error", err)
		conn.Close()
		return
	}

	sub := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.subs[sub] = struct{}{}
	sub.send <- helloWire
	if s.lastTreeWire != nil {
		s.offerLocked(sub, s.lastTreeWire)
	}
	s.mu.Unlock()

	s.logger.Info("inspector connected", "remote", conn.RemoteAddr())
	go s.writePump(sub)
	go s.readPump(sub)
}

func (s *Server) writePump(sub *subscriber) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				sub.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "engine stopped"))
				return
			}
			if err := sub.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inspector input; the stream is one-way. It exists
// to run the pong handler and to notice disconnects.
func (s *Server) readPump(sub *subscriber) {
	defer func() {
		s.unsubscribe(sub)
		sub.conn.Close()
	}()

	sub.conn.SetReadLimit(512)
	sub.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	sub.conn.SetPongHandler(func(string) error {
		sub.conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) unsubscribe(sub *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[sub]; ok {
		delete(s.subs, sub)
		close(sub.send)
	}
}

// =============================================================================
// Lifecycle
// =============================================================================

// Run starts the HTTP listener and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()
	s.logger.Info("devtools listening", "addr", s.config.Addr)

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown says goodbye to connected inspectors, hands the recorded
// trace to the archive, and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.closeSubscribers()
	s.archiveTrace(ctx)

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("devtools shutdown complete")
	return nil
}

func (s *Server) closeSubscribers() {
	goodbye, _ := NewFrame(FrameGoodbye, nil).Encode()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for sub := range s.subs {
		s.offerLocked(sub, goodbye)
		delete(s.subs, sub)
		close(sub.send)
	}
}

func (s *Server) archiveTrace(ctx context.Context) {
	s.mu.Lock()
	frames := s.trace
	size := s.traceBytes
	start := s.traceStart
	s.trace = nil
	s.traceBytes = 0
	s.mu.Unlock()

	if s.config.Archive == nil || len(frames) == 0 {
		return
	}

	data := make([]byte, 0, size)
	for _, f := range frames {
		data = append(data, f...)
	}
	t := Trace{
		ID:      NewTraceID(),
		Started: start,
		Ended:   time.Now(),
		Frames:  len(frames),
		Data:    data,
	}
	if err := s.config.Archive.Put(ctx, t); err != nil {
		s.logger.Warn("trace archive failed", "error", err)
		return
	}
	s.logger.Info("trace archived", "id", t.ID, "frames", t.Frames, "bytes", len(data))
}
