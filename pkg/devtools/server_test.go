package devtools_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/loom-dev/loom/pkg/core"
	"github.com/loom-dev/loom/pkg/devtools"
	"github.com/loom-dev/loom/pkg/telemetry"
)

type fakeEngine struct {
	roots []core.SnapshotNode
	nodes int
}

func (f *fakeEngine) Snapshot() []core.SnapshotNode { return f.roots }
func (f *fakeEngine) NodeCount() int                { return f.nodes }

func demoEngine() *fakeEngine {
	return &fakeEngine{
		nodes: 3,
		roots: []core.SnapshotNode{
			{
				ID:   1,
				Kind: "Component",
				Name: "App",
				Children: []core.SnapshotNode{
					{ID: 2, Kind: "Box", Children: []core.SnapshotNode{
						{ID: 3, Kind: "Text", Text: "0 ticks"},
					}},
				},
			},
		},
	}
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s status = %d, want 200", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s response: %v", url, err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) *devtools.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	mt, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if mt != websocket.BinaryMessage {
		t.Fatalf("message type = %d, want binary", mt)
	}
	f, err := devtools.DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	return f
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial(%s) error = %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServerHealthz(t *testing.T) {
	srv := devtools.New(demoEngine(), nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("body = %q, want %q", body, "ok")
	}
}

func TestServerConfigDefaults(t *testing.T) {
	srv := devtools.New(demoEngine(), &devtools.Config{History: 10})
	cfg := srv.Config()

	if cfg.Addr != devtools.DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, devtools.DefaultAddr)
	}
	if cfg.History != 10 {
		t.Errorf("History = %d, want 10", cfg.History)
	}
	if cfg.Gatherer == nil || cfg.ShutdownTimeout == 0 {
		t.Error("unset fields were not defaulted")
	}
}

func TestServerTreeAndStats(t *testing.T) {
	eng := demoEngine()
	srv := devtools.New(eng, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	// Before any publish the tree is empty.
	var empty devtools.TreeSnapshot
	getJSON(t, ts.URL+"/api/tree", &empty)
	if empty.Roots != nil || empty.Nodes != 0 {
		t.Errorf("unpublished tree = %+v, want zero", empty)
	}

	srv.Publish(core.PumpStats{Renders: 1, Rounds: 1}, 2*time.Millisecond)
	srv.Publish(core.PumpStats{Renders: 3, Rounds: 2, Applied: 2}, time.Millisecond)

	var tree devtools.TreeSnapshot
	getJSON(t, ts.URL+"/api/tree", &tree)
	if tree.Nodes != 3 {
		t.Errorf("tree.Nodes = %d, want 3", tree.Nodes)
	}
	if len(tree.Roots) != 1 || tree.Roots[0].Name != "App" {
		t.Fatalf("tree.Roots = %+v, want single App root", tree.Roots)
	}
	if tree.Roots[0].Children[0].Children[0].Text != "0 ticks" {
		t.Error("nested text node missing from tree")
	}

	var stats struct {
		Uptime  string                `json:"uptime"`
		Samples []devtools.StatsSample `json:"samples"`
	}
	getJSON(t, ts.URL+"/api/stats", &stats)
	if stats.Uptime == "" {
		t.Error("uptime is empty")
	}
	if len(stats.Samples) != 2 {
		t.Fatalf("samples = %d, want 2", len(stats.Samples))
	}
	if stats.Samples[1].Renders != 3 || stats.Samples[1].Applied != 2 {
		t.Errorf("last sample = %+v, want renders 3 applied 2", stats.Samples[1])
	}
	if stats.Samples[0].Duration != 2*time.Millisecond {
		t.Errorf("first sample duration = %v, want 2ms", stats.Samples[0].Duration)
	}
}

func TestServerStatsHistoryCap(t *testing.T) {
	srv := devtools.New(demoEngine(), &devtools.Config{History: 3})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for i := 1; i <= 5; i++ {
		srv.Publish(core.PumpStats{Renders: i}, time.Millisecond)
	}

	var stats struct {
		Samples []devtools.StatsSample `json:"samples"`
	}
	getJSON(t, ts.URL+"/api/stats", &stats)
	if len(stats.Samples) != 3 {
		t.Fatalf("samples = %d, want 3", len(stats.Samples))
	}
	for i, want := range []int{3, 4, 5} {
		if stats.Samples[i].Renders != want {
			t.Errorf("sample %d renders = %d, want %d", i, stats.Samples[i].Renders, want)
		}
	}
}

func TestServerMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(
		telemetry.WithRegistry(reg),
		telemetry.WithNamespace("loomtest"),
	)
	m.ObservePump(telemetry.PumpObservation{Duration: time.Millisecond, Renders: 2, Nodes: 5})

	srv := devtools.New(demoEngine(), &devtools.Config{Gatherer: reg})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "loomtest_pumps_total 1") {
		t.Errorf("metrics body missing pump counter:\n%s", body)
	}
	if !strings.Contains(string(body), "loomtest_mounted_nodes 5") {
		t.Errorf("metrics body missing node gauge:\n%s", body)
	}
}

func TestServerWebsocketStream(t *testing.T) {
	eng := demoEngine()
	srv := devtools.New(eng, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts)

	hello, err := devtools.DecodeHelloFrame(readFrame(t, conn))
	if err != nil {
		t.Fatalf("DecodeHelloFrame() error = %v", err)
	}
	if hello.Proto != devtools.ProtoVersion {
		t.Errorf("hello proto = %d, want %d", hello.Proto, devtools.ProtoVersion)
	}
	if hello.Engine != "loom" {
		t.Errorf("hello engine = %q, want %q", hello.Engine, "loom")
	}

	srv.Publish(core.PumpStats{Renders: 2, Rounds: 1}, time.Millisecond)

	tree, err := devtools.DecodeTreeFrame(readFrame(t, conn))
	if err != nil {
		t.Fatalf("DecodeTreeFrame() error = %v", err)
	}
	if len(tree.Roots) != 1 || tree.Roots[0].Name != "App" {
		t.Fatalf("streamed tree roots = %+v, want single App root", tree.Roots)
	}

	sample, err := devtools.DecodeStatsFrame(readFrame(t, conn))
	if err != nil {
		t.Fatalf("DecodeStatsFrame() error = %v", err)
	}
	if sample.Renders != 2 || sample.Rounds != 1 {
		t.Errorf("streamed sample = %+v, want renders 2 rounds 1", sample)
	}
}

func TestServerWebsocketCatchUp(t *testing.T) {
	// A subscriber that connects after a publish still gets the latest
	// tree right behind the hello.
	srv := devtools.New(demoEngine(), nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	srv.Publish(core.PumpStats{Renders: 1}, time.Millisecond)

	conn := dialWS(t, ts)

	if f := readFrame(t, conn); f.Type != devtools.FrameHello {
		t.Fatalf("first frame = %v, want Hello", f.Type)
	}
	tree, err := devtools.DecodeTreeFrame(readFrame(t, conn))
	if err != nil {
		t.Fatalf("DecodeTreeFrame() error = %v", err)
	}
	if len(tree.Roots) != 1 {
		t.Errorf("catch-up tree roots = %d, want 1", len(tree.Roots))
	}
}

func TestServerShutdownArchivesTrace(t *testing.T) {
	archive := devtools.NewMemoryArchive()
	srv := devtools.New(demoEngine(), &devtools.Config{Archive: archive})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts)
	if f := readFrame(t, conn); f.Type != devtools.FrameHello {
		t.Fatalf("first frame = %v, want Hello", f.Type)
	}

	srv.Publish(core.PumpStats{Renders: 1}, time.Millisecond)
	if f := readFrame(t, conn); f.Type != devtools.FrameTree {
		t.Fatalf("frame = %v, want Tree", f.Type)
	}
	if f := readFrame(t, conn); f.Type != devtools.FrameStats {
		t.Fatalf("frame = %v, want Stats", f.Type)
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	// The stream says goodbye, then closes.
	if f := readFrame(t, conn); f.Type != devtools.FrameGoodbye {
		t.Fatalf("frame = %v, want Goodbye", f.Type)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected closed stream after goodbye")
	}

	// The pump window became a stored trace.
	infos, err := archive.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("stored traces = %d, want 1", len(infos))
	}
	trace, err := archive.Get(context.Background(), infos[0].ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if trace.Frames != 2 {
		t.Errorf("trace.Frames = %d, want 2", trace.Frames)
	}
	frames, err := trace.Replay()
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("replayed frames = %d, want 2", len(frames))
	}
	if frames[0].Type != devtools.FrameTree || frames[1].Type != devtools.FrameStats {
		t.Errorf("replayed types = %v, %v, want Tree, Stats", frames[0].Type, frames[1].Type)
	}
}

func TestServerTracesEndpoint(t *testing.T) {
	archive := devtools.NewMemoryArchive()
	err := archive.Put(context.Background(), devtools.Trace{
		ID:     "20260314T092653-aabbccdd",
		Ended:  time.Now(),
		Frames: 4,
		Data:   []byte{0x01},
	})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	srv := devtools.New(demoEngine(), &devtools.Config{Archive: archive})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var infos []devtools.TraceInfo
	getJSON(t, ts.URL+"/api/traces", &infos)
	if len(infos) != 1 {
		t.Fatalf("traces = %d, want 1", len(infos))
	}
	if infos[0].ID != "20260314T092653-aabbccdd" {
		t.Errorf("trace id = %q", infos[0].ID)
	}

	// Without an archive the route does not exist.
	bare := devtools.New(demoEngine(), nil)
	bareTS := httptest.NewServer(bare.Handler())
	defer bareTS.Close()

	resp, err := http.Get(bareTS.URL + "/api/traces")
	if err != nil {
		t.Fatalf("GET /api/traces error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status without archive = %d, want 404", resp.StatusCode)
	}
}
