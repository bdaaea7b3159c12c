package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	natsserver "github.com/nats-io/nats-server/v2/server"

	"github.com/matzehuels/netview/pkg/config"
	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/events"
	"github.com/matzehuels/netview/pkg/pipeline"
	"github.com/matzehuels/netview/pkg/view"
)

const testNetwork = "../../pkg/pipeline/testdata/pathways.json"

type testServer struct {
	srv  *Server
	base string
}

func startServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	return startServerWith(t, cfg, Options{})
}

func startServerWith(t *testing.T, cfg *config.Config, opts Options) *testServer {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(cfg, nil, logger)

	opts.Ref, opts.Tick = testNetwork, time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	srv, err := New(ctx, runner, opts, logger)
	if err != nil {
		cancel()
		t.Fatalf("New: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		cancel()
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Serve: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return &testServer{srv: srv, base: "http://" + ln.Addr().String()}
}

func (ts *testServer) do(t *testing.T, method, path, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, ts.base+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestScene(t *testing.T) {
	ts := startServer(t, nil)

	var scene view.Scene
	if code := ts.do(t, "GET", "/scene", "", &scene); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(scene.Nodes) != 6 {
		t.Errorf("nodes = %d, want 6", len(scene.Nodes))
	}
	if scene.Tier != view.TierCompact || scene.Backend != view.BackendCanvas {
		t.Errorf("tier/backend = %v/%v", scene.Tier, scene.Backend)
	}

	resp, err := http.Get(ts.base + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz = %d", resp.StatusCode)
	}
}

func TestCommand(t *testing.T) {
	ts := startServer(t, nil)

	tests := []struct {
		name     string
		body     string
		status   int
		wantCode string
		wantPath int
	}{
		{"FindPath", `{"command":"findPath","parameters":["G2","C1"]}`, http.StatusOK, "", 6},
		{"ZoomIn", `{"command":"zoomIn"}`, http.StatusOK, "", 0},
		{"Unknown", `{"command":"explode"}`, http.StatusOK, "UNKNOWN_COMMAND", 0},
		{"MissingNode", `{"command":"zoomToNode","parameters":"nope"}`, http.StatusOK, "MISSING_NODE", 0},
		{"BadArgs", `{"command":"findPath","parameters":["A"]}`, http.StatusOK, "INVALID_ARGUMENT", 0},
		{"NoName", `{"parameters":[]}`, http.StatusBadRequest, "INVALID_INPUT", 0},
		{"BadJSON", `{`, http.StatusBadRequest, "INVALID_INPUT", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out struct {
				Path    []string `json:"path"`
				ErrCode string   `json:"code"`
			}
			code := ts.do(t, "POST", "/command", tt.body, &out)
			if code != tt.status {
				t.Fatalf("status = %d, want %d", code, tt.status)
			}
			if out.ErrCode != tt.wantCode {
				t.Errorf("code = %q, want %q", out.ErrCode, tt.wantCode)
			}
			if len(out.Path) != tt.wantPath {
				t.Errorf("path = %v, want %d nodes", out.Path, tt.wantPath)
			}
		})
	}
}

func TestClickAndBackground(t *testing.T) {
	ts := startServer(t, nil)

	var sel selectionResponse
	if code := ts.do(t, "POST", "/nodes/P1/click", "", &sel); code != http.StatusOK || sel.Selected != "P1" {
		t.Fatalf("click = %d %+v", code, sel)
	}
	eventually(t, "selected scene", func() bool { return ts.srv.Scene().Selected == "P1" })

	if code := ts.do(t, "POST", "/background/dblclick", "", &sel); code != http.StatusOK || sel.Selected != "" {
		t.Fatalf("background = %d %+v", code, sel)
	}
	eventually(t, "cleared scene", func() bool { return ts.srv.Scene().Selected == "" })
}

func TestSnapshot(t *testing.T) {
	ts := startServer(t, nil)

	resp, err := http.Get(ts.base + "/snapshot.dot")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte("digraph")) {
		t.Errorf("dot snapshot = %d %q", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("content type = %q", ct)
	}

	var e ErrorResponse
	if code := ts.do(t, "GET", "/snapshot.bmp", "", &e); code != http.StatusBadRequest || e.Code != "INVALID_ARGUMENT" {
		t.Errorf("bad format = %d %+v", code, e)
	}
}

func TestSessions(t *testing.T) {
	ts := startServer(t, nil)

	ts.do(t, "POST", "/nodes/G1/click", "", nil)

	var saved struct {
		ID       string `json:"id"`
		Network  string `json:"network"`
		Selected string `json:"selected"`
	}
	if code := ts.do(t, "POST", "/sessions", `{"id":"demo"}`, &saved); code != http.StatusCreated {
		t.Fatalf("save = %d", code)
	}
	if saved.ID != "demo" || saved.Selected != "G1" || saved.Network != "pathways" {
		t.Errorf("saved = %+v", saved)
	}

	ts.do(t, "POST", "/background/dblclick", "", nil)
	if code := ts.do(t, "POST", "/sessions/demo/restore", "", nil); code != http.StatusOK {
		t.Fatalf("restore = %d", code)
	}
	eventually(t, "restored selection", func() bool { return ts.srv.Scene().Selected == "G1" })

	var e ErrorResponse
	if code := ts.do(t, "GET", "/sessions/missing", "", &e); code != http.StatusNotFound || e.Code != "SESSION_NOT_FOUND" {
		t.Errorf("missing = %d %+v", code, e)
	}
	if code := ts.do(t, "POST", "/sessions", `{"id":"../escape"}`, &e); code != http.StatusBadRequest {
		t.Errorf("bad id = %d", code)
	}
	if code := ts.do(t, "DELETE", "/sessions/demo", "", nil); code != http.StatusNoContent {
		t.Errorf("delete = %d", code)
	}
	if code := ts.do(t, "GET", "/sessions/demo", "", nil); code != http.StatusNotFound {
		t.Errorf("after delete = %d", code)
	}

	var generated struct {
		ID string `json:"id"`
	}
	if code := ts.do(t, "POST", "/sessions", "", &generated); code != http.StatusCreated || generated.ID == "" {
		t.Errorf("generated = %d %+v", code, generated)
	}
}

// frozenClock never advances, so camera transitions stay in flight.
type frozenClock struct{ now time.Time }

func (c frozenClock) Now() time.Time { return c.now }

func TestCaptureSettlesCamera(t *testing.T) {
	ts := startServerWith(t, nil, Options{Clock: frozenClock{now: time.Unix(0, 0)}})
	start := ts.srv.Scene().Camera.Ratio

	ts.do(t, "POST", "/command", `{"command":"zoomIn"}`, nil)
	var saved struct {
		Camera struct {
			Ratio float64 `json:"ratio"`
		} `json:"camera"`
	}
	if code := ts.do(t, "POST", "/sessions", `{"id":"zoomed"}`, &saved); code != http.StatusCreated {
		t.Fatalf("save = %d", code)
	}
	if want := start / 1.2; math.Abs(saved.Camera.Ratio-want) > 1e-9 {
		t.Errorf("saved ratio = %v, want zoom target %v", saved.Camera.Ratio, want)
	}

	ts.do(t, "POST", "/command", `{"command":"zoomIn"}`, nil)
	resp, err := http.Get(ts.base + "/snapshot.dot")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("snapshot = %d", resp.StatusCode)
	}
	if got, want := ts.srv.Scene().Camera.Ratio, start/1.44; math.Abs(got-want) > 1e-9 {
		t.Errorf("scene ratio after snapshot = %v, want %v", got, want)
	}
}

func dialWS(t *testing.T, ts *testServer) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.base, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads frames until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) Outbound {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg Outbound
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s frame: %v", typ, err)
		}
		if msg.Type == typ {
			return msg
		}
	}
}

func TestWebsocket(t *testing.T) {
	ts := startServer(t, nil)
	conn := dialWS(t, ts)

	first := readUntil(t, conn, MsgScene)
	if first.Scene == nil || len(first.Scene.Nodes) != 6 {
		t.Fatalf("first frame = %+v", first)
	}
	eventually(t, "client registered", func() bool { return ts.srv.Hub().Len() == 1 })

	if err := conn.WriteJSON(Inbound{Type: MsgCommand, Command: &view.HostCommand{Command: "explode"}}); err != nil {
		t.Fatal(err)
	}
	res := readUntil(t, conn, MsgResult)
	if res.Result == nil || res.Result.Code != "UNKNOWN_COMMAND" {
		t.Errorf("result = %+v", res.Result)
	}

	if err := conn.WriteJSON(Inbound{Type: MsgClick, Node: "P2"}); err != nil {
		t.Fatal(err)
	}
	sel := readUntil(t, conn, MsgSelection)
	if sel.Selection == nil || len(sel.Selection.NodeIDs) == 0 || sel.Selection.NodeIDs[0] != "P2" {
		t.Errorf("selection = %+v", sel.Selection)
	}
}

func startNATS(t *testing.T) string {
	t.Helper()
	ns, err := natsserver.NewServer(&natsserver.Options{Host: "127.0.0.1", Port: -1})
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	ns.Start()
	t.Cleanup(ns.Shutdown)
	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return ns.ClientURL()
}

func TestNATS(t *testing.T) {
	url := startNATS(t)
	cfg := config.Default()
	cfg.Server.NATSURL = url
	ts := startServer(t, cfg)

	sub, err := events.NewNATSSubscriber(url)
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()
	selections, cancel, err := sub.Subscribe(events.Subject("netview", events.SubjectSelection))
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()

	ts.do(t, "POST", "/nodes/P1/click", "", nil)
	select {
	case data := <-selections:
		var sel events.Selection
		if err := json.Unmarshal(data, &sel); err != nil {
			t.Fatal(err)
		}
		if len(sel.NodeIDs) == 0 || sel.NodeIDs[0] != "P1" {
			t.Errorf("published selection = %+v", sel)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no selection published")
	}

	pub, err := events.NewNATSPublisher(url)
	if err != nil {
		t.Fatal(err)
	}
	defer pub.Close()
	cmd := view.HostCommand{Command: view.CmdZoomToNode, Parameters: []any{"G1", 0.25}}
	subject := events.Subject("netview", events.SubjectCommand)
	// republish until the server's subscription has caught one; repeats
	// target the same transform
	var last time.Time
	eventually(t, "remote zoom", func() bool {
		if time.Since(last) > time.Second {
			if err := pub.Publish(context.Background(), subject, cmd); err != nil {
				t.Fatal(err)
			}
			last = time.Now()
		}
		cam := ts.srv.Scene().Camera
		return math.Abs(cam.Ratio-0.25) < 1e-9 && math.Abs(cam.X-40) < 1e-9 && math.Abs(cam.Y) < 1e-9
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"INVALID_ARGUMENT", http.StatusBadRequest},
		{"SESSION_NOT_FOUND", http.StatusNotFound},
		{"UNKNOWN_COMMAND", http.StatusUnprocessableEntity},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(errors.Code(tt.code)); got != tt.want {
			t.Errorf("statusFor(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
