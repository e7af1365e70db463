package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/ChicagoDave/citadel/pkg/config"
	"github.com/ChicagoDave/citadel/pkg/export"
	"github.com/ChicagoDave/citadel/pkg/scene"
	"github.com/ChicagoDave/citadel/pkg/validation"
)

func smallSettlement() *config.Settlement {
	s := config.Default()
	s.Seed = 11
	s.City.Levels = 3
	s.Terrain.Width, s.Terrain.Depth = 32, 32
	s.Terrain.Elevation = config.NoiseDef{Scale: 8, Amplitude: 1, Offset: 0.5}
	s.Placement.TargetBuildings = 8
	return s
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := New("", 0, log.New(io.Discard, "", 0))
	if err := srv.Use(smallSettlement(), nil); err != nil {
		t.Fatalf("Use failed: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSceneEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp := get(t, ts.URL+"/api/scene")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var g scene.Graph
	if err := json.NewDecoder(resp.Body).Decode(&g); err != nil {
		t.Fatalf("decoding scene: %v", err)
	}
	if g.Metadata.Levels != 3 {
		t.Errorf("levels = %d, want 3", g.Metadata.Levels)
	}
	if len(g.Entities) == 0 {
		t.Error("scene has no entities")
	}
}

func TestValidationEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp := get(t, ts.URL+"/api/validation")
	var r validation.Report
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if !r.Valid {
		t.Errorf("report not valid: %s", r.Summary)
	}
}

func TestConfigEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp := get(t, ts.URL+"/api/config")
	var s config.Settlement
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatalf("decoding config: %v", err)
	}
	if s.Seed != 11 {
		t.Errorf("seed = %v, want 11", s.Seed)
	}
}

func TestSolveWithSeed(t *testing.T) {
	srv, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/solve?seed=7", "application/json", nil)
	if err != nil {
		t.Fatalf("POST solve: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	set, g, _ := srv.snapshot()
	if set.Seed != 7 {
		t.Errorf("settlement seed = %v, want 7", set.Seed)
	}
	if g == nil || g.Metadata.Seed != 7 {
		t.Errorf("scene not regenerated with seed 7")
	}
}

func TestSolveBadSeed(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/solve?seed=abc", "application/json", nil)
	if err != nil {
		t.Fatalf("POST solve: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestInvalidSettlementHasNoScene(t *testing.T) {
	srv := New("", 0, log.New(io.Discard, "", 0))
	s := smallSettlement()
	s.City.Levels = 0
	if err := srv.Use(s, nil); err != nil {
		t.Fatalf("Use failed: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp := get(t, ts.URL+"/api/scene")
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestExportEndpoint(t *testing.T) {
	srv, ts := newTestServer(t)

	resp := get(t, ts.URL+"/api/export")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	g, err := export.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decoding export: %v", err)
	}
	_, want, _ := srv.snapshot()
	if len(g.Entities) != len(want.Entities) {
		t.Errorf("entities = %d, want %d", len(g.Entities), len(want.Entities))
	}
}

func TestMeshEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp := get(t, ts.URL+"/api/mesh?owner=building-0&cells=24")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) < 84 {
		t.Fatalf("STL body is %d bytes, want at least 84", len(body))
	}
}

func TestMeshEndpointErrors(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		query string
		want  int
	}{
		{"owner=nobody", http.StatusNotFound},
		{"owner=level-0&cells=2", http.StatusBadRequest},
		{"owner=level-0&cells=x", http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp := get(t, ts.URL+"/api/mesh?"+tt.query)
		if resp.StatusCode != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.query, resp.StatusCode, tt.want)
		}
	}
}

func TestIndex(t *testing.T) {
	_, ts := newTestServer(t)

	resp := get(t, ts.URL+"/")
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte("Citadel")) {
		t.Error("index page missing title")
	}
}

func dialStream(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestStream(t *testing.T) {
	srv, ts := newTestServer(t)
	_, g, _ := srv.snapshot()
	conn := dialStream(t, ts)

	if err := conn.WriteJSON(SubscribeMsg{Type: MsgSubscribe, Batch: 10}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	var header HeaderMsg
	if err := conn.ReadJSON(&header); err != nil {
		t.Fatalf("reading header: %v", err)
	}
	if header.Type != MsgHeader || header.Header.Format != export.Format {
		t.Fatalf("header = %+v", header)
	}
	if header.Header.Entities != len(g.Entities) {
		t.Errorf("header entities = %d, want %d", header.Header.Entities, len(g.Entities))
	}

	got := 0
	batches := 0
	for {
		var raw map[string]json.RawMessage
		if err := conn.ReadJSON(&raw); err != nil {
			t.Fatalf("reading frame: %v", err)
		}
		var typ string
		_ = json.Unmarshal(raw["type"], &typ)
		if typ == MsgDone {
			var n int
			_ = json.Unmarshal(raw["entities"], &n)
			if n != got {
				t.Errorf("DONE entities = %d, received %d", n, got)
			}
			break
		}
		if typ != MsgEntities {
			t.Fatalf("unexpected frame type %q", typ)
		}
		var batch []scene.Entity
		if err := json.Unmarshal(raw["entities"], &batch); err != nil {
			t.Fatalf("decoding batch: %v", err)
		}
		if len(batch) > 10 {
			t.Errorf("batch of %d exceeds 10", len(batch))
		}
		got += len(batch)
		batches++
	}
	if got != len(g.Entities) {
		t.Errorf("received %d entities, want %d", got, len(g.Entities))
	}
	t.Logf("streamed %d entities in %d batches", got, batches)
}

func TestStreamOwnerFilter(t *testing.T) {
	srv, ts := newTestServer(t)
	_, g, _ := srv.snapshot()
	conn := dialStream(t, ts)

	owner := scene.BuildingOwner(0)
	if err := conn.WriteJSON(SubscribeMsg{Type: MsgSubscribe, Owner: owner}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	var header HeaderMsg
	if err := conn.ReadJSON(&header); err != nil {
		t.Fatalf("reading header: %v", err)
	}
	if want := len(g.Owner(owner)); header.Header.Entities != want {
		t.Errorf("header entities = %d, want %d", header.Header.Entities, want)
	}
}

func TestStreamRejectsBadSubscribe(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialStream(t, ts)

	if err := conn.WriteJSON(map[string]string{"type": "HELLO"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Errorf("err = %v, want policy violation close", err)
	}
}

func TestNormalizeSubscribe(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, defaultBatch},
		{-3, defaultBatch},
		{50, 50},
		{maxBatch + 1, maxBatch},
	}
	for _, tt := range tests {
		sub := SubscribeMsg{Batch: tt.in}
		normalizeSubscribe(&sub)
		if sub.Batch != tt.want {
			t.Errorf("normalize(%d) = %d, want %d", tt.in, sub.Batch, tt.want)
		}
	}
}
