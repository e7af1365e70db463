package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ChicagoDave/citadel/pkg/config"
	"github.com/ChicagoDave/citadel/pkg/export"
	"github.com/ChicagoDave/citadel/pkg/mesh"
	"github.com/ChicagoDave/citadel/pkg/scene"
	"github.com/ChicagoDave/citadel/pkg/shape"
	"github.com/ChicagoDave/citadel/pkg/validation"
)

// Server is the local development server for previewing settlements.
type Server struct {
	projectPath string
	port        int
	log         *log.Logger

	upgrader websocket.Upgrader

	mu         sync.RWMutex
	settlement *config.Settlement
	graph      *scene.Graph
	report     *validation.Report
}

// New creates a server for the given project directory. An empty path
// serves the default settlement.
func New(projectPath string, port int, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		projectPath: projectPath,
		port:        port,
		log:         logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Load reads the project and generates the scene.
func (s *Server) Load() error {
	set, report, err := validation.LoadProject(s.projectPath)
	if err != nil {
		return err
	}
	return s.Use(set, report)
}

// Use generates the scene for set. report carries earlier validation
// results and may be nil.
func (s *Server) Use(set *config.Settlement, report *validation.Report) error {
	if report == nil {
		report = validation.ValidateConfig(set)
	}
	var g *scene.Graph
	if report.Valid {
		var err error
		g, err = scene.Generate(set)
		if err != nil {
			return err
		}
		report.Merge(scene.ValidateGraph(g))
	}

	s.mu.Lock()
	s.settlement = set
	s.graph = g
	s.report = report
	s.mu.Unlock()

	if g != nil {
		s.log.Printf("generated seed %v: %d entities, %d buildings (%s)", set.Seed, len(g.Entities), g.Metadata.Buildings, report.Summary)
	} else {
		s.log.Printf("settlement invalid: %s", report.Summary)
	}
	return nil
}

func (s *Server) snapshot() (*config.Settlement, *scene.Graph, *validation.Report) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settlement, s.graph, s.report
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/scene", s.handleScene)
	mux.HandleFunc("GET /api/validation", s.handleValidation)
	mux.HandleFunc("POST /api/solve", s.handleSolve)
	mux.HandleFunc("GET /api/config", s.handleConfig)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("GET /api/mesh", s.handleMesh)
	mux.HandleFunc("GET /api/stream", s.handleStream)
	mux.HandleFunc("GET /", s.handleIndex)

	return mux
}

// Start loads the project and launches the HTTP server.
func (s *Server) Start() error {
	if err := s.Load(); err != nil {
		return fmt.Errorf("loading project: %w", err)
	}

	addr := fmt.Sprintf(":%d", s.port)
	s.log.Printf("Citadel server starting on http://localhost%s", addr)
	if s.projectPath != "" {
		s.log.Printf("Project: %s", s.projectPath)
	} else {
		s.log.Printf("Project: default settlement")
	}

	return http.ListenAndServe(addr, s.Handler())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html><head><title>Citadel</title></head>
<body style="margin:0;background:#111;color:#fff;font-family:system-ui;display:flex;align-items:center;justify-content:center;height:100vh">
<div style="text-align:center">
<h1>Citadel</h1>
<p>Scene JSON at <code>/api/scene</code>, primitive stream at <code>/api/stream</code>.</p>
</div>
</body></html>`)
}

func (s *Server) handleScene(w http.ResponseWriter, _ *http.Request) {
	_, g, _ := s.snapshot()
	if g == nil {
		writeError(w, http.StatusConflict, "settlement has validation errors; see /api/validation")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleValidation(w http.ResponseWriter, _ *http.Request) {
	_, _, r := s.snapshot()
	if r == nil {
		r = validation.NewReport()
	}
	writeJSON(w, http.StatusOK, r)
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	set, _, _ := s.snapshot()
	writeJSON(w, http.StatusOK, set)
}

// handleSolve regenerates with an optional new seed.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	set, _, _ := s.snapshot()
	if set == nil {
		writeError(w, http.StatusConflict, "no settlement loaded")
		return
	}
	next := *set
	if v := r.URL.Query().Get("seed"); v != "" {
		seed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("bad seed %q", v))
			return
		}
		next.Seed = seed
	}
	if err := s.Use(&next, nil); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	_, g, report := s.snapshot()
	resp := map[string]any{
		"seed":       next.Seed,
		"validation": report,
	}
	if g != nil {
		resp["entities"] = len(g.Entities)
		resp["buildings"] = g.Metadata.Buildings
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	_, g, _ := s.snapshot()
	if g == nil {
		writeError(w, http.StatusConflict, "no scene")
		return
	}
	var buf bytes.Buffer
	if err := export.Encode(&buf, g); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/zstd")
	w.Header().Set("Content-Disposition", `attachment; filename="scene.jsonl.zst"`)
	_, _ = w.Write(buf.Bytes())
}

// handleMesh renders one owner's primitives as STL.
func (s *Server) handleMesh(w http.ResponseWriter, r *http.Request) {
	_, g, _ := s.snapshot()
	if g == nil {
		writeError(w, http.StatusConflict, "no scene")
		return
	}
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		owner = scene.BuildingOwner(0)
	}
	cells := mesh.DefaultCells
	if v := r.URL.Query().Get("cells"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 8 || n > 400 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("cells must be in 8..400, got %q", v))
			return
		}
		cells = n
	}

	entities := g.Owner(owner)
	if len(entities) == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no entities for owner %q", owner))
		return
	}
	ps := make([]shape.Primitive, len(entities))
	for i, e := range entities {
		ps[i] = e.Primitive
	}
	m, err := mesh.Build(ps, cells)
	if errors.Is(err, mesh.ErrEmpty) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := mesh.WriteSTL(&buf, m); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "model/stl")
	_, _ = w.Write(buf.Bytes())
}
