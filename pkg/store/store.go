// Package store indexes generation runs and their primitives in SQLite.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ChicagoDave/citadel/pkg/geo"
	"github.com/ChicagoDave/citadel/pkg/scene"
	"github.com/ChicagoDave/citadel/pkg/shape"
	"github.com/ChicagoDave/citadel/pkg/terrain"
	"github.com/ChicagoDave/citadel/pkg/validation"
)

// ErrNotFound is returned for unknown run IDs.
var ErrNotFound = errors.New("run not found")

// Store is a SQLite-backed run index.
type Store struct {
	db *sql.DB
}

// Run summarizes one stored generation.
type Run struct {
	ID        int64             `json:"id"`
	Version   string            `json:"version"`
	Seed      float64           `json:"seed"`
	CreatedAt string            `json:"created_at"`
	Levels    int               `json:"levels"`
	Buildings int               `json:"buildings"`
	Entities  int               `json:"entities"`
	Bounds    scene.BoundingBox `json:"bounds"`
	Valid     bool              `json:"valid"`
	Summary   string            `json:"summary"`
	Digest    string            `json:"digest"`
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			version TEXT NOT NULL,
			seed REAL NOT NULL,
			created_at TEXT NOT NULL,
			levels INTEGER NOT NULL,
			buildings INTEGER NOT NULL,
			entities INTEGER NOT NULL,
			min_x REAL, min_y REAL, min_z REAL,
			max_x REAL, max_y REAL, max_z REAL,
			valid INTEGER NOT NULL,
			summary TEXT NOT NULL,
			digest TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS runs_digest ON runs(digest);`,
		`CREATE TABLE IF NOT EXISTS entities (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			id TEXT NOT NULL,
			owner TEXT NOT NULL,
			source TEXT NOT NULL,
			kind TEXT NOT NULL,
			texture TEXT NOT NULL,
			px REAL, py REAL, pz REAL,
			fx REAL, fy REAL, fz REAL,
			rx REAL, ry REAL, rz REAL,
			scale_from_center INTEGER NOT NULL,
			adjust_json TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS entities_owner ON entities(run_id, owner);`,
		`CREATE TABLE IF NOT EXISTS footprints (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			owner TEXT NOT NULL,
			x INTEGER, z INTEGER, w INTEGER, d INTEGER,
			PRIMARY KEY (run_id, owner)
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Digest hashes the entity list. Equal settlements give equal digests.
func Digest(g *scene.Graph) (string, error) {
	b, err := json.Marshal(g.Entities)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// SaveRun stores g and its validation report in one transaction and
// returns the new run ID. A nil report is stored as valid.
func (s *Store) SaveRun(ctx context.Context, g *scene.Graph, report *validation.Report) (int64, error) {
	digest, err := Digest(g)
	if err != nil {
		return 0, fmt.Errorf("digest: %w", err)
	}
	valid, summary := true, ""
	if report != nil {
		valid, summary = report.Valid, report.Summary
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	b := g.Metadata.Bounds
	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs(version,seed,created_at,levels,buildings,entities,min_x,min_y,min_z,max_x,max_y,max_z,valid,summary,digest)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		g.Metadata.Version, g.Metadata.Seed, time.Now().UTC().Format(time.RFC3339),
		g.Metadata.Levels, g.Metadata.Buildings, len(g.Entities),
		b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z,
		boolInt(valid), summary, digest,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	insertEntity, err := tx.PrepareContext(ctx,
		`INSERT INTO entities(run_id,seq,id,owner,source,kind,texture,px,py,pz,fx,fy,fz,rx,ry,rz,scale_from_center,adjust_json)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return 0, err
	}
	defer insertEntity.Close()

	for i, e := range g.Entities {
		p := e.Primitive
		adj, _ := json.Marshal(p.Adjust)
		if _, err := insertEntity.ExecContext(ctx,
			id, i, e.ID, e.Owner, string(e.Source), string(p.Kind), string(p.Texture),
			p.Position.X, p.Position.Y, p.Position.Z,
			p.Footprint.X, p.Footprint.Y, p.Footprint.Z,
			p.Rotation.X, p.Rotation.Y, p.Rotation.Z,
			boolInt(p.ScaleFromCenter), string(adj),
		); err != nil {
			return 0, fmt.Errorf("insert entity %s: %w", e.ID, err)
		}
	}

	for _, f := range g.Footprints {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO footprints(run_id,owner,x,z,w,d) VALUES(?,?,?,?,?,?)`,
			id, f.Owner, f.Rect.X, f.Rect.Z, f.Rect.W, f.Rect.D,
		); err != nil {
			return 0, fmt.Errorf("insert footprint %s: %w", f.Owner, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

const runColumns = `id,version,seed,created_at,levels,buildings,entities,min_x,min_y,min_z,max_x,max_y,max_z,valid,summary,digest`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var valid int
	err := sc.Scan(&r.ID, &r.Version, &r.Seed, &r.CreatedAt, &r.Levels, &r.Buildings, &r.Entities,
		&r.Bounds.Min.X, &r.Bounds.Min.Y, &r.Bounds.Min.Z,
		&r.Bounds.Max.X, &r.Bounds.Max.Y, &r.Bounds.Max.Z,
		&valid, &r.Summary, &r.Digest)
	r.Valid = valid != 0
	return r, err
}

// ListRuns returns every run, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Run returns one run.
func (s *Store) Run(ctx context.Context, id int64) (Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %d: %w", id, ErrNotFound)
	}
	return r, err
}

// RunsByDigest returns the IDs of runs whose entities hash to digest.
func (s *Store) RunsByDigest(ctx context.Context, digest string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs WHERE digest=? ORDER BY id`, digest)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Entities returns a run's entities in graph order. An empty owner
// returns all of them.
func (s *Store) Entities(ctx context.Context, runID int64, owner string) ([]scene.Entity, error) {
	q := `SELECT id,owner,source,kind,texture,px,py,pz,fx,fy,fz,rx,ry,rz,scale_from_center,adjust_json
		FROM entities WHERE run_id=?`
	args := []any{runID}
	if owner != "" {
		q += ` AND owner=?`
		args = append(args, owner)
	}
	q += ` ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scene.Entity
	for rows.Next() {
		var (
			e              scene.Entity
			src, kind, tex string
			sfc            int
			adj            string
			pos, fp, rot   geo.Vec3
		)
		if err := rows.Scan(&e.ID, &e.Owner, &src, &kind, &tex,
			&pos.X, &pos.Y, &pos.Z, &fp.X, &fp.Y, &fp.Z, &rot.X, &rot.Y, &rot.Z,
			&sfc, &adj); err != nil {
			return nil, err
		}
		e.Source = scene.Source(src)
		e.Primitive = shape.NewPrimitive(shape.Kind(kind), pos, fp, rot, shape.Texture(tex))
		e.Primitive.ScaleFromCenter = sfc != 0
		if err := json.Unmarshal([]byte(adj), &e.Primitive.Adjust); err != nil {
			return nil, fmt.Errorf("entity %s adjust: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Graph rebuilds a stored run as a scene graph.
func (s *Store) Graph(ctx context.Context, runID int64) (*scene.Graph, error) {
	run, err := s.Run(ctx, runID)
	if err != nil {
		return nil, err
	}
	entities, err := s.Entities(ctx, runID, "")
	if err != nil {
		return nil, err
	}

	g := scene.NewGraph()
	g.Metadata = scene.Metadata{
		Version:     run.Version,
		Seed:        run.Seed,
		GeneratedAt: run.CreatedAt,
		Levels:      run.Levels,
		Buildings:   run.Buildings,
		Bounds:      run.Bounds,
	}
	for _, e := range entities {
		g.Add(e)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT owner,x,z,w,d FROM footprints WHERE run_id=? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var f scene.Footprint
		var r terrain.Rect
		if err := rows.Scan(&f.Owner, &r.X, &r.Z, &r.W, &r.D); err != nil {
			return nil, err
		}
		f.Rect = r
		g.Footprints = append(g.Footprints, f)
	}
	return g, rows.Err()
}

// DeleteRun removes a run and everything stored with it.
func (s *Store) DeleteRun(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %d: %w", id, ErrNotFound)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
