// Package export writes scene graphs as zstd-compressed JSON lines: one
// header line followed by one line per entity.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/ChicagoDave/citadel/pkg/scene"
)

// Format tags the header line.
const Format = "citadel.scene.v1"

// Header is the first line of an archive.
type Header struct {
	Format     string            `json:"format"`
	Metadata   scene.Metadata    `json:"metadata"`
	Entities   int               `json:"entities"`
	Footprints []scene.Footprint `json:"footprints"`
}

// Writer streams entities into a compressed archive.
type Writer struct {
	enc *zstd.Encoder
	w   *bufio.Writer
	n   int
}

// NewWriter wraps dst. Close must be called to flush the frame; it does
// not close dst.
func NewWriter(dst io.Writer) (*Writer, error) {
	enc, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	return &Writer{enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

// WriteHeader writes the header line. It must be the first write.
func (w *Writer) WriteHeader(h Header) error {
	if w.n != 0 {
		return fmt.Errorf("header written after %d entities", w.n)
	}
	h.Format = Format
	return w.line(h)
}

// Write appends one entity.
func (w *Writer) Write(e scene.Entity) error {
	if err := w.line(e); err != nil {
		return err
	}
	w.n++
	return nil
}

func (w *Writer) line(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding line: %w", err)
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Count returns the number of entities written.
func (w *Writer) Count() int {
	return w.n
}

// Close flushes buffered lines and ends the zstd frame.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		_ = w.enc.Close()
		return err
	}
	return w.enc.Close()
}

// Encode writes the whole graph to dst.
func Encode(dst io.Writer, g *scene.Graph) error {
	w, err := NewWriter(dst)
	if err != nil {
		return err
	}
	if err := w.WriteHeader(Header{
		Metadata:   g.Metadata,
		Entities:   len(g.Entities),
		Footprints: g.Footprints,
	}); err != nil {
		_ = w.Close()
		return err
	}
	for _, e := range g.Entities {
		if err := w.Write(e); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}

// WriteFile writes g to path, creating parent directories.
func WriteFile(path string, g *scene.Graph) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := Encode(f, g); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Decode reads an archive back into a graph, rebuilding group indices.
func Decode(src io.Reader) (*scene.Graph, error) {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("reading header: %w", err)
		}
		return nil, fmt.Errorf("reading header: empty archive")
	}
	var h Header
	if err := json.Unmarshal(sc.Bytes(), &h); err != nil {
		return nil, fmt.Errorf("decoding header: %w", err)
	}
	if h.Format != Format {
		return nil, fmt.Errorf("unsupported archive format %q", h.Format)
	}

	g := scene.NewGraph()
	g.Metadata = h.Metadata
	if h.Footprints != nil {
		g.Footprints = h.Footprints
	}
	for line := 2; sc.Scan(); line++ {
		var e scene.Entity
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("decoding line %d: %w", line, err)
		}
		g.Add(e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading entities: %w", err)
	}
	if len(g.Entities) != h.Entities {
		return nil, fmt.Errorf("archive truncated: header lists %d entities, read %d", h.Entities, len(g.Entities))
	}
	return g, nil
}

// ReadFile reads an archive from path.
func ReadFile(path string) (*scene.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
