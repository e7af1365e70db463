package mesh

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

const stlHeader = "citadel preview mesh"

// WriteSTL writes m as binary STL.
func WriteSTL(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)

	var header [80]byte
	copy(header[:], stlHeader)
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	if len(m.Triangles) > math.MaxUint32 {
		return fmt.Errorf("too many triangles: %d", len(m.Triangles))
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(m.Triangles))); err != nil {
		return err
	}

	var rec [12]float32
	for _, t := range m.Triangles {
		rec[0], rec[1], rec[2] = float32(t.Normal.X), float32(t.Normal.Y), float32(t.Normal.Z)
		for j, v := range t.V {
			rec[3+j*3] = float32(v.X)
			rec[4+j*3] = float32(v.Y)
			rec[5+j*3] = float32(v.Z)
		}
		if err := binary.Write(bw, binary.LittleEndian, rec); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(0)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteSTLFile writes m to path, creating parent directories.
func WriteSTLFile(path string, m *Mesh) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSTL(f, m); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
