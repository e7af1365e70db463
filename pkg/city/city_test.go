package city

import (
	"math"
	"testing"

	"github.com/ChicagoDave/citadel/pkg/geo"
	"github.com/ChicagoDave/citadel/pkg/shape"
)

func testConfig() Config {
	return Config{
		Position:   geo.V3(0, 0, 0),
		Seed:       11,
		BaseHeight: 2,
		Levels:     DefaultLevels,
		WallHeight: 4,
		WallWidth:  1,
		LevelWidth: 6,
	}
}

func TestGatesFor(t *testing.T) {
	tests := []struct {
		index    int
		entrance GatePosition
		exit     GatePosition
	}{
		{0, GateCenter, GateRight},
		{1, GateRight, GateLeft},
		{2, GateLeft, GateRight},
		{3, GateRight, GateLeft},
		{6, GateLeft, GateRight},
	}
	for _, tt := range tests {
		in, out := GatesFor(tt.index)
		if in != tt.entrance || out != tt.exit {
			t.Errorf("GatesFor(%d) = %s/%s, want %s/%s", tt.index, in, out, tt.entrance, tt.exit)
		}
	}

	// Each exit must line up with the next level's entrance.
	for i := 0; i < 6; i++ {
		_, exit := GatesFor(i)
		next, _ := GatesFor(i + 1)
		if exit != next {
			t.Errorf("level %d exit %s does not match level %d entrance %s", i, exit, i+1, next)
		}
	}
}

func TestDerivedValues(t *testing.T) {
	c := New(testConfig())
	if c.Len() != DefaultLevels {
		t.Fatalf("levels = %d, want %d", c.Len(), DefaultLevels)
	}
	for i := 0; i < c.Len(); i++ {
		d := c.Derived(i)
		wantR := float64(DefaultLevels-i) * 7
		if d.Radius != wantR {
			t.Errorf("level %d radius = %f, want %f", i, d.Radius, wantR)
		}
		wantH := 2.0
		if i > 1 {
			wantH += float64(i-1) * 2
		}
		if d.Height != wantH {
			t.Errorf("level %d height = %f, want %f", i, d.Height, wantH)
		}
	}
}

func TestSegmentCount(t *testing.T) {
	tests := []struct {
		radius float64
		want   int
	}{
		{0, 10},
		{20, 10},
		{30, 10},
		{45, 15},
		{49, 16},
	}
	for _, tt := range tests {
		if got := SegmentCount(tt.radius); got != tt.want {
			t.Errorf("SegmentCount(%f) = %d, want %d", tt.radius, got, tt.want)
		}
	}
}

func TestGateSegment(t *testing.T) {
	tests := []struct {
		pos  GatePosition
		segs int
		want int
	}{
		{GateCenter, 15, 7},
		{GateRight, 15, 13},
		{GateLeft, 15, 1},
		{GateCenter, 10, 5},
		{GateRight, 10, 9},
		{GateLeft, 10, 1},
	}
	for _, tt := range tests {
		if got := GateSegment(tt.pos, tt.segs); got != tt.want {
			t.Errorf("GateSegment(%s, %d) = %d, want %d", tt.pos, tt.segs, got, tt.want)
		}
	}
}

// segmentIndex recovers which wall segment a wedge belongs to from its angle.
func segmentIndex(p shape.Primitive, segments int) int {
	theta := math.Atan2(p.Position.Z, p.Position.X)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	step := 2 * math.Pi / float64(segments)
	return int(math.Floor(theta / step))
}

func TestGateConsistency(t *testing.T) {
	c := New(testConfig())
	for i := 0; i < c.Len(); i++ {
		d := c.Derived(i)
		blocks := c.WallBlocks(i)
		if len(blocks) != d.Segments-1 {
			t.Fatalf("level %d: %d wall blocks, want %d", i, len(blocks), d.Segments-1)
		}
		present := make(map[int]bool)
		for _, b := range blocks {
			present[segmentIndex(b, d.Segments)] = true
		}
		var missing []int
		for s := 0; s < d.Segments; s++ {
			if !present[s] {
				missing = append(missing, s)
			}
		}
		if len(missing) != 1 || missing[0] != d.GateSegment {
			t.Errorf("level %d: missing segments %v, want [%d]", i, missing, d.GateSegment)
		}
	}
}

func TestCascadeWallHeight(t *testing.T) {
	c := New(testConfig())
	before := make([]Derived, c.Len())
	for i := range before {
		before[i] = c.Derived(i)
	}
	topBefore := c.Derived(2).Height + c.Level(2).WallHeight

	if err := c.SetWallHeight(2, 10); err != nil {
		t.Fatal(err)
	}

	for i := 0; i <= 2; i++ {
		if c.Derived(i).Height != before[i].Height {
			t.Errorf("level %d height changed: %f -> %f", i, before[i].Height, c.Derived(i).Height)
		}
	}
	if top := c.Derived(2).Height + c.Level(2).WallHeight; top == topBefore {
		t.Error("level 2 wall top did not change")
	}
	for i := 3; i < c.Len(); i++ {
		if c.Derived(i).Height == before[i].Height {
			t.Errorf("level %d height unchanged after level 2 wall grew", i)
		}
	}
	assertCacheFresh(t, c)
}

func TestCascadeWallWidth(t *testing.T) {
	c := New(testConfig())
	before := make([]Derived, c.Len())
	for i := range before {
		before[i] = c.Derived(i)
	}

	if err := c.SetWallWidth(2, 3); err != nil {
		t.Fatal(err)
	}

	for i := 0; i <= 2; i++ {
		if c.Derived(i).Radius == before[i].Radius {
			t.Errorf("level %d radius unchanged after level 2 wall widened", i)
		}
	}
	for i := 3; i < c.Len(); i++ {
		if c.Derived(i).Radius != before[i].Radius {
			t.Errorf("level %d radius changed: %f -> %f", i, before[i].Radius, c.Derived(i).Radius)
		}
	}
	assertCacheFresh(t, c)
}

func TestCascadeWidth(t *testing.T) {
	c := New(testConfig())
	if err := c.SetWidth(4, 12); err != nil {
		t.Fatal(err)
	}
	assertCacheFresh(t, c)
	if c.Derived(0).Radius != 55 {
		t.Errorf("level 0 radius = %f, want 55", c.Derived(0).Radius)
	}
}

func TestSetterRejectsBadIndex(t *testing.T) {
	c := New(testConfig())
	for _, i := range []int{-1, DefaultLevels} {
		if err := c.SetWallHeight(i, 1); err == nil {
			t.Errorf("SetWallHeight(%d) accepted", i)
		}
		if err := c.SetWallWidth(i, 1); err == nil {
			t.Errorf("SetWallWidth(%d) accepted", i)
		}
		if err := c.SetWidth(i, 1); err == nil {
			t.Errorf("SetWidth(%d) accepted", i)
		}
	}
}

// assertCacheFresh checks every cached value matches a fresh derivation.
func assertCacheFresh(t *testing.T, c *City) {
	t.Helper()
	levels := c.Levels()
	for i := range levels {
		if got, want := c.Derived(i), Derive(c.BaseHeight, levels, i); got != want {
			t.Errorf("level %d cache = %+v, fresh = %+v", i, got, want)
		}
	}
}

func TestGatehouse(t *testing.T) {
	c := New(testConfig())
	for i := 0; i < c.Len(); i++ {
		towers := c.Gatehouse(i)
		if len(towers) != 2 {
			t.Fatalf("level %d: %d towers, want 2", i, len(towers))
		}
		for _, tw := range towers {
			if tw.Variant != shape.VariantBattlement {
				t.Errorf("level %d: tower variant %s", i, tw.Variant)
			}
			r := math.Hypot(tw.Position.X, tw.Position.Z)
			want := c.Derived(i).Radius - c.Level(i).WallWidth/2
			if math.Abs(r-want) > 1e-9 {
				t.Errorf("level %d: tower radius %f, want %f", i, r, want)
			}
		}
	}
}

func TestGetBlocksFinite(t *testing.T) {
	c := New(testConfig())
	blocks := c.GetBlocks()
	if len(blocks) == 0 {
		t.Fatal("expected city blocks")
	}
	textures := map[shape.Texture]int{}
	for _, b := range blocks {
		if !b.IsFinite() {
			t.Fatalf("non-finite primitive %+v", b)
		}
		textures[b.Texture]++
	}
	if textures[shape.TextureWall] == 0 || textures[shape.TextureLevelGround] == 0 {
		t.Errorf("missing wall or ground primitives: %v", textures)
	}
	t.Logf("city blocks: %d %v", len(blocks), textures)
}
