package geo

import (
	"math"
	"testing"
)

const tolerance = 0.01

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

// --- Point2D tests ---

func TestPointDistance(t *testing.T) {
	a := Pt(0, 0)
	b := Pt(3, 4)
	if !approxEqual(a.Distance(b), 5.0, tolerance) {
		t.Errorf("expected distance 5.0, got %f", a.Distance(b))
	}
}

func TestPointRotate(t *testing.T) {
	p := Pt(1, 0)
	r := p.Rotate(math.Pi / 2)
	if !approxEqual(r.X, 0, tolerance) || !approxEqual(r.Z, 1, tolerance) {
		t.Errorf("expected (0,1), got (%f,%f)", r.X, r.Z)
	}
}

func TestPointCross(t *testing.T) {
	if c := Pt(1, 0).Cross(Pt(0, 1)); c != 1 {
		t.Errorf("Cross = %v, want 1", c)
	}
	if c := Pt(2, 2).Cross(Pt(1, 1)); c != 0 {
		t.Errorf("Cross of parallel vectors = %v, want 0", c)
	}
}

// --- Vec3 tests ---

func TestVec3Axis(t *testing.T) {
	v := V3(1, 2, 3)
	for a, want := range []float64{1, 2, 3} {
		if got := v.Axis(a); got != want {
			t.Errorf("Axis(%d) = %f, want %f", a, got, want)
		}
	}
	w := v.WithAxis(1, 9)
	if w.Y != 9 || v.Y != 2 {
		t.Errorf("WithAxis mutated receiver or failed: v=%v w=%v", v, w)
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !V3(1, 2, 3).IsFinite() {
		t.Error("expected finite vector")
	}
	if V3(math.NaN(), 0, 0).IsFinite() {
		t.Error("NaN component reported finite")
	}
	if V3(0, math.Inf(-1), 0).IsFinite() {
		t.Error("Inf component reported finite")
	}
}

// --- Segment tests ---

func TestSegmentNearestPoint(t *testing.T) {
	s := Seg(Pt(0, 0), Pt(10, 0))
	tests := []struct {
		p    Point2D
		want Point2D
		dist float64
	}{
		{Pt(5, 3), Pt(5, 0), 3},
		{Pt(-4, 3), Pt(0, 0), 5},
		{Pt(13, 4), Pt(10, 0), 5},
	}
	for _, tt := range tests {
		got, d := s.NearestPoint(tt.p)
		if !approxEqual(got.X, tt.want.X, tolerance) || !approxEqual(got.Z, tt.want.Z, tolerance) {
			t.Errorf("NearestPoint(%v) = %v, want %v", tt.p, got, tt.want)
		}
		if !approxEqual(d, tt.dist, tolerance) {
			t.Errorf("NearestPoint(%v) distance = %f, want %f", tt.p, d, tt.dist)
		}
	}
}

func TestSegmentIntersect(t *testing.T) {
	a := Seg(Pt(0, 0), Pt(10, 10))
	b := Seg(Pt(0, 10), Pt(10, 0))
	p, ok := a.Intersect(b)
	if !ok {
		t.Fatal("expected crossing segments to intersect")
	}
	if !approxEqual(p.X, 5, tolerance) || !approxEqual(p.Z, 5, tolerance) {
		t.Errorf("intersection = %v, want (5,5)", p)
	}

	c := Seg(Pt(0, 1), Pt(10, 11))
	if _, ok := a.Intersect(c); ok {
		t.Error("parallel segments should not intersect")
	}

	d := Seg(Pt(20, 0), Pt(20, 10))
	if _, ok := a.Intersect(d); ok {
		t.Error("disjoint segments should not intersect")
	}
}
