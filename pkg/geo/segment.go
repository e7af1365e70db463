package geo

import "math"

// Segment is a straight line segment in the XZ plane.
type Segment struct {
	Start Point2D `json:"start"`
	End   Point2D `json:"end"`
}

// Seg is a shorthand constructor for Segment.
func Seg(a, b Point2D) Segment {
	return Segment{Start: a, End: b}
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return s.Start.Distance(s.End)
}

// NearestPoint returns the closest point on the segment to p, and the distance.
func (s Segment) NearestPoint(p Point2D) (Point2D, float64) {
	ab := s.End.Sub(s.Start)
	abLen2 := ab.Dot(ab)
	if abLen2 < 1e-12 {
		return s.Start, p.Distance(s.Start)
	}
	t := p.Sub(s.Start).Dot(ab) / abLen2
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	closest := s.Start.Add(ab.Scale(t))
	return closest, p.Distance(closest)
}

// Intersect returns the crossing point of two segments. Parallel and
// collinear segments report no intersection.
func (s Segment) Intersect(o Segment) (Point2D, bool) {
	r := s.End.Sub(s.Start)
	q := o.End.Sub(o.Start)
	d := r.Cross(q)
	if math.Abs(d) < 1e-12 {
		return Point2D{}, false
	}
	w := o.Start.Sub(s.Start)
	t := w.Cross(q) / d
	u := w.Cross(r) / d
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Point2D{}, false
	}
	return s.Start.Add(r.Scale(t)), true
}
