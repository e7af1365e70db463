package geo

import "math"

// Point2D is a point or direction on the ground plane. Z maps to the
// scene's Z axis; height lives in Vec3.Y.
type Point2D struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Pt builds a Point2D.
func Pt(x, z float64) Point2D {
	return Point2D{X: x, Z: z}
}

func (p Point2D) Add(q Point2D) Point2D {
	return Point2D{p.X + q.X, p.Z + q.Z}
}

func (p Point2D) Sub(q Point2D) Point2D {
	return Point2D{p.X - q.X, p.Z - q.Z}
}

func (p Point2D) Scale(s float64) Point2D {
	return Point2D{p.X * s, p.Z * s}
}

func (p Point2D) Dot(q Point2D) float64 {
	return p.X*q.X + p.Z*q.Z
}

// Cross returns the signed area of the parallelogram spanned by p and q.
func (p Point2D) Cross(q Point2D) float64 {
	return p.X*q.Z - p.Z*q.X
}

func (p Point2D) Length() float64 {
	return math.Hypot(p.X, p.Z)
}

func (p Point2D) Distance(q Point2D) float64 {
	return p.Sub(q).Length()
}

// Rotate turns p by angle radians about the origin, counterclockwise
// when X points right and Z points up.
func (p Point2D) Rotate(angle float64) Point2D {
	c, s := math.Cos(angle), math.Sin(angle)
	return Point2D{
		X: p.X*c - p.Z*s,
		Z: p.X*s + p.Z*c,
	}
}
