package geometry

import "math"
import "fmt"

type Point struct {
	X, Y, Z float64
}

func (p Point) Dot(o Point) float64 {
	return p.X*o.X + p.Y*o.Y + p.Z*o.Z
}

func (p Point) Cross(o Point) Point {
	return Point{
		X: p.Y*o.Z - p.Z*o.Y,
		Y: p.Z*o.X - p.X*o.Z,
		Z: p.X*o.Y - p.Y*o.X,
	}
}

func (p Point) Norm() float64 {
	return math.Sqrt(p.Dot(p))
}

func (p Point) Sum(o Point) Point {
	return Point{p.X + o.X, p.Y + o.Y, p.Z + o.Z}
}

func (p Point) Diff(o Point) Point {
	return Point{p.X - o.X, p.Y - o.Y, p.Z - o.Z}
}

func (p Point) Divide(d float64) Point {
	return Point{p.X / d, p.Y / d, p.Z / d}
}

// DistXY is the distance between two points projected onto the XY plane.
func (p Point) DistXY(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

func (p Point) Dist(o Point) float64 {
	return p.Diff(o).Norm()
}

func (p Point) String() string {
	return fmt.Sprintf("Point{X: %f, Y: %f, Z: %f}", p.X, p.Y, p.Z)
}
