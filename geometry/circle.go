package geometry

import "errors"
import "math"

var (
	// ErrDegenerateGeometry is returned when points are collinear or a
	// chord has zero length, leaving no circle to fit.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrInvalidArcGeometry is returned when a radius/offset/endpoint
	// combination has no real solution.
	ErrInvalidArcGeometry = errors.New("invalid arc geometry")
)

const fitEpsilon = 1e-12

type Circle struct {
	Center Point
	Radius float64
}

// FitCircle computes the circle through three points in the XY plane
// using the determinant formula. Fails with ErrDegenerateGeometry when
// the points are collinear.
func FitCircle(p0, p1, p2 Point) (Circle, error) {
	d := 2 * (p0.X*(p1.Y-p2.Y) + p1.X*(p2.Y-p0.Y) + p2.X*(p0.Y-p1.Y))
	if math.Abs(d) < fitEpsilon {
		return Circle{}, ErrDegenerateGeometry
	}

	sq0 := p0.X*p0.X + p0.Y*p0.Y
	sq1 := p1.X*p1.X + p1.Y*p1.Y
	sq2 := p2.X*p2.X + p2.Y*p2.Y

	cx := (sq0*(p1.Y-p2.Y) + sq1*(p2.Y-p0.Y) + sq2*(p0.Y-p1.Y)) / d
	cy := (sq0*(p2.X-p1.X) + sq1*(p0.X-p2.X) + sq2*(p1.X-p0.X)) / d

	c := Point{cx, cy, 0}
	return Circle{Center: c, Radius: c.DistXY(p0)}, nil
}

// Deviation is the absolute difference between the distance from p to
// the circle center and the circle radius, measured in the XY plane.
func Deviation(p Point, c Circle) float64 {
	return math.Abs(p.DistXY(c.Center) - c.Radius)
}

// CircleFitter is a running least-squares circle fit (Kasa method).
// Adding a point is O(1); the accumulator is reused across candidates
// via Reset.
type CircleFitter struct {
	n             float64
	sx, sy        float64
	sxx, syy, sxy float64
	sxz, syz, sz  float64
}

func (f *CircleFitter) Reset() {
	*f = CircleFitter{}
}

func (f *CircleFitter) Add(p Point) {
	z := p.X*p.X + p.Y*p.Y
	f.n++
	f.sx += p.X
	f.sy += p.Y
	f.sxx += p.X * p.X
	f.syy += p.Y * p.Y
	f.sxy += p.X * p.Y
	f.sxz += p.X * z
	f.syz += p.Y * z
	f.sz += z
}

func (f *CircleFitter) Count() int {
	return int(f.n)
}

// Fit solves the normal equations of the Kasa formulation for the
// accumulated points. Fails with ErrDegenerateGeometry when fewer than
// three points have been added or the points are collinear.
func (f *CircleFitter) Fit() (Circle, error) {
	if f.n < 3 {
		return Circle{}, ErrDegenerateGeometry
	}

	// Solve
	//   | sxx sxy sx |   | a |     | sxz |
	//   | sxy syy sy | * | b | = - | syz |
	//   | sx  sy  n  |   | c |     | sz  |
	// by Cramer's rule, where x^2 + y^2 + ax + by + c = 0.
	det := f.sxx*(f.syy*f.n-f.sy*f.sy) -
		f.sxy*(f.sxy*f.n-f.sy*f.sx) +
		f.sx*(f.sxy*f.sy-f.syy*f.sx)
	if math.Abs(det) < fitEpsilon*f.n*f.n {
		return Circle{}, ErrDegenerateGeometry
	}

	a := (-f.sxz*(f.syy*f.n-f.sy*f.sy) -
		f.sxy*(-f.syz*f.n+f.sy*f.sz) +
		f.sx*(-f.syz*f.sy+f.syy*f.sz)) / det
	b := (f.sxx*(-f.syz*f.n+f.sy*f.sz) -
		-f.sxz*(f.sxy*f.n-f.sy*f.sx) +
		f.sx*(f.syz*f.sx-f.sxy*f.sz)) / det
	c := (f.sxx*(-f.syy*f.sz+f.syz*f.sy) -
		f.sxy*(-f.sxy*f.sz+f.syz*f.sx) +
		-f.sxz*(f.sxy*f.sy-f.syy*f.sx)) / det

	center := Point{-a / 2, -b / 2, 0}
	rsq := (a*a+b*b)/4 - c
	if rsq <= 0 {
		return Circle{}, ErrDegenerateGeometry
	}
	return Circle{Center: center, Radius: math.Sqrt(rsq)}, nil
}
