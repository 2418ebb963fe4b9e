package geometry

import "math"

// Arc is a resolved circular arc in the XY plane. Z and E progression
// along the arc are handled by the interpolator, not here.
type Arc struct {
	Center     Point
	Radius     float64
	StartAngle float64
	// SweepAngle is signed: positive counterclockwise, negative
	// clockwise.
	SweepAngle float64
}

func (a Arc) EndAngle() float64 {
	return a.StartAngle + a.SweepAngle
}

// Length is the arc length in the plane, ignoring helical travel.
func (a Arc) Length() float64 {
	return math.Abs(a.SweepAngle) * a.Radius
}

// PointAt returns the point on the circle at the given angle.
func (a Arc) PointAt(angle float64) Point {
	return Point{
		X: a.Center.X + a.Radius*math.Cos(angle),
		Y: a.Center.Y + a.Radius*math.Sin(angle),
	}
}

// ResolveArc resolves an arc from its gcode parameter forms. Either the
// center offset (i, j relative to start) or an explicit radius must be
// supplied; the radius form overrides the offsets when nonzero. A
// negative radius selects the long way around, per gcode convention.
// start == end with an offset is a full circle; with no offset and no
// radius there is nothing to disambiguate and the arc is invalid.
func ResolveArc(start, end Point, i, j, radius float64, clockwise bool) (Arc, error) {
	var center Point

	if radius != 0 {
		c, err := radiusCenter(start, end, radius, clockwise)
		if err != nil {
			return Arc{}, err
		}
		center = c
	} else {
		if i == 0 && j == 0 {
			return Arc{}, ErrInvalidArcGeometry
		}
		center = Point{start.X + i, start.Y + j, 0}
	}

	r := start.DistXY(center)
	if r < fitEpsilon {
		return Arc{}, ErrDegenerateGeometry
	}

	startAngle := math.Atan2(start.Y-center.Y, start.X-center.X)
	endAngle := math.Atan2(end.Y-center.Y, end.X-center.X)

	sweep := endAngle - startAngle
	if sweep <= 0 && !clockwise {
		sweep += 2 * math.Pi
	} else if sweep >= 0 && clockwise {
		sweep -= 2 * math.Pi
	}

	// Start and end coincide: a full turn when the offset form was
	// used, since the center is then unambiguous.
	if start.X == end.X && start.Y == end.Y {
		if clockwise {
			sweep = -2 * math.Pi
		} else {
			sweep = 2 * math.Pi
		}
	}

	return Arc{Center: center, Radius: r, StartAngle: startAngle, SweepAngle: sweep}, nil
}

// radiusCenter picks the arc center on the perpendicular bisector of
// start/end for the radius form, selecting the side matching the
// requested rotation direction.
func radiusCenter(start, end Point, radius float64, clockwise bool) (Point, error) {
	if start.X == end.X && start.Y == end.Y {
		return Point{}, ErrInvalidArcGeometry
	}

	dist := start.DistXY(end)
	if dist > math.Abs(radius)*2+fitEpsilon {
		return Point{}, ErrInvalidArcGeometry
	}
	if dist > math.Abs(radius)*2 {
		dist = math.Abs(radius) * 2
	}

	theta := math.Atan2(end.Y-start.Y, end.X-start.X)
	if (clockwise && radius > 0) || (!clockwise && radius < 0) {
		theta -= math.Pi / 2
	} else {
		theta += math.Pi / 2
	}

	half := dist / 2
	offset := math.Sqrt(math.Abs(radius)*math.Abs(radius) - half*half)
	return Point{
		X: (start.X+end.X)/2 + offset*math.Cos(theta),
		Y: (start.Y+end.Y)/2 + offset*math.Sin(theta),
	}, nil
}
