package weld

import "arcweld/geometry"
import "math"

// segRecord is one source segment accepted into a candidate.
type segRecord struct {
	to      geometry.Point
	eDelta  float64
	length  float64
	raw     string
	xyzDec  int
	eDec    int
}

// candidate is an in-progress arc fit over a contiguous run of source
// segments. The struct is reused across candidates; reset clears it
// without releasing the backing arrays.
type candidate struct {
	start  geometry.Point
	startE float64

	feedrate         float64
	hasFeedrate      bool
	extruding        bool
	hasE             bool
	extruderAbsolute bool

	segs   []segRecord
	fitter geometry.CircleFitter

	// best is the most recent fit that passed all checks, covering
	// the first bestCount segments. valid reports whether one exists.
	best      geometry.Circle
	bestCount int
	valid     bool

	chordLength float64
	eTotal      float64
}

func (c *candidate) reset(start geometry.Point, startE float64) {
	c.start = start
	c.startE = startE
	c.feedrate = 0
	c.hasFeedrate = false
	c.extruding = false
	c.hasE = false
	c.segs = c.segs[:0]
	c.fitter.Reset()
	c.fitter.Add(start)
	c.valid = false
	c.bestCount = 0
	c.chordLength = 0
	c.eTotal = 0
}

func (c *candidate) pointCount() int {
	return len(c.segs) + 1
}

func (c *candidate) lastPoint() geometry.Point {
	if len(c.segs) == 0 {
		return c.start
	}
	return c.segs[len(c.segs)-1].to
}

func (c *candidate) lastE() float64 {
	return c.startE + c.eTotal
}

func (c *candidate) append(seg segRecord) {
	c.segs = append(c.segs, seg)
	c.fitter.Add(seg.to)
	c.chordLength += seg.length
	c.eTotal += seg.eDelta
}

// dropFirst removes the oldest segment, making its target the new
// start point, and rebuilds the running fit over the remainder.
func (c *candidate) dropFirst() segRecord {
	first := c.segs[0]
	c.segs = c.segs[1:]
	c.start = first.to
	c.startE += first.eDelta
	c.chordLength -= first.length
	c.eTotal -= first.eDelta
	c.valid = false
	c.bestCount = 0

	c.fitter.Reset()
	c.fitter.Add(c.start)
	for _, s := range c.segs {
		c.fitter.Add(s.to)
	}
	return first
}

// rawLines returns the source lines for the first n segments.
func (c *candidate) rawLines(n int) []string {
	lines := make([]string, n)
	for i := 0; i < n; i++ {
		lines[i] = c.segs[i].raw
	}
	return lines
}

// extrusionRatio is the candidate's running extrusion-per-mm ratio.
func (c *candidate) extrusionRatio() (float64, bool) {
	if c.chordLength == 0 {
		return 0, false
	}
	return c.eTotal / c.chordLength, true
}

// sweepAround sums the signed angular steps of the first n segment
// targets around the given center. Individual steps are below pi for
// any sane segment length, so the sum is the true sweep even past a
// half turn.
func (c *candidate) sweepAround(center geometry.Point, n int) float64 {
	var sweep float64
	prev := c.start.Diff(center)
	for _, s := range c.segs[:n] {
		cur := s.to.Diff(center)
		cross := prev.X*cur.Y - prev.Y*cur.X
		dot := prev.X*cur.X + prev.Y*cur.Y
		sweep += math.Atan2(cross, dot)
		prev = cur
	}
	return sweep
}

// evaluate refits the circle over all accumulated points and checks it
// against the configured limits. On success the candidate becomes
// valid; the error reports why the fit cannot stand.
func (c *candidate) evaluate(cfg *Config) error {
	circle, err := c.fitter.Fit()
	if err != nil {
		return err
	}

	if circle.Radius > cfg.MaxRadiusMM {
		return errRadiusExceeded
	}

	if cfg.MinArcSegments > 0 && cfg.MMPerArcSegment > 0 {
		circumference := 2 * math.Pi * circle.Radius
		if circumference/cfg.MMPerArcSegment < float64(cfg.MinArcSegments) {
			return errFirmwareResolution
		}
	}

	tolerance := cfg.Tolerance()
	if geometry.Deviation(c.start, circle) > tolerance {
		return errToleranceExceeded
	}
	for _, s := range c.segs {
		if geometry.Deviation(s.to, circle) > tolerance {
			return errToleranceExceeded
		}
	}

	// The arc length must track the chord lengths it replaces.
	sweep := c.sweepAround(circle.Center, len(c.segs))
	arcLength := math.Abs(sweep) * circle.Radius
	if zDelta := c.segs[len(c.segs)-1].to.Z - c.start.Z; zDelta != 0 {
		arcLength = math.Hypot(arcLength, zDelta)
	}
	if c.chordLength > 0 {
		if math.Abs(arcLength-c.chordLength)/c.chordLength > cfg.PathTolerancePercent {
			return errToleranceExceeded
		}
	}

	c.best = circle
	c.valid = true
	c.bestCount = len(c.segs)
	return nil
}

// build renders the candidate's first n segments as an arc command
// using the last circle that validated them. The caller must have
// checked validity and n must cover at least two segments.
func (c *candidate) build(cfg *Config, extruderAbsolute bool, n int) *ArcCommand {
	end := c.segs[n-1].to
	sweep := c.sweepAround(c.best.Center, n)

	var eSum float64
	for _, s := range c.segs[:n] {
		eSum += s.eDelta
	}

	arc := &ArcCommand{
		Clockwise: sweep < 0,
		X:         end.X,
		Y:         end.Y,
		Z:         end.Z,
		I:         c.best.Center.X - c.start.X,
		J:         c.best.Center.Y - c.start.Y,
		F:         c.feedrate,
		HasZ:      end.Z != c.start.Z,
		HasE:      c.hasE,
		HasF:      c.hasFeedrate,
	}
	if extruderAbsolute {
		arc.E = c.startE + eSum
	} else {
		arc.E = eSum
	}

	arc.XYZPrecision = cfg.DefaultXYZPrecision
	arc.EPrecision = cfg.DefaultEPrecision
	if cfg.AllowDynamicPrecision {
		for _, s := range c.segs[:n] {
			if s.xyzDec > arc.XYZPrecision {
				arc.XYZPrecision = s.xyzDec
			}
			if s.eDec > arc.EPrecision {
				arc.EPrecision = s.eDec
			}
		}
		if arc.XYZPrecision > 6 {
			arc.XYZPrecision = 6
		}
		if arc.EPrecision > 6 {
			arc.EPrecision = 6
		}
	}
	return arc
}
