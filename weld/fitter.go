package weld

import "arcweld/gcode"
import "errors"
import "math"

var (
	errToleranceExceeded  = errors.New("tolerance exceeded")
	errRadiusExceeded     = errors.New("max radius exceeded")
	errFirmwareResolution = errors.New("firmware would draw too few segments")
)

// moveClass separates extrusion, travel and retraction segments; a
// candidate only ever contains one class.
type moveClass int

const (
	classExtrusion moveClass = iota
	classTravel
	classRetraction
)

func classOf(eDelta float64) moveClass {
	switch {
	case eDelta > 0:
		return classExtrusion
	case eDelta < 0:
		return classRetraction
	}
	return classTravel
}

// Segment is one linear source move offered to the fitter.
type Segment struct {
	From, To gcode.Position
	// Raw is the unmodified source line, replayed verbatim when the
	// candidate aborts.
	Raw              string
	HasE             bool
	HasF             bool
	XYZDecimals      int
	EDecimals        int
	ExtruderAbsolute bool
}

// Emission is a unit of finalized output: either an arc command that
// replaces Sources, or the source lines unchanged.
type Emission struct {
	Arc     *ArcCommand
	Sources []string
	Class   moveClass
}

// Fitter grows one arc candidate at a time over a stream of linear
// segments. Add and Finish return the emissions the caller must write,
// in order.
type Fitter struct {
	cfg    *Config
	cand   candidate
	class  moveClass
	active bool
	emits  []Emission
}

func NewFitter(cfg *Config) *Fitter {
	return &Fitter{cfg: cfg}
}

// Add offers the next segment. Emissions are valid until the next
// call.
func (f *Fitter) Add(seg Segment) []Emission {
	f.emits = f.emits[:0]

	if !f.active {
		f.seed(seg)
		return f.emits
	}

	if !f.compatible(seg) {
		f.finalize()
		f.seed(seg)
		return f.emits
	}

	f.cand.append(f.record(seg))
	if f.cand.hasE || seg.HasE {
		f.cand.hasE = true
	}
	if seg.HasF {
		f.cand.hasFeedrate = true
	}
	if f.cand.pointCount() < 3 {
		return f.emits
	}
	f.grow()
	return f.emits
}

// Finish flushes or aborts whatever candidate remains at end of
// stream.
func (f *Fitter) Finish() []Emission {
	f.emits = f.emits[:0]
	if f.active {
		f.finalize()
	}
	return f.emits
}

func (f *Fitter) record(seg Segment) segRecord {
	from := seg.From.Point()
	to := seg.To.Point()
	return segRecord{
		to:     to,
		eDelta: seg.To.E - seg.From.E,
		length: from.Dist(to),
		raw:    seg.Raw,
		xyzDec: seg.XYZDecimals,
		eDec:   seg.EDecimals,
	}
}

func (f *Fitter) seed(seg Segment) {
	f.cand.reset(seg.From.Point(), seg.From.E)
	f.class = classOf(seg.To.E - seg.From.E)
	f.cand.extruderAbsolute = seg.ExtruderAbsolute
	f.cand.feedrate = seg.To.F
	f.cand.hasFeedrate = seg.HasF
	f.cand.hasE = seg.HasE
	f.cand.extruding = f.class == classExtrusion
	f.cand.append(f.record(seg))
	f.active = true
}

// compatible decides whether the segment can continue the current
// candidate. Anything that changes how an arc would be interpreted
// ends the run.
func (f *Fitter) compatible(seg Segment) bool {
	eDelta := seg.To.E - seg.From.E
	if classOf(eDelta) != f.class {
		return false
	}
	if f.class != classExtrusion && !f.cfg.AllowTravelArcs {
		return false
	}
	if !f.cfg.Allow3DArcs && seg.To.Z != f.cand.start.Z {
		return false
	}
	if seg.To.F != f.cand.feedrate {
		return false
	}
	if f.cfg.ExtrusionRateVariancePercent > 0 && f.class == classExtrusion {
		if avg, ok := f.cand.extrusionRatio(); ok && avg > 0 {
			from := seg.From.Point()
			length := from.Dist(seg.To.Point())
			if length > 0 {
				ratio := eDelta / length
				if math.Abs(ratio-avg) > avg*f.cfg.ExtrusionRateVariancePercent {
					return false
				}
			}
		}
	}
	return true
}

// grow re-validates the candidate after a new point. When the fit
// breaks, the segments validated before this point are flushed and the
// candidate restarts from the last committed point; a candidate that
// never validated slides its oldest segments out as raw lines.
func (f *Fitter) grow() {
	for {
		err := f.cand.evaluate(f.cfg)
		if err == nil {
			return
		}

		n := len(f.cand.segs)
		if f.cand.valid && f.cand.bestCount == n-1 {
			f.flush(n - 1)

			last := f.cand.segs[n-1]
			start := f.cand.segs[n-2].to
			startE := f.cand.lastE() - last.eDelta
			extruderAbsolute := f.cand.extruderAbsolute
			feedrate := f.cand.feedrate
			hasF := f.cand.hasFeedrate
			hasE := f.cand.hasE
			f.cand.reset(start, startE)
			f.cand.extruderAbsolute = extruderAbsolute
			f.cand.feedrate = feedrate
			f.cand.hasFeedrate = hasF
			f.cand.hasE = hasE
			f.cand.append(last)
			return
		}

		first := f.cand.dropFirst()
		f.emits = append(f.emits, Emission{Sources: []string{first.raw}, Class: f.class})
		if f.cand.pointCount() < 3 {
			return
		}
	}
}

// flush emits the first n validated segments as one arc command,
// falling back to the raw lines when the rendered command would exceed
// the configured length limit.
func (f *Fitter) flush(n int) {
	arc := f.cand.build(f.cfg, f.cand.extruderAbsolute, n)
	sources := f.cand.rawLines(n)
	if f.cfg.MaxGcodeLength > 0 && len(arc.Render()) > f.cfg.MaxGcodeLength {
		f.emits = append(f.emits, Emission{Sources: sources, Class: f.class})
		return
	}
	f.emits = append(f.emits, Emission{Arc: arc, Sources: sources, Class: f.class})
}

// finalize ends the current candidate: a fully validated fit with
// enough points is flushed, anything else is replayed raw.
func (f *Fitter) finalize() {
	n := len(f.cand.segs)
	if f.cand.valid && f.cand.bestCount == n && n >= 2 {
		f.flush(n)
	} else if n > 0 {
		f.emits = append(f.emits, Emission{Sources: f.cand.rawLines(n), Class: f.class})
	}
	f.active = false
}
