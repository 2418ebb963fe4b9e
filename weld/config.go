// Package weld compresses runs of linear gcode moves into G2/G3 arc
// commands, keeping the tool path within a configured resolution.
package weld

type Config struct {
	// ResolutionMM is the total allowed path deviation band; points
	// may deviate from the fitted arc by half of it on either side.
	ResolutionMM float64
	// PathTolerancePercent bounds the relative difference between the
	// arc length and the summed chord lengths it replaces.
	PathTolerancePercent float64
	// MaxRadiusMM rejects fits whose radius exceeds it, however small
	// the point deviation is.
	MaxRadiusMM float64
	// MinArcSegments and MMPerArcSegment compensate for firmware
	// without a minimum segments-per-circle setting: an arc the
	// target firmware would draw with fewer than MinArcSegments
	// chords per circle is rejected. Both must be set for the check
	// to apply.
	MinArcSegments  int
	MMPerArcSegment float64
	// AllowTravelArcs permits welding non-extruding runs.
	AllowTravelArcs bool
	// Allow3DArcs permits helical arcs with z progression.
	Allow3DArcs bool
	// AllowDynamicPrecision derives output precision from the source
	// coordinates instead of the fixed defaults.
	AllowDynamicPrecision bool
	// DefaultXYZPrecision is the decimal digit count for X, Y, Z, I
	// and J output words. Clamped to 3..6.
	DefaultXYZPrecision int
	// DefaultEPrecision is the decimal digit count for E output
	// words. Clamped to 3..6.
	DefaultEPrecision int
	// ExtrusionRateVariancePercent splits a candidate when a
	// segment's extrusion-per-mm ratio strays this far from the
	// candidate's running ratio. 0 disables the check.
	ExtrusionRateVariancePercent float64
	// MaxGcodeLength rejects arcs whose rendered command exceeds this
	// many characters, excluding comments. 0 means no limit.
	MaxGcodeLength int
	// G90InfluencesExtruder selects whether G90/G91 also switches the
	// extruder axis mode.
	G90InfluencesExtruder bool
}

func DefaultConfig() Config {
	return Config{
		ResolutionMM:                 0.05,
		PathTolerancePercent:         0.05,
		MaxRadiusMM:                  1000000,
		DefaultXYZPrecision:          3,
		DefaultEPrecision:            5,
		ExtrusionRateVariancePercent: 0.05,
	}
}

// Normalize clamps out-of-range values to usable ones, mirroring the
// adjustments the CLI warns about.
func (c *Config) Normalize() {
	if c.DefaultXYZPrecision < 3 {
		c.DefaultXYZPrecision = 3
	}
	if c.DefaultXYZPrecision > 6 {
		c.DefaultXYZPrecision = 6
	}
	if c.DefaultEPrecision < 3 {
		c.DefaultEPrecision = 3
	}
	if c.DefaultEPrecision > 6 {
		c.DefaultEPrecision = 6
	}
	if c.ExtrusionRateVariancePercent < 0 {
		c.ExtrusionRateVariancePercent = DefaultConfig().ExtrusionRateVariancePercent
	}
	if c.MaxGcodeLength < 0 {
		c.MaxGcodeLength = 0
	}
}

// Tolerance is the per-point deviation allowance derived from the
// resolution.
func (c Config) Tolerance() float64 {
	return c.ResolutionMM / 2
}
