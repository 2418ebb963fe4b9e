// Package firmware models how specific printer firmwares turn G2/G3
// arc commands into linear segments. Each supported firmware type
// carries its own versions, recognized settings and interpolation
// behavior, selected once at configuration time.
package firmware

import "errors"
import "fmt"
import "strings"

type Type int

const (
	Marlin1 Type = iota
	Marlin2
	Repetier
	Prusa
	Smoothieware
)

var typeNames = []string{"MARLIN_1", "MARLIN_2", "REPETIER", "PRUSA", "SMOOTHIEWARE"}

func (t Type) String() string {
	if t < Marlin1 || t > Smoothieware {
		return "UNKNOWN"
	}
	return typeNames[t]
}

// TypeNames lists all firmware type names, for CLI help text.
func TypeNames() []string {
	names := make([]string, len(typeNames))
	copy(names, typeNames)
	return names
}

func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if strings.EqualFold(s, name) {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("unknown firmware type %q", s)
}

// LatestVersion is the sentinel that resolves to a firmware's newest
// known version.
const LatestVersion = "LATEST_RELEASE"

var (
	ErrUnsupportedVersion  = errors.New("unsupported firmware version")
	ErrUnsupportedArgument = errors.New("argument not supported by this firmware")
)

// Settings are the interpolation parameters a firmware exposes. Which
// fields are meaningful depends on the firmware type and version; see
// the per-type definitions.
type Settings struct {
	// MMPerArcSegment is the enforced maximum segment length.
	MMPerArcSegment float64
	// MinMMPerArcSegment floors the segment length when the
	// per-circle or per-second rules would shrink it. Disabled when
	// <= 0.
	MinMMPerArcSegment float64
	// MinArcSegments is the enforced minimum number of segments in a
	// full circle of the arc's radius. Disabled when <= 0.
	MinArcSegments int
	// ArcSegmentsPerSec derives segment length from the feedrate.
	// Disabled when <= 0.
	ArcSegmentsPerSec float64
	// MMMaxArcError caps the chord error of a segment. Disabled when
	// <= 0. Only Smoothieware uses this.
	MMMaxArcError float64
	// NArcCorrection is the number of segments drawn with the
	// small-angle approximation before an exact sin/cos resync. A
	// value <= 1 disables the approximation.
	NArcCorrection int
	// ArcSegmentsPerR scales segment counts with the arc radius.
	// Only Repetier uses this. Disabled when <= 0.
	ArcSegmentsPerR float64
	// G90InfluencesExtruder selects whether G90/G91 also switches the
	// extruder axis mode.
	G90InfluencesExtruder bool
}

// Setting argument names, including the aliases some firmwares use for
// the same parameters.
const (
	ArgMMPerArcSegment       = "mm_per_arc_segment"
	ArgMinMMPerArcSegment    = "min_mm_per_arc_segment"
	ArgMinArcSegments        = "min_arc_segments"
	ArgArcSegmentsPerSec     = "arc_segments_per_sec"
	ArgMMMaxArcError         = "mm_max_arc_error"
	ArgNArcCorrection        = "n_arc_correction"
	ArgArcSegmentsPerR       = "arc_segments_per_r"
	ArgG90InfluencesExtruder = "g90_g91_influences_extruder"
	ArgMinCircleSegments     = "min_circle_segments"
	ArgMinArcSegmentMM       = "min_arc_segment_mm"
	ArgMaxArcSegmentMM       = "max_arc_segment_mm"
)

// allArguments is every argument any firmware recognizes, used to
// report which ones do not apply to the active firmware.
var allArguments = []string{
	ArgMMPerArcSegment,
	ArgArcSegmentsPerR,
	ArgMinMMPerArcSegment,
	ArgMinArcSegments,
	ArgArcSegmentsPerSec,
	ArgNArcCorrection,
	ArgG90InfluencesExtruder,
	ArgMMMaxArcError,
	ArgMinCircleSegments,
	ArgMinArcSegmentMM,
	ArgMaxArcSegmentMM,
}

// canonicalArgument resolves aliases to the argument that backs them.
func canonicalArgument(name string) string {
	switch name {
	case ArgMinCircleSegments:
		return ArgMinArcSegments
	case ArgMinArcSegmentMM:
		return ArgMinMMPerArcSegment
	case ArgMaxArcSegmentMM:
		return ArgMMPerArcSegment
	}
	return name
}

// release is one known firmware version with its stock settings and
// the arguments that version recognizes.
type release struct {
	version   string
	defaults  Settings
	arguments []string
}

// definition is the closed description of one firmware type.
type definition struct {
	typ      Type
	releases []release
}

func (d *definition) latest() *release {
	return &d.releases[len(d.releases)-1]
}

func (d *definition) find(version string) *release {
	if version == LatestVersion || version == "" {
		return d.latest()
	}
	for i := range d.releases {
		if d.releases[i].version == version {
			return &d.releases[i]
		}
	}
	return nil
}

func (d *definition) versionNames() []string {
	names := make([]string, 0, len(d.releases)+1)
	for _, r := range d.releases {
		names = append(names, r.version)
	}
	names = append(names, LatestVersion)
	return names
}

var definitions = map[Type]*definition{
	Marlin1:      marlin1Definition,
	Marlin2:      marlin2Definition,
	Repetier:     repetierDefinition,
	Prusa:        prusaDefinition,
	Smoothieware: smoothiewareDefinition,
}

// Firmware is a configured firmware variant ready to interpolate arcs.
type Firmware struct {
	typ       Type
	version   string
	latest    bool
	arguments []string
	Settings  Settings

	segments int
}

// New resolves a firmware type and version. The LatestVersion sentinel
// selects the newest known version; an unknown version fails with
// ErrUnsupportedVersion.
func New(t Type, version string) (*Firmware, error) {
	def, ok := definitions[t]
	if !ok {
		return nil, fmt.Errorf("unknown firmware type %d", t)
	}
	rel := def.find(version)
	if rel == nil {
		return nil, fmt.Errorf("%w: %q is not a valid version for %s (known: %s)",
			ErrUnsupportedVersion, version, t, strings.Join(def.versionNames(), ", "))
	}
	return &Firmware{
		typ:       t,
		version:   rel.version,
		latest:    rel == def.latest(),
		arguments: rel.arguments,
		Settings:  rel.defaults,
	}, nil
}

// VersionNames returns the known versions for a firmware type,
// including the LatestVersion sentinel.
func VersionNames(t Type) []string {
	def, ok := definitions[t]
	if !ok {
		return nil
	}
	return def.versionNames()
}

func (f *Firmware) Type() Type {
	return f.typ
}

func (f *Firmware) Version() string {
	return f.version
}

// SupportsArgument reports whether the active firmware version
// recognizes the given setting, resolving aliases.
func (f *Firmware) SupportsArgument(name string) bool {
	for _, a := range f.arguments {
		if a == name || canonicalArgument(a) == canonicalArgument(name) {
			return true
		}
	}
	return false
}

// Arguments lists the settings the active firmware version recognizes.
func (f *Firmware) Arguments() []string {
	args := make([]string, len(f.arguments))
	copy(args, f.arguments)
	return args
}

// UnusedArguments lists the settings that do not apply to the active
// firmware version.
func (f *Firmware) UnusedArguments() []string {
	var unused []string
	for _, a := range allArguments {
		if !f.SupportsArgument(a) {
			unused = append(unused, a)
		}
	}
	return unused
}

// SegmentsGenerated is the number of linear segments produced by all
// Interpolate calls so far.
func (f *Firmware) SegmentsGenerated() int {
	return f.segments
}

// Describe renders the active settings in a form suitable for logging.
func (f *Firmware) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Firmware Type    : %s\n", f.typ)
	version := f.version
	if f.latest {
		version += " (" + LatestVersion + ")"
	}
	fmt.Fprintf(&b, "Firmware Version : %s\n", version)

	describe := func(name, format string, value interface{}) {
		if f.SupportsArgument(name) {
			fmt.Fprintf(&b, "\t%-27s : "+format+"\n", name, value)
		}
	}
	describe(ArgMMPerArcSegment, "%.2f", f.Settings.MMPerArcSegment)
	describe(ArgMinMMPerArcSegment, "%.2f", f.Settings.MinMMPerArcSegment)
	describe(ArgMinArcSegments, "%d", f.Settings.MinArcSegments)
	describe(ArgArcSegmentsPerSec, "%.2f", f.Settings.ArcSegmentsPerSec)
	describe(ArgArcSegmentsPerR, "%.2f", f.Settings.ArcSegmentsPerR)
	describe(ArgMMMaxArcError, "%.2f", f.Settings.MMMaxArcError)
	describe(ArgNArcCorrection, "%d", f.Settings.NArcCorrection)
	describe(ArgG90InfluencesExtruder, "%t", f.Settings.G90InfluencesExtruder)

	if unused := f.UnusedArguments(); len(unused) > 0 {
		fmt.Fprintf(&b, "The following parameters do not apply to this firmware version: %s\n",
			strings.Join(unused, ", "))
	}
	return b.String()
}
