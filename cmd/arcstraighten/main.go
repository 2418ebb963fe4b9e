package main

import "arcweld/firmware"
import "arcweld/log"
import "arcweld/straighten"
import "github.com/cheggaaa/pb"
import "github.com/spf13/pflag"

import "fmt"
import "os"
import "path/filepath"
import "strings"
import "time"

var (
	inputFile  = pflag.StringP("input", "i", "", "Gcode file to expand")
	outputFile = pflag.StringP("output", "o", "", "Target path; omit to rewrite the input in place")
	dumpStdout = pflag.Bool("stdout", false, "Write the expanded gcode to stdout")

	firmwareType    = pflag.StringP("firmware-type", "f", "MARLIN_2", "Firmware to emulate: "+strings.Join(firmware.TypeNames(), ", "))
	firmwareVersion = pflag.StringP("firmware-version", "v", firmware.LatestVersion, "Firmware version, or "+firmware.LatestVersion)
	printDefaults   = pflag.Bool("print-firmware-defaults", false, "Print the selected firmware's default settings and exit")

	mmPerArcSegment    = pflag.Float64("mm-per-arc-segment", 0, "Override "+firmware.ArgMMPerArcSegment)
	minMMPerArcSegment = pflag.Float64("min-mm-per-arc-segment", 0, "Override "+firmware.ArgMinMMPerArcSegment)
	minArcSegments     = pflag.Int("min-arc-segments", 0, "Override "+firmware.ArgMinArcSegments)
	arcSegmentsPerSec  = pflag.Float64("arc-segments-per-sec", 0, "Override "+firmware.ArgArcSegmentsPerSec)
	mmMaxArcError      = pflag.Float64("mm-max-arc-error", 0, "Override "+firmware.ArgMMMaxArcError)
	nArcCorrection     = pflag.Int("n-arc-correction", 0, "Override "+firmware.ArgNArcCorrection)
	arcSegmentsPerR    = pflag.Float64("arc-segments-per-r", 0, "Override "+firmware.ArgArcSegmentsPerR)
	g90Extruder        = pflag.Bool("g90-influences-extruder", false, "Override "+firmware.ArgG90InfluencesExtruder)

	xyzPrecision = pflag.Int("xyz-precision", 3, "Decimal digits for X, Y and Z words (3-6)")
	ePrecision   = pflag.Int("e-precision", 5, "Decimal digits for E words (3-6)")
	decorate     = pflag.Bool("decorate-comments", false, "Append a comment to each generated line")

	progressType = pflag.String("progress-type", "SIMPLE", "Progress display: NONE, SIMPLE or FULL")
	logLevel     = pflag.String("log-level", "INFO", "Log level: "+strings.Join(log.LevelNames(), ", "))
)

var logger = log.New("arcstraighten")

func fail(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(code)
}

// overrideFlags maps each settings flag to the argument name the
// firmware tables know it by, and the apply step that copies the flag
// value in.
var overrideFlags = []struct {
	flag  string
	arg   string
	apply func(*firmware.Settings)
}{
	{"mm-per-arc-segment", firmware.ArgMMPerArcSegment, func(s *firmware.Settings) { s.MMPerArcSegment = *mmPerArcSegment }},
	{"min-mm-per-arc-segment", firmware.ArgMinMMPerArcSegment, func(s *firmware.Settings) { s.MinMMPerArcSegment = *minMMPerArcSegment }},
	{"min-arc-segments", firmware.ArgMinArcSegments, func(s *firmware.Settings) { s.MinArcSegments = *minArcSegments }},
	{"arc-segments-per-sec", firmware.ArgArcSegmentsPerSec, func(s *firmware.Settings) { s.ArcSegmentsPerSec = *arcSegmentsPerSec }},
	{"mm-max-arc-error", firmware.ArgMMMaxArcError, func(s *firmware.Settings) { s.MMMaxArcError = *mmMaxArcError }},
	{"n-arc-correction", firmware.ArgNArcCorrection, func(s *firmware.Settings) { s.NArcCorrection = *nArcCorrection }},
	{"arc-segments-per-r", firmware.ArgArcSegmentsPerR, func(s *firmware.Settings) { s.ArcSegmentsPerR = *arcSegmentsPerR }},
	{"g90-influences-extruder", firmware.ArgG90InfluencesExtruder, func(s *firmware.Settings) { s.G90InfluencesExtruder = *g90Extruder }},
}

func main() {
	pflag.Parse()
	if pflag.NArg() > 0 {
		pflag.Usage()
		os.Exit(1)
	}

	if level, ok := log.ParseLevel(*logLevel); ok {
		logger.SetLevel(level)
	} else {
		fail(1, "Unknown log level %q (valid: %s)", *logLevel, strings.Join(log.LevelNames(), ", "))
	}

	typ, err := firmware.ParseType(*firmwareType)
	if err != nil {
		fail(1, "%s (valid: %s)", err, strings.Join(firmware.TypeNames(), ", "))
	}
	fw, err := firmware.New(typ, *firmwareVersion)
	if err != nil {
		fail(1, "%s", err)
	}

	if *printDefaults {
		fmt.Print(fw.Describe())
		return
	}

	// Reject overrides the emulated firmware has no knob for, before
	// any gcode is touched.
	for _, o := range overrideFlags {
		if !pflag.CommandLine.Changed(o.flag) {
			continue
		}
		if !fw.SupportsArgument(o.arg) {
			fail(1, "%s %s: %s does not support %s",
				firmware.ErrUnsupportedArgument, o.arg, fw.Type(), o.arg)
		}
		o.apply(&fw.Settings)
	}

	logger.Info("Emulating %s %s.", fw.Type(), fw.Version())
	for _, line := range strings.Split(strings.TrimRight(fw.Describe(), "\n"), "\n") {
		logger.Debug("%s", line)
	}

	if *inputFile == "" {
		fmt.Fprintf(os.Stderr, "Error: No input file provided\n")
		pflag.Usage()
		os.Exit(1)
	}

	src, err := os.Open(*inputFile)
	if err != nil {
		fail(2, "Could not open file: %s", err)
	}
	defer src.Close()

	var size int64
	if info, err := src.Stat(); err == nil {
		size = info.Size()
	}

	output := *outputFile
	if output == "" {
		output = *inputFile
	}

	var out *os.File
	var tmpName string
	if *dumpStdout {
		out = os.Stdout
	} else {
		tmp, err := os.CreateTemp(filepath.Dir(output), filepath.Base(output)+".straighten-*")
		if err != nil {
			fail(2, "Could not create temporary file: %s", err)
		}
		tmpName = tmp.Name()
		out = tmp
		defer os.Remove(tmpName)
	}

	cfg := straighten.Config{
		XYZPrecision:          *xyzPrecision,
		EPrecision:            *ePrecision,
		DecorateComments:      *decorate,
		G90InfluencesExtruder: *g90Extruder,
	}
	proc := straighten.New(cfg, fw, logger)
	attachProgress(proc, *progressType, size)

	start := time.Now()
	stats, err := proc.Process(src, size, out)
	finishProgress()
	if err != nil {
		fail(3, "Processing failed: %s", err)
	}

	if tmpName != "" {
		if err := out.Close(); err != nil {
			fail(2, "Could not finish temporary file: %s", err)
		}
		if err := os.Rename(tmpName, output); err != nil {
			fail(2, "Could not replace %s: %s", output, err)
		}
	}

	logger.Info("Expanded %s in %s.", *inputFile, time.Since(start).Round(time.Millisecond))
	fmt.Fprint(os.Stderr, stats.String())
}

var progressBar *pb.ProgressBar

func attachProgress(p *straighten.Processor, progressType string, size int64) {
	switch strings.ToUpper(progressType) {
	case "NONE":
		return
	case "SIMPLE", "FULL":
	default:
		fail(1, "Unknown progress type %q (valid: NONE, SIMPLE, FULL)", progressType)
	}
	if size <= 0 {
		return
	}

	full := strings.EqualFold(progressType, "FULL")
	progressBar = pb.New(100)
	progressBar.Format("[=> ]")
	progressBar.ShowCounters = false
	progressBar.Start()

	p.OnProgress = func(pr straighten.Progress) bool {
		progressBar.Set(int(pr.PercentComplete))
		if full {
			progressBar.Prefix(fmt.Sprintf("%d arcs ", pr.ArcsInterpolated))
		}
		return true
	}
}

func finishProgress() {
	if progressBar != nil {
		progressBar.Set(100)
		progressBar.Finish()
		progressBar = nil
	}
}
