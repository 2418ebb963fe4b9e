package main

import "arcweld/log"
import "arcweld/streaming"
import "arcweld/weld"
import "github.com/cheggaaa/pb"
import "github.com/spf13/pflag"
import "github.com/spf13/viper"

import "bufio"
import "fmt"
import "os"
import "os/signal"
import "path/filepath"
import "strings"
import "time"

// All flag values are read back through viper, so a settings file can
// supply any of them with the command line taking precedence.
func init() {
	pflag.StringP("input", "i", "", "Gcode file to weld")
	pflag.StringP("output", "o", "", "Target path; omit to rewrite the input in place")
	pflag.Bool("stdout", false, "Write the welded gcode to stdout")
	pflag.String("device", "", "Serial device to stream the welded gcode to")
	pflag.String("config", "", "Settings file; flags override file values")

	pflag.Float64("resolution-mm", 0.05, "Total allowed path deviation band")
	pflag.Float64("path-tolerance-percent", 0.05, "Allowed arc-vs-chord length difference, as a fraction")
	pflag.Float64("max-radius-mm", 1000000, "Largest arc radius to emit")
	pflag.Int("min-arc-segments", 0, "Reject arcs the firmware would draw with fewer segments per circle; 0 disables")
	pflag.Float64("mm-per-arc-segment", 0, "Firmware segment length for the min-arc-segments check; 0 disables")
	pflag.Bool("allow-travel-arcs", false, "Weld non-extruding runs")
	pflag.Bool("allow-3d-arcs", false, "Weld runs with z progression into helical arcs")
	pflag.Bool("allow-dynamic-precision", false, "Derive output precision from the source coordinates")
	pflag.Int("default-xyz-precision", 3, "Decimal digits for X, Y, Z, I and J words (3-6)")
	pflag.Int("default-e-precision", 5, "Decimal digits for E words (3-6)")
	pflag.Float64("extrusion-rate-variance-percent", 0.05, "Split candidates when extrusion per mm strays this far; 0 disables")
	pflag.Int("max-gcode-length", 0, "Longest allowed rendered arc command; 0 disables")
	pflag.Bool("g90-influences-extruder", false, "G90/G91 also switches the extruder axis mode")

	pflag.String("progress-type", "SIMPLE", "Progress display: NONE, SIMPLE or FULL")
	pflag.String("log-level", "INFO", "Log level: "+strings.Join(log.LevelNames(), ", "))
}

var logger = log.New("arcweld")

func fail(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(code)
}

func main() {
	pflag.Parse()
	if pflag.NArg() > 0 {
		pflag.Usage()
		os.Exit(1)
	}

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		fail(1, "%s", err)
	}
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			fail(1, "Could not read settings file: %s", err)
		}
	}

	if level, ok := log.ParseLevel(viper.GetString("log-level")); ok {
		logger.SetLevel(level)
	} else {
		fail(1, "Unknown log level %q (valid: %s)", viper.GetString("log-level"), strings.Join(log.LevelNames(), ", "))
	}

	input := viper.GetString("input")
	if input == "" {
		fmt.Fprintf(os.Stderr, "Error: No input file provided\n")
		pflag.Usage()
		os.Exit(1)
	}

	cfg := weld.Config{
		ResolutionMM:                 viper.GetFloat64("resolution-mm"),
		PathTolerancePercent:         viper.GetFloat64("path-tolerance-percent"),
		MaxRadiusMM:                  viper.GetFloat64("max-radius-mm"),
		MinArcSegments:               viper.GetInt("min-arc-segments"),
		MMPerArcSegment:              viper.GetFloat64("mm-per-arc-segment"),
		AllowTravelArcs:              viper.GetBool("allow-travel-arcs"),
		Allow3DArcs:                  viper.GetBool("allow-3d-arcs"),
		AllowDynamicPrecision:        viper.GetBool("allow-dynamic-precision"),
		DefaultXYZPrecision:          viper.GetInt("default-xyz-precision"),
		DefaultEPrecision:            viper.GetInt("default-e-precision"),
		ExtrusionRateVariancePercent: viper.GetFloat64("extrusion-rate-variance-percent"),
		MaxGcodeLength:               viper.GetInt("max-gcode-length"),
		G90InfluencesExtruder:        viper.GetBool("g90-influences-extruder"),
	}

	src, err := os.Open(input)
	if err != nil {
		fail(2, "Could not open file: %s", err)
	}
	defer src.Close()

	var size int64
	if info, err := src.Stat(); err == nil {
		size = info.Size()
	}

	output := viper.GetString("output")
	inPlace := output == "" || sameFile(input, output)
	if inPlace {
		output = input
	}

	var out *os.File
	var tmpName string
	if viper.GetBool("stdout") {
		out = os.Stdout
	} else {
		// Never weld onto the file being read; write a sibling temp
		// file and rename over the target once the run succeeds.
		tmp, err := os.CreateTemp(filepath.Dir(output), filepath.Base(output)+".weld-*")
		if err != nil {
			fail(2, "Could not create temporary file: %s", err)
		}
		tmpName = tmp.Name()
		out = tmp
		defer os.Remove(tmpName)
	}

	welder := weld.New(cfg, logger)
	attachProgress(welder, viper.GetString("progress-type"), size)

	start := time.Now()
	stats, err := welder.Process(src, size, out)
	finishProgress()
	if err != nil {
		fail(3, "Welding failed: %s", err)
	}

	if tmpName != "" {
		if err := out.Close(); err != nil {
			fail(2, "Could not finish temporary file: %s", err)
		}
		if err := os.Rename(tmpName, output); err != nil {
			fail(2, "Could not replace %s: %s", output, err)
		}
	}

	logger.Info("Welded %s in %s.", input, time.Since(start).Round(time.Millisecond))
	fmt.Fprint(os.Stderr, stats.String())

	if viper.GetString("device") != "" {
		if viper.GetBool("stdout") {
			fail(1, "--device needs a welded file on disk; drop --stdout")
		}
		stream(viper.GetString("device"), output)
	}
}

func sameFile(a, b string) bool {
	if a == b {
		return true
	}
	ai, err1 := os.Stat(a)
	bi, err2 := os.Stat(b)
	return err1 == nil && err2 == nil && os.SameFile(ai, bi)
}

var progressBar *pb.ProgressBar

// attachProgress hooks a pb bar to the welder according to the
// requested progress type.
func attachProgress(w *weld.Welder, progressType string, size int64) {
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

	w.OnProgress = func(p weld.Progress) bool {
		progressBar.Set(int(p.PercentComplete))
		if full {
			progressBar.Prefix(fmt.Sprintf("%d arcs ", p.ArcsCreated))
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

// stream sends the welded file to a serial controller, the same flow
// control as a console sender would use.
func stream(device, path string) {
	f, err := os.Open(path)
	if err != nil {
		fail(2, "Could not reopen %s for streaming: %s", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		fail(2, "Could not read %s: %s", path, err)
	}

	var s streaming.GrblStreamer
	if err := s.Check(lines); err != nil {
		fail(2, "Stream check failed: %s", err)
	}
	if err := s.Connect(device); err != nil {
		fail(2, "Unable to connect to device: %s", err)
	}

	pBar := pb.StartNew(len(lines))
	pBar.Format("[=> ]")

	progress := make(chan int)
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt)

	go func() {
		for sig := range sigchan {
			if sig == os.Interrupt {
				fmt.Fprintf(os.Stderr, "\nStopping...\n")
				s.Stop()
				os.Exit(7)
			}
		}
	}()

	go func() {
		if err := s.Send(lines, progress); err != nil {
			fmt.Fprintf(os.Stderr, "\nSend failed: %s\n", err)
			s.Stop()
			os.Exit(2)
		}
	}()
	for range progress {
		pBar.Increment()
	}
	pBar.Finish()
}
