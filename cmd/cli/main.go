package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/himanishpuri/SurfaceEval/internal/clicktrack"
	"github.com/himanishpuri/SurfaceEval/internal/eventlog"
	"github.com/himanishpuri/SurfaceEval/internal/expected"
	"github.com/himanishpuri/SurfaceEval/internal/report"
	"github.com/himanishpuri/SurfaceEval/pkg/logger"
	"github.com/himanishpuri/SurfaceEval/pkg/models"
	"github.com/himanishpuri/SurfaceEval/pkg/surfaceeval"
	"go.uber.org/multierr"
)

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// tempoFlags are shared by every command that needs the expected performance.
type tempoFlags struct {
	bpm     float64
	beats   int
	pattern string
	runs    int
	disc    string
}

func (t *tempoFlags) register(fs *flag.FlagSet) {
	fs.Float64Var(&t.bpm, "bpm", 90, "Tempo of the expected performance")
	fs.IntVar(&t.beats, "beats", 8, "Number of expected pad presses")
	fs.StringVar(&t.pattern, "pattern", "0.25,0.75,0.5,1.0", "Comma-separated fader levels, one per bar")
	fs.IntVar(&t.runs, "runs", 10, "Number of runs a path template expands to")
	fs.StringVar(&t.disc, "discriminator", eventlog.DefaultDiscriminator, "Tag of pad lines in discriminated logs")
}

// options returns the options for flags set explicitly on the command line,
// so they override a config file.
func (t *tempoFlags) options(fs *flag.FlagSet) ([]surfaceeval.Option, error) {
	var opts []surfaceeval.Option
	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bpm":
			opts = append(opts, surfaceeval.WithBPM(t.bpm))
		case "beats":
			opts = append(opts, surfaceeval.WithNumBeats(t.beats))
		case "runs":
			opts = append(opts, surfaceeval.WithNumRuns(t.runs))
		case "discriminator":
			opts = append(opts, surfaceeval.WithDiscriminator(t.disc))
		case "pattern":
			var levels []float64
			levels, err = parseLevels(t.pattern)
			opts = append(opts, surfaceeval.WithPattern(levels))
		}
	})
	return opts, err
}

func parseLevels(s string) ([]float64, error) {
	var levels []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern level %q: %w", part, err)
		}
		levels = append(levels, v)
	}
	return levels, nil
}

func newFlagSet(name string, dbPath *string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	if dbPath != nil {
		fs.StringVar(dbPath, "db", getEnvOrDefault("SURFACEEVAL_DB_PATH", "surfaceeval.sqlite3"), "Path to the SQLite database file")
	}
	return fs
}

func main() {
	// Initialize logger
	log := logger.GetLogger()
	defer log.Sync()

	printBanner()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	log.Debugf("Executing command: %s", command)

	switch command {
	case "eval":
		handleEval(os.Args[2:])
	case "click":
		handleClick(os.Args[2:])
	case "record":
		handleRecord(os.Args[2:])
	case "list":
		handleList(os.Args[2:])
	case "show":
		handleShow(os.Args[2:])
	case "delete":
		handleDelete(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printBanner() {
	banner := `
 ____              __                 _____            _
/ ___| _   _ _ __ / _| __ _  ___ ___| ____|_   ____ _| |
\___ \| | | | '__| |_ / _' |/ __/ _ \  _| \ \ / / _' | |
 ___) | |_| | |  |  _| (_| | (_|  __/ |___ \ V / (_| | |
|____/ \__,_|_|  |_|  \__,_|\___\___|_____| \_/ \__,_|_|

      Control Surface Evaluation CLI Tool
`
	fmt.Println(banner)
}

func fail(format string, args ...any) {
	fmt.Printf("❌ "+format+"\n", args...)
	logger.Errorf(format, args...)
	os.Exit(1)
}

func handleEval(args []string) {
	log := logger.GetLogger()

	var dbPath string
	var tempo tempoFlags
	fs := newFlagSet("eval", &dbPath)
	tempo.register(fs)
	configPath := fs.String("config", "", "YAML file with tempo settings and batches")
	name := fs.String("name", "", "Evaluation name (default: <device>_<signal>)")
	device := fs.String("device", "", "Device kind: touch-surface or motion-surface")
	sig := fs.String("signal", "", "Signal kind: fader or pad")
	template := fs.String("template", "", "Log path with {} in place of the run index")
	paths := fs.String("paths", "", "Comma-separated log paths (alternative to -template)")
	format := fs.String("format", "values", "Log format: values or discriminated")
	plotDir := fs.String("plots", "plots", "Directory for PNG plots (empty disables)")
	jsonDir := fs.String("json", "", "Directory for JSON reports (empty disables)")
	fs.Parse(args)

	var opts []surfaceeval.Option
	var batches []surfaceeval.Batch

	if *configPath != "" {
		fc, err := surfaceeval.LoadFile(*configPath)
		if err != nil {
			fail("Failed to load config: %v", err)
		}
		opts = append(opts, fc.Options()...)
		batches = fc.Batches
		if fc.ReportDir != "" && !flagSet(fs, "plots") {
			*plotDir = fc.ReportDir
		}
	}

	if *device != "" || *sig != "" {
		batch, err := batchFromFlags(*name, *device, *sig, *template, *paths, *format)
		if err != nil {
			fail("Invalid batch: %v", err)
		}
		batches = append(batches, batch)
	}
	if len(batches) == 0 {
		fmt.Println("Error: -device and -signal (or -config with batches) are required")
		fmt.Println("Usage: surfaceeval eval -device touch-surface -signal fader -template 'logs/touchosc_slider_{}.log'")
		os.Exit(1)
	}

	flagOpts, err := tempo.options(fs)
	if err != nil {
		fail("%v", err)
	}
	opts = append(opts, flagOpts...)
	if flagSet(fs, "db") || *configPath == "" {
		opts = append(opts, surfaceeval.WithDBPath(dbPath))
	}

	var renderers report.Multi
	if *plotDir != "" {
		renderers = append(renderers, report.NewPNGRenderer(*plotDir))
	}
	if *jsonDir != "" {
		renderers = append(renderers, report.NewJSONRenderer(*jsonDir))
	}
	opts = append(opts, surfaceeval.WithRenderer(renderers))

	fmt.Println("🔧 Initializing evaluator...")
	ev, err := surfaceeval.NewEvaluator(opts...)
	if err != nil {
		fail("Failed to create evaluator: %v", err)
	}
	defer ev.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var errs error
	for _, batch := range batches {
		fmt.Printf("\n📊 Evaluating %s/%s...\n", batch.Device, batch.Signal)
		summary, err := ev.Evaluate(ctx, batch)
		if summary != nil {
			printSummary(summary)
		}
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			log.Errorf("Evaluation of %s/%s failed: %v", batch.Device, batch.Signal, err)
			errs = multierr.Append(errs, batchFailures(batch, err))
		}
	}

	if errs != nil {
		failures := multierr.Errors(errs)
		fmt.Printf("\n❌ %d failure(s):\n", len(failures))
		for _, e := range failures {
			fmt.Printf("   • %v\n", e)
		}
		os.Exit(1)
	}
}

// batchFailures splits a batch error into one error per failed run, each
// prefixed with the batch it belongs to.
func batchFailures(batch surfaceeval.Batch, err error) error {
	label := string(batch.Device) + "/" + string(batch.Signal)
	if batch.Name != "" {
		label = batch.Name + " (" + label + ")"
	}
	var out error
	for _, e := range multierr.Errors(err) {
		out = multierr.Append(out, fmt.Errorf("%s: %w", label, e))
	}
	return out
}

func flagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func batchFromFlags(name, device, sig, template, paths, format string) (surfaceeval.Batch, error) {
	dk, err := models.ParseDeviceKind(device)
	if err != nil {
		return surfaceeval.Batch{}, err
	}
	sk, err := models.ParseSignalKind(sig)
	if err != nil {
		return surfaceeval.Batch{}, err
	}

	batch := surfaceeval.Batch{Name: name, Device: dk, Signal: sk, Template: template, Format: format}
	for _, p := range strings.Split(paths, ",") {
		if p = strings.TrimSpace(p); p != "" {
			batch.Paths = append(batch.Paths, p)
		}
	}
	return batch, nil
}

func printSummary(s *surfaceeval.Summary) {
	fmt.Printf("   ID:      %s\n", s.ID)
	if s.Name != "" {
		fmt.Printf("   Name:    %s\n", s.Name)
	}
	fmt.Printf("   Device:  %s\n", s.Device)
	fmt.Printf("   Signal:  %s\n", s.Signal)
	fmt.Printf("   Tempo:   %.1f bpm\n", s.BPM)
	fmt.Printf("   Runs:    %d\n", s.NumRuns)
	for _, sc := range s.Scores {
		fmt.Printf("     run %2d: %.4f\n", sc.RunIndex, sc.Value)
	}
	for _, f := range s.Failures {
		fmt.Printf("     run %2d: FAILED %s\n", f.RunIndex, f.Message)
	}
	if s.Complete {
		fmt.Printf("✅ Mean error: %.4f (sd %.4f, min %.4f, max %.4f)\n",
			s.MeanError, s.Stats.StdDev, s.Stats.Min, s.Stats.Max)
	} else {
		fmt.Printf("⚠️  %d of %d runs failed; no mean reported\n", len(s.Failures), s.NumRuns)
	}
}

func handleClick(args []string) {
	fs := newFlagSet("click", nil)
	bpm := fs.Float64("bpm", 90, "Tempo in beats per minute")
	beats := fs.Int("beats", 8, "Number of clicks")
	rate := fs.Int("rate", clicktrack.DefaultSampleRate, "Sample rate of the WAV file")
	out := fs.String("out", "click.wav", "Output WAV path")
	fs.Parse(args)

	schedule, err := expected.Pad(*bpm, *beats)
	if err != nil {
		fail("%v", err)
	}

	cfg := clicktrack.DefaultConfig()
	cfg.SampleRate = *rate
	if err := clicktrack.Write(*out, schedule, cfg); err != nil {
		fail("Failed to write click track: %v", err)
	}

	fmt.Printf("✅ Wrote %d clicks at %.1f bpm to %s\n", *beats, *bpm, *out)
}

// handleRecord reads "<address> <arg>..." lines from stdin and appends the
// corresponding log lines to -out.
func handleRecord(args []string) {
	log := logger.GetLogger()

	fs := newFlagSet("record", nil)
	out := fs.String("out", "", "Log file to append to (default: stdout)")
	fs.Parse(args)

	w := os.Stdout
	if *out != "" {
		f, err := os.OpenFile(*out, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fail("Failed to open log: %v", err)
		}
		defer f.Close()
		w = f
	}

	rec := eventlog.NewRecorder(w)
	sc := bufio.NewScanner(os.Stdin)
	n := 0
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		values, err := parseLevels(strings.Join(fields[1:], ","))
		if err != nil {
			log.Warnf("Skipping %q: %v", sc.Text(), err)
			continue
		}
		if err := rec.RecordAddress(fields[0], values...); err != nil {
			log.Warnf("Skipping %q: %v", sc.Text(), err)
			continue
		}
		n++
	}
	if err := sc.Err(); err != nil {
		fail("Reading input: %v", err)
	}
	log.Infof("Recorded %d messages", n)
}

func openEvaluator(dbPath string) surfaceeval.Evaluator {
	ev, err := surfaceeval.NewEvaluator(surfaceeval.WithDBPath(dbPath))
	if err != nil {
		fail("Failed to create evaluator: %v", err)
	}
	return ev
}

func handleList(args []string) {
	var dbPath string
	fs := newFlagSet("list", &dbPath)
	fs.Parse(args)

	ev := openEvaluator(dbPath)
	defer ev.Close()

	evals, err := ev.ListEvaluations()
	if err != nil {
		fail("Failed to list evaluations: %v", err)
	}

	if len(evals) == 0 {
		fmt.Println("\n📭 No evaluations in database")
		return
	}

	fmt.Printf("\n📚 Found %d evaluation(s):\n\n", len(evals))
	for i, s := range evals {
		status := fmt.Sprintf("mean %.4f", s.MeanError)
		if !s.Complete {
			status = "incomplete"
		}
		fmt.Printf("%d. %s %s/%s, %d runs, %s\n", i+1, s.ID, s.Device, s.Signal, s.NumRuns, status)
		fmt.Printf("   Created: %s\n", s.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func handleShow(args []string) {
	var dbPath string
	fs := newFlagSet("show", &dbPath)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Println("Usage: surfaceeval show [-db path] <evaluation_id>")
		os.Exit(1)
	}

	ev := openEvaluator(dbPath)
	defer ev.Close()

	s, err := ev.GetEvaluation(fs.Arg(0))
	if errors.Is(err, surfaceeval.ErrNotFound) {
		fail("Evaluation not found (ID: %s)", fs.Arg(0))
	}
	if err != nil {
		fail("Failed to load evaluation: %v", err)
	}
	fmt.Println()
	printSummary(s)
}

func handleDelete(args []string) {
	var dbPath string
	fs := newFlagSet("delete", &dbPath)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Println("Usage: surfaceeval delete [-db path] <evaluation_id>")
		os.Exit(1)
	}
	id := fs.Arg(0)

	ev := openEvaluator(dbPath)
	defer ev.Close()

	if err := ev.DeleteEvaluation(id); err != nil {
		if errors.Is(err, surfaceeval.ErrNotFound) {
			fail("Evaluation not found (ID: %s)", id)
		}
		fail("Failed to delete evaluation: %v", err)
	}

	fmt.Printf("\n✅ Deleted evaluation %s\n", id)
}

func printUsage() {
	fmt.Println("SurfaceEval - Control Surface Evaluation CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  surfaceeval eval [-db path] [-config file.yaml] -device <kind> -signal <kind> (-template <path_{}> | -paths a,b)")
	fmt.Println("                   [-format values|discriminated] [-bpm 90] [-beats 8] [-pattern 0.25,0.75,0.5,1.0] [-runs 10]")
	fmt.Println("                   [-plots dir] [-json dir]")
	fmt.Println("  surfaceeval click [-bpm 90] [-beats 8] [-rate 44100] [-out click.wav]")
	fmt.Println("  surfaceeval record [-out file.log]          (reads '<address> <arg>...' lines from stdin)")
	fmt.Println("  surfaceeval list [-db path]")
	fmt.Println("  surfaceeval show [-db path] <evaluation_id>")
	fmt.Println("  surfaceeval delete [-db path] <evaluation_id>")
	fmt.Println("\nEnvironment:")
	fmt.Println("  SURFACEEVAL_DB_PATH   default database path (default: surfaceeval.sqlite3)")
	fmt.Println("  LOG_LEVEL             DEBUG, INFO, WARN or FATAL")
	fmt.Println("\nExamples:")
	fmt.Println("  # Score ten touch-surface fader runs and plot them")
	fmt.Println("  surfaceeval eval -device touch-surface -signal fader -template 'logs/touchosc_slider_{}.log'")
	fmt.Println()
	fmt.Println("  # Score motion-surface pad runs from combined logs")
	fmt.Println("  surfaceeval eval -device motion-surface -signal pad -format discriminated -template 'logs/oscxr_{}.log'")
	fmt.Println()
	fmt.Println("  # Practice against the expected tempo")
	fmt.Println("  surfaceeval click -bpm 90 -beats 8 -out click.wav")
}
