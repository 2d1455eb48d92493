package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"

	"anttrail/internal/interp"
	"anttrail/internal/program"
	"anttrail/internal/replay"
	"anttrail/internal/scape"
	"anttrail/internal/stats"
	"anttrail/internal/storage"
	"anttrail/internal/trail"
	antapi "anttrail/pkg/anttrail"
)

const (
	defaultDBPath       = "anttrail.db"
	defaultArtifactsDir = "runs"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	newScreen = tcell.NewScreen
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "eval":
		return runEval(ctx, args[1:])
	case "trace":
		return runTrace(ctx, args[1:])
	case "replay":
		return runReplay(ctx, args[1:])
	case "generate":
		return runGenerate(ctx, args[1:])
	case "sample":
		return runSample(ctx, args[1:])
	case "show":
		return runShow(ctx, args[1:])
	case "trails":
		return runTrails(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "get":
		return runGet(ctx, args[1:])
	case "summary":
		return runSummary(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

// commonFlags are shared by every command that touches a store.
type commonFlags struct {
	storeKind *string
	dbPath    *string
	verbose   *bool
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		storeKind: fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite"),
		dbPath:    fs.String("db-path", defaultDBPath, "sqlite database path"),
		verbose:   fs.Bool("v", false, "log evaluation progress to stderr"),
	}
}

func (f commonFlags) client() (*antapi.Client, error) {
	var logger *log.Logger
	if *f.verbose {
		logger = log.New(stderr, "antctl: ", log.LstdFlags)
	}
	return antapi.New(antapi.Options{
		StoreKind: *f.storeKind,
		DBPath:    *f.dbPath,
		Logger:    logger,
	})
}

type evalFlags struct {
	common      commonFlags
	configPath  *string
	runID       *string
	trailRef    *string
	programText *string
	programFile *string
	maxMoves    *int
	save        *bool
}

func addEvalFlags(fs *flag.FlagSet) evalFlags {
	return evalFlags{
		common:      addCommonFlags(fs),
		configPath:  fs.String("config", "", "optional JSON or YAML config file"),
		runID:       fs.String("run-id", "", "run id recorded with saved evaluations"),
		trailRef:    fs.String("trail", "spiral", "builtin trail name or trail file path"),
		programText: fs.String("program", "", "instruction sequence, e.g. \"IfFoodAhead MoveForward TurnRight\""),
		programFile: fs.String("program-file", "", "file holding the instruction sequence"),
		maxMoves:    fs.Int("max-moves", scape.DefaultMaximumMoves, "move budget; 0 ends the run before its first pass"),
		save:        fs.Bool("save", false, "persist the evaluation"),
	}
}

// request merges config file values with explicitly set flags; flags win.
func (f evalFlags) request(fs *flag.FlagSet) (antapi.EvaluateRequest, error) {
	setFlags := visitedFlags(fs)

	req := antapi.EvaluateRequest{
		RunID:        *f.runID,
		Trail:        *f.trailRef,
		MaximumMoves: *f.maxMoves,
		Save:         *f.save,
	}
	if *f.configPath != "" {
		cfg, err := loadConfig(*f.configPath)
		if err != nil {
			return antapi.EvaluateRequest{}, err
		}
		applyStoreConfig(f.common, cfg, setFlags)
		fromFile := cfg.Evaluate
		if setFlags["run-id"] {
			fromFile.RunID = req.RunID
		}
		if setFlags["trail"] || fromFile.Trail == "" {
			fromFile.Trail = req.Trail
		}
		if setFlags["max-moves"] || !cfg.Keys["max_moves"] {
			fromFile.MaximumMoves = req.MaximumMoves
		}
		if setFlags["save"] {
			fromFile.Save = req.Save
		}
		req = fromFile
	}

	switch {
	case *f.programText != "" && *f.programFile != "":
		return antapi.EvaluateRequest{}, errors.New("use only one of --program and --program-file")
	case *f.programText != "":
		req.Program = *f.programText
	case *f.programFile != "":
		data, err := os.ReadFile(*f.programFile)
		if err != nil {
			return antapi.EvaluateRequest{}, err
		}
		req.Program = string(data)
	}
	if strings.TrimSpace(req.Program) == "" {
		return antapi.EvaluateRequest{}, errors.New("a program is required: use --program, --program-file or a config file")
	}
	return req, nil
}

func applyStoreConfig(common commonFlags, cfg fileConfig, setFlags map[string]bool) {
	if cfg.StoreKind != "" && !setFlags["store"] {
		*common.storeKind = cfg.StoreKind
	}
	if cfg.DBPath != "" && !setFlags["db-path"] {
		*common.dbPath = cfg.DBPath
	}
}

func visitedFlags(fs *flag.FlagSet) map[string]bool {
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})
	return setFlags
}

func runEval(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	flags := addEvalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	req, err := flags.request(fs)
	if err != nil {
		return err
	}

	client, err := flags.common.client()
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := client.Evaluate(ctx, req)
	if err != nil {
		return err
	}
	printEvaluation(summary)
	return nil
}

func runTrace(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("trace", flag.ContinueOnError)
	flags := addEvalFlags(fs)
	grids := fs.Bool("grid", false, "print the grid after every pass")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req, err := flags.request(fs)
	if err != nil {
		return err
	}

	client, err := flags.common.client()
	if err != nil {
		return err
	}
	defer client.Close()

	frames, summary, err := client.Replay(ctx, req)
	if err != nil {
		return err
	}
	for _, f := range frames {
		fmt.Fprintf(stdout, "pass=%d moves=%d eaten=%d remaining=%d row=%d column=%d heading=%s\n",
			f.Pass, f.MovesMade, f.FoodEaten, f.FoodRemaining, f.Position.Row, f.Position.Column, f.Position.Heading)
		if *grids {
			fmt.Fprintln(stdout, f.Text())
		}
	}
	printEvaluation(summary)
	return nil
}

func runReplay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	flags := addEvalFlags(fs)
	delay := fs.Duration("delay", replay.DefaultDelay, "time between frames")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req, err := flags.request(fs)
	if err != nil {
		return err
	}

	client, err := flags.common.client()
	if err != nil {
		return err
	}
	defer client.Close()

	frames, summary, err := client.Replay(ctx, req)
	if err != nil {
		return err
	}

	screen, err := newScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	replay.Play(screen, frames, summary.Trail+" "+summary.Program.Format(), *delay)
	screen.Fini()

	printEvaluation(summary)
	return nil
}

func runGenerate(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	defaults := program.DefaultGeneratorConfig()
	count := fs.Int("count", 10, "number of programs to generate")
	seed := fs.Int64("seed", 1, "generator seed")
	minLength := fs.Int("min-length", defaults.MinLength, "minimum program length")
	maxLength := fs.Int("max-length", defaults.MaxLength, "maximum program length")
	branchRate := fs.Float64("branch-rate", defaults.BranchRate, "probability of emitting IfFoodAhead")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *count <= 0 {
		return errors.New("count must be > 0")
	}

	gen, err := program.NewGenerator(program.GeneratorConfig{
		MinLength:  *minLength,
		MaxLength:  *maxLength,
		BranchRate: *branchRate,
	}, uint64(*seed))
	if err != nil {
		return err
	}
	for i := 0; i < *count; i++ {
		fmt.Fprintln(stdout, gen.Next().Format())
	}
	return nil
}

func runSample(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	common := addCommonFlags(fs)
	defaults := program.DefaultGeneratorConfig()
	configPath := fs.String("config", "", "optional JSON or YAML config file")
	runID := fs.String("run-id", "", "run id recorded with saved evaluations")
	trailRef := fs.String("trail", "spiral", "builtin trail name or trail file path")
	count := fs.Int("count", 100, "number of random programs to evaluate")
	workers := fs.Int("workers", 4, "parallel evaluation workers")
	seed := fs.Int64("seed", 1, "generator seed")
	minLength := fs.Int("min-length", defaults.MinLength, "minimum program length")
	maxLength := fs.Int("max-length", defaults.MaxLength, "maximum program length")
	branchRate := fs.Float64("branch-rate", defaults.BranchRate, "probability of emitting IfFoodAhead")
	maxMoves := fs.Int("max-moves", scape.DefaultMaximumMoves, "move budget; 0 ends every run before its first pass")
	save := fs.Bool("save", false, "persist every evaluation")
	artifactsDir := fs.String("artifacts", "", "directory receiving run artifacts and the run index")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := visitedFlags(fs)

	req := antapi.SampleRequest{
		RunID:        *runID,
		Trail:        *trailRef,
		Count:        *count,
		Workers:      *workers,
		Seed:         *seed,
		MinLength:    *minLength,
		MaxLength:    *maxLength,
		BranchRate:   *branchRate,
		MaximumMoves: *maxMoves,
		Save:         *save,
	}
	if *configPath != "" {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		applyStoreConfig(common, cfg, setFlags)
		req = mergeSampleRequest(cfg.Sample, req, setFlags, cfg.Keys)
	}
	if req.Count <= 0 {
		return errors.New("count must be > 0")
	}

	client, err := common.client()
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := client.Sample(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "run_id=%s trail=%s evaluated=%s elapsed=%s\n",
		summary.RunID, summary.Trail, humanize.Comma(int64(summary.Evaluated)), summary.Elapsed.Round(time.Millisecond))
	for _, outcome := range []interp.Outcome{interp.Cleared, interp.BudgetExhausted, interp.Stalled} {
		fmt.Fprintf(stdout, "outcome=%s count=%s\n", outcome, humanize.Comma(int64(summary.Outcomes[outcome.String()])))
	}
	fmt.Fprintf(stdout, "fitness mean=%.2f std=%.2f min=%.0f max=%.0f\n",
		summary.Fitness.Mean, summary.Fitness.StdDev, summary.Fitness.Min, summary.Fitness.Max)
	fmt.Fprint(stdout, "best ")
	printEvaluation(summary.Best)

	if *artifactsDir != "" {
		runDir, err := writeSampleArtifacts(*artifactsDir, summary)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "artifacts=%s\n", runDir)
	}
	return nil
}

func writeSampleArtifacts(baseDir string, summary antapi.SampleSummary) (string, error) {
	req := summary.Request
	runDir, err := stats.WriteSampleArtifacts(baseDir, stats.SampleArtifacts{
		Config: stats.SampleConfig{
			RunID:        summary.RunID,
			Trail:        summary.Trail,
			Count:        req.Count,
			Workers:      req.Workers,
			Seed:         req.Seed,
			MinLength:    req.MinLength,
			MaxLength:    req.MaxLength,
			BranchRate:   req.BranchRate,
			MaximumMoves: req.MaximumMoves,
		},
		Fitness:  summary.Fitness,
		Outcomes: summary.Outcomes,
		Best: stats.BestProgram{
			ID:            summary.Best.ID,
			Program:       summary.Best.Program.Format(),
			Fitness:       summary.Best.Fitness,
			Outcome:       summary.Best.Result.Outcome.String(),
			Passes:        summary.Best.Result.Passes,
			MovesMade:     summary.Best.Result.MovesMade,
			FoodRemaining: summary.Best.Result.FoodRemaining,
		},
	})
	if err != nil {
		return "", err
	}
	err = stats.AppendRunIndex(baseDir, stats.RunIndexEntry{
		RunID:        summary.RunID,
		Trail:        summary.Trail,
		Count:        summary.Evaluated,
		Seed:         req.Seed,
		Workers:      req.Workers,
		BestFitness:  summary.Best.Fitness,
		Cleared:      summary.Fitness.Cleared,
		CreatedAtUTC: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return "", err
	}
	return runDir, nil
}

func runHistory(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	artifactsDir := fs.String("artifacts", defaultArtifactsDir, "directory holding the run index")
	limit := fs.Int("limit", 20, "max runs to list")
	runID := fs.String("run-id", "", "show the saved config and best program of one run")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}
	if *runID != "" {
		return printRunDetail(*artifactsDir, *runID)
	}

	entries, err := stats.ListRunIndex(*artifactsDir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(stdout, "no runs found")
		return nil
	}
	if len(entries) > *limit {
		entries = entries[:*limit]
	}
	for _, e := range entries {
		created := e.CreatedAtUTC
		if ts, err := time.Parse(time.RFC3339Nano, e.CreatedAtUTC); err == nil {
			created = humanize.Time(ts)
		}
		fmt.Fprintf(stdout, "run_id=%s trail=%s count=%s seed=%d best_fitness=%.0f cleared=%d created=%s\n",
			e.RunID, e.Trail, humanize.Comma(int64(e.Count)), e.Seed, e.BestFitness, e.Cleared, created)
	}
	return nil
}

// mergeSampleRequest layers explicitly set flags over config file values.
// Config fields left at zero fall back to the flag defaults; max_moves only
// falls back when the key is absent from the file.
func mergeSampleRequest(fromFile, flags antapi.SampleRequest, setFlags, fileKeys map[string]bool) antapi.SampleRequest {
	out := fromFile
	pickString := func(name string, dst *string, v string) {
		if setFlags[name] || *dst == "" {
			*dst = v
		}
	}
	pickInt := func(name string, dst *int, v int) {
		if setFlags[name] || *dst == 0 {
			*dst = v
		}
	}
	pickString("run-id", &out.RunID, flags.RunID)
	pickString("trail", &out.Trail, flags.Trail)
	pickInt("count", &out.Count, flags.Count)
	pickInt("workers", &out.Workers, flags.Workers)
	pickInt("min-length", &out.MinLength, flags.MinLength)
	pickInt("max-length", &out.MaxLength, flags.MaxLength)
	if setFlags["max-moves"] || !fileKeys["max_moves"] {
		out.MaximumMoves = flags.MaximumMoves
	}
	if setFlags["seed"] || out.Seed == 0 {
		out.Seed = flags.Seed
	}
	if setFlags["branch-rate"] || out.BranchRate == 0 {
		out.BranchRate = flags.BranchRate
	}
	if setFlags["save"] {
		out.Save = flags.Save
	}
	return out
}

func runShow(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	trailRef := fs.String("trail", "spiral", "builtin trail name or trail file path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	provider, err := trail.Open(*trailRef)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "trail=%s rows=%d columns=%d food=%d\n",
		provider.Name(), provider.Rows(), provider.Columns(), provider.FoodCount())
	fmt.Fprintln(stdout, provider.NewGrid().String())
	return nil
}

func runTrails(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("trails", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	for _, name := range trail.BuiltinNames() {
		provider, err := trail.Builtin(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "trail=%s rows=%d columns=%d food=%d\n",
			name, provider.Rows(), provider.Columns(), provider.FoodCount())
	}
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	common := addCommonFlags(fs)
	runID := fs.String("run-id", "", "only list evaluations from this run")
	limit := fs.Int("limit", 20, "max evaluations to list")
	jsonOut := fs.Bool("json", false, "emit evaluations as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := common.client()
	if err != nil {
		return err
	}
	defer client.Close()

	records, err := client.Evaluations(ctx, *runID)
	if err != nil {
		return err
	}
	if len(records) > *limit {
		records = records[len(records)-*limit:]
	}
	if *jsonOut {
		return writeJSON(records)
	}
	if len(records) == 0 {
		fmt.Fprintln(stdout, "no evaluations found")
		return nil
	}
	for _, r := range records {
		fmt.Fprintf(stdout, "id=%s run_id=%s trail=%s fitness=%.0f outcome=%s created=%s\n",
			r.ID, r.RunID, r.Trail, r.Fitness, r.Outcome, humanize.Time(r.CreatedAt))
	}
	return nil
}

func runGet(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	common := addCommonFlags(fs)
	id := fs.String("id", "", "evaluation id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("get requires --id")
	}

	client, err := common.client()
	if err != nil {
		return err
	}
	defer client.Close()

	record, err := client.Evaluation(ctx, *id)
	if err != nil {
		return err
	}
	return writeJSON(record)
}

func runSummary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	common := addCommonFlags(fs)
	trailRef := fs.String("trail", "spiral", "trail name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := common.client()
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := client.TrailSummary(ctx, *trailRef)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "trail=%s rows=%d columns=%d food=%d evaluations=%s best_fitness=%.0f best_id=%s\n",
		summary.Name, summary.Rows, summary.Columns, summary.FoodCount,
		humanize.Comma(int64(summary.Evaluations)), summary.BestFitness, summary.BestEvaluationID)
	return nil
}

func printRunDetail(baseDir, runID string) error {
	cfg, ok, err := stats.ReadSampleConfig(baseDir, runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("run not found: %s", runID)
	}
	best, ok, err := stats.ReadBestProgram(baseDir, runID)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "run_id=%s trail=%s count=%s workers=%d seed=%d min_length=%d max_length=%d branch_rate=%.2f max_moves=%d\n",
		cfg.RunID, cfg.Trail, humanize.Comma(int64(cfg.Count)), cfg.Workers, cfg.Seed,
		cfg.MinLength, cfg.MaxLength, cfg.BranchRate, cfg.MaximumMoves)
	if ok {
		fmt.Fprintf(stdout, "best id=%s fitness=%.0f outcome=%s passes=%d moves=%d remaining=%d program=%q\n",
			best.ID, best.Fitness, best.Outcome, best.Passes, best.MovesMade, best.FoodRemaining, best.Program)
	}
	return nil
}

func printEvaluation(s antapi.EvaluateSummary) {
	fmt.Fprintf(stdout, "id=%s trail=%s fitness=%.0f outcome=%s passes=%d moves=%d eaten=%d remaining=%d program=%q\n",
		s.ID, s.Trail, s.Fitness, s.Result.Outcome, s.Result.Passes, s.Result.MovesMade,
		s.Result.FoodEaten, s.Result.FoodRemaining, s.Program.Format())
}

func writeJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: antctl <eval|trace|replay|generate|sample|show|trails|runs|get|summary|history> [flags]", msg)
}
