package anttrail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"anttrail/internal/batch"
	"anttrail/internal/interp"
	"anttrail/internal/model"
	"anttrail/internal/program"
	"anttrail/internal/replay"
	"anttrail/internal/scape"
	"anttrail/internal/stats"
	"anttrail/internal/storage"
	"anttrail/internal/trail"
)

const (
	defaultDBPath      = "anttrail.db"
	defaultTrail       = "spiral"
	defaultWorkers     = 4
	defaultSampleCount = 100
)

type Options struct {
	StoreKind string
	DBPath    string
	// Logger receives evaluation start and end events. Nil discards them.
	Logger *log.Logger
}

type Client struct {
	store  storage.Store
	logger *log.Logger
	ready  bool
}

type EvaluateRequest struct {
	RunID        string
	Trail        string
	Program      string
	Sequence     program.Sequence
	// MaximumMoves is the move budget. Zero and negative budgets end the run
	// before its first pass.
	MaximumMoves int
	Save         bool
	Observer     interp.Observer
}

type EvaluateSummary struct {
	ID      string
	RunID   string
	Trail   string
	Program program.Sequence
	Fitness float64
	Result  interp.Result
	Trace   scape.Trace
}

type SampleRequest struct {
	RunID        string
	Trail        string
	Count        int
	Workers      int
	Seed         int64
	MinLength    int
	MaxLength    int
	BranchRate   float64
	MaximumMoves int
	Save         bool
}

type SampleSummary struct {
	RunID     string
	Trail     string
	Evaluated int
	Outcomes  map[string]int
	Best      EvaluateSummary
	Fitness   stats.FitnessStats
	Elapsed   time.Duration
	// Request is the request after defaults were applied.
	Request   SampleRequest
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, logger: logger}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) ensureStore(ctx context.Context) error {
	if c.ready {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	c.ready = true
	return nil
}

func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) (EvaluateSummary, error) {
	applyEvaluateDefaults(&req)
	seq, err := resolveSequence(req.Program, req.Sequence)
	if err != nil {
		return EvaluateSummary{}, err
	}
	s, err := newScape(req.Trail, req.MaximumMoves, req.Observer)
	if err != nil {
		return EvaluateSummary{}, err
	}

	id := uuid.NewString()
	c.logger.Printf("ant-fitness-evaluation-start id=%s trail=%s max_moves=%d program=%s", id, s.Provider().Name(), req.MaximumMoves, seq)
	res, fitness, trace, err := s.Run(ctx, scape.NewCandidate(id, seq))
	if err != nil {
		return EvaluateSummary{}, err
	}
	c.logger.Printf("ant-fitness-evaluation-end id=%s outcome=%s position=%s food_eaten=%d food_remaining=%d",
		id, res.Outcome, res.Position, res.FoodEaten, res.FoodRemaining)

	summary := EvaluateSummary{
		ID:      id,
		RunID:   req.RunID,
		Trail:   s.Provider().Name(),
		Program: seq,
		Fitness: float64(fitness),
		Result:  res,
		Trace:   trace,
	}
	if req.Save {
		if err := c.save(ctx, s.Provider(), req.MaximumMoves, []EvaluateSummary{summary}); err != nil {
			return EvaluateSummary{}, err
		}
	}
	return summary, nil
}

// Sample scores Count random programs concurrently and reports the best.
func (c *Client) Sample(ctx context.Context, req SampleRequest) (SampleSummary, error) {
	applySampleDefaults(&req)
	gen, err := program.NewGenerator(program.GeneratorConfig{
		MinLength:  req.MinLength,
		MaxLength:  req.MaxLength,
		BranchRate: req.BranchRate,
	}, uint64(req.Seed))
	if err != nil {
		return SampleSummary{}, err
	}
	s, err := newScape(req.Trail, req.MaximumMoves, nil)
	if err != nil {
		return SampleSummary{}, err
	}
	evaluator, err := batch.NewEvaluator(s, req.Workers)
	if err != nil {
		return SampleSummary{}, err
	}

	agents := make([]scape.Agent, req.Count)
	sequences := make(map[string]program.Sequence, req.Count)
	for i := range agents {
		id := uuid.NewString()
		seq := gen.Next()
		sequences[id] = seq
		agents[i] = scape.NewCandidate(id, seq)
	}

	c.logger.Printf("sample-start run=%s trail=%s count=%d workers=%d seed=%d", req.RunID, s.Provider().Name(), req.Count, evaluator.Workers(), req.Seed)
	started := time.Now()
	scored, err := evaluator.Evaluate(ctx, agents)
	if err != nil {
		return SampleSummary{}, err
	}
	elapsed := time.Since(started)

	summaries := make([]EvaluateSummary, len(scored))
	outcomes := make(map[string]int)
	fitness := make([]float64, len(scored))
	for i, sc := range scored {
		fitness[i] = float64(sc.Fitness)
		summaries[i] = EvaluateSummary{
			ID:      sc.AgentID,
			RunID:   req.RunID,
			Trail:   s.Provider().Name(),
			Program: sequences[sc.AgentID],
			Fitness: float64(sc.Fitness),
			Result:  sc.Result,
			Trace:   sc.Trace,
		}
		outcomes[sc.Result.Outcome.String()]++
	}
	best := summaries[batch.Best(scored)]
	c.logger.Printf("sample-end run=%s best=%s fitness=%.0f elapsed=%s", req.RunID, best.ID, best.Fitness, elapsed)

	if req.Save {
		if err := c.save(ctx, s.Provider(), req.MaximumMoves, summaries); err != nil {
			return SampleSummary{}, err
		}
	}
	return SampleSummary{
		RunID:     req.RunID,
		Trail:     s.Provider().Name(),
		Evaluated: len(scored),
		Outcomes:  outcomes,
		Best:      best,
		Fitness:   stats.Summarize(fitness),
		Elapsed:   elapsed,
		Request:   req,
	}, nil
}

// Replay evaluates a program while recording one frame per pass.
func (c *Client) Replay(ctx context.Context, req EvaluateRequest) ([]replay.Frame, EvaluateSummary, error) {
	rec := replay.NewRecorder()
	req.Observer = rec
	req.Save = false
	summary, err := c.Evaluate(ctx, req)
	if err != nil {
		return nil, EvaluateSummary{}, err
	}
	return rec.Frames(), summary, nil
}

func (c *Client) Evaluation(ctx context.Context, id string) (model.EvaluationRecord, error) {
	if err := c.ensureStore(ctx); err != nil {
		return model.EvaluationRecord{}, err
	}
	record, ok, err := c.store.GetEvaluation(ctx, id)
	if err != nil {
		return model.EvaluationRecord{}, err
	}
	if !ok {
		return model.EvaluationRecord{}, fmt.Errorf("evaluation not found: %s", id)
	}
	return record, nil
}

func (c *Client) Evaluations(ctx context.Context, runID string) ([]model.EvaluationRecord, error) {
	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}
	return c.store.ListEvaluations(ctx, runID)
}

func (c *Client) TrailSummary(ctx context.Context, name string) (model.TrailSummary, error) {
	if err := c.ensureStore(ctx); err != nil {
		return model.TrailSummary{}, err
	}
	summary, ok, err := c.store.GetTrailSummary(ctx, name)
	if err != nil {
		return model.TrailSummary{}, err
	}
	if !ok {
		return model.TrailSummary{}, fmt.Errorf("trail summary not found: %s", name)
	}
	return summary, nil
}

func (c *Client) save(ctx context.Context, provider *trail.Provider, maximumMoves int, summaries []EvaluateSummary) error {
	if err := c.ensureStore(ctx); err != nil {
		return err
	}

	trailSummary, ok, err := c.store.GetTrailSummary(ctx, provider.Name())
	if err != nil {
		return err
	}
	if !ok {
		trailSummary = model.TrailSummary{
			VersionedRecord: storage.CurrentVersion(),
			Name:            provider.Name(),
			Rows:            provider.Rows(),
			Columns:         provider.Columns(),
			FoodCount:       provider.FoodCount(),
		}
	}

	now := time.Now().UTC()
	for _, s := range summaries {
		record := model.EvaluationRecord{
			VersionedRecord: storage.CurrentVersion(),
			ID:              s.ID,
			RunID:           s.RunID,
			Trail:           provider.Name(),
			Program:         s.Program.Format(),
			MaximumMoves:    maximumMoves,
			Fitness:         s.Fitness,
			FoodEaten:       s.Result.FoodEaten,
			FoodRemaining:   s.Result.FoodRemaining,
			MovesMade:       s.Result.MovesMade,
			Passes:          s.Result.Passes,
			Outcome:         s.Result.Outcome.String(),
			Row:             s.Result.Position.Row,
			Column:          s.Result.Position.Column,
			Heading:         s.Result.Position.Heading.String(),
			CreatedAt:       now,
		}
		if err := c.store.SaveEvaluation(ctx, record); err != nil {
			return fmt.Errorf("save evaluation %s: %w", record.ID, err)
		}
		if trailSummary.Evaluations == 0 || s.Fitness < trailSummary.BestFitness {
			trailSummary.BestFitness = s.Fitness
			trailSummary.BestEvaluationID = s.ID
		}
		trailSummary.Evaluations++
	}
	return c.store.SaveTrailSummary(ctx, trailSummary)
}

func newScape(ref string, maximumMoves int, obs interp.Observer) (*scape.AntTrailScape, error) {
	provider, err := trail.Open(ref)
	if err != nil {
		return nil, err
	}
	var opts []scape.Option
	if obs != nil {
		opts = append(opts, scape.WithObserver(func(string) interp.Observer { return obs }))
	}
	return scape.NewAntTrailScape(provider, maximumMoves, opts...)
}

func resolveSequence(text string, seq program.Sequence) (program.Sequence, error) {
	if seq != nil {
		return seq, nil
	}
	if text == "" {
		return nil, errors.New("a program is required")
	}
	return program.Parse(text)
}

func applyEvaluateDefaults(req *EvaluateRequest) {
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	if req.Trail == "" {
		req.Trail = defaultTrail
	}
	if req.MaximumMoves < 0 {
		req.MaximumMoves = 0
	}
}

func applySampleDefaults(req *SampleRequest) {
	defaults := program.DefaultGeneratorConfig()
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	if req.Trail == "" {
		req.Trail = defaultTrail
	}
	if req.Count <= 0 {
		req.Count = defaultSampleCount
	}
	if req.Workers <= 0 {
		req.Workers = defaultWorkers
	}
	if req.MinLength <= 0 {
		req.MinLength = defaults.MinLength
	}
	if req.MaxLength <= 0 {
		req.MaxLength = defaults.MaxLength
	}
	if req.BranchRate <= 0 {
		req.BranchRate = defaults.BranchRate
	}
	if req.MaximumMoves < 0 {
		req.MaximumMoves = 0
	}
}
