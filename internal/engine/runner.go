package engine

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bizobs/journeyload/internal/collector"
	"github.com/bizobs/journeyload/internal/config"
	"github.com/bizobs/journeyload/internal/journey"
	"github.com/bizobs/journeyload/internal/trace"
	"github.com/bizobs/journeyload/internal/transport"
)

// Runner orchestrates a load-test run: it spawns the configured number of
// workers, drives each through its iterations, and aggregates outcomes.
//
// Per iteration the state machine is
//
//	Start -> Step 1 -> ... -> Step N -> completion event -> End
//
// with one Full_Customer_Journey transaction spanning all steps. The terminal
// state is reached regardless of step failures.
type Runner struct {
	cfg    *config.Config
	def    *journey.Definition
	client *transport.Client
	log    *zap.Logger

	journeyLabel string
	runLabel     string
}

// NewRunner validates the configuration and journey definition and prepares a
// run. A validation error here is fatal: no worker starts.
func NewRunner(cfg *config.Config, def *journey.Definition, log *zap.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	runLabel := cfg.RunLabel
	if runLabel == "" {
		runLabel = def.RunLabel(time.Now())
	}

	client := transport.NewClient(
		transport.WithBaseURL(cfg.BaseURL),
		transport.WithTimeout(cfg.Transport.Timeout.GetDuration(transport.DefaultTimeout)),
		transport.WithMaxRetries(cfg.Transport.MaxRetries),
		transport.WithMaxBodyBytes(cfg.Transport.MaxBodyBytes),
		transport.WithUserAgent(cfg.Transport.UserAgent),
	)

	return &Runner{
		cfg:          cfg,
		def:          def,
		client:       client,
		log:          log,
		journeyLabel: def.Label(),
		runLabel:     runLabel,
	}, nil
}

// RunLabel returns the LTN tag in effect for this run.
func (r *Runner) RunLabel() string { return r.runLabel }

// Run executes the full load test and blocks until every worker has finished
// or the context is cancelled. The returned summary counts only complete
// iterations; an iteration cut short by cancellation contributes nothing.
func (r *Runner) Run(ctx context.Context) (collector.Summary, error) {
	r.log.Info("starting load test",
		zap.String("company", r.def.CompanyName),
		zap.String("runId", r.cfg.RunID),
		zap.String("runLabel", r.runLabel),
		zap.Int("workers", r.cfg.Workers),
		zap.Int("iterations", r.cfg.Iterations))

	results := collector.New()

	var wg sync.WaitGroup
	for id := 1; id <= r.cfg.Workers; id++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r.runWorker(ctx, workerID, results)
		}(id)
	}
	wg.Wait()

	results.Close()
	summary := results.Summary()

	r.log.Info("load test finished",
		zap.Int64("journeys", summary.Journeys),
		zap.Int64("passed", summary.Passed),
		zap.Int64("failed", summary.Failed),
		zap.Duration("wallClock", summary.WallClock))

	return summary, nil
}

// runWorker drives one virtual user through its iteration loop. Iterations
// execute strictly in order within the worker; no ordering holds across
// workers.
func (r *Runner) runWorker(ctx context.Context, workerID int, results *collector.Collector) {
	vu := NewVirtualUser(workerID, r.cfg.Seed)

	log := r.log.With(zap.Int("worker", workerID))
	log.Info("worker started",
		zap.String("customer", vu.Profile.Name),
		zap.String("segment", vu.Profile.Segment),
		zap.String("trafficSource", vu.TrafficSource))

	exec := &StepExecutor{
		client:       r.client,
		def:          r.def,
		path:         r.cfg.SimulatePath,
		journeyLabel: r.journeyLabel,
		runLabel:     r.runLabel,
		thinkMs:      r.cfg.ThinkTimeBaselineMs,
		log:          log,
	}

	var limiter *rate.Limiter
	if r.cfg.PacingRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.cfg.PacingRPS), 1)
	}

	for iteration := 1; iteration <= r.cfg.Iterations; iteration++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
		r.runIteration(ctx, vu, iteration, exec, results, log)
	}
}

// runIteration executes one complete journey. The result is submitted to the
// collector only if every step ran; a cancelled iteration is discarded.
func (r *Runner) runIteration(ctx context.Context, vu *VirtualUser, iteration int, exec *StepExecutor, results *collector.Collector, log *zap.Logger) {
	// Identifier refresh happens exactly once, before any step.
	vu.BeginIteration(iteration, r.runLabel, r.journeyLabel, time.Now())

	log.Info("starting journey",
		zap.Int("iteration", iteration),
		zap.String("customer", vu.Profile.Name),
		zap.String("segment", vu.Profile.Segment),
		zap.String("correlationId", vu.IDs.Correlation))

	tx := StartTransaction(JourneyTransactionName)
	result := collector.JourneyResult{
		CorrelationID: vu.IDs.Correlation,
		WorkerID:      vu.ID,
		Iteration:     iteration,
	}

	// Steps run strictly in stepNumber order, each one regardless of what
	// happened before it.
	for _, step := range r.def.Steps {
		result.Steps = append(result.Steps, exec.Execute(ctx, vu, step))
		if ctx.Err() != nil {
			log.Info("journey abandoned", zap.String("correlationId", vu.IDs.Correlation))
			return
		}
	}

	result.Duration = tx.Elapsed()
	result.Finalize()

	log.Info("journey completed",
		zap.String("correlationId", vu.IDs.Correlation),
		zap.Duration("totalTime", result.Duration),
		zap.String("outcome", result.Outcome.String()))

	r.sendCompletionEvent(ctx, vu, log)

	results.Submit(result)
}

// sendCompletionEvent fires the trailing journey_completed event. It is
// fire-and-forget: failures are logged and never affect the journey outcome.
func (r *Runner) sendCompletionEvent(ctx context.Context, vu *VirtualUser, log *zap.Logger) {
	tags := trace.TagContext{
		JourneyLabel:  r.journeyLabel,
		RunLabel:      r.runLabel,
		WorkerID:      vu.ID,
		CompanyName:   r.def.CompanyName,
		CorrelationID: vu.IDs.Correlation,
	}

	// The completion event uses the lowercase tag header name; that quirk is
	// part of the downstream contract.
	headers := map[string]string{
		"x-dynatrace-test": tags.HeaderValue(JourneyTransactionName),
		"x-correlation-id": vu.IDs.Correlation,
	}

	body, _ := json.Marshal(completionEvent{
		EventType:       "journey_completed",
		CorrelationID:   vu.IDs.Correlation,
		CustomerID:      vu.IDs.Customer,
		CompanyName:     r.def.CompanyName,
		CustomerName:    vu.Profile.Name,
		CustomerSegment: vu.Profile.Segment,
		TotalSteps:      len(r.def.Steps),
		LoadTest:        true,
		CompletionTime:  time.Now().Format(time.RFC3339),
	})

	resp, err := r.client.PostJSON(ctx, r.cfg.SimulatePath, headers, body)
	if err != nil {
		log.Warn("completion event failed",
			zap.String("correlationId", vu.IDs.Correlation),
			zap.Error(err))
		return
	}
	if resp.StatusCode >= failThreshold {
		log.Warn("completion event rejected",
			zap.String("correlationId", vu.IDs.Correlation),
			zap.Int("status", resp.StatusCode),
			zap.String("message", gjson.GetBytes(resp.Body, "message").String()))
	}
}

// completionEvent is the wire schema of the trailing business event.
type completionEvent struct {
	EventType       string `json:"eventType"`
	CorrelationID   string `json:"correlationId"`
	CustomerID      string `json:"customerId"`
	CompanyName     string `json:"companyName"`
	CustomerName    string `json:"customerName"`
	CustomerSegment string `json:"customerSegment"`
	TotalSteps      int    `json:"totalSteps"`
	LoadTest        bool   `json:"loadTest"`
	CompletionTime  string `json:"completionTime"`
}
