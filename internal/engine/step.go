package engine

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/bizobs/journeyload/internal/collector"
	"github.com/bizobs/journeyload/internal/journey"
	"github.com/bizobs/journeyload/internal/trace"
	"github.com/bizobs/journeyload/internal/transport"
)

// failThreshold is the HTTP status at which a step flips from Pass to Fail.
// It is the only failure signal the executor understands; response bodies are
// never interpreted for classification.
const failThreshold = 400

// StepExecutor issues one request per journey step for one worker, attaching
// the tracing headers and applying the step's think time.
//
// Every request is built from freshly constructed values; nothing carries
// over from one step to the next, so headers set for step K can never leak
// into step K+1.
type StepExecutor struct {
	client       poster
	def          *journey.Definition
	path         string
	journeyLabel string
	runLabel     string
	thinkMs      int
	log          *zap.Logger
}

// poster is the slice of the transport client the executor needs.
type poster interface {
	PostJSON(ctx context.Context, path string, headers map[string]string, body []byte) (*transport.Response, error)
}

// Execute runs one step for one virtual user and returns its result.
//
// A transport error or an error status marks the step Fail; neither aborts
// the iteration. The journey proceeds unconditionally through all steps and
// only the aggregate outcome reflects which ones failed.
func (e *StepExecutor) Execute(ctx context.Context, vu *VirtualUser, step journey.Step) collector.StepResult {
	tags := trace.TagContext{
		JourneyLabel:  e.journeyLabel,
		RunLabel:      e.runLabel,
		WorkerID:      vu.ID,
		CompanyName:   e.def.CompanyName,
		CorrelationID: vu.IDs.Correlation,
	}

	headers := map[string]string{
		trace.HeaderName:     tags.HeaderValue(step.Name),
		"x-correlation-id":   vu.IDs.Correlation,
		"x-customer-id":      vu.IDs.Customer,
		"x-session-id":       vu.IDs.Session,
		"x-trace-id":         vu.IDs.Trace,
		"x-step-name":        step.Name,
		"x-service-name":     step.ServiceName,
		"x-customer-segment": vu.Profile.Segment,
		"x-traffic-source":   vu.TrafficSource,
		"x-test-iteration":   strconv.Itoa(vu.Iteration),
	}

	body, _ := json.Marshal(e.stepRequestBody(vu, step))

	tx := StartTransaction(step.Name)
	e.log.Info("executing step",
		zap.String("step", step.Name),
		zap.String("service", step.ServiceName),
		zap.String("customer", vu.Profile.Name),
		zap.String("correlationId", vu.IDs.Correlation))

	resp, err := e.client.PostJSON(ctx, e.path, headers, body)

	result := collector.StepResult{StepName: step.Name}

	switch {
	case err != nil:
		result.Outcome = collector.Fail
		e.log.Warn("step failed: no response",
			zap.String("step", step.Name),
			zap.Error(err))
	case resp.StatusCode >= failThreshold:
		result.StatusCode = resp.StatusCode
		result.Outcome = collector.Fail
		e.log.Warn("step failed",
			zap.String("step", step.Name),
			zap.Int("status", resp.StatusCode),
			zap.String("message", gjson.GetBytes(resp.Body, "message").String()))
	default:
		result.StatusCode = resp.StatusCode
		result.Outcome = collector.Pass
	}

	result.Duration = tx.Elapsed()
	e.log.Info("completed step",
		zap.String("step", step.Name),
		zap.Duration("responseTime", result.Duration),
		zap.String("outcome", result.Outcome.String()))

	e.applyThinkTime(ctx, step.ThinkTime.GetDuration(0))

	return result
}

// applyThinkTime pauses after a step, or returns early on cancellation.
func (e *StepExecutor) applyThinkTime(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// stepRequestBody builds the simulation request payload for one step. The
// nested journey object carries only the current step, with its sub-steps,
// exactly as the chained simulation protocol expects.
func (e *StepExecutor) stepRequestBody(vu *VirtualUser, step journey.Step) stepRequest {
	substeps := make([]subStepPayload, 0, len(step.SubSteps))
	for _, s := range step.SubSteps {
		substeps = append(substeps, subStepPayload{Name: s.Name, Duration: s.Duration})
	}

	return stepRequest{
		JourneyID:              vu.IDs.Correlation,
		CustomerID:             vu.IDs.Customer,
		SessionID:              vu.IDs.Session,
		TraceID:                vu.IDs.Trace,
		Chained:                true,
		ThinkTimeMs:            e.thinkMs,
		ErrorSimulationEnabled: e.def.ErrorSimulation,
		Journey: journeyPayload{
			JourneyID:   vu.IDs.Correlation,
			CompanyName: e.def.CompanyName,
			Domain:      e.def.Domain,
			Steps: []stepPayload{{
				StepNumber:        step.Number,
				StepName:          step.Name,
				ServiceName:       step.ServiceName,
				Description:       step.Description,
				EstimatedDuration: step.EstimatedDuration,
				SubSteps:          substeps,
			}},
			AdditionalFields: map[string]interface{}{},
			CustomerProfile: profilePayload{
				Name:       vu.Profile.Name,
				Email:      vu.Profile.Email,
				Segment:    vu.Profile.Segment,
				UserID:     vu.IDs.Customer,
				DeviceType: vu.Profile.DeviceType,
				Location:   vu.Profile.Location,
			},
		},
	}
}

// Wire types for the simulation request. Field names and nesting are part of
// the compatibility contract with the journey-simulation service.

type stepRequest struct {
	JourneyID              string         `json:"journeyId"`
	CustomerID             string         `json:"customerId"`
	SessionID              string         `json:"sessionId"`
	TraceID                string         `json:"traceId"`
	Chained                bool           `json:"chained"`
	ThinkTimeMs            int            `json:"thinkTimeMs"`
	ErrorSimulationEnabled bool           `json:"errorSimulationEnabled"`
	Journey                journeyPayload `json:"journey"`
}

type journeyPayload struct {
	JourneyID        string                 `json:"journeyId"`
	CompanyName      string                 `json:"companyName"`
	Domain           string                 `json:"domain"`
	Steps            []stepPayload          `json:"steps"`
	AdditionalFields map[string]interface{} `json:"additionalFields"`
	CustomerProfile  profilePayload         `json:"customerProfile"`
}

type stepPayload struct {
	StepNumber        int              `json:"stepNumber"`
	StepName          string           `json:"stepName"`
	ServiceName       string           `json:"serviceName"`
	Description       string           `json:"description"`
	EstimatedDuration int              `json:"estimatedDuration"`
	SubSteps          []subStepPayload `json:"substeps"`
}

type subStepPayload struct {
	Name     string `json:"substepName"`
	Duration int    `json:"duration"`
}

type profilePayload struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Segment    string `json:"segment"`
	UserID     string `json:"userId"`
	DeviceType string `json:"deviceType"`
	Location   string `json:"location"`
}
