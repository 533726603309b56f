package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/bizobs/journeyload/internal/journey"
)

// sixStepDefinition models a full retail journey with think times shrunk to
// keep the test fast.
func sixStepDefinition() *journey.Definition {
	def := &journey.Definition{
		CompanyName:     "Argos",
		Domain:          "www.Argos.co.uk",
		ErrorSimulation: true,
	}
	names := []struct {
		name    string
		service string
	}{
		{"ProductDiscovery", "ProductDiscoveryService"},
		{"ProductSelection", "ProductSelectionService"},
		{"CheckoutProcess", "CheckoutService"},
		{"PaymentProcessing", "PaymentService"},
		{"OrderConfirmation", "OrderConfirmationService"},
		{"DeliveryCompletion", "DeliveryService"},
	}
	for i, n := range names {
		def.Steps = append(def.Steps, journey.Step{
			Number:            i + 1,
			Name:              n.name,
			ServiceName:       n.service,
			Description:       fmt.Sprintf("%s stage of the customer journey.", n.name),
			EstimatedDuration: 3,
			SubSteps: []journey.SubStep{
				{Name: n.name + " begins", Duration: 1},
				{Name: n.name + " completes", Duration: 1},
			},
			ThinkTime: journey.Duration(time.Millisecond),
		})
	}
	return def
}

func TestRunFullJourney(t *testing.T) {
	cs, server := newCaptureServer(nil)
	defer server.Close()

	def := sixStepDefinition()
	cfg := testConfig(server.URL)
	cfg.Workers = 2
	cfg.Iterations = 2

	r, err := NewRunner(cfg, def, zap.NewNop())
	require.NoError(t, err)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), summary.Journeys)
	assert.Equal(t, int64(4), summary.Passed)
	assert.Equal(t, int64(0), summary.Failed)
	assert.Equal(t, 1.0, summary.PassRate)

	// 6 steps per journey plus one completion event, for 4 journeys.
	reqs := cs.captured()
	require.Len(t, reqs, 28)

	var completions int
	for _, req := range reqs {
		body := gjson.ParseBytes(req.Body)
		if body.Get("eventType").String() == "journey_completed" {
			completions++
			assert.Equal(t, int64(6), body.Get("totalSteps").Int())
			continue
		}
		// Every step request carries the full tracing header set.
		assert.NotEmpty(t, req.Header.Get("X-dynaTrace"))
		assert.NotEmpty(t, req.Header.Get("x-correlation-id"))
		assert.Equal(t, "Argos", body.Get("journey.companyName").String())
		assert.Equal(t, int64(1), body.Get("journey.steps.#").Int())
	}
	assert.Equal(t, 4, completions)

	require.Len(t, summary.Steps, 6)
	for i, step := range summary.Steps {
		assert.Equal(t, def.Steps[i].Name, step.StepName)
		assert.Equal(t, int64(4), step.Count)
		assert.Equal(t, int64(4), step.Passed)
	}

	// The journey transaction encloses its step transactions.
	for _, step := range summary.Steps {
		assert.GreaterOrEqual(t, summary.JourneyMax, step.Max, step.StepName)
	}
	assert.Greater(t, summary.JourneyMax, time.Duration(0))
}

func TestRunContinuesPastStepFailure(t *testing.T) {
	cs, server := newCaptureServer(func(r capturedRequest) int {
		if gjson.GetBytes(r.Body, "journey.steps.0.stepName").String() == "PaymentProcessing" {
			return http.StatusServiceUnavailable
		}
		return http.StatusOK
	})
	defer server.Close()

	def := sixStepDefinition()
	cfg := testConfig(server.URL)
	cfg.Iterations = 2

	r, err := NewRunner(cfg, def, zap.NewNop())
	require.NoError(t, err)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.Journeys)
	assert.Equal(t, int64(0), summary.Passed)
	assert.Equal(t, int64(2), summary.Failed)

	// A failing step never short-circuits the journey: every step still ran
	// and the completion event still fired.
	require.Len(t, summary.Steps, 6)
	for _, step := range summary.Steps {
		assert.Equal(t, int64(2), step.Count, step.StepName)
		if step.StepName == "PaymentProcessing" {
			assert.Equal(t, int64(2), step.Failed)
		} else {
			assert.Equal(t, int64(2), step.Passed, step.StepName)
		}
	}

	var completions int
	for _, req := range cs.captured() {
		if gjson.GetBytes(req.Body, "eventType").String() == "journey_completed" {
			completions++
		}
	}
	assert.Equal(t, 2, completions)
}

func TestRunCancellationDiscardsPartialJourneys(t *testing.T) {
	firstHit := make(chan struct{})
	var once sync.Once
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(firstHit) })
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Workers = 2
	cfg.Iterations = 3

	r, err := NewRunner(cfg, sixStepDefinition(), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-firstHit
		cancel()
	}()

	start := time.Now()
	summary, err := r.Run(ctx)
	require.NoError(t, err)

	// No journey completed, so nothing may be counted.
	assert.Equal(t, int64(0), summary.Journeys)
	assert.Less(t, time.Since(start), 3*time.Second)
}
