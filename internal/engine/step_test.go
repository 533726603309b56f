package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bizobs/journeyload/internal/collector"
	"github.com/bizobs/journeyload/internal/journey"
	"github.com/bizobs/journeyload/internal/transport"
)

func testDefinition() *journey.Definition {
	def := &journey.Definition{
		CompanyName:     "Argos",
		Domain:          "www.Argos.co.uk",
		ErrorSimulation: true,
		Steps: []journey.Step{
			{
				Number: 1, Name: "ProductDiscovery", ServiceName: "ProductDiscoveryService",
				Description:       "Customer searches for products.",
				EstimatedDuration: 4,
				SubSteps: []journey.SubStep{
					{Name: "Search for 'Nintendo Switch Console'", Duration: 1},
					{Name: "View product detail page", Duration: 1},
				},
				ThinkTime: journey.Duration(time.Millisecond),
			},
			{
				Number: 2, Name: "BasketManagement", ServiceName: "BasketManagementService",
				EstimatedDuration: 3,
				ThinkTime:         journey.Duration(time.Millisecond),
			},
		},
	}
	return def
}

// captureServer records every request it receives.
type captureServer struct {
	mu       sync.Mutex
	requests []capturedRequest
	status   func(r capturedRequest) int
}

type capturedRequest struct {
	Header http.Header
	Body   []byte
}

func newCaptureServer(status func(r capturedRequest) int) (*captureServer, *httptest.Server) {
	cs := &captureServer{status: status}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := make([]byte, r.ContentLength)
		r.Body.Read(body)
		req := capturedRequest{Header: r.Header.Clone(), Body: body}

		cs.mu.Lock()
		cs.requests = append(cs.requests, req)
		cs.mu.Unlock()

		code := http.StatusOK
		if cs.status != nil {
			code = cs.status(req)
		}
		w.WriteHeader(code)
		w.Write([]byte(`{"message":"simulated"}`))
	}))
	return cs, server
}

func (cs *captureServer) captured() []capturedRequest {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := make([]capturedRequest, len(cs.requests))
	copy(out, cs.requests)
	return out
}

func newTestExecutor(serverURL string, def *journey.Definition) *StepExecutor {
	return &StepExecutor{
		client: transport.NewClient(
			transport.WithBaseURL(serverURL),
			transport.WithMaxRetries(0),
			transport.WithTimeout(2*time.Second),
		),
		def:          def,
		path:         "/api/journey-simulation/simulate-journey",
		journeyLabel: def.Label(),
		runLabel:     "Argos_LoadTest_20260106",
		thinkMs:      250,
		log:          zap.NewNop(),
	}
}

func testVU(def *journey.Definition) *VirtualUser {
	vu := NewVirtualUser(1, 42)
	vu.BeginIteration(1, "Argos_LoadTest_20260106", def.Label(), time.Now())
	return vu
}

func TestExecuteClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   collector.Outcome
	}{
		{name: "200 passes", status: 200, want: collector.Pass},
		{name: "399 passes", status: 399, want: collector.Pass},
		{name: "400 fails", status: 400, want: collector.Fail},
		{name: "500 fails", status: 500, want: collector.Fail},
		{name: "503 fails", status: 503, want: collector.Fail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, server := newCaptureServer(func(capturedRequest) int { return tt.status })
			defer server.Close()

			def := testDefinition()
			exec := newTestExecutor(server.URL, def)
			result := exec.Execute(context.Background(), testVU(def), def.Steps[0])

			if result.Outcome != tt.want {
				t.Errorf("outcome = %v, want %v", result.Outcome, tt.want)
			}
			if result.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", result.StatusCode, tt.status)
			}
			if result.StepName != "ProductDiscovery" {
				t.Errorf("step name = %q", result.StepName)
			}
			if result.Duration <= 0 {
				t.Error("duration not recorded")
			}
		})
	}
}

func TestExecuteTransportErrorIsFailNotFatal(t *testing.T) {
	_, server := newCaptureServer(nil)
	server.Close() // nothing is listening

	def := testDefinition()
	exec := newTestExecutor(server.URL, def)
	result := exec.Execute(context.Background(), testVU(def), def.Steps[0])

	if result.Outcome != collector.Fail {
		t.Errorf("outcome = %v, want Fail", result.Outcome)
	}
	if result.StatusCode != 0 {
		t.Errorf("status = %d, want 0 (no response)", result.StatusCode)
	}
}

func TestExecuteAttachesHeaders(t *testing.T) {
	cs, server := newCaptureServer(nil)
	defer server.Close()

	def := testDefinition()
	exec := newTestExecutor(server.URL, def)
	vu := testVU(def)
	exec.Execute(context.Background(), vu, def.Steps[0])

	reqs := cs.captured()
	if len(reqs) != 1 {
		t.Fatalf("captured %d requests, want 1", len(reqs))
	}
	h := reqs[0].Header

	checks := map[string]string{
		"x-correlation-id":   vu.IDs.Correlation,
		"x-customer-id":      vu.IDs.Customer,
		"x-session-id":       vu.IDs.Session,
		"x-trace-id":         vu.IDs.Trace,
		"x-step-name":        "ProductDiscovery",
		"x-service-name":     "ProductDiscoveryService",
		"x-customer-segment": vu.Profile.Segment,
		"x-traffic-source":   vu.TrafficSource,
		"x-test-iteration":   "1",
		"Content-Type":       "application/json",
		"User-Agent":         transport.DefaultUserAgent,
	}
	for name, want := range checks {
		if got := h.Get(name); got != want {
			t.Errorf("header %s = %q, want %q", name, got, want)
		}
	}

	tag := h.Get("X-dynaTrace")
	if tag == "" {
		t.Fatal("tagging header missing")
	}
	wantPrefix := "TSN=ProductDiscovery;LSN=" + def.Label()
	if tag[:len(wantPrefix)] != wantPrefix {
		t.Errorf("tagging header = %q, want prefix %q", tag, wantPrefix)
	}
}

func TestExecuteBodySchema(t *testing.T) {
	cs, server := newCaptureServer(nil)
	defer server.Close()

	def := testDefinition()
	exec := newTestExecutor(server.URL, def)
	vu := testVU(def)
	exec.Execute(context.Background(), vu, def.Steps[0])

	var body map[string]interface{}
	if err := json.Unmarshal(cs.captured()[0].Body, &body); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}

	if body["journeyId"] != vu.IDs.Correlation {
		t.Errorf("journeyId = %v", body["journeyId"])
	}
	if body["chained"] != true {
		t.Error("chained flag missing")
	}
	if body["thinkTimeMs"] != float64(250) {
		t.Errorf("thinkTimeMs = %v", body["thinkTimeMs"])
	}
	if body["errorSimulationEnabled"] != true {
		t.Error("errorSimulationEnabled missing")
	}

	j := body["journey"].(map[string]interface{})
	if j["companyName"] != "Argos" || j["domain"] != "www.Argos.co.uk" {
		t.Errorf("journey company/domain = %v/%v", j["companyName"], j["domain"])
	}

	steps := j["steps"].([]interface{})
	if len(steps) != 1 {
		t.Fatalf("journey.steps carries %d steps, want only the current one", len(steps))
	}
	step := steps[0].(map[string]interface{})
	if step["stepNumber"] != float64(1) || step["stepName"] != "ProductDiscovery" {
		t.Errorf("step = %v", step)
	}
	substeps := step["substeps"].([]interface{})
	if len(substeps) != 2 {
		t.Fatalf("substeps = %d, want 2", len(substeps))
	}
	if substeps[0].(map[string]interface{})["substepName"] != "Search for 'Nintendo Switch Console'" {
		t.Errorf("substep = %v", substeps[0])
	}

	profile := j["customerProfile"].(map[string]interface{})
	if profile["name"] != vu.Profile.Name || profile["email"] != vu.Profile.Email {
		t.Errorf("profile = %v", profile)
	}
	if profile["userId"] != vu.IDs.Customer {
		t.Errorf("profile userId = %v, want the iteration customer ID", profile["userId"])
	}
	if profile["deviceType"] != "desktop" || profile["location"] != "US-East" {
		t.Errorf("device/location = %v/%v", profile["deviceType"], profile["location"])
	}
}

func TestHeadersDoNotLeakAcrossSteps(t *testing.T) {
	cs, server := newCaptureServer(nil)
	defer server.Close()

	def := testDefinition()
	exec := newTestExecutor(server.URL, def)
	vu := testVU(def)

	exec.Execute(context.Background(), vu, def.Steps[0])
	exec.Execute(context.Background(), vu, def.Steps[1])

	reqs := cs.captured()
	if len(reqs) != 2 {
		t.Fatalf("captured %d requests, want 2", len(reqs))
	}

	second := reqs[1].Header
	if got := second.Get("x-step-name"); got != "BasketManagement" {
		t.Errorf("second request x-step-name = %q", got)
	}
	if got := second.Get("x-service-name"); got != "BasketManagementService" {
		t.Errorf("second request x-service-name = %q", got)
	}
	for _, v := range second.Values("x-step-name") {
		if v == "ProductDiscovery" {
			t.Error("step 1 header leaked into step 2's request")
		}
	}
}

func TestExecuteAppliesThinkTime(t *testing.T) {
	_, server := newCaptureServer(nil)
	defer server.Close()

	def := testDefinition()
	def.Steps[0].ThinkTime = journey.Duration(80 * time.Millisecond)
	exec := newTestExecutor(server.URL, def)

	start := time.Now()
	exec.Execute(context.Background(), testVU(def), def.Steps[0])
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("Execute() returned after %v; think time not applied", elapsed)
	}
}
