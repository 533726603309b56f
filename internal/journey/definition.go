// Package journey defines the customer-journey model driven by the load engine.
package journey

import (
	"fmt"
	"time"
)

// SubStep is a descriptive annotation of finer-grained activity within a step.
// Sub-steps are never executed; they ride along in the step payload for
// downstream analytics.
type SubStep struct {
	Name     string `json:"substepName" yaml:"substepName"`
	Duration int    `json:"duration" yaml:"duration"`
}

// Step is one labeled phase of a journey, mapped to one outbound request
// against one logical service.
type Step struct {
	// Number is the 1-based position of the step. It must match the step's
	// index in the definition and increase strictly.
	Number int `json:"stepNumber" yaml:"stepNumber"`

	// Name identifies the step (used as transaction name and TSN tag).
	Name string `json:"stepName" yaml:"stepName"`

	// ServiceName is the logical service the step targets.
	ServiceName string `json:"serviceName" yaml:"serviceName"`

	// Description is free text carried in the step payload.
	Description string `json:"description" yaml:"description"`

	// EstimatedDuration is the modeled real-world duration in minutes.
	EstimatedDuration int `json:"estimatedDuration" yaml:"estimatedDuration"`

	// SubSteps are carried in the payload, in order.
	SubSteps []SubStep `json:"substeps" yaml:"substeps"`

	// ThinkTime is the pause applied after the step completes. Zero means
	// "use the default for this step's duration" (see ApplyDefaults).
	ThinkTime Duration `json:"thinkTime,omitempty" yaml:"thinkTime,omitempty"`
}

// Definition is an immutable description of one company's journey.
// It is loaded once per run and shared read-only across all workers.
type Definition struct {
	CompanyName string `json:"companyName" yaml:"companyName"`
	Domain      string `json:"domain" yaml:"domain"`

	// ErrorSimulation asks the target service to inject simulated faults.
	ErrorSimulation bool `json:"errorSimulationEnabled" yaml:"errorSimulationEnabled"`

	Steps []Step `json:"steps" yaml:"steps"`
}

const (
	// defaultThinkTime is the pause after an interactive step.
	defaultThinkTime = 5 * time.Second

	// offlineThinkTime is the pause after steps that model offline waiting
	// (e.g. next-day delivery); pausing the full modeled duration would stall
	// the run.
	offlineThinkTime = 1 * time.Second

	// offlineDurationMinutes is the estimated-duration threshold above which
	// a step is treated as offline.
	offlineDurationMinutes = 60
)

// Validate checks the structural invariants of the definition.
// A failed validation is fatal at startup; the run must not begin.
func (d *Definition) Validate() error {
	if d.CompanyName == "" {
		return fmt.Errorf("journey definition: companyName is required")
	}
	if d.Domain == "" {
		return fmt.Errorf("journey definition: domain is required")
	}
	if len(d.Steps) == 0 {
		return fmt.Errorf("journey definition: at least one step is required")
	}

	for i, step := range d.Steps {
		if step.Name == "" {
			return fmt.Errorf("journey definition: step %d has no stepName", i+1)
		}
		if step.ServiceName == "" {
			return fmt.Errorf("journey definition: step %q has no serviceName", step.Name)
		}
		// Step numbers are 1-based and must match position exactly.
		if step.Number != i+1 {
			return fmt.Errorf("journey definition: step %q has stepNumber %d, expected %d",
				step.Name, step.Number, i+1)
		}
	}

	return nil
}

// ApplyDefaults fills in per-step think times that the definition left unset.
func (d *Definition) ApplyDefaults() {
	for i := range d.Steps {
		if d.Steps[i].ThinkTime != 0 {
			continue
		}
		if d.Steps[i].EstimatedDuration > offlineDurationMinutes {
			d.Steps[i].ThinkTime = Duration(offlineThinkTime)
		} else {
			d.Steps[i].ThinkTime = Duration(defaultThinkTime)
		}
	}
}

// Label returns the journey label (the LSN tag):
// BizObs_{Company}_{Domain}_Journey.
func (d *Definition) Label() string {
	return fmt.Sprintf("BizObs_%s_%s_Journey", d.CompanyName, d.Domain)
}

// RunLabel returns the default run label (the LTN tag) for a run starting at
// the given time: {Company}_LoadTest_{yyyymmdd}.
func (d *Definition) RunLabel(start time.Time) string {
	return fmt.Sprintf("%s_LoadTest_%s", d.CompanyName, start.Format("20060102"))
}

// Duration is a time.Duration that marshals as a human-readable string
// ("5s", "250ms") in both YAML and JSON.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return d.parse(s)
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	if s == "" || s == "null" {
		*d = 0
		return nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// GetDuration returns the duration or a default if unset.
func (d Duration) GetDuration(defaultValue time.Duration) time.Duration {
	if d == 0 {
		return defaultValue
	}
	return time.Duration(d)
}
