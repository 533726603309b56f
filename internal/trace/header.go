package trace

import "fmt"

// HeaderName is the request-tagging header recognized by the downstream
// tracing integration. The casing is part of the wire contract.
const HeaderName = "X-dynaTrace"

// Default tag values for the source and platform fields.
const (
	DefaultServiceIdentifier = "LoadRunner"
	DefaultPlatformComponent = "BizObs-Demo"
)

// TagContext carries the per-iteration values needed to build the tagging
// header. The correlation ID changes every iteration; the labels and worker
// ID are fixed for the worker's lifetime.
type TagContext struct {
	JourneyLabel      string // LSN
	RunLabel          string // LTN
	WorkerID          int    // VU
	ServiceIdentifier string // SI
	PlatformComponent string // PC
	CompanyName       string // AN
	CorrelationID     string // CID
}

// HeaderValue renders the tagging header for one step. Field order is fixed
// (TSN, LSN, LTN, VU, SI, PC, AN, CID); downstream parsers depend on it.
func (c TagContext) HeaderValue(stepName string) string {
	si := c.ServiceIdentifier
	if si == "" {
		si = DefaultServiceIdentifier
	}
	pc := c.PlatformComponent
	if pc == "" {
		pc = DefaultPlatformComponent
	}
	return fmt.Sprintf("TSN=%s;LSN=%s;LTN=%s;VU=%d;SI=%s;PC=%s;AN=%s;CID=%s",
		stepName, c.JourneyLabel, c.RunLabel, c.WorkerID, si, pc, c.CompanyName, c.CorrelationID)
}
