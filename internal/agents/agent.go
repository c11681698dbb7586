package agents

import "context"

// Analyst is an independent unit producing one domain-specific analysis
// report per run. The orchestrator imposes no schema on a successful report;
// the raw value is standardized downstream by a per-agent extraction rule.
type Analyst interface {
	// ID returns the stable identifier the analyst is registered under.
	ID() string
	// Analyze produces the analyst's raw report. It takes no input beyond
	// the ambient configuration the analyst was constructed with. Any error
	// is contained by the execution coordinator and never aborts a run.
	Analyze(ctx context.Context) (interface{}, error)
}
