package analysis

import "context"

// Analyzer port. Analyze never fails: any internal error (missing credential,
// quota, network, malformed response) is absorbed into a degraded Analysis.
type Analyzer interface {
	Analyze(ctx context.Context, data, format string) *Analysis
}
