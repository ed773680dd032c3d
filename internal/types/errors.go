// Package types provides type definitions for structured data used throughout the outreach-agent system.
package types

// NoMatchError signals that a matching stage legitimately found no
// applicable result for this prospect. It is an expected outcome, not a
// fault: the orchestrator records it as a skip ("<stage>: no match")
// instead of a failure. Any other error from a stage is treated as a
// stage failure.
type NoMatchError struct {
	Detail string
}

func (e *NoMatchError) Error() string {
	if e.Detail == "" {
		return "no match"
	}
	return "no match: " + e.Detail
}
