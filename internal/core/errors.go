package core

import "errors"

// Error kinds surfaced by the pipeline. Match with errors.Is; callers get
// context from the wrapping message.
var (
	// ErrInvalidInput marks a schema mismatch: a metric without a declared
	// direction, or a table section whose required column exists on no row.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamFailure marks a failed collaborator call (analytics,
	// search, generation, publishing). Propagated as-is, never retried.
	ErrUpstreamFailure = errors.New("upstream failure")

	// ErrSizeLimitExceeded is returned only when a caller bypasses the
	// converter's own truncation and batching and hands the publisher an
	// oversized batch. The pipeline itself never triggers it.
	ErrSizeLimitExceeded = errors.New("size limit exceeded")
)
