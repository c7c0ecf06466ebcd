package train

import "errors"

// Sentinel kinds for training errors.
var (
	// ErrAllCandidatesFailed marks a run where no candidate could fit.
	ErrAllCandidatesFailed = errors.New("all candidates failed to fit")
)
