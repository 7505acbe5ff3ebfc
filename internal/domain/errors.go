package domain

import "errors"

// Error kinds surfaced by the pipeline. Callers classify with errors.Is;
// concrete errors wrap these sentinels with operation context.
var (
	// ErrInvalidArgument marks bad caller input (k, chunk config, empty
	// question), rejected before any side effect.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrProvider marks an embedding model that cannot be reached or
	// returns malformed output.
	ErrProvider = errors.New("embedding provider failed")

	// ErrGeneration marks a generative model that fails or returns empty
	// output after retries are exhausted.
	ErrGeneration = errors.New("generation failed")

	// ErrIndexLoad marks a missing or corrupt persisted index pair.
	ErrIndexLoad = errors.New("index load failed")

	// ErrIndexConsistency marks a desync between search ordinals and the
	// chunk metadata store.
	ErrIndexConsistency = errors.New("index metadata out of sync")

	// ErrTimeout marks an external call that exceeded its deadline, so
	// callers can distinguish "try again" from "something is broken".
	ErrTimeout = errors.New("operation timed out")
)
