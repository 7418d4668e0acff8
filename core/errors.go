package core

import "errors"

var (
	// ErrCatalogUnavailable is returned when the structural catalogs are
	// requested before instrumentation and analysis have run.
	ErrCatalogUnavailable = errors.New("structural catalogs not available")
	ErrInvalidCatalog     = errors.New("invalid structural catalog")
	// ErrInconsistentTrace marks a covered id without its companion count.
	ErrInconsistentTrace = errors.New("inconsistent execution trace")
	ErrNoExecutionResult = errors.New("test case has no prior execution")
)
