package contracts

import "errors"

// Error taxonomy of the analytics pipeline. None of them is fatal to the process.
var (
	// ErrDataUnavailable: a fetch failed or returned nothing usable.
	// The last published snapshot stays visible and the state turns failed.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrDegenerateInput: a non-finite result or a non-positive base value.
	// Affected fields are coerced to a neutral value.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrPartialAvailability: the benchmark is missing while the strategy is present.
	// Benchmark-dependent fields become null.
	ErrPartialAvailability = errors.New("partial availability")
)
