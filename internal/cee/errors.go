package cee

import (
	"errors"
	"fmt"
)

// Engine errors are fatal by design: each one indicates a defect in the
// mission plan, the consumption model, or the driver loop, never a
// recoverable runtime condition. Callers are expected to abort the node.
var (
	// ErrMissingCommand means an engine was initialized without a bound
	// command payload.
	ErrMissingCommand = errors.New("cee: no command bound to engine")

	// ErrUndefinedForecast means a forecast query was made on a variant
	// whose end time or consumption is not well defined.
	ErrUndefinedForecast = errors.New("cee: forecast undefined for this command type")

	// ErrDeadlineExceeded means a timed command was polled past its
	// deadline by more than the step tolerance, which the driver loop
	// must never allow.
	ErrDeadlineExceeded = errors.New("cee: command deadline exceeded")

	// ErrConsumptionModel means the stochastic consumption model produced
	// a rate outside its sanity bounds.
	ErrConsumptionModel = errors.New("cee: consumption model out of bounds")

	// ErrNotActive means a query was made before the engine reached the
	// lifecycle stage it requires (initialization for forecasts,
	// activation for Charge's net-consumption query).
	ErrNotActive = errors.New("cee: premature query, engine not ready")
)

func forecastErr(t Type) error {
	return fmt.Errorf("%w: %s", ErrUndefinedForecast, t)
}
