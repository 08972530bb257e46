package simerr

// Typed errors for the synthesis engine. Both are returned as pointers,
// callers pick them apart with errors.As.

import (
	"fmt"
	"math"
)

// An InvalidParameterError says an input was outside its domain. It is
// raised before any rendering starts, so there is never a partial result.
type InvalidParameterError struct {
	Param  string // e.g. "gal_q"
	Value  float64
	Reason string // e.g. "must be in (0,1]"
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%g: %s", e.Param, e.Value, e.Reason)
}

// A RenderError is a numerical failure while rasterizing a profile
// (overflow, NaNs, an index the profile can't be evaluated at).
type RenderError struct {
	Stage string // which image was being drawn
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func Invalid(param string, value float64, reason string) *InvalidParameterError {
	return &InvalidParameterError{Param: param, Value: value, Reason: reason}
}

// RequirePositive returns an InvalidParameterError unless v is finite and > 0.
func RequirePositive(param string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalid(param, v, "must be finite")
	}
	if v <= 0 {
		return Invalid(param, v, "must be > 0")
	}
	return nil
}

// RequireFinite returns an InvalidParameterError if v is NaN or infinite.
func RequireFinite(param string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalid(param, v, "must be finite")
	}
	return nil
}
