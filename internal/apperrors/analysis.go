package apperrors

import (
	"errors"
	"fmt"
)

// Analysis errors are returned by the yield engine instead of NaN or Inf results.
var (
	// ErrInsufficientData indicates that the cash flows do not span enough time
	// (or do not exist) to compute a money-weighted return.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrUndefinedYield indicates a yield whose formula has no real-valued result.
	ErrUndefinedYield = errors.New("undefined yield")
)

// InsufficientDataError reports why a yield could not be computed.
// It matches ErrInsufficientData with errors.Is.
type InsufficientDataError struct {
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInsufficientData, e.Reason)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// UndefinedYieldError names the yield that has no real value and the reason.
// It matches ErrUndefinedYield with errors.Is.
type UndefinedYieldError struct {
	Yield  string
	Reason string
}

func (e *UndefinedYieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrUndefinedYield, e.Yield, e.Reason)
}

func (e *UndefinedYieldError) Is(target error) bool {
	return target == ErrUndefinedYield
}
