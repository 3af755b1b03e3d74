package capi

import (
	"io/fs"

	"github.com/YuminosukeSato/linbridge/pkg/errors"
)

// Status is the integer result of every fallible boundary call.
// Zero is success; negative values name the failure.
type Status int32

// Status codes shared with linreg.h.
const (
	StatusOK               Status = 0
	StatusUnknownHandle    Status = -1
	StatusShapeMismatch    Status = -2
	StatusNotFitted        Status = -3
	StatusMalformedPayload Status = -4
	StatusBufferTooSmall   Status = -5
	StatusInvalidArgument  Status = -6
	StatusInternal         Status = -7
)

// String returns the label used in metrics and logs.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnknownHandle:
		return "unknown_handle"
	case StatusShapeMismatch:
		return "shape_mismatch"
	case StatusNotFitted:
		return "not_fitted"
	case StatusMalformedPayload:
		return "malformed_payload"
	case StatusBufferTooSmall:
		return "buffer_too_small"
	case StatusInvalidArgument:
		return "invalid_argument"
	default:
		return "internal"
	}
}

// ErrBufferTooSmall is returned when a caller-supplied output buffer cannot
// hold the result.
var ErrBufferTooSmall = errors.New("output buffer too small")

// StatusOf maps an error to its boundary status.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}

	var (
		panicErr  *errors.PanicError
		unknown   *errors.UnknownHandleError
		dimension *errors.DimensionError
		notFitted *errors.NotFittedError
		malformed *errors.MalformedPayloadError
		value     *errors.ValueError
		numerical *errors.NumericalInstabilityError
		pathErr   *fs.PathError
	)
	switch {
	case errors.As(err, &panicErr):
		return StatusInternal
	case errors.As(err, &unknown):
		return StatusUnknownHandle
	case errors.As(err, &dimension):
		return StatusShapeMismatch
	case errors.As(err, &notFitted):
		return StatusNotFitted
	case errors.As(err, &malformed):
		return StatusMalformedPayload
	case errors.Is(err, ErrBufferTooSmall):
		return StatusBufferTooSmall
	case errors.As(err, &value), errors.As(err, &numerical), errors.As(err, &pathErr):
		return StatusInvalidArgument
	default:
		return StatusInternal
	}
}
