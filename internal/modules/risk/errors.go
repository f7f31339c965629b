package risk

import "errors"

// Error kinds. Every failure returned by this package wraps exactly one of these.
var (
	// ErrInvalidInput: a parameter is out of range or a price is non-positive.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientData: too few rows survive a stage to continue.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDataUnavailable: the price source returned nothing for a ticker or range.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrNotReady: a run operation was called out of lifecycle order.
	ErrNotReady = errors.New("not ready")
)

// Kind labels reported to callers (HTTP error bodies, metrics).
const (
	KindInvalidInput     = "invalid_input"
	KindInsufficientData = "insufficient_data"
	KindDataUnavailable  = "data_unavailable"
	KindNotReady         = "not_ready"
	KindInternal         = "internal"
)

// KindOf maps an error onto its kind label. Errors that wrap none of the
// sentinels are reported as internal.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrInsufficientData):
		return KindInsufficientData
	case errors.Is(err, ErrDataUnavailable):
		return KindDataUnavailable
	case errors.Is(err, ErrNotReady):
		return KindNotReady
	default:
		return KindInternal
	}
}
