package feesplit

import "errors"

var (
	// ErrRateOutOfRange indicates a fee rate above 100% (10000 basis points).
	ErrRateOutOfRange = errors.New("feesplit: fee rate out of range [0, 1]")

	// ErrInvalidRate indicates a rate string could not be parsed.
	ErrInvalidRate = errors.New("feesplit: invalid fee rate")
)
