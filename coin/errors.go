package coin

import "errors"

var (
	// ErrInvalidCoin indicates a coin string or denomination is malformed.
	ErrInvalidCoin = errors.New("coin: invalid coin")

	// ErrInvalidDenom indicates a denomination does not match the allowed pattern.
	ErrInvalidDenom = errors.New("coin: invalid denomination")

	// ErrAmountOverflow indicates an amount or sum exceeds MaxAmount.
	ErrAmountOverflow = errors.New("coin: amount exceeds 128 bits")

	// ErrNilAmount indicates a coin has no amount set.
	ErrNilAmount = errors.New("coin: nil amount")
)
