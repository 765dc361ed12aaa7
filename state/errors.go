package state

import "errors"

var (
	// ErrConfigNotFound indicates no configuration has been saved yet.
	ErrConfigNotFound = errors.New("state: config not found")

	// ErrInvalidConfigData indicates a stored configuration record could not be decoded.
	ErrInvalidConfigData = errors.New("state: invalid config data")

	// ErrNilParam indicates a required parameter was nil.
	ErrNilParam = errors.New("state: nil parameter")
)
