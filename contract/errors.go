package contract

import "errors"

var (
	// ErrUnauthorized indicates the caller may not use a privileged path.
	ErrUnauthorized = errors.New("contract: unauthorized")

	// ErrInvalidMsg indicates a message could not be decoded or names no operation.
	ErrInvalidMsg = errors.New("contract: invalid message")

	// ErrNilParam indicates a required parameter was nil.
	ErrNilParam = errors.New("contract: nil parameter")
)
