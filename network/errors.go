package network

import "errors"

var (
	// ErrConnectionFailed indicates the client could not reach the node.
	ErrConnectionFailed = errors.New("network: connection failed")

	// ErrBroadcastRejected indicates the node rejected a transaction.
	ErrBroadcastRejected = errors.New("network: broadcast rejected")

	// ErrInvalidResponse indicates a malformed or unexpected node response.
	ErrInvalidResponse = errors.New("network: invalid response")

	// ErrNotConfigured indicates no RPC endpoint is configured.
	ErrNotConfigured = errors.New("network: RPC not configured")
)
