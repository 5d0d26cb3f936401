package errors

import "errors"

var (
	// Input errors — the request never reaches the upstream service
	ErrReceiptRequired = errors.New("receipt data required")
	ErrInvalidAppID    = errors.New("invalid app identifier")

	// Upstream errors
	ErrUpstreamTimeout = errors.New("upstream verification timed out")
	ErrUpstreamNetwork = errors.New("upstream verification failed")

	// Identity errors
	ErrBundleMismatch = errors.New("app identifier mismatch")
)
