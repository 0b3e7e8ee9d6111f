// Package common provides shared utilities used across all services
package common

import (
	"errors"
	"fmt"
)

// Kind classifies a swap pipeline failure. Every error surfaced by the
// executor carries exactly one kind so callers can tell "no liquidity"
// from "insufficient funds" from "key corrupted".
type Kind string

const (
	KindInvalidInput        Kind = "INVALID_INPUT"
	KindNoLiquidityData     Kind = "NO_LIQUIDITY_DATA"
	KindInsufficientFunds   Kind = "INSUFFICIENT_FUNDS"
	KindKeyDecryptionFailed Kind = "KEY_DECRYPTION_FAILED"
	KindRpcUnavailable      Kind = "RPC_UNAVAILABLE"
	KindNetworkTimeout      Kind = "NETWORK_TIMEOUT"
	KindSubmissionFailed    Kind = "SUBMISSION_FAILED"
)

// Error is the typed error value used throughout the swap pipeline.
type Error struct {
	Kind    Kind
	Message string

	// ShortfallRaw is set for KindInsufficientFunds: how much native asset
	// (smallest units) is missing, for user display.
	ShortfallRaw uint64

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Error constructors

func InvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func NoLiquidityData(msg string) *Error {
	return &Error{Kind: KindNoLiquidityData, Message: msg}
}

func InsufficientFunds(shortfallRaw uint64, msg string) *Error {
	return &Error{Kind: KindInsufficientFunds, Message: msg, ShortfallRaw: shortfallRaw}
}

func KeyDecryptionFailed(err error) *Error {
	return &Error{Kind: KindKeyDecryptionFailed, Message: "custodial secret could not be decrypted", Err: err}
}

func RpcUnavailable(err error) *Error {
	return &Error{Kind: KindRpcUnavailable, Message: "all RPC endpoints unreachable", Err: err}
}

func NetworkTimeout(err error) *Error {
	return &Error{Kind: KindNetworkTimeout, Message: "network call timed out", Err: err}
}

func SubmissionFailed(err error) *Error {
	return &Error{Kind: KindSubmissionFailed, Message: "transaction rejected by network", Err: err}
}

// KindOf extracts the pipeline kind from an error chain. Untyped errors
// report an empty kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// AsError returns the typed error from a chain, or nil.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// RetryableBeforeBroadcast reports whether a failure of this kind may be
// retried while no transaction has been handed to the network yet. After
// broadcast nothing is retryable.
func RetryableBeforeBroadcast(kind Kind) bool {
	switch kind {
	case KindRpcUnavailable, KindNetworkTimeout, KindSubmissionFailed:
		return true
	default:
		return false
	}
}
