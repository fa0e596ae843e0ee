// Package sdkerrors defines the closed error taxonomy used across the SDK.
// Every failure surfaced to a caller carries a stable machine-readable Kind
// plus a human-readable message; contract and API failures additionally carry
// the context needed for support diagnosis.
package sdkerrors

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable error tag.
type Kind string

const (
	// KindInvalidSignatureSize - raw signature did not decode to 65 bytes.
	KindInvalidSignatureSize Kind = "INVALID_SIGNATURE_SIZE"
	// KindInvalidSignatureLayout - neither the leading nor the trailing byte
	// of a 65-byte signature is a recognizable recovery value.
	KindInvalidSignatureLayout Kind = "INVALID_SIGNATURE_LAYOUT"
	// KindInvalidAppID - nonce namespace is not a numeric string of valid length.
	KindInvalidAppID Kind = "INVALID_APP_ID"
	// KindTypedDataSignerRequired - the supplied credential cannot sign
	// EIP-712 typed data.
	KindTypedDataSignerRequired Kind = "TYPED_DATA_SIGNER_REQUIRED"
	// KindSignerRequired - the supplied credential is read-only.
	KindSignerRequired Kind = "SIGNER_REQUIRED"
	// KindInvalidChunkSize - a fill amount exceeds the order's remaining amount.
	KindInvalidChunkSize Kind = "INVALID_CHUNK_SIZE"
	// KindInvalidAmount - quantity constraint violation.
	KindInvalidAmount Kind = "INVALID_AMOUNT"
	// KindNoPriceListingFound - no resting orders, or not enough liquidity.
	KindNoPriceListingFound Kind = "NO_PRICE_LISTING_FOUND"
	// KindInsufficientFunds - balance below the required amount.
	KindInsufficientFunds Kind = "INSUFFICIENT_FUNDS"
	// KindTransactionFailed - on-chain revert or submission failure.
	KindTransactionFailed Kind = "TRANSACTION_FAILED"
	// KindAPICall - off-chain service transport failure.
	KindAPICall Kind = "API_CALL_ERROR"
)

// ContractMeta identifies the contract call that produced a transaction failure.
type ContractMeta struct {
	Name     string
	Address  string
	Function string
}

// Error is the standard SDK error. Kind is always set; the remaining context
// fields are populated depending on the failure class.
type Error struct {
	Kind    Kind
	Message string
	Cause   error

	// HTTP context, set for KindAPICall.
	Method string
	Path   string

	// Contract context, set for KindTransactionFailed.
	Contract *ContractMeta
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Contract != nil {
		msg = fmt.Sprintf("%s (contract %s at %s, function %s)", msg, e.Contract.Name, e.Contract.Address, e.Contract.Function)
	}
	if e.Method != "" {
		msg = fmt.Sprintf("%s (%s %s)", msg, e.Method, e.Path)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error carrying the underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NewAPICall creates a transport error annotated with the HTTP method and path.
func NewAPICall(method, path string, cause error) *Error {
	return &Error{
		Kind:    KindAPICall,
		Message: "api call failed",
		Method:  method,
		Path:    path,
		Cause:   cause,
	}
}

// NewTransactionFailed creates an on-chain failure annotated with contract metadata.
func NewTransactionFailed(meta ContractMeta, message string, cause error) *Error {
	return &Error{
		Kind:     KindTransactionFailed,
		Message:  message,
		Contract: &meta,
		Cause:    cause,
	}
}

// KindOf returns the Kind of err, unwrapping as needed, or "" when no
// *Error is found in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
