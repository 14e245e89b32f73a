package types

import "fmt"

// WalletError represents a failure surfaced by the wallet transport or the
// settlement pipeline. Every transport-level failure is normalized into this
// type so callers can always read Message.
type WalletError struct {
	Code    string // Internal error code, one of the Err* constants
	Message string // Human-readable error message, never empty
	Method  string // RPC method being invoked, if any
}

func (e *WalletError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("%s failed: %s (%s)", e.Method, e.Message, e.Code)
	}

	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Internal error codes.
const (
	ErrNotConnected        = "NOT_CONNECTED"
	ErrUserRejected        = "USER_REJECTED"
	ErrNetworkFailure      = "NETWORK_FAILURE"
	ErrDecodeFailure       = "DECODE_ERROR"
	ErrContractUnavailable = "CONTRACT_UNAVAILABLE"
	ErrValidation          = "VALIDATION_ERROR"
	ErrMethodNotFound      = "METHOD_NOT_IMPLEMENTED"
	ErrRPCFailed           = "RPC_FAILED"
)

// NewWalletError builds a WalletError, substituting a generic message when
// the underlying failure carries none.
func NewWalletError(code string, method string, message string) *WalletError {
	if message == "" {
		message = "RPC request failed"
	}

	return &WalletError{
		Code:    code,
		Message: message,
		Method:  method,
	}
}
