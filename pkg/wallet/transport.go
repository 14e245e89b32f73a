// Package wallet presents one asynchronous request contract over three
// incompatible wallet transports: a simulated mock, a session-based
// remote-signing protocol, and a browser-extension snap invocation.
package wallet

import (
	"context"
	"errors"

	json "github.com/goccy/go-json"

	"github.com/hathordice/hathor-dice/pkg/types"
)

// RequestFunc is the single transport contract: invoke an RPC method on the
// connected wallet and return its raw result. Implementations never retry; a
// call that partially executes a financial transaction must not be silently
// replayed.
type RequestFunc func(ctx context.Context, method string, params any) (json.RawMessage, error)

// normalizeError re-throws any transport-level failure as a WalletError
// carrying a non-empty Message, so callers can always safely read it.
func normalizeError(method string, err error) *types.WalletError {
	var walletErr *types.WalletError
	if errors.As(err, &walletErr) {
		return walletErr
	}

	message := ""
	if err != nil {
		message = err.Error()
	}

	return types.NewWalletError(types.ErrRPCFailed, method, message)
}

// unmarshalResult decodes a raw RPC result into out, normalizing decode
// failures.
func unmarshalResult(method string, raw json.RawMessage, out any) error {
	err := json.Unmarshal(raw, out)
	if err != nil {
		return types.NewWalletError(types.ErrDecodeFailure, method, err.Error())
	}

	return nil
}
