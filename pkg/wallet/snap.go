package wallet

import (
	"context"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/hathordice/hathor-dice/pkg/types"
)

// Snap envelope methods.
const (
	methodInvokeSnap   = "wallet_invokeSnap"
	methodRequestSnaps = "wallet_requestSnaps"
)

// SnapTransport wraps a browser-extension snap invocation. Every wallet RPC
// is forwarded as a nested wallet_invokeSnap envelope through the injected
// invoke function (the extension host's request entry point).
type SnapTransport struct {
	snapID string
	invoke RequestFunc
	logger *zap.Logger
}

// SnapConfig holds snap transport configuration.
type SnapConfig struct {
	SnapID string
	Invoke RequestFunc
	Logger *zap.Logger
}

// snapInnerRequest is the request nested inside the invokeSnap envelope.
// Params carries `omitempty` deliberately: some extension hosts reject an
// explicit undefined/null params value but accept its absence.
type snapInnerRequest struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// snapInvokeParams is the outer wallet_invokeSnap payload.
type snapInvokeParams struct {
	SnapID  string           `json:"snapId"`
	Request snapInnerRequest `json:"request"`
}

// snapVersionSpec pins the snap version during installation.
type snapVersionSpec struct {
	Version string `json:"version,omitempty"`
}

// NewSnapTransport creates a snap-backed transport around the extension
// host's invoke function.
func NewSnapTransport(cfg *SnapConfig) *SnapTransport {
	return &SnapTransport{
		snapID: cfg.SnapID,
		invoke: cfg.Invoke,
		logger: cfg.Logger,
	}
}

// Install negotiates snap installation with the extension host.
func (t *SnapTransport) Install(ctx context.Context, version string) error {
	if t.invoke == nil {
		return types.NewWalletError(types.ErrNotConnected, methodRequestSnaps,
			"no snap invoke function configured")
	}

	params := map[string]snapVersionSpec{
		t.snapID: {Version: version},
	}

	_, err := t.invoke(ctx, methodRequestSnaps, params)
	if err != nil {
		return normalizeError(methodRequestSnaps, err)
	}

	t.logger.Info("snap-installed", zap.String("snap-id", t.snapID))

	return nil
}

// Request forwards one wallet RPC through the snap envelope.
func (t *SnapTransport) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if t.invoke == nil {
		return nil, types.NewWalletError(types.ErrNotConnected, method,
			"no snap invoke function configured")
	}

	envelope := snapInvokeParams{
		SnapID: t.snapID,
		Request: snapInnerRequest{
			Method: method,
			Params: params,
		},
	}

	t.logger.Debug("snap-request",
		zap.String("snap-id", t.snapID),
		zap.String("method", method))

	raw, err := t.invoke(ctx, methodInvokeSnap, envelope)
	if err != nil {
		return nil, normalizeError(method, err)
	}

	return raw, nil
}
