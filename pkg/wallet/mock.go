package wallet

import (
	"context"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hathordice/hathor-dice/pkg/types"
)

// MockTransport simulates a wallet for development and tests. It serves a
// fixed, enumerable set of methods with canned responses after a fixed
// latency. Any unrecognized method fails loudly with METHOD_NOT_IMPLEMENTED;
// it never returns an empty success.
type MockTransport struct {
	latency time.Duration
	network string
	address string
	balance int64
	logger  *zap.Logger
}

// MockConfig holds mock transport configuration.
type MockConfig struct {
	Latency time.Duration
	Network string
	Address string
	Balance int64
	Logger  *zap.Logger
}

// NewMockTransport creates a simulated wallet transport.
func NewMockTransport(cfg *MockConfig) *MockTransport {
	return &MockTransport{
		latency: cfg.Latency,
		network: cfg.Network,
		address: cfg.Address,
		balance: cfg.Balance,
		logger:  cfg.Logger,
	}
}

// Request serves a canned response for the enumerated wallet methods.
func (m *MockTransport) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	select {
	case <-ctx.Done():
		return nil, normalizeError(method, ctx.Err())
	case <-time.After(m.latency):
	}

	m.logger.Debug("mock-request", zap.String("method", method))

	var result any

	switch method {
	case types.MethodGetConnectedNetwork:
		result = types.NetworkInfo{
			Network:     m.network,
			GenesisHash: mockTxHash(),
		}

	case types.MethodGetBalance:
		balance := types.TokenBalance{Token: "00", Transactions: 3}
		balance.Balance.Unlocked = m.balance
		result = []types.TokenBalance{balance}

	case types.MethodGetAddress:
		result = types.AddressInfo{
			Address:     m.address,
			Index:       0,
			AddressPath: "m/44'/280'/0'/0/0",
		}

	case types.MethodSendNanoContractTx:
		result = types.SendNanoContractTxResult{
			Hash:      mockTxHash(),
			Success:   true,
			Timestamp: time.Now().Unix(),
		}

	default:
		return nil, types.NewWalletError(types.ErrMethodNotFound, method,
			"method not implemented by mock wallet: "+method)
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, normalizeError(method, err)
	}

	return raw, nil
}

// mockTxHash fabricates a 64-character hex transaction hash.
func mockTxHash() string {
	a := strings.ReplaceAll(uuid.NewString(), "-", "")
	b := strings.ReplaceAll(uuid.NewString(), "-", "")

	return a + b
}
