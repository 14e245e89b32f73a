package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/hathordice/hathor-dice/pkg/cache"
	"github.com/hathordice/hathor-dice/pkg/types"
)

func newTestClient(t *testing.T, ttl time.Duration) (*Client, *cache.RistrettoCache) {
	t.Helper()

	cacheInterface, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
		Logger:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	t.Cleanup(cacheInterface.Close)

	client, err := NewClient(&ClientConfig{
		Mode:            ModeMock,
		Cache:           cacheInterface,
		BalanceCacheTTL: ttl,
		Logger:          zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	return client, cacheInterface.(*cache.RistrettoCache)
}

func TestRequestFailsFastWhenDisconnected(t *testing.T) {
	client, _ := newTestClient(t, time.Minute)

	_, err := client.Request(context.Background(), types.MethodGetBalance, nil)
	if err == nil {
		t.Fatal("expected error")
	}

	var walletErr *types.WalletError
	if !errors.As(err, &walletErr) {
		t.Fatalf("expected *types.WalletError, got %T", err)
	}

	if walletErr.Code != types.ErrNotConnected {
		t.Errorf("expected code %s, got %s", types.ErrNotConnected, walletErr.Code)
	}
}

func TestRequestFnWinsOverSession(t *testing.T) {
	client, _ := newTestClient(t, time.Minute)

	invoked := false
	client.requestFn = func(ctx context.Context, method string, params any) (json.RawMessage, error) {
		invoked = true
		return json.RawMessage(`{}`), nil
	}

	// A dormant session configured alongside the request function must
	// never be invoked: its Request would fail loudly if reached.
	client.session = NewSessionTransport(&SessionConfig{
		RelayURL: "wss://relay.invalid",
		Network:  "testnet",
		Logger:   zap.NewNop(),
	})

	_, err := client.Request(context.Background(), types.MethodGetConnectedNetwork, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !invoked {
		t.Error("expected custom request function to be invoked")
	}
}

func TestErrorNormalizationSubstitutesMessage(t *testing.T) {
	client, _ := newTestClient(t, time.Minute)

	client.requestFn = func(ctx context.Context, method string, params any) (json.RawMessage, error) {
		return nil, errors.New("")
	}

	_, err := client.Request(context.Background(), types.MethodGetBalance, nil)

	var walletErr *types.WalletError
	if !errors.As(err, &walletErr) {
		t.Fatalf("expected *types.WalletError, got %T", err)
	}

	if walletErr.Message != "RPC request failed" {
		t.Errorf("expected substituted message, got %q", walletErr.Message)
	}
}

func TestConnectWithMockTransport(t *testing.T) {
	client, _ := newTestClient(t, time.Minute)
	mock := newTestMock()

	err := client.ConnectWithRequestFunc(context.Background(), mock.Request)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	if !client.IsConnected() {
		t.Error("expected connected state")
	}

	if client.ConnectedAddress() != "WTestAddress123" {
		t.Errorf("unexpected address %q", client.ConnectedAddress())
	}

	client.Disconnect()

	if client.IsConnected() {
		t.Error("expected disconnected state after Disconnect")
	}
}

func TestBalanceCaching(t *testing.T) {
	client, ristretto := newTestClient(t, time.Minute)
	mock := newTestMock()

	err := client.ConnectWithRequestFunc(context.Background(), mock.Request)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	calls := 0
	client.requestFn = func(ctx context.Context, method string, params any) (json.RawMessage, error) {
		calls++
		return mock.Request(ctx, method, params)
	}

	balance, err := client.Balance(context.Background(), "00")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}

	if balance != 10_000 {
		t.Errorf("expected 10000, got %d", balance)
	}

	ristretto.Wait()

	_, err = client.Balance(context.Background(), "00")
	if err != nil {
		t.Fatalf("cached balance: %v", err)
	}

	if calls != 1 {
		t.Errorf("expected exactly one RPC call, got %d", calls)
	}
}

func TestBalanceCacheRejectsStaleRecord(t *testing.T) {
	client, ristretto := newTestClient(t, 10*time.Millisecond)
	mock := newTestMock()

	err := client.ConnectWithRequestFunc(context.Background(), mock.Request)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	calls := 0
	client.requestFn = func(ctx context.Context, method string, params any) (json.RawMessage, error) {
		calls++
		return mock.Request(ctx, method, params)
	}

	_, err = client.Balance(context.Background(), "00")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}

	ristretto.Wait()
	time.Sleep(20 * time.Millisecond)

	_, err = client.Balance(context.Background(), "00")
	if err != nil {
		t.Fatalf("balance after expiry: %v", err)
	}

	if calls != 2 {
		t.Errorf("expected stale record to force a refetch, got %d calls", calls)
	}
}

func TestBalanceCacheRejectsWrongAddress(t *testing.T) {
	client, ristretto := newTestClient(t, time.Minute)
	mock := newTestMock()

	err := client.ConnectWithRequestFunc(context.Background(), mock.Request)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	// Plant a record stored under the current key but carrying a different
	// address; reads must validate the stored address, not just the key.
	client.cache.Set(balanceKey(client.ConnectedAddress()), balanceRecord{
		Balance:   999,
		Address:   "WSomeoneElse",
		Timestamp: time.Now(),
	}, time.Minute)
	ristretto.Wait()

	balance, err := client.Balance(context.Background(), "00")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}

	if balance == 999 {
		t.Error("expected mismatched-address record to be rejected")
	}
}

func TestSendNanoContractTx(t *testing.T) {
	client, _ := newTestClient(t, time.Minute)
	mock := newTestMock()

	err := client.ConnectWithRequestFunc(context.Background(), mock.Request)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	result, err := client.SendNanoContractTx(context.Background(), &types.SendNanoContractTxParams{
		NCID:   "00abc",
		Method: "bet",
		Args:   []any{"WTestAddress123", "00", int64(32768)},
		Actions: []types.NanoContractAction{
			{Type: types.ActionDeposit, Amount: 1000, Token: "00"},
		},
		PushTx: true,
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(result.Hash) != 64 {
		t.Errorf("expected ledger hash, got %q", result.Hash)
	}
}

func TestSessionRequestFailsFastWithoutConnection(t *testing.T) {
	session := NewSessionTransport(&SessionConfig{
		RelayURL: "wss://relay.invalid",
		Network:  "testnet",
		Logger:   zap.NewNop(),
	})

	_, err := session.Request(context.Background(), types.MethodGetBalance, nil)

	var walletErr *types.WalletError
	if !errors.As(err, &walletErr) {
		t.Fatalf("expected *types.WalletError, got %T", err)
	}

	if walletErr.Code != types.ErrNotConnected {
		t.Errorf("expected code %s, got %s", types.ErrNotConnected, walletErr.Code)
	}
}
