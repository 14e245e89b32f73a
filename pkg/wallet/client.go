package wallet

import (
	"context"
	"errors"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/hathordice/hathor-dice/pkg/cache"
	"github.com/hathordice/hathor-dice/pkg/types"
)

// Mode identifies which wallet transport a client session uses.
type Mode string

const (
	ModeMock    Mode = "mock"
	ModeSession Mode = "session"
	ModeSnap    Mode = "snap"
)

// Client is the unified wallet façade. It owns at most one active transport
// per logical connection, with an explicit Connect/Disconnect lifecycle:
// switching modes fully tears down the previous mode's handles first.
//
// Transport precedence: a configured custom/snap request function always
// wins over a configured remote session, even if both are present. This
// lets a session configured for a different wallet mode stay dormant
// without being accidentally invoked.
type Client struct {
	mode     Mode
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
	prefs    *Prefs

	mu        sync.RWMutex
	requestFn RequestFunc
	session   *SessionTransport
	address   string
	connected bool
}

// ClientConfig holds wallet client configuration.
type ClientConfig struct {
	Mode            Mode
	Cache           cache.Cache
	BalanceCacheTTL time.Duration
	Logger          *zap.Logger
	Prefs           *Prefs
}

// balanceRecord is the cached balance entry. Reads validate both the stored
// address and the freshness timestamp before trusting it; writes always
// replace the whole record.
type balanceRecord struct {
	Balance   int64
	Address   string
	Timestamp time.Time
}

// NewClient creates a wallet client. The client is disconnected until a
// transport is attached via one of the Connect methods.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.Cache == nil {
		return nil, errors.New("cache cannot be nil")
	}

	return &Client{
		mode:     cfg.Mode,
		cache:    cfg.Cache,
		cacheTTL: cfg.BalanceCacheTTL,
		logger:   cfg.Logger,
		prefs:    cfg.Prefs,
	}, nil
}

// ConnectWithRequestFunc attaches a custom request function (mock or snap
// invocation) as the active transport.
func (c *Client) ConnectWithRequestFunc(ctx context.Context, fn RequestFunc) error {
	if fn == nil {
		return errors.New("request function cannot be nil")
	}

	c.teardown()

	c.mu.Lock()
	c.requestFn = fn
	c.mu.Unlock()

	return c.finishConnect(ctx)
}

// ConnectWithSession attaches an active remote session as the transport.
func (c *Client) ConnectWithSession(ctx context.Context, session *SessionTransport) error {
	if session == nil || !session.Active() {
		return types.NewWalletError(types.ErrNotConnected, "",
			"session transport is not active")
	}

	c.teardown()

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	return c.finishConnect(ctx)
}

// finishConnect resolves the wallet's address through the fresh transport
// and records the connection in local prefs.
func (c *Client) finishConnect(ctx context.Context) error {
	info, err := c.Address(ctx, 0)
	if err != nil {
		c.teardown()
		return err
	}

	c.mu.Lock()
	c.address = info.Address
	c.connected = true
	c.mu.Unlock()

	if c.prefs != nil {
		c.prefs.Save(&PrefsData{
			WalletType:  string(c.mode),
			LastAddress: info.Address,
		})
	}

	ConnectionsTotal.WithLabelValues(string(c.mode)).Inc()
	c.logger.Info("wallet-connected",
		zap.String("mode", string(c.mode)),
		zap.String("address", info.Address))

	return nil
}

// Disconnect tears down the active transport and clears cached identity.
func (c *Client) Disconnect() {
	c.teardown()
	c.logger.Info("wallet-disconnected")
}

func (c *Client) teardown() {
	c.mu.Lock()
	session := c.session
	address := c.address
	c.requestFn = nil
	c.session = nil
	c.address = ""
	c.connected = false
	c.mu.Unlock()

	if session != nil {
		session.Close()
	}

	if address != "" {
		c.cache.Delete(balanceKey(address))
	}
}

// IsConnected reports whether a transport is attached.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.connected
}

// ConnectedAddress returns the wallet's resolved address, empty when
// disconnected.
func (c *Client) ConnectedAddress() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.address
}

// Request dispatches one RPC through the active transport, applying the
// precedence rule and normalizing every failure into a WalletError.
func (c *Client) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	c.mu.RLock()
	requestFn := c.requestFn
	session := c.session
	c.mu.RUnlock()

	start := time.Now()
	defer func() {
		RequestDuration.Observe(time.Since(start).Seconds())
	}()

	var (
		raw       json.RawMessage
		err       error
		transport string
	)

	switch {
	case requestFn != nil:
		transport = "request-fn"
		raw, err = requestFn(ctx, method, params)
	case session != nil:
		transport = "session"
		raw, err = session.Request(ctx, method, params)
	default:
		transport = "none"
		err = types.NewWalletError(types.ErrNotConnected, method, "no wallet connected")
	}

	RequestsTotal.WithLabelValues(method, transport).Inc()

	if err != nil {
		RequestErrorsTotal.WithLabelValues(method).Inc()
		return nil, normalizeError(method, err)
	}

	return raw, nil
}

// ConnectedNetwork fetches the wallet's current network.
func (c *Client) ConnectedNetwork(ctx context.Context) (*types.NetworkInfo, error) {
	raw, err := c.Request(ctx, types.MethodGetConnectedNetwork, nil)
	if err != nil {
		return nil, err
	}

	var info types.NetworkInfo

	err = unmarshalResult(types.MethodGetConnectedNetwork, raw, &info)
	if err != nil {
		return nil, err
	}

	return &info, nil
}

// Address fetches the wallet address at the given derivation index.
func (c *Client) Address(ctx context.Context, index int) (*types.AddressInfo, error) {
	raw, err := c.Request(ctx, types.MethodGetAddress, types.GetAddressParams{Index: index})
	if err != nil {
		return nil, err
	}

	var info types.AddressInfo

	err = unmarshalResult(types.MethodGetAddress, raw, &info)
	if err != nil {
		return nil, err
	}

	return &info, nil
}

// Balance returns the unlocked balance for a token, serving fresh cached
// records when available. A cached record is trusted only if its stored
// address matches the connected address and it is inside the freshness
// window.
func (c *Client) Balance(ctx context.Context, token string) (int64, error) {
	c.mu.RLock()
	address := c.address
	c.mu.RUnlock()

	if cached, found := c.cache.Get(balanceKey(address)); found {
		record, ok := cached.(balanceRecord)
		if ok && record.Address == address && time.Since(record.Timestamp) <= c.cacheTTL {
			return record.Balance, nil
		}

		BalanceCacheRejectsTotal.Inc()
	}

	raw, err := c.Request(ctx, types.MethodGetBalance, types.GetBalanceParams{Tokens: []string{token}})
	if err != nil {
		return 0, err
	}

	var balances []types.TokenBalance

	err = unmarshalResult(types.MethodGetBalance, raw, &balances)
	if err != nil {
		return 0, err
	}

	if len(balances) == 0 {
		return 0, types.NewWalletError(types.ErrDecodeFailure, types.MethodGetBalance,
			"wallet returned no balance entry for token "+token)
	}

	unlocked := balances[0].Balance.Unlocked

	c.cache.Set(balanceKey(address), balanceRecord{
		Balance:   unlocked,
		Address:   address,
		Timestamp: time.Now(),
	}, c.cacheTTL)

	return unlocked, nil
}

// SendNanoContractTx submits a signed nano contract transaction through the
// wallet and returns the ledger-assigned hash.
func (c *Client) SendNanoContractTx(ctx context.Context, params *types.SendNanoContractTxParams) (*types.SendNanoContractTxResult, error) {
	raw, err := c.Request(ctx, types.MethodSendNanoContractTx, params)
	if err != nil {
		return nil, err
	}

	var result types.SendNanoContractTxResult

	err = unmarshalResult(types.MethodSendNanoContractTx, raw, &result)
	if err != nil {
		return nil, err
	}

	if !result.Success {
		return nil, types.NewWalletError(types.ErrUserRejected, types.MethodSendNanoContractTx,
			"transaction was not accepted by the wallet")
	}

	// The connected wallet's balance changed; drop the cached record so the
	// next read refetches.
	c.mu.RLock()
	address := c.address
	c.mu.RUnlock()
	c.cache.Delete(balanceKey(address))

	return &result, nil
}

func balanceKey(address string) string {
	return "balance:" + address
}
