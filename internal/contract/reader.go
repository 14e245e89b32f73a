// Package contract reads nano contract state and transaction history from a
// Hathor fullnode's REST API. It is a thin boundary: the contract's own
// random draw and balance accounting stay authoritative and external.
package contract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/hathordice/hathor-dice/pkg/types"
)

// Contract state field names served by the fullnode.
const (
	fieldTokenUID           = "token_uid"
	fieldMaxBet             = "max_bet"
	fieldHouseEdge          = "house_edge"
	fieldBitLength          = "bit_length"
	fieldAvailableLiquidity = "available_liquidity"
	fieldTotalLiquidity     = "total_liquidity"
)

// Reader fetches contract state and history for the registered contracts.
type Reader struct {
	baseURL    string
	registry   map[string]string // token id -> nano contract id
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds reader configuration.
type Config struct {
	NodeURL  string
	Registry map[string]string
	Logger   *zap.Logger
}

// New creates a contract reader.
func New(cfg *Config) *Reader {
	return &Reader{
		baseURL:  cfg.NodeURL,
		registry: cfg.Registry,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: cfg.Logger,
	}
}

// ContractForToken resolves the nano contract settling bets for a token.
func (r *Reader) ContractForToken(token string) (string, error) {
	contractID, found := r.registry[token]
	if !found {
		return "", types.NewWalletError(types.ErrContractUnavailable, "",
			"no dice contract registered for token "+token)
	}

	return contractID, nil
}

// stateResponse is the /nano_contract/state wire format: every requested
// field comes back wrapped in a value object.
type stateResponse struct {
	Fields map[string]struct {
		Value json.RawMessage `json:"value"`
	} `json:"fields"`
}

// FetchState fetches the contract's current configuration. The returned
// snapshot is immutable; callers replace it wholesale on refetch.
func (r *Reader) FetchState(ctx context.Context, contractID string) (*types.ContractState, error) {
	start := time.Now()
	defer func() {
		StateFetchDuration.Observe(time.Since(start).Seconds())
	}()

	params := url.Values{}
	params.Add("id", contractID)
	for _, field := range []string{
		fieldTokenUID, fieldMaxBet, fieldHouseEdge,
		fieldBitLength, fieldAvailableLiquidity, fieldTotalLiquidity,
	} {
		params.Add("fields[]", field)
	}

	body, err := r.get(ctx, "/nano_contract/state", params)
	if err != nil {
		return nil, err
	}

	var resp stateResponse

	err = json.Unmarshal(body, &resp)
	if err != nil {
		return nil, types.NewWalletError(types.ErrDecodeFailure, "",
			fmt.Sprintf("unmarshal contract state: %v", err))
	}

	state := &types.ContractState{ContractID: contractID}

	state.TokenID, err = stringField(resp, fieldTokenUID)
	if err != nil {
		return nil, err
	}

	for _, item := range []struct {
		name string
		dst  *int64
	}{
		{fieldMaxBet, &state.MaxBetAmount},
		{fieldHouseEdge, &state.HouseEdgeBasisPoints},
		{fieldBitLength, &state.RandomBitLength},
		{fieldAvailableLiquidity, &state.AvailableLiquidity},
		{fieldTotalLiquidity, &state.TotalLiquidityProvided},
	} {
		*item.dst, err = intField(resp, item.name)
		if err != nil {
			return nil, err
		}
	}

	err = validateState(state)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("contract-state-fetched",
		zap.String("contract-id", contractID),
		zap.Int64("bit-length", state.RandomBitLength),
		zap.Int64("house-edge-bps", state.HouseEdgeBasisPoints),
		zap.Int64("available-liquidity", state.AvailableLiquidity))

	return state, nil
}

// FetchHistory fetches one page of the contract's transaction history.
// after is the pagination cursor from the previous page, empty for the
// first page.
func (r *Reader) FetchHistory(ctx context.Context, contractID string, count int, after string) (*types.HistoryPage, error) {
	start := time.Now()
	defer func() {
		HistoryFetchDuration.Observe(time.Since(start).Seconds())
	}()

	params := url.Values{}
	params.Add("id", contractID)
	params.Add("count", strconv.Itoa(count))
	if after != "" {
		params.Add("after", after)
	}

	body, err := r.get(ctx, "/nano_contract/history", params)
	if err != nil {
		return nil, err
	}

	var page types.HistoryPage

	err = json.Unmarshal(body, &page)
	if err != nil {
		return nil, types.NewWalletError(types.ErrDecodeFailure, "",
			fmt.Sprintf("unmarshal contract history: %v", err))
	}

	HistoryEntriesFetched.Add(float64(len(page.Entries)))

	r.logger.Debug("contract-history-fetched",
		zap.String("contract-id", contractID),
		zap.Int("entries", len(page.Entries)),
		zap.Bool("has-more", page.HasMore))

	return &page, nil
}

// get performs one GET against the fullnode and returns the response body.
func (r *Reader) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	requestURL := fmt.Sprintf("%s%s?%s", r.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, types.NewWalletError(types.ErrNetworkFailure, "",
			fmt.Sprintf("create request: %v", err))
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hathor-dice/1.0")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		FetchErrorsTotal.Inc()
		return nil, types.NewWalletError(types.ErrNetworkFailure, "",
			fmt.Sprintf("fullnode unreachable: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		FetchErrorsTotal.Inc()
		body, _ := io.ReadAll(resp.Body)
		return nil, types.NewWalletError(types.ErrNetworkFailure, "",
			fmt.Sprintf("fullnode returned status %d: %s", resp.StatusCode, string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewWalletError(types.ErrNetworkFailure, "",
			fmt.Sprintf("read response body: %v", err))
	}

	return body, nil
}

func stringField(resp stateResponse, name string) (string, error) {
	field, found := resp.Fields[name]
	if !found {
		return "", types.NewWalletError(types.ErrDecodeFailure, "",
			"contract state missing field "+name)
	}

	var value string

	err := json.Unmarshal(field.Value, &value)
	if err != nil {
		return "", types.NewWalletError(types.ErrDecodeFailure, "",
			fmt.Sprintf("field %s is not a string: %v", name, err))
	}

	return value, nil
}

func intField(resp stateResponse, name string) (int64, error) {
	field, found := resp.Fields[name]
	if !found {
		return 0, types.NewWalletError(types.ErrDecodeFailure, "",
			"contract state missing field "+name)
	}

	var value int64

	err := json.Unmarshal(field.Value, &value)
	if err != nil {
		return 0, types.NewWalletError(types.ErrDecodeFailure, "",
			fmt.Sprintf("field %s is not an integer: %v", name, err))
	}

	return value, nil
}

// validateState enforces the structural invariants a usable dice contract
// must satisfy.
func validateState(state *types.ContractState) error {
	if state.RandomBitLength < 1 {
		return types.NewWalletError(types.ErrDecodeFailure, "",
			fmt.Sprintf("contract bit length %d out of range", state.RandomBitLength))
	}

	if state.HouseEdgeBasisPoints < 0 || state.HouseEdgeBasisPoints > 10000 {
		return types.NewWalletError(types.ErrDecodeFailure, "",
			fmt.Sprintf("contract house edge %d outside [0, 10000]", state.HouseEdgeBasisPoints))
	}

	return nil
}
