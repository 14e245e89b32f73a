package contract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/hathordice/hathor-dice/pkg/types"
)

const stateJSON = `{
	"fields": {
		"token_uid": {"value": "00"},
		"max_bet": {"value": 100000},
		"house_edge": {"value": 200},
		"bit_length": {"value": 16},
		"available_liquidity": {"value": 5000000},
		"total_liquidity": {"value": 8000000}
	}
}`

func newTestReader(t *testing.T, handler http.HandlerFunc) *Reader {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(&Config{
		NodeURL:  server.URL,
		Registry: map[string]string{"00": "00contract"},
		Logger:   zap.NewNop(),
	})
}

func TestFetchState(t *testing.T) {
	reader := newTestReader(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/nano_contract/state" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		if r.URL.Query().Get("id") != "00contract" {
			t.Errorf("unexpected id %q", r.URL.Query().Get("id"))
		}

		if len(r.URL.Query()["fields[]"]) != 6 {
			t.Errorf("expected 6 fields, got %v", r.URL.Query()["fields[]"])
		}

		fmt.Fprint(w, stateJSON)
	})

	state, err := reader.FetchState(context.Background(), "00contract")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if state.TokenID != "00" {
		t.Errorf("unexpected token id %q", state.TokenID)
	}

	if state.MaxBetAmount != 100000 || state.HouseEdgeBasisPoints != 200 {
		t.Errorf("unexpected state: %+v", state)
	}

	if state.RandomBitLength != 16 || state.MaxThreshold() != 65535 {
		t.Errorf("unexpected bit length: %+v", state)
	}
}

func TestFetchStateInvariants(t *testing.T) {
	tests := []struct {
		name      string
		bitLength int64
		houseEdge int64
		wantErr   bool
	}{
		{name: "valid", bitLength: 16, houseEdge: 200, wantErr: false},
		{name: "zero-bit-length", bitLength: 0, houseEdge: 200, wantErr: true},
		{name: "edge-over-10000", bitLength: 16, houseEdge: 10001, wantErr: true},
		{name: "edge-at-bounds", bitLength: 1, houseEdge: 10000, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := newTestReader(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `{
					"fields": {
						"token_uid": {"value": "00"},
						"max_bet": {"value": 100000},
						"house_edge": {"value": %d},
						"bit_length": {"value": %d},
						"available_liquidity": {"value": 5000000},
						"total_liquidity": {"value": 8000000}
					}
				}`, tt.houseEdge, tt.bitLength)
			})

			_, err := reader.FetchState(context.Background(), "00contract")
			if tt.wantErr && err == nil {
				t.Error("expected invariant violation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestFetchHistoryPagination(t *testing.T) {
	reader := newTestReader(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/nano_contract/history" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		if r.URL.Query().Get("count") != "2" {
			t.Errorf("unexpected count %q", r.URL.Query().Get("count"))
		}

		switch r.URL.Query().Get("after") {
		case "":
			fmt.Fprint(w, `{
				"history": [
					{"hash": "aa01", "timestamp": 100, "nc_method": "bet", "first_block": "b1", "is_voided": false},
					{"hash": "aa02", "timestamp": 101, "nc_method": "bet", "first_block": "b1", "is_voided": false}
				],
				"has_more": true
			}`)
		case "aa02":
			fmt.Fprint(w, `{
				"history": [
					{"hash": "aa03", "timestamp": 102, "nc_method": "bet", "first_block": "", "is_voided": false}
				],
				"has_more": false
			}`)
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("after"))
		}
	})

	first, err := reader.FetchHistory(context.Background(), "00contract", 2, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first.Entries) != 2 || !first.HasMore {
		t.Fatalf("unexpected first page: %+v", first)
	}

	second, err := reader.FetchHistory(context.Background(), "00contract", 2, first.Entries[len(first.Entries)-1].Hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(second.Entries) != 1 || second.HasMore {
		t.Fatalf("unexpected second page: %+v", second)
	}

	if second.Entries[0].Confirmed() {
		t.Error("entry without first_block must not be confirmed")
	}
}

func TestFetchStateNetworkFailure(t *testing.T) {
	reader := newTestReader(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	_, err := reader.FetchState(context.Background(), "00contract")

	var walletErr *types.WalletError
	if !errors.As(err, &walletErr) {
		t.Fatalf("expected *types.WalletError, got %T", err)
	}

	if walletErr.Code != types.ErrNetworkFailure {
		t.Errorf("expected code %s, got %s", types.ErrNetworkFailure, walletErr.Code)
	}
}

func TestContractForToken(t *testing.T) {
	reader := newTestReader(t, func(w http.ResponseWriter, r *http.Request) {})

	contractID, err := reader.ContractForToken("00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if contractID != "00contract" {
		t.Errorf("unexpected contract id %q", contractID)
	}

	_, err = reader.ContractForToken("unknown-token")

	var walletErr *types.WalletError
	if !errors.As(err, &walletErr) {
		t.Fatalf("expected *types.WalletError, got %T", err)
	}

	if walletErr.Code != types.ErrContractUnavailable {
		t.Errorf("expected code %s, got %s", types.ErrContractUnavailable, walletErr.Code)
	}
}
