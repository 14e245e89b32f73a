package types

// Wallet RPC method names. The same contract is served by all three
// transports.
const (
	MethodGetConnectedNetwork = "htr_getConnectedNetwork"
	MethodGetBalance          = "htr_getBalance"
	MethodGetAddress          = "htr_getAddress"
	MethodSendNanoContractTx  = "htr_sendNanoContractTx"
)

// NetworkInfo is the result of htr_getConnectedNetwork.
type NetworkInfo struct {
	Network     string `json:"network"`
	GenesisHash string `json:"genesisHash"`
}

// GetBalanceParams requests balances for a set of tokens.
type GetBalanceParams struct {
	Tokens         []string `json:"tokens"`
	AddressIndexes []int    `json:"addressIndexes,omitempty"`
}

// TokenBalance is one entry of the htr_getBalance result.
type TokenBalance struct {
	Token   string `json:"token"`
	Balance struct {
		Unlocked int64 `json:"unlocked"`
		Locked   int64 `json:"locked"`
	} `json:"balance"`
	Transactions int `json:"transactions"`
}

// GetAddressParams selects a derivation index.
type GetAddressParams struct {
	Index int `json:"index"`
}

// AddressInfo is the result of htr_getAddress.
type AddressInfo struct {
	Address     string `json:"address"`
	Index       int    `json:"index"`
	AddressPath string `json:"addressPath"`
}

// Nano contract action types.
const (
	ActionDeposit    = "deposit"
	ActionWithdrawal = "withdrawal"
)

// NanoContractAction moves tokens into or out of a contract call.
type NanoContractAction struct {
	Type    string `json:"type"`
	Amount  int64  `json:"amount"`
	Token   string `json:"token"`
	Address string `json:"address,omitempty"`
}

// SendNanoContractTxParams is the htr_sendNanoContractTx request payload.
type SendNanoContractTxParams struct {
	NCID    string               `json:"nc_id"`
	Method  string               `json:"method"`
	Args    []any                `json:"args"`
	Actions []NanoContractAction `json:"actions"`
	PushTx  bool                 `json:"push_tx"`
}

// SendNanoContractTxResult is the htr_sendNanoContractTx response.
type SendNanoContractTxResult struct {
	Hash      string `json:"hash"`
	Success   bool   `json:"success"`
	Timestamp int64  `json:"timestamp"`
}
